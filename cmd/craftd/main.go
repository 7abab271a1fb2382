// Package main is the entry point for the craftworks host
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "craftd",
	Short: "Craftworks inventory and crafting host",
	Long:  `craftd loads an item and recipe catalog, ticks the configured craft stations and persists their state to Redis.`,
}

var configPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "server config file (default $CONFIG_PATH or ./configs/craftd.yaml)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(schemaCmd)
}

// resolveConfigPath prefers the flag, then CONFIG_PATH.
func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	if env := os.Getenv("CONFIG_PATH"); env != "" {
		return env
	}
	return "./configs/craftd.yaml"
}
