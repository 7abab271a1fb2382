package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/gravitas-games/craftworks/internal/catalog"
)

var schemaOut string

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Write the JSON schema for catalog files",
	RunE: func(cmd *cobra.Command, args []string) error {
		if schemaOut != "" {
			if err := catalog.WriteSchema(schemaOut); err != nil {
				return err
			}
			cmd.Printf("schema written to %s\n", schemaOut)
			return nil
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(catalog.Schema())
	},
}

func init() {
	schemaCmd.Flags().StringVar(&schemaOut, "out", "", "write the schema to this file instead of stdout")
}
