package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gravitas-games/craftworks/internal/catalog"
	"github.com/gravitas-games/craftworks/internal/config"
	"github.com/gravitas-games/craftworks/internal/errors"
	"github.com/gravitas-games/craftworks/internal/logging"
	"github.com/gravitas-games/craftworks/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the tick loop and the status endpoint",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	path := resolveConfigPath()
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	logger, err := logging.New(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	logger.Info("configuration loaded", "path", path, "host", cfg.Server.Host, "port", cfg.Server.Port)

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return err
	}

	srv, err := server.New(cfg, cat, logger)
	if err != nil {
		return errors.Wrap(err, "failed to create server")
	}

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var runErr error
	select {
	case runErr = <-errChan:
		logger.Error("server error", "error", runErr)
	case sig := <-sigChan:
		logger.Info("received signal, shutting down", "signal", sig.String())
	}

	if err := srv.Shutdown(); err != nil {
		logger.Error("error during shutdown", "error", err)
		if runErr == nil {
			runErr = err
		}
	}

	logger.Info("server stopped")
	return runErr
}
