package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cmr/cmd"
	httpin "cmr/internal/adapters/in/http"
	"cmr/internal/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var envDir string

	root := &cobra.Command{
		Use:          "cmr",
		Short:        "CMR delivery and exception workflow service",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&envDir, "env-dir", ".", "directory containing the optional .env file")

	root.AddCommand(newServeCommand(&envDir), newMigrateCommand(&envDir))
	return root
}

func newServeCommand(envDir *string) *cobra.Command {
	var migrate bool

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the scheduled jobs",
		RunE: func(c *cobra.Command, _ []string) error {
			configs, log, err := setup(*envDir)
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(c.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, *configs, log, migrate)
		},
	}
	serve.Flags().BoolVar(&migrate, "migrate", true, "create or update the schema before serving")
	return serve
}

func newMigrateCommand(envDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(c *cobra.Command, _ []string) error {
			configs, log, err := setup(*envDir)
			if err != nil {
				return err
			}
			defer logger.Sync()

			app, err := cmd.NewCompositionRoot(c.Context(), *configs, log)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			if err = app.Migrate(); err != nil {
				return err
			}
			log.Info("schema is up to date", zap.String("driver", configs.Store.Driver))
			return nil
		},
	}
}

func setup(envDir string) (*cmd.Config, *zap.Logger, error) {
	configs, err := cmd.LoadConfig(envDir)
	if err != nil {
		return nil, nil, err
	}
	if err = logger.Init(configs.Environment, configs.LogLevel); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return configs, logger.Get(), nil
}

func serve(ctx context.Context, configs cmd.Config, log *zap.Logger, migrate bool) error {
	app, err := cmd.NewCompositionRoot(ctx, configs, log)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := app.Close(); closeErr != nil {
			log.Error("failed to release resources", zap.Error(closeErr))
		}
	}()

	if migrate {
		if err = app.Migrate(); err != nil {
			return err
		}
	}

	e, err := httpin.NewEcho(app.CreateHTTPServer(), log, httpin.Options{
		RequestTimeout: configs.RequestTimeout,
		LogLevel:       configs.LogLevel,
	})
	if err != nil {
		return err
	}

	jobManager := app.CreateJobManager()
	if err = jobManager.StartAll(); err != nil {
		return err
	}
	defer jobManager.StopAll()

	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf("0.0.0.0:%d", configs.HTTPPort)
		log.Info("http server listening", zap.String("addr", addr), zap.String("store", configs.Store.Driver))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err = <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
