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

	"github.com/diewo77/go-board/internal/config"
	"github.com/diewo77/go-board/internal/db"
	"github.com/diewo77/go-board/internal/logging"
	"github.com/diewo77/go-board/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

type rootOptions struct {
	configPath string
}

// newRootCommand builds the board CLI. Running it without a subcommand serves HTTP.
func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "board",
		Short:         "Message board with reactions, replies and tasks",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", os.Getenv("BOARD_CONFIG"), "path to a YAML config file")

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(opts)
		},
	})
	return cmd
}

// setup loads the configuration and installs the global logger.
func setup(opts *rootOptions) (*config.Config, func(), error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.App.Dev)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	restore := zap.ReplaceGlobals(logger)
	return cfg, func() {
		_ = logger.Sync()
		restore()
	}, nil
}

func runMigrate(opts *rootOptions) error {
	cfg, done, err := setup(opts)
	if err != nil {
		return err
	}
	defer done()

	cfg.App.Migrations = true
	gdb, err := db.ConnectAndMigrate(cfg)
	if err != nil {
		return err
	}
	closeDB(gdb)
	zap.L().Info("migrations completed", zap.String("driver", cfg.Database.Driver))
	return nil
}

func runServe(ctx context.Context, opts *rootOptions) error {
	cfg, done, err := setup(opts)
	if err != nil {
		return err
	}
	defer done()

	gdb, err := db.ConnectAndMigrate(cfg)
	if err != nil {
		return err
	}
	defer closeDB(gdb)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      server.New(gdb, cfg),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("driver", cfg.Database.Driver),
			zap.Bool("dev", cfg.App.Dev))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
		zap.L().Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	zap.L().Info("server stopped gracefully")
	return nil
}

func closeDB(gdb *gorm.DB) {
	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
