package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hyperjump/kiku/internal/server"
	"github.com/hyperjump/kiku/internal/watcher"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server. The most recently processed video is restored from
the database. When watch.directory is set, transcript files dropped there are
processed as they arrive.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, resolvedConfigPath, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	logger, debug, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()
	logger.Info("config loaded", zap.String("config_path", resolvedConfigPath), zap.Bool("debug", debug))

	components, err := initializeComponents(cfg, logger, debug, true)
	if err != nil {
		logger.Error("Failed to initialize components", zap.Error(err))
		return err
	}
	defer components.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if ok, err := components.Assistant.Restore(ctx); err != nil {
		logger.Warn("restore failed; starting without a video", zap.Error(err))
	} else if ok {
		logger.Info("previous video restored")
	}

	if cfg.Watch.Directory != "" {
		a := components.Assistant
		watchOpts := []watcher.WatcherOption{watcher.WithDebounce(time.Duration(cfg.Watch.DebounceMS) * time.Millisecond)}
		if debug {
			watchOpts = append(watchOpts, watcher.WithLogger(logger))
		}
		w := watcher.NewWatcher(cfg.Watch.Directory, cfg.Watch.Extensions, func(path string) {
			v, err := processFile(ctx, a, path, "", "", "")
			if err != nil {
				logger.Warn("watch process file failed", zap.String("path", path), zap.Error(err))
				return
			}
			logger.Info("watch processed file", zap.String("path", path), zap.String("video_id", v.ID))
		}, watchOpts...)
		if err := w.Start(ctx); err != nil {
			logger.Error("Failed to start watcher", zap.Error(err))
			return err
		}
		defer w.Stop()
	}

	srv := server.NewServer(components.Assistant, &cfg.Server, logger)
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sigChan:
	case err := <-errCh:
		logger.Error("Server failed", zap.Error(err))
		return err
	}

	logger.Info("Shutting down...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return srv.Stop(shutdownCtx)
}
