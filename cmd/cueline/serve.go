package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/cueline/internal/clock"
	"github.com/alfredjeanlab/cueline/internal/config"
	"github.com/alfredjeanlab/cueline/internal/events"
	"github.com/alfredjeanlab/cueline/internal/presence"
	"github.com/alfredjeanlab/cueline/internal/server"
	"github.com/alfredjeanlab/cueline/internal/snapshot"
	"github.com/alfredjeanlab/cueline/internal/store/postgres"
	"github.com/alfredjeanlab/cueline/internal/timeline"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "Start the cueline show server",
	GroupID: "system",
	// Override PersistentPreRunE so we don't create an HTTP client.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		st, err := postgres.New(cfg.DatabaseURL)
		if err != nil {
			return err
		}

		var publisher events.Publisher
		if cfg.NATSURL != "" {
			pub, err := events.NewNATSPublisher(cfg.NATSURL)
			if err != nil {
				st.Close()
				return err
			}
			publisher = pub
			logger.Info("events enabled", "nats_url", cfg.NATSURL)
		} else {
			publisher = &events.NoopPublisher{}
			logger.Info("events disabled (CUELINE_NATS_URL not set)")
		}

		showServer := server.NewShowServer(st, publisher, clock.System(), logger)

		// Load the show file up front so a broken one fails the boot, but
		// resolve cue offsets only when the show is actually started.
		if cfg.ShowFile != "" {
			show, err := timeline.LoadFile(cfg.ShowFile)
			if err != nil {
				publisher.Close()
				st.Close()
				return err
			}
			if _, err := show.Resolve(time.Now()); err != nil {
				publisher.Close()
				st.Close()
				return err
			}
			showServer.LoadShowFile(show)
			logger.Info("show file loaded", "file", cfg.ShowFile, "title", show.Title)
		}

		showServer.Presence.StartReaper(&presence.ReaperConfig{
			DropThreshold: cfg.PresenceTTL,
		})

		var snapScheduler *snapshot.Scheduler
		if cfg.SnapshotInterval > 0 {
			var dests []snapshot.Destination

			if cfg.SnapshotFile != "" {
				dests = append(dests, snapshot.NewFileDestination(cfg.SnapshotFile))
				logger.Info("snapshot file destination enabled", "file", cfg.SnapshotFile)
			}

			if cfg.SnapshotS3Bucket != "" {
				s3Dest, err := snapshot.NewS3Destination(
					context.Background(),
					cfg.SnapshotS3Bucket,
					cfg.SnapshotS3Key,
					cfg.SnapshotS3Region,
					cfg.SnapshotS3Endpoint,
				)
				if err != nil {
					logger.Error("failed to create S3 snapshot destination", "err", err)
				} else {
					dests = append(dests, s3Dest)
					logger.Info("snapshot S3 destination enabled", "bucket", cfg.SnapshotS3Bucket, "key", cfg.SnapshotS3Key)
				}
			}

			if len(dests) > 0 {
				snapScheduler = snapshot.NewScheduler(st, dests, cfg.SnapshotInterval, logger)
				snapScheduler.Start()
				logger.Info("snapshot scheduler started", "interval", cfg.SnapshotInterval)
			}
		}

		httpServer := &http.Server{
			Addr:    cfg.HTTPAddr,
			Handler: showServer.NewHTTPHandler(cfg.AuthToken),
		}

		go func() {
			logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("HTTP server error", "err", err)
			}
		}()

		// Wait for SIGINT or SIGTERM.
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)

		if snapScheduler != nil {
			snapScheduler.Stop()
			logger.Info("snapshot scheduler stopped")
		}

		showServer.Presence.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "err", err)
		}
		logger.Info("HTTP server stopped")

		if err := publisher.Close(); err != nil {
			logger.Error("error closing publisher", "err", err)
		}
		if err := st.Close(); err != nil {
			logger.Error("error closing store", "err", err)
		}

		logger.Info("shutdown complete")
		return nil
	},
}
