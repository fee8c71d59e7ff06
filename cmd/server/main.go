package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vytor/profilehub/internal/api"
	"github.com/vytor/profilehub/internal/config"
	"github.com/vytor/profilehub/internal/console"
	"github.com/vytor/profilehub/internal/logger"
	"github.com/vytor/profilehub/internal/profiles"
	"github.com/vytor/profilehub/internal/scheduler"
	"github.com/vytor/profilehub/internal/services"
	"github.com/vytor/profilehub/internal/store"
	"github.com/vytor/profilehub/internal/worker"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.Load()

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("ProfileHub Server Starting")
	log.Info("===========================================")
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("store_driver=%s", cfg.StoreDriver)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("autosave_interval=%v", cfg.AutoSaveInterval)
	log.Debug("store_timeout=%v", cfg.StoreTimeout)
	log.Debug("api_worker_count=%d", cfg.APIWorkerCount)
	log.Debug("api_queue_size=%d", cfg.APIQueueSize)
	log.Debug("console_enabled=%t", cfg.ConsoleEnabled)

	dialer, err := openDialer(cfg)
	if err != nil {
		log.Error("failed to open store: %v", err)
		os.Exit(1)
	}
	creds := cfg.Credentials()
	st := store.New(dialer, creds)
	defer func() {
		log.Debug("closing store")
		if err := st.Close(); err != nil {
			log.Warn("closing store: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startupCtx, startupCancel := context.WithTimeout(ctx, cfg.StoreTimeout)
	if err := st.EnsureSchema(startupCtx); err != nil {
		log.Warn("schema check failed, continuing: %v", err)
	}
	repo := profiles.NewRepository(st)
	if err := repo.Load(startupCtx); err != nil {
		log.Warn("starting with an empty profile collection: %v", err)
	}
	startupCancel()

	profileService := services.NewProfileService(repo, st, creds)

	pool := worker.NewPool(cfg.APIWorkerCount, cfg.APIQueueSize)
	pool.Start(context.Background())
	log.Debug("api worker pool ready: queue capacity %d", pool.Capacity())

	srv := &api.Server{
		ProfileService: profileService,
		Pool:           pool,
		StoreTimeout:   cfg.StoreTimeout,
	}
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	autosaver := scheduler.NewAutoSaver(repo, cfg.AutoSaveInterval, cfg.StoreTimeout)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return autosaver.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("initiating graceful shutdown")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		log.Debug("shutting down HTTP server")
		return httpServer.Shutdown(shutdownCtx)
	})

	if cfg.ConsoleEnabled {
		// Not part of the group: a blocked stdin read cannot be interrupted.
		go func() {
			defer stop()
			if err := console.NewController(profileService, os.Stdin, os.Stdout).Run(gctx); err != nil {
				log.Error("console exited with error: %v", err)
			}
		}()
	}

	if err := g.Wait(); err != nil {
		log.Error("server error: %v", err)
	}

	log.Debug("stopping worker pool")
	pool.Stop()

	saveCtx, saveCancel := context.WithTimeout(context.Background(), cfg.StoreTimeout)
	defer saveCancel()
	if err := repo.Save(saveCtx); err != nil {
		log.Error("final save failed: %v", err)
	} else {
		log.Info("final snapshot saved")
	}

	log.Info("===========================================")
	log.Info("ProfileHub Server Stopped")
	log.Info("===========================================")
}

func openDialer(cfg config.Config) (store.Dialer, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		return store.NewPostgresDialer(cfg.DatabaseURL)
	default:
		return store.OpenSQLite(cfg.DBPath)
	}
}
