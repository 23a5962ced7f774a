package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"Mansoor88-6/project-timer/internal/client"
	"Mansoor88-6/project-timer/internal/config"
	"Mansoor88-6/project-timer/internal/database"
	"Mansoor88-6/project-timer/internal/handler"
	"Mansoor88-6/project-timer/internal/instance"
	"Mansoor88-6/project-timer/internal/logger"
	"Mansoor88-6/project-timer/internal/notify"
	"Mansoor88-6/project-timer/internal/repository"
	"Mansoor88-6/project-timer/internal/router"
	"Mansoor88-6/project-timer/internal/service"
	"Mansoor88-6/project-timer/internal/snapshot"
	"Mansoor88-6/project-timer/internal/timer"
	"Mansoor88-6/project-timer/internal/tray"

	"go.uber.org/zap"
)

// recordStore is what the timer needs from either backend.
type recordStore interface {
	timer.ProjectLister
	timer.EntryCreator
}

type slot interface {
	timer.Slot
	io.Closer
}

func main() {
	// Parse command line flags
	configPath := flag.String("config", "config/local.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting project timer",
		zap.String("env", cfg.Env),
		zap.String("config_path", *configPath),
		zap.String("store", cfg.Store.Backend),
	)

	// Initialize database
	db, err := database.New(cfg.StoragePath, log.Logger)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}()

	// Get or generate instance ID
	instanceID, generated, err := instance.NewManager().GetOrGenerateID(cfg.Instance.ID)
	if err != nil {
		log.Fatal("Failed to get instance ID", zap.Error(err))
	}
	if generated {
		log.Info("Generated instance ID", zap.String("instance_id", instanceID))
		if err := config.SaveInstanceID(*configPath, instanceID); err != nil {
			log.Warn("Failed to save instance ID to config", zap.Error(err))
		} else {
			log.Info("Instance ID saved to config")
		}
	} else {
		log.Info("Using configured instance ID", zap.String("instance_id", instanceID))
	}

	stateSlot, err := openSlot(cfg, db, instanceID, log.Logger)
	if err != nil {
		log.Fatal("Failed to open timer snapshot", zap.Error(err))
	}
	defer func() {
		if err := stateSlot.Close(); err != nil {
			log.Error("Failed to close timer snapshot", zap.Error(err))
		}
	}()

	// Record store: the local service also backs the CRUD and report endpoints
	var store recordStore
	var local *service.TimeEntryService
	switch cfg.Store.Backend {
	case config.BackendRemote:
		apiClient := client.NewAPIClient(
			cfg.Backend.BaseURL,
			cfg.Backend.APIKey,
			time.Duration(cfg.Backend.Timeout)*time.Second,
			log.Logger,
		)
		apiClient.SetInstanceID(instanceID)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := apiClient.HealthCheck(ctx); err != nil {
			log.Warn("Backend health check failed", zap.Error(err), zap.String("backend_url", cfg.Backend.BaseURL))
		}
		cancel()
		store = apiClient
	default:
		local = service.NewTimeEntryService(
			repository.NewTimeEntryRepository(db.DB),
			repository.NewProjectRepository(db.DB),
			cfg.Store.SimulatedLatency,
			log.Logger,
		)
		store = local
	}

	feed := notify.NewFeed(50)
	notifier := notify.Multi{notify.NewLogNotifier(log.Logger), feed}

	controller := timer.NewController(
		store,
		store,
		notifier,
		stateSlot,
		timer.SystemClock,
		log.Logger,
	)
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 10*time.Second)
	err = controller.Load(loadCtx)
	cancelLoad()
	if err != nil {
		log.Fatal("Failed to load timer", zap.Error(err))
	}

	// HTTP server
	var httpServer *http.Server
	if !cfg.HTTPServer.Disabled {
		handlers := router.Handlers{
			Timer: handler.NewTimerHandler(controller, feed, log.Logger),
		}
		if local != nil {
			handlers.Projects = handler.NewProjectHandler(local, controller.RefreshProjects, log.Logger)
			handlers.TimeEntries = handler.NewTimeEntryHandler(local, log.Logger)
			handlers.Reports = handler.NewReportHandler(local, log.Logger)
		}

		httpServer = &http.Server{
			Addr:         cfg.HTTPServer.Address,
			Handler:      router.New(handlers, log.Logger),
			ReadTimeout:  cfg.HTTPServer.ReadTimeout,
			WriteTimeout: cfg.HTTPServer.WriteTimeout,
			IdleTimeout:  cfg.HTTPServer.IdleTimeout,
		}

		go func() {
			log.Info("Starting HTTP server", zap.String("address", cfg.HTTPServer.Address))
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("HTTP server error", zap.Error(err))
			}
		}()
	} else {
		log.Info("HTTP server disabled in configuration")
	}

	log.Info("Project timer started successfully",
		zap.String("instance_id", instanceID),
		zap.String("phase", string(controller.State().Phase)),
	)

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	if cfg.Tray.Enabled {
		t := tray.New(controller, feed, log.Logger)
		go func() {
			sig := <-quit
			log.Info("Received shutdown signal", zap.String("signal", sig.String()))
			t.Quit()
		}()
		t.Run(func() { log.Info("Tray closed") })
	} else {
		sig := <-quit
		log.Info("Received shutdown signal", zap.String("signal", sig.String()))
	}

	log.Info("Shutting down project timer...")

	if httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			log.Warn("HTTP server shutdown error", zap.Error(err))
		} else {
			log.Info("HTTP server stopped")
		}
	}

	controller.Close()

	log.Info("Project timer stopped")
}

func openSlot(cfg *config.Config, db *database.DB, instanceID string, logger *zap.Logger) (slot, error) {
	switch cfg.Timer.Snapshot {
	case config.SnapshotFile:
		return snapshot.OpenFileSlot(cfg.Timer.SnapshotPath)
	case config.SnapshotMemory:
		return snapshot.NewMemorySlot(), nil
	default:
		return snapshot.NewSQLiteSlot(db.DB, instance.SlotKey(instanceID), logger), nil
	}
}
