package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/saturnino-fabrica-de-software/vigia/internal/api"
	"github.com/saturnino-fabrica-de-software/vigia/internal/camera"
	"github.com/saturnino-fabrica-de-software/vigia/internal/config"
	"github.com/saturnino-fabrica-de-software/vigia/internal/database"
	"github.com/saturnino-fabrica-de-software/vigia/internal/face"
	"github.com/saturnino-fabrica-de-software/vigia/internal/ingest"
	"github.com/saturnino-fabrica-de-software/vigia/internal/mqtt"
	"github.com/saturnino-fabrica-de-software/vigia/internal/pipeline"
	"github.com/saturnino-fabrica-de-software/vigia/internal/repository"
	"github.com/saturnino-fabrica-de-software/vigia/internal/ws"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Local development convenience, absent files are fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	logger.Info("starting vigia",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.Port),
		slog.String("provider", cfg.FaceProvider),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database
	pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	if err := runMigrations(cfg.DatabaseURL); err != nil {
		return err
	}

	galleryRepo := repository.NewGalleryRepository(pool, cfg.EmbeddingDim)
	eventRepo := repository.NewEventRepository(pool)

	// Face capabilities
	detector, embedder, err := face.NewProviders(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize face provider: %w", err)
	}
	defer func() {
		if closer, ok := detector.(io.Closer); ok {
			_ = closer.Close()
		}
	}()

	// Live notification hub
	hub := ws.NewHub()
	go hub.Run()

	engine := pipeline.NewEngine(detector, embedder, galleryRepo, eventRepo, hub, logger, pipeline.Config{
		Threshold: cfg.MatchThreshold,
		MinSize:   cfg.MinSize,
	})

	// Camera intake over MQTT
	frames, err := ingest.NewFrameStore(cfg.FramesDir)
	if err != nil {
		return fmt.Errorf("failed to prepare frames dir: %w", err)
	}
	consumer := camera.NewConsumer(engine, frames, logger, cfg.ProcessTimeout)

	broker := mqtt.NewClient(mqtt.Config{
		Broker:   cfg.MQTTBroker,
		ClientID: cfg.MQTTClientID,
	}, logger)

	// Register before connecting so the subscription rides every
	// (re)connect.
	if err := broker.Subscribe(cfg.MQTTTopic, consumer.Handle); err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}
	if err := broker.Connect(ctx); err != nil {
		// The HTTP surface still works without the camera feed.
		logger.Error("mqtt connect failed, no frames until the broker is reachable",
			slog.String("broker", cfg.MQTTBroker),
			slog.Any("error", err),
		)
	}
	defer broker.Disconnect()

	// HTTP API
	router := api.NewRouter(logger, &api.Dependencies{
		Engine:  engine,
		Gallery: galleryRepo,
		Events:  eventRepo,
		Hub:     hub,
		DB:      pool,
	})
	router.Setup()

	errChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("server listening", slog.String("addr", addr))
		if err := router.Listen(addr); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down server...")
	if err := router.Shutdown(); err != nil {
		logger.Error("shutdown error", slog.Any("error", err))
	}

	<-shutdownCtx.Done()
	logger.Info("server stopped")

	return nil
}

// runMigrations applies pending schema migrations on startup, an
// appliance has no separate deploy step.
func runMigrations(dsn string) error {
	db, err := database.NewSQLPool(dsn)
	if err != nil {
		return fmt.Errorf("failed to open migration connection: %w", err)
	}
	defer func() { _ = db.Close() }()

	migrator, err := database.NewMigrator(db, "vigia")
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	defer func() { _ = migrator.Close() }()

	if err := migrator.Up(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
