package api

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/saturnino-fabrica-de-software/vigia/internal/api/handler"
	"github.com/saturnino-fabrica-de-software/vigia/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/vigia/internal/database"
	"github.com/saturnino-fabrica-de-software/vigia/internal/repository"
	"github.com/saturnino-fabrica-de-software/vigia/internal/ws"
)

// dbPinger routes readiness through the shared connectivity probe, so
// /ready reports with the same timeout the rest of the app uses.
type dbPinger struct {
	pool *pgxpool.Pool
}

func (p dbPinger) Ping(ctx context.Context) error {
	return database.HealthCheck(ctx, p.pool)
}

type Dependencies struct {
	Engine  handler.Enroller
	Gallery repository.GalleryRepositoryInterface
	Events  repository.EventRepositoryInterface
	Hub     *ws.Hub
	DB      *pgxpool.Pool
}

type Router struct {
	app    *fiber.App
	logger *slog.Logger
	deps   *Dependencies
}

func NewRouter(logger *slog.Logger, deps *Dependencies) *Router {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      "Vigia",
	})

	return &Router{
		app:    app,
		logger: logger,
		deps:   deps,
	}
}

func (r *Router) Setup() {
	// Global middlewares
	r.app.Use(requestid.New())
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(middleware.Logger(r.logger))
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Health endpoints
	var pinger handler.Pinger
	if r.deps.DB != nil {
		pinger = dbPinger{pool: r.deps.DB}
	}
	healthHandler := handler.NewHealthHandler(pinger)
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)

	v1 := r.app.Group("/v1")

	// Enrollment
	faceHandler := handler.NewFaceHandler(r.deps.Engine, r.logger)
	v1.Post("/faces", faceHandler.Register)

	// Detection event log
	eventsHandler := handler.NewEventsHandler(r.deps.Events, r.deps.Gallery, r.logger)
	v1.Get("/events", eventsHandler.List)
	v1.Get("/events/count", eventsHandler.Count)
	v1.Get("/gallery/count", eventsHandler.GalleryCount)

	// Live notifications
	if r.deps.Hub != nil {
		v1.Get("/ws", ws.UpgradeMiddleware(), ws.Handler(r.deps.Hub))
	}
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

func (r *Router) Shutdown() error {
	return r.app.Shutdown()
}
