package handler

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/vigia/internal/repository"
)

// EventsHandler serves the unknown-face notification log
type EventsHandler struct {
	events  repository.EventRepositoryInterface
	gallery repository.GalleryRepositoryInterface
	logger  *slog.Logger
}

func NewEventsHandler(events repository.EventRepositoryInterface, gallery repository.GalleryRepositoryInterface, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{
		events:  events,
		gallery: gallery,
		logger:  logger,
	}
}

// EventResponse is one detection event on the wire. Image marshals to
// base64, clients render it directly.
type EventResponse struct {
	ID        uuid.UUID `json:"id"`
	Image     []byte    `json:"image"`
	CreatedAt time.Time `json:"created_at"`
}

type EventListResponse struct {
	Events []EventResponse `json:"events"`
	Count  int             `json:"count"`
}

type CountResponse struct {
	Count int `json:"count"`
}

// List GET /v1/events - drain unread events, newest first. Retrieval
// acknowledges: the same event is never delivered twice.
func (h *EventsHandler) List(c *fiber.Ctx) error {
	events, err := h.events.ListUnread(c.Context())
	if err != nil {
		return err
	}

	response := EventListResponse{
		Events: make([]EventResponse, 0, len(events)),
		Count:  len(events),
	}
	for _, event := range events {
		response.Events = append(response.Events, EventResponse{
			ID:        event.ID,
			Image:     event.Image,
			CreatedAt: event.CreatedAt,
		})
	}

	if len(events) > 0 {
		h.logger.Info("detection events delivered", slog.Int("count", len(events)))
	}

	return c.JSON(response)
}

// Count GET /v1/events/count - badge count, nothing is consumed
func (h *EventsHandler) Count(c *fiber.Ctx) error {
	count, err := h.events.CountUnread(c.Context())
	if err != nil {
		return err
	}

	return c.JSON(CountResponse{Count: count})
}

// GalleryCount GET /v1/gallery/count - enrolled reference faces
func (h *EventsHandler) GalleryCount(c *fiber.Ctx) error {
	count, err := h.gallery.Count(c.Context())
	if err != nil {
		return err
	}

	return c.JSON(CountResponse{Count: count})
}
