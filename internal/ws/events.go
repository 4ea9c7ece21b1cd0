package ws

import (
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/vigia/internal/domain"
)

type EventType string

const (
	EventUnknownFace EventType = "detection.unknown"
)

type Event struct {
	Type      EventType   `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// UnknownFaceData points at the stored event. The crop itself is not
// pushed over the socket, clients fetch it from the event log.
type UnknownFaceData struct {
	EventID uuid.UUID `json:"event_id"`
}

// NotifyUnknown satisfies the pipeline notifier contract.
func (h *Hub) NotifyUnknown(event *domain.DetectionEvent) {
	h.Broadcast(EventUnknownFace, UnknownFaceData{EventID: event.ID})
}
