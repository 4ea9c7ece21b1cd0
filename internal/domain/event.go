package domain

import (
	"time"

	"github.com/google/uuid"
)

// DetectionEvent registra um avistamento de rosto desconhecido.
// Created exactly when a region's best-match distance exceeds the
// threshold. Read starts false and flips true, for all unread events at
// once, when the notification list is retrieved.
type DetectionEvent struct {
	ID        uuid.UUID `json:"id"`
	Image     []byte    `json:"image"`
	CreatedAt time.Time `json:"created_at"`
	Read      bool      `json:"read"`
}
