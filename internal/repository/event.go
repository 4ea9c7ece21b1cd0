package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/vigia/internal/domain"
)

// EventRepository persists unknown-face detection events and their
// read state.
type EventRepository struct {
	pool PgxPool
}

func NewEventRepository(pool PgxPool) *EventRepository {
	return &EventRepository{pool: pool}
}

// Append inserts a new unread detection event. Each call is
// self-contained, concurrent appends never lose events.
func (r *EventRepository) Append(ctx context.Context, image []byte, timestamp time.Time) (*domain.DetectionEvent, error) {
	event := &domain.DetectionEvent{
		ID:        uuid.New(),
		Image:     image,
		CreatedAt: timestamp,
		Read:      false,
	}

	query := `
		INSERT INTO detection_events (id, image, created_at, read)
		VALUES ($1, $2, $3, FALSE)
	`

	if _, err := r.pool.Exec(ctx, query, event.ID, event.Image, event.CreatedAt); err != nil {
		return nil, domain.ErrStoreUnavailable.WithError(fmt.Errorf("append event: %w", err))
	}

	return event, nil
}

// ListUnread returns unread events newest first and marks them read.
// Select and update happen in one statement, so an Append racing with
// the retrieval is never acknowledged by mistake.
func (r *EventRepository) ListUnread(ctx context.Context) ([]domain.DetectionEvent, error) {
	query := `
		WITH claimed AS (
			UPDATE detection_events
			SET read = TRUE
			WHERE read = FALSE
			RETURNING id, image, created_at
		)
		SELECT id, image, created_at
		FROM claimed
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, domain.ErrStoreUnavailable.WithError(fmt.Errorf("list unread events: %w", err))
	}
	defer rows.Close()

	var events []domain.DetectionEvent
	for rows.Next() {
		event := domain.DetectionEvent{Read: true}
		if err := rows.Scan(&event.ID, &event.Image, &event.CreatedAt); err != nil {
			return nil, domain.ErrStoreUnavailable.WithError(fmt.Errorf("scan event: %w", err))
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, domain.ErrStoreUnavailable.WithError(fmt.Errorf("list unread events: %w", err))
	}

	return events, nil
}

// CountUnread reports the badge count without consuming anything.
func (r *EventRepository) CountUnread(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM detection_events WHERE read = FALSE`).Scan(&count)
	if err != nil {
		return 0, domain.ErrStoreUnavailable.WithError(fmt.Errorf("count unread events: %w", err))
	}
	return count, nil
}
