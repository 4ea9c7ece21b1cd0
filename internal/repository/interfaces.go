package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/saturnino-fabrica-de-software/vigia/internal/domain"
)

// PgxPool is the subset of pgxpool.Pool the repositories use. pgxmock
// satisfies it too, which keeps repository tests off the network.
type PgxPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// GalleryRepositoryInterface defines operations for the known-face gallery
type GalleryRepositoryInterface interface {
	Register(ctx context.Context, label string, embedding []float64) (*domain.GalleryEntry, error)
	Nearest(ctx context.Context, embedding []float64) (*domain.Match, error)
	Count(ctx context.Context) (int, error)
}

// EventRepositoryInterface defines operations for the detection event log
type EventRepositoryInterface interface {
	Append(ctx context.Context, image []byte, timestamp time.Time) (*domain.DetectionEvent, error)
	ListUnread(ctx context.Context) ([]domain.DetectionEvent, error)
	CountUnread(ctx context.Context) (int, error)
}
