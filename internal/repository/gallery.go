package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"github.com/saturnino-fabrica-de-software/vigia/internal/domain"
)

// GalleryRepository stores labeled reference embeddings. The gallery is
// a multiset: duplicate labels (and even duplicate embeddings) are
// legal, several reference images per person improve match recall.
type GalleryRepository struct {
	pool PgxPool
	dim  int
}

func NewGalleryRepository(pool PgxPool, dim int) *GalleryRepository {
	return &GalleryRepository{pool: pool, dim: dim}
}

// Register appends one gallery entry. No dedup by design.
func (r *GalleryRepository) Register(ctx context.Context, label string, embedding []float64) (*domain.GalleryEntry, error) {
	if label == "" {
		return nil, domain.ErrEmptyLabel
	}
	if len(embedding) != r.dim {
		return nil, domain.ErrEmbeddingDim.WithError(
			fmt.Errorf("got %d dimensions, gallery uses %d", len(embedding), r.dim))
	}

	query := `
		INSERT INTO gallery_faces (label, embedding)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	entry := &domain.GalleryEntry{
		Label:     label,
		Embedding: embedding,
	}

	err := r.pool.QueryRow(ctx, query, label, toVector(embedding)).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return nil, domain.ErrStoreUnavailable.WithError(fmt.Errorf("register face: %w", err))
	}

	return entry, nil
}

// Nearest returns the single closest entry under cosine distance.
// Ties break deterministically on insertion order (lowest id). An empty
// gallery yields domain.ErrGalleryEmpty.
func (r *GalleryRepository) Nearest(ctx context.Context, embedding []float64) (*domain.Match, error) {
	if len(embedding) != r.dim {
		return nil, domain.ErrEmbeddingDim.WithError(
			fmt.Errorf("got %d dimensions, gallery uses %d", len(embedding), r.dim))
	}

	query := `
		SELECT id, label, embedding <=> $1 AS distance
		FROM gallery_faces
		ORDER BY distance ASC, id ASC
		LIMIT 1
	`

	var match domain.Match
	err := r.pool.QueryRow(ctx, query, toVector(embedding)).Scan(&match.EntryID, &match.Label, &match.Distance)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrGalleryEmpty
	}
	if err != nil {
		return nil, domain.ErrStoreUnavailable.WithError(fmt.Errorf("nearest face: %w", err))
	}

	return &match, nil
}

// Count returns the number of registered gallery entries.
func (r *GalleryRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM gallery_faces`).Scan(&count)
	if err != nil {
		return 0, domain.ErrStoreUnavailable.WithError(fmt.Errorf("count gallery: %w", err))
	}
	return count, nil
}

func toVector(embedding []float64) pgvector.Vector {
	floats := make([]float32, len(embedding))
	for i, v := range embedding {
		floats[i] = float32(v)
	}
	return pgvector.NewVector(floats)
}
