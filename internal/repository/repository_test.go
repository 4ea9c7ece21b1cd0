package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/vigia/internal/domain"
)

// GalleryRepository Tests

func TestGalleryRepository_Register(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name      string
		label     string
		embedding []float64
		mockSetup func(mock pgxmock.PgxPoolIface)
		wantErr   error
	}{
		{
			name:      "successful registration",
			label:     "alice",
			embedding: []float64{0.1, 0.2, 0.3},
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows([]string{"id", "created_at"}).
					AddRow(int64(1), now)

				mock.ExpectQuery(`INSERT INTO gallery_faces`).
					WithArgs("alice", pgxmock.AnyArg()).
					WillReturnRows(rows)
			},
			wantErr: nil,
		},
		{
			name:      "duplicate label is allowed",
			label:     "alice",
			embedding: []float64{0.4, 0.5, 0.6},
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows([]string{"id", "created_at"}).
					AddRow(int64(2), now)

				mock.ExpectQuery(`INSERT INTO gallery_faces`).
					WithArgs("alice", pgxmock.AnyArg()).
					WillReturnRows(rows)
			},
			wantErr: nil,
		},
		{
			name:      "empty label rejected",
			label:     "",
			embedding: []float64{0.1, 0.2, 0.3},
			mockSetup: func(mock pgxmock.PgxPoolIface) {},
			wantErr:   domain.ErrEmptyLabel,
		},
		{
			name:      "dimension mismatch rejected",
			label:     "bob",
			embedding: []float64{0.1, 0.2},
			mockSetup: func(mock pgxmock.PgxPoolIface) {},
			wantErr:   domain.ErrEmbeddingDim,
		},
		{
			name:      "database error on insert",
			label:     "carol",
			embedding: []float64{0.1, 0.2, 0.3},
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO gallery_faces`).
					WithArgs("carol", pgxmock.AnyArg()).
					WillReturnError(errors.New("connection refused"))
			},
			wantErr: domain.ErrStoreUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.mockSetup(mock)

			repo := NewGalleryRepository(mock, 3)
			got, err := repo.Register(context.Background(), tt.label, tt.embedding)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				require.NotNil(t, got)
				assert.Equal(t, tt.label, got.Label)
				assert.Equal(t, tt.embedding, got.Embedding)
				assert.NotZero(t, got.ID)
				assert.False(t, got.CreatedAt.IsZero())
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGalleryRepository_Nearest(t *testing.T) {
	tests := []struct {
		name      string
		embedding []float64
		mockSetup func(mock pgxmock.PgxPoolIface)
		want      *domain.Match
		wantErr   error
	}{
		{
			name:      "closest entry returned",
			embedding: []float64{0.1, 0.2, 0.3},
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows([]string{"id", "label", "distance"}).
					AddRow(int64(7), "alice", 0.05)

				mock.ExpectQuery(`SELECT id, label, embedding <=> \$1 AS distance FROM gallery_faces ORDER BY distance ASC, id ASC LIMIT 1`).
					WithArgs(pgxmock.AnyArg()).
					WillReturnRows(rows)
			},
			want: &domain.Match{EntryID: 7, Label: "alice", Distance: 0.05},
		},
		{
			name:      "empty gallery",
			embedding: []float64{0.1, 0.2, 0.3},
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT id, label, embedding <=> \$1 AS distance FROM gallery_faces ORDER BY distance ASC, id ASC LIMIT 1`).
					WithArgs(pgxmock.AnyArg()).
					WillReturnError(pgx.ErrNoRows)
			},
			wantErr: domain.ErrGalleryEmpty,
		},
		{
			name:      "dimension mismatch rejected",
			embedding: []float64{0.1},
			mockSetup: func(mock pgxmock.PgxPoolIface) {},
			wantErr:   domain.ErrEmbeddingDim,
		},
		{
			name:      "database error on query",
			embedding: []float64{0.1, 0.2, 0.3},
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT id, label, embedding <=> \$1 AS distance FROM gallery_faces ORDER BY distance ASC, id ASC LIMIT 1`).
					WithArgs(pgxmock.AnyArg()).
					WillReturnError(errors.New("timeout"))
			},
			wantErr: domain.ErrStoreUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.mockSetup(mock)

			repo := NewGalleryRepository(mock, 3)
			got, err := repo.Nearest(context.Background(), tt.embedding)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				require.NotNil(t, got)
				assert.Equal(t, tt.want.EntryID, got.EntryID)
				assert.Equal(t, tt.want.Label, got.Label)
				assert.InDelta(t, tt.want.Distance, got.Distance, 0.0001)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGalleryRepository_Count(t *testing.T) {
	tests := []struct {
		name      string
		mockSetup func(mock pgxmock.PgxPoolIface)
		want      int
		wantErr   error
	}{
		{
			name: "count returned",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows([]string{"count"}).AddRow(5)
				mock.ExpectQuery(`SELECT COUNT\(\*\) FROM gallery_faces`).
					WillReturnRows(rows)
			},
			want: 5,
		},
		{
			name: "database error",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT COUNT\(\*\) FROM gallery_faces`).
					WillReturnError(errors.New("connection lost"))
			},
			wantErr: domain.ErrStoreUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.mockSetup(mock)

			repo := NewGalleryRepository(mock, 3)
			got, err := repo.Count(context.Background())

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

// EventRepository Tests

func TestEventRepository_Append(t *testing.T) {
	now := time.Now()
	image := []byte("jpeg-bytes")

	tests := []struct {
		name      string
		mockSetup func(mock pgxmock.PgxPoolIface)
		wantErr   error
	}{
		{
			name: "successful append",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO detection_events`).
					WithArgs(pgxmock.AnyArg(), image, now).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
			wantErr: nil,
		},
		{
			name: "database error on append",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO detection_events`).
					WithArgs(pgxmock.AnyArg(), image, now).
					WillReturnError(errors.New("disk full"))
			},
			wantErr: domain.ErrStoreUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.mockSetup(mock)

			repo := NewEventRepository(mock)
			got, err := repo.Append(context.Background(), image, now)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				require.NotNil(t, got)
				assert.NotEqual(t, uuid.Nil, got.ID)
				assert.Equal(t, image, got.Image)
				assert.Equal(t, now, got.CreatedAt)
				assert.False(t, got.Read)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_ListUnread(t *testing.T) {
	olderID := uuid.New()
	newerID := uuid.New()
	older := time.Now().Add(-time.Minute)
	newer := time.Now()

	tests := []struct {
		name      string
		mockSetup func(mock pgxmock.PgxPoolIface)
		wantLen   int
		wantErr   error
	}{
		{
			name: "unread events newest first",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows([]string{"id", "image", "created_at"}).
					AddRow(newerID, []byte("frame-2"), newer).
					AddRow(olderID, []byte("frame-1"), older)

				mock.ExpectQuery(`WITH claimed AS \( UPDATE detection_events SET read = TRUE WHERE read = FALSE RETURNING id, image, created_at \) SELECT id, image, created_at FROM claimed ORDER BY created_at DESC`).
					WillReturnRows(rows)
			},
			wantLen: 2,
		},
		{
			name: "no unread events",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows([]string{"id", "image", "created_at"})
				mock.ExpectQuery(`WITH claimed AS`).
					WillReturnRows(rows)
			},
			wantLen: 0,
		},
		{
			name: "database error",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`WITH claimed AS`).
					WillReturnError(errors.New("connection refused"))
			},
			wantErr: domain.ErrStoreUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.mockSetup(mock)

			repo := NewEventRepository(mock)
			got, err := repo.ListUnread(context.Background())

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				assert.Len(t, got, tt.wantLen)
				if tt.wantLen == 2 {
					assert.Equal(t, newerID, got[0].ID)
					assert.Equal(t, olderID, got[1].ID)
					assert.True(t, got[0].Read)
					assert.True(t, got[1].Read)
				}
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_CountUnread(t *testing.T) {
	tests := []struct {
		name      string
		mockSetup func(mock pgxmock.PgxPoolIface)
		want      int
		wantErr   error
	}{
		{
			name: "pending count returned",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows([]string{"count"}).AddRow(3)
				mock.ExpectQuery(`SELECT COUNT\(\*\) FROM detection_events WHERE read = FALSE`).
					WillReturnRows(rows)
			},
			want: 3,
		},
		{
			name: "database error",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT COUNT\(\*\) FROM detection_events WHERE read = FALSE`).
					WillReturnError(errors.New("timeout"))
			},
			wantErr: domain.ErrStoreUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.mockSetup(mock)

			repo := NewEventRepository(mock)
			got, err := repo.CountUnread(context.Background())

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
