package domain

import (
	"time"
)

// GalleryEntry is one labeled reference embedding. Labels are not unique:
// the gallery is a multiset, several entries may share a label so a known
// person can be enrolled from multiple reference images.
type GalleryEntry struct {
	ID        int64     `json:"id"`
	Label     string    `json:"label"`
	Embedding []float64 `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// Match is the nearest gallery entry for a query embedding, under cosine
// distance. Ties are broken by insertion order (lowest entry ID wins).
type Match struct {
	EntryID  int64   `json:"entry_id"`
	Label    string  `json:"label"`
	Distance float64 `json:"distance"`
}
