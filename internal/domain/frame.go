package domain

import (
	"time"
)

// Frame representa uma imagem decodificada consumida pelo pipeline.
// Transient: created on ingestion, discarded after processing unless an
// Unknown classification persists the crop as an event image.
type Frame struct {
	Source     string
	Data       []byte
	Width      int
	Height     int
	ReceivedAt time.Time
}

// FaceRegion is a bounding box inside a Frame. Derived, never persisted.
type FaceRegion struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// MeetsMinSize reports whether the region is at least minSize pixels in
// both dimensions. Smaller detections are discarded as noise; the filter
// is strict, not advisory.
func (r FaceRegion) MeetsMinSize(minSize int) bool {
	return r.Width >= minSize && r.Height >= minSize
}

// Classification is the terminal outcome for one detected face region.
type Classification string

const (
	ClassificationKnown   Classification = "known"
	ClassificationUnknown Classification = "unknown"
)
