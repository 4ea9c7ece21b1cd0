// Package provider define as interfaces de capacidade do pipeline:
// detecção de faces e extração de embeddings. Implementations live in
// subpackages (haar, imgbed, mock) and are injected into the pipeline.
package provider

import (
	"context"

	"github.com/saturnino-fabrica-de-software/vigia/internal/domain"
)

// Detector finds face bounding boxes in an encoded image. The returned
// regions are raw detections; the pipeline applies the strict minimum
// size filter. Given identical pixel data and configuration the same
// regions must be returned, in a stable order.
type Detector interface {
	Detect(ctx context.Context, image []byte) ([]domain.FaceRegion, error)
}

// Embedder extracts a fixed-dimension embedding from one cropped face
// image. It is called once per valid region, never once per frame.
type Embedder interface {
	Embed(ctx context.Context, faceImage []byte) ([]float64, error)
}
