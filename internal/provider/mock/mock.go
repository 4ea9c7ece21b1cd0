// Package mock implementa provider.Detector e provider.Embedder para
// testes e desenvolvimento sem OpenCV nem serviço de embeddings.
package mock

import (
	"context"
	"crypto/sha256"
	"math"

	"github.com/saturnino-fabrica-de-software/vigia/internal/domain"
	"github.com/saturnino-fabrica-de-software/vigia/internal/provider"
)

const embeddingDimension = 768

// Provider fakes both capabilities. Detection reports a single centered
// face on any payload of plausible size; embeddings are deterministic
// functions of the image bytes, so the same crop always matches itself.
type Provider struct{}

func New() *Provider {
	return &Provider{}
}

// Detect simula detecção: uma face centralizada por imagem.
func (p *Provider) Detect(ctx context.Context, image []byte) ([]domain.FaceRegion, error) {
	if len(image) < 100 {
		return nil, domain.ErrInvalidImage
	}

	return []domain.FaceRegion{
		{X: 50, Y: 50, Width: 100, Height: 100},
	}, nil
}

// Embed gera embedding determinístico baseado no hash da imagem.
func (p *Provider) Embed(ctx context.Context, faceImage []byte) ([]float64, error) {
	if len(faceImage) == 0 {
		return nil, domain.ErrInvalidImage
	}

	return generateEmbedding(faceImage), nil
}

func generateEmbedding(image []byte) []float64 {
	hash := sha256.Sum256(image)
	embedding := make([]float64, embeddingDimension)
	hashLen := len(hash)

	for i := 0; i < embeddingDimension; i++ {
		idx := i % hashLen
		embedding[i] = (float64(hash[idx])/255.0)*2 - 1
	}

	norm := 0.0
	for _, v := range embedding {
		norm += v * v
	}
	norm = math.Sqrt(norm)

	for i := range embedding {
		embedding[i] /= norm
	}

	return embedding
}

var (
	_ provider.Detector = (*Provider)(nil)
	_ provider.Embedder = (*Provider)(nil)
)
