package face

import (
	"fmt"

	"github.com/saturnino-fabrica-de-software/vigia/internal/config"
	"github.com/saturnino-fabrica-de-software/vigia/internal/provider"
	"github.com/saturnino-fabrica-de-software/vigia/internal/provider/haar"
	"github.com/saturnino-fabrica-de-software/vigia/internal/provider/imgbed"
	"github.com/saturnino-fabrica-de-software/vigia/internal/provider/mock"
)

// ProviderType defines supported face capability stacks
type ProviderType string

const (
	// ProviderTypeHaar pairs the OpenCV Haar cascade detector with the
	// HTTP embedding service (the production stack)
	ProviderTypeHaar ProviderType = "haar"
	// ProviderTypeMock is the deterministic in-memory stack for dev/test
	ProviderTypeMock ProviderType = "mock"
)

// NewProviders creates the Detector and Embedder pair selected by
// configuration.
//
// Environment variables:
//   - FACE_PROVIDER: "haar" or "mock" (default: "haar")
//   - CASCADE_PATH: Haar cascade XML path
//   - EMBEDDER_URL: embedding service base URL
func NewProviders(cfg *config.Config) (provider.Detector, provider.Embedder, error) {
	providerType := ProviderType(cfg.FaceProvider)

	switch providerType {
	case ProviderTypeHaar, "":
		detector, err := haar.New(haar.Config{
			CascadePath:  cfg.CascadePath,
			ScaleFactor:  cfg.ScaleFactor,
			MinNeighbors: cfg.MinNeighbors,
			MinSize:      cfg.MinSize,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("create haar detector: %w", err)
		}

		embedder := imgbed.NewClient(imgbed.Config{
			BaseURL:    cfg.EmbedderURL,
			RetryCount: imgbed.DefaultConfig().RetryCount,
		})

		return detector, embedder, nil

	case ProviderTypeMock:
		m := mock.New()
		return m, m, nil

	default:
		return nil, nil, fmt.Errorf("unknown provider type: %s (supported: %s, %s)",
			cfg.FaceProvider, ProviderTypeHaar, ProviderTypeMock)
	}
}
