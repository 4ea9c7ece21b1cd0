package face

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/vigia/internal/config"
	"github.com/saturnino-fabrica-de-software/vigia/internal/provider/mock"
)

func TestNewProviders_Mock(t *testing.T) {
	cfg := &config.Config{FaceProvider: "mock"}

	detector, embedder, err := NewProviders(cfg)
	require.NoError(t, err)

	assert.IsType(t, &mock.Provider{}, detector)
	assert.IsType(t, &mock.Provider{}, embedder)
}

func TestNewProviders_UnknownType(t *testing.T) {
	cfg := &config.Config{FaceProvider: "clairvoyance"}

	_, _, err := NewProviders(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown provider type")
}

func TestNewProviders_HaarMissingCascade(t *testing.T) {
	cfg := &config.Config{
		FaceProvider: "haar",
		CascadePath:  "/does/not/exist.xml",
		ScaleFactor:  1.05,
		MinNeighbors: 5,
		MinSize:      50,
	}

	_, _, err := NewProviders(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cascade file not found")
}
