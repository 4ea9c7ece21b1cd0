package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Server
	Port        int    `envconfig:"PORT" default:"3000"`
	Environment string `envconfig:"ENV" default:"development"`

	// Database
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// Camera intake (MQTT)
	MQTTBroker   string `envconfig:"MQTT_BROKER" default:"tcp://127.0.0.1:1884"`
	MQTTTopic    string `envconfig:"MQTT_TOPIC" default:"home/security/camera"`
	MQTTClientID string `envconfig:"MQTT_CLIENT_ID" default:"vigia"`

	// Face provider
	FaceProvider string `envconfig:"FACE_PROVIDER" default:"haar"`
	CascadePath  string `envconfig:"CASCADE_PATH" default:"haarcascade_frontalface_default.xml"`
	EmbedderURL  string `envconfig:"EMBEDDER_URL" default:"http://localhost:5005"`
	EmbeddingDim int    `envconfig:"EMBEDDING_DIM" default:"768"`

	// Detector tuning
	ScaleFactor  float64 `envconfig:"DETECTOR_SCALE_FACTOR" default:"1.05"`
	MinNeighbors int     `envconfig:"DETECTOR_MIN_NEIGHBORS" default:"5"`
	MinSize      int     `envconfig:"DETECTOR_MIN_SIZE" default:"50"`

	// Classification
	MatchThreshold float64 `envconfig:"MATCH_THRESHOLD" default:"0.17"`

	// Frame retention
	FramesDir string `envconfig:"FRAMES_DIR" default:"./uploads"`

	// Bound on one frame's detect/embed/match cycle
	ProcessTimeout time.Duration `envconfig:"PROCESS_TIMEOUT" default:"30s"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	// envconfig accepts a present-but-empty required variable; an empty
	// DSN is as unusable as a missing one.
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("load config: DATABASE_URL must not be empty")
	}
	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
