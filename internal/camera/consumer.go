// Package camera consome frames publicados pela camera de seguranca.
package camera

import (
	"context"
	"log/slog"
	"time"

	"github.com/saturnino-fabrica-de-software/vigia/internal/domain"
	"github.com/saturnino-fabrica-de-software/vigia/internal/ingest"
	"github.com/saturnino-fabrica-de-software/vigia/internal/pipeline"
)

// Engine is the slice of the pipeline the consumer drives.
type Engine interface {
	ProcessFrame(ctx context.Context, frame *domain.Frame) (*pipeline.FrameResult, error)
}

// Consumer turns broker payloads into processed frames. Every failure
// is logged and swallowed: a malformed frame or a flaky dependency must
// never take the subscription down.
type Consumer struct {
	engine  Engine
	frames  *ingest.FrameStore
	logger  *slog.Logger
	timeout time.Duration
}

func NewConsumer(engine Engine, frames *ingest.FrameStore, logger *slog.Logger, timeout time.Duration) *Consumer {
	return &Consumer{
		engine:  engine,
		frames:  frames,
		logger:  logger,
		timeout: timeout,
	}
}

// Handle processes one published payload. Matches mqtt.MessageHandler.
func (c *Consumer) Handle(topic string, payload []byte) {
	frame, err := ingest.Decode(payload, topic)
	if err != nil {
		c.logger.Warn("dropping undecodable frame",
			slog.String("topic", topic),
			slog.Int("payload_bytes", len(payload)),
			slog.Any("error", err),
		)
		return
	}

	if path, err := c.frames.Save(frame); err != nil {
		// Disk snapshot is best effort, the pipeline still runs.
		c.logger.Warn("frame snapshot failed",
			slog.String("topic", topic),
			slog.Any("error", err),
		)
	} else {
		c.logger.Debug("frame snapshot written", slog.String("path", path))
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	if _, err := c.engine.ProcessFrame(ctx, frame); err != nil {
		c.logger.Error("frame processing failed",
			slog.String("topic", topic),
			slog.Any("error", err),
		)
	}
}
