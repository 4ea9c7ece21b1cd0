// Package pipeline liga deteccao, extracao e matching em um fluxo so.
// The engine is transport-agnostic: MQTT frames and HTTP uploads both
// land here, carrying only a decoded Frame.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/vigia/internal/domain"
	"github.com/saturnino-fabrica-de-software/vigia/internal/ingest"
	"github.com/saturnino-fabrica-de-software/vigia/internal/provider"
	"github.com/saturnino-fabrica-de-software/vigia/internal/repository"
)

// Notifier pushes a live signal when an unknown face is recorded.
// Implementations must not block: a slow listener cannot stall the
// pipeline.
type Notifier interface {
	NotifyUnknown(event *domain.DetectionEvent)
}

// Config holds the matching knobs.
type Config struct {
	// Threshold is the cosine distance at or below which the nearest
	// gallery entry counts as a known match.
	Threshold float64
	// MinSize discards detected regions smaller than this in either
	// dimension.
	MinSize int
}

// Engine runs the frame pipeline: detect, filter, crop, embed, match,
// classify. One frame at a time per caller; the engine itself holds no
// mutable state and is safe for concurrent use.
type Engine struct {
	detector provider.Detector
	embedder provider.Embedder
	gallery  repository.GalleryRepositoryInterface
	events   repository.EventRepositoryInterface
	notifier Notifier
	logger   *slog.Logger
	cfg      Config
}

func NewEngine(
	detector provider.Detector,
	embedder provider.Embedder,
	gallery repository.GalleryRepositoryInterface,
	events repository.EventRepositoryInterface,
	notifier Notifier,
	logger *slog.Logger,
	cfg Config,
) *Engine {
	return &Engine{
		detector: detector,
		embedder: embedder,
		gallery:  gallery,
		events:   events,
		notifier: notifier,
		logger:   logger,
		cfg:      cfg,
	}
}

// RegionOutcome is the terminal result for one detected face region.
type RegionOutcome struct {
	Region         domain.FaceRegion     `json:"region"`
	Classification domain.Classification `json:"classification,omitempty"`
	Match          *domain.Match         `json:"match,omitempty"`
	EventID        *uuid.UUID            `json:"event_id,omitempty"`
	Skipped        bool                  `json:"skipped,omitempty"`
}

// FrameResult summarizes one processed frame.
type FrameResult struct {
	Source        string          `json:"source"`
	FacesDetected int             `json:"faces_detected"`
	FacesFiltered int             `json:"faces_filtered"`
	Outcomes      []RegionOutcome `json:"outcomes"`
}

// ProcessFrame classifies every face in the frame. Per-region extraction
// failures skip that region and keep going; a failing gallery or event
// store aborts the whole frame so no partial classification is reported
// as complete.
func (e *Engine) ProcessFrame(ctx context.Context, frame *domain.Frame) (*FrameResult, error) {
	regions, err := e.detector.Detect(ctx, frame.Data)
	if err != nil {
		return nil, fmt.Errorf("detect faces: %w", err)
	}

	result := &FrameResult{
		Source:        frame.Source,
		FacesDetected: len(regions),
	}

	if len(regions) == 0 {
		e.logger.Debug("no faces in frame", slog.String("source", frame.Source))
		return result, nil
	}

	for _, region := range regions {
		if !region.MeetsMinSize(e.cfg.MinSize) {
			result.FacesFiltered++
			continue
		}

		outcome, err := e.classifyRegion(ctx, frame, region)
		if err != nil {
			return nil, err
		}
		result.Outcomes = append(result.Outcomes, *outcome)
	}

	e.logger.Info("frame processed",
		slog.String("source", frame.Source),
		slog.Int("faces_detected", result.FacesDetected),
		slog.Int("faces_filtered", result.FacesFiltered),
	)

	return result, nil
}

// classifyRegion runs one region to its terminal state. A nil error with
// Skipped set means extraction failed and the region was abandoned
// without affecting its siblings.
func (e *Engine) classifyRegion(ctx context.Context, frame *domain.Frame, region domain.FaceRegion) (*RegionOutcome, error) {
	outcome := &RegionOutcome{Region: region}

	crop, err := ingest.CropRegion(frame, region)
	if err != nil {
		e.logger.Warn("crop failed, skipping region",
			slog.String("source", frame.Source),
			slog.Any("error", err),
		)
		outcome.Skipped = true
		return outcome, nil
	}

	embedding, err := e.embedder.Embed(ctx, crop)
	if err != nil {
		e.logger.Warn("embedding failed, skipping region",
			slog.String("source", frame.Source),
			slog.Any("error", err),
		)
		outcome.Skipped = true
		return outcome, nil
	}

	match, err := e.gallery.Nearest(ctx, embedding)
	switch {
	case errors.Is(err, domain.ErrGalleryEmpty):
		// Nothing enrolled yet, every face is a stranger.
		match = nil
	case err != nil:
		return nil, fmt.Errorf("match region: %w", err)
	}

	if match != nil && match.Distance <= e.cfg.Threshold {
		outcome.Classification = domain.ClassificationKnown
		outcome.Match = match
		e.logger.Info("known face",
			slog.String("source", frame.Source),
			slog.String("label", match.Label),
			slog.Float64("distance", match.Distance),
		)
		return outcome, nil
	}

	outcome.Classification = domain.ClassificationUnknown
	outcome.Match = match

	event, err := e.events.Append(ctx, crop, frame.ReceivedAt)
	if err != nil {
		return nil, fmt.Errorf("record unknown face: %w", err)
	}
	outcome.EventID = &event.ID

	if e.notifier != nil {
		e.notifier.NotifyUnknown(event)
	}

	e.logger.Info("unknown face recorded",
		slog.String("source", frame.Source),
		slog.String("event_id", event.ID.String()),
	)

	return outcome, nil
}

// RegistrationResult reports an enrollment.
type RegistrationResult struct {
	Label         string  `json:"label"`
	FacesDetected int     `json:"faces_detected"`
	FacesEnrolled int     `json:"faces_enrolled"`
	EntryIDs      []int64 `json:"entry_ids"`
}

// Register enrolls every usable face in the frame under the given
// label. An image with no detectable face is rejected, enrolling a
// reference photo must never silently store nothing.
func (e *Engine) Register(ctx context.Context, frame *domain.Frame, label string) (*RegistrationResult, error) {
	if label == "" {
		return nil, domain.ErrEmptyLabel
	}

	regions, err := e.detector.Detect(ctx, frame.Data)
	if err != nil {
		return nil, fmt.Errorf("detect faces: %w", err)
	}

	var usable []domain.FaceRegion
	for _, region := range regions {
		if region.MeetsMinSize(e.cfg.MinSize) {
			usable = append(usable, region)
		}
	}
	if len(usable) == 0 {
		return nil, domain.ErrNoFaceDetected
	}

	result := &RegistrationResult{
		Label:         label,
		FacesDetected: len(regions),
	}

	for _, region := range usable {
		crop, err := ingest.CropRegion(frame, region)
		if err != nil {
			e.logger.Warn("crop failed during enrollment", slog.Any("error", err))
			continue
		}

		embedding, err := e.embedder.Embed(ctx, crop)
		if err != nil {
			e.logger.Warn("embedding failed during enrollment", slog.Any("error", err))
			continue
		}

		entry, err := e.gallery.Register(ctx, label, embedding)
		if err != nil {
			return nil, fmt.Errorf("enroll face: %w", err)
		}

		result.FacesEnrolled++
		result.EntryIDs = append(result.EntryIDs, entry.ID)
	}

	if result.FacesEnrolled == 0 {
		return nil, domain.ErrInternal.WithError(
			errors.New("no detected face could be enrolled"))
	}

	e.logger.Info("faces enrolled",
		slog.String("label", label),
		slog.Int("faces_detected", result.FacesDetected),
		slog.Int("faces_enrolled", result.FacesEnrolled),
	)

	return result, nil
}
