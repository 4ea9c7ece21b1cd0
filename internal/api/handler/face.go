package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/vigia/internal/domain"
	"github.com/saturnino-fabrica-de-software/vigia/internal/ingest"
	"github.com/saturnino-fabrica-de-software/vigia/internal/pipeline"
)

const (
	maxImageSize = 10 * 1024 * 1024 // 10MB
)

// Enroller is the slice of the pipeline the handler needs.
type Enroller interface {
	Register(ctx context.Context, frame *domain.Frame, label string) (*pipeline.RegistrationResult, error)
}

// FaceHandler handles gallery enrollment requests
type FaceHandler struct {
	engine Enroller
	logger *slog.Logger
}

func NewFaceHandler(engine Enroller, logger *slog.Logger) *FaceHandler {
	return &FaceHandler{
		engine: engine,
		logger: logger,
	}
}

// RegisterResponse response for the enrollment endpoint
type RegisterResponse struct {
	Label         string  `json:"label"`
	FacesDetected int     `json:"faces_detected"`
	FacesEnrolled int     `json:"faces_enrolled"`
	EntryIDs      []int64 `json:"entry_ids"`
}

// Register POST /v1/faces - enroll a reference photo
func (h *FaceHandler) Register(c *fiber.Ctx) error {
	file, err := c.FormFile("image")
	if err != nil {
		return domain.ErrNoImageSelected.WithError(err)
	}

	if strings.TrimSpace(file.Filename) == "" {
		return domain.ErrEmptyFilename
	}

	if file.Size == 0 || file.Size > maxImageSize {
		return domain.ErrInvalidImage.WithError(errors.New("image size out of bounds"))
	}

	f, err := file.Open()
	if err != nil {
		return domain.ErrInvalidImage.WithError(err)
	}
	defer func() {
		_ = f.Close()
	}()

	imageBytes, err := io.ReadAll(f)
	if err != nil {
		return domain.ErrInvalidImage.WithError(err)
	}

	// The explicit label wins; otherwise the upload filename names the
	// person, matching how reference photos are usually organized.
	label := strings.TrimSpace(c.FormValue("label"))
	if label == "" {
		label = labelFromFilename(file.Filename)
	}
	if label == "" {
		return domain.ErrEmptyLabel
	}

	frame, err := ingest.Decode(imageBytes, "upload")
	if err != nil {
		return err
	}

	result, err := h.engine.Register(c.Context(), frame, label)
	if err != nil {
		return err
	}

	h.logger.Info("reference photo enrolled",
		slog.String("label", result.Label),
		slog.Int("faces_enrolled", result.FacesEnrolled),
	)

	return c.Status(fiber.StatusCreated).JSON(RegisterResponse{
		Label:         result.Label,
		FacesDetected: result.FacesDetected,
		FacesEnrolled: result.FacesEnrolled,
		EntryIDs:      result.EntryIDs,
	})
}

func labelFromFilename(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSpace(strings.TrimSuffix(base, filepath.Ext(base)))
}
