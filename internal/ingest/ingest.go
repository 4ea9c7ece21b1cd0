// Package ingest turns raw camera payloads into decoded frames and
// handles the filesystem retention of the latest frame per source.
package ingest

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"os"
	"path/filepath"
	"regexp"
	"time"

	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/saturnino-fabrica-de-software/vigia/internal/domain"
)

// dataURIPrefix matches the `data:image/jpeg;base64,` style marker some
// cameras prepend to their Base64 payloads.
var dataURIPrefix = regexp.MustCompile(`^data:image/[a-zA-Z0-9.+-]+;base64,`)

var sourceSanitizer = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// Decode parses a camera payload into a Frame. The payload may be raw
// JPEG/PNG/WebP bytes or a Base64 string, optionally prefixed with a
// data-URI marker. Any failure is reported as domain.ErrInvalidImage;
// the caller drops the frame and logs.
func Decode(payload []byte, source string) (*domain.Frame, error) {
	data := bytes.TrimSpace(payload)
	if len(data) == 0 {
		return nil, domain.ErrInvalidImage.WithError(errors.New("empty payload"))
	}

	if m := dataURIPrefix.Find(data); m != nil {
		data = data[len(m):]
	}

	if !isRawImage(data) {
		decoded, err := base64.StdEncoding.DecodeString(string(stripWhitespace(data)))
		if err != nil {
			return nil, domain.ErrInvalidImage.WithError(fmt.Errorf("decode base64: %w", err))
		}
		data = decoded
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(fmt.Errorf("decode image: %w", err))
	}

	return &domain.Frame{
		Source:     source,
		Data:       data,
		Width:      cfg.Width,
		Height:     cfg.Height,
		ReceivedAt: time.Now(),
	}, nil
}

// CropRegion returns the face region of the frame re-encoded as JPEG.
// The crop is used both for embedding extraction and as the persisted
// event image. Degenerate or out-of-bounds regions are an error; the
// pipeline skips the region and continues with its siblings.
func CropRegion(frame *domain.Frame, region domain.FaceRegion) ([]byte, error) {
	if region.Width <= 0 || region.Height <= 0 {
		return nil, domain.ErrInvalidImage.WithError(errors.New("degenerate region"))
	}

	img, _, err := image.Decode(bytes.NewReader(frame.Data))
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(fmt.Errorf("decode frame: %w", err))
	}

	rect := image.Rect(region.X, region.Y, region.X+region.Width, region.Y+region.Height)
	rect = rect.Intersect(img.Bounds())
	if rect.Empty() {
		return nil, domain.ErrInvalidImage.WithError(errors.New("region outside frame bounds"))
	}

	var cropped image.Image
	if sub, ok := img.(interface {
		SubImage(image.Rectangle) image.Image
	}); ok {
		cropped = sub.SubImage(rect)
	} else {
		dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
		draw.Draw(dst, dst.Bounds(), img, rect.Min, draw.Src)
		cropped = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, cropped, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("encode crop: %w", err)
	}

	return buf.Bytes(), nil
}

// FrameStore persists the most recent frame per camera source under a
// fixed name, so continuous traffic never grows the directory.
type FrameStore struct {
	dir string
}

func NewFrameStore(dir string) (*FrameStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create frames dir: %w", err)
	}
	return &FrameStore{dir: dir}, nil
}

// Save writes the frame to `received_<source>.jpg`, overwriting the
// previous frame from the same source.
func (s *FrameStore) Save(frame *domain.Frame) (string, error) {
	source := sourceSanitizer.ReplaceAllString(frame.Source, "_")
	if source == "" {
		source = "camera"
	}

	path := filepath.Join(s.dir, fmt.Sprintf("received_%s.jpg", source))
	if err := os.WriteFile(path, frame.Data, 0o644); err != nil {
		return "", fmt.Errorf("save frame: %w", err)
	}

	return path, nil
}

func isRawImage(data []byte) bool {
	switch {
	case len(data) >= 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF: // JPEG
		return true
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")): // PNG
		return true
	case len(data) >= 12 && bytes.Equal(data[0:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return true
	}
	return false
}

func stripWhitespace(data []byte) []byte {
	return bytes.Map(func(r rune) rune {
		switch r {
		case ' ', '\n', '\r', '\t':
			return -1
		}
		return r
	}, data)
}
