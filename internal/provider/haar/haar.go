// Package haar implements provider.Detector using an OpenCV Haar
// cascade classifier, the same frontal-face cascade the camera firmware
// ships with.
package haar

import (
	"context"
	"fmt"
	"image"
	"os"
	"sort"
	"sync"

	"gocv.io/x/gocv"

	"github.com/saturnino-fabrica-de-software/vigia/internal/domain"
)

// Config tunes the cascade search. ScaleFactor is the image pyramid
// downscale step, MinNeighbors how many overlapping detections confirm
// a region, MinSize the smallest bounding box (pixels, both dimensions)
// accepted by the cascade itself.
type Config struct {
	CascadePath  string
	ScaleFactor  float64
	MinNeighbors int
	MinSize      int
}

// DefaultConfig mirrors the tuning the reference camera setup uses.
func DefaultConfig() Config {
	return Config{
		CascadePath:  "haarcascade_frontalface_default.xml",
		ScaleFactor:  1.05,
		MinNeighbors: 5,
		MinSize:      50,
	}
}

// Detector wraps a gocv CascadeClassifier. The classifier is not
// thread-safe, so inference is serialized.
type Detector struct {
	classifier gocv.CascadeClassifier
	config     Config
	mu         sync.Mutex
}

// New loads the cascade file and returns a ready Detector.
func New(config Config) (*Detector, error) {
	if _, err := os.Stat(config.CascadePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("cascade file not found: %s", config.CascadePath)
	}

	if config.ScaleFactor <= 1.0 {
		return nil, fmt.Errorf("scale factor must be > 1.0, got %v", config.ScaleFactor)
	}

	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(config.CascadePath) {
		_ = classifier.Close()
		return nil, fmt.Errorf("failed to load cascade: %s", config.CascadePath)
	}

	return &Detector{
		classifier: classifier,
		config:     config,
	}, nil
}

// Detect decodes the image, converts it to grayscale and runs the
// cascade. Results are sorted top-to-bottom, left-to-right so identical
// input always yields the same region order.
func (d *Detector) Detect(ctx context.Context, imageBytes []byte) ([]domain.FaceRegion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	img, err := gocv.IMDecode(imageBytes, gocv.IMReadColor)
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(fmt.Errorf("decode image: %w", err))
	}
	defer func() {
		_ = img.Close()
	}()

	if img.Empty() {
		return nil, domain.ErrInvalidImage.WithError(fmt.Errorf("decoded image is empty"))
	}

	gray := gocv.NewMat()
	defer func() {
		_ = gray.Close()
	}()

	if err := gocv.CvtColor(img, &gray, gocv.ColorBGRToGray); err != nil {
		return nil, fmt.Errorf("convert to grayscale: %w", err)
	}

	minSize := image.Pt(d.config.MinSize, d.config.MinSize)
	rects := d.classifier.DetectMultiScaleWithParams(
		gray,
		d.config.ScaleFactor,
		d.config.MinNeighbors,
		0,
		minSize,
		image.Pt(0, 0),
	)

	regions := make([]domain.FaceRegion, 0, len(rects))
	for _, r := range rects {
		regions = append(regions, domain.FaceRegion{
			X:      r.Min.X,
			Y:      r.Min.Y,
			Width:  r.Dx(),
			Height: r.Dy(),
		})
	}

	sort.Slice(regions, func(i, j int) bool {
		if regions[i].Y != regions[j].Y {
			return regions[i].Y < regions[j].Y
		}
		return regions[i].X < regions[j].X
	})

	return regions, nil
}

// Close releases the underlying classifier.
func (d *Detector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.classifier.Close()
}
