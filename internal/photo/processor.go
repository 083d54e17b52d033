// Package photo turns raw uploaded images into the fixed-size square JPEGs
// the photo directories hold, and parses the capture timestamp back out of
// their filenames.
package photo

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"github.com/kshore/metbook/internal/metrics"
)

// timestampLayout is the capture-time token embedded in every processed
// filename: <label>_<YYYYMMDD_HHMMSS>.jpg.
const timestampLayout = "20060102_150405"

// allowedExts are the accepted upload types.
var allowedExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// Processor writes deterministically-named, square-cropped, fixed-resolution
// JPEG files under a single directory. Two uploads for the same label within
// the same second collide and overwrite; accepted for a single-operator tool.
type Processor struct {
	dir    string
	size   int
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Processor.
type Option func(*Processor)

// WithClock overrides the clock used for filename timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) { p.now = now }
}

// NewProcessor creates a Processor writing size x size JPEGs under dir.
func NewProcessor(dir string, size int, logger *slog.Logger, opts ...Option) *Processor {
	p := &Processor{
		dir:    dir,
		size:   size,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ValidateInput checks that srcPath exists and has an accepted extension.
// It performs no processing, so callers can validate a whole batch before
// committing to any side effect.
func (p *Processor) ValidateInput(srcPath string) error {
	ext := strings.ToLower(filepath.Ext(srcPath))
	if !allowedExts[ext] {
		return fmt.Errorf("unsupported image type %q (want jpg, jpeg or png)", ext)
	}
	if _, err := os.Stat(srcPath); err != nil {
		return fmt.Errorf("reading %s: %w", srcPath, err)
	}
	return nil
}

// Process center-crops the image at srcPath to the largest square that fits,
// resizes it to the target resolution, and writes it as a JPEG named after
// label and the current time. It returns the written path.
func (p *Processor) Process(srcPath, label string) (string, error) {
	if err := p.ValidateInput(srcPath); err != nil {
		return "", fmt.Errorf("process: %w", err)
	}

	img, err := imaging.Open(srcPath, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("process: decoding %s: %w", srcPath, err)
	}

	side := img.Bounds().Dx()
	if h := img.Bounds().Dy(); h < side {
		side = h
	}
	img = imaging.CropCenter(img, side, side)
	img = imaging.Resize(img, p.size, p.size, imaging.Lanczos)

	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return "", fmt.Errorf("process: creating %s: %w", p.dir, err)
	}

	name := fmt.Sprintf("%s_%s.jpg", SanitizeLabel(label), p.now().Format(timestampLayout))
	dst := filepath.Join(p.dir, name)
	if err := imaging.Save(img, dst, imaging.JPEGQuality(90)); err != nil {
		return "", fmt.Errorf("process: encoding %s: %w", dst, err)
	}

	metrics.Inc(metrics.PhotosProcessed)
	p.logger.Debug("photo processed", "src", srcPath, "dst", dst, "size", p.size)
	return dst, nil
}

// SanitizeLabel makes a person or event name safe as a filename component.
// Path separators and NUL bytes are replaced rather than rejected, so names
// like "A/B Testing Meetup" stay usable.
func SanitizeLabel(label string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', 0:
			return '-'
		}
		return r
	}, label)
}

// TimestampOf parses the trailing _YYYYMMDD_HHMMSS token out of a processed
// filename. Malformed names return the zero time so they sort oldest instead
// of breaking recency sorts.
func TimestampOf(path string) time.Time {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	parts := strings.Split(base, "_")
	if len(parts) < 2 {
		return time.Time{}
	}
	token := parts[len(parts)-2] + "_" + parts[len(parts)-1]
	t, err := time.Parse(timestampLayout, token)
	if err != nil {
		return time.Time{}
	}
	return t
}
