package overlay

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
)

// PNGSink writes each diagnostic image with its rectangles outlined to
// <Dir>/<name>-<n>.png, where n counts calls per name starting at 1.
type PNGSink struct {
	Dir       string
	Thickness int

	mu     sync.Mutex
	counts map[string]int
}

// NewPNGSink creates a sink writing into dir
func NewPNGSink(dir string) *PNGSink {
	return &PNGSink{Dir: dir, Thickness: 2}
}

// Show implements Sink
func (s *PNGSink) Show(ctx context.Context, name string, img image.Image, rects []image.Rectangle) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if img == nil {
		return fmt.Errorf("overlay %q: nil image", name)
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create debug directory: %w", err)
	}

	path := filepath.Join(s.Dir, fmt.Sprintf("%s-%d.png", fileName(name), s.next(name)))
	if err := imaging.Save(Draw(img, rects, LineColor, s.Thickness), path); err != nil {
		return fmt.Errorf("failed to save overlay: %w", err)
	}
	return nil
}

func (s *PNGSink) next(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.counts == nil {
		s.counts = make(map[string]int)
	}
	s.counts[name]++
	return s.counts[name]
}

// fileName turns a display name into a safe file name stem
func fileName(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" {
		return "overlay"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, name)
}
