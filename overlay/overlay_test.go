package overlay

import (
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
)

func TestDraw(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 20, 10))
	out := Draw(img, []image.Rectangle{image.Rect(2, 2, 8, 6)}, LineColor, 1)

	if out.Bounds() != image.Rect(0, 0, 20, 10) {
		t.Fatalf("unexpected bounds %v", out.Bounds())
	}
	if got := out.NRGBAAt(2, 2); got != LineColor {
		t.Errorf("Expected outline at (2,2), got %v", got)
	}
	if got := out.NRGBAAt(7, 5); got != LineColor {
		t.Errorf("Expected outline at (7,5), got %v", got)
	}
	if got := out.NRGBAAt(4, 4); got == LineColor {
		t.Error("interior should not be painted")
	}
	if img.Pix[2*img.Stride+2] != 0 {
		t.Error("Draw modified its input")
	}
}

func TestDrawOffsetImage(t *testing.T) {
	base := image.NewGray(image.Rect(0, 0, 30, 30))
	sub := base.SubImage(image.Rect(10, 10, 30, 30))

	out := Draw(sub, []image.Rectangle{image.Rect(10, 10, 15, 15)}, LineColor, 1)
	if got := out.NRGBAAt(0, 0); got != LineColor {
		t.Errorf("Expected outline at the sub-image origin, got %v", got)
	}
}

func TestRecorder(t *testing.T) {
	var rec Recorder
	rects := []image.Rectangle{image.Rect(0, 0, 1, 1)}
	img := image.NewGray(image.Rect(0, 0, 4, 3))

	if err := rec.Show(context.Background(), "lines", img, rects); err != nil {
		t.Fatalf("Show failed: %v", err)
	}
	rects[0] = image.Rect(5, 5, 6, 6)

	shots := rec.Shots()
	if len(shots) != 1 {
		t.Fatalf("Expected 1 shot, got %d", len(shots))
	}
	if shots[0].Name != "lines" || shots[0].Bounds != img.Rect {
		t.Errorf("unexpected shot %+v", shots[0])
	}
	if shots[0].Rects[0] != image.Rect(0, 0, 1, 1) {
		t.Error("Recorder should copy the rectangles it receives")
	}
}

func TestNop(t *testing.T) {
	var s Sink = Nop{}
	if err := s.Show(context.Background(), "x", nil, nil); err != nil {
		t.Errorf("Nop returned %v", err)
	}
}

type failingSink struct{ err error }

func (f failingSink) Show(context.Context, string, image.Image, []image.Rectangle) error {
	return f.err
}

func TestMulti(t *testing.T) {
	var a, b Recorder
	boom := errors.New("boom")
	img := image.NewGray(image.Rect(0, 0, 2, 2))

	m := Multi{&a, failingSink{boom}, &b}
	if err := m.Show(context.Background(), "lines", img, nil); !errors.Is(err, boom) {
		t.Errorf("Expected the sink error, got %v", err)
	}
	if len(a.Shots()) != 1 || len(b.Shots()) != 1 {
		t.Error("every sink should receive the call despite a failure")
	}
	if err := (Multi{}).Show(context.Background(), "x", img, nil); err != nil {
		t.Errorf("empty Multi returned %v", err)
	}
}

func TestPNGSink(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "debug")
	sink := NewPNGSink(dir)
	img := image.NewGray(image.Rect(0, 0, 16, 12))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := sink.Show(ctx, "Detected Table Lines", img, []image.Rectangle{image.Rect(1, 1, 10, 10)}); err != nil {
			t.Fatalf("Show failed: %v", err)
		}
	}

	for _, name := range []string{"detected-table-lines-1.png", "detected-table-lines-2.png"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("Expected %s to exist: %v", name, err)
		}
		saved, err := imaging.Open(path)
		if err != nil {
			t.Fatalf("failed to reopen %s: %v", name, err)
		}
		if saved.Bounds().Dx() != 16 || saved.Bounds().Dy() != 12 {
			t.Errorf("unexpected saved size %v", saved.Bounds())
		}
	}

	if err := sink.Show(ctx, "nil", nil, nil); err == nil {
		t.Error("Expected error for nil image")
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if err := sink.Show(cancelled, "late", img, nil); err == nil {
		t.Error("Expected error for cancelled context")
	}
}
