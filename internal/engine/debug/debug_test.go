package debug

import (
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/marble-maze/internal/geom"
)

func TestFlipRGBA(t *testing.T) {
	// Two rows, bottom row red, top row blue.
	pixels := []byte{
		255, 0, 0, 255, 255, 0, 0, 255,
		0, 0, 255, 255, 0, 0, 255, 255,
	}
	img, err := FlipRGBA(pixels, 2, 2)
	if err != nil {
		t.Fatalf("FlipRGBA: %v", err)
	}
	if got := img.RGBAAt(0, 0); got != (color.RGBA{0, 0, 255, 255}) {
		t.Errorf("top-left = %v, want blue", got)
	}
	if got := img.RGBAAt(1, 1); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("bottom-right = %v, want red", got)
	}
}

func TestFlipRGBASizeMismatch(t *testing.T) {
	tests := []struct {
		name    string
		n, w, h int
	}{
		{"short", 15, 2, 2},
		{"long", 17, 2, 2},
		{"zero width", 0, 0, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FlipRGBA(make([]byte, tt.n), tt.w, tt.h); err == nil {
				t.Error("expected size mismatch error")
			}
		})
	}
}

func TestCaptureFromPixels(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	sc := NewScreenshotCapture(dir, "marble")
	sc.now = func() time.Time { return time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC) }

	pixels := make([]byte, 4*3*4)
	for i := range pixels {
		pixels[i] = 200
	}
	path, err := sc.CaptureFromPixels(pixels, 4, 3)
	if err != nil {
		t.Fatalf("CaptureFromPixels: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("saved to %s, want directory %s", path, dir)
	}
	if !strings.HasPrefix(filepath.Base(path), "marble_2024-05-01_12-30-00") {
		t.Errorf("unexpected filename %s", filepath.Base(path))
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 4 || b.Dy() != 3 {
		t.Errorf("image size %v, want 4x3", b.Size())
	}
}

func TestAxisLines(t *testing.T) {
	lines := AxisLines(2)
	if len(lines) != 6*LineStride {
		t.Fatalf("got %d floats, want %d", len(lines), 6*LineStride)
	}
	ends := []mgl32.Vec3{{2, 0, 0}, {0, 2, 0}, {0, 0, 2}}
	colors := []mgl32.Vec3{AxisXColor, AxisYColor, AxisZColor}
	for i := range ends {
		start := lines[(2*i)*LineStride:]
		end := lines[(2*i+1)*LineStride:]
		if (mgl32.Vec3{start[0], start[1], start[2]}) != (mgl32.Vec3{}) {
			t.Errorf("axis %d does not start at the origin", i)
		}
		if got := (mgl32.Vec3{end[0], end[1], end[2]}); got != ends[i] {
			t.Errorf("axis %d ends at %v, want %v", i, got, ends[i])
		}
		if got := (mgl32.Vec3{end[3], end[4], end[5]}); got != colors[i] {
			t.Errorf("axis %d colour %v, want %v", i, got, colors[i])
		}
	}
}

func TestBoundsLines(t *testing.T) {
	b := geom.Bounds{Min: mgl32.Vec3{-1, -2, -3}, Max: mgl32.Vec3{1, 2, 3}}
	lines := BoundsLines(b, mgl32.Vec3{1, 1, 0})
	if len(lines) != 24*LineStride {
		t.Fatalf("got %d floats, want %d", len(lines), 24*LineStride)
	}
	for v := 0; v < 24; v++ {
		p := lines[v*LineStride:]
		for k := 0; k < 3; k++ {
			if p[k] != b.Min[k] && p[k] != b.Max[k] {
				t.Fatalf("vertex %d component %d = %v is not on the box", v, k, p[k])
			}
		}
	}
	// Every edge changes exactly one coordinate.
	for e := 0; e < 12; e++ {
		a := lines[(2*e)*LineStride:]
		c := lines[(2*e+1)*LineStride:]
		changed := 0
		for k := 0; k < 3; k++ {
			if a[k] != c[k] {
				changed++
			}
		}
		if changed != 1 {
			t.Errorf("edge %d changes %d coordinates", e, changed)
		}
	}
}
