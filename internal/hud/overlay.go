// Package hud builds the debug overlay: frame timing plus simulation stats,
// rasterized into an image the renderer can draw as a single quad.
package hud

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/Faultbox/marble-maze/internal/sim"
)

// Text colours.
var (
	ColorText  = color.RGBA{230, 230, 230, 255}
	ColorDim   = color.RGBA{128, 128, 153, 255}
	ColorGood  = color.RGBA{51, 255, 51, 255}
	ColorWarn  = color.RGBA{255, 255, 51, 255}
	ColorBad   = color.RGBA{255, 51, 51, 255}
	ColorPanel = color.RGBA{20, 20, 31, 153}
)

// Padding is the gap between the panel edge and the text, in pixels.
const Padding = 6

// Line is one row of overlay text.
type Line struct {
	Text  string
	Color color.RGBA
}

// Overlay tracks frame timing and the latest simulation stats.
type Overlay struct {
	// Frame timing
	fps           float64
	frameTime     float64 // ms
	fpsUpdateTime float64 // seconds since last FPS update
	frameAccum    int

	stats sim.Stats

	Enabled bool
}

// NewOverlay creates an overlay, initially shown when enabled is set.
func NewOverlay(enabled bool) *Overlay {
	return &Overlay{Enabled: enabled}
}

// Toggle flips visibility and returns the new state.
func (o *Overlay) Toggle() bool {
	o.Enabled = !o.Enabled
	return o.Enabled
}

// Update accumulates frame timing. deltaMs is the frame time in milliseconds.
func (o *Overlay) Update(deltaMs float64) {
	o.frameTime = deltaMs
	o.frameAccum++
	o.fpsUpdateTime += deltaMs / 1000.0

	// Update FPS every 0.5 seconds
	if o.fpsUpdateTime >= 0.5 {
		o.fps = float64(o.frameAccum) / o.fpsUpdateTime
		o.frameAccum = 0
		o.fpsUpdateTime = 0
	}
}

// SetStats records the simulation state shown on the next Render.
func (o *Overlay) SetStats(s sim.Stats) {
	o.stats = s
}

// FPS returns the last measured frame rate.
func (o *Overlay) FPS() float64 {
	return o.fps
}

// Lines returns the overlay text, top to bottom.
func (o *Overlay) Lines() []Line {
	s := o.stats
	return []Line{
		{fmt.Sprintf("FPS: %.1f (%.2f ms)", o.fps, o.frameTime), fpsColor(o.fps)},
		{fmt.Sprintf("Tick: %d", s.Tick), ColorText},
		{fmt.Sprintf("Ball pos: %.2f, %.2f, %.2f", s.BallPosition[0], s.BallPosition[1], s.BallPosition[2]), ColorText},
		{fmt.Sprintf("Ball vel: %.2f, %.2f, %.2f", s.BallVelocity[0], s.BallVelocity[1], s.BallVelocity[2]), ColorText},
		{fmt.Sprintf("Tilt root Z: %.2f deg", s.RootTilt), ColorText},
		{fmt.Sprintf("Tilt container X: %.2f deg", s.ContainerTilt), ColorText},
		{fmt.Sprintf("Pre-step container: %s ball: %s", onOff(s.ContainerPreStep), onOff(s.BallPreStep)), ColorDim},
		{fmt.Sprintf("Triangles: %d", s.Triangles), ColorDim},
	}
}

// Render rasterizes the overlay text onto a transparent image. It returns
// nil while the overlay is hidden.
func (o *Overlay) Render() *image.RGBA {
	if !o.Enabled {
		return nil
	}
	return Rasterize(o.Lines())
}

// Rasterize draws lines with the built-in 7x13 face.
func Rasterize(lines []Line) *image.RGBA {
	face := basicfont.Face7x13
	lineHeight := face.Metrics().Height.Ceil()
	ascent := face.Metrics().Ascent.Ceil()

	width := 0
	for _, l := range lines {
		if w := font.MeasureString(face, l.Text).Ceil(); w > width {
			width = w
		}
	}
	img := image.NewRGBA(image.Rect(0, 0, width+2*Padding, len(lines)*lineHeight+2*Padding))

	d := &font.Drawer{Dst: img, Face: face}
	for i, l := range lines {
		d.Src = image.NewUniform(l.Color)
		d.Dot = fixed.P(Padding, Padding+ascent+i*lineHeight)
		d.DrawString(l.Text)
	}
	return img
}

func fpsColor(fps float64) color.RGBA {
	switch {
	case fps < 30:
		return ColorBad
	case fps < 60:
		return ColorWarn
	default:
		return ColorGood
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
