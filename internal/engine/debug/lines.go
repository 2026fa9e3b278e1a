package debug

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/marble-maze/internal/geom"
)

// LineStride is the float count of one line vertex: position(3) colour(3).
const LineStride = 6

var (
	AxisXColor = mgl32.Vec3{1, 0, 0}
	AxisYColor = mgl32.Vec3{0, 1, 0}
	AxisZColor = mgl32.Vec3{0, 0, 1}
)

// AxisLines returns three lines of the given length from the origin along
// +X (red), +Y (green) and +Z (blue).
func AxisLines(size float32) []float32 {
	out := make([]float32, 0, 6*LineStride)
	out = appendLine(out, mgl32.Vec3{}, mgl32.Vec3{size, 0, 0}, AxisXColor)
	out = appendLine(out, mgl32.Vec3{}, mgl32.Vec3{0, size, 0}, AxisYColor)
	out = appendLine(out, mgl32.Vec3{}, mgl32.Vec3{0, 0, size}, AxisZColor)
	return out
}

// BoundsLines returns the 12 edges of a box as a line list.
func BoundsLines(b geom.Bounds, color mgl32.Vec3) []float32 {
	lo, hi := b.Min, b.Max
	c := [8]mgl32.Vec3{
		{lo[0], lo[1], lo[2]}, {hi[0], lo[1], lo[2]}, {hi[0], lo[1], hi[2]}, {lo[0], lo[1], hi[2]},
		{lo[0], hi[1], lo[2]}, {hi[0], hi[1], lo[2]}, {hi[0], hi[1], hi[2]}, {lo[0], hi[1], hi[2]},
	}
	edges := [12][2]int{
		{0, 1}, {1, 2}, {2, 3}, {3, 0}, // bottom
		{4, 5}, {5, 6}, {6, 7}, {7, 4}, // top
		{0, 4}, {1, 5}, {2, 6}, {3, 7}, // vertical
	}
	out := make([]float32, 0, 24*LineStride)
	for _, e := range edges {
		out = appendLine(out, c[e[0]], c[e[1]], color)
	}
	return out
}

func appendLine(out []float32, a, b, color mgl32.Vec3) []float32 {
	return append(out,
		a[0], a[1], a[2], color[0], color[1], color[2],
		b[0], b[1], b[2], color[0], color[1], color[2],
	)
}
