// Package geom provides indexed triangle meshes and primitive builders.
package geom

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrInvalidMesh is returned by Validate for inconsistent vertex data.
var ErrInvalidMesh = errors.New("invalid mesh")

// Mesh is an indexed triangle list with per-vertex normals and RGBA colours.
// Positions are in the mesh's own space until Transform bakes a placement in.
type Mesh struct {
	Name      string
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	Colors    []mgl32.Vec4
	Indices   []uint32
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min, Max mgl32.Vec3
}

// Center returns the middle of the box.
func (b Bounds) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the box extent on each axis.
func (b Bounds) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// SetColor paints every vertex with c.
func (m *Mesh) SetColor(c mgl32.Vec4) {
	if len(m.Colors) != len(m.Positions) {
		m.Colors = make([]mgl32.Vec4, len(m.Positions))
	}
	for i := range m.Colors {
		m.Colors[i] = c
	}
}

// Transform bakes the affine matrix into positions and normals.
func (m *Mesh) Transform(mat mgl32.Mat4) {
	normalMat := mat.Mat3().Inv().Transpose()
	for i, p := range m.Positions {
		m.Positions[i] = mgl32.TransformCoordinate(p, mat)
	}
	for i, n := range m.Normals {
		m.Normals[i] = normalMat.Mul3x1(n).Normalize()
	}
}

// Triangle returns the three corners of triangle i.
func (m *Mesh) Triangle(i int) [3]mgl32.Vec3 {
	return [3]mgl32.Vec3{
		m.Positions[m.Indices[i*3]],
		m.Positions[m.Indices[i*3+1]],
		m.Positions[m.Indices[i*3+2]],
	}
}

// Triangles returns the mesh as a triangle soup.
func (m *Mesh) Triangles() [][3]mgl32.Vec3 {
	tris := make([][3]mgl32.Vec3, m.TriangleCount())
	for i := range tris {
		tris[i] = m.Triangle(i)
	}
	return tris
}

// Bounds returns the axis-aligned bounds of all vertices.
func (m *Mesh) Bounds() Bounds {
	if len(m.Positions) == 0 {
		return Bounds{}
	}
	b := Bounds{Min: m.Positions[0], Max: m.Positions[0]}
	for _, p := range m.Positions[1:] {
		for k := 0; k < 3; k++ {
			b.Min[k] = min(b.Min[k], p[k])
			b.Max[k] = max(b.Max[k], p[k])
		}
	}
	return b
}

// Validate checks that attribute arrays line up and indices are in range.
func (m *Mesh) Validate() error {
	n := len(m.Positions)
	if n == 0 || len(m.Indices) == 0 {
		return fmt.Errorf("%s: empty: %w", m.Name, ErrInvalidMesh)
	}
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("%s: %d indices is not a triangle list: %w", m.Name, len(m.Indices), ErrInvalidMesh)
	}
	if len(m.Normals) != n || len(m.Colors) != n {
		return fmt.Errorf("%s: %d positions, %d normals, %d colors: %w",
			m.Name, n, len(m.Normals), len(m.Colors), ErrInvalidMesh)
	}
	for _, idx := range m.Indices {
		if int(idx) >= n {
			return fmt.Errorf("%s: index %d out of range: %w", m.Name, idx, ErrInvalidMesh)
		}
	}
	return nil
}

// Merge concatenates meshes into a new one, in order. Vertex data is copied
// as-is; coincident vertices are not welded.
func Merge(name string, meshes ...*Mesh) *Mesh {
	out := &Mesh{Name: name}
	for _, m := range meshes {
		if m == nil {
			continue
		}
		base := uint32(len(out.Positions))
		out.Positions = append(out.Positions, m.Positions...)
		out.Normals = append(out.Normals, m.Normals...)
		if len(m.Colors) == len(m.Positions) {
			out.Colors = append(out.Colors, m.Colors...)
		} else {
			for range m.Positions {
				out.Colors = append(out.Colors, mgl32.Vec4{1, 1, 1, 1})
			}
		}
		for _, idx := range m.Indices {
			out.Indices = append(out.Indices, base+idx)
		}
	}
	return out
}

// Interleaved packs vertices as position(3) normal(3) color(4) for upload.
func (m *Mesh) Interleaved() []float32 {
	out := make([]float32, 0, len(m.Positions)*VertexStride)
	for i, p := range m.Positions {
		n := m.Normals[i]
		c := m.Colors[i]
		out = append(out, p[0], p[1], p[2], n[0], n[1], n[2], c[0], c[1], c[2], c[3])
	}
	return out
}

// VertexStride is the number of float32 values per interleaved vertex.
const VertexStride = 10

// Volume returns the signed volume enclosed by the triangles. It is only
// meaningful for closed, consistently wound meshes; positive means outward
// facing triangles.
func (m *Mesh) Volume() float32 {
	var v float64
	for i := 0; i < m.TriangleCount(); i++ {
		t := m.Triangle(i)
		v += float64(t[0].Dot(t[1].Cross(t[2])))
	}
	return float32(v / 6)
}
