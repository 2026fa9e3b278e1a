// Package csg implements boolean operations on polygonal solids using BSP
// trees. Arithmetic is done in float64 so repeated subtractions from the same
// solid do not accumulate visible cracks.
package csg

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/marble-maze/internal/geom"
)

// Solid is a closed set of convex polygons.
type Solid struct {
	polygons []*Polygon
}

// FromPolygons wraps polygons in a solid without copying them.
func FromPolygons(polygons []*Polygon) *Solid {
	return &Solid{polygons: polygons}
}

// FromMesh converts every non-degenerate triangle of m into a polygon.
// Missing colours default to opaque white.
func FromMesh(m *geom.Mesh) *Solid {
	s := &Solid{polygons: make([]*Polygon, 0, m.TriangleCount())}
	for i := 0; i < m.TriangleCount(); i++ {
		verts := make([]Vertex, 3)
		for k := 0; k < 3; k++ {
			idx := m.Indices[i*3+k]
			v := Vertex{
				Pos:   vec3(m.Positions[idx]),
				Color: mgl64.Vec4{1, 1, 1, 1},
			}
			if int(idx) < len(m.Normals) {
				v.Normal = vec3(m.Normals[idx])
			}
			if int(idx) < len(m.Colors) {
				c := m.Colors[idx]
				v.Color = mgl64.Vec4{float64(c[0]), float64(c[1]), float64(c[2]), float64(c[3])}
			}
			verts[k] = v
		}
		if p := NewPolygon(verts); p != nil {
			s.polygons = append(s.polygons, p)
		}
	}
	return s
}

func vec3(v mgl32.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{float64(v[0]), float64(v[1]), float64(v[2])}
}

// Polygons returns the solid's polygons. The slice is shared.
func (s *Solid) Polygons() []*Polygon {
	return s.polygons
}

// Len returns the polygon count.
func (s *Solid) Len() int {
	return len(s.polygons)
}

func clonePolygons(polygons []*Polygon) []*Polygon {
	out := make([]*Polygon, len(polygons))
	for i, p := range polygons {
		out[i] = p.clone()
	}
	return out
}

// Subtract returns s - o.
func (s *Solid) Subtract(o *Solid) *Solid {
	a := newNode(clonePolygons(s.polygons))
	b := newNode(clonePolygons(o.polygons))
	a.invert()
	a.clipTo(b)
	b.clipTo(a)
	b.invert()
	b.clipTo(a)
	b.invert()
	a.build(b.allPolygons())
	a.invert()
	return FromPolygons(a.allPolygons())
}

// SubtractInPlace replaces s with s - o. o is left untouched.
func (s *Solid) SubtractInPlace(o *Solid) {
	s.polygons = s.Subtract(o).polygons
}

// ToMesh fan-triangulates every polygon into an indexed mesh. Vertices are
// not shared between polygons.
func (s *Solid) ToMesh(name string) *geom.Mesh {
	m := &geom.Mesh{Name: name}
	for _, p := range s.polygons {
		base := uint32(len(m.Positions))
		for _, v := range p.Vertices {
			m.Positions = append(m.Positions, mgl32.Vec3{float32(v.Pos[0]), float32(v.Pos[1]), float32(v.Pos[2])})
			n := v.Normal
			if l := n.Len(); l > Epsilon {
				n = n.Mul(1 / l)
			} else {
				n = p.Plane.Normal
			}
			m.Normals = append(m.Normals, mgl32.Vec3{float32(n[0]), float32(n[1]), float32(n[2])})
			m.Colors = append(m.Colors, mgl32.Vec4{float32(v.Color[0]), float32(v.Color[1]), float32(v.Color[2]), float32(v.Color[3])})
		}
		for i := 1; i+1 < len(p.Vertices); i++ {
			m.Indices = append(m.Indices, base, base+uint32(i), base+uint32(i+1))
		}
	}
	return m
}

// Volume returns the enclosed volume using the divergence theorem. The
// result stays exact when the boundary has T-junctions.
func (s *Solid) Volume() float64 {
	var v float64
	for _, p := range s.polygons {
		a := p.Vertices[0].Pos
		for i := 1; i+1 < len(p.Vertices); i++ {
			v += a.Dot(p.Vertices[i].Pos.Cross(p.Vertices[i+1].Pos))
		}
	}
	return v / 6
}

// Empty reports whether the solid has no polygons.
func (s *Solid) Empty() bool {
	return len(s.polygons) == 0
}
