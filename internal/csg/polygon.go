package csg

import "github.com/go-gl/mathgl/mgl64"

// Epsilon is the plane thickness used to classify points as coplanar.
const Epsilon = 1e-5

// Vertex is a polygon corner. Normal and Color are interpolated when a
// polygon is split.
type Vertex struct {
	Pos    mgl64.Vec3
	Normal mgl64.Vec3
	Color  mgl64.Vec4
}

func (v Vertex) flip() Vertex {
	v.Normal = v.Normal.Mul(-1)
	return v
}

func (v Vertex) interpolate(o Vertex, t float64) Vertex {
	return Vertex{
		Pos:    v.Pos.Add(o.Pos.Sub(v.Pos).Mul(t)),
		Normal: v.Normal.Add(o.Normal.Sub(v.Normal).Mul(t)),
		Color:  v.Color.Add(o.Color.Sub(v.Color).Mul(t)),
	}
}

// Plane is n.x = w.
type Plane struct {
	Normal mgl64.Vec3
	W      float64
}

// planeFromPoints returns the plane through a, b, c with counter-clockwise
// winding facing the normal. ok is false for degenerate triangles.
func planeFromPoints(a, b, c mgl64.Vec3) (p Plane, ok bool) {
	n := b.Sub(a).Cross(c.Sub(a))
	l := n.Len()
	if l < Epsilon*Epsilon {
		return Plane{}, false
	}
	n = n.Mul(1 / l)
	return Plane{Normal: n, W: n.Dot(a)}, true
}

func (p Plane) flipped() Plane {
	return Plane{Normal: p.Normal.Mul(-1), W: -p.W}
}

const (
	coplanar = 0
	front    = 1
	back     = 2
	spanning = 3
)

// splitPolygon sorts poly into the four lists relative to p, cutting it in
// two when it spans the plane. Pieces keep the parent's plane.
func (p Plane) splitPolygon(poly *Polygon, coplanarFront, coplanarBack, fronts, backs *[]*Polygon) {
	var polygonType int
	types := make([]int, len(poly.Vertices))
	for i, v := range poly.Vertices {
		t := p.Normal.Dot(v.Pos) - p.W
		typ := coplanar
		if t < -Epsilon {
			typ = back
		} else if t > Epsilon {
			typ = front
		}
		polygonType |= typ
		types[i] = typ
	}

	switch polygonType {
	case coplanar:
		if p.Normal.Dot(poly.Plane.Normal) > 0 {
			*coplanarFront = append(*coplanarFront, poly)
		} else {
			*coplanarBack = append(*coplanarBack, poly)
		}
	case front:
		*fronts = append(*fronts, poly)
	case back:
		*backs = append(*backs, poly)
	case spanning:
		var f, b []Vertex
		n := len(poly.Vertices)
		for i := 0; i < n; i++ {
			j := (i + 1) % n
			ti, tj := types[i], types[j]
			vi, vj := poly.Vertices[i], poly.Vertices[j]
			if ti != back {
				f = append(f, vi)
			}
			if ti != front {
				b = append(b, vi)
			}
			if ti|tj == spanning {
				t := (p.W - p.Normal.Dot(vi.Pos)) / p.Normal.Dot(vj.Pos.Sub(vi.Pos))
				v := vi.interpolate(vj, t)
				f = append(f, v)
				b = append(b, v)
			}
		}
		if len(f) >= 3 {
			*fronts = append(*fronts, &Polygon{Vertices: f, Plane: poly.Plane})
		}
		if len(b) >= 3 {
			*backs = append(*backs, &Polygon{Vertices: b, Plane: poly.Plane})
		}
	}
}

// Polygon is a convex planar polygon.
type Polygon struct {
	Vertices []Vertex
	Plane    Plane
}

// NewPolygon builds a polygon from convex, coplanar vertices. It returns nil
// when the first three vertices are degenerate.
func NewPolygon(vertices []Vertex) *Polygon {
	if len(vertices) < 3 {
		return nil
	}
	plane, ok := planeFromPoints(vertices[0].Pos, vertices[1].Pos, vertices[2].Pos)
	if !ok {
		return nil
	}
	return &Polygon{Vertices: vertices, Plane: plane}
}

func (p *Polygon) clone() *Polygon {
	return &Polygon{Vertices: append([]Vertex(nil), p.Vertices...), Plane: p.Plane}
}

func (p *Polygon) flip() {
	n := len(p.Vertices)
	for i := 0; i < n/2; i++ {
		p.Vertices[i], p.Vertices[n-1-i] = p.Vertices[n-1-i], p.Vertices[i]
	}
	for i := range p.Vertices {
		p.Vertices[i] = p.Vertices[i].flip()
	}
	p.Plane = p.Plane.flipped()
}
