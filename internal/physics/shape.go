package physics

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrDegenerateShape is returned when a collision shape would be empty.
var ErrDegenerateShape = errors.New("degenerate collision shape")

// Shape is a collision shape in body space.
type Shape interface {
	// localBounds returns the body-space bounding box.
	localBounds() aabb
}

// SphereShape is a ball centred on the body origin.
type SphereShape struct {
	Radius float32
}

func (s *SphereShape) localBounds() aabb {
	r := mgl32.Vec3{s.Radius, s.Radius, s.Radius}
	return aabb{min: r.Mul(-1), max: r}
}

// MeshShape is a triangle soup used as-is for collision. Only dynamic
// spheres collide against it, so concave meshes are fine.
type MeshShape struct {
	triangles []triangle
	bounds    aabb
}

// NewMeshShape builds a mesh shape, dropping zero-area triangles. It fails
// when nothing is left.
func NewMeshShape(tris [][3]mgl32.Vec3) (*MeshShape, error) {
	s := &MeshShape{triangles: make([]triangle, 0, len(tris))}
	for _, t := range tris {
		tri, ok := newTriangle(t[0], t[1], t[2])
		if !ok {
			continue
		}
		s.triangles = append(s.triangles, tri)
	}
	if len(s.triangles) == 0 {
		return nil, fmt.Errorf("mesh shape from %d triangles: %w", len(tris), ErrDegenerateShape)
	}
	s.bounds = boundsOf(s.triangles)
	return s, nil
}

// TriangleCount returns the number of usable triangles.
func (s *MeshShape) TriangleCount() int {
	return len(s.triangles)
}

func (s *MeshShape) localBounds() aabb {
	return s.bounds
}

type triangle struct {
	a, b, c mgl32.Vec3
	normal  mgl32.Vec3
}

func newTriangle(a, b, c mgl32.Vec3) (triangle, bool) {
	n := b.Sub(a).Cross(c.Sub(a))
	l := n.Len()
	if l < 1e-9 {
		return triangle{}, false
	}
	return triangle{a: a, b: b, c: c, normal: n.Mul(1 / l)}, true
}

func (t triangle) transform(pos mgl32.Vec3, rot mgl32.Quat) triangle {
	return triangle{
		a:      pos.Add(rot.Rotate(t.a)),
		b:      pos.Add(rot.Rotate(t.b)),
		c:      pos.Add(rot.Rotate(t.c)),
		normal: rot.Rotate(t.normal),
	}
}

// closestPoint returns the point of the triangle nearest to p.
func (t triangle) closestPoint(p mgl32.Vec3) mgl32.Vec3 {
	ab := t.b.Sub(t.a)
	ac := t.c.Sub(t.a)
	ap := p.Sub(t.a)
	d1 := ab.Dot(ap)
	d2 := ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return t.a
	}

	bp := p.Sub(t.b)
	d3 := ab.Dot(bp)
	d4 := ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return t.b
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		return t.a.Add(ab.Mul(v))
	}

	cp := p.Sub(t.c)
	d5 := ab.Dot(cp)
	d6 := ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return t.c
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		return t.a.Add(ac.Mul(w))
	}

	va := d3*d6 - d5*d4
	if va <= 0 && d4-d3 >= 0 && d5-d6 >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return t.b.Add(t.c.Sub(t.b).Mul(w))
	}

	denom := 1 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	return t.a.Add(ab.Mul(v)).Add(ac.Mul(w))
}

type aabb struct {
	min, max mgl32.Vec3
}

func boundsOf(tris []triangle) aabb {
	if len(tris) == 0 {
		return aabb{}
	}
	b := aabb{min: tris[0].a, max: tris[0].a}
	for _, t := range tris {
		for _, p := range [3]mgl32.Vec3{t.a, t.b, t.c} {
			b = b.extend(p)
		}
	}
	return b
}

func (b aabb) extend(p mgl32.Vec3) aabb {
	for k := 0; k < 3; k++ {
		b.min[k] = min(b.min[k], p[k])
		b.max[k] = max(b.max[k], p[k])
	}
	return b
}

func (b aabb) translate(d mgl32.Vec3) aabb {
	return aabb{min: b.min.Add(d), max: b.max.Add(d)}
}

func (b aabb) overlaps(o aabb) bool {
	for k := 0; k < 3; k++ {
		if b.max[k] < o.min[k] || o.max[k] < b.min[k] {
			return false
		}
	}
	return true
}
