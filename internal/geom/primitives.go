package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Default tessellation levels for round primitives.
const (
	DefaultCylinderTessellation = 24
	DefaultSphereSegments       = 32
)

var white = mgl32.Vec4{1, 1, 1, 1}

// boxFaces lists each face normal with two in-plane axes where u x v = n,
// so corners emitted in (-u-v, +u-v, +u+v, -u+v) order wind counter-clockwise
// seen from outside.
var boxFaces = [6][3]mgl32.Vec3{
	{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
	{{-1, 0, 0}, {0, 0, 1}, {0, 1, 0}},
	{{0, 1, 0}, {0, 0, 1}, {1, 0, 0}},
	{{0, -1, 0}, {1, 0, 0}, {0, 0, 1}},
	{{0, 0, 1}, {1, 0, 0}, {0, 1, 0}},
	{{0, 0, -1}, {0, 1, 0}, {1, 0, 0}},
}

// NewBox builds an axis-aligned box centred at the origin with 24 vertices
// (four per face, so faces keep hard normals).
func NewBox(name string, width, height, depth float32) *Mesh {
	half := mgl32.Vec3{width / 2, height / 2, depth / 2}
	m := &Mesh{Name: name}

	for _, f := range boxFaces {
		n, u, v := f[0], f[1], f[2]
		base := uint32(len(m.Positions))
		for _, s := range [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
			dir := n.Add(u.Mul(s[0])).Add(v.Mul(s[1]))
			m.Positions = append(m.Positions, mgl32.Vec3{dir[0] * half[0], dir[1] * half[1], dir[2] * half[2]})
			m.Normals = append(m.Normals, n)
			m.Colors = append(m.Colors, white)
		}
		m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return m
}

// NewCylinder builds a capped cylinder along Y centred at the origin.
func NewCylinder(name string, diameter, height float32, tessellation int) *Mesh {
	if tessellation < 3 {
		tessellation = DefaultCylinderTessellation
	}
	r := diameter / 2
	top, bottom := height/2, -height/2
	m := &Mesh{Name: name}

	ring := make([]mgl32.Vec2, tessellation)
	for i := range ring {
		theta := 2 * math.Pi * float64(i) / float64(tessellation)
		ring[i] = mgl32.Vec2{float32(math.Cos(theta)), float32(math.Sin(theta))}
	}

	// Side: two vertices per ring step, smooth normals.
	for _, c := range ring {
		n := mgl32.Vec3{c[0], 0, c[1]}
		m.Positions = append(m.Positions, mgl32.Vec3{c[0] * r, bottom, c[1] * r}, mgl32.Vec3{c[0] * r, top, c[1] * r})
		m.Normals = append(m.Normals, n, n)
		m.Colors = append(m.Colors, white, white)
	}
	for i := 0; i < tessellation; i++ {
		j := (i + 1) % tessellation
		b0, t0 := uint32(2*i), uint32(2*i+1)
		b1, t1 := uint32(2*j), uint32(2*j+1)
		m.Indices = append(m.Indices, b0, t0, t1, b0, t1, b1)
	}

	// Caps as triangle fans around a centre vertex.
	for _, lid := range []struct {
		y float32
		n mgl32.Vec3
	}{{top, mgl32.Vec3{0, 1, 0}}, {bottom, mgl32.Vec3{0, -1, 0}}} {
		center := uint32(len(m.Positions))
		m.Positions = append(m.Positions, mgl32.Vec3{0, lid.y, 0})
		m.Normals = append(m.Normals, lid.n)
		m.Colors = append(m.Colors, white)
		for _, c := range ring {
			m.Positions = append(m.Positions, mgl32.Vec3{c[0] * r, lid.y, c[1] * r})
			m.Normals = append(m.Normals, lid.n)
			m.Colors = append(m.Colors, white)
		}
		for i := 0; i < tessellation; i++ {
			a := center + 1 + uint32(i)
			b := center + 1 + uint32((i+1)%tessellation)
			if lid.n[1] > 0 {
				m.Indices = append(m.Indices, center, b, a)
			} else {
				m.Indices = append(m.Indices, center, a, b)
			}
		}
	}
	return m
}

// NewSphere builds a UV sphere centred at the origin. segments is the number
// of latitude bands; longitude uses twice as many.
func NewSphere(name string, diameter float32, segments int) *Mesh {
	if segments < 2 {
		segments = DefaultSphereSegments
	}
	r := diameter / 2
	lonSegs := segments * 2
	m := &Mesh{Name: name}

	for lat := 0; lat <= segments; lat++ {
		phi := math.Pi * float64(lat) / float64(segments)
		sinPhi, cosPhi := math.Sincos(phi)
		for lon := 0; lon <= lonSegs; lon++ {
			theta := 2 * math.Pi * float64(lon) / float64(lonSegs)
			sinTheta, cosTheta := math.Sincos(theta)
			n := mgl32.Vec3{float32(sinPhi * cosTheta), float32(cosPhi), float32(sinPhi * sinTheta)}
			m.Positions = append(m.Positions, n.Mul(r))
			m.Normals = append(m.Normals, n)
			m.Colors = append(m.Colors, white)
		}
	}

	row := uint32(lonSegs + 1)
	for lat := 0; lat < segments; lat++ {
		for lon := 0; lon < lonSegs; lon++ {
			a := uint32(lat)*row + uint32(lon)
			b := a + row
			c := b + 1
			d := a + 1
			if lat != 0 {
				m.Indices = append(m.Indices, a, d, b)
			}
			if lat != segments-1 {
				m.Indices = append(m.Indices, d, c, b)
			}
		}
	}
	return m
}
