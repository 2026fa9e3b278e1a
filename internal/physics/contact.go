package physics

import "github.com/go-gl/mathgl/mgl32"

// contact is a touching point between a dynamic sphere and another body.
// normal points from the other body towards the sphere.
type contact struct {
	sphere *Body
	other  *Body
	point  mgl32.Vec3
	normal mgl32.Vec3
	depth  float32
}

func (w *World) solveContacts() {
	for i, b := range w.bodies {
		s, ok := b.Shape.(*SphereShape)
		if !ok || b.Motion != MotionDynamic || b.sleeping {
			continue
		}
		for j, o := range w.bodies {
			if i == j {
				continue
			}
			switch shape := o.Shape.(type) {
			case *MeshShape:
				w.sphereMesh(b, s.Radius, o)
			case *SphereShape:
				// each dynamic pair once
				if o.Motion == MotionDynamic && j < i {
					continue
				}
				w.sphereSphere(b, s.Radius, o, shape.Radius)
			}
		}
	}
}

func (w *World) sphereMesh(b *Body, r float32, o *Body) {
	if !b.worldBounds.overlaps(o.worldBounds) {
		return
	}
	for _, t := range o.worldTris {
		c := t.closestPoint(b.position)
		d := b.position.Sub(c)
		dist := d.Len()
		if dist >= r {
			continue
		}
		n := t.normal
		if dist > 1e-6 {
			n = d.Mul(1 / dist)
		} else if n.Dot(d) < 0 {
			n = n.Mul(-1)
		}
		w.resolve(contact{sphere: b, other: o, point: c, normal: n, depth: r - dist})
		b.refresh()
	}
}

func (w *World) sphereSphere(b *Body, rb float32, o *Body, ro float32) {
	d := b.position.Sub(o.position)
	dist := d.Len()
	if dist >= rb+ro || dist < 1e-6 {
		return
	}
	n := d.Mul(1 / dist)
	c := o.position.Add(n.Mul(ro))
	w.resolve(contact{sphere: b, other: o, point: c, normal: n, depth: rb + ro - dist})
	b.refresh()
	o.refresh()
}

// resolve applies a normal impulse with restitution, a friction impulse
// bounded by the normal one, and pushes the sphere out of penetration.
func (w *World) resolve(c contact) {
	b, o := c.sphere, c.other
	otherDynamic := o.Motion == MotionDynamic

	rb := c.point.Sub(b.position)
	ro := c.point.Sub(o.position)
	vrel := b.pointVelocity(c.point).Sub(o.pointVelocity(c.point))
	vn := vrel.Dot(c.normal)

	invMass := b.invMass
	if otherDynamic {
		invMass += o.invMass
		o.Wake()
	}

	if vn < 0 && invMass > 0 {
		e := w.cfg.Restitution
		if -vn < bounceThreshold {
			e = 0
		}
		jn := -(1 + e) * vn / invMass
		impulse := c.normal.Mul(jn)
		b.linearVelocity = b.linearVelocity.Add(impulse.Mul(b.invMass))
		if otherDynamic {
			o.linearVelocity = o.linearVelocity.Sub(impulse.Mul(o.invMass))
		}

		// friction
		vrel = b.pointVelocity(c.point).Sub(o.pointVelocity(c.point))
		vt := vrel.Sub(c.normal.Mul(vrel.Dot(c.normal)))
		if speed := vt.Len(); speed > 1e-6 {
			t := vt.Mul(1 / speed)
			k := b.invMass + rb.Cross(t).LenSqr()*b.invInertia
			if otherDynamic {
				k += o.invMass + ro.Cross(t).LenSqr()*o.invInertia
			}
			jt := speed / k
			if limit := w.cfg.Friction * jn; jt > limit {
				jt = limit
			}
			ft := t.Mul(-jt)
			b.linearVelocity = b.linearVelocity.Add(ft.Mul(b.invMass))
			b.angularVelocity = b.angularVelocity.Add(rb.Cross(ft).Mul(b.invInertia))
			if otherDynamic {
				o.linearVelocity = o.linearVelocity.Sub(ft.Mul(o.invMass))
				o.angularVelocity = o.angularVelocity.Sub(ro.Cross(ft).Mul(o.invInertia))
			}
		}
	}

	if c.depth > slop {
		push := c.normal.Mul((c.depth - slop) * correction)
		if otherDynamic {
			b.position = b.position.Add(push.Mul(0.5))
			o.position = o.position.Sub(push.Mul(0.5))
		} else {
			b.position = b.position.Add(push)
		}
	}
}
