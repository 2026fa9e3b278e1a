package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// MotionType selects how a body moves.
type MotionType int

const (
	// MotionStatic bodies never move.
	MotionStatic MotionType = iota
	// MotionAnimated bodies follow their anchor and push dynamic bodies
	// but are not affected by them.
	MotionAnimated
	// MotionDynamic bodies are integrated under gravity, forces and contacts.
	MotionDynamic
)

func (m MotionType) String() string {
	switch m {
	case MotionStatic:
		return "static"
	case MotionAnimated:
		return "animated"
	case MotionDynamic:
		return "dynamic"
	default:
		return "unknown"
	}
}

// Anchor is the scene transform a body mirrors.
type Anchor interface {
	WorldPose() (mgl32.Vec3, mgl32.Quat)
	SetWorldPose(pos mgl32.Vec3, rot mgl32.Quat)
}

// Body is a rigid body.
type Body struct {
	Name   string
	Motion MotionType
	Shape  Shape
	Anchor Anchor

	// DisablePreStep stops the body from pulling its pose from Anchor before
	// each step. Bodies start with it set.
	DisablePreStep bool

	mass       float32
	invMass    float32
	invInertia float32

	position        mgl32.Vec3
	rotation        mgl32.Quat
	linearVelocity  mgl32.Vec3
	angularVelocity mgl32.Vec3

	force  mgl32.Vec3
	torque mgl32.Vec3

	sleeping   bool
	sleepTimer float32

	// world-space triangles for mesh shapes, valid for the current pose
	worldTris   []triangle
	worldBounds aabb
}

// NewBody creates a body at the origin. mass is ignored unless motion is
// MotionDynamic.
func NewBody(name string, motion MotionType, shape Shape, mass float32) *Body {
	b := &Body{
		Name:           name,
		Motion:         motion,
		Shape:          shape,
		DisablePreStep: true,
		rotation:       mgl32.QuatIdent(),
	}
	if motion == MotionDynamic && mass > 0 {
		b.mass = mass
		b.invMass = 1 / mass
		if s, ok := shape.(*SphereShape); ok && s.Radius > 0 {
			// solid sphere
			b.invInertia = 1 / (0.4 * mass * s.Radius * s.Radius)
		}
	}
	b.refresh()
	return b
}

// Mass returns the body's mass; zero for non-dynamic bodies.
func (b *Body) Mass() float32 { return b.mass }

// Position returns the world-space position.
func (b *Body) Position() mgl32.Vec3 { return b.position }

// Rotation returns the world-space rotation.
func (b *Body) Rotation() mgl32.Quat { return b.rotation }

// LinearVelocity returns the body's velocity.
func (b *Body) LinearVelocity() mgl32.Vec3 { return b.linearVelocity }

// AngularVelocity returns the body's angular velocity in radians/s.
func (b *Body) AngularVelocity() mgl32.Vec3 { return b.angularVelocity }

// Sleeping reports whether the body is resting.
func (b *Body) Sleeping() bool { return b.sleeping }

// SetPose teleports the body.
func (b *Body) SetPose(pos mgl32.Vec3, rot mgl32.Quat) {
	b.position = pos
	b.rotation = rot.Normalize()
	b.refresh()
	b.Wake()
}

// SetLinearVelocity overwrites the velocity.
func (b *Body) SetLinearVelocity(v mgl32.Vec3) {
	b.linearVelocity = v
	b.Wake()
}

// SetAngularVelocity overwrites the angular velocity.
func (b *Body) SetAngularVelocity(w mgl32.Vec3) {
	b.angularVelocity = w
	b.Wake()
}

// ApplyForce adds a force at a world-space point for the next step.
func (b *Body) ApplyForce(f, at mgl32.Vec3) {
	if b.Motion != MotionDynamic {
		return
	}
	b.force = b.force.Add(f)
	b.torque = b.torque.Add(at.Sub(b.position).Cross(f))
	b.Wake()
}

// ApplyImpulse changes momentum immediately.
func (b *Body) ApplyImpulse(j, at mgl32.Vec3) {
	if b.Motion != MotionDynamic {
		return
	}
	b.linearVelocity = b.linearVelocity.Add(j.Mul(b.invMass))
	b.angularVelocity = b.angularVelocity.Add(at.Sub(b.position).Cross(j).Mul(b.invInertia))
	b.Wake()
}

// Wake resets the sleep timer.
func (b *Body) Wake() {
	b.sleeping = false
	b.sleepTimer = 0
}

// refresh rebuilds the world-space collision cache.
func (b *Body) refresh() {
	switch s := b.Shape.(type) {
	case *MeshShape:
		if cap(b.worldTris) < len(s.triangles) {
			b.worldTris = make([]triangle, len(s.triangles))
		}
		b.worldTris = b.worldTris[:len(s.triangles)]
		for i, t := range s.triangles {
			b.worldTris[i] = t.transform(b.position, b.rotation)
		}
		b.worldBounds = boundsOf(b.worldTris)
	case *SphereShape:
		b.worldBounds = s.localBounds().translate(b.position)
	}
}

// pointVelocity is the velocity of the body material at world point p.
func (b *Body) pointVelocity(p mgl32.Vec3) mgl32.Vec3 {
	return b.linearVelocity.Add(b.angularVelocity.Cross(p.Sub(b.position)))
}

// angularDelta returns the angular velocity that turns from into to over dt.
func angularDelta(from, to mgl32.Quat, dt float32) mgl32.Vec3 {
	dq := to.Mul(from.Inverse()).Normalize()
	if dq.W < 0 {
		dq = dq.Scale(-1)
	}
	s := dq.V.Len()
	if s < 1e-7 {
		return mgl32.Vec3{}
	}
	angle := 2 * float32(math.Atan2(float64(s), float64(dq.W)))
	return dq.V.Mul(angle / (s * dt))
}
