// Package physics is a small rigid-body world: dynamic spheres rolling on
// animated or static triangle meshes.
package physics

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Config holds world parameters.
type Config struct {
	Gravity        mgl32.Vec3
	TimeStep       float32
	Restitution    float32
	Friction       float32
	AngularDamping float32
	// Bodies slower than SleepThreshold for SleepTime seconds go to sleep.
	SleepThreshold float32
	SleepTime      float32
	Iterations     int
}

// DefaultConfig returns a 60Hz world with earth-like gravity rounded to 10.
func DefaultConfig() Config {
	return Config{
		Gravity:        mgl32.Vec3{0, -10, 0},
		TimeStep:       1.0 / 60,
		Restitution:    0.2,
		Friction:       0.2,
		AngularDamping: 0.05,
		SleepThreshold: 0.02,
		SleepTime:      1,
		Iterations:     4,
	}
}

const (
	// allowed penetration before positional correction kicks in
	slop = 0.002
	// fraction of penetration removed per iteration
	correction = 0.8
	// closing speeds below this do not bounce
	bounceThreshold = 0.5
)

// World owns bodies and advances them in fixed steps.
type World struct {
	cfg    Config
	bodies []*Body
}

// NewWorld creates an empty world.
func NewWorld(cfg Config) *World {
	if cfg.Iterations <= 0 {
		cfg.Iterations = 1
	}
	return &World{cfg: cfg}
}

// Config returns the world parameters.
func (w *World) Config() Config { return w.cfg }

// AddBody inserts b. It pulls its initial pose from the anchor if set.
func (w *World) AddBody(b *Body) {
	if b.Anchor != nil {
		pos, rot := b.Anchor.WorldPose()
		b.SetPose(pos, rot)
	}
	w.bodies = append(w.bodies, b)
}

// Bodies returns the bodies in insertion order.
func (w *World) Bodies() []*Body {
	return w.bodies
}

// Step advances the world by one time step.
func (w *World) Step() {
	dt := w.cfg.TimeStep

	moved := w.preStep(dt)
	if moved {
		for _, b := range w.bodies {
			if b.Motion == MotionDynamic {
				b.Wake()
			}
		}
	}

	for _, b := range w.bodies {
		if b.Motion != MotionDynamic || b.sleeping {
			continue
		}
		accel := w.cfg.Gravity.Add(b.force.Mul(b.invMass))
		b.linearVelocity = b.linearVelocity.Add(accel.Mul(dt))
		b.angularVelocity = b.angularVelocity.Add(b.torque.Mul(b.invInertia * dt))
		b.angularVelocity = b.angularVelocity.Mul(1 / (1 + dt*w.cfg.AngularDamping))
	}

	for i := 0; i < w.cfg.Iterations; i++ {
		w.solveContacts()
	}

	for _, b := range w.bodies {
		if b.Motion != MotionDynamic || b.sleeping {
			continue
		}
		b.position = b.position.Add(b.linearVelocity.Mul(dt))
		b.rotation = integrateRotation(b.rotation, b.angularVelocity, dt)
		b.refresh()
		w.updateSleep(b, dt)
		if b.Anchor != nil {
			b.Anchor.SetWorldPose(b.position, b.rotation)
		}
	}

	for _, b := range w.bodies {
		b.force = mgl32.Vec3{}
		b.torque = mgl32.Vec3{}
	}
}

// preStep pulls anchor poses into bodies that allow it. Animated bodies get
// the velocity implied by the pose change so contacts carry it. It reports
// whether any animated body moved.
func (w *World) preStep(dt float32) bool {
	var moved bool
	for _, b := range w.bodies {
		if b.Motion == MotionAnimated {
			b.linearVelocity = mgl32.Vec3{}
			b.angularVelocity = mgl32.Vec3{}
		}
		if b.DisablePreStep || b.Anchor == nil {
			continue
		}
		pos, rot := b.Anchor.WorldPose()
		rot = rot.Normalize()
		if pos == b.position && rot == b.rotation {
			continue
		}
		switch b.Motion {
		case MotionAnimated:
			b.linearVelocity = pos.Sub(b.position).Mul(1 / dt)
			b.angularVelocity = angularDelta(b.rotation, rot, dt)
			moved = true
		case MotionDynamic:
			b.Wake()
		}
		b.position = pos
		b.rotation = rot
		b.refresh()
	}
	return moved
}

func (w *World) updateSleep(b *Body, dt float32) {
	if w.cfg.SleepThreshold <= 0 {
		return
	}
	if b.linearVelocity.Len() < w.cfg.SleepThreshold && b.angularVelocity.Len() < w.cfg.SleepThreshold {
		b.sleepTimer += dt
		if b.sleepTimer >= w.cfg.SleepTime {
			b.sleeping = true
			b.linearVelocity = mgl32.Vec3{}
			b.angularVelocity = mgl32.Vec3{}
		}
		return
	}
	b.sleepTimer = 0
}

func integrateRotation(q mgl32.Quat, w mgl32.Vec3, dt float32) mgl32.Quat {
	if w.Len() == 0 {
		return q
	}
	spin := mgl32.Quat{W: 0, V: w}.Mul(q).Scale(0.5 * dt)
	return q.Add(spin).Normalize()
}
