package sim

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Stats is a read-only view of the simulation for the debug overlay.
type Stats struct {
	Tick         uint64
	BallPosition mgl32.Vec3
	BallVelocity mgl32.Vec3
	// Tilt angles in degrees: root about Z, container about X.
	RootTilt      float32
	ContainerTilt float32
	// Pre-step flags are true while the body follows its node.
	ContainerPreStep bool
	BallPreStep      bool
	Triangles        int
}

// Stats returns the current state.
func (s *Simulation) Stats() Stats {
	return Stats{
		Tick:             s.tick,
		BallPosition:     s.BallBody.Position(),
		BallVelocity:     s.BallBody.LinearVelocity(),
		RootTilt:         tiltDegrees(s.Root.Rotation, 2),
		ContainerTilt:    tiltDegrees(s.ContainerNode.Rotation, 0),
		ContainerPreStep: !s.ContainerBody.DisablePreStep,
		BallPreStep:      !s.BallBody.DisablePreStep,
		Triangles:        s.Container.Static.TriangleCount(),
	}
}

// tiltDegrees is the rotation angle of a single-axis quaternion.
func tiltDegrees(q mgl32.Quat, axis int) float32 {
	return mgl32.RadToDeg(float32(2 * math.Atan2(float64(q.V[axis]), float64(q.W))))
}
