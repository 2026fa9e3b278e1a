// Package camera provides camera implementations for 3D rendering.
//
// Camera placement uses the level's left-handed convention: +Z points away
// from a camera looking down the default forward axis and +X is to its
// right. View folds a Z mirror into the matrix so OpenGL's right-handed
// clip space sees the scene the same way.
package camera

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"
)

// Mirror flips Z, mapping left-handed level space to right-handed GL space.
var Mirror = mgl32.Scale3D(1, 1, -1)

// maxPitch keeps the look direction off the poles.
const maxPitch = gomath.Pi/2 - 0.01

// FreeCamera is a fly camera steered with yaw and pitch.
type FreeCamera struct {
	Position mgl32.Vec3

	// Yaw turns around +Y, zero looking down +Z. Positive pitch looks down.
	Yaw   float32
	Pitch float32

	FOV  float32 // vertical, radians
	Near float32
	Far  float32

	MoveSpeed       float32 // units per second
	LookSensitivity float32 // radians per pixel
}

// NewFreeCamera creates a camera at position looking at target.
func NewFreeCamera(position, target mgl32.Vec3) *FreeCamera {
	c := &FreeCamera{
		Position:        position,
		FOV:             0.8,
		Near:            0.1,
		Far:             1000,
		MoveSpeed:       10,
		LookSensitivity: 0.004,
	}
	c.LookAt(target)
	return c
}

// LookAt turns the camera towards target. A target at the camera position
// leaves the orientation unchanged.
func (c *FreeCamera) LookAt(target mgl32.Vec3) {
	d := target.Sub(c.Position)
	if d.Len() < 1e-6 {
		return
	}
	d = d.Normalize()
	c.Yaw = float32(gomath.Atan2(float64(d[0]), float64(d[2])))
	c.Pitch = clampPitch(float32(gomath.Asin(float64(-d[1]))))
}

// Forward returns the unit look direction.
func (c *FreeCamera) Forward() mgl32.Vec3 {
	sy, cy := gomath.Sincos(float64(c.Yaw))
	sp, cp := gomath.Sincos(float64(c.Pitch))
	return mgl32.Vec3{float32(sy * cp), float32(-sp), float32(cy * cp)}
}

// Right returns the horizontal unit vector to the camera's right.
func (c *FreeCamera) Right() mgl32.Vec3 {
	sy, cy := gomath.Sincos(float64(c.Yaw))
	return mgl32.Vec3{float32(cy), 0, float32(-sy)}
}

// View returns the view matrix, including the Z mirror.
func (c *FreeCamera) View() mgl32.Mat4 {
	eye := mgl32.TransformCoordinate(c.Position, Mirror)
	center := mgl32.TransformCoordinate(c.Position.Add(c.Forward()), Mirror)
	return mgl32.LookAtV(eye, center, mgl32.Vec3{0, 1, 0}).Mul4(Mirror)
}

// Projection returns a perspective projection for the given aspect ratio.
func (c *FreeCamera) Projection(aspect float32) mgl32.Mat4 {
	return mgl32.Perspective(c.FOV, aspect, c.Near, c.Far)
}

// Move translates the camera along its look axes. forward and right are
// in [-1, 1]; dt is seconds.
func (c *FreeCamera) Move(forward, right, dt float32) {
	step := c.MoveSpeed * dt
	c.Position = c.Position.
		Add(c.Forward().Mul(forward * step)).
		Add(c.Right().Mul(right * step))
}

// HandleDrag turns the camera by a mouse drag delta in pixels.
func (c *FreeCamera) HandleDrag(deltaX, deltaY float32) {
	c.Yaw += deltaX * c.LookSensitivity
	c.Pitch = clampPitch(c.Pitch + deltaY*c.LookSensitivity)
}

// HandleZoom narrows or widens the field of view.
func (c *FreeCamera) HandleZoom(delta float32) {
	c.FOV = mgl32.Clamp(c.FOV-delta*0.05, 0.2, 2.0)
}

func clampPitch(p float32) float32 {
	return mgl32.Clamp(p, -maxPitch, maxPitch)
}
