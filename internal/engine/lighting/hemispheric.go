// Package lighting provides lighting utilities for 3D rendering.
package lighting

import "github.com/go-gl/mathgl/mgl32"

// Hemispheric is an ambient light blending a sky colour on surfaces facing
// Direction with a ground colour on surfaces facing away.
type Hemispheric struct {
	Direction mgl32.Vec3 // unit vector towards the sky
	Sky       mgl32.Vec3
	Ground    mgl32.Vec3
	Intensity float32
}

// NewHemispheric returns a white-sky, black-ground light pointing at from.
// A zero from points straight up.
func NewHemispheric(from mgl32.Vec3, intensity float32) Hemispheric {
	dir := mgl32.Vec3{0, 1, 0}
	if from.Len() > 0 {
		dir = from.Normalize()
	}
	return Hemispheric{
		Direction: dir,
		Sky:       mgl32.Vec3{1, 1, 1},
		Intensity: intensity,
	}
}

// Default is the scene light: from (0, 50, 50) at full intensity.
func Default() Hemispheric {
	return NewHemispheric(mgl32.Vec3{0, 50, 50}, 1)
}

// Weight returns the sky blend factor for a surface normal, in [0, 1].
// The mesh shader computes the same value per fragment.
func (h Hemispheric) Weight(normal mgl32.Vec3) float32 {
	return 0.5*normal.Normalize().Dot(h.Direction) + 0.5
}
