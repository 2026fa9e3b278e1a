package level

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrInvalidLevel is returned by Validate when a resolved level cannot be built.
var ErrInvalidLevel = errors.New("invalid level")

// DefaultMode selects how explicit zero values in a document are treated.
type DefaultMode int

const (
	// DefaultTruthy replaces absent and zero values with the default. This is
	// the historical behaviour: a wall at x=0 silently moves to the default x.
	DefaultTruthy DefaultMode = iota
	// DefaultPresence replaces only absent values; explicit zeros are kept.
	DefaultPresence
)

func (m DefaultMode) String() string {
	if m == DefaultPresence {
		return "presence"
	}
	return "truthy"
}

// Built-in defaults.
const (
	DefaultBallDiameter = 1
	DefaultSpawn        = 4.4
	DefaultFloorWidth   = 10
	DefaultFloorHeight  = 1
	DefaultFloorDepth   = 10
	DefaultWallSize     = 1 // primitive box size when a dimension is missing
)

// Level is a fully resolved, immutable level.
type Level struct {
	Ball  Ball   `json:"ball"`
	Floor Floor  `json:"floor"`
	Holes []Hole `json:"holes"`
	// HasHoles reports whether the document had a holes section at all. An
	// empty section still routes the floor through boolean subtraction.
	HasHoles bool   `json:"hasHoles"`
	Walls    []Wall `json:"walls"`
}

// Ball holds the marble parameters.
type Ball struct {
	Diameter float32    `json:"diameter"`
	Spawn    mgl32.Vec3 `json:"spawn"`
}

// Mass is the ball's mass. It scales linearly with the diameter.
func (b Ball) Mass() float32 {
	return b.Diameter
}

// Radius returns half the diameter.
func (b Ball) Radius() float32 {
	return b.Diameter / 2
}

// Floor holds the floor slab dimensions.
type Floor struct {
	Width  float32 `json:"width"`
	Height float32 `json:"height"`
	Depth  float32 `json:"depth"`
}

// Hole is a resolved hole position on the floor plane.
type Hole struct {
	Name string  `json:"name"`
	X    float32 `json:"x"`
	Z    float32 `json:"z"`
}

// Wall is a resolved wall slab. Rotation is in degrees.
type Wall struct {
	Name     string     `json:"name"`
	Position mgl32.Vec3 `json:"position"`
	Rotation mgl32.Vec3 `json:"rotation"`
	Size     mgl32.Vec3 `json:"size"`
	Color    mgl32.Vec3 `json:"color"`
}

// DefaultWalls is the wall layout used when a document has no walls section:
// a closed square around the default floor.
func DefaultWalls() []WallSpec {
	return []WallSpec{
		{Name: "wall0", X: F(-5.5), Y: F(1), Z: F(0), RotY: F(90), Width: F(12), Height: F(2), Depth: F(1), ColorR: F(1), ColorG: F(0), ColorB: F(0)},
		{Name: "wall1", X: F(0), Y: F(1), Z: F(5.5), RotY: F(0), Width: F(12), Height: F(2), Depth: F(1), ColorR: F(0), ColorG: F(1), ColorB: F(0)},
		{Name: "wall2", X: F(5.5), Y: F(1), Z: F(0), RotY: F(90), Width: F(12), Height: F(2), Depth: F(1), ColorR: F(0), ColorG: F(0), ColorB: F(1)},
		{Name: "wall3", X: F(0), Y: F(1), Z: F(-5.5), RotY: F(0), Width: F(12), Height: F(2), Depth: F(1), ColorR: F(0), ColorG: F(0), ColorB: F(0)},
	}
}

// Resolve applies defaults to every field of d. A nil descriptor resolves to
// the built-in level.
func Resolve(d *Descriptor, mode DefaultMode) Level {
	if d == nil {
		d = &Descriptor{}
	}
	r := resolver{mode: mode}

	var lvl Level

	ball := d.Ball
	if ball == nil {
		ball = &BallSpec{}
	}
	lvl.Ball = Ball{
		Diameter: r.pick(ball.Diameter, DefaultBallDiameter),
		Spawn: mgl32.Vec3{
			r.pick(ball.InitX, DefaultSpawn),
			r.pick(ball.InitY, DefaultSpawn),
			r.pick(ball.InitZ, DefaultSpawn),
		},
	}

	bottom := d.Bottom
	if bottom == nil {
		bottom = &BottomSpec{}
	}
	lvl.Floor = Floor{
		Width:  r.pick(bottom.Width, DefaultFloorWidth),
		Height: r.pick(bottom.Height, DefaultFloorHeight),
		Depth:  r.pick(bottom.Depth, DefaultFloorDepth),
	}

	if d.Holes != nil {
		lvl.HasHoles = true
		lvl.Holes = make([]Hole, 0, len(d.Holes))
		for i, h := range d.Holes {
			lvl.Holes = append(lvl.Holes, Hole{
				Name: nameOr(h.Name, "hole", i),
				X:    r.pick(h.X, 0),
				Z:    r.pick(h.Z, 0),
			})
		}
	}

	walls := d.Walls
	if walls == nil {
		walls = DefaultWalls()
	}
	lvl.Walls = make([]Wall, 0, len(walls))
	for i, w := range walls {
		width, height, depth := w.size()
		lvl.Walls = append(lvl.Walls, Wall{
			Name:     nameOr(w.Name, "wall", i),
			Position: mgl32.Vec3{r.pick(w.X, 0), r.pick(w.Y, 0), r.pick(w.Z, 0)},
			Rotation: mgl32.Vec3{r.pick(w.RotX, 0), r.pick(w.RotY, 0), r.pick(w.RotZ, 0)},
			Size:     mgl32.Vec3{r.pick(width, DefaultWallSize), r.pick(height, DefaultWallSize), r.pick(depth, DefaultWallSize)},
			Color:    mgl32.Vec3{r.pick(w.ColorR, 0), r.pick(w.ColorG, 0), r.pick(w.ColorB, 0)},
		})
	}

	return lvl
}

type resolver struct {
	mode DefaultMode
}

func (r resolver) pick(v *float32, def float32) float32 {
	if v == nil {
		return def
	}
	if r.mode == DefaultTruthy && (*v == 0 || math.IsNaN(float64(*v))) {
		return def
	}
	return *v
}

func nameOr(name, prefix string, i int) string {
	if name != "" {
		return name
	}
	return fmt.Sprintf("%s%d", prefix, i)
}

// Validate rejects levels whose geometry cannot be built.
func (l Level) Validate() error {
	if !positive(l.Ball.Diameter) {
		return fmt.Errorf("ball diameter %v: %w", l.Ball.Diameter, ErrInvalidLevel)
	}
	if !finite(l.Ball.Spawn[0], l.Ball.Spawn[1], l.Ball.Spawn[2]) {
		return fmt.Errorf("ball spawn %v: %w", l.Ball.Spawn, ErrInvalidLevel)
	}
	if !positive(l.Floor.Width) || !positive(l.Floor.Height) || !positive(l.Floor.Depth) {
		return fmt.Errorf("floor %vx%vx%v: %w", l.Floor.Width, l.Floor.Height, l.Floor.Depth, ErrInvalidLevel)
	}
	for _, h := range l.Holes {
		if !finite(h.X, h.Z) {
			return fmt.Errorf("hole %s: %w", h.Name, ErrInvalidLevel)
		}
	}
	for _, w := range l.Walls {
		if !positive(w.Size[0]) || !positive(w.Size[1]) || !positive(w.Size[2]) {
			return fmt.Errorf("wall %s size %v: %w", w.Name, w.Size, ErrInvalidLevel)
		}
		if !finite(w.Position[0], w.Position[1], w.Position[2], w.Rotation[0], w.Rotation[1], w.Rotation[2]) {
			return fmt.Errorf("wall %s transform: %w", w.Name, ErrInvalidLevel)
		}
	}
	return nil
}

func positive(v float32) bool {
	return v > 0 && finite(v)
}

func finite(vs ...float32) bool {
	for _, v := range vs {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
