// Package level loads level documents and resolves them into the immutable
// parameters used to build a maze.
//
// A document has four optional sections: ball, bottom, holes and walls. Every
// numeric field is a pointer so a missing value can be told apart from an
// explicit zero; Resolve decides what a zero means.
package level

// Descriptor is the raw level document.
type Descriptor struct {
	Ball   *BallSpec   `json:"ball,omitempty" yaml:"ball,omitempty"`
	Bottom *BottomSpec `json:"bottom,omitempty" yaml:"bottom,omitempty"`
	Holes  []HoleSpec  `json:"holes,omitempty" yaml:"holes,omitempty"`
	Walls  []WallSpec  `json:"walls,omitempty" yaml:"walls,omitempty"`
}

// BallSpec describes the marble.
type BallSpec struct {
	Diameter *float32 `json:"diameter,omitempty" yaml:"diameter,omitempty"`
	InitX    *float32 `json:"initX,omitempty" yaml:"initX,omitempty"`
	InitY    *float32 `json:"initY,omitempty" yaml:"initY,omitempty"`
	InitZ    *float32 `json:"initZ,omitempty" yaml:"initZ,omitempty"`
}

// BottomSpec describes the floor slab.
type BottomSpec struct {
	Width  *float32 `json:"width,omitempty" yaml:"width,omitempty"`
	Height *float32 `json:"height,omitempty" yaml:"height,omitempty"`
	Depth  *float32 `json:"depth,omitempty" yaml:"depth,omitempty"`
}

// HoleSpec places one hole in the floor.
type HoleSpec struct {
	Name string   `json:"name,omitempty" yaml:"name,omitempty"`
	X    *float32 `json:"x,omitempty" yaml:"x,omitempty"`
	Z    *float32 `json:"z,omitempty" yaml:"z,omitempty"`
}

// WallSpec places one coloured wall slab. Rotations are in degrees.
type WallSpec struct {
	Name   string   `json:"name,omitempty" yaml:"name,omitempty"`
	X      *float32 `json:"x,omitempty" yaml:"x,omitempty"`
	Y      *float32 `json:"y,omitempty" yaml:"y,omitempty"`
	Z      *float32 `json:"z,omitempty" yaml:"z,omitempty"`
	RotX   *float32 `json:"rotX,omitempty" yaml:"rotX,omitempty"`
	RotY   *float32 `json:"rotY,omitempty" yaml:"rotY,omitempty"`
	RotZ   *float32 `json:"rotZ,omitempty" yaml:"rotZ,omitempty"`
	Width  *float32 `json:"width,omitempty" yaml:"width,omitempty"`
	Height *float32 `json:"height,omitempty" yaml:"height,omitempty"`
	Depth  *float32 `json:"depth,omitempty" yaml:"depth,omitempty"`
	ColorR *float32 `json:"colorR,omitempty" yaml:"colorR,omitempty"`
	ColorG *float32 `json:"colorG,omitempty" yaml:"colorG,omitempty"`
	ColorB *float32 `json:"colorB,omitempty" yaml:"colorB,omitempty"`

	// Short size keys written by older level files. Width/Height/Depth win
	// when both are present.
	W *float32 `json:"w,omitempty" yaml:"w,omitempty"`
	H *float32 `json:"h,omitempty" yaml:"h,omitempty"`
	D *float32 `json:"d,omitempty" yaml:"d,omitempty"`
}

func (w WallSpec) size() (width, height, depth *float32) {
	return firstSet(w.Width, w.W), firstSet(w.Height, w.H), firstSet(w.Depth, w.D)
}

func firstSet(vs ...*float32) *float32 {
	for _, v := range vs {
		if v != nil {
			return v
		}
	}
	return nil
}

// F returns a pointer to v. It keeps literal descriptors in tests and default
// tables readable.
func F(v float32) *float32 {
	return &v
}
