// Package maze turns a resolved level into render and collision geometry:
// a floor slab with holes cut out, the surrounding walls and the ball.
package maze

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/marble-maze/internal/csg"
	"github.com/Faultbox/marble-maze/internal/geom"
	"github.com/Faultbox/marble-maze/internal/level"
	"github.com/Faultbox/marble-maze/internal/logger"
)

// ErrEmptyGeometry is returned when boolean subtraction leaves nothing.
var ErrEmptyGeometry = errors.New("empty geometry")

// Hole cutter proportions relative to the ball and floor.
const (
	HoleDiameterScale = 1.1
	HoleHeightScale   = 3
)

// Mesh names.
const (
	FloorName     = "floor"
	ContainerName = "csg_container"
	MergedName    = "container"
	BallName      = "ball"
)

// BallColor is the marble's vertex colour.
var BallColor = mgl32.Vec4{0.7, 0.7, 0.7, 1}

// Container is the built level geometry.
type Container struct {
	// Static is the floor and walls merged into one mesh, in container space.
	// It is also the container's collision shape.
	Static *geom.Mesh
	// Ball is a sphere centred at the origin.
	Ball *geom.Mesh
}

// BuildFloor returns a white box whose top face lies at y=0.
func BuildFloor(width, height, depth float32) *geom.Mesh {
	m := geom.NewBox(FloorName, width, height, depth)
	m.Transform(mgl32.Translate3D(0, -height/2, 0))
	m.SetColor(mgl32.Vec4{1, 1, 1, 1})
	return m
}

// SubtractHoles cuts a vertical cylinder per hole through floor. Cutters are
// 10% wider than the ball and three floor heights tall so they pierce both
// faces. The floor is returned unchanged when hasHoles is false.
func SubtractHoles(floor *geom.Mesh, holes []level.Hole, hasHoles bool, ballDiameter, floorHeight float32) (*geom.Mesh, error) {
	if !hasHoles {
		return floor, nil
	}

	solid := csg.FromMesh(floor)
	for _, h := range holes {
		cutter := geom.NewCylinder(h.Name, ballDiameter*HoleDiameterScale, floorHeight*HoleHeightScale, geom.DefaultCylinderTessellation)
		cutter.Transform(mgl32.Translate3D(h.X, -floorHeight/2, h.Z))
		cutter.SetColor(mgl32.Vec4{1, 1, 1, 1})
		solid.SubtractInPlace(csg.FromMesh(cutter))
		logger.Debug("hole cut", zap.String("hole", h.Name), zap.Int("polygons", solid.Len()))
	}
	if solid.Empty() {
		return nil, fmt.Errorf("subtracting %d holes: %w", len(holes), ErrEmptyGeometry)
	}
	return solid.ToMesh(ContainerName), nil
}

// BuildWall returns the wall box in container space. Rotation angles are
// degrees, composed as yaw, then pitch, then roll.
func BuildWall(w level.Wall) *geom.Mesh {
	m := geom.NewBox(w.Name, w.Size[0], w.Size[1], w.Size[2])
	m.SetColor(w.Color.Vec4(1))
	m.Transform(WallMatrix(w))
	return m
}

// WallMatrix is the placement of a wall: T * Ry * Rx * Rz.
func WallMatrix(w level.Wall) mgl32.Mat4 {
	rx := mgl32.DegToRad(w.Rotation[0])
	ry := mgl32.DegToRad(w.Rotation[1])
	rz := mgl32.DegToRad(w.Rotation[2])
	rot := mgl32.HomogRotate3DY(ry).Mul4(mgl32.HomogRotate3DX(rx)).Mul4(mgl32.HomogRotate3DZ(rz))
	return mgl32.Translate3D(w.Position[0], w.Position[1], w.Position[2]).Mul4(rot)
}

// MergeStatic concatenates the floor and walls, floor first.
func MergeStatic(floor *geom.Mesh, walls []*geom.Mesh) *geom.Mesh {
	return geom.Merge(MergedName, append([]*geom.Mesh{floor}, walls...)...)
}

// Build produces the container and ball meshes for lvl.
func Build(lvl level.Level) (*Container, error) {
	floor := BuildFloor(lvl.Floor.Width, lvl.Floor.Height, lvl.Floor.Depth)
	floor, err := SubtractHoles(floor, lvl.Holes, lvl.HasHoles, lvl.Ball.Diameter, lvl.Floor.Height)
	if err != nil {
		return nil, fmt.Errorf("floor: %w", err)
	}

	walls := make([]*geom.Mesh, 0, len(lvl.Walls))
	for _, w := range lvl.Walls {
		walls = append(walls, BuildWall(w))
	}
	static := MergeStatic(floor, walls)
	if err := static.Validate(); err != nil {
		return nil, fmt.Errorf("container: %w", err)
	}

	ball := geom.NewSphere(BallName, lvl.Ball.Diameter, geom.DefaultSphereSegments)
	ball.SetColor(BallColor)

	logger.Debug("container built",
		zap.Int("holes", len(lvl.Holes)),
		zap.Int("walls", len(walls)),
		zap.Int("triangles", static.TriangleCount()),
		zap.Int("vertices", static.VertexCount()))

	return &Container{Static: static, Ball: ball}, nil
}
