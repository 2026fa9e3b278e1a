package maze

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/marble-maze/internal/geom"
	"github.com/Faultbox/marble-maze/internal/level"
)

func almostEqual(a, b, eps float32) bool {
	return float32(math.Abs(float64(a-b))) <= eps
}

func vecAlmostEqual(a, b mgl32.Vec3, eps float32) bool {
	return almostEqual(a[0], b[0], eps) && almostEqual(a[1], b[1], eps) && almostEqual(a[2], b[2], eps)
}

func TestBuildFloor(t *testing.T) {
	m := BuildFloor(10, 1, 10)
	b := m.Bounds()
	if !vecAlmostEqual(b.Min, mgl32.Vec3{-5, -1, -5}, 1e-5) || !vecAlmostEqual(b.Max, mgl32.Vec3{5, 0, 5}, 1e-5) {
		t.Errorf("unexpected floor bounds %v", b)
	}
	for _, c := range m.Colors {
		if c != (mgl32.Vec4{1, 1, 1, 1}) {
			t.Fatalf("expected white floor, got %v", c)
		}
	}
}

func TestSubtractHoles(t *testing.T) {
	cylinderArea := func(d float32) float32 {
		r := float64(d) / 2
		n := float64(geom.DefaultCylinderTessellation)
		return float32(n / 2 * r * r * math.Sin(2*math.Pi/n))
	}

	tests := []struct {
		name       string
		holes      []level.Hole
		hasHoles   bool
		wantName   string
		wantVolume float32
	}{
		{"absent", nil, false, FloorName, 100},
		{"empty section", []level.Hole{}, true, ContainerName, 100},
		{"one hole", []level.Hole{{Name: "h", X: 2, Z: -3}}, true, ContainerName, 100 - cylinderArea(1.1)},
		{"two holes", []level.Hole{{Name: "a", X: -2, Z: 2}, {Name: "b", X: 2, Z: -2}}, true, ContainerName, 100 - 2*cylinderArea(1.1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			floor := BuildFloor(10, 1, 10)
			got, err := SubtractHoles(floor, tt.holes, tt.hasHoles, 1, 1)
			if err != nil {
				t.Fatalf("SubtractHoles: %v", err)
			}
			if got.Name != tt.wantName {
				t.Errorf("expected mesh %q, got %q", tt.wantName, got.Name)
			}
			if v := got.Volume(); !almostEqual(v, tt.wantVolume, 1e-2) {
				t.Errorf("expected volume %v, got %v", tt.wantVolume, v)
			}
			if err := got.Validate(); err != nil {
				t.Errorf("result is invalid: %v", err)
			}
		})
	}
}

func TestSubtractHolesAbsentKeepsFloor(t *testing.T) {
	floor := BuildFloor(10, 1, 10)
	got, err := SubtractHoles(floor, nil, false, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got != floor {
		t.Error("expected the floor mesh to be returned unchanged")
	}
}

func TestSubtractHolesEmptyResult(t *testing.T) {
	// A ball wider than the floor swallows it whole.
	floor := BuildFloor(1, 1, 1)
	_, err := SubtractHoles(floor, []level.Hole{{Name: "h"}}, true, 10, 1)
	if !errors.Is(err, ErrEmptyGeometry) {
		t.Errorf("expected ErrEmptyGeometry, got %v", err)
	}
}

func TestBuildWall(t *testing.T) {
	tests := []struct {
		name    string
		wall    level.Wall
		wantMin mgl32.Vec3
		wantMax mgl32.Vec3
	}{
		{
			name:    "axis aligned",
			wall:    level.Wall{Name: "w", Position: mgl32.Vec3{0, 1, 5.5}, Size: mgl32.Vec3{12, 2, 1}},
			wantMin: mgl32.Vec3{-6, 0, 5},
			wantMax: mgl32.Vec3{6, 2, 6},
		},
		{
			name:    "yaw 90",
			wall:    level.Wall{Name: "w", Position: mgl32.Vec3{-5.5, 1, 0}, Rotation: mgl32.Vec3{0, 90, 0}, Size: mgl32.Vec3{12, 2, 1}},
			wantMin: mgl32.Vec3{-6, 0, -6},
			wantMax: mgl32.Vec3{-5, 2, 6},
		},
		{
			name:    "roll 90",
			wall:    level.Wall{Name: "w", Rotation: mgl32.Vec3{0, 0, 90}, Size: mgl32.Vec3{4, 2, 1}},
			wantMin: mgl32.Vec3{-1, -2, -0.5},
			wantMax: mgl32.Vec3{1, 2, 0.5},
		},
		{
			// Yaw is applied after roll: the long axis rolls up to Y, then
			// the depth axis yaws onto X.
			name:    "roll then yaw",
			wall:    level.Wall{Name: "w", Rotation: mgl32.Vec3{0, 90, 90}, Size: mgl32.Vec3{4, 2, 1}},
			wantMin: mgl32.Vec3{-0.5, -2, -1},
			wantMax: mgl32.Vec3{0.5, 2, 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := BuildWall(tt.wall)
			b := m.Bounds()
			if !vecAlmostEqual(b.Min, tt.wantMin, 1e-4) || !vecAlmostEqual(b.Max, tt.wantMax, 1e-4) {
				t.Errorf("bounds %v-%v, want %v-%v", b.Min, b.Max, tt.wantMin, tt.wantMax)
			}
		})
	}
}

func TestBuildWallColor(t *testing.T) {
	m := BuildWall(level.Wall{Name: "w", Size: mgl32.Vec3{1, 1, 1}, Color: mgl32.Vec3{0.2, 0.4, 0.6}})
	for _, c := range m.Colors {
		if c != (mgl32.Vec4{0.2, 0.4, 0.6, 1}) {
			t.Fatalf("unexpected colour %v", c)
		}
	}
}

func TestMergeStatic(t *testing.T) {
	floor := BuildFloor(10, 1, 10)
	wall := BuildWall(level.Wall{Name: "w", Size: mgl32.Vec3{1, 1, 1}, Color: mgl32.Vec3{1, 0, 0}})
	m := MergeStatic(floor, []*geom.Mesh{wall})

	if m.VertexCount() != floor.VertexCount()+wall.VertexCount() {
		t.Errorf("expected %d vertices, got %d", floor.VertexCount()+wall.VertexCount(), m.VertexCount())
	}
	if m.Colors[0] != (mgl32.Vec4{1, 1, 1, 1}) {
		t.Errorf("expected floor vertices first, got colour %v", m.Colors[0])
	}
	if m.Colors[m.VertexCount()-1] != (mgl32.Vec4{1, 0, 0, 1}) {
		t.Errorf("expected wall colour last, got %v", m.Colors[m.VertexCount()-1])
	}
}

func TestBuildDefaultLevel(t *testing.T) {
	lvl := level.Resolve(nil, level.DefaultTruthy)
	c, err := Build(lvl)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if c.Static.Name != MergedName {
		t.Errorf("unexpected mesh name %s", c.Static.Name)
	}
	// Floor plus four walls, 12 triangles each, no holes section.
	if c.Static.TriangleCount() != 5*12 {
		t.Errorf("expected 60 triangles, got %d", c.Static.TriangleCount())
	}
	b := c.Static.Bounds()
	if !vecAlmostEqual(b.Min, mgl32.Vec3{-6, -1, -6}, 1e-4) || !vecAlmostEqual(b.Max, mgl32.Vec3{6, 2, 6}, 1e-4) {
		t.Errorf("unexpected container bounds %v", b)
	}
	if c.Ball.Colors[0] != BallColor {
		t.Errorf("expected grey ball, got %v", c.Ball.Colors[0])
	}
	if s := c.Ball.Bounds().Size(); !almostEqual(s[1], 1, 1e-4) {
		t.Errorf("expected unit ball, got size %v", s)
	}
}

func TestBuildWithHoles(t *testing.T) {
	d := &level.Descriptor{
		Holes: []level.HoleSpec{{Name: "goal", X: level.F(3), Z: level.F(3)}},
		Walls: []level.WallSpec{},
	}
	c, err := Build(level.Resolve(d, level.DefaultTruthy))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if c.Static.TriangleCount() <= 12 {
		t.Errorf("expected the hole to add triangles, got %d", c.Static.TriangleCount())
	}
	if v := c.Static.Volume(); v >= 100 || v < 98 {
		t.Errorf("expected floor volume just under 100, got %v", v)
	}
}
