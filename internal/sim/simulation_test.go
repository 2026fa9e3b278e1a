package sim

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/marble-maze/internal/config"
	"github.com/Faultbox/marble-maze/internal/control"
	"github.com/Faultbox/marble-maze/internal/level"
)

func newSim(t *testing.T, d *level.Descriptor, opts Options) *Simulation {
	t.Helper()
	s, err := NewSimulation(level.Resolve(d, level.DefaultTruthy), opts)
	if err != nil {
		t.Fatalf("NewSimulation: %v", err)
	}
	return s
}

func run(s *Simulation, ticks int) []DropEvent {
	var all []DropEvent
	for i := 0; i < ticks; i++ {
		all = append(all, s.Tick()...)
		s.AfterRender()
	}
	return all
}

func TestNewSimulationBindsBodies(t *testing.T) {
	s := newSim(t, nil, DefaultOptions())

	if n := len(s.World.Bodies()); n != 2 {
		t.Fatalf("expected 2 bodies, got %d", n)
	}
	if s.BallBody.Mass() != 1 {
		t.Errorf("expected ball mass 1, got %v", s.BallBody.Mass())
	}
	if s.BallBody.Sleeping() {
		t.Error("ball should start awake")
	}
	if p := s.BallBody.Position(); p != (mgl32.Vec3{4.4, 4.4, 4.4}) {
		t.Errorf("ball at %v, want spawn", p)
	}
	if !s.ContainerBody.DisablePreStep || !s.BallBody.DisablePreStep {
		t.Error("pre-step should start disabled")
	}
}

func TestMassFollowsDiameter(t *testing.T) {
	s := newSim(t, &level.Descriptor{Ball: &level.BallSpec{Diameter: level.F(0.6)}}, DefaultOptions())
	if s.BallBody.Mass() != 0.6 {
		t.Errorf("expected mass 0.6, got %v", s.BallBody.Mass())
	}
}

func TestBallLandsInDefaultLevel(t *testing.T) {
	s := newSim(t, nil, DefaultOptions())
	if events := run(s, 240); len(events) != 0 {
		t.Errorf("unexpected drops %+v", events)
	}
	if y := s.BallBody.Position()[1]; math.Abs(float64(y-0.5)) > 0.02 {
		t.Errorf("expected ball resting at y=0.5, got %v", y)
	}
	if s.BallNode.Position != s.BallBody.Position() {
		t.Error("ball node does not mirror the body")
	}
}

func TestTiltReachesContainerBody(t *testing.T) {
	s := newSim(t, nil, DefaultOptions())
	for i := 0; i < 20; i++ {
		s.Controller.KeyDown(control.TiltZPos, i > 0)
	}
	s.Tick()

	_, want := s.ContainerNode.WorldPose()
	if !s.ContainerBody.Rotation().ApproxEqualThreshold(want, 1e-5) {
		t.Errorf("container body %v, node %v", s.ContainerBody.Rotation(), want)
	}
	if s.ContainerBody.DisablePreStep {
		t.Error("pre-step should stay enabled until the frame is rendered")
	}
	s.AfterRender()
	if !s.ContainerBody.DisablePreStep {
		t.Error("AfterRender should disable pre-step")
	}
}

func TestDropThroughHole(t *testing.T) {
	d := &level.Descriptor{
		Holes: []level.HoleSpec{
			{Name: "far", X: level.F(-3), Z: level.F(-3)},
			{Name: "goal", X: level.F(4.4), Z: level.F(4.4)},
		},
	}
	s := newSim(t, d, DefaultOptions())

	events := run(s, 150)
	if len(events) != 1 {
		t.Fatalf("expected exactly one drop, got %+v", events)
	}
	ev := events[0]
	if ev.Hole != "goal" {
		t.Errorf("expected nearest hole goal, got %q", ev.Hole)
	}
	if ev.Distance > 0.1 {
		t.Errorf("expected ball straight through the hole, distance %v", ev.Distance)
	}
	if ev.Position[1] > -4 {
		t.Errorf("drop reported too early at %v", ev.Position)
	}

	snap := s.Snapshot(events)
	if len(snap.Events) != 1 || snap.Events[0].Hole != "goal" || snap.Tick != s.CurrentTick() {
		t.Errorf("unexpected snapshot %+v", snap)
	}
}

func TestAutoRespawn(t *testing.T) {
	d := &level.Descriptor{Holes: []level.HoleSpec{{Name: "goal", X: level.F(4.4), Z: level.F(4.4)}}}
	opts := DefaultOptions()
	opts.AutoRespawn = true
	s := newSim(t, d, opts)

	dropped := false
	for i := 0; i < 150 && !dropped; i++ {
		dropped = len(s.Tick()) > 0
		s.AfterRender()
	}
	if !dropped {
		t.Fatal("ball never dropped")
	}

	s.Tick()
	if s.BallBody.DisablePreStep {
		t.Error("respawn should keep the ball pre-step enabled until the frame is rendered")
	}
	if p := s.BallBody.Position(); p[1] < 4 {
		t.Errorf("expected ball back near spawn, got %v", p)
	}
	s.AfterRender()
	if !s.BallBody.DisablePreStep {
		t.Error("AfterRender should disable the ball pre-step")
	}

	// The ball falls through again and is reported a second time.
	if events := run(s, 150); len(events) != 1 {
		t.Errorf("expected a second drop, got %+v", events)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Physics.TimeStepHz = 120
	cfg.Physics.Gravity = -9.81
	cfg.Controls.ForceStrength = 20
	cfg.Game.AutoRespawn = true

	opts := OptionsFromConfig(cfg)
	if opts.Physics.TimeStep != 1.0/120 {
		t.Errorf("time step %v", opts.Physics.TimeStep)
	}
	if opts.Physics.Gravity != (mgl32.Vec3{0, -9.81, 0}) {
		t.Errorf("gravity %v", opts.Physics.Gravity)
	}
	if opts.Tuning.ForceStrength != 20 || opts.Tuning.RotationDivisor != 720 {
		t.Errorf("tuning %+v", opts.Tuning)
	}
	if !opts.AutoRespawn || opts.FallDepth != 3 {
		t.Errorf("game options %+v", opts)
	}
}
