package control

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/marble-maze/internal/physics"
	"github.com/Faultbox/marble-maze/internal/scene"
)

type fixture struct {
	c     *Controller
	rig   Rig
	world *physics.World
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	root := scene.NewNode("root", nil)
	container := scene.NewNode("container", root)
	ball := scene.NewNode("ball", nil)
	ball.Position = mgl32.Vec3{1, 2, 3}

	shape, err := physics.NewMeshShape([][3]mgl32.Vec3{{{-1, 0, -1}, {-1, 0, 1}, {1, 0, 1}}})
	if err != nil {
		t.Fatal(err)
	}
	containerBody := physics.NewBody("container", physics.MotionAnimated, shape, 0)
	containerBody.Anchor = container
	ballBody := physics.NewBody("ball", physics.MotionDynamic, &physics.SphereShape{Radius: 0.5}, 1)
	ballBody.Anchor = ball

	cfg := physics.DefaultConfig()
	cfg.Gravity = mgl32.Vec3{}
	w := physics.NewWorld(cfg)
	w.AddBody(containerBody)
	w.AddBody(ballBody)

	rig := Rig{
		Root:          root,
		Container:     container,
		ContainerBody: containerBody,
		Ball:          ball,
		BallBody:      ballBody,
		Spawn:         mgl32.Vec3{4.4, 4.4, 4.4},
	}
	return &fixture{c: New(rig, DefaultTuning()), rig: rig, world: w}
}

func angleAbout(q mgl32.Quat, axis mgl32.Vec3) float64 {
	angle := 2 * math.Atan2(float64(q.V.Dot(axis)), float64(q.W))
	return angle
}

func TestParseAction(t *testing.T) {
	for a := TiltXPos; a < actionCount; a++ {
		got, err := ParseAction(a.String())
		if err != nil || got != a {
			t.Errorf("ParseAction(%q) = %v, %v", a.String(), got, err)
		}
	}
	if _, err := ParseAction("fly"); err == nil {
		t.Error("expected error for unknown action")
	}
}

func TestBindings(t *testing.T) {
	b := DefaultBindings()
	if b.Lookup("i") != TiltXPos || b.Lookup("R") != Respawn {
		t.Error("unexpected default bindings")
	}
	if b.Lookup("Q") != ActionNone {
		t.Error("unbound key should map to none")
	}

	if err := b.Override(map[string]string{"jump": "Space"}); err != nil {
		t.Fatal(err)
	}
	if b.Lookup("Space") != Jump {
		t.Error("expected Space bound to jump")
	}
	if b.Lookup("C") != ActionNone {
		t.Error("expected C released after rebinding jump")
	}

	if err := b.Override(map[string]string{"dance": "X"}); err == nil {
		t.Error("expected error for unknown action")
	}
}

func TestKeyState(t *testing.T) {
	var k KeyState
	if !k.KeyDown(Jump) {
		t.Error("first press should be fresh")
	}
	if k.KeyDown(Jump) {
		t.Error("second press without release should not be fresh")
	}
	k.KeyUp(Jump)
	if k.Held(Jump) {
		t.Error("expected jump released")
	}
	if k.KeyDown(ActionNone) || k.Held(ActionNone) {
		t.Error("none must never be held")
	}
}

func TestTiltSteps(t *testing.T) {
	step := math.Pi / 720
	tests := []struct {
		name   string
		action Action
		events int
		node   func(r Rig) *scene.Node
		axis   mgl32.Vec3
		want   float64
	}{
		{"I tilts container +X", TiltXPos, 10, func(r Rig) *scene.Node { return r.Container }, mgl32.Vec3{1, 0, 0}, 10 * step},
		{"K tilts container -X", TiltXNeg, 7, func(r Rig) *scene.Node { return r.Container }, mgl32.Vec3{1, 0, 0}, -7 * step},
		{"J tilts root +Z", TiltZPos, 30, func(r Rig) *scene.Node { return r.Root }, mgl32.Vec3{0, 0, 1}, 30 * step},
		{"L tilts root -Z", TiltZNeg, 1, func(r Rig) *scene.Node { return r.Root }, mgl32.Vec3{0, 0, 1}, -step},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			// One press then auto-repeats.
			for i := 0; i < tt.events; i++ {
				f.c.KeyDown(tt.action, i > 0)
				// Updates between events must not change the count.
				if i%3 == 0 {
					f.c.Update()
				}
			}
			f.c.Update()
			f.c.Update()

			got := angleAbout(tt.node(f.rig).Rotation, tt.axis)
			if math.Abs(got-tt.want) > 1e-5 {
				t.Errorf("rotation %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTiltIndependentAxes(t *testing.T) {
	f := newFixture(t)
	f.c.KeyDown(TiltXPos, false)
	f.c.KeyDown(TiltZNeg, false) // queues one more I step and one L step
	f.c.Update()

	step := math.Pi / 720
	if got := angleAbout(f.rig.Container.Rotation, mgl32.Vec3{1, 0, 0}); math.Abs(got-2*step) > 1e-6 {
		t.Errorf("container rotation %v, want %v", got, 2*step)
	}
	if got := angleAbout(f.rig.Root.Rotation, mgl32.Vec3{0, 0, 1}); math.Abs(got+step) > 1e-6 {
		t.Errorf("root rotation %v, want %v", got, -step)
	}
}

func TestNonTiltKeyRepeatsHeldTilt(t *testing.T) {
	f := newFixture(t)
	f.c.KeyDown(TiltXPos, false)
	f.c.KeyDown(PushForward, false)
	f.c.KeyUp(TiltXPos)
	f.c.KeyDown(PushForward, true)
	f.c.Update()

	want := 2 * math.Pi / 720
	if got := angleAbout(f.rig.Container.Rotation, mgl32.Vec3{1, 0, 0}); math.Abs(got-want) > 1e-6 {
		t.Errorf("rotation %v, want %v", got, want)
	}
}

func TestKeyUpStepsHeldTilts(t *testing.T) {
	step := math.Pi / 720
	tests := []struct {
		name          string
		events        func(c *Controller)
		wantContainer float64
		wantRoot      float64
	}{
		{
			name: "release of other tilt key",
			events: func(c *Controller) {
				c.KeyDown(TiltXPos, false) // I: 1
				c.KeyDown(TiltZPos, false) // I: 2, J: 1
				c.KeyUp(TiltZPos)          // I: 3
			},
			wantContainer: 3 * step,
			wantRoot:      step,
		},
		{
			name: "unbound key",
			events: func(c *Controller) {
				c.KeyDown(TiltZNeg, false)
				c.KeyDown(ActionNone, false)
				c.KeyUp(ActionNone)
			},
			wantRoot: -3 * step,
		},
		{
			name: "last tilt key released",
			events: func(c *Controller) {
				c.KeyDown(TiltXNeg, false)
				c.KeyUp(TiltXNeg)
			},
			wantContainer: -step,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.events(f.c)
			f.c.Update()

			if got := angleAbout(f.rig.Container.Rotation, mgl32.Vec3{1, 0, 0}); math.Abs(got-tt.wantContainer) > 1e-6 {
				t.Errorf("container rotation %v, want %v", got, tt.wantContainer)
			}
			if got := angleAbout(f.rig.Root.Rotation, mgl32.Vec3{0, 0, 1}); math.Abs(got-tt.wantRoot) > 1e-6 {
				t.Errorf("root rotation %v, want %v", got, tt.wantRoot)
			}
		})
	}
}

func TestReleaseAll(t *testing.T) {
	f := newFixture(t)
	f.c.KeyDown(TiltXPos, false)
	f.c.KeyDown(PushForward, false)
	f.c.ReleaseAll()

	if f.c.Keys().Held(TiltXPos) || f.c.Keys().Held(PushForward) {
		t.Fatal("keys still held after release")
	}
	if got := f.c.Force(); got != (mgl32.Vec3{}) {
		t.Errorf("force %v after release, want zero", got)
	}

	// Steps queued before the release still apply, nothing more follows.
	f.c.Update()
	f.c.KeyDown(ActionNone, false)
	f.c.Update()
	want := 2 * math.Pi / 720
	if got := angleAbout(f.rig.Container.Rotation, mgl32.Vec3{1, 0, 0}); math.Abs(got-want) > 1e-6 {
		t.Errorf("rotation %v, want %v", got, want)
	}

	// A fresh press after the release is edge-triggered again.
	f.c.KeyDown(Jump, false)
	f.c.ReleaseAll()
	f.c.KeyDown(Jump, false)
	if f.c.jumps != 2 {
		t.Errorf("jumps %d, want 2", f.c.jumps)
	}
}

func TestPreStepWindow(t *testing.T) {
	f := newFixture(t)
	body := f.rig.ContainerBody
	if !body.DisablePreStep {
		t.Fatal("pre-step should start disabled")
	}

	f.c.KeyDown(TiltXPos, false)
	f.c.Update()
	if body.DisablePreStep || !f.c.Pending() {
		t.Fatal("rotation should enable pre-step until the frame ends")
	}

	f.world.Step()
	_, rot := f.rig.Container.WorldPose()
	if !body.Rotation().ApproxEqualThreshold(rot, 1e-6) {
		t.Errorf("body did not pick up the tilt: %v vs %v", body.Rotation(), rot)
	}

	f.c.AfterFrame()
	if !body.DisablePreStep || f.c.Pending() {
		t.Error("AfterFrame should disable pre-step again")
	}

	// Without a rotation, nothing is re-enabled.
	f.c.KeyUp(TiltXPos)
	f.c.Update()
	if !body.DisablePreStep {
		t.Error("idle frame must not enable pre-step")
	}
}

func TestResetTilt(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 50; i++ {
		f.c.KeyDown(TiltXPos, i > 0)
	}
	f.c.KeyUp(TiltXPos)
	f.c.KeyDown(TiltZPos, false)
	f.c.KeyUp(TiltZPos)
	f.c.Update()
	f.c.AfterFrame()

	f.c.KeyDown(ResetTilt, false)
	f.c.Update()

	if f.rig.Container.Rotation != mgl32.QuatIdent() || f.rig.Root.Rotation != mgl32.QuatIdent() {
		t.Errorf("expected identity, got %v and %v", f.rig.Container.Rotation, f.rig.Root.Rotation)
	}
	if f.rig.ContainerBody.DisablePreStep {
		t.Error("reset should enable pre-step for the frame")
	}
}

func TestPushForces(t *testing.T) {
	f := newFixture(t)
	ball := f.rig.BallBody
	dt := f.world.Config().TimeStep

	f.c.KeyDown(PushForward, false)
	f.c.KeyDown(PushRight, false)
	if got := f.c.Force(); got != (mgl32.Vec3{14, 0, 14}) {
		t.Errorf("force %v, want (14,0,14)", got)
	}

	for i := 0; i < 3; i++ {
		f.c.Update()
		f.world.Step()
	}
	want := 3 * 14 * dt
	if v := ball.LinearVelocity(); math.Abs(float64(v[0]-want)) > 1e-4 || math.Abs(float64(v[2]-want)) > 1e-4 {
		t.Errorf("velocity %v, want x=z=%v", v, want)
	}

	f.c.KeyUp(PushForward)
	f.c.KeyUp(PushRight)
	if got := f.c.Force(); got != (mgl32.Vec3{}) {
		t.Errorf("released keys must give zero force, got %v", got)
	}
	before := ball.LinearVelocity()
	f.c.Update()
	f.world.Step()
	if v := ball.LinearVelocity(); !v.ApproxEqualThreshold(before, 1e-6) {
		t.Errorf("velocity changed after release: %v -> %v", before, v)
	}
}

func TestOpposingPushesCancel(t *testing.T) {
	f := newFixture(t)
	f.c.KeyDown(PushLeft, false)
	f.c.KeyDown(PushRight, false)
	if got := f.c.Force(); got != (mgl32.Vec3{}) {
		t.Errorf("expected cancelling forces, got %v", got)
	}
}

func TestJumpIsEdgeTriggered(t *testing.T) {
	f := newFixture(t)
	ball := f.rig.BallBody

	f.c.KeyDown(Jump, false)
	f.c.KeyDown(Jump, true)
	f.c.KeyDown(Jump, true)
	f.c.Update()
	if v := ball.LinearVelocity(); math.Abs(float64(v[1])-0.7) > 1e-6 {
		t.Errorf("expected one impulse of 0.7, got vy=%v", v[1])
	}

	f.c.Update()
	if v := ball.LinearVelocity(); math.Abs(float64(v[1])-0.7) > 1e-6 {
		t.Errorf("held jump must not repeat, got vy=%v", v[1])
	}

	f.c.KeyUp(Jump)
	f.c.KeyDown(Jump, false)
	f.c.Update()
	if v := ball.LinearVelocity(); math.Abs(float64(v[1])-1.4) > 1e-6 {
		t.Errorf("re-press should jump again, got vy=%v", v[1])
	}
}

func TestRespawn(t *testing.T) {
	f := newFixture(t)
	ball := f.rig.BallBody
	ball.SetLinearVelocity(mgl32.Vec3{3, -2, 1})

	f.c.KeyDown(Respawn, false)
	f.c.Update()

	if f.rig.Ball.Position != f.rig.Spawn {
		t.Errorf("ball node at %v, want %v", f.rig.Ball.Position, f.rig.Spawn)
	}
	if ball.LinearVelocity() != (mgl32.Vec3{}) {
		t.Errorf("expected zero velocity, got %v", ball.LinearVelocity())
	}
	if ball.DisablePreStep {
		t.Fatal("respawn should enable the ball's pre-step")
	}

	f.world.Step()
	if !ball.Position().ApproxEqualThreshold(f.rig.Spawn, 1e-6) {
		t.Errorf("body at %v, want %v", ball.Position(), f.rig.Spawn)
	}

	f.c.AfterFrame()
	if !ball.DisablePreStep {
		t.Error("AfterFrame should disable the ball's pre-step")
	}
}
