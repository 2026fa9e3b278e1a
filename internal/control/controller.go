package control

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/marble-maze/internal/logger"
	"github.com/Faultbox/marble-maze/internal/physics"
	"github.com/Faultbox/marble-maze/internal/scene"
)

// Tuning holds the control constants.
type Tuning struct {
	// ForceStrength is the push force magnitude.
	ForceStrength float32
	// Jump impulse is ForceStrength / ImpulseDivisor.
	ImpulseDivisor float32
	// One tilt step is pi / RotationDivisor radians.
	RotationDivisor float32
}

// DefaultTuning returns the stock constants.
func DefaultTuning() Tuning {
	return Tuning{ForceStrength: 14, ImpulseDivisor: 20, RotationDivisor: 720}
}

// RotationStep returns the tilt increment in radians.
func (t Tuning) RotationStep() float32 {
	return math.Pi / t.RotationDivisor
}

// JumpImpulse returns the upward impulse of a jump.
func (t Tuning) JumpImpulse() mgl32.Vec3 {
	return mgl32.Vec3{0, t.ForceStrength / t.ImpulseDivisor, 0}
}

// Rig is everything the controller moves.
type Rig struct {
	// Root is the outer tilt node, rotated about Z.
	Root *scene.Node
	// Container is the inner tilt node, rotated about X.
	Container     *scene.Node
	ContainerBody *physics.Body
	Ball          *scene.Node
	BallBody      *physics.Body
	Spawn         mgl32.Vec3
}

var pushDirections = [actionCount]mgl32.Vec3{
	PushForward: {0, 0, 1},
	PushLeft:    {-1, 0, 0},
	PushBack:    {0, 0, -1},
	PushRight:   {1, 0, 0},
}

// Controller turns key events into node rotations and ball forces. It is the
// only writer of the tilt nodes. Events are queued by KeyDown and applied by
// Update, once per simulation tick.
type Controller struct {
	rig    Rig
	tuning Tuning
	keys   KeyState

	tiltSteps [4]int
	jumps     int
	reset     bool
	respawn   bool

	pendingContainer bool
	pendingBall      bool
}

// New returns a controller driving rig.
func New(rig Rig, tuning Tuning) *Controller {
	return &Controller{rig: rig, tuning: tuning}
}

// Keys returns the held-key state.
func (c *Controller) Keys() *KeyState {
	return &c.keys
}

// KeyDown handles a key press or auto-repeat. Every key event, bound or not,
// queues one tilt step for each tilt key currently held.
func (c *Controller) KeyDown(a Action, repeat bool) {
	fresh := c.keys.KeyDown(a) && !repeat
	c.queueHeldTilts()

	if !fresh {
		return
	}
	switch a {
	case Jump:
		c.jumps++
	case ResetTilt:
		c.reset = true
	case Respawn:
		c.respawn = true
	}
	logger.Debug("key down", zap.Stringer("action", a))
}

// KeyUp handles a key release. Tilt keys still held step once more.
func (c *Controller) KeyUp(a Action) {
	c.keys.KeyUp(a)
	c.queueHeldTilts()
}

// ReleaseAll drops every held key, e.g. when the window loses focus and
// the matching key-up events will never arrive.
func (c *Controller) ReleaseAll() {
	c.keys.Reset()
	logger.Debug("keys released")
}

func (c *Controller) queueHeldTilts() {
	for a := ActionNone; a < actionCount; a++ {
		if a.IsTilt() && c.keys.Held(a) {
			c.tiltSteps[a-TiltXPos]++
		}
	}
}

// Force returns the push force for the currently held keys.
func (c *Controller) Force() mgl32.Vec3 {
	var f mgl32.Vec3
	for a := ActionNone; a < actionCount; a++ {
		if a.IsPush() && c.keys.Held(a) {
			f = f.Add(pushDirections[a].Mul(c.tuning.ForceStrength))
		}
	}
	return f
}

// Update applies queued events and held-key forces.
func (c *Controller) Update() {
	step := c.tuning.RotationStep()
	for i, n := range c.tiltSteps {
		for ; n > 0; n-- {
			switch TiltXPos + Action(i) {
			case TiltXPos:
				c.rig.Container.AddRotation(step, 0, 0)
			case TiltXNeg:
				c.rig.Container.AddRotation(-step, 0, 0)
			case TiltZPos:
				c.rig.Root.AddRotation(0, 0, step)
			case TiltZNeg:
				c.rig.Root.AddRotation(0, 0, -step)
			}
			c.enableContainerPreStep()
		}
		c.tiltSteps[i] = 0
	}

	if c.reset {
		c.reset = false
		c.rig.Container.ResetRotation()
		c.rig.Root.ResetRotation()
		c.enableContainerPreStep()
		logger.Debug("tilt reset")
	}

	if c.respawn {
		c.respawn = false
		c.respawnBall()
	}

	ball := c.rig.BallBody
	if f := c.Force(); f != (mgl32.Vec3{}) {
		ball.ApplyForce(f, ball.Position())
	}
	for ; c.jumps > 0; c.jumps-- {
		ball.ApplyImpulse(c.tuning.JumpImpulse(), ball.Position())
	}
}

// QueueRespawn schedules a respawn for the next Update, as if the respawn
// key had been pressed.
func (c *Controller) QueueRespawn() {
	c.respawn = true
}

// respawnBall puts the ball back at the spawn point at rest.
func (c *Controller) respawnBall() {
	_, rot := c.rig.Ball.WorldPose()
	c.rig.Ball.SetWorldPose(c.rig.Spawn, rot)
	c.rig.BallBody.SetLinearVelocity(mgl32.Vec3{})
	c.rig.BallBody.SetAngularVelocity(mgl32.Vec3{})
	c.rig.BallBody.DisablePreStep = false
	c.pendingBall = true
	logger.Debug("ball respawned", zap.Float32("x", c.rig.Spawn[0]), zap.Float32("y", c.rig.Spawn[1]), zap.Float32("z", c.rig.Spawn[2]))
}

func (c *Controller) enableContainerPreStep() {
	c.rig.ContainerBody.DisablePreStep = false
	c.pendingContainer = true
}

// AfterFrame disables every pre-step enabled since the last call. Call it
// once per frame, after the physics step has consumed the new poses.
func (c *Controller) AfterFrame() {
	if c.pendingContainer {
		c.rig.ContainerBody.DisablePreStep = true
		c.pendingContainer = false
	}
	if c.pendingBall {
		c.rig.BallBody.DisablePreStep = true
		c.pendingBall = false
	}
}

// Pending reports whether a pre-step re-disable is outstanding.
func (c *Controller) Pending() bool {
	return c.pendingContainer || c.pendingBall
}
