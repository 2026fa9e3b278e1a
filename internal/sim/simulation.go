// Package sim runs the maze headless: scene nodes, physics and controls
// advanced one fixed tick at a time.
package sim

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/marble-maze/internal/config"
	"github.com/Faultbox/marble-maze/internal/control"
	"github.com/Faultbox/marble-maze/internal/level"
	"github.com/Faultbox/marble-maze/internal/logger"
	"github.com/Faultbox/marble-maze/internal/maze"
	"github.com/Faultbox/marble-maze/internal/physics"
	"github.com/Faultbox/marble-maze/internal/scene"
	"github.com/Faultbox/marble-maze/internal/spectator"
)

// Options tune a Simulation.
type Options struct {
	Physics     physics.Config
	Tuning      control.Tuning
	AutoRespawn bool
	// FallDepth is how far below the floor the ball must drop, in container
	// space, before a drop is reported.
	FallDepth float32
}

// DefaultOptions returns the stock tuning.
func DefaultOptions() Options {
	return Options{
		Physics:   physics.DefaultConfig(),
		Tuning:    control.DefaultTuning(),
		FallDepth: 3,
	}
}

// OptionsFromConfig maps the user configuration onto simulation options.
func OptionsFromConfig(cfg *config.Config) Options {
	opts := DefaultOptions()
	opts.Physics.Gravity = mgl32.Vec3{0, cfg.Physics.Gravity, 0}
	opts.Physics.TimeStep = 1 / float32(cfg.Physics.TimeStepHz)
	opts.Physics.Restitution = cfg.Physics.Restitution
	opts.Physics.Friction = cfg.Physics.Friction
	opts.Tuning = control.Tuning{
		ForceStrength:   cfg.Controls.ForceStrength,
		ImpulseDivisor:  cfg.Controls.ImpulseDivisor,
		RotationDivisor: cfg.Controls.RotationDivisor,
	}
	opts.AutoRespawn = cfg.Game.AutoRespawn
	opts.FallDepth = cfg.Game.FallDepth
	return opts
}

// DropEvent is emitted once when the ball falls out of the container.
type DropEvent struct {
	Tick uint64
	// Hole is the nearest hole to where the ball left, empty when the level
	// has none.
	Hole string
	// Distance is the horizontal distance from that hole's centre.
	Distance float32
	// Position is the ball position in container space.
	Position mgl32.Vec3
}

// Simulation is the maze without any window: scene nodes, physics and
// controls, advanced one tick at a time.
type Simulation struct {
	Level     level.Level
	Container *maze.Container

	Root          *scene.Node
	ContainerNode *scene.Node
	BallNode      *scene.Node

	World         *physics.World
	ContainerBody *physics.Body
	BallBody      *physics.Body
	Controller    *control.Controller

	opts    Options
	tick    uint64
	dropped bool
}

// NewSimulation builds geometry and bodies for lvl.
func NewSimulation(lvl level.Level, opts Options) (*Simulation, error) {
	container, err := maze.Build(lvl)
	if err != nil {
		return nil, fmt.Errorf("build level: %w", err)
	}

	s := &Simulation{
		Level:     lvl,
		Container: container,
		opts:      opts,
		World:     physics.NewWorld(opts.Physics),
	}
	s.Root = scene.NewNode("root", nil)
	s.ContainerNode = scene.NewNode(maze.MergedName, s.Root)
	s.BallNode = scene.NewNode(maze.BallName, nil)
	s.BallNode.Position = lvl.Ball.Spawn

	if err := s.bindBodies(); err != nil {
		return nil, err
	}

	s.Controller = control.New(control.Rig{
		Root:          s.Root,
		Container:     s.ContainerNode,
		ContainerBody: s.ContainerBody,
		Ball:          s.BallNode,
		BallBody:      s.BallBody,
		Spawn:         lvl.Ball.Spawn,
	}, opts.Tuning)

	logger.Info("simulation ready",
		zap.Int("triangles", container.Static.TriangleCount()),
		zap.Float32("ball_mass", s.BallBody.Mass()))
	return s, nil
}

// bindBodies gives the container an animated body using its exact triangles
// and the ball a dynamic sphere whose mass equals its diameter.
func (s *Simulation) bindBodies() error {
	shape, err := physics.NewMeshShape(s.Container.Static.Triangles())
	if err != nil {
		return fmt.Errorf("container shape: %w", err)
	}
	s.ContainerBody = physics.NewBody(maze.MergedName, physics.MotionAnimated, shape, 0)
	s.ContainerBody.Anchor = s.ContainerNode
	s.World.AddBody(s.ContainerBody)

	ball := s.Level.Ball
	s.BallBody = physics.NewBody(maze.BallName, physics.MotionDynamic, &physics.SphereShape{Radius: ball.Radius()}, ball.Mass())
	s.BallBody.Anchor = s.BallNode
	s.World.AddBody(s.BallBody)
	return nil
}

// Tick applies queued input, advances physics by one fixed step and checks
// for a drop. It returns the drops detected during this tick.
func (s *Simulation) Tick() []DropEvent {
	s.Controller.Update()
	s.World.Step()
	s.tick++

	var events []DropEvent
	if ev, ok := s.detectDrop(); ok {
		events = append(events, ev)
		logger.Info("ball dropped",
			zap.Uint64("tick", ev.Tick),
			zap.String("hole", ev.Hole),
			zap.Float32("distance", ev.Distance))
		if s.opts.AutoRespawn {
			s.Controller.QueueRespawn()
		}
	}
	return events
}

// AfterRender runs once the frame that consumed this tick has been drawn.
func (s *Simulation) AfterRender() {
	s.Controller.AfterFrame()
}

// CurrentTick returns the number of ticks run.
func (s *Simulation) CurrentTick() uint64 {
	return s.tick
}

func (s *Simulation) detectDrop() (DropEvent, bool) {
	local := s.ContainerNode.ToLocal(s.BallBody.Position())
	floorBottom := -s.Level.Floor.Height

	if local[1] > floorBottom {
		s.dropped = false
		return DropEvent{}, false
	}
	if s.dropped || local[1] > floorBottom-s.opts.FallDepth {
		return DropEvent{}, false
	}
	s.dropped = true

	ev := DropEvent{Tick: s.tick, Position: local, Distance: float32(math.Inf(1))}
	for _, h := range s.Level.Holes {
		d := float32(math.Hypot(float64(local[0]-h.X), float64(local[2]-h.Z)))
		if d < ev.Distance {
			ev.Hole, ev.Distance = h.Name, d
		}
	}
	if ev.Hole == "" {
		ev.Distance = 0
	}
	return ev, true
}

// Snapshot captures the state for spectators. events are attached as-is.
func (s *Simulation) Snapshot(events []DropEvent) spectator.Snapshot {
	pos := s.BallBody.Position()
	vel := s.BallBody.LinearVelocity()
	snap := spectator.Snapshot{
		Tick: s.tick,
		Ball: spectator.BallState{
			Position: [3]float32(pos),
			Rotation: quatArray(s.BallBody.Rotation()),
			Velocity: [3]float32(vel),
			Sleeping: s.BallBody.Sleeping(),
		},
		Root:      quatArray(s.Root.Rotation),
		Container: quatArray(s.ContainerNode.Rotation),
	}
	for _, ev := range events {
		snap.Events = append(snap.Events, spectator.Event{
			Type:     "drop",
			Tick:     ev.Tick,
			Hole:     ev.Hole,
			Distance: ev.Distance,
		})
	}
	return snap
}

func quatArray(q mgl32.Quat) [4]float32 {
	return [4]float32{q.V[0], q.V[1], q.V[2], q.W}
}
