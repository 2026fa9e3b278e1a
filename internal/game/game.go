// Package game implements the main game loop and state management.
package game

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/marble-maze/internal/config"
	"github.com/Faultbox/marble-maze/internal/control"
	"github.com/Faultbox/marble-maze/internal/engine/audio"
	"github.com/Faultbox/marble-maze/internal/engine/camera"
	"github.com/Faultbox/marble-maze/internal/engine/debug"
	"github.com/Faultbox/marble-maze/internal/engine/input"
	"github.com/Faultbox/marble-maze/internal/engine/renderer"
	"github.com/Faultbox/marble-maze/internal/engine/ui2d"
	"github.com/Faultbox/marble-maze/internal/engine/window"
	"github.com/Faultbox/marble-maze/internal/hud"
	"github.com/Faultbox/marble-maze/internal/level"
	"github.com/Faultbox/marble-maze/internal/logger"
	"github.com/Faultbox/marble-maze/internal/sim"
	"github.com/Faultbox/marble-maze/internal/spectator"
)

var boundsColor = mgl32.Vec3{1, 1, 0}

// Game is the main game instance.
type Game struct {
	cfg     *config.Config
	running bool

	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	camera   *camera.FreeCamera
	audio    *audio.Manager // nil when disabled or unavailable
	shots    *debug.ScreenshotCapture
	ui       *ui2d.Renderer
	overlay  *hud.Overlay

	sim      *sim.Simulation
	bindings control.Bindings

	static *renderer.Mesh
	ball   *renderer.Mesh
	axes   *renderer.Lines
	bounds *renderer.Lines

	hub       *spectator.Hub
	server    *spectator.Server
	publisher *sim.Publisher

	screenshotPending bool
	drops             int
}

// New builds the level, opens the window and wires every subsystem.
func New(cfg *config.Config, lvl level.Level) (*Game, error) {
	logger.Info("initializing game",
		zap.String("title", cfg.Window.Title),
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
	)

	bindings := control.DefaultBindings()
	if err := bindings.Override(cfg.Controls.Bindings); err != nil {
		return nil, fmt.Errorf("key bindings: %w", err)
	}

	// Geometry first: a level that cannot be built never opens a window.
	s, err := sim.NewSimulation(lvl, sim.OptionsFromConfig(cfg))
	if err != nil {
		return nil, err
	}

	g := &Game{
		cfg:      cfg,
		sim:      s,
		bindings: bindings,
		input:    input.New(),
		shots:    debug.NewScreenshotCapture(cfg.Render.ScreenshotDir, "marble"),
		overlay:  hud.NewOverlay(cfg.Render.ShowDebug),
	}

	// Create window (this also creates OpenGL context)
	g.window, err = window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Create renderer (AFTER window, since OpenGL context must exist)
	w, h := g.window.DrawableSize()
	g.renderer, err = renderer.New(renderer.Config{
		Width:      w,
		Height:     h,
		ClearColor: mgl32.Vec3(cfg.Render.ClearColor),
	})
	if err != nil {
		g.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	g.ui, err = ui2d.New(w, h)
	if err != nil {
		g.Close()
		return nil, fmt.Errorf("failed to create ui renderer: %w", err)
	}

	if err := g.upload(); err != nil {
		g.Close()
		return nil, err
	}

	g.camera = camera.NewFreeCamera(mgl32.Vec3(cfg.Camera.Position), mgl32.Vec3(cfg.Camera.Target))
	g.camera.FOV = mgl32.DegToRad(cfg.Camera.FOV)
	g.camera.MoveSpeed = cfg.Camera.MoveSpeed
	g.camera.LookSensitivity = cfg.Camera.LookSensitivity

	if cfg.Audio.Enabled {
		g.initAudio()
	}

	if cfg.Spectator.Enabled {
		if err := g.startSpectator(lvl); err != nil {
			g.Close()
			return nil, err
		}
	}

	logger.Info("game initialized successfully")
	return g, nil
}

func (g *Game) upload() error {
	var err error
	if g.static, err = g.renderer.Upload(g.sim.Container.Static); err != nil {
		return fmt.Errorf("upload container: %w", err)
	}
	if g.ball, err = g.renderer.Upload(g.sim.Container.Ball); err != nil {
		return fmt.Errorf("upload ball: %w", err)
	}
	if g.cfg.Render.ShowAxes {
		size := g.sim.Level.Floor.Width / 2
		g.axes = g.renderer.UploadLines(debug.AxisLines(size))
		g.bounds = g.renderer.UploadLines(debug.BoundsLines(g.sim.Container.Static.Bounds(), boundsColor))
	}
	return nil
}

// initAudio opens the speaker. Failure leaves the game silent.
func (g *Game) initAudio() {
	m := audio.New()
	m.SetMasterVolume(g.cfg.Audio.Volume)
	m.SetSFXVolume(g.cfg.Audio.SFXVolume)
	if err := m.Init(); err != nil {
		logger.Warn("audio unavailable, continuing without sound", zap.Error(err))
		return
	}
	g.audio = m
}

func (g *Game) startSpectator(lvl level.Level) error {
	g.hub = spectator.NewHub()
	g.server = spectator.NewServer(g.cfg.Spectator.Addr, lvl, g.hub)
	if err := g.server.Start(); err != nil {
		return fmt.Errorf("spectator server: %w", err)
	}
	g.publisher = sim.NewPublisher(g.hub, g.cfg.Spectator.IntervalTicks)
	logger.Info("spectator server listening", zap.String("addr", g.cfg.Spectator.Addr))
	return nil
}

// Run starts the main game loop.
func (g *Game) Run() error {
	g.running = true

	// Timing
	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	var frameBudget time.Duration
	if !g.cfg.Window.VSync && g.cfg.Window.FPSLimit > 0 {
		frameBudget = time.Second / time.Duration(g.cfg.Window.FPSLimit)
	}

	logger.Info("starting game loop")

	for g.running {
		frameStart := time.Now()
		dt := frameStart.Sub(lastTime).Seconds()
		lastTime = frameStart

		// 1. Process input
		if g.input.Update() {
			g.running = false
			break
		}
		g.handleEvents()
		g.moveCamera(float32(dt))

		// 2. Advance the simulation by exactly one fixed step
		events := g.sim.Tick()
		g.onDrops(events)
		if g.publisher != nil {
			g.publisher.Observe(g.sim, events)
		}
		g.overlay.Update(dt * 1000)

		// 3. Render
		g.render()
		if g.screenshotPending {
			g.screenshotPending = false
			g.captureScreenshot()
		}

		// 4. Present (swap buffers)
		g.window.SwapBuffers()
		g.sim.AfterRender()

		// FPS counter
		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			logger.Debug("fps",
				zap.Int("count", frameCount),
				zap.Uint64("tick", g.sim.CurrentTick()),
				zap.Float64("dt_ms", dt*1000),
			)
			frameCount = 0
			fpsTimer = time.Now()
		}

		if frameBudget > 0 {
			if rest := frameBudget - time.Since(frameStart); rest > 0 {
				time.Sleep(rest)
			}
		}
	}

	return nil
}

func (g *Game) handleEvents() {
	for _, event := range g.input.Events() {
		switch event.Type {
		case input.EventWindowResize:
			// The event carries window points; render at the drawable size.
			w, h := g.window.DrawableSize()
			g.renderer.Resize(w, h)
			g.ui.Resize(w, h)

		case input.EventFocusLost:
			// Key-ups for keys held now go to another window.
			g.sim.Controller.ReleaseAll()

		case input.EventKeyDown:
			switch event.Key {
			case sdl.SCANCODE_ESCAPE:
				g.running = false
				continue
			case sdl.SCANCODE_F12:
				if !event.Repeat {
					g.screenshotPending = true
				}
				continue
			case sdl.SCANCODE_F3:
				if !event.Repeat {
					logger.Debug("debug overlay", zap.Bool("visible", g.overlay.Toggle()))
				}
				continue
			}
			// Unbound keys still step held tilt keys.
			a := g.bindings.Lookup(event.KeyName)
			fresh := !event.Repeat && a != control.ActionNone && !g.sim.Controller.Keys().Held(a)
			g.sim.Controller.KeyDown(a, event.Repeat)
			if fresh {
				g.onAction(a)
			}

		case input.EventKeyUp:
			g.sim.Controller.KeyUp(g.bindings.Lookup(event.KeyName))

		case input.EventMouseMove:
			if g.input.Dragging() {
				g.camera.HandleDrag(float32(event.DeltaX), float32(event.DeltaY))
			}

		case input.EventMouseWheel:
			g.camera.HandleZoom(float32(event.DeltaY))
		}
	}
}

// onAction plays feedback for a freshly pressed action.
func (g *Game) onAction(a control.Action) {
	switch a {
	case control.Jump:
		g.play(audio.CueJump)
	case control.Respawn:
		g.play(audio.CueRespawn)
	}
}

func (g *Game) onDrops(events []sim.DropEvent) {
	if len(events) == 0 {
		return
	}
	g.drops += len(events)
	g.window.SetTitle(fmt.Sprintf("%s - drops: %d", g.cfg.Window.Title, g.drops))
	g.play(audio.CueDrop)
	if g.cfg.Game.AutoRespawn {
		g.play(audio.CueRespawn)
	}
}

func (g *Game) play(c audio.Cue) {
	if g.audio == nil {
		return
	}
	if err := g.audio.Play(c); err != nil {
		logger.Debug("cue not played", zap.Error(err))
	}
}

func (g *Game) moveCamera(dt float32) {
	var forward, right float32
	if g.input.IsKeyHeld(sdl.SCANCODE_UP) {
		forward++
	}
	if g.input.IsKeyHeld(sdl.SCANCODE_DOWN) {
		forward--
	}
	if g.input.IsKeyHeld(sdl.SCANCODE_RIGHT) {
		right++
	}
	if g.input.IsKeyHeld(sdl.SCANCODE_LEFT) {
		right--
	}
	if forward != 0 || right != 0 {
		g.camera.Move(forward, right, dt)
	}
}

func (g *Game) render() {
	r := g.renderer
	r.SetCamera(g.camera.View(), g.camera.Projection(r.Aspect()))

	r.Begin()
	containerWorld := g.sim.ContainerNode.World()
	r.DrawMesh(g.static, containerWorld)
	r.DrawMesh(g.ball, g.sim.BallNode.World())
	if g.axes != nil {
		r.DrawLines(g.bounds, containerWorld)
		r.DrawLines(g.axes, containerWorld)
	}
	r.End()

	if g.overlay.Enabled {
		g.overlay.SetStats(g.sim.Stats())
		g.drawOverlay(g.overlay.Render())
	}
}

func (g *Game) drawOverlay(img *image.RGBA) {
	const margin = 10
	b := img.Bounds()
	g.ui.Begin()
	g.ui.DrawRect(margin, margin, float32(b.Dx()), float32(b.Dy()), hud.ColorPanel)
	g.ui.DrawImage(margin, margin, img)
	g.ui.End()
}

func (g *Game) captureScreenshot() {
	pixels, w, h := g.renderer.ReadPixels()
	path, err := g.shots.CaptureFromPixels(pixels, w, h)
	if err != nil {
		logger.Error("screenshot failed", zap.Error(err))
		return
	}
	logger.Info("screenshot saved", zap.String("path", path))
}

// Close cleans up game resources.
func (g *Game) Close() {
	logger.Info("closing game")

	if g.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := g.server.Shutdown(ctx); err != nil {
			logger.Warn("spectator shutdown", zap.Error(err))
		}
		cancel()
	}
	if g.audio != nil {
		g.audio.Close()
	}
	if g.ui != nil {
		g.ui.Close()
	}
	if g.renderer != nil {
		for _, m := range []*renderer.Mesh{g.static, g.ball} {
			if m != nil {
				g.renderer.Release(m)
			}
		}
		for _, l := range []*renderer.Lines{g.axes, g.bounds} {
			if l != nil {
				g.renderer.ReleaseLines(l)
			}
		}
		g.renderer.Close()
	}
	if g.window != nil {
		g.window.Close()
	}
}
