// Package game wires the ball store, motion integrator and render backends
// into the Engine a host drives frame by frame.
package game

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/pthm-cable/metaballs/balls"
	"github.com/pthm-cable/metaballs/components"
	"github.com/pthm-cable/metaballs/config"
	"github.com/pthm-cable/metaballs/field"
	"github.com/pthm-cable/metaballs/raster"
	"github.com/pthm-cable/metaballs/systems"
	"github.com/pthm-cable/metaballs/telemetry"
)

// Options configures a new Engine.
type Options struct {
	Config *config.Config // nil = embedded defaults
	Seed   int64          // spawn colour/size RNG seed

	// LoadGPU builds the GPU backend. It is called once; nil or an error
	// leaves the engine CPU-only.
	LoadGPU func() (Backend, error)

	// Presenter shows the CPU buffer on screen. Nil for headless runs.
	Presenter Presenter

	Output   *telemetry.OutputManager
	LogStats bool
}

// Stats is the outbound per-frame summary.
type Stats struct {
	FPS       float64
	BallCount int
	Backend   Kind
	Tick      int64
}

// Engine is the metaballs core. It is not safe for concurrent use: the host
// calls every method from one goroutine.
type Engine struct {
	cfg     *config.Config
	law     field.Law
	store   *balls.Store
	spawner *balls.Spawner
	motion  *systems.Integrator

	cpu    *cpuBackend
	gpu    Backend
	active Backend

	surface  Surface
	settings Settings
	paused   bool

	pointerX, pointerY float64
	dragDX, dragDY     float64

	tick     int64
	elapsed  float64 // simulated seconds, drives the pulse
	snapshot []balls.Ball

	perf     *telemetry.PerfCollector
	output   *telemetry.OutputManager
	logStats bool
}

// NewEngine creates an engine with the configured initial balls.
func NewEngine(opts Options) (*Engine, error) {
	cfg := opts.Config
	if cfg == nil {
		var err error
		if cfg, err = config.Load(""); err != nil {
			return nil, err
		}
	}

	strategy, err := raster.ParseStrategy(cfg.Render.CPUStrategy)
	if err != nil {
		return nil, fmt.Errorf("render config: %w", err)
	}

	e := &Engine{
		cfg:   cfg,
		law:   cfg.Derived.Law,
		store: balls.NewStore(cfg.Balls.MaxCount),
		spawner: balls.NewSpawner(opts.Seed, balls.SpawnRanges{
			Radius:   cfg.Balls.SpawnRadius,
			Speed:    cfg.Balls.SpawnSpeed,
			SatValue: cfg.Balls.SpawnSatValue,
		}),
		motion:   systems.NewIntegrator(motionParams(cfg.Motion)),
		perf:     telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		output:   opts.Output,
		logStats: opts.LogStats,
	}
	if err := e.motion.Enable(cfg.Effects...); err != nil {
		return nil, err
	}
	e.settings = Settings{
		Resolution: cfg.Render.Resolution,
		Threshold:  cfg.Render.Threshold,
		Speed:      cfg.Render.Speed,
		Glow:       cfg.Render.Glow,
		MouseForce: cfg.Render.MouseForce,
	}.clamped()

	rast := raster.New(raster.Options{Law: e.law, Strategy: strategy, Workers: cfg.Render.Workers})
	e.cpu = newCPUBackend(rast, opts.Presenter)
	e.active = e.cpu

	if opts.LoadGPU != nil {
		gpu, err := opts.LoadGPU()
		if err != nil {
			slog.Warn("gpu backend unavailable, using cpu", "error", err)
		} else {
			e.gpu = gpu
		}
	}

	if err := e.Resize(cfg.Screen.Width, cfg.Screen.Height, cfg.Screen.Quality); err != nil {
		e.Unload()
		return nil, err
	}

	if err := e.spawnInitial(); err != nil {
		e.Unload()
		return nil, err
	}

	kind, err := ParseKind(cfg.Render.Backend)
	if err != nil {
		e.Unload()
		return nil, fmt.Errorf("render config: %w", err)
	}
	if err := e.SetBackend(kind); err != nil {
		slog.Warn("falling back to cpu backend", "requested", kind, "error", err)
	}

	slog.Info("engine ready",
		"width", e.surface.Width,
		"height", e.surface.Height,
		"quality", e.surface.Quality,
		"balls", e.store.Len(),
		"backend", e.active.Kind(),
		"gpu_available", e.GPUAvailable(),
	)
	return e, nil
}

func motionParams(m config.MotionConfig) systems.Params {
	return systems.Params{
		MaxDT:          m.MaxDT,
		SmoothingRate:  m.SmoothingRate,
		Wobble:         m.Wobble,
		Damping:        m.Damping,
		Restitution:    m.Restitution,
		Gravity:        m.Gravity,
		GravityMin:     m.GravityMin,
		GravityMax:     m.GravityMax,
		CollisionRatio: m.CollisionRatio,
		MouseMin:       m.MouseMin,
		MouseMax:       m.MouseMax,
	}
}

// spawnInitial places the configured balls evenly around their orbits.
func (e *Engine) spawnInitial() error {
	cx, cy := e.centre()
	n := len(e.cfg.Balls.Initial)
	for i, b := range e.cfg.Balls.Initial {
		angle := 2 * math.Pi * float64(i) / float64(n)
		orbit := components.Orbit{Angle: angle, Radius: b.OrbitRadius, Speed: b.OrbitSpeed}
		x, y := orbit.Target(cx, cy)
		_, err := e.store.Add(balls.Spec{
			X:      x,
			Y:      y,
			Radius: b.Radius,
			Phase:  angle,
			Color:  balls.FromColorful(e.cfg.Derived.Palette[i]),
			Orbit:  orbit,
		})
		if err != nil {
			return fmt.Errorf("initial ball %d: %w", i, err)
		}
	}
	return nil
}

func (e *Engine) centre() (float64, float64) {
	return float64(e.surface.Width) / 2, float64(e.surface.Height) / 2
}

// frameInput builds the integrator input for one tick.
func (e *Engine) frameInput(dt float64) systems.Frame {
	return systems.Frame{
		DT:          dt,
		PointerX:    e.pointerX,
		PointerY:    e.pointerY,
		DragOffsetX: e.dragDX,
		DragOffsetY: e.dragDY,
		Width:       float64(e.surface.Width),
		Height:      float64(e.surface.Height),
		Speed:       e.settings.Speed,
		MouseForce:  e.settings.MouseForce,
	}
}

// Frame advances motion by one tick and renders it into the active backend.
// A zero-area surface skips rendering.
func (e *Engine) Frame(deltaMillis float64) error {
	e.perf.RecordFrame()
	e.perf.BeginFrame()

	e.perf.StartPhase(telemetry.PhaseMotion)
	if !e.paused {
		dt := systems.FrameDT(deltaMillis, e.motion.Params().MaxDT)
		e.elapsed += dt
		e.motion.Step(e.store, e.frameInput(dt))
	}
	e.tick++

	e.perf.StartPhase(telemetry.PhaseRender)
	err := e.render()
	e.perf.EndFrame()

	e.flushTelemetry()
	return err
}

func (e *Engine) render() error {
	if e.surface.Empty() {
		return nil
	}
	scene := e.scene()
	err := e.active.Render(&scene)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrZeroSurface):
		slog.Debug("render skipped", "reason", err)
		return nil
	}
	return fmt.Errorf("rendering %v frame: %w", e.active.Kind(), err)
}

func (e *Engine) scene() Scene {
	e.snapshot = e.store.Snapshot(e.snapshot)
	return Scene{
		Surface:    e.surface,
		Balls:      e.snapshot,
		Law:        e.law,
		Resolution: e.settings.Resolution,
		Threshold:  e.settings.Threshold,
		Glow:       e.settings.Glow,
		TrailAlpha: e.cfg.Render.TrailAlpha,
		Time:       e.elapsed,
		Pulse:      e.motion.Effects().Has(systems.Pulse),
	}
}

// Present pushes the active backend's latest frame to the window.
func (e *Engine) Present() error {
	start := time.Now()
	err := e.active.Present()
	e.perf.AddPhase(telemetry.PhasePresent, time.Since(start))
	if err != nil {
		return fmt.Errorf("presenting %v frame: %w", e.active.Kind(), err)
	}
	return nil
}

// FrameStats returns the outbound frame summary.
func (e *Engine) FrameStats() Stats {
	return Stats{
		FPS:       e.perf.Stats().FPS,
		BallCount: e.store.Len(),
		Backend:   e.active.Kind(),
		Tick:      e.tick,
	}
}

// Tick returns the number of frames run.
func (e *Engine) Tick() int64 {
	return e.tick
}

// Balls returns a snapshot of every ball, oldest first.
func (e *Engine) Balls() []balls.Ball {
	return e.store.Snapshot(nil)
}

// Effects returns the active effect set.
func (e *Engine) Effects() systems.Effects {
	return e.motion.Effects()
}

// SetPaused stops or resumes motion. Rendering continues while paused.
func (e *Engine) SetPaused(paused bool) {
	e.paused = paused
}

// Paused reports whether motion is stopped.
func (e *Engine) Paused() bool {
	return e.paused
}

// Unload releases every backend.
func (e *Engine) Unload() {
	if e.gpu != nil {
		e.gpu.Unload()
		e.gpu = nil
	}
	e.cpu.Unload()
	e.active = e.cpu
}
