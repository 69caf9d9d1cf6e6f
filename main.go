package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/metaballs/config"
	"github.com/pthm-cable/metaballs/game"
	"github.com/pthm-cable/metaballs/renderer"
	"github.com/pthm-cable/metaballs/telemetry"
	"github.com/pthm-cable/metaballs/ui"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics (CPU backend only)")
	logStats := flag.Bool("log-stats", false, "Output perf stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for perf CSV, config snapshot and stills")
	seed := flag.Int64("seed", 0, "RNG seed for spawned balls (0 = time-based)")
	maxFrames := flag.Int64("max-frames", 0, "Stop after N frames (0 = unlimited)")
	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(*configPath, *headless, *logStats, *outputDir, *seed, *maxFrames); err != nil {
		slog.Error("metaballs exited", "error", err)
		os.Exit(1)
	}
}

func run(configPath string, headless, logStats bool, outputDir string, seed, maxFrames int64) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	output, err := telemetry.NewOutputManager(outputDir)
	if err != nil {
		return err
	}
	defer output.Close()
	if err := output.WriteConfig(cfg); err != nil {
		return fmt.Errorf("writing config snapshot: %w", err)
	}

	opts := game.Options{
		Config:   cfg,
		Seed:     seed,
		Output:   output,
		LogStats: logStats,
	}

	if headless {
		return runHeadless(opts, maxFrames)
	}
	return runWindow(opts, maxFrames)
}

// runHeadless drives the CPU backend on a ticker until interrupted.
func runHeadless(opts game.Options, maxFrames int64) error {
	e, err := game.NewEngine(opts)
	if err != nil {
		return err
	}
	defer e.Unload()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("starting headless run",
		"seed", opts.Seed,
		"max_frames", maxFrames,
		"target_fps", opts.Config.Screen.TargetFPS,
	)
	if err := game.NewDriver(e, opts.Config.Screen.TargetFPS, maxFrames).Run(ctx); err != nil {
		return err
	}
	slog.Info("headless run finished", "frames", e.Tick())
	return nil
}

// runWindow opens a resizable window and runs the interactive loop.
func runWindow(opts game.Options, maxFrames int64) error {
	cfg := opts.Config
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Metaballs")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	opts.LoadGPU = func() (game.Backend, error) {
		g, err := renderer.LoadGPU()
		if err != nil {
			return nil, err
		}
		return g, nil
	}
	sink := renderer.NewTextureSink()
	opts.Presenter = sink

	e, err := game.NewEngine(opts)
	if err != nil {
		return err
	}
	defer e.Unload()

	panel := ui.NewPanel()
	panel.OnStill = func() { saveStill(e) }

	for !rl.WindowShouldClose() {
		if rl.IsWindowResized() {
			if err := e.Resize(int(rl.GetScreenWidth()), int(rl.GetScreenHeight()), e.Surface().Quality); err != nil {
				slog.Warn("resize failed", "error", err)
			}
		}
		handlePointer(e, panel)
		handleKeys(e, panel)

		if err := e.Frame(float64(rl.GetFrameTime()) * 1000); err != nil {
			slog.Warn("frame failed", "tick", e.Tick(), "error", err)
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.Black)
		if err := e.Present(); err != nil {
			slog.Warn("present failed", "error", err)
		}
		panel.Draw(e)
		rl.EndDrawing()

		if maxFrames > 0 && e.Tick() >= maxFrames {
			slog.Info("max frames reached", "tick", e.Tick())
			break
		}
	}
	return nil
}

// handlePointer routes the mouse to dragging, or spawns a ball on an empty press.
func handlePointer(e *game.Engine, panel *ui.Panel) {
	m := rl.GetMousePosition()
	x, y := float64(m.X), float64(m.Y)

	if rl.IsMouseButtonPressed(rl.MouseLeftButton) && !panel.Contains(m.X, m.Y) {
		if !e.PointerDown(x, y) {
			if _, err := e.SpawnBall(x, y); err != nil && !errors.Is(err, game.ErrOccupied) {
				slog.Warn("spawn failed", "error", err)
			}
		}
	}
	e.PointerMove(x, y)
	if rl.IsMouseButtonReleased(rl.MouseLeftButton) && e.Dragging() {
		e.PointerUp(x, y)
	}
}

var effectKeys = map[int32]string{
	rl.KeyG: "gravity",
	rl.KeyC: "collision",
	rl.KeyA: "attract",
	rl.KeyR: "repel",
	rl.KeyP: "pulse",
}

func handleKeys(e *game.Engine, panel *ui.Panel) {
	for key, name := range effectKeys {
		if rl.IsKeyPressed(key) {
			on, err := e.ToggleEffect(name)
			if err != nil {
				slog.Warn("toggle effect", "effect", name, "error", err)
				continue
			}
			slog.Info("effect toggled", "effect", name, "on", on)
		}
	}

	switch {
	case rl.IsKeyPressed(rl.KeyB):
		next := game.GPU
		if e.Backend() == game.GPU {
			next = game.CPU
		}
		if err := e.SetBackend(next); err != nil {
			slog.Warn("switch backend", "error", err)
		}
	case rl.IsKeyPressed(rl.KeyS):
		saveStill(e)
	case rl.IsKeyPressed(rl.KeyH):
		panel.Toggle()
	case rl.IsKeyPressed(rl.KeySpace):
		e.SetPaused(!e.Paused())
	}
}

// saveStill writes a still into the output directory, or the working
// directory when output is disabled.
func saveStill(e *game.Engine) {
	path, err := e.SaveStill()
	if err != nil {
		slog.Warn("saving still", "error", err)
		return
	}
	if path != "" {
		return
	}

	data, err := e.ExportStillFrame()
	if err != nil {
		slog.Warn("exporting still", "error", err)
		return
	}
	path = fmt.Sprintf("metaballs_%06d.png", e.Tick())
	if err := os.WriteFile(path, data, 0644); err != nil {
		slog.Warn("writing still", "path", path, "error", err)
		return
	}
	slog.Info("still frame saved", "path", path)
}
