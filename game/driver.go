package game

import (
	"context"
	"log/slog"
	"time"
)

// Driver runs an Engine without a window, pacing frames with a ticker.
type Driver struct {
	engine    *Engine
	interval  time.Duration
	maxFrames int64
}

// NewDriver creates a driver targeting fps frames per second. maxFrames > 0
// stops the run after that many engine ticks.
func NewDriver(e *Engine, fps int, maxFrames int64) *Driver {
	if fps <= 0 {
		fps = 60
	}
	return &Driver{
		engine:    e,
		interval:  time.Second / time.Duration(fps),
		maxFrames: maxFrames,
	}
}

// Run steps the engine once per tick until ctx is cancelled or the frame limit
// is reached. Frame errors and panics are logged and the loop continues.
func (d *Driver) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			slog.Info("driver stopped", "tick", d.engine.Tick(), "reason", ctx.Err())
			return nil
		case now := <-ticker.C:
			delta := now.Sub(last)
			last = now
			d.step(float64(delta) / float64(time.Millisecond))

			if d.maxFrames > 0 && d.engine.Tick() >= d.maxFrames {
				slog.Info("max frames reached", "tick", d.engine.Tick())
				return nil
			}
		}
	}
}

func (d *Driver) step(deltaMillis float64) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("frame panicked", "tick", d.engine.Tick(), "panic", r)
		}
	}()
	if err := d.engine.Frame(deltaMillis); err != nil {
		slog.Error("frame failed", "tick", d.engine.Tick(), "error", err)
	}
}
