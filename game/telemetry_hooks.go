package game

import (
	"log/slog"

	"github.com/pthm-cable/metaballs/telemetry"
)

// flushTelemetry logs and records perf stats once per perf window.
func (e *Engine) flushTelemetry() {
	window := int64(e.cfg.Telemetry.PerfWindow)
	if window <= 0 || e.tick%window != 0 {
		return
	}
	if !e.logStats && e.output == nil {
		return
	}

	perfStats := e.perf.Stats()

	if e.logStats {
		perfStats.LogStats()
	}

	if e.output != nil {
		info := telemetry.FrameInfo{
			Frame:   e.tick,
			Backend: e.active.Kind().String(),
			Balls:   e.store.Len(),
		}
		if err := e.output.WritePerf(perfStats, info); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}

// SaveStill exports a still frame into the output directory. With output
// disabled it returns an empty path.
func (e *Engine) SaveStill() (string, error) {
	if e.output == nil {
		return "", nil
	}
	data, err := e.ExportStillFrame()
	if err != nil {
		return "", err
	}
	path, err := e.output.WriteStill(data)
	if err != nil {
		return "", err
	}
	slog.Info("still frame saved", "path", path)
	return path, nil
}
