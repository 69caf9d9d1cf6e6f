package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pthm-cable/metaballs/config"
)

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.BeginFrame()
		pc.StartPhase(PhaseMotion)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(PhaseRender)
		time.Sleep(200 * time.Microsecond)
		pc.EndFrame()
	}

	stats := pc.Stats()

	if stats.AvgFrame <= 0 {
		t.Error("expected positive average frame duration")
	}

	if stats.PhaseAvg[PhaseMotion] < 100*time.Microsecond {
		t.Errorf("motion avg = %v, want at least the 100us slept", stats.PhaseAvg[PhaseMotion])
	}
	if stats.PhaseAvg[PhaseRender] < 200*time.Microsecond {
		t.Errorf("render avg = %v, want at least the 200us slept", stats.PhaseAvg[PhaseRender])
	}
	if stats.PhaseAvg[PhasePresent] != 0 {
		t.Errorf("present avg = %v, want 0", stats.PhaseAvg[PhasePresent])
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5)

	for i := 0; i < 10; i++ {
		pc.BeginFrame()
		pc.StartPhase(PhaseMotion)
		pc.EndFrame()
	}

	if got := pc.SampleCount(); got != 5 {
		t.Errorf("SampleCount = %d, want 5", got)
	}

	stats := pc.Stats()
	if stats.AvgFrame <= 0 {
		t.Error("expected positive average frame duration after window filled")
	}
	if stats.FrameCap <= 0 {
		t.Error("expected positive frames per second cap")
	}
}

func TestPerfCollector_PhasePercentages(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.BeginFrame()
		pc.StartPhase(PhaseMotion)
		time.Sleep(10 * time.Microsecond)
		pc.StartPhase(PhaseRender)
		time.Sleep(time.Millisecond)
		pc.EndFrame()
	}

	stats := pc.Stats()

	fastPct := stats.PhasePct[PhaseMotion]
	slowPct := stats.PhasePct[PhaseRender]

	if slowPct <= fastPct {
		t.Errorf("expected slow phase (%v%%) > fast phase (%v%%)", slowPct, fastPct)
	}
}

func TestPerfCollector_AddPhaseCountsTowardNextFrame(t *testing.T) {
	pc := NewPerfCollector(10)

	pc.BeginFrame()
	pc.StartPhase(PhaseRender)
	pc.EndFrame()

	pc.AddPhase(PhasePresent, 5*time.Millisecond)

	pc.BeginFrame()
	pc.StartPhase(PhaseMotion)
	pc.EndFrame()

	stats := pc.Stats()
	// Two frames, one of which carries the 5ms present.
	if got := stats.PhaseAvg[PhasePresent]; got != 2500*time.Microsecond {
		t.Errorf("present avg = %v, want 2.5ms", got)
	}
	if stats.MaxFrame < 5*time.Millisecond {
		t.Errorf("max frame = %v, want at least the 5ms present", stats.MaxFrame)
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	pc := NewPerfCollector(10)

	stats := pc.Stats()

	if stats.AvgFrame != 0 {
		t.Error("expected zero avg frame duration for empty collector")
	}

	for ph, pct := range stats.PhasePct {
		if pct != 0 {
			t.Errorf("%v pct = %v, want 0", Phase(ph), pct)
		}
	}
}

func TestPerfCollector_FrameTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	pc.RecordFrame()
	time.Sleep(16 * time.Millisecond)
	pc.RecordFrame()

	stats := pc.Stats()

	if stats.Interval < 15*time.Millisecond {
		t.Errorf("expected frame duration >= 15ms, got %v", stats.Interval)
	}

	// With 16ms frames, expect ~60 FPS (allow range 20-70 for slow CI sleeps)
	if stats.FPS < 20 || stats.FPS > 70 {
		t.Errorf("expected FPS between 20-70 with 16ms frame time, got %v", stats.FPS)
	}
}

func TestPhaseString(t *testing.T) {
	if got := PhasePresent.String(); got != "present" {
		t.Errorf("PhasePresent = %q", got)
	}
	if got := Phase(9).String(); got != "Phase(9)" {
		t.Errorf("Phase(9) = %q", got)
	}
}

func TestOutputManager(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}

	stats := PerfStats{AvgFrame: time.Millisecond, PhasePct: [numPhases]float64{PhaseRender: 80}}
	for i := int64(1); i <= 2; i++ {
		if err := om.WritePerf(stats, FrameInfo{Frame: i * 120, Backend: "cpu", Balls: 3}); err != nil {
			t.Fatalf("WritePerf: %v", err)
		}
	}

	path, err := om.WriteStill([]byte("png"))
	if err != nil {
		t.Fatalf("WriteStill: %v", err)
	}
	if filepath.Base(path) != "still_0001.png" {
		t.Errorf("still path = %q", path)
	}

	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "perf.csv"))
	if err != nil {
		t.Fatalf("reading perf.csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("perf.csv has %d lines, want header + 2 rows:\n%s", len(lines), data)
	}
	if !strings.HasPrefix(lines[0], "frame,backend,balls,") {
		t.Errorf("header = %q", lines[0])
	}

	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config.yaml not written: %v", err)
	}
}

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("NewOutputManager(\"\") = %v, %v; want nil, nil", om, err)
	}
	if err := om.WritePerf(PerfStats{}, FrameInfo{}); err != nil {
		t.Errorf("WritePerf on nil manager: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Errorf("Close on nil manager: %v", err)
	}
}
