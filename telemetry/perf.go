// Package telemetry collects frame timing and writes it to logs and CSV.
package telemetry

import (
	"fmt"
	"log/slog"
	"time"
)

// Phase is one timed section of an engine frame.
type Phase uint8

// Frame phases, in the order they run.
const (
	PhaseMotion Phase = iota
	PhaseRender
	PhasePresent
	numPhases
)

var phaseNames = [numPhases]string{"motion", "render", "present"}

func (p Phase) String() string {
	if p < numPhases {
		return phaseNames[p]
	}
	return fmt.Sprintf("Phase(%d)", uint8(p))
}

const noPhase = numPhases

// frameSample is the timing of one frame.
type frameSample struct {
	total  time.Duration
	phases [numPhases]time.Duration
}

// PerfCollector keeps a ring of the last windowSize frame samples. Per-frame
// work is allocation free.
type PerfCollector struct {
	samples []frameSample
	next    int
	count   int

	current    frameSample
	pending    [numPhases]time.Duration
	frameStart time.Time
	phaseStart time.Time
	phase      Phase

	lastFrame time.Time
	interval  time.Duration
}

// NewPerfCollector creates a collector averaging over windowSize frames
// (60 when windowSize < 1).
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		samples: make([]frameSample, windowSize),
		phase:   noPhase,
	}
}

// BeginFrame starts timing a frame. Durations added with AddPhase since the
// previous frame ended are folded into this one.
func (p *PerfCollector) BeginFrame() {
	p.frameStart = time.Now()
	p.current = frameSample{phases: p.pending}
	p.pending = [numPhases]time.Duration{}
	p.phase = noPhase
}

// StartPhase closes the running phase, if any, and starts timing ph.
func (p *PerfCollector) StartPhase(ph Phase) {
	now := time.Now()
	p.closePhase(now)
	p.phaseStart = now
	p.phase = ph
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.phase < numPhases {
		p.current.phases[p.phase] += now.Sub(p.phaseStart)
	}
	p.phase = noPhase
}

// AddPhase records work measured outside BeginFrame/EndFrame, such as
// presenting a finished frame. It is counted with the next frame.
func (p *PerfCollector) AddPhase(ph Phase, d time.Duration) {
	if ph < numPhases {
		p.pending[ph] += d
	}
}

// EndFrame closes the frame and stores its sample.
func (p *PerfCollector) EndFrame() {
	now := time.Now()
	p.closePhase(now)

	p.current.total = now.Sub(p.frameStart) + p.current.phases[PhasePresent]
	p.samples[p.next] = p.current
	p.next = (p.next + 1) % len(p.samples)
	p.count = min(p.count+1, len(p.samples))
}

// RecordFrame marks a wall-clock frame boundary for the FPS figure.
func (p *PerfCollector) RecordFrame() {
	now := time.Now()
	if !p.lastFrame.IsZero() {
		p.interval = now.Sub(p.lastFrame)
	}
	p.lastFrame = now
}

// SampleCount returns the number of frames in the window.
func (p *PerfCollector) SampleCount() int {
	return p.count
}

// PerfStats aggregates the current window.
type PerfStats struct {
	AvgFrame time.Duration // work per frame, present included
	MinFrame time.Duration
	MaxFrame time.Duration

	PhaseAvg [numPhases]time.Duration
	PhasePct [numPhases]float64 // share of AvgFrame

	FrameCap float64 // frames per second the work alone would allow

	Interval time.Duration // last wall-clock frame interval
	FPS      float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	s := PerfStats{Interval: p.interval}
	if p.interval > 0 {
		s.FPS = float64(time.Second) / float64(p.interval)
	}
	if p.count == 0 {
		return s
	}

	var total time.Duration
	var phaseSum [numPhases]time.Duration
	for i, sample := range p.samples[:p.count] {
		total += sample.total
		if i == 0 || sample.total < s.MinFrame {
			s.MinFrame = sample.total
		}
		s.MaxFrame = max(s.MaxFrame, sample.total)
		for ph, d := range sample.phases {
			phaseSum[ph] += d
		}
	}

	n := time.Duration(p.count)
	s.AvgFrame = total / n
	for ph, sum := range phaseSum {
		s.PhaseAvg[ph] = sum / n
		if s.AvgFrame > 0 {
			s.PhasePct[ph] = float64(s.PhaseAvg[ph]) / float64(s.AvgFrame) * 100
		}
	}
	if s.AvgFrame > 0 {
		s.FrameCap = float64(time.Second) / float64(s.AvgFrame)
	}
	return s
}

// LogStats logs one perf line.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_frame_us", s.AvgFrame.Microseconds(),
		"min_frame_us", s.MinFrame.Microseconds(),
		"max_frame_us", s.MaxFrame.Microseconds(),
		"frames_per_sec_cap", int(s.FrameCap),
	}
	if s.FPS > 0 {
		attrs = append(attrs, "fps", int(s.FPS))
	}
	for ph, pct := range s.PhasePct {
		if pct > 0.1 {
			attrs = append(attrs, Phase(ph).String()+"_pct", int(pct*10)/10.0)
		}
	}
	slog.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_frame_us", s.AvgFrame.Microseconds()),
		slog.Int64("min_frame_us", s.MinFrame.Microseconds()),
		slog.Int64("max_frame_us", s.MaxFrame.Microseconds()),
		slog.Float64("frames_per_sec_cap", s.FrameCap),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}
	for ph, pct := range s.PhasePct {
		attrs = append(attrs, slog.Float64(Phase(ph).String()+"_pct", pct))
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is one perf.csv row.
type PerfStatsCSV struct {
	Frame      int64   `csv:"frame"`
	Backend    string  `csv:"backend"`
	Balls      int     `csv:"balls"`
	AvgFrameUS int64   `csv:"avg_frame_us"`
	MinFrameUS int64   `csv:"min_frame_us"`
	MaxFrameUS int64   `csv:"max_frame_us"`
	FPS        float64 `csv:"fps"`
	MotionPct  float64 `csv:"motion_pct"`
	RenderPct  float64 `csv:"render_pct"`
	PresentPct float64 `csv:"present_pct"`
	FramesCap  float64 `csv:"frames_per_sec_cap"`
}

// FrameInfo identifies the engine state a stats window ended on.
type FrameInfo struct {
	Frame   int64
	Backend string
	Balls   int
}

// ToCSV flattens the stats into a perf.csv row.
func (s PerfStats) ToCSV(info FrameInfo) PerfStatsCSV {
	return PerfStatsCSV{
		Frame:      info.Frame,
		Backend:    info.Backend,
		Balls:      info.Balls,
		AvgFrameUS: s.AvgFrame.Microseconds(),
		MinFrameUS: s.MinFrame.Microseconds(),
		MaxFrameUS: s.MaxFrame.Microseconds(),
		FPS:        s.FPS,
		MotionPct:  s.PhasePct[PhaseMotion],
		RenderPct:  s.PhasePct[PhaseRender],
		PresentPct: s.PhasePct[PhasePresent],
		FramesCap:  s.FrameCap,
	}
}
