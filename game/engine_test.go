package game

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"math"
	"testing"

	"github.com/pthm-cable/metaballs/config"
	"github.com/pthm-cable/metaballs/systems"
)

// fakeGPU records calls in place of the raylib backend.
type fakeGPU struct {
	renders  int
	presents int
	surface  Surface
	unloaded bool
	panicOn  bool
}

func (f *fakeGPU) Kind() Kind { return GPU }

func (f *fakeGPU) Resize(s Surface) error {
	f.surface = s
	return nil
}

func (f *fakeGPU) Render(*Scene) error {
	f.renders++
	if f.panicOn {
		panic("shader exploded")
	}
	return nil
}

func (f *fakeGPU) Present() error {
	f.presents++
	return nil
}

func (f *fakeGPU) Still(s *Scene) (image.Image, error) {
	w, h := int(float64(s.Width)*s.Quality), int(float64(s.Height)*s.Quality)
	return image.NewRGBA(image.Rect(0, 0, w, h)), nil
}

func (f *fakeGPU) Unload() { f.unloaded = true }

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	cfg.Screen.Width = 400
	cfg.Screen.Height = 300
	cfg.Screen.Quality = 0.5
	cfg.Render.Workers = 2
	for i := range cfg.Balls.Initial {
		cfg.Balls.Initial[i].Radius = 20
	}
	return cfg
}

func newTestEngine(t *testing.T, opts Options) *Engine {
	t.Helper()
	if opts.Config == nil {
		opts.Config = testConfig(t)
	}
	e, err := NewEngine(opts)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	t.Cleanup(e.Unload)
	return e
}

func ptr(v float64) *float64 { return &v }

func TestNewEngineDefaults(t *testing.T) {
	e := newTestEngine(t, Options{})

	stats := e.FrameStats()
	if stats.BallCount != 3 {
		t.Errorf("BallCount = %d, want 3", stats.BallCount)
	}
	if stats.Backend != CPU {
		t.Errorf("Backend = %v, want cpu", stats.Backend)
	}
	if e.GPUAvailable() {
		t.Error("GPUAvailable() = true without a loader")
	}

	// Initial balls sit on their orbits.
	cx, cy := 200.0, 150.0
	for i, b := range e.Balls() {
		tx, ty := b.Orbit.Target(cx, cy)
		if math.Abs(tx-b.X) > 1e-9 || math.Abs(ty-b.Y) > 1e-9 {
			t.Errorf("ball %d at (%f, %f), orbit target (%f, %f)", i, b.X, b.Y, tx, ty)
		}
	}
}

func TestNewEngineGPULoadFailure(t *testing.T) {
	cfg := testConfig(t)
	cfg.Render.Backend = "gpu"
	e := newTestEngine(t, Options{
		Config:  cfg,
		LoadGPU: func() (Backend, error) { return nil, errors.New("no GL context") },
	})

	if e.GPUAvailable() {
		t.Error("GPUAvailable() = true after load failure")
	}
	if e.Backend() != CPU {
		t.Errorf("Backend = %v, want cpu fallback", e.Backend())
	}
}

func TestSetBackend(t *testing.T) {
	gpu := &fakeGPU{}
	e := newTestEngine(t, Options{LoadGPU: func() (Backend, error) { return gpu, nil }})

	if !e.GPUAvailable() {
		t.Fatal("GPUAvailable() = false with a working loader")
	}
	if gpu.surface != e.Surface() {
		t.Errorf("gpu surface = %+v, want %+v", gpu.surface, e.Surface())
	}

	if err := e.SetBackend(GPU); err != nil {
		t.Fatalf("SetBackend(GPU): %v", err)
	}
	if err := e.Frame(16); err != nil {
		t.Fatalf("Frame: %v", err)
	}
	if err := e.Present(); err != nil {
		t.Fatalf("Present: %v", err)
	}
	if gpu.renders != 1 || gpu.presents != 1 {
		t.Errorf("gpu renders=%d presents=%d, want 1 and 1", gpu.renders, gpu.presents)
	}

	if err := e.SetBackend(CPU); err != nil {
		t.Fatalf("SetBackend(CPU): %v", err)
	}
	if err := e.Frame(16); err != nil {
		t.Fatalf("Frame: %v", err)
	}
	if gpu.renders != 1 {
		t.Errorf("gpu rendered while cpu active")
	}

	e.Unload()
	if !gpu.unloaded {
		t.Error("Unload did not release the gpu backend")
	}
}

func TestSetBackendGPUUnavailable(t *testing.T) {
	e := newTestEngine(t, Options{})

	if err := e.SetBackend(GPU); !errors.Is(err, ErrGPUUnavailable) {
		t.Fatalf("SetBackend(GPU) error = %v, want ErrGPUUnavailable", err)
	}
	if e.Backend() != CPU {
		t.Errorf("Backend = %v, want cpu", e.Backend())
	}
	if err := e.SetBackend(Kind(9)); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("SetBackend(9) error = %v, want ErrUnknownBackend", err)
	}
}

func TestSetConfigClamps(t *testing.T) {
	e := newTestEngine(t, Options{})
	before := e.Settings()

	e.SetConfig(Partial{Resolution: ptr(-5), Glow: ptr(-1), Threshold: ptr(math.NaN())})

	got := e.Settings()
	if got.Resolution != 1 {
		t.Errorf("Resolution = %g, want 1", got.Resolution)
	}
	if got.Glow != 0 {
		t.Errorf("Glow = %g, want 0", got.Glow)
	}
	if got.Threshold != 0 {
		t.Errorf("Threshold = %g, want 0", got.Threshold)
	}
	if got.Speed != before.Speed || got.MouseForce != before.MouseForce {
		t.Errorf("untouched fields changed: %+v -> %+v", before, got)
	}

	e.SetConfig(Partial{Speed: ptr(2.5)})
	if e.Settings().Speed != 2.5 {
		t.Errorf("Speed = %g, want 2.5", e.Settings().Speed)
	}
}

func TestResizeClampsQuality(t *testing.T) {
	e := newTestEngine(t, Options{})

	tests := []struct {
		in, want float64
	}{
		{5, MaxQuality},
		{0.01, MinQuality},
		{math.NaN(), 1},
		{0.75, 0.75},
	}
	for _, tt := range tests {
		if err := e.Resize(200, 100, tt.in); err != nil {
			t.Fatalf("Resize: %v", err)
		}
		if got := e.Surface().Quality; got != tt.want {
			t.Errorf("Resize quality %g -> %g, want %g", tt.in, got, tt.want)
		}
	}

	if err := e.Resize(200, 100, 2); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if got := e.cpu.raster.Image().Bounds().Size(); got != (image.Point{X: 400, Y: 200}) {
		t.Errorf("cpu buffer = %v, want 400x200", got)
	}
}

func TestZeroSurfaceSkipsRender(t *testing.T) {
	e := newTestEngine(t, Options{})
	if err := e.Resize(0, 0, 1); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if err := e.Frame(16); err != nil {
		t.Errorf("Frame on zero surface: %v", err)
	}
	if _, err := e.ExportStillFrame(); !errors.Is(err, ErrZeroSurface) {
		t.Errorf("ExportStillFrame error = %v, want ErrZeroSurface", err)
	}
}

func TestDragAndRelease(t *testing.T) {
	e := newTestEngine(t, Options{})
	b := e.Balls()[0]

	if !e.PointerDown(b.X+5, b.Y) {
		t.Fatal("PointerDown on a ball did not grab it")
	}
	if !e.Dragging() {
		t.Fatal("Dragging() = false after grab")
	}

	e.PointerMove(120, 80)
	if err := e.Frame(16); err != nil {
		t.Fatalf("Frame: %v", err)
	}
	held := e.Balls()[0]
	if held.X != 115 || held.Y != 80 || !held.Dragging {
		t.Fatalf("dragged ball at (%f, %f) dragging=%v, want (115, 80)", held.X, held.Y, held.Dragging)
	}

	e.PointerUp(120, 80)
	if e.Dragging() {
		t.Fatal("still dragging after PointerUp")
	}
	dropped := e.Balls()[0]
	tx, ty := dropped.Orbit.Target(200, 150)
	if math.Abs(tx-115) > 1e-9 || math.Abs(ty-80) > 1e-9 {
		t.Errorf("orbit target after release = (%f, %f), want drop point (115, 80)", tx, ty)
	}
}

func TestPointerDownMiss(t *testing.T) {
	e := newTestEngine(t, Options{})
	if e.PointerDown(1, 1) {
		t.Error("PointerDown on empty space grabbed a ball")
	}
	e.PointerUp(1, 1)
}

func TestSpawnBall(t *testing.T) {
	e := newTestEngine(t, Options{Seed: 3})

	b := e.Balls()[0]
	if _, err := e.SpawnBall(b.X, b.Y); !errors.Is(err, ErrOccupied) {
		t.Fatalf("spawn on a ball error = %v, want ErrOccupied", err)
	}

	id, err := e.SpawnBall(5, 5)
	if err != nil {
		t.Fatalf("SpawnBall: %v", err)
	}
	if e.FrameStats().BallCount != 4 {
		t.Errorf("BallCount = %d, want 4", e.FrameStats().BallCount)
	}
	balls := e.Balls()
	if last := balls[len(balls)-1]; last.ID != id {
		t.Error("spawned ball is not on top")
	}
}

func TestSpawnEvictsAtCapacity(t *testing.T) {
	cfg := testConfig(t)
	cfg.Balls.MaxCount = 4
	cfg.Balls.SpawnRadius = [2]float64{2, 3}
	e := newTestEngine(t, Options{Config: cfg})
	first := e.Balls()[0].ID

	for i := 0; i < 3; i++ {
		if _, err := e.SpawnBall(10+float64(i)*20, 290); err != nil {
			t.Fatalf("SpawnBall %d: %v", i, err)
		}
	}
	if n := e.FrameStats().BallCount; n != 4 {
		t.Fatalf("BallCount = %d, want cap 4", n)
	}
	for _, b := range e.Balls() {
		if b.ID == first {
			t.Error("oldest ball survived past capacity")
		}
	}
}

func TestToggleEffect(t *testing.T) {
	e := newTestEngine(t, Options{})

	on, err := e.ToggleEffect("gravity")
	if err != nil || !on {
		t.Fatalf("ToggleEffect(gravity) = %v, %v", on, err)
	}
	if !e.Effects().Has(systems.Gravity) {
		t.Error("gravity not active")
	}
	if _, err := e.ToggleEffect("antigravity"); !errors.Is(err, systems.ErrUnknownEffect) {
		t.Errorf("unknown effect error = %v", err)
	}
}

func TestPausedFreezesMotion(t *testing.T) {
	e := newTestEngine(t, Options{})
	e.SetPaused(true)
	before := e.Balls()
	for i := 0; i < 5; i++ {
		if err := e.Frame(16); err != nil {
			t.Fatalf("Frame: %v", err)
		}
	}
	after := e.Balls()
	for i := range before {
		if before[i].X != after[i].X || before[i].Y != after[i].Y {
			t.Errorf("ball %d moved while paused", i)
		}
	}
	if e.Tick() != 5 {
		t.Errorf("Tick = %d, want 5", e.Tick())
	}
}

func TestExportStillFrame(t *testing.T) {
	e := newTestEngine(t, Options{})
	for i := 0; i < 3; i++ {
		if err := e.Frame(16); err != nil {
			t.Fatalf("Frame: %v", err)
		}
	}

	data, err := e.ExportStillFrame()
	if err != nil {
		t.Fatalf("ExportStillFrame: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decoding PNG: %v", err)
	}

	// Rendered at quality 0.5 and rescaled to the logical size.
	if got := img.Bounds().Size(); got != (image.Point{X: 400, Y: 300}) {
		t.Fatalf("still size = %v, want 400x300", got)
	}

	// Transparent background away from the balls; the trail fade is not applied.
	if _, _, _, a := img.At(0, 0).RGBA(); a != 0 {
		t.Errorf("corner alpha = %d, want 0", a)
	}

	b := e.Balls()[0]
	if _, _, _, a := img.At(int(b.X), int(b.Y)).RGBA(); a < 0xc000 {
		t.Errorf("alpha at ball centre = %#x, want near the cap", a)
	}
}
