package flipbook

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"log"
	"strings"
	"testing"
	"time"
)

type recordingObserver struct {
	progress []LoadState
	phases   []Phase
}

func (o *recordingObserver) OnProgress(st LoadState) { o.progress = append(o.progress, st) }
func (o *recordingObserver) OnPhase(p Phase)         { o.phases = append(o.phases, p) }

// engineFixture is an engine over a 10 frame sequence in a container two
// viewports tall, starting pinned at the top.
type engineFixture struct {
	e       *Engine
	clock   *fakeClock
	geo     *StaticGeometry
	surface *recordingSurface
	loader  *countingLoader
}

func newEngineFixture(t *testing.T, cfg Config) *engineFixture {
	t.Helper()
	fx := &engineFixture{
		clock:   newFakeClock(),
		geo:     &StaticGeometry{G: Geometry{Top: 0, Bottom: 1600, Height: 1600}, ViewportHeight: 800},
		surface: &recordingSurface{w: 16, h: 9},
		loader:  &countingLoader{},
	}
	e, err := New(cfg, fx.loader)
	if err != nil {
		t.Fatal(err)
	}
	e.SetClock(fx.clock)
	fx.e = e
	return fx
}

func (fx *engineFixture) mount(t *testing.T) {
	t.Helper()
	if err := fx.e.Mount(fx.geo, fx.surface); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(fx.e.Unmount)
}

// scrollTo places the container so that progress equals p.
func (fx *engineFixture) scrollTo(p float64) {
	top := -p * (fx.geo.G.Height - fx.geo.ViewportHeight)
	fx.geo.G.Top = top
	fx.geo.G.Bottom = top + fx.geo.G.Height
}

// finishIntro loads everything and runs the intro to its end.
func (fx *engineFixture) finishIntro(t *testing.T) {
	t.Helper()
	waitLoaded(t, fx.e.Cache())
	fx.e.Update()
	fx.clock.Advance(time.Duration(fx.e.cfg.IntroDuration * float64(time.Second)))
	fx.e.Update()
	if fx.e.Phase() != PhaseScrollLinked {
		t.Fatalf("Phase = %v, want scroll", fx.e.Phase())
	}
}

func (fx *engineFixture) settle() {
	for i := 0; i < 100; i++ {
		fx.e.Update()
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	if _, err := New(Config{}, &countingLoader{}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestMountWithoutGeometry(t *testing.T) {
	fx := newEngineFixture(t, testConfig(10))
	if err := fx.e.Mount(nil, fx.surface); !errors.Is(err, ErrNoGeometry) {
		t.Errorf("err = %v, want ErrNoGeometry", err)
	}
	if fx.e.Alive() {
		t.Error("engine alive after failed mount")
	}
}

func TestEngineIntroThenScrollLinked(t *testing.T) {
	fx := newEngineFixture(t, testConfig(10))
	obs := &recordingObserver{}
	fx.e.SetObserver(obs)
	fx.mount(t)
	waitLoaded(t, fx.e.Cache())

	fx.e.Update()
	if fx.e.Phase() != PhaseIntroPlaying {
		t.Fatalf("Phase = %v, want intro", fx.e.Phase())
	}
	if !approx(fx.e.Cursor(), 3, 1e-6) {
		t.Errorf("cursor at intro start = %v, want 3", fx.e.Cursor())
	}
	if st := fx.e.Stats(); st.Draws != 1 || st.Lookups != 1 {
		t.Errorf("stats = %+v, want one lookup and one draw", st)
	}

	fx.clock.Advance(time.Second)
	fx.e.Update()
	if !approx(fx.e.Cursor(), 0.375, 1e-6) {
		t.Errorf("cursor at t=1s = %v, want 0.375", fx.e.Cursor())
	}

	fx.clock.Advance(time.Second)
	fx.e.Update()
	if fx.e.Phase() != PhaseScrollLinked || fx.e.Cursor() != 0 {
		t.Fatalf("phase %v cursor %v, want scroll at exactly 0", fx.e.Phase(), fx.e.Cursor())
	}

	fx.scrollTo(0.5)
	fx.e.Update()
	if !approx(fx.e.Cursor(), 2.25, 1e-9) {
		t.Errorf("cursor after one scroll tick = %v, want 2.25", fx.e.Cursor())
	}
	fx.e.Update()
	if !approx(fx.e.Cursor(), 3.375, 1e-9) {
		t.Errorf("cursor after two scroll ticks = %v, want 3.375", fx.e.Cursor())
	}
	fx.settle()
	if fx.e.Cursor() != 4.5 {
		t.Errorf("settled cursor = %v, want 4.5", fx.e.Cursor())
	}

	draws := fx.surface.draws()
	if draws[0] != 3 || draws[len(draws)-1] != 4 {
		t.Errorf("draws = %v, want starting at 3 and ending at 4", draws)
	}
	for i := 1; i < len(draws); i++ {
		if draws[i] == draws[i-1] {
			t.Errorf("frame %d drawn twice in a row: %v", draws[i], draws)
		}
	}

	if len(obs.phases) != 2 || obs.phases[0] != PhaseIntroPlaying || obs.phases[1] != PhaseScrollLinked {
		t.Errorf("phases = %v, want [intro scroll]", obs.phases)
	}
}

func TestEngineIdleWhenSettled(t *testing.T) {
	fx := newEngineFixture(t, testConfig(10))
	fx.mount(t)
	fx.finishIntro(t)
	fx.scrollTo(1)
	fx.settle()

	before := fx.e.Cache().Lookups()
	fx.e.Update()
	if fx.e.Cache().Lookups() != before {
		t.Error("settled engine looked frames up")
	}
	if fx.surface.draws()[len(fx.surface.draws())-1] != 9 {
		t.Errorf("last draw = %v, want frame 9", fx.surface.draws())
	}
}

func TestEngineOffscreenDoesNoWork(t *testing.T) {
	tests := []struct {
		name string
		top  float64
	}{
		{"below the fold", 800},
		{"scrolled past", -1600},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newEngineFixture(t, testConfig(10))
			fx.geo.G.Top = tt.top
			fx.geo.G.Bottom = tt.top + fx.geo.G.Height
			fx.mount(t)
			waitLoaded(t, fx.e.Cache())

			for i := 0; i < 20; i++ {
				fx.clock.Advance(time.Second)
				fx.e.Update()
				if !fx.e.Stats().Culled {
					t.Fatal("tick not culled")
				}
			}
			if n := fx.e.Cache().Lookups(); n != 0 {
				t.Errorf("lookups = %d, want 0", n)
			}
			if len(fx.surface.draws()) != 0 {
				t.Errorf("draws = %v, want none", fx.surface.draws())
			}
			if fx.e.Phase() != PhasePriming {
				t.Errorf("Phase = %v, want priming until visible", fx.e.Phase())
			}
		})
	}
}

func TestEngineWaitsForLayout(t *testing.T) {
	fx := newEngineFixture(t, testConfig(10))
	fx.geo.ViewportHeight = 0
	fx.mount(t)
	fx.e.Update()
	if !fx.e.Stats().NoGeometry {
		t.Error("tick without layout not reported")
	}
	if fx.e.Cache().Lookups() != 0 {
		t.Error("looked up frames without layout")
	}
}

// firstOnlyLoader serves frame-0 and blocks the rest until release is closed.
type firstOnlyLoader struct {
	release chan struct{}
}

func (l *firstOnlyLoader) Load(ctx context.Context, url string) (image.Image, error) {
	if url != "frame-0" {
		<-l.release
	}
	return solid(4, 3, color.White), nil
}

func TestEnginePrimingShowsFirstFrame(t *testing.T) {
	loader := &firstOnlyLoader{release: make(chan struct{})}
	defer close(loader.release)

	e, err := New(testConfig(10), loader)
	if err != nil {
		t.Fatal(err)
	}
	surface := &recordingSurface{w: 16, h: 9}
	geo := &StaticGeometry{G: Geometry{Top: -400, Bottom: 1200, Height: 1600}, ViewportHeight: 800}
	if err := e.Mount(geo, surface); err != nil {
		t.Fatal(err)
	}
	defer e.Unmount()

	deadline := time.Now().Add(5 * time.Second)
	for len(surface.draws()) == 0 && time.Now().Before(deadline) {
		e.Update()
		time.Sleep(time.Millisecond)
	}
	for i := 0; i < 10; i++ {
		e.Update()
	}
	if got := surface.draws(); len(got) != 1 || got[0] != 0 {
		t.Errorf("draws = %v, want [0]", got)
	}
	if e.Phase() != PhasePriming {
		t.Errorf("Phase = %v, want priming", e.Phase())
	}
	if e.Cursor() != 0 {
		t.Errorf("cursor = %v, scroll sampled while priming", e.Cursor())
	}
}

func TestEngineProgressCallbacks(t *testing.T) {
	var calls []LoadState
	var doneCalls int
	cfg := testConfig(6)
	cfg.OnProgress = func(loaded, total int, done bool) {
		calls = append(calls, LoadState{Loaded: loaded, Total: total})
		if done {
			doneCalls++
		}
	}
	fx := newEngineFixture(t, cfg)
	obs := &recordingObserver{}
	fx.e.SetObserver(obs)
	fx.mount(t)
	waitLoaded(t, fx.e.Cache())

	if len(calls) != 0 {
		t.Fatal("progress delivered outside Update")
	}
	fx.e.Update()
	if len(calls) != 6 {
		t.Fatalf("got %d progress calls, want 6", len(calls))
	}
	for i, c := range calls {
		if c.Loaded != i+1 || c.Total != 6 {
			t.Errorf("call %d = %+v", i, c)
		}
	}
	if doneCalls != 1 {
		t.Errorf("done reported %d times, want once", doneCalls)
	}
	if len(obs.progress) != 6 || !obs.progress[5].Done() {
		t.Errorf("observer progress = %v", obs.progress)
	}
	fx.e.Update()
	if len(calls) != 6 {
		t.Error("progress repeated on a later tick")
	}
}

func TestEngineUnmountStopsDrawing(t *testing.T) {
	fx := newEngineFixture(t, testConfig(10))
	fx.mount(t)
	fx.finishIntro(t)

	fx.e.Unmount()
	fx.e.Unmount()
	if fx.e.Alive() {
		t.Fatal("engine alive after Unmount")
	}
	n := len(fx.surface.draws())
	lookups := fx.e.Cache().Lookups()
	fx.scrollTo(1)
	for i := 0; i < 10; i++ {
		fx.e.Update()
	}
	if len(fx.surface.draws()) != n || fx.e.Cache().Lookups() != lookups {
		t.Error("unmounted engine kept working")
	}
}

func TestEngineLoadsAfterUnmountStaySilent(t *testing.T) {
	loader := &gatedLoader{release: make(chan struct{})}
	calls := 0
	cfg := testConfig(6)
	cfg.OnProgress = func(loaded, total int, done bool) { calls++ }
	e, err := New(cfg, loader)
	if err != nil {
		t.Fatal(err)
	}
	obs := &recordingObserver{}
	e.SetObserver(obs)
	surface := &recordingSurface{w: 16, h: 9}
	geo := &StaticGeometry{G: Geometry{Top: 0, Bottom: 1600, Height: 1600}, ViewportHeight: 800}
	if err := e.Mount(geo, surface); err != nil {
		t.Fatal(err)
	}
	e.Update()
	e.Unmount()

	close(loader.release)
	waitLoaded(t, e.Cache())
	for i := 0; i < 10; i++ {
		e.Update()
	}
	if calls != 0 || len(obs.progress) != 0 || len(obs.phases) != 0 {
		t.Errorf("after Unmount: %d OnProgress calls, observer %v %v", calls, obs.progress, obs.phases)
	}
	if len(surface.draws()) != 0 {
		t.Errorf("draws = %v, want none", surface.draws())
	}
}

func TestEngineRemountDoesNotReload(t *testing.T) {
	fx := newEngineFixture(t, testConfig(10))
	fx.mount(t)
	fx.finishIntro(t)
	fx.scrollTo(1)
	fx.settle()

	fx.mount(t)
	if fx.e.Phase() != PhasePriming || fx.e.Cursor() != 0 {
		t.Errorf("remount kept state: phase %v cursor %v", fx.e.Phase(), fx.e.Cursor())
	}
	fx.e.Update()
	if fx.e.Phase() != PhaseIntroPlaying {
		t.Errorf("Phase = %v, want intro right away with a warm cache", fx.e.Phase())
	}
	if got := fx.loader.calls.Load(); got != 10 {
		t.Errorf("loader calls = %d, want 10", got)
	}
}

func TestEngineNilSurface(t *testing.T) {
	var buf bytes.Buffer
	cfg := testConfig(4)
	cfg.Logger = log.New(&buf, "", 0)
	var progress int
	cfg.OnProgress = func(int, int, bool) { progress++ }

	e, err := New(cfg, &countingLoader{})
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Mount(&StaticGeometry{ViewportHeight: 800, G: Geometry{Bottom: 1600, Height: 1600}}, nil); err != nil {
		t.Fatalf("Mount(nil surface) = %v", err)
	}
	defer e.Unmount()
	waitLoaded(t, e.Cache())

	for i := 0; i < 5; i++ {
		e.Update()
	}
	e.Resize(800, 600, 2)
	if progress != 4 {
		t.Errorf("progress calls = %d, want 4", progress)
	}
	if e.Cache().Lookups() != 0 {
		t.Error("engine without a surface looked frames up")
	}
	if n := strings.Count(buf.String(), "drawing disabled"); n != 1 {
		t.Errorf("surface failure logged %d times, want once: %q", n, buf.String())
	}
}

func TestEngineResizeRedraws(t *testing.T) {
	fx := newEngineFixture(t, testConfig(10))
	fx.mount(t)
	fx.finishIntro(t)
	fx.scrollTo(0.5)
	fx.settle()
	n := len(fx.surface.draws())

	fx.e.Resize(400, 800, 3)
	if fx.surface.w != 800 || fx.surface.h != 1600 {
		t.Fatalf("surface = %dx%d, want 800x1600", fx.surface.w, fx.surface.h)
	}
	fx.e.Update()
	draws := fx.surface.draws()
	if len(draws) != n+1 || draws[n] != 4 {
		t.Errorf("draws after resize = %v, want frame 4 repainted", draws[n:])
	}

	fx.e.Resize(400, 700, 3)
	fx.e.Update()
	if len(fx.surface.draws()) != n+1 {
		t.Error("height-only resize repainted")
	}
}

func TestEngineRecoversFromEmptyViewport(t *testing.T) {
	fx := newEngineFixture(t, testConfig(10))
	fx.mount(t)
	fx.finishIntro(t)
	fx.e.Resize(160, 90, 1)
	fx.e.Update()

	fx.e.Resize(0, 90, 1)
	fx.e.Update()
	fx.e.Resize(320, 180, 1)
	if fx.surface.w != 320 || fx.surface.h != 180 {
		t.Fatalf("surface = %dx%d, want 320x180", fx.surface.w, fx.surface.h)
	}
	n := len(fx.surface.draws())
	fx.e.Update()
	if len(fx.surface.draws()) != n+1 {
		t.Error("no repaint after the viewport came back")
	}
	fx.scrollTo(1)
	fx.settle()
	if draws := fx.surface.draws(); draws[len(draws)-1] != 9 {
		t.Errorf("last draw = %d, want 9", draws[len(draws)-1])
	}
}

func TestEngineSurfaceLossDisablesDrawing(t *testing.T) {
	fx := newEngineFixture(t, testConfig(10))
	fx.mount(t)
	fx.finishIntro(t)
	n := len(fx.surface.draws())

	fx.surface.failing = true
	fx.e.Resize(300, 300, 1)
	fx.scrollTo(1)
	fx.settle()
	if len(fx.surface.draws()) != n {
		t.Error("engine drew after losing its surface")
	}
}

func TestEngineFailedFrameKeepsPrevious(t *testing.T) {
	fx := newEngineFixture(t, testConfig(9))
	fx.loader.fail = map[string]bool{"frame-5": true}
	fx.mount(t)
	fx.finishIntro(t)

	fx.scrollTo(0.625)
	fx.settle()
	if fx.e.Cursor() != 5 {
		t.Fatalf("cursor = %v, want 5", fx.e.Cursor())
	}
	draws := fx.surface.draws()
	for _, d := range draws {
		if d == 5 {
			t.Fatal("failed frame drawn")
		}
	}
	if last := draws[len(draws)-1]; last != 4 {
		t.Errorf("last draw = %d, want previous frame 4", last)
	}
	if fx.e.Cache().Failed() != 1 {
		t.Errorf("Failed = %d, want 1", fx.e.Cache().Failed())
	}
}

func TestEngineResizeOverFailedFrame(t *testing.T) {
	fx := newEngineFixture(t, testConfig(9))
	fx.loader.fail = map[string]bool{"frame-5": true}
	fx.mount(t)
	fx.finishIntro(t)
	fx.scrollTo(0.625)
	fx.settle()

	fx.e.Resize(400, 800, 1)
	fx.e.Update()
	draws := fx.surface.draws()
	if last := draws[len(draws)-1]; last != 4 {
		t.Errorf("repaint after resize = %d, want previous frame 4", last)
	}

	lookups := fx.e.Cache().Lookups()
	n := len(draws)
	fx.settle()
	if got := fx.e.Cache().Lookups(); got != lookups {
		t.Errorf("idle ticks did %d lookups, want 0", got-lookups)
	}
	if len(fx.surface.draws()) != n {
		t.Error("idle ticks repainted")
	}
}

func TestEngineDebugLogsPhases(t *testing.T) {
	var buf bytes.Buffer
	cfg := testConfig(4)
	cfg.Logger = log.New(&buf, "", 0)
	fx := newEngineFixture(t, cfg)
	fx.e.SetDebugMode(true)
	fx.mount(t)
	fx.finishIntro(t)

	out := buf.String()
	if !strings.Contains(out, "[flipbook] phase: intro") || !strings.Contains(out, "[flipbook] phase: scroll") {
		t.Errorf("debug log = %q", out)
	}
}

func TestRunLoopStopsOnUnmount(t *testing.T) {
	fx := newEngineFixture(t, testConfig(4))
	fx.mount(t)

	errc := make(chan error, 1)
	go func() { errc <- RunLoop(context.Background(), fx.e, time.Millisecond) }()
	time.Sleep(20 * time.Millisecond)
	fx.e.Unmount()

	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("RunLoop = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("RunLoop did not stop after Unmount")
	}
}

func TestRunLoopStopsOnCancel(t *testing.T) {
	fx := newEngineFixture(t, testConfig(4))
	fx.mount(t)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- RunLoop(ctx, fx.e, time.Millisecond) }()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("RunLoop = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("RunLoop did not stop after cancel")
	}
}

func TestRunLoopUnmounted(t *testing.T) {
	fx := newEngineFixture(t, testConfig(4))
	if err := RunLoop(context.Background(), fx.e, 0); err != nil {
		t.Errorf("RunLoop on an unmounted engine = %v", err)
	}
}

func TestRunLoopHooksDriveView(t *testing.T) {
	cfg := testConfig(4)
	e, err := New(cfg, &countingLoader{})
	if err != nil {
		t.Fatal(err)
	}
	view := newTestView()
	if err := e.Mount(view, &recordingSurface{w: 16, h: 9}); err != nil {
		t.Fatal(err)
	}
	view.InjectScrollSteps(2400, 4)

	ticks := 0
	err = RunLoop(context.Background(), e, time.Millisecond, func() {
		ticks++
		view.advance(1.0 / 60)
		if view.Pending() == 0 {
			e.Unmount()
		}
	})
	if err != nil {
		t.Fatalf("RunLoop = %v", err)
	}
	if ticks != 4 || view.Offset() != 2400 {
		t.Errorf("ticks %d offset %v, want 4 and 2400", ticks, view.Offset())
	}
}
