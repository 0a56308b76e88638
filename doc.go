// Package flipbook plays a preloaded image sequence in step with scroll on
// [Ebitengine].
//
// An [Engine] preloads N frames, plays a one-time eased intro from a
// configured frame back to frame 0, then maps the scroll position of a tall
// container to a frame and repaints a drawing surface every tick, smoothing
// toward the scroll target and doing no work while the container is off
// screen.
//
// # Quick start
//
// The simplest way to get started is [Run], which opens a window, mounts the
// engine on a [ScrollView] and runs the game loop:
//
//	flipbook.Run(engine, flipbook.NewScrollView(0, 8), flipbook.RunConfig{
//		Title: "Hero", Width: 1280, Height: 720, ShowLoading: true,
//	})
//
// For full control, forward an [ebiten.Game] to the engine and the view:
//
//	cfg := flipbook.DefaultConfig()
//	cfg.FrameCount = 187
//	cfg.PathTemplate = "sequence/frame_%03d_delay-0.042s.webp"
//	cfg.IndexOffset = 6
//
//	engine, err := flipbook.New(cfg, flipbook.FSLoader{FS: os.DirFS("public")})
//	if err != nil {
//		log.Fatal(err)
//	}
//	view := flipbook.NewScrollView(0, 8) // container is 8 viewports tall
//	engine.Mount(view, flipbook.NewEbitenSurface(0, 0))
//
//	func (g *Game) Update() error {
//		g.view.Update()
//		return g.engine.Update()
//	}
//	func (g *Game) Draw(s *ebiten.Image)         { g.engine.Draw(s) }
//	func (g *Game) Layout(w, h int) (int, int) {
//		g.view.SetViewport(float64(w), float64(h))
//		return g.engine.Layout(w, h)
//	}
//
// Without a window, mount a [RasterSurface] and drive the engine with
// [RunLoop].
//
// # Phases
//
// Each mount walks [PhasePriming] (frames loading, frame 0 only),
// [PhaseIntroPlaying] (the eased reveal, timed from its first tick) and
// [PhaseScrollLinked] (terminal). A frame that fails to load still counts
// as loaded; draws that need it are skipped and the previous frame stays.
//
// # Video scrub
//
// [ScrubController] runs the same phases against a [Seeker] measured in
// seconds. [FrameSeeker] adapts a frame sequence (for example one extracted
// from a video with ffmpeg) to a Seeker.
//
// Progress and phase events can be bridged into a Donburi ECS world with the
// flipbook/ecs module.
//
// [Ebitengine]: https://ebitengine.org
package flipbook
