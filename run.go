package flipbook

import (
	"errors"

	"github.com/hajimehoshi/ebiten/v2"
)

// RunConfig configures the window opened by Run.
type RunConfig struct {
	Title  string
	Width  int
	Height int
	// Debug enables the engine's debug mode (stderr stats and overlay).
	Debug bool
	// ShowLoading draws a LoadingOverlay until every frame has loaded.
	ShowLoading bool
	// Script, when set, drives the page and exits the game once it is done.
	Script *TestRunner
}

// Run mounts e on view (unless already mounted) and runs an ebiten game that
// scrolls view, ticks e and draws it to the window. It blocks until the
// window closes or Script finishes.
func Run(e *Engine, view *ScrollView, cfg RunConfig) error {
	if !e.Alive() {
		if err := e.Mount(view, NewEbitenSurface(0, 0)); err != nil {
			return err
		}
	}
	defer e.Unmount()
	e.SetDebugMode(cfg.Debug)

	g := &game{engine: e, view: view, script: cfg.Script}
	if cfg.ShowLoading {
		g.overlay = NewLoadingOverlay()
	}

	if cfg.Title != "" {
		ebiten.SetWindowTitle(cfg.Title)
	}
	w, h := cfg.Width, cfg.Height
	if w <= 0 {
		w = 1280
	}
	if h <= 0 {
		h = 720
	}
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}

// game adapts an Engine and its ScrollView to ebiten.Game.
type game struct {
	engine  *Engine
	view    *ScrollView
	overlay *LoadingOverlay
	script  *TestRunner
}

func (g *game) Update() error {
	if g.script != nil {
		if g.script.Done() {
			return ebiten.Termination
		}
		g.script.Step(g.engine, g.view)
	}
	g.view.Update()
	if err := g.engine.Update(); err != nil {
		return err
	}
	if g.overlay != nil {
		g.overlay.Update(g.engine.State(), float32(1.0/float64(ebiten.TPS())))
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	g.engine.Draw(screen)
	if g.overlay != nil {
		g.overlay.Draw(screen)
	}
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.view.SetViewport(float64(outsideWidth), float64(outsideHeight))
	return g.engine.Layout(outsideWidth, outsideHeight)
}
