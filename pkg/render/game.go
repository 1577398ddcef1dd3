// Package render draws the engine state with ebiten.
package render

import (
	"bytes"
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"go.uber.org/zap"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/sudorandom/emissions-globe/pkg/datasets"
	"github.com/sudorandom/emissions-globe/pkg/geo"
	"github.com/sudorandom/emissions-globe/pkg/globe"
	"github.com/sudorandom/emissions-globe/pkg/view"
)

var (
	ColorBackground = color.RGBA{0, 0, 0, 255}
	ColorEmission   = color.RGBA{255, 0, 0, 255}
	ColorDisaster   = color.RGBA{0, 0, 255, 255}
	ColorPanel      = color.RGBA{0, 0, 0, 100}
	ColorPanelEdge  = color.RGBA{36, 42, 53, 255}
)

type Config struct {
	Width, Height int
	// Interval is the time between automatic year advances.
	Interval time.Duration
	// RotationSpeed is radians per update while playing.
	RotationSpeed   float64
	Radius          float64
	FrameCaptureDir string
}

// Game adapts a globe.Engine to ebiten.Game.
type Game struct {
	cfg         Config
	engine      *globe.Engine
	scene       *Scene
	completions <-chan datasets.Completion
	camera      Camera

	lastTick   time.Time
	now        func() time.Time
	lastYear   int
	fontSource *text.GoTextFaceSource
	monoSource *text.GoTextFaceSource
}

// NewGame wires engine to a scene-backed renderer. scene must be the
// scene engine was created with.
func NewGame(cfg Config, engine *globe.Engine, scene *Scene, completions <-chan datasets.Completion) *Game {
	s, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		zap.S().Warnw("regular font unavailable", "error", err)
	}
	m, err := text.NewGoTextFaceSource(bytes.NewReader(gomono.TTF))
	if err != nil {
		zap.S().Warnw("mono font unavailable", "error", err)
	}
	return &Game{
		cfg:         cfg,
		engine:      engine,
		scene:       scene,
		completions: completions,
		camera:      NewCamera(cfg.Width, cfg.Height, cfg.Radius),
		now:         time.Now,
		lastYear:    engine.CurrentYear(),
		fontSource:  s,
		monoSource:  m,
	}
}

func (g *Game) Update() error {
	if g.completions != nil && !g.engine.Pump(g.completions) {
		g.completions = nil
	}

	g.handleInput()

	now := g.now()
	if g.lastTick.IsZero() {
		g.lastTick = now
	}
	if g.engine.Playing() {
		if now.Sub(g.lastTick) >= g.cfg.Interval {
			g.engine.Tick()
			g.lastTick = now
		}
		g.camera.Spin(g.cfg.RotationSpeed)
	} else {
		g.lastTick = now
	}
	return nil
}

func (g *Game) handleInput() {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		g.engine.Toggle()
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft):
		g.engine.SetYear(g.engine.CurrentYear() - 1)
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowRight):
		g.engine.SetYear(g.engine.CurrentYear() + 1)
	case inpututil.IsKeyJustPressed(ebiten.KeyEnter):
		g.engine.ResumeAfterManualInput()
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(ColorBackground)
	g.drawBoundaries(screen)
	g.drawMarkers(screen)
	g.drawYear(screen)
	g.drawRankings(screen)
	g.drawChart(screen)
	g.drawLegend(screen)

	if year := g.engine.CurrentYear(); year != g.lastYear {
		g.lastYear = year
		g.captureFrame(screen, fmt.Sprintf("%d", year), g.now())
	}
}

func (g *Game) Layout(w, h int) (int, int) { return g.cfg.Width, g.cfg.Height }

func (g *Game) drawBoundaries(screen *ebiten.Image) {
	group := g.engine.Boundaries()
	if group == nil {
		return
	}
	c := premultiply(group.Style.Color, group.Style.Opacity)
	for _, loop := range group.Loops {
		loop.Edges(func(a, b geo.Point) {
			x1, y1, ok1 := g.camera.Project(a)
			x2, y2, ok2 := g.camera.Project(b)
			if !ok1 || !ok2 {
				return
			}
			vector.StrokeLine(screen, float32(x1), float32(y1), float32(x2), float32(y2), 1, c, true)
		})
	}
}

// premultiply scales c by alpha, as ebiten expects premultiplied colors.
func premultiply(c color.RGBA, alpha float64) color.RGBA {
	alpha = min(max(alpha, 0), 1)
	return color.RGBA{
		R: uint8(float64(c.R) * alpha),
		G: uint8(float64(c.G) * alpha),
		B: uint8(float64(c.B) * alpha),
		A: uint8(float64(c.A) * alpha),
	}
}

func (g *Game) drawMarkers(screen *ebiten.Image) {
	for _, h := range g.scene.Handles() {
		x, y, ok := g.camera.Project(h.Spec.Position)
		if !ok {
			continue
		}
		c := ColorEmission
		if h.Spec.Kind == view.KindDisaster {
			c = ColorDisaster
		}
		r := max(float32(h.Spec.Size*g.camera.Zoom), 1)
		vector.DrawFilledCircle(screen, float32(x), float32(y), r, c, true)
	}
}

func (g *Game) drawYear(screen *ebiten.Image) {
	if g.fontSource == nil {
		return
	}
	margin, fontSize := 40.0, 36.0
	if g.cfg.Width > 2000 {
		margin, fontSize = 80.0, 72.0
	}
	label := fmt.Sprintf("%d", g.engine.CurrentYear())
	if !g.engine.Playing() {
		label += "  (paused)"
	}
	face := &text.GoTextFace{Source: g.fontSource, Size: fontSize}
	op := &text.DrawOptions{}
	op.GeoM.Translate(margin, float64(g.cfg.Height)-margin-fontSize)
	op.ColorScale.Scale(1, 1, 1, 0.9)
	text.Draw(screen, label, face, op)
}

func (g *Game) drawLegend(screen *ebiten.Image) {
	if g.fontSource == nil {
		return
	}
	margin, fontSize, swatch := 40.0, 18.0, 18.0
	if g.cfg.Width > 2000 {
		margin, fontSize, swatch = 80.0, 36.0, 36.0
	}
	items := []struct {
		Label string
		Color color.RGBA
	}{
		{"CO2 emissions", ColorEmission},
		{"Natural disasters", ColorDisaster},
	}
	face := &text.GoTextFace{Source: g.fontSource, Size: fontSize}
	lx := float64(g.cfg.Width) - margin - 260
	ly := float64(g.cfg.Height) - margin - float64(len(items))*(swatch+12)
	for i, it := range items {
		ty := ly + float64(i)*(swatch+12)
		vector.DrawFilledCircle(screen, float32(lx+swatch/2), float32(ty+swatch/2), float32(swatch/2), it.Color, true)
		op := &text.DrawOptions{}
		op.GeoM.Translate(lx+swatch+15, ty+(swatch/2)-(fontSize/2))
		op.ColorScale.Scale(1, 1, 1, 0.8)
		text.Draw(screen, it.Label, face, op)
	}
}
