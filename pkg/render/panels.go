package render

import (
	"fmt"
	"strings"

	"github.com/biter777/countries"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/sudorandom/emissions-globe/pkg/view"
)

// DisplayName shortens a country name for the ranking panels. Names the
// countries package knows are replaced by its canonical spelling.
func DisplayName(name string) string {
	countryName := countries.ByName(name).String()
	if countryName == "Unknown" {
		countryName = name
	}
	if idx := strings.Index(countryName, " ("); idx != -1 {
		countryName = countryName[:idx]
	}
	if strings.Contains(countryName, "Hong Kong") {
		countryName = "Hong Kong"
	}
	if strings.Contains(countryName, "Macao") {
		countryName = "Macao"
	}
	if strings.Contains(countryName, "Taiwan") {
		countryName = "Taiwan"
	}

	const maxLen = 18
	if len(countryName) > maxLen {
		countryName = countryName[:maxLen-3] + "..."
	}
	return countryName
}

// FormatTonnes renders an emissions value with thousands separators.
func FormatTonnes(v float64) string {
	s := fmt.Sprintf("%.0f", v)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

func (g *Game) panelMetrics() (margin, fontSize, boxW, boxH float64) {
	margin, fontSize = 40.0, 18.0
	boxW, boxH = 320.0, 180.0
	if g.cfg.Width > 2000 {
		margin, fontSize = 80.0, 36.0
		boxW, boxH = 640.0, 360.0
	}
	return margin, fontSize, boxW, boxH
}

func (g *Game) drawRankings(screen *ebiten.Image) {
	if g.fontSource == nil {
		return
	}
	margin, fontSize, boxW, boxH := g.panelMetrics()
	r := g.engine.Rankings()

	y := margin + fontSize + 15
	g.drawPanel(screen, "TOP POLLUTERS (t CO2)", margin, y, boxW, boxH, fontSize, r.Polluters, FormatTonnes)
	g.drawPanel(screen, "TOP SUFFERERS (index)", margin, y+boxH+fontSize+30, boxW, boxH, fontSize, r.Sufferers, func(v float64) string {
		return fmt.Sprintf("%.2f", v)
	})
}

func (g *Game) drawPanel(screen *ebiten.Image, title string, x, y, boxW, boxH, fontSize float64, entries []view.Entry, format func(float64) string) {
	vector.DrawFilledRect(screen, float32(x-10), float32(y-fontSize-15), float32(boxW), float32(boxH), ColorPanel, false)
	vector.StrokeRect(screen, float32(x-10), float32(y-fontSize-15), float32(boxW), float32(boxH), 1, ColorPanelEdge, false)
	vector.DrawFilledRect(screen, float32(x-10), float32(y-fontSize-15), 4, float32(fontSize+10), ColorEmission, false)

	titleFace := &text.GoTextFace{Source: g.fontSource, Size: fontSize * 0.8}
	titleOp := &text.DrawOptions{}
	titleOp.GeoM.Translate(x+5, y-fontSize-5)
	titleOp.ColorScale.Scale(1, 1, 1, 0.5)
	text.Draw(screen, title, titleFace, titleOp)

	face := &text.GoTextFace{Source: g.fontSource, Size: fontSize}
	valueFace := face
	if g.monoSource != nil {
		valueFace = &text.GoTextFace{Source: g.monoSource, Size: fontSize * 0.9}
	}
	for i, e := range entries {
		rowY := y + 10 + float64(i)*fontSize*1.4

		nameOp := &text.DrawOptions{}
		nameOp.GeoM.Translate(x, rowY)
		nameOp.ColorScale.Scale(1, 1, 1, 0.8)
		text.Draw(screen, DisplayName(e.Country), face, nameOp)

		value := format(e.Value)
		tw, _ := text.Measure(value, valueFace, 0)
		valueOp := &text.DrawOptions{}
		valueOp.GeoM.Translate(x+boxW-tw-25, rowY)
		valueOp.ColorScale.Scale(1, 1, 1, 0.6)
		text.Draw(screen, value, valueFace, valueOp)
	}
}

// drawChart draws the polluters as vertical bars in the lower right.
func (g *Game) drawChart(screen *ebiten.Image) {
	if g.fontSource == nil {
		return
	}
	margin, fontSize, boxW, boxH := g.panelMetrics()
	bars := g.engine.Chart(boxH - 2*fontSize - 20)
	if len(bars) == 0 {
		return
	}

	x := float64(g.cfg.Width) - margin - boxW
	y := margin
	vector.DrawFilledRect(screen, float32(x), float32(y), float32(boxW), float32(boxH), ColorPanel, false)
	vector.StrokeRect(screen, float32(x), float32(y), float32(boxW), float32(boxH), 1, ColorPanelEdge, false)

	face := &text.GoTextFace{Source: g.fontSource, Size: fontSize * 0.6}
	slot := boxW / float64(len(bars))
	barW := slot * 0.6
	base := y + boxH - fontSize - 10
	for i, b := range bars {
		bx := x + float64(i)*slot + (slot-barW)/2
		vector.DrawFilledRect(screen, float32(bx), float32(base-b.Height), float32(barW), float32(b.Height), ColorEmission, false)

		label := DisplayName(b.Country)
		if len(label) > 8 {
			label = label[:7] + "."
		}
		tw, _ := text.Measure(label, face, 0)
		op := &text.DrawOptions{}
		op.GeoM.Translate(x+float64(i)*slot+(slot-tw)/2, base+4)
		op.ColorScale.Scale(1, 1, 1, 0.7)
		text.Draw(screen, label, face, op)
	}
}
