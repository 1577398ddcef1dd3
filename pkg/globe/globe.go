// Package globe holds the engine that ties loaded datasets, the selected
// year and the displayed markers together. Every method runs on the
// caller's goroutine; the render loop is the only caller in the viewer.
package globe

import (
	"go.uber.org/zap"

	"github.com/sudorandom/emissions-globe/pkg/datasets"
	"github.com/sudorandom/emissions-globe/pkg/markers"
	"github.com/sudorandom/emissions-globe/pkg/mesh"
	"github.com/sudorandom/emissions-globe/pkg/playback"
	"github.com/sudorandom/emissions-globe/pkg/view"
)

type Options struct {
	MinYear   int
	MaxYear   int
	StartYear int
	TopN      int
	Scale     view.Scale
}

func DefaultOptions() Options {
	return Options{
		MinYear:   playback.DefaultMinYear,
		MaxYear:   playback.DefaultMaxYear,
		StartYear: playback.DefaultStart,
		TopN:      view.DefaultTopN,
		Scale:     view.DefaultScale(),
	}
}

type Engine struct {
	registry   *datasets.Registry
	playback   *playback.Controller
	markers    *markers.Manager
	boundaries *mesh.MeshGroup

	scale   view.Scale
	topN    int
	current view.YearView
}

func NewEngine(scene markers.Scene, opts Options) *Engine {
	e := &Engine{
		registry: datasets.NewRegistry(),
		playback: playback.New(opts.MinYear, opts.MaxYear, opts.StartYear),
		markers:  markers.NewManager(scene),
		scale:    opts.Scale,
		topN:     opts.TopN,
	}
	e.current = view.Build(datasets.Tables{}, nil, e.playback.Year(), e.topN, e.scale)
	e.playback.OnYear = e.Recompute
	return e
}

// Apply ingests one loader completion and refreshes the views it made
// ready for the current year. Views still waiting on other tables are left
// alone.
func (e *Engine) Apply(c datasets.Completion) {
	ready := e.registry.Apply(c)
	if !e.registry.Ready(datasets.ViewRankings) {
		e.current.Rankings = view.Rankings{Polluters: []view.Entry{}, Sufferers: []view.Entry{}}
	}
	if len(ready) == 0 {
		return
	}

	t := e.registry.Snapshot()
	year := e.playback.Year()
	for _, v := range ready {
		switch v {
		case datasets.ViewEmissions:
			e.current.EmissionMarkers = view.EmissionMarkers(t, year, e.scale)
			e.markers.Replace(view.KindEmission, e.current.EmissionMarkers)
		case datasets.ViewDisasters:
			e.current.DisasterMarkers = view.DisasterMarkers(t, year, e.scale)
			e.markers.Replace(view.KindDisaster, e.current.DisasterMarkers)
		case datasets.ViewRankings:
			e.current.Rankings = view.ComputeRankings(t, year, e.topN)
		}
		zap.S().Debugw("view ready", "view", v.String(), "year", year)
	}
}

// Pump applies every completion already waiting on ch without blocking.
// It returns false once ch is closed and drained.
func (e *Engine) Pump(ch <-chan datasets.Completion) bool {
	for {
		select {
		case c, ok := <-ch:
			if !ok {
				return false
			}
			e.Apply(c)
		default:
			return true
		}
	}
}

// Recompute rebuilds every ready view for year and replaces the markers.
func (e *Engine) Recompute(year int) {
	v := view.Build(e.registry.Snapshot(), e.registry.ReadySet(), year, e.topN, e.scale)
	e.markers.Apply(v)
	e.current = v
}

func (e *Engine) SetBoundaries(g *mesh.MeshGroup) { e.boundaries = g }
func (e *Engine) Boundaries() *mesh.MeshGroup { return e.boundaries }

func (e *Engine) Registry() *datasets.Registry { return e.registry }
func (e *Engine) View() view.YearView { return e.current }

func (e *Engine) CurrentYear() int { return e.playback.Year() }
func (e *Engine) MinYear() int { return e.playback.Min }
func (e *Engine) MaxYear() int { return e.playback.Max }
func (e *Engine) Playing() bool { return e.playback.Playing() }

// Tick advances playback by one year if playing.
func (e *Engine) Tick() bool { return e.playback.Tick() }

func (e *Engine) Toggle() { e.playback.Toggle() }

// SetYear selects a year from user input and pauses playback.
func (e *Engine) SetYear(y int) { e.playback.SetYear(y) }

func (e *Engine) ResumeAfterManualInput() { e.playback.ResumeAfterManualInput() }

func (e *Engine) Rankings() view.Rankings { return e.current.Rankings }

// Chart returns the polluter bars scaled to height.
func (e *Engine) Chart(height float64) []view.Bar {
	return view.ChartBars(e.current.Rankings.Polluters, height)
}

func (e *Engine) MarkerCount(kind view.Kind) int { return e.markers.Count(kind) }

// Close removes every marker from the scene.
func (e *Engine) Close() {
	e.markers.Clear()
}
