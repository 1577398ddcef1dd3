package datasets

import (
	"go.uber.org/zap"
)

// ViewKind names a derived view and, through Requires, the tables it
// cannot be computed without.
type ViewKind int

const (
	ViewEmissions ViewKind = iota
	ViewDisasters
	ViewRankings
)

func (v ViewKind) String() string {
	switch v {
	case ViewEmissions:
		return "emissions"
	case ViewDisasters:
		return "disasters"
	case ViewRankings:
		return "rankings"
	}
	return "unknown"
}

func Views() []ViewKind {
	return []ViewKind{ViewEmissions, ViewDisasters, ViewRankings}
}

func (v ViewKind) Requires() []Kind {
	switch v {
	case ViewEmissions:
		return []Kind{KindCentroids, KindEmissions}
	case ViewDisasters:
		return []Kind{KindDisasters}
	case ViewRankings:
		return []Kind{KindCentroids, KindEmissions, KindSuffering}
	}
	return nil
}

func (v ViewKind) dependsOn(k Kind) bool {
	for _, req := range v.Requires() {
		if req == k {
			return true
		}
	}
	return false
}

// Tables is an immutable snapshot of the loaded data. Slices are shared
// with the registry and must not be modified.
type Tables struct {
	Centroids []Centroid
	Emissions []CountryEmissions
	Disasters []DisasterRecord
	Suffering SufferingTable
}

// Registry owns the four tables and their load state. It is not safe for
// concurrent use; completions are applied from the owner's event loop.
type Registry struct {
	tables   Tables
	loaded   map[Kind]bool
	failures map[Kind]error
}

func NewRegistry() *Registry {
	return &Registry{
		loaded:   make(map[Kind]bool),
		failures: make(map[Kind]error),
	}
}

func (r *Registry) SetCentroids(c []Centroid) {
	r.tables.Centroids = c
	r.markLoaded(KindCentroids)
}

func (r *Registry) SetEmissions(e []CountryEmissions) {
	r.tables.Emissions = e
	r.markLoaded(KindEmissions)
}

func (r *Registry) SetDisasters(d []DisasterRecord) {
	r.tables.Disasters = d
	r.markLoaded(KindDisasters)
}

func (r *Registry) SetSuffering(s SufferingTable) {
	r.tables.Suffering = s
	r.markLoaded(KindSuffering)
}

func (r *Registry) markLoaded(k Kind) {
	r.loaded[k] = true
	delete(r.failures, k)
}

// Fail records a load failure. The table keeps whatever it held before,
// so views that need it stay closed until a later load succeeds.
func (r *Registry) Fail(k Kind, err error) {
	r.failures[k] = err
	zap.S().Warnw("dataset failed to load", "dataset", k.String(), "error", err)
}

func (r *Registry) Loaded(k Kind) bool {
	return r.loaded[k]
}

func (r *Registry) Failure(k Kind) error {
	return r.failures[k]
}

// Ready reports whether every table v depends on has loaded. Rankings
// additionally need a well-shaped suffering table.
func (r *Registry) Ready(v ViewKind) bool {
	for _, k := range v.Requires() {
		if !r.loaded[k] {
			return false
		}
	}
	if v == ViewRankings && r.tables.Suffering.Malformed {
		return false
	}
	return true
}

// Apply ingests a completion and returns the views that depend on the
// completed table and are ready now. A failed completion returns nil.
func (r *Registry) Apply(c Completion) []ViewKind {
	if c.Err != nil && !(c.Kind == KindSuffering && c.Suffering.Malformed) {
		r.Fail(c.Kind, c.Err)
		return nil
	}

	switch c.Kind {
	case KindCentroids:
		r.SetCentroids(c.Centroids)
	case KindEmissions:
		r.SetEmissions(c.Emissions)
	case KindDisasters:
		r.SetDisasters(c.Disasters)
	case KindSuffering:
		if c.Err != nil {
			zap.S().Warnw("suffering dataset has the wrong shape; rankings stay empty", "error", c.Err)
		}
		r.SetSuffering(c.Suffering)
	default:
		return nil
	}
	zap.S().Infow("dataset loaded", "dataset", c.Kind.String(), "accepted", c.Report.Accepted, "dropped", c.Report.Dropped)

	var ready []ViewKind
	for _, v := range Views() {
		if v.dependsOn(c.Kind) && r.Ready(v) {
			ready = append(ready, v)
		}
	}
	return ready
}

func (r *Registry) Snapshot() Tables {
	return r.tables
}

// ReadySet returns the readiness of every view.
func (r *Registry) ReadySet() map[ViewKind]bool {
	out := make(map[ViewKind]bool, 3)
	for _, v := range Views() {
		out[v] = r.Ready(v)
	}
	return out
}
