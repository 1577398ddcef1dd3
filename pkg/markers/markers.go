// Package markers owns the marker handles currently shown on the globe.
package markers

import (
	"sort"

	"github.com/sudorandom/emissions-globe/pkg/view"
)

// Handle is one displayed marker. The scene decides what it draws for it.
type Handle struct {
	Key  string
	Spec view.MarkerSpec
}

// Scene is the display graph markers are added to and removed from.
type Scene interface {
	Add(h *Handle)
	Remove(h *Handle)
}

// Manager replaces the full marker set of a kind on every update. It is
// not safe for concurrent use.
type Manager struct {
	scene   Scene
	current map[view.Kind][]*Handle
}

func NewManager(scene Scene) *Manager {
	return &Manager{
		scene:   scene,
		current: make(map[view.Kind][]*Handle),
	}
}

// Replace removes every displayed marker of kind and adds one per entry,
// in key order. Markers of other kinds are untouched.
func (m *Manager) Replace(kind view.Kind, specs map[string]view.MarkerSpec) {
	for _, h := range m.current[kind] {
		m.scene.Remove(h)
	}

	keys := make([]string, 0, len(specs))
	for k := range specs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	handles := make([]*Handle, 0, len(keys))
	for _, k := range keys {
		h := &Handle{Key: k, Spec: specs[k]}
		m.scene.Add(h)
		handles = append(handles, h)
	}
	m.current[kind] = handles
}

func (m *Manager) Count(kind view.Kind) int {
	return len(m.current[kind])
}

// Handles returns the displayed handles of kind in key order.
func (m *Manager) Handles(kind view.Kind) []*Handle {
	out := make([]*Handle, len(m.current[kind]))
	copy(out, m.current[kind])
	return out
}

func (m *Manager) Clear() {
	for kind, hs := range m.current {
		for _, h := range hs {
			m.scene.Remove(h)
		}
		delete(m.current, kind)
	}
}

// Apply replaces both marker kinds from a year view.
func (m *Manager) Apply(v view.YearView) {
	m.Replace(view.KindEmission, v.EmissionMarkers)
	m.Replace(view.KindDisaster, v.DisasterMarkers)
}
