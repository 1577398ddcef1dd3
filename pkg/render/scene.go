package render

import (
	"sort"

	"github.com/sudorandom/emissions-globe/pkg/markers"
)

// Scene is the set of marker handles currently drawn.
type Scene struct {
	handles map[*markers.Handle]struct{}
	sorted  []*markers.Handle
	dirty   bool
}

func NewScene() *Scene {
	return &Scene{handles: make(map[*markers.Handle]struct{})}
}

func (s *Scene) Add(h *markers.Handle) {
	s.handles[h] = struct{}{}
	s.dirty = true
}

func (s *Scene) Remove(h *markers.Handle) {
	if _, ok := s.handles[h]; !ok {
		return
	}
	delete(s.handles, h)
	s.dirty = true
}

func (s *Scene) Len() int { return len(s.handles) }

// Handles returns the drawn handles, larger markers first so small ones
// stay visible on top.
func (s *Scene) Handles() []*markers.Handle {
	if !s.dirty {
		return s.sorted
	}
	s.sorted = s.sorted[:0]
	for h := range s.handles {
		s.sorted = append(s.sorted, h)
	}
	sort.Slice(s.sorted, func(i, j int) bool {
		a, b := s.sorted[i], s.sorted[j]
		if a.Spec.Size != b.Spec.Size {
			return a.Spec.Size > b.Spec.Size
		}
		if a.Spec.Kind != b.Spec.Kind {
			return a.Spec.Kind < b.Spec.Kind
		}
		return a.Key < b.Key
	})
	s.dirty = false
	return s.sorted
}
