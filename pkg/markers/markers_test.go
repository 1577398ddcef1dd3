package markers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sudorandom/emissions-globe/pkg/geo"
	"github.com/sudorandom/emissions-globe/pkg/view"
)

type fakeScene struct {
	shown map[*Handle]bool
	adds  int
}

func newFakeScene() *fakeScene {
	return &fakeScene{shown: make(map[*Handle]bool)}
}

func (s *fakeScene) Add(h *Handle) {
	s.adds++
	s.shown[h] = true
}

func (s *fakeScene) Remove(h *Handle) {
	delete(s.shown, h)
}

func (s *fakeScene) count(kind view.Kind) int {
	n := 0
	for h := range s.shown {
		if h.Spec.Kind == kind {
			n++
		}
	}
	return n
}

func emissionSpecs() map[string]view.MarkerSpec {
	return map[string]view.MarkerSpec{
		"France": {Position: geo.Project(46, 2, 2), Kind: view.KindEmission, Size: 0.1},
		"Brazil": {Position: geo.Project(-14, -51, 2), Kind: view.KindEmission, Size: 0.2},
		"Japan":  {Position: geo.Project(36, 138, 2), Kind: view.KindEmission, Size: 0.3},
	}
}

func TestReplaceIsIdempotent(t *testing.T) {
	scene := newFakeScene()
	m := NewManager(scene)

	m.Replace(view.KindEmission, emissionSpecs())
	m.Replace(view.KindEmission, emissionSpecs())

	assert.Equal(t, 3, scene.count(view.KindEmission))
	assert.Equal(t, 3, m.Count(view.KindEmission))
	assert.Equal(t, 6, scene.adds, "full rebuild each call")
}

func TestReplaceLeavesOtherKind(t *testing.T) {
	scene := newFakeScene()
	m := NewManager(scene)
	m.Replace(view.KindEmission, emissionSpecs())

	m.Replace(view.KindDisaster, map[string]view.MarkerSpec{
		"flood_1_2_2000": {Kind: view.KindDisaster, Size: 0.03},
	})
	m.Replace(view.KindDisaster, map[string]view.MarkerSpec{})

	assert.Equal(t, 3, scene.count(view.KindEmission))
	assert.Equal(t, 0, scene.count(view.KindDisaster))
	assert.Equal(t, 0, m.Count(view.KindDisaster))
}

func TestReplaceShrinks(t *testing.T) {
	scene := newFakeScene()
	m := NewManager(scene)
	m.Replace(view.KindEmission, emissionSpecs())

	specs := emissionSpecs()
	delete(specs, "Japan")
	m.Replace(view.KindEmission, specs)

	hs := m.Handles(view.KindEmission)
	require.Len(t, hs, 2)
	assert.Equal(t, "Brazil", hs[0].Key)
	assert.Equal(t, "France", hs[1].Key)
	assert.Len(t, scene.shown, 2)
}

func TestApplyAndClear(t *testing.T) {
	scene := newFakeScene()
	m := NewManager(scene)
	m.Apply(view.YearView{
		EmissionMarkers: emissionSpecs(),
		DisasterMarkers: map[string]view.MarkerSpec{"storm_3_4_2000": {Kind: view.KindDisaster, Size: 0.06}},
	})
	assert.Len(t, scene.shown, 4)

	m.Clear()
	assert.Empty(t, scene.shown)
	assert.Equal(t, 0, m.Count(view.KindEmission))
}
