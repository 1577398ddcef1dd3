package playback

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestTickWraps(t *testing.T) {
	c := New(DefaultMinYear, DefaultMaxYear, DefaultStart)
	assert.Equal(t, Playing, c.State())
	assert.Equal(t, 2000, c.Year())

	var seen []int
	c.OnYear = func(y int) { seen = append(seen, y) }

	for i := 0; i < 18; i++ {
		assert.True(t, c.Tick())
	}
	assert.Equal(t, 2018, c.Year())

	c.Tick()
	assert.Equal(t, 1968, c.Year(), "19th advance wraps past the max")
	assert.Len(t, seen, 19)
	assert.Equal(t, 1968, seen[18])
}

func TestTickPaused(t *testing.T) {
	c := New(DefaultMinYear, DefaultMaxYear, DefaultStart)
	calls := 0
	c.OnYear = func(int) { calls++ }

	c.Toggle()
	assert.Equal(t, Paused, c.State())
	assert.False(t, c.Tick())
	assert.Equal(t, 2000, c.Year())
	assert.Zero(t, calls)

	c.Toggle()
	assert.True(t, c.Playing())
	assert.True(t, c.Tick())
	assert.Equal(t, 2001, c.Year())
}

func TestSetYear(t *testing.T) {
	c := New(DefaultMinYear, DefaultMaxYear, DefaultStart)
	var seen []int
	c.OnYear = func(y int) { seen = append(seen, y) }

	c.SetYear(1990)
	assert.Equal(t, 1990, c.Year())
	assert.Equal(t, Paused, c.State())

	c.SetYear(3000)
	assert.Equal(t, 2018, c.Year())
	c.SetYear(1000)
	assert.Equal(t, 1968, c.Year())
	assert.Equal(t, []int{1990, 2018, 1968}, seen)

	assert.False(t, c.Tick())
	c.ResumeAfterManualInput()
	assert.Equal(t, Playing, c.State())
	assert.True(t, c.Tick())
	assert.Equal(t, 1969, c.Year())
}

func TestNewClampsAndOrders(t *testing.T) {
	c := New(2018, 1968, 1900)
	assert.Equal(t, 1968, c.Min)
	assert.Equal(t, 2018, c.Max)
	assert.Equal(t, 1968, c.Year())
}

func TestRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var ticks atomic.Int32
	done := make(chan struct{})
	go func() {
		defer close(done)
		Run(ctx, time.Millisecond, func() {
			if ticks.Add(1) == 3 {
				cancel()
			}
		})
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.GreaterOrEqual(t, ticks.Load(), int32(3))
}
