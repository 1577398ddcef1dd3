// Package playback advances the selected year on a timer and accepts
// manual year input.
package playback

import (
	"context"
	"time"
)

type State int

const (
	Playing State = iota
	Paused
)

func (s State) String() string {
	if s == Playing {
		return "playing"
	}
	return "paused"
}

const (
	DefaultMinYear  = 1968
	DefaultMaxYear  = 2018
	DefaultStart    = 2000
	DefaultInterval = 2 * time.Second
)

// Controller is the playback state machine. It is driven from a single
// goroutine; OnYear runs synchronously on every year change.
type Controller struct {
	Min, Max int
	OnYear   func(year int)

	year  int
	state State
}

// New returns a playing controller at start, clamped into [min, max].
func New(min, max, start int) *Controller {
	if max < min {
		min, max = max, min
	}
	c := &Controller{Min: min, Max: max, state: Playing}
	c.year = c.clamp(start)
	return c
}

func (c *Controller) Year() int { return c.year }
func (c *Controller) State() State { return c.state }
func (c *Controller) Playing() bool { return c.state == Playing }

func (c *Controller) Toggle() {
	if c.state == Playing {
		c.state = Paused
	} else {
		c.state = Playing
	}
}

// Tick advances one year while playing, wrapping from Max back to Min.
// It reports whether the year changed.
func (c *Controller) Tick() bool {
	if c.state != Playing {
		return false
	}
	c.year++
	if c.year > c.Max {
		c.year = c.Min
	}
	c.notify()
	return true
}

// SetYear handles manual input: the year is clamped into range and
// playback pauses until ResumeAfterManualInput.
func (c *Controller) SetYear(y int) {
	c.year = c.clamp(y)
	c.state = Paused
	c.notify()
}

func (c *Controller) ResumeAfterManualInput() {
	c.state = Playing
}

func (c *Controller) clamp(y int) int {
	return min(max(y, c.Min), c.Max)
}

func (c *Controller) notify() {
	if c.OnYear != nil {
		c.OnYear(c.year)
	}
}

// Run calls tick every interval until ctx is cancelled.
func Run(ctx context.Context, interval time.Duration, tick func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tick()
		}
	}
}
