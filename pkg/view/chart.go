package view

import "gonum.org/v1/gonum/floats"

// Bar is one column of the polluters chart.
type Bar struct {
	Country string
	Value   float64
	Height  float64
}

// ChartBars scales entries so the largest value fills height.
func ChartBars(entries []Entry, height float64) []Bar {
	if len(entries) == 0 || height <= 0 {
		return nil
	}
	values := make([]float64, len(entries))
	for i, e := range entries {
		values[i] = e.Value
	}
	maxVal := floats.Max(values)
	if !(maxVal > 0) {
		return nil
	}

	bars := make([]Bar, len(entries))
	for i, e := range entries {
		h := e.Value / maxVal * height
		if h < 0 {
			h = 0
		}
		bars[i] = Bar{Country: e.Country, Value: e.Value, Height: h}
	}
	return bars
}
