// Package event defines PlaybackEvent, the output of evaluating a Pattern
// against one cycle (spec §3/§4.5).
package event

import (
	"github.com/schollz/cadence/internal/notemodel"
	"github.com/schollz/cadence/internal/rational"
)

// PlaybackEvent is one onset within a cycle: notes/drums sounding (or a
// rest) for Duration starting at Start.
type PlaybackEvent struct {
	Notes    []notemodel.Note `json:"-"`
	Drums    []string         `json:"-"`
	Start    rational.T       `json:"-"`
	Duration rational.T       `json:"-"`
	IsRest   bool             `json:"-"`
}

// Rest builds a rest event of the given duration.
func Rest(start, duration rational.T) PlaybackEvent {
	return PlaybackEvent{Start: start, Duration: duration, IsRest: true}
}

// ByStart orders events by Start ascending; used with sort.Stable, ties
// keep their original (structural) position, so callers must pass events
// already carrying that relative order.
type ByStart []PlaybackEvent

func (b ByStart) Len() int      { return len(b) }
func (b ByStart) Swap(i, j int) { b[i], b[j] = b[j], b[i] }
func (b ByStart) Less(i, j int) bool {
	return rational.Less(b[i].Start, b[j].Start)
}
