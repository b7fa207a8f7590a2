package pattern

import (
	"sort"

	"github.com/schollz/cadence/internal/event"
	"github.com/schollz/cadence/internal/rational"
)

// EuclideanNode plays Child on the onset steps of a Bjorklund(Hits,Steps)
// distribution and rests elsewhere (the `x(n,k)` construct), optionally
// rotated by Rotate steps (the `x(n,k,r)` three-argument form).
type EuclideanNode struct {
	Child  Node
	Hits   int
	Steps  int
	Rotate int
	beats  rational.T
}

func NewEuclidean(child Node, hits, steps, rotate int) *EuclideanNode {
	return &EuclideanNode{Child: child, Hits: hits, Steps: steps, Rotate: rotate, beats: child.BeatsPerCycle()}
}

func (e *EuclideanNode) BeatsPerCycle() rational.T { return e.beats }

func (e *EuclideanNode) ForCycle(k uint64, baseStart rational.T) ([]event.PlaybackEvent, error) {
	if e.Steps <= 0 {
		return nil, nil
	}
	onsets := Bjorklund(e.Hits, e.Steps)
	if e.Rotate != 0 {
		onsets = rotate(onsets, e.Rotate)
	}
	step, err := rational.Div(e.beats, rational.MustNew(int64(e.Steps), 1))
	if err != nil {
		return nil, err
	}
	var out []event.PlaybackEvent
	for i, on := range onsets {
		start := rational.Add(baseStart, rational.Mul(step, rational.MustNew(int64(i), 1)))
		if !on {
			out = append(out, event.Rest(start, step))
			continue
		}
		evs, err := scaleForSlot(e.Child, k, start, step)
		if err != nil {
			return nil, err
		}
		out = append(out, evs...)
	}
	sort.Stable(event.ByStart(out))
	return out, nil
}

func (e *EuclideanNode) Attributes() Attrs { return e.Child.Attributes() }

func rotate(bs []bool, n int) []bool {
	if len(bs) == 0 {
		return bs
	}
	n = ((n % len(bs)) + len(bs)) % len(bs)
	out := make([]bool, len(bs))
	for i := range bs {
		out[i] = bs[(i+n)%len(bs)]
	}
	return out
}
