package pattern

import (
	"sort"

	"github.com/schollz/cadence/internal/event"
	"github.com/schollz/cadence/internal/rational"
)

// DefaultBeatsPerCycle is the cycle length a bare sequence subdivides
// among its children (spec §3: "beats_per_cycle: T … default T(4,1)"),
// independent of any child's own natural length — a sequence of N
// equally-weighted children gives each child beats_per_cycle/N (spec
// §4.5), not the sum of the children's own lengths.
var DefaultBeatsPerCycle = rational.MustNew(4, 1)

// SequenceNode lays its children end to end across one cycle, each
// occupying a share of the cycle proportional to its weight (default 1,
// set via WeightNode). This is the `a b c` juxtaposition rule and also
// backs `[a b]` groups nested inside an outer sequence.
type SequenceNode struct {
	Children    []Node
	weights     []int
	totalWeight int
	total       rational.T
}

// NewSequence computes each child's weight (1 unless wrapped in a
// WeightNode) and fixes the node's total cycle length at
// DefaultBeatsPerCycle, dividing it among children in proportion to
// their weight — a child's own BeatsPerCycle only matters for how
// scaleForSlot rescales its contents into the share it's given.
func NewSequence(children []Node) *SequenceNode {
	weights := make([]int, len(children))
	totalWeight := 0
	for i, c := range children {
		w := 1
		if wn, ok := c.(*WeightNode); ok {
			w = wn.N
		}
		weights[i] = w
		totalWeight += w
	}
	if totalWeight == 0 {
		totalWeight = 1
	}
	return &SequenceNode{Children: children, weights: weights, totalWeight: totalWeight, total: DefaultBeatsPerCycle}
}

func (s *SequenceNode) BeatsPerCycle() rational.T { return s.total }

func (s *SequenceNode) ForCycle(k uint64, baseStart rational.T) ([]event.PlaybackEvent, error) {
	cursor := baseStart
	var out []event.PlaybackEvent
	for i, c := range s.Children {
		child := c
		w := s.weights[i]
		if wn, ok := c.(*WeightNode); ok {
			child = wn.Child
		}
		if w == 0 {
			continue
		}
		share, err := rational.New(int64(w), int64(s.totalWeight))
		if err != nil {
			return nil, err
		}
		slot := rational.Mul(share, s.total)
		evs, err := scaleForSlot(child, k, cursor, slot)
		if err != nil {
			return nil, err
		}
		out = append(out, evs...)
		cursor = rational.Add(cursor, slot)
	}
	sort.Stable(event.ByStart(out))
	return out, nil
}

func (s *SequenceNode) Attributes() Attrs {
	attrs := Attrs{}
	for _, c := range s.Children {
		attrs = Merge(attrs, c.Attributes())
	}
	return attrs
}

// scaleForSlot renders child for cycle k, then rescales and offsets its
// events so they fill exactly [start, start+slot) regardless of the
// child's own natural BeatsPerCycle. This is how a chord or rest step
// written with a different native length still takes its proportional
// share inside a sequence.
func scaleForSlot(child Node, k uint64, start, slot rational.T) ([]event.PlaybackEvent, error) {
	native := child.BeatsPerCycle()
	evs, err := child.ForCycle(k, rational.Zero)
	if err != nil {
		return nil, err
	}
	if rational.IsZero(native) {
		for i := range evs {
			evs[i].Start = start
		}
		return evs, nil
	}
	scale, err := rational.Div(slot, native)
	if err != nil {
		return nil, err
	}
	out := make([]event.PlaybackEvent, len(evs))
	for i, e := range evs {
		out[i] = e
		out[i].Start = rational.Add(start, rational.Mul(e.Start, scale))
		out[i].Duration = rational.Mul(e.Duration, scale)
	}
	return out, nil
}

// PolyrhythmNode plays each of its layers against the same cycle span,
// merging their events (the `{a,b}` construct).
type PolyrhythmNode struct {
	Layers []Node
	beats  rational.T
}

func NewPolyrhythm(layers []Node, cycleLength rational.T) *PolyrhythmNode {
	return &PolyrhythmNode{Layers: layers, beats: cycleLength}
}

func (p *PolyrhythmNode) BeatsPerCycle() rational.T { return p.beats }

func (p *PolyrhythmNode) ForCycle(k uint64, baseStart rational.T) ([]event.PlaybackEvent, error) {
	var out []event.PlaybackEvent
	for _, layer := range p.Layers {
		evs, err := scaleForSlot(layer, k, baseStart, p.beats)
		if err != nil {
			return nil, err
		}
		out = append(out, evs...)
	}
	sort.Stable(event.ByStart(out))
	return out, nil
}

func (p *PolyrhythmNode) Attributes() Attrs {
	attrs := Attrs{}
	for _, l := range p.Layers {
		attrs = Merge(attrs, l.Attributes())
	}
	return attrs
}

// AlternateNode cycles through its children, one per cycle index (the
// `<a b c>` construct): cycle k plays Children[k % len(Children)].
type AlternateNode struct {
	Children []Node
	beats    rational.T
}

func NewAlternate(children []Node) *AlternateNode {
	beats := rational.Zero
	if len(children) > 0 {
		beats = children[0].BeatsPerCycle()
	}
	return &AlternateNode{Children: children, beats: beats}
}

func (a *AlternateNode) BeatsPerCycle() rational.T { return a.beats }

func (a *AlternateNode) ForCycle(k uint64, baseStart rational.T) ([]event.PlaybackEvent, error) {
	if len(a.Children) == 0 {
		return nil, nil
	}
	idx := int(k % uint64(len(a.Children)))
	return scaleForSlot(a.Children[idx], k, baseStart, a.beats)
}

func (a *AlternateNode) Attributes() Attrs {
	attrs := Attrs{}
	for _, c := range a.Children {
		attrs = Merge(attrs, c.Attributes())
	}
	return attrs
}

// RepeatNode plays Child N times back to back within its own cycle slot
// (the `x*N` construct).
type RepeatNode struct {
	Child Node
	N     int
}

func NewRepeat(child Node, n int) *RepeatNode {
	return &RepeatNode{Child: child, N: n}
}

func (r *RepeatNode) BeatsPerCycle() rational.T { return r.Child.BeatsPerCycle() }

func (r *RepeatNode) ForCycle(k uint64, baseStart rational.T) ([]event.PlaybackEvent, error) {
	if r.N <= 0 {
		return nil, nil
	}
	native := r.Child.BeatsPerCycle()
	step, err := rational.Div(native, rational.MustNew(int64(r.N), 1))
	if err != nil {
		return nil, err
	}
	var out []event.PlaybackEvent
	for i := 0; i < r.N; i++ {
		offset := rational.Mul(step, rational.MustNew(int64(i), 1))
		evs, err := scaleForSlot(r.Child, k, rational.Add(baseStart, offset), step)
		if err != nil {
			return nil, err
		}
		out = append(out, evs...)
	}
	return out, nil
}

func (r *RepeatNode) Attributes() Attrs { return r.Child.Attributes() }
