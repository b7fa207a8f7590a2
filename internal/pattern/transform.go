package pattern

import (
	"sort"

	"github.com/schollz/cadence/internal/cerr"
	"github.com/schollz/cadence/internal/event"
	"github.com/schollz/cadence/internal/notemodel"
	"github.com/schollz/cadence/internal/rational"
)

// FastNode compresses Child's cycle into 1/Factor of its natural length
// (spec §4.5: "new_beats_per_cycle = beats_per_cycle / r"). It does not
// unroll multiple renditions of Child into one outer cycle; it queries
// Child once, at the accelerated cycle index floor(k*Factor), and fits
// that single rendition into the shrunk slot — the speedup comes from
// outer cycle k advancing through Child's cycles faster, the same way
// alternating (`< >`) children advance one pick per cycle rather than
// replaying every pick in the same tick.
type FastNode struct {
	Child  Node
	Factor rational.T
}

func NewFast(child Node, factor rational.T) (*FastNode, error) {
	if !rational.IsPositive(factor) {
		return nil, cerr.New(cerr.KindRange, "fast factor must be positive, got %s", factor.String())
	}
	return &FastNode{Child: child, Factor: factor}, nil
}

func (f *FastNode) BeatsPerCycle() rational.T {
	shrunk, err := rational.Div(f.Child.BeatsPerCycle(), f.Factor)
	if err != nil {
		return f.Child.BeatsPerCycle()
	}
	return shrunk
}

func (f *FastNode) ForCycle(k uint64, baseStart rational.T) ([]event.PlaybackEvent, error) {
	shrunk, err := rational.Div(f.Child.BeatsPerCycle(), f.Factor)
	if err != nil {
		return nil, err
	}
	childK := rational.FloorDiv(rational.Mul(rational.FromInt(int64(k)), f.Factor), rational.One)
	return scaleForSlot(f.Child, uint64(childK), baseStart, shrunk)
}

func (f *FastNode) Attributes() Attrs { return f.Child.Attributes() }

// SlowNode plays one whole rendition of Child per cycle, stretched to
// Factor times Child's cycle length; outer cycle k renders Child's cycle k.
type SlowNode struct {
	Child  Node
	Factor rational.T
}

func NewSlow(child Node, factor rational.T) (*SlowNode, error) {
	if !rational.IsPositive(factor) {
		return nil, cerr.New(cerr.KindRange, "slow factor must be positive, got %s", factor.String())
	}
	return &SlowNode{Child: child, Factor: factor}, nil
}

func (s *SlowNode) BeatsPerCycle() rational.T {
	return rational.Mul(s.Child.BeatsPerCycle(), s.Factor)
}

func (s *SlowNode) ForCycle(k uint64, baseStart rational.T) ([]event.PlaybackEvent, error) {
	return scaleForSlot(s.Child, k, baseStart, s.BeatsPerCycle())
}

func (s *SlowNode) Attributes() Attrs { return s.Child.Attributes() }

// RevNode reverses Child's event order and timing within its cycle: an
// event [start, start+dur) in a cycle of length L maps to
// [L-start-dur, L-start).
type RevNode struct {
	Child Node
}

func NewRev(child Node) *RevNode { return &RevNode{Child: child} }

func (r *RevNode) BeatsPerCycle() rational.T { return r.Child.BeatsPerCycle() }

func (r *RevNode) ForCycle(k uint64, baseStart rational.T) ([]event.PlaybackEvent, error) {
	evs, err := r.Child.ForCycle(k, rational.Zero)
	if err != nil {
		return nil, err
	}
	length := r.Child.BeatsPerCycle()
	out := make([]event.PlaybackEvent, len(evs))
	for i, e := range evs {
		end := rational.Add(e.Start, e.Duration)
		out[i] = e
		out[i].Start = rational.Add(baseStart, rational.Sub(length, end))
	}
	sort.Stable(event.ByStart(out))
	return out, nil
}

func (r *RevNode) Attributes() Attrs { return r.Child.Attributes() }

// TransposeNode shifts every note in Child's events by Semitones, per
// the note model's MIDI-space group action (spec §8 invariant #4).
type TransposeNode struct {
	Child     Node
	Semitones int
}

func NewTranspose(child Node, semitones int) *TransposeNode {
	return &TransposeNode{Child: child, Semitones: semitones}
}

func (t *TransposeNode) BeatsPerCycle() rational.T { return t.Child.BeatsPerCycle() }

func (t *TransposeNode) ForCycle(k uint64, baseStart rational.T) ([]event.PlaybackEvent, error) {
	evs, err := t.Child.ForCycle(k, baseStart)
	if err != nil {
		return nil, err
	}
	out := make([]event.PlaybackEvent, len(evs))
	for i, e := range evs {
		out[i] = e
		if len(e.Notes) > 0 {
			notes := make([]notemodel.Note, len(e.Notes))
			for j, n := range e.Notes {
				tn, terr := n.Transpose(t.Semitones)
				if terr != nil {
					return nil, terr
				}
				notes[j] = tn
			}
			out[i].Notes = notes
		}
	}
	return out, nil
}

func (t *TransposeNode) Attributes() Attrs { return t.Child.Attributes() }

// EnvNode attaches a fixed ADSR envelope to Child's subtree.
type EnvNode struct {
	Child    Node
	Envelope [4]float64
}

func NewEnv(child Node, adsr [4]float64) *EnvNode { return &EnvNode{Child: child, Envelope: adsr} }

func (e *EnvNode) BeatsPerCycle() rational.T { return e.Child.BeatsPerCycle() }

func (e *EnvNode) ForCycle(k uint64, baseStart rational.T) ([]event.PlaybackEvent, error) {
	return e.Child.ForCycle(k, baseStart)
}

func (e *EnvNode) Attributes() Attrs {
	env := e.Envelope
	return Merge(Attrs{Envelope: &env}, e.Child.Attributes())
}

// WaveNode attaches a fixed waveform name to Child's subtree.
type WaveNode struct {
	Child    Node
	Waveform string
}

func NewWave(child Node, waveform string) *WaveNode {
	return &WaveNode{Child: child, Waveform: waveform}
}

func (w *WaveNode) BeatsPerCycle() rational.T { return w.Child.BeatsPerCycle() }

func (w *WaveNode) ForCycle(k uint64, baseStart rational.T) ([]event.PlaybackEvent, error) {
	return w.Child.ForCycle(k, baseStart)
}

func (w *WaveNode) Attributes() Attrs {
	wf := w.Waveform
	return Merge(Attrs{Waveform: &wf}, w.Child.Attributes())
}

// EveryNode applies Then to Child once every N cycles (cycle k such that
// k mod N == Offset), otherwise passes Child through unmodified. Then is
// supplied as a closure so the evaluator can apply an arbitrary
// user-visible transform (rev, fast, a user function) on the selected
// cycles only.
type EveryNode struct {
	Child  Node
	N      int
	Offset int
	Then   func(Node) (Node, error)
}

func NewEvery(child Node, n, offset int, then func(Node) (Node, error)) (*EveryNode, error) {
	if n <= 0 {
		return nil, cerr.New(cerr.KindRange, "every period must be positive, got %d", n)
	}
	return &EveryNode{Child: child, N: n, Offset: offset, Then: then}, nil
}

func (e *EveryNode) BeatsPerCycle() rational.T { return e.Child.BeatsPerCycle() }

func (e *EveryNode) ForCycle(k uint64, baseStart rational.T) ([]event.PlaybackEvent, error) {
	if int(k%uint64(e.N)) == ((e.Offset % e.N) + e.N) % e.N {
		transformed, err := e.Then(e.Child)
		if err != nil {
			return nil, err
		}
		return scaleForSlot(transformed, k, baseStart, e.Child.BeatsPerCycle())
	}
	return e.Child.ForCycle(k, baseStart)
}

func (e *EveryNode) Attributes() Attrs { return e.Child.Attributes() }

// UserTransformNode applies an arbitrary evaluator-supplied function to
// the whole list of events produced by Child each cycle (the generic
// `.map(fn)`-style escape hatch for user-defined pattern transforms).
type UserTransformNode struct {
	Child Node
	Apply func([]event.PlaybackEvent) ([]event.PlaybackEvent, error)
}

func NewUserTransform(child Node, apply func([]event.PlaybackEvent) ([]event.PlaybackEvent, error)) *UserTransformNode {
	return &UserTransformNode{Child: child, Apply: apply}
}

func (u *UserTransformNode) BeatsPerCycle() rational.T { return u.Child.BeatsPerCycle() }

func (u *UserTransformNode) ForCycle(k uint64, baseStart rational.T) ([]event.PlaybackEvent, error) {
	evs, err := u.Child.ForCycle(k, baseStart)
	if err != nil {
		return nil, err
	}
	return u.Apply(evs)
}

func (u *UserTransformNode) Attributes() Attrs { return u.Child.Attributes() }

// OptimizeVLNode rewrites Child's chord voicings each cycle to minimize
// total semitone movement from the previous cycle's chord (smooth voice
// leading), tracking its own running "previous chord" state across
// successive ForCycle calls in tick order.
type OptimizeVLNode struct {
	Child Node
	prev  *notemodel.Chord
}

func NewOptimizeVL(child Node) *OptimizeVLNode { return &OptimizeVLNode{Child: child} }

func (o *OptimizeVLNode) BeatsPerCycle() rational.T { return o.Child.BeatsPerCycle() }

func (o *OptimizeVLNode) ForCycle(k uint64, baseStart rational.T) ([]event.PlaybackEvent, error) {
	evs, err := o.Child.ForCycle(k, baseStart)
	if err != nil {
		return nil, err
	}
	out := make([]event.PlaybackEvent, len(evs))
	for i, e := range evs {
		out[i] = e
		if len(e.Notes) < 2 {
			continue
		}
		chord, cerr2 := notemodel.NewChord(e.Notes)
		if cerr2 != nil {
			return nil, cerr2
		}
		voiced := voiceLead(o.prev, chord)
		o.prev = &voiced
		out[i].Notes = voiced.Notes
	}
	return out, nil
}

func (o *OptimizeVLNode) Attributes() Attrs { return o.Child.Attributes() }

// voiceLead octave-shifts each note of next independently to minimize its
// distance from the nearest note of prev (or leaves it as written when
// prev is nil, i.e. on the first chord of a pattern).
func voiceLead(prev *notemodel.Chord, next notemodel.Chord) notemodel.Chord {
	if prev == nil || len(prev.Notes) == 0 {
		return next
	}
	out := make([]notemodel.Note, len(next.Notes))
	for i, n := range next.Notes {
		best := n
		bestDist := -1
		for octShift := -2; octShift <= 2; octShift++ {
			cand, err := notemodel.FromMidi(n.Midi() + 12*octShift)
			if err != nil {
				continue
			}
			for _, p := range prev.Notes {
				d := cand.Midi() - p.Midi()
				if d < 0 {
					d = -d
				}
				if bestDist == -1 || d < bestDist {
					bestDist = d
					best = cand
				}
			}
		}
		out[i] = best
	}
	result, err := notemodel.NewChord(out)
	if err != nil {
		return next
	}
	return result
}
