// Package pattern implements the pattern algebra (spec §4.5): a tree of
// mini-notation constructors, each able to produce the PlaybackEvents for
// one cycle via ForCycle. Grounded on the teacher's tick/phrase model
// (internal/ticks: CalculatePhraseTicks/CalculateChainTicks/
// CalculateTrackTicks recursively sum nested durations) generalized from
// a fixed 255-row grid to an arbitrary tree with exact rational time.
package pattern

import (
	"github.com/schollz/cadence/internal/cerr"
	"github.com/schollz/cadence/internal/event"
	"github.com/schollz/cadence/internal/notemodel"
	"github.com/schollz/cadence/internal/rational"
)

// Attrs holds the inheritable display/performance attributes a pattern
// subtree can carry: waveform, ADSR envelope, and stereo pan. These are
// not per-PlaybackEvent (the wire PlayEvent shape has none); they are
// read once per emitted Action from the track's root pattern node.
type Attrs struct {
	Waveform *string
	Envelope *[4]float64
	Pan      *float64
}

// Merge returns outer's attributes, falling back to inner's for any field
// outer leaves unset — this is how Env/Wave nodes "inherit unless
// overridden": a node closer to the root that sets an attribute wins.
func Merge(outer, inner Attrs) Attrs {
	out := outer
	if out.Waveform == nil {
		out.Waveform = inner.Waveform
	}
	if out.Envelope == nil {
		out.Envelope = inner.Envelope
	}
	if out.Pan == nil {
		out.Pan = inner.Pan
	}
	return out
}

// Node is implemented by every pattern tree constructor.
type Node interface {
	// BeatsPerCycle returns this node's cycle length after any transforms
	// applied at construction time (Fast/Slow change it; most nodes pass
	// their child's value through or set it explicitly at the tree root).
	BeatsPerCycle() rational.T

	// ForCycle returns the PlaybackEvents for cycle index k, with Start
	// times already offset by baseStart. Events are strictly increasing
	// in Start (mod BeatsPerCycle), durations positive, in non-decreasing
	// Start order with stable structural tie-breaks.
	ForCycle(k uint64, baseStart rational.T) ([]event.PlaybackEvent, error)

	// Attributes returns the node's own inheritable attributes merged
	// with its descendants' (this node's own settings take precedence).
	Attributes() Attrs
}

// leafAttrs is embedded by nodes with no wrapped attribute of their own,
// so Attributes() falls through to children.
type noAttrs struct{}

func (noAttrs) ownAttrs() Attrs { return Attrs{} }

// --- Rest -------------------------------------------------------------

// RestNode produces one rest event spanning its full cycle.
type RestNode struct {
	Beats rational.T
}

func NewRest(beats rational.T) *RestNode { return &RestNode{Beats: beats} }

func (r *RestNode) BeatsPerCycle() rational.T { return r.Beats }

func (r *RestNode) ForCycle(_ uint64, baseStart rational.T) ([]event.PlaybackEvent, error) {
	return []event.PlaybackEvent{event.Rest(baseStart, r.Beats)}, nil
}

func (r *RestNode) Attributes() Attrs { return Attrs{} }

// --- Step (single note/drum token) ------------------------------------

// StepNode is a leaf: either a note (pitched) or a drum (bare identifier
// token that did not parse as a note literal), with an optional velocity.
type StepNode struct {
	Beats    rational.T
	Note     *notemodel.Note
	Drum     string
	Velocity *int
}

func NewNoteStep(beats rational.T, n notemodel.Note) *StepNode {
	return &StepNode{Beats: beats, Note: &n}
}

func NewDrumStep(beats rational.T, name string) *StepNode {
	return &StepNode{Beats: beats, Drum: name}
}

func (s *StepNode) BeatsPerCycle() rational.T { return s.Beats }

func (s *StepNode) ForCycle(_ uint64, baseStart rational.T) ([]event.PlaybackEvent, error) {
	ev := event.PlaybackEvent{Start: baseStart, Duration: s.Beats}
	if s.Note != nil {
		n := *s.Note
		if s.Velocity != nil {
			withVel, err := n.WithVelocity(*s.Velocity)
			if err != nil {
				return nil, err
			}
			n = withVel
		}
		ev.Notes = []notemodel.Note{n}
	} else {
		ev.Drums = []string{s.Drum}
	}
	return []event.PlaybackEvent{ev}, nil
}

func (s *StepNode) Attributes() Attrs { return Attrs{} }

// --- Chord --------------------------------------------------------------

// ChordNode is a parallel group of notes sharing one onset.
type ChordNode struct {
	Beats rational.T
	Chord notemodel.Chord
}

func NewChordNode(beats rational.T, chord notemodel.Chord) *ChordNode {
	return &ChordNode{Beats: beats, Chord: chord}
}

func (c *ChordNode) BeatsPerCycle() rational.T { return c.Beats }

func (c *ChordNode) ForCycle(_ uint64, baseStart rational.T) ([]event.PlaybackEvent, error) {
	return []event.PlaybackEvent{{Start: baseStart, Duration: c.Beats, Notes: c.Chord.Notes}}, nil
}

func (c *ChordNode) Attributes() Attrs { return Attrs{} }

// --- Weight (x@N) -------------------------------------------------------

// WeightNode annotates its child with a sibling-sum weight; Sequence
// inspects WeightNode children directly to compute share of the cycle.
// Outside a Sequence it behaves as a transparent wrapper around Child.
type WeightNode struct {
	N     int
	Child Node
}

func NewWeight(n int, child Node) *WeightNode {
	return &WeightNode{N: n, Child: child}
}

func (w *WeightNode) BeatsPerCycle() rational.T { return w.Child.BeatsPerCycle() }

func (w *WeightNode) ForCycle(k uint64, baseStart rational.T) ([]event.PlaybackEvent, error) {
	if w.N == 0 {
		return nil, nil // @0 is a zero-duration event, skipped when flattening
	}
	return w.Child.ForCycle(k, baseStart)
}

func (w *WeightNode) Attributes() Attrs { return w.Child.Attributes() }

// --- Velocity (x(v)) -----------------------------------------------------

// VelocityNode attaches a velocity (0..127, or a 0..1 float rounded) to a
// child step or chord.
type VelocityNode struct {
	Velocity int
	Child    Node
}

// NewVelocity validates v is already resolved to an integer 0..127 by the
// caller (the pattern parser performs the float-to-int rounding per
// spec §4.5).
func NewVelocity(v int, child Node) (*VelocityNode, error) {
	if v < 0 || v > 127 {
		return nil, cerr.New(cerr.KindRange, "velocity %d out of range 0..127", v)
	}
	return &VelocityNode{Velocity: v, Child: child}, nil
}

func (v *VelocityNode) BeatsPerCycle() rational.T { return v.Child.BeatsPerCycle() }

func (v *VelocityNode) ForCycle(k uint64, baseStart rational.T) ([]event.PlaybackEvent, error) {
	events, err := v.Child.ForCycle(k, baseStart)
	if err != nil {
		return nil, err
	}
	out := make([]event.PlaybackEvent, len(events))
	for i, e := range events {
		if !e.IsRest && len(e.Notes) > 0 {
			notes := make([]notemodel.Note, len(e.Notes))
			for j, n := range e.Notes {
				withVel, verr := n.WithVelocity(v.Velocity)
				if verr != nil {
					return nil, verr
				}
				notes[j] = withVel
			}
			e.Notes = notes
		}
		out[i] = e
	}
	return out, nil
}

func (v *VelocityNode) Attributes() Attrs { return v.Child.Attributes() }
