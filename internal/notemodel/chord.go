package notemodel

import (
	"sort"
	"strings"

	"github.com/schollz/cadence/internal/cerr"
)

// Chord is an ordered, non-empty, duplicate-free (by MIDI) set of Notes
// sharing one onset.
type Chord struct {
	Notes []Note
	label string
}

// NewChord builds a Chord, rejecting duplicate MIDI notes and empty input.
func NewChord(notes []Note) (Chord, error) {
	if len(notes) == 0 {
		return Chord{}, cerr.New(cerr.KindPattern, "chord must contain at least one note")
	}
	seen := make(map[int]bool, len(notes))
	out := make([]Note, 0, len(notes))
	for _, n := range notes {
		m := n.Midi()
		if seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, n)
	}
	return Chord{Notes: out}, nil
}

// WithLabel attaches a derived display label, e.g. "C Major".
func (c Chord) WithLabel(label string) Chord {
	c.label = label
	return c
}

// Label returns the chord's derived label, or "" if unset.
func (c Chord) Label() string { return c.label }

// Midis returns the chord's MIDI notes, in chord order.
func (c Chord) Midis() []int {
	out := make([]int, len(c.Notes))
	for i, n := range c.Notes {
		out[i] = n.Midi()
	}
	return out
}

// Transpose applies Note.Transpose to every member.
func (c Chord) Transpose(semitones int) (Chord, error) {
	out := make([]Note, len(c.Notes))
	for i, n := range c.Notes {
		t, err := n.Transpose(semitones)
		if err != nil {
			return Chord{}, err
		}
		out[i] = t
	}
	return NewChord(out)
}

func midiSet(c Chord) map[int]bool {
	s := make(map[int]bool, len(c.Notes))
	for _, n := range c.Notes {
		s[n.Midi()] = true
	}
	return s
}

// Intersect returns the notes present (by MIDI) in both chords, in a's order.
func Intersect(a, b Chord) (Chord, error) {
	bs := midiSet(b)
	var out []Note
	for _, n := range a.Notes {
		if bs[n.Midi()] {
			out = append(out, n)
		}
	}
	if len(out) == 0 {
		return Chord{}, cerr.New(cerr.KindPattern, "chord intersection is empty")
	}
	return NewChord(out)
}

// Union returns the notes present in either chord, a's notes first, sorted
// stable by first appearance then ascending MIDI for b's unique additions.
func Union(a, b Chord) (Chord, error) {
	out := append([]Note{}, a.Notes...)
	as := midiSet(a)
	for _, n := range b.Notes {
		if !as[n.Midi()] {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Midi() < out[j].Midi() })
	return NewChord(out)
}

// SymmetricDifference returns notes present in exactly one chord.
func SymmetricDifference(a, b Chord) (Chord, error) {
	as, bs := midiSet(a), midiSet(b)
	var out []Note
	for _, n := range a.Notes {
		if !bs[n.Midi()] {
			out = append(out, n)
		}
	}
	for _, n := range b.Notes {
		if !as[n.Midi()] {
			out = append(out, n)
		}
	}
	if len(out) == 0 {
		return Chord{}, cerr.New(cerr.KindPattern, "symmetric difference is empty")
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Midi() < out[j].Midi() })
	return NewChord(out)
}

// Names renders each note's display name, joined for logging/debugging.
func (c Chord) Names() string {
	parts := make([]string, len(c.Notes))
	for i, n := range c.Notes {
		parts[i] = n.Name()
	}
	return strings.Join(parts, " ")
}
