// Package notemodel implements the Note and Chord data model: scientific
// pitch notation, MIDI mapping, and display-name round-tripping. Grounded
// on the teacher's internal/music package (MidiToNoteName), generalized
// from a fixed-width 3-character tracker label ("c-4") to a full
// pitch-class/octave/velocity model with bijective name<->midi conversion.
package notemodel

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/schollz/cadence/internal/cerr"
)

var noteNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

var flatEquivalents = map[string]string{
	"Db": "C#", "Eb": "D#", "Gb": "F#", "Ab": "G#", "Bb": "A#",
}

// Note is a pitch with an octave and optional velocity, scientific pitch
// notation (C4 == MIDI 60).
type Note struct {
	PitchClass int  // 0..11, C=0
	Octave     int  // may be negative
	Velocity   *int // 0..127, nil means unspecified (caller should default)
}

// New builds a Note, validating pitch class.
func New(pitchClass, octave int) (Note, error) {
	if pitchClass < 0 || pitchClass > 11 {
		return Note{}, cerr.New(cerr.KindRange, "pitch class %d out of range 0..11", pitchClass)
	}
	return Note{PitchClass: pitchClass, Octave: octave}, nil
}

// WithVelocity returns a copy of n with velocity set, validated to 0..127.
func (n Note) WithVelocity(v int) (Note, error) {
	if v < 0 || v > 127 {
		return Note{}, cerr.New(cerr.KindRange, "velocity %d out of range 0..127", v)
	}
	n.Velocity = &v
	return n, nil
}

// Midi returns the MIDI note number (scientific pitch: C4=60, i.e. octave 4
// is the "middle" octave, midi = 12*(octave+1)+pitchClass).
func (n Note) Midi() int {
	return 12*(n.Octave+1) + n.PitchClass
}

// FromMidi builds a Note from a MIDI number 0..127.
func FromMidi(midi int) (Note, error) {
	if midi < 0 || midi > 127 {
		return Note{}, cerr.New(cerr.KindRange, "midi note %d out of range 0..127", midi)
	}
	octave := midi/12 - 1
	pc := midi % 12
	return Note{PitchClass: pc, Octave: octave}, nil
}

// Transpose shifts the note by semitones, returning a RangeError if the
// result falls outside 0..127 MIDI.
func (n Note) Transpose(semitones int) (Note, error) {
	out, err := FromMidi(n.Midi() + semitones)
	if err != nil {
		return Note{}, err
	}
	out.Velocity = n.Velocity
	return out, nil
}

// Name renders scientific pitch notation, e.g. "C#4", "Bb3" is never
// produced by this renderer (sharps are canonical); Parse accepts flats.
func (n Note) Name() string {
	return fmt.Sprintf("%s%d", noteNames[n.PitchClass], n.Octave)
}

// Frequency returns the note's frequency in Hz using 12-tone equal
// temperament with A4 = 440Hz (MIDI 69).
func (n Note) Frequency() float64 {
	return Frequency(n.Midi())
}

// Frequency converts a MIDI note number to Hz, A4 (69) = 440Hz.
func Frequency(midi int) float64 {
	return 440.0 * math.Pow(2, (float64(midi)-69.0)/12.0)
}

var noteLiteralRe = regexp.MustCompile(`^([A-Ga-g])([#b]?)(-?\d+)?$`)

// Parse parses a note literal like "C4", "c#4", "Bb3", "F#-1" into a Note.
// Accepts [A-Ga-g][#b]?(-?\d+)?, a wider grammar than the lexer's note
// token (which takes only an uppercase letter).
func Parse(s string) (Note, error) {
	m := noteLiteralRe.FindStringSubmatch(s)
	if m == nil {
		return Note{}, cerr.New(cerr.KindPattern, "invalid note literal %q", s)
	}
	letter := strings.ToUpper(m[1])
	accidental := m[2]
	octave := 4
	if m[3] != "" {
		o, err := strconv.Atoi(m[3])
		if err != nil {
			return Note{}, cerr.New(cerr.KindPattern, "invalid octave in %q", s)
		}
		octave = o
	}

	base := letter
	if accidental == "#" {
		base = letter + "#"
	} else if accidental == "b" {
		if eq, ok := flatEquivalents[letter+"b"]; ok {
			base = eq
		} else {
			base = letter // Cb/Fb-style edge cases fold to natural in this model
		}
	}

	pc := -1
	for i, nm := range noteNames {
		if nm == base {
			pc = i
			break
		}
	}
	if pc == -1 {
		return Note{}, cerr.New(cerr.KindPattern, "unrecognized note name %q", s)
	}
	return New(pc, octave)
}
