package notemodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMidiRoundTrip(t *testing.T) {
	// Every MIDI note 0..127 round-trips through FromMidi -> Midi.
	for m := 0; m <= 127; m++ {
		n, err := FromMidi(m)
		require.NoError(t, err)
		assert.Equal(t, m, n.Midi())
	}
}

func TestMidiOutOfRange(t *testing.T) {
	_, err := FromMidi(-1)
	require.Error(t, err)
	_, err = FromMidi(128)
	require.Error(t, err)
}

func TestParseAndName(t *testing.T) {
	tests := []struct {
		literal  string
		wantMidi int
	}{
		{"C4", 60},
		{"c4", 60},
		{"C#4", 61},
		{"Bb3", 58},
		{"A0", 21},
		{"C-1", 0},
		{"G9", 127},
	}
	for _, tt := range tests {
		t.Run(tt.literal, func(t *testing.T) {
			n, err := Parse(tt.literal)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMidi, n.Midi())
		})
	}
}

func TestTransposeGroupAction(t *testing.T) {
	// Transpose is a group action: n.transpose(a).transpose(b) == n.transpose(a+b)
	n, _ := Parse("C4")
	got, err := n.Transpose(3)
	require.NoError(t, err)
	got, err = got.Transpose(4)
	require.NoError(t, err)

	want, err := n.Transpose(7)
	require.NoError(t, err)
	assert.Equal(t, want.Midi(), got.Midi())
}

func TestTransposeOutOfRangeRaises(t *testing.T) {
	n, _ := FromMidi(125)
	_, err := n.Transpose(10)
	require.Error(t, err)
}

func TestFrequencyA440(t *testing.T) {
	n, _ := FromMidi(69)
	assert.InDelta(t, 440.0, n.Frequency(), 1e-9)
}

func TestChordDedupAndSetOps(t *testing.T) {
	c4, _ := Parse("C4")
	e4, _ := Parse("E4")
	g4, _ := Parse("G4")
	c4dup, _ := Parse("C4")

	chord, err := NewChord([]Note{c4, e4, g4, c4dup})
	require.NoError(t, err)
	assert.Len(t, chord.Notes, 3)

	other, _ := NewChord([]Note{e4, g4})
	inter, err := Intersect(chord, other)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{e4.Midi(), g4.Midi()}, inter.Midis())

	union, err := Union(chord, other)
	require.NoError(t, err)
	assert.Len(t, union.Notes, 3)
}

func TestNewChordRejectsEmpty(t *testing.T) {
	_, err := NewChord(nil)
	require.Error(t, err)
}
