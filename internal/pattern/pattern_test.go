package pattern

import (
	"testing"

	"github.com/schollz/cadence/internal/rational"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSimpleSequence(t *testing.T) {
	n, err := Parse("C4 D4 E4")
	require.NoError(t, err)
	// A bare sequence always subdivides the default 4-beat cycle among its
	// children (spec §3/§4.5), not the sum of the children's own lengths.
	assert.True(t, rational.Equal(n.BeatsPerCycle(), rational.FromInt(4)))

	evs, err := n.ForCycle(0, rational.Zero)
	require.NoError(t, err)
	require.Len(t, evs, 3)
	third := rational.MustNew(4, 3)
	assert.True(t, rational.Equal(evs[0].Start, rational.Zero))
	assert.True(t, rational.Equal(evs[1].Start, third))
	assert.True(t, rational.Equal(evs[2].Start, rational.Mul(third, rational.FromInt(2))))
}

// TestParseWeightedSequenceMatchesS2 pins down spec scenario S2: "C@2 D"
// must produce durations 8/3 and 4/3 over a 4-beat cycle.
func TestParseWeightedSequenceMatchesS2(t *testing.T) {
	n, err := Parse("C4@2 D4")
	require.NoError(t, err)
	assert.True(t, rational.Equal(n.BeatsPerCycle(), rational.FromInt(4)))

	evs, err := n.ForCycle(0, rational.Zero)
	require.NoError(t, err)
	require.Len(t, evs, 2)
	assert.True(t, rational.Equal(evs[0].Duration, rational.MustNew(8, 3)))
	assert.True(t, rational.Equal(evs[1].Duration, rational.MustNew(4, 3)))
}

func TestParseRest(t *testing.T) {
	n, err := Parse("C4 _ D4")
	require.NoError(t, err)
	evs, err := n.ForCycle(0, rational.Zero)
	require.NoError(t, err)
	require.Len(t, evs, 3)
	assert.True(t, evs[1].IsRest)
}

func TestParseNestedGroup(t *testing.T) {
	n, err := Parse("C4 [D4 E4]")
	require.NoError(t, err)
	// The outer sequence is itself 2 equally-weighted children over the
	// default 4-beat cycle, so C4 and the nested group each get 2 beats;
	// the nested group then splits its own 2-beat slot across D4 and E4.
	assert.True(t, rational.Equal(n.BeatsPerCycle(), rational.FromInt(4)))
	evs, err := n.ForCycle(0, rational.Zero)
	require.NoError(t, err)
	require.Len(t, evs, 3)
	assert.True(t, rational.Equal(evs[0].Duration, rational.FromInt(2)))
	assert.True(t, rational.Equal(evs[1].Duration, rational.One))
	assert.True(t, rational.Equal(evs[2].Duration, rational.One))
}

func TestParseChordBracket(t *testing.T) {
	n, err := Parse("[C4,E4,G4]")
	require.NoError(t, err)
	evs, err := n.ForCycle(0, rational.Zero)
	require.NoError(t, err)
	require.Len(t, evs, 1)
	assert.Len(t, evs[0].Notes, 3)
}

func TestParseAlternate(t *testing.T) {
	n, err := Parse("<C4 D4 E4>")
	require.NoError(t, err)
	for k, want := range []int{0, 2, 4} {
		evs, err := n.ForCycle(uint64(k), rational.Zero)
		require.NoError(t, err)
		require.Len(t, evs, 1)
		assert.Equal(t, want, evs[0].Notes[0].PitchClass)
	}
}

func TestParseRepeat(t *testing.T) {
	n, err := Parse("C4*4")
	require.NoError(t, err)
	evs, err := n.ForCycle(0, rational.Zero)
	require.NoError(t, err)
	require.Len(t, evs, 4)
	assert.True(t, rational.Equal(evs[0].Duration, rational.MustNew(1, 4)))
}

func TestParseEuclidean(t *testing.T) {
	n, err := Parse("bd(3,8)")
	require.NoError(t, err)
	evs, err := n.ForCycle(0, rational.Zero)
	require.NoError(t, err)
	require.Len(t, evs, 8)
	onsets := 0
	for _, e := range evs {
		if !e.IsRest {
			onsets++
		}
	}
	assert.Equal(t, 3, onsets)
}

func TestParseWeight(t *testing.T) {
	n, err := Parse("C4@3 D4")
	require.NoError(t, err)
	evs, err := n.ForCycle(0, rational.Zero)
	require.NoError(t, err)
	require.Len(t, evs, 2)
	assert.True(t, rational.Equal(evs[0].Duration, rational.FromInt(3)))
	assert.True(t, rational.Equal(evs[1].Duration, rational.One))
}

func TestParsePolyrhythm(t *testing.T) {
	n, err := Parse("{C4 D4, E4 F4 G4}")
	require.NoError(t, err)
	evs, err := n.ForCycle(0, rational.Zero)
	require.NoError(t, err)
	require.Len(t, evs, 5)
}

func TestFastAndSlow(t *testing.T) {
	base, err := Parse("C4 D4")
	require.NoError(t, err)
	require.True(t, rational.Equal(base.BeatsPerCycle(), rational.FromInt(4)))

	fast, err := NewFast(base, rational.FromInt(2))
	require.NoError(t, err)
	// Invariant: P.fast(r).beats_per_cycle == P.beats_per_cycle / r, exact in T.
	want, err := rational.Div(base.BeatsPerCycle(), rational.FromInt(2))
	require.NoError(t, err)
	assert.True(t, rational.Equal(fast.BeatsPerCycle(), want))

	evs, err := fast.ForCycle(0, rational.Zero)
	require.NoError(t, err)
	// The child is queried once at its own cycle 0 and compressed into the
	// shrunk 2-beat slot, so it still yields its own 2 events, each now 1 beat.
	require.Len(t, evs, 2)
	assert.True(t, rational.Equal(evs[0].Duration, rational.One))
	assert.True(t, rational.Equal(evs[1].Duration, rational.One))

	slow, err := NewSlow(base, rational.FromInt(2))
	require.NoError(t, err)
	assert.True(t, rational.Equal(slow.BeatsPerCycle(), rational.FromInt(8)))
}

func TestRevReversesOrder(t *testing.T) {
	base, err := Parse("C4 D4 E4")
	require.NoError(t, err)
	rev := NewRev(base)
	evs, err := rev.ForCycle(0, rational.Zero)
	require.NoError(t, err)
	require.Len(t, evs, 3)
	assert.Equal(t, 4, evs[0].Notes[0].PitchClass)
	assert.Equal(t, 2, evs[1].Notes[0].PitchClass)
	assert.Equal(t, 0, evs[2].Notes[0].PitchClass)
}

func TestTransposeShiftsMidi(t *testing.T) {
	base, err := Parse("C4")
	require.NoError(t, err)
	tr := NewTranspose(base, 12)
	evs, err := tr.ForCycle(0, rational.Zero)
	require.NoError(t, err)
	assert.Equal(t, 5, evs[0].Notes[0].Octave)
}

func TestBjorklundTresillo(t *testing.T) {
	onsets := Bjorklund(3, 8)
	count := 0
	for _, o := range onsets {
		if o {
			count++
		}
	}
	assert.Equal(t, 3, count)
	assert.Len(t, onsets, 8)
}
