package evaluator

import (
	"testing"

	"github.com/schollz/cadence/internal/ast"
	"github.com/schollz/cadence/internal/env"
	"github.com/schollz/cadence/internal/parser"
	"github.com/schollz/cadence/internal/pattern"
	"github.com/schollz/cadence/internal/rational"
	"github.com/schollz/cadence/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSink records every effect for assertions without needing the real
// reactive Interpreter.
type fakeSink struct {
	plays  []playCall
	stops  []int
	tempo  float64
	volume map[int]float64
}

type playCall struct {
	track int
	p     pattern.Node
	queue bool
	mode  ast.QueueMode
	beats int
	loop  bool
}

func newFakeSink() *fakeSink { return &fakeSink{volume: make(map[int]float64)} }

func (f *fakeSink) Play(track int, p pattern.Node, queue bool, mode ast.QueueMode, beatsN int, loop bool) error {
	f.plays = append(f.plays, playCall{track, p, queue, mode, beatsN, loop})
	return nil
}
func (f *fakeSink) Stop(track int) error                 { f.stops = append(f.stops, track); return nil }
func (f *fakeSink) SetTempo(bpm float64) error            { f.tempo = bpm; return nil }
func (f *fakeSink) SetVolume(track int, v float64) error  { f.volume[track] = v; return nil }
func (f *fakeSink) ResolveModule(path string) (*env.Environment, error) {
	return env.New(), nil
}

func runProgram(t *testing.T, src string) (*fakeSink, *env.Environment) {
	t.Helper()
	prog, errs := parser.Parse(src)
	require.Empty(t, errs)
	sink := newFakeSink()
	ev := New(sink)
	scope := env.New()
	err := ev.Run(prog, scope)
	require.NoError(t, err)
	return sink, scope
}

func TestEvalLetAndPlay(t *testing.T) {
	sink, _ := runProgram(t, `let bass = "C4 D4"
play bass loop`)
	require.Len(t, sink.plays, 1)
	assert.Equal(t, 1, sink.plays[0].track)
	assert.True(t, sink.plays[0].loop)
}

func TestEvalOnTrack(t *testing.T) {
	sink, _ := runProgram(t, `on 3 play "kick snare" loop`)
	require.Len(t, sink.plays, 1)
	assert.Equal(t, 3, sink.plays[0].track)
}

func TestEvalTempoAndVolume(t *testing.T) {
	sink, _ := runProgram(t, "tempo 120\nvolume 0.8")
	assert.Equal(t, 120.0, sink.tempo)
	assert.Equal(t, 0.8, sink.volume[0])
}

func TestEvalFunctionCallAndPipeline(t *testing.T) {
	base, err := pattern.Parse("C4 D4")
	require.NoError(t, err)

	sink, _ := runProgram(t, `let p = "C4 D4" |> fast 2
play p`)
	require.Len(t, sink.plays, 1)
	// Invariant: P.fast(r).beats_per_cycle == P.beats_per_cycle / r, checked
	// against the base pattern's own cycle length rather than a bare literal.
	want, err := rational.Div(base.BeatsPerCycle(), rational.FromInt(2))
	require.NoError(t, err)
	assert.True(t, rational.Equal(sink.plays[0].p.BeatsPerCycle(), want))
}

func TestEvalUserFunction(t *testing.T) {
	sink, _ := runProgram(t, `fn double(p) {
  return p.fast(2)
}
play double("C4 D4")`)
	require.Len(t, sink.plays, 1)
	_ = sink
}

func TestEvalIfElse(t *testing.T) {
	_, scope := runProgram(t, `let x = 1
if x == 1 {
  let y = 10
} else {
  let y = 20
}`)
	v, ok := scope.Get("x")
	require.True(t, ok)
	assert.Equal(t, int64(1), v.Int())
}

func TestEvalChordSetOps(t *testing.T) {
	_, scope := runProgram(t, `let a = [C4,E4,G4]
let b = [E4,G4,B4]
let both = a & b`)
	both, ok := scope.Get("both")
	require.True(t, ok)
	assert.Len(t, both.ChordData().Notes, 2)
}

func TestEvalTransposeNoteByOctave(t *testing.T) {
	_, scope := runProgram(t, `let n = C4
let m = transpose(n, 12)`)
	m, ok := scope.Get("m")
	require.True(t, ok)
	assert.Equal(t, 5, m.NoteData().Octave)
}

func TestEvalModuloOperator(t *testing.T) {
	_, scope := runProgram(t, `let x = 7 % 3`)
	v, ok := scope.Get("x")
	require.True(t, ok)
	assert.Equal(t, int64(1), v.Int())
}

func TestEvalNamedProgressionShortcut(t *testing.T) {
	_, scope := runProgram(t, `let p = ii_V_I(C4)`)
	v, ok := scope.Get("p")
	require.True(t, ok)
	require.Equal(t, value.KindPattern, v.Kind())
	evs, err := v.PatternData().ForCycle(0, rational.Zero)
	require.NoError(t, err)
	require.Len(t, evs, 3)
}

func TestEvalEveryFunctionForm(t *testing.T) {
	// spec scenario S4: every(2, rev, "C D E F") — the bare function-call
	// form, with the interval first and the pattern last, rather than the
	// method form's (pattern, interval, transform) order.
	sink, _ := runProgram(t, `let p = every(2, rev, "C4 D4 E4 F4")
play p`)
	require.Len(t, sink.plays, 1)
	assert.Equal(t, value.KindPattern, value.PatternVal(sink.plays[0].p).Kind())
}

func TestEvalRepeatBreak(t *testing.T) {
	_, scope := runProgram(t, `let count = 0
repeat 5 {
  count = count + 1
  if count == 3 {
    break
  }
}`)
	c, ok := scope.Get("count")
	require.True(t, ok)
	assert.Equal(t, int64(3), c.Int())
}
