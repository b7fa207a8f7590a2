package parser

import (
	"testing"

	"github.com/schollz/cadence/internal/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLetAndPlay(t *testing.T) {
	prog, errs := Parse(`let bass = "D3 A2 D3 F3"
play bass loop`)
	require.Empty(t, errs)
	require.Len(t, prog.Statements, 2)

	let, ok := prog.Statements[0].(*ast.LetStmt)
	require.True(t, ok)
	assert.Equal(t, "bass", let.Name)
	str, ok := let.Value.(*ast.StringLit)
	require.True(t, ok)
	assert.Equal(t, "D3 A2 D3 F3", str.Value)

	play, ok := prog.Statements[1].(*ast.PlayStmt)
	require.True(t, ok)
	assert.True(t, play.Loop)
	assert.False(t, play.Queue)
	ident, ok := play.Expr.(*ast.Ident)
	require.True(t, ok)
	assert.Equal(t, "bass", ident.Name)
}

func TestParsePlayQueueModes(t *testing.T) {
	tests := []struct {
		src      string
		wantMode ast.QueueMode
		beatsN   int
	}{
		{`play "x" queue`, ast.QueueBeat, 0},
		{`play "x" queue bar`, ast.QueueBar, 0},
		{`play "x" queue cycle`, ast.QueueCycle, 0},
		{`play "x" queue beats 3`, ast.QueueBeatsN, 3},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			prog, errs := Parse(tt.src)
			require.Empty(t, errs)
			play := prog.Statements[0].(*ast.PlayStmt)
			assert.True(t, play.Queue)
			assert.Equal(t, tt.wantMode, play.Mode)
			assert.Equal(t, tt.beatsN, play.BeatsN)
		})
	}
}

func TestParseOnTrack(t *testing.T) {
	prog, errs := Parse(`on 3 play "kick snare" loop`)
	require.Empty(t, errs)
	on, ok := prog.Statements[0].(*ast.OnStmt)
	require.True(t, ok)
	assert.Equal(t, 3, on.Track)
	require.NotNil(t, on.Play)
	assert.Equal(t, 3, on.Play.Track)
}

func TestParseTrackBlock(t *testing.T) {
	prog, errs := Parse("track 2 {\n  play \"C4\" loop\n  volume 0.5\n}")
	require.Empty(t, errs)
	tr, ok := prog.Statements[0].(*ast.TrackStmt)
	require.True(t, ok)
	assert.Equal(t, 2, tr.Track)
	require.Len(t, tr.Body, 2)
}

func TestParseFnDefWithDoc(t *testing.T) {
	prog, errs := Parse("// doubles a pattern\nfn double(p) {\n  return p.fast(2)\n}")
	require.Empty(t, errs)
	fn, ok := prog.Statements[0].(*ast.FnDefStmt)
	require.True(t, ok)
	assert.Equal(t, "double", fn.Name)
	assert.Equal(t, []string{"p"}, fn.Params)
	assert.Equal(t, " doubles a pattern", fn.DocBefore)
	require.Len(t, fn.Body, 1)
	ret, ok := fn.Body[0].(*ast.ReturnStmt)
	require.True(t, ok)
	_, ok = ret.Value.(*ast.MethodCallExpr)
	assert.True(t, ok)
}

func TestParseIfElse(t *testing.T) {
	prog, errs := Parse("if x == 1 {\n  play \"C4\"\n} else {\n  play \"D4\"\n}")
	require.Empty(t, errs)
	ifs, ok := prog.Statements[0].(*ast.IfStmt)
	require.True(t, ok)
	require.Len(t, ifs.Then, 1)
	require.Len(t, ifs.Else, 1)
	bin, ok := ifs.Cond.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "==", bin.Op)
}

func TestParsePipelineAndMethodChain(t *testing.T) {
	prog, errs := Parse(`let p = "C4 D4" |> fast 2 |> rev`)
	require.Empty(t, errs)
	let := prog.Statements[0].(*ast.LetStmt)
	outer, ok := let.Value.(*ast.PipelineExpr)
	require.True(t, ok)
	assert.Equal(t, "rev", outer.Name)
	inner, ok := outer.Left.(*ast.PipelineExpr)
	require.True(t, ok)
	assert.Equal(t, "fast", inner.Name)
	require.Len(t, inner.Args, 1)
}

func TestParseBinaryPrecedence(t *testing.T) {
	prog, errs := Parse("let x = a & b | c")
	require.Empty(t, errs)
	let := prog.Statements[0].(*ast.LetStmt)
	top, ok := let.Value.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "|", top.Op)
	left, ok := top.Left.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "&", left.Op)
}

func TestParseModuloOperator(t *testing.T) {
	prog, errs := Parse("let x = a % b")
	require.Empty(t, errs)
	let := prog.Statements[0].(*ast.LetStmt)
	bin, ok := let.Value.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "%", bin.Op)
}

func TestParseChordLiteralVsListLiteral(t *testing.T) {
	prog, errs := Parse(`let c = [C4,E4,G4]
let l = [1, 2, 3]`)
	require.Empty(t, errs)
	_, ok := prog.Statements[0].(*ast.LetStmt).Value.(*ast.ChordLit)
	assert.True(t, ok)
	_, ok = prog.Statements[1].(*ast.LetStmt).Value.(*ast.ListLit)
	assert.True(t, ok)
}

func TestParseRepeatLoopBreakContinue(t *testing.T) {
	prog, errs := Parse("repeat 4 {\n  play \"C4\"\n}\nloop {\n  break\n  continue\n}")
	require.Empty(t, errs)
	rep, ok := prog.Statements[0].(*ast.RepeatStmt)
	require.True(t, ok)
	require.Len(t, rep.Body, 1)
	lp, ok := prog.Statements[1].(*ast.LoopStmt)
	require.True(t, ok)
	require.Len(t, lp.Body, 2)
}

func TestParseUseStatement(t *testing.T) {
	prog, errs := Parse(`use "lib/bass.cadence"`)
	require.Empty(t, errs)
	use, ok := prog.Statements[0].(*ast.UseStmt)
	require.True(t, ok)
	assert.Equal(t, "lib/bass.cadence", use.Path)
}

func TestParseErrorRecoveryContinuesStatements(t *testing.T) {
	prog, errs := Parse("let = \nlet y = 1")
	require.NotEmpty(t, errs)
	// Recovery must still find the second, well-formed statement.
	var names []string
	for _, s := range prog.Statements {
		if let, ok := s.(*ast.LetStmt); ok {
			names = append(names, let.Name)
		}
	}
	assert.Contains(t, names, "y")
}
