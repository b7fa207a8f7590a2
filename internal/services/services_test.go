package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenizeClassifiesEveryKind(t *testing.T) {
	spans := Tokenize(`let bass = "C4 D4" |> fast 2`)
	require.NotEmpty(t, spans)

	classes := make(map[string]bool)
	for _, s := range spans {
		classes[s.Class] = true
	}
	assert.True(t, classes["keyword"])
	assert.True(t, classes["ident"])
	assert.True(t, classes["string"])
	assert.True(t, classes["operator"])
}

func TestParseAndCheckOkOnValidProgram(t *testing.T) {
	res := ParseAndCheck(`let bass = "C4 D4"
play bass loop`)
	assert.True(t, res.Ok)
	assert.Empty(t, res.Errors)
}

func TestParseAndCheckReportsParseError(t *testing.T) {
	res := ParseAndCheck(`let = `)
	assert.False(t, res.Ok)
	assert.NotEmpty(t, res.Errors)
}

func TestParseAndCheckReportsNameError(t *testing.T) {
	res := ParseAndCheck(`play undefinedVar`)
	assert.False(t, res.Ok)
	assert.NotEmpty(t, res.Errors)
}

func TestGetSymbolsCollectsFunctionsAndVariables(t *testing.T) {
	table := GetSymbols(`let bass = "C4 D4"
fn double(p) {
  return p.fast(2)
}`)
	require.Len(t, table.Variables, 1)
	require.Len(t, table.Functions, 1)
	assert.Equal(t, "bass", table.Variables[0].Name)
	assert.Equal(t, "double", table.Functions[0].Name)
	assert.Equal(t, []string{"p"}, table.Functions[0].Params)
}

func TestGetSymbolAtPositionFindsEnclosingBinding(t *testing.T) {
	src := `let bass = "C4 D4"`
	sym, ok := GetSymbolAtPosition(src, 5)
	require.True(t, ok)
	assert.Equal(t, "bass", sym.Name)
}

func TestGetDefinitionByName(t *testing.T) {
	src := `let bass = "C4 D4"
play bass loop`
	sp, ok := GetDefinitionByName(src, "bass")
	require.True(t, ok)
	assert.Equal(t, 0, sp.Start)
}

func TestGetEventsAtPositionEvaluatesPattern(t *testing.T) {
	src := `let bass = "C4 D4"
play bass loop`
	pos := len(`let bass = "C4 D`) // inside the string literal on line 1
	result := GetEventsAtPosition(src, pos)
	assert.Empty(t, result.Error)
	// "C4 D4" is a 2-child sequence subdividing the default 4-beat cycle.
	assert.Equal(t, 4.0, result.BeatsPerCycle.Float64())
	require.Len(t, result.Events, 2)
}

func TestGetContextAtCursorReportsLetStatement(t *testing.T) {
	src := `let bass = "C4 D4"`
	ctx := GetContextAtCursor(src, 2)
	assert.Equal(t, StatementLet, ctx.StatementType)
	assert.Equal(t, "bass", ctx.VariableName)
	assert.Equal(t, 4.0, ctx.BeatsPerCycle.Float64())
}

func TestGetContextAtCursorReportsTempoStatement(t *testing.T) {
	src := `tempo 140`
	ctx := GetContextAtCursor(src, 1)
	assert.Equal(t, StatementTempo, ctx.StatementType)
}
