package interp

import (
	"testing"

	"github.com/schollz/cadence/internal/jsonaction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tickUntilAny runs Tick exactly maxTicks times and returns every action
// collected along the way.
func tickUntilAny(ip *Interpreter, maxTicks int) []jsonaction.Action {
	var all []jsonaction.Action
	for i := 0; i < maxTicks; i++ {
		all = append(all, ip.Tick()...)
	}
	return all
}

func TestLoadImmediatePlayFiresBothEvents(t *testing.T) {
	ip := New(nil)
	diags := ip.Load(`play "C4 D4" loop`)
	require.Empty(t, diags)

	// "C4 D4" is a 2-child sequence subdividing the default 4-beat cycle,
	// so D4's onset sits at beat 2; at 48 ticks/beat that's 96 ticks to
	// cross both onsets.
	actions := tickUntilAny(ip, 130)

	var playEvents []jsonaction.Action
	for _, a := range actions {
		if a.Type == jsonaction.TypePlayEvent {
			playEvents = append(playEvents, a)
		}
	}
	require.Len(t, playEvents, 2)
	assert.Equal(t, 60, playEvents[0].PlayEvent.Notes[0].Midi)
	assert.Equal(t, 62, playEvents[1].PlayEvent.Notes[0].Midi)
}

func TestLoadNonLoopingPatternStops(t *testing.T) {
	ip := New(nil)
	require.Empty(t, ip.Load(`play "C4"`))

	// one full beat cycle's worth of ticks should retire the track since
	// it isn't looped.
	for i := 0; i < 48; i++ {
		ip.Tick()
	}
	tr := ip.tracks[1]
	require.NotNil(t, tr)
	assert.Nil(t, tr.Current)
}

func TestStopClearsTrack(t *testing.T) {
	ip := New(nil)
	require.Empty(t, ip.Load(`play "C4 D4" loop`))
	require.Empty(t, ip.Update(`stop`))
	tr := ip.tracks[1]
	require.NotNil(t, tr)
	assert.Equal(t, Idle, tr.State)
	assert.Nil(t, tr.Current)
}

func TestQueueBeatSwapsAtNextBeatBoundary(t *testing.T) {
	ip := New(nil)
	require.Empty(t, ip.Load(`play "C4" loop`))

	require.Empty(t, ip.Update(`play "D4" loop queue`))
	tr := ip.tracks[1]
	require.Equal(t, ActiveWithPending, tr.State)

	// advance to the next beat boundary (48 ticks from wherever elapsed
	// currently sits within its 1-beat cycle).
	for i := 0; i < 48 && tr.State == ActiveWithPending; i++ {
		ip.Tick()
	}
	assert.Equal(t, Active, tr.State)
	assert.NotNil(t, tr.Current)
}

func TestQueueBeatsNWaitsExactCount(t *testing.T) {
	ip := New(nil)
	require.Empty(t, ip.Load(`play "C4" loop`))
	require.Empty(t, ip.Update(`play "D4" loop queue beats 4`))
	tr := ip.tracks[1]
	require.Equal(t, ActiveWithPending, tr.State)

	for i := 0; i < 4*48-1; i++ {
		ip.Tick()
	}
	assert.Equal(t, ActiveWithPending, tr.State, "swap must not fire before the 4th beat elapses")

	ip.Tick()
	assert.Equal(t, Active, tr.State)
}

func TestQueueBarAlignsToNextMultipleOfFourBeats(t *testing.T) {
	ip := New(nil)
	require.Empty(t, ip.Load(`play "C4" loop`))

	require.Empty(t, ip.Update(`play "D4" loop queue bar`))
	tr := ip.tracks[1]
	require.Equal(t, ActiveWithPending, tr.State)

	// "C4" is a 1-beat cycle, so its own cycle boundary is checked every
	// beat; bar is an absolute-beat predicate (beat mod 4 == 0) independent
	// of that cycle length, so the swap must wait a full 4 beats, not 1.
	for i := 0; i < 4*48-1; i++ {
		ip.Tick()
	}
	assert.Equal(t, ActiveWithPending, tr.State, "swap must not fire before the next multiple of 4 beats")

	ip.Tick()
	assert.Equal(t, Active, tr.State)
	assert.NotNil(t, tr.Current)
}

func TestResolveModulePendingThenRetries(t *testing.T) {
	ip := New(nil)
	diags := ip.Load(`use "lib/bass"
play bassline loop`)
	require.NotEmpty(t, diags)
	assert.Equal(t, 1, len(ip.pending))

	diags = ip.ResolveModule("lib/bass", `let bassline = "C2 C2 G2 C2"`)
	require.Empty(t, diags)
	assert.Empty(t, ip.pending)

	tr := ip.tracks[1]
	require.NotNil(t, tr)
	require.NotNil(t, tr.Current)
}

func TestUpdatePreservesUntouchedTrack(t *testing.T) {
	ip := New(nil)
	require.Empty(t, ip.Load(`on 1 play "C4" loop
on 2 play "E4" loop`))
	for i := 0; i < 10; i++ {
		ip.Tick()
	}
	track2Before := ip.tracks[2].Current

	// the new source doesn't mention track 2 at all, so it must keep
	// playing exactly as it was; track 1 is touched and goes queued
	// rather than being cut off immediately.
	require.Empty(t, ip.Update(`on 1 play "D4" loop`))

	assert.Equal(t, ActiveWithPending, ip.tracks[1].State)
	assert.Equal(t, Active, ip.tracks[2].State)
	assert.Equal(t, track2Before, ip.tracks[2].Current)
}

func TestSetTempoAndVolumeValidation(t *testing.T) {
	ip := New(nil)
	require.Empty(t, ip.Load(`tempo 140
volume 0.5`))
	assert.Equal(t, 140.0, ip.tempo)

	diags := ip.Update(`tempo -5`)
	require.NotEmpty(t, diags)
}
