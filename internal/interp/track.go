// Package interp implements the reactive per-beat scheduler (spec §4.6):
// Track holds one track's current pattern plus any pattern queued to
// take over at the next musically-meaningful boundary, and Interpreter
// drives every track's state machine from load/tick/update calls.
// Grounded on the teacher's per-track playback state in internal/model
// (each of the 8 tracks independently holding a current chain/phrase
// position, advanced every tick callback), generalized from a fixed
// 8-track/16-row grid to per-track arbitrary-length rational-time
// patterns with queued pattern swaps instead of chain-row advancement.
package interp

import (
	"github.com/schollz/cadence/internal/ast"
	"github.com/schollz/cadence/internal/event"
	"github.com/schollz/cadence/internal/pattern"
	"github.com/schollz/cadence/internal/rational"
)

// QueueState names where a track sits in its queued-swap lifecycle.
type QueueState int

const (
	// Idle: nothing has been played on the track yet, or it was stopped;
	// Current is nil and nothing is queued.
	Idle QueueState = iota
	// Active: a play is running with no swap pending.
	Active
	// ActiveWithPending: a queued play is waiting for its boundary
	// predicate (Beat/Bar/Cycle/Beats(N)) to fire against the track's
	// running beat position.
	ActiveWithPending
)

// Track is one independently-scheduled playback lane.
type Track struct {
	Number int

	Current    pattern.Node
	Loop       bool
	CycleIndex uint64 // which cycle of Current plays next
	Volume     float64
	State      QueueState

	Pending       pattern.Node
	PendingLoop   bool
	PendingMode   ast.QueueMode
	PendingN      int        // Mode==QueueBeatsN: fires this many beats after the queue call
	queuedAtBeat  rational.T // absolute track beat position when the queue was issued

	// Per-cycle scheduling cursor: cycleEvents is the current cycle's
	// events (cached once per cycle, sorted by Start), elapsed tracks
	// how far into the cycle the track has ticked, and nextIdx is the
	// next cycleEvents entry still due to fire.
	cycleEvents []event.PlaybackEvent
	elapsed     rational.T
	nextIdx     int

	absBeat rational.T // total beats elapsed since this track started, for QueueBeatsN
}

func newTrack(n int) *Track {
	return &Track{Number: n, Volume: 1.0, State: Idle}
}

// boundaryReached reports whether t's pending swap's boundary predicate
// is satisfied given the track has just crossed `elapsed` beats within
// its current cycle (cycleLen long), having accumulated absBeat total.
func (t *Track) boundaryReached(cycleLen rational.T) bool {
	switch t.PendingMode {
	case ast.QueueBeat:
		return rational.IsZero(fracPart(t.elapsed))
	case ast.QueueBar:
		// Bar is an absolute-beat predicate (spec §4.6: beat mod 4 == 0),
		// independent of the active pattern's own cycle length — unlike
		// Cycle below, it fires at the next multiple of 4 beats even when
		// the running pattern's cycle isn't 4 beats long.
		m, err := rational.Mod(t.absBeat, rational.FromInt(4))
		if err != nil {
			return false
		}
		return rational.IsZero(m)
	case ast.QueueCycle:
		return rational.IsZero(t.elapsed) || rational.LessOrEqual(cycleLen, t.elapsed)
	case ast.QueueBeatsN:
		elapsedSinceQueue := rational.Sub(t.absBeat, t.queuedAtBeat)
		return rational.LessOrEqual(rational.FromInt(int64(t.PendingN)), elapsedSinceQueue)
	default:
		return true
	}
}

func fracPart(b rational.T) rational.T {
	whole := rational.FloorDiv(b, rational.One)
	return rational.Sub(b, rational.FromInt(whole))
}

// applyPending swaps in the queued pattern. CycleIndex is reset to 0
// since the new pattern starts its own cycle numbering; `elapsed` also
// resets so the new pattern starts from its own beat zero (spec's
// queued swap takes effect at its boundary, not mid-pattern).
func (t *Track) applyPending() {
	t.Current = t.Pending
	t.Loop = t.PendingLoop
	t.Pending = nil
	t.State = Active
	t.CycleIndex = 0
	t.elapsed = rational.Zero
	t.cycleEvents = nil
	t.nextIdx = 0
}
