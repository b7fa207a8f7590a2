package interp

import (
	"github.com/schollz/cadence/internal/ast"
	"github.com/schollz/cadence/internal/cerr"
	"github.com/schollz/cadence/internal/env"
	"github.com/schollz/cadence/internal/pattern"
	"github.com/schollz/cadence/internal/rational"
)

// sinkAdapter implements evaluator.Sink against an Interpreter, turning
// the statements a program executes into track/tempo/volume state
// changes. queueAll forces every Play to behave as if `queue` had been
// specified (used by Update, so a live-coding edit never yanks a track's
// audio out from under a listener mid-phrase); moduleOnly disables
// transport effects entirely (a `use`d module only contributes
// bindings, never plays/stops tracks itself).
type sinkAdapter struct {
	ip         *Interpreter
	queueAll   bool
	moduleOnly bool
}

func (s *sinkAdapter) Play(track int, p pattern.Node, queue bool, mode ast.QueueMode, beatsN int, loop bool) error {
	if s.moduleOnly {
		return cerr.New(cerr.KindModule, "a module may not issue play statements")
	}
	t, ok := s.ip.tracks[track]
	if !ok {
		t = newTrack(track)
		s.ip.tracks[track] = t
	}

	effectiveQueue := queue || s.queueAll
	if t.Current == nil || !effectiveQueue {
		t.Current = p
		t.Loop = loop
		t.CycleIndex = 0
		t.State = Active
		t.cycleEvents = nil
		t.nextIdx = 0
		t.elapsed = rational.Zero
		t.Pending = nil
		return nil
	}

	t.Pending = p
	t.PendingLoop = loop
	t.PendingMode = mode
	if mode == ast.QueueNone {
		t.PendingMode = ast.QueueBeat
	}
	t.PendingN = beatsN
	t.queuedAtBeat = t.absBeat
	t.State = ActiveWithPending
	return nil
}

func (s *sinkAdapter) Stop(track int) error {
	if s.moduleOnly {
		return cerr.New(cerr.KindModule, "a module may not issue stop statements")
	}
	if track == 0 {
		for _, t := range s.ip.tracks {
			t.Current = nil
			t.Pending = nil
			t.State = Idle
		}
		return nil
	}
	if t, ok := s.ip.tracks[track]; ok {
		t.Current = nil
		t.Pending = nil
		t.State = Idle
	}
	return nil
}

func (s *sinkAdapter) SetTempo(bpm float64) error {
	if s.moduleOnly {
		return cerr.New(cerr.KindModule, "a module may not set tempo")
	}
	if bpm <= 0 {
		return cerr.New(cerr.KindRange, "tempo must be positive, got %g", bpm)
	}
	s.ip.tempo = bpm
	return nil
}

func (s *sinkAdapter) SetVolume(track int, volume float64) error {
	if s.moduleOnly {
		return cerr.New(cerr.KindModule, "a module may not set volume")
	}
	if volume < 0 || volume > 1 {
		return cerr.New(cerr.KindRange, "volume must be 0..1, got %g", volume)
	}
	if track == 0 {
		for _, t := range s.ip.tracks {
			t.Volume = volume
		}
		return nil
	}
	t, ok := s.ip.tracks[track]
	if !ok {
		t = newTrack(track)
		s.ip.tracks[track] = t
	}
	t.Volume = volume
	return nil
}

func (s *sinkAdapter) ResolveModule(path string) (*env.Environment, error) {
	if e, ok := s.ip.moduleCache[path]; ok {
		return e, nil
	}
	return nil, cerr.New(cerr.KindModule, "module %q not yet resolved", path)
}
