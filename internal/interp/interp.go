package interp

import (
	"sort"
	"sync"

	"github.com/schollz/cadence/internal/ast"
	"github.com/schollz/cadence/internal/cerr"
	"github.com/schollz/cadence/internal/env"
	"github.com/schollz/cadence/internal/evaluator"
	"github.com/schollz/cadence/internal/event"
	"github.com/schollz/cadence/internal/jsonaction"
	"github.com/schollz/cadence/internal/notemodel"
	"github.com/schollz/cadence/internal/parser"
	"github.com/schollz/cadence/internal/pattern"
	"github.com/schollz/cadence/internal/rational"
)

// ModuleSource supplies the raw text of a `use "path"` target. The host
// implements it (reading from its own editor buffers/filesystem); the
// Interpreter only parses and evaluates what it's given.
type ModuleSource interface {
	Source(path string) (string, bool)
}

// TicksPerBeat fixes the scheduler's smallest time step. Grounded on
// the teacher's tick-driven model (internal/ticks, internal/model's
// per-tick advance callback), generalized from a fixed hardware PPQN to
// a constant chosen fine enough to resolve any rational beat position
// likely to appear in a pattern (sixteenth-note triplets and beyond).
const TicksPerBeat = 48

// Interpreter is the reactive per-beat scheduler: it owns every track's
// queued-swap state machine and turns elapsed ticks into Actions.
type Interpreter struct {
	mu sync.Mutex

	root    *env.Environment
	tracks  map[int]*Track
	tempo   float64 // beats per minute
	modules ModuleSource

	moduleCache map[string]*env.Environment
	pending     map[string]bool // module paths awaited by the last Load/Update

	lastSource  string
	diagnostics []cerr.Diagnostic

	tickCount uint64
}

// New creates an Interpreter with a default tempo of 120 BPM and no
// tracks; a track comes into being the first time a `play`/`on N play`
// statement, a track-targeted `volume` statement, or ApplyTrackVolume
// names it.
func New(modules ModuleSource) *Interpreter {
	return &Interpreter{
		root:        env.New(),
		tracks:      make(map[int]*Track),
		tempo:       120,
		modules:     modules,
		moduleCache: make(map[string]*env.Environment),
		pending:     make(map[string]bool),
	}
}

// Load replaces the program from scratch: parses source, evaluates it
// against a fresh root environment, and returns any parse/evaluation
// diagnostics (module resolution failures included) without panicking —
// a bad program leaves the interpreter's prior playing state untouched.
func (ip *Interpreter) Load(source string) []cerr.Diagnostic {
	ip.mu.Lock()
	defer ip.mu.Unlock()
	return ip.loadLocked(source, true)
}

// Update re-evaluates source against the existing track/tempo state
// (spec's "phase-preserving live update"): tracks not touched by any
// `play` statement in the new source keep running exactly as they were,
// and tracks that ARE touched have their new pattern queued exactly as
// if a live `play ... queue` statement had just been issued.
func (ip *Interpreter) Update(source string) []cerr.Diagnostic {
	ip.mu.Lock()
	defer ip.mu.Unlock()
	return ip.loadLocked(source, false)
}

func (ip *Interpreter) loadLocked(source string, reset bool) []cerr.Diagnostic {
	ip.lastSource = source
	ip.diagnostics = nil

	prog, errs := parser.Parse(source)
	for _, e := range errs {
		ip.diagnostics = append(ip.diagnostics, cerr.ToDiagnostic(e))
	}
	if len(errs) > 0 {
		return ip.diagnostics
	}

	missing := ip.collectMissingModules(prog)
	if len(missing) > 0 {
		ip.pending = make(map[string]bool, len(missing))
		for _, m := range missing {
			ip.pending[m] = true
			ip.diagnostics = append(ip.diagnostics, cerr.Diagnostic{
				Kind:    cerr.KindModule,
				Message: "awaiting resolve_module for \"" + m + "\"",
			})
		}
		return ip.diagnostics
	}

	prevRoot, prevTracks, prevTempo := ip.root, ip.tracks, ip.tempo
	if reset {
		ip.root = env.New()
		ip.tracks = make(map[int]*Track)
	}

	ev := evaluator.New(&sinkAdapter{ip: ip, queueAll: !reset})
	if err := ev.Run(prog, ip.root); err != nil {
		if reset {
			ip.root, ip.tracks, ip.tempo = prevRoot, prevTracks, prevTempo
		}
		if ce, ok := err.(*cerr.Error); ok {
			ip.diagnostics = append(ip.diagnostics, cerr.ToDiagnostic(ce))
		} else {
			ip.diagnostics = append(ip.diagnostics, cerr.Diagnostic{Kind: cerr.KindType, Message: err.Error()})
		}
	}
	return ip.diagnostics
}

// collectMissingModules walks every UseStmt in prog (recursing into
// track/if/repeat/loop/fn bodies) and reports paths not already cached.
func (ip *Interpreter) collectMissingModules(prog *ast.Program) []string {
	var missing []string
	var walk func(stmts []ast.Statement)
	walk = func(stmts []ast.Statement) {
		for _, s := range stmts {
			switch st := s.(type) {
			case *ast.UseStmt:
				if _, ok := ip.moduleCache[st.Path]; !ok {
					missing = append(missing, st.Path)
				}
			case *ast.TrackStmt:
				walk(st.Body)
			case *ast.IfStmt:
				walk(st.Then)
				walk(st.Else)
			case *ast.RepeatStmt:
				walk(st.Body)
			case *ast.LoopStmt:
				walk(st.Body)
			case *ast.FnDefStmt:
				walk(st.Body)
			}
		}
	}
	walk(prog.Statements)
	return missing
}

// ResolveModule supplies the content for a previously-missing `use`
// target (spec's resolve_module(path, content) operation): it parses
// and evaluates content into its own environment, caches the resulting
// bindings, and — if nothing else is pending — retries the last
// Load/Update so the program that needed it can finally run.
func (ip *Interpreter) ResolveModule(path, content string) []cerr.Diagnostic {
	ip.mu.Lock()
	defer ip.mu.Unlock()

	prog, errs := parser.Parse(content)
	if len(errs) > 0 {
		out := make([]cerr.Diagnostic, len(errs))
		for i, e := range errs {
			out[i] = cerr.ToDiagnostic(e)
		}
		return out
	}
	modEnv := env.New()
	ev := evaluator.New(&sinkAdapter{ip: ip, moduleOnly: true})
	if err := ev.Run(prog, modEnv); err != nil {
		if ce, ok := err.(*cerr.Error); ok {
			return []cerr.Diagnostic{cerr.ToDiagnostic(ce)}
		}
		return []cerr.Diagnostic{{Kind: cerr.KindModule, Message: err.Error()}}
	}
	ip.moduleCache[path] = modEnv
	delete(ip.pending, path)

	if len(ip.pending) == 0 && ip.lastSource != "" {
		return ip.loadLocked(ip.lastSource, false)
	}
	return nil
}

// Source returns the text most recently passed to Load/Update, whether or
// not it evaluated cleanly (ResolveModule also replays it); it is the basis
// for a session snapshot's replay-on-restore.
func (ip *Interpreter) Source() string {
	ip.mu.Lock()
	defer ip.mu.Unlock()
	return ip.lastSource
}

// Tempo returns the current global tempo in BPM.
func (ip *Interpreter) Tempo() float64 {
	ip.mu.Lock()
	defer ip.mu.Unlock()
	return ip.tempo
}

// TrackVolume is one track's persisted mixer state, the unit a session
// snapshot restores without needing to serialize a track's pattern.Node
// (which may close over evaluator functions and isn't itself JSON-able).
type TrackVolume struct {
	Number int     `json:"number"`
	Volume float64 `json:"volume"`
}

// TrackVolumes returns every known track's current volume, in ascending
// track-number order.
func (ip *Interpreter) TrackVolumes() []TrackVolume {
	ip.mu.Lock()
	defer ip.mu.Unlock()
	nums := make([]int, 0, len(ip.tracks))
	for n := range ip.tracks {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	out := make([]TrackVolume, len(nums))
	for i, n := range nums {
		out[i] = TrackVolume{Number: n, Volume: ip.tracks[n].Volume}
	}
	return out
}

// ApplyTrackVolume sets one track's volume directly, bypassing the
// evaluator — used when restoring a session snapshot, where the volume
// is a known fact rather than the result of evaluating a `volume`
// statement.
func (ip *Interpreter) ApplyTrackVolume(track int, volume float64) {
	ip.mu.Lock()
	defer ip.mu.Unlock()
	t, ok := ip.tracks[track]
	if !ok {
		t = newTrack(track)
		ip.tracks[track] = t
	}
	t.Volume = volume
}

// Tick advances the transport by one scheduler tick (1/TicksPerBeat of
// a beat) and returns the Actions produced: one play Action for each new
// non-rest onset of each track's currently playing pattern. A queued swap
// that fires on this tick changes the track's state but emits no Action.
func (ip *Interpreter) Tick() []jsonaction.Action {
	ip.mu.Lock()
	defer ip.mu.Unlock()

	ip.tickCount++
	step := rational.MustNew(1, TicksPerBeat)

	var actions []jsonaction.Action
	nums := make([]int, 0, len(ip.tracks))
	for n := range ip.tracks {
		nums = append(nums, n)
	}
	sort.Ints(nums)

	for _, n := range nums {
		t := ip.tracks[n]
		if t.Current == nil {
			continue
		}
		actions = append(actions, ip.tickTrack(t, step)...)
	}
	return actions
}

// tickTrack advances t by one scheduler step: it fills t.cycleEvents the
// first time a cycle is entered, fires every cached event whose Start
// has now been crossed, then applies a pending queued swap as soon as its
// boundary predicate fires (checked on every tick), and otherwise rolls
// over to the next cycle when elapsed reaches the cycle length.
func (ip *Interpreter) tickTrack(t *Track, step rational.T) []jsonaction.Action {
	cycleLen := t.Current.BeatsPerCycle()
	if rational.IsZero(cycleLen) {
		return nil
	}
	if t.cycleEvents == nil {
		evs, err := t.Current.ForCycle(t.CycleIndex, rational.Zero)
		if err != nil {
			return nil
		}
		sort.Stable(event.ByStart(evs))
		t.cycleEvents = evs
		t.nextIdx = 0
	}

	var actions []jsonaction.Action
	t.elapsed = rational.Add(t.elapsed, step)
	t.absBeat = rational.Add(t.absBeat, step)

	attrs := t.Current.Attributes()
	for t.nextIdx < len(t.cycleEvents) && rational.LessOrEqual(t.cycleEvents[t.nextIdx].Start, t.elapsed) {
		e := t.cycleEvents[t.nextIdx]
		if !e.IsRest {
			actions = append(actions, toPlayAction(t.Number, e, attrs))
		}
		t.nextIdx++
	}

	if t.State == ActiveWithPending && t.boundaryReached(cycleLen) {
		t.applyPending()
		return actions
	}
	if rational.LessOrEqual(cycleLen, t.elapsed) {
		t.elapsed = rational.Sub(t.elapsed, cycleLen)
		t.CycleIndex++
		t.cycleEvents = nil
		t.nextIdx = 0
		if !t.Loop {
			t.Current = nil
		}
	}
	return actions
}

func toPlayAction(track int, e event.PlaybackEvent, attrs pattern.Attrs) jsonaction.Action {
	wire := jsonaction.PlayEventWire{
		Track:    track,
		Start:    e.Start,
		Duration: e.Duration,
		Drums:    e.Drums,
		IsRest:   e.IsRest,
		Pan:      attrs.Pan,
	}
	if attrs.Waveform != nil {
		wire.Waveform = *attrs.Waveform
	}
	wire.Notes = make([]jsonaction.NoteWire, len(e.Notes))
	for i, n := range e.Notes {
		wire.Notes[i] = noteToNoteWire(n)
	}
	return jsonaction.PlayEvent(wire)
}

func noteToNoteWire(n notemodel.Note) jsonaction.NoteWire {
	vel := 100
	if n.Velocity != nil {
		vel = *n.Velocity
	}
	return jsonaction.NoteWire{Midi: n.Midi(), Name: n.Name(), Frequency: n.Frequency(), Velocity: vel}
}
