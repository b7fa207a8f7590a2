// Package env implements Environment, the parent-chained variable scope
// the evaluator reads and writes through (spec §4.4). Grounded on the
// teacher's GlobalMidiState pattern (internal/midiconnector): a single
// struct guarded by one sync.RWMutex, read-locked for lookups and
// write-locked for mutation, generalized from one flat global map to a
// chain of scopes so function calls and blocks get their own frame.
package env

import (
	"sync"

	"github.com/schollz/cadence/internal/cerr"
	"github.com/schollz/cadence/internal/value"
)

// Reserved names for the current cycle index and track number. Only the
// names are declared here: nothing binds them automatically, so reading
// one is a NameError unless a program defines it, and Define does not
// reject them (`let _cycle = ...` is accepted).
const (
	ReservedCycle = "_cycle"
	ReservedTrack = "_track"
)

// Environment is one lexical scope: a map of bindings plus an optional
// parent for name lookup fallthrough.
type Environment struct {
	mu     sync.RWMutex
	vars   map[string]value.Value
	parent *Environment
}

// New creates a root environment with no parent.
func New() *Environment {
	return &Environment{vars: make(map[string]value.Value)}
}

// Child creates a new scope whose lookups fall through to e.
func (e *Environment) Child() *Environment {
	return &Environment{vars: make(map[string]value.Value), parent: e}
}

// Define binds name in this scope (used by `let` and function parameter
// binding), shadowing any outer binding of the same name.
func (e *Environment) Define(name string, v value.Value) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.vars[name] = v
}

// Get looks up name in this scope, then each parent in turn.
func (e *Environment) Get(name string) (value.Value, bool) {
	e.mu.RLock()
	v, ok := e.vars[name]
	parent := e.parent
	e.mu.RUnlock()
	if ok {
		return v, true
	}
	if parent != nil {
		return parent.Get(name)
	}
	return value.Value{}, false
}

// Assign rebinds name in the nearest scope (this one or an ancestor)
// that already defines it, returning a NameError if none does — this is
// the semantic difference between `let x = 1` (always Define, possibly
// shadowing) and `x = 2` (Assign, must target an existing binding).
func (e *Environment) Assign(name string, v value.Value) error {
	e.mu.Lock()
	if _, ok := e.vars[name]; ok {
		e.vars[name] = v
		e.mu.Unlock()
		return nil
	}
	parent := e.parent
	e.mu.Unlock()
	if parent != nil {
		return parent.Assign(name, v)
	}
	return cerr.New(cerr.KindName, "assignment to undeclared name %q", name)
}

// Snapshot returns a flat copy of every binding visible from e (this
// scope's own bindings take precedence over ancestors'): a point-in-time
// view that a caller can read without holding a lock across its own work.
func (e *Environment) Snapshot() map[string]value.Value {
	out := make(map[string]value.Value)
	var chain []*Environment
	for s := e; s != nil; s = s.parent {
		chain = append(chain, s)
	}
	for i := len(chain) - 1; i >= 0; i-- {
		s := chain[i]
		s.mu.RLock()
		for k, v := range s.vars {
			out[k] = v
		}
		s.mu.RUnlock()
	}
	return out
}

// Names returns the set of names bound directly in this scope (not
// ancestors), used by the evaluator's `use` statement to copy a module's
// top-level bindings.
func (e *Environment) Names() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]string, 0, len(e.vars))
	for k := range e.vars {
		out = append(out, k)
	}
	return out
}
