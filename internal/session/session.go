// Package session persists and restores an Interpreter's program text and
// mixer state as a gzipped JSON snapshot, grounded on the teacher's
// internal/storage.go (AutoSave's debounce timer, DoSave's gzip.Writer
// over jsoniter-marshaled state, LoadState's matching gzip.Reader). A
// pattern.Node can close over evaluator functions and isn't itself
// JSON-able, so what's persisted is the source text (replayed through
// Interpreter.Load on restore) plus the tempo/volume facts layered on top.
package session

import (
	"compress/gzip"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/schollz/cadence/internal/cerr"
	"github.com/schollz/cadence/internal/interp"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Snapshot is the on-disk shape of a saved session.
type Snapshot struct {
	Source  string                `json:"source"`
	Tempo   float64               `json:"tempo"`
	Volumes []interp.TrackVolume  `json:"volumes,omitempty"`
}

// Capture reads ip's current source/tempo/volumes into a Snapshot.
func Capture(ip *interp.Interpreter) Snapshot {
	return Snapshot{
		Source:  ip.Source(),
		Tempo:   ip.Tempo(),
		Volumes: ip.TrackVolumes(),
	}
}

// Save writes snap to path as gzip-compressed JSON.
func Save(path string, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	gzWriter := gzip.NewWriter(file)
	defer gzWriter.Close()

	_, err = gzWriter.Write(data)
	return err
}

// Load reads and decompresses a Snapshot from path.
func Load(path string) (Snapshot, error) {
	file, err := os.Open(path)
	if err != nil {
		return Snapshot{}, err
	}
	defer file.Close()

	gzReader, err := gzip.NewReader(file)
	if err != nil {
		return Snapshot{}, err
	}
	defer gzReader.Close()

	data, err := io.ReadAll(gzReader)
	if err != nil {
		return Snapshot{}, err
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Restore replays snap's source through ip.Load and layers the saved
// per-track volumes back on top. Tempo comes back only through a
// `tempo N` statement in Source; snap.Tempo is not applied, so a source
// without one leaves ip's tempo as it was.
func Restore(ip *interp.Interpreter, snap Snapshot) []error {
	var errs []error
	for _, d := range ip.Load(snap.Source) {
		errs = append(errs, diagnosticErr(d))
	}
	for _, v := range snap.Volumes {
		ip.ApplyTrackVolume(v.Number, v.Volume)
	}
	return errs
}

func diagnosticErr(d cerr.Diagnostic) error {
	return fmt.Errorf("%s: %s", d.Kind, d.Message)
}

// AutoSaver debounces Capture+Save the way the teacher's AutoSave debounces
// DoSave: every call to Touch resets a timer, and only the last Touch
// within DebounceInterval actually writes to disk.
type AutoSaver struct {
	Path             string
	DebounceInterval time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

// NewAutoSaver builds an AutoSaver with the teacher's 1-second debounce
// window.
func NewAutoSaver(path string) *AutoSaver {
	return &AutoSaver{Path: path, DebounceInterval: time.Second}
}

// Touch schedules a save of ip's current state, cancelling any save still
// pending from an earlier Touch.
func (a *AutoSaver) Touch(ip *interp.Interpreter) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.DebounceInterval, func() {
		snap := Capture(ip)
		if err := Save(a.Path, snap); err != nil {
			log.Printf("session: autosave to %s failed: %v", a.Path, err)
		}
	})
}
