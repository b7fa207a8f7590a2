// Package jsonaction defines the wire shape of Actions and PlayEvents the
// interpreter emits to the host on every tick (spec §6 "External
// Interfaces"), marshaled with jsoniter the way the teacher's storage.go
// serializes project state.
package jsonaction

import (
	jsoniter "github.com/json-iterator/go"

	"github.com/schollz/cadence/internal/cerr"
	"github.com/schollz/cadence/internal/notemodel"
	"github.com/schollz/cadence/internal/rational"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Type discriminates an Action's shape, mirroring the transport
// operations a program's statements can produce.
type Type string

const (
	TypePlayEvent  Type = "play_event"
	TypeSetTempo   Type = "set_tempo"
	TypeSetVolume  Type = "set_volume"
	TypeSetWaveform Type = "set_waveform"
	TypeStop       Type = "stop"
	TypeDiagnostic Type = "diagnostic"
)

// NoteWire is the wire shape of a sounding note.
type NoteWire struct {
	Midi      int     `json:"midi"`
	Name      string  `json:"name"`
	Frequency float64 `json:"frequency"`
	Velocity  int     `json:"velocity"`
}

func noteToWire(n notemodel.Note) NoteWire {
	vel := 100
	if n.Velocity != nil {
		vel = *n.Velocity
	}
	return NoteWire{Midi: n.Midi(), Name: n.Name(), Frequency: n.Frequency(), Velocity: vel}
}

// PlayEventWire is one onset delivered to the host for sound production.
type PlayEventWire struct {
	Track    int        `json:"track"`
	Start    rational.T `json:"start"`
	Duration rational.T `json:"duration"`
	Notes    []NoteWire `json:"notes,omitempty"`
	Drums    []string   `json:"drums,omitempty"`
	IsRest   bool       `json:"is_rest"`
	Waveform string     `json:"waveform,omitempty"`
	Pan      *float64   `json:"pan,omitempty"`
}

// Action is the envelope every interpreter effect is wrapped in before
// being serialized to the host.
type Action struct {
	Type      Type            `json:"type"`
	PlayEvent *PlayEventWire  `json:"play_event,omitempty"`
	Tempo     float64         `json:"tempo,omitempty"`
	Track     int             `json:"track,omitempty"`
	Volume    float64         `json:"volume,omitempty"`
	Waveform  string          `json:"waveform,omitempty"`
	Diagnostic *cerr.Diagnostic `json:"diagnostic,omitempty"`
}

func PlayEvent(ev PlayEventWire) Action {
	return Action{Type: TypePlayEvent, PlayEvent: &ev}
}

func SetTempo(bpm float64) Action {
	return Action{Type: TypeSetTempo, Tempo: bpm}
}

func SetVolume(track int, volume float64) Action {
	return Action{Type: TypeSetVolume, Track: track, Volume: volume}
}

func SetWaveform(track int, waveform string) Action {
	return Action{Type: TypeSetWaveform, Track: track, Waveform: waveform}
}

func Stop(track int) Action {
	return Action{Type: TypeStop, Track: track}
}

func DiagnosticAction(d cerr.Diagnostic) Action {
	return Action{Type: TypeDiagnostic, Diagnostic: &d}
}

// Marshal renders a to its wire JSON form.
func Marshal(a Action) ([]byte, error) {
	return json.Marshal(a)
}

// MarshalBatch renders a tick's worth of Actions as a JSON array.
func MarshalBatch(actions []Action) ([]byte, error) {
	return json.Marshal(actions)
}
