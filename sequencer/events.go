package sequencer

import "cmp"

// Note is a pitched event between Tick (inclusive) and EndTick.
type Note struct {
	Pitch    uint8
	Velocity uint8
	Tick     int
	EndTick  int
}

// ControllerEvent is a controller value change on a track.
type ControllerEvent struct {
	Controller int // MIDI CC number, or one of the pseudo controllers below
	Tick       int
	Value      int
}

// Pseudo controllers beyond the 0-127 MIDI CC range
const (
	ControllerPitchBend = 200
)

// TempoEvent changes the tempo at Tick.
type TempoEvent struct {
	Tick int
	BPM  float64
}

// TextKind identifies what a text event is used for
type TextKind string

const (
	TextLyric  TextKind = "lyric"
	TextMarker TextKind = "marker"
	TextPlain  TextKind = "text"
)

// TextEvent is a lyric, marker or free text attached to a tick.
type TextEvent struct {
	Tick int
	Kind TextKind
	Text string
}

func compareNotes(a, b *Note) int {
	return cmp.Or(
		cmp.Compare(a.Tick, b.Tick),
		cmp.Compare(a.Pitch, b.Pitch),
		cmp.Compare(a.EndTick, b.EndTick),
		cmp.Compare(a.Velocity, b.Velocity),
	)
}

func compareNoteOffs(a, b *Note) int {
	return cmp.Or(
		cmp.Compare(a.EndTick, b.EndTick),
		cmp.Compare(a.Pitch, b.Pitch),
		cmp.Compare(a.Tick, b.Tick),
	)
}

func compareControls(a, b *ControllerEvent) int {
	return cmp.Or(
		cmp.Compare(a.Tick, b.Tick),
		cmp.Compare(a.Controller, b.Controller),
		cmp.Compare(a.Value, b.Value),
	)
}

func compareTempo(a, b *TempoEvent) int {
	return cmp.Or(
		cmp.Compare(a.Tick, b.Tick),
		cmp.Compare(a.BPM, b.BPM),
	)
}

func compareText(a, b *TextEvent) int {
	return cmp.Or(
		cmp.Compare(a.Tick, b.Tick),
		cmp.Compare(a.Kind, b.Kind),
		cmp.Compare(a.Text, b.Text),
	)
}
