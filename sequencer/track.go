package sequencer

import (
	"slices"

	"github.com/google/uuid"
)

// Track holds the notes and controller events of one instrument.
// Notes are kept in two orderings: by start tick and by end tick.
type Track struct {
	ID      uuid.UUID
	Name    string
	Channel uint8 // MIDI channel (0-15)

	notes    []*Note
	noteOffs []*Note
	controls []*ControllerEvent
}

// NewTrack creates a new empty track with the given name and MIDI channel.
func NewTrack(name string, channel uint8) *Track {
	return &Track{
		ID:      uuid.New(),
		Name:    name,
		Channel: channel,
	}
}

// Notes returns notes ordered by start tick. The slice is owned by the track.
func (t *Track) Notes() []*Note {
	return t.notes
}

// NoteOffs returns the same notes ordered by end tick.
func (t *Track) NoteOffs() []*Note {
	return t.noteOffs
}

// AddNote inserts n in both orderings.
func (t *Track) AddNote(n *Note) {
	i, _ := slices.BinarySearchFunc(t.notes, n, compareNotes)
	t.notes = slices.Insert(t.notes, i, n)
	j, _ := slices.BinarySearchFunc(t.noteOffs, n, compareNoteOffs)
	t.noteOffs = slices.Insert(t.noteOffs, j, n)
}

// RemoveNote removes n (by identity). It reports whether n was on the track.
func (t *Track) RemoveNote(n *Note) bool {
	i := slices.Index(t.notes, n)
	if i < 0 {
		return false
	}
	t.notes = slices.Delete(t.notes, i, i+1)
	if j := slices.Index(t.noteOffs, n); j >= 0 {
		t.noteOffs = slices.Delete(t.noteOffs, j, j+1)
	}
	return true
}

// ReorderNoteVector restores start tick order after notes were moved in place.
func (t *Track) ReorderNoteVector() {
	slices.SortStableFunc(t.notes, compareNotes)
}

// ReorderNoteOffVector restores end tick order after notes were moved in place.
func (t *Track) ReorderNoteOffVector() {
	slices.SortStableFunc(t.noteOffs, compareNoteOffs)
}

// ControllerEvents returns the events of one controller, in tick order.
func (t *Track) ControllerEvents(controller int) []*ControllerEvent {
	var out []*ControllerEvent
	for _, e := range t.controls {
		if e.Controller == controller {
			out = append(out, e)
		}
	}
	return out
}

// AllControllerEvents returns every controller event in tick order. The slice
// is owned by the track.
func (t *Track) AllControllerEvents() []*ControllerEvent {
	return t.controls
}

// AddControllerEvent inserts e in tick order.
func (t *Track) AddControllerEvent(e *ControllerEvent) {
	i, _ := slices.BinarySearchFunc(t.controls, e, compareControls)
	t.controls = slices.Insert(t.controls, i, e)
}

// RemoveControllerEvent removes e (by identity).
func (t *Track) RemoveControllerEvent(e *ControllerEvent) bool {
	i := slices.Index(t.controls, e)
	if i < 0 {
		return false
	}
	t.controls = slices.Delete(t.controls, i, i+1)
	return true
}

// ReorderControllerEvents restores tick order after events were moved in place.
func (t *Track) ReorderControllerEvents() {
	slices.SortStableFunc(t.controls, compareControls)
}
