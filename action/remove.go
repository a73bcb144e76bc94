package action

import (
	"fmt"

	"github.com/google/uuid"

	"go-measure/debug"
	"go-measure/sequencer"
	"go-measure/timeline"
)

// RemoveMeasures deletes measures [From, To) and everything that starts in
// them. Later events move left.
type RemoveMeasures struct {
	seq  *sequencer.Sequence
	From int
	To   int

	backup *removedRegion
}

// removedRegion is what Undo needs to put a removed range back.
type removedRegion struct {
	shift    int // ticks removed
	tracks   []trackBackup
	tempos   []*sequencer.TempoEvent
	texts    []*sequencer.TextEvent
	timeSigs []timeline.TimeSigChange
}

// trackBackup refers to its track by ID, not by pointer.
type trackBackup struct {
	track    uuid.UUID
	notes    []*sequencer.Note
	controls []*sequencer.ControllerEvent
}

// NewRemoveMeasures panics on a nil sequence or a range outside
// [0, measureCount]. At least one measure must remain.
func NewRemoveMeasures(seq *sequencer.Sequence, from, to int) *RemoveMeasures {
	if seq == nil {
		panic("action: remove measures on nil sequence")
	}
	count := seq.Timeline().MeasureCount()
	if from < 0 || to <= from || to > count || to-from >= count {
		panic(fmt.Sprintf("action: cannot remove measures [%d, %d) of %d", from, to, count))
	}
	return &RemoveMeasures{seq: seq, From: from, To: to}
}

func (a *RemoveMeasures) Name() string {
	if a.To-a.From == 1 {
		return fmt.Sprintf("remove measure %d", a.From+1)
	}
	return fmt.Sprintf("remove measures %d-%d", a.From+1, a.To)
}

func (a *RemoveMeasures) Perform() {
	seq := a.seq
	tl := seq.Timeline()

	fromTick := tl.TickAtMeasureStart(a.From) - 1
	toTick := tl.TickAtMeasureStart(a.To)
	shift := toTick - fromTick - 1

	inRange := func(tick int) bool { return tick > fromTick && tick < toTick }

	b := &removedRegion{shift: shift}

	for _, t := range seq.Tracks() {
		tb := trackBackup{track: t.ID}
		for _, n := range append([]*sequencer.Note(nil), t.Notes()...) {
			switch {
			case inRange(n.Tick):
				tb.notes = append(tb.notes, n)
				t.RemoveNote(n)
			case n.Tick >= toTick:
				n.Tick -= shift
				n.EndTick -= shift
			}
		}
		t.ReorderNoteVector()
		t.ReorderNoteOffVector()

		for _, e := range append([]*sequencer.ControllerEvent(nil), t.AllControllerEvents()...) {
			switch {
			case inRange(e.Tick):
				tb.controls = append(tb.controls, e)
				t.RemoveControllerEvent(e)
			case e.Tick >= toTick:
				e.Tick -= shift
			}
		}
		t.ReorderControllerEvents()

		if len(tb.notes) > 0 || len(tb.controls) > 0 {
			b.tracks = append(b.tracks, tb)
		}
	}

	for _, e := range append([]*sequencer.TempoEvent(nil), seq.TempoEvents()...) {
		switch {
		case inRange(e.Tick):
			b.tempos = append(b.tempos, e)
			seq.ExtractTempoEvent(e)
		case e.Tick >= toTick:
			e.Tick -= shift
		}
	}
	seq.ReorderTempoEvents()

	for _, e := range append([]*sequencer.TextEvent(nil), seq.TextEvents()...) {
		switch {
		case inRange(e.Tick):
			b.texts = append(b.texts, e)
			seq.ExtractTextEvent(e)
		case e.Tick >= toTick:
			e.Tick -= shift
		}
	}
	seq.ReorderTextEvents()

	tx := tl.Begin()
	defer tx.Commit()

	b.timeSigs = tl.TimeSignatures()
	tl.ReplaceTimeSignatures(relocateForRemoval(b.timeSigs, a.From, a.To))
	tl.SetMeasureCount(tl.MeasureCount() - (a.To - a.From))

	a.backup = b
	debug.Log("action", "removed measures [%d, %d): %d ticks, %d tempo, %d text, %d tracks touched",
		a.From, a.To, shift, len(b.tempos), len(b.texts), len(b.tracks))
}

// relocateForRemoval returns the change list after measures [from, to) are
// cut. Of the changes in [from, to] only the last survives and moves to
// from, since it governs what used to be measure to. Changes after to move
// left by the number of removed measures.
func relocateForRemoval(list []timeline.TimeSigChange, from, to int) []timeline.TimeSigChange {
	out := make([]timeline.TimeSigChange, 0, len(list))
	winner := -1
	for i, c := range list {
		switch {
		case c.Measure < from:
			out = append(out, c)
		case c.Measure <= to:
			winner = i
		}
	}
	if winner >= 0 {
		c := list[winner]
		c.Measure = from
		out = append(out, c)
	}
	for _, c := range list {
		if c.Measure > to {
			c.Measure -= to - from
			out = append(out, c)
		}
	}
	return out
}

// Undo reopens the gap, puts the removed events back with their original
// ticks and restores the time signature list.
func (a *RemoveMeasures) Undo() {
	b := a.backup
	if b == nil {
		panic("action: undo of a removal that was not performed")
	}
	seq := a.seq
	tl := seq.Timeline()

	tx := tl.Begin()
	defer tx.Commit()

	insertGap(seq, a.From, a.To-a.From, b.shift).Perform()

	for _, tb := range b.tracks {
		t := seq.TrackByID(tb.track)
		if t == nil {
			debug.Log("action", "track %s is gone, dropping %d notes", tb.track, len(tb.notes))
			continue
		}
		for _, n := range tb.notes {
			t.AddNote(n)
		}
		for _, e := range tb.controls {
			t.AddControllerEvent(e)
		}
	}
	for _, e := range b.tempos {
		seq.AddTempoEvent(e)
	}
	for _, e := range b.texts {
		seq.AddTextEvent(e)
	}

	tl.ReplaceTimeSignatures(b.timeSigs)
	a.backup = nil
	debug.Log("action", "restored measures [%d, %d)", a.From, a.To)
}
