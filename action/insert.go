package action

import (
	"fmt"

	"go-measure/debug"
	"go-measure/sequencer"
)

// InsertMeasures opens count empty measures at the start of measure At.
// Everything from that measure on moves right.
type InsertMeasures struct {
	seq   *sequencer.Sequence
	At    int
	Count int

	ticks int // gap size, 0 means Count measures of the signature at At
}

// NewInsertMeasures panics on a nil sequence or a position outside [0, measureCount].
func NewInsertMeasures(seq *sequencer.Sequence, at, count int) *InsertMeasures {
	if seq == nil {
		panic("action: insert measures on nil sequence")
	}
	if at < 0 || at > seq.Timeline().MeasureCount() || count < 1 {
		panic(fmt.Sprintf("action: cannot insert %d measures at %d (measure count %d)",
			count, at, seq.Timeline().MeasureCount()))
	}
	return &InsertMeasures{seq: seq, At: at, Count: count}
}

// insertGap is the inverse of a removal: the gap is exactly the removed ticks.
func insertGap(seq *sequencer.Sequence, at, count, ticks int) *InsertMeasures {
	a := NewInsertMeasures(seq, at, count)
	a.ticks = ticks
	return a
}

func (a *InsertMeasures) Name() string {
	if a.Count == 1 {
		return fmt.Sprintf("insert measure at %d", a.At+1)
	}
	return fmt.Sprintf("insert %d measures at %d", a.Count, a.At+1)
}

func (a *InsertMeasures) Perform() {
	tl := a.seq.Timeline()

	amount := a.ticks
	if amount == 0 {
		amount = a.Count * tl.MeasureLengthInTicks(a.At)
	}
	afterTick := tl.TickAtMeasureStart(a.At) - 1

	tx := tl.Begin()
	defer tx.Commit()

	tl.SetMeasureCount(tl.MeasureCount() + a.Count)
	shiftEvents(a.seq, afterTick, amount)

	if !tl.IsUniformLength() {
		changes := tl.TimeSignatures()
		for i := 1; i < len(changes); i++ {
			if changes[i].Measure >= a.At+1 {
				changes[i].Measure += a.Count
			}
		}
		tl.ReplaceTimeSignatures(changes)
	}

	debug.Log("action", "inserted %d measures at %d: %d ticks after tick %d", a.Count, a.At, amount, afterTick)
}

// Undo removes the inserted measures again.
func (a *InsertMeasures) Undo() {
	NewRemoveMeasures(a.seq, a.At, a.At+a.Count).Perform()
}

// shiftEvents moves every event starting after afterTick by delta ticks.
func shiftEvents(seq *sequencer.Sequence, afterTick, delta int) {
	for _, t := range seq.Tracks() {
		for _, n := range t.Notes() {
			if n.Tick > afterTick {
				n.Tick += delta
				n.EndTick += delta
			}
		}
		t.ReorderNoteVector()
		t.ReorderNoteOffVector()

		for _, e := range t.AllControllerEvents() {
			if e.Tick > afterTick {
				e.Tick += delta
			}
		}
		t.ReorderControllerEvents()
	}

	for _, e := range seq.TempoEvents() {
		if e.Tick > afterTick {
			e.Tick += delta
		}
	}
	seq.ReorderTempoEvents()

	for _, e := range seq.TextEvents() {
		if e.Tick > afterTick {
			e.Tick += delta
		}
	}
	seq.ReorderTextEvents()
}
