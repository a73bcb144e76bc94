package timeline

import (
	"go-measure/debug"
)

// ImportSession feeds time signatures read from a file, where they are
// located by tick rather than by measure. It keeps the position of the last
// change so that the next tick can be converted to a measure before any
// geometry exists.
type ImportSession struct {
	t  *Timeline
	tx *Tx

	lastTick       int // tick at which the last change starts
	measuresPassed int // measure of the last change
}

// BeginImport resets the list to a single 4/4 change and enters import mode,
// where adding a change on an occupied measure overwrites it. Geometry is
// recomputed once, when the session is closed.
func (t *Timeline) BeginImport() *ImportSession {
	t.changes = defaultChanges()
	t.selectedSig = 0
	t.importing = true
	return &ImportSession{t: t, tx: t.Begin()}
}

// AddTimeSignature adds a change at tick. Ticks must be fed in ascending order.
func (s *ImportSession) AddTimeSignature(tick, num, denom int) error {
	if !ValidTimeSignature(num, denom) {
		debug.Log("import", "skipping time signature %d/%d at tick %d", num, denom, tick)
		return ErrInvalidTimeSignature
	}
	t := s.t

	if tick <= 0 {
		t.changes[0].Num = num
		t.changes[0].Denom = denom
		s.lastTick = 0
		s.measuresPassed = 0
		return nil
	}

	last := &t.changes[len(t.changes)-1]
	measureTicks := float64(t.host.TicksPerBeat()) * last.BeatsPerMeasure()
	elapsed := int(float64(tick-s.lastTick) / measureTicks)
	measure := s.measuresPassed + elapsed

	s.lastTick += int(float64(elapsed) * measureTicks)
	s.measuresPassed = measure

	// two signatures inside the same bar: the later one wins
	if measure == last.Measure {
		last.Num = num
		last.Denom = denom
		return nil
	}

	t.changes = append(t.changes, TimeSigChange{
		Measure: measure,
		Num:     num,
		Denom:   denom,
		Tick:    s.lastTick,
	})
	debug.Log("import", "time signature %d/%d at tick %d -> measure %d", num, denom, tick, measure)
	return nil
}

// Close leaves import mode. Variable-length mode is turned on when the file
// declared more than one signature.
func (s *ImportSession) Close() {
	if s.tx.done {
		return
	}
	s.t.importing = false
	s.t.expanded = len(s.t.changes) > 1
	s.tx.Commit()
}
