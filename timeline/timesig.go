package timeline

import (
	"slices"
	"sort"

	"github.com/pkg/errors"

	"go-measure/debug"
)

// Inherit asks SetTimeSignatureAt to copy numerator and denominator from a
// neighbouring change instead of using the caller's values.
const Inherit = -1

var (
	ErrInvalidTimeSignature   = errors.New("invalid time signature")
	ErrProtectedTimeSignature = errors.New("the time signature at measure 0 cannot be removed")
	ErrNoSuchTimeSignature    = errors.New("no such time signature change")
	ErrTimeSignatureExists    = errors.New("a time signature change already exists at that measure")
)

// TimeSigChange declares that bars have Num beats of 1/Denom notes
// starting at Measure.
type TimeSigChange struct {
	Measure int
	Num     int
	Denom   int

	// Cached by the last geometry recompute.
	Tick  int
	Pixel int
}

// BeatsPerMeasure in quarter notes.
func (c TimeSigChange) BeatsPerMeasure() float64 {
	return float64(c.Num) * 4.0 / float64(c.Denom)
}

// ValidTimeSignature reports whether num/denom can be stored: a numerator in
// 1..64 and a power of two denominator in 1..64.
func ValidTimeSignature(num, denom int) bool {
	if num < 1 || num > 64 {
		return false
	}
	return denom >= 1 && denom <= 64 && denom&(denom-1) == 0
}

// ActiveTimeSignature returns the change in effect at measure: the one with
// the largest start measure not after it.
func (t *Timeline) ActiveTimeSignature(measure int) TimeSigChange {
	return t.changes[t.activeIndex(measure)]
}

// activeIndex finds the first change starting at or after measure+1 and steps
// back one.
func (t *Timeline) activeIndex(measure int) int {
	if measure < 0 {
		measure = 0
	}
	i := sort.Search(len(t.changes), func(i int) bool {
		return t.changes[i].Measure >= measure+1
	})
	return i - 1
}

func (t *Timeline) ActiveNumerator(measure int) int {
	return t.ActiveTimeSignature(measure).Num
}

func (t *Timeline) ActiveDenominator(measure int) int {
	return t.ActiveTimeSignature(measure).Denom
}

// TimeSignatureCount returns the number of time signature changes (always >= 1).
func (t *Timeline) TimeSignatureCount() int {
	return len(t.changes)
}

// TimeSignature returns a copy of the change at index.
func (t *Timeline) TimeSignature(index int) TimeSigChange {
	if index < 0 || index >= len(t.changes) {
		panic(errors.Wrapf(ErrNoSuchTimeSignature, "index %d of %d", index, len(t.changes)))
	}
	return t.changes[index]
}

// TimeSignatures returns a copy of the whole change list.
func (t *Timeline) TimeSignatures() []TimeSigChange {
	return slices.Clone(t.changes)
}

// SelectedTimeSignature returns the index of the selected change.
func (t *Timeline) SelectedTimeSignature() int {
	return t.selectedSig
}

// SelectTimeSignature makes index the selected change.
func (t *Timeline) SelectTimeSignature(index int) error {
	if index < 0 || index >= len(t.changes) {
		return ErrNoSuchTimeSignature
	}
	t.selectedSig = index
	return nil
}

// SetTimeSignatureAt adds a change at measure. If one already exists there it
// is selected, or overwritten while importing. num and denom may both be
// Inherit, in which case the new change copies the following change (or the
// last one when appended at the end).
func (t *Timeline) SetTimeSignatureAt(measure, num, denom int) error {
	inherit := num == Inherit || denom == Inherit
	if !inherit && !ValidTimeSignature(num, denom) {
		debug.Log("timeline", "rejected time signature %d/%d at measure %d", num, denom, measure)
		return ErrInvalidTimeSignature
	}
	if measure < 0 {
		panic(errors.Errorf("timeline: time signature at negative measure %d", measure))
	}

	i := sort.Search(len(t.changes), func(i int) bool {
		return t.changes[i].Measure >= measure
	})

	if i < len(t.changes) && t.changes[i].Measure == measure {
		if !t.importing {
			t.selectedSig = i
			return nil
		}
		if !inherit {
			t.changes[i].Num = num
			t.changes[i].Denom = denom
		}
		t.selectedSig = i
		t.updateMeasureInfo()
		return nil
	}

	c := TimeSigChange{Measure: measure, Num: num, Denom: denom}
	if inherit {
		src := min(i, len(t.changes)-1)
		c.Num, c.Denom = t.changes[src].Num, t.changes[src].Denom
	}
	t.changes = slices.Insert(t.changes, i, c)
	t.selectedSig = i
	debug.Log("timeline", "time signature %d/%d added at measure %d", c.Num, c.Denom, measure)

	t.updateMeasureInfo()
	return nil
}

// EraseTimeSignature removes the change at index. The change at measure 0 is
// protected.
func (t *Timeline) EraseTimeSignature(index int) error {
	if index == 0 {
		return ErrProtectedTimeSignature
	}
	if index < 0 || index >= len(t.changes) {
		return ErrNoSuchTimeSignature
	}

	t.changes = slices.Delete(t.changes, index, index+1)
	switch {
	case t.selectedSig == index:
		t.selectedSig = 0
	case t.selectedSig > index:
		t.selectedSig--
	}

	t.updateMeasureInfo()
	return nil
}

// SetSelectedTimeSignature changes numerator and denominator of the selected
// change.
func (t *Timeline) SetSelectedTimeSignature(num, denom int) error {
	if !ValidTimeSignature(num, denom) {
		return ErrInvalidTimeSignature
	}
	t.changes[t.selectedSig].Num = num
	t.changes[t.selectedSig].Denom = denom
	t.updateMeasureInfo()
	return nil
}

// MoveTimeSignature relocates the change at index to another measure.
func (t *Timeline) MoveTimeSignature(index, measure int) error {
	if index < 0 || index >= len(t.changes) {
		return ErrNoSuchTimeSignature
	}
	if index == 0 {
		if measure == 0 {
			return nil
		}
		return ErrProtectedTimeSignature
	}
	if measure <= 0 {
		return ErrTimeSignatureExists
	}
	for i, c := range t.changes {
		if i != index && c.Measure == measure {
			return ErrTimeSignatureExists
		}
	}

	selected := t.changes[t.selectedSig].Measure
	if t.selectedSig == index {
		selected = measure
	}
	moved := t.changes[index]
	moved.Measure = measure
	t.changes = slices.Delete(t.changes, index, index+1)
	at := sort.Search(len(t.changes), func(i int) bool {
		return t.changes[i].Measure > measure
	})
	t.changes = slices.Insert(t.changes, at, moved)
	for i, c := range t.changes {
		if c.Measure == selected {
			t.selectedSig = i
		}
	}

	t.updateMeasureInfo()
	return nil
}

// ReplaceTimeSignatures swaps in a whole change list, typically a snapshot
// taken with TimeSignatures. The list must be non-empty, start at measure 0
// and be strictly increasing.
func (t *Timeline) ReplaceTimeSignatures(list []TimeSigChange) {
	if len(list) == 0 || list[0].Measure != 0 {
		panic("timeline: replacement time signature list must start at measure 0")
	}
	for i := 1; i < len(list); i++ {
		if list[i].Measure <= list[i-1].Measure {
			panic(errors.Errorf("timeline: replacement time signature list unsorted at index %d", i))
		}
	}

	t.changes = slices.Clone(list)
	if t.selectedSig >= len(t.changes) {
		t.selectedSig = 0
	}
	t.updateMeasureInfo()
}

func defaultChanges() []TimeSigChange {
	return []TimeSigChange{{Measure: 0, Num: 4, Denom: 4}}
}
