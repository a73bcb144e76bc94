package action

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-measure/sequencer"
	"go-measure/timeline"
)

type snapshot struct {
	measures int
	sigs     [][3]int
	notes    map[string][][2]int
	controls map[string][][3]int
	tempos   []sequencer.TempoEvent
	texts    []sequencer.TextEvent
}

func takeSnapshot(seq *sequencer.Sequence) snapshot {
	tl := seq.Timeline()
	s := snapshot{
		measures: tl.MeasureCount(),
		notes:    map[string][][2]int{},
		controls: map[string][][3]int{},
	}
	for _, c := range tl.TimeSignatures() {
		s.sigs = append(s.sigs, [3]int{c.Measure, c.Num, c.Denom})
	}
	for _, t := range seq.Tracks() {
		for _, n := range t.Notes() {
			s.notes[t.Name] = append(s.notes[t.Name], [2]int{n.Tick, n.EndTick})
		}
		for _, e := range t.AllControllerEvents() {
			s.controls[t.Name] = append(s.controls[t.Name], [3]int{e.Controller, e.Tick, e.Value})
		}
	}
	for _, e := range seq.TempoEvents() {
		s.tempos = append(s.tempos, *e)
	}
	for _, e := range seq.TextEvents() {
		s.texts = append(s.texts, *e)
	}
	return s
}

// newSequence has 8 measures of 4/4 and one note per beat in the first four.
func newSequence(t *testing.T) (*sequencer.Sequence, *sequencer.Track) {
	t.Helper()
	seq := sequencer.New(960, 8)
	tr := seq.AddTrack("lead", 0)
	for i := range 16 {
		tr.AddNote(&sequencer.Note{Pitch: uint8(60 + i), Velocity: 100, Tick: i * 960, EndTick: i*960 + 959})
	}
	return seq, tr
}

func notePitched(tr *sequencer.Track, pitch uint8) *sequencer.Note {
	for _, n := range tr.Notes() {
		if n.Pitch == pitch {
			return n
		}
	}
	return nil
}

func setSignatures(t *testing.T, seq *sequencer.Sequence, sigs ...[3]int) {
	t.Helper()
	tl := seq.Timeline()
	tl.SetVariableLengthMode(true)
	for _, s := range sigs {
		if s[0] == 0 {
			require.NoError(t, tl.SetSelectedTimeSignature(s[1], s[2]))
			continue
		}
		require.NoError(t, tl.SetTimeSignatureAt(s[0], s[1], s[2]))
	}
}

func TestInsertShiftsLaterNotes(t *testing.T) {
	seq, tr := newSequence(t)
	before := takeSnapshot(seq)

	a := NewInsertMeasures(seq, 2, 2)
	a.Perform()

	assert.Equal(t, 10, seq.Timeline().MeasureCount())
	notes := tr.Notes()
	require.Len(t, notes, 16)
	for i, n := range notes {
		want := i * 960
		if i >= 8 {
			want += 7680
		}
		assert.Equal(t, want, n.Tick, "note %d", i)
		assert.Equal(t, want+959, n.EndTick, "note %d", i)
	}
	offs := tr.NoteOffs()
	assert.Equal(t, 15*960+7680+959, offs[len(offs)-1].EndTick)

	a.Undo()
	assert.Equal(t, before, takeSnapshot(seq))
}

func TestInsertAtEnd(t *testing.T) {
	seq, _ := newSequence(t)
	before := takeSnapshot(seq)

	a := NewInsertMeasures(seq, 8, 1)
	a.Perform()
	assert.Equal(t, 9, seq.Timeline().MeasureCount())
	assert.Equal(t, before.notes, takeSnapshot(seq).notes)

	a.Undo()
	assert.Equal(t, before, takeSnapshot(seq))
}

func TestInsertVariableShiftsChanges(t *testing.T) {
	seq, tr := newSequence(t)
	tr.AddNote(&sequencer.Note{Pitch: 40, Velocity: 90, Tick: 13440, EndTick: 13500})
	seq.Timeline().SetMeasureCount(6)
	setSignatures(t, seq, [3]int{2, 3, 4}, [3]int{4, 6, 8})
	tl := seq.Timeline()
	require.Equal(t, 13440, tl.TickAtMeasureStart(4))
	before := takeSnapshot(seq)

	a := NewInsertMeasures(seq, 3, 1)
	a.Perform()

	assert.Equal(t, [][3]int{{0, 4, 4}, {2, 3, 4}, {5, 6, 8}}, takeSnapshot(seq).sigs)
	assert.Equal(t, 7, tl.MeasureCount())
	assert.Equal(t, 16320, tl.TickAtMeasureStart(5))
	assert.Equal(t, 16320, notePitched(tr, 40).Tick)

	a.Undo()
	assert.Equal(t, before, takeSnapshot(seq))
}

func TestRemoveRoundTrip(t *testing.T) {
	seq, tr := newSequence(t)
	tr.AddControllerEvent(&sequencer.ControllerEvent{Controller: 7, Tick: 4000, Value: 90})
	tr.AddControllerEvent(&sequencer.ControllerEvent{Controller: 7, Tick: 12000, Value: 60})
	bass := seq.AddTrack("bass", 1)
	bass.AddNote(&sequencer.Note{Pitch: 36, Velocity: 80, Tick: 20000, EndTick: 21000})
	seq.AddTempoEvent(&sequencer.TempoEvent{Tick: 3840, BPM: 90})
	seq.AddTempoEvent(&sequencer.TempoEvent{Tick: 19200, BPM: 140})
	seq.AddTextEvent(&sequencer.TextEvent{Tick: 5000, Kind: sequencer.TextLyric, Text: "la"})
	seq.AddTextEvent(&sequencer.TextEvent{Tick: 23040, Kind: sequencer.TextMarker, Text: "outro"})
	before := takeSnapshot(seq)

	// measures 1 and 2: ticks 3840 to 11519
	a := NewRemoveMeasures(seq, 1, 3)
	a.Perform()

	got := takeSnapshot(seq)
	assert.Equal(t, 6, got.measures)
	require.Len(t, got.notes["lead"], 8)
	assert.Equal(t, [2]int{0, 959}, got.notes["lead"][0])
	assert.Equal(t, [2]int{3840, 4799}, got.notes["lead"][4], "the note at 11520 moved to 3840")
	assert.Equal(t, [][2]int{{12320, 13320}}, got.notes["bass"])
	assert.Equal(t, [][3]int{{7, 4320, 60}}, got.controls["lead"])
	assert.Equal(t, []sequencer.TempoEvent{{Tick: 11520, BPM: 140}}, got.tempos)
	assert.Equal(t, []sequencer.TextEvent{{Tick: 15360, Kind: sequencer.TextMarker, Text: "outro"}}, got.texts)

	a.Undo()
	assert.Equal(t, before, takeSnapshot(seq))
	assert.Panics(t, a.Undo)
}

func TestRemoveVariableRoundTrip(t *testing.T) {
	seq, tr := newSequence(t)
	tl := seq.Timeline()
	tl.SetMeasureCount(6)
	setSignatures(t, seq, [3]int{2, 3, 4}, [3]int{4, 4, 4})
	tr.AddNote(&sequencer.Note{Pitch: 30, Velocity: 70, Tick: 14000, EndTick: 14500})
	tr.AddNote(&sequencer.Note{Pitch: 31, Velocity: 70, Tick: 9000, EndTick: 9100})
	before := takeSnapshot(seq)
	total := tl.TotalTicks()

	a := NewRemoveMeasures(seq, 2, 4)
	a.Perform()

	assert.Equal(t, [][3]int{{0, 4, 4}, {2, 4, 4}}, takeSnapshot(seq).sigs)
	assert.Equal(t, 4, tl.MeasureCount())
	assert.Equal(t, total-5760, tl.TotalTicks())
	assert.Equal(t, 8240, notePitched(tr, 30).Tick)
	assert.Nil(t, notePitched(tr, 31), "note inside the removed range")

	a.Undo()
	assert.Equal(t, before, takeSnapshot(seq))
	assert.Equal(t, total, tl.TotalTicks())
}

func TestRemoveKeepsLastChangeOfRange(t *testing.T) {
	seq, _ := newSequence(t)
	setSignatures(t, seq, [3]int{2, 3, 4}, [3]int{5, 6, 8})

	NewRemoveMeasures(seq, 2, 5).Perform()

	tl := seq.Timeline()
	assert.Equal(t, 5, tl.MeasureCount())
	assert.Equal(t, [][3]int{{0, 4, 4}, {2, 6, 8}}, takeSnapshot(seq).sigs)
	assert.Equal(t, 2880, tl.MeasureLengthInTicks(2))
}

func TestRemoveUniform(t *testing.T) {
	seq, _ := newSequence(t)
	a := NewRemoveMeasures(seq, 0, 1)
	a.Perform()

	tl := seq.Timeline()
	assert.True(t, tl.IsUniformLength())
	assert.Equal(t, 7, tl.MeasureCount())
	assert.Equal(t, "remove measure 1", a.Name())
}

func TestRelocateForRemoval(t *testing.T) {
	sig := func(m, n, d int) timeline.TimeSigChange {
		return timeline.TimeSigChange{Measure: m, Num: n, Denom: d}
	}
	list := []timeline.TimeSigChange{sig(0, 4, 4), sig(2, 3, 4), sig(4, 5, 8), sig(7, 6, 8)}

	tests := []struct {
		name     string
		from, to int
		want     []timeline.TimeSigChange
	}{
		{"before every change", 0, 1, []timeline.TimeSigChange{sig(0, 4, 4), sig(1, 3, 4), sig(3, 5, 8), sig(6, 6, 8)}},
		{"change at to wins", 1, 4, []timeline.TimeSigChange{sig(0, 4, 4), sig(1, 5, 8), sig(4, 6, 8)}},
		{"change inside moves to from", 3, 5, []timeline.TimeSigChange{sig(0, 4, 4), sig(2, 3, 4), sig(3, 5, 8), sig(5, 6, 8)}},
		{"no change touched", 5, 6, []timeline.TimeSigChange{sig(0, 4, 4), sig(2, 3, 4), sig(4, 5, 8), sig(6, 6, 8)}},
		{"change at from kept", 2, 3, []timeline.TimeSigChange{sig(0, 4, 4), sig(2, 3, 4), sig(3, 5, 8), sig(6, 6, 8)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, relocateForRemoval(list, tt.from, tt.to))
		})
	}
	assert.Equal(t, 4, list[2].Measure, "input untouched")
}

func TestConstructorsPanic(t *testing.T) {
	seq, _ := newSequence(t)

	assert.Panics(t, func() { NewInsertMeasures(nil, 0, 1) })
	assert.Panics(t, func() { NewInsertMeasures(seq, -1, 1) })
	assert.Panics(t, func() { NewInsertMeasures(seq, 9, 1) })
	assert.Panics(t, func() { NewInsertMeasures(seq, 0, 0) })

	assert.Panics(t, func() { NewRemoveMeasures(nil, 0, 1) })
	assert.Panics(t, func() { NewRemoveMeasures(seq, 0, 8) }, "cannot remove every measure")
	assert.Panics(t, func() { NewRemoveMeasures(seq, 3, 3) })
	assert.Panics(t, func() { NewRemoveMeasures(seq, 6, 9) })
	assert.NotPanics(t, func() { NewRemoveMeasures(seq, 1, 8) })
}

func TestNames(t *testing.T) {
	seq, _ := newSequence(t)
	assert.Equal(t, "insert measure at 3", NewInsertMeasures(seq, 2, 1).Name())
	assert.Equal(t, "insert 4 measures at 1", NewInsertMeasures(seq, 0, 4).Name())
	assert.Equal(t, "remove measures 2-4", NewRemoveMeasures(seq, 1, 4).Name())
}

func TestHistory(t *testing.T) {
	seq, _ := newSequence(t)
	tl := seq.Timeline()
	var h History

	_, ok := h.Undo()
	assert.False(t, ok)
	_, ok = h.Redo()
	assert.False(t, ok)

	h.Do(NewInsertMeasures(seq, 0, 2))
	h.Do(NewRemoveMeasures(seq, 0, 1))
	assert.Equal(t, 9, tl.MeasureCount())
	assert.True(t, h.CanUndo())

	a, ok := h.Undo()
	require.True(t, ok)
	assert.Equal(t, "remove measure 1", a.Name())
	assert.Equal(t, 10, tl.MeasureCount())
	assert.True(t, h.CanRedo())

	_, ok = h.Undo()
	require.True(t, ok)
	assert.Equal(t, 8, tl.MeasureCount())

	_, ok = h.Redo()
	require.True(t, ok)
	assert.Equal(t, 10, tl.MeasureCount())

	h.Do(NewInsertMeasures(seq, 0, 1))
	assert.False(t, h.CanRedo(), "a new action clears redo")

	h.Clear()
	assert.False(t, h.CanUndo())
}
