package midi

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"go-measure/sequencer"
)

// testSMF has a 4/4 bar pair, then 3/4 from tick 7680, and one piano track.
func testSMF(t *testing.T) *smf.SMF {
	t.Helper()
	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(960)

	var conductor smf.Track
	conductor.Add(0, smf.MetaMeter(4, 4))
	conductor.Add(0, smf.MetaTempo(100))
	conductor.Add(7680, smf.MetaMeter(3, 4))
	conductor.Add(2880, smf.MetaLyric("hey"))
	conductor.Close(0)
	require.NoError(t, sm.Add(conductor))

	var piano smf.Track
	piano.Add(0, smf.MetaTrackSequenceName("Piano"))
	piano.Add(0, gomidi.NoteOn(2, 60, 100))
	piano.Add(960, gomidi.NoteOff(2, 60))
	piano.Add(0, gomidi.ControlChange(2, 7, 90))
	piano.Add(14400, gomidi.NoteOn(2, 62, 80))
	piano.Add(480, gomidi.NoteOff(2, 62))
	piano.Close(0)
	require.NoError(t, sm.Add(piano))
	return sm
}

func TestImport(t *testing.T) {
	seq, err := Import(testSMF(t))
	require.NoError(t, err)

	assert.Equal(t, 960, seq.TicksPerBeat())
	assert.InDelta(t, 100.0, seq.Tempo(), 0.01)
	assert.Empty(t, seq.TempoEvents())

	tl := seq.Timeline()
	assert.True(t, tl.IsVariableLengthMode())
	sigs := tl.TimeSignatures()
	require.Len(t, sigs, 2)
	assert.Equal(t, [3]int{0, 4, 4}, [3]int{sigs[0].Measure, sigs[0].Num, sigs[0].Denom})
	assert.Equal(t, [3]int{2, 3, 4}, [3]int{sigs[1].Measure, sigs[1].Num, sigs[1].Denom})
	assert.Equal(t, 5, tl.MeasureCount())
	assert.Equal(t, 13440, tl.TickAtMeasureStart(4))

	require.Len(t, seq.TextEvents(), 1)
	assert.Equal(t, sequencer.TextEvent{Tick: 10560, Kind: sequencer.TextLyric, Text: "hey"}, *seq.TextEvents()[0])

	require.Len(t, seq.Tracks(), 1, "the conductor track has no notes")
	tr := seq.Tracks()[0]
	assert.Equal(t, "Piano", tr.Name)
	assert.Equal(t, uint8(2), tr.Channel)
	require.Len(t, tr.Notes(), 2)
	assert.Equal(t, sequencer.Note{Pitch: 60, Velocity: 100, Tick: 0, EndTick: 960}, *tr.Notes()[0])
	assert.Equal(t, sequencer.Note{Pitch: 62, Velocity: 80, Tick: 15360, EndTick: 15840}, *tr.Notes()[1])
	require.Len(t, tr.AllControllerEvents(), 1)
	assert.Equal(t, sequencer.ControllerEvent{Controller: 7, Tick: 960, Value: 90}, *tr.AllControllerEvents()[0])
}

func TestImportUnterminatedNote(t *testing.T) {
	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(480)
	var tr smf.Track
	tr.Add(0, gomidi.NoteOn(0, 40, 90))
	tr.Add(100, gomidi.NoteOn(0, 40, 90))
	tr.Add(100, gomidi.NoteOff(0, 40))
	tr.Add(300, gomidi.ControlChange(0, 1, 5))
	tr.Close(0)
	require.NoError(t, sm.Add(tr))

	seq, err := Import(sm)
	require.NoError(t, err)
	notes := seq.Tracks()[0].Notes()
	require.Len(t, notes, 2)
	assert.Equal(t, [2]int{0, 200}, [2]int{notes[0].Tick, notes[0].EndTick}, "first note on pairs with the first note off")
	assert.Equal(t, [2]int{100, 500}, [2]int{notes[1].Tick, notes[1].EndTick}, "open note ends with the track")
	assert.True(t, seq.Timeline().IsUniformLength())
	assert.Equal(t, 1, seq.Timeline().MeasureCount())
}

func TestExportImportRoundTrip(t *testing.T) {
	orig, err := Import(testSMF(t))
	require.NoError(t, err)
	orig.AddTempoEvent(&sequencer.TempoEvent{Tick: 3840, BPM: 150})
	orig.AddTextEvent(&sequencer.TextEvent{Tick: 0, Kind: sequencer.TextMarker, Text: "start"})

	path := filepath.Join(t.TempDir(), "song.mid")
	require.NoError(t, WriteFile(orig, path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "song", got.Name)

	assert.InDelta(t, orig.Tempo(), got.Tempo(), 0.01)
	require.Len(t, got.TempoEvents(), 1)
	assert.Equal(t, 3840, got.TempoEvents()[0].Tick)
	assert.InDelta(t, 150.0, got.TempoEvents()[0].BPM, 0.01)
	assert.Equal(t, orig.Timeline().State(), got.Timeline().State())
	assert.Equal(t, orig.Timeline().MeasureCount(), got.Timeline().MeasureCount())

	require.Len(t, got.TextEvents(), 2)
	assert.Equal(t, sequencer.TextMarker, got.TextEvents()[0].Kind)
	assert.Equal(t, sequencer.TextLyric, got.TextEvents()[1].Kind)

	require.Len(t, got.Tracks(), 1)
	want, have := orig.Tracks()[0], got.Tracks()[0]
	assert.Equal(t, want.Name, have.Name)
	assert.Equal(t, want.Channel, have.Channel)
	require.Len(t, have.Notes(), len(want.Notes()))
	for i := range want.Notes() {
		assert.Equal(t, *want.Notes()[i], *have.Notes()[i])
	}
	require.Len(t, have.AllControllerEvents(), 1)
	assert.Equal(t, *want.AllControllerEvents()[0], *have.AllControllerEvents()[0])
}

func TestReadFileGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.mid")
	require.NoError(t, os.WriteFile(path, []byte("this is not a midi file"), 0644))

	_, err := ReadFile(path)
	assert.Error(t, err)
	_, err = Load(path)
	assert.Error(t, err)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.mid"))
	assert.Error(t, err)
}

func TestLoadDocument(t *testing.T) {
	seq := sequencer.New(480, 3)
	seq.Name = "doc"
	path := filepath.Join(t.TempDir(), "song.xml")
	require.NoError(t, seq.SaveFile(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "doc", got.Name)
	assert.Equal(t, 3, got.Timeline().MeasureCount())
}
