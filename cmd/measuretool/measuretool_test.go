package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-measure/midi"
	"go-measure/sequencer"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	editOutput, editAt, editCount, editFrom, editTo, editNum, editDenom = "", 1, 1, 1, 1, 4, 4
	inspectMeasures = false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeSong(t *testing.T) string {
	t.Helper()
	seq := sequencer.New(480, 4)
	tr := seq.AddTrack("bass", 1)
	tr.AddNote(&sequencer.Note{Pitch: 40, Velocity: 100, Tick: 1920, EndTick: 2400})
	path := filepath.Join(t.TempDir(), "song.mid")
	require.NoError(t, midi.WriteFile(seq, path))
	return path
}

func TestInsertCommand(t *testing.T) {
	in := writeSong(t)
	out := filepath.Join(t.TempDir(), "out.xml")

	stdout, err := run(t, "insert", in, "--at", "2", "--count", "2", "-o", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "insert 2 measures at 2")

	seq, err := sequencer.LoadFile(out)
	require.NoError(t, err)
	assert.Equal(t, 6, seq.Timeline().MeasureCount())
	assert.Equal(t, 1920+3840, seq.Tracks()[0].Notes()[0].Tick)

	_, err = run(t, "insert", in, "--at", "9")
	assert.Error(t, err)
}

func TestRemoveCommand(t *testing.T) {
	in := writeSong(t)

	_, err := run(t, "remove", in, "--from", "1", "--to", "4")
	assert.Error(t, err, "every measure")

	stdout, err := run(t, "remove", in, "--from", "2", "--to", "2")
	require.NoError(t, err)
	assert.Contains(t, stdout, "remove measure 2")

	seq, err := midi.Load(in)
	require.NoError(t, err)
	assert.Equal(t, 3, seq.Timeline().MeasureCount())
	assert.Empty(t, seq.Tracks(), "the only note was in measure 2")
}

func TestTimesigAndInspect(t *testing.T) {
	in := writeSong(t)
	doc := filepath.Join(t.TempDir(), "song.xml")

	_, err := run(t, "convert", in, doc)
	require.NoError(t, err)

	_, err = run(t, "timesig", doc, "--at", "3", "--num", "3", "--denom", "4")
	require.NoError(t, err)
	_, err = run(t, "timesig", doc, "--at", "3", "--num", "3", "--denom", "5")
	assert.Error(t, err)

	stdout, err := run(t, "inspect", doc, "-m")
	require.NoError(t, err)
	assert.Contains(t, stdout, "variable:       true")
	assert.Contains(t, stdout, "3/4")
	assert.Contains(t, stdout, "bass")
	assert.Contains(t, stdout, "measures:")
}
