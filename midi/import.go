// Package midi converts between Standard MIDI Files and sequences.
package midi

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2/smf"

	"go-measure/debug"
	"go-measure/sequencer"
)

// ReadFile parses a Standard MIDI File. The smf reader can panic on
// malformed input; that is returned as an error.
func ReadFile(path string) (s *smf.SMF, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("parsing midi file %s: %v", path, r)
		}
	}()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading midi file")
	}
	s, err = smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(err, "parsing midi file %s", path)
	}
	return s, nil
}

// Load opens a .mid/.midi file or a sequence document, by extension.
func Load(path string) (*sequencer.Sequence, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mid", ".midi":
		s, err := ReadFile(path)
		if err != nil {
			return nil, err
		}
		seq, err := Import(s)
		if err != nil {
			return nil, errors.Wrapf(err, "importing %s", path)
		}
		seq.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		return seq, nil
	default:
		return sequencer.LoadFile(path)
	}
}

type timeSig struct {
	tick       int
	num, denom int
}

type noteKey struct {
	channel, key uint8
}

// Import builds a sequence from a parsed SMF. Every SMF track carrying notes
// or controller events becomes a track; tempo and text meta events go to the
// sequence; time signatures from all tracks are merged in tick order.
func Import(s *smf.SMF) (*sequencer.Sequence, error) {
	tf, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, errors.Errorf("unsupported time format %v", s.TimeFormat)
	}

	seq := sequencer.New(int(tf), 1)
	var sigs []timeSig
	lastTick := 0
	tempoSet := false

	for i, events := range s.Tracks {
		track := sequencer.NewTrack(fmt.Sprintf("Track %d", i+1), 0)
		open := make(map[noteKey][]*sequencer.Note)
		hasChannel := false
		tick := 0

		for _, ev := range events {
			tick += int(ev.Delta)
			msg := ev.Message

			var ch, key, vel, cc, val uint8
			var num, denom, cpt, dsqpq uint8
			var bpm float64
			var text string
			var rel int16
			var abs uint16

			switch {
			case msg.GetNoteStart(&ch, &key, &vel):
				n := &sequencer.Note{Pitch: key, Velocity: vel, Tick: tick, EndTick: tick}
				k := noteKey{ch, key}
				open[k] = append(open[k], n)
				if !hasChannel {
					track.Channel, hasChannel = ch, true
				}
			case msg.GetNoteEnd(&ch, &key):
				k := noteKey{ch, key}
				if len(open[k]) == 0 {
					debug.Log("import", "note off without note on: channel %d key %d at %d", ch, key, tick)
					continue
				}
				n := open[k][0]
				open[k] = open[k][1:]
				n.EndTick = tick
				track.AddNote(n)
			case msg.GetControlChange(&ch, &cc, &val):
				track.AddControllerEvent(&sequencer.ControllerEvent{Controller: int(cc), Tick: tick, Value: int(val)})
				if !hasChannel {
					track.Channel, hasChannel = ch, true
				}
			case msg.GetPitchBend(&ch, &rel, &abs):
				track.AddControllerEvent(&sequencer.ControllerEvent{Controller: sequencer.ControllerPitchBend, Tick: tick, Value: int(rel)})
			case msg.GetMetaTimeSig(&num, &denom, &cpt, &dsqpq):
				sigs = append(sigs, timeSig{tick: tick, num: int(num), denom: int(denom)})
			case msg.GetMetaTempo(&bpm):
				if tick == 0 && !tempoSet {
					seq.SetTempo(bpm)
					tempoSet = true
					continue
				}
				seq.AddTempoEvent(&sequencer.TempoEvent{Tick: tick, BPM: bpm})
			case msg.GetMetaTrackName(&text):
				track.Name = text
			case msg.GetMetaLyric(&text):
				seq.AddTextEvent(&sequencer.TextEvent{Tick: tick, Kind: sequencer.TextLyric, Text: text})
			case msg.GetMetaMarker(&text):
				seq.AddTextEvent(&sequencer.TextEvent{Tick: tick, Kind: sequencer.TextMarker, Text: text})
			case msg.GetMetaText(&text):
				seq.AddTextEvent(&sequencer.TextEvent{Tick: tick, Kind: sequencer.TextPlain, Text: text})
			}
		}

		// the end of track marker may sit past the last event and marks
		// the song length
		lastTick = max(lastTick, tick)

		// notes still sounding at the end of the track end there
		for _, notes := range open {
			for _, n := range notes {
				n.EndTick = tick
				track.AddNote(n)
			}
		}

		if len(track.Notes()) > 0 || len(track.AllControllerEvents()) > 0 {
			seq.AppendTrack(track)
		}
	}

	importTimeSignatures(seq, sigs)
	tl := seq.Timeline()

	count := tl.MeasureIndexAtTick(max(lastTick-1, 0)) + 1
	last := tl.TimeSignature(tl.TimeSignatureCount() - 1)
	count = max(count, last.Measure+1)
	tl.SetMeasureCount(count)

	debug.Log("import", "imported %d tracks, %d time signatures, %d measures, resolution %d",
		len(seq.Tracks()), tl.TimeSignatureCount(), count, seq.TicksPerBeat())
	return seq, nil
}

// importTimeSignatures feeds the merged list to an import session. A signature
// stored in several tracks at the same tick is added once.
func importTimeSignatures(seq *sequencer.Sequence, sigs []timeSig) {
	slices.SortStableFunc(sigs, func(a, b timeSig) int {
		return a.tick - b.tick
	})
	sigs = slices.Compact(sigs)

	sess := seq.Timeline().BeginImport()
	defer sess.Close()
	for _, s := range sigs {
		if err := sess.AddTimeSignature(s.tick, s.num, s.denom); err != nil {
			debug.Log("import", "time signature %d/%d at tick %d: %v", s.num, s.denom, s.tick, err)
		}
	}
}
