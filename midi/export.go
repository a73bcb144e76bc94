package midi

import (
	"cmp"
	"slices"

	"github.com/pkg/errors"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"go-measure/sequencer"
)

type timedMessage struct {
	tick  int
	order int // note offs before anything else at the same tick
	msg   []byte
}

// Export converts a sequence to a format 1 SMF: a conductor track with time
// signatures, tempo and text, then one track per sequence track.
func Export(seq *sequencer.Sequence) (*smf.SMF, error) {
	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(seq.TicksPerBeat())

	var conductor []timedMessage
	for _, c := range seq.Timeline().TimeSignatures() {
		conductor = append(conductor, timedMessage{tick: c.Tick, msg: smf.MetaMeter(uint8(c.Num), uint8(c.Denom))})
	}
	conductor = append(conductor, timedMessage{tick: 0, msg: smf.MetaTempo(seq.Tempo())})
	for _, e := range seq.TempoEvents() {
		conductor = append(conductor, timedMessage{tick: e.Tick, msg: smf.MetaTempo(e.BPM)})
	}
	for _, e := range seq.TextEvents() {
		var msg smf.Message
		switch e.Kind {
		case sequencer.TextLyric:
			msg = smf.MetaLyric(e.Text)
		case sequencer.TextMarker:
			msg = smf.MetaMarker(e.Text)
		default:
			msg = smf.MetaText(e.Text)
		}
		conductor = append(conductor, timedMessage{tick: e.Tick, order: 1, msg: msg})
	}
	// the conductor track ends with the last measure
	if err := sm.Add(buildTrack(conductor, seq.Timeline().TotalTicks())); err != nil {
		return nil, errors.Wrap(err, "adding conductor track")
	}

	for _, t := range seq.Tracks() {
		ch := t.Channel & 0x0f
		events := []timedMessage{{tick: 0, msg: smf.MetaTrackSequenceName(t.Name)}}
		for _, n := range t.Notes() {
			events = append(events,
				timedMessage{tick: n.Tick, order: 2, msg: gomidi.NoteOn(ch, n.Pitch, n.Velocity)},
				timedMessage{tick: n.EndTick, order: 0, msg: gomidi.NoteOff(ch, n.Pitch)},
			)
		}
		for _, e := range t.AllControllerEvents() {
			var msg []byte
			if e.Controller == sequencer.ControllerPitchBend {
				msg = gomidi.Pitchbend(ch, int16(e.Value))
			} else {
				msg = gomidi.ControlChange(ch, uint8(e.Controller), uint8(e.Value))
			}
			events = append(events, timedMessage{tick: e.Tick, order: 1, msg: msg})
		}
		if err := sm.Add(buildTrack(events, 0)); err != nil {
			return nil, errors.Wrapf(err, "adding track %s", t.Name)
		}
	}
	return sm, nil
}

// buildTrack sorts absolute-tick messages and stores them as deltas. The end
// of track marker goes at end, or right after the last message.
func buildTrack(events []timedMessage, end int) smf.Track {
	slices.SortStableFunc(events, func(a, b timedMessage) int {
		return cmp.Or(cmp.Compare(a.tick, b.tick), cmp.Compare(a.order, b.order))
	})

	var track smf.Track
	last := 0
	for _, e := range events {
		track.Add(uint32(e.tick-last), e.msg)
		last = e.tick
	}
	track.Close(uint32(max(end-last, 0)))
	return track
}

// WriteFile exports seq to a Standard MIDI File at path.
func WriteFile(seq *sequencer.Sequence, path string) error {
	sm, err := Export(seq)
	if err != nil {
		return err
	}
	return errors.Wrapf(sm.WriteFile(path), "writing %s", path)
}
