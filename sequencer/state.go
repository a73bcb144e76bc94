package sequencer

import (
	"encoding/xml"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"go-measure/debug"
	"go-measure/timeline"
)

// Document is the on-disk form of a sequence
type Document struct {
	XMLName      xml.Name                `xml:"sequence"`
	Name         string                  `xml:"name,attr,omitempty"`
	TicksPerBeat int                     `xml:"ticksPerBeat,attr"`
	MeasureCount int                     `xml:"measureCount,attr"`
	Tempo        float64                 `xml:"tempo,attr"`
	ZoomPercent  int                     `xml:"zoom,attr,omitempty"`
	Measure      timeline.PersistedState `xml:"measure"`
	Tempos       []TempoState            `xml:"tempo"`
	Texts        []TextState             `xml:"text"`
	Tracks       []TrackState            `xml:"track"`
}

// TempoState holds a tempo change
type TempoState struct {
	Tick int     `xml:"tick,attr"`
	BPM  float64 `xml:"bpm,attr"`
}

// TextState holds a lyric, marker or text event
type TextState struct {
	Tick int      `xml:"tick,attr"`
	Kind TextKind `xml:"kind,attr"`
	Text string   `xml:",chardata"`
}

// TrackState holds all state for a single track
type TrackState struct {
	ID       uuid.UUID         `xml:"id,attr"`
	Name     string            `xml:"name,attr"`
	Channel  uint8             `xml:"channel,attr"`
	Notes    []NoteState       `xml:"note"`
	Controls []ControllerState `xml:"cc"`
}

// NoteState holds a single note
type NoteState struct {
	Pitch    uint8 `xml:"pitch,attr"`
	Velocity uint8 `xml:"velocity,attr"`
	Tick     int   `xml:"tick,attr"`
	EndTick  int   `xml:"end,attr"`
}

// ControllerState holds a single controller value
type ControllerState struct {
	Controller int `xml:"controller,attr"`
	Tick       int `xml:"tick,attr"`
	Value      int `xml:"value,attr"`
}

// State captures the sequence as a document.
func (s *Sequence) State() *Document {
	d := &Document{
		Name:         s.Name,
		TicksPerBeat: s.ticksPerBeat,
		MeasureCount: s.timeline.MeasureCount(),
		Tempo:        s.tempo,
		ZoomPercent:  s.zoomPercent,
		Measure:      s.timeline.State(),
	}
	for _, e := range s.tempos {
		d.Tempos = append(d.Tempos, TempoState{Tick: e.Tick, BPM: e.BPM})
	}
	for _, e := range s.texts {
		d.Texts = append(d.Texts, TextState{Tick: e.Tick, Kind: e.Kind, Text: e.Text})
	}
	for _, t := range s.tracks {
		ts := TrackState{ID: t.ID, Name: t.Name, Channel: t.Channel}
		for _, n := range t.notes {
			ts.Notes = append(ts.Notes, NoteState{Pitch: n.Pitch, Velocity: n.Velocity, Tick: n.Tick, EndTick: n.EndTick})
		}
		for _, c := range t.controls {
			ts.Controls = append(ts.Controls, ControllerState{Controller: c.Controller, Tick: c.Tick, Value: c.Value})
		}
		d.Tracks = append(d.Tracks, ts)
	}
	return d
}

// FromDocument builds a sequence from a decoded document. Out of range header
// values fall back to defaults.
func FromDocument(d *Document) *Sequence {
	tpb := d.TicksPerBeat
	if tpb < 1 {
		debug.Log("persist", "wrong ticks per beat %d, using 960", tpb)
		tpb = 960
	}
	count := d.MeasureCount
	if count < 1 {
		debug.Log("persist", "wrong measure count %d, using 1", count)
		count = 1
	}

	s := New(tpb, count)
	s.Name = d.Name
	s.SetTempo(d.Tempo)
	if d.ZoomPercent > 0 {
		s.zoomPercent = d.ZoomPercent
		s.zoom = zoomFor(tpb, d.ZoomPercent)
	}

	s.timeline.Restore(d.Measure)

	for _, e := range d.Tempos {
		s.AddTempoEvent(&TempoEvent{Tick: e.Tick, BPM: e.BPM})
	}
	for _, e := range d.Texts {
		s.AddTextEvent(&TextEvent{Tick: e.Tick, Kind: e.Kind, Text: e.Text})
	}
	for _, ts := range d.Tracks {
		t := &Track{ID: ts.ID, Name: ts.Name, Channel: ts.Channel}
		if t.ID == uuid.Nil {
			t.ID = uuid.New()
		}
		for _, n := range ts.Notes {
			t.AddNote(&Note{Pitch: n.Pitch, Velocity: n.Velocity, Tick: n.Tick, EndTick: n.EndTick})
		}
		for _, c := range ts.Controls {
			t.AddControllerEvent(&ControllerEvent{Controller: c.Controller, Tick: c.Tick, Value: c.Value})
		}
		s.tracks = append(s.tracks, t)
	}
	return s
}

// WriteDocument encodes the sequence as XML.
func (s *Sequence) WriteDocument(w io.Writer) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return errors.Wrap(err, "writing xml header")
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(s.State()); err != nil {
		return errors.Wrap(err, "encoding sequence")
	}
	if err := enc.Flush(); err != nil {
		return errors.Wrap(err, "flushing sequence")
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// ReadDocument decodes a sequence written by WriteDocument.
func ReadDocument(r io.Reader) (*Sequence, error) {
	var d Document
	if err := xml.NewDecoder(r).Decode(&d); err != nil {
		return nil, errors.Wrap(err, "decoding sequence")
	}
	return FromDocument(&d), nil
}

// SaveFile writes the sequence document to path.
func (s *Sequence) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	if err := s.WriteDocument(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "writing %s", path)
	}
	return errors.Wrapf(f.Close(), "closing %s", path)
}

// LoadFile reads a sequence document from path.
func LoadFile(path string) (*Sequence, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	s, err := ReadDocument(f)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return s, nil
}
