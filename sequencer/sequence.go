package sequencer

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"go-measure/debug"
	"go-measure/timeline"
)

// DefaultTempo in BPM, used until a tempo event says otherwise.
const DefaultTempo = 120.0

// Sequence is a multi-track song: tracks, global tempo and text events, and
// the timeline that places them in measures. It implements timeline.Host.
type Sequence struct {
	Name string

	ticksPerBeat int
	zoomPercent  int
	zoom         float64
	xScroll      int
	tempo        float64

	tracks []*Track
	tempos []*TempoEvent
	texts  []*TextEvent

	timeline *timeline.Timeline
}

// New creates an empty sequence of measureCount 4/4 measures.
func New(ticksPerBeat, measureCount int) *Sequence {
	if ticksPerBeat < 1 {
		panic(fmt.Sprintf("sequencer: ticks per beat must be positive, got %d", ticksPerBeat))
	}
	s := &Sequence{
		ticksPerBeat: ticksPerBeat,
		zoomPercent:  100,
		tempo:        DefaultTempo,
	}
	s.zoom = zoomFor(ticksPerBeat, s.zoomPercent)
	s.timeline = timeline.New(s, measureCount)
	return s
}

// zoomFor shows one beat as 128 pixels at 100%.
func zoomFor(ticksPerBeat, percent int) float64 {
	return 128.0 / float64(ticksPerBeat) * float64(percent) / 100.0
}

func (s *Sequence) Timeline() *timeline.Timeline {
	return s.timeline
}

// TicksPerBeat is the MIDI resolution (ticks per quarter note).
func (s *Sequence) TicksPerBeat() int {
	return s.ticksPerBeat
}

// SetTicksPerBeat changes the resolution. Event ticks are not rescaled.
func (s *Sequence) SetTicksPerBeat(tpb int) {
	if tpb < 1 {
		panic(fmt.Sprintf("sequencer: ticks per beat must be positive, got %d", tpb))
	}
	s.ticksPerBeat = tpb
	s.zoom = zoomFor(tpb, s.zoomPercent)
	s.timeline.UpdateGeometry()
}

// Zoom returns pixels per tick.
func (s *Sequence) Zoom() float64 {
	return s.zoom
}

func (s *Sequence) ZoomPercent() int {
	return s.zoomPercent
}

// SetZoomPercent changes the horizontal zoom and recomputes geometry.
func (s *Sequence) SetZoomPercent(p int) {
	p = min(max(p, 10), 1000)
	s.zoomPercent = p
	s.zoom = zoomFor(s.ticksPerBeat, p)
	debug.Log("timeline", "zoom %d%% (%.4f px/tick)", p, s.zoom)
	s.timeline.UpdateGeometry()
}

// XScrollInPixels is the horizontal scroll offset of the view.
func (s *Sequence) XScrollInPixels() int {
	return s.xScroll
}

func (s *Sequence) SetXScroll(px int) {
	s.xScroll = max(px, 0)
}

// Tempo is the initial tempo in BPM.
func (s *Sequence) Tempo() float64 {
	return s.tempo
}

func (s *Sequence) SetTempo(bpm float64) {
	if bpm > 0 {
		s.tempo = bpm
	}
}

// ---------------------------------------------------------------------------
// Tracks

// Tracks returns the tracks in display order. The slice is owned by the sequence.
func (s *Sequence) Tracks() []*Track {
	return s.tracks
}

// AddTrack appends a new empty track.
func (s *Sequence) AddTrack(name string, channel uint8) *Track {
	t := NewTrack(name, channel)
	s.tracks = append(s.tracks, t)
	return t
}

// AppendTrack adds an existing track, e.g. one built by an importer.
func (s *Sequence) AppendTrack(t *Track) {
	s.tracks = append(s.tracks, t)
}

// TrackByID looks a track up by its handle.
func (s *Sequence) TrackByID(id uuid.UUID) *Track {
	for _, t := range s.tracks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Tempo and text events

// TempoEvents returns tempo changes in tick order. The slice is owned by the sequence.
func (s *Sequence) TempoEvents() []*TempoEvent {
	return s.tempos
}

func (s *Sequence) AddTempoEvent(e *TempoEvent) {
	i, _ := slices.BinarySearchFunc(s.tempos, e, compareTempo)
	s.tempos = slices.Insert(s.tempos, i, e)
}

// ExtractTempoEvent removes e (by identity) and reports whether it was present.
func (s *Sequence) ExtractTempoEvent(e *TempoEvent) bool {
	i := slices.Index(s.tempos, e)
	if i < 0 {
		return false
	}
	s.tempos = slices.Delete(s.tempos, i, i+1)
	return true
}

// ReorderTempoEvents restores tick order after events were moved in place.
func (s *Sequence) ReorderTempoEvents() {
	slices.SortStableFunc(s.tempos, compareTempo)
}

// TextEvents returns lyrics, markers and text in tick order. The slice is
// owned by the sequence.
func (s *Sequence) TextEvents() []*TextEvent {
	return s.texts
}

func (s *Sequence) AddTextEvent(e *TextEvent) {
	i, _ := slices.BinarySearchFunc(s.texts, e, compareText)
	s.texts = slices.Insert(s.texts, i, e)
}

// ExtractTextEvent removes e (by identity) and reports whether it was present.
func (s *Sequence) ExtractTextEvent(e *TextEvent) bool {
	i := slices.Index(s.texts, e)
	if i < 0 {
		return false
	}
	s.texts = slices.Delete(s.texts, i, i+1)
	return true
}

func (s *Sequence) ReorderTextEvents() {
	slices.SortStableFunc(s.texts, compareText)
}

// LastTick returns the largest tick used by any event, or 0 for an empty sequence.
func (s *Sequence) LastTick() int {
	last := 0
	for _, t := range s.tracks {
		for _, n := range t.notes {
			last = max(last, n.EndTick)
		}
		for _, c := range t.controls {
			last = max(last, c.Tick)
		}
	}
	for _, e := range s.tempos {
		last = max(last, e.Tick)
	}
	for _, e := range s.texts {
		last = max(last, e.Tick)
	}
	return last
}
