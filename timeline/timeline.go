// Package timeline maps between measures, MIDI ticks and screen pixels for a
// sequence whose time signature may change from measure to measure.
//
// A Timeline is not safe for concurrent use. Readers that keep the slice
// returned by Geometry across a mutation see the old, still consistent,
// snapshot: every recompute replaces the cache instead of patching it.
package timeline

import (
	"fmt"
	"math"
	"sort"

	"go-measure/debug"
)

// LeftMargin is the pixel offset of measure 0 when the view is not scrolled.
const LeftMargin = 90

// Queries may run this many measures past the song end before the index is
// considered corrupt.
const measureSlack = 50

// Host supplies the sequence and view values every conversion depends on.
type Host interface {
	TicksPerBeat() int
	Zoom() float64 // pixels per tick
	XScrollInPixels() int
}

// Timeline owns the time signature list, the measure count and the derived
// per-measure geometry.
type Timeline struct {
	host Host

	measureCount int
	firstMeasure int
	expanded     bool // variable-length mode

	changes     []TimeSigChange // sorted by Measure, changes[0].Measure == 0
	selectedSig int
	importing   bool

	info        []MeasureInfo
	totalTicks  int
	totalPixels int

	txDepth int
}

// New creates a timeline of measureCount 4/4 measures.
func New(host Host, measureCount int) *Timeline {
	if measureCount < 1 {
		panic(fmt.Sprintf("timeline: measure count must be at least 1, got %d", measureCount))
	}
	t := &Timeline{
		host:         host,
		measureCount: measureCount,
		changes:      defaultChanges(),
	}
	t.rebuild()
	return t
}

func (t *Timeline) MeasureCount() int {
	return t.measureCount
}

// SetMeasureCount changes the song length in measures.
func (t *Timeline) SetMeasureCount(n int) {
	if n < 1 {
		panic(fmt.Sprintf("timeline: measure count must be at least 1, got %d", n))
	}
	t.measureCount = n
	t.updateMeasureInfo()
}

// FirstMeasure is the first playable measure.
func (t *Timeline) FirstMeasure() int {
	return t.firstMeasure
}

func (t *Timeline) SetFirstMeasure(m int) {
	if m < 0 {
		m = 0
	}
	t.firstMeasure = m
}

// IsVariableLengthMode reports whether expanded (multi time signature) editing is on.
func (t *Timeline) IsVariableLengthMode() bool {
	return t.expanded
}

// SetVariableLengthMode turns expanded editing on or off. Turning it off
// discards every change and goes back to a single 4/4 signature.
func (t *Timeline) SetVariableLengthMode(on bool) {
	if t.expanded && !on {
		debug.Log("timeline", "leaving variable-length mode, dropping %d time signature changes", len(t.changes))
		t.changes = defaultChanges()
		t.selectedSig = 0
	}
	t.expanded = on
	t.updateMeasureInfo()
}

// IsUniformLength reports whether every measure has the same length, in which
// case conversions are closed form and the geometry cache is not consulted.
func (t *Timeline) IsUniformLength() bool {
	return !t.expanded && len(t.changes) == 1
}

// Importing reports whether an ImportSession is open.
func (t *Timeline) Importing() bool {
	return t.importing
}

// ---------------------------------------------------------------------------
// Lengths

// MeasureLengthInTicks returns the length of measure in ticks.
func (t *Timeline) MeasureLengthInTicks(measure int) int {
	c := t.ActiveTimeSignature(measure)
	return int(math.Round(float64(t.host.TicksPerBeat()) * c.BeatsPerMeasure()))
}

func (t *Timeline) MeasureLengthInPixels(measure int) float64 {
	return float64(t.MeasureLengthInTicks(measure)) * t.host.Zoom()
}

// DefaultMeasureLengthInTicks is the length of measure 0.
func (t *Timeline) DefaultMeasureLengthInTicks() int {
	return t.MeasureLengthInTicks(0)
}

func (t *Timeline) BeatLengthInTicks() int {
	return t.host.TicksPerBeat()
}

func (t *Timeline) BeatLengthInPixels() float64 {
	return float64(t.host.TicksPerBeat()) * t.host.Zoom()
}

// TotalTicks is the song length in ticks.
func (t *Timeline) TotalTicks() int {
	if t.IsUniformLength() {
		return t.measureCount * t.MeasureLengthInTicks(0)
	}
	return t.totalTicks
}

// TotalPixels is the song length in pixels, without margin or scrolling.
func (t *Timeline) TotalPixels() int {
	if t.IsUniformLength() {
		return toPixel(float64(t.measureCount*t.MeasureLengthInTicks(0)), t.host.Zoom())
	}
	return t.totalPixels
}

// ---------------------------------------------------------------------------
// Tick and pixel lookups

// MeasureIndexAtTick returns the measure containing tick. Negative ticks clamp
// to measure 0; ticks past the song end extrapolate with the signature that
// applies after the last measure.
func (t *Timeline) MeasureIndexAtTick(tick int) int {
	if tick < 0 {
		tick = 0
	}
	if t.IsUniformLength() {
		return tick / t.MeasureLengthInTicks(0)
	}

	info := t.geometry()
	i := sort.Search(len(info), func(i int) bool {
		return info[i].EndTick > tick
	})
	if i < len(info) {
		return i
	}

	// changes placed after the last measure still carry their cached tick
	m, start := len(info), info[len(info)-1].EndTick
	for _, c := range t.changes {
		if c.Measure > m && c.Tick <= tick {
			m, start = c.Measure, c.Tick
		}
	}
	return m + (tick-start)/t.MeasureLengthInTicks(m)
}

// MeasureIndexAtPixel returns the measure under a view pixel. The pixel is
// relative to the view, so the left margin and scroll offset are removed
// first. Pixels before the first measure give 0; in variable-length mode
// pixels past the end give the last measure.
func (t *Timeline) MeasureIndexAtPixel(pixel int) int {
	pixel -= LeftMargin - t.host.XScrollInPixels()

	if t.IsUniformLength() {
		if pixel < 0 {
			pixel = 0
		}
		return int(float64(pixel) / t.MeasureLengthInPixels(0))
	}

	if pixel < 0 {
		return 0
	}
	info := t.geometry()
	i := sort.Search(len(info), func(i int) bool {
		return info[i].EndPixel > pixel
	})
	if i >= len(info) {
		return len(info) - 1
	}
	return i
}

// MeasureDivisionIndexAtPixel returns the bar line nearest to a view pixel:
// n is the boundary at the start of measure n, and MeasureCount the one
// after the last measure.
func (t *Timeline) MeasureDivisionIndexAtPixel(pixel int) int {
	x1 := LeftMargin - t.host.XScrollInPixels()

	if t.IsUniformLength() {
		step := t.MeasureLengthInPixels(0)
		d := int((float64(pixel-x1) + step/2) / step)
		return max(d, 0)
	}

	// boundary n owns the pixels from the middle of measure n-1 to the
	// middle of measure n
	pixel -= x1
	info := t.geometry()
	for n, m := range info {
		if pixel < m.Pixel+m.WidthInPixels/2 {
			return n
		}
	}
	return len(info)
}

// TickAtMeasureStart returns the first tick of measure. Indices a little past
// the song end are tolerated and give the song end.
func (t *Timeline) TickAtMeasureStart(measure int) int {
	t.checkMeasure(measure)
	if t.IsUniformLength() {
		return measure * t.MeasureLengthInTicks(0)
	}
	info := t.geometry()
	if measure >= len(info) {
		return info[len(info)-1].EndTick
	}
	return info[measure].Tick
}

// TickAtMeasureEnd returns the tick just after measure, which is also the
// first tick of the next measure.
func (t *Timeline) TickAtMeasureEnd(measure int) int {
	t.checkMeasure(measure)
	if t.IsUniformLength() {
		return (measure + 1) * t.MeasureLengthInTicks(0)
	}
	info := t.geometry()
	if measure >= len(info) {
		return info[len(info)-1].EndTick
	}
	return info[measure].EndTick
}

// PixelAtMeasureStart returns the view pixel of the bar line opening measure.
func (t *Timeline) PixelAtMeasureStart(measure int) int {
	t.checkMeasure(measure)
	offset := LeftMargin - t.host.XScrollInPixels()
	if t.IsUniformLength() {
		return toPixel(float64(measure*t.MeasureLengthInTicks(0)), t.host.Zoom()) + offset
	}
	info := t.geometry()
	if measure >= len(info) {
		return info[len(info)-1].EndPixel + offset
	}
	return info[measure].Pixel + offset
}

// PixelAtMeasureEnd returns the view pixel of the bar line closing measure.
func (t *Timeline) PixelAtMeasureEnd(measure int) int {
	t.checkMeasure(measure)
	offset := LeftMargin - t.host.XScrollInPixels()
	if t.IsUniformLength() {
		return toPixel(float64((measure+1)*t.MeasureLengthInTicks(0)), t.host.Zoom()) + offset
	}
	info := t.geometry()
	if measure >= len(info) {
		return info[len(info)-1].EndPixel + offset
	}
	return info[measure].EndPixel + offset
}

// checkMeasure panics on indices that can only come from corrupt state.
func (t *Timeline) checkMeasure(measure int) {
	if measure < 0 || measure > t.measureCount+measureSlack {
		panic(fmt.Sprintf("timeline: measure index %d out of range (measure count %d)", measure, t.measureCount))
	}
}

func toPixel(tick, zoom float64) int {
	return int(math.Round(tick * zoom))
}
