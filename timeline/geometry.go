package timeline

import (
	"fmt"
	"math"

	"go-measure/debug"
)

// MeasureInfo is the cached position of one measure.
type MeasureInfo struct {
	Tick, EndTick               int
	Pixel, EndPixel             int
	WidthInTicks, WidthInPixels int
	Selected                    bool
}

// Geometry returns the per-measure cache. The slice is replaced on every
// recompute; do not keep it across a mutating call.
func (t *Timeline) Geometry() []MeasureInfo {
	return t.info
}

// UpdateGeometry recomputes the cache, e.g. after the host's zoom or ticks per
// beat changed. Inside a transaction the work is deferred to Commit.
func (t *Timeline) UpdateGeometry() {
	t.updateMeasureInfo()
}

func (t *Timeline) updateMeasureInfo() {
	if t.txDepth > 0 {
		return
	}
	t.rebuild()
}

// geometry returns the cache for lookups, asserting it matches the measure count.
func (t *Timeline) geometry() []MeasureInfo {
	if t.txDepth == 0 && len(t.info) != t.measureCount {
		panic(fmt.Sprintf("timeline: geometry has %d measures, expected %d", len(t.info), t.measureCount))
	}
	return t.info
}

// rebuild walks every measure, accumulating ticks with the active signature,
// and stores the result in a fresh cache. Changes placed after the last
// measure still get their cached tick and pixel.
func (t *Timeline) rebuild() {
	zoom := t.host.Zoom()
	ticksPerBeat := float64(t.host.TicksPerBeat())

	info := make([]MeasureInfo, t.measureCount)
	for i := range min(len(info), len(t.info)) {
		info[i].Selected = t.info[i].Selected
	}

	last := t.changes[len(t.changes)-1].Measure
	span := max(t.measureCount, last+1)

	t.changes[0].Tick = 0
	t.changes[0].Pixel = 0

	var tick float64
	sig := 0
	for n := range span {
		if sig < len(t.changes)-1 && t.changes[sig+1].Measure == n {
			sig++
			t.changes[sig].Tick = int(math.Round(tick))
			t.changes[sig].Pixel = toPixel(tick, zoom)
		}

		if n < len(info) {
			if n > 0 {
				finishMeasure(&info[n-1], tick, zoom)
			}
			info[n].Tick = int(math.Round(tick))
			info[n].Pixel = toPixel(tick, zoom)
		}
		if n == len(info) {
			finishMeasure(&info[n-1], tick, zoom)
			t.totalTicks = int(math.Round(tick))
			t.totalPixels = toPixel(tick, zoom)
		}

		tick += ticksPerBeat * t.changes[sig].BeatsPerMeasure()
	}
	if span == len(info) {
		finishMeasure(&info[len(info)-1], tick, zoom)
		t.totalTicks = int(math.Round(tick))
		t.totalPixels = toPixel(tick, zoom)
	}

	t.info = info
	debug.LogEvery(20, "timeline", "geometry rebuilt: %d measures, %d ticks", len(info), t.totalTicks)
}

func finishMeasure(m *MeasureInfo, end, zoom float64) {
	m.EndTick = int(math.Round(end))
	m.EndPixel = toPixel(end, zoom)
	m.WidthInTicks = m.EndTick - m.Tick
	m.WidthInPixels = int(float64(m.WidthInTicks) * zoom)
}

// ---------------------------------------------------------------------------
// Measure selection

// SelectMeasures marks measures [from, to) as selected and clears the rest.
func (t *Timeline) SelectMeasures(from, to int) {
	if from > to {
		from, to = to, from
	}
	for i := range t.info {
		t.info[i].Selected = i >= from && i < to
	}
}

// Unselect clears the measure selection.
func (t *Timeline) Unselect() {
	for i := range t.info {
		t.info[i].Selected = false
	}
}

// SelectedMeasures returns the selection as a half-open range. Only the first
// contiguous run of selected measures is reported.
func (t *Timeline) SelectedMeasures() (from, to int, ok bool) {
	from = -1
	for i, m := range t.info {
		if m.Selected && from < 0 {
			from = i
		}
		if !m.Selected && from >= 0 {
			return from, i, true
		}
	}
	if from < 0 {
		return 0, 0, false
	}
	return from, len(t.info), true
}
