package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-measure/theme"
	"go-measure/timeline"
)

type cellKind int

const (
	cellBlank cellKind = iota
	cellFill
	cellBeat
	cellBar
	cellTimeSig
	cellSelected
)

// MeasureBar draws the measure ruler of a timeline as two text rows: labels
// (measure numbers and time signatures) above bar lines. Column c covers view
// pixels [c*cellPixels, (c+1)*cellPixels).
type MeasureBar struct {
	Timeline   *timeline.Timeline
	Theme      *theme.Theme
	Width      int // columns
	CellPixels int
	Division   int // highlighted division, -1 for none
}

// Column returns the column containing view pixel px.
func (b MeasureBar) Column(px int) int {
	return px / b.CellPixels
}

// Pixel returns the view pixel at the middle of column col.
func (b MeasureBar) Pixel(col int) int {
	return col*b.CellPixels + b.CellPixels/2
}

func (b MeasureBar) Render() string {
	if b.Width <= 0 || b.CellPixels <= 0 {
		return ""
	}
	tl := b.Timeline
	sym := b.Theme.Symbols

	labels := []rune(strings.Repeat(" ", b.Width))
	cells := make([]rune, b.Width)
	kinds := make([]cellKind, b.Width)
	labelFree := 0

	changes := make(map[int]timeline.TimeSigChange, tl.TimeSignatureCount())
	for _, c := range tl.TimeSignatures() {
		changes[c.Measure] = c
	}
	info := tl.Geometry()
	end := tl.PixelAtMeasureStart(tl.MeasureCount())

	for col := range b.Width {
		x0 := col * b.CellPixels
		x1 := x0 + b.CellPixels
		if x1 <= timeline.LeftMargin || x0 >= end {
			cells[col], kinds[col] = ' ', cellBlank
			continue
		}

		m := tl.MeasureIndexAtPixel(x0)
		start := tl.PixelAtMeasureStart(m)
		next := tl.PixelAtMeasureStart(m + 1)
		selected := m < len(info) && info[m].Selected

		switch {
		case next >= x0 && next < x1 && m+1 < tl.MeasureCount():
			m++
			fallthrough
		case start >= x0 && start < x1:
			if _, ok := changes[m]; ok {
				cells[col], kinds[col] = sym.TimeSig, cellTimeSig
			} else {
				cells[col], kinds[col] = sym.BarLine, cellBar
			}
			if col >= labelFree {
				label := fmt.Sprint(m + 1)
				if c, ok := changes[m]; ok {
					label += fmt.Sprintf(" %d/%d", c.Num, c.Denom)
				}
				labelFree = col + writeLabel(labels, col, label) + 1
			}
		case selected:
			cells[col], kinds[col] = sym.Selected, cellSelected
		case onBeat(tl, m, start, x0, x1):
			cells[col], kinds[col] = sym.Beat, cellBeat
		default:
			cells[col], kinds[col] = sym.Fill, cellFill
		}
	}

	cursor := []rune(strings.Repeat(" ", b.Width))
	if b.Division >= 0 && b.Division <= tl.MeasureCount() {
		if col := b.Column(tl.PixelAtMeasureStart(b.Division)); col >= 0 && col < b.Width {
			cursor[col] = sym.Cursor
		}
	}

	labelStyle := lipgloss.NewStyle().Foreground(b.Theme.FG())
	cursorStyle := lipgloss.NewStyle().Foreground(b.Theme.Cursor())
	return cursorStyle.Render(string(cursor)) + "\n" +
		labelStyle.Render(string(labels)) + "\n" +
		b.renderCells(cells, kinds)
}

// onBeat reports whether a beat line of measure m falls in [x0, x1).
func onBeat(tl *timeline.Timeline, m, start, x0, x1 int) bool {
	beat := tl.BeatLengthInPixels() * 4 / float64(tl.ActiveDenominator(m))
	if beat < 1 {
		return false
	}
	for i := 1; i < tl.ActiveNumerator(m); i++ {
		x := start + int(float64(i)*beat)
		if x >= x0 && x < x1 {
			return true
		}
	}
	return false
}

func writeLabel(row []rune, col int, label string) int {
	n := 0
	for _, r := range label {
		if col+n >= len(row) {
			break
		}
		row[col+n] = r
		n++
	}
	return n
}

// renderCells styles runs of equal kind together.
func (b MeasureBar) renderCells(cells []rune, kinds []cellKind) string {
	styles := map[cellKind]lipgloss.Style{
		cellBlank:    lipgloss.NewStyle(),
		cellFill:     lipgloss.NewStyle(),
		cellBeat:     lipgloss.NewStyle().Foreground(b.Theme.Muted()),
		cellBar:      lipgloss.NewStyle().Foreground(b.Theme.FG()),
		cellTimeSig:  lipgloss.NewStyle().Foreground(b.Theme.Accent()).Bold(true),
		cellSelected: lipgloss.NewStyle().Foreground(b.Theme.Active()),
	}

	var out strings.Builder
	for i := 0; i < len(cells); {
		j := i
		for j < len(cells) && kinds[j] == kinds[i] {
			j++
		}
		out.WriteString(styles[kinds[i]].Render(string(cells[i:j])))
		i = j
	}
	return out.String()
}
