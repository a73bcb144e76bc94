package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-measure/action"
	"go-measure/config"
	"go-measure/debug"
	"go-measure/sequencer"
	"go-measure/theme"
	"go-measure/timeline"
	"go-measure/widgets"
)

var denominators = []int{1, 2, 4, 8, 16, 32, 64}

// rows above the measure bar: blank line, header, blank line
const barTop = 3

var keyStyle = lipgloss.NewStyle().Bold(true)

type Model struct {
	Seq     *sequencer.Sequence
	Theme   *theme.Theme
	Project string

	history    action.History
	browser    *Browser
	cellPixels int
	width      int
	division   int // division under the pointer, -1 when unknown
	anchor     int // first clicked measure of a selection, -1 for none
	status     string
	quitting   bool
}

func NewModel(seq *sequencer.Sequence, cfg *config.Config, th *theme.Theme) Model {
	return Model{
		Seq:        seq,
		Theme:      th,
		Project:    seq.Name,
		cellPixels: cfg.CellPixels,
		width:      80,
		division:   -1,
		anchor:     -1,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tea.KeyMsg:
		m.status = ""
		if m.browser != nil {
			seq, done := m.browser.HandleKey(msg.String())
			if seq != nil {
				m.open(seq)
			}
			if done {
				m.browser = nil
			}
			return m, nil
		}
		if m.handleKey(msg.String()) {
			m.quitting = true
			return m, tea.Quit
		}

	case tea.MouseMsg:
		m.handleMouse(msg)
	}

	return m, nil
}

func (m *Model) handleKey(key string) (quit bool) {
	tl := m.Seq.Timeline()

	switch key {
	case "q", "ctrl+c":
		return true

	case "left", "h":
		m.Seq.SetXScroll(m.Seq.XScrollInPixels() - 4*m.cellPixels)
	case "right", "l":
		m.Seq.SetXScroll(m.Seq.XScrollInPixels() + 4*m.cellPixels)
	case "+", "=":
		m.Seq.SetZoomPercent(m.Seq.ZoomPercent() + 10)
	case "-", "_":
		m.Seq.SetZoomPercent(m.Seq.ZoomPercent() - 10)

	case "i":
		at := m.division
		if at < 0 {
			if from, _, ok := tl.SelectedMeasures(); ok {
				at = from
			} else {
				at = tl.MeasureCount()
			}
		}
		m.do(action.NewInsertMeasures(m.Seq, min(at, tl.MeasureCount()), 1))

	case "x":
		from, to, ok := tl.SelectedMeasures()
		if !ok {
			m.status = "nothing selected"
			return false
		}
		if to-from >= tl.MeasureCount() {
			m.status = "cannot remove every measure"
			return false
		}
		m.do(action.NewRemoveMeasures(m.Seq, from, to))
		tl.Unselect()

	case "u":
		if a, ok := m.history.Undo(); ok {
			m.status = "undid " + a.Name()
		} else {
			m.status = "nothing to undo"
		}
	case "ctrl+r":
		if a, ok := m.history.Redo(); ok {
			m.status = "redid " + a.Name()
		}

	case "t":
		from, _, ok := tl.SelectedMeasures()
		if !ok {
			m.status = "select a measure first"
			return false
		}
		tl.SetVariableLengthMode(true)
		m.report(tl.SetTimeSignatureAt(from, timeline.Inherit, timeline.Inherit))
		tl.SelectMeasures(from, from+1)
	case "e":
		m.report(tl.EraseTimeSignature(tl.SelectedTimeSignature()))
	case "n", "N":
		c := tl.TimeSignature(tl.SelectedTimeSignature())
		num := c.Num + 1
		if key == "N" {
			num = c.Num - 1
		}
		m.report(tl.SetSelectedTimeSignature(num, c.Denom))
	case "d", "D":
		c := tl.TimeSignature(tl.SelectedTimeSignature())
		m.report(tl.SetSelectedTimeSignature(c.Num, stepDenominator(c.Denom, key == "d")))
	case "v":
		tl.SetVariableLengthMode(!tl.IsVariableLengthMode())

	case "s":
		name, err := sequencer.SaveProject(m.Seq, m.Project, "")
		if err != nil {
			m.status = "save failed: " + err.Error()
		} else {
			m.status = "saved " + name
		}

	case "o":
		m.browser = NewBrowser()

	case "esc":
		tl.Unselect()
		m.anchor = -1
	}
	return false
}

// open replaces the edited sequence. Undo history does not carry over.
func (m *Model) open(seq *sequencer.Sequence) {
	seq.SetZoomPercent(m.Seq.ZoomPercent())
	m.Seq = seq
	m.Project = seq.Name
	m.history.Clear()
	m.division = -1
	m.anchor = -1
	m.status = "opened " + seq.Name
	debug.Log("tui", "opened %s", seq.Name)
}

func stepDenominator(denom int, up bool) int {
	for i, d := range denominators {
		if d != denom {
			continue
		}
		if up && i+1 < len(denominators) {
			return denominators[i+1]
		}
		if !up && i > 0 {
			return denominators[i-1]
		}
	}
	return denom
}

func (m *Model) do(a action.Action) {
	m.history.Do(a)
	m.status = a.Name()
}

func (m *Model) report(err error) {
	if err != nil {
		m.status = err.Error()
		debug.Log("tui", "%v", err)
	}
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	if m.browser != nil {
		return
	}
	tl := m.Seq.Timeline()
	px := msg.X*m.cellPixels + m.cellPixels/2
	if px < timeline.LeftMargin {
		m.division = -1
		return
	}

	m.division = min(tl.MeasureDivisionIndexAtPixel(px), tl.MeasureCount())

	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return
	}
	if msg.Y < barTop || msg.Y > barTop+2 {
		return
	}

	measure := tl.MeasureIndexAtPixel(px)
	if measure >= tl.MeasureCount() {
		return
	}
	if msg.Shift && m.anchor >= 0 {
		tl.SelectMeasures(min(m.anchor, measure), max(m.anchor, measure)+1)
	} else {
		m.anchor = measure
		tl.SelectMeasures(measure, measure+1)
	}

	// clicking a change selects it
	for i, c := range tl.TimeSignatures() {
		if c.Measure == measure {
			tl.SelectTimeSignature(i)
		}
	}
	debug.Log("tui", "click at x=%d (pixel %d) selects measure %d", msg.X, px, measure)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.browser != nil {
		return "\n" + m.browser.View()
	}
	tl := m.Seq.Timeline()

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	statusStyle := lipgloss.NewStyle().Foreground(m.Theme.Warning())

	mode := "uniform"
	if tl.IsVariableLengthMode() {
		mode = "variable"
	}
	name := m.Seq.Name
	if name == "" {
		name = "untitled"
	}
	header := headerStyle.Render(fmt.Sprintf("go-measure  %s  %d measures  %.0fbpm  %d%%  %s  %d tpb",
		name, tl.MeasureCount(), m.Seq.Tempo(), m.Seq.ZoomPercent(), mode, m.Seq.TicksPerBeat()))

	bar := widgets.MeasureBar{
		Timeline:   tl,
		Theme:      m.Theme,
		Width:      m.width,
		CellPixels: m.cellPixels,
		Division:   m.division,
	}

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(bar.Render())
	out.WriteString("\n\n")
	out.WriteString(m.selectionInfo())
	out.WriteString("\n")
	if m.status != "" {
		out.WriteString(statusStyle.Render(m.status))
	}
	out.WriteString("\n\n")
	out.WriteString(dimStyle.Render(widgets.RenderKeyHelp(keyHelp, keyStyle.Foreground(m.Theme.FG()))))

	return out.String()
}

func (m Model) selectionInfo() string {
	tl := m.Seq.Timeline()
	sig := tl.TimeSignature(tl.SelectedTimeSignature())
	sigInfo := fmt.Sprintf("time signature %d/%d at measure %d", sig.Num, sig.Denom, sig.Measure+1)

	from, to, ok := tl.SelectedMeasures()
	if !ok {
		return fmt.Sprintf("%d ticks  |  %s", tl.TotalTicks(), sigInfo)
	}
	return fmt.Sprintf("measures %d-%d  ticks %d-%d  %d/%d  |  %s",
		from+1, to, tl.TickAtMeasureStart(from), tl.TickAtMeasureEnd(to-1),
		tl.ActiveNumerator(from), tl.ActiveDenominator(from), sigInfo)
}

var keyHelp = []widgets.KeySection{
	{Title: "Measures", Keys: []widgets.KeyBinding{
		{Key: "click", Desc: "select (shift extends)"},
		{Key: "i", Desc: "insert at pointer"},
		{Key: "x", Desc: "remove selection"},
		{Key: "u / ^r", Desc: "undo / redo"},
	}},
	{Title: "Time signatures", Keys: []widgets.KeyBinding{
		{Key: "t", Desc: "add at selection"},
		{Key: "n / N", Desc: "numerator +/-"},
		{Key: "d / D", Desc: "denominator +/-"},
		{Key: "e", Desc: "erase selected"},
	}},
	{Title: "View", Keys: []widgets.KeyBinding{
		{Key: "← / →", Desc: "scroll"},
		{Key: "+ / -", Desc: "zoom"},
		{Key: "s / o", Desc: "save / open"},
		{Key: "q", Desc: "quit"},
	}},
}
