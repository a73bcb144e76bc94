package tui

import (
	"fmt"
	"strings"

	"go-measure/sequencer"
	"go-measure/widgets"
)

// Browser lists saved projects and their timestamped saves.
type Browser struct {
	projects []string
	saves    []sequencer.SaveInfo

	projectIdx int
	saveIdx    int
	column     int // 0=projects, 1=saves

	confirmMode   bool
	confirmMsg    string
	confirmAction func()

	err string
}

// NewBrowser creates a browser with the project lists loaded.
func NewBrowser() *Browser {
	b := &Browser{}
	b.Refresh()
	return b
}

// Refresh reloads project and save lists
func (b *Browser) Refresh() {
	projects, err := sequencer.ListProjects()
	if err != nil {
		b.err = err.Error()
	}
	b.projects = projects

	if b.projectIdx >= len(b.projects) {
		b.projectIdx = max(0, len(b.projects)-1)
	}

	b.saves = nil
	if len(b.projects) > 0 {
		saves, err := sequencer.ListSaves(b.projects[b.projectIdx])
		if err != nil {
			b.err = err.Error()
		}
		b.saves = saves
	}

	if b.saveIdx >= len(b.saves) {
		b.saveIdx = max(0, len(b.saves)-1)
	}
}

// HandleKey processes a key. It returns a loaded sequence when the user
// picked one, and done when the browser should close.
func (b *Browser) HandleKey(key string) (loaded *sequencer.Sequence, done bool) {
	if b.confirmMode {
		switch key {
		case "y", "Y":
			if b.confirmAction != nil {
				b.confirmAction()
			}
			b.confirmMode = false
			b.confirmAction = nil
			b.Refresh()
		case "n", "N", "esc", "q":
			b.confirmMode = false
			b.confirmAction = nil
		}
		return nil, false
	}

	switch key {
	case "esc", "q", "o":
		return nil, true
	case "h", "left":
		b.column = 0
	case "l", "right":
		if len(b.projects) > 0 {
			b.column = 1
		}
	case "j", "down":
		if b.column == 0 && b.projectIdx < len(b.projects)-1 {
			b.projectIdx++
			b.saveIdx = 0
			b.Refresh()
		} else if b.column == 1 && b.saveIdx < len(b.saves)-1 {
			b.saveIdx++
		}
	case "k", "up":
		if b.column == 0 && b.projectIdx > 0 {
			b.projectIdx--
			b.saveIdx = 0
			b.Refresh()
		} else if b.column == 1 && b.saveIdx > 0 {
			b.saveIdx--
		}
	case "enter", " ":
		return b.loadSelected()
	case "d":
		b.deleteSelected()
	}
	return nil, false
}

func (b *Browser) loadSelected() (*sequencer.Sequence, bool) {
	if len(b.projects) == 0 {
		return nil, false
	}

	project := b.projects[b.projectIdx]
	filename := ""
	if b.column == 1 && len(b.saves) > 0 {
		filename = b.saves[b.saveIdx].Filename
	}

	seq, err := sequencer.LoadProject(project, filename)
	if err != nil {
		b.err = err.Error()
		return nil, false
	}
	if seq.Name == "" {
		seq.Name = project
	}
	return seq, true
}

func (b *Browser) deleteSelected() {
	if b.column == 0 {
		if len(b.projects) == 0 {
			return
		}
		name := b.projects[b.projectIdx]
		b.confirmMsg = fmt.Sprintf("Delete project '%s' and all saves?", name)
		b.confirmAction = func() {
			if err := sequencer.DeleteProject(name); err != nil {
				b.err = err.Error()
			}
		}
	} else {
		if len(b.saves) == 0 {
			return
		}
		project := b.projects[b.projectIdx]
		save := b.saves[b.saveIdx]
		b.confirmMsg = fmt.Sprintf("Delete save '%s'?", save.Timestamp.Format("2006-01-02 15:04:05"))
		b.confirmAction = func() {
			if err := sequencer.DeleteSave(project, save.Filename); err != nil {
				b.err = err.Error()
			}
		}
	}
	b.confirmMode = true
}

func (b *Browser) View() string {
	var out strings.Builder

	if b.confirmMode {
		out.WriteString("─────────────────────────────────────────────────\n")
		out.WriteString(fmt.Sprintf("\n%s\n\n", b.confirmMsg))
		out.WriteString("  [y] Yes    [n] No\n")
		out.WriteString("\n─────────────────────────────────────────────────\n")
		return out.String()
	}

	out.WriteString("Projects                    Saves\n")
	out.WriteString("─────────────────────────────────────────────────\n")

	maxRows := 12
	rows := max(min(maxRows, max(1, len(b.projects))), min(maxRows, max(1, len(b.saves))))

	for row := 0; row < rows; row++ {
		if row < len(b.projects) {
			name := b.projects[row]
			if len(name) > 20 {
				name = name[:17] + "..."
			}
			out.WriteString(fmt.Sprintf("%s%-20s", b.marker(row == b.projectIdx, 0), name))
		} else {
			out.WriteString(strings.Repeat(" ", 22))
		}

		out.WriteString("    ")

		if row < len(b.saves) {
			save := b.saves[row]
			display := save.Timestamp.Format("01-02 15:04")
			if save.Name != "" {
				display += " " + save.Name
			}
			if len(display) > 24 {
				display = display[:21] + "..."
			}
			out.WriteString(b.marker(row == b.saveIdx, 1) + display)
		}

		out.WriteString("\n")
	}

	if len(b.projects) == 0 {
		out.WriteString("  (no projects yet, press s in the editor to save)\n")
	}
	if b.err != "" {
		out.WriteString("\n" + b.err + "\n")
	}

	out.WriteString("\n")
	out.WriteString(widgets.RenderKeyHelp([]widgets.KeySection{
		{Keys: []widgets.KeyBinding{
			{Key: "h / l", Desc: "switch columns"},
			{Key: "j / k", Desc: "navigate list"},
			{Key: "enter", Desc: "load selected"},
			{Key: "d", Desc: "delete"},
			{Key: "esc", Desc: "back"},
		}},
	}, keyStyle))

	return out.String()
}

func (b *Browser) marker(selected bool, column int) string {
	switch {
	case !selected:
		return "  "
	case b.column == column:
		return "> "
	default:
		return "* "
	}
}
