package widgets

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}

// RenderKeyHelp lays sections out side by side, keys drawn with keyStyle.
func RenderKeyHelp(sections []KeySection, keyStyle lipgloss.Style) string {
	var columns []string
	for _, sec := range sections {
		var lines []string
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, "  "+keyStyle.Width(8).Render(k.Key)+" "+k.Desc)
		}
		columns = append(columns, strings.Join(lines, "\n"))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, spaced(columns)...)
}

func spaced(columns []string) []string {
	out := make([]string, 0, 2*len(columns))
	for i, c := range columns {
		if i > 0 {
			out = append(out, "   ")
		}
		out = append(out, c)
	}
	return out
}
