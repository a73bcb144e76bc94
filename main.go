package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"go-measure/config"
	"go-measure/debug"
	"go-measure/midi"
	"go-measure/sequencer"
	"go-measure/theme"
	"go-measure/tui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if cfg.DebugLog {
		if err := debug.Enable(""); err != nil {
			fmt.Printf("Warning: debug log disabled: %v\n", err)
		}
		defer debug.Disable()
	}

	th := theme.New(theme.LoadOrDefault(cfg.Palette))

	seq, err := openSequence(cfg, os.Args[1:])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	m := tui.NewModel(seq, cfg, th)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

// openSequence loads the file named on the command line, or creates an empty
// sequence from the config.
func openSequence(cfg *config.Config, args []string) (*sequencer.Sequence, error) {
	if len(args) > 0 {
		seq, err := midi.Load(args[0])
		if err != nil {
			return nil, err
		}
		seq.SetZoomPercent(cfg.ZoomPercent)
		return seq, nil
	}

	seq := sequencer.New(cfg.TicksPerBeat, cfg.MeasureCount)
	seq.SetZoomPercent(cfg.ZoomPercent)

	sess := seq.Timeline().BeginImport()
	err := sess.AddTimeSignature(0, cfg.Numerator, cfg.Denominator)
	sess.Close()
	return seq, err
}
