package main

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"go-measure/debug"
	"go-measure/midi"
	"go-measure/sequencer"
)

var debugLog string

var rootCmd = &cobra.Command{
	Use:   "measuretool",
	Short: "Inspect and edit the measures of a sequence",
	Long: `measuretool reads Standard MIDI Files and go-measure sequence documents,
prints their measure layout and applies structural edits without the editor.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if debugLog != "" {
			return debug.Enable(debugLog)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		debug.Disable()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&debugLog, "debug-log", "", "write a debug log to this file")
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

// save writes seq as a MIDI file or a sequence document, by extension.
func save(seq *sequencer.Sequence, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mid", ".midi":
		return midi.WriteFile(seq, path)
	default:
		return seq.SaveFile(path)
	}
}
