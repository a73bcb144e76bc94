package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"go-measure/midi"
	"go-measure/sequencer"
)

var inspectMeasures bool

func init() {
	inspectCmd.Flags().BoolVarP(&inspectMeasures, "measures", "m", false, "list every measure")
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect FILE",
	Short: "Print the measure layout of a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		seq, err := midi.Load(args[0])
		if err != nil {
			return err
		}
		inspect(cmd.OutOrStdout(), seq, inspectMeasures)
		return nil
	},
}

func inspect(w io.Writer, seq *sequencer.Sequence, measures bool) {
	tl := seq.Timeline()

	fmt.Fprintf(w, "name:           %s\n", seq.Name)
	fmt.Fprintf(w, "ticks per beat: %d\n", seq.TicksPerBeat())
	fmt.Fprintf(w, "tempo:          %.2f\n", seq.Tempo())
	fmt.Fprintf(w, "measures:       %d (first playable %d)\n", tl.MeasureCount(), tl.FirstMeasure()+1)
	fmt.Fprintf(w, "length:         %d ticks\n", tl.TotalTicks())
	fmt.Fprintf(w, "variable:       %v\n", tl.IsVariableLengthMode())

	fmt.Fprintln(w, "\ntime signatures:")
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  measure\tsignature\ttick")
	for _, c := range tl.TimeSignatures() {
		fmt.Fprintf(tw, "  %d\t%d/%d\t%d\n", c.Measure+1, c.Num, c.Denom, c.Tick)
	}
	tw.Flush()

	fmt.Fprintln(w, "\ntracks:")
	for _, t := range seq.Tracks() {
		fmt.Fprintf(w, "  %-20s channel %2d  %5d notes  %5d controller events\n",
			t.Name, t.Channel+1, len(t.Notes()), len(t.AllControllerEvents()))
	}
	fmt.Fprintf(w, "  %d tempo events, %d text events\n", len(seq.TempoEvents()), len(seq.TextEvents()))

	if !measures {
		return
	}
	fmt.Fprintln(w, "\nmeasures:")
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  measure\tsignature\tstart\tend\tpixels")
	for i, m := range tl.Geometry() {
		fmt.Fprintf(tw, "  %d\t%d/%d\t%d\t%d\t%d-%d\n", i+1,
			tl.ActiveNumerator(i), tl.ActiveDenominator(i), m.Tick, m.EndTick, m.Pixel, m.EndPixel)
	}
	tw.Flush()
}
