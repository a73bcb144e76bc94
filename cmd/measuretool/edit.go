package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"go-measure/action"
	"go-measure/midi"
	"go-measure/sequencer"
)

var (
	editOutput string
	editAt     int
	editCount  int
	editFrom   int
	editTo     int
	editNum    int
	editDenom  int
)

func init() {
	for _, c := range []*cobra.Command{insertCmd, removeCmd, timesigCmd} {
		c.Flags().StringVarP(&editOutput, "output", "o", "", "write here instead of over the input")
		rootCmd.AddCommand(c)
	}
	insertCmd.Flags().IntVar(&editAt, "at", 1, "measure to insert before (1-based)")
	insertCmd.Flags().IntVar(&editCount, "count", 1, "number of measures")
	removeCmd.Flags().IntVar(&editFrom, "from", 1, "first measure to remove (1-based)")
	removeCmd.Flags().IntVar(&editTo, "to", 1, "last measure to remove (1-based, inclusive)")
	timesigCmd.Flags().IntVar(&editAt, "at", 1, "measure (1-based)")
	timesigCmd.Flags().IntVar(&editNum, "num", 4, "numerator")
	timesigCmd.Flags().IntVar(&editDenom, "denom", 4, "denominator")
}

var insertCmd = &cobra.Command{
	Use:   "insert FILE",
	Short: "Insert empty measures",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return edit(cmd, args[0], func(seq *sequencer.Sequence) error {
			at := editAt - 1
			if at < 0 || at > seq.Timeline().MeasureCount() || editCount < 1 {
				return errors.Errorf("cannot insert %d measures at %d", editCount, editAt)
			}
			a := action.NewInsertMeasures(seq, at, editCount)
			a.Perform()
			fmt.Fprintln(cmd.OutOrStdout(), a.Name())
			return nil
		})
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove FILE",
	Short: "Remove measures and everything in them",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return edit(cmd, args[0], func(seq *sequencer.Sequence) error {
			from, to := editFrom-1, editTo
			count := seq.Timeline().MeasureCount()
			if from < 0 || to <= from || to > count || to-from >= count {
				return errors.Errorf("cannot remove measures %d-%d of %d", editFrom, editTo, count)
			}
			a := action.NewRemoveMeasures(seq, from, to)
			a.Perform()
			fmt.Fprintln(cmd.OutOrStdout(), a.Name())
			return nil
		})
	},
}

var timesigCmd = &cobra.Command{
	Use:   "timesig FILE",
	Short: "Add a time signature change",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return edit(cmd, args[0], func(seq *sequencer.Sequence) error {
			tl := seq.Timeline()
			if editAt < 1 {
				return errors.Errorf("measure %d out of range", editAt)
			}
			tl.SetVariableLengthMode(true)
			tx := tl.Begin()
			defer tx.Commit()
			if err := tl.SetTimeSignatureAt(editAt-1, editNum, editDenom); err != nil {
				return errors.Wrapf(err, "%d/%d", editNum, editDenom)
			}
			// an existing change at that measure is only selected
			return tl.SetSelectedTimeSignature(editNum, editDenom)
		})
	},
}

// edit loads path, applies fn and writes the result.
func edit(cmd *cobra.Command, path string, fn func(*sequencer.Sequence) error) error {
	seq, err := midi.Load(path)
	if err != nil {
		return err
	}
	if err := fn(seq); err != nil {
		return err
	}
	out := editOutput
	if out == "" {
		out = path
	}
	return save(seq, out)
}
