package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"go-measure/midi"
)

func init() {
	rootCmd.AddCommand(convertCmd)
}

var convertCmd = &cobra.Command{
	Use:   "convert IN OUT",
	Short: "Convert between .mid files and sequence documents",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		seq, err := midi.Load(args[0])
		if err != nil {
			return err
		}
		if err := save(seq, args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d measures)\n", args[1], seq.Timeline().MeasureCount())
		return nil
	},
}
