package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <session-id>...",
	Short: "Delete sessions from the journal",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, id := range args {
			if err := Journal.Delete(id); err != nil {
				return err
			}
			fmt.Fprintf(out, "Deleted %s\n", id)
		}
		return nil
	},
}

var missingCmd = &cobra.Command{
	Use:   "missing",
	Short: "Count sessions that started without each cascade",
	RunE: func(cmd *cobra.Command, args []string) error {
		counts, err := Journal.MissingCascades()
		if err != nil {
			return err
		}
		if len(counts) == 0 {
			fmt.Fprintln(out, "Every session loaded every cascade.")
			return nil
		}
		features := make([]string, 0, len(counts))
		for feature := range counts {
			features = append(features, feature)
		}
		sort.Strings(features)
		for _, feature := range features {
			fmt.Fprintf(out, "%s: %d session(s)\n", feature, counts[feature])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(missingCmd)
}
