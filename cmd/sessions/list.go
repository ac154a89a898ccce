package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var listLimit int

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the most recent sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runList(listLimit)
	},
}

func init() {
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "number of sessions to show")
	rootCmd.AddCommand(listCmd)
}

func runList(limit int) error {
	sessions, err := Journal.Recent(limit)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	if len(sessions) == 0 {
		fmt.Fprintln(out, "No sessions recorded.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tSOURCE\tDISPLAY\tSTARTED\tDURATION\tFRAMES\tFACES\tSTOP")
	fmt.Fprintln(w, "--\t------\t-------\t-------\t--------\t------\t-----\t----")

	for _, s := range sessions {
		stop := s.StopReason
		if s.Running() {
			stop = "running"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			s.ID, s.Source, s.DisplayMode, s.StartedAt.Local().Format("2006-01-02 15:04"),
			s.Duration().Round(time.Second), s.Frames, s.Faces, stop)
	}
	return w.Flush()
}
