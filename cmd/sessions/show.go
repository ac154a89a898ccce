package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show one session and the classifiers it ran with",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShow(args[0])
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(id string) error {
	detail, err := Journal.Get(id)
	if err != nil {
		return err
	}

	s := detail.Session
	fmt.Fprintf(out, "Session:    %s\n", s.ID)
	fmt.Fprintf(out, "Source:     %s\n", s.Source)
	fmt.Fprintf(out, "Display:    %s\n", s.DisplayMode)
	fmt.Fprintf(out, "Started:    %s\n", s.StartedAt.Local().Format("2006-01-02 15:04:05"))
	if s.Running() {
		fmt.Fprintln(out, "Ended:      (running)")
	} else {
		fmt.Fprintf(out, "Ended:      %s (%s)\n", s.EndedAt.Local().Format("2006-01-02 15:04:05"), s.StopReason)
	}
	fmt.Fprintf(out, "Frames:     %d\n", s.Frames)
	fmt.Fprintf(out, "Faces:      %d\n", s.Faces)
	fmt.Fprintf(out, "Detections: %d\n\n", s.Detections)

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "FEATURE\tRESOURCE\tSTATUS")
	for _, c := range detail.Classifiers {
		status := "loaded"
		if !c.Loaded {
			status = "failed: " + c.Error
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", c.Feature, c.Resource, status)
	}
	return w.Flush()
}
