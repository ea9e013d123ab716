package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/cueline/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Show the current show state",
	GroupID: "show",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := showClient.GetShow(context.Background())
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(status)
		}

		state := ui.RenderMuted("idle")
		if status.Running {
			state = ui.RenderCorrect("running")
		}
		fmt.Printf("Show:   %s\n", status.Title)
		fmt.Printf("State:  %s\n", state)
		fmt.Printf("Cues:   %d\n", status.CueCount)
		if status.StartedAt != nil {
			fmt.Printf("Since:  %s\n", status.StartedAt.Format(time.RFC3339))
		}
		if status.Broadcast != nil {
			fmt.Println("Broadcast:")
			printCueView(status.Broadcast)
		}
		return nil
	},
}

var startCmd = &cobra.Command{
	Use:     "start",
	Short:   "Start the show clock and arm all cue timers",
	GroupID: "show",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := showClient.StartShow(context.Background())
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(resp)
		}
		fmt.Printf("Show started at %s\n", resp.StartedAt.Format(time.RFC3339))
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:     "reset",
	Short:   "Stop the show, cancel all timers, and wipe participant progress",
	GroupID: "show",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := showClient.ResetShow(context.Background())
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(resp)
		}
		fmt.Printf("Show reset (%d timers cancelled)\n", resp.CancelledTimers)
		return nil
	},
}
