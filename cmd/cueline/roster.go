package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var rosterCmd = &cobra.Command{
	Use:     "roster",
	Short:   "List connected participants and their progress",
	GroupID: "session",
	RunE: func(cmd *cobra.Command, args []string) error {
		staleSecs, _ := cmd.Flags().GetInt("stale-secs")

		resp, err := showClient.GetRoster(context.Background(), staleSecs)
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(resp)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "PARTICIPANT\tKEY\tCURSOR\tLAST\tIDLE\tANSWERS\tSTATE")
		for _, p := range resp.Participants {
			state := "active"
			if p.Dropped {
				state = "dropped"
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%.0fs\t%d\t%s\n",
				p.ParticipantID, p.Key, p.Cursor, p.LastAction, p.IdleSecs, p.AnswerCount, state)
		}
		w.Flush()
		fmt.Printf("\n%d participants\n", resp.Count)
		return nil
	},
}

func init() {
	rosterCmd.Flags().Int("stale-secs", 300, "idle seconds before a participant is excluded")
}
