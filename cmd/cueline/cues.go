package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/cueline/internal/model"
)

var cuesCmd = &cobra.Command{
	Use:     "cues [id]",
	Short:   "List the loaded timeline, or show one cue in full",
	GroupID: "show",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		if len(args) == 1 {
			cue, err := showClient.GetCue(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cue)
		}

		cues, err := showClient.ListCues(ctx)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cues)
		}
		printCueTable(cues)
		return nil
	},
}

var broadcastCmd = &cobra.Command{
	Use:     "broadcast",
	Short:   "Show the cue currently on broadcast",
	GroupID: "show",
	RunE: func(cmd *cobra.Command, args []string) error {
		cue, err := showClient.GetBroadcast(context.Background())
		if err != nil {
			return err
		}

		if jsonOutput {
			if cue == nil {
				return printJSON(map[string]any{"cue": nil})
			}
			return printJSON(cue)
		}
		if cue == nil {
			cue = &model.CueView{Kind: model.KindNone}
		}
		printCueView(cue)
		return nil
	},
}
