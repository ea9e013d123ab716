package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/cueline/internal/ui"
)

var joinCmd = &cobra.Command{
	Use:     "join <participant-key>",
	Short:   "Poll the session view for a participant",
	GroupID: "session",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := showClient.Session(context.Background(), args[0])
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(resp)
		}
		fmt.Printf("Participant: %s (cursor %d)\n", resp.ParticipantID, resp.Cursor)
		printCueView(&resp.Cue)
		return nil
	},
}

var answerCmd = &cobra.Command{
	Use:     "answer <participant-key> <cue-id> <answer>",
	Short:   "Submit an answer for a participant",
	GroupID: "session",
	Args:    cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := showClient.SubmitAnswer(context.Background(), args[0], args[1], args[2])
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(result)
		}

		if result.Duplicate {
			fmt.Println(ui.RenderWarn("already answered, submission ignored"))
			printCueView(&result.Next)
			return nil
		}

		switch {
		case result.Correct == nil:
			fmt.Println("answer recorded")
		case *result.Correct:
			fmt.Println(ui.RenderCorrect("correct"))
		default:
			fmt.Println(ui.RenderWrong("wrong"))
		}
		if result.Injected > 0 {
			fmt.Printf("%d follow-up cue(s) injected\n", result.Injected)
		}
		printCueView(&result.Next)
		return nil
	},
}
