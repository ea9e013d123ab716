package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/cueline/internal/model"
	"github.com/alfredjeanlab/cueline/internal/timeline"
	"github.com/alfredjeanlab/cueline/internal/ui"
)

var validateCmd = &cobra.Command{
	Use:     "validate <show-file>",
	Short:   "Parse and validate a show file without loading it",
	GroupID: "system",
	Args:    cobra.ExactArgs(1),
	// No server connection needed.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		show, err := timeline.LoadFile(args[0])
		if err != nil {
			return err
		}

		tl, err := show.Resolve(time.Now())
		if err != nil {
			var ve *model.ValidationError
			if errors.As(err, &ve) {
				fmt.Printf("%s: %d problem(s)\n", args[0], len(ve.Errors))
				for _, fe := range ve.Errors {
					fmt.Printf("  %s: %s\n", ui.RenderWrong(fe.Field), fe.Message)
				}
				return fmt.Errorf("validation failed")
			}
			return err
		}

		fmt.Printf("%s %s: %q, %d cues\n", ui.RenderCorrect("ok"), args[0], show.Title, tl.Len())
		return nil
	},
}
