package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/alfredjeanlab/cueline/internal/model"
	"github.com/alfredjeanlab/cueline/internal/ui"
)

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// printCueView renders a participant-facing cue view.
func printCueView(view *model.CueView) {
	if view == nil || view.Kind == model.KindNone {
		if view != nil && view.ID != "" {
			fmt.Printf("%s (was %s)\n", ui.RenderMuted("nothing showing"), view.ID)
		} else {
			fmt.Println(ui.RenderMuted("nothing showing"))
		}
		return
	}

	fmt.Printf("[%s] %s\n", ui.RenderKind(view.Kind), view.ID)
	if view.Content != "" {
		fmt.Printf("  %s\n", view.Content)
	}
	if view.Placeholder != "" {
		fmt.Printf("  %s\n", ui.RenderMuted("hint: "+view.Placeholder))
	}
	if len(view.Options) > 0 {
		fmt.Printf("  options: %s\n", strings.Join(view.Options, ", "))
	}
	if view.Component != "" {
		fmt.Printf("  component: %s\n", view.Component)
	}
}

// printCueTable renders the operator view of the full cue list.
func printCueTable(cues []*model.Cue) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tTRIGGER\tMANDATORY\tAUTO-HIDE\tCONTENT")
	for _, c := range cues {
		trigger := ""
		if !c.TriggerAt.IsZero() {
			trigger = c.TriggerAt.Format(time.RFC3339)
		}
		hide := ""
		if c.AutoHideAfter > 0 {
			hide = c.AutoHideAfter.String()
		}
		content := c.Content
		if c.Kind == model.KindComponent {
			content = c.Component
		}
		if len(content) > 40 {
			content = content[:37] + "..."
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%v\t%s\t%s\n",
			c.ID, c.Kind, trigger, c.Mandatory, hide, content)
	}
	w.Flush()
	fmt.Printf("\n%d cues\n", len(cues))
}
