package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/cueline/internal/events"
	"github.com/alfredjeanlab/cueline/internal/model"
	"github.com/alfredjeanlab/cueline/internal/ui"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	Short:   "Follow the broadcast as cues fire and clear",
	GroupID: "show",
	RunE: func(cmd *cobra.Command, args []string) error {
		interval, _ := cmd.Flags().GetDuration("interval")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		// Print whatever is showing right now before following changes.
		cue, err := showClient.GetBroadcast(ctx)
		if err != nil {
			return err
		}
		printCueView(cue)

		// Event-driven when NATS is reachable, polling otherwise.
		if natsURL := os.Getenv("CUELINE_NATS_URL"); natsURL != "" {
			return watchNATS(ctx, natsURL)
		}
		return watchPoll(ctx, interval, cue)
	},
}

func init() {
	watchCmd.Flags().Duration("interval", 2*time.Second, "polling interval when NATS is not configured")
}

// watchNATS follows cue events pushed over NATS.
func watchNATS(ctx context.Context, natsURL string) error {
	sub, err := events.NewNATSSubscriber(natsURL)
	if err != nil {
		return err
	}
	defer sub.Close()

	fired, cancelFired, err := sub.Subscribe(events.TopicCueFired)
	if err != nil {
		return err
	}
	defer cancelFired()

	injected, cancelInjected, err := sub.Subscribe(events.TopicCueInjected)
	if err != nil {
		return err
	}
	defer cancelInjected()

	cleared, cancelCleared, err := sub.Subscribe(events.TopicCueCleared)
	if err != nil {
		return err
	}
	defer cancelCleared()

	fmt.Println(ui.RenderMuted("watching (event mode, ctrl-c to stop)"))
	for {
		select {
		case <-ctx.Done():
			return nil
		case data := <-fired:
			printCueEvent("fired", data)
		case data := <-injected:
			printCueEvent("injected", data)
		case data := <-cleared:
			var ev events.CueCleared
			if err := json.Unmarshal(data, &ev); err != nil {
				continue
			}
			fmt.Printf("%s %s %s\n", timestamp(), ui.RenderMuted("cleared"), ev.CueID)
		}
	}
}

func printCueEvent(action string, data []byte) {
	var ev events.CueFired
	if err := json.Unmarshal(data, &ev); err != nil || ev.Cue == nil {
		return
	}
	fmt.Printf("%s %s\n", timestamp(), ui.RenderAccent(action))
	view := model.ViewOf(ev.Cue)
	printCueView(&view)
}

// watchPoll polls the broadcast endpoint and prints changes.
func watchPoll(ctx context.Context, interval time.Duration, last *model.CueView) error {
	fmt.Println(ui.RenderMuted("watching (polling mode, ctrl-c to stop)"))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			cue, err := showClient.GetBroadcast(ctx)
			if err != nil {
				fmt.Fprintf(os.Stderr, "poll error: %v\n", err)
				continue
			}
			if sameView(last, cue) {
				continue
			}
			last = cue
			fmt.Printf("%s\n", timestamp())
			printCueView(cue)
		}
	}
}

func sameView(a, b *model.CueView) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID == b.ID && a.Kind == b.Kind && a.Content == b.Content
}

func timestamp() string {
	return ui.RenderMuted(time.Now().Format("15:04:05"))
}
