package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/cueline/internal/client"
	"github.com/alfredjeanlab/cueline/internal/ui"
)

var (
	serverURL  string
	authToken  string
	jsonOutput bool

	showClient client.ShowClient
)

func defaultServer() string {
	if s := os.Getenv("CUELINE_SERVER"); s != "" {
		return s
	}
	return "http://localhost:8080"
}

func defaultToken() string {
	return os.Getenv("CUELINE_AUTH_TOKEN")
}

var rootCmd = &cobra.Command{
	Use:   "cueline <command>",
	Short: "CLI client for the cueline show server",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !ui.ShouldUseColor() {
			ui.ForceNoColor()
		}
		showClient = client.NewHTTPClient(serverURL, authToken)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if showClient != nil {
			showClient.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultServer(), "HTTP server URL")
	rootCmd.PersistentFlags().StringVar(&authToken, "token", defaultToken(), "bearer token for authenticated servers")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	rootCmd.AddGroup(
		&cobra.Group{ID: "show", Title: "Show control:"},
		&cobra.Group{ID: "session", Title: "Participant session:"},
		&cobra.Group{ID: "system", Title: "System:"},
	)
	cobra.EnableCommandSorting = false

	// Show control
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(cuesCmd)
	rootCmd.AddCommand(broadcastCmd)
	rootCmd.AddCommand(watchCmd)

	// Participant session
	rootCmd.AddCommand(joinCmd)
	rootCmd.AddCommand(answerCmd)
	rootCmd.AddCommand(rosterCmd)

	// System
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(healthCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
