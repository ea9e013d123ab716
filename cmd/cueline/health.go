package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:     "health",
	Short:   "Check server health",
	GroupID: "system",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := showClient.Health(context.Background())
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(map[string]string{"status": status})
		}
		fmt.Println(status)
		return nil
	},
}
