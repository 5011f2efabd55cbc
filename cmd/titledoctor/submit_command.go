package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "submit <channel> <email>",
		Short: "Queue a channel for title improvement",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := ctx.client().Submit(cmd.Context(), args[0], args[1])
			if err != nil {
				return fmt.Errorf("submit: %w (is the daemon running? start it with `titledoctord`)", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, resp.Message)
			fmt.Fprintf(out, "Job ID: %s\n", resp.JobID)
			return nil
		},
	}
}
