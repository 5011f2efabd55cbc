package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"titledoctor/internal/api"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon and pipeline status",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			status, err := ctx.client().Status(cmd.Context())
			if err != nil {
				fmt.Fprintln(out, renderStatusLine("Daemon", statusError, "not running", colorize))
				return nil
			}

			printStatus(cmd, status, colorize)
			return nil
		},
	}
}

func printStatus(cmd *cobra.Command, status api.DaemonStatus, colorize bool) {
	out := cmd.OutOrStdout()

	for _, line := range renderSectionHeader("Daemon", colorize) {
		fmt.Fprintln(out, line)
	}
	kind := statusOK
	message := "running (pid " + strconv.Itoa(status.PID) + ")"
	if !status.Running {
		kind = statusError
		message = "not running"
	}
	fmt.Fprintln(out, renderStatusLine("Daemon", kind, message, colorize))
	fmt.Fprintln(out, renderStatusLine("Database", statusInfo, status.JobsDBPath, colorize))
	fmt.Fprintln(out, renderStatusLine("Lock", statusInfo, status.LockFilePath, colorize))

	fmt.Fprintln(out)
	for _, line := range renderSectionHeader("Stages", colorize) {
		fmt.Fprintln(out, line)
	}
	for _, stageStatus := range status.Stages {
		kind := statusOK
		message := "ready"
		if !stageStatus.Ready {
			kind = statusError
			message = stageStatus.Detail
			if message == "" {
				message = "not ready"
			}
		}
		fmt.Fprintln(out, renderStatusLine(stageStatus.Name, kind, message, colorize))
	}

	fmt.Fprintln(out)
	for _, line := range renderSectionHeader("Jobs", colorize) {
		fmt.Fprintln(out, line)
	}
	summary := status.Summary
	fmt.Fprintln(out, renderStatusLine("Total", statusInfo, strconv.Itoa(summary.Total), colorize))
	fmt.Fprintln(out, renderStatusLine("Queued", statusInfo, strconv.Itoa(summary.Queued), colorize))
	fmt.Fprintln(out, renderStatusLine("Processing", statusInfo, strconv.Itoa(summary.Processing), colorize))
	fmt.Fprintln(out, renderStatusLine("Completed", statusOK, strconv.Itoa(summary.Completed), colorize))
	failedKind := statusInfo
	if summary.Failed > 0 {
		failedKind = statusError
	}
	fmt.Fprintln(out, renderStatusLine("Failed", failedKind, strconv.Itoa(summary.Failed), colorize))
}
