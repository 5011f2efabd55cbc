package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"titledoctor/internal/api"
	"titledoctor/internal/jobs"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect and manage submitted jobs",
	}

	jobsCmd.AddCommand(newJobsListCommand(ctx))
	jobsCmd.AddCommand(newJobsShowCommand(ctx))
	jobsCmd.AddCommand(newJobsClearCommand(ctx))

	return jobsCmd
}

func newJobsListCommand(ctx *commandContext) *cobra.Command {
	var listStatuses []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withJobs(cmd.Context(), func(client *api.Client, store *jobs.Store) error {
				var views []api.JobView
				if client != nil {
					fetched, err := client.Jobs(cmd.Context(), listStatuses...)
					if err != nil {
						return err
					}
					views = fetched
				} else {
					var statuses []jobs.Status
					for _, value := range listStatuses {
						if parsed, ok := jobs.ParseStatus(value); ok {
							statuses = append(statuses, parsed)
						}
					}
					records, err := store.List(cmd.Context(), statuses...)
					if err != nil {
						return err
					}
					for _, record := range records {
						views = append(views, api.FromRecord(record))
					}
				}

				if len(views) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No jobs found")
					return nil
				}
				out := renderTable(
					[]string{"Job ID", "Channel", "Status", "Email", "Created"},
					buildJobRows(views),
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
				)
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVar(&listStatuses, "status", nil, "Filter by status (repeatable)")
	return cmd
}

func newJobsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <job-id>",
		Short: "Show one job in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withJobs(cmd.Context(), func(client *api.Client, store *jobs.Store) error {
				var view api.JobView
				if client != nil {
					fetched, err := client.Job(cmd.Context(), args[0])
					if err != nil {
						return err
					}
					view = fetched
				} else {
					record, err := store.Get(cmd.Context(), args[0])
					if err != nil {
						return err
					}
					if record == nil {
						return fmt.Errorf("job %s not found", args[0])
					}
					view = api.FromRecord(record)
				}

				printJobDetail(cmd, view)
				return nil
			})
		},
	}
}

func newJobsClearCommand(ctx *commandContext) *cobra.Command {
	var completedOnly bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove job records",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := jobs.Open(ctx.configValue())
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.Clear(cmd.Context(), completedOnly)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d job(s)\n", removed)
			return nil
		},
	}

	cmd.Flags().BoolVar(&completedOnly, "completed", false, "Only remove completed jobs")
	return cmd
}

func buildJobRows(views []api.JobView) [][]string {
	rows := make([][]string, 0, len(views))
	for _, view := range views {
		channel := view.Channel
		if view.ChannelName != "" {
			channel = view.ChannelName
		}
		rows = append(rows, []string{
			shortID(view.JobID),
			truncate(channel, 30),
			view.Status,
			view.Email,
			view.CreatedAt.Local().Format(time.DateTime),
		})
	}
	return rows
}

func shortID(jobID string) string {
	if idx := strings.IndexByte(jobID, '-'); idx > 0 {
		return jobID[:idx]
	}
	return jobID
}

func printJobDetail(cmd *cobra.Command, view api.JobView) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Job ID:   %s\n", view.JobID)
	fmt.Fprintf(out, "Channel:  %s\n", view.Channel)
	if view.ChannelName != "" {
		fmt.Fprintf(out, "Resolved: %s (%s)\n", view.ChannelName, view.ChannelID)
	}
	fmt.Fprintf(out, "Email:    %s\n", view.Email)
	fmt.Fprintf(out, "Status:   %s\n", view.Status)
	if view.ErrorMessage != "" {
		fmt.Fprintf(out, "Error:    %s\n", view.ErrorMessage)
	}
	if view.DeliveryID != "" {
		fmt.Fprintf(out, "Delivery: %s\n", view.DeliveryID)
	}
	fmt.Fprintf(out, "Created:  %s\n", view.CreatedAt.Local().Format(time.DateTime))
	if view.CompletedAt != nil {
		fmt.Fprintf(out, "Finished: %s\n", view.CompletedAt.Local().Format(time.DateTime))
	}

	if len(view.ImprovedTitles) > 0 {
		rows := make([][]string, 0, len(view.ImprovedTitles))
		for _, title := range view.ImprovedTitles {
			rows = append(rows, []string{
				truncate(title.Original, 40),
				truncate(title.Improved, 40),
			})
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, renderTable(
			[]string{"Original", "Improved"},
			rows,
			[]columnAlignment{alignLeft, alignLeft},
		))
	} else if len(view.Videos) > 0 {
		rows := make([][]string, 0, len(view.Videos))
		for _, video := range view.Videos {
			rows = append(rows, []string{truncate(video.Title, 60), video.VideoID})
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, renderTable(
			[]string{"Title", "Video ID"},
			rows,
			[]columnAlignment{alignLeft, alignLeft},
		))
	}
}
