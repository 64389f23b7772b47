package commands

import (
	"fmt"

	"github.com/fivetwenty-io/scheduler-client/internal/constants"
	"github.com/fivetwenty-io/scheduler-client/pkg/scheduler"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewJobsCommand creates the jobs command group.
func NewJobsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "jobs",
		Aliases: []string{"job"},
		Short:   "Manage scheduled jobs",
		Long:    "Create, run and schedule commands executed as tasks of an application",
	}

	resources := &resourceCommands[scheduler.Job]{
		kind: "job",
		resource: func(c scheduler.Client) scheduler.ScheduledResourceClient[scheduler.Job] {
			return c.Jobs()
		},
		header: []any{"GUID", "Name", "Command", "State", "Created"},
		row: func(job scheduler.Job) []string {
			return []string{
				job.GUID,
				job.Name,
				truncate(job.Command, constants.CommandDisplayLength),
				formatConfigValue(job.State),
				formatTime(&job.CreatedAt),
			}
		},
	}

	cmd.AddCommand(newJobsCreateCommand(resources))
	cmd.AddCommand(resources.commands()...)

	return cmd
}

func newJobsCreateCommand(resources *resourceCommands[scheduler.Job]) *cobra.Command {
	var appGUID, command string

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if appGUID == "" {
				return constants.ErrAppGUIDRequired
			}

			schedulerClient, err := CreateClient(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			job, err := schedulerClient.Jobs().Create(cmd.Context(), &scheduler.JobCreate{
				AppGUID: appGUID,
				Name:    args[0],
				Command: command,
			})
			if err != nil {
				return fmt.Errorf("failed to create job: %w", err)
			}

			return outputResult(cmd, job, func(table *tablewriter.Table) {
				table.Header(resources.header...)
				_ = table.Append(resources.row(*job))
			})
		},
	}

	cmd.Flags().StringVar(&appGUID, "app", "", "GUID of the application that runs the job")
	cmd.Flags().StringVarP(&command, "command", "c", "", "command to run")
	_ = cmd.MarkFlagRequired("command")

	return cmd
}
