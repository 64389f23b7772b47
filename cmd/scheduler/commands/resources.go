package commands

import (
	"context"
	"fmt"
	"iter"
	"strconv"
	"strings"
	"time"

	"github.com/fivetwenty-io/scheduler-client/internal/constants"
	"github.com/fivetwenty-io/scheduler-client/pkg/scheduler"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// resourceCommands builds the subcommands shared by calls and jobs.
type resourceCommands[T any] struct {
	kind     string
	resource func(scheduler.Client) scheduler.ScheduledResourceClient[T]
	header   []any
	row      func(T) []string
}

func (r *resourceCommands[T]) commands() []*cobra.Command {
	return []*cobra.Command{
		r.listCommand(),
		r.getCommand(),
		r.deleteCommand(),
		r.runCommand(),
		r.scheduleCommand(),
		r.schedulesCommand(),
		r.unscheduleCommand(),
		r.historyCommand(),
	}
}

func (r *resourceCommands[T]) client(cmd *cobra.Command) (scheduler.ScheduledResourceClient[T], error) {
	schedulerClient, err := CreateClient(cmd.Context(), cmd)
	if err != nil {
		return nil, err
	}

	return r.resource(schedulerClient), nil
}

func (r *resourceCommands[T]) listCommand() *cobra.Command {
	var space string

	cmd := &cobra.Command{
		Use:   "list",
		Short: fmt.Sprintf("List %ss in a space", r.kind),
		Long:  fmt.Sprintf("List every %s in a space, fetching all pages", r.kind),
		RunE: func(cmd *cobra.Command, _ []string) error {
			spaceGUID, err := resolveSpaceGUID(space)
			if err != nil {
				return err
			}

			resourceClient, err := r.client(cmd)
			if err != nil {
				return err
			}

			items, err := collect(resourceClient.ListAll(cmd.Context(), spaceGUID))
			if err != nil {
				return fmt.Errorf("failed to list %ss: %w", r.kind, err)
			}

			return outputResult(cmd, items, func(table *tablewriter.Table) {
				table.Header(r.header...)

				for _, item := range items {
					_ = table.Append(r.row(item))
				}
			})
		},
	}

	cmd.Flags().StringVarP(&space, "space", "s", "", "space GUID (defaults to the configured space_guid)")

	return cmd
}

func (r *resourceCommands[T]) getCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get GUID",
		Short: fmt.Sprintf("Get %s details", r.kind),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resourceClient, err := r.client(cmd)
			if err != nil {
				return err
			}

			item, err := resourceClient.Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get %s: %w", r.kind, err)
			}

			return outputResult(cmd, item, func(table *tablewriter.Table) {
				table.Header(r.header...)
				_ = table.Append(r.row(*item))
			})
		},
	}
}

func (r *resourceCommands[T]) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete GUID",
		Short: "Delete a " + r.kind,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resourceClient, err := r.client(cmd)
			if err != nil {
				return err
			}

			err = resourceClient.Delete(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to delete %s: %w", r.kind, err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s %s\n", r.kind, args[0])

			return nil
		},
	}
}

func (r *resourceCommands[T]) runCommand() *cobra.Command {
	var (
		wait    bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run GUID",
		Short: "Execute a " + r.kind + " immediately",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resourceClient, err := r.client(cmd)
			if err != nil {
				return err
			}

			history, err := resourceClient.Execute(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to execute %s: %w", r.kind, err)
			}

			if wait {
				ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
				defer cancel()

				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Waiting for execution %s...\n", history.GUID)

				settled, waitErr := resourceClient.WaitForExecution(ctx, args[0], history.GUID)
				if settled != nil {
					history = settled
				}

				if waitErr != nil {
					_ = outputHistories(cmd, []scheduler.History{*history})

					return fmt.Errorf("waiting for %s execution: %w", r.kind, waitErr)
				}
			}

			return outputHistories(cmd, []scheduler.History{*history})
		},
	}

	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "wait for the execution to finish")
	cmd.Flags().DurationVar(&timeout, "timeout", constants.DefaultExecutionTimeout, "maximum time to wait")

	return cmd
}

func (r *resourceCommands[T]) scheduleCommand() *cobra.Command {
	var (
		expression     string
		expressionType string
		disabled       bool
	)

	cmd := &cobra.Command{
		Use:   "schedule GUID",
		Short: "Schedule a " + r.kind,
		Long:  "Schedule a " + r.kind + " with a cron expression, or a single execution with --type execute",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsedType, err := scheduler.ParseExpressionType(expressionType)
			if err != nil {
				return err
			}

			resourceClient, err := r.client(cmd)
			if err != nil {
				return err
			}

			schedule, err := resourceClient.Schedule(cmd.Context(), args[0], &scheduler.ScheduleCreate{
				Enabled:        !disabled,
				Expression:     expression,
				ExpressionType: parsedType,
			})
			if err != nil {
				return fmt.Errorf("failed to schedule %s: %w", r.kind, err)
			}

			return outputSchedules(cmd, []scheduler.Schedule{*schedule})
		},
	}

	cmd.Flags().StringVarP(&expression, "expression", "e", "", "schedule expression, e.g. '0 12 ? * *'")
	cmd.Flags().StringVarP(&expressionType, "type", "t", string(scheduler.ExpressionTypeCron), "expression type (cron_expression, execute)")
	cmd.Flags().BoolVar(&disabled, "disabled", false, "create the schedule disabled")
	_ = cmd.MarkFlagRequired("expression")

	return cmd
}

func (r *resourceCommands[T]) schedulesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schedules GUID",
		Short: "List the schedules of a " + r.kind,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resourceClient, err := r.client(cmd)
			if err != nil {
				return err
			}

			schedules, err := collect(resourceClient.ListAllSchedules(cmd.Context(), args[0]))
			if err != nil {
				return fmt.Errorf("failed to list schedules: %w", err)
			}

			return outputSchedules(cmd, schedules)
		},
	}
}

func (r *resourceCommands[T]) unscheduleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unschedule GUID SCHEDULE_GUID",
		Short: "Delete a schedule of a " + r.kind,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			resourceClient, err := r.client(cmd)
			if err != nil {
				return err
			}

			err = resourceClient.DeleteSchedule(cmd.Context(), args[0], args[1])
			if err != nil {
				return fmt.Errorf("failed to delete schedule: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted schedule %s\n", args[1])

			return nil
		},
	}
}

func (r *resourceCommands[T]) historyCommand() *cobra.Command {
	var scheduleGUID string

	cmd := &cobra.Command{
		Use:   "history GUID",
		Short: "List the execution history of a " + r.kind,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resourceClient, err := r.client(cmd)
			if err != nil {
				return err
			}

			var histories iter.Seq2[scheduler.History, error]
			if scheduleGUID != "" {
				histories = resourceClient.ListAllScheduleHistories(cmd.Context(), args[0], scheduleGUID)
			} else {
				histories = resourceClient.ListAllHistories(cmd.Context(), args[0])
			}

			items, err := collect(histories)
			if err != nil {
				return fmt.Errorf("failed to list history: %w", err)
			}

			return outputHistories(cmd, items)
		},
	}

	cmd.Flags().StringVar(&scheduleGUID, "schedule", "", "only show executions of this schedule")

	return cmd
}

func outputSchedules(cmd *cobra.Command, schedules []scheduler.Schedule) error {
	return outputResult(cmd, schedules, func(table *tablewriter.Table) {
		table.Header("GUID", "Expression", "Type", "Enabled", "Created")

		for _, schedule := range schedules {
			_ = table.Append(
				schedule.GUID,
				schedule.Expression,
				string(schedule.ExpressionType),
				strconv.FormatBool(schedule.Enabled),
				formatTime(&schedule.CreatedAt),
			)
		}
	})
}

func outputHistories(cmd *cobra.Command, histories []scheduler.History) error {
	return outputResult(cmd, histories, func(table *tablewriter.Table) {
		table.Header("GUID", "State", "Scheduled", "Started", "Finished", "Message")

		for _, history := range histories {
			_ = table.Append(
				history.GUID,
				history.State,
				formatTime(history.ScheduledTime),
				formatTime(history.ExecutionStartTime),
				formatTime(history.ExecutionEndTime),
				formatConfigValue(strings.TrimSpace(history.Message)),
			)
		}
	})
}

// collect drains an aggregated listing, stopping at the first error.
func collect[T any](seq iter.Seq2[T, error]) ([]T, error) {
	items := []T{}

	for item, err := range seq {
		if err != nil {
			return items, err
		}

		items = append(items, item)
	}

	return items, nil
}
