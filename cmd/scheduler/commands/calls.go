package commands

import (
	"fmt"

	"github.com/fivetwenty-io/scheduler-client/internal/constants"
	"github.com/fivetwenty-io/scheduler-client/pkg/scheduler"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewCallsCommand creates the calls command group.
func NewCallsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "calls",
		Aliases: []string{"call"},
		Short:   "Manage scheduled HTTP calls",
		Long:    "Create, run and schedule HTTP endpoints invoked by the scheduler",
	}

	resources := &resourceCommands[scheduler.Call]{
		kind: "call",
		resource: func(c scheduler.Client) scheduler.ScheduledResourceClient[scheduler.Call] {
			return c.Calls()
		},
		header: []any{"GUID", "Name", "URL", "Created"},
		row: func(call scheduler.Call) []string {
			return []string{call.GUID, call.Name, call.URL, formatTime(&call.CreatedAt)}
		},
	}

	cmd.AddCommand(newCallsCreateCommand(resources))
	cmd.AddCommand(resources.commands()...)

	return cmd
}

func newCallsCreateCommand(resources *resourceCommands[scheduler.Call]) *cobra.Command {
	var appGUID, url, authHeader string

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a call",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if appGUID == "" {
				return constants.ErrAppGUIDRequired
			}

			schedulerClient, err := CreateClient(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			call, err := schedulerClient.Calls().Create(cmd.Context(), &scheduler.CallCreate{
				AppGUID:    appGUID,
				Name:       args[0],
				URL:        url,
				AuthHeader: authHeader,
			})
			if err != nil {
				return fmt.Errorf("failed to create call: %w", err)
			}

			return outputResult(cmd, call, func(table *tablewriter.Table) {
				table.Header(resources.header...)
				_ = table.Append(resources.row(*call))
			})
		},
	}

	cmd.Flags().StringVar(&appGUID, "app", "", "GUID of the application the call belongs to")
	cmd.Flags().StringVarP(&url, "url", "u", "", "URL the scheduler invokes")
	cmd.Flags().StringVar(&authHeader, "auth-header", "", "Authorization header sent with the call")
	_ = cmd.MarkFlagRequired("url")
	_ = cmd.MarkFlagRequired("auth-header")

	return cmd
}
