package cmd

import (
	"context"
	"fmt"
	"slices"

	"github.com/frahmantamala/rbac-admin/internal/core/events"
	"github.com/frahmantamala/rbac-admin/pkg/logger"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Inspect and exercise the access-change event bus",
}

var listEventsCmd = &cobra.Command{
	Use:   "list",
	Short: "List the event types written to the audit log",
	Run: func(cmd *cobra.Command, args []string) {
		for _, t := range events.AccessEventTypes {
			fmt.Println(t)
		}
	},
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [event-type]",
	Short: "Publish a test event through the audit log subscriber",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return publishTestEvent(args[0])
	},
}

var (
	eventGroupID int64
	eventActorID int64
)

func publishTestEvent(eventType string) error {
	if !slices.Contains(events.AccessEventTypes, eventType) {
		return fmt.Errorf("unknown event type %q; see `rbac-admin event list`", eventType)
	}

	lg := logger.LoggerWrapper()
	bus := events.NewEventBus(lg)
	events.RegisterAuditLog(bus, lg)

	e := events.NewGroupEvent(eventType, eventGroupID, "cli-test", eventActorID, 0)
	if err := bus.PublishSync(context.Background(), e); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	lg.Info("test event published", "event_type", eventType, "event_id", e.EventID())
	return nil
}

func init() {
	publishEventCmd.Flags().Int64Var(&eventGroupID, "group-id", 0, "group id carried by the test event")
	publishEventCmd.Flags().Int64Var(&eventActorID, "actor-id", 0, "actor id carried by the test event")

	eventCmd.AddCommand(listEventsCmd)
	eventCmd.AddCommand(publishEventCmd)
}
