package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/frahmantamala/expense-tracker/internal/core/events"
	"github.com/frahmantamala/expense-tracker/pkg/logger"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Manage events: publish test events and list the event types the service emits`,
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [event-type]",
	Short: "Publish a test event",
	Long:  `Publish a test event to the event bus, and to the broker when one is configured`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		publishTestEvent(args[0])
	},
}

var listEventTypesCmd = &cobra.Command{
	Use:   "types",
	Short: "List domain event types",
	Run: func(cmd *cobra.Command, args []string) {
		for _, t := range events.AllEventTypes {
			fmt.Println(t)
		}
	},
}

var eventData string

func publishTestEvent(eventType string) {
	cfg := mustLoad()
	lg := logger.L()

	eventBus := events.NewEventBus(lg)
	eventBus.Subscribe(eventType, events.AuditLogHandler(lg))
	if cfg.Events.AMQPURL != "" {
		forwarder, err := events.DialAMQP(cfg.Events.AMQPURL, cfg.Events.Exchange, lg)
		if err != nil {
			lg.Warn("broker unavailable, publishing locally only", "error", err)
		} else {
			eventBus.Subscribe(eventType, forwarder.Handle)
			defer forwarder.Close()
		}
	}

	testEvent := events.BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data: map[string]interface{}{
			"message": eventData,
			"source":  "cli-command",
		},
	}

	lg.Info("publishing test event", "event_type", eventType, "event_id", testEvent.ID)

	if err := eventBus.PublishSync(context.Background(), testEvent); err != nil {
		lg.Error("failed to publish event", "error", err)
		return
	}
	lg.Info("test event published successfully")
}

func init() {
	publishEventCmd.Flags().StringVar(&eventData, "data", "test message", "Event data message")

	eventCmd.AddCommand(publishEventCmd)
	eventCmd.AddCommand(listEventTypesCmd)

	rootCmd.AddCommand(eventCmd)
}
