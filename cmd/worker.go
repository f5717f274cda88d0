package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/frahmantamala/expense-tracker/internal/core/events"
	"github.com/frahmantamala/expense-tracker/pkg/logger"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background workers",
	Long:  `Start background workers that react to events published by the API.`,
}

var eventWorkerCmd = &cobra.Command{
	Use:   "events",
	Short: "Consume domain events from the broker",
	Long:  `Consume category and expense events from the AMQP exchange and write them to the audit log`,
	Run: func(cmd *cobra.Command, args []string) {
		startEventWorker()
	},
}

var (
	workerQueue       string
	workerBindingKeys []string
)

func startEventWorker() {
	cfg := mustLoad()
	lg := logger.L()

	if cfg.Events.AMQPURL == "" {
		fmt.Fprintln(os.Stderr, "events.amqp_url is not configured")
		os.Exit(1)
	}

	consumer, err := events.DialAMQPConsumer(cfg.Events.AMQPURL, cfg.Events.Exchange, workerQueue, workerBindingKeys, lg)
	if err != nil {
		lg.Error("failed to connect event consumer", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	lg.Info("event worker is running. Press Ctrl+C to stop.",
		"exchange", cfg.Events.Exchange,
		"queue", workerQueue)

	if err := consumer.Run(ctx, events.AuditLogHandler(lg)); err != nil && !errors.Is(err, context.Canceled) {
		lg.Error("event worker stopped with error", "error", err)
		consumer.Close()
		os.Exit(1)
	}
	lg.Info("event worker shutdown complete")
}

func init() {
	eventWorkerCmd.Flags().StringVar(&workerQueue, "queue", "", "durable queue name; empty uses a private queue")
	eventWorkerCmd.Flags().StringSliceVar(&workerBindingKeys, "bind", nil, "routing keys to bind, defaults to all events")

	workerCmd.AddCommand(eventWorkerCmd)
	rootCmd.AddCommand(workerCmd)
}
