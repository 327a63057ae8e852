/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/dcode-ide/apiserver/config"
	"github.com/dcode-ide/apiserver/internal/logging"
	"github.com/dcode-ide/apiserver/internal/mq"
	"github.com/spf13/cobra"
)

// eventsCmd streams project lifecycle events from the configured broker.
var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Print project events as they are published",
	Long: `Subscribes to the project event channel (MQ_BACKEND, MQ_PROJECT_CHANNEL)
and logs every event until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		logger := logging.Setup(cfg.Log)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		bus, err := mq.New(ctx, cfg.MQ)
		if err != nil {
			return err
		}
		if bus == nil {
			return errors.New("MQ_BACKEND is not set")
		}
		defer bus.Close()

		logger.Info("subscribed", "backend", cfg.MQ.Backend, "channel", bus.Channel())
		err = bus.Subscribe(ctx, func(_ context.Context, msg mq.Message) error {
			ev, err := mq.DecodeProjectEvent(msg)
			if err != nil {
				// Ack it so the broker does not redeliver it.
				logger.Warn("skipping message", "id", msg.ID, "err", err)
				return nil
			}
			logger.Info(string(ev.Type), "project", ev.ProjectID, "owner", ev.OwnerID, "name", ev.Name, "at", ev.OccurredAt)
			return nil
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("subscribe: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
}
