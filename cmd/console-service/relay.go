package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"admissions/internal/constants"
	"admissions/internal/crud"
	"admissions/internal/entities"
	"admissions/internal/events"
	"admissions/internal/notify"
	"admissions/internal/rules"
	"admissions/pkg/bootstrap"
	"admissions/pkg/circuitbreaker"
	"admissions/pkg/logging"
)

const relayServiceName = "console-relay"

func relayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "relay",
		Short: "Forward entity change events to notification channels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(relayServiceName)
			if err != nil {
				return err
			}
			defer log.Sync()

			if cfg.Broker.Type == "" {
				return errors.New("relay requires broker.type to be kafka or nats")
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			ctx = logging.WithServiceName(ctx, relayServiceName)

			connector := bootstrap.NewDatabaseConnector(cfg, log)
			db, err := connector.InitPostgreSQL(ctx)
			if err != nil {
				return err
			}
			defer connector.ShutdownDatabases(nil, db)

			base := bootstrap.NewBase(cfg, log)
			if err := base.InitConsumer(relayServiceName); err != nil {
				return err
			}
			defer base.ShutdownBroker()

			eval, err := rules.DefaultEvaluator()
			if err != nil {
				return err
			}

			filters := crud.NewService[entities.NotificationFilter](
				crud.NewRepository(db, entities.NotificationFilterSchema),
				entities.NotificationFilterSchema,
				crud.WithLogger[entities.NotificationFilter](log),
			)

			opts := []events.RelayOption{
				events.WithChannel("in_app", notify.NewLogNotifier(log)),
				events.WithFilters(func(ctx context.Context) ([]entities.NotificationFilter, error) {
					return filters.List(ctx, crud.ListParams{})
				}),
			}
			if hook := cfg.Notifications.Webhook; hook.URL != "" {
				breaker := circuitbreaker.NewWrapper(circuitbreaker.DefaultConfig("notification-webhook"))
				opts = append(opts,
					events.WithChannel("webhook", notify.NewWebhookNotifier(notify.WebhookConfig{
						URL:     hook.URL,
						Secret:  hook.Secret,
						Timeout: hook.Timeout,
					}, breaker)),
					events.WithDefaultChannels("in_app", "webhook"),
				)
			}
			relay := events.NewRelay(eval, log, opts...)

			topic := cfg.Broker.Topic
			if topic == "" {
				topic = constants.DefaultEventTopic
			}
			log.InfowCtx(ctx, "Relaying change events", "broker", cfg.Broker.Type, "topic", topic)

			if err := base.Consumer.Consume(ctx, topic, relay.Handle); err != nil && !errors.Is(err, context.Canceled) {
				log.ErrorwCtx(ctx, "Relay stopped", "error", err)
				return err
			}
			return nil
		},
	}
}
