package commands

import (
	"context"
	"fmt"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"

	"github.com/appetiteclub/takoyaki/pkg"
	"github.com/appetiteclub/takoyaki/pkg/event"
)

type subscription interface {
	events.Subscriber
	Close() error
}

// TailEvents prints live match events from NATS or Kafka until ctx ends.
func TailEvents(ctx context.Context, config *apt.Config, logger apt.Logger) error {
	backend := config.GetStringOrDef("events.backend", "nats")
	topic := config.GetStringOrDef("events.topic", event.MatchesTopic)

	var sub subscription
	switch backend {
	case "nats":
		s, err := pkg.NewNATSSubscriber(config.GetStringOrDef("nats.url", pkg.DefaultNATSURL))
		if err != nil {
			return err
		}
		s.OnError = func(topic string, err error) {
			logger.Error("cannot handle event", "topic", topic, "error", err)
		}
		sub = s

	case "kafka":
		brokers := pkg.ParseKafkaBrokers(config.GetStringOrDef("kafka.brokers", "localhost:9092"))
		s, err := pkg.NewKafkaSubscriber(brokers, config.GetStringOrDef("kafka.group", "takoyaki-utils"))
		if err != nil {
			return err
		}
		s.OnError = func(topic string, err error) {
			logger.Error("cannot handle event", "topic", topic, "error", err)
		}
		sub = s

	default:
		return fmt.Errorf("tail-events supports nats and kafka, not %q", backend)
	}
	defer sub.Close()

	err := sub.Subscribe(ctx, topic, func(ctx context.Context, msg []byte) error {
		line, err := Describe(msg)
		if err != nil {
			return err
		}
		fmt.Println(line)
		return nil
	})
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", topic, err)
	}

	logger.Info("Tailing match events", "backend", backend, "topic", topic)
	<-ctx.Done()
	return nil
}
