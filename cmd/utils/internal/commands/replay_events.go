package commands

import (
	"context"
	"fmt"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"

	"github.com/appetiteclub/takoyaki/pkg"
	"github.com/appetiteclub/takoyaki/pkg/event"
)

// ReplayEvents prints every match event retained in the JetStream stream.
// An ephemeral consumer is used so replays never move a durable cursor.
func ReplayEvents(ctx context.Context, config *apt.Config, logger apt.Logger) error {
	streamName := config.GetStringOrDef("nats.stream.name", pkg.MatchEventsStream)
	sessionFilter := config.GetStringOrDef("session.id", "")

	stream, err := pkg.NewNATSStream(ctx, pkg.NATSStreamConfig{
		URL:        config.GetStringOrDef("nats.url", pkg.DefaultNATSURL),
		StreamName: streamName,
		Topic:      config.GetStringOrDef("events.topic", event.MatchesTopic),
		FromStart:  true,
	})
	if err != nil {
		return err
	}
	defer stream.Close()

	logger.Info("Replaying match events", "stream", streamName)

	shown := 0
	total, err := stream.Replay(ctx, func(msg events.StreamMessage) error {
		if sessionFilter != "" && !belongsTo(msg.Data, sessionFilter) {
			return nil
		}
		line, err := Describe(msg.Data)
		if err != nil {
			logger.Debug("skipping undecodable event", "sequence", msg.Sequence, "error", err)
			return nil
		}
		fmt.Printf("#%d %s\n", msg.Sequence, line)
		shown++
		return nil
	})
	if err != nil {
		return fmt.Errorf("replay %s: %w", streamName, err)
	}

	logger.Infof("Replayed %d events (%d shown)", total, shown)
	return nil
}
