package pkg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/appetiteclub/apt/events"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	MatchEventsStream   = "MATCH_EVENTS"
	defaultFetchBatch   = 500
	defaultFetchWait    = 2 * time.Second
	defaultStreamMaxAge = 24 * time.Hour
)

// ErrNoConsumer is returned when reading from a publish-only stream.
var ErrNoConsumer = errors.New("stream has no consumer")

// NATSStream publishes to and replays from a JetStream stream.
type NATSStream struct {
	conn     *nats.Conn
	js       jetstream.JetStream
	stream   jetstream.Stream
	consumer jetstream.Consumer
	topic    string
}

type NATSStreamConfig struct {
	URL        string
	StreamName string
	Topic      string
	// ConsumerName is the durable consumer. Empty with FromStart makes an
	// ephemeral one; empty without FromStart creates no consumer (publish only).
	ConsumerName string
	MaxAge       time.Duration
	MaxMsgs      int64
	// FromStart replays retained messages instead of only new ones.
	FromStart bool
}

func NewNATSStream(ctx context.Context, cfg NATSStreamConfig) (*NATSStream, error) {
	if cfg.StreamName == "" || cfg.Topic == "" {
		return nil, errors.New("stream name and topic are required")
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = defaultStreamMaxAge
	}

	conn, err := connectNATS(cfg.URL)
	if err != nil {
		return nil, err
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	streamConfig := jetstream.StreamConfig{
		Name:     cfg.StreamName,
		Subjects: []string{cfg.Topic},
		MaxAge:   cfg.MaxAge,
	}
	if cfg.MaxMsgs > 0 {
		streamConfig.MaxMsgs = cfg.MaxMsgs
	}

	stream, err := js.CreateOrUpdateStream(ctx, streamConfig)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create/update stream %s: %w", cfg.StreamName, err)
	}

	ns := &NATSStream{
		conn:   conn,
		js:     js,
		stream: stream,
		topic:  cfg.Topic,
	}
	if cfg.ConsumerName == "" && !cfg.FromStart {
		return ns, nil
	}

	deliver := jetstream.DeliverNewPolicy
	if cfg.FromStart {
		deliver = jetstream.DeliverAllPolicy
	}
	consumerConfig := jetstream.ConsumerConfig{
		Name:          cfg.ConsumerName,
		Durable:       cfg.ConsumerName,
		AckPolicy:     jetstream.AckExplicitPolicy,
		DeliverPolicy: deliver,
		FilterSubject: cfg.Topic,
	}

	consumer, err := stream.CreateOrUpdateConsumer(ctx, consumerConfig)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create/update consumer %q: %w", cfg.ConsumerName, err)
	}

	ns.consumer = consumer
	return ns, nil
}

func (s *NATSStream) Publish(ctx context.Context, topic string, msg []byte) error {
	if _, err := s.js.Publish(ctx, topic, msg); err != nil {
		return fmt.Errorf("failed to publish to stream: %w", err)
	}
	return nil
}

// Fetch pulls up to limit messages, acking each one.
func (s *NATSStream) Fetch(ctx context.Context, limit int) ([]events.StreamMessage, error) {
	if s.consumer == nil {
		return nil, ErrNoConsumer
	}
	if limit <= 0 {
		limit = defaultFetchBatch
	}

	batch, err := s.consumer.Fetch(limit, jetstream.FetchMaxWait(defaultFetchWait))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}

	var messages []events.StreamMessage
	for msg := range batch.Messages() {
		meta, err := msg.Metadata()
		if err != nil {
			_ = msg.Ack()
			continue
		}
		messages = append(messages, events.StreamMessage{
			Data:      msg.Data(),
			Sequence:  meta.Sequence.Stream,
			Timestamp: meta.Timestamp.UnixNano(),
		})
		_ = msg.Ack()
	}
	return messages, nil
}

// Replay fetches batches until the stream has nothing left or ctx ends,
// handing every message to handler in sequence order.
func (s *NATSStream) Replay(ctx context.Context, handler func(events.StreamMessage) error) (int, error) {
	total := 0
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		batch, err := s.Fetch(ctx, defaultFetchBatch)
		if err != nil {
			return total, err
		}
		if len(batch) == 0 {
			return total, nil
		}
		for _, msg := range batch {
			if err := handler(msg); err != nil {
				return total, fmt.Errorf("replay handler failed at sequence %d: %w", msg.Sequence, err)
			}
			total++
		}
	}
}

// Subscribe consumes new messages. The topic is fixed by the consumer filter.
func (s *NATSStream) Subscribe(ctx context.Context, topic string, handler events.HandlerFunc) error {
	if s.consumer == nil {
		return ErrNoConsumer
	}
	_, err := s.consumer.Consume(func(msg jetstream.Msg) {
		if err := handler(ctx, msg.Data()); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	})
	return err
}

func (s *NATSStream) Close() error {
	return s.conn.Drain()
}
