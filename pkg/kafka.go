package pkg

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/appetiteclub/apt/events"
	"github.com/segmentio/kafka-go"
)

// ParseKafkaBrokers splits a comma separated broker list.
func ParseKafkaBrokers(brokers string) []string {
	var list []string
	for _, b := range strings.Split(brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			list = append(list, b)
		}
	}
	return list
}

// KafkaPublisher writes events to Kafka, one topic per Publish call.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, errors.New("no kafka brokers configured")
	}
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
			BatchTimeout:           10 * time.Millisecond,
		},
	}, nil
}

// PublishKeyed keeps every message with the same key on one partition.
func (p *KafkaPublisher) PublishKeyed(ctx context.Context, topic string, key, msg []byte) error {
	err := p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   key,
		Value: msg,
	})
	if err != nil {
		return fmt.Errorf("failed to write to kafka topic %s: %w", topic, err)
	}
	return nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, topic string, msg []byte) error {
	return p.PublishKeyed(ctx, topic, nil, msg)
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// KafkaSubscriber reads a topic with a consumer group.
type KafkaSubscriber struct {
	brokers []string
	groupID string
	readers []*kafka.Reader
	OnError func(topic string, err error)
}

func NewKafkaSubscriber(brokers []string, groupID string) (*KafkaSubscriber, error) {
	if len(brokers) == 0 {
		return nil, errors.New("no kafka brokers configured")
	}
	return &KafkaSubscriber{brokers: brokers, groupID: groupID}, nil
}

// Subscribe starts a reader goroutine that stops when ctx is done.
func (s *KafkaSubscriber) Subscribe(ctx context.Context, topic string, handler events.HandlerFunc) error {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     s.brokers,
		Topic:       topic,
		GroupID:     s.groupID,
		StartOffset: kafka.LastOffset,
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxWait:     time.Second,
	})
	s.readers = append(s.readers, reader)

	go func() {
		for {
			msg, err := reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil || errors.Is(err, context.Canceled) {
					return
				}
				s.report(topic, err)
				time.Sleep(time.Second)
				continue
			}
			if err := handler(ctx, msg.Value); err != nil {
				s.report(topic, err)
			}
		}
	}()
	return nil
}

func (s *KafkaSubscriber) report(topic string, err error) {
	if s.OnError != nil {
		s.OnError(topic, err)
	}
}

func (s *KafkaSubscriber) Close() error {
	var errs []error
	for _, r := range s.readers {
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
