package match

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/appetiteclub/takoyaki/services/tycoon/internal/order"
	"github.com/appetiteclub/takoyaki/services/tycoon/internal/session"
)

type publishedMessage struct {
	Topic string
	Key   []byte
	Data  []byte
}

// MockPublisher is a test mock for events.Publisher
type MockPublisher struct {
	mu          sync.Mutex
	published   []publishedMessage
	PublishFunc func(ctx context.Context, topic string, msg []byte) error
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, msg []byte) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, topic, msg)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, publishedMessage{Topic: topic, Data: msg})
	return nil
}

func (m *MockPublisher) Messages() []publishedMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]publishedMessage, len(m.published))
	copy(out, m.published)
	return out
}

// MockKeyedPublisher also routes by key, like the Kafka publisher.
type MockKeyedPublisher struct {
	MockPublisher
}

func NewMockKeyedPublisher() *MockKeyedPublisher {
	return &MockKeyedPublisher{}
}

func (m *MockKeyedPublisher) PublishKeyed(ctx context.Context, topic string, key, msg []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, publishedMessage{Topic: topic, Key: key, Data: msg})
	return nil
}

// recordingSink collects drained session events.
type recordingSink struct {
	mu     sync.Mutex
	events map[uuid.UUID][]session.Event
}

func newRecordingSink() *recordingSink {
	return &recordingSink{events: make(map[uuid.UUID][]session.Event)}
}

func (s *recordingSink) Notify(ctx context.Context, id uuid.UUID, events []session.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[id] = append(s.events[id], events...)
}

func (s *recordingSink) Kinds(id uuid.UUID) []session.EventKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	kinds := make([]session.EventKind, 0, len(s.events[id]))
	for _, e := range s.events[id] {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

func seededCache(sink EventSink) *SessionCache {
	cache := NewSessionCache(session.DefaultRules(), sink, nil)
	cache.SetGeneratorFactory(func() *order.Generator { return order.NewSeededGenerator(7) })
	return cache
}
