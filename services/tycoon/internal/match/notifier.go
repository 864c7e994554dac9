package match

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"
	"github.com/google/uuid"

	"github.com/appetiteclub/takoyaki/pkg/enums/topping"
	"github.com/appetiteclub/takoyaki/pkg/event"
	"github.com/appetiteclub/takoyaki/services/tycoon/internal/order"
	"github.com/appetiteclub/takoyaki/services/tycoon/internal/session"
)

// keyedPublisher is satisfied by publishers that can route by key, such as Kafka.
type keyedPublisher interface {
	PublishKeyed(ctx context.Context, topic string, key, msg []byte) error
}

const (
	// DefaultNotifyBuffer bounds how many messages wait for the bus.
	DefaultNotifyBuffer = 256
	publishTimeout      = 5 * time.Second
)

type outgoing struct {
	id        uuid.UUID
	eventType string
	data      []byte
}

// Notifier turns session events into bus messages and gRPC stream updates.
// Bus publishing runs on its own goroutine; when the queue is full new
// messages are dropped.
type Notifier struct {
	publisher    events.Publisher
	topic        string
	streamServer *EventStreamServer
	logger       apt.Logger
	queue        chan outgoing

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewNotifier(publisher events.Publisher, topic string, logger apt.Logger) *Notifier {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	if topic == "" {
		topic = event.MatchesTopic
	}
	return &Notifier{
		publisher: publisher,
		topic:     topic,
		logger:    logger,
		queue:     make(chan outgoing, DefaultNotifyBuffer),
	}
}

// SetStreamServer sets the gRPC stream server reference (called after initialization)
func (n *Notifier) SetStreamServer(server *EventStreamServer) {
	n.streamServer = server
}

// Start launches the publish loop. It is detached from ctx, use Stop to end it.
func (n *Notifier) Start(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.cancel != nil {
		return nil
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	n.cancel = cancel
	n.done = make(chan struct{})

	go n.loop(loopCtx, n.done)
	return nil
}

// Stop ends the publish loop after flushing what is already queued.
func (n *Notifier) Stop(ctx context.Context) error {
	n.mu.Lock()
	cancel, done := n.cancel, n.done
	n.cancel, n.done = nil, nil
	n.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (n *Notifier) Notify(ctx context.Context, id uuid.UUID, evts []session.Event) {
	for _, e := range evts {
		payload, eventType := buildPayload(id, e)
		data, err := json.Marshal(payload)
		if err != nil {
			n.logger.Error("cannot encode match event", "event_type", eventType, "error", err)
			continue
		}

		n.enqueue(outgoing{id: id, eventType: eventType, data: data})

		if n.streamServer != nil {
			n.streamServer.Broadcast(id, eventType, data)
		}
	}
}

func (n *Notifier) enqueue(msg outgoing) {
	if n.publisher == nil {
		return
	}
	select {
	case n.queue <- msg:
	default:
		n.logger.Errorf("Publish queue full, dropping %s event for session %s", msg.eventType, msg.id)
	}
}

func (n *Notifier) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			n.flush(context.WithoutCancel(ctx))
			return
		case msg := <-n.queue:
			n.publish(ctx, msg)
		}
	}
}

func (n *Notifier) flush(ctx context.Context) {
	for {
		select {
		case msg := <-n.queue:
			n.publish(ctx, msg)
		default:
			return
		}
	}
}

func (n *Notifier) publish(ctx context.Context, msg outgoing) {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	var err error
	if kp, ok := n.publisher.(keyedPublisher); ok {
		err = kp.PublishKeyed(ctx, n.topic, []byte(msg.id.String()), msg.data)
	} else {
		err = n.publisher.Publish(ctx, n.topic, msg.data)
	}
	if err != nil {
		n.logger.Errorf("Failed to publish %s event for session %s: %v", msg.eventType, msg.id, err)
	}
}

func buildPayload(id uuid.UUID, e session.Event) (any, string) {
	meta := event.MatchEventMetadata{
		OccurredAt: e.At,
		SessionID:  id.String(),
		Level:      e.Level,
		Score:      e.Score,
	}

	switch e.Kind {
	case session.EventMatchStarted:
		meta.EventType = event.EventMatchStarted
		return event.MatchStartedEvent{
			MatchEventMetadata: meta,
			DurationMs:         e.Remaining.Milliseconds(),
		}, meta.EventType

	case session.EventMatchEnded:
		meta.EventType = event.EventMatchEnded
		return event.MatchEndedEvent{
			MatchEventMetadata: meta,
			Reason:             e.Reason,
			Stats: event.MatchStats{
				Served:     e.Stats.Served,
				Happy:      e.Stats.Happy,
				Neutral:    e.Stats.Neutral,
				Angry:      e.Stats.Angry,
				HappyBonus: e.Stats.HappyBonus,
			},
		}, meta.EventType

	case session.EventCustomerArrived:
		meta.EventType = event.EventCustomerArrived
		evt := event.CustomerArrivedEvent{MatchEventMetadata: meta}
		if c := e.Customer; c != nil {
			evt.CustomerID = c.ID.String()
			evt.OrderTotal = c.Order.TotalQuantity
			evt.Toppings = breakdownMap(c.Order.Toppings)
		}
		return evt, meta.EventType

	case session.EventCustomerDeparted:
		meta.EventType = event.EventCustomerDeparted
		evt := event.CustomerDepartedEvent{MatchEventMetadata: meta, Reason: e.Reason}
		if c := e.Customer; c != nil {
			evt.CustomerID = c.ID.String()
			evt.Patience = c.Patience
			evt.WaitedMs = c.Waited(e.At).Milliseconds()
		}
		return evt, meta.EventType

	case session.EventOrderServed:
		meta.EventType = event.EventOrderServed
		evt := event.OrderServedEvent{MatchEventMetadata: meta}
		if c := e.Customer; c != nil {
			evt.CustomerID = c.ID.String()
		}
		if sr := e.Serve; sr != nil {
			evt.OrderCompleted = sr.OrderCompleted
			if r := sr.Result; r != nil {
				evt.CorrectCount = r.CorrectCount
				evt.ServedCount = r.ServedCount
				evt.Mood = r.Mood.Code()
				evt.Points = r.Score
				evt.BonusScore = r.BonusScore
				evt.SauceIssues = r.Breakdown.SauceIssues
				evt.CookingIssues = r.Breakdown.CookingIssues
			}
			if sr.Remaining != nil {
				evt.Remaining = breakdownMap(sr.Remaining.Remaining)
			}
		}
		return evt, meta.EventType
	}

	meta.EventType = "takoyaki." + string(e.Kind)
	return meta, meta.EventType
}

func breakdownMap(b order.Breakdown) map[string]int {
	m := make(map[string]int, len(topping.All))
	for _, t := range topping.All {
		m[t.Code()] = b.Get(t)
	}
	return m
}
