package session

import (
	"time"

	"github.com/appetiteclub/takoyaki/services/tycoon/internal/customer"
	"github.com/appetiteclub/takoyaki/services/tycoon/internal/order"
)

// EventKind names something that happened in a match.
type EventKind string

const (
	EventMatchStarted     EventKind = "match_started"
	EventMatchEnded       EventKind = "match_ended"
	EventCustomerArrived  EventKind = "customer_arrived"
	EventCustomerDeparted EventKind = "customer_departed"
	EventOrderServed      EventKind = "order_served"
)

const (
	ReasonTimeout = "timeout"
	ReasonStopped = "stopped"
	ReasonServed  = "served"
	ReasonAngry   = "angry"
)

// Event is queued by the session and drained by whoever hosts it.
type Event struct {
	Kind      EventKind
	At        time.Time
	Level     int
	Score     int
	Reason    string
	Remaining time.Duration
	Customer  *customer.Customer
	Serve     *ServeResult
	Stats     Stats
}

func (s *Session) emit(e Event) {
	e.Level = s.level
	e.Score = s.score
	e.Stats = s.stats
	if e.Customer != nil {
		c := *e.Customer
		e.Customer = &c
	}
	s.events = append(s.events, e)
}

// DrainEvents returns queued events and clears the queue.
func (s *Session) DrainEvents() []Event {
	events := s.events
	s.events = nil
	return events
}

// ServeResult is what attempt-serve reports back to the player.
type ServeResult struct {
	Success        bool          `json:"success"`
	Message        string        `json:"message"`
	Result         *order.Result `json:"result,omitempty"`
	OrderCompleted bool          `json:"order_completed"`
	Remaining      *order.Order  `json:"remaining,omitempty"`
}
