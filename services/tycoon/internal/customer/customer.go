package customer

import (
	"time"

	"github.com/google/uuid"

	"github.com/appetiteclub/takoyaki/pkg/enums/mood"
	"github.com/appetiteclub/takoyaki/services/tycoon/internal/order"
)

const (
	DefaultMaxPatience  = 100.0
	DefaultPatienceStep = 1.0
)

// Customer waits at the counter with one order.
type Customer struct {
	ID        uuid.UUID   `json:"id"`
	Order     order.Order `json:"order"`
	Patience  float64     `json:"patience"`
	ArrivedAt time.Time   `json:"arrived_at"`
}

func New(o order.Order, patience float64, now time.Time) *Customer {
	return &Customer{
		ID:        uuid.New(),
		Order:     o,
		Patience:  patience,
		ArrivedAt: now,
	}
}

// MoodFor maps patience to mood with the fixed thresholds.
func MoodFor(patience float64) mood.Mood {
	return mood.ForPatience(patience)
}

func (c *Customer) Mood() mood.Mood {
	return MoodFor(c.Patience)
}

// Wait lowers patience by step and reports whether the customer gave up.
func (c *Customer) Wait(step float64) bool {
	c.Patience -= step
	if c.Patience < 0 {
		c.Patience = 0
	}
	return c.Patience <= 0
}

func (c *Customer) Waited(now time.Time) time.Duration {
	return now.Sub(c.ArrivedAt)
}
