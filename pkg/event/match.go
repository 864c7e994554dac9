package event

import "time"

const (
	MatchesTopic = "takoyaki.matches"

	EventMatchStarted     = "takoyaki.match.started"
	EventMatchEnded       = "takoyaki.match.ended"
	EventCustomerArrived  = "takoyaki.customer.arrived"
	EventCustomerDeparted = "takoyaki.customer.departed"
	EventOrderServed      = "takoyaki.order.served"
)

type MatchEventMetadata struct {
	EventType  string    `json:"event_type"`
	OccurredAt time.Time `json:"occurred_at"`
	SessionID  string    `json:"session_id"`
	Level      int       `json:"level"`
	Score      int       `json:"score"`
}

// Envelope decodes only the metadata of any match event.
type Envelope struct {
	MatchEventMetadata
}

type MatchStats struct {
	Served     int `json:"served"`
	Happy      int `json:"happy"`
	Neutral    int `json:"neutral"`
	Angry      int `json:"angry"`
	HappyBonus int `json:"happy_bonus"`
}

type MatchStartedEvent struct {
	MatchEventMetadata
	DurationMs int64 `json:"duration_ms"`
}

type MatchEndedEvent struct {
	MatchEventMetadata
	Reason string     `json:"reason"`
	Stats  MatchStats `json:"stats"`
}

type CustomerArrivedEvent struct {
	MatchEventMetadata
	CustomerID string         `json:"customer_id"`
	OrderTotal int            `json:"order_total"`
	Toppings   map[string]int `json:"toppings"`
}

type CustomerDepartedEvent struct {
	MatchEventMetadata
	CustomerID string  `json:"customer_id"`
	Reason     string  `json:"reason"`
	Patience   float64 `json:"patience"`
	WaitedMs   int64   `json:"waited_ms"`
}

type OrderServedEvent struct {
	MatchEventMetadata
	CustomerID     string         `json:"customer_id"`
	CorrectCount   int            `json:"correct_count"`
	ServedCount    int            `json:"served_count"`
	Mood           string         `json:"mood"`
	Points         int            `json:"points"`
	BonusScore     int            `json:"bonus_score"`
	SauceIssues    int            `json:"sauce_issues"`
	CookingIssues  int            `json:"cooking_issues"`
	OrderCompleted bool           `json:"order_completed"`
	Remaining      map[string]int `json:"remaining"`
}
