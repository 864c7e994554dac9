package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/appetiteclub/takoyaki/pkg/enums/mood"
	"github.com/appetiteclub/takoyaki/pkg/enums/topping"
	"github.com/appetiteclub/takoyaki/services/tycoon/internal/customer"
	"github.com/appetiteclub/takoyaki/services/tycoon/internal/griddle"
	"github.com/appetiteclub/takoyaki/services/tycoon/internal/order"
	"github.com/appetiteclub/takoyaki/services/tycoon/internal/plate"
)

// State is the match lifecycle position.
type State string

const (
	StateNotStarted State = "not_started"
	StateRunning    State = "running"
	StateEnded      State = "ended"
)

// Stats are the per-match customer counters.
// Angry counts both angry completions and customers who ran out of patience.
type Stats struct {
	Served     int `json:"served"`
	Happy      int `json:"happy"`
	Neutral    int `json:"neutral"`
	Angry      int `json:"angry"`
	HappyBonus int `json:"happy_bonus"`
}

// Session owns every piece of state in one match. It is not safe for
// concurrent use; hosts serialize access.
type Session struct {
	ID        uuid.UUID
	rules     Rules
	generator *order.Generator

	state    State
	griddle  *griddle.Griddle
	plates   *plate.Pool
	customer *customer.Customer
	score    int
	level    int
	stats    Stats

	startedAt   time.Time
	endedAt     time.Time
	remaining   time.Duration
	patienceDue time.Time
	spawnDue    time.Time

	events []Event
}

func New(rules Rules, generator *order.Generator) *Session {
	rules = rules.normalized()
	if generator == nil {
		generator = order.NewGenerator(nil)
	}
	s := &Session{
		ID:        uuid.New(),
		rules:     rules,
		generator: generator,
		griddle:   griddle.New(rules.Rows, rules.Cols, rules.Timing),
		plates:    plate.NewPool(rules.PlateCapacity),
	}
	s.Reset()
	return s
}

func (s *Session) Rules() Rules { return s.rules }

func (s *Session) State() State { return s.state }

func (s *Session) Running() bool { return s.state == StateRunning }

func (s *Session) Score() int { return s.score }

func (s *Session) Level() int { return s.level }

func (s *Session) Stats() Stats { return s.stats }

// Customer returns a copy of the waiting customer, or nil.
func (s *Session) Customer() *customer.Customer {
	if s.customer == nil {
		return nil
	}
	c := *s.customer
	return &c
}

// Reset returns the session to its initial, not started values.
func (s *Session) Reset() {
	s.state = StateNotStarted
	s.griddle.Clear()
	s.plates.Clear()
	s.customer = nil
	s.score = 0
	s.level = StartLevel
	s.stats = Stats{}
	s.startedAt = time.Time{}
	s.endedAt = time.Time{}
	s.remaining = s.rules.MatchDuration
	s.patienceDue = time.Time{}
	s.spawnDue = time.Time{}
	s.events = nil
}

// Start begins a fresh match at now and seats the first customer.
func (s *Session) Start(now time.Time) {
	s.Reset()
	s.state = StateRunning
	s.startedAt = now
	s.patienceDue = now.Add(s.rules.PatienceInterval)
	s.emit(Event{Kind: EventMatchStarted, At: now, Remaining: s.rules.MatchDuration})
	s.SpawnCustomer(now)
}

// Stop forces the match to end.
func (s *Session) Stop(now time.Time) {
	if s.state != StateRunning {
		return
	}
	s.remaining = s.remainingAt(now)
	s.end(now, ReasonStopped)
}

func (s *Session) end(now time.Time, reason string) {
	s.state = StateEnded
	s.endedAt = now
	s.customer = nil
	s.spawnDue = time.Time{}
	s.emit(Event{Kind: EventMatchEnded, At: now, Reason: reason, Remaining: s.remaining})
}

// SpawnCustomer seats a new customer when the slot is free and the match runs.
func (s *Session) SpawnCustomer(now time.Time) bool {
	if !s.Running() || s.customer != nil {
		return false
	}
	s.customer = customer.New(s.generator.Generate(s.level), s.rules.MaxPatience, now)
	s.spawnDue = time.Time{}
	s.emit(Event{Kind: EventCustomerArrived, At: now, Customer: s.customer})
	return true
}

// TickPatience ages the waiting customer by one step. A customer that runs
// out of patience leaves angry and the next one is scheduled.
func (s *Session) TickPatience(now time.Time) {
	if !s.Running() || s.customer == nil {
		return
	}
	if !s.customer.Wait(s.rules.PatienceStep) {
		return
	}
	s.stats.Angry++
	s.emit(Event{Kind: EventCustomerDeparted, At: now, Reason: ReasonAngry, Customer: s.customer})
	s.customer = nil
	s.spawnDue = now.Add(s.rules.RespawnDelay)
}

// TickCooking refreshes the cached doneness of every cell.
func (s *Session) TickCooking(now time.Time) []griddle.LevelChange {
	if !s.Running() {
		return nil
	}
	return s.griddle.Refresh(now)
}

// TickCountdown recomputes the remaining time and ends the match when it
// runs out. It reports whether the match is over.
func (s *Session) TickCountdown(now time.Time) bool {
	switch s.state {
	case StateEnded:
		return true
	case StateNotStarted:
		return false
	}
	s.remaining = s.remainingAt(now)
	if s.remaining > 0 {
		return false
	}
	s.end(now, ReasonTimeout)
	return true
}

// TickReport summarizes one call to Tick.
type TickReport struct {
	Ended   bool
	Changes []griddle.LevelChange
	Spawned bool
}

// Tick runs every due timer against now: countdown, patience steps,
// cooking refresh and a pending spawn.
func (s *Session) Tick(now time.Time) TickReport {
	if s.TickCountdown(now) {
		return TickReport{Ended: true}
	}
	if !s.Running() {
		return TickReport{}
	}

	for !now.Before(s.patienceDue) {
		s.TickPatience(s.patienceDue)
		s.patienceDue = s.patienceDue.Add(s.rules.PatienceInterval)
	}

	report := TickReport{Changes: s.TickCooking(now)}
	if !s.spawnDue.IsZero() && !now.Before(s.spawnDue) {
		report.Spawned = s.SpawnCustomer(now)
	}
	return report
}

// Remaining is the match time left at now.
func (s *Session) Remaining(now time.Time) time.Duration {
	if s.Running() {
		return s.remainingAt(now)
	}
	return s.remaining
}

func (s *Session) remainingAt(now time.Time) time.Duration {
	left := s.rules.MatchDuration - now.Sub(s.startedAt)
	if left < 0 {
		return 0
	}
	return left
}

// FormatRemaining renders a duration as M:SS, rounding partial seconds up.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int((d + time.Second - 1) / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

func (s *Session) AddBatter(row, col int, now time.Time) griddle.Outcome {
	if !s.Running() {
		return griddle.OutcomeNoOp
	}
	return s.griddle.AddBatter(row, col, now)
}

func (s *Session) AddOctopus(row, col int) griddle.Outcome {
	if !s.Running() {
		return griddle.OutcomeNoOp
	}
	return s.griddle.AddOctopus(row, col)
}

// Stick flips a raw ball, plates a perfect one or throws away a burnt one.
func (s *Session) Stick(row, col int, now time.Time) griddle.Outcome {
	if !s.Running() {
		return griddle.OutcomeNoOp
	}
	return s.griddle.Stick(row, col, now, s.plates)
}

func (s *Session) Discard(row, col int, now time.Time) griddle.Outcome {
	if !s.Running() {
		return griddle.OutcomeNoOp
	}
	return s.griddle.Discard(row, col, now)
}

func (s *Session) AddSauce(index int) bool {
	if !s.Running() {
		return false
	}
	return s.plates.AddSauce(index)
}

func (s *Session) AddTopping(index int, t topping.Topping) bool {
	if !s.Running() {
		return false
	}
	return s.plates.AddTopping(index, t)
}

// Serve hands the whole plate pool to the waiting customer. finalMood is
// what the player saw; when empty the customer's current mood is used. It
// only counts when the serve completes the order.
func (s *Session) Serve(now time.Time, finalMood mood.Mood) ServeResult {
	if !s.Running() {
		return ServeResult{Message: "The match is not running."}
	}
	c := s.customer
	if c == nil {
		return ServeResult{Message: "No customer is waiting."}
	}
	if s.plates.Len() == 0 {
		return ServeResult{Message: "There is no takoyaki to serve."}
	}

	completing := c.Order.Completes(s.plates.ReadyCount())
	var fm mood.Mood
	if completing {
		fm = finalMood
		if fm == "" {
			fm = c.Mood()
		}
	}

	result := order.Reconcile(c.Order, s.plates.Items(), c.Patience, fm, completing)
	c.Order.Apply(result)
	s.score += result.Score
	s.plates.Drain(result.ServedCount)

	remaining := c.Order
	served := ServeResult{
		Success:   true,
		Result:    &result,
		Remaining: &remaining,
	}

	if !c.Order.Complete() {
		served.Message = fmt.Sprintf("%d served correctly! (%d left on the order) +%d points",
			result.CorrectCount, c.Order.RemainingQuantity, result.Score)
		s.emit(Event{Kind: EventOrderServed, At: now, Customer: c, Serve: &served})
		return served
	}

	s.level++
	s.stats.Served++
	switch result.Mood {
	case mood.Happy:
		s.stats.Happy++
		s.stats.HappyBonus += result.BonusScore
	case mood.Neutral:
		s.stats.Neutral++
	case mood.Angry:
		s.stats.Angry++
	}

	served.OrderCompleted = true
	served.Message = fmt.Sprintf("Order complete! Level %d! %d correct! +%d points",
		s.level, result.CorrectCount, result.Score)
	if result.BonusScore > 0 {
		served.Message += fmt.Sprintf(" (bonus +%d!)", result.BonusScore)
	}

	s.emit(Event{Kind: EventOrderServed, At: now, Customer: c, Serve: &served})
	s.emit(Event{Kind: EventCustomerDeparted, At: now, Reason: ReasonServed, Customer: c})
	s.customer = nil
	s.spawnDue = now.Add(s.rules.RespawnDelay)
	return served
}
