package commands

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/appetiteclub/takoyaki/pkg/enums/topping"
	"github.com/appetiteclub/takoyaki/pkg/event"
)

// belongsTo reports whether an encoded event is about the given session.
func belongsTo(data []byte, sessionID string) bool {
	var env event.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return false
	}
	return env.SessionID == sessionID
}

// Describe renders a match event as one human readable line.
func Describe(data []byte) (string, error) {
	var env event.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", fmt.Errorf("decode event: %w", err)
	}

	prefix := fmt.Sprintf("[%s] %s lvl=%d score=%d",
		shortID(env.SessionID), env.OccurredAt.Format("15:04:05.000"), env.Level, env.Score)

	switch env.EventType {
	case event.EventMatchStarted:
		var e event.MatchStartedEvent
		if err := json.Unmarshal(data, &e); err != nil {
			return "", fmt.Errorf("decode %s: %w", env.EventType, err)
		}
		return fmt.Sprintf("%s match started (%ds)", prefix, e.DurationMs/1000), nil

	case event.EventMatchEnded:
		var e event.MatchEndedEvent
		if err := json.Unmarshal(data, &e); err != nil {
			return "", fmt.Errorf("decode %s: %w", env.EventType, err)
		}
		return fmt.Sprintf("%s match ended: %s served=%d happy=%d neutral=%d angry=%d bonus=%d",
			prefix, e.Reason, e.Stats.Served, e.Stats.Happy, e.Stats.Neutral, e.Stats.Angry, e.Stats.HappyBonus), nil

	case event.EventCustomerArrived:
		var e event.CustomerArrivedEvent
		if err := json.Unmarshal(data, &e); err != nil {
			return "", fmt.Errorf("decode %s: %w", env.EventType, err)
		}
		return fmt.Sprintf("%s customer %s wants %d: %s",
			prefix, shortID(e.CustomerID), e.OrderTotal, formatToppings(e.Toppings)), nil

	case event.EventCustomerDeparted:
		var e event.CustomerDepartedEvent
		if err := json.Unmarshal(data, &e); err != nil {
			return "", fmt.Errorf("decode %s: %w", env.EventType, err)
		}
		return fmt.Sprintf("%s customer %s left (%s, patience %.0f) after %ds",
			prefix, shortID(e.CustomerID), e.Reason, e.Patience, e.WaitedMs/1000), nil

	case event.EventOrderServed:
		var e event.OrderServedEvent
		if err := json.Unmarshal(data, &e); err != nil {
			return "", fmt.Errorf("decode %s: %w", env.EventType, err)
		}
		line := fmt.Sprintf("%s served %d/%d correct +%d", prefix, e.CorrectCount, e.ServedCount, e.Points)
		if e.BonusScore > 0 {
			line += fmt.Sprintf(" bonus +%d", e.BonusScore)
		}
		if e.OrderCompleted {
			line += fmt.Sprintf(" complete (%s)", e.Mood)
		} else {
			line += " still wants " + formatToppings(e.Remaining)
		}
		return line, nil
	}

	return fmt.Sprintf("%s %s", prefix, env.EventType), nil
}

func formatToppings(counts map[string]int) string {
	var parts []string
	for _, t := range topping.All {
		if n := counts[t.Code()]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s x%d", t.Code(), n))
		}
	}
	var extra []string
	for k, n := range counts {
		if topping.ByName(k) == nil && n > 0 {
			extra = append(extra, fmt.Sprintf("%s x%d", k, n))
		}
	}
	sort.Strings(extra)
	parts = append(parts, extra...)
	if len(parts) == 0 {
		return "nothing"
	}
	return strings.Join(parts, ", ")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
