package app

import (
	"strconv"
	"time"

	"github.com/appetiteclub/apt"

	"github.com/appetiteclub/takoyaki/services/tycoon/internal/session"
)

// ConfigReader is the part of *apt.Config the rules loader needs.
type ConfigReader interface {
	GetString(key string) (string, bool)
}

// RulesFromConfig overlays the rules.* keys on the default rules. Values
// that do not parse are logged and left at their defaults.
func RulesFromConfig(config ConfigReader, logger apt.Logger) session.Rules {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	rules := session.DefaultRules()
	if config == nil {
		return rules
	}

	durations := []struct {
		key    string
		target *time.Duration
	}{
		{"rules.match.duration", &rules.MatchDuration},
		{"rules.cooking.perfect", &rules.Timing.Perfect},
		{"rules.cooking.burnt", &rules.Timing.Burnt},
		{"rules.patience.interval", &rules.PatienceInterval},
		{"rules.customer.respawn", &rules.RespawnDelay},
		{"rules.tick.cooking", &rules.CookingTick},
		{"rules.tick.countdown", &rules.CountdownTick},
	}
	for _, d := range durations {
		raw, ok := config.GetString(d.key)
		if !ok || raw == "" {
			continue
		}
		v, err := time.ParseDuration(raw)
		if err != nil || v < 0 {
			logger.Info("ignoring invalid duration", "key", d.key, "value", raw)
			continue
		}
		*d.target = v
	}

	ints := []struct {
		key    string
		target *int
	}{
		{"rules.griddle.rows", &rules.Rows},
		{"rules.griddle.cols", &rules.Cols},
		{"rules.plate.capacity", &rules.PlateCapacity},
	}
	for _, n := range ints {
		raw, ok := config.GetString(n.key)
		if !ok || raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			logger.Info("ignoring invalid integer", "key", n.key, "value", raw)
			continue
		}
		*n.target = v
	}

	floats := []struct {
		key    string
		target *float64
	}{
		{"rules.patience.max", &rules.MaxPatience},
		{"rules.patience.step", &rules.PatienceStep},
	}
	for _, f := range floats {
		raw, ok := config.GetString(f.key)
		if !ok || raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 {
			logger.Info("ignoring invalid number", "key", f.key, "value", raw)
			continue
		}
		*f.target = v
	}

	if rules.Timing.Burnt <= rules.Timing.Perfect {
		logger.Info("burnt time must exceed perfect time, using default cooking times",
			"perfect", rules.Timing.Perfect.String(), "burnt", rules.Timing.Burnt.String())
		rules.Timing = session.DefaultRules().Timing
	}

	return rules
}
