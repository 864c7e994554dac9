package session

import (
	"time"

	"github.com/appetiteclub/takoyaki/services/tycoon/internal/customer"
	"github.com/appetiteclub/takoyaki/services/tycoon/internal/griddle"
	"github.com/appetiteclub/takoyaki/services/tycoon/internal/plate"
)

const (
	DefaultMatchDuration    = 180 * time.Second
	DefaultPatienceInterval = time.Second
	DefaultRespawnDelay     = time.Second
	DefaultCookingTick      = 100 * time.Millisecond
	DefaultCountdownTick    = time.Second
	StartLevel              = 1
)

// Rules are the tunable constants of a match.
type Rules struct {
	MatchDuration    time.Duration
	Timing           griddle.Timing
	Rows             int
	Cols             int
	PlateCapacity    int
	MaxPatience      float64
	PatienceStep     float64
	PatienceInterval time.Duration
	RespawnDelay     time.Duration
	CookingTick      time.Duration
	CountdownTick    time.Duration
}

func DefaultRules() Rules {
	return Rules{
		MatchDuration:    DefaultMatchDuration,
		Timing:           griddle.DefaultTiming(),
		Rows:             griddle.DefaultRows,
		Cols:             griddle.DefaultCols,
		PlateCapacity:    plate.DefaultCapacity,
		MaxPatience:      customer.DefaultMaxPatience,
		PatienceStep:     customer.DefaultPatienceStep,
		PatienceInterval: DefaultPatienceInterval,
		RespawnDelay:     DefaultRespawnDelay,
		CookingTick:      DefaultCookingTick,
		CountdownTick:    DefaultCountdownTick,
	}
}

// normalized replaces unusable values with defaults.
func (r Rules) normalized() Rules {
	d := DefaultRules()
	if r.MatchDuration <= 0 {
		r.MatchDuration = d.MatchDuration
	}
	if r.Timing.Perfect <= 0 || r.Timing.Burnt <= r.Timing.Perfect {
		r.Timing = d.Timing
	}
	if r.Rows <= 0 {
		r.Rows = d.Rows
	}
	if r.Cols <= 0 {
		r.Cols = d.Cols
	}
	if r.PlateCapacity <= 0 {
		r.PlateCapacity = d.PlateCapacity
	}
	if r.MaxPatience <= 0 {
		r.MaxPatience = d.MaxPatience
	}
	if r.PatienceStep <= 0 {
		r.PatienceStep = d.PatienceStep
	}
	if r.PatienceInterval <= 0 {
		r.PatienceInterval = d.PatienceInterval
	}
	if r.RespawnDelay < 0 {
		r.RespawnDelay = d.RespawnDelay
	}
	if r.CookingTick <= 0 {
		r.CookingTick = d.CookingTick
	}
	if r.CountdownTick <= 0 {
		r.CountdownTick = d.CountdownTick
	}
	return r
}
