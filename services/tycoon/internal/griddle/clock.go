package griddle

import (
	"time"

	"github.com/appetiteclub/takoyaki/pkg/enums/doneness"
)

const (
	DefaultPerfectTime = 5 * time.Second
	DefaultBurntTime   = 10 * time.Second
)

// Timing holds the doneness thresholds measured from the moment batter is poured.
type Timing struct {
	Perfect time.Duration
	Burnt   time.Duration
}

func DefaultTiming() Timing {
	return Timing{Perfect: DefaultPerfectTime, Burnt: DefaultBurntTime}
}

// Classify returns the doneness of the cell at now. Only elapsed time since the
// batter was poured counts; flipping does not change it. Cells without batter or
// without a start time are always raw.
func (t Timing) Classify(c Cell, now time.Time) doneness.Level {
	if !c.HasBatter || c.CookingStartTime == nil {
		return doneness.Raw
	}

	elapsed := now.Sub(*c.CookingStartTime)
	switch {
	case elapsed < t.Perfect:
		return doneness.Raw
	case elapsed < t.Burnt:
		return doneness.Perfect
	default:
		return doneness.Burnt
	}
}

