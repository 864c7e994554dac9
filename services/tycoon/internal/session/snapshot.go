package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/appetiteclub/takoyaki/pkg/enums/mood"
	"github.com/appetiteclub/takoyaki/services/tycoon/internal/griddle"
	"github.com/appetiteclub/takoyaki/services/tycoon/internal/order"
	"github.com/appetiteclub/takoyaki/services/tycoon/internal/plate"
)

// CustomerView is the waiting customer as the HUD shows it.
type CustomerView struct {
	ID       uuid.UUID   `json:"id"`
	Order    order.Order `json:"order"`
	Patience float64     `json:"patience"`
	Mood     mood.Mood   `json:"mood"`
}

// Snapshot is a read-only copy of everything the view renders.
type Snapshot struct {
	ID            uuid.UUID        `json:"id"`
	State         State            `json:"state"`
	Cells         [][]griddle.Cell `json:"cells"`
	Plates        []plate.Item     `json:"plates"`
	PlateCapacity int              `json:"plate_capacity"`
	Customer      *CustomerView    `json:"customer,omitempty"`
	Score         int              `json:"score"`
	Level         int              `json:"level"`
	Remaining     string           `json:"remaining"`
	RemainingMs   int64            `json:"remaining_ms"`
	Stats         Stats            `json:"stats"`
}

func (s *Session) Snapshot(now time.Time) Snapshot {
	remaining := s.Remaining(now)
	snap := Snapshot{
		ID:            s.ID,
		State:         s.state,
		Cells:         s.griddle.Cells(now),
		Plates:        s.plates.Items(),
		PlateCapacity: s.plates.Capacity(),
		Score:         s.score,
		Level:         s.level,
		Remaining:     FormatRemaining(remaining),
		RemainingMs:   remaining.Milliseconds(),
		Stats:         s.stats,
	}
	if c := s.customer; c != nil {
		snap.Customer = &CustomerView{
			ID:       c.ID,
			Order:    c.Order,
			Patience: c.Patience,
			Mood:     c.Mood(),
		}
	}
	return snap
}
