package griddle

import (
	"time"

	"github.com/appetiteclub/takoyaki/pkg/enums/doneness"
)

// Cell is one cooking slot on the griddle.
type Cell struct {
	HasBatter        bool       `json:"has_batter"`
	HasOctopus       bool       `json:"has_octopus"`
	IsFlipped        bool       `json:"is_flipped"`
	CookingStartTime *time.Time `json:"cooking_start_time,omitempty"`
	// CookingLevel is refreshed by the cooking tick; Timing.Classify is authoritative.
	CookingLevel   doneness.Level `json:"cooking_level"`
	IsMovedToPlate bool           `json:"is_moved_to_plate"`
}

func emptyCell() Cell {
	return Cell{CookingLevel: doneness.Raw}
}

func (c *Cell) reset() {
	*c = emptyCell()
}

// Empty reports whether nothing is cooking in the cell.
func (c Cell) Empty() bool {
	return !c.HasBatter
}
