package griddle

import (
	"time"

	"github.com/appetiteclub/takoyaki/pkg/enums/doneness"
)

const (
	DefaultRows = 3
	DefaultCols = 3
)

// Outcome describes what a player action did to a cell.
type Outcome string

const (
	OutcomeBatterAdded  Outcome = "batter_added"
	OutcomeOctopusAdded Outcome = "octopus_added"
	OutcomeFlipped      Outcome = "flipped"
	OutcomeMovedToPlate Outcome = "moved_to_plate"
	OutcomeDiscarded    Outcome = "discarded"
	OutcomePlateFull    Outcome = "plate_full"
	OutcomeNoOp         Outcome = "no_op"
)

// Changed reports whether the action mutated the griddle.
func (o Outcome) Changed() bool {
	return o != OutcomeNoOp && o != OutcomePlateFull
}

// Plate receives finished takoyaki. Place returns false when there is no room.
type Plate interface {
	Place(level doneness.Level) bool
}

// Position addresses a cell.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// LevelChange is reported by Refresh for every cell whose cached doneness moved.
type LevelChange struct {
	Position
	From doneness.Level `json:"from"`
	To   doneness.Level `json:"to"`
}

// Griddle is a fixed grid of cells driven by discrete player actions.
type Griddle struct {
	timing Timing
	rows   int
	cols   int
	cells  []Cell
}

func New(rows, cols int, timing Timing) *Griddle {
	if rows <= 0 {
		rows = DefaultRows
	}
	if cols <= 0 {
		cols = DefaultCols
	}
	g := &Griddle{
		timing: timing,
		rows:   rows,
		cols:   cols,
		cells:  make([]Cell, rows*cols),
	}
	g.Clear()
	return g
}

func (g *Griddle) Rows() int { return g.rows }

func (g *Griddle) Cols() int { return g.cols }

func (g *Griddle) Timing() Timing { return g.timing }

// Clear empties every cell.
func (g *Griddle) Clear() {
	for i := range g.cells {
		g.cells[i].reset()
	}
}

// Cell returns a copy of the cell at row, col.
func (g *Griddle) Cell(row, col int) (Cell, bool) {
	c := g.cell(row, col)
	if c == nil {
		return Cell{}, false
	}
	return *c, true
}

// Level returns the live doneness of the cell at now.
func (g *Griddle) Level(row, col int, now time.Time) doneness.Level {
	c := g.cell(row, col)
	if c == nil {
		return doneness.Raw
	}
	return g.timing.Classify(*c, now)
}

// AddBatter pours batter into an empty cell and starts its cooking clock.
func (g *Griddle) AddBatter(row, col int, now time.Time) Outcome {
	c := g.cell(row, col)
	if c == nil || c.HasBatter {
		return OutcomeNoOp
	}
	start := now
	c.HasBatter = true
	c.CookingStartTime = &start
	c.CookingLevel = doneness.Raw
	return OutcomeBatterAdded
}

func (g *Griddle) AddOctopus(row, col int) Outcome {
	c := g.cell(row, col)
	if c == nil || !c.HasBatter || c.HasOctopus {
		return OutcomeNoOp
	}
	c.HasOctopus = true
	return OutcomeOctopusAdded
}

// Stick applies the skewer: flips a raw ball, moves a perfect ball to the plate,
// and throws away a burnt one.
func (g *Griddle) Stick(row, col int, now time.Time, plate Plate) Outcome {
	c := g.cell(row, col)
	if c == nil || !c.HasBatter {
		return OutcomeNoOp
	}

	switch level := g.Level(row, col, now); {
	case level == doneness.Raw && c.HasOctopus:
		return g.Flip(row, col, now)
	case level == doneness.Perfect && c.HasOctopus:
		return g.MoveToPlate(row, col, now, plate)
	case level == doneness.Burnt:
		return g.Discard(row, col, now)
	default:
		return OutcomeNoOp
	}
}

// Flip turns a raw ball over. It has no effect on the cooking clock.
func (g *Griddle) Flip(row, col int, now time.Time) Outcome {
	c := g.cell(row, col)
	if c == nil || !c.HasBatter || g.timing.Classify(*c, now) != doneness.Raw {
		return OutcomeNoOp
	}
	return g.flip(c)
}

// MoveToPlate hands a perfect ball to the plate and empties the cell.
func (g *Griddle) MoveToPlate(row, col int, now time.Time, plate Plate) Outcome {
	c := g.cell(row, col)
	if c == nil || !c.HasBatter || g.timing.Classify(*c, now) != doneness.Perfect {
		return OutcomeNoOp
	}
	return g.moveToPlate(c, plate)
}

// Discard empties a burnt cell regardless of octopus or flip state.
func (g *Griddle) Discard(row, col int, now time.Time) Outcome {
	c := g.cell(row, col)
	if c == nil || g.timing.Classify(*c, now) != doneness.Burnt {
		return OutcomeNoOp
	}
	c.reset()
	return OutcomeDiscarded
}

// Refresh recomputes the cached doneness of every cooking cell.
func (g *Griddle) Refresh(now time.Time) []LevelChange {
	var changes []LevelChange
	for i := range g.cells {
		c := &g.cells[i]
		if !c.HasBatter || c.IsMovedToPlate {
			continue
		}
		level := g.timing.Classify(*c, now)
		if level == c.CookingLevel {
			continue
		}
		changes = append(changes, LevelChange{
			Position: Position{Row: i / g.cols, Col: i % g.cols},
			From:     c.CookingLevel,
			To:       level,
		})
		c.CookingLevel = level
	}
	return changes
}

// Cells returns a row-major copy of the grid with doneness computed at now.
func (g *Griddle) Cells(now time.Time) [][]Cell {
	grid := make([][]Cell, g.rows)
	for r := 0; r < g.rows; r++ {
		grid[r] = make([]Cell, g.cols)
		for col := 0; col < g.cols; col++ {
			c := g.cells[r*g.cols+col]
			c.CookingLevel = g.timing.Classify(c, now)
			grid[r][col] = c
		}
	}
	return grid
}

func (g *Griddle) flip(c *Cell) Outcome {
	if !c.HasOctopus || c.IsFlipped {
		return OutcomeNoOp
	}
	c.IsFlipped = true
	return OutcomeFlipped
}

func (g *Griddle) moveToPlate(c *Cell, plate Plate) Outcome {
	if !c.HasOctopus {
		return OutcomeNoOp
	}
	if plate == nil || !plate.Place(doneness.Perfect) {
		return OutcomePlateFull
	}
	c.reset()
	return OutcomeMovedToPlate
}

func (g *Griddle) cell(row, col int) *Cell {
	if row < 0 || row >= g.rows || col < 0 || col >= g.cols {
		return nil
	}
	return &g.cells[row*g.cols+col]
}
