package griddle

import (
	"testing"
	"time"

	"github.com/appetiteclub/takoyaki/pkg/enums/doneness"
)

type stubPlate struct {
	capacity int
	placed   []doneness.Level
}

func (p *stubPlate) Place(level doneness.Level) bool {
	if len(p.placed) >= p.capacity {
		return false
	}
	p.placed = append(p.placed, level)
	return true
}

func newTestGriddle() *Griddle {
	return New(DefaultRows, DefaultCols, DefaultTiming())
}

func TestNewGriddle(t *testing.T) {
	tests := []struct {
		name     string
		rows     int
		cols     int
		wantRows int
		wantCols int
	}{
		{name: "default3x3", rows: 3, cols: 3, wantRows: 3, wantCols: 3},
		{name: "custom2x4", rows: 2, cols: 4, wantRows: 2, wantCols: 4},
		{name: "invalidFallsBackToDefault", rows: 0, cols: -1, wantRows: DefaultRows, wantCols: DefaultCols},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(tt.rows, tt.cols, DefaultTiming())
			if g.Rows() != tt.wantRows || g.Cols() != tt.wantCols {
				t.Fatalf("New() = %dx%d, want %dx%d", g.Rows(), g.Cols(), tt.wantRows, tt.wantCols)
			}
			for r := 0; r < g.Rows(); r++ {
				for c := 0; c < g.Cols(); c++ {
					cell, ok := g.Cell(r, c)
					if !ok || !cell.Empty() || cell.CookingLevel != doneness.Raw {
						t.Errorf("cell[%d][%d] not empty: %+v", r, c, cell)
					}
				}
			}
		})
	}
}

func TestGriddleAddBatter(t *testing.T) {
	g := newTestGriddle()

	if got := g.AddBatter(0, 0, epoch); got != OutcomeBatterAdded {
		t.Fatalf("AddBatter() = %q, want %q", got, OutcomeBatterAdded)
	}
	cell, _ := g.Cell(0, 0)
	if !cell.HasBatter || cell.CookingStartTime == nil || !cell.CookingStartTime.Equal(epoch) {
		t.Errorf("AddBatter() left cell %+v", cell)
	}

	if got := g.AddBatter(0, 0, epoch.Add(time.Second)); got != OutcomeNoOp {
		t.Errorf("second AddBatter() = %q, want %q", got, OutcomeNoOp)
	}
	cell, _ = g.Cell(0, 0)
	if !cell.CookingStartTime.Equal(epoch) {
		t.Errorf("second AddBatter() reset start time to %v", cell.CookingStartTime)
	}

	if got := g.AddBatter(5, 5, epoch); got != OutcomeNoOp {
		t.Errorf("AddBatter() out of range = %q, want %q", got, OutcomeNoOp)
	}
}

func TestGriddleAddOctopus(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*Griddle)
		want  Outcome
	}{
		{
			name:  "withoutBatter",
			setup: func(g *Griddle) {},
			want:  OutcomeNoOp,
		},
		{
			name:  "withBatter",
			setup: func(g *Griddle) { g.AddBatter(1, 1, epoch) },
			want:  OutcomeOctopusAdded,
		},
		{
			name: "alreadyHasOctopus",
			setup: func(g *Griddle) {
				g.AddBatter(1, 1, epoch)
				g.AddOctopus(1, 1)
			},
			want: OutcomeNoOp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGriddle()
			tt.setup(g)
			if got := g.AddOctopus(1, 1); got != tt.want {
				t.Errorf("AddOctopus() = %q, want %q", got, tt.want)
			}
			cell, _ := g.Cell(1, 1)
			if cell.HasOctopus && !cell.HasBatter {
				t.Error("octopus without batter")
			}
		})
	}
}

func TestGriddleStick(t *testing.T) {
	tests := []struct {
		name       string
		octopus    bool
		flipped    bool
		elapsed    time.Duration
		capacity   int
		want       Outcome
		wantPlaced int
		wantEmpty  bool
	}{
		{
			name:     "rawWithoutOctopusDoesNothing",
			elapsed:  time.Second,
			capacity: 10,
			want:     OutcomeNoOp,
		},
		{
			name:     "rawWithOctopusFlips",
			octopus:  true,
			elapsed:  time.Second,
			capacity: 10,
			want:     OutcomeFlipped,
		},
		{
			name:     "rawAlreadyFlipped",
			octopus:  true,
			flipped:  true,
			elapsed:  time.Second,
			capacity: 10,
			want:     OutcomeNoOp,
		},
		{
			name:       "perfectMovesToPlate",
			octopus:    true,
			flipped:    true,
			elapsed:    DefaultPerfectTime,
			capacity:   10,
			want:       OutcomeMovedToPlate,
			wantPlaced: 1,
			wantEmpty:  true,
		},
		{
			name:       "perfectUnflippedStillMoves",
			octopus:    true,
			elapsed:    DefaultPerfectTime + time.Second,
			capacity:   10,
			want:       OutcomeMovedToPlate,
			wantPlaced: 1,
			wantEmpty:  true,
		},
		{
			name:     "perfectWithoutOctopus",
			elapsed:  DefaultPerfectTime,
			capacity: 10,
			want:     OutcomeNoOp,
		},
		{
			name:     "perfectButPlateFull",
			octopus:  true,
			elapsed:  DefaultPerfectTime,
			capacity: 0,
			want:     OutcomePlateFull,
		},
		{
			name:      "burntIsDiscarded",
			octopus:   true,
			elapsed:   DefaultBurntTime,
			capacity:  10,
			want:      OutcomeDiscarded,
			wantEmpty: true,
		},
		{
			name:      "burntWithoutOctopusIsDiscarded",
			elapsed:   DefaultBurntTime,
			capacity:  10,
			want:      OutcomeDiscarded,
			wantEmpty: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGriddle()
			plate := &stubPlate{capacity: tt.capacity}
			g.AddBatter(0, 2, epoch)
			if tt.octopus {
				g.AddOctopus(0, 2)
			}
			if tt.flipped {
				g.Stick(0, 2, epoch, plate)
			}

			got := g.Stick(0, 2, epoch.Add(tt.elapsed), plate)
			if got != tt.want {
				t.Errorf("Stick() = %q, want %q", got, tt.want)
			}
			if len(plate.placed) != tt.wantPlaced {
				t.Errorf("placed = %d, want %d", len(plate.placed), tt.wantPlaced)
			}
			for _, level := range plate.placed {
				if level != doneness.Perfect {
					t.Errorf("placed level = %q, want %q", level, doneness.Perfect)
				}
			}
			cell, _ := g.Cell(0, 2)
			if cell.Empty() != tt.wantEmpty {
				t.Errorf("cell empty = %v, want %v", cell.Empty(), tt.wantEmpty)
			}
		})
	}
}

func TestGriddleStickOnEmptyCell(t *testing.T) {
	g := newTestGriddle()
	if got := g.Stick(2, 2, epoch, &stubPlate{capacity: 10}); got != OutcomeNoOp {
		t.Errorf("Stick() on empty cell = %q, want %q", got, OutcomeNoOp)
	}
}

func TestGriddleFlipDoesNotResetTimer(t *testing.T) {
	g := newTestGriddle()
	g.AddBatter(0, 0, epoch)
	g.AddOctopus(0, 0)

	if got := g.Flip(0, 0, epoch.Add(4*time.Second)); got != OutcomeFlipped {
		t.Fatalf("Flip() = %q, want %q", got, OutcomeFlipped)
	}
	if got := g.Level(0, 0, epoch.Add(DefaultPerfectTime)); got != doneness.Perfect {
		t.Errorf("Level() after flip = %q, want %q", got, doneness.Perfect)
	}
}

func TestGriddleMoveToPlate(t *testing.T) {
	g := newTestGriddle()
	plate := &stubPlate{capacity: 1}
	g.AddBatter(0, 0, epoch)
	g.AddOctopus(0, 0)

	if got := g.MoveToPlate(0, 0, epoch.Add(time.Second), plate); got != OutcomeNoOp {
		t.Errorf("MoveToPlate() while raw = %q, want %q", got, OutcomeNoOp)
	}
	if got := g.MoveToPlate(0, 0, epoch.Add(DefaultPerfectTime), plate); got != OutcomeMovedToPlate {
		t.Errorf("MoveToPlate() while perfect = %q, want %q", got, OutcomeMovedToPlate)
	}

	g.AddBatter(0, 0, epoch)
	g.AddOctopus(0, 0)
	if got := g.MoveToPlate(0, 0, epoch.Add(DefaultPerfectTime), plate); got != OutcomePlateFull {
		t.Errorf("MoveToPlate() with full plate = %q, want %q", got, OutcomePlateFull)
	}
	cell, _ := g.Cell(0, 0)
	if !cell.HasBatter || !cell.HasOctopus {
		t.Errorf("rejected move changed the cell: %+v", cell)
	}
}

func TestGriddleDiscard(t *testing.T) {
	tests := []struct {
		name    string
		elapsed time.Duration
		want    Outcome
	}{
		{name: "raw", elapsed: time.Second, want: OutcomeNoOp},
		{name: "perfect", elapsed: DefaultPerfectTime, want: OutcomeNoOp},
		{name: "burnt", elapsed: DefaultBurntTime, want: OutcomeDiscarded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGriddle()
			g.AddBatter(1, 0, epoch)
			if got := g.Discard(1, 0, epoch.Add(tt.elapsed)); got != tt.want {
				t.Errorf("Discard() = %q, want %q", got, tt.want)
			}
		})
	}

	g := newTestGriddle()
	if got := g.Discard(1, 0, epoch.Add(time.Hour)); got != OutcomeNoOp {
		t.Errorf("Discard() on empty cell = %q, want %q", got, OutcomeNoOp)
	}
}

func TestGriddleRefresh(t *testing.T) {
	g := newTestGriddle()
	g.AddBatter(0, 0, epoch)
	g.AddBatter(2, 1, epoch.Add(3*time.Second))

	if changes := g.Refresh(epoch.Add(time.Second)); len(changes) != 0 {
		t.Errorf("Refresh() at 1s changes = %v, want none", changes)
	}

	changes := g.Refresh(epoch.Add(DefaultPerfectTime))
	if len(changes) != 1 {
		t.Fatalf("Refresh() at 5s changes = %d, want 1", len(changes))
	}
	if changes[0].Row != 0 || changes[0].Col != 0 || changes[0].To != doneness.Perfect {
		t.Errorf("Refresh() change = %+v", changes[0])
	}

	changes = g.Refresh(epoch.Add(DefaultBurntTime + 3*time.Second))
	if len(changes) != 2 {
		t.Fatalf("Refresh() at 13s changes = %d, want 2", len(changes))
	}

	now := epoch.Add(DefaultBurntTime + 3*time.Second)
	for r, row := range g.Cells(now) {
		for c, cell := range row {
			cached, _ := g.Cell(r, c)
			if cached.CookingLevel != cell.CookingLevel {
				t.Errorf("cell[%d][%d] cache %q diverges from live %q", r, c, cached.CookingLevel, cell.CookingLevel)
			}
		}
	}
}

func TestOutcomeChanged(t *testing.T) {
	for _, o := range []Outcome{OutcomeNoOp, OutcomePlateFull} {
		if o.Changed() {
			t.Errorf("%q.Changed() = true, want false", o)
		}
	}
	for _, o := range []Outcome{OutcomeBatterAdded, OutcomeOctopusAdded, OutcomeFlipped, OutcomeMovedToPlate, OutcomeDiscarded} {
		if !o.Changed() {
			t.Errorf("%q.Changed() = false, want true", o)
		}
	}
}
