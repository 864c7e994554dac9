// Package bot plays headless matches against a synthetic clock. It is used
// to balance rules and to smoke test the engine end to end.
package bot

import (
	"math/rand/v2"
	"time"

	"github.com/appetiteclub/takoyaki/pkg/enums/doneness"
	"github.com/appetiteclub/takoyaki/pkg/enums/topping"
	"github.com/appetiteclub/takoyaki/services/tycoon/internal/order"
	"github.com/appetiteclub/takoyaki/services/tycoon/internal/plate"
	"github.com/appetiteclub/takoyaki/services/tycoon/internal/session"
)

const DefaultStep = 100 * time.Millisecond

type Options struct {
	Rules session.Rules
	Seed  uint64
	// Step is how far the synthetic clock moves between bot turns.
	Step time.Duration
	// Accuracy is the chance a plated item gets the topping the order needs.
	Accuracy float64
	Start    time.Time
}

// Report summarizes one finished match.
type Report struct {
	Score    int                       `json:"score"`
	Level    int                       `json:"level"`
	Stats    session.Stats             `json:"stats"`
	Serves   int                       `json:"serves"`
	Events   map[session.EventKind]int `json:"events"`
	Played   time.Duration             `json:"played"`
	Messages []string                  `json:"messages,omitempty"`
}

type player struct {
	s        *session.Session
	rng      *rand.Rand
	accuracy float64
	report   *Report
}

// Play runs one match from start to timeout.
func Play(opts Options) Report {
	if opts.Step <= 0 {
		opts.Step = DefaultStep
	}
	if opts.Start.IsZero() {
		opts.Start = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	}

	s := session.New(opts.Rules, order.NewSeededGenerator(opts.Seed))
	report := Report{Events: make(map[session.EventKind]int)}
	p := &player{
		s:        s,
		rng:      rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)),
		accuracy: opts.Accuracy,
		report:   &report,
	}

	now := opts.Start
	s.Start(now)
	p.count()

	for s.Running() {
		now = now.Add(opts.Step)
		s.Tick(now)
		if s.Running() {
			p.turn(now)
		}
		p.count()
	}

	report.Score = s.Score()
	report.Level = s.Level()
	report.Stats = s.Stats()
	report.Played = now.Sub(opts.Start)
	return report
}

func (p *player) count() {
	for _, e := range p.s.DrainEvents() {
		p.report.Events[e.Kind]++
	}
}

func (p *player) turn(now time.Time) {
	c := p.s.Customer()
	if c == nil {
		return
	}

	snap := p.s.Snapshot(now)
	p.dress(snap.Plates, c.Order.Remaining)

	snap = p.s.Snapshot(now)
	ready := 0
	for _, item := range snap.Plates {
		if item.Ready() {
			ready++
		}
	}
	if len(snap.Plates) > 0 && (c.Order.Completes(ready) || len(snap.Plates) >= snap.PlateCapacity) {
		res := p.s.Serve(now, "")
		if res.Success {
			p.report.Serves++
			p.report.Messages = append(p.report.Messages, res.Message)
		}
		return
	}

	p.cook(snap, c.Order.RemainingQuantity, now)
}

// dress sauces every bare item and tops it with a category the order still
// needs.
func (p *player) dress(items []plate.Item, remaining order.Breakdown) {
	var dressed order.Breakdown
	for _, item := range items {
		if item.Sauce {
			dressed.Add(item.Category(), 1)
		}
	}

	for i, item := range items {
		if item.Sauce {
			continue
		}
		want := topping.None
		for _, t := range topping.All {
			if remaining.Get(t)-dressed.Get(t) > 0 {
				want = t
				break
			}
		}
		if p.rng.Float64() >= p.accuracy {
			want = topping.All[p.rng.IntN(len(topping.All))]
		}

		p.s.AddSauce(i)
		if want.Applicable() {
			p.s.AddTopping(i, want)
		}
		dressed.Add(want, 1)
	}
}

// cook pours only as many balls as the order and the plate can take, and
// sticks every ball that is ready for it.
func (p *player) cook(snap session.Snapshot, remaining int, now time.Time) {
	cooking := 0
	for _, row := range snap.Cells {
		for _, c := range row {
			if c.HasBatter {
				cooking++
			}
		}
	}
	need := min(remaining-len(snap.Plates), snap.PlateCapacity-len(snap.Plates)) - cooking

	for r, row := range snap.Cells {
		for col, c := range row {
			switch {
			case !c.HasBatter:
				if need <= 0 {
					continue
				}
				p.s.AddBatter(r, col, now)
				p.s.AddOctopus(r, col)
				need--
			case !c.HasOctopus:
				p.s.AddOctopus(r, col)
			case c.CookingLevel == doneness.Raw && !c.IsFlipped:
				p.s.Stick(r, col, now)
			case c.CookingLevel == doneness.Perfect, c.CookingLevel == doneness.Burnt:
				p.s.Stick(r, col, now)
			}
		}
	}
}
