package order

import (
	"github.com/appetiteclub/takoyaki/pkg/enums/doneness"
	"github.com/appetiteclub/takoyaki/pkg/enums/mood"
	"github.com/appetiteclub/takoyaki/pkg/enums/topping"
	"github.com/appetiteclub/takoyaki/services/tycoon/internal/plate"
)

const (
	PointsPerItem = 100
	BonusPerItem  = 50
)

// Tally pairs what was requested for a category with what was correctly served.
type Tally struct {
	Requested int `json:"requested"`
	Correct   int `json:"correct"`
}

// ResultBreakdown is the per-category tally plus defect counters.
type ResultBreakdown struct {
	Negi          Tally `json:"negi"`
	Katsuobushi   Tally `json:"katsuobushi"`
	Nori          Tally `json:"nori"`
	None          Tally `json:"none"`
	SauceIssues   int   `json:"sauce_issues"`
	CookingIssues int   `json:"cooking_issues"`
}

func (b ResultBreakdown) Tally(t topping.Topping) Tally {
	if p := b.tally(t); p != nil {
		return *p
	}
	return Tally{}
}

func (b *ResultBreakdown) tally(t topping.Topping) *Tally {
	switch t {
	case topping.Negi:
		return &b.Negi
	case topping.Katsuobushi:
		return &b.Katsuobushi
	case topping.Nori:
		return &b.Nori
	case topping.None:
		return &b.None
	}
	return nil
}

// Result is the outcome of matching served items against an order.
type Result struct {
	CorrectCount int             `json:"correct_count"`
	ServedCount  int             `json:"served_count"`
	Mood         mood.Mood       `json:"mood"`
	Score        int             `json:"score"`
	BonusScore   int             `json:"bonus_score"`
	Breakdown    ResultBreakdown `json:"breakdown"`
}

// Reconcile matches items against the remaining order. It does not mutate the order;
// use Order.Apply with the result. finalMood may be empty for partial serves.
func Reconcile(o Order, items []plate.Item, patience float64, finalMood mood.Mood, completing bool) Result {
	var b ResultBreakdown
	for _, t := range topping.All {
		b.tally(t).Requested = o.Remaining.Get(t)
	}

	for _, item := range items {
		if !item.Sauce {
			b.SauceIssues++
			continue
		}
		if item.CookingLevel != doneness.Perfect {
			b.CookingIssues++
			continue
		}
		tally := b.tally(item.Category())
		if tally == nil {
			tally = &b.None
		}
		if tally.Correct < tally.Requested {
			tally.Correct++
		}
	}

	correct := b.Negi.Correct + b.Katsuobushi.Correct + b.Nori.Correct + b.None.Correct

	bonus := 0
	if completing && finalMood == mood.Happy {
		bonus = o.TotalQuantity * BonusPerItem
	}

	return Result{
		CorrectCount: correct,
		ServedCount:  len(items),
		Mood:         mood.ForPatience(patience),
		Score:        correct*PointsPerItem + bonus,
		BonusScore:   bonus,
		Breakdown:    b,
	}
}
