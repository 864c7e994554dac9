package order

import "github.com/appetiteclub/takoyaki/pkg/enums/topping"

// Breakdown counts takoyaki per topping category.
type Breakdown struct {
	Negi        int `json:"negi"`
	Katsuobushi int `json:"katsuobushi"`
	Nori        int `json:"nori"`
	None        int `json:"none"`
}

func (b Breakdown) Get(t topping.Topping) int {
	switch t {
	case topping.Negi:
		return b.Negi
	case topping.Katsuobushi:
		return b.Katsuobushi
	case topping.Nori:
		return b.Nori
	case topping.None:
		return b.None
	}
	return 0
}

// Add adjusts the count for t by delta. Unknown categories are ignored.
func (b *Breakdown) Add(t topping.Topping, delta int) {
	switch t {
	case topping.Negi:
		b.Negi += delta
	case topping.Katsuobushi:
		b.Katsuobushi += delta
	case topping.Nori:
		b.Nori += delta
	case topping.None:
		b.None += delta
	}
}

func (b Breakdown) Total() int {
	return b.Negi + b.Katsuobushi + b.Nori + b.None
}

// Order is what a customer asked for and what is still owed.
type Order struct {
	TotalQuantity     int       `json:"total_quantity"`
	RemainingQuantity int       `json:"remaining_quantity"`
	Toppings          Breakdown `json:"topping_breakdown"`
	Remaining         Breakdown `json:"remaining_topping_breakdown"`
}

// New builds an untouched order from a requested breakdown.
func New(toppings Breakdown) Order {
	total := toppings.Total()
	return Order{
		TotalQuantity:     total,
		RemainingQuantity: total,
		Toppings:          toppings,
		Remaining:         toppings,
	}
}

// Apply deducts the correct units of a reconciliation from the remaining counts.
func (o *Order) Apply(r Result) {
	o.RemainingQuantity -= r.CorrectCount
	for _, t := range topping.All {
		o.Remaining.Add(t, -r.Breakdown.Tally(t).Correct)
	}
}

func (o Order) Complete() bool {
	return o.RemainingQuantity <= 0
}

// Completes reports whether ready items would bring the remaining quantity to zero.
func (o Order) Completes(ready int) bool {
	return o.RemainingQuantity <= ready
}
