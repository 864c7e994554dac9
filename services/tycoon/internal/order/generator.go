package order

import (
	"math/rand/v2"
	"time"

	"github.com/appetiteclub/takoyaki/pkg/enums/topping"
)

const (
	baseMinQuantity     = 3
	baseMaxQuantity     = 6
	maxMinQuantity      = 15
	maxMaxQuantity      = 27
	baseComplexity      = 0.2
	complexityPerLevel  = 0.08
	maxComplexity       = 1.0
	seedComplexityLimit = 0.3
)

// Difficulty is the order shape unlocked at a level.
type Difficulty struct {
	MinQuantity       int     `json:"min_quantity"`
	MaxQuantity       int     `json:"max_quantity"`
	ToppingComplexity float64 `json:"topping_complexity"`
}

func LevelConfig(level int) Difficulty {
	return Difficulty{
		MinQuantity:       min(baseMinQuantity+floorDiv(level, 2), maxMinQuantity),
		MaxQuantity:       min(baseMaxQuantity+level*2, maxMaxQuantity),
		ToppingComplexity: min(baseComplexity+float64(level-1)*complexityPerLevel, maxComplexity),
	}
}

// Generator draws random customer orders.
type Generator struct {
	rng *rand.Rand
}

func NewGenerator(rng *rand.Rand) *Generator {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	return &Generator{rng: rng}
}

// NewSeededGenerator returns a deterministic generator.
func NewSeededGenerator(seed uint64) *Generator {
	return NewGenerator(rand.New(rand.NewPCG(seed, seed)))
}

func (g *Generator) Generate(level int) Order {
	cfg := LevelConfig(level)

	total := max(cfg.MinQuantity, 0)
	if cfg.MaxQuantity > total {
		total += g.rng.IntN(cfg.MaxQuantity - total + 1)
	}

	var toppings Breakdown
	units := total
	if cfg.ToppingComplexity <= seedComplexityLimit && units > 0 {
		toppings.Add(g.pick(), 1)
		units--
	}
	for ; units > 0; units-- {
		toppings.Add(g.pick(), 1)
	}

	return New(toppings)
}

func (g *Generator) pick() topping.Topping {
	return topping.All[g.rng.IntN(len(topping.All))]
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
