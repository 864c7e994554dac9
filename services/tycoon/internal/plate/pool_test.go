package plate

import (
	"testing"

	"github.com/appetiteclub/takoyaki/pkg/enums/doneness"
	"github.com/appetiteclub/takoyaki/pkg/enums/topping"
)

func TestPoolPlace(t *testing.T) {
	p := NewPool(2)

	if !p.Place(doneness.Perfect) || !p.Place(doneness.Perfect) {
		t.Fatal("Place() rejected item below capacity")
	}
	if p.Place(doneness.Perfect) {
		t.Error("Place() accepted item over capacity")
	}
	if p.Len() != 2 || !p.Full() {
		t.Errorf("Len() = %d, Full() = %v", p.Len(), p.Full())
	}

	for _, item := range p.Items() {
		if item.Sauce || item.Topping != topping.None || item.CookingLevel != doneness.Perfect {
			t.Errorf("new item = %+v, want undressed perfect", item)
		}
	}
}

func TestNewPoolDefaultCapacity(t *testing.T) {
	if got := NewPool(0).Capacity(); got != DefaultCapacity {
		t.Errorf("Capacity() = %d, want %d", got, DefaultCapacity)
	}
}

func TestPoolDressing(t *testing.T) {
	tests := []struct {
		name        string
		sauceFirst  bool
		topping     topping.Topping
		second      topping.Topping
		wantSauce   bool
		wantTopping topping.Topping
	}{
		{
			name:        "toppingBeforeSauceIsRejected",
			topping:     topping.Negi,
			wantTopping: topping.None,
		},
		{
			name:        "toppingAfterSauce",
			sauceFirst:  true,
			topping:     topping.Nori,
			wantSauce:   true,
			wantTopping: topping.Nori,
		},
		{
			name:        "firstToppingWins",
			sauceFirst:  true,
			topping:     topping.Katsuobushi,
			second:      topping.Negi,
			wantSauce:   true,
			wantTopping: topping.Katsuobushi,
		},
		{
			name:        "noneIsNotApplicable",
			sauceFirst:  true,
			topping:     topping.None,
			second:      topping.Negi,
			wantSauce:   true,
			wantTopping: topping.Negi,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPool(DefaultCapacity)
			p.Place(doneness.Perfect)

			if tt.sauceFirst {
				p.AddSauce(0)
			}
			p.AddTopping(0, tt.topping)
			if tt.second != "" {
				p.AddTopping(0, tt.second)
			}

			item := p.Items()[0]
			if item.Sauce != tt.wantSauce {
				t.Errorf("Sauce = %v, want %v", item.Sauce, tt.wantSauce)
			}
			if item.Topping != tt.wantTopping {
				t.Errorf("Topping = %q, want %q", item.Topping, tt.wantTopping)
			}
		})
	}
}

func TestPoolAddSauceIsIdempotent(t *testing.T) {
	p := NewPool(DefaultCapacity)
	p.Place(doneness.Perfect)

	if !p.AddSauce(0) {
		t.Fatal("first AddSauce() reported no change")
	}
	if p.AddSauce(0) {
		t.Error("second AddSauce() reported a change")
	}
	if !p.Items()[0].Sauce {
		t.Error("sauce lost after second call")
	}
}

func TestPoolOutOfRange(t *testing.T) {
	p := NewPool(DefaultCapacity)
	if p.AddSauce(0) || p.AddTopping(-1, topping.Negi) {
		t.Error("dressing a missing item reported a change")
	}
}

func TestPoolDrain(t *testing.T) {
	p := NewPool(DefaultCapacity)
	for i := 0; i < 4; i++ {
		p.Place(doneness.Perfect)
	}
	p.AddSauce(0)
	p.AddSauce(3)

	drained := p.Drain(2)
	if len(drained) != 2 || !drained[0].Sauce || drained[1].Sauce {
		t.Fatalf("Drain(2) = %+v", drained)
	}
	if p.Len() != 2 {
		t.Fatalf("Len() after drain = %d, want 2", p.Len())
	}
	if !p.Items()[1].Sauce {
		t.Error("Drain() did not keep the remaining order")
	}

	if got := p.Drain(10); len(got) != 2 || p.Len() != 0 {
		t.Errorf("Drain(10) = %d items, %d left", len(got), p.Len())
	}
	if got := p.Drain(1); got != nil {
		t.Errorf("Drain() on empty pool = %v, want nil", got)
	}
}

func TestPoolDrainNothing(t *testing.T) {
	tests := []struct {
		name   string
		placed int
		n      int
	}{
		{name: "emptyPool", placed: 0, n: 1},
		{name: "zeroCount", placed: 2, n: 0},
		{name: "negativeCount", placed: 2, n: -3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPool(DefaultCapacity)
			for i := 0; i < tt.placed; i++ {
				p.Place(doneness.Perfect)
			}
			if got := p.Drain(tt.n); got != nil {
				t.Errorf("Drain(%d) = %v, want nil", tt.n, got)
			}
			if p.Len() != tt.placed {
				t.Errorf("Len() = %d, want %d", p.Len(), tt.placed)
			}
		})
	}
}

func TestPoolReadyCount(t *testing.T) {
	p := NewPool(DefaultCapacity)
	p.Place(doneness.Perfect)
	p.Place(doneness.Perfect)
	p.Place(doneness.Burnt)
	p.AddSauce(0)
	p.AddSauce(2)

	if got := p.ReadyCount(); got != 1 {
		t.Errorf("ReadyCount() = %d, want 1", got)
	}
}
