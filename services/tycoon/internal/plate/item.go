package plate

import (
	"github.com/appetiteclub/takoyaki/pkg/enums/doneness"
	"github.com/appetiteclub/takoyaki/pkg/enums/topping"
)

// Item is a finished takoyaki waiting in the serving area.
type Item struct {
	CookingLevel doneness.Level  `json:"cooking_level"`
	Sauce        bool            `json:"sauce"`
	Topping      topping.Topping `json:"topping"`
}

func NewItem(level doneness.Level) Item {
	return Item{CookingLevel: level, Topping: topping.None}
}

// AddSauce sets the sauce once. It reports whether the item changed.
func (i *Item) AddSauce() bool {
	if i.Sauce {
		return false
	}
	i.Sauce = true
	return true
}

// AddTopping sets the topping once, and only on a sauced item.
func (i *Item) AddTopping(t topping.Topping) bool {
	if !i.Sauce || !t.Applicable() || i.HasTopping() {
		return false
	}
	i.Topping = t
	return true
}

func (i Item) HasTopping() bool {
	return i.Topping != "" && i.Topping != topping.None
}

// Category is the order bucket this item counts against.
func (i Item) Category() topping.Topping {
	if !i.HasTopping() {
		return topping.None
	}
	return i.Topping
}

// Ready reports whether the item is sauced and perfectly cooked.
func (i Item) Ready() bool {
	return i.Sauce && i.CookingLevel == doneness.Perfect
}
