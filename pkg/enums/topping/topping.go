package topping

import "strings"

// Topping is what sits on top of a sauced takoyaki. None means plain.
type Topping string

const (
	Negi        Topping = "negi"
	Katsuobushi Topping = "katsuobushi"
	Nori        Topping = "nori"
	None        Topping = "none"
)

func (t Topping) Code() string {
	return string(t)
}

func (t Topping) Label() string {
	if len(t) == 0 {
		return ""
	}
	return strings.ToUpper(string(t)[:1]) + string(t)[1:]
}

// Applicable reports whether the topping can be put on a plated item.
func (t Topping) Applicable() bool {
	return t == Negi || t == Katsuobushi || t == Nori
}

// All lists the order categories in breakdown order.
var All = []Topping{
	Negi,
	Katsuobushi,
	Nori,
	None,
}

// ByName returns the topping for a given name, or nil if not found
func ByName(name string) *Topping {
	for _, t := range All {
		if string(t) == name {
			return &t
		}
	}
	return nil
}
