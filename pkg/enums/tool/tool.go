package tool

import (
	"strings"

	"github.com/appetiteclub/takoyaki/pkg/enums/topping"
)

type Tool struct {
	Name string
}

func (t Tool) Code() string {
	return t.Name
}

func (t Tool) Label() string {
	if len(t.Name) == 0 {
		return ""
	}
	return strings.ToUpper(t.Name[:1]) + t.Name[1:]
}

// OnGriddle reports whether the tool is applied to a griddle cell.
func (t Tool) OnGriddle() bool {
	return t == Tools.Batter || t == Tools.Octopus || t == Tools.Stick
}

// OnPlate reports whether the tool dresses a plated item.
func (t Tool) OnPlate() bool {
	return t == Tools.Sauce || t.Topping() != nil
}

// Topping returns the topping a topping tool applies, or nil for other tools.
func (t Tool) Topping() *topping.Topping {
	tp := topping.ByName(t.Name)
	if tp == nil || !tp.Applicable() {
		return nil
	}
	return tp
}

type Enum struct {
	Batter      Tool
	Octopus     Tool
	Stick       Tool
	Sauce       Tool
	Negi        Tool
	Katsuobushi Tool
	Nori        Tool
	Serve       Tool
}

var Tools = Enum{
	Batter:      Tool{Name: "batter"},
	Octopus:     Tool{Name: "octopus"},
	Stick:       Tool{Name: "stick"},
	Sauce:       Tool{Name: "sauce"},
	Negi:        Tool{Name: "negi"},
	Katsuobushi: Tool{Name: "katsuobushi"},
	Nori:        Tool{Name: "nori"},
	Serve:       Tool{Name: "serve"},
}

var All = []Tool{
	Tools.Batter,
	Tools.Octopus,
	Tools.Stick,
	Tools.Sauce,
	Tools.Negi,
	Tools.Katsuobushi,
	Tools.Nori,
	Tools.Serve,
}

// ByName returns the tool for a given name, or nil if not found
func ByName(name string) *Tool {
	for _, t := range All {
		if t.Name == name {
			return &t
		}
	}
	return nil
}
