package doneness

import "strings"

// Level is how far a takoyaki has cooked on the griddle.
type Level string

const (
	Raw     Level = "raw"
	Perfect Level = "perfect"
	Burnt   Level = "burnt"
)

func (l Level) Code() string {
	return string(l)
}

func (l Level) Label() string {
	if len(l) == 0 {
		return ""
	}
	return strings.ToUpper(string(l)[:1]) + string(l)[1:]
}

var All = []Level{
	Raw,
	Perfect,
	Burnt,
}

// ByName returns the level for a given name, or nil if not found
func ByName(name string) *Level {
	for _, l := range All {
		if string(l) == name {
			return &l
		}
	}
	return nil
}
