package mood

import "strings"

// Mood is the customer's displayed temper.
type Mood string

const (
	Happy   Mood = "happy"
	Neutral Mood = "neutral"
	Angry   Mood = "angry"
)

func (m Mood) Code() string {
	return string(m)
}

func (m Mood) Label() string {
	if len(m) == 0 {
		return ""
	}
	return strings.ToUpper(string(m)[:1]) + string(m)[1:]
}

// Patience thresholds, inclusive lower bounds.
const (
	HappyThreshold   = 60.0
	NeutralThreshold = 30.0
)

// ForPatience maps a patience value to the mood a customer shows.
func ForPatience(patience float64) Mood {
	switch {
	case patience >= HappyThreshold:
		return Happy
	case patience >= NeutralThreshold:
		return Neutral
	default:
		return Angry
	}
}

var All = []Mood{
	Happy,
	Neutral,
	Angry,
}

// ByName returns the mood for a given name, or nil if not found
func ByName(name string) *Mood {
	for _, m := range All {
		if string(m) == name {
			return &m
		}
	}
	return nil
}
