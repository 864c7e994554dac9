package bot

import (
	"reflect"
	"testing"
	"time"

	"github.com/appetiteclub/takoyaki/services/tycoon/internal/session"
)

func TestPlayPerfectBot(t *testing.T) {
	report := Play(Options{Rules: session.DefaultRules(), Seed: 42, Accuracy: 1})

	if report.Played < session.DefaultMatchDuration {
		t.Errorf("Played = %v, want at least %v", report.Played, session.DefaultMatchDuration)
	}
	if report.Stats.Served == 0 {
		t.Fatal("perfect bot served nobody")
	}
	if report.Stats.Angry != 0 {
		t.Errorf("Stats.Angry = %d, want 0", report.Stats.Angry)
	}
	if report.Score < report.Stats.Served*300 {
		t.Errorf("Score = %d, want at least %d", report.Score, report.Stats.Served*300)
	}
	if report.Level != session.StartLevel+report.Stats.Served {
		t.Errorf("Level = %d, want %d", report.Level, session.StartLevel+report.Stats.Served)
	}

	if report.Events[session.EventMatchStarted] != 1 || report.Events[session.EventMatchEnded] != 1 {
		t.Errorf("match events = %v", report.Events)
	}
	if report.Events[session.EventCustomerArrived] < report.Stats.Served {
		t.Errorf("arrivals = %d, served = %d", report.Events[session.EventCustomerArrived], report.Stats.Served)
	}
	if report.Events[session.EventOrderServed] != report.Serves {
		t.Errorf("order_served events = %d, serves = %d", report.Events[session.EventOrderServed], report.Serves)
	}
}

func TestPlayIsDeterministic(t *testing.T) {
	opts := Options{Rules: session.DefaultRules(), Seed: 7, Accuracy: 0.8}

	first := Play(opts)
	second := Play(opts)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("same seed produced different reports:\n%+v\n%+v", first, second)
	}
}

func TestPlayAccuracyMatters(t *testing.T) {
	rules := session.DefaultRules()
	perfect := Play(Options{Rules: rules, Seed: 3, Accuracy: 1})
	sloppy := Play(Options{Rules: rules, Seed: 3, Accuracy: 0})

	if sloppy.Score >= perfect.Score {
		t.Errorf("sloppy score %d should be below perfect score %d", sloppy.Score, perfect.Score)
	}
}

func TestPlayShortMatch(t *testing.T) {
	rules := session.DefaultRules()
	rules.MatchDuration = 10 * time.Second

	report := Play(Options{Rules: rules, Seed: 1, Accuracy: 1, Step: 250 * time.Millisecond})

	if report.Played < 10*time.Second || report.Played > 10*time.Second+250*time.Millisecond {
		t.Errorf("Played = %v, want about 10s", report.Played)
	}
	if report.Events[session.EventMatchEnded] != 1 {
		t.Errorf("match_ended events = %d, want 1", report.Events[session.EventMatchEnded])
	}
}
