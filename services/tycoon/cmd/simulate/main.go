package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/appetiteclub/apt"

	"github.com/appetiteclub/takoyaki/services/tycoon/internal/app"
	"github.com/appetiteclub/takoyaki/services/tycoon/internal/bot"
)

const (
	appNamespace = "SIMULATE"
	appName      = "tycoon-simulate"
)

type summary struct {
	Runs       int          `json:"runs"`
	Accuracy   float64      `json:"accuracy"`
	MeanScore  float64      `json:"mean_score"`
	BestScore  int          `json:"best_score"`
	WorstScore int          `json:"worst_score"`
	Reports    []bot.Report `json:"reports,omitempty"`
}

func main() {
	config, err := apt.LoadConfig(appNamespace, os.Args[1:])
	if err != nil {
		log.Fatalf("%s cannot setup: %v", appName, err)
	}

	logLevel, _ := config.GetString("log.level")
	logger := apt.NewLogger(logLevel)

	rules := app.RulesFromConfig(config, logger)

	runs := intOrDef(config, "sim.runs", 10, logger)
	seed := intOrDef(config, "sim.seed", 1, logger)
	accuracy := 1.0
	if raw, ok := config.GetString("sim.accuracy"); ok && raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 || v > 1 {
			logger.Info("ignoring invalid accuracy", "value", raw)
		} else {
			accuracy = v
		}
	}
	verbose := config.GetStringOrDef("sim.verbose", "false") == "true"

	out := summary{Runs: runs, Accuracy: accuracy}
	total := 0
	for i := 0; i < runs; i++ {
		report := bot.Play(bot.Options{
			Rules:    rules,
			Seed:     uint64(seed + i),
			Accuracy: accuracy,
		})
		logger.Debug("match simulated", "run", i, "score", report.Score, "level", report.Level, "served", report.Stats.Served)

		total += report.Score
		if i == 0 || report.Score > out.BestScore {
			out.BestScore = report.Score
		}
		if i == 0 || report.Score < out.WorstScore {
			out.WorstScore = report.Score
		}
		if verbose {
			out.Reports = append(out.Reports, report)
		}
	}
	if runs > 0 {
		out.MeanScore = float64(total) / float64(runs)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		os.Exit(1)
	}
}

func intOrDef(config *apt.Config, key string, def int, logger apt.Logger) int {
	raw, ok := config.GetString(key)
	if !ok || raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		logger.Info("ignoring invalid integer", "key", key, "value", raw)
		return def
	}
	return v
}
