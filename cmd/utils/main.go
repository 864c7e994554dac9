package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/appetiteclub/apt"

	"github.com/appetiteclub/takoyaki/cmd/utils/internal/commands"
)

const (
	appName    = "takoyaki-utils"
	appVersion = "0.1.0"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	config, err := apt.LoadConfig("UTILS", os.Args[2:])
	if err != nil {
		log.Fatalf("Cannot load config: %v", err)
	}

	logLevel, _ := config.GetString("log.level")
	if logLevel == "" {
		logLevel = "info"
	}
	logger := apt.NewLogger(logLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	command := os.Args[1]

	switch command {
	case "tail-events":
		if err := commands.TailEvents(ctx, config, logger); err != nil {
			log.Fatalf("Tail events failed: %v", err)
		}

	case "replay-events":
		if err := commands.ReplayEvents(ctx, config, logger); err != nil {
			log.Fatalf("Replay events failed: %v", err)
		}

	case "watch":
		if err := commands.Watch(ctx, config, logger); err != nil {
			log.Fatalf("Watch failed: %v", err)
		}

	case "version":
		fmt.Printf("%s version %s\n", appName, appVersion)

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`%s - Takoyaki Tycoon operator commands

Usage:
  %s <command> [options]

Commands:
  tail-events     Print live match events from NATS or Kafka
  replay-events   Print every match event retained in the JetStream stream
  watch           Follow the gRPC match event stream of a tycoon service
  version         Print version information
  help            Show this help message

Environment Variables:
  UTILS_EVENTS_BACKEND     nats or kafka for tail-events (default: nats)
  UTILS_EVENTS_TOPIC       Match events topic (default: takoyaki.matches)
  UTILS_NATS_URL           NATS connection URL (default: nats://localhost:4222)
  UTILS_NATS_STREAM_NAME   JetStream stream for replay-events (default: MATCH_EVENTS)
  UTILS_KAFKA_BROKERS      Comma separated Kafka brokers (default: localhost:9092)
  UTILS_KAFKA_GROUP        Kafka consumer group (default: takoyaki-utils)
  UTILS_GRPC_ADDR          Tycoon gRPC address for watch (default: localhost:9090)
  UTILS_SESSION_ID         Only show events of this session (replay-events, watch)
  UTILS_LOG_LEVEL          Log level: debug, info, warn, error (default: info)

Examples:
  %s tail-events
  UTILS_EVENTS_BACKEND=kafka %s tail-events
  UTILS_SESSION_ID=<uuid> %s watch

`, appName, appName, appName, appName, appName)
}
