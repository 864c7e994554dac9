package app

import (
	"context"
	"fmt"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"
	"github.com/appetiteclub/apt/middleware"

	"github.com/appetiteclub/takoyaki/pkg"
	"github.com/appetiteclub/takoyaki/pkg/event"
	"github.com/appetiteclub/takoyaki/services/tycoon/internal/match"
)

const (
	AppName    = "tycoon"
	AppVersion = "0.1.0"
)

const (
	BackendNATS       = "nats"
	BackendNATSStream = "nats-stream"
	BackendKafka      = "kafka"
	BackendNone       = "none"
)

// busPublisher is a match event publisher that owns a connection.
type busPublisher interface {
	events.Publisher
	Close() error
}

// App encapsulates the tycoon service application
type App struct {
	config *apt.Config
	logger apt.Logger
	micro  *apt.Micro
}

// New creates a new tycoon service application
func New(config *apt.Config, logger apt.Logger) (*App, error) {
	if config == nil {
		return nil, fmt.Errorf("%s(%s) requires a config", AppName, AppVersion)
	}
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &App{
		config: config,
		logger: logger,
	}, nil
}

// Initialize sets up all dependencies and components
func (a *App) Initialize(ctx context.Context) error {
	rules := RulesFromConfig(a.config, a.logger)
	a.logger.Info("match rules loaded",
		"duration", rules.MatchDuration.String(),
		"perfect", rules.Timing.Perfect.String(),
		"burnt", rules.Timing.Burnt.String(),
		"plate_capacity", rules.PlateCapacity)

	topic := a.config.GetStringOrDef("events.topic", event.MatchesTopic)

	publisher, err := a.newPublisher(ctx, topic)
	if err != nil {
		return err
	}

	// gRPC streaming server for live match events
	streamServer := match.NewEventStreamServer(a.logger)

	notifier := match.NewNotifier(publisher, topic, a.logger)
	notifier.SetStreamServer(streamServer)

	cache := match.NewSessionCache(rules, notifier, a.logger)
	hub := match.NewSnapshotHub(a.logger)
	runner := match.NewRunner(cache, hub, rules.CookingTick, a.logger)

	handler := match.NewHandler(match.HandlerDeps{Cache: cache, Hub: hub}, a.config, a.logger)

	stack := middleware.DefaultStack(middleware.StackOptions{
		Logger:      a.logger,
		DisableCORS: true,
	})

	lifecycles := []interface{}{
		runner,
		notifier,
		apt.LifecycleHooks{
			OnStop: func(context.Context) error { return hub.Close() },
		},
	}
	if publisher != nil {
		lifecycles = append(lifecycles, apt.LifecycleHooks{
			OnStop: func(ctx context.Context) error {
				if err := notifier.Stop(ctx); err != nil {
					a.logger.Error("cannot flush match events", "error", err)
				}
				return publisher.Close()
			},
		})
	}

	options := []apt.Option{
		apt.WithConfig(a.config),
		apt.WithLogger(a.logger),
		apt.WithHTTPMiddleware(stack...),
		apt.WithHTTPServerModules("web.port", handler),
		apt.WithGRPCServerModules("grpc.port", streamServer),
		apt.WithLifecycle(lifecycles...),
		apt.WithHealthChecks(AppName),
	}

	a.micro = apt.NewMicro(options...)
	return nil
}

// newPublisher picks the event bus from events.backend.
func (a *App) newPublisher(ctx context.Context, topic string) (busPublisher, error) {
	backend := a.config.GetStringOrDef("events.backend", BackendNATS)
	natsURL := a.config.GetStringOrDef("nats.url", pkg.DefaultNATSURL)

	switch backend {
	case BackendNone:
		a.logger.Info("match events are not published to a bus")
		return nil, nil

	case BackendNATS:
		publisher, err := pkg.NewNATSPublisher(natsURL)
		if err != nil {
			return nil, err
		}
		a.logger.Info("publishing match events to NATS", "url", natsURL, "topic", topic)
		return publisher, nil

	case BackendNATSStream:
		maxAge := 24 * time.Hour
		if raw, ok := a.config.GetString("nats.stream.max_age"); ok && raw != "" {
			if d, err := time.ParseDuration(raw); err == nil && d > 0 {
				maxAge = d
			}
		}
		stream, err := pkg.NewNATSStream(ctx, pkg.NATSStreamConfig{
			URL:        natsURL,
			StreamName: a.config.GetStringOrDef("nats.stream.name", pkg.MatchEventsStream),
			Topic:      topic,
			MaxAge:     maxAge,
		})
		if err != nil {
			return nil, err
		}
		a.logger.Info("NATS stream initialized for persistent match events", "topic", topic)
		return stream, nil

	case BackendKafka:
		brokers := pkg.ParseKafkaBrokers(a.config.GetStringOrDef("kafka.brokers", "localhost:9092"))
		publisher, err := pkg.NewKafkaPublisher(brokers)
		if err != nil {
			return nil, err
		}
		a.logger.Info("publishing match events to Kafka", "brokers", brokers, "topic", topic)
		return publisher, nil
	}

	return nil, fmt.Errorf("unknown events backend %q", backend)
}

// Run starts the application
func (a *App) Run(ctx context.Context) error {
	a.logger.Infof("Starting %s(%s)", AppName, AppVersion)
	if err := a.micro.Run(ctx); err != nil {
		return err
	}
	a.logger.Infof("%s(%s) stopped", AppName, AppVersion)
	return nil
}
