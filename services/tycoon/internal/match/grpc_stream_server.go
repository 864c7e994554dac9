package match

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/appetiteclub/takoyaki/pkg/matchstream"
)

const subscriberBuffer = 100

type streamSubscriber struct {
	events    chan *structpb.Struct
	sessionID string
}

// EventStreamServer implements the takoyaki.MatchEventStream gRPC service.
type EventStreamServer struct {
	logger apt.Logger

	mu          sync.RWMutex
	subscribers map[string]*streamSubscriber
}

// RegisterGRPCService registers this service with the gRPC server (apt.GRPCServiceRegistrar interface)
func (s *EventStreamServer) RegisterGRPCService(server *grpc.Server) {
	matchstream.Register(server, s)
}

func NewEventStreamServer(logger apt.Logger) *EventStreamServer {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &EventStreamServer{
		logger:      logger,
		subscribers: make(map[string]*streamSubscriber),
	}
}

// StreamMatchEvents pushes match events until the client goes away.
func (s *EventStreamServer) StreamMatchEvents(req *structpb.Struct, stream grpc.ServerStream) error {
	ctx := stream.Context()
	subscriberID := uuid.NewString()
	sub := &streamSubscriber{
		events:    make(chan *structpb.Struct, subscriberBuffer),
		sessionID: matchstream.SessionFilter(req),
	}

	s.logger.Info("new match events subscriber", "subscriber_id", subscriberID, "session_filter", sub.sessionID)

	s.mu.Lock()
	s.subscribers[subscriberID] = sub
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.subscribers, subscriberID)
		s.mu.Unlock()
		close(sub.events)
		s.logger.Info("match events subscriber disconnected", "subscriber_id", subscriberID)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt := <-sub.events:
			if err := stream.SendMsg(evt); err != nil {
				s.logger.Errorf("failed to send event: %v", err)
				return err
			}
		}
	}
}

// Broadcast sends an encoded event to every subscriber interested in the session.
func (s *EventStreamServer) Broadcast(id uuid.UUID, eventType string, data []byte) {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		s.logger.Error("cannot decode event for stream", "event_type", eventType, "error", err)
		return
	}
	fields["streamed_at"] = time.Now().UTC().Format(time.RFC3339Nano)

	msg, err := structpb.NewStruct(fields)
	if err != nil {
		s.logger.Error("cannot convert event for stream", "event_type", eventType, "error", err)
		return
	}

	sessionID := id.String()

	s.mu.RLock()
	defer s.mu.RUnlock()

	for subscriberID, sub := range s.subscribers {
		if sub.sessionID != "" && sub.sessionID != sessionID {
			continue
		}
		select {
		case sub.events <- msg:
		default:
			s.logger.Info("subscriber channel full, dropping event", "subscriber_id", subscriberID, "event_type", eventType)
		}
	}
}

func (s *EventStreamServer) SubscriberCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subscribers)
}
