// Package matchstream describes the server-streaming gRPC service that pushes
// match events. Messages are google.protobuf.Struct so no generated code is needed.
package matchstream

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName = "takoyaki.MatchEventStream"
	MethodName  = "StreamMatchEvents"
	FullMethod  = "/" + ServiceName + "/" + MethodName

	// SessionIDField filters the stream to one session when set in the request.
	SessionIDField = "session_id"
)

// Server is implemented by whatever fans events out to subscribers.
type Server interface {
	StreamMatchEvents(req *structpb.Struct, stream grpc.ServerStream) error
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*Server)(nil),
	Streams: []grpc.StreamDesc{
		{
			StreamName:    MethodName,
			Handler:       streamMatchEventsHandler,
			ServerStreams: true,
		},
	},
	Metadata: "takoyaki/match_events.proto",
}

func Register(s grpc.ServiceRegistrar, srv Server) {
	s.RegisterService(&ServiceDesc, srv)
}

func streamMatchEventsHandler(srv any, stream grpc.ServerStream) error {
	req := new(structpb.Struct)
	if err := stream.RecvMsg(req); err != nil {
		return err
	}
	return srv.(Server).StreamMatchEvents(req, stream)
}

// Request builds a subscription request, optionally scoped to one session.
func Request(sessionID string) *structpb.Struct {
	fields := map[string]*structpb.Value{}
	if sessionID != "" {
		fields[SessionIDField] = structpb.NewStringValue(sessionID)
	}
	return &structpb.Struct{Fields: fields}
}

// SessionFilter returns the session a request is scoped to, or "".
func SessionFilter(req *structpb.Struct) string {
	if req == nil {
		return ""
	}
	return req.GetFields()[SessionIDField].GetStringValue()
}

// Stream is the client side of a subscription.
type Stream struct {
	cs grpc.ClientStream
}

// Subscribe opens the event stream on conn.
func Subscribe(ctx context.Context, conn grpc.ClientConnInterface, sessionID string) (*Stream, error) {
	cs, err := conn.NewStream(ctx, &ServiceDesc.Streams[0], FullMethod)
	if err != nil {
		return nil, fmt.Errorf("failed to open match event stream: %w", err)
	}
	if err := cs.SendMsg(Request(sessionID)); err != nil {
		return nil, fmt.Errorf("failed to send subscription: %w", err)
	}
	if err := cs.CloseSend(); err != nil {
		return nil, fmt.Errorf("failed to close send side: %w", err)
	}
	return &Stream{cs: cs}, nil
}

// Recv blocks for the next event.
func (s *Stream) Recv() (*structpb.Struct, error) {
	evt := new(structpb.Struct)
	if err := s.cs.RecvMsg(evt); err != nil {
		return nil, err
	}
	return evt, nil
}
