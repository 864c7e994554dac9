package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/appetiteclub/apt"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/appetiteclub/takoyaki/pkg/matchstream"
)

// Watch follows the gRPC match event stream of a tycoon service.
func Watch(ctx context.Context, config *apt.Config, logger apt.Logger) error {
	addr := config.GetStringOrDef("grpc.addr", "localhost:9090")
	sessionID := config.GetStringOrDef("session.id", "")

	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	stream, err := matchstream.Subscribe(ctx, conn, sessionID)
	if err != nil {
		return err
	}
	logger.Info("Watching match events", "addr", addr, "session_id", sessionID)

	for {
		evt, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) || status.Code(err) == codes.Canceled || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("receive event: %w", err)
		}

		data, err := protojson.Marshal(evt)
		if err != nil {
			logger.Error("cannot encode streamed event", "error", err)
			continue
		}
		line, err := Describe(data)
		if err != nil {
			logger.Debug("undecodable streamed event", "error", err)
			continue
		}
		fmt.Println(line)
	}
}
