package grpcclient

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"iter"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/example/calc-vision/internal/analyzer"
	"github.com/example/calc-vision/internal/imagedata"
	"github.com/example/calc-vision/internal/logging"
)

// AnalyzeMethod is the server-streaming RPC exposed by the analysis service.
// The request is a google.protobuf.Struct, every reply a google.protobuf.Value.
const AnalyzeMethod = "/calcvision.v1.ImageAnalyzer/Analyze"

var analyzeStreamDesc = grpc.StreamDesc{
	StreamName:    "Analyze",
	ServerStreams: true,
}

// DialAnalyzer returns a ready-to-use gRPC client for the analysis service.
// Extra options are appended after the defaults.
func DialAnalyzer(ctx context.Context, addr string, logger *zap.Logger, opts ...grpc.DialOption) (analyzer.Client, *grpc.ClientConn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithBlock(),
	}, opts...)

	conn, err := grpc.DialContext(dialCtx, addr, dialOpts...)
	if err != nil {
		wrapped := logging.NewOperationError("grpcclient.dial_analyzer", "", err)
		logger.Error("failed to dial analyzer", zap.Error(wrapped), zap.String("addr", addr))
		return nil, nil, wrapped
	}
	return NewClient(conn, logger), conn, nil
}

// NewClient wraps an existing connection.
func NewClient(conn grpc.ClientConnInterface, logger *zap.Logger) analyzer.Client {
	return &grpcAnalyzer{conn: conn, logger: logger.Named("analyzer_client")}
}

type grpcAnalyzer struct {
	conn   grpc.ClientConnInterface
	logger *zap.Logger
}

// Analyze builds the request eagerly and opens the stream only when the
// sequence is ranged over. Stopping the range early cancels the stream.
func (g *grpcAnalyzer) Analyze(ctx context.Context, img *imagedata.Image, vars analyzer.Vars) (iter.Seq2[analyzer.Item, error], error) {
	req, err := buildRequest(img, vars)
	if err != nil {
		return nil, logging.NewOperationError("grpcclient.build_request", "", err)
	}

	return func(yield func(analyzer.Item, error) bool) {
		streamCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		stream, err := g.conn.NewStream(streamCtx, &analyzeStreamDesc, AnalyzeMethod)
		if err != nil {
			yield(nil, g.fail("grpcclient.open_stream", err))
			return
		}
		if err := stream.SendMsg(req); err != nil {
			yield(nil, g.fail("grpcclient.send_request", err))
			return
		}
		if err := stream.CloseSend(); err != nil {
			yield(nil, g.fail("grpcclient.close_send", err))
			return
		}

		for {
			reply := &structpb.Value{}
			err := stream.RecvMsg(reply)
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(nil, g.fail("grpcclient.recv_item", err))
				return
			}

			item, err := json.Marshal(reply.AsInterface())
			if err != nil {
				yield(nil, g.fail("grpcclient.encode_item", err))
				return
			}
			if !yield(item, nil) {
				return
			}
		}
	}, nil
}

func (g *grpcAnalyzer) fail(operation string, err error) error {
	wrapped := logging.NewOperationError(operation, "", err)
	g.logger.Error("analyzer call failed", zap.Error(wrapped))
	return wrapped
}

func buildRequest(img *imagedata.Image, vars analyzer.Vars) (*structpb.Struct, error) {
	if img == nil {
		return nil, errors.New("nil image")
	}

	req, err := structpb.NewStruct(map[string]any{
		"image":  base64.StdEncoding.EncodeToString(img.Raw),
		"format": img.Format,
		"width":  img.Width(),
		"height": img.Height(),
	})
	if err != nil {
		return nil, err
	}

	varsStruct := &structpb.Struct{Fields: map[string]*structpb.Value{}}
	if len(vars) > 0 {
		encoded, err := json.Marshal(vars)
		if err != nil {
			return nil, err
		}
		if err := protojson.Unmarshal(encoded, varsStruct); err != nil {
			return nil, err
		}
	}
	req.Fields["dict_of_vars"] = structpb.NewStructValue(varsStruct)
	return req, nil
}
