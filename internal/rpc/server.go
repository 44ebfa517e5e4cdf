package rpc

import (
	"context"
	"errors"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/dailycard/go-controller/internal/catalog"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/logging"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/metrics"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/pipeline"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/validation"
)

// CorrelationHeader carries the caller's correlation id in gRPC metadata.
const CorrelationHeader = "x-correlation-id"

// Drawer runs one draw. *pipeline.Pipeline satisfies it.
type Drawer interface {
	Draw(ctx context.Context, req pipeline.Request) (pipeline.Draw, error)
}

// #region service

// Server implements the card service over a Drawer.
type Server struct {
	drawer Drawer
	now    func() time.Time
}

// NewServer wraps a drawer.
func NewServer(d Drawer) *Server {
	return &Server{drawer: d, now: func() time.Time { return time.Now().UTC() }}
}

// Draw handles one Draw RPC.
func (s *Server) Draw(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var wire DrawRequest
	if err := fromStruct(in, &wire); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if err := validation.Struct(wire); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	req, err := wire.ToPipeline(s.now())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	d, err := s.drawer.Draw(ctx, req)
	if err != nil {
		if errors.Is(err, catalog.ErrCatalogUnavailable) {
			return nil, status.Error(codes.Unavailable, err.Error())
		}
		return nil, status.Error(codes.Internal, err.Error())
	}

	out, err := toStruct(FromDraw(d))
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// #endregion service

// #region registration

type cardService interface {
	Draw(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
}

func drawHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(cardService).Draw(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: DrawMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(cardService).Draw(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// ServiceDesc describes the card service for grpc.Server registration.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*cardService)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Draw", Handler: drawHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "dailycard/v1/card.proto",
}

// NewGRPCServer builds a grpc.Server with the card service and the
// observability interceptor registered.
func NewGRPCServer(d Drawer, opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(UnaryInterceptor))
	gs := grpc.NewServer(opts...)
	gs.RegisterService(&ServiceDesc, NewServer(d))
	return gs
}

// #endregion registration

// #region interceptor

// UnaryInterceptor attaches a correlation id, logs the call and records RPC metrics.
func UnaryInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	id := ""
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get(CorrelationHeader); len(v) > 0 {
			id = v[0]
		}
	}
	if id == "" {
		id = logging.GenerateCorrelationID()
	}
	ctx = logging.ContextWithCorrelationID(ctx, id)

	resp, err := handler(ctx, req)

	code := status.Code(err)
	took := time.Since(start)
	metrics.RecordRPC(info.FullMethod, code.String(), took)
	ev := logging.Ctx(ctx).Info()
	if err != nil {
		ev = logging.Ctx(ctx).Warn().Err(err)
	}
	ev.Str("component", "rpc").Str("method", info.FullMethod).Str("code", code.String()).Dur("took", took).Msg("rpc handled")
	return resp, err
}

// #endregion interceptor
