package rpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/dailycard/go-controller/internal/logging"
)

// #region client-struct
// Client calls a remote card service.
type Client struct {
	conn *grpc.ClientConn
}

// #endregion client-struct

// #region constructor
// NewClient connects to a card service.
func NewClient(addr string, opts ...grpc.DialOption) (*Client, error) {
	if len(opts) == 0 {
		opts = []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	}
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &Client{conn: conn}, nil
}

// #endregion constructor

// Close shuts down the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// #region draw
// Draw asks the service for a card. The context's correlation id, if any, is forwarded.
func (c *Client) Draw(ctx context.Context, req DrawRequest) (DrawResponse, error) {
	in, err := toStruct(req)
	if err != nil {
		return DrawResponse{}, fmt.Errorf("draw rpc: %w", err)
	}
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, CorrelationHeader, id)
	}

	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, DrawMethod, in, out); err != nil {
		return DrawResponse{}, fmt.Errorf("draw rpc: %w", err)
	}

	var resp DrawResponse
	if err := fromStruct(out, &resp); err != nil {
		return DrawResponse{}, fmt.Errorf("draw rpc: %w", err)
	}
	return resp, nil
}

// #endregion draw
