package rpc

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/danielpatrickdp/dailycard/go-controller/internal/catalog"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/energy"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/label"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/logging"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/metrics"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/pipeline"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/recency"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/state"
)

// #region helpers

type stubDrawer struct {
	draw pipeline.Draw
	err  error
	got  pipeline.Request
	cid  string
}

func (s *stubDrawer) Draw(ctx context.Context, req pipeline.Request) (pipeline.Draw, error) {
	s.got = req
	s.cid = logging.CorrelationIDFromContext(ctx)
	return s.draw, s.err
}

func serve(t *testing.T, d Drawer) *Client {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	gs := NewGRPCServer(d)
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)

	c, err := NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func livePipeline(t *testing.T, loaded bool) *pipeline.Pipeline {
	t.Helper()
	cat := catalog.NewStore("")
	if loaded {
		_, err := cat.Load()
		require.NoError(t, err)
	}
	p, err := pipeline.New(pipeline.Deps{
		Catalog: cat,
		History: recency.NewHistory(recency.NewMemoryStore(), recency.DefaultConfig()),
		Share:   state.NewMemoryStore(),
	}, pipeline.DefaultConfig())
	require.NoError(t, err)
	return p
}

func ctxTimeout(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// #endregion helpers

// #region draw-tests

func TestDraw_EndToEnd(t *testing.T) {
	c := serve(t, livePipeline(t, true))

	resp, err := c.Draw(ctxTimeout(t), DrawRequest{
		ProfileID: "ana",
		At:        "2026-03-02",
		Labels:    []label.Label{label.New("bold", label.CategoryExpression, 3, label.OriginNatal)},
	})
	require.NoError(t, err)

	assert.Equal(t, "ana", resp.ProfileID)
	assert.Equal(t, "2026-03-02", resp.Date)
	assert.NotEmpty(t, resp.CardID)
	assert.NotEmpty(t, resp.DrawID)
	assert.Len(t, resp.Axes, 4)
	assert.NotEmpty(t, resp.Seed)
	total := 0
	for _, v := range resp.Energy {
		total += v
	}
	assert.Equal(t, energy.Total, total)
}

func TestDraw_SeedPrecision(t *testing.T) {
	c := serve(t, livePipeline(t, true))

	// 2^53 + 1 does not survive a float64 round trip
	resp, err := c.Draw(ctxTimeout(t), DrawRequest{ProfileID: "ana", Seed: "9007199254740993"})
	require.NoError(t, err)
	assert.Equal(t, "9007199254740993", resp.Seed)
}

func TestDraw_InvalidArgument(t *testing.T) {
	c := serve(t, &stubDrawer{})

	cases := []struct {
		name string
		req  DrawRequest
	}{
		{"missing profile", DrawRequest{}},
		{"bad at", DrawRequest{ProfileID: "ana", At: "yesterday"}},
		{"bad seed", DrawRequest{ProfileID: "ana", Seed: "abc"}},
		{"bad birth date", DrawRequest{ProfileID: "ana", Birth: &Birth{Date: "1990/01/01"}}},
		{"latitude out of range", DrawRequest{ProfileID: "ana", Birth: &Birth{Date: "1990-01-01", Latitude: 91}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := c.Draw(ctxTimeout(t), tc.req)
			require.Error(t, err)
			assert.Equal(t, codes.InvalidArgument, status.Code(errors.Unwrap(err)))
		})
	}
}

func TestDraw_CatalogUnavailable(t *testing.T) {
	c := serve(t, livePipeline(t, false))

	_, err := c.Draw(ctxTimeout(t), DrawRequest{ProfileID: "ana"})
	require.Error(t, err)
	assert.Equal(t, codes.Unavailable, status.Code(errors.Unwrap(err)))
}

func TestDraw_InternalError(t *testing.T) {
	c := serve(t, &stubDrawer{err: errors.New("boom")})

	_, err := c.Draw(ctxTimeout(t), DrawRequest{ProfileID: "ana"})
	require.Error(t, err)
	assert.Equal(t, codes.Internal, status.Code(errors.Unwrap(err)))
}

func TestDraw_CorrelationForwarded(t *testing.T) {
	stub := &stubDrawer{}
	c := serve(t, stub)

	ctx := logging.ContextWithCorrelationID(ctxTimeout(t), "abc12345")
	_, err := c.Draw(ctx, DrawRequest{ProfileID: "ana", Personality: "edgy"})
	require.NoError(t, err)

	assert.Equal(t, "abc12345", stub.cid)
	assert.Equal(t, "edgy", stub.got.Personality)
}

func TestDraw_RecordsMetrics(t *testing.T) {
	c := serve(t, &stubDrawer{})
	before := testutil.ToFloat64(metrics.RPCRequests.WithLabelValues(DrawMethod, codes.OK.String()))

	_, err := c.Draw(ctxTimeout(t), DrawRequest{ProfileID: "ana"})
	require.NoError(t, err)

	after := testutil.ToFloat64(metrics.RPCRequests.WithLabelValues(DrawMethod, codes.OK.String()))
	assert.Equal(t, before+1, after)
}

// #endregion draw-tests

// #region convert-tests

func TestToPipeline(t *testing.T) {
	now := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

	req, err := DrawRequest{ProfileID: " ana ", Seed: "42",
		Birth: &Birth{Date: "1990-07-14", Time: "06:30", Latitude: 48.85, Longitude: 2.35}}.ToPipeline(now)
	require.NoError(t, err)

	assert.Equal(t, "ana", req.ProfileID)
	assert.Equal(t, now, req.At)
	require.NotNil(t, req.Seed)
	assert.Equal(t, int64(42), *req.Seed)
	require.NotNil(t, req.Birth)
	assert.Equal(t, "06:30", req.Birth.Time)
	assert.Equal(t, 1990, req.Birth.Date.Year())

	req, err = DrawRequest{ProfileID: "ana", At: "2026-03-02"}.ToPipeline(now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC), req.At)

	req, err = DrawRequest{ProfileID: "ana", At: "2026-03-02T21:15:00Z"}.ToPipeline(now)
	require.NoError(t, err)
	assert.Equal(t, 21, req.At.Hour())
}

// #endregion convert-tests
