package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/dailycard/go-controller/internal/app"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/config"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/logging"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/rpc"
)

// #region main
func main() {
	var configPath string
	root := &cobra.Command{
		Use:           "cardd",
		Short:         "Serve daily card draws over gRPC with metrics on HTTP",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, configPath)
		},
	}
	root.Flags().StringVarP(&configPath, "config", "c", "", "path to YAML config (default: $DAILYCARD_CONFIG or search paths)")

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "cardd: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region run
func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logging.Init(cfg.LoggerConfig())
	log := logging.Component("cardd")

	a, err := app.Open(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Server.GRPCAddr, err)
	}
	gs := rpc.NewGRPCServer(a.Pipeline)
	hs := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           newRouter(a.Catalog),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 2)
	go func() { errc <- gs.Serve(lis) }()
	go func() {
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()
	log.Info().Str("grpc", cfg.Server.GRPCAddr).Str("http", cfg.Server.HTTPAddr).Msg("cardd ready")

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err = <-errc:
		log.Error().Err(err).Msg("server failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = hs.Shutdown(shutdownCtx)
	gs.GracefulStop()
	return err
}

// #endregion run
