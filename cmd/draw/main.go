package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/dailycard/go-controller/internal/app"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/axis"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/config"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/label"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/logging"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/rpc"
)

type options struct {
	configPath  string
	remote      string
	profileID   string
	at          string
	labelsPath  string
	featurePath string
	personality string
	seed        string
	jsonOut     bool
}

// #region main
func main() {
	var o options
	root := &cobra.Command{
		Use:           "draw --profile ID [--labels pool.json]",
		Short:         "Draw one daily card locally or from a running cardd",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), o)
		},
	}
	f := root.Flags()
	f.StringVarP(&o.configPath, "config", "c", "", "path to YAML config")
	f.StringVar(&o.remote, "remote", "", "cardd gRPC address; empty draws in-process")
	f.StringVarP(&o.profileID, "profile", "p", "", "profile id")
	f.StringVar(&o.at, "at", "", "draw time, RFC 3339 or YYYY-MM-DD (default now)")
	f.StringVarP(&o.labelsPath, "labels", "l", "", "JSON file holding the label pool")
	f.StringVar(&o.featurePath, "features", "", "JSON file holding numeric chart features")
	f.StringVar(&o.personality, "personality", "", "personality key override")
	f.StringVar(&o.seed, "seed", "", "explicit seed override")
	f.BoolVar(&o.jsonOut, "json", false, "print the response as JSON")
	_ = root.MarkFlagRequired("profile")

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "draw: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region run
func run(ctx context.Context, o options) error {
	req := rpc.DrawRequest{ProfileID: o.profileID, At: o.at, Personality: o.personality, Seed: o.seed}
	if o.labelsPath != "" {
		var pool []label.Label
		if err := readJSON(o.labelsPath, &pool); err != nil {
			return err
		}
		req.Labels = pool
	}
	if o.featurePath != "" {
		var feat axis.Features
		if err := readJSON(o.featurePath, &feat); err != nil {
			return err
		}
		req.Features = &feat
	}

	var (
		resp rpc.DrawResponse
		err  error
	)
	if o.remote != "" {
		resp, err = drawRemote(ctx, o.remote, req)
	} else {
		resp, err = drawLocal(ctx, o.configPath, req)
	}
	if err != nil {
		return err
	}

	if o.jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
	printDraw(resp)
	return nil
}

func drawRemote(ctx context.Context, addr string, req rpc.DrawRequest) (rpc.DrawResponse, error) {
	c, err := rpc.NewClient(addr)
	if err != nil {
		return rpc.DrawResponse{}, err
	}
	defer c.Close()
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	return c.Draw(logging.ContextWithNewCorrelationID(ctx), req)
}

func drawLocal(ctx context.Context, configPath string, req rpc.DrawRequest) (rpc.DrawResponse, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return rpc.DrawResponse{}, err
	}
	logging.Init(cfg.LoggerConfig())

	a, err := app.Open(cfg)
	if err != nil {
		return rpc.DrawResponse{}, err
	}
	defer a.Close()

	preq, err := req.ToPipeline(time.Now().UTC())
	if err != nil {
		return rpc.DrawResponse{}, err
	}
	d, err := a.Pipeline.Draw(ctx, preq)
	if err != nil {
		return rpc.DrawResponse{}, err
	}
	return rpc.FromDraw(d), nil
}

// #endregion run

// #region output
func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func printDraw(r rpc.DrawResponse) {
	fmt.Printf("%s  %s (%s)\n", r.Date, r.CardName, r.CardID)
	fmt.Printf("  profile=%s seed=%s share=%.4f decision=%s\n", r.ProfileID, r.Seed, r.Share, r.Decision)
	fmt.Print("  axes:")
	for _, name := range axis.Names {
		fmt.Printf(" %s=%.2f", name, r.Axes[name])
	}
	fmt.Println()
	if r.Fallback != "" {
		fmt.Printf("  fallback=%s\n", r.Fallback)
	}
	if r.TieBreak != "" {
		fmt.Printf("  tie_break=%s\n", r.TieBreak)
	}
	for _, d := range r.Degraded {
		fmt.Printf("  degraded: %s\n", d)
	}
	fmt.Printf("  took %dms\n", r.DurationMsec)
}

// #endregion output
