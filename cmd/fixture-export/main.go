package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/dailycard/go-controller/internal/config"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/logging"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/replay"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/state"
)

type options struct {
	dbPath      string
	outPath     string
	description string
	last        int
	configPath  string
}

// #region main

func main() {
	var o options
	root := &cobra.Command{
		Use:           "fixture-export --db PATH --out PATH",
		Short:         "Export recorded draws as a replay fixture",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(*cobra.Command, []string) error {
			return run(o)
		},
	}
	f := root.Flags()
	f.StringVar(&o.dbPath, "db", "", "path to the dailycard database")
	f.StringVar(&o.outPath, "out", "", "output fixture JSON path")
	f.StringVar(&o.description, "description", "", "fixture description")
	f.IntVar(&o.last, "last", 7, "number of most recent draws to export")
	f.StringVar(&o.configPath, "config", "", "config file the draws ran with (default: search)")
	_ = root.MarkFlagRequired("db")
	_ = root.MarkFlagRequired("out")

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region extract

func run(o options) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := state.NewStore(o.dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer store.Close()

	recs, err := logging.ReadDraws(store.DB(), o.last)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		return errors.New("no draws found")
	}

	desc := o.description
	if desc == "" {
		desc = fmt.Sprintf("%d draws exported from %s (%s to %s)", len(recs), o.dbPath, recs[0].Date, recs[len(recs)-1].Date)
	}
	fixture := replay.FromDrawRecords(desc, recs, replay.NewFixtureConfig(cfg.PipelineConfig(), cfg.RecencyConfig()))

	data, err := json.MarshalIndent(fixture, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(o.outPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write fixture: %w", err)
	}
	fmt.Printf("Exported %d draws to %s (start share %.4f)\n", len(fixture.Days), o.outPath, fixture.StartShare)
	return nil
}

// #endregion extract
