package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/dailycard/go-controller/internal/catalog"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/logging"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/replay"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/state"
)

// exitMismatch is returned when a replay diverges from its expectations.
const exitMismatch = 1

type options struct {
	dbPath      string
	fixturePath string
	catalogPath string
	last        int
	verbose     bool
}

// #region main

func main() {
	var o options
	root := &cobra.Command{
		Use:           "replay (--db PATH | --fixture PATH)",
		Short:         "Replay recorded draws through the pipeline and compare outcomes",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if (o.dbPath == "") == (o.fixturePath == "") {
				return errors.New("exactly one of --db or --fixture is required")
			}
			return run(cmd.Context(), o)
		},
	}
	f := root.Flags()
	f.StringVar(&o.dbPath, "db", "", "replay the provenance log of this database")
	f.StringVar(&o.fixturePath, "fixture", "", "replay this fixture JSON")
	f.StringVar(&o.catalogPath, "catalog", "", "catalog YAML (default: embedded deck)")
	f.IntVar(&o.last, "last", 1000, "DB mode: number of most recent draws to replay")
	f.BoolVarP(&o.verbose, "verbose", "v", false, "print every replayed draw")

	err := root.Execute()
	var mm mismatchError
	switch {
	case err == nil:
	case errors.As(err, &mm):
		fmt.Fprintf(os.Stderr, "replay: %d mismatches\n", int(mm))
		os.Exit(exitMismatch)
	default:
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		os.Exit(2)
	}
}

// #endregion main

// #region run

type mismatchError int

func (m mismatchError) Error() string { return fmt.Sprintf("%d mismatches", int(m)) }

func run(ctx context.Context, o options) error {
	f, err := loadFixture(o)
	if err != nil {
		return err
	}
	days, err := f.ToDays()
	if err != nil {
		return err
	}

	cat := catalog.NewStore(o.catalogPath)
	if _, err := cat.Load(); err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	results, err := replay.Replay(ctx, cat, f.StartShare, days, f.Config.ToPipelineConfig(), f.Config.ToRecencyConfig())
	if err != nil {
		return err
	}
	mismatches := replay.Compare(results, f.ExpectedResults)

	if o.verbose {
		printResults(results)
	}
	printSummary(f.Description, replay.Summarize(results))
	for _, m := range mismatches {
		fmt.Printf("  MISMATCH %s\n", m)
	}
	if len(mismatches) > 0 {
		return mismatchError(len(mismatches))
	}
	fmt.Println("  all draws match")
	return nil
}

func loadFixture(o options) (replay.Fixture, error) {
	if o.fixturePath != "" {
		f, err := replay.LoadFixture(o.fixturePath)
		if err != nil {
			return replay.Fixture{}, err
		}
		return *f, nil
	}
	store, err := state.NewStore(o.dbPath)
	if err != nil {
		return replay.Fixture{}, fmt.Errorf("open db: %w", err)
	}
	defer store.Close()

	recs, err := logging.ReadDraws(store.DB(), o.last)
	if err != nil {
		return replay.Fixture{}, err
	}
	if len(recs) == 0 {
		return replay.Fixture{}, fmt.Errorf("no draws found in %s", o.dbPath)
	}
	return replay.FromDrawRecords("replay of "+o.dbPath, recs, replay.FixtureConfig{}), nil
}

// #endregion run

// #region output

func printResults(results []replay.ReplayResult) {
	fmt.Printf("%-10s  %-12s  %-24s  %7s  %-13s  %s\n", "Date", "Profile", "Card", "Share", "Decision", "Fallback")
	for _, r := range results {
		fb := "—"
		if r.Fallback != "" {
			fb = r.Fallback
		}
		fmt.Printf("%-10s  %-12s  %-24s  %7.4f  %-13s  %s\n", r.Date, r.ProfileID, r.CardID, r.Share, r.Action, fb)
	}
	fmt.Println()
}

func printSummary(desc string, s replay.ReplaySummary) {
	if desc != "" {
		fmt.Println(desc)
	}
	fmt.Printf("  draws=%d commits=%d no_ops=%d eval_rollbacks=%d fallbacks=%d distinct_cards=%d final_share=%.4f\n",
		s.TotalDraws, s.Commits, s.NoOps, s.EvalRollbacks, s.Fallbacks, s.DistinctCards, s.FinalShare)
}

// #endregion output
