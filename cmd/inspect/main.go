package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/dailycard/go-controller/internal/axis"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/logging"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/state"
)

var (
	dbPath  string
	jsonOut bool
)

// #region main

func main() {
	root := &cobra.Command{
		Use:           "inspect",
		Short:         "Inspect share versions and recent draws in a dailycard database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dbPath, "db", "dailycard.db", "path to the SQLite database")
	root.PersistentFlags().BoolVar(&jsonOut, "json", false, "output as JSON instead of table")

	var last int
	versionsCmd := &cobra.Command{
		Use:   "versions",
		Short: "List the most recent share versions",
		RunE: func(*cobra.Command, []string) error {
			return withStore(func(s *state.Store) error { return runListMode(s, last) })
		},
	}
	versionsCmd.Flags().IntVar(&last, "last", 20, "show N most recent versions")

	versionCmd := &cobra.Command{
		Use:   "version ID",
		Short: "Show one share version with its provenance",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return withStore(func(s *state.Store) error { return runDetailMode(s, args[0]) })
		},
	}

	var limit int
	var profileID string
	drawsCmd := &cobra.Command{
		Use:   "draws",
		Short: "List recent draws from the provenance log",
		RunE: func(*cobra.Command, []string) error {
			return withStore(func(s *state.Store) error { return runDrawsMode(s, limit, profileID) })
		},
	}
	drawsCmd.Flags().IntVar(&limit, "last", 20, "show N most recent draws")
	drawsCmd.Flags().StringVar(&profileID, "profile", "", "only show draws for this profile")

	root.AddCommand(versionsCmd, versionCmd, drawsCmd)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func withStore(fn func(*state.Store) error) error {
	store, err := state.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer store.Close()
	return fn(store)
}

// #endregion main

// #region list-mode

type listRow struct {
	VersionID string  `json:"version_id"`
	Share     float64 `json:"share"`
	Delta     float64 `json:"delta"`
	Gap       float64 `json:"gap"`
	Decision  string  `json:"decision"`
	Reason    string  `json:"reason,omitempty"`
	Score     float32 `json:"score"`
	CreatedAt string  `json:"created_at"`
}

func runListMode(store *state.Store, last int) error {
	versions, err := store.ListVersionsWithProvenance(last)
	if err != nil {
		return err
	}
	if len(versions) == 0 {
		fmt.Fprintln(os.Stderr, "no versions found")
		return nil
	}

	// store returns DESC, reverse for chronological
	rows := make([]listRow, len(versions))
	for i, vp := range versions {
		rows[len(versions)-1-i] = listRow{
			VersionID: vp.VersionID,
			Share:     vp.Share,
			Gap:       vp.Gap,
			Decision:  vp.Decision,
			Reason:    vp.Reason,
			Score:     verifierScore(vp.Decision),
			CreatedAt: vp.CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
	}
	for i := 1; i < len(rows); i++ {
		rows[i].Delta = rows[i].Share - rows[i-1].Share
	}

	if jsonOut {
		return printJSON(rows)
	}
	fmt.Printf("%-12s  %8s  %8s  %6s  %-13s  %6s  %s\n",
		"Version", "Share", "Delta", "Gap", "Decision", "Score", "Time")
	fmt.Printf("%-12s+-%8s+-%8s+-%6s+-%-13s+-%6s+-%s\n",
		"------------", "--------", "--------", "------", "-------------", "------", "--------------------")
	for _, r := range rows {
		fmt.Printf("%-12s  %8.4f  %+8.4f  %6.3f  %-13s  %6.2f  %s\n",
			shortID(r.VersionID), r.Share, r.Delta, r.Gap, r.Decision, r.Score, r.CreatedAt)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

type detailOutput struct {
	VersionID string              `json:"version_id"`
	ParentID  string              `json:"parent_id"`
	CreatedAt string              `json:"created_at"`
	Share     float64             `json:"share"`
	Gap       float64             `json:"gap"`
	Decision  string              `json:"decision"`
	Reason    string              `json:"reason"`
	Score     float32             `json:"score"`
	Draw      *logging.DrawRecord `json:"draw,omitempty"`
}

func runDetailMode(store *state.Store, versionID string) error {
	vp, err := store.GetVersionWithProvenance(versionID)
	if err != nil {
		return err
	}

	out := detailOutput{
		VersionID: vp.VersionID,
		ParentID:  vp.ParentID,
		CreatedAt: vp.CreatedAt.Format("2006-01-02T15:04:05Z"),
		Share:     vp.Share,
		Gap:       vp.Gap,
		Decision:  vp.Decision,
		Reason:    vp.Reason,
		Score:     verifierScore(vp.Decision),
		Draw:      parseDrawRecord(vp.SignalsJSON),
	}

	if jsonOut {
		return printJSON(out)
	}

	fmt.Printf("Version:    %s\n", out.VersionID)
	fmt.Printf("Parent:     %s\n", out.ParentID)
	fmt.Printf("Created:    %s\n", out.CreatedAt)
	fmt.Printf("Share:      %.4f\n", out.Share)
	fmt.Printf("Gap:        %.4f\n", out.Gap)
	fmt.Printf("Decision:   %s\n", out.Decision)
	fmt.Printf("Reason:     %s\n", out.Reason)
	fmt.Printf("Score:      %.2f\n", out.Score)

	if d := out.Draw; d != nil {
		fmt.Printf("\nDraw %s (%s, %s):\n", d.DrawID, d.ProfileID, d.Date)
		fmt.Printf("  Card:        %s (%s)\n", d.CardName, d.CardID)
		fmt.Printf("  Source:      %s\n", d.Source)
		printAxes(d.Axes)
		printDistribution(d.Distribution)
		fmt.Printf("  Scores:      axis=%.3f vibe=%.3f boost=%.3f penalty=%.2f total=%.3f\n",
			d.Scores.Axis, d.Scores.Vibe, d.Scores.Boost, d.Scores.Penalty, d.Scores.Total)
		if d.Fallback != "" {
			fmt.Printf("  Fallback:    %s\n", d.Fallback)
		}
	}
	return nil
}

// #endregion detail-mode

// #region draws-mode

func runDrawsMode(store *state.Store, limit int, profileID string) error {
	recs, err := logging.ReadDraws(store.DB(), limit)
	if err != nil {
		return err
	}
	if profileID != "" {
		kept := recs[:0]
		for _, r := range recs {
			if r.ProfileID == profileID {
				kept = append(kept, r)
			}
		}
		recs = kept
	}
	if len(recs) == 0 {
		fmt.Fprintln(os.Stderr, "no draws found")
		return nil
	}
	if jsonOut {
		return printJSON(recs)
	}

	fmt.Printf("%-10s  %-12s  %-24s  %7s  %-13s  %s\n", "Date", "Profile", "Card", "Share", "Decision", "Fallback")
	for _, r := range recs {
		fb := "—"
		if r.Fallback != "" {
			fb = r.Fallback
		}
		fmt.Printf("%-10s  %-12s  %-24s  %7.4f  %-13s  %s\n", r.Date, r.ProfileID, r.CardID, r.Share, r.Decision, fb)
	}
	return nil
}

// #endregion draws-mode

// #region verifier

func verifierScore(decision string) float32 {
	switch decision {
	case "commit":
		return 1.0
	case "eval_rollback":
		return -1.0
	case "no_op":
		return 0.5
	default:
		return 0.0
	}
}

// #endregion verifier

// #region output

func parseDrawRecord(signalsJSON string) *logging.DrawRecord {
	if signalsJSON == "" {
		return nil
	}
	var rec logging.DrawRecord
	if err := json.Unmarshal([]byte(signalsJSON), &rec); err == nil && rec.DrawID != "" {
		return &rec
	}
	return nil
}

func printAxes(axes map[string]float64) {
	parts := make([]string, 0, len(axes))
	for _, name := range axis.Names {
		parts = append(parts, fmt.Sprintf("%s=%.2f", name, axes[name]))
	}
	fmt.Printf("  Axes:        %s\n", strings.Join(parts, " "))
}

func printDistribution(dist map[string]int) {
	keys := make([]string, 0, len(dist))
	for k := range dist {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, dist[k]))
	}
	fmt.Printf("  Energy:      %s\n", strings.Join(parts, " "))
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion output
