package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/keycast/internal/config"
	"github.com/verte-zerg/keycast/internal/model"
	"github.com/verte-zerg/keycast/internal/profile"
	"github.com/verte-zerg/keycast/internal/stats"
	"github.com/verte-zerg/keycast/internal/statsui"
	"github.com/verte-zerg/keycast/internal/store"
)

const statsPlotHeight = 8

var (
	statsUser        string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsKeys        string
	statsTop         int
	statsText        bool
	statsRefresh     time.Duration
)

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show key statistics",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsUser, "user", model.GuestUser, "profile to report on")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N recorded days")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window in days")
	cmd.Flags().StringVar(&statsKeys, "keys", "", "comma separated keys for per-key curves")
	cmd.Flags().IntVar(&statsTop, "top", defaultTopKeys, "keys in the top keys chart")
	cmd.Flags().BoolVar(&statsText, "text", false, "print a text report instead of the interactive viewer")
	cmd.Flags().DurationVar(&statsRefresh, "refresh", statsui.DefaultRefreshInterval, "reload interval of the viewer (0 disables)")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	user, err := activeUser(cmd, statsUser)
	if err != nil {
		return err
	}
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	applyIntConfig(cmd, "curve-window", &statsCurveWindow, fileCfg.Stats.CurveWindow)
	applyIntConfig(cmd, "top", &statsTop, fileCfg.Stats.Top)
	if statsCurveWindow < 1 {
		return fmt.Errorf("--curve-window must be >= 1")
	}
	if statsLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	if statsRefresh < 0 {
		return fmt.Errorf("--refresh must be >= 0")
	}

	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation(store.DayLayout, statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}

	cfg := model.StatsConfig{
		User:        user,
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
		Keys:        statsKeys,
	}

	st, err := store.Open(config.DefaultHistoryPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	if statsText || !term.IsTerminal(int(os.Stdout.Fd())) {
		profiles := profile.NewStore(config.DefaultProfilesDir(), nil)
		prof, err := profiles.Load(user)
		if err != nil {
			return fmt.Errorf("failed to load profile: %w", err)
		}
		return renderTextReport(cmd.OutOrStdout(), st, cfg, prof.KeyCounts, statsTop)
	}

	program := tea.NewProgram(statsui.NewModel(st, cfg, statsRefresh), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

// renderTextReport prints the history report. Lifetime counts from the
// profile are shown when no daily history exists yet.
func renderTextReport(w io.Writer, st *store.Store, cfg model.StatsConfig, lifetime model.KeyCounts, top int) error {
	ctx := context.Background()
	report, err := stats.BuildReport(ctx, st, cfg)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	if len(report.Days) == 0 {
		aggs := stats.AggregatesFromCounts(lifetime)
		if len(aggs) == 0 {
			return writeLines(w, fmt.Sprintf("No key stats recorded for %s.", cfg.User))
		}
		if err := writeLines(w, fmt.Sprintf("Lifetime counts for %s (no daily history)", cfg.User), ""); err != nil {
			return err
		}
		if err := stats.RenderTopKeys(w, aggs, top, 0); err != nil {
			return err
		}
		return stats.RenderKeyTable(w, aggs)
	}

	if err := stats.RenderSummary(w, report.Days, report.KeyAggsAll); err != nil {
		return err
	}
	if err := stats.RenderDailyCurves(w, report.Days, cfg.CurveWindow, 0, statsPlotHeight, false); err != nil {
		return err
	}
	if err := stats.RenderTopKeys(w, report.KeyAggsAll, top, 0); err != nil {
		return err
	}
	if err := stats.RenderKeyTable(w, report.KeyAggsWindow); err != nil {
		return err
	}

	selected := stats.ParseKeyList(cfg.Keys)
	if len(selected) == 0 {
		return nil
	}
	perDay, err := st.ListKeyCountsForDays(ctx, cfg.User, report.WindowDays, selected)
	if err != nil {
		return fmt.Errorf("failed to load key curves: %w", err)
	}
	return stats.RenderKeyCurves(w, report.WindowDays, perDay, selected, cfg.CurveWindow, 0, statsPlotHeight, false)
}
