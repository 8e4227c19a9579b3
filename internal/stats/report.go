package stats

import (
	"context"

	"github.com/verte-zerg/keycast/internal/model"
	"github.com/verte-zerg/keycast/internal/store"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Days          []model.DayAggregate
	WindowDays    []string
	KeyAggsAll    []model.KeyAggregate
	KeyAggsWindow []model.KeyAggregate
}

// DayNames returns the day labels of the report.
func (r Report) DayNames() []string {
	return dayNames(r.Days)
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	days, err := st.ListDays(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	if cfg.Last > 0 && len(days) > cfg.Last {
		days = days[len(days)-cfg.Last:]
	}

	allDays := dayNames(days)
	windowDays := lastDays(days, cfg.CurveWindow)
	aggsAll, err := st.ListKeyAggregatesForDays(ctx, cfg.User, allDays)
	if err != nil {
		return Report{}, err
	}
	aggsWindow, err := st.ListKeyAggregatesForDays(ctx, cfg.User, windowDays)
	if err != nil {
		return Report{}, err
	}

	return Report{
		Days:          days,
		WindowDays:    windowDays,
		KeyAggsAll:    aggsAll,
		KeyAggsWindow: aggsWindow,
	}, nil
}

func dayNames(days []model.DayAggregate) []string {
	names := make([]string, len(days))
	for i, d := range days {
		names[i] = d.Day
	}
	return names
}

func lastDays(days []model.DayAggregate, window int) []string {
	if window <= 0 || len(days) <= window {
		return dayNames(days)
	}
	return dayNames(days[len(days)-window:])
}
