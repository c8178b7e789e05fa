package report

import (
	"time"

	"github.com/atelierhq/studiobooks/internal/domain/entity"
	"github.com/atelierhq/studiobooks/internal/domain/fault"
	"github.com/atelierhq/studiobooks/internal/domain/money"
)

// MaxForecastWeeks bounds the projection horizon.
const MaxForecastWeeks = 52

// PlannedOutflow is a future expense the forecaster counts against the
// weekly balance.
type PlannedOutflow struct {
	Date        time.Time
	AmountCents money.Cents
}

// ForecastWeek is one week of the cash-flow projection.
type ForecastWeek struct {
	WeekStart           time.Time   `json:"week_start"`
	InflowCents         money.Cents `json:"inflow_cents"`
	OutflowCents        money.Cents `json:"outflow_cents"`
	NetCents            money.Cents `json:"net_cents"`
	RunningBalanceCents money.Cents `json:"running_balance_cents"`
}

// CashFlowForecast is the weekly projection of net cash position.
type CashFlowForecast struct {
	GeneratedAt          time.Time      `json:"generated_at"`
	StartingBalanceCents money.Cents    `json:"starting_balance_cents"`
	Weeks                []ForecastWeek `json:"weeks"`
}

// Forecast projects the weekly net cash position across the horizon.
// Each outstanding invoice is counted as an inflow in the week holding
// its due date; invoices already overdue land in week one (collect-now
// assumption). This is a deterministic projection assuming 100%
// collection at the due date, a stated simplification rather than a
// statistical forecast.
//
// Receivables due beyond the horizon and outflows outside it are
// excluded. Returns a validation fault if weeks is outside [1, 52].
func Forecast(
	startingBalance money.Cents,
	weeks int,
	invoices []*entity.Invoice,
	outflows []PlannedOutflow,
	now time.Time,
) (CashFlowForecast, error) {
	if weeks < 1 || weeks > MaxForecastWeeks {
		return CashFlowForecast{}, fault.Validation("weeks", "forecast horizon must be between 1 and 52 weeks")
	}

	start := now.Truncate(24 * time.Hour)
	result := CashFlowForecast{
		GeneratedAt:          now,
		StartingBalanceCents: startingBalance,
		Weeks:                make([]ForecastWeek, weeks),
	}
	for i := range result.Weeks {
		result.Weeks[i].WeekStart = start.AddDate(0, 0, 7*i)
	}

	horizonEnd := start.AddDate(0, 0, 7*weeks)

	for _, inv := range invoices {
		if !inv.Status.IsOutstanding() || inv.BalanceDueCents <= 0 {
			continue
		}
		idx := weekIndex(start, inv.DueDate)
		if idx < 0 {
			idx = 0 // already overdue: collect now
		}
		if idx >= weeks {
			continue
		}
		result.Weeks[idx].InflowCents = result.Weeks[idx].InflowCents.Add(inv.BalanceDueCents)
	}

	for _, out := range outflows {
		if out.Date.Before(start) || !out.Date.Before(horizonEnd) {
			continue
		}
		idx := weekIndex(start, out.Date)
		result.Weeks[idx].OutflowCents = result.Weeks[idx].OutflowCents.Add(out.AmountCents)
	}

	running := startingBalance
	for i := range result.Weeks {
		w := &result.Weeks[i]
		w.NetCents = w.InflowCents.Sub(w.OutflowCents)
		running = running.Add(w.NetCents)
		w.RunningBalanceCents = running
	}

	return result, nil
}

// weekIndex returns which 7-day bucket after start the date falls in,
// negative for dates before start.
func weekIndex(start, date time.Time) int {
	days := int(date.Sub(start).Hours() / 24)
	if date.Before(start) {
		return -1
	}
	return days / 7
}
