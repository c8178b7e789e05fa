// Package report holds the pure aggregation functions of the financial
// core: AR aging, cash-flow forecasting, and profitability / P&L. Every
// function takes already-fetched domain data plus an explicit "now" and
// returns a serializable summary, so each is unit-testable without a
// database and safe to run concurrently with writes.
package report

import (
	"time"

	"github.com/atelierhq/studiobooks/internal/domain/entity"
	"github.com/atelierhq/studiobooks/internal/domain/money"
)

// AgingBucketLabel names one aging range.
type AgingBucketLabel string

const (
	BucketCurrent  AgingBucketLabel = "CURRENT"
	BucketDays30   AgingBucketLabel = "1_30"
	BucketDays60   AgingBucketLabel = "31_60"
	BucketDays90   AgingBucketLabel = "61_90"
	BucketDays90Up AgingBucketLabel = "90_PLUS"
)

// AgingBucket is one range of the aging report.
type AgingBucket struct {
	Label        AgingBucketLabel `json:"label"`
	Count        int              `json:"count"`
	BalanceCents money.Cents      `json:"balance_cents"`
}

// AgingReport buckets outstanding receivables by days overdue. The
// buckets partition the input: every outstanding invoice lands in
// exactly one.
type AgingReport struct {
	AsOf              time.Time     `json:"as_of"`
	Buckets           []AgingBucket `json:"buckets"`
	TotalCount        int           `json:"total_count"`
	TotalBalanceCents money.Cents   `json:"total_balance_cents"`
}

// Aging computes the AR aging report over the given invoices at the
// given instant. Invoices that are not outstanding or carry no balance
// are skipped, so callers may pass an unfiltered set.
func Aging(invoices []*entity.Invoice, now time.Time) AgingReport {
	buckets := []AgingBucket{
		{Label: BucketCurrent},
		{Label: BucketDays30},
		{Label: BucketDays60},
		{Label: BucketDays90},
		{Label: BucketDays90Up},
	}

	rep := AgingReport{AsOf: now}
	for _, inv := range invoices {
		if !inv.Status.IsOutstanding() || inv.BalanceDueCents <= 0 {
			continue
		}
		idx := bucketIndex(agingDays(inv, now))
		buckets[idx].Count++
		buckets[idx].BalanceCents = buckets[idx].BalanceCents.Add(inv.BalanceDueCents)
		rep.TotalCount++
		rep.TotalBalanceCents = rep.TotalBalanceCents.Add(inv.BalanceDueCents)
	}
	rep.Buckets = buckets
	return rep
}

// agingDays returns the overdue age used for bucketing. An invoice
// whose due date has arrived is at least 1 day overdue: CURRENT holds
// only receivables that are not yet due.
func agingDays(inv *entity.Invoice, now time.Time) int {
	if now.Before(inv.DueDate) {
		return 0
	}
	if days := inv.DaysOverdue(now); days > 0 {
		return days
	}
	return 1
}

func bucketIndex(daysOverdue int) int {
	switch {
	case daysOverdue <= 0:
		return 0
	case daysOverdue <= 30:
		return 1
	case daysOverdue <= 60:
		return 2
	case daysOverdue <= 90:
		return 3
	default:
		return 4
	}
}
