package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelierhq/studiobooks/internal/domain/entity"
	"github.com/atelierhq/studiobooks/internal/domain/money"
)

func outstandingInvoice(balance money.Cents, dueDaysAgo int, now time.Time) *entity.Invoice {
	return &entity.Invoice{
		Status:          entity.InvoiceSent,
		BalanceDueCents: balance,
		DueDate:         now.AddDate(0, 0, -dueDaysAgo),
	}
}

func TestAging_BucketsPartitionInput(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	invoices := []*entity.Invoice{
		outstandingInvoice(100, 0, now),  // due date arrived: 1-30
		outstandingInvoice(200, 35, now), // 31-60
		outstandingInvoice(300, 95, now), // 90+
	}

	rep := Aging(invoices, now)

	require.Len(t, rep.Buckets, 5)
	assert.Equal(t, 0, findBucket(rep, BucketCurrent).Count)
	assert.Equal(t, money.Cents(200), findBucket(rep, BucketDays60).BalanceCents)
	assert.Equal(t, money.Cents(300), findBucket(rep, BucketDays90Up).BalanceCents)
	assert.Equal(t, 3, rep.TotalCount)
	assert.Equal(t, money.Cents(600), rep.TotalBalanceCents)

	// Partition: bucket sums equal the totals.
	var count int
	var sum money.Cents
	for _, b := range rep.Buckets {
		count += b.Count
		sum = sum.Add(b.BalanceCents)
	}
	assert.Equal(t, rep.TotalCount, count)
	assert.Equal(t, rep.TotalBalanceCents, sum)
}

func TestAging_BucketBoundaries(t *testing.T) {
	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		daysOverdue int
		bucket      AgingBucketLabel
	}{
		{-1, BucketCurrent},
		{0, BucketDays30},
		{1, BucketDays30},
		{30, BucketDays30},
		{31, BucketDays60},
		{60, BucketDays60},
		{61, BucketDays90},
		{90, BucketDays90},
		{91, BucketDays90Up},
		{365, BucketDays90Up},
	}

	for _, tt := range tests {
		rep := Aging([]*entity.Invoice{outstandingInvoice(100, tt.daysOverdue, now)}, now)
		assert.Equal(t, 1, findBucket(rep, tt.bucket).Count, "%d days overdue", tt.daysOverdue)
	}
}

func TestAging_SkipsNonOutstanding(t *testing.T) {
	now := time.Now()
	invoices := []*entity.Invoice{
		{Status: entity.InvoiceDraft, BalanceDueCents: 500, DueDate: now},
		{Status: entity.InvoicePaid, BalanceDueCents: 0, DueDate: now},
		{Status: entity.InvoiceWrittenOff, BalanceDueCents: 0, DueDate: now},
		{Status: entity.InvoiceSent, BalanceDueCents: 0, DueDate: now}, // fully credited
	}

	rep := Aging(invoices, now)
	assert.Equal(t, 0, rep.TotalCount)
	assert.Equal(t, money.Cents(0), rep.TotalBalanceCents)
}

func TestAging_DueTodayIsOverdue(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	// Due earlier the same day: the due date has arrived, so the
	// invoice leaves CURRENT even though no whole day has passed.
	inv := &entity.Invoice{
		Status:          entity.InvoiceSent,
		BalanceDueCents: 100,
		DueDate:         now.Add(-6 * time.Hour),
	}
	rep := Aging([]*entity.Invoice{inv}, now)
	assert.Equal(t, 0, findBucket(rep, BucketCurrent).Count)
	assert.Equal(t, 1, findBucket(rep, BucketDays30).Count)
}

func TestAging_NotYetDueIsCurrent(t *testing.T) {
	now := time.Now()
	inv := outstandingInvoice(1000, -14, now) // due in two weeks
	rep := Aging([]*entity.Invoice{inv}, now)
	assert.Equal(t, 1, findBucket(rep, BucketCurrent).Count)
}

func findBucket(rep AgingReport, label AgingBucketLabel) AgingBucket {
	for _, b := range rep.Buckets {
		if b.Label == label {
			return b
		}
	}
	return AgingBucket{}
}
