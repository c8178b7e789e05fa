package export

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/atelierhq/studiobooks/internal/domain/money"
	"github.com/atelierhq/studiobooks/internal/domain/report"
)

func TestFormatCents(t *testing.T) {
	tests := []struct {
		name  string
		cents int64
		want  string
	}{
		{"zero", 0, "0.00"},
		{"whole units", 15000, "150.00"},
		{"with fraction", 15080, "150.80"},
		{"single cent", 1, "0.01"},
		{"negative", -2550, "-25.50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatCents(money.Cents(tt.cents))
			if got != tt.want {
				t.Errorf("formatCents(%d) = %v, want %v", tt.cents, got, tt.want)
			}
		})
	}
}

func TestWriteAging(t *testing.T) {
	exporter := NewXLSXExporter(t.TempDir(), zap.NewNop())

	rep := report.AgingReport{
		AsOf: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		Buckets: []report.AgingBucket{
			{Label: report.BucketCurrent, Count: 2, BalanceCents: 30000},
			{Label: report.BucketDays30, Count: 1, BalanceCents: 15080},
			{Label: report.BucketDays60},
			{Label: report.BucketDays90},
			{Label: report.BucketDays90Up},
		},
		TotalCount:        3,
		TotalBalanceCents: 45080,
	}

	path, err := exporter.WriteAging(rep, 10)
	require.NoError(t, err)
	assert.Contains(t, path, "aging_org10_20260315.xlsx")

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Aging")
	require.NoError(t, err)
	// Header + 5 buckets + total row.
	require.Len(t, rows, 7)
	assert.Equal(t, []string{"Bucket", "Invoices", "Balance"}, rows[0])
	assert.Equal(t, []string{"CURRENT", "2", "300.00"}, rows[1])
	assert.Equal(t, []string{"1_30", "1", "150.80"}, rows[2])
	assert.Equal(t, []string{"TOTAL", "3", "450.80"}, rows[6])
}

func TestWriteProfitAndLoss(t *testing.T) {
	exporter := NewXLSXExporter(t.TempDir(), zap.NewNop())

	stmt := report.ProfitLossStatement{
		Basis: report.BasisAccrual,
		From:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		To:    time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		Projects: []report.ProjectProfitability{
			{ProjectID: 1, InvoicedCents: 300000, ExpensesCents: 100000, ProfitCents: 200000, MarginBasisPoints: 6667},
		},
		PageTotals: report.ProfitLossTotals{RevenueCents: 300000, ExpensesCents: 100000, ProfitCents: 200000, MarginBasisPoints: 6667},
		OrgTotals:  report.ProfitLossTotals{RevenueCents: 300000, ExpensesCents: 100000, ProfitCents: 200000, MarginBasisPoints: 6667},
	}

	path, err := exporter.WriteProfitAndLoss(stmt, 10)
	require.NoError(t, err)
	assert.Contains(t, path, "pnl_org10_20260101_20260331.xlsx")

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	basis, err := f.GetCellValue("Profit and Loss", "B1")
	require.NoError(t, err)
	assert.Equal(t, "ACCRUAL", basis)

	profit, err := f.GetCellValue("Profit and Loss", "F4")
	require.NoError(t, err)
	assert.Equal(t, "2000.00", profit)
}
