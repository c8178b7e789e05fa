// Package export renders report snapshots to XLSX workbooks. File
// delivery is the caller's concern; this package only writes to a
// path.
package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/atelierhq/studiobooks/internal/domain/money"
	"github.com/atelierhq/studiobooks/internal/domain/report"
)

// XLSXExporter writes reports into the configured output directory.
type XLSXExporter struct {
	outputDir string
	logger    *zap.Logger
}

// NewXLSXExporter creates a new XLSX exporter
func NewXLSXExporter(outputDir string, logger *zap.Logger) *XLSXExporter {
	return &XLSXExporter{
		outputDir: outputDir,
		logger:    logger,
	}
}

// WriteAging writes an AR aging report workbook and returns its path.
func (e *XLSXExporter) WriteAging(rep report.AgingReport, orgID int64) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Aging"
	if err := renameDefaultSheet(f, sheet); err != nil {
		return "", err
	}

	setRow(f, sheet, 1, "Bucket", "Invoices", "Balance")
	row := 2
	for _, bucket := range rep.Buckets {
		setRow(f, sheet, row, string(bucket.Label), bucket.Count, formatCents(bucket.BalanceCents))
		row++
	}
	setRow(f, sheet, row, "TOTAL", rep.TotalCount, formatCents(rep.TotalBalanceCents))

	path := e.outputPath(fmt.Sprintf("aging_org%d_%s.xlsx", orgID, rep.AsOf.Format("20060102")))
	if err := e.save(f, path); err != nil {
		return "", err
	}

	e.logger.Info("Aging report exported",
		zap.Int64("organization_id", orgID),
		zap.String("path", path))
	return path, nil
}

// WriteProfitAndLoss writes a P&L workbook: one row per project on the
// page plus page and organization totals.
func (e *XLSXExporter) WriteProfitAndLoss(stmt report.ProfitLossStatement, orgID int64) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Profit and Loss"
	if err := renameDefaultSheet(f, sheet); err != nil {
		return "", err
	}

	setRow(f, sheet, 1, "Basis", string(stmt.Basis),
		"From", stmt.From.Format("2006-01-02"),
		"To", stmt.To.Format("2006-01-02"))
	setRow(f, sheet, 3, "Project", "Invoiced", "Received", "Outstanding", "Expenses", "Profit", "Margin %")

	row := 4
	for _, p := range stmt.Projects {
		setRow(f, sheet, row,
			p.ProjectID,
			formatCents(p.InvoicedCents),
			formatCents(p.ReceivedCents),
			formatCents(p.OutstandingCents),
			formatCents(p.ExpensesCents),
			formatCents(p.ProfitCents),
			formatBasisPoints(p.MarginBasisPoints),
		)
		row++
	}

	row++
	setRow(f, sheet, row, "PAGE TOTALS",
		formatCents(stmt.PageTotals.RevenueCents), "", "",
		formatCents(stmt.PageTotals.ExpensesCents),
		formatCents(stmt.PageTotals.ProfitCents),
		formatBasisPoints(stmt.PageTotals.MarginBasisPoints),
	)
	row++
	setRow(f, sheet, row, "ORG TOTALS",
		formatCents(stmt.OrgTotals.RevenueCents), "", "",
		formatCents(stmt.OrgTotals.ExpensesCents),
		formatCents(stmt.OrgTotals.ProfitCents),
		formatBasisPoints(stmt.OrgTotals.MarginBasisPoints),
	)

	path := e.outputPath(fmt.Sprintf("pnl_org%d_%s_%s.xlsx",
		orgID, stmt.From.Format("20060102"), stmt.To.Format("20060102")))
	if err := e.save(f, path); err != nil {
		return "", err
	}

	e.logger.Info("P&L report exported",
		zap.Int64("organization_id", orgID),
		zap.String("path", path))
	return path, nil
}

func (e *XLSXExporter) outputPath(name string) string {
	return filepath.Join(e.outputDir, name)
}

func (e *XLSXExporter) save(f *excelize.File, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func renameDefaultSheet(f *excelize.File, name string) error {
	if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	return nil
}

// setRow writes values left to right starting at column A.
func setRow(f *excelize.File, sheet string, row int, values ...interface{}) {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			continue
		}
		_ = f.SetCellValue(sheet, cell, v)
	}
}

// formatCents renders integer cents as a decimal string. Reports are
// for reading; arithmetic stays in cents everywhere else.
func formatCents(c money.Cents) string {
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}

func formatBasisPoints(bp money.BasisPoints) string {
	return fmt.Sprintf("%d.%02d", bp/100, bp%100)
}
