package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/TranMinhPhuc220420/plt-retail-store-sub000/internal/costing"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// AuditService runs the recipe unit audit and renders it as a spreadsheet
// for the kitchen team.
type AuditService struct {
	auditor *costing.UnitAuditor
	logger  *zap.Logger
}

// NewAuditService creates an audit service.
func NewAuditService(auditor *costing.UnitAuditor, logger *zap.Logger) *AuditService {
	return &AuditService{auditor: auditor, logger: logger}
}

// Run scans all recipes for unit-conversion risk.
func (s *AuditService) Run(ctx context.Context) (*costing.UnitAuditReport, error) {
	return s.auditor.Audit(ctx)
}

// ExportXLSX runs the audit and renders the findings as an xlsx workbook.
func (s *AuditService) ExportXLSX(ctx context.Context) (*bytes.Buffer, error) {
	report, err := s.auditor.Audit(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Unit Audit"
	f.SetSheetName("Sheet1", sheet)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	headers := []string{"Recipe", "Ingredient", "From Unit", "To Unit", "Convertible", "Wrong Cost", "Correct Cost", "Ratio", "Severity"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	f.SetCellStyle(sheet, "A1", "I1", headerStyle)

	for row, finding := range report.PotentialErrors {
		values := []interface{}{
			finding.RecipeName,
			finding.IngredientName,
			finding.FromUnit,
			finding.ToUnit,
			finding.Convertible,
			finding.WrongCost,
			finding.CorrectCost,
			finding.Ratio,
			finding.Severity,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}
	f.SetColWidth(sheet, "A", "B", 28)
	f.SetColWidth(sheet, "C", "I", 14)

	summaryRow := len(report.PotentialErrors) + 3
	summary := fmt.Sprintf("Recipes: %d total, %d valid, %d warning, %d critical. Lines: %d ok, %d need conversion, %d unconvertible.",
		report.TotalRecipes, report.ValidRecipes, report.WarningRecipes, report.CriticalRecipes,
		report.LinesOK, report.LinesNeedingConv, report.LinesUnconvertible)
	cell, _ := excelize.CoordinatesToCellName(1, summaryRow)
	f.SetCellValue(sheet, cell, summary)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	s.logger.Info("unit audit exported",
		zap.Int("findings", len(report.PotentialErrors)),
		zap.Int("critical_recipes", report.CriticalRecipes))
	return &buf, nil
}
