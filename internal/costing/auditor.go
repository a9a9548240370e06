package costing

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
)

// Audit severities, worst first.
const (
	AuditValid    = "valid"
	AuditWarning  = "warning"
	AuditCritical = "critical"

	// conversion needed but the cost impact is negligible
	AuditConversionNeeded = "conversion_needed"
)

// Cost-error ratio bands. A line whose wrong/correct cost ratio falls outside
// the critical band is a large error; outside the moderate band, a moderate
// one. Ratios inside the moderate band need conversion but barely move the
// cost.
const (
	criticalRatioLow  = 0.1
	criticalRatioHigh = 10
	moderateRatioLow  = 0.67
	moderateRatioHigh = 1.5
)

// classifyRatio maps a wrong/correct cost ratio to an audit severity.
func classifyRatio(ratio float64) string {
	switch {
	case ratio < criticalRatioLow || ratio > criticalRatioHigh:
		return AuditCritical
	case ratio < moderateRatioLow || ratio > moderateRatioHigh:
		return AuditWarning
	default:
		return AuditConversionNeeded
	}
}

// AuditFinding is one risky ingredient line: the cost computed while ignoring
// the unit mismatch versus the correctly converted cost.
type AuditFinding struct {
	RecipeID       string  `json:"recipe_id"`
	RecipeName     string  `json:"recipe_name"`
	IngredientID   string  `json:"ingredient_id"`
	IngredientName string  `json:"ingredient_name"`
	FromUnit       string  `json:"from_unit"`
	ToUnit         string  `json:"to_unit"`
	Convertible    bool    `json:"convertible"`
	Ratio          float64 `json:"ratio"`
	WrongCost      float64 `json:"wrong_cost"`
	CorrectCost    float64 `json:"correct_cost"`
	Severity       string  `json:"severity"`
}

// errorMagnitude orders findings by how far the ratio is from 1, in either
// direction. Unconvertible lines sort above everything measurable.
func (f AuditFinding) errorMagnitude() float64 {
	if !f.Convertible {
		return 1e18
	}
	if f.Ratio <= 0 {
		return 0
	}
	if f.Ratio < 1 {
		return 1 / f.Ratio
	}
	return f.Ratio
}

// UnitAuditReport is the batch diagnostic over all recipes.
type UnitAuditReport struct {
	GeneratedAt        time.Time      `json:"generated_at"`
	TotalRecipes       int            `json:"total_recipes"`
	ValidRecipes       int            `json:"valid_recipes"`
	WarningRecipes     int            `json:"warning_recipes"`
	CriticalRecipes    int            `json:"critical_recipes"`
	LinesOK            int            `json:"lines_ok"`
	LinesNeedingConv   int            `json:"lines_needing_conversion"`
	LinesUnconvertible int            `json:"lines_unconvertible"`
	PotentialErrors    []AuditFinding `json:"potential_cost_errors"`
}

// UnitAuditor scans every recipe for unit-conversion risk. It runs offline,
// over the same unit logic as the calculator, and produces a report for human
// remediation; it corrects nothing.
type UnitAuditor struct {
	recipes     RecipeStore
	ingredients IngredientStore
	logger      *zap.Logger
}

// NewUnitAuditor creates an auditor.
func NewUnitAuditor(recipes RecipeStore, ingredients IngredientStore, logger *zap.Logger) *UnitAuditor {
	return &UnitAuditor{recipes: recipes, ingredients: ingredients, logger: logger}
}

// Audit classifies every recipe line by unit-conversion risk and returns a
// severity-ranked report.
func (a *UnitAuditor) Audit(ctx context.Context) (*UnitAuditReport, error) {
	recipes, err := a.recipes.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}

	report := &UnitAuditReport{
		GeneratedAt:     time.Now(),
		TotalRecipes:    len(recipes),
		PotentialErrors: []AuditFinding{},
	}

	for i := range recipes {
		recipe := &recipes[i]
		severity := AuditValid

		for _, line := range recipe.Ingredients {
			ing := line.Ingredient
			if ing == nil {
				var err error
				ing, err = a.ingredients.FindByID(ctx, line.IngredientID)
				if err != nil {
					continue
				}
			}

			if line.Unit == ing.Unit {
				report.LinesOK++
				continue
			}

			unitCost, _ := unitCostOf(ing)
			finding := AuditFinding{
				RecipeID:       recipe.ID,
				RecipeName:     recipe.Name,
				IngredientID:   ing.ID,
				IngredientName: ing.Name,
				FromUnit:       line.Unit,
				ToUnit:         ing.Unit,
			}

			converted, ok := Convert(line.AmountUsed, line.Unit, ing.Unit)
			if !ok {
				report.LinesUnconvertible++
				finding.Severity = AuditCritical
				report.PotentialErrors = append(report.PotentialErrors, finding)
				severity = AuditCritical
				continue
			}

			finding.Convertible = true
			// Wrong cost reproduces the historical behavior of ignoring the
			// unit mismatch entirely.
			finding.WrongCost = unitCost * line.AmountUsed
			finding.CorrectCost = unitCost * converted

			if finding.CorrectCost <= 0 {
				report.LinesNeedingConv++
				continue
			}
			finding.Ratio = finding.WrongCost / finding.CorrectCost

			switch classifyRatio(finding.Ratio) {
			case AuditCritical:
				finding.Severity = AuditCritical
				report.PotentialErrors = append(report.PotentialErrors, finding)
				severity = AuditCritical
			case AuditWarning:
				finding.Severity = AuditWarning
				report.PotentialErrors = append(report.PotentialErrors, finding)
				if severity != AuditCritical {
					severity = AuditWarning
				}
			default:
				report.LinesNeedingConv++
			}
		}

		switch severity {
		case AuditCritical:
			report.CriticalRecipes++
		case AuditWarning:
			report.WarningRecipes++
		default:
			report.ValidRecipes++
		}
	}

	sort.SliceStable(report.PotentialErrors, func(i, j int) bool {
		return report.PotentialErrors[i].errorMagnitude() > report.PotentialErrors[j].errorMagnitude()
	})

	a.logger.Info("recipe unit audit complete",
		zap.Int("recipes", report.TotalRecipes),
		zap.Int("critical", report.CriticalRecipes),
		zap.Int("warnings", report.WarningRecipes),
	)
	return report, nil
}
