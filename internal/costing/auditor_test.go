package costing

import (
	"context"
	"testing"

	"github.com/TranMinhPhuc220420/plt-retail-store-sub000/internal/model/entity"
)

func TestAudit(t *testing.T) {
	ings := newFakeIngredients(
		&entity.Ingredient{ID: "ing-salt", Name: "Salt", Unit: "kg", AverageCost: 1},
		&entity.Ingredient{ID: "ing-chicken", Name: "Chicken", Unit: "kg", AverageCost: 12},
		&entity.Ingredient{ID: "ing-egg", Name: "Egg", Unit: "pcs", AverageCost: 0.5},
	)
	recs := newFakeRecipes(
		&entity.Recipe{
			ID: "rec-clean", Name: "Clean",
			Ingredients: []entity.RecipeIngredient{
				{IngredientID: "ing-salt", AmountUsed: 0.1, Unit: "kg"},
			},
		},
		&entity.Recipe{
			ID: "rec-mismatch", Name: "Mismatch",
			Ingredients: []entity.RecipeIngredient{
				// 2000 g against a kg-stocked cost: ignoring the unit would
				// overstate the cost by 1000x
				{IngredientID: "ing-chicken", AmountUsed: 2000, Unit: "g"},
			},
		},
		&entity.Recipe{
			ID: "rec-impossible", Name: "Impossible",
			Ingredients: []entity.RecipeIngredient{
				{IngredientID: "ing-egg", AmountUsed: 150, Unit: "g"},
			},
		},
	)
	auditor := NewUnitAuditor(recs, ings, testLogger())

	report, err := auditor.Audit(context.Background())
	if err != nil {
		t.Fatalf("Audit: %v", err)
	}

	if report.TotalRecipes != 3 {
		t.Errorf("TotalRecipes = %d, want 3", report.TotalRecipes)
	}
	if report.ValidRecipes != 1 {
		t.Errorf("ValidRecipes = %d, want 1", report.ValidRecipes)
	}
	if report.CriticalRecipes != 2 {
		t.Errorf("CriticalRecipes = %d, want 2", report.CriticalRecipes)
	}
	if report.LinesOK != 1 {
		t.Errorf("LinesOK = %d, want 1", report.LinesOK)
	}
	if report.LinesUnconvertible != 1 {
		t.Errorf("LinesUnconvertible = %d, want 1", report.LinesUnconvertible)
	}
	if len(report.PotentialErrors) != 2 {
		t.Fatalf("findings = %d, want 2", len(report.PotentialErrors))
	}

	// unconvertible lines sort above everything measurable
	first := report.PotentialErrors[0]
	if first.RecipeID != "rec-impossible" || first.Convertible {
		t.Errorf("top finding = %+v, want the unconvertible egg line", first)
	}
	if first.Severity != AuditCritical {
		t.Errorf("unconvertible severity = %s, want critical", first.Severity)
	}

	second := report.PotentialErrors[1]
	if second.RecipeID != "rec-mismatch" {
		t.Fatalf("second finding = %+v, want the chicken line", second)
	}
	if !almostEqual(second.Ratio, 1000) {
		t.Errorf("Ratio = %v, want 1000", second.Ratio)
	}
	if !almostEqual(second.WrongCost, 24000) {
		t.Errorf("WrongCost = %v, want 24000", second.WrongCost)
	}
	if !almostEqual(second.CorrectCost, 24) {
		t.Errorf("CorrectCost = %v, want 24", second.CorrectCost)
	}
	if second.Severity != AuditCritical {
		t.Errorf("ratio-1000 severity = %s, want critical", second.Severity)
	}
}

func TestAuditNoRecipes(t *testing.T) {
	auditor := NewUnitAuditor(newFakeRecipes(), newFakeIngredients(), testLogger())

	report, err := auditor.Audit(context.Background())
	if err != nil {
		t.Fatalf("Audit: %v", err)
	}
	if report.TotalRecipes != 0 || len(report.PotentialErrors) != 0 {
		t.Errorf("expected an empty report, got %+v", report)
	}
}

func TestAuditSkipsDanglingLines(t *testing.T) {
	recs := newFakeRecipes(&entity.Recipe{
		ID: "rec-dangling", Name: "Dangling",
		Ingredients: []entity.RecipeIngredient{
			{IngredientID: "ing-gone", AmountUsed: 1, Unit: "kg"},
		},
	})
	auditor := NewUnitAuditor(recs, newFakeIngredients(), testLogger())

	report, err := auditor.Audit(context.Background())
	if err != nil {
		t.Fatalf("Audit: %v", err)
	}
	if report.ValidRecipes != 1 {
		t.Errorf("a recipe with only dangling lines counts as valid, got %+v", report)
	}
}

func TestClassifyRatio(t *testing.T) {
	tests := []struct {
		name  string
		ratio float64
		want  string
	}{
		{"extreme overstatement", 12, AuditCritical},
		{"extreme understatement", 0.05, AuditCritical},
		{"moderate overstatement", 3, AuditWarning},
		{"moderate understatement", 0.5, AuditWarning},
		{"critical lower bound is a warning", 0.1, AuditWarning},
		{"critical upper bound is a warning", 10, AuditWarning},
		{"mild drift", 1.2, AuditConversionNeeded},
		{"exact match", 1, AuditConversionNeeded},
		{"moderate bounds are mild", 1.5, AuditConversionNeeded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyRatio(tt.ratio); got != tt.want {
				t.Errorf("classifyRatio(%v) = %s, want %s", tt.ratio, got, tt.want)
			}
		})
	}
}

func TestErrorMagnitude(t *testing.T) {
	tests := []struct {
		name    string
		finding AuditFinding
		want    float64
	}{
		{"over ratio", AuditFinding{Convertible: true, Ratio: 1000}, 1000},
		{"under ratio mirrors", AuditFinding{Convertible: true, Ratio: 0.001}, 1000},
		{"unconvertible dominates", AuditFinding{Convertible: false}, 1e18},
		{"unit ratio", AuditFinding{Convertible: true, Ratio: 1}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.finding.errorMagnitude(); !almostEqual(got, tt.want) {
				t.Errorf("errorMagnitude = %v, want %v", got, tt.want)
			}
		})
	}
}
