package costing

import (
	"math"
	"testing"
)

func TestConvert(t *testing.T) {
	tests := []struct {
		name     string
		quantity float64
		from     string
		to       string
		want     float64
		ok       bool
	}{
		{"g to kg", 500, "g", "kg", 0.5, true},
		{"kg to g", 2.5, "kg", "g", 2500, true},
		{"ml to l", 100, "ml", "l", 0.1, true},
		{"l to ml", 0.75, "l", "ml", 750, true},
		{"same unit", 3, "kg", "kg", 3, true},
		{"pcs to pcs", 12, "pcs", "pcs", 12, true},
		{"weight to volume", 1, "kg", "l", 0, false},
		{"count to weight", 5, "pcs", "g", 0, false},
		{"unknown from", 1, "oz", "kg", 0, false},
		{"unknown to", 1, "kg", "lb", 0, false},
		{"zero quantity", 0, "g", "kg", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Convert(tt.quantity, tt.from, tt.to)
			if ok != tt.ok {
				t.Fatalf("Convert(%v, %q, %q) ok = %v, want %v", tt.quantity, tt.from, tt.to, ok, tt.ok)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Convert(%v, %q, %q) = %v, want %v", tt.quantity, tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestKnownUnit(t *testing.T) {
	for _, unit := range []string{"kg", "g", "l", "ml", "pcs"} {
		if !KnownUnit(unit) {
			t.Errorf("KnownUnit(%q) = false, want true", unit)
		}
	}
	for _, unit := range []string{"oz", "lb", "cup", "", "KG"} {
		if KnownUnit(unit) {
			t.Errorf("KnownUnit(%q) = true, want false", unit)
		}
	}
}

func TestUnitCategoryOf(t *testing.T) {
	tests := []struct {
		unit string
		want UnitCategory
	}{
		{"kg", CategoryWeight},
		{"g", CategoryWeight},
		{"l", CategoryVolume},
		{"ml", CategoryVolume},
		{"pcs", CategoryCount},
		{"oz", ""},
	}
	for _, tt := range tests {
		if got := UnitCategoryOf(tt.unit); got != tt.want {
			t.Errorf("UnitCategoryOf(%q) = %q, want %q", tt.unit, got, tt.want)
		}
	}
}

func TestAreCompatible(t *testing.T) {
	if !AreCompatible("g", "kg") {
		t.Error("g and kg should be compatible")
	}
	if !AreCompatible("ml", "l") {
		t.Error("ml and l should be compatible")
	}
	if AreCompatible("kg", "l") {
		t.Error("kg and l must not be compatible")
	}
	if AreCompatible("kg", "oz") {
		t.Error("unknown units must not be compatible")
	}
}

func TestConversionFactor(t *testing.T) {
	factor, ok := ConversionFactor("g", "kg")
	if !ok || math.Abs(factor-0.001) > 1e-12 {
		t.Errorf("ConversionFactor(g, kg) = %v, %v; want 0.001, true", factor, ok)
	}
	if _, ok := ConversionFactor("g", "ml"); ok {
		t.Error("ConversionFactor(g, ml) should not be defined")
	}
}

func TestCheckAvailability(t *testing.T) {
	// 2 kg of stock covers 500 g
	result := CheckAvailability(2, "kg", 500, "g")
	if !result.Available {
		t.Fatalf("expected available, got %+v", result)
	}
	if math.Abs(result.ConvertedStock-2000) > 1e-9 {
		t.Errorf("ConvertedStock = %v, want 2000", result.ConvertedStock)
	}

	// 100 g of stock does not cover 1 kg
	result = CheckAvailability(100, "g", 1, "kg")
	if result.Available {
		t.Fatalf("expected unavailable, got %+v", result)
	}

	// incompatible units are unavailable, not an error
	result = CheckAvailability(5, "kg", 1, "l")
	if result.Available {
		t.Fatalf("expected unavailable for incompatible units, got %+v", result)
	}
	if result.Message == "" {
		t.Error("expected an explanatory message")
	}
}
