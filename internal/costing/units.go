// Package costing implements the derived-cost pipeline: unit conversion,
// recipe/product/composite cost calculation, the multi-partition cost cache,
// the serial cost update queue and the recipe unit auditor.
package costing

import (
	"fmt"
)

// UnitCategory groups units that can be converted into each other.
type UnitCategory string

const (
	CategoryWeight UnitCategory = "weight"
	CategoryVolume UnitCategory = "volume"
	CategoryCount  UnitCategory = "count"
)

// unitDef maps a unit to its category and its factor to the category's
// canonical unit (kg for weight, l for volume, pcs for count).
type unitDef struct {
	category UnitCategory
	factor   float64
}

var units = map[string]unitDef{
	"kg":  {CategoryWeight, 1},
	"g":   {CategoryWeight, 0.001},
	"l":   {CategoryVolume, 1},
	"ml":  {CategoryVolume, 0.001},
	"pcs": {CategoryCount, 1},
}

// KnownUnit reports whether the unit belongs to the supported set.
func KnownUnit(unit string) bool {
	_, ok := units[unit]
	return ok
}

// UnitCategoryOf returns the category of a unit, or "" when unknown.
func UnitCategoryOf(unit string) UnitCategory {
	if def, ok := units[unit]; ok {
		return def.category
	}
	return ""
}

// Convert converts a quantity between units. The second return value is false
// when the units are unknown or belong to different categories; callers decide
// whether that is a warning or a failure.
func Convert(quantity float64, fromUnit, toUnit string) (float64, bool) {
	from, ok := units[fromUnit]
	if !ok {
		return 0, false
	}
	to, ok := units[toUnit]
	if !ok {
		return 0, false
	}
	if from.category != to.category {
		return 0, false
	}
	return quantity * from.factor / to.factor, true
}

// AreCompatible reports whether two units resolve to the same category.
func AreCompatible(a, b string) bool {
	da, ok := units[a]
	if !ok {
		return false
	}
	db, ok := units[b]
	if !ok {
		return false
	}
	return da.category == db.category
}

// ConversionFactor returns the factor applied when converting one quantity
// unit into another. False when the conversion is not defined.
func ConversionFactor(fromUnit, toUnit string) (float64, bool) {
	return Convert(1, fromUnit, toUnit)
}

// Availability is the result of a stock-vs-requirement check.
type Availability struct {
	Available      bool    `json:"available"`
	ConvertedStock float64 `json:"converted_stock"`
	RequiredUnit   string  `json:"required_unit"`
	Message        string  `json:"message"`
}

// CheckAvailability converts the stocked quantity into the required unit and
// reports whether it covers the requirement. Incompatible units report
// unavailable rather than an error.
func CheckAvailability(stockQty float64, stockUnit string, requiredQty float64, requiredUnit string) Availability {
	converted, ok := Convert(stockQty, stockUnit, requiredUnit)
	if !ok {
		return Availability{
			Available:    false,
			RequiredUnit: requiredUnit,
			Message:      fmt.Sprintf("cannot convert stock from %s to %s", stockUnit, requiredUnit),
		}
	}
	if converted < requiredQty {
		return Availability{
			Available:      false,
			ConvertedStock: converted,
			RequiredUnit:   requiredUnit,
			Message:        fmt.Sprintf("insufficient stock: have %.4f %s, need %.4f %s", converted, requiredUnit, requiredQty, requiredUnit),
		}
	}
	return Availability{
		Available:      true,
		ConvertedStock: converted,
		RequiredUnit:   requiredUnit,
		Message:        "ok",
	}
}
