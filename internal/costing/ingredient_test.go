package costing

import (
	"errors"
	"math"
	"testing"
)

func TestCostPerPackUnit(t *testing.T) {
	t.Parallel()

	got, err := CostPerPackUnit(5, 45.00)
	if err != nil {
		t.Fatalf("CostPerPackUnit returned error: %v", err)
	}
	if got != 9.00 {
		t.Fatalf("CostPerPackUnit(5, 45) = %g, want 9.00", got)
	}
}

func TestCostPerPackUnitRejectsInvalidInputs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		size  float64
		price float64
	}{
		{"zero pack size", 0, 10},
		{"negative pack size", -2, 10},
		{"negative price", 5, -1},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := CostPerPackUnit(tt.size, tt.price)
			var invalid InvalidQuantityError
			if !errors.As(err, &invalid) {
				t.Fatalf("CostPerPackUnit(%g, %g) error = %v, want InvalidQuantityError", tt.size, tt.price, err)
			}
		})
	}
}

// The worked example from the ingredient screens: a 5 kg pack at R45.00
// tax-exclusive, of which 500 g is used, costs R4.50.
func TestUsageCostScenario(t *testing.T) {
	t.Parallel()

	pack := PackSpec{Size: 5, Unit: Kilogram, Price: 45.00}
	got, err := UsageCost(pack, 500, Gram)
	if err != nil {
		t.Fatalf("UsageCost returned error: %v", err)
	}
	if math.Abs(got-4.50) > 1e-9 {
		t.Fatalf("UsageCost = %g, want 4.50", got)
	}

	breakdown, err := Tax(pack.Price, 0.14, false)
	if err != nil {
		t.Fatalf("Tax returned error: %v", err)
	}
	if math.Abs(breakdown.TaxAmount-6.30) > 1e-9 || math.Abs(breakdown.TotalPrice-51.30) > 1e-9 {
		t.Fatalf("pack tax breakdown = %+v, want tax 6.30 total 51.30", breakdown)
	}
}

func TestUsageCostSameUnit(t *testing.T) {
	t.Parallel()

	pack := PackSpec{Size: 12, Unit: Piece, Price: 36}
	got, err := UsageCost(pack, 3, Piece)
	if err != nil {
		t.Fatalf("UsageCost returned error: %v", err)
	}
	if got != 9 {
		t.Fatalf("UsageCost = %g, want 9", got)
	}
}

func TestUsageCostRejectsCrossFamilyUnits(t *testing.T) {
	t.Parallel()

	pack := PackSpec{Size: 1, Unit: Kilogram, Price: 20}
	_, err := UsageCost(pack, 250, Millilitre)
	var incompatible IncompatibleUnitsError
	if !errors.As(err, &incompatible) {
		t.Fatalf("UsageCost error = %v, want IncompatibleUnitsError", err)
	}
}

func TestUsageCostRejectsNegativeQuantity(t *testing.T) {
	t.Parallel()

	pack := PackSpec{Size: 1, Unit: Kilogram, Price: 20}
	_, err := UsageCost(pack, -5, Gram)
	var invalid InvalidQuantityError
	if !errors.As(err, &invalid) {
		t.Fatalf("UsageCost error = %v, want InvalidQuantityError", err)
	}
}
