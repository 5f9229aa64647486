package costing

import (
	"errors"
	"math"
	"testing"
)

func sampleLines() []Line {
	return []Line{
		{Name: "Flour", Quantity: 2, Unit: Kilogram, Cost: 18.00},
		{Name: "Butter", Quantity: 500, Unit: Gram, Cost: 42.50},
		{Name: "Milk", Quantity: 1.5, Unit: Litre, Cost: 39.50},
	}
}

func TestScaleLinesLinearScaling(t *testing.T) {
	t.Parallel()

	lines := sampleLines()
	factors := []float64{0.5, 1, 2.5, 10}

	for _, k := range factors {
		scaled, err := ScaleLines(lines, 50, 50*k)
		if err != nil {
			t.Fatalf("ScaleLines failed at factor %g: %v", k, err)
		}
		if len(scaled) != len(lines) {
			t.Fatalf("expected %d lines, got %d", len(lines), len(scaled))
		}
		for i, line := range scaled {
			if math.Abs(line.Quantity-lines[i].Quantity*k) > 1e-9 {
				t.Fatalf("line %d quantity = %g, want %g", i, line.Quantity, lines[i].Quantity*k)
			}
			if math.Abs(line.Cost-lines[i].Cost*k) > 1e-9 {
				t.Fatalf("line %d cost = %g, want %g", i, line.Cost, lines[i].Cost*k)
			}
			if line.Unit != lines[i].Unit || line.Name != lines[i].Name {
				t.Fatalf("line %d identity changed: %+v", i, line)
			}
		}
	}
}

// A 50-unit batch costing R100 produced at 125 units scales to R250 while the
// cost per unit stays at R2.00: cost-per-unit is scale-invariant.
func TestScaleLinesScenario(t *testing.T) {
	t.Parallel()

	lines := []Line{
		{Name: "Dough", Quantity: 25, Unit: Kilogram, Cost: 60},
		{Name: "Filling", Quantity: 10, Unit: Kilogram, Cost: 40},
	}

	baseTotal := TotalCost(lines)
	if baseTotal != 100 {
		t.Fatalf("base total = %g, want 100", baseTotal)
	}
	if got := CostPerUnit(baseTotal, 50); got != 2.00 {
		t.Fatalf("base cost per unit = %g, want 2.00", got)
	}

	scaled, err := ScaleLines(lines, 50, 125)
	if err != nil {
		t.Fatalf("ScaleLines returned error: %v", err)
	}

	total := TotalCost(scaled)
	if math.Abs(total-250) > 1e-9 {
		t.Fatalf("scaled total = %g, want 250", total)
	}
	if got := CostPerUnit(total, 125); math.Abs(got-2.00) > 1e-9 {
		t.Fatalf("scaled cost per unit = %g, want 2.00", got)
	}
}

func TestScaleLinesZeroTarget(t *testing.T) {
	t.Parallel()

	scaled, err := ScaleLines(sampleLines(), 50, 0)
	if err != nil {
		t.Fatalf("ScaleLines returned error: %v", err)
	}
	for i, line := range scaled {
		if line.Quantity != 0 || line.Cost != 0 {
			t.Fatalf("line %d not zeroed: %+v", i, line)
		}
	}
	if got := CostPerUnit(TotalCost(scaled), 0); got != 0 {
		t.Fatalf("CostPerUnit(_, 0) = %g, want 0", got)
	}
}

func TestScaleLinesRejectsInvalidBatchSize(t *testing.T) {
	t.Parallel()

	for _, batchSize := range []float64{0, -10} {
		_, err := ScaleLines(sampleLines(), batchSize, 100)
		var invalid InvalidRecipeError
		if !errors.As(err, &invalid) {
			t.Fatalf("ScaleLines(batchSize=%g) error = %v, want InvalidRecipeError", batchSize, err)
		}
	}
}

func TestScaleLinesRejectsNegativeTarget(t *testing.T) {
	t.Parallel()

	_, err := ScaleLines(sampleLines(), 50, -1)
	var invalid InvalidQuantityError
	if !errors.As(err, &invalid) {
		t.Fatalf("ScaleLines error = %v, want InvalidQuantityError", err)
	}
}

func TestTotalCostEmpty(t *testing.T) {
	t.Parallel()

	if got := TotalCost(nil); got != 0 {
		t.Fatalf("TotalCost(nil) = %g, want 0", got)
	}
}
