package costing

// Line is one costed ingredient line of a recipe: a quantity in some unit and
// the money that quantity costs.
type Line struct {
	Name     string
	Quantity float64
	Unit     Unit
	Cost     float64
}

// ScaleLines scales every line of a recipe to a target production quantity.
// The factor is target/batchSize and applies uniformly to quantities and
// costs; no economies of scale are modelled. A batch size that is zero or
// negative cannot serve as a divisor and yields InvalidRecipeError; a
// negative target yields InvalidQuantityError. A zero target is allowed and
// produces zeroed lines.
func ScaleLines(lines []Line, batchSize, targetQuantity float64) ([]Line, error) {
	if batchSize <= 0 {
		return nil, InvalidRecipeError{BatchSize: batchSize}
	}
	if targetQuantity < 0 {
		return nil, InvalidQuantityError{Field: "target quantity", Value: targetQuantity}
	}

	factor := targetQuantity / batchSize
	scaled := make([]Line, len(lines))
	for i, line := range lines {
		scaled[i] = Line{
			Name:     line.Name,
			Quantity: line.Quantity * factor,
			Unit:     line.Unit,
			Cost:     line.Cost * factor,
		}
	}
	return scaled, nil
}

// TotalCost sums the cost of every line.
func TotalCost(lines []Line) float64 {
	total := 0.0
	for _, line := range lines {
		total += line.Cost
	}
	return total
}

// CostPerUnit divides a total cost across a produced quantity. The cost per
// unit of nothing produced is defined as zero rather than a division error,
// since a zero target is a degenerate but valid query.
func CostPerUnit(totalCost, quantity float64) float64 {
	if quantity <= 0 {
		return 0
	}
	return totalCost / quantity
}
