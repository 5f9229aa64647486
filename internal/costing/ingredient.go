package costing

// PackSpec describes how an ingredient is purchased: a container of a known
// size, unit, and price.
type PackSpec struct {
	Size  float64
	Unit  Unit
	Price float64
}

// CostPerPackUnit returns the price of one pack unit, for example the cost of
// one kilogram when a 5 kg pack sells for 45.00.
func CostPerPackUnit(packSize, packPrice float64) (float64, error) {
	if packSize <= 0 {
		return 0, InvalidQuantityError{Field: "pack size", Value: packSize}
	}
	if packPrice < 0 {
		return 0, InvalidQuantityError{Field: "pack price", Value: packPrice}
	}
	return packPrice / packSize, nil
}

// UsageCost returns the cost of consuming usedQuantity of usedUnit from the
// supplied pack. The used unit may differ from the pack unit only within the
// same family; cross-family usage is rejected.
func UsageCost(pack PackSpec, usedQuantity float64, usedUnit Unit) (float64, error) {
	perUnit, err := CostPerPackUnit(pack.Size, pack.Price)
	if err != nil {
		return 0, err
	}
	if usedQuantity < 0 {
		return 0, InvalidQuantityError{Field: "used quantity", Value: usedQuantity}
	}
	inPackUnits, err := Convert(usedQuantity, usedUnit, pack.Unit)
	if err != nil {
		return 0, err
	}
	return perUnit * inPackUnits, nil
}
