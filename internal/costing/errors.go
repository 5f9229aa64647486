package costing

import "fmt"

// IncompatibleUnitsError is returned when a conversion is requested between
// unit families with no defined relationship, for example kilograms to
// millilitres. Callers should surface it as a validation failure.
type IncompatibleUnitsError struct {
	From Unit
	To   Unit
}

func (e IncompatibleUnitsError) Error() string {
	return fmt.Sprintf("costing: cannot convert %q to %q", string(e.From), string(e.To))
}

// InvalidQuantityError is returned when a non-positive pack size or a negative
// price, quantity, or tax rate is supplied.
type InvalidQuantityError struct {
	Field string
	Value float64
}

func (e InvalidQuantityError) Error() string {
	return fmt.Sprintf("costing: invalid %s %g", e.Field, e.Value)
}

// InvalidRecipeError is returned when a recipe batch size that is zero or
// negative would be used as a scaling divisor.
type InvalidRecipeError struct {
	BatchSize float64
}

func (e InvalidRecipeError) Error() string {
	return fmt.Sprintf("costing: recipe batch size must be positive, got %g", e.BatchSize)
}
