package costing

// TaxBreakdown splits a price into its tax-exclusive amount, the tax itself,
// and the tax-inclusive total. It is always derived from a stored price plus
// the inclusive flag, never persisted on its own.
type TaxBreakdown struct {
	ExclusivePrice float64 `json:"exclusive_price"`
	TaxAmount      float64 `json:"tax_amount"`
	TotalPrice     float64 `json:"total_price"`
}

// Tax computes the breakdown for a price at the supplied rate. The rate is a
// fraction in [0, 1) and is deliberately a parameter: the ingredient catalog
// and the POS run with independently configured rates.
//
// The two branches are exact inverses: feeding the inclusive branch's total
// back through the exclusive branch at the same rate reproduces the original
// price within floating-point tolerance.
func Tax(price, rate float64, priceIncludesTax bool) (TaxBreakdown, error) {
	if price < 0 {
		return TaxBreakdown{}, InvalidQuantityError{Field: "price", Value: price}
	}
	if rate < 0 || rate >= 1 {
		return TaxBreakdown{}, InvalidQuantityError{Field: "tax rate", Value: rate}
	}

	if priceIncludesTax {
		exclusive := price / (1 + rate)
		return TaxBreakdown{
			ExclusivePrice: exclusive,
			TaxAmount:      price - exclusive,
			TotalPrice:     price,
		}, nil
	}

	tax := price * rate
	return TaxBreakdown{
		ExclusivePrice: price,
		TaxAmount:      tax,
		TotalPrice:     price + tax,
	}, nil
}
