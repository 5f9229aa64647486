// Package pos builds point-of-sale tickets: it prices a basket of products,
// applies whichever live promotion gives the deepest discount per product,
// and derives the tax portion of the total at the configured POS rate. All
// money is rounded to two decimal places with decimal arithmetic so persisted
// receipts are exact.
package pos

import (
	"time"

	"github.com/shopspring/decimal"

	"provender/internal/costing"
	"provender/models"
)

// LineInput pairs a product with the quantity being sold.
type LineInput struct {
	Product  models.Product
	Quantity int
}

// TicketLine is a fully priced receipt line.
type TicketLine struct {
	ProductID uint
	Name      string
	UnitPrice float64
	Quantity  int
	Discount  float64
	LineTotal float64
}

// Ticket is a priced basket ready to be persisted as a sale. Shelf prices are
// tax-inclusive, so Tax reports the portion of Total owed at the POS rate
// rather than an amount added on top.
type Ticket struct {
	Lines    []TicketLine
	Subtotal float64
	Discount float64
	Tax      float64
	Total    float64
}

// Build prices the supplied basket at the given moment. Promotions outside
// their date window or marked inactive are ignored; when several promotions
// target the same product the deepest discount wins.
func Build(items []LineInput, promotions []models.Promotion, taxRate float64, at time.Time) (Ticket, error) {
	bestDiscount := make(map[uint]float64)
	for _, promo := range promotions {
		if !promo.AppliesOn(at) {
			continue
		}
		percent := promo.PercentOff
		if percent <= 0 {
			continue
		}
		if percent > 100 {
			percent = 100
		}
		if percent > bestDiscount[promo.ProductID] {
			bestDiscount[promo.ProductID] = percent
		}
	}

	ticket := Ticket{Lines: make([]TicketLine, 0, len(items))}
	subtotal := decimal.Zero
	discountTotal := decimal.Zero
	grandTotal := decimal.Zero

	for _, item := range items {
		if item.Quantity <= 0 {
			return Ticket{}, costing.InvalidQuantityError{Field: "quantity", Value: float64(item.Quantity)}
		}
		if item.Product.Price < 0 {
			return Ticket{}, costing.InvalidQuantityError{Field: "price", Value: item.Product.Price}
		}

		unitPrice := decimal.NewFromFloat(item.Product.Price)
		gross := unitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))).Round(2)

		discount := decimal.Zero
		if percent := bestDiscount[item.Product.ID]; percent > 0 {
			discount = gross.Mul(decimal.NewFromFloat(percent)).Div(decimal.NewFromInt(100)).Round(2)
		}
		lineTotal := gross.Sub(discount)

		subtotal = subtotal.Add(gross)
		discountTotal = discountTotal.Add(discount)
		grandTotal = grandTotal.Add(lineTotal)

		ticket.Lines = append(ticket.Lines, TicketLine{
			ProductID: item.Product.ID,
			Name:      item.Product.Name,
			UnitPrice: item.Product.Price,
			Quantity:  item.Quantity,
			Discount:  discount.InexactFloat64(),
			LineTotal: lineTotal.InexactFloat64(),
		})
	}

	total := grandTotal.InexactFloat64()
	breakdown, err := costing.Tax(total, taxRate, true)
	if err != nil {
		return Ticket{}, err
	}

	ticket.Subtotal = subtotal.InexactFloat64()
	ticket.Discount = discountTotal.InexactFloat64()
	ticket.Tax = decimal.NewFromFloat(breakdown.TaxAmount).Round(2).InexactFloat64()
	ticket.Total = total
	return ticket, nil
}
