package pages

import (
	"context"
	"fmt"
	"html"
	"io"
	"strings"
	"time"

	"github.com/a-h/templ"
)

// BatchSheetIngredient is one scaled line on the printable production sheet.
type BatchSheetIngredient struct {
	Order    int
	Name     string
	Quantity float64
	Unit     string
	Cost     float64
}

// BatchSheetData aggregates everything the production sheet needs to render.
type BatchSheetData struct {
	RecipeName       string
	LotNumber        string
	RunDate          time.Time
	ProducedQuantity float64
	ProducedUnit     string
	TotalCost        float64
	CostPerUnit      float64
	Currency         string
	Ingredients      []BatchSheetIngredient
}

// FormatSheetQuantity renders a quantity with two decimal places and a
// trailing unit. Piece counts are shown without decimals.
func FormatSheetQuantity(value float64, unit string) string {
	if strings.EqualFold(unit, "unit") {
		return fmt.Sprintf("%.0f %s", value, unit)
	}
	return fmt.Sprintf("%.2f %s", value, unit)
}

// FormatSheetMoney renders a money value with the currency symbol.
func FormatSheetMoney(currency string, value float64) string {
	return fmt.Sprintf("%s%.2f", currency, value)
}

// FormatSheetUnitCost renders a per-unit cost with four decimal places so
// small unit costs stay legible.
func FormatSheetUnitCost(currency string, value float64) string {
	return fmt.Sprintf("%s%.4f", currency, value)
}

// FormatSheetDate renders the run date using a production-friendly layout.
func FormatSheetDate(v time.Time) string {
	if v.IsZero() {
		return ""
	}
	return v.Format("02 Jan 2006")
}

// BatchSheet renders the printable production sheet for a completed batch.
func BatchSheet(data BatchSheetData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString("<!DOCTYPE html><html lang=\"en\"><head><meta charset=\"utf-8\">")
		b.WriteString("<title>Production Sheet " + html.EscapeString(data.LotNumber) + "</title>")
		b.WriteString("<style>body{font-family:sans-serif;margin:2rem}table{border-collapse:collapse;width:100%}th,td{border:1px solid #ccc;padding:0.4rem 0.6rem;text-align:left}tfoot td{font-weight:bold}</style>")
		b.WriteString("</head><body>")

		b.WriteString("<h1>" + html.EscapeString(data.RecipeName) + "</h1>")
		b.WriteString("<dl>")
		b.WriteString("<dt>Lot</dt><dd>" + html.EscapeString(data.LotNumber) + "</dd>")
		b.WriteString("<dt>Run date</dt><dd>" + html.EscapeString(FormatSheetDate(data.RunDate)) + "</dd>")
		b.WriteString("<dt>Produced</dt><dd>" + html.EscapeString(FormatSheetQuantity(data.ProducedQuantity, data.ProducedUnit)) + "</dd>")
		b.WriteString("<dt>Cost per " + html.EscapeString(data.ProducedUnit) + "</dt><dd>" + html.EscapeString(FormatSheetUnitCost(data.Currency, data.CostPerUnit)) + "</dd>")
		b.WriteString("</dl>")

		b.WriteString("<table><thead><tr><th>#</th><th>Ingredient</th><th>Quantity</th><th>Cost</th></tr></thead><tbody>")
		for _, ingredient := range data.Ingredients {
			b.WriteString("<tr>")
			b.WriteString(fmt.Sprintf("<td>%d</td>", ingredient.Order))
			b.WriteString("<td>" + html.EscapeString(ingredient.Name) + "</td>")
			b.WriteString("<td>" + html.EscapeString(FormatSheetQuantity(ingredient.Quantity, ingredient.Unit)) + "</td>")
			b.WriteString("<td>" + html.EscapeString(FormatSheetMoney(data.Currency, ingredient.Cost)) + "</td>")
			b.WriteString("</tr>")
		}
		b.WriteString("</tbody><tfoot><tr><td colspan=\"3\">Total</td><td>")
		b.WriteString(html.EscapeString(FormatSheetMoney(data.Currency, data.TotalCost)))
		b.WriteString("</td></tr></tfoot></table>")

		b.WriteString("</body></html>")
		_, err := io.WriteString(w, b.String())
		return err
	})
}
