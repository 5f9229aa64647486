package handlers

import (
	"errors"
	"net/http"

	"gorm.io/gorm"

	applog "provender/internal/log"
	"provender/internal/views/pages"
)

// renderBatchSheet serves the printable production sheet for a batch.
func renderBatchSheet(w http.ResponseWriter, r *http.Request, batchID uint) {
	ctx := r.Context()
	batch, err := loadProductionBatch(ctx, batchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load production batch for sheet", "error", err, "id", batchID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load production batch")
		return
	}

	data := pages.BatchSheetData{
		LotNumber:        batch.LotNumber,
		RunDate:          batch.RunDate,
		ProducedQuantity: batch.ProducedQuantity,
		ProducedUnit:     batch.ProducedUnit,
		TotalCost:        batch.TotalCost,
		CostPerUnit:      batch.CostPerUnit,
		Currency:         currencySymbol,
	}
	if batch.Recipe != nil {
		data.RecipeName = batch.Recipe.Name
	}
	for i, line := range batch.Ingredients {
		data.Ingredients = append(data.Ingredients, pages.BatchSheetIngredient{
			Order:    i + 1,
			Name:     line.Name,
			Quantity: line.Quantity,
			Unit:     line.Unit,
			Cost:     line.Cost,
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pages.BatchSheet(data).Render(ctx, w); err != nil {
		applog.Error(ctx, "failed to render batch sheet", "error", err, "id", batchID)
	}
}
