package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"provender/internal/costing"
	applog "provender/internal/log"
	"provender/models"
)

var (
	errBatchRecipeNotFound = errors.New("batches: recipe not found")
	errBatchEmptyRecipe    = errors.New("batches: recipe has no ingredients")
	nowFunc                = time.Now
)

type productionBatchRequest struct {
	RecipeID         uint    `json:"recipe_id"`
	ProducedQuantity float64 `json:"produced_quantity"`
	ProducedUnit     string  `json:"produced_unit"`
	RunDate          string  `json:"run_date"`
}

type batchIngredientResponse struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	Cost     float64 `json:"cost"`
}

type productionBatchResponse struct {
	ID               uint                      `json:"id"`
	RecipeID         uint                      `json:"recipe_id"`
	RecipeName       string                    `json:"recipe_name,omitempty"`
	LotNumber        string                    `json:"lot_number"`
	ProducedQuantity float64                   `json:"produced_quantity"`
	ProducedUnit     string                    `json:"produced_unit"`
	RunDate          time.Time                 `json:"run_date"`
	TotalCost        float64                   `json:"total_cost"`
	CostPerUnit      float64                   `json:"cost_per_unit"`
	Ingredients      []batchIngredientResponse `json:"ingredients"`
	CreatedAt        time.Time                 `json:"created_at"`
}

// ProductionBatchResource handles production runs. Creating a batch scales
// the live recipe and snapshots the result; there is deliberately no update
// route because snapshots are immutable once written.
func ProductionBatchResource(w http.ResponseWriter, r *http.Request) {
	if database == nil {
		applog.Debug(r.Context(), "production batch request without database")
		writeJSONError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}

	if _, ok := currentUserID(r); !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/app/api/production-batches")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			listProductionBatches(w, r)
		case http.MethodPost:
			createProductionBatch(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	segments := strings.Split(path, "/")
	idValue, err := strconv.ParseUint(segments[0], 10, 64)
	if err != nil {
		applog.Debug(r.Context(), "invalid production batch identifier", "identifier", segments[0], "error", err)
		http.NotFound(w, r)
		return
	}
	batchID := uint(idValue)

	if len(segments) > 1 && segments[1] == "sheet" {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		renderBatchSheet(w, r, batchID)
		return
	}

	switch r.Method {
	case http.MethodGet:
		showProductionBatch(w, r, batchID)
	case http.MethodDelete:
		deleteProductionBatch(w, r, batchID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listProductionBatches(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var results []models.ProductionBatch

	query := database.WithContext(ctx).
		Preload("Recipe").
		Preload("Ingredients").
		Order("run_date desc, id desc")
	if recipeParam := strings.TrimSpace(r.URL.Query().Get("recipe_id")); recipeParam != "" {
		if idValue, err := strconv.ParseUint(recipeParam, 10, 64); err == nil {
			query = query.Where("recipe_id = ?", uint(idValue))
		}
	}

	if err := query.Find(&results).Error; err != nil {
		applog.Error(ctx, "failed to list production batches", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load production batches")
		return
	}

	responses := make([]productionBatchResponse, 0, len(results))
	for _, batch := range results {
		responses = append(responses, projectProductionBatch(batch))
	}
	writeJSON(w, http.StatusOK, responses)
}

func showProductionBatch(w http.ResponseWriter, r *http.Request, batchID uint) {
	ctx := r.Context()
	batch, err := loadProductionBatch(ctx, batchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load production batch", "error", err, "id", batchID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load production batch")
		return
	}

	writeJSON(w, http.StatusOK, projectProductionBatch(*batch))
}

func createProductionBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload productionBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid production batch payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	batch, err := snapshotProductionBatch(ctx, payload)
	if err != nil {
		var incompatible costing.IncompatibleUnitsError
		var invalidQuantity costing.InvalidQuantityError
		var invalidRecipe costing.InvalidRecipeError
		switch {
		case errors.Is(err, errBatchRecipeNotFound):
			writeJSONError(w, http.StatusNotFound, "recipe does not exist")
		case errors.Is(err, errBatchEmptyRecipe):
			writeJSONError(w, http.StatusBadRequest, "recipe has no ingredients to scale")
		case errors.As(err, &incompatible), errors.As(err, &invalidQuantity), errors.As(err, &invalidRecipe):
			writeJSONError(w, http.StatusBadRequest, err.Error())
		default:
			applog.Error(ctx, "failed to create production batch", "error", err, "recipeID", payload.RecipeID)
			writeJSONError(w, http.StatusInternalServerError, "unable to create production batch")
		}
		return
	}

	writeJSON(w, http.StatusCreated, projectProductionBatch(*batch))
}

func deleteProductionBatch(w http.ResponseWriter, r *http.Request, batchID uint) {
	ctx := r.Context()
	err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("batch_id = ?", batchID).Delete(&models.BatchIngredient{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.ProductionBatch{}, batchID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to delete production batch", "error", err, "id", batchID)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete production batch")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// snapshotProductionBatch scales the recipe's costed lines to the produced
// quantity and persists batch plus lines in one transaction. The snapshot is
// the only place scaled values are written; nothing recomputes them later.
func snapshotProductionBatch(ctx context.Context, payload productionBatchRequest) (*models.ProductionBatch, error) {
	if payload.RecipeID == 0 {
		return nil, errBatchRecipeNotFound
	}

	var recipe models.Recipe
	if err := database.WithContext(ctx).Preload("Ingredients").First(&recipe, payload.RecipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errBatchRecipeNotFound
		}
		return nil, err
	}

	if len(recipe.Ingredients) == 0 {
		return nil, errBatchEmptyRecipe
	}

	batchUnit, ok := costing.ParseUnit(recipe.BatchUnit)
	if !ok {
		return nil, costing.IncompatibleUnitsError{From: costing.Unit(recipe.BatchUnit), To: costing.Unit(recipe.BatchUnit)}
	}

	producedQuantity := payload.ProducedQuantity
	if producedText := strings.TrimSpace(payload.ProducedUnit); producedText != "" {
		producedUnit, ok := costing.ParseUnit(producedText)
		if !ok {
			return nil, costing.IncompatibleUnitsError{From: costing.Unit(producedText), To: batchUnit}
		}
		converted, err := costing.Convert(producedQuantity, producedUnit, batchUnit)
		if err != nil {
			return nil, err
		}
		producedQuantity = converted
	}
	if producedQuantity <= 0 {
		return nil, costing.InvalidQuantityError{Field: "produced quantity", Value: producedQuantity}
	}

	lines := make([]costing.Line, 0, len(recipe.Ingredients))
	for _, ingredient := range recipe.Ingredients {
		pack := costing.PackSpec{
			Size:  ingredient.PackSize,
			Unit:  costing.Unit(ingredient.PackUnit),
			Price: ingredient.PackPrice,
		}
		cost, err := costing.UsageCost(pack, ingredient.UsedQuantity, costing.Unit(ingredient.UsedUnit))
		if err != nil {
			return nil, err
		}
		lines = append(lines, costing.Line{
			Name:     ingredient.Name,
			Quantity: ingredient.UsedQuantity,
			Unit:     costing.Unit(ingredient.UsedUnit),
			Cost:     cost,
		})
	}

	scaled, err := costing.ScaleLines(lines, recipe.BatchSize, producedQuantity)
	if err != nil {
		return nil, err
	}

	runDate := nowFunc().UTC()
	if trimmed := strings.TrimSpace(payload.RunDate); trimmed != "" {
		parsed, err := time.Parse("2006-01-02", trimmed)
		if err != nil {
			return nil, fmt.Errorf("parse run_date: %w", err)
		}
		runDate = parsed.UTC()
	}

	totalCost := costing.TotalCost(scaled)
	batch := models.ProductionBatch{
		RecipeID:         recipe.ID,
		LotNumber:        newLotNumber(runDate),
		ProducedQuantity: producedQuantity,
		ProducedUnit:     string(batchUnit),
		RunDate:          runDate,
		TotalCost:        totalCost,
		CostPerUnit:      costing.CostPerUnit(totalCost, producedQuantity),
	}

	err = database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&batch).Error; err != nil {
			return err
		}
		for _, line := range scaled {
			snapshot := models.BatchIngredient{
				BatchID:  batch.ID,
				Name:     line.Name,
				Quantity: line.Quantity,
				Unit:     string(line.Unit),
				Cost:     line.Cost,
			}
			if err := tx.Create(&snapshot).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return loadProductionBatch(ctx, batch.ID)
}

func loadProductionBatch(ctx context.Context, batchID uint) (*models.ProductionBatch, error) {
	var batch models.ProductionBatch
	err := database.WithContext(ctx).
		Preload("Recipe").
		Preload("Ingredients").
		First(&batch, batchID).Error
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

func newLotNumber(runDate time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("LOT-%s-%s", runDate.Format("20060102"), suffix)
}

func projectProductionBatch(batch models.ProductionBatch) productionBatchResponse {
	response := productionBatchResponse{
		ID:               batch.ID,
		RecipeID:         batch.RecipeID,
		LotNumber:        batch.LotNumber,
		ProducedQuantity: batch.ProducedQuantity,
		ProducedUnit:     batch.ProducedUnit,
		RunDate:          batch.RunDate,
		TotalCost:        batch.TotalCost,
		CostPerUnit:      batch.CostPerUnit,
		Ingredients:      make([]batchIngredientResponse, 0, len(batch.Ingredients)),
		CreatedAt:        batch.CreatedAt,
	}
	if batch.Recipe != nil {
		response.RecipeName = batch.Recipe.Name
	}
	for _, line := range batch.Ingredients {
		response.Ingredients = append(response.Ingredients, batchIngredientResponse{
			Name:     line.Name,
			Quantity: line.Quantity,
			Unit:     line.Unit,
			Cost:     line.Cost,
		})
	}
	return response
}
