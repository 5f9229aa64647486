package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"provender/internal/costing"
	applog "provender/internal/log"
	"provender/models"
)

type ingredientRequest struct {
	Name             string  `json:"name"`
	Supplier         string  `json:"supplier"`
	PackSize         float64 `json:"pack_size"`
	PackUnit         string  `json:"pack_unit"`
	PackPrice        float64 `json:"pack_price"`
	PriceIncludesTax bool    `json:"price_includes_tax"`
	Notes            string  `json:"notes"`
}

type ingredientResponse struct {
	ID               uint      `json:"id"`
	Name             string    `json:"name"`
	Supplier         string    `json:"supplier"`
	PackSize         float64   `json:"pack_size"`
	PackUnit         string    `json:"pack_unit"`
	PackPrice        float64   `json:"pack_price"`
	PriceIncludesTax bool      `json:"price_includes_tax"`
	Notes            string    `json:"notes"`
	CostPerPackUnit  float64   `json:"cost_per_pack_unit"`
	ExclusivePrice   float64   `json:"exclusive_price"`
	TaxAmount        float64   `json:"tax_amount"`
	TotalPrice       float64   `json:"total_price"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// IngredientResource handles REST-style interactions for catalog ingredients.
func IngredientResource(w http.ResponseWriter, r *http.Request) {
	if database == nil {
		applog.Debug(r.Context(), "ingredient request without database")
		writeJSONError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}

	if _, ok := currentUserID(r); !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/app/api/ingredients")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			listIngredients(w, r)
		case http.MethodPost:
			createIngredient(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	idValue, err := strconv.ParseUint(path, 10, 64)
	if err != nil {
		applog.Debug(r.Context(), "invalid ingredient identifier", "identifier", path, "error", err)
		http.NotFound(w, r)
		return
	}
	ingredientID := uint(idValue)

	switch r.Method {
	case http.MethodGet:
		showIngredient(w, r, ingredientID)
	case http.MethodPut:
		updateIngredient(w, r, ingredientID)
	case http.MethodDelete:
		deleteIngredient(w, r, ingredientID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listIngredients(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var results []models.Ingredient
	query := database.WithContext(ctx).Order("name asc")
	if search := strings.TrimSpace(r.URL.Query().Get("q")); search != "" {
		query = query.Where("lower(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	if err := query.Find(&results).Error; err != nil {
		applog.Error(ctx, "failed to list ingredients", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load ingredients")
		return
	}

	responses := make([]ingredientResponse, 0, len(results))
	for _, ingredient := range results {
		responses = append(responses, projectIngredient(r, ingredient))
	}
	writeJSON(w, http.StatusOK, responses)
}

func showIngredient(w http.ResponseWriter, r *http.Request, ingredientID uint) {
	ctx := r.Context()
	var ingredient models.Ingredient
	if err := database.WithContext(ctx).First(&ingredient, ingredientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load ingredient", "error", err, "id", ingredientID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load ingredient")
		return
	}

	writeJSON(w, http.StatusOK, projectIngredient(r, ingredient))
}

func createIngredient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload ingredientRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid ingredient create payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	unit, err := validateIngredientPayload(payload)
	if err != nil {
		applog.Debug(ctx, "ingredient validation failed", "error", err)
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	ingredient := models.Ingredient{
		Name:             strings.TrimSpace(payload.Name),
		Supplier:         strings.TrimSpace(payload.Supplier),
		PackSize:         payload.PackSize,
		PackUnit:         string(unit),
		PackPrice:        payload.PackPrice,
		PriceIncludesTax: payload.PriceIncludesTax,
		Notes:            strings.TrimSpace(payload.Notes),
	}

	if err := database.WithContext(ctx).Create(&ingredient).Error; err != nil {
		applog.Error(ctx, "failed to create ingredient", "error", err)
		writeJSONError(w, http.StatusBadRequest, "unable to create ingredient")
		return
	}

	writeJSON(w, http.StatusCreated, projectIngredient(r, ingredient))
}

func updateIngredient(w http.ResponseWriter, r *http.Request, ingredientID uint) {
	ctx := r.Context()
	var existing models.Ingredient
	if err := database.WithContext(ctx).First(&existing, ingredientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load ingredient for update", "error", err, "id", ingredientID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load ingredient")
		return
	}

	var payload ingredientRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid ingredient update payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	unit, err := validateIngredientPayload(payload)
	if err != nil {
		applog.Debug(ctx, "ingredient update validation failed", "error", err)
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	updates := map[string]any{
		"name":               strings.TrimSpace(payload.Name),
		"supplier":           strings.TrimSpace(payload.Supplier),
		"pack_size":          payload.PackSize,
		"pack_unit":          string(unit),
		"pack_price":         payload.PackPrice,
		"price_includes_tax": payload.PriceIncludesTax,
		"notes":              strings.TrimSpace(payload.Notes),
	}

	if err := database.WithContext(ctx).Model(&existing).Updates(updates).Error; err != nil {
		applog.Error(ctx, "failed to update ingredient", "error", err, "id", ingredientID)
		writeJSONError(w, http.StatusBadRequest, "unable to update ingredient")
		return
	}

	if err := database.WithContext(ctx).First(&existing, ingredientID).Error; err != nil {
		applog.Error(ctx, "failed to reload updated ingredient", "error", err, "id", ingredientID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load ingredient")
		return
	}

	writeJSON(w, http.StatusOK, projectIngredient(r, existing))
}

func deleteIngredient(w http.ResponseWriter, r *http.Request, ingredientID uint) {
	ctx := r.Context()
	result := database.WithContext(ctx).Delete(&models.Ingredient{}, ingredientID)
	if result.Error != nil {
		applog.Error(ctx, "failed to delete ingredient", "error", result.Error, "id", ingredientID)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete ingredient")
		return
	}
	if result.RowsAffected == 0 {
		http.NotFound(w, r)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// projectIngredient derives the tax breakdown and per-unit cost from the
// stored raw fields; nothing derived is ever persisted.
func projectIngredient(r *http.Request, ingredient models.Ingredient) ingredientResponse {
	response := ingredientResponse{
		ID:               ingredient.ID,
		Name:             ingredient.Name,
		Supplier:         ingredient.Supplier,
		PackSize:         ingredient.PackSize,
		PackUnit:         ingredient.PackUnit,
		PackPrice:        ingredient.PackPrice,
		PriceIncludesTax: ingredient.PriceIncludesTax,
		Notes:            ingredient.Notes,
		CreatedAt:        ingredient.CreatedAt,
		UpdatedAt:        ingredient.UpdatedAt,
	}

	if perUnit, err := costing.CostPerPackUnit(ingredient.PackSize, ingredient.PackPrice); err == nil {
		response.CostPerPackUnit = perUnit
	} else {
		applog.Warn(r.Context(), "stored ingredient fails cost derivation", "error", err, "id", ingredient.ID)
	}

	if breakdown, err := costing.Tax(ingredient.PackPrice, taxRates.IngredientRate, ingredient.PriceIncludesTax); err == nil {
		response.ExclusivePrice = breakdown.ExclusivePrice
		response.TaxAmount = breakdown.TaxAmount
		response.TotalPrice = breakdown.TotalPrice
	} else {
		applog.Warn(r.Context(), "stored ingredient fails tax derivation", "error", err, "id", ingredient.ID)
	}

	return response
}

func validateIngredientPayload(payload ingredientRequest) (costing.Unit, error) {
	if strings.TrimSpace(payload.Name) == "" {
		return "", errors.New("name is required")
	}
	if payload.PackSize <= 0 {
		return "", errors.New("pack_size must be greater than zero")
	}
	if payload.PackPrice < 0 {
		return "", errors.New("pack_price must not be negative")
	}
	unit, ok := costing.ParseUnit(payload.PackUnit)
	if !ok {
		return "", errors.New("pack_unit must be one of kg, g, l, ml, or unit")
	}
	return unit, nil
}
