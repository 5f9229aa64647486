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

type recipeIngredientRequest struct {
	RecipeID     uint    `json:"recipe_id"`
	Name         string  `json:"name"`
	IngredientID *uint   `json:"ingredient_id"`
	PackSize     float64 `json:"pack_size"`
	PackUnit     string  `json:"pack_unit"`
	PackPrice    float64 `json:"pack_price"`
	UsedQuantity float64 `json:"used_quantity"`
	UsedUnit     string  `json:"used_unit"`
}

type recipeIngredientResponse struct {
	ID              uint      `json:"id"`
	RecipeID        uint      `json:"recipe_id"`
	Name            string    `json:"name"`
	IngredientID    *uint     `json:"ingredient_id,omitempty"`
	PackSize        float64   `json:"pack_size"`
	PackUnit        string    `json:"pack_unit"`
	PackPrice       float64   `json:"pack_price"`
	UsedQuantity    float64   `json:"used_quantity"`
	UsedUnit        string    `json:"used_unit"`
	CostPerUsedUnit float64   `json:"cost_per_used_unit"`
	CalculatedCost  float64   `json:"calculated_cost"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// RecipeIngredientResource handles CRUD interactions for recipe lines.
func RecipeIngredientResource(w http.ResponseWriter, r *http.Request) {
	if database == nil {
		applog.Debug(r.Context(), "recipe ingredient request without database")
		writeJSONError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}

	if _, ok := currentUserID(r); !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/app/api/recipe-ingredients")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			listRecipeIngredients(w, r)
		case http.MethodPost:
			createRecipeIngredient(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	idValue, err := strconv.ParseUint(path, 10, 64)
	if err != nil {
		applog.Debug(r.Context(), "invalid recipe ingredient identifier", "identifier", path, "error", err)
		http.NotFound(w, r)
		return
	}
	lineID := uint(idValue)

	switch r.Method {
	case http.MethodGet:
		showRecipeIngredient(w, r, lineID)
	case http.MethodPut:
		updateRecipeIngredient(w, r, lineID)
	case http.MethodDelete:
		deleteRecipeIngredient(w, r, lineID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listRecipeIngredients(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var results []models.RecipeIngredient

	query := database.WithContext(ctx).Order("recipe_id asc, id asc")
	if recipeParam := strings.TrimSpace(r.URL.Query().Get("recipe_id")); recipeParam != "" {
		if idValue, err := strconv.ParseUint(recipeParam, 10, 64); err == nil {
			query = query.Where("recipe_id = ?", uint(idValue))
		}
	}

	if err := query.Find(&results).Error; err != nil {
		applog.Error(ctx, "failed to list recipe ingredients", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load recipe ingredients")
		return
	}

	responses := make([]recipeIngredientResponse, 0, len(results))
	for _, line := range results {
		responses = append(responses, projectRecipeIngredient(r, line))
	}
	writeJSON(w, http.StatusOK, responses)
}

func showRecipeIngredient(w http.ResponseWriter, r *http.Request, lineID uint) {
	ctx := r.Context()
	var line models.RecipeIngredient
	if err := database.WithContext(ctx).First(&line, lineID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load recipe ingredient", "error", err, "id", lineID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load recipe ingredient")
		return
	}

	writeJSON(w, http.StatusOK, projectRecipeIngredient(r, line))
}

func createRecipeIngredient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload recipeIngredientRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid recipe ingredient create payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	line, err := buildRecipeIngredient(r, payload)
	if err != nil {
		applog.Debug(ctx, "recipe ingredient validation failed", "error", err)
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := database.WithContext(ctx).Create(&line).Error; err != nil {
		applog.Error(ctx, "failed to create recipe ingredient", "error", err)
		writeJSONError(w, http.StatusBadRequest, "unable to create recipe ingredient")
		return
	}

	writeJSON(w, http.StatusCreated, projectRecipeIngredient(r, line))
}

func updateRecipeIngredient(w http.ResponseWriter, r *http.Request, lineID uint) {
	ctx := r.Context()
	var existing models.RecipeIngredient
	if err := database.WithContext(ctx).First(&existing, lineID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load recipe ingredient for update", "error", err, "id", lineID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load recipe ingredient")
		return
	}

	var payload recipeIngredientRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid recipe ingredient update payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	line, err := buildRecipeIngredient(r, payload)
	if err != nil {
		applog.Debug(ctx, "recipe ingredient update validation failed", "error", err)
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	updates := map[string]any{
		"recipe_id":     line.RecipeID,
		"name":          line.Name,
		"ingredient_id": line.IngredientID,
		"pack_size":     line.PackSize,
		"pack_unit":     line.PackUnit,
		"pack_price":    line.PackPrice,
		"used_quantity": line.UsedQuantity,
		"used_unit":     line.UsedUnit,
	}

	if err := database.WithContext(ctx).Model(&existing).Updates(updates).Error; err != nil {
		applog.Error(ctx, "failed to update recipe ingredient", "error", err, "id", lineID)
		writeJSONError(w, http.StatusBadRequest, "unable to update recipe ingredient")
		return
	}

	if err := database.WithContext(ctx).First(&existing, lineID).Error; err != nil {
		applog.Error(ctx, "failed to reload updated recipe ingredient", "error", err, "id", lineID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load recipe ingredient")
		return
	}

	writeJSON(w, http.StatusOK, projectRecipeIngredient(r, existing))
}

func deleteRecipeIngredient(w http.ResponseWriter, r *http.Request, lineID uint) {
	ctx := r.Context()
	result := database.WithContext(ctx).Delete(&models.RecipeIngredient{}, lineID)
	if result.Error != nil {
		applog.Error(ctx, "failed to delete recipe ingredient", "error", result.Error, "id", lineID)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete recipe ingredient")
		return
	}
	if result.RowsAffected == 0 {
		http.NotFound(w, r)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// buildRecipeIngredient validates the payload and resolves the pack
// specification. When the line references a catalog ingredient and omits the
// pack fields, the pack is copied from the catalog record at entry time.
func buildRecipeIngredient(r *http.Request, payload recipeIngredientRequest) (models.RecipeIngredient, error) {
	ctx := r.Context()

	if payload.RecipeID == 0 {
		return models.RecipeIngredient{}, errors.New("recipe_id is required")
	}

	var recipeCount int64
	if err := database.WithContext(ctx).Model(&models.Recipe{}).Where("id = ?", payload.RecipeID).Count(&recipeCount).Error; err != nil {
		return models.RecipeIngredient{}, err
	}
	if recipeCount == 0 {
		return models.RecipeIngredient{}, errors.New("recipe does not exist")
	}

	line := models.RecipeIngredient{
		RecipeID:     payload.RecipeID,
		Name:         strings.TrimSpace(payload.Name),
		IngredientID: payload.IngredientID,
		PackSize:     payload.PackSize,
		PackPrice:    payload.PackPrice,
		UsedQuantity: payload.UsedQuantity,
	}

	packUnitText := payload.PackUnit
	if payload.IngredientID != nil && *payload.IngredientID != 0 {
		var catalog models.Ingredient
		if err := database.WithContext(ctx).First(&catalog, *payload.IngredientID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.RecipeIngredient{}, errors.New("ingredient does not exist")
			}
			return models.RecipeIngredient{}, err
		}
		if line.Name == "" {
			line.Name = catalog.Name
		}
		if line.PackSize == 0 && packUnitText == "" {
			line.PackSize = catalog.PackSize
			line.PackPrice = catalog.PackPrice
			packUnitText = catalog.PackUnit
		}
	}

	if line.Name == "" {
		return models.RecipeIngredient{}, errors.New("name is required")
	}
	if line.PackSize <= 0 {
		return models.RecipeIngredient{}, errors.New("pack_size must be greater than zero")
	}
	if line.PackPrice < 0 {
		return models.RecipeIngredient{}, errors.New("pack_price must not be negative")
	}
	if line.UsedQuantity < 0 {
		return models.RecipeIngredient{}, errors.New("used_quantity must not be negative")
	}

	packUnit, ok := costing.ParseUnit(packUnitText)
	if !ok {
		return models.RecipeIngredient{}, errors.New("pack_unit must be one of kg, g, l, ml, or unit")
	}
	usedUnit, ok := costing.ParseUnit(payload.UsedUnit)
	if !ok {
		return models.RecipeIngredient{}, errors.New("used_unit must be one of kg, g, l, ml, or unit")
	}
	if !costing.SameFamily(packUnit, usedUnit) {
		return models.RecipeIngredient{}, costing.IncompatibleUnitsError{From: usedUnit, To: packUnit}
	}

	line.PackUnit = string(packUnit)
	line.UsedUnit = string(usedUnit)
	return line, nil
}

// projectRecipeIngredient derives the per-used-unit and calculated costs.
// Validation keeps stored rows computable, so derivation failures are logged
// and the derived fields left at zero rather than failing the read.
func projectRecipeIngredient(r *http.Request, line models.RecipeIngredient) recipeIngredientResponse {
	response := recipeIngredientResponse{
		ID:           line.ID,
		RecipeID:     line.RecipeID,
		Name:         line.Name,
		IngredientID: line.IngredientID,
		PackSize:     line.PackSize,
		PackUnit:     line.PackUnit,
		PackPrice:    line.PackPrice,
		UsedQuantity: line.UsedQuantity,
		UsedUnit:     line.UsedUnit,
		CreatedAt:    line.CreatedAt,
		UpdatedAt:    line.UpdatedAt,
	}

	pack := costing.PackSpec{
		Size:  line.PackSize,
		Unit:  costing.Unit(line.PackUnit),
		Price: line.PackPrice,
	}
	usedUnit := costing.Unit(line.UsedUnit)

	if perUnit, err := costing.UsageCost(pack, 1, usedUnit); err == nil {
		response.CostPerUsedUnit = perUnit
	} else {
		applog.Warn(r.Context(), "stored recipe line fails unit cost derivation", "error", err, "id", line.ID)
	}

	if cost, err := costing.UsageCost(pack, line.UsedQuantity, usedUnit); err == nil {
		response.CalculatedCost = cost
	} else {
		applog.Warn(r.Context(), "stored recipe line fails cost derivation", "error", err, "id", line.ID)
	}

	return response
}
