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

type recipeRequest struct {
	Name      string  `json:"name"`
	Notes     string  `json:"notes"`
	BatchSize float64 `json:"batch_size"`
	BatchUnit string  `json:"batch_unit"`
}

type recipeResponse struct {
	ID               uint                       `json:"id"`
	Name             string                     `json:"name"`
	Notes            string                     `json:"notes"`
	BatchSize        float64                    `json:"batch_size"`
	BatchUnit        string                     `json:"batch_unit"`
	Ingredients      []recipeIngredientResponse `json:"ingredients"`
	TotalCost        float64                    `json:"total_cost"`
	CostPerBatchUnit float64                    `json:"cost_per_batch_unit"`
	CreatedAt        time.Time                  `json:"created_at"`
	UpdatedAt        time.Time                  `json:"updated_at"`
}

// RecipeResource handles REST-style interactions for recipes.
func RecipeResource(w http.ResponseWriter, r *http.Request) {
	if database == nil {
		applog.Debug(r.Context(), "recipe request without database")
		writeJSONError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}

	if _, ok := currentUserID(r); !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/app/api/recipes")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			listRecipes(w, r)
		case http.MethodPost:
			createRecipe(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	idValue, err := strconv.ParseUint(path, 10, 64)
	if err != nil {
		applog.Debug(r.Context(), "invalid recipe identifier", "identifier", path, "error", err)
		http.NotFound(w, r)
		return
	}
	recipeID := uint(idValue)

	switch r.Method {
	case http.MethodGet:
		showRecipe(w, r, recipeID)
	case http.MethodPut:
		updateRecipe(w, r, recipeID)
	case http.MethodDelete:
		deleteRecipe(w, r, recipeID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listRecipes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var results []models.Recipe
	if err := database.WithContext(ctx).Preload("Ingredients").Order("name asc").Find(&results).Error; err != nil {
		applog.Error(ctx, "failed to list recipes", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load recipes")
		return
	}

	responses := make([]recipeResponse, 0, len(results))
	for _, recipe := range results {
		responses = append(responses, projectRecipe(r, recipe))
	}
	writeJSON(w, http.StatusOK, responses)
}

func showRecipe(w http.ResponseWriter, r *http.Request, recipeID uint) {
	ctx := r.Context()
	var recipe models.Recipe
	if err := database.WithContext(ctx).Preload("Ingredients").First(&recipe, recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load recipe", "error", err, "id", recipeID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load recipe")
		return
	}

	writeJSON(w, http.StatusOK, projectRecipe(r, recipe))
}

func createRecipe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload recipeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid recipe create payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	unit, err := validateRecipePayload(payload)
	if err != nil {
		applog.Debug(ctx, "recipe validation failed", "error", err)
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	recipe := models.Recipe{
		Name:      strings.TrimSpace(payload.Name),
		Notes:     strings.TrimSpace(payload.Notes),
		BatchSize: payload.BatchSize,
		BatchUnit: string(unit),
	}

	if err := database.WithContext(ctx).Create(&recipe).Error; err != nil {
		applog.Error(ctx, "failed to create recipe", "error", err)
		writeJSONError(w, http.StatusBadRequest, "unable to create recipe")
		return
	}

	writeJSON(w, http.StatusCreated, projectRecipe(r, recipe))
}

func updateRecipe(w http.ResponseWriter, r *http.Request, recipeID uint) {
	ctx := r.Context()
	var existing models.Recipe
	if err := database.WithContext(ctx).First(&existing, recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load recipe for update", "error", err, "id", recipeID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load recipe")
		return
	}

	var payload recipeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid recipe update payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	unit, err := validateRecipePayload(payload)
	if err != nil {
		applog.Debug(ctx, "recipe update validation failed", "error", err)
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	updates := map[string]any{
		"name":       strings.TrimSpace(payload.Name),
		"notes":      strings.TrimSpace(payload.Notes),
		"batch_size": payload.BatchSize,
		"batch_unit": string(unit),
	}

	if err := database.WithContext(ctx).Model(&existing).Updates(updates).Error; err != nil {
		applog.Error(ctx, "failed to update recipe", "error", err, "id", recipeID)
		writeJSONError(w, http.StatusBadRequest, "unable to update recipe")
		return
	}

	if err := database.WithContext(ctx).Preload("Ingredients").First(&existing, recipeID).Error; err != nil {
		applog.Error(ctx, "failed to reload updated recipe", "error", err, "id", recipeID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load recipe")
		return
	}

	writeJSON(w, http.StatusOK, projectRecipe(r, existing))
}

func deleteRecipe(w http.ResponseWriter, r *http.Request, recipeID uint) {
	ctx := r.Context()
	err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Recipe{}, recipeID)
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
		applog.Error(ctx, "failed to delete recipe", "error", err, "id", recipeID)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete recipe")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// projectRecipe recomputes every derived cost from the stored raw fields.
// Total recipe cost is the sum of the line costs; cost per batch unit divides
// that by the batch size, which validation keeps positive.
func projectRecipe(r *http.Request, recipe models.Recipe) recipeResponse {
	response := recipeResponse{
		ID:          recipe.ID,
		Name:        recipe.Name,
		Notes:       recipe.Notes,
		BatchSize:   recipe.BatchSize,
		BatchUnit:   recipe.BatchUnit,
		Ingredients: make([]recipeIngredientResponse, 0, len(recipe.Ingredients)),
		CreatedAt:   recipe.CreatedAt,
		UpdatedAt:   recipe.UpdatedAt,
	}

	total := 0.0
	for _, line := range recipe.Ingredients {
		projected := projectRecipeIngredient(r, line)
		total += projected.CalculatedCost
		response.Ingredients = append(response.Ingredients, projected)
	}

	response.TotalCost = total
	response.CostPerBatchUnit = costing.CostPerUnit(total, recipe.BatchSize)
	return response
}

func validateRecipePayload(payload recipeRequest) (costing.Unit, error) {
	if strings.TrimSpace(payload.Name) == "" {
		return "", errors.New("name is required")
	}
	if payload.BatchSize <= 0 {
		return "", errors.New("batch_size must be greater than zero")
	}
	unit, ok := costing.ParseUnit(payload.BatchUnit)
	if !ok {
		return "", errors.New("batch_unit must be one of kg, g, l, ml, or unit")
	}
	return unit, nil
}
