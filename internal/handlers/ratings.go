package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	applog "provender/internal/log"
	"provender/models"
)

type ratingRequest struct {
	ProductID uint   `json:"product_id"`
	Score     int    `json:"score"`
	Comment   string `json:"comment"`
}

type ratingResponse struct {
	ID          uint      `json:"id"`
	ProductID   uint      `json:"product_id"`
	ProductName string    `json:"product_name,omitempty"`
	Score       int       `json:"score"`
	Comment     string    `json:"comment,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// RatingResource handles customer feedback under /app/api/ratings.
func RatingResource(w http.ResponseWriter, r *http.Request) {
	if database == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}
	if _, ok := currentUserID(r); !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/app/api/ratings")
	path = strings.Trim(path, "/")
	ctx := r.Context()

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			listRatings(w, r)
		case http.MethodPost:
			createRating(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	idValue, err := strconv.ParseUint(path, 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodDelete:
		result := database.WithContext(ctx).Delete(&models.ProductRating{}, uint(idValue))
		if result.Error != nil {
			applog.Error(ctx, "failed to delete rating", "error", result.Error, "id", idValue)
			writeJSONError(w, http.StatusInternalServerError, "unable to delete rating")
			return
		}
		if result.RowsAffected == 0 {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listRatings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := database.WithContext(ctx).Preload("Product").Order("created_at desc, id desc")

	if productParam := strings.TrimSpace(r.URL.Query().Get("product_id")); productParam != "" {
		if idValue, err := strconv.ParseUint(productParam, 10, 64); err == nil {
			query = query.Where("product_id = ?", uint(idValue))
		}
	}

	var results []models.ProductRating
	if err := query.Find(&results).Error; err != nil {
		applog.Error(ctx, "failed to list ratings", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load ratings")
		return
	}

	responses := make([]ratingResponse, 0, len(results))
	for _, rating := range results {
		responses = append(responses, projectRating(rating))
	}
	writeJSON(w, http.StatusOK, responses)
}

func createRating(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload ratingRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if payload.ProductID == 0 {
		writeJSONError(w, http.StatusBadRequest, "product_id is required")
		return
	}
	if payload.Score < 1 || payload.Score > 5 {
		writeJSONError(w, http.StatusBadRequest, "score must be between 1 and 5")
		return
	}

	var product models.Product
	if err := database.WithContext(ctx).First(&product, payload.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSONError(w, http.StatusBadRequest, "product does not exist")
			return
		}
		applog.Error(ctx, "failed to verify product", "error", err, "productID", payload.ProductID)
		writeJSONError(w, http.StatusInternalServerError, "unable to create rating")
		return
	}

	rating := models.ProductRating{
		ProductID: payload.ProductID,
		Score:     payload.Score,
		Comment:   strings.TrimSpace(payload.Comment),
	}
	if err := database.WithContext(ctx).Create(&rating).Error; err != nil {
		applog.Error(ctx, "failed to create rating", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to create rating")
		return
	}
	rating.Product = &product
	writeJSON(w, http.StatusCreated, projectRating(rating))
}

func projectRating(rating models.ProductRating) ratingResponse {
	response := ratingResponse{
		ID:        rating.ID,
		ProductID: rating.ProductID,
		Score:     rating.Score,
		Comment:   rating.Comment,
		CreatedAt: rating.CreatedAt,
	}
	if rating.Product != nil {
		response.ProductName = rating.Product.Name
	}
	return response
}
