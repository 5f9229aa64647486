package handlers

import (
	"context"
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

type promotionRequest struct {
	Name       string  `json:"name"`
	ProductID  uint    `json:"product_id"`
	PercentOff float64 `json:"percent_off"`
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
	Active     *bool   `json:"active"`
}

type promotionResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	ProductID   uint      `json:"product_id"`
	ProductName string    `json:"product_name,omitempty"`
	PercentOff  float64   `json:"percent_off"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Active      bool      `json:"active"`
	Live        bool      `json:"live"`
}

// PromotionResource handles /app/api/promotions.
func PromotionResource(w http.ResponseWriter, r *http.Request) {
	if database == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}
	if _, ok := currentUserID(r); !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/app/api/promotions")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			listPromotions(w, r)
		case http.MethodPost:
			createPromotion(w, r)
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
	case http.MethodGet:
		showPromotion(w, r, uint(idValue))
	case http.MethodPut:
		updatePromotion(w, r, uint(idValue))
	case http.MethodDelete:
		deletePromotion(w, r, uint(idValue))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listPromotions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := database.WithContext(ctx).Preload("Product").Order("start_date desc, id desc")

	if productParam := strings.TrimSpace(r.URL.Query().Get("product_id")); productParam != "" {
		if idValue, err := strconv.ParseUint(productParam, 10, 64); err == nil {
			query = query.Where("product_id = ?", uint(idValue))
		}
	}

	var results []models.Promotion
	if err := query.Find(&results).Error; err != nil {
		applog.Error(ctx, "failed to list promotions", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load promotions")
		return
	}

	now := nowFunc()
	onlyLive := false
	if liveParam := strings.TrimSpace(r.URL.Query().Get("live")); liveParam != "" {
		if live, err := strconv.ParseBool(liveParam); err == nil {
			onlyLive = live
		}
	}

	responses := make([]promotionResponse, 0, len(results))
	for _, promotion := range results {
		if onlyLive && !promotion.AppliesOn(now) {
			continue
		}
		responses = append(responses, projectPromotion(promotion, now))
	}
	writeJSON(w, http.StatusOK, responses)
}

func showPromotion(w http.ResponseWriter, r *http.Request, promotionID uint) {
	ctx := r.Context()
	var promotion models.Promotion
	if err := database.WithContext(ctx).Preload("Product").First(&promotion, promotionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load promotion", "error", err, "id", promotionID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load promotion")
		return
	}
	writeJSON(w, http.StatusOK, projectPromotion(promotion, nowFunc()))
}

func createPromotion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload promotionRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	promotion, err := buildPromotion(ctx, payload)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSONError(w, http.StatusBadRequest, "product does not exist")
			return
		}
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := database.WithContext(ctx).Create(promotion).Error; err != nil {
		applog.Error(ctx, "failed to create promotion", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to create promotion")
		return
	}
	writeJSON(w, http.StatusCreated, projectPromotion(*promotion, nowFunc()))
}

func updatePromotion(w http.ResponseWriter, r *http.Request, promotionID uint) {
	ctx := r.Context()
	var existing models.Promotion
	if err := database.WithContext(ctx).First(&existing, promotionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load promotion", "error", err, "id", promotionID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load promotion")
		return
	}

	var payload promotionRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	promotion, err := buildPromotion(ctx, payload)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSONError(w, http.StatusBadRequest, "product does not exist")
			return
		}
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	existing.Name = promotion.Name
	existing.ProductID = promotion.ProductID
	existing.PercentOff = promotion.PercentOff
	existing.StartDate = promotion.StartDate
	existing.EndDate = promotion.EndDate
	existing.Active = promotion.Active

	if err := database.WithContext(ctx).Save(&existing).Error; err != nil {
		applog.Error(ctx, "failed to update promotion", "error", err, "id", promotionID)
		writeJSONError(w, http.StatusInternalServerError, "unable to update promotion")
		return
	}
	writeJSON(w, http.StatusOK, projectPromotion(existing, nowFunc()))
}

func deletePromotion(w http.ResponseWriter, r *http.Request, promotionID uint) {
	ctx := r.Context()
	result := database.WithContext(ctx).Delete(&models.Promotion{}, promotionID)
	if result.Error != nil {
		applog.Error(ctx, "failed to delete promotion", "error", result.Error, "id", promotionID)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete promotion")
		return
	}
	if result.RowsAffected == 0 {
		http.NotFound(w, r)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func buildPromotion(ctx context.Context, payload promotionRequest) (*models.Promotion, error) {
	name := strings.TrimSpace(payload.Name)
	if name == "" {
		return nil, errors.New("name is required")
	}
	if payload.ProductID == 0 {
		return nil, errors.New("product_id is required")
	}
	if payload.PercentOff <= 0 || payload.PercentOff > 100 {
		return nil, errors.New("percent_off must be between 0 and 100")
	}

	start, err := time.Parse("2006-01-02", strings.TrimSpace(payload.StartDate))
	if err != nil {
		return nil, errors.New("start_date must use the 2006-01-02 format")
	}
	end, err := time.Parse("2006-01-02", strings.TrimSpace(payload.EndDate))
	if err != nil {
		return nil, errors.New("end_date must use the 2006-01-02 format")
	}
	// The end date is inclusive, so the window runs to the end of that day.
	end = end.AddDate(0, 0, 1).Add(-time.Second)
	if end.Before(start) {
		return nil, errors.New("end_date must not be before start_date")
	}

	var product models.Product
	if err := database.WithContext(ctx).First(&product, payload.ProductID).Error; err != nil {
		return nil, err
	}

	promotion := models.Promotion{
		Name:       name,
		ProductID:  payload.ProductID,
		PercentOff: payload.PercentOff,
		StartDate:  start.UTC(),
		EndDate:    end.UTC(),
		Active:     true,
	}
	promotion.Product = &product
	if payload.Active != nil {
		promotion.Active = *payload.Active
	}
	return &promotion, nil
}

func projectPromotion(promotion models.Promotion, now time.Time) promotionResponse {
	response := promotionResponse{
		ID:         promotion.ID,
		Name:       promotion.Name,
		ProductID:  promotion.ProductID,
		PercentOff: promotion.PercentOff,
		StartDate:  promotion.StartDate,
		EndDate:    promotion.EndDate,
		Active:     promotion.Active,
		Live:       promotion.AppliesOn(now),
	}
	if promotion.Product != nil {
		response.ProductName = promotion.Product.Name
	}
	return response
}
