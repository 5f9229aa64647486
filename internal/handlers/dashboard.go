package handlers

import (
	"net/http"
	"time"

	applog "provender/internal/log"
	"provender/models"
)

type dashboardResponse struct {
	Ingredients      int64   `json:"ingredients"`
	Recipes          int64   `json:"recipes"`
	Products         int64   `json:"products"`
	ActivePromotions int64   `json:"active_promotions"`
	StaffMembers     int64   `json:"staff_members"`
	BatchesThisWeek  int64   `json:"batches_this_week"`
	SalesToday       int64   `json:"sales_today"`
	RevenueToday     float64 `json:"revenue_today"`
	Currency         string  `json:"currency"`
}

// Dashboard summarises the workspace with headline counts for the home view.
func Dashboard(w http.ResponseWriter, r *http.Request) {
	if database == nil {
		applog.Debug(r.Context(), "dashboard request without database")
		writeJSONError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}
	if _, ok := currentUserID(r); !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	now := nowFunc().UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	startOfWeek := startOfDay.AddDate(0, 0, -int(startOfDay.Weekday()))

	response := dashboardResponse{Currency: currencySymbol}

	counts := []struct {
		model any
		dest  *int64
	}{
		{&models.Ingredient{}, &response.Ingredients},
		{&models.Recipe{}, &response.Recipes},
		{&models.Product{}, &response.Products},
		{&models.StaffMember{}, &response.StaffMembers},
	}
	for _, count := range counts {
		if err := database.WithContext(ctx).Model(count.model).Count(count.dest).Error; err != nil {
			applog.Error(ctx, "failed to count dashboard models", "error", err)
			writeJSONError(w, http.StatusInternalServerError, "unable to load dashboard")
			return
		}
	}

	err := database.WithContext(ctx).
		Model(&models.Promotion{}).
		Where("active = ? AND start_date <= ? AND end_date >= ?", true, now, now).
		Count(&response.ActivePromotions).Error
	if err != nil {
		applog.Error(ctx, "failed to count promotions", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load dashboard")
		return
	}

	err = database.WithContext(ctx).
		Model(&models.ProductionBatch{}).
		Where("run_date >= ?", startOfWeek).
		Count(&response.BatchesThisWeek).Error
	if err != nil {
		applog.Error(ctx, "failed to count production batches", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load dashboard")
		return
	}

	err = database.WithContext(ctx).
		Model(&models.Sale{}).
		Where("sold_at >= ?", startOfDay).
		Count(&response.SalesToday).Error
	if err != nil {
		applog.Error(ctx, "failed to count sales", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load dashboard")
		return
	}

	var revenue struct {
		Total float64
	}
	err = database.WithContext(ctx).
		Model(&models.Sale{}).
		Select("COALESCE(SUM(total), 0) as total").
		Where("sold_at >= ?", startOfDay).
		Scan(&revenue).Error
	if err != nil {
		applog.Error(ctx, "failed to sum revenue", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load dashboard")
		return
	}
	response.RevenueToday = revenue.Total

	writeJSON(w, http.StatusOK, response)
}
