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

type productRequest struct {
	Name     string  `json:"name"`
	Barcode  string  `json:"barcode"`
	SKU      string  `json:"sku"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Active   *bool   `json:"active"`
	RecipeID *uint   `json:"recipe_id"`
}

type productResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Barcode   string    `json:"barcode,omitempty"`
	SKU       string    `json:"sku,omitempty"`
	Category  string    `json:"category,omitempty"`
	Price     float64   `json:"price"`
	Active    bool      `json:"active"`
	RecipeID  *uint     `json:"recipe_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProductResource manages the sellable catalog under /app/api/products.
// /app/api/products/lookup resolves a till scan or typed code to a product.
func ProductResource(w http.ResponseWriter, r *http.Request) {
	if database == nil {
		applog.Debug(r.Context(), "product request without database")
		writeJSONError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}

	if _, ok := currentUserID(r); !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/app/api/products")
	path = strings.Trim(path, "/")

	switch {
	case path == "":
		switch r.Method {
		case http.MethodGet:
			listProducts(w, r)
		case http.MethodPost:
			createProduct(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case path == "lookup":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		lookupProduct(w, r)
	default:
		idValue, err := strconv.ParseUint(path, 10, 64)
		if err != nil {
			applog.Debug(r.Context(), "invalid product identifier", "identifier", path, "error", err)
			http.NotFound(w, r)
			return
		}
		switch r.Method {
		case http.MethodGet:
			showProduct(w, r, uint(idValue))
		case http.MethodPut:
			updateProduct(w, r, uint(idValue))
		case http.MethodDelete:
			deleteProduct(w, r, uint(idValue))
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}
}

func listProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := database.WithContext(ctx).Order("name asc")

	if search := strings.TrimSpace(r.URL.Query().Get("q")); search != "" {
		query = query.Where("lower(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	if category := strings.TrimSpace(r.URL.Query().Get("category")); category != "" {
		query = query.Where("category = ?", category)
	}
	if activeParam := strings.TrimSpace(r.URL.Query().Get("active")); activeParam != "" {
		if active, err := strconv.ParseBool(activeParam); err == nil {
			query = query.Where("active = ?", active)
		}
	}

	var results []models.Product
	if err := query.Find(&results).Error; err != nil {
		applog.Error(ctx, "failed to list products", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load products")
		return
	}

	responses := make([]productResponse, 0, len(results))
	for _, product := range results {
		responses = append(responses, projectProduct(product))
	}
	writeJSON(w, http.StatusOK, responses)
}

func showProduct(w http.ResponseWriter, r *http.Request, productID uint) {
	ctx := r.Context()
	var product models.Product
	if err := database.WithContext(ctx).First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load product", "error", err, "id", productID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load product")
		return
	}
	writeJSON(w, http.StatusOK, projectProduct(product))
}

// lookupProduct resolves ?code= the way the till expects: exact barcode
// first, then exact SKU ignoring case, then a name prefix match ignoring case.
func lookupProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	code := strings.TrimSpace(r.URL.Query().Get("code"))
	if code == "" {
		writeJSONError(w, http.StatusBadRequest, "code parameter is required")
		return
	}

	var product models.Product
	err := database.WithContext(ctx).
		Where("barcode = ? AND active = ?", code, true).
		First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = database.WithContext(ctx).
			Where("LOWER(sku) = ? AND active = ?", strings.ToLower(code), true).
			First(&product).Error
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = database.WithContext(ctx).
			Where("lower(name) LIKE ? AND active = ?", strings.ToLower(code)+"%", true).
			Order("name asc").
			First(&product).Error
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to look up product", "error", err, "code", code)
		writeJSONError(w, http.StatusInternalServerError, "unable to look up product")
		return
	}

	writeJSON(w, http.StatusOK, projectProduct(product))
}

func createProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload productRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid product payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if err := validateProductPayload(payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	product := models.Product{
		Name:     strings.TrimSpace(payload.Name),
		Barcode:  strings.TrimSpace(payload.Barcode),
		SKU:      strings.TrimSpace(payload.SKU),
		Category: strings.TrimSpace(payload.Category),
		Price:    payload.Price,
		Active:   true,
		RecipeID: payload.RecipeID,
	}
	if payload.Active != nil {
		product.Active = *payload.Active
	}

	if err := database.WithContext(ctx).Create(&product).Error; err != nil {
		applog.Error(ctx, "failed to create product", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to create product")
		return
	}

	writeJSON(w, http.StatusCreated, projectProduct(product))
}

func updateProduct(w http.ResponseWriter, r *http.Request, productID uint) {
	ctx := r.Context()
	var product models.Product
	if err := database.WithContext(ctx).First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load product", "error", err, "id", productID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load product")
		return
	}

	var payload productRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid product payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if err := validateProductPayload(payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	product.Name = strings.TrimSpace(payload.Name)
	product.Barcode = strings.TrimSpace(payload.Barcode)
	product.SKU = strings.TrimSpace(payload.SKU)
	product.Category = strings.TrimSpace(payload.Category)
	product.Price = payload.Price
	product.RecipeID = payload.RecipeID
	if payload.Active != nil {
		product.Active = *payload.Active
	}

	if err := database.WithContext(ctx).Save(&product).Error; err != nil {
		applog.Error(ctx, "failed to update product", "error", err, "id", productID)
		writeJSONError(w, http.StatusInternalServerError, "unable to update product")
		return
	}

	writeJSON(w, http.StatusOK, projectProduct(product))
}

func deleteProduct(w http.ResponseWriter, r *http.Request, productID uint) {
	ctx := r.Context()
	result := database.WithContext(ctx).Delete(&models.Product{}, productID)
	if result.Error != nil {
		applog.Error(ctx, "failed to delete product", "error", result.Error, "id", productID)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete product")
		return
	}
	if result.RowsAffected == 0 {
		http.NotFound(w, r)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func validateProductPayload(payload productRequest) error {
	if strings.TrimSpace(payload.Name) == "" {
		return errors.New("name is required")
	}
	if payload.Price < 0 {
		return errors.New("price must not be negative")
	}
	return nil
}

func projectProduct(product models.Product) productResponse {
	return productResponse{
		ID:        product.ID,
		Name:      product.Name,
		Barcode:   product.Barcode,
		SKU:       product.SKU,
		Category:  product.Category,
		Price:     product.Price,
		Active:    product.Active,
		RecipeID:  product.RecipeID,
		CreatedAt: product.CreatedAt,
		UpdatedAt: product.UpdatedAt,
	}
}
