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
	"provender/internal/pos"
	"provender/models"
)

type saleItemRequest struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

type saleRequest struct {
	Items []saleItemRequest `json:"items"`
}

type saleItemResponse struct {
	ProductID uint    `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
	Discount  float64 `json:"discount"`
	LineTotal float64 `json:"line_total"`
}

type saleResponse struct {
	ID            uint               `json:"id"`
	ReceiptNumber string             `json:"receipt_number"`
	CashierID     uint               `json:"cashier_id"`
	CashierName   string             `json:"cashier_name,omitempty"`
	SoldAt        time.Time          `json:"sold_at"`
	Subtotal      float64            `json:"subtotal"`
	Discount      float64            `json:"discount"`
	Tax           float64            `json:"tax"`
	Total         float64            `json:"total"`
	Items         []saleItemResponse `json:"items"`
}

// SaleResource handles /app/api/sales. A POST rings up a basket: products are
// priced through the ticket engine and the receipt is persisted in one
// transaction. Receipts are immutable, so there is no update route.
func SaleResource(w http.ResponseWriter, r *http.Request) {
	if database == nil {
		applog.Debug(r.Context(), "sale request without database")
		writeJSONError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}
	if _, ok := currentUserID(r); !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/app/api/sales")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			listSales(w, r)
		case http.MethodPost:
			createSale(w, r)
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
		showSale(w, r, uint(idValue))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listSales(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := database.WithContext(ctx).
		Preload("Cashier").
		Preload("Items").
		Order("sold_at desc, id desc")

	if dateParam := strings.TrimSpace(r.URL.Query().Get("date")); dateParam != "" {
		if day, err := time.Parse("2006-01-02", dateParam); err == nil {
			query = query.Where("sold_at >= ? AND sold_at < ?", day, day.AddDate(0, 0, 1))
		}
	}

	var results []models.Sale
	if err := query.Find(&results).Error; err != nil {
		applog.Error(ctx, "failed to list sales", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load sales")
		return
	}

	responses := make([]saleResponse, 0, len(results))
	for _, sale := range results {
		responses = append(responses, projectSale(sale))
	}
	writeJSON(w, http.StatusOK, responses)
}

func showSale(w http.ResponseWriter, r *http.Request, saleID uint) {
	ctx := r.Context()
	var sale models.Sale
	err := database.WithContext(ctx).
		Preload("Cashier").
		Preload("Items").
		First(&sale, saleID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load sale", "error", err, "id", saleID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load sale")
		return
	}
	writeJSON(w, http.StatusOK, projectSale(sale))
}

func createSale(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload saleRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid sale payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if len(payload.Items) == 0 {
		writeJSONError(w, http.StatusBadRequest, "at least one item is required")
		return
	}

	cashier, err := loadCurrentUser(r)
	if err != nil {
		applog.Error(ctx, "failed to resolve cashier", "error", err)
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	sale, err := ringUpSale(ctx, *cashier, payload)
	if err != nil {
		var invalidQuantity costing.InvalidQuantityError
		switch {
		case errors.As(err, &invalidQuantity):
			writeJSONError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, errSaleUnknownProduct):
			writeJSONError(w, http.StatusBadRequest, "basket references an unknown or inactive product")
		default:
			applog.Error(ctx, "failed to create sale", "error", err)
			writeJSONError(w, http.StatusInternalServerError, "unable to create sale")
		}
		return
	}

	writeJSON(w, http.StatusCreated, projectSale(*sale))
}

var errSaleUnknownProduct = errors.New("sales: unknown product")

// ringUpSale prices the basket against the live catalog and promotions and
// persists receipt plus lines in one transaction.
func ringUpSale(ctx context.Context, cashier models.User, payload saleRequest) (*models.Sale, error) {
	soldAt := nowFunc().UTC()

	inputs := make([]pos.LineInput, 0, len(payload.Items))
	productIDs := make([]uint, 0, len(payload.Items))
	for _, item := range payload.Items {
		var product models.Product
		err := database.WithContext(ctx).
			Where("active = ?", true).
			First(&product, item.ProductID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: id %d", errSaleUnknownProduct, item.ProductID)
			}
			return nil, err
		}
		inputs = append(inputs, pos.LineInput{Product: product, Quantity: item.Quantity})
		productIDs = append(productIDs, product.ID)
	}

	var promotions []models.Promotion
	err := database.WithContext(ctx).
		Where("product_id IN ? AND active = ?", productIDs, true).
		Find(&promotions).Error
	if err != nil {
		return nil, err
	}

	ticket, err := pos.Build(inputs, promotions, taxRates.POSRate, soldAt)
	if err != nil {
		return nil, err
	}

	sale := models.Sale{
		ReceiptNumber: newReceiptNumber(soldAt),
		CashierID:     cashier.ID,
		SoldAt:        soldAt,
		Subtotal:      ticket.Subtotal,
		Discount:      ticket.Discount,
		Tax:           ticket.Tax,
		Total:         ticket.Total,
	}

	err = database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&sale).Error; err != nil {
			return err
		}
		for _, line := range ticket.Lines {
			item := models.SaleItem{
				SaleID:    sale.ID,
				ProductID: line.ProductID,
				Name:      line.Name,
				UnitPrice: line.UnitPrice,
				Quantity:  line.Quantity,
				Discount:  line.Discount,
				LineTotal: line.LineTotal,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var persisted models.Sale
	err = database.WithContext(ctx).
		Preload("Cashier").
		Preload("Items").
		First(&persisted, sale.ID).Error
	if err != nil {
		return nil, err
	}
	return &persisted, nil
}

func newReceiptNumber(soldAt time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
	return fmt.Sprintf("RCT-%s-%s", soldAt.Format("20060102"), suffix)
}

func projectSale(sale models.Sale) saleResponse {
	response := saleResponse{
		ID:            sale.ID,
		ReceiptNumber: sale.ReceiptNumber,
		CashierID:     sale.CashierID,
		SoldAt:        sale.SoldAt,
		Subtotal:      sale.Subtotal,
		Discount:      sale.Discount,
		Tax:           sale.Tax,
		Total:         sale.Total,
		Items:         make([]saleItemResponse, 0, len(sale.Items)),
	}
	if sale.Cashier != nil {
		response.CashierName = sale.Cashier.Name
	}
	for _, item := range sale.Items {
		response.Items = append(response.Items, saleItemResponse{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			Discount:  item.Discount,
			LineTotal: item.LineTotal,
		})
	}
	return response
}
