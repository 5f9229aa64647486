package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"provender/models"
)

func TestRatingCreateValidatesScore(t *testing.T) {
	db, cleanupDB := withTestDatabase(t, "file:rating-create-test?mode=memory&cache=shared")
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	coffee := models.Product{Name: "Filter Coffee", Price: 28, Active: true}
	if err := db.Create(&coffee).Error; err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}

	for _, score := range []int{0, 6, -1} {
		body, _ := json.Marshal(ratingRequest{ProductID: coffee.ID, Score: score})
		req := httptest.NewRequest(http.MethodPost, "/app/api/ratings", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req = authenticateRequest(t, sm, req, 1)
		w := httptest.NewRecorder()
		RatingResource(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for score %d, got %d", score, w.Code)
		}
	}

	body, _ := json.Marshal(ratingRequest{ProductID: coffee.ID, Score: 5, Comment: "best coffee on the block"})
	req := httptest.NewRequest(http.MethodPost, "/app/api/ratings", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = authenticateRequest(t, sm, req, 1)
	w := httptest.NewRecorder()
	RatingResource(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var response ratingResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.ProductName != "Filter Coffee" || response.Score != 5 {
		t.Fatalf("unexpected rating response: %+v", response)
	}
}

func TestRatingListFiltersByProduct(t *testing.T) {
	db, cleanupDB := withTestDatabase(t, "file:rating-filter-test?mode=memory&cache=shared")
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	coffee := models.Product{Name: "Filter Coffee", Price: 28, Active: true}
	shortbread := models.Product{Name: "Shortbread 6-pack", Price: 55, Active: true}
	if err := db.Create(&coffee).Error; err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
	if err := db.Create(&shortbread).Error; err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
	ratings := []models.ProductRating{
		{ProductID: coffee.ID, Score: 5},
		{ProductID: coffee.ID, Score: 4},
		{ProductID: shortbread.ID, Score: 3},
	}
	for i := range ratings {
		if err := db.Create(&ratings[i]).Error; err != nil {
			t.Fatalf("failed to seed rating: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/app/api/ratings?product_id=%d", coffee.ID), nil)
	req = authenticateRequest(t, sm, req, 1)
	w := httptest.NewRecorder()
	RatingResource(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var responses []ratingResponse
	if err := json.Unmarshal(w.Body.Bytes(), &responses); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(responses) != 2 {
		t.Fatalf("expected 2 coffee ratings, got %d", len(responses))
	}
}

func TestRatingDeleteMissingReturnsNotFound(t *testing.T) {
	_, cleanupDB := withTestDatabase(t, "file:rating-delete-missing-test?mode=memory&cache=shared")
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	req := httptest.NewRequest(http.MethodDelete, "/app/api/ratings/9999", nil)
	req = authenticateRequest(t, sm, req, 1)
	w := httptest.NewRecorder()
	RatingResource(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 deleting a missing rating, got %d", w.Code)
	}
}
