package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"provender/models"
)

func seedCostedRecipe(t *testing.T) models.Recipe {
	t.Helper()
	recipe := models.Recipe{Name: "Shortbread Rounds", BatchSize: 50, BatchUnit: "unit"}
	if err := database.Create(&recipe).Error; err != nil {
		t.Fatalf("failed to seed recipe: %v", err)
	}
	lines := []models.RecipeIngredient{
		{RecipeID: recipe.ID, Name: "Cake Flour", PackSize: 5, PackUnit: "kg", PackPrice: 45, UsedQuantity: 4, UsedUnit: "kg"},
		{RecipeID: recipe.ID, Name: "Salted Butter", PackSize: 5, PackUnit: "kg", PackPrice: 320, UsedQuantity: 1, UsedUnit: "kg"},
	}
	for i := range lines {
		if err := database.Create(&lines[i]).Error; err != nil {
			t.Fatalf("failed to seed recipe line: %v", err)
		}
	}
	return recipe
}

func TestProductionBatchCreateScalesAndSnapshots(t *testing.T) {
	_, cleanupDB := withTestDatabase(t, "file:batch-create-test?mode=memory&cache=shared")
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	recipe := seedCostedRecipe(t)

	// Base batch costs R100 for 50 units; 125 units is a 2.5x run.
	payload := productionBatchRequest{RecipeID: recipe.ID, ProducedQuantity: 125, RunDate: "2025-03-14"}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/app/api/production-batches", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = authenticateRequest(t, sm, req, 1)

	w := httptest.NewRecorder()
	ProductionBatchResource(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var response productionBatchResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if math.Abs(response.TotalCost-250) > 1e-9 {
		t.Fatalf("expected total cost 250, got %g", response.TotalCost)
	}
	if math.Abs(response.CostPerUnit-2) > 1e-9 {
		t.Fatalf("expected cost per unit 2, got %g", response.CostPerUnit)
	}
	if len(response.Ingredients) != 2 {
		t.Fatalf("expected 2 snapshot lines, got %d", len(response.Ingredients))
	}
	if math.Abs(response.Ingredients[0].Quantity-10) > 1e-9 {
		t.Fatalf("expected flour scaled to 10 kg, got %g", response.Ingredients[0].Quantity)
	}
	if !strings.HasPrefix(response.LotNumber, "LOT-20250314-") {
		t.Fatalf("expected lot number to carry the run date, got %q", response.LotNumber)
	}
	if response.RunDate.Format("2006-01-02") != "2025-03-14" {
		t.Fatalf("expected run date 2025-03-14, got %v", response.RunDate)
	}
}

func TestProductionBatchSnapshotIsImmutable(t *testing.T) {
	db, cleanupDB := withTestDatabase(t, "file:batch-immutable-test?mode=memory&cache=shared")
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	recipe := seedCostedRecipe(t)

	payload := productionBatchRequest{RecipeID: recipe.ID, ProducedQuantity: 50}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/app/api/production-batches", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = authenticateRequest(t, sm, req, 1)
	w := httptest.NewRecorder()
	ProductionBatchResource(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created productionBatchResponse
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	// Triple every pack price after the run.
	if err := db.Model(&models.RecipeIngredient{}).
		Where("recipe_id = ?", recipe.ID).
		Update("pack_price", 999).Error; err != nil {
		t.Fatalf("failed to reprice recipe lines: %v", err)
	}

	showReq := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/app/api/production-batches/%d", created.ID), nil)
	showReq = authenticateRequest(t, sm, showReq, 1)
	showW := httptest.NewRecorder()
	ProductionBatchResource(showW, showReq)
	if showW.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", showW.Code)
	}
	var reloaded productionBatchResponse
	if err := json.Unmarshal(showW.Body.Bytes(), &reloaded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if math.Abs(reloaded.TotalCost-created.TotalCost) > 1e-9 {
		t.Fatalf("expected snapshot total to survive repricing, got %g want %g", reloaded.TotalCost, created.TotalCost)
	}
	for i, line := range reloaded.Ingredients {
		if math.Abs(line.Cost-created.Ingredients[i].Cost) > 1e-9 {
			t.Fatalf("expected snapshot line cost to survive repricing: %+v", line)
		}
	}
}

func TestProductionBatchCreateConvertsProducedUnit(t *testing.T) {
	_, cleanupDB := withTestDatabase(t, "file:batch-convert-test?mode=memory&cache=shared")
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	recipe := models.Recipe{Name: "Vanilla Syrup", BatchSize: 2, BatchUnit: "l"}
	if err := database.Create(&recipe).Error; err != nil {
		t.Fatalf("failed to seed recipe: %v", err)
	}
	line := models.RecipeIngredient{RecipeID: recipe.ID, Name: "Sugar Syrup", PackSize: 5, PackUnit: "l", PackPrice: 100, UsedQuantity: 2, UsedUnit: "l"}
	if err := database.Create(&line).Error; err != nil {
		t.Fatalf("failed to seed recipe line: %v", err)
	}

	payload := productionBatchRequest{RecipeID: recipe.ID, ProducedQuantity: 4000, ProducedUnit: "ml"}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/app/api/production-batches", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = authenticateRequest(t, sm, req, 1)
	w := httptest.NewRecorder()
	ProductionBatchResource(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var response productionBatchResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.ProducedQuantity != 4 || response.ProducedUnit != "l" {
		t.Fatalf("expected 4000 ml normalised to 4 l, got %g %s", response.ProducedQuantity, response.ProducedUnit)
	}
	if math.Abs(response.TotalCost-80) > 1e-9 {
		t.Fatalf("expected doubled batch to cost 80, got %g", response.TotalCost)
	}
}

func TestProductionBatchCreateRejectsMissingRecipe(t *testing.T) {
	_, cleanupDB := withTestDatabase(t, "file:batch-missing-test?mode=memory&cache=shared")
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	payload := productionBatchRequest{RecipeID: 9999, ProducedQuantity: 10}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/app/api/production-batches", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = authenticateRequest(t, sm, req, 1)
	w := httptest.NewRecorder()
	ProductionBatchResource(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown recipe, got %d", w.Code)
	}
}

func TestProductionBatchSheetRendersHTML(t *testing.T) {
	_, cleanupDB := withTestDatabase(t, "file:batch-sheet-test?mode=memory&cache=shared")
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	recipe := seedCostedRecipe(t)
	batch := models.ProductionBatch{
		RecipeID:         recipe.ID,
		LotNumber:        "LOT-20250314-TESTLOT1",
		ProducedQuantity: 125,
		ProducedUnit:     "unit",
		RunDate:          time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC),
		TotalCost:        250,
		CostPerUnit:      2,
	}
	if err := database.Create(&batch).Error; err != nil {
		t.Fatalf("failed to seed batch: %v", err)
	}
	snapshot := models.BatchIngredient{BatchID: batch.ID, Name: "Cake Flour", Quantity: 10, Unit: "kg", Cost: 90}
	if err := database.Create(&snapshot).Error; err != nil {
		t.Fatalf("failed to seed snapshot line: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/app/api/production-batches/%d/sheet", batch.ID), nil)
	req = authenticateRequest(t, sm, req, 1)
	w := httptest.NewRecorder()
	ProductionBatchResource(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("expected html content type, got %q", ct)
	}
	out := w.Body.String()
	for _, want := range []string{"LOT-20250314-TESTLOT1", "Shortbread Rounds", "Cake Flour", "R250.00"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected sheet to contain %q: %s", want, out)
		}
	}
}
