package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alexedwards/scs/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"provender/internal/config"
	"provender/models"
)

func withTestSessionManager(t *testing.T) (*scs.SessionManager, func()) {
	t.Helper()
	original := sessionManager
	sm := scs.New()
	sessionManager = sm
	return sm, func() {
		sessionManager = original
	}
}

func withTestDatabase(t *testing.T, dsn string) (*gorm.DB, func()) {
	t.Helper()
	originalDB := database
	originalTaxes := taxRates
	originalCurrency := currencySymbol

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite database: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Ingredient{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.ProductionBatch{},
		&models.BatchIngredient{},
		&models.Product{},
		&models.ProductRating{},
		&models.Department{},
		&models.StaffMember{},
		&models.Assignment{},
		&models.Promotion{},
		&models.Sale{},
		&models.SaleItem{},
	)
	if err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}

	database = db
	taxRates = config.TaxConfig{IngredientRate: 0.14, POSRate: 0.15}
	currencySymbol = "R"

	return db, func() {
		database = originalDB
		taxRates = originalTaxes
		currencySymbol = originalCurrency
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
}

func authenticateRequest(t *testing.T, sm *scs.SessionManager, req *http.Request, userID uint) *http.Request {
	t.Helper()
	ctx, err := sm.Load(req.Context(), "")
	if err != nil {
		t.Fatalf("failed to load session context: %v", err)
	}
	req = req.WithContext(ctx)
	sm.Put(req.Context(), sessionUserIDKey, int(userID))
	sm.Put(req.Context(), sessionAuthenticatedKey, true)
	return req
}

func seedUser(t *testing.T, db *gorm.DB, email, password string) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := models.User{Email: email, Name: "Test User", PasswordHash: string(hash), Role: models.RoleStaff}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}

func TestActiveSessionRequiresFlags(t *testing.T) {
	sm, cleanup := withTestSessionManager(t)
	t.Cleanup(cleanup)

	req := httptest.NewRequest(http.MethodGet, "/app/api/dashboard", nil)
	ctx, err := sm.Load(req.Context(), "")
	if err != nil {
		t.Fatalf("failed to load session context: %v", err)
	}
	req = req.WithContext(ctx)

	if ActiveSession(req) {
		t.Fatal("expected inactive session without flags")
	}

	sm.Put(req.Context(), sessionAuthenticatedKey, true)
	sm.Put(req.Context(), sessionUserIDKey, 42)
	if !ActiveSession(req) {
		t.Fatal("expected active session when flags are set")
	}
}

func TestLoginEstablishesSession(t *testing.T) {
	db, cleanupDB := withTestDatabase(t, "file:login-test?mode=memory&cache=shared")
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	user := seedUser(t, db, "baker@example.com", "butterandsugar")

	body, _ := json.Marshal(map[string]string{"email": "baker@example.com", "password": "butterandsugar"})
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	ctx, err := sm.Load(req.Context(), "")
	if err != nil {
		t.Fatalf("failed to load session context: %v", err)
	}
	req = req.WithContext(ctx)

	w := httptest.NewRecorder()
	Login(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var response accountResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.ID != user.ID || response.Email != user.Email {
		t.Fatalf("unexpected account response: %+v", response)
	}
	if !ActiveSession(req) {
		t.Fatal("expected login to establish a session")
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	db, cleanupDB := withTestDatabase(t, "file:login-bad-test?mode=memory&cache=shared")
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	seedUser(t, db, "baker@example.com", "butterandsugar")

	body, _ := json.Marshal(map[string]string{"email": "baker@example.com", "password": "wrong"})
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	ctx, err := sm.Load(req.Context(), "")
	if err != nil {
		t.Fatalf("failed to load session context: %v", err)
	}
	req = req.WithContext(ctx)

	w := httptest.NewRecorder()
	Login(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad password, got %d", w.Code)
	}
}

func TestSignupCreatesUserAndSession(t *testing.T) {
	db, cleanupDB := withTestDatabase(t, "file:signup-test?mode=memory&cache=shared")
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	body, _ := json.Marshal(map[string]string{
		"email":    "new@example.com",
		"password": "longenough",
		"name":     "New Baker",
	})
	req := httptest.NewRequest(http.MethodPost, "/signup", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	ctx, err := sm.Load(req.Context(), "")
	if err != nil {
		t.Fatalf("failed to load session context: %v", err)
	}
	req = req.WithContext(ctx)

	w := httptest.NewRecorder()
	Signup(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var stored models.User
	if err := db.Where("email = ?", "new@example.com").First(&stored).Error; err != nil {
		t.Fatalf("expected user to be persisted: %v", err)
	}
	if stored.Role != models.RoleStaff {
		t.Fatalf("expected new accounts to default to staff role, got %q", stored.Role)
	}
	if !ActiveSession(req) {
		t.Fatal("expected signup to establish a session")
	}
}

func TestSignupRejectsShortPassword(t *testing.T) {
	_, cleanupDB := withTestDatabase(t, "file:signup-short-test?mode=memory&cache=shared")
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	body, _ := json.Marshal(map[string]string{"email": "new@example.com", "password": "short"})
	req := httptest.NewRequest(http.MethodPost, "/signup", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	ctx, err := sm.Load(req.Context(), "")
	if err != nil {
		t.Fatalf("failed to load session context: %v", err)
	}
	req = req.WithContext(ctx)

	w := httptest.NewRecorder()
	Signup(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for short password, got %d", w.Code)
	}
}

func TestRequireAuthenticationBlocksAnonymous(t *testing.T) {
	_, cleanup := withTestSessionManager(t)
	t.Cleanup(cleanup)

	called := false
	handler := RequireAuthentication(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/app/api/ingredients", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if called {
		t.Fatal("expected protected handler to be skipped")
	}
}
