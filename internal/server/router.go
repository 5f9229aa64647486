package server

import (
	"context"
	"net/http"

	"provender/internal/handlers"
	applog "provender/internal/log"
)

func newRouter() http.Handler {
	mux := http.NewServeMux()
	applog.Debug(context.Background(), "registering http routes")

	mux.HandleFunc("/healthz", handlers.Health)
	mux.HandleFunc("/login", handlers.Login)
	mux.HandleFunc("/signup", handlers.Signup)
	mux.HandleFunc("/logout", handlers.Logout)

	api := map[string]http.HandlerFunc{
		"/app/api/ingredients":        handlers.IngredientResource,
		"/app/api/recipes":            handlers.RecipeResource,
		"/app/api/recipe-ingredients": handlers.RecipeIngredientResource,
		"/app/api/production-batches": handlers.ProductionBatchResource,
		"/app/api/products":           handlers.ProductResource,
		"/app/api/departments":        handlers.DepartmentResource,
		"/app/api/staff":              handlers.StaffResource,
		"/app/api/assignments":        handlers.AssignmentResource,
		"/app/api/promotions":         handlers.PromotionResource,
		"/app/api/sales":              handlers.SaleResource,
		"/app/api/ratings":            handlers.RatingResource,
		"/app/api/dashboard":          handlers.Dashboard,
	}
	for path, handler := range api {
		mux.Handle(path, handlers.RequireAuthentication(handler))
		mux.Handle(path+"/", handlers.RequireAuthentication(handler))
		applog.Debug(context.Background(), "route registered", "path", path, "protected", true)
	}

	return mux
}
