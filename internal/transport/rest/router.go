package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/expense-tracker/api"
	"github.com/frahmantamala/expense-tracker/internal"
	"github.com/frahmantamala/expense-tracker/internal/category"
	"github.com/frahmantamala/expense-tracker/internal/expense"
	"github.com/frahmantamala/expense-tracker/internal/transport/middleware"
	"github.com/frahmantamala/expense-tracker/internal/transport/swagger"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

type Handlers struct {
	Category *category.Handler
	Expense  *expense.Handler
}

func RegisterAllRoutes(router *chi.Mux, cfg *internal.Config, db *sql.DB, handlers Handlers, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db, cfg.Database.Driver, cfg.App.Version)

	// Apply global middleware
	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	// Serve the OpenAPI document at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(api.OpenAPI)
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.Health)
		r.Get("/ping", healthHandler.Ping)

		if h := handlers.Category; h != nil {
			r.Route("/categories", func(cr chi.Router) {
				cr.Get("/", h.ListCategories)
				cr.Post("/", h.CreateCategory)
				cr.Get("/stats", h.GetCategoryStats)
				cr.Get("/search", h.SearchCategory)
				cr.Get("/{id}", h.GetCategory)
				cr.Put("/{id}", h.UpdateCategory)
				cr.Delete("/{id}", h.DeleteCategory)
			})
		}

		if h := handlers.Expense; h != nil {
			r.Route("/expenses", func(er chi.Router) {
				er.Get("/", h.ListExpenses)
				er.Post("/", h.CreateExpense)
				er.Get("/recent", h.RecentExpenses)
				er.Get("/summary", h.GetSummary)
				er.Get("/search", h.SearchExpenses)
				er.Get("/export", h.ExportExpenses)
				er.Get("/analytics/category", h.SpendingByCategory)
				er.Get("/analytics/monthly", h.MonthlyTrend)
				er.Get("/category/{categoryID}", h.ListByCategory)
				er.Get("/{id}", h.GetExpense)
				er.Put("/{id}", h.UpdateExpense)
				er.Delete("/{id}", h.DeleteExpense)
			})
		}
	})
}
