package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/vendops/earnings/internal/ingestion"
	"github.com/vendops/earnings/internal/metrics"
	"github.com/vendops/earnings/internal/reporting"
	"github.com/vendops/earnings/internal/repository"
)

// NewRouter creates the Chi router with all API routes mounted.
func NewRouter(
	locations *repository.LocationRepo,
	feeRules *repository.FeeRuleRepo,
	ingestionSvc *ingestion.Service,
	reportSvc *reporting.Service,
	log *zap.Logger,
) http.Handler {
	h := &Handlers{
		locations:    locations,
		feeRules:     feeRules,
		ingestionSvc: ingestionSvc,
		reportSvc:    reportSvc,
		log:          log.Named("api"),
	}

	r := chi.NewRouter()

	// Middleware.
	r.Use(middleware.RequestID)
	r.Use(requestLogger(h.log))
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.SetHeader("Content-Type", "application/json"))

		// Sales.
		r.Post("/sales/import", h.ImportSales)

		// Reports.
		r.Get("/reports/revenue", h.RevenueReport)
		r.Get("/reports/roi", h.ROIReport)

		// Commissions.
		r.Post("/commissions/quote", h.QuoteCommission)
		r.Post("/commissions/run", h.RunCommissions)
		r.Get("/commissions/statements", h.ListStatements)

		// Locations.
		r.Get("/locations", h.ListLocations)
		r.Put("/locations/{id}/commission-policy", h.UpdateCommissionPolicy)

		// Fee rules.
		r.Get("/fee-rules", h.ListFeeRules)
		r.Put("/fee-rules", h.ReplaceFeeRules)
	})

	return r
}
