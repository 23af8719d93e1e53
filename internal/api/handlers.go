package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vendops/earnings/internal/commission"
	"github.com/vendops/earnings/internal/domain"
	"github.com/vendops/earnings/internal/ingestion"
	"github.com/vendops/earnings/internal/money"
	"github.com/vendops/earnings/internal/parse"
	"github.com/vendops/earnings/internal/reporting"
	"github.com/vendops/earnings/internal/repository"
)

// Handlers groups all HTTP handler methods and their dependencies.
type Handlers struct {
	locations    *repository.LocationRepo
	feeRules     *repository.FeeRuleRepo
	ingestionSvc *ingestion.Service
	reportSvc    *reporting.Service
	log          *zap.Logger
}

// --- helpers ---

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Warn("encode response", zap.Error(err))
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps known sentinel errors to client statuses; anything
// else is logged and reported as a server error.
func (h *Handlers) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, parse.ErrMalformedTiers),
		errors.Is(err, ingestion.ErrMalformedFile):
		h.writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrInvalidPeriod),
		errors.Is(err, reporting.ErrInvalidGroupBy),
		errors.Is(err, ingestion.ErrUnsupportedFormat):
		h.writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// periodParam reads from/to dates, or a month, from the query string.
func periodParam(r *http.Request) (domain.Period, error) {
	q := r.URL.Query()
	if m := q.Get("month"); m != "" {
		return domain.ParseMonth(m)
	}
	return domain.ParsePeriod(q.Get("from"), q.Get("to"))
}

// --- Health ---

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- ImportSales ---

func (h *Handlers) ImportSales(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	format := strings.ToLower(r.FormValue("format"))
	if format == "" {
		h.writeError(w, http.StatusBadRequest, "format is required")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "file field is required: "+err.Error())
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "read file: "+err.Error())
		return
	}

	result, err := h.ingestionSvc.Import(r.Context(), data, domain.ImportFormat(format))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// --- Reports ---

func (h *Handlers) RevenueReport(w http.ResponseWriter, r *http.Request) {
	period, err := periodParam(r)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	report, err := h.reportSvc.Revenue(r.Context(), period, reporting.GroupBy(r.URL.Query().Get("group_by")))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, report)
}

func (h *Handlers) ROIReport(w http.ResponseWriter, r *http.Request) {
	period, err := periodParam(r)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	var terms *domain.ROITerms
	q := r.URL.Query()
	if model := q.Get("model"); model != "" {
		t := parse.ROITerms(model, q.Get("rate"), q.Get("flat_cents"), q.Get("min_cents"))
		terms = &t
	}

	report, err := h.reportSvc.ROI(r.Context(), period, terms)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, report)
}

// --- Commissions ---

type policyRequest struct {
	Method          string          `json:"method"`
	Base            string          `json:"base"`
	RatePercent     decimal.Decimal `json:"rate_percent"`
	FlatPerMonth    money.Cents     `json:"flat_per_month_cents"`
	Tiers           []domain.Tier   `json:"tiers"`
	MinimumPerMonth money.Cents     `json:"minimum_per_month_cents"`
}

func (p policyRequest) policy(locationID string) (domain.CommissionPolicy, error) {
	if err := parse.ValidateTiers(p.Tiers); err != nil {
		return domain.CommissionPolicy{}, err
	}
	return domain.CommissionPolicy{
		LocationID:      locationID,
		Method:          parse.Method(p.Method),
		Base:            parse.Base(p.Base),
		RatePercent:     p.RatePercent,
		FlatPerMonth:    p.FlatPerMonth,
		Tiers:           parse.NormalizeTiers(p.Tiers),
		MinimumPerMonth: p.MinimumPerMonth,
	}, nil
}

// quoteAggregate mirrors domain.RevenueAggregate with an optional net, so an
// explicit zero is kept and an omitted one is derived.
type quoteAggregate struct {
	EntityID    string       `json:"entity_id"`
	Gross       money.Cents  `json:"gross_cents"`
	Fees        money.Cents  `json:"fees_cents"`
	CostOfGoods money.Cents  `json:"cost_of_goods_cents"`
	Net         *money.Cents `json:"net_cents"`
	SaleCount   int          `json:"sale_count"`
	Units       int64        `json:"units"`
}

func (q quoteAggregate) aggregate() domain.RevenueAggregate {
	agg := domain.RevenueAggregate{
		EntityID:    q.EntityID,
		Gross:       q.Gross,
		Fees:        q.Fees,
		CostOfGoods: q.CostOfGoods,
		Net:         q.Gross - q.Fees - q.CostOfGoods,
		SaleCount:   q.SaleCount,
		Units:       q.Units,
	}
	if q.Net != nil {
		agg.Net = *q.Net
	}
	return agg
}

type quoteRequest struct {
	Policy       policyRequest    `json:"policy"`
	Aggregate    quoteAggregate   `json:"aggregate"`
	MonthsFactor *decimal.Decimal `json:"months_factor"`
	Month        string           `json:"month"`
}

// QuoteCommission runs the commission engine on a caller-supplied policy and
// revenue aggregate without touching stored data.
func (h *Handlers) QuoteCommission(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if !h.decode(w, r, &req) {
		return
	}

	policy, err := req.Policy.policy(req.Aggregate.EntityID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	mf := decimal.NewFromInt(1)
	if req.MonthsFactor != nil {
		mf = *req.MonthsFactor
	}
	result := commission.Compute(policy, req.Aggregate.aggregate(), mf)
	result.Month = req.Month
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) RunCommissions(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	if month == "" {
		h.writeError(w, http.StatusBadRequest, "month is required (YYYY-MM)")
		return
	}

	run, err := h.reportSvc.RunCommissions(r.Context(), month)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, run)
}

func (h *Handlers) ListStatements(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	stmts, err := h.reportSvc.Statements(r.Context(), q.Get("month"), q.Get("location_id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if stmts == nil {
		stmts = []domain.Statement{}
	}

	resp := map[string]any{"statements": stmts}
	if month := q.Get("month"); month != "" {
		summary, err := h.reportSvc.Summary(r.Context(), month)
		if err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		resp["summary"] = summary
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// --- Locations ---

func (h *Handlers) ListLocations(w http.ResponseWriter, r *http.Request) {
	locs, err := h.locations.List(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if locs == nil {
		locs = []domain.Location{}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"locations": locs})
}

func (h *Handlers) UpdateCommissionPolicy(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	var req policyRequest
	if !h.decode(w, r, &req) {
		return
	}
	policy, err := req.policy(id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	if err := h.locations.UpdatePolicy(r.Context(), policy); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	loc, err := h.locations.GetByID(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.log.Info("commission policy updated", zap.String("location_id", id), zap.String("method", string(policy.Method)))
	h.writeJSON(w, http.StatusOK, loc)
}

// --- Fee rules ---

func (h *Handlers) ListFeeRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.feeRules.List(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if rules == nil {
		rules = []domain.FeeRule{}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"fee_rules": rules})
}

// ReplaceFeeRules swaps the whole rule table for the posted list.
func (h *Handlers) ReplaceFeeRules(w http.ResponseWriter, r *http.Request) {
	var raw []parse.RawFeeRule
	if !h.decode(w, r, &raw) {
		return
	}

	rules := make([]domain.FeeRule, 0, len(raw))
	for i, rr := range raw {
		rule := rr.Rule()
		if rule.Key == "" {
			h.writeError(w, http.StatusBadRequest, fmt.Sprintf("fee rule %d has no key", i))
			return
		}
		rules = append(rules, rule)
	}

	if err := h.feeRules.ReplaceAll(r.Context(), rules); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"fee_rules": rules})
}
