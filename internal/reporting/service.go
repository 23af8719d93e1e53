// Package reporting loads sales and configuration from the data store and
// runs them through the revenue and commission engines.
package reporting

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vendops/earnings/internal/commission"
	"github.com/vendops/earnings/internal/domain"
	"github.com/vendops/earnings/internal/fees"
	"github.com/vendops/earnings/internal/metrics"
	"github.com/vendops/earnings/internal/money"
	"github.com/vendops/earnings/internal/repository"
	"github.com/vendops/earnings/internal/revenue"
)

var ErrInvalidGroupBy = errors.New("invalid group_by")

type GroupBy string

const (
	GroupByMachine  GroupBy = "machine"
	GroupByLocation GroupBy = "location"
)

// Service builds revenue, commission and ROI reports.
type Service struct {
	locations  *repository.LocationRepo
	finance    *repository.FinanceRepo
	feeRules   *repository.FeeRuleRepo
	sales      *repository.SaleRepo
	statements *repository.StatementRepo
	log        *zap.Logger
	now        func() time.Time
}

// NewService creates a new reporting service.
func NewService(
	locations *repository.LocationRepo,
	finance *repository.FinanceRepo,
	feeRules *repository.FeeRuleRepo,
	sales *repository.SaleRepo,
	statements *repository.StatementRepo,
	log *zap.Logger,
) *Service {
	return &Service{
		locations:  locations,
		finance:    finance,
		feeRules:   feeRules,
		sales:      sales,
		statements: statements,
		log:        log.Named("reporting"),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// inputs is everything a report needs, fetched in one go.
type inputs struct {
	machines  []domain.Machine
	locations []domain.Location
	finance   []domain.FinanceTerms
	rules     []domain.FeeRule
	sales     []domain.Sale
}

func (in *inputs) placement() domain.Placement {
	return domain.NewPlacement(in.machines)
}

func (in *inputs) resolver() fees.Resolver {
	return fees.NewRuleResolver(in.rules, in.placement())
}

func (in *inputs) policies() map[string]domain.CommissionPolicy {
	out := make(map[string]domain.CommissionPolicy, len(in.locations))
	for _, l := range in.locations {
		out[l.ID] = l.Policy
	}
	return out
}

func (s *Service) load(ctx context.Context, period domain.Period) (*inputs, error) {
	in := &inputs{}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		if in.machines, err = s.locations.ListMachines(ctx); err != nil {
			return fmt.Errorf("load machines: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if in.locations, err = s.locations.List(ctx); err != nil {
			return fmt.Errorf("load locations: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if in.finance, err = s.finance.List(ctx); err != nil {
			return fmt.Errorf("load finance terms: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if in.rules, err = s.feeRules.List(ctx); err != nil {
			return fmt.Errorf("load fee rules: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if in.sales, err = s.sales.List(ctx, repository.SaleFilter{Period: period}); err != nil {
			return fmt.Errorf("load sales: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return in, nil
}

// RevenueReport is the fee-aware revenue of a period.
type RevenueReport struct {
	Period       string                    `json:"period"`
	From         string                    `json:"from"`
	To           string                    `json:"to"`
	GroupBy      GroupBy                   `json:"group_by"`
	MonthsFactor decimal.Decimal           `json:"months_factor"`
	Rows         []domain.RevenueAggregate `json:"rows"`
	Total        domain.RevenueAggregate   `json:"total"`
}

// Revenue aggregates the period's sales per machine or per location.
func (s *Service) Revenue(ctx context.Context, period domain.Period, groupBy GroupBy) (*RevenueReport, error) {
	defer metrics.ObserveReport("revenue", time.Now())

	var key func(domain.Placement) revenue.KeyFunc
	switch groupBy {
	case GroupByMachine, "":
		groupBy = GroupByMachine
		key = func(domain.Placement) revenue.KeyFunc { return revenue.ByMachine }
	case GroupByLocation:
		key = revenue.ByLocation
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidGroupBy, groupBy)
	}

	in, err := s.load(ctx, period)
	if err != nil {
		return nil, err
	}

	aggs := revenue.Aggregate(in.sales, key(in.placement()), in.resolver())
	return &RevenueReport{
		Period:       period.Label(),
		From:         period.From.Format(time.DateOnly),
		To:           period.To.Format(time.DateOnly),
		GroupBy:      groupBy,
		MonthsFactor: period.MonthsFactor(),
		Rows:         revenue.Sorted(aggs),
		Total:        revenue.Total("total", aggs),
	}, nil
}

// CommissionRun is the outcome of computing one month's statements.
type CommissionRun struct {
	Month           string             `json:"month"`
	Statements      []domain.Statement `json:"statements"`
	TotalCommission money.Cents        `json:"total_commission_cents"`
	FloorsApplied   int                `json:"floors_applied"`
}

// RunCommissions computes every location's commission for a calendar month
// and replaces any statements stored for that month. Locations without
// sales still get a statement so minimum guarantees are charged.
func (s *Service) RunCommissions(ctx context.Context, month string) (*CommissionRun, error) {
	defer metrics.ObserveReport("commissions", time.Now())

	period, err := domain.ParseMonth(month)
	if err != nil {
		return nil, err
	}
	in, err := s.load(ctx, period)
	if err != nil {
		return nil, err
	}

	byLocation := revenue.Aggregate(in.sales, revenue.ByLocation(in.placement()), in.resolver())
	if unplaced, ok := byLocation[""]; ok {
		s.log.Warn("sales from unplaced machines left out of commissions",
			zap.String("month", month), zap.Int("sales", unplaced.SaleCount))
		delete(byLocation, "")
	}

	policies := policyLookup(in)
	ids := make(map[string]struct{}, len(in.locations)+len(byLocation))
	for _, l := range in.locations {
		ids[l.ID] = struct{}{}
	}
	for id := range byLocation {
		ids[id] = struct{}{}
	}

	mf := period.MonthsFactor()
	computedAt := s.now()
	run := &CommissionRun{Month: period.Label()}
	for id := range ids {
		agg := byLocation[id]
		agg.EntityID = id

		res := commission.Compute(policies(id), agg, mf)
		res.Month = run.Month
		run.Statements = append(run.Statements, domain.Statement{
			ID:               uuid.NewString(),
			CommissionResult: res,
			Gross:            agg.Gross,
			Fees:             agg.Fees,
			Net:              agg.Net,
			ComputedAt:       computedAt,
		})
		run.TotalCommission += res.Commission
		if res.FloorApplied {
			run.FloorsApplied++
		}
	}
	sort.Slice(run.Statements, func(i, j int) bool {
		return run.Statements[i].LocationID < run.Statements[j].LocationID
	})

	written, err := s.statements.ReplaceMonth(ctx, run.Month, run.Statements)
	if err != nil {
		return nil, fmt.Errorf("store statements: %w", err)
	}
	metrics.StatementsWritten.Add(float64(written))
	metrics.FloorsApplied.Add(float64(run.FloorsApplied))

	s.log.Info("commission run complete",
		zap.String("month", run.Month),
		zap.Int("statements", written),
		zap.Int64("total_commission_cents", int64(run.TotalCommission)),
		zap.Int("floors_applied", run.FloorsApplied),
	)
	return run, nil
}

// Statements lists stored statements; empty filters match everything.
func (s *Service) Statements(ctx context.Context, month, locationID string) ([]domain.Statement, error) {
	if month != "" {
		if _, err := domain.ParseMonth(month); err != nil {
			return nil, err
		}
	}
	return s.statements.List(ctx, repository.StatementFilter{Month: month, LocationID: locationID})
}

// Summary totals the stored statements of one month.
func (s *Service) Summary(ctx context.Context, month string) (*repository.StatementSummary, error) {
	period, err := domain.ParseMonth(month)
	if err != nil {
		return nil, err
	}
	return s.statements.Summary(ctx, period.Label())
}

// ROIReport is the owner profitability of every machine over a period.
type ROIReport struct {
	Period        string           `json:"period"`
	MonthsFactor  decimal.Decimal  `json:"months_factor"`
	Terms         *domain.ROITerms `json:"terms,omitempty"`
	Rows          []domain.ROIRow  `json:"rows"`
	TotalOwnerNet money.Cents      `json:"total_owner_net_cents"`
}

// ROI computes owner net per machine. With terms set, every machine is
// charged under those terms against its own gross. Otherwise the location's
// commission is computed once on the location's revenue, exactly as in a
// commission run, and shared among its machines in proportion to each
// machine's commission base. Rows come back worst performer first.
func (s *Service) ROI(ctx context.Context, period domain.Period, terms *domain.ROITerms) (*ROIReport, error) {
	defer metrics.ObserveReport("roi", time.Now())

	in, err := s.load(ctx, period)
	if err != nil {
		return nil, err
	}

	placement := in.placement()
	resolver := in.resolver()
	financing := make(map[string]domain.FinanceTerms, len(in.finance))
	for _, f := range in.finance {
		financing[f.MachineID] = f
	}

	aggs := revenue.Aggregate(in.sales, revenue.ByMachine, resolver)
	for _, m := range in.machines {
		if _, ok := aggs[m.ID]; !ok {
			aggs[m.ID] = domain.RevenueAggregate{EntityID: m.ID}
		}
	}
	machines := revenue.Sorted(aggs)

	mf := period.MonthsFactor()
	var charged map[string]money.Cents
	if terms == nil {
		charged = locationShares(machines, placement, policyLookup(in),
			revenue.Aggregate(in.sales, revenue.ByLocation(placement), resolver), mf)
	}

	report := &ROIReport{Period: period.Label(), MonthsFactor: mf, Terms: terms}
	for _, agg := range machines {
		c := charged[agg.EntityID]
		if terms != nil {
			c = commission.ROICommission(*terms, agg.Gross, mf)
		}

		fin := financing[agg.EntityID]
		fin.MachineID = agg.EntityID
		row := commission.ROI(agg, placement.LocationOf(agg.EntityID), fin, c, mf)
		report.Rows = append(report.Rows, row)
		report.TotalOwnerNet += row.OwnerNet
	}
	sort.SliceStable(report.Rows, func(i, j int) bool {
		return report.Rows[i].OwnerNet < report.Rows[j].OwnerNet
	})
	return report, nil
}

// locationShares computes each location's commission on its whole revenue
// and splits it over the location's machines by commission base. Unplaced
// machines carry nothing.
func locationShares(
	machines []domain.RevenueAggregate,
	placement domain.Placement,
	policies func(string) domain.CommissionPolicy,
	byLocation map[string]domain.RevenueAggregate,
	mf decimal.Decimal,
) map[string]money.Cents {
	members := make(map[string][]domain.RevenueAggregate)
	for _, m := range machines {
		if loc := placement.LocationOf(m.EntityID); loc != "" {
			members[loc] = append(members[loc], m)
		}
	}

	out := make(map[string]money.Cents, len(machines))
	for loc, ms := range members {
		policy := policies(loc)
		agg := byLocation[loc]
		agg.EntityID = loc
		total := commission.Compute(policy, agg, mf).Commission

		weights := make([]money.Cents, len(ms))
		for i, m := range ms {
			weights[i] = commission.BaseAmount(policy.Base, m)
		}
		for i, share := range commission.Allocate(total, weights) {
			out[ms[i].EntityID] = share
		}
	}
	return out
}

// policyLookup resolves a location's policy, falling back to the default for
// locations that have none on record.
func policyLookup(in *inputs) func(string) domain.CommissionPolicy {
	known := in.policies()
	return func(locationID string) domain.CommissionPolicy {
		p, ok := known[locationID]
		if !ok {
			return domain.DefaultPolicy(locationID)
		}
		if p.LocationID == "" {
			p.LocationID = locationID
		}
		return p
	}
}
