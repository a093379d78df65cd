// Package simulation runs freight quotes against the carrier catalog and
// records the winner in the history log.
package simulation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Simplici0/logicalc/internal/apperr"
	"github.com/Simplici0/logicalc/internal/history"
	"github.com/Simplici0/logicalc/internal/logger"
	"github.com/Simplici0/logicalc/internal/metrics"
	"github.com/Simplici0/logicalc/internal/model"
	"github.com/Simplici0/logicalc/internal/pricing"
	"github.com/Simplici0/logicalc/internal/report"
	"github.com/Simplici0/logicalc/internal/store"
)

// Catalog is the read side of the branch and carrier repositories.
type Catalog interface {
	ListBranches(ctx context.Context, query string) ([]model.Branch, error)
	GetBranch(ctx context.Context, id string) (model.Branch, error)
	ListCarriers(ctx context.Context, query string) ([]model.Carrier, error)
}

// Config tunes reporting and makes time and ids injectable. Zero values
// select UTC, report.DefaultRecentLimit, time.Now and random UUIDs.
type Config struct {
	Location    *time.Location
	RecentLimit int
	Now         func() time.Time
	NewID       func() string
}

// Service evaluates shipments and owns the single write path to the history log.
type Service struct {
	catalog Catalog
	history history.Store
	log     logger.Logger
	metrics *metrics.Metrics

	loc         *time.Location
	recentLimit int
	now         func() time.Time
	newID       func() string

	// appends are serialized so concurrent simulations cannot interleave
	// the prepend-and-trim of the log.
	mu sync.Mutex
}

func New(catalog Catalog, hist history.Store, log logger.Logger, m *metrics.Metrics, cfg Config) *Service {
	s := &Service{
		catalog:     catalog,
		history:     hist,
		log:         log,
		metrics:     m,
		loc:         cfg.Location,
		recentLimit: cfg.RecentLimit,
		now:         cfg.Now,
		newID:       cfg.NewID,
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.recentLimit <= 0 {
		s.recentLimit = report.DefaultRecentLimit
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	return s
}

// Outcome is the result of one simulation. Best and Entry are nil when no
// carrier serves the shipment's branch.
type Outcome struct {
	Results []pricing.Result
	Best    *pricing.Result
	Entry   *history.Entry
}

// Simulate prices s with every carrier of its branch and records the cheapest.
func (s *Service) Simulate(ctx context.Context, shipment pricing.Shipment) (Outcome, error) {
	start := time.Now()
	defer func() { s.metrics.SimulationDuration.Observe(time.Since(start).Seconds()) }()

	if err := shipment.Validate(); err != nil {
		s.metrics.Simulations.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return Outcome{}, err
	}

	carriers, err := s.catalog.ListCarriers(ctx, "")
	if err != nil {
		return Outcome{}, s.fail("list carriers", err)
	}

	ranked, err := pricing.Compare(pricing.Eligible(carriers, shipment.BranchID), shipment)
	if err != nil {
		s.metrics.Simulations.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return Outcome{}, err
	}
	s.metrics.CarrierEvaluations.Add(float64(len(ranked)))

	best, ok := pricing.Best(ranked)
	if !ok {
		s.metrics.Simulations.WithLabelValues(metrics.OutcomeNoCarriers).Inc()
		s.log.Info("no carriers for branch", map[string]interface{}{"branch_id": shipment.BranchID})
		return Outcome{Results: ranked}, nil
	}

	branchName := ""
	branch, err := s.catalog.GetBranch(ctx, shipment.BranchID)
	switch {
	case err == nil:
		branchName = branch.Name
	case errors.Is(err, store.ErrNotFound):
	default:
		return Outcome{}, s.fail("get branch", err)
	}

	entry := history.NewEntry(s.newID(), s.now(), best, branchName, shipment)

	s.mu.Lock()
	log, err := s.history.Append(ctx, entry)
	s.mu.Unlock()
	if err != nil {
		return Outcome{}, s.fail("append history", err)
	}

	s.metrics.Simulations.WithLabelValues(metrics.OutcomeRecorded).Inc()
	s.metrics.HistoryEntries.Set(float64(len(log)))
	s.log.Info("simulation recorded", map[string]interface{}{
		"entry_id":      entry.ID,
		"branch_id":     shipment.BranchID,
		"carriers":      len(ranked),
		"best_carrier":  best.Carrier.Name,
		"best_freight":  best.ChargedFreight,
		"invoice_value": shipment.InvoiceValue,
	})

	return Outcome{Results: ranked, Best: &best, Entry: &entry}, nil
}

func (s *Service) fail(op string, err error) error {
	s.metrics.Simulations.WithLabelValues(metrics.OutcomeFailed).Inc()
	s.log.WithError(err).Error("simulation failed", map[string]interface{}{"op": op})
	return apperr.NewPersistenceError(op, err)
}

// History returns the full log, newest first.
func (s *Service) History(ctx context.Context) ([]history.Entry, error) {
	log, err := s.history.Load(ctx)
	if err != nil {
		return nil, apperr.NewPersistenceError("load history", err)
	}
	return log, nil
}

// Dashboard is the reporting view of the history log.
type Dashboard struct {
	Period       string          `json:"period"`
	BranchCount  int             `json:"branchCount"`
	CarrierCount int             `json:"carrierCount"`
	Summary      report.Summary  `json:"summary"`
	Periods      []string        `json:"periods"`
	Recent       []history.Entry `json:"recent"`
}

// ValidPeriod reports whether p is PeriodAll, empty or a YYYY-MM key.
func ValidPeriod(p string) bool {
	if p == "" || p == report.PeriodAll {
		return true
	}
	_, err := time.Parse("2006-01", p)
	return err == nil && len(p) == len("2006-01")
}

// Dashboard aggregates the log for period ("all" or YYYY-MM).
func (s *Service) Dashboard(ctx context.Context, period string) (Dashboard, error) {
	if !ValidPeriod(period) {
		return Dashboard{}, apperr.NewInvalidRequestError("month must be YYYY-MM or all")
	}
	if period == "" {
		period = report.PeriodAll
	}

	log, err := s.history.Load(ctx)
	if err != nil {
		return Dashboard{}, apperr.NewPersistenceError("load history", err)
	}
	branches, err := s.catalog.ListBranches(ctx, "")
	if err != nil {
		return Dashboard{}, apperr.NewPersistenceError("list branches", err)
	}
	carriers, err := s.catalog.ListCarriers(ctx, "")
	if err != nil {
		return Dashboard{}, apperr.NewPersistenceError("list carriers", err)
	}

	filtered := report.Filter(log, period, s.loc)
	return Dashboard{
		Period:       period,
		BranchCount:  len(branches),
		CarrierCount: len(carriers),
		Summary:      report.Summarize(filtered),
		Periods:      report.Periods(log, s.loc),
		Recent:       report.Recent(filtered, s.recentLimit),
	}, nil
}
