package simulation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/logicalc/internal/apperr"
	"github.com/Simplici0/logicalc/internal/history"
	"github.com/Simplici0/logicalc/internal/logger"
	"github.com/Simplici0/logicalc/internal/metrics"
	"github.com/Simplici0/logicalc/internal/model"
	"github.com/Simplici0/logicalc/internal/pricing"
	"github.com/Simplici0/logicalc/internal/store/memstore"
)

type fixture struct {
	svc     *Service
	store   *memstore.Store
	metrics *metrics.Metrics
	clock   time.Time
	ids     int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctx := context.Background()
	f := &fixture{
		store:   memstore.New(),
		metrics: metrics.New(prometheus.NewRegistry()),
		clock:   time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC),
	}

	_, err := f.store.CreateBranch(ctx, model.Branch{ID: "1", Code: "001", Name: "Matriz São Paulo"})
	require.NoError(t, err)
	_, err = f.store.CreateBranch(ctx, model.Branch{ID: "2", Code: "002", Name: "Filial Curitiba"})
	require.NoError(t, err)

	// At invoice 1000 / 10 kg: TransExpress charges max(25, 8, 50) = 50,
	// Logística Rápida charges max(18 + 12, 60) = 60.
	_, err = f.store.CreateCarrier(ctx, model.Carrier{
		ID: "rapida", Name: "Logística Rápida", BranchID: "1",
		CostPerKg: 1.8, PercentageOfValue: 1.2, MinFreight: 60, Combined: true,
	})
	require.NoError(t, err)
	_, err = f.store.CreateCarrier(ctx, model.Carrier{
		ID: "trans", Name: "TransExpress", BranchID: "1",
		CostPerKg: 2.5, PercentageOfValue: 0.8, MinFreight: 50,
	})
	require.NoError(t, err)

	var mu sync.Mutex
	f.svc = New(f.store, f.store, logger.NewTestLogger(t), f.metrics, Config{
		Location:    time.UTC,
		RecentLimit: 15,
		Now:         func() time.Time { return f.clock },
		NewID: func() string {
			mu.Lock()
			defer mu.Unlock()
			f.ids++
			return fmt.Sprintf("sim-%03d", f.ids)
		},
	})
	return f
}

func outcomeCount(f *fixture, outcome string) float64 {
	return testutil.ToFloat64(f.metrics.Simulations.WithLabelValues(outcome))
}

func TestSimulate_RecordsCheapestCarrier(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	out, err := f.svc.Simulate(ctx, pricing.Shipment{InvoiceValue: 1000, TotalWeight: 10, BranchID: "1"})
	require.NoError(t, err)

	require.Len(t, out.Results, 2)
	assert.Equal(t, "trans", out.Results[0].Carrier.ID)
	assert.InDelta(t, 50, out.Results[0].ChargedFreight, 1e-9)
	assert.InDelta(t, 60, out.Results[1].ChargedFreight, 1e-9)

	require.NotNil(t, out.Best)
	assert.Equal(t, "TransExpress", out.Best.Carrier.Name)

	require.NotNil(t, out.Entry)
	assert.Equal(t, history.Entry{
		ID:               "sim-001",
		Date:             f.clock,
		InvoiceValue:     1000,
		TotalWeight:      10,
		BestCarrierName:  "TransExpress",
		BestFreightValue: 50,
		BranchName:       "Matriz São Paulo",
	}, *out.Entry)

	log, err := f.svc.History(ctx)
	require.NoError(t, err)
	require.Len(t, log, 1)
	assert.Equal(t, *out.Entry, log[0])

	assert.Equal(t, 1.0, outcomeCount(f, metrics.OutcomeRecorded))
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.CarrierEvaluations))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.HistoryEntries))
}

func TestSimulate_NoEligibleCarriers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	out, err := f.svc.Simulate(ctx, pricing.Shipment{InvoiceValue: 1000, TotalWeight: 10, BranchID: "2"})
	require.NoError(t, err)

	assert.Empty(t, out.Results)
	assert.Nil(t, out.Best)
	assert.Nil(t, out.Entry)

	log, _ := f.svc.History(ctx)
	assert.Empty(t, log)
	assert.Equal(t, 1.0, outcomeCount(f, metrics.OutcomeNoCarriers))
}

func TestSimulate_InvalidShipment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, s := range []pricing.Shipment{
		{InvoiceValue: 0, TotalWeight: 10, BranchID: "1"},
		{InvoiceValue: 100, TotalWeight: -1, BranchID: "1"},
		{InvoiceValue: 100, TotalWeight: 1},
	} {
		_, err := f.svc.Simulate(ctx, s)
		assert.True(t, apperr.Is(err, apperr.ErrCodeInvalidShipmentInput), "shipment %+v: %v", s, err)
	}

	log, _ := f.svc.History(ctx)
	assert.Empty(t, log)
	assert.Equal(t, 3.0, outcomeCount(f, metrics.OutcomeInvalid))
}

func TestSimulate_UnknownBranchRecordsPlaceholderName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.store.CreateCarrier(ctx, model.Carrier{ID: "orphan", Name: "Sem Filial", BranchID: "ghost", MinFreight: 10})
	require.NoError(t, err)

	out, err := f.svc.Simulate(ctx, pricing.Shipment{InvoiceValue: 100, TotalWeight: 1, BranchID: "ghost"})
	require.NoError(t, err)
	require.NotNil(t, out.Entry)
	assert.Equal(t, history.NoBranchName, out.Entry.BranchName)
}

func TestSimulate_TiesKeepCatalogOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, id := range []string{"tie-a", "tie-b"} {
		_, err := f.store.CreateCarrier(ctx, model.Carrier{ID: id, Name: id, BranchID: "2", MinFreight: 40})
		require.NoError(t, err)
	}

	for i := 0; i < 20; i++ {
		out, err := f.svc.Simulate(ctx, pricing.Shipment{InvoiceValue: 100, TotalWeight: 1, BranchID: "2"})
		require.NoError(t, err)
		assert.Equal(t, "tie-a", out.Best.Carrier.ID)
	}
}

func TestSimulate_AppendFailureIsRetryable(t *testing.T) {
	f := newFixture(t)
	f.store.FailAppend = errors.New("disk full")

	_, err := f.svc.Simulate(context.Background(), pricing.Shipment{InvoiceValue: 1000, TotalWeight: 10, BranchID: "1"})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.ErrCodePersistenceFailed))
	assert.True(t, apperr.IsRetryable(err))
	assert.Equal(t, 1.0, outcomeCount(f, metrics.OutcomeFailed))
}

func TestSimulate_HistoryCappedAtFifty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var last Outcome
	for i := 0; i < history.MaxEntries+1; i++ {
		var err error
		last, err = f.svc.Simulate(ctx, pricing.Shipment{InvoiceValue: 1000, TotalWeight: 10, BranchID: "1"})
		require.NoError(t, err)
	}

	log, err := f.svc.History(ctx)
	require.NoError(t, err)
	require.Len(t, log, history.MaxEntries)
	assert.Equal(t, last.Entry.ID, log[0].ID)
	assert.Equal(t, "sim-002", log[history.MaxEntries-1].ID)
	assert.Equal(t, float64(history.MaxEntries), testutil.ToFloat64(f.metrics.HistoryEntries))
}

func TestSimulate_ConcurrentCallsAllRecorded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Simulate(ctx, pricing.Shipment{InvoiceValue: 1000, TotalWeight: 10, BranchID: "1"})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	log, _ := f.svc.History(ctx)
	require.Len(t, log, n)
	seen := make(map[string]bool, n)
	for _, e := range log {
		seen[e.ID] = true
	}
	assert.Len(t, seen, n)
}

func TestDashboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	simulate := func(at time.Time, invoice float64) {
		t.Helper()
		f.clock = at
		_, err := f.svc.Simulate(ctx, pricing.Shipment{InvoiceValue: invoice, TotalWeight: 10, BranchID: "1"})
		require.NoError(t, err)
	}
	simulate(time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC), 1000)
	simulate(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), 1000)
	simulate(time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC), 2000)

	all, err := f.svc.Dashboard(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "all", all.Period)
	assert.Equal(t, 2, all.BranchCount)
	assert.Equal(t, 2, all.CarrierCount)
	assert.Equal(t, 3, all.Summary.Simulations)
	assert.Equal(t, []string{"2024-03", "2024-01"}, all.Periods)
	assert.Len(t, all.Recent, 3)

	march, err := f.svc.Dashboard(ctx, "2024-03")
	require.NoError(t, err)
	assert.Equal(t, 2, march.Summary.Simulations)
	assert.InDelta(t, 3000, march.Summary.TotalInvoiceValue, 1e-9)
	// 2000 invoice: TransExpress max(25, 16, 50) = 50.
	assert.InDelta(t, 100, march.Summary.TotalFreightValue, 1e-9)
	assert.InDelta(t, 100.0/3000.0*100, march.Summary.AverageFreightRatio, 1e-9)
	assert.Equal(t, "sim-003", march.Recent[0].ID)

	empty, err := f.svc.Dashboard(ctx, "2023-07")
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Summary.Simulations)
	assert.Zero(t, empty.Summary.AverageFreightRatio)

	_, err = f.svc.Dashboard(ctx, "March")
	assert.True(t, apperr.Is(err, apperr.ErrCodeInvalidRequest))
}

func TestDashboard_RecentLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 20; i++ {
		_, err := f.svc.Simulate(ctx, pricing.Shipment{InvoiceValue: 1000, TotalWeight: 10, BranchID: "1"})
		require.NoError(t, err)
	}

	d, err := f.svc.Dashboard(ctx, "all")
	require.NoError(t, err)
	assert.Len(t, d.Recent, 15)
	assert.Equal(t, 20, d.Summary.Simulations)
}

func TestValidPeriod(t *testing.T) {
	assert.True(t, ValidPeriod("all"))
	assert.True(t, ValidPeriod(""))
	assert.True(t, ValidPeriod("2024-12"))
	assert.False(t, ValidPeriod("2024-13"))
	assert.False(t, ValidPeriod("2024-1"))
	assert.False(t, ValidPeriod("202401"))
}
