package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/guregu/null/v5"

	"stocktracker/internal/metrics"
	"stocktracker/internal/model"
)

// The default Prometheus registry rejects duplicate registration, so the
// test binary builds its Metrics once.
var (
	metsOnce sync.Once
	testMets *metrics.Metrics
)

func testMetrics() *metrics.Metrics {
	metsOnce.Do(func() { testMets = metrics.NewMetrics() })
	return testMets
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(Config{Path: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// ────────────────────────────────────────────────────────────
// Watchlist
// ────────────────────────────────────────────────────────────

func TestWatchlist_AddListRemove(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	e, err := s.AddToWatchlist(ctx, "AAPL")
	if err != nil {
		t.Fatal(err)
	}
	if e.ID == 0 || e.Symbol != "AAPL" || e.AddedAt.IsZero() {
		t.Errorf("entry = %+v", e)
	}
	if _, err := s.AddToWatchlist(ctx, "MSFT"); err != nil {
		t.Fatal(err)
	}

	entries, err := s.Watchlist(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	// Oldest first; same-second inserts tie-break on id.
	if entries[0].Symbol != "AAPL" || entries[1].Symbol != "MSFT" {
		t.Errorf("order = %s, %s", entries[0].Symbol, entries[1].Symbol)
	}

	if err := s.RemoveFromWatchlist(ctx, "AAPL"); err != nil {
		t.Fatal(err)
	}
	entries, _ = s.Watchlist(ctx)
	if len(entries) != 1 || entries[0].Symbol != "MSFT" {
		t.Errorf("after remove: %+v", entries)
	}
}

func TestWatchlist_DuplicateSymbol(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.AddToWatchlist(ctx, "AAPL"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddToWatchlist(ctx, "AAPL"); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate add: err = %v, want ErrDuplicate", err)
	}
	// The duplicate must not have created a second row.
	entries, _ := s.Watchlist(ctx)
	if len(entries) != 1 {
		t.Errorf("entries = %d, want 1", len(entries))
	}
}

func TestWatchlist_RemoveMissing(t *testing.T) {
	s := newTestStore(t)
	if err := s.RemoveFromWatchlist(context.Background(), "NOPE"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("err = %v, want sql.ErrNoRows", err)
	}
}

func TestWatchlist_EmptyIsNotNil(t *testing.T) {
	s := newTestStore(t)
	entries, err := s.Watchlist(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if entries == nil {
		t.Error("empty watchlist should be an empty slice, not nil")
	}
}

// ────────────────────────────────────────────────────────────
// Alerts
// ────────────────────────────────────────────────────────────

func TestAlerts_Lifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a1, err := s.CreateAlert(ctx, "AAPL", model.AlertPriceAbove, 200)
	if err != nil {
		t.Fatal(err)
	}
	a2, err := s.CreateAlert(ctx, "MSFT", model.AlertPriceBelow, 300)
	if err != nil {
		t.Fatal(err)
	}
	if !a1.Active || a1.TriggeredAt != nil {
		t.Errorf("new alert should be active and untriggered: %+v", a1)
	}

	all, err := s.Alerts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || all[0].ID != a2.ID {
		t.Errorf("Alerts should be newest first: %+v", all)
	}

	active, err := s.ActiveAlerts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 2 {
		t.Fatalf("active = %d, want 2", len(active))
	}

	firedAt := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	if err := s.MarkTriggered(ctx, a1.ID, firedAt); err != nil {
		t.Fatal(err)
	}

	active, _ = s.ActiveAlerts(ctx)
	if len(active) != 1 || active[0].ID != a2.ID {
		t.Errorf("triggered alert should leave the active set: %+v", active)
	}

	all, _ = s.Alerts(ctx)
	for _, a := range all {
		if a.ID != a1.ID {
			continue
		}
		if a.Active {
			t.Error("triggered alert should be inactive")
		}
		if a.TriggeredAt == nil || !a.TriggeredAt.Equal(firedAt) {
			t.Errorf("triggered_at = %v, want %v", a.TriggeredAt, firedAt)
		}
	}

	if err := s.DeleteAlert(ctx, a2.ID); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteAlert(ctx, a2.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("delete missing: err = %v, want sql.ErrNoRows", err)
	}
}

// ────────────────────────────────────────────────────────────
// Price history
// ────────────────────────────────────────────────────────────

func quoteAt(symbol string, price float64, ts time.Time) model.Quote {
	return model.Quote{
		Symbol:    symbol,
		Price:     null.FloatFrom(price),
		Volume:    1000,
		Timestamp: ts,
	}
}

func TestRecentPrices_NewestFirstWithLimit(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	batch := []model.Quote{
		quoteAt("AAPL", 150, base),
		quoteAt("AAPL", 151, base.Add(time.Minute)),
		quoteAt("AAPL", 152, base.Add(2*time.Minute)),
		quoteAt("MSFT", 300, base),
	}
	if err := s.insertBatch(batch); err != nil {
		t.Fatal(err)
	}

	points, err := s.RecentPrices(context.Background(), "AAPL", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 2 {
		t.Fatalf("points = %d, want 2", len(points))
	}
	if points[0].Price != 152 || points[1].Price != 151 {
		t.Errorf("order = %v, %v, want newest first", points[0].Price, points[1].Price)
	}
}

func TestInsertBatch_ReplacesSameObservation(t *testing.T) {
	s := newTestStore(t)
	ts := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	if err := s.insertBatch([]model.Quote{quoteAt("AAPL", 150, ts)}); err != nil {
		t.Fatal(err)
	}
	if err := s.insertBatch([]model.Quote{quoteAt("AAPL", 150.5, ts)}); err != nil {
		t.Fatal(err)
	}

	points, _ := s.RecentPrices(context.Background(), "AAPL", 10)
	if len(points) != 1 {
		t.Fatalf("points = %d, want 1 after replace", len(points))
	}
	if points[0].Price != 150.5 {
		t.Errorf("price = %v, want the replacing value", points[0].Price)
	}
}

func TestRunPriceRecorder_FlushesOnClose(t *testing.T) {
	s := newTestStore(t)
	ch := make(chan model.Quote, 8)
	done := make(chan struct{})

	go func() {
		s.RunPriceRecorder(context.Background(), ch, testMetrics())
		close(done)
	}()

	base := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	ch <- quoteAt("AAPL", 150, base)
	ch <- quoteAt("AAPL", 151, base.Add(time.Minute))
	// A quote without a price must be skipped, not stored as zero.
	ch <- model.Quote{Symbol: "AAPL", Timestamp: base.Add(2 * time.Minute)}
	close(ch)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("recorder did not stop after channel close")
	}

	points, err := s.RecentPrices(context.Background(), "AAPL", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 2 {
		t.Fatalf("points = %d, want 2 (invalid quote skipped)", len(points))
	}
}

// ────────────────────────────────────────────────────────────
// Company profiles
// ────────────────────────────────────────────────────────────

func TestProfile_UpsertAndRead(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := model.CompanyProfile{
		Symbol:      "AAPL",
		CompanyName: "Apple Inc.",
		Sector:      null.StringFrom("Technology"),
		MarketCap:   null.FloatFrom(3.0e12),
		PERatio:     null.FloatFrom(25),
		Employees:   null.IntFrom(160000),
	}
	if err := s.UpsertProfile(ctx, p); err != nil {
		t.Fatal(err)
	}

	got, err := s.Profile(ctx, "AAPL")
	if err != nil {
		t.Fatal(err)
	}
	if got.CompanyName != "Apple Inc." || got.Sector.ValueOrZero() != "Technology" {
		t.Errorf("profile = %+v", got)
	}
	if got.Employees.Int64 != 160000 {
		t.Errorf("employees = %v", got.Employees)
	}
	// Absent fields come back null, not zero.
	if got.Beta.Valid || got.Industry.Valid {
		t.Errorf("absent fields should be null: beta=%v industry=%v", got.Beta, got.Industry)
	}

	// Second upsert for the same symbol replaces the row.
	p.PERatio = null.FloatFrom(27.5)
	if err := s.UpsertProfile(ctx, p); err != nil {
		t.Fatal(err)
	}
	got, err = s.Profile(ctx, "AAPL")
	if err != nil {
		t.Fatal(err)
	}
	if got.PERatio.Float64 != 27.5 {
		t.Errorf("pe after upsert = %v, want 27.5", got.PERatio)
	}
}

func TestProfile_MissingSymbol(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Profile(context.Background(), "ZZZZ"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("err = %v, want sql.ErrNoRows", err)
	}
}
