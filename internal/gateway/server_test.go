package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/guregu/null/v5"

	"stocktracker/internal/metrics"
	"stocktracker/internal/model"
	"stocktracker/internal/provider"
	"stocktracker/internal/stock"
	"stocktracker/internal/store/sqlite"
	"stocktracker/internal/technical"
)

// ────────────────────────────────────────────────────────────
// Fixtures
// ────────────────────────────────────────────────────────────

// fakeSvc is a scriptable StockService.
type fakeSvc struct {
	price        func(symbol string) (*model.Quote, error)
	history      func(symbol, rng string) (*model.BarSeries, error)
	technical    func(symbol, rng string) (*model.IndicatorReport, error)
	fundamental  func(symbol string) (*model.FundamentalReport, error)
	profile      func(symbol string) (*model.CompanyProfile, error)
	trending     func() ([]model.TrendingStock, error)
	search       func(query string) ([]model.SearchResult, error)
	recentPrices func(symbol string, limit int) ([]sqlite.PricePoint, error)
}

func (f *fakeSvc) CurrentPrice(ctx context.Context, symbol string) (*model.Quote, error) {
	return f.price(symbol)
}

func (f *fakeSvc) History(ctx context.Context, symbol, rng string) (*model.BarSeries, error) {
	return f.history(symbol, rng)
}

func (f *fakeSvc) TechnicalReport(ctx context.Context, symbol, rng string) (*model.IndicatorReport, error) {
	return f.technical(symbol, rng)
}

func (f *fakeSvc) FundamentalReport(ctx context.Context, symbol string) (*model.FundamentalReport, error) {
	return f.fundamental(symbol)
}

func (f *fakeSvc) Profile(ctx context.Context, symbol string) (*model.CompanyProfile, error) {
	return f.profile(symbol)
}

func (f *fakeSvc) Trending(ctx context.Context) ([]model.TrendingStock, error) {
	return f.trending()
}

func (f *fakeSvc) Search(ctx context.Context, query string) ([]model.SearchResult, error) {
	return f.search(query)
}

func (f *fakeSvc) MarketStatus() model.MarketStatus {
	return model.MarketStatus{IsOpen: true, Status: "open", Timezone: "America/New_York"}
}

func (f *fakeSvc) RecentPrices(ctx context.Context, symbol string, limit int) ([]sqlite.PricePoint, error) {
	return f.recentPrices(symbol, limit)
}

var (
	metsOnce sync.Once
	testMets *metrics.Metrics
)

func testMetrics() *metrics.Metrics {
	metsOnce.Do(func() { testMets = metrics.NewMetrics() })
	return testMets
}

func newTestServer(t *testing.T, svc StockService) (*httptest.Server, *sqlite.Store) {
	t.Helper()
	store, err := sqlite.New(sqlite.Config{Path: filepath.Join(t.TempDir(), "gw.db")})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	quote := func(ctx context.Context, symbol string) (*model.Quote, error) {
		return svc.CurrentPrice(ctx, symbol)
	}
	hub := NewHub(ctx, quote, testMetrics())
	srv := httptest.NewServer(NewServer(svc, store, hub, metrics.NewHealthStatus()).Router())
	t.Cleanup(srv.Close)
	return srv, store
}

func get(t *testing.T, srv *httptest.Server, path string) (int, []byte) {
	t.Helper()
	resp, err := srv.Client().Get(srv.URL + path)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, body
}

func do(t *testing.T, srv *httptest.Server, method, path string, body []byte) (int, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, out
}

// ────────────────────────────────────────────────────────────
// Read endpoints
// ────────────────────────────────────────────────────────────

func TestPriceEndpoint(t *testing.T) {
	svc := &fakeSvc{price: func(symbol string) (*model.Quote, error) {
		return &model.Quote{Symbol: "AAPL", Price: null.FloatFrom(150), Timestamp: time.Now().UTC()}, nil
	}}
	srv, _ := newTestServer(t, svc)

	code, body := get(t, srv, "/api/stocks/AAPL/price")
	if code != http.StatusOK {
		t.Fatalf("status = %d, body %s", code, body)
	}
	var q model.Quote
	if err := json.Unmarshal(body, &q); err != nil {
		t.Fatal(err)
	}
	if q.Symbol != "AAPL" || q.Price.Float64 != 150 {
		t.Errorf("quote = %+v", q)
	}
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"invalid symbol", stock.ErrInvalidSymbol, http.StatusBadRequest},
		{"invalid range", stock.ErrInvalidRange, http.StatusBadRequest},
		{"no data", provider.ErrNoData, http.StatusNotFound},
		{"insufficient data", technical.ErrInsufficientData, http.StatusNotFound},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"internal", errors.New("redis exploded at 10.0.0.5"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		svc := &fakeSvc{price: func(symbol string) (*model.Quote, error) {
			return nil, tc.err
		}}
		srv, _ := newTestServer(t, svc)

		code, body := get(t, srv, "/api/stocks/AAPL/price")
		if code != tc.code {
			t.Errorf("%s: status = %d, want %d", tc.name, code, tc.code)
		}
		if tc.code >= 500 && strings.Contains(string(body), "10.0.0.5") {
			t.Errorf("%s: 5xx body leaks internals: %s", tc.name, body)
		}
	}
}

func TestHandlerPanic_Returns500(t *testing.T) {
	svc := &fakeSvc{price: func(symbol string) (*model.Quote, error) {
		panic("upstream decoder blew up")
	}}
	srv, _ := newTestServer(t, svc)

	// The recoverer turns a handler panic into a 500; the server and the
	// client connection both survive.
	code, _ := get(t, srv, "/api/stocks/AAPL/price")
	if code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", code)
	}

	// The next request on the same server still works.
	code, _ = get(t, srv, "/api/market/status")
	if code != http.StatusOK {
		t.Errorf("follow-up status = %d, want 200", code)
	}
}

func TestSearchEndpoint_MissingQuery(t *testing.T) {
	svc := &fakeSvc{search: func(q string) ([]model.SearchResult, error) {
		return []model.SearchResult{}, nil
	}}
	srv, _ := newTestServer(t, svc)

	code, _ := get(t, srv, "/api/stocks/search")
	if code != http.StatusBadRequest {
		t.Errorf("missing q: status = %d, want 400", code)
	}
	code, _ = get(t, srv, "/api/stocks/search?q=apple")
	if code != http.StatusOK {
		t.Errorf("with q: status = %d, want 200", code)
	}
}

func TestMarketStatusEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, &fakeSvc{})
	code, body := get(t, srv, "/api/market/status")
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	var st model.MarketStatus
	if err := json.Unmarshal(body, &st); err != nil {
		t.Fatal(err)
	}
	if !st.IsOpen || st.Timezone != "America/New_York" {
		t.Errorf("status = %+v", st)
	}
}

func TestRecordedEndpoint_EmptyIsArray(t *testing.T) {
	svc := &fakeSvc{recentPrices: func(symbol string, limit int) ([]sqlite.PricePoint, error) {
		return nil, nil
	}}
	srv, _ := newTestServer(t, svc)

	code, body := get(t, srv, "/api/stocks/AAPL/recorded")
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if strings.TrimSpace(string(body)) != "[]" {
		t.Errorf("body = %s, want JSON array", body)
	}
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t, &fakeSvc{})
	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/api/stocks/AAPL/price", nil)
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("preflight status = %d", resp.StatusCode)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header")
	}
}

// ────────────────────────────────────────────────────────────
// Watchlist
// ────────────────────────────────────────────────────────────

func TestWatchlistFlow(t *testing.T) {
	srv, _ := newTestServer(t, &fakeSvc{})

	code, body := do(t, srv, http.MethodPost, "/api/watchlist/aapl", nil)
	if code != http.StatusCreated {
		t.Fatalf("add: status = %d, body %s", code, body)
	}
	var entry model.WatchlistEntry
	json.Unmarshal(body, &entry)
	if entry.Symbol != "AAPL" {
		t.Errorf("entry = %+v, symbol should be normalized", entry)
	}

	code, _ = do(t, srv, http.MethodPost, "/api/watchlist/AAPL", nil)
	if code != http.StatusConflict {
		t.Errorf("duplicate add: status = %d, want 409", code)
	}

	code, body = get(t, srv, "/api/watchlist/")
	if code != http.StatusOK {
		t.Fatalf("list: status = %d", code)
	}
	var entries []model.WatchlistEntry
	json.Unmarshal(body, &entries)
	if len(entries) != 1 {
		t.Errorf("entries = %+v", entries)
	}

	code, _ = do(t, srv, http.MethodDelete, "/api/watchlist/AAPL", nil)
	if code != http.StatusOK {
		t.Errorf("remove: status = %d", code)
	}
	code, _ = do(t, srv, http.MethodDelete, "/api/watchlist/AAPL", nil)
	if code != http.StatusNotFound {
		t.Errorf("remove missing: status = %d, want 404", code)
	}
}

// ────────────────────────────────────────────────────────────
// Alerts
// ────────────────────────────────────────────────────────────

func TestAlertFlow(t *testing.T) {
	srv, _ := newTestServer(t, &fakeSvc{})

	payload := []byte(`{"symbol":"aapl","alert_type":"price_above","target_value":200}`)
	code, body := do(t, srv, http.MethodPost, "/api/alerts/", payload)
	if code != http.StatusCreated {
		t.Fatalf("create: status = %d, body %s", code, body)
	}
	var alert model.Alert
	json.Unmarshal(body, &alert)
	if alert.Symbol != "AAPL" || alert.Type != model.AlertPriceAbove || !alert.Active {
		t.Errorf("alert = %+v", alert)
	}

	code, body = get(t, srv, "/api/alerts/")
	if code != http.StatusOK {
		t.Fatalf("list: status = %d", code)
	}
	var alerts []model.Alert
	json.Unmarshal(body, &alerts)
	if len(alerts) != 1 {
		t.Errorf("alerts = %+v", alerts)
	}

	code, _ = do(t, srv, http.MethodDelete, "/api/alerts/1", nil)
	if code != http.StatusOK {
		t.Errorf("delete: status = %d", code)
	}
	code, _ = do(t, srv, http.MethodDelete, "/api/alerts/1", nil)
	if code != http.StatusNotFound {
		t.Errorf("delete missing: status = %d, want 404", code)
	}
	code, _ = do(t, srv, http.MethodDelete, "/api/alerts/not-a-number", nil)
	if code != http.StatusBadRequest {
		t.Errorf("bad id: status = %d, want 400", code)
	}
}

func TestAlertCreate_Validation(t *testing.T) {
	srv, _ := newTestServer(t, &fakeSvc{})

	cases := []struct {
		name    string
		payload string
	}{
		{"bad json", `{not json`},
		{"bad type", `{"symbol":"AAPL","alert_type":"price_crossed","target_value":200}`},
		{"zero target", `{"symbol":"AAPL","alert_type":"price_above","target_value":0}`},
		{"negative target", `{"symbol":"AAPL","alert_type":"price_below","target_value":-5}`},
		{"bad symbol", `{"symbol":"not a symbol","alert_type":"price_above","target_value":200}`},
	}
	for _, tc := range cases {
		code, _ := do(t, srv, http.MethodPost, "/api/alerts/", []byte(tc.payload))
		if code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", tc.name, code)
		}
	}
}
