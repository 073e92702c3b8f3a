package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/guregu/null/v5"

	"stocktracker/internal/model"
)

const defaultBaseURL = "https://query1.finance.yahoo.com"

// YahooClient fetches quotes, charts and fundamentals from the Yahoo
// Finance public endpoints.
type YahooClient struct {
	client  *http.Client
	baseURL string
}

func NewYahooClient() *YahooClient {
	return NewYahooClientWithBase(defaultBaseURL, &http.Client{Timeout: 15 * time.Second})
}

// NewYahooClientWithBase points the client at an alternate endpoint,
// used by tests against a local stub server.
func NewYahooClientWithBase(baseURL string, hc *http.Client) *YahooClient {
	return &YahooClient{client: hc, baseURL: strings.TrimRight(baseURL, "/")}
}

// yahooError is the inline error object both chart and quoteSummary
// responses carry.
type yahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *yahooError   `json:"error"`
	} `json:"chart"`
}

// chartResult keeps the OHLCV arrays as pointer slices: the upstream emits
// JSON null for sessions with no trade data, and a nil element must not be
// confused with a zero price.
type chartResult struct {
	Meta       chartMeta    `json:"meta"`
	Timestamp  []int64      `json:"timestamp"`
	Events     *chartEvents `json:"events"`
	Indicators struct {
		Quote []struct {
			Open   []*float64 `json:"open"`
			High   []*float64 `json:"high"`
			Low    []*float64 `json:"low"`
			Close  []*float64 `json:"close"`
			Volume []*int64   `json:"volume"`
		} `json:"quote"`
	} `json:"indicators"`
}

type chartMeta struct {
	Symbol               string     `json:"symbol"`
	Currency             string     `json:"currency"`
	RegularMarketPrice   null.Float `json:"regularMarketPrice"`
	PreviousClose        null.Float `json:"previousClose"`
	ChartPreviousClose   null.Float `json:"chartPreviousClose"`
	RegularMarketDayHigh null.Float `json:"regularMarketDayHigh"`
	RegularMarketDayLow  null.Float `json:"regularMarketDayLow"`
	RegularMarketVolume  int64      `json:"regularMarketVolume"`
	RegularMarketTime    int64      `json:"regularMarketTime"`
}

type chartEvents struct {
	Dividends map[string]struct {
		Amount float64 `json:"amount"`
		Date   int64   `json:"date"`
	} `json:"dividends"`
}

func (c *YahooClient) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return ErrNoData
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, truncate(body, 200))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("yahoo decode: %w", err)
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

func (c *YahooClient) fetchChart(ctx context.Context, symbol, interval, rng string, withDividends bool) (*chartResult, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&range=%s",
		c.baseURL, url.PathEscape(symbol), interval, rng)
	if withDividends {
		u += "&events=div"
	}

	var cr chartResponse
	if err := c.getJSON(ctx, u, &cr); err != nil {
		return nil, err
	}
	if cr.Chart.Error != nil {
		if cr.Chart.Error.Code == "Not Found" {
			return nil, ErrNoData
		}
		return nil, fmt.Errorf("yahoo api error: %s", cr.Chart.Error.Description)
	}
	if len(cr.Chart.Result) == 0 {
		return nil, ErrNoData
	}
	return &cr.Chart.Result[0], nil
}

// Quote builds the snapshot from chart metadata rather than the quote
// endpoint, which requires authentication cookies these days.
func (c *YahooClient) Quote(ctx context.Context, symbol string) (*model.Quote, error) {
	res, err := c.fetchChart(ctx, symbol, "1d", "1d", false)
	if err != nil {
		return nil, err
	}
	meta := res.Meta
	if !meta.RegularMarketPrice.Valid {
		return nil, ErrNoData
	}

	q := &model.Quote{
		Symbol:        strings.ToUpper(symbol),
		Price:         meta.RegularMarketPrice,
		PreviousClose: firstValid(meta.PreviousClose, meta.ChartPreviousClose),
		DayHigh:       meta.RegularMarketDayHigh,
		DayLow:        meta.RegularMarketDayLow,
		Volume:        meta.RegularMarketVolume,
		Timestamp:     time.Now().UTC(),
	}
	if meta.RegularMarketTime > 0 {
		q.Timestamp = time.Unix(meta.RegularMarketTime, 0).UTC()
	}
	if len(res.Indicators.Quote) > 0 {
		for _, o := range res.Indicators.Quote[0].Open {
			if o != nil {
				q.Open = null.FloatFrom(*o)
				break
			}
		}
	}
	q.DeriveChange()
	return q, nil
}

// DailyBars returns the daily series for rng, oldest first. Sessions with
// incomplete OHLC data (holidays, halts) are dropped.
func (c *YahooClient) DailyBars(ctx context.Context, symbol, rng string) (*model.BarSeries, error) {
	res, err := c.fetchChart(ctx, symbol, "1d", rng, false)
	if err != nil {
		return nil, err
	}
	if len(res.Timestamp) == 0 || len(res.Indicators.Quote) == 0 {
		return nil, ErrNoData
	}

	quote := res.Indicators.Quote[0]
	// The upstream arrays are parallel only by convention; a truncated
	// response may ship price arrays shorter than the timestamp list.
	n := len(quote.Close)
	for _, l := range []int{len(quote.Open), len(quote.High), len(quote.Low)} {
		if l < n {
			n = l
		}
	}
	bars := make([]model.Bar, 0, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		if i >= n {
			break
		}
		o, h, l, cl := quote.Open[i], quote.High[i], quote.Low[i], quote.Close[i]
		if o == nil || h == nil || l == nil || cl == nil {
			continue
		}
		var vol int64
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			vol = *quote.Volume[i]
		}
		bars = append(bars, model.Bar{
			Date:   time.Unix(ts, 0).UTC(),
			Open:   *o,
			High:   *h,
			Low:    *l,
			Close:  *cl,
			Volume: vol,
		})
	}
	if len(bars) == 0 {
		return nil, ErrNoData
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })

	return &model.BarSeries{
		Symbol: strings.ToUpper(symbol),
		Range:  rng,
		Bars:   bars,
	}, nil
}

// Dividends returns up to five years of dividend history, oldest first.
func (c *YahooClient) Dividends(ctx context.Context, symbol string) ([]model.DividendPayment, error) {
	res, err := c.fetchChart(ctx, symbol, "1mo", "5y", true)
	if err != nil {
		return nil, err
	}
	if res.Events == nil || len(res.Events.Dividends) == 0 {
		return nil, nil
	}

	payments := make([]model.DividendPayment, 0, len(res.Events.Dividends))
	for _, d := range res.Events.Dividends {
		payments = append(payments, model.DividendPayment{
			Date:   time.Unix(d.Date, 0).UTC(),
			Amount: d.Amount,
		})
	}
	sort.Slice(payments, func(i, j int) bool { return payments[i].Date.Before(payments[j].Date) })
	return payments, nil
}

func firstValid(vals ...null.Float) null.Float {
	for _, v := range vals {
		if v.Valid {
			return v
		}
	}
	return null.Float{}
}
