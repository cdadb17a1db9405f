// Package collector fetches historical candles from sources outside the
// database: the Yahoo Finance public chart API and local CSV files. Both
// sources produce the same candle type the engine consumes.
package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"quantlab/types"
)

var ErrNoData = errors.New("no data returned by source")

var yahooIntervals = map[types.Interval]string{
	types.Hour: "60m",
	types.Day:  "1d",
	types.Week: "1wk",
}

// YahooCollector pulls candles from the Yahoo Finance chart API.
type YahooCollector struct {
	Client    *http.Client
	BaseURL   string
	SymbolMap map[string]string // maps internal ticker to Yahoo symbol
}

// NewYahooCollector creates a Yahoo Finance collector. An optional proxy URL
// is applied to the transport.
func NewYahooCollector(proxyURL string) *YahooCollector {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &YahooCollector{
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		BaseURL: "https://query1.finance.yahoo.com",
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"SP500":  "^GSPC",
		},
	}
}

func (c *YahooCollector) Name() string { return "yahoo" }

func (c *YahooCollector) yahooSymbol(ticker string) string {
	if mapped, ok := c.SymbolMap[ticker]; ok {
		return mapped
	}
	return ticker
}

// yahooChart is the response structure from the Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []any `json:"open"`
					High   []any `json:"high"`
					Low    []any `json:"low"`
					Close  []any `json:"close"`
					Volume []any `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func toFloat(v any) float64 {
	if v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

// GetCandles fetches candles between start and end, sorted by timestamp.
// Null bars (holidays, halts) are skipped. An empty result is reported as
// ErrNoData.
func (c *YahooCollector) GetCandles(ctx context.Context, ticker string, interval types.Interval, start, end time.Time) ([]types.Candle, error) {
	yi, ok := yahooIntervals[interval]
	if !ok {
		return nil, fmt.Errorf("interval %s not supported by yahoo source", interval)
	}

	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&period1=%d&period2=%d",
		c.BaseURL, url.PathEscape(c.yahooSymbol(ticker)), yi, start.Unix(), end.Unix())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return nil, fmt.Errorf("ticker %s: %w", ticker, ErrNoData)
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("ticker %s: %w", ticker, ErrNoData)
	}
	quote := result.Indicators.Quote[0]
	if n := len(result.Timestamp); len(quote.Open) < n || len(quote.High) < n ||
		len(quote.Low) < n || len(quote.Close) < n || len(quote.Volume) < n {
		return nil, fmt.Errorf("yahoo: quote series shorter than timestamp series for %s", ticker)
	}

	candles := make([]types.Candle, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		o := toFloat(quote.Open[i])
		h := toFloat(quote.High[i])
		l := toFloat(quote.Low[i])
		cl := toFloat(quote.Close[i])
		if o == 0 && h == 0 && l == 0 && cl == 0 {
			continue // null bar
		}
		candles = append(candles, types.Candle{
			Ticker:    ticker,
			Open:      decimal.NewFromFloat(o),
			High:      decimal.NewFromFloat(h),
			Low:       decimal.NewFromFloat(l),
			Close:     decimal.NewFromFloat(cl),
			Volume:    decimal.NewFromFloat(toFloat(quote.Volume[i])),
			Interval:  interval,
			Timestamp: time.Unix(ts, 0).UTC(),
		})
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("ticker %s: %w", ticker, ErrNoData)
	}

	sort.Slice(candles, func(i, j int) bool { return candles[i].Timestamp.Before(candles[j].Timestamp) })
	return candles, nil
}
