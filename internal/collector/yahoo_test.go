package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quantlab/types"
)

const chartResponse = `{
  "chart": {
    "result": [{
      "timestamp": [1672617600, 1672704000, 1672790400],
      "indicators": {
        "quote": [{
          "open":   [100.5, null, 102.0],
          "high":   [101.0, null, 103.5],
          "low":    [99.0,  null, 101.5],
          "close":  [100.8, null, 103.0],
          "volume": [1000,  null, 1200]
        }]
      }
    }],
    "error": null
  }
}`

func TestYahooCollector_GetCandles(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path + "?" + r.URL.RawQuery
		w.Write([]byte(chartResponse))
	}))
	defer srv.Close()

	c := NewYahooCollector("")
	c.BaseURL = srv.URL

	start := time.Unix(1672531200, 0)
	end := time.Unix(1672876800, 0)
	candles, err := c.GetCandles(context.Background(), "ASML", types.Day, start, end)
	require.NoError(t, err)

	// The null middle bar is dropped.
	require.Len(t, candles, 2)
	assert.Equal(t, "ASML", candles[0].Ticker)
	assert.Equal(t, types.Day, candles[0].Interval)
	assert.Equal(t, "100.8", candles[0].Close.String())
	assert.Equal(t, "103", candles[1].Close.String())
	assert.True(t, candles[0].Timestamp.Before(candles[1].Timestamp))

	assert.Contains(t, gotPath, "/v8/finance/chart/ASML")
	assert.Contains(t, gotPath, "interval=1d")
	assert.Contains(t, gotPath, "period1=1672531200")
}

func TestYahooCollector_SymbolMapping(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(chartResponse))
	}))
	defer srv.Close()

	c := NewYahooCollector("")
	c.BaseURL = srv.URL

	_, err := c.GetCandles(context.Background(), "SPX500", types.Day, time.Unix(0, 0), time.Now())
	require.NoError(t, err)
	assert.Contains(t, gotPath, "^GSPC")
}

func TestYahooCollector_EmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":[],"error":null}}`))
	}))
	defer srv.Close()

	c := NewYahooCollector("")
	c.BaseURL = srv.URL

	_, err := c.GetCandles(context.Background(), "NOPE", types.Day, time.Unix(0, 0), time.Now())
	assert.ErrorIs(t, err, ErrNoData)
}

func TestYahooCollector_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`))
	}))
	defer srv.Close()

	c := NewYahooCollector("")
	c.BaseURL = srv.URL

	_, err := c.GetCandles(context.Background(), "NOPE", types.Day, time.Unix(0, 0), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No data found")
}

func TestYahooCollector_TruncatedQuoteSeries(t *testing.T) {
	// Three timestamps but only two quote entries: the response is
	// malformed and must be rejected, not indexed past the end.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
		  "chart": {
		    "result": [{
		      "timestamp": [1672617600, 1672704000, 1672790400],
		      "indicators": {
		        "quote": [{
		          "open":   [100.5, 101.0],
		          "high":   [101.0, 101.5],
		          "low":    [99.0,  100.0],
		          "close":  [100.8, 101.2],
		          "volume": [1000,  1100]
		        }]
		      }
		    }],
		    "error": null
		  }
		}`))
	}))
	defer srv.Close()

	c := NewYahooCollector("")
	c.BaseURL = srv.URL

	_, err := c.GetCandles(context.Background(), "ASML", types.Day, time.Unix(0, 0), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quote series")
}

func TestYahooCollector_UnsupportedInterval(t *testing.T) {
	c := NewYahooCollector("")
	_, err := c.GetCandles(context.Background(), "ASML", types.Interval("5"), time.Unix(0, 0), time.Now())
	assert.Error(t, err)
}
