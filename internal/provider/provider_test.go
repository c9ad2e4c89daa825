package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ColeMorton/trading-sub009/models"
)

func TestRateProviderCachesWithinTTL(t *testing.T) {
	calls := 0
	p := NewRateProvider(func(context.Context) (float64, error) {
		calls++
		return 0.031, nil
	})
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return now }

	first := p.CurrentRate(context.Background(), "normal")
	assert.Equal(t, 0.031, first.Rate)
	assert.False(t, first.IsFallback)
	assert.Equal(t, "live", first.Source)

	// Still fresh five hours later.
	now = now.Add(5 * time.Hour)
	p.CurrentRate(context.Background(), "normal")
	assert.Equal(t, 1, calls)

	// Stale after the six-hour TTL.
	now = now.Add(2 * time.Hour)
	p.CurrentRate(context.Background(), "normal")
	assert.Equal(t, 2, calls)
}

func TestRateProviderTieredFallback(t *testing.T) {
	p := NewRateProvider(func(context.Context) (float64, error) {
		return 0, errors.New("source down")
	})

	tests := []struct {
		regime string
		rate   float64
	}{
		{"normal", 0.02},
		{"very_low", 0.02},
		{"high", 0.025},
		{"crisis", 0.01},
	}
	for _, tt := range tests {
		got := p.CurrentRate(context.Background(), tt.regime)
		assert.True(t, got.IsFallback, tt.regime)
		assert.Equal(t, tt.rate, got.Rate, tt.regime)
	}
}

func TestRateProviderNilFetcher(t *testing.T) {
	p := NewRateProvider(nil)
	got := p.CurrentRate(context.Background(), "normal")
	assert.True(t, got.IsFallback)
	assert.Equal(t, 0.02, got.Rate)
}

func volumeCandles(n int, vol int64, up bool) []models.Candle {
	out := make([]models.Candle, n)
	for i := range out {
		open, close := 100.0, 101.0
		if !up {
			open, close = 101.0, 100.0
		}
		out[i] = models.Candle{Open: open, Close: close, Volume: vol}
	}
	return out
}

func TestVolumeMetrics(t *testing.T) {
	p := NewVolumeProvider()
	vm := p.Metrics(context.Background(), "AAPL", volumeCandles(30, 10_000_000, true))

	// 20-day window of 10M shares near $101.
	assert.InDelta(t, 1.01e9, vm.AvgDollarVolume, 2e7)
	assert.InDelta(t, 1.0, vm.RelativeVolume, 1e-9)
	assert.Equal(t, 95.0, vm.LiquidityScore)
	assert.Equal(t, 1.0, vm.UpDownRatio)
}

func TestVolumeMetricsNeutralWithoutVolume(t *testing.T) {
	p := NewVolumeProvider()
	vm := p.Metrics(context.Background(), "FX", volumeCandles(30, 0, true))
	assert.Equal(t, 50.0, vm.LiquidityScore)
	assert.Equal(t, 0.5, vm.UpDownRatio)
	assert.Equal(t, 1.0, vm.RelativeVolume)
}

func TestPriceClientParsesChart(t *testing.T) {
	payload := `{"chart":{"result":[{"timestamp":[1735689600,1735776000,1735862400],
		"indicators":{"quote":[{"open":[10,11,12],"high":[10.5,11.5,12.5],
		"low":[9.5,10.5,11.5],"close":[10.2,11.2,12.2],"volume":[1000,2000,3000]}]}}],"error":null}}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	c := NewPriceClient(PriceClientOptions{BaseURL: srv.URL, RequestsPerSec: 100})
	candles, err := c.GetHistory(context.Background(), "TEST", 3)
	require.NoError(t, err)
	require.Len(t, candles, 3)
	assert.Equal(t, 10.2, candles[0].Close)
	assert.Equal(t, 12.2, candles[2].Close)
	assert.Equal(t, int64(3000), candles[2].Volume)
	assert.True(t, candles[0].Datetime < candles[2].Datetime)
}

func TestPriceClientDataUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":[],"error":{"code":"Not Found","description":"no data"}}}`))
	}))
	defer srv.Close()

	c := NewPriceClient(PriceClientOptions{BaseURL: srv.URL, RequestsPerSec: 100})
	_, err := c.GetHistory(context.Background(), "NOPE", 30)
	assert.ErrorIs(t, err, ErrDataUnavailable)
}

func TestCSVPortfolioTickers(t *testing.T) {
	dir := t.TempDir()
	content := "ticker\naapl\nMSFT\n\ngoogl\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "risk_on.csv"), []byte(content), 0o644))

	p := NewCSVPortfolio(dir)
	tickers, err := p.Tickers(context.Background(), "risk_on.csv")
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT", "GOOGL"}, tickers)

	// Extension-less references resolve to the same file.
	tickers, err = p.Tickers(context.Background(), "risk_on")
	require.NoError(t, err)
	assert.Len(t, tickers, 3)
}

func TestCSVPortfolioMissingFile(t *testing.T) {
	p := NewCSVPortfolio(t.TempDir())
	_, err := p.Tickers(context.Background(), "ghost.csv")
	assert.ErrorIs(t, err, ErrDataUnavailable)
}
