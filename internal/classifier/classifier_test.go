package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ColeMorton/trading-sub009/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected models.RequestKind
	}{
		{"bare ticker", "AAPL", models.KindTickerOnly},
		{"ticker with dash", "BTC-USD", models.KindTickerOnly},
		{"ticker with dot", "BRK.B", models.KindTickerOnly},
		{"multi ticker", "AAPL,MSFT", models.KindMultiTicker},
		{"multi ticker spaced", "AAPL, MSFT, GOOGL", models.KindMultiTicker},
		{"strategy", "TSLA_SMA_15_25", models.KindStrategySpec},
		{"strategy with signal", "TSLA_MACD_12_26_9", models.KindStrategySpec},
		{"strategy lowercase", "tsla_ema_5_20", models.KindStrategySpec},
		{"multi strategy", "TSLA_SMA_15_25,AAPL_EMA_5_20", models.KindMultiStrategySpec},
		{"position compact date", "TSLA_SMA_15_25_20250710", models.KindPosition},
		{"position dashed date", "TSLA_SMA_15_25_2025-07-10", models.KindPosition},
		{"position with signal", "TSLA_MACD_12_26_9_20250710", models.KindPosition},
		{"multi position", "TSLA_SMA_15_25_20250710,AAPL_EMA_5_20_20250711", models.KindMultiPosition},
		{"portfolio file", "risk_on.csv", models.KindPortfolioFile},
		{"portfolio file uppercase ext", "RISK_ON.CSV", models.KindPortfolioFile},
		{"multi portfolio", "risk_on,sector_rotation", models.KindMultiPortfolioFile},
		{"fallback to portfolio", "risk_on", models.KindPortfolioFile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.input))
		})
	}
}

// Anything ending in .csv is a portfolio reference no matter what the
// stem looks like.
func TestClassifyCSVPrecedence(t *testing.T) {
	for _, in := range []string{"AAPL.csv", "TSLA_SMA_15_25.csv", "risk_on.csv", "a.csv"} {
		assert.Equal(t, models.KindPortfolioFile, Classify(in), in)
	}
}

// A comma list of .csv references is a portfolio batch, never a ticker
// batch, even though the dot-segmented tokens fit the ticker shape.
func TestClassifyCSVListPrecedence(t *testing.T) {
	tests := []struct {
		input    string
		expected models.RequestKind
	}{
		{"a.csv,b.csv", models.KindMultiPortfolioFile},
		{"risk_on.csv, sector_rotation.csv", models.KindMultiPortfolioFile},
		{"AAPL,b.csv", models.KindMultiPortfolioFile},
		{"AAPL,MSFT", models.KindMultiTicker},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, Classify(tt.input), tt.input)
	}
}

func TestParseCSVListRoundTrip(t *testing.T) {
	req, err := Parse("a.csv, b.csv")
	require.NoError(t, err)
	assert.Equal(t, models.KindMultiPortfolioFile, req.Kind)
	assert.Equal(t, []string{"a.csv", "b.csv"}, req.Files)
	assert.NoError(t, Validate(req))
}

func TestParseTicker(t *testing.T) {
	req, err := Parse("BTC-USD")
	require.NoError(t, err)
	assert.Equal(t, models.KindTickerOnly, req.Kind)
	assert.Equal(t, "BTC-USD", req.Ticker)
}

func TestParseMultiTickerRoundTrip(t *testing.T) {
	req, err := Parse("a, b ,C")
	require.NoError(t, err)
	assert.Equal(t, models.KindMultiTicker, req.Kind)
	assert.Equal(t, []string{"A", "B", "C"}, req.Tickers)
}

func TestParseStrategy(t *testing.T) {
	req, err := Parse("TSLA_SMA_15_25")
	require.NoError(t, err)
	require.NotNil(t, req.Strategy)
	assert.Equal(t, "TSLA", req.Strategy.Ticker)
	assert.Equal(t, "SMA", req.Strategy.Strategy)
	assert.Equal(t, 15, req.Strategy.FastWindow)
	assert.Equal(t, 25, req.Strategy.SlowWindow)
	assert.Equal(t, 0, req.Strategy.SignalWindow)
	assert.Equal(t, "TSLA_SMA_15_25", req.Strategy.Key())
}

func TestParseStrategyNormalizesCase(t *testing.T) {
	req, err := Parse("tsla_macd_12_26_9")
	require.NoError(t, err)
	assert.Equal(t, "TSLA", req.Strategy.Ticker)
	assert.Equal(t, "MACD", req.Strategy.Strategy)
	assert.Equal(t, 9, req.Strategy.SignalWindow)
}

// Both date forms classify to the same position and normalize to one
// canonical string.
func TestParsePositionDateNormalization(t *testing.T) {
	compact, err := Parse("TSLA_SMA_15_25_20250710")
	require.NoError(t, err)
	dashed, err := Parse("TSLA_SMA_15_25_2025-07-10")
	require.NoError(t, err)

	assert.Equal(t, models.KindPosition, compact.Kind)
	assert.Equal(t, models.KindPosition, dashed.Kind)
	assert.Equal(t, "2025-07-10", compact.Strategy.EntryDate)
	assert.Equal(t, compact.Strategy, dashed.Strategy)
	assert.Equal(t, "TSLA_SMA_15_25_2025-07-10", compact.Strategy.Key())
}

func TestParseRejectsImpossibleDate(t *testing.T) {
	_, err := Parse("TSLA_SMA_15_25_20251399")
	require.Error(t, err)
	var pe *ParseError
	assert.ErrorAs(t, err, &pe)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantErr    bool
		constraint string
	}{
		{"valid strategy", "TSLA_SMA_15_25", false, ""},
		{"fast equals slow", "TSLA_SMA_25_25", true, "fast window < slow window"},
		{"fast above slow", "TSLA_SMA_30_25", true, "fast window < slow window"},
		{"valid multi", "AAPL,MSFT", false, ""},
		{"valid position", "TSLA_EMA_5_20_20250710", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := Parse(tt.input)
			require.NoError(t, err)
			err = Validate(req)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.constraint, ve.Constraint)
		})
	}
}

func TestValidateMultiRequiresTwoMembers(t *testing.T) {
	req := &models.Request{Kind: models.KindMultiTicker, Tickers: []string{"AAPL"}}
	err := Validate(req)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "multi requires >= 2 members", ve.Constraint)
}
