// Package dispatch maps a classified request to its analysis path. Each
// of the eight request shapes gets an Analyzer; batched shapes fan out
// over their members with independent failure domains and merge into one
// result map keyed canonically.
package dispatch

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ColeMorton/trading-sub009/internal/attribution"
	"github.com/ColeMorton/trading-sub009/internal/cost"
	"github.com/ColeMorton/trading-sub009/internal/scorer"
	"github.com/ColeMorton/trading-sub009/internal/stats"
	"github.com/ColeMorton/trading-sub009/models"
)

// assetSuffix is the canonical key suffix for plain ticker analyses.
const assetSuffix = "_ASSET_DISTRIBUTION"

// Analyzer is the capability every request shape resolves to.
type Analyzer interface {
	Analyze(ctx context.Context) (map[string]*models.AnalysisResult, error)
}

// Deps are the collaborators an analysis pipeline composes.
type Deps struct {
	Prices     models.CandleClient
	Volatility models.VolatilityClient
	Volume     models.VolumeClient
	Portfolio  models.PortfolioClient

	Stats      *stats.Engine
	Scorer     *scorer.Scorer
	Cost       *cost.Adjuster
	Attributor *attribution.Attributor

	LookbackDays int
	Benchmark    string
	DataSource   string
}

// New resolves the analyzer for a parsed request. The switch is
// exhaustive over the closed set of request kinds.
func New(req *models.Request, deps Deps) Analyzer {
	logger := log.With().Str("component", "dispatcher").Str("kind", req.Kind.String()).Logger()
	switch req.Kind {
	case models.KindTickerOnly:
		return &tickerAnalyzer{deps: deps, ticker: req.Ticker, logger: logger}
	case models.KindMultiTicker:
		return &multiTickerAnalyzer{deps: deps, tickers: req.Tickers, logger: logger}
	case models.KindStrategySpec:
		return &strategyAnalyzer{deps: deps, spec: *req.Strategy, logger: logger}
	case models.KindMultiStrategySpec:
		return &multiStrategyAnalyzer{deps: deps, specs: req.Strategies, logger: logger}
	case models.KindPosition:
		return &strategyAnalyzer{deps: deps, spec: *req.Strategy, logger: logger}
	case models.KindMultiPosition:
		return &multiStrategyAnalyzer{deps: deps, specs: req.Strategies, logger: logger}
	case models.KindPortfolioFile:
		return &portfolioAnalyzer{deps: deps, file: req.Files[0], logger: logger}
	case models.KindMultiPortfolioFile:
		return &multiPortfolioAnalyzer{deps: deps, files: req.Files, logger: logger}
	}
	// Unreachable with a classified request; keep the catch-all
	// behavior of treating strays as a portfolio reference.
	return &portfolioAnalyzer{deps: deps, file: req.Raw, logger: logger}
}

// analyzeTicker is the shared singular pipeline: fetch, compute stats,
// score, cost-adjust, attribute.
func (d Deps) analyzeTicker(ctx context.Context, ticker string) (*models.AnalysisResult, error) {
	result, _, err := d.runPipeline(ctx, ticker)
	return result, err
}

// runPipeline also hands back the fetched candles so the strategy path
// can overlay without a second fetch.
func (d Deps) runPipeline(ctx context.Context, ticker string) (*models.AnalysisResult, []models.Candle, error) {
	candles, err := d.Prices.GetHistory(ctx, ticker, d.LookbackDays)
	if err != nil {
		return nil, nil, err
	}

	var bench []models.Candle
	if d.Benchmark != "" && d.Benchmark != ticker {
		// A missing benchmark only degrades beta, never the analysis.
		bench, _ = d.Prices.GetHistory(ctx, d.Benchmark, d.LookbackDays)
	}

	vix, _ := d.Volatility.CurrentLevel(ctx)
	regime := scorer.DetectRegime(vix)

	ms := d.Stats.Compute(ctx, ticker, candles, bench, string(regime))
	if ms.SampleSize == 0 {
		return nil, nil, fmt.Errorf("no usable return series for %s", ticker)
	}

	vm := d.Volume.Metrics(ctx, ticker, candles)
	outcome := d.Scorer.Score(ms, vm, regime)

	est := d.Cost.Estimate(ticker, vm, ms.LastClose)
	signal, confidence, costNote := d.Cost.Adjust(ticker, outcome.Signal, outcome.Confidence, est)
	summary := d.Attributor.RecordPass(outcome.Factors)

	pValue := 1 - confidence
	if pValue < 0.01 {
		pValue = 0.01
	}

	result := &models.AnalysisResult{
		Signal:      signal,
		Confidence:  confidence,
		PValue:      pValue,
		Reasoning:   outcome.Reasoning + "; " + costNote,
		SampleSize:  ms.SampleSize,
		DataSource:  d.DataSource,
		Attribution: summary,
		Factors:     outcome.Factors,
		Metrics: map[string]float64{
			"overall_score":    outcome.Overall,
			"volatility_index": vix,
			"annualized_vol":   ms.AnnualizedVol,
			"sharpe_ratio":     ms.SharpeRatio,
			"max_drawdown":     ms.MaxDrawdown,
			"beta":             ms.Beta,
			"momentum_diff":    ms.MomentumDiff,
			"price_rank":       ms.PriceRank,
			"total_cost_bps":   est.TotalBps,
			"last_close":       ms.LastClose,
		},
	}
	return result, candles, nil
}

// fallbackResult is the synthetic neutral substituted for a failed batch
// member.
func fallbackResult() *models.AnalysisResult {
	return &models.AnalysisResult{
		Signal:     models.Hold,
		Confidence: 0.50,
		PValue:     0.50,
		Reasoning:  "fallback",
		DataSource: "fallback",
	}
}

type tickerAnalyzer struct {
	deps   Deps
	ticker string
	logger zerolog.Logger
}

func (a *tickerAnalyzer) Analyze(ctx context.Context) (map[string]*models.AnalysisResult, error) {
	result, err := a.deps.analyzeTicker(ctx, a.ticker)
	if err != nil {
		return nil, err
	}
	return map[string]*models.AnalysisResult{a.ticker + assetSuffix: result}, nil
}

type strategyAnalyzer struct {
	deps   Deps
	spec   models.StrategySpec
	logger zerolog.Logger
}

func (a *strategyAnalyzer) Analyze(ctx context.Context) (map[string]*models.AnalysisResult, error) {
	result, err := a.deps.analyzeStrategy(ctx, a.spec)
	if err != nil {
		return nil, err
	}
	return map[string]*models.AnalysisResult{a.spec.Key(): result}, nil
}

// analyzeStrategy layers the strategy overlay (and position holding
// metrics) on top of the singular pipeline.
func (d Deps) analyzeStrategy(ctx context.Context, spec models.StrategySpec) (*models.AnalysisResult, error) {
	result, candles, err := d.runPipeline(ctx, spec.Ticker)
	if err != nil {
		return nil, err
	}
	closes := stats.Closes(candles)

	for k, v := range strategyOverlay(closes, spec) {
		result.Metrics[k] = v
	}
	if spec.EntryDate != "" {
		for k, v := range holdingMetrics(candles, spec.EntryDate) {
			result.Metrics[k] = v
		}
	}
	return result, nil
}

type portfolioAnalyzer struct {
	deps   Deps
	file   string
	logger zerolog.Logger
}

func (a *portfolioAnalyzer) Analyze(ctx context.Context) (map[string]*models.AnalysisResult, error) {
	tickers, err := a.deps.Portfolio.Tickers(ctx, a.file)
	if err != nil {
		return nil, fmt.Errorf("resolving portfolio %s: %w", a.file, err)
	}
	a.logger.Info().Str("file", a.file).Int("tickers", len(tickers)).Msg("analyzing portfolio")
	multi := &multiTickerAnalyzer{deps: a.deps, tickers: tickers, logger: a.logger}
	return multi.Analyze(ctx)
}
