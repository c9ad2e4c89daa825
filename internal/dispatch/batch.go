package dispatch

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ColeMorton/trading-sub009/models"
)

// member is one unit of a batched analysis: a canonical key plus the
// work producing its result.
type member struct {
	key string
	run func(ctx context.Context) (*models.AnalysisResult, error)
}

// fanOut runs all members concurrently and joins the whole set. Each
// member is its own failure domain: an error yields the synthetic
// neutral result for that key and never touches a sibling, so the batch
// call itself does not fail on member errors.
func fanOut(ctx context.Context, logger zerolog.Logger, members []member) map[string]*models.AnalysisResult {
	runID := uuid.NewString()
	batchLog := logger.With().Str("run_id", runID).Int("members", len(members)).Logger()
	batchLog.Info().Msg("starting batch analysis")

	results := make([]*models.AnalysisResult, len(members))
	var g errgroup.Group
	for i, m := range members {
		i, m := i, m
		g.Go(func() error {
			// A panicking member is contained the same way a failing
			// one is, instead of unwinding through Wait into siblings.
			defer func() {
				if p := recover(); p != nil {
					batchLog.Error().Interface("panic", p).Str("key", m.key).Msg("member panicked, substituting fallback")
					results[i] = fallbackResult()
				}
			}()
			result, err := m.run(ctx)
			if err != nil {
				batchLog.Warn().Err(err).Str("key", m.key).Msg("member failed, substituting fallback")
				result = fallbackResult()
			}
			results[i] = result
			return nil
		})
	}
	// Members never surface errors, so this is a pure join.
	_ = g.Wait()

	merged := make(map[string]*models.AnalysisResult, len(members))
	for i, m := range members {
		merged[m.key] = results[i]
	}
	batchLog.Info().Msg("batch analysis complete")
	return merged
}

type multiTickerAnalyzer struct {
	deps    Deps
	tickers []string
	logger  zerolog.Logger
}

func (a *multiTickerAnalyzer) Analyze(ctx context.Context) (map[string]*models.AnalysisResult, error) {
	members := make([]member, len(a.tickers))
	for i, ticker := range a.tickers {
		ticker := ticker
		members[i] = member{
			key: ticker + assetSuffix,
			run: func(ctx context.Context) (*models.AnalysisResult, error) {
				return a.deps.analyzeTicker(ctx, ticker)
			},
		}
	}
	return fanOut(ctx, a.logger, members), nil
}

type multiStrategyAnalyzer struct {
	deps   Deps
	specs  []models.StrategySpec
	logger zerolog.Logger
}

func (a *multiStrategyAnalyzer) Analyze(ctx context.Context) (map[string]*models.AnalysisResult, error) {
	members := make([]member, len(a.specs))
	for i, spec := range a.specs {
		spec := spec
		members[i] = member{
			key: spec.Key(),
			run: func(ctx context.Context) (*models.AnalysisResult, error) {
				return a.deps.analyzeStrategy(ctx, spec)
			},
		}
	}
	return fanOut(ctx, a.logger, members), nil
}

type multiPortfolioAnalyzer struct {
	deps   Deps
	files  []string
	logger zerolog.Logger
}

// Analyze resolves every referenced portfolio to its tickers, then fans
// out over the union. A file that fails to resolve contributes one
// fallback entry under its own name instead of failing the batch.
func (a *multiPortfolioAnalyzer) Analyze(ctx context.Context) (map[string]*models.AnalysisResult, error) {
	var members []member
	seen := make(map[string]bool)
	for _, file := range a.files {
		tickers, err := a.deps.Portfolio.Tickers(ctx, file)
		if err != nil {
			a.logger.Warn().Err(err).Str("file", file).Msg("portfolio unresolved, substituting fallback")
			members = append(members, member{
				key: file,
				run: func(ctx context.Context) (*models.AnalysisResult, error) {
					return nil, err
				},
			})
			continue
		}
		for _, ticker := range tickers {
			if seen[ticker] {
				continue
			}
			seen[ticker] = true
			ticker := ticker
			members = append(members, member{
				key: ticker + assetSuffix,
				run: func(ctx context.Context) (*models.AnalysisResult, error) {
					return a.deps.analyzeTicker(ctx, ticker)
				},
			})
		}
	}
	return fanOut(ctx, a.logger, members), nil
}
