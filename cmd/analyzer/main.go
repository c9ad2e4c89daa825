package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ColeMorton/trading-sub009/internal/attribution"
	"github.com/ColeMorton/trading-sub009/internal/classifier"
	"github.com/ColeMorton/trading-sub009/internal/config"
	"github.com/ColeMorton/trading-sub009/internal/cost"
	"github.com/ColeMorton/trading-sub009/internal/dispatch"
	"github.com/ColeMorton/trading-sub009/internal/provider"
	"github.com/ColeMorton/trading-sub009/internal/scorer"
	"github.com/ColeMorton/trading-sub009/internal/stats"
	"github.com/ColeMorton/trading-sub009/models"
)

func main() {
	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	setupSignalHandling(cancel)

	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// 2. Configure logging
	setupLogging(cfg.LogLevel)
	log.Info().Msg("Starting trading analyzer")

	// 3. Print configuration
	printConfig(cfg)

	// 4. Parse the request identifier
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: analyzer <identifier>")
		os.Exit(2)
	}
	req, err := classifier.Parse(os.Args[1])
	if err != nil {
		log.Fatal().Err(err).Str("input", os.Args[1]).Msg("Unrecognized identifier")
	}
	if err := classifier.Validate(req); err != nil {
		log.Fatal().Err(err).Str("input", os.Args[1]).Msg("Invalid request")
	}
	log.Info().Str("kind", req.Kind.String()).Msg("Request classified")

	// 5. Build the analysis pipeline
	deps := buildDeps(cfg)
	analyzer := dispatch.New(req, deps)

	// 6. Run the analysis and print results
	results, err := analyzer.Analyze(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Analysis failed")
	}
	printResults(results)
}

// buildDeps wires the providers and engines into the dispatcher.
func buildDeps(cfg *config.Config) dispatch.Deps {
	prices := provider.NewPriceClient(provider.PriceClientOptions{
		BaseURL:        cfg.DataBaseURL,
		RequestTimeout: time.Duration(cfg.RequestTimeout) * time.Second,
		RequestsPerSec: cfg.RequestsPerSec,
	})
	rates := provider.NewRateProvider(nil)

	return dispatch.Deps{
		Prices:     prices,
		Volatility: provider.NewVolatilityProvider(prices),
		Volume:     provider.NewVolumeProvider(),
		Portfolio:  provider.NewCSVPortfolio(cfg.PortfolioDir),

		Stats:      stats.NewEngine(rates),
		Scorer:     scorer.New(loadCalibration(cfg.CalibrationFile)),
		Cost:       cost.New(cfg.CommissionBps),
		Attributor: attribution.New(),

		LookbackDays: cfg.LookbackDays,
		Benchmark:    cfg.Benchmark,
		DataSource:   "yahoo",
	}
}

func loadCalibration(path string) scorer.Calibration {
	cal, err := scorer.LoadCalibration(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Calibration file unusable, using defaults")
		return scorer.DefaultCalibration()
	}
	return cal
}

// setupSignalHandling configures signal handling for graceful shutdown
func setupSignalHandling(cancel context.CancelFunc) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		log.Info().Msg("Shutdown signal received, exiting...")
		cancel()
		os.Exit(0)
	}()
}

// setupLogging configures the logger
func setupLogging(logLevel string) {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log.Logger = log.Output(output)

	// Set log level from config
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log.Logger = log.Logger.Level(level)
}

// printConfig outputs the current configuration
func printConfig(cfg *config.Config) {
	log.Info().
		Str("Benchmark", cfg.Benchmark).
		Int("LookbackDays", cfg.LookbackDays).
		Int("RequestTimeout", cfg.RequestTimeout).
		Int("RequestsPerSec", cfg.RequestsPerSec).
		Float64("CommissionBps", cfg.CommissionBps).
		Str("PortfolioDir", cfg.PortfolioDir).
		Msg("Configuration loaded")
}

// printResults writes the analysis results to stdout as JSON.
func printResults(results map[string]*models.AnalysisResult) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		log.Error().Err(err).Msg("Failed to encode results")
	}
}
