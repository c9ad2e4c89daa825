package provider

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// CSVPortfolio resolves a portfolio file reference to its ticker list.
// The file is a CSV whose first column (optionally headed "ticker" or
// "symbol") carries the tickers; aggregation and display of portfolio
// contents live outside this module.
type CSVPortfolio struct {
	// Dir is prepended to bare file references. Empty means the working
	// directory.
	Dir    string
	logger zerolog.Logger
}

// NewCSVPortfolio creates a loader rooted at dir.
func NewCSVPortfolio(dir string) *CSVPortfolio {
	return &CSVPortfolio{
		Dir:    dir,
		logger: log.With().Str("component", "portfolio_loader").Logger(),
	}
}

// Tickers reads the ticker column of the referenced file. A reference
// without the .csv extension has it appended.
func (p *CSVPortfolio) Tickers(_ context.Context, file string) ([]string, error) {
	name := file
	if !strings.HasSuffix(strings.ToLower(name), ".csv") {
		name += ".csv"
	}
	path := filepath.Join(p.Dir, name)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: portfolio %s", ErrDataUnavailable, file)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: portfolio %s is not valid CSV", ErrDataUnavailable, file)
	}

	var tickers []string
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell := strings.ToUpper(strings.TrimSpace(row[0]))
		if cell == "" {
			continue
		}
		if i == 0 && (cell == "TICKER" || cell == "SYMBOL") {
			continue
		}
		tickers = append(tickers, cell)
	}
	if len(tickers) == 0 {
		return nil, fmt.Errorf("%w: portfolio %s has no tickers", ErrDataUnavailable, file)
	}

	p.logger.Debug().Str("file", file).Int("tickers", len(tickers)).Msg("loaded portfolio")
	return tickers, nil
}
