package models

import "fmt"

// RequestKind discriminates the closed set of request shapes the
// classifier can produce.
type RequestKind int

const (
	KindTickerOnly RequestKind = iota
	KindMultiTicker
	KindStrategySpec
	KindMultiStrategySpec
	KindPosition
	KindMultiPosition
	KindPortfolioFile
	KindMultiPortfolioFile
)

func (k RequestKind) String() string {
	switch k {
	case KindTickerOnly:
		return "ticker"
	case KindMultiTicker:
		return "multi_ticker"
	case KindStrategySpec:
		return "strategy"
	case KindMultiStrategySpec:
		return "multi_strategy"
	case KindPosition:
		return "position"
	case KindMultiPosition:
		return "multi_position"
	case KindPortfolioFile:
		return "portfolio"
	case KindMultiPortfolioFile:
		return "multi_portfolio"
	}
	return "unknown"
}

// StrategySpec identifies one moving-average strategy, optionally pinned
// to an entry date (position form). SignalWindow is 0 when absent;
// EntryDate is "" for non-position specs, otherwise YYYY-MM-DD.
type StrategySpec struct {
	Ticker       string `json:"ticker"`
	Strategy     string `json:"strategy"` // SMA, EMA or MACD, upper-cased
	FastWindow   int    `json:"fast_window"`
	SlowWindow   int    `json:"slow_window"`
	SignalWindow int    `json:"signal_window,omitempty"`
	EntryDate    string `json:"entry_date,omitempty"`
}

// Key renders the canonical result key for the spec.
func (s StrategySpec) Key() string {
	key := fmt.Sprintf("%s_%s_%d_%d", s.Ticker, s.Strategy, s.FastWindow, s.SlowWindow)
	if s.SignalWindow > 0 {
		key += fmt.Sprintf("_%d", s.SignalWindow)
	}
	if s.EntryDate != "" {
		key += "_" + s.EntryDate
	}
	return key
}

// Request is the parsed form of one input identifier. Exactly the fields
// relevant to Kind are populated; the rest stay zero.
type Request struct {
	Kind RequestKind `json:"kind"`
	Raw  string      `json:"raw"`

	Ticker  string   `json:"ticker,omitempty"`
	Tickers []string `json:"tickers,omitempty"`

	Strategy   *StrategySpec  `json:"strategy,omitempty"`
	Strategies []StrategySpec `json:"strategies,omitempty"`

	Files []string `json:"files,omitempty"`
}

// Members reports how many singular analyses the request fans out to.
func (r *Request) Members() int {
	switch r.Kind {
	case KindMultiTicker:
		return len(r.Tickers)
	case KindMultiStrategySpec, KindMultiPosition:
		return len(r.Strategies)
	case KindMultiPortfolioFile:
		return len(r.Files)
	default:
		return 1
	}
}
