// Package classifier turns a free-form request identifier into one of the
// eight typed request shapes. Classification is an ordered list of
// pattern/constructor pairs; the first matching rule wins and the final
// rule is a catch-all, so every input classifies to something.
package classifier

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ColeMorton/trading-sub009/models"
)

var (
	// Bare ticker: letters/digits with optional dot or dash segments,
	// never an underscore ("BTC-USD", "BRK.B", "AAPL").
	tickerRe = regexp.MustCompile(`^[A-Za-z0-9]+(?:[.\-][A-Za-z0-9]+)*$`)

	// Portfolio file reference: any bare name ending in .csv.
	csvRe = regexp.MustCompile(`(?i)^[A-Za-z0-9._\-]+\.csv$`)

	// Strategy spec: TICKER_STRATEGY_FAST_SLOW with an optional signal
	// window (MACD style).
	strategyRe = regexp.MustCompile(`(?i)^([A-Za-z0-9.\-]+)_(SMA|EMA|MACD)_(\d+)_(\d+)(?:_(\d+))?$`)

	// Position identifier: a strategy spec with a trailing entry date,
	// either YYYYMMDD or YYYY-MM-DD.
	positionRe = regexp.MustCompile(`(?i)^([A-Za-z0-9.\-]+)_(SMA|EMA|MACD)_(\d+)_(\d+)(?:_(\d+))?_(\d{8}|\d{4}-\d{2}-\d{2})$`)
)

// AllowedStrategies is the closed set of strategy types the grammar accepts.
var AllowedStrategies = map[string]bool{"SMA": true, "EMA": true, "MACD": true}

// ParseError reports an input that classified but could not be
// structurally decomposed. With the catch-all default in place it is
// practically unreachable outside malformed dates.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %q: %s", e.Input, e.Reason)
}

// ValidationError reports a structurally valid request that violates a
// domain constraint.
type ValidationError struct {
	Constraint string
	Detail     string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed (%s): %s", e.Constraint, e.Detail)
}

// rule is one pattern/constructor pair in the precedence order.
type rule struct {
	kind  models.RequestKind
	match func(input string, parts []string) bool
}

// rules is the documented disambiguation policy. A bare name could look
// like either a portfolio reference or a ticker; the .csv suffix is the
// only discriminator promoted above the ticker and strategy rules.
var rules = []rule{
	{models.KindPortfolioFile, func(in string, _ []string) bool {
		return csvRe.MatchString(in)
	}},
	{models.KindMultiPortfolioFile, func(_ string, parts []string) bool {
		if len(parts) < 2 {
			return false
		}
		fileLike := false
		for _, p := range parts {
			if csvRe.MatchString(p) {
				fileLike = true
				continue
			}
			if strings.Contains(p, ".") {
				return false
			}
			if strategyRe.MatchString(p) || positionRe.MatchString(p) {
				return false
			}
			if strings.Contains(p, "_") {
				fileLike = true
			} else if !tickerRe.MatchString(p) {
				return false
			}
		}
		return fileLike
	}},
	{models.KindMultiPosition, func(_ string, parts []string) bool {
		return len(parts) >= 2 && allMatch(parts, positionRe)
	}},
	{models.KindPosition, func(in string, parts []string) bool {
		return len(parts) == 1 && positionRe.MatchString(in)
	}},
	{models.KindMultiStrategySpec, func(_ string, parts []string) bool {
		return len(parts) >= 2 && allMatch(parts, strategyRe)
	}},
	{models.KindStrategySpec, func(in string, parts []string) bool {
		return len(parts) == 1 && strategyRe.MatchString(in)
	}},
	{models.KindMultiTicker, func(_ string, parts []string) bool {
		// .csv tokens are file references, never tickers, even though
		// they fit the dot-segmented ticker shape.
		return len(parts) >= 2 && allMatch(parts, tickerRe) && !anyCSV(parts)
	}},
	{models.KindTickerOnly, func(in string, parts []string) bool {
		return len(parts) == 1 && tickerRe.MatchString(in)
	}},
}

func anyCSV(parts []string) bool {
	for _, p := range parts {
		if csvRe.MatchString(p) {
			return true
		}
	}
	return false
}

func allMatch(parts []string, re *regexp.Regexp) bool {
	for _, p := range parts {
		if !re.MatchString(p) {
			return false
		}
	}
	return true
}

func splitList(input string) []string {
	raw := strings.Split(input, ",")
	parts := make([]string, 0, len(raw))
	for _, p := range raw {
		parts = append(parts, strings.TrimSpace(p))
	}
	return parts
}

// Classify resolves the request kind for input. Unclassifiable inputs
// fall back to a portfolio file reference, the backward-compatible
// default.
func Classify(input string) models.RequestKind {
	in := strings.TrimSpace(input)
	parts := splitList(in)
	for _, r := range rules {
		if r.match(in, parts) {
			return r.kind
		}
	}
	return models.KindPortfolioFile
}

// Parse classifies input and decomposes it into a typed Request.
func Parse(input string) (*models.Request, error) {
	in := strings.TrimSpace(input)
	kind := Classify(in)
	parts := splitList(in)

	req := &models.Request{Kind: kind, Raw: in}
	switch kind {
	case models.KindTickerOnly:
		req.Ticker = normalizeTicker(in)
	case models.KindMultiTicker:
		for _, p := range parts {
			req.Tickers = append(req.Tickers, normalizeTicker(p))
		}
	case models.KindStrategySpec:
		spec, err := parseStrategy(in)
		if err != nil {
			return nil, err
		}
		req.Strategy = spec
	case models.KindMultiStrategySpec:
		for _, p := range parts {
			spec, err := parseStrategy(p)
			if err != nil {
				return nil, err
			}
			req.Strategies = append(req.Strategies, *spec)
		}
	case models.KindPosition:
		spec, err := parsePosition(in)
		if err != nil {
			return nil, err
		}
		req.Strategy = spec
	case models.KindMultiPosition:
		for _, p := range parts {
			spec, err := parsePosition(p)
			if err != nil {
				return nil, err
			}
			req.Strategies = append(req.Strategies, *spec)
		}
	case models.KindPortfolioFile:
		req.Files = []string{in}
	case models.KindMultiPortfolioFile:
		req.Files = parts
	}
	return req, nil
}

// Validate enforces the domain constraints on a parsed request. It fails
// fast with a ValidationError naming the violated constraint, before any
// analysis work starts.
func Validate(req *models.Request) error {
	switch req.Kind {
	case models.KindTickerOnly:
		if req.Ticker == "" {
			return &ValidationError{Constraint: "ticker non-empty", Detail: "empty ticker"}
		}
	case models.KindMultiTicker:
		if req.Members() < 2 {
			return &ValidationError{Constraint: "multi requires >= 2 members",
				Detail: fmt.Sprintf("got %d tickers", req.Members())}
		}
		for _, t := range req.Tickers {
			if t == "" {
				return &ValidationError{Constraint: "ticker non-empty", Detail: "empty ticker in list"}
			}
		}
	case models.KindStrategySpec, models.KindPosition:
		return validateSpec(req.Strategy)
	case models.KindMultiStrategySpec, models.KindMultiPosition:
		if req.Members() < 2 {
			return &ValidationError{Constraint: "multi requires >= 2 members",
				Detail: fmt.Sprintf("got %d specs", req.Members())}
		}
		for i := range req.Strategies {
			if err := validateSpec(&req.Strategies[i]); err != nil {
				return err
			}
		}
	case models.KindMultiPortfolioFile:
		if req.Members() < 2 {
			return &ValidationError{Constraint: "multi requires >= 2 members",
				Detail: fmt.Sprintf("got %d files", req.Members())}
		}
	}
	return nil
}

func validateSpec(s *models.StrategySpec) error {
	if s == nil {
		return &ValidationError{Constraint: "strategy present", Detail: "missing strategy spec"}
	}
	if s.Ticker == "" {
		return &ValidationError{Constraint: "ticker non-empty", Detail: "empty ticker"}
	}
	if !AllowedStrategies[s.Strategy] {
		return &ValidationError{Constraint: "strategy in {SMA,EMA,MACD}",
			Detail: fmt.Sprintf("got %q", s.Strategy)}
	}
	if s.FastWindow >= s.SlowWindow {
		return &ValidationError{Constraint: "fast window < slow window",
			Detail: fmt.Sprintf("fast=%d slow=%d", s.FastWindow, s.SlowWindow)}
	}
	return nil
}

func normalizeTicker(t string) string {
	return strings.ToUpper(strings.TrimSpace(t))
}

func parseStrategy(input string) (*models.StrategySpec, error) {
	m := strategyRe.FindStringSubmatch(input)
	if m == nil {
		return nil, &ParseError{Input: input, Reason: "does not decompose as a strategy spec"}
	}
	return buildSpec(input, m[1], m[2], m[3], m[4], m[5], "")
}

func parsePosition(input string) (*models.StrategySpec, error) {
	m := positionRe.FindStringSubmatch(input)
	if m == nil {
		return nil, &ParseError{Input: input, Reason: "does not decompose as a position identifier"}
	}
	date, err := normalizeDate(m[6])
	if err != nil {
		return nil, &ParseError{Input: input, Reason: err.Error()}
	}
	return buildSpec(input, m[1], m[2], m[3], m[4], m[5], date)
}

func buildSpec(input, ticker, strategy, fast, slow, signal, date string) (*models.StrategySpec, error) {
	f, err := strconv.Atoi(fast)
	if err != nil {
		return nil, &ParseError{Input: input, Reason: "bad fast window"}
	}
	s, err := strconv.Atoi(slow)
	if err != nil {
		return nil, &ParseError{Input: input, Reason: "bad slow window"}
	}
	sig := 0
	if signal != "" {
		if sig, err = strconv.Atoi(signal); err != nil {
			return nil, &ParseError{Input: input, Reason: "bad signal window"}
		}
	}
	return &models.StrategySpec{
		Ticker:       normalizeTicker(ticker),
		Strategy:     strings.ToUpper(strategy),
		FastWindow:   f,
		SlowWindow:   s,
		SignalWindow: sig,
		EntryDate:    date,
	}, nil
}

// normalizeDate accepts YYYYMMDD or YYYY-MM-DD and returns the canonical
// YYYY-MM-DD form, rejecting impossible dates.
func normalizeDate(d string) (string, error) {
	layout := "20060102"
	if strings.Contains(d, "-") {
		layout = "2006-01-02"
	}
	t, err := time.Parse(layout, d)
	if err != nil {
		return "", fmt.Errorf("invalid entry date %q", d)
	}
	return t.Format("2006-01-02"), nil
}
