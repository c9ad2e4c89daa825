package models

// TradingDaysPerYear is the annualization base for daily volatility.
const TradingDaysPerYear = 252

// CalendarDaysForBars converts a desired number of daily bars into the
// calendar span to request from a data provider, padding for weekends,
// holidays and the occasional missing session.
func CalendarDaysForBars(bars int) int {
	if bars < 1 {
		bars = 1
	}
	days := int(float64(bars) * 7.0 / 5.0 * 1.1)
	if days < bars {
		days = bars
	}
	return days
}
