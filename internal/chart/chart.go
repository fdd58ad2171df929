package chart

import (
	"strings"

	"github.com/shopspring/decimal"

	"crypto_ta/internal/models"
)

// Line is one horizontal level ready for chart overlay. Price is numeric:
// the display string has already been parsed, and levels whose price cannot
// be parsed are omitted entirely.
type Line struct {
	Label string
	Price decimal.Decimal
	Style string // solid, dashed, dotted
	Width int
}

// Lines derives the chart overlay for the six fixed key levels, in a fixed
// top-of-book order. Levels with unparseable prices are skipped, never
// guessed.
func Lines(levels models.KeyLevels) []Line {
	named := []struct {
		level models.KeyLevel
		label string
		style string
		width int
	}{
		{levels.Resistance2, "Resistance 2", "dashed", 2},
		{levels.Resistance1, "Resistance 1", "dashed", 1},
		{levels.DailyPivot, "Daily Pivot", "dotted", 2},
		{levels.Support1, "Support 1", "dashed", 1},
		{levels.Support2, "Support 2", "dashed", 2},
		{levels.InvalidationLevel, "Invalidation Level", "solid", 2},
	}

	var lines []Line
	for _, n := range named {
		price, ok := ParsePrice(n.level.Price)
		if !ok {
			continue
		}
		lines = append(lines, Line{Label: n.label, Price: price, Style: n.style, Width: n.width})
	}
	return lines
}

// Interval maps a chart timeframe label to the widget interval code.
func Interval(timeframe string) string {
	switch timeframe {
	case "5m":
		return "5"
	case "15m":
		return "15"
	case "30m":
		return "30"
	case "1H":
		return "60"
	case "4H":
		return "240"
	case "1D":
		return "D"
	default:
		return "60" // Default to 1 hour
	}
}

// ParsePrice extracts a numeric price from a display string like "$66,000".
// Everything except digits, the decimal point and a sign is stripped before
// parsing.
func ParsePrice(display string) (decimal.Decimal, bool) {
	var b strings.Builder
	for _, r := range display {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return decimal.Decimal{}, false
	}
	price, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return price, true
}
