package assistant

import (
	"fmt"
	"sort"
	"strings"

	"crypto_ta/internal/chart"
	"crypto_ta/internal/models"
)

// renderAnalysis builds the full text report for one validated analysis.
func renderAnalysis(entry models.HistoryEntry) string {
	a := entry.Analysis
	var sb strings.Builder

	fmt.Fprintf(&sb, "📊 *%s ANALYSIS* (%s)\n", entry.Ticker, entry.Timeframe)
	fmt.Fprintf(&sb, "Generated: %s\n\n", entry.Timestamp)

	fmt.Fprintf(&sb, "💰 Current Price: %s\n", a.CurrentPrice)
	fmt.Fprintf(&sb, "🎯 Bottom Line: %s\n", a.BottomLine)
	fmt.Fprintf(&sb, "⚖️ Bias: LONG %.0f%% / SHORT %.0f%% (confluence %.0f/100)\n",
		a.BiasProbabilities.Long, a.BiasProbabilities.Short, a.TechnicalJustification.ConfluenceScore)
	if a.Assumptions != "" {
		fmt.Fprintf(&sb, "📎 Assumptions: %s\n", a.Assumptions)
	}

	sb.WriteString("\n🧱 *KEY LEVELS*\n")
	writeLevel(&sb, "Resistance 2", a.KeyLevels.Resistance2)
	writeLevel(&sb, "Resistance 1", a.KeyLevels.Resistance1)
	writeLevel(&sb, "Daily Pivot", a.KeyLevels.DailyPivot)
	writeLevel(&sb, "Support 1", a.KeyLevels.Support1)
	writeLevel(&sb, "Support 2", a.KeyLevels.Support2)
	writeLevel(&sb, "Invalidation", a.KeyLevels.InvalidationLevel)

	idea := a.EducationalTradeIdea
	sb.WriteString("\n🎓 *EDUCATIONAL TRADE IDEA*\n")
	fmt.Fprintf(&sb, "• Bias: %s\n", idea.Bias)
	fmt.Fprintf(&sb, "• Entry: %s\n", idea.EntryZone)
	fmt.Fprintf(&sb, "• Stop Loss: %s\n", idea.StopLossZone)
	fmt.Fprintf(&sb, "• Take Profit: %s\n", strings.Join(idea.TakeProfitZones, " → "))
	fmt.Fprintf(&sb, "• R:R: %s\n", idea.RiskReward)
	fmt.Fprintf(&sb, "• Why: %s\n", idea.Explanation)

	tj := a.TechnicalJustification
	sb.WriteString("\n🔬 *TECHNICAL JUSTIFICATION*\n")
	fmt.Fprintf(&sb, "• Regime: %s\n", tj.MarketRegime)
	fmt.Fprintf(&sb, "• Structure: %s\n", tj.TrendAndStructure)
	fmt.Fprintf(&sb, "• Momentum/Volume: %s\n", tj.MomentumAndVolume)
	fmt.Fprintf(&sb, "• Liquidity: %s\n", tj.LiquidityNotes)
	if len(tj.MethodsEvaluation) > 0 {
		sb.WriteString("• Methods:\n")
		for _, name := range sortedMethodNames(tj.MethodsEvaluation) {
			m := tj.MethodsEvaluation[name]
			fmt.Fprintf(&sb, "   - %s (%.0f/10): %s\n", name, m.Score, m.Reasoning)
		}
	}

	if len(a.LiveNews) > 0 {
		sb.WriteString("\n📰 *LIVE NEWS*\n")
		for _, n := range a.LiveNews {
			fmt.Fprintf(&sb, "• [%s] %s (%s): %s\n", n.Importance, n.Title, n.Source, n.Summary)
		}
	}

	if len(a.UpcomingEvents) > 0 {
		sb.WriteString("\n📅 *UPCOMING EVENTS*\n")
		for _, e := range a.UpcomingEvents {
			fmt.Fprintf(&sb, "• %s — %s: %s\n", e.Date, e.Event, e.PotentialImpact)
		}
	}

	if tj.NewsSummary != "" {
		fmt.Fprintf(&sb, "\n🗞 Sentiment: %s\n", tj.NewsSummary)
	}

	if len(a.Sources) > 0 {
		sb.WriteString("\n🔗 *SOURCES*\n")
		for _, s := range a.Sources {
			fmt.Fprintf(&sb, "• %s — %s\n", s.Title, s.URI)
		}
	}

	fmt.Fprintf(&sb, "\n⚠️ %s\n", a.RiskWarning)

	return sb.String()
}

func writeLevel(sb *strings.Builder, label string, level models.KeyLevel) {
	fmt.Fprintf(sb, "• %-13s %s — %s\n", label+":", level.Price, level.Description)
}

// sortedMethodNames keeps method output deterministic; the map itself is
// open-ended and unordered.
func sortedMethodNames(methods map[string]models.MethodScore) []string {
	names := make([]string, 0, len(methods))
	for name := range methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// renderHistoryList summarizes stored analyses, newest first.
func renderHistoryList(entries []models.HistoryEntry) string {
	if len(entries) == 0 {
		return "History is empty. Run /analyze to create the first entry."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🗂 *HISTORY* (%d stored, newest first)\n", len(entries))
	for i, e := range entries {
		fmt.Fprintf(&sb, "%2d. %s  %s (%s)  %s @ %s\n",
			i+1, e.Timestamp, e.Ticker, e.Timeframe,
			e.Analysis.EducationalTradeIdea.Bias, e.Analysis.CurrentPrice)
	}
	sb.WriteString("\nUse /show <n> to display a full report.")
	return sb.String()
}

// renderChart prints the derived chart overlay for an analysis: the key
// levels as numeric horizontal lines plus the widget interval code.
// Levels whose price strings cannot be parsed are omitted by the chart
// layer and simply do not appear here.
func renderChart(entry models.HistoryEntry) string {
	lines := chart.Lines(entry.Analysis.KeyLevels)
	if len(lines) == 0 {
		return "⚠️ None of the key levels carries a parseable price."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📈 *CHART LEVELS* %s (interval %s)\n",
		entry.Ticker, chart.Interval("1H"))
	for _, line := range lines {
		fmt.Fprintf(&sb, "• %-19s %s  [%s, width %d]\n",
			line.Label+":", line.Price.StringFixed(2), line.Style, line.Width)
	}
	return sb.String()
}
