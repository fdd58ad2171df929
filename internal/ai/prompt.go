package ai

import (
	"fmt"
	"strings"
)

// BareCode extracts the bare instrument code from a display name.
// "Bitcoin (BTC)" -> "BTC". Names without a parenthetical annotation are
// returned with their first word, so "BTC" stays "BTC".
func BareCode(name string) string {
	if open := strings.Index(name, "("); open >= 0 {
		if close := strings.Index(name[open:], ")"); close > 0 {
			return strings.TrimSpace(name[open+1 : open+close])
		}
	}
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return name
	}
	return fields[0]
}

// BuildPrompt composes the full instruction payload for one analysis
// request. It is a pure function: identical inputs always produce the
// identical payload, which keeps request behavior reproducible and
// testable.
//
// livePrice is the exact price the backend must anchor the analysis on;
// pass "" to instruct the backend to search for the live price itself.
// The two branches are mutually exclusive by construction.
func BuildPrompt(cryptoName, ticker, timeframe, livePrice string) string {
	code := BareCode(cryptoName)
	if code == "" {
		code = ticker
	}

	var priceInstruction string
	if livePrice != "" {
		priceInstruction = fmt.Sprintf(
			"The user has provided the exact live price of %s/USD: **$%s**. Your ENTIRE analysis MUST be based on this specific price. Do not use your search tool to find the price again.",
			code, livePrice)
	} else {
		priceInstruction = fmt.Sprintf(
			"First, use your search tool to find the live, real-time price of %s/USD from a major exchange.",
			code)
	}

	currentPriceExample := "e.g., '$65,123.45'"
	if livePrice != "" {
		currentPriceExample = fmt.Sprintf("You MUST use the provided price: '$%s'", livePrice)
	}
	assumptionAnchor := livePrice
	if assumptionAnchor == "" {
		assumptionAnchor = "65,000"
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, `You are an advanced CRYPTO TRADING ANALYST and STRATEGY ENGINE specialized in Bitcoin and major crypto pairs.
Your task is to evaluate intraday and scalping setups by combining MANY indicators and trading methods into a single, coherent view.

USER'S CORE REQUEST
The user wants you to analyze the 5-minute, 15-minute, and 1-hour charts to form a unified thesis. Based on this multi-timeframe analysis, you must determine a clear directional bias (LONG or SHORT) and provide a precise entry point. Your entire output must serve this core request.

GOAL
- Analyze the current market situation using the 5m, 15m, and 1H timeframes as your primary focus.
- Decide whether the bias is LONG or SHORT. You MUST choose one, even if the setup is not ideal. Low conviction should be reflected in the confluence score and probabilities.
- Produce long/short bias probabilities, a confluence score, and ONE clear, educational trade idea with a specific entry zone.
- ALWAYS include risk warnings and NEVER promise profit or certainty.

CRITICAL RULES
- You MUST ALWAYS decide between a LONG or SHORT bias. The "bias" field in the trade idea and the "bottomLine" must not be "NEUTRAL" or "WAIT".
- The probabilities for "long" and "short" in "biasProbabilities" MUST sum to 100.
- Your 'entryZone' must be a specific, actionable price or a very tight price range.

TIMEFRAMES (MINIMUM)
Always think in at least:
- Higher intraday: 1H
- Execution: 15M
- Scalping: 5M (and 1M if provided)
Your final analysis MUST synthesize findings from these key timeframes.

INPUTS (ASSUME WHERE MISSING, BUT SAY SO)
You will receive the crypto pair, a target trading horizon (e.g., '30 Minutes', '4 Hours'), and sometimes a live price. You must also use your search tool to gather other necessary data like news and upcoming events.
%s
If other data like specific indicator values are not provided, make reasonable assumptions based on your search data and explicitly state them in the 'assumptions' field.

For the 'upcomingEvents' field, you MUST:
- Consult reliable crypto economic calendars to find significant, market-moving events.
- CRITICAL: Ensure all listed events are in the FUTURE from the moment of your analysis. Do not list events that have already occurred.
- Provide the date and time in a full ISO 8601 UTC format (e.g., "YYYY-MM-DDTHH:MM:SSZ").
- Aim to list at least 2-3 of the most relevant upcoming events, or more if several are significant.

INDICATOR GROUPS AND WHAT YOU CHECK

1) MARKET STRUCTURE & TREND
- For each timeframe (1H, 15M, 5M): HH/HL (uptrend), LH/LL (downtrend), or equal highs/lows (range)? Recent Break of Structure or Change of Character?
- Check EMAs/SMA: 9/20 vs 50 vs 200 stacked bullish or bearish? Price above or below VWAP?
- Identify key zones: major support/resistance, psychological levels, previous day high/low and session highs/lows.

2) MOMENTUM INDICATORS
- RSI: overbought / oversold, divergences.
- Stochastic: crosses in extreme zones.
- MACD: cross up/down, histogram.
- ADX: trend strength (>25 strong trend, <20 weak/trending-to-range).

3) VOLATILITY & RANGE
- ATR: volatility expanding or contracting?
- Bollinger / Keltner: squeeze, price riding bands vs mean-reverting.

4) VOLUME & FLOWS
- Compare current volume to recent average. Climactic spikes at highs/lows. Is volume confirming the move or diverging?

5) PRICE ACTION & CANDLE PATTERNS
- Rejection wicks, pin bars, engulfing candles, inside bars, break-and-retest, liquidity grabs.

6) MARKET REGIME (TRENDING VS RANGING)
- Combine structure + ADX + volatility + price action. Classify: Strong Trend Up/Down, Weak Trend / Choppy, Range Bound.

TRADING METHODS TO EVALUATE

For every situation, evaluate at least these methods and rate them from 0-10:
1) Trend-Following Pullback: valid when clear trend, ADX strong.
2) Breakout / Breakdown: valid when volatility contracting then expanding.
3) Range / Mean Reversion: valid when ADX low, defined support/resistance.
4) Liquidity-Grab Reversal: valid when price sweeps a key level then reverses.
5) VWAP Reversion/Trend: is price extended from VWAP or riding it?

CONFLUENCE SCORING
Create a "Confluence Score" from 0 to 100 by combining: trend alignment, indicator support, price action clarity, volume confirmation, and the highest-scoring trading method.
- 80-100: Strong confluence.
- 60-79: Decent confluence.
- 40-59: Mixed signals.
- <40: No clear edge.

Based on your comprehensive analysis above, you must now synthesize your findings and present them ONLY in the following strict JSON format. No other text, comments, or markdown fences are allowed outside of the single JSON object. Your entire response must be this JSON object.
`, priceInstruction)

	fmt.Fprintf(&sb, `
{
  "currentPrice": "The current price of %s/USD. %s",
  "assumptions": "A brief statement on the data found and assumptions made, e.g., 'Based on %s price action around $%s and assuming average funding rates.'",
  "bottomLine": "One sentence with the primary bias: LONG or SHORT for the specified timeframe of %s. This MUST NOT be neutral or wait.",
  "biasProbabilities": {
    "long": 50,
    "short": 50
  },
  "keyLevels": {
    "resistance1": { "price": "$66,000", "description": "Short-term resistance from recent swing high." },
    "support1": { "price": "$64,500", "description": "Immediate support at the 4H 50 EMA." },
    "resistance2": { "price": "$67,200", "description": "Major resistance at the weekly open." },
    "support2": { "price": "$63,100", "description": "Stronger support from the previous consolidation zone." },
    "dailyPivot": { "price": "$65,100", "description": "Daily pivot point; bullish above, bearish below." },
    "invalidationLevel": { "price": "$62,500", "description": "Price level that would invalidate the primary thesis." }
  },
  "liveNews": [
    { "title": "Fed Chair mentions inflation concerns", "source": "Reuters", "summary": "Summary of the news article and its direct relevance to the crypto market.", "importance": "High" }
  ],
  "upcomingEvents": [
    { "event": "US CPI Data Release", "date": "YYYY-MM-DDTHH:MM:SSZ", "potentialImpact": "High volatility expected. The date MUST be in the future." }
  ],
  "technicalJustification": {
    "confluenceScore": 85,
    "marketRegime": "e.g., Strong Trend Down on 1H, Range Bound on 5M",
    "methodsEvaluation": {
      "Trend-Following Pullback": { "score": 8, "reasoning": "Why this method does or does not fit the current setup." }
    },
    "trendAndStructure": "Analysis of trend on 1H, 15M, 5M timeframes.",
    "keyLevels": "A summary of why the chosen key levels are important.",
    "momentumAndVolume": "Observations on RSI, MACD, Volume, etc.",
    "liquidityNotes": "Notes on potential liquidity grabs or important liquidity zones.",
    "newsSummary": "A concise summary of how the combined recent news is impacting market sentiment for %s."
  },
  "educationalTradeIdea": {
    "bias": "SHORT",
    "entryZone": "A specific price or tight range, e.g., '$65,000 - $65,200'",
    "stopLossZone": "A specific price, e.g., '$65,600'",
    "takeProfitZones": ["A specific price, e.g., '$64,200'", "A specific price, e.g., '$63,500'"],
    "riskReward": "e.g., '~1:3'",
    "explanation": "Rationale for the trade idea based on the analysis for the %s view. It should be based on the highest-scoring trading method."
  },
  "riskWarning": "This is a high-risk educational trade idea, not financial advice. The crypto market is extremely volatile. Strong confluence does not guarantee success. Always use proper risk management."
}`,
		code, currentPriceExample, code, assumptionAnchor, timeframe, code, timeframe)

	return sb.String()
}
