package assistant

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"crypto_ta/internal/ai"
	"crypto_ta/internal/feed"
	"crypto_ta/internal/history"
	"crypto_ta/internal/models"
)

// Analyzer is the AI backend surface the assistant depends on.
type Analyzer interface {
	Analyze(prompt string) (string, []ai.GroundingChunk, error)
}

// PriceFeed is the live price surface the assistant depends on.
type PriceFeed interface {
	Switch(symbol string) error
	Latest() (feed.Tick, bool)
	Close()
}

// Assistant is the boundary layer: command strings in, reply strings out.
// All user-visible messaging lives here; the core packages only return
// typed results.
type Assistant struct {
	analyzer Analyzer
	feed     PriceFeed
	store    *history.Store
	notify   func(string)

	// busy enforces one in-flight analysis at a time. It is the boundary's
	// gate, not the core's: the pipeline itself is plain sequential code.
	busy atomic.Bool

	mu           sync.Mutex
	pair         Pair
	style        Style
	lastEntry    *models.HistoryEntry
	pendingClear bool
}

// New builds the assistant. notify receives messages produced outside a
// direct command reply (completed analyses); pass something that prints.
func New(analyzer Analyzer, priceFeed PriceFeed, store *history.Store, notify func(string)) *Assistant {
	return &Assistant{
		analyzer: analyzer,
		feed:     priceFeed,
		store:    store,
		notify:   notify,
		pair:     Pairs[0],
		style:    Styles[1], // Intraday default
	}
}

// Start subscribes the price feed to the startup instrument.
func (a *Assistant) Start(ticker string) {
	if pair, ok := FindPair(ticker); ok {
		a.mu.Lock()
		a.pair = pair
		a.mu.Unlock()
	}

	a.mu.Lock()
	symbol := a.pair.Ticker
	a.mu.Unlock()
	if err := a.feed.Switch(symbol); err != nil {
		log.Printf("ERROR: Failed to open price stream for %s: %v", symbol, err)
	}
}

// HandleCommand processes one inbound command and returns the reply.
func (a *Assistant) HandleCommand(cmd string) string {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return ""
	}

	// Any command other than the confirmation drops a pending /clear.
	if !(parts[0] == "/clear" && len(parts) > 1) {
		a.mu.Lock()
		a.pendingClear = false
		a.mu.Unlock()
	}

	switch parts[0] {
	case "/ping":
		return "Pong 🏓"
	case "/help":
		return a.getHelp()
	case "/coin":
		if len(parts) < 2 {
			return "Usage: /coin <ticker>  e.g. /coin BTC"
		}
		return a.handleCoin(parts[1])
	case "/style":
		if len(parts) < 2 {
			return "Usage: /style <scalp|intraday|swing|position>"
		}
		return a.handleStyle(parts[1])
	case "/price":
		return a.getPrice()
	case "/analyze":
		return a.handleAnalyze()
	case "/history":
		return renderHistoryList(a.store.Entries())
	case "/show":
		if len(parts) < 2 {
			return "Usage: /show <n>  (see /history for numbering)"
		}
		return a.handleShow(parts[1])
	case "/chart":
		return a.getChart()
	case "/clear":
		return a.handleClear(parts)
	default:
		return "Unknown command. Try /analyze, /price, /coin, /style, /history, /chart or /clear."
	}
}

func (a *Assistant) handleCoin(arg string) string {
	pair, ok := FindPair(arg)
	if !ok {
		var codes []string
		for _, p := range Pairs {
			codes = append(codes, ai.BareCode(p.Name))
		}
		return fmt.Sprintf("⚠️ Unknown pair %q. Available: %s", arg, strings.Join(codes, ", "))
	}

	a.mu.Lock()
	a.pair = pair
	a.mu.Unlock()

	// Switch closes the previous subscription before the new one may emit.
	if err := a.feed.Switch(pair.Ticker); err != nil {
		log.Printf("ERROR: Failed to switch price stream to %s: %v", pair.Ticker, err)
		return fmt.Sprintf("⚠️ Switched to %s, but the price stream failed to open: %v", pair.Name, err)
	}
	return fmt.Sprintf("✅ Instrument set to %s. Live feed restarting...", pair.Name)
}

func (a *Assistant) handleStyle(arg string) string {
	style, ok := FindStyle(arg)
	if !ok {
		return "⚠️ Unknown style. Available: scalp, intraday, swing, position"
	}
	a.mu.Lock()
	a.style = style
	a.mu.Unlock()
	return fmt.Sprintf("✅ Trading style set to %s", style.Label)
}

func (a *Assistant) getPrice() string {
	a.mu.Lock()
	pair := a.pair
	a.mu.Unlock()

	tick, ok := a.feed.Latest()
	if !ok {
		return fmt.Sprintf("⏳ No live price for %s yet.", pair.Ticker)
	}
	if tick.Err != nil {
		return fmt.Sprintf("⚠️ Price stream for %s is down: %v", pair.Ticker, tick.Err)
	}
	return fmt.Sprintf("%s: $%s %s", pair.Ticker, tick.Price, trendArrow(tick.Trend))
}

func (a *Assistant) handleAnalyze() string {
	if !a.busy.CompareAndSwap(false, true) {
		return "⏳ An analysis is already running. Wait for it to finish before requesting another."
	}

	a.mu.Lock()
	pair, style := a.pair, a.style
	a.mu.Unlock()

	go func() {
		defer a.busy.Store(false)
		a.notify(a.runAnalysis(pair, style))
	}()

	return fmt.Sprintf("🔍 Analyzing %s (%s)... this can take a minute.", pair.Name, style.Label)
}

// runAnalysis executes the full pipeline for one request: snapshot live
// price, build the instruction, call the backend, validate, append to
// history, render. It returns the user-facing message either way; raw
// backend text is only ever logged, never returned.
func (a *Assistant) runAnalysis(pair Pair, style Style) string {
	livePrice := ""
	if tick, ok := a.feed.Latest(); ok && tick.Err == nil {
		livePrice = tick.Price
	}

	prompt := ai.BuildPrompt(pair.Name, pair.Ticker, style.Value, livePrice)

	raw, chunks, err := a.analyzer.Analyze(prompt)
	if err != nil {
		return analysisFailureMessage(err)
	}

	record, err := ai.ValidateAnalysis(raw, chunks)
	if err != nil {
		return analysisFailureMessage(err)
	}

	now := time.Now().UTC()
	entry := models.HistoryEntry{
		ID:         now.Format(time.RFC3339Nano),
		Timestamp:  now.Format(time.RFC3339),
		CryptoName: pair.Name,
		Ticker:     pair.Ticker,
		Timeframe:  style.Value,
		Analysis:   *record,
	}
	a.store.Append(entry)

	a.mu.Lock()
	a.lastEntry = &entry
	a.mu.Unlock()

	return renderAnalysis(entry)
}

// analysisFailureMessage maps core failures to user-visible text. All
// diagnostics (including raw malformed output) go to the log only.
func analysisFailureMessage(err error) string {
	var malformed *ai.MalformedResponseError
	switch {
	case errors.Is(err, ai.ErrCredentialMissing):
		return "⚠️ Analysis failed: no API key configured. Set GEMINI_API_KEY and try again."
	case errors.As(err, &malformed):
		log.Printf("ERROR: Malformed AI response: %v\nRaw response:\n%s", malformed, malformed.Raw)
		return "⚠️ Analysis failed: the AI returned a malformed report. Try again."
	default:
		log.Printf("ERROR: Analysis request failed: %v", err)
		return "⚠️ Analysis failed: the AI backend could not be reached. Try again."
	}
}

func (a *Assistant) handleShow(arg string) string {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return "Usage: /show <n>  (see /history for numbering)"
	}
	entries := a.store.Entries()
	if n < 1 || n > len(entries) {
		return fmt.Sprintf("⚠️ No history entry %d (have %d).", n, len(entries))
	}
	return renderAnalysis(entries[n-1])
}

func (a *Assistant) getChart() string {
	a.mu.Lock()
	entry := a.lastEntry
	a.mu.Unlock()

	if entry == nil {
		return "⚠️ No analysis yet. Run /analyze first."
	}
	return renderChart(*entry)
}

func (a *Assistant) handleClear(parts []string) string {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(parts) > 1 && parts[1] == "confirm" {
		if !a.pendingClear {
			return "Nothing to confirm. Use /clear first."
		}
		a.pendingClear = false
		a.store.Clear()
		a.lastEntry = nil
		return "🗑 History cleared."
	}

	if a.store.Len() == 0 {
		return "History is already empty."
	}
	a.pendingClear = true
	return fmt.Sprintf("⚠️ This deletes all %d stored analyses and cannot be undone. Type /clear confirm to proceed.", a.store.Len())
}

func (a *Assistant) getHelp() string {
	var sb strings.Builder
	sb.WriteString("Commands:\n")
	sb.WriteString("  /analyze          run a new analysis for the selected pair and style\n")
	sb.WriteString("  /coin <ticker>    switch instrument (BTC, ETH, SOL, DOGE, XRP)\n")
	sb.WriteString("  /style <name>     scalp | intraday | swing | position\n")
	sb.WriteString("  /price            latest live price and trend\n")
	sb.WriteString("  /history          list stored analyses (newest first)\n")
	sb.WriteString("  /show <n>         display stored analysis n\n")
	sb.WriteString("  /chart            key-level chart lines for the last analysis\n")
	sb.WriteString("  /clear            clear history (asks for confirmation)\n")
	sb.WriteString("  /ping             liveness check\n")
	return sb.String()
}

func trendArrow(t feed.Trend) string {
	switch t {
	case feed.TrendUp:
		return "📈"
	case feed.TrendDown:
		return "📉"
	default:
		return "→"
	}
}
