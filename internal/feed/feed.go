package feed

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Trend is the direction of the latest emitted price relative to the
// previously emitted one.
type Trend string

const (
	TrendUp        Trend = "up"
	TrendDown      Trend = "down"
	TrendUnchanged Trend = "unchanged"
)

// Tick is one emitted price update. Err non-nil marks a terminal transport
// failure; that keeps "stream broke" distinguishable from "no data yet"
// (which is simply the absence of any tick).
type Tick struct {
	Symbol string
	Price  string // Fixed two-decimal display string
	Trend  Trend
	Err    error
}

// Handler receives emitted ticks.
type Handler func(Tick)

// Source opens a raw trade subscription for one symbol. Implementations push
// every inbound trade price through emit and transport failures through
// fail. The returned stop function closes the subscription and must not
// return until the stream has fully shut down.
type Source interface {
	Subscribe(symbol string, emit func(price string), fail func(err error)) (stop func(), err error)
}

// Manager owns the single live subscription slot. It guarantees
// close-before-replace: switching symbols fully stops the previous stream
// before the new one may emit, and anything the old stream delivers after
// the switch is discarded.
type Manager struct {
	source  Source
	handler Handler

	mu     sync.Mutex
	sub    *subscription
	latest *Tick
}

// subscription tracks per-stream trend state. prev/trend always refer to the
// previously *emitted* price, not every wire message: unparseable messages
// are dropped before they can influence the trend.
type subscription struct {
	symbol  string
	stop    func()
	closed  bool
	hasPrev bool
	prev    decimal.Decimal
	trend   Trend
}

// NewManager builds a manager over source. handler may be nil if callers
// only poll Latest.
func NewManager(source Source, handler Handler) *Manager {
	return &Manager{source: source, handler: handler}
}

// Switch closes any current subscription and opens one for symbol. The old
// stream is stopped and drained before the new subscription is created, so
// no event from the old symbol can be emitted after Switch returns.
func (m *Manager) Switch(symbol string) error {
	m.closeCurrent()

	sub := &subscription{symbol: symbol, trend: TrendUnchanged}

	m.mu.Lock()
	m.sub = sub
	m.latest = nil
	m.mu.Unlock()

	stop, err := m.source.Subscribe(symbol,
		func(price string) { m.deliver(sub, price) },
		func(failure error) { m.fail(sub, failure) },
	)
	if err != nil {
		m.mu.Lock()
		if m.sub == sub {
			m.sub = nil
		}
		m.mu.Unlock()
		return err
	}

	m.mu.Lock()
	sub.stop = stop
	m.mu.Unlock()
	return nil
}

// Close stops the active subscription, if any.
func (m *Manager) Close() {
	m.closeCurrent()
}

// Latest returns the most recently emitted tick. ok is false while no tick
// has been emitted for the current subscription.
func (m *Manager) Latest() (Tick, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.latest == nil {
		return Tick{}, false
	}
	return *m.latest, true
}

func (m *Manager) closeCurrent() {
	m.mu.Lock()
	sub := m.sub
	if sub != nil {
		// Mark closed under the lock first: any in-flight message that
		// arrives while stop() drains is discarded by deliver/fail.
		sub.closed = true
		m.sub = nil
	}
	m.mu.Unlock()

	if sub != nil && sub.stop != nil {
		sub.stop()
	}
}

func (m *Manager) deliver(sub *subscription, price string) {
	m.mu.Lock()
	if sub.closed || m.sub != sub {
		m.mu.Unlock()
		return
	}

	p, err := decimal.NewFromString(price)
	if err != nil {
		// Not an emission; the trend reference is untouched.
		m.mu.Unlock()
		return
	}

	trend := nextTrend(sub.trend, sub.prev, sub.hasPrev, p)
	sub.prev = p
	sub.hasPrev = true
	sub.trend = trend

	tick := Tick{Symbol: sub.symbol, Price: p.StringFixed(2), Trend: trend}
	m.latest = &tick
	handler := m.handler
	m.mu.Unlock()

	if handler != nil {
		handler(tick)
	}
}

func (m *Manager) fail(sub *subscription, failure error) {
	m.mu.Lock()
	if sub.closed || m.sub != sub {
		m.mu.Unlock()
		return
	}

	// Transport errors are terminal for the subscription.
	sub.closed = true
	tick := Tick{Symbol: sub.symbol, Trend: sub.trend, Err: failure}
	m.latest = &tick
	handler := m.handler
	m.mu.Unlock()

	if handler != nil {
		handler(tick)
	}
}

// nextTrend compares the new price against the previously emitted one:
// strictly greater is up, strictly less is down, equal keeps the previous
// signal. The first emission has no reference and reads unchanged.
func nextTrend(prev Trend, prevPrice decimal.Decimal, hasPrev bool, price decimal.Decimal) Trend {
	if !hasPrev {
		return TrendUnchanged
	}
	switch price.Cmp(prevPrice) {
	case 1:
		return TrendUp
	case -1:
		return TrendDown
	default:
		return prev
	}
}
