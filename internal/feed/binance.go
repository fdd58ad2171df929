package feed

import (
	"strings"

	"github.com/adshao/go-binance/v2"
)

// BinanceSource streams live trades from the Binance spot websocket
// (symbol@trade). No credentials are needed for public trade streams.
type BinanceSource struct{}

// NewBinanceSource returns the default live price source.
func NewBinanceSource() *BinanceSource {
	return &BinanceSource{}
}

// Subscribe opens the trade stream for symbol (e.g. "BTCUSDT"). The stop
// function closes the websocket and waits for the read loop to exit, so the
// caller knows the stream is fully dead when it returns.
func (s *BinanceSource) Subscribe(symbol string, emit func(price string), fail func(err error)) (func(), error) {
	wsHandler := func(event *binance.WsTradeEvent) {
		emit(event.Price)
	}
	errHandler := func(err error) {
		fail(err)
	}

	doneC, stopC, err := binance.WsTradeServe(strings.ToUpper(symbol), wsHandler, errHandler)
	if err != nil {
		return nil, err
	}

	stop := func() {
		close(stopC)
		<-doneC
	}
	return stop, nil
}
