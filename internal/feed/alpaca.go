package feed

import (
	"context"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata/stream"
)

// AlpacaSource streams live crypto trades from Alpaca's marketdata
// websocket. It exists as an alternative to the default Binance feed for
// users who already hold Alpaca credentials (FEED_PROVIDER=alpaca).
type AlpacaSource struct {
	keyID     string
	secretKey string
}

// NewAlpacaSource reads credentials from the standard APCA_* env vars.
func NewAlpacaSource() *AlpacaSource {
	return &AlpacaSource{
		keyID:     os.Getenv("APCA_API_KEY_ID"),
		secretKey: os.Getenv("APCA_API_SECRET_KEY"),
	}
}

// Subscribe opens the crypto trade stream for symbol. Binance-style pair
// tickers are translated to Alpaca's slash form ("BTCUSDT" -> "BTC/USD").
// The stop function cancels the connection and waits for it to terminate.
func (s *AlpacaSource) Subscribe(symbol string, emit func(price string), fail func(err error)) (func(), error) {
	pair := alpacaPair(symbol)

	ctx, cancel := context.WithCancel(context.Background())
	client := stream.NewCryptoClient(
		marketdata.US,
		stream.WithCredentials(s.keyID, s.secretKey),
	)

	tradeHandler := func(t stream.CryptoTrade) {
		emit(strconv.FormatFloat(t.Price, 'f', -1, 64))
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := client.Connect(ctx); err != nil && ctx.Err() == nil {
			fail(err)
			return
		}
		<-ctx.Done()
		log.Printf("Alpaca stream for %s closed", pair)
	}()

	if err := client.SubscribeToTrades(tradeHandler, pair); err != nil {
		cancel()
		<-done
		return nil, err
	}

	stop := func() {
		cancel()
		<-done
	}
	return stop, nil
}

// alpacaPair converts a Binance-style ticker to Alpaca's pair notation.
func alpacaPair(symbol string) string {
	upper := strings.ToUpper(symbol)
	for _, quote := range []string{"USDT", "USDC", "USD"} {
		if base, ok := strings.CutSuffix(upper, quote); ok && base != "" {
			return base + "/USD"
		}
	}
	return upper
}
