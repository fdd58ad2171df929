package assistant

import "strings"

// Pair is one selectable instrument: a display name with its bare code in
// parentheses, and the exchange ticker used by the price feed.
type Pair struct {
	Name   string
	Ticker string
}

// Style is one selectable trading horizon. Value is the label handed to the
// analysis request; Key is what the user types.
type Style struct {
	Key   string
	Label string
	Value string
}

// Pairs is the supported instrument universe.
var Pairs = []Pair{
	{Name: "Bitcoin (BTC)", Ticker: "BTCUSDT"},
	{Name: "Ethereum (ETH)", Ticker: "ETHUSDT"},
	{Name: "Solana (SOL)", Ticker: "SOLUSDT"},
	{Name: "Dogecoin (DOGE)", Ticker: "DOGEUSDT"},
	{Name: "XRP (XRP)", Ticker: "XRPUSDT"},
}

// Styles are the supported trading horizons.
var Styles = []Style{
	{Key: "scalp", Label: "Scalp (5-30 Minutes)", Value: "30 Minutes"},
	{Key: "intraday", Label: "Intraday (1-4 Hours)", Value: "4 Hours"},
	{Key: "swing", Label: "Swing (1-3 Days)", Value: "3 Days"},
	{Key: "position", Label: "Position (1 Week+)", Value: "1 Week"},
}

// FindPair resolves user input ("btc", "BTCUSDT") to a supported pair.
func FindPair(query string) (Pair, bool) {
	q := strings.ToUpper(strings.TrimSpace(query))
	for _, p := range Pairs {
		if strings.EqualFold(p.Ticker, q) {
			return p, true
		}
		// Match the bare code inside the parentheses.
		if strings.Contains(p.Name, "("+q+")") {
			return p, true
		}
	}
	return Pair{}, false
}

// FindStyle resolves a style key to a supported trading horizon.
func FindStyle(key string) (Style, bool) {
	for _, s := range Styles {
		if strings.EqualFold(s.Key, key) {
			return s, true
		}
	}
	return Style{}, false
}
