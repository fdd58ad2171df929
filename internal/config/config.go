package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds everything tunable via the environment. The Gemini key and
// model stay env-only (the AI client reads them itself); this struct covers
// the rest of the app.
type Config struct {
	FeedProvider       string // "binance" (default) or "alpaca"
	DefaultTicker      string // Pair subscribed on startup
	HistoryFile        string // Persisted analysis history path
	MaxLogSizeMB       int64
	MaxLogBackups      int
	AnalysisTimeoutSec int // Bound on one AI backend call
}

// secretVars are masked when the loaded environment is printed.
var secretVars = map[string]bool{
	"GEMINI_API_KEY":      true,
	"APCA_API_KEY_ID":     true,
	"APCA_API_SECRET_KEY": true,
}

// Load initializes the configuration. It tries to read a .env file, applies
// defaults for anything unset, and prints the resulting non-secret values.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: No .env file found, using system environment variables")
	}

	if os.Getenv("GEMINI_API_KEY") == "" {
		log.Println("Warning: GEMINI_API_KEY is not set; analysis requests will fail until it is provided")
	}

	cfg := &Config{
		FeedProvider:       getEnvStr("FEED_PROVIDER", "binance"),
		DefaultTicker:      getEnvStr("DEFAULT_TICKER", "BTCUSDT"),
		HistoryFile:        getEnvStr("HISTORY_FILE", "analysis_history.json"),
		MaxLogSizeMB:       int64(getEnvInt("MAX_LOG_SIZE_MB", 5)),
		MaxLogBackups:      getEnvInt("MAX_LOG_BACKUPS", 3),
		AnalysisTimeoutSec: getEnvInt("ANALYSIS_TIMEOUT_SEC", 180),
	}

	// Print variables defined in .env, masking secrets to the last 4 chars.
	envMap, err := godotenv.Read()
	if err == nil {
		log.Println("--- .env File Variables ---")
		for key, val := range envMap {
			if secretVars[key] {
				masked := "***"
				if len(val) > 4 {
					masked = "***" + val[len(val)-4:]
				}
				log.Printf("%s=%s", key, masked)
			} else {
				log.Printf("%s=%s", key, val)
			}
		}
		log.Println("---------------------------")
	}

	return cfg
}
