package config

import (
	"os"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	// Ensure optional envs are unset so defaults apply.
	optionals := []string{
		"FEED_PROVIDER",
		"DEFAULT_TICKER",
		"HISTORY_FILE",
		"MAX_LOG_SIZE_MB",
		"MAX_LOG_BACKUPS",
		"ANALYSIS_TIMEOUT_SEC",
	}
	for _, k := range optionals {
		os.Unsetenv(k)
	}

	cfg := Load()

	if cfg.FeedProvider != "binance" {
		t.Errorf("Expected FeedProvider 'binance', got '%s'", cfg.FeedProvider)
	}
	if cfg.DefaultTicker != "BTCUSDT" {
		t.Errorf("Expected DefaultTicker 'BTCUSDT', got '%s'", cfg.DefaultTicker)
	}
	if cfg.HistoryFile != "analysis_history.json" {
		t.Errorf("Expected HistoryFile 'analysis_history.json', got '%s'", cfg.HistoryFile)
	}
	if cfg.MaxLogSizeMB != 5 {
		t.Errorf("Expected MaxLogSizeMB 5, got %d", cfg.MaxLogSizeMB)
	}
	if cfg.MaxLogBackups != 3 {
		t.Errorf("Expected MaxLogBackups 3, got %d", cfg.MaxLogBackups)
	}
	if cfg.AnalysisTimeoutSec != 180 {
		t.Errorf("Expected AnalysisTimeoutSec 180, got %d", cfg.AnalysisTimeoutSec)
	}
}

func TestLoad_Overrides(t *testing.T) {
	os.Setenv("FEED_PROVIDER", "alpaca")
	os.Setenv("ANALYSIS_TIMEOUT_SEC", "60")
	defer os.Unsetenv("FEED_PROVIDER")
	defer os.Unsetenv("ANALYSIS_TIMEOUT_SEC")

	cfg := Load()

	if cfg.FeedProvider != "alpaca" {
		t.Errorf("Expected FeedProvider 'alpaca', got '%s'", cfg.FeedProvider)
	}
	if cfg.AnalysisTimeoutSec != 60 {
		t.Errorf("Expected AnalysisTimeoutSec 60, got %d", cfg.AnalysisTimeoutSec)
	}
}

func TestGetEnvInt_Unparseable(t *testing.T) {
	os.Setenv("ANALYSIS_TIMEOUT_SEC", "soon")
	defer os.Unsetenv("ANALYSIS_TIMEOUT_SEC")

	if got := getEnvInt("ANALYSIS_TIMEOUT_SEC", 180); got != 180 {
		t.Errorf("Expected fallback 180 for unparseable value, got %d", got)
	}
}
