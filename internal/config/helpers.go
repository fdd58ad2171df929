package config

import (
	"log"
	"os"
	"strconv"
)

// getEnvStr returns the env value for key, or fallback when unset.
func getEnvStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt returns the env value for key parsed as an int. Unset or
// unparseable values fall back to the default (unparseable is logged).
func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Warning: %s=%q is not an integer, using default %d", key, v, fallback)
		return fallback
	}
	return n
}
