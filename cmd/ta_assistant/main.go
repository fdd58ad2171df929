package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crypto_ta/internal/ai"
	"crypto_ta/internal/assistant"
	"crypto_ta/internal/config"
	"crypto_ta/internal/feed"
	"crypto_ta/internal/history"
	"crypto_ta/internal/logger"
)

const LogFile = "ta_assistant.log"

func main() {
	// 1. Configuration first, so logger settings are available.
	cfg := config.Load()
	logger.Setup(LogFile, cfg.MaxLogSizeMB, cfg.MaxLogBackups)

	// 2. Dependencies.
	var source feed.Source
	switch cfg.FeedProvider {
	case "alpaca":
		source = feed.NewAlpacaSource()
	default:
		source = feed.NewBinanceSource()
	}
	priceFeed := feed.NewManager(source, nil)

	client := ai.NewClient(time.Duration(cfg.AnalysisTimeoutSec) * time.Second)

	store := history.NewStore(cfg.HistoryFile)
	store.Load()

	notify := func(msg string) { fmt.Println("\n" + msg) }
	a := assistant.New(client, priceFeed, store, notify)
	a.Start(cfg.DefaultTicker)

	// 3. Graceful shutdown: close the live subscription before exiting.
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		log.Println("⚠️ Shutting down: system signal received.")
		priceFeed.Close()
		os.Exit(0)
	}()

	log.Printf("Crypto TA Assistant started (feed: %s, history: %d entries)", cfg.FeedProvider, store.Len())
	fmt.Println("Type /help for commands.")

	// 4. Command loop. Replies print inline; completed analyses arrive via
	// notify since /analyze returns immediately.
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		if reply := a.HandleCommand(scanner.Text()); reply != "" {
			fmt.Println(reply)
		}
	}

	priceFeed.Close()
}
