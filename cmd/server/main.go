package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/trungthanh-tran/solana-trade-simulator/internal/config"
	"github.com/trungthanh-tran/solana-trade-simulator/internal/database"
	"github.com/trungthanh-tran/solana-trade-simulator/internal/jupiter"
	"github.com/trungthanh-tran/solana-trade-simulator/internal/ledger"
	"github.com/trungthanh-tran/solana-trade-simulator/internal/logger"
	"github.com/trungthanh-tran/solana-trade-simulator/internal/trader"
	"go.uber.org/zap"
)

func main() {
	// Load application configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	log.Info("Configuration loaded")

	// Initialize the trade ledger database
	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connection successful and schema migrated.")

	// Wire the quote client, ledger store and trade service
	quoteClient := jupiter.NewClient(&cfg.Jupiter, log)
	store := ledger.NewGormStore(db)
	service := trader.NewService(&cfg.Trading, log, quoteClient, store)

	server := NewAPIServer(&cfg.Server, service, log)
	server.Start()

	// Wait for a shutdown signal
	sigchan := make(chan os.Signal, 1)
	signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
	<-sigchan
	log.Info("Shutdown signal received, gracefully shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Stop(ctx); err != nil && err != http.ErrServerClosed {
		log.Error("Server shutdown failed", zap.Error(err))
	}

	log.Info("Trade simulator has been shut down.")
}
