package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/ledgerfoundry/ledgergate/api"
	"github.com/ledgerfoundry/ledgergate/config"
	"github.com/ledgerfoundry/ledgergate/directory"
	"github.com/ledgerfoundry/ledgergate/ledger"
	"github.com/ledgerfoundry/ledgergate/plugin"
	"github.com/ledgerfoundry/ledgergate/policy"
	"github.com/ledgerfoundry/ledgergate/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting ledgergate...")
	log.Printf("HTTP Port: %d", cfg.HTTPPort)
	log.Printf("Base URL: %s", cfg.BaseURL)
	log.Printf("Database: %s", cfg.DatabaseURL)

	db, err := store.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	policyEngine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
	if err != nil {
		log.Fatalf("Failed to initialize policy engine: %v", err)
	}

	var provider ledger.Provider
	if cfg.LedgerNodeURL != "" {
		log.Printf("Ledger node daemon: %s", cfg.LedgerNodeURL)
		provider = ledger.NewClient(cfg.LedgerNodeURL)
	} else {
		log.Printf("Using embedded ledger node provider")
		provider = ledger.NewMemoryProvider()
	}

	dir := directory.New(db, policyEngine, provider, plugin.DefaultRegistry, cfg.BaseURL)
	h := api.NewHandler(dir, plugin.DefaultRegistry)

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	h.RegisterRoutes(e)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Ledger agent API started on port %d", cfg.HTTPPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down ledgergate...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown server gracefully: %v", err)
	}

	log.Println("Ledgergate stopped")
}
