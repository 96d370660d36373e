package main

import (
	"fmt"
	"log"
	"os"

	"github.com/profitlens/backend/config"
	httpDelivery "github.com/profitlens/backend/internal/delivery/http"
	"github.com/profitlens/backend/internal/infrastructure/cache"
	"github.com/profitlens/backend/internal/infrastructure/pagesource"
	"github.com/profitlens/backend/internal/infrastructure/trendyol"
	"github.com/profitlens/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting ProfitLens Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Gateway: %s (%.1f req/s)", cfg.Trendyol.BaseURL, cfg.Trendyol.RateLimit)

	// Initialize infrastructure dependencies
	snapshots := cache.NewSnapshotStore()

	detailClient := trendyol.NewClient(cfg.Trendyol.BaseURL, cfg.Trendyol.RateLimit)
	pageFetcher := pagesource.NewFetcher(pagesource.Config{
		Timeout:       cfg.Scrape.Timeout,
		CouponRetries: cfg.Scrape.CouponRetries,
		CouponDelay:   cfg.Scrape.CouponRetryDelay,
	})

	// Enable debug mode in development environment
	if cfg.Server.Environment == "development" {
		detailClient.SetDebug(true)
		pageFetcher.SetDebug(true)
		log.Printf("Infrastructure debug mode enabled")
	}

	// Initialize usecase layer
	scrapeService := usecase.NewScrapeService(
		pageFetcher,
		detailClient,
		snapshots,
		usecase.ScrapeServiceConfig{
			Timeout:      cfg.Scrape.Timeout,
			ListingLimit: cfg.Scrape.ListingLimit,
		},
	)
	profitService := usecase.NewProfitService(usecase.ProfitServiceConfig{
		DefaultVATRate:     cfg.Profit.VATRate,
		ServiceFeeSameDay:  cfg.Profit.ServiceFeeSameDay,
		ServiceFeeStandard: cfg.Profit.ServiceFeeStandard,
	})

	log.Printf("Scrape: timeout=%s, listing_limit=%d, coupon_retries=%d",
		cfg.Scrape.Timeout, cfg.Scrape.ListingLimit, cfg.Scrape.CouponRetries)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(scrapeService, profitService)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
