package main

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/health-checker/backend/analyzer"
	"github.com/health-checker/backend/api"
	"github.com/health-checker/backend/config"
	"github.com/health-checker/backend/leads"
	"github.com/health-checker/backend/logging"
	"github.com/health-checker/backend/middleware"
	"github.com/health-checker/backend/pricing"
	"github.com/health-checker/backend/stats"
)

// statsRetainMonths is how many months of counters survive the daily cleanup
const statsRetainMonths = 12

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}
}

func cleanupStats(counters *stats.Counters) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for range ticker.C {
		counters.Cleanup(statsRetainMonths)
	}
}

func main() {
	// Load environment configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := logging.Setup(cfg.LogLevel, cfg.LogFormat, os.Stdout); err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	if missing := cfg.MissingCredentials(); len(missing) > 0 {
		log.Warnf("Missing %s, analysis requests will fail until set", strings.Join(missing, ", "))
	}

	gin.SetMode(cfg.GinMode)

	// Initialize services
	httpClient := newHTTPClient(cfg.HTTPTimeout)
	counters := stats.NewCounters()
	go cleanupStats(counters)

	handler := &api.Handler{
		Analyzer: analyzer.FromConfig(cfg, httpClient),
		Pricing:  pricing.NewEngine(cfg.Catalog),
		Leads:    leads.NewFormsSender(cfg.FormsEndpoint, cfg.Catalog.Currency, httpClient),
		Stats:    counters,
		DevMode:  cfg.DevMode,
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(logging.RequestLogger())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORS())

	// API routes
	handler.Register(r.Group("/api"))

	log.WithFields(log.Fields{
		"port":          cfg.Port,
		"techDetection": cfg.TechDetection,
		"devMode":       cfg.DevMode,
	}).Infof("Server starting on http://localhost:%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
