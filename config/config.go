package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/health-checker/backend/pricing"
	"github.com/health-checker/backend/techdetect"
)

// Config holds every setting the service reads from its environment
type Config struct {
	Port      string
	GinMode   string
	LogLevel  string
	LogFormat string
	DevMode   bool

	PageSpeedAPIKey  string
	PageSpeedBaseURL string

	TechDetection  techdetect.Mode
	TechAPIKey     string
	TechAPIBaseURL string

	// TechAllowPrivate lets html detection fetch loopback and private addresses
	TechAllowPrivate bool

	HTTPTimeout   time.Duration
	FormsEndpoint string

	Catalog pricing.Catalog
}

func loadEnv() {
	// Try to load .env.development first (for local development)
	if err := godotenv.Load(".env.development"); err != nil {
		// If .env.development doesn't exist, try regular .env
		if err := godotenv.Load(); err != nil {
			log.Info("No .env file found, using environment variables")
		}
	}
}

// Load reads .env files and the process environment into a Config.
// Missing API keys are not an error here; requests fail until they are set.
func Load() (*Config, error) {
	loadEnv()
	return FromEnv()
}

// FromEnv builds a Config from the current process environment only
func FromEnv() (*Config, error) {
	mode, err := techdetect.ParseMode(os.Getenv("TECH_DETECTION"))
	if err != nil {
		return nil, err
	}

	timeout, err := time.ParseDuration(getEnv("HTTP_TIMEOUT", "90s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}

	devMode, _ := strconv.ParseBool(os.Getenv("DEV_MODE"))
	allowPrivate, _ := strconv.ParseBool(os.Getenv("TECH_HTML_ALLOW_PRIVATE"))

	cfg := &Config{
		Port: getEnv("PORT", "8082"),
		// Default to release mode if not specified
		GinMode:          getEnv("GIN_MODE", gin.ReleaseMode),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "text"),
		DevMode:          devMode,
		PageSpeedAPIKey:  os.Getenv("PAGESPEED_API_KEY"),
		PageSpeedBaseURL: os.Getenv("PAGESPEED_BASE_URL"),
		TechDetection:    mode,
		TechAPIKey:       os.Getenv("TECH_API_KEY"),
		TechAPIBaseURL:   os.Getenv("TECH_API_BASE_URL"),
		TechAllowPrivate: allowPrivate,
		HTTPTimeout:      timeout,
		FormsEndpoint:    os.Getenv("FORMS_ENDPOINT"),
		Catalog:          pricing.DefaultCatalog(),
	}

	if path := os.Getenv("PRICING_FILE"); path != "" {
		catalog, err := pricing.LoadCatalog(path)
		if err != nil {
			return nil, err
		}
		cfg.Catalog = catalog
	}

	return cfg, nil
}

// MissingCredentials lists the API keys the current settings need but do not have
func (c *Config) MissingCredentials() []string {
	var missing []string
	if c.PageSpeedAPIKey == "" {
		missing = append(missing, "PAGESPEED_API_KEY")
	}
	if c.TechDetection == techdetect.ModeAPI && c.TechAPIKey == "" {
		missing = append(missing, "TECH_API_KEY")
	}
	return missing
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
