package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool
	BaseCurrency string

	// Inbound rate limit, e.g. "10-M" (10 requests per minute per IP).
	SyncRateLimit string

	// Payments provider (static bearer token).
	PaymentsAPIURL string
	PaymentsToken  string

	// Investment provider. Either the static token or the credential triple
	// must be set for the source to be configured.
	InvestAPIURL      string
	InvestUsername    string
	InvestPassword    string
	InvestDocument    string
	InvestStaticToken string

	// Market-data provider (API-key query parameter).
	MarketDataAPIURL      string
	MarketDataKey         string
	MarketDataMinInterval time.Duration
}

// PaymentsConfigured reports whether the payments source can be synced.
func (c *Config) PaymentsConfigured() bool {
	return c.PaymentsAPIURL != "" && c.PaymentsToken != ""
}

// InvestmentConfigured reports whether the investment source can be synced.
func (c *Config) InvestmentConfigured() bool {
	if c.InvestAPIURL == "" {
		return false
	}
	return c.InvestStaticToken != "" ||
		(c.InvestUsername != "" && c.InvestPassword != "" && c.InvestDocument != "")
}

// MarketDataConfigured reports whether the market-data source can be synced.
func (c *Config) MarketDataConfigured() bool {
	return c.MarketDataAPIURL != "" && c.MarketDataKey != ""
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("BASE_CURRENCY", "EUR")
	viper.SetDefault("SYNC_RATE_LIMIT", "10-M")
	viper.SetDefault("PAYMENTS_API_URL", "")
	viper.SetDefault("PAYMENTS_TOKEN", "")
	viper.SetDefault("INVEST_API_URL", "")
	viper.SetDefault("INVEST_USERNAME", "")
	viper.SetDefault("INVEST_PASSWORD", "")
	viper.SetDefault("INVEST_DOCUMENT", "")
	viper.SetDefault("INVEST_STATIC_TOKEN", "")
	viper.SetDefault("MARKETDATA_API_URL", "")
	viper.SetDefault("MARKETDATA_KEY", "")
	viper.SetDefault("MARKETDATA_MIN_INTERVAL", "1100ms")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.BaseCurrency = viper.GetString("BASE_CURRENCY")
	cfg.SyncRateLimit = viper.GetString("SYNC_RATE_LIMIT")

	cfg.PaymentsAPIURL = viper.GetString("PAYMENTS_API_URL")
	cfg.PaymentsToken = viper.GetString("PAYMENTS_TOKEN")

	cfg.InvestAPIURL = viper.GetString("INVEST_API_URL")
	cfg.InvestUsername = viper.GetString("INVEST_USERNAME")
	cfg.InvestPassword = viper.GetString("INVEST_PASSWORD")
	cfg.InvestDocument = viper.GetString("INVEST_DOCUMENT")
	cfg.InvestStaticToken = viper.GetString("INVEST_STATIC_TOKEN")

	cfg.MarketDataAPIURL = viper.GetString("MARKETDATA_API_URL")
	cfg.MarketDataKey = viper.GetString("MARKETDATA_KEY")

	minIntervalStr := viper.GetString("MARKETDATA_MIN_INTERVAL")
	minInterval, err := time.ParseDuration(minIntervalStr)
	if err != nil || minInterval <= 0 {
		minInterval = 1100 * time.Millisecond
		if minIntervalStr != "" {
			log.Printf("Warning: Invalid value for MARKETDATA_MIN_INTERVAL ('%s'). Defaulting to %s.\n", minIntervalStr, minInterval)
		}
	}
	cfg.MarketDataMinInterval = minInterval

	if !cfg.PaymentsConfigured() {
		log.Println("Warning: payments provider not configured; its sync step will be skipped.")
	}
	if !cfg.InvestmentConfigured() {
		log.Println("Warning: investment provider not configured; its sync step will be skipped.")
	}
	if !cfg.MarketDataConfigured() {
		log.Println("Warning: market-data provider not configured; its sync step will be skipped.")
	}

	return cfg, nil
}
