package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Trendyol TrendyolConfig
	Scrape   ScrapeConfig
	Profit   ProfitConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// TrendyolConfig holds product-detail gateway configuration
type TrendyolConfig struct {
	BaseURL   string  `mapstructure:"base_url"`
	RateLimit float64 `mapstructure:"rate_limit"` // detail requests per second
}

// ScrapeConfig holds scrape pipeline configuration
type ScrapeConfig struct {
	Timeout          time.Duration `mapstructure:"timeout"`
	ListingLimit     int           `mapstructure:"listing_limit"`
	CouponRetries    int           `mapstructure:"coupon_retries"`
	CouponRetryDelay time.Duration `mapstructure:"coupon_retry_delay"`
}

// ProfitConfig holds the defaults of the profit calculator
type ProfitConfig struct {
	VATRate            float64 `mapstructure:"vat_rate"`
	ServiceFeeSameDay  float64 `mapstructure:"service_fee_same_day"`
	ServiceFeeStandard float64 `mapstructure:"service_fee_standard"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/profitlens/")

	// Environment variable settings
	v.SetEnvPrefix("PROFITLENS")
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"chrome-extension://*"})

	// Gateway defaults
	v.SetDefault("trendyol.base_url", "https://apigw.trendyol.com/discovery-web-productgw-service")
	v.SetDefault("trendyol.rate_limit", 5.0)

	// Scrape defaults
	v.SetDefault("scrape.timeout", "12s")
	v.SetDefault("scrape.listing_limit", 10)
	v.SetDefault("scrape.coupon_retries", 5)
	v.SetDefault("scrape.coupon_retry_delay", "300ms")

	// Profit defaults
	v.SetDefault("profit.vat_rate", 0.20)
	v.SetDefault("profit.service_fee_same_day", 8.39)
	v.SetDefault("profit.service_fee_standard", 13.39)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Trendyol.BaseURL == "" {
		return fmt.Errorf("gateway base URL is required (set PROFITLENS_TRENDYOL_BASE_URL)")
	}

	if config.Scrape.Timeout <= 0 {
		return fmt.Errorf("scrape timeout must be positive, got: %s", config.Scrape.Timeout)
	}

	if config.Scrape.ListingLimit <= 0 {
		return fmt.Errorf("listing limit must be positive, got: %d", config.Scrape.ListingLimit)
	}

	if config.Profit.VATRate < 0 || config.Profit.VATRate >= 1 {
		return fmt.Errorf("VAT rate must be in [0, 1), got: %.2f", config.Profit.VATRate)
	}

	return nil
}
