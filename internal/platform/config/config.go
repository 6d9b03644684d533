package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/SscSPs/vet_clinic_backend/internal/core/domain"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL        string
	MigrationsPath     string
	Port               string
	IsProduction       bool
	JWTSecret          string
	CORSAllowedOrigins []string
	RateLimit          string // ulule format, e.g. "100-M"

	// RedisURL enables the shared alert store and the sweep lock. Empty keeps both in memory.
	RedisURL string

	StockShortfallPolicy   domain.ShortfallPolicy
	LowStockSweepInterval  time.Duration
	DefaultPlatformFeeRate decimal.Decimal // percent

	ReconciliationInterval    time.Duration
	ReconciliationMaxAttempts int
	ReconciliationBatchSize   int
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("MIGRATIONS_PATH", "migrations")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("RATE_LIMIT", "100-M")
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("STOCK_SHORTFALL_POLICY", string(domain.ShortfallPermissive))
	viper.SetDefault("LOW_STOCK_SWEEP_INTERVAL", "1h")
	viper.SetDefault("DEFAULT_PLATFORM_FEE_RATE", "5")
	viper.SetDefault("RECONCILIATION_INTERVAL", "30s")
	viper.SetDefault("RECONCILIATION_MAX_ATTEMPTS", 8)
	viper.SetDefault("RECONCILIATION_BATCH_SIZE", 20)

	viper.AutomaticEnv()

	cfg := &Config{
		DatabaseURL:               viper.GetString("PGSQL_URL"),
		MigrationsPath:            viper.GetString("MIGRATIONS_PATH"),
		Port:                      viper.GetString("PORT"),
		IsProduction:              viper.GetBool("IS_PRODUCTION"),
		JWTSecret:                 viper.GetString("JWT_SECRET"),
		RateLimit:                 viper.GetString("RATE_LIMIT"),
		RedisURL:                  viper.GetString("REDIS_URL"),
		ReconciliationMaxAttempts: viper.GetInt("RECONCILIATION_MAX_ATTEMPTS"),
		ReconciliationBatchSize:   viper.GetInt("RECONCILIATION_BATCH_SIZE"),
	}

	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}
	if cfg.JWTSecret == "" {
		if cfg.IsProduction {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
		cfg.JWTSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	for _, origin := range strings.Split(viper.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	policy, err := domain.ParseShortfallPolicy(viper.GetString("STOCK_SHORTFALL_POLICY"))
	if err != nil {
		return nil, err
	}
	cfg.StockShortfallPolicy = policy

	if cfg.LowStockSweepInterval, err = parsePositiveDuration("LOW_STOCK_SWEEP_INTERVAL"); err != nil {
		return nil, err
	}
	if cfg.ReconciliationInterval, err = parsePositiveDuration("RECONCILIATION_INTERVAL"); err != nil {
		return nil, err
	}

	feeRate, err := decimal.NewFromString(viper.GetString("DEFAULT_PLATFORM_FEE_RATE"))
	if err != nil || feeRate.IsNegative() {
		return nil, fmt.Errorf("invalid DEFAULT_PLATFORM_FEE_RATE %q", viper.GetString("DEFAULT_PLATFORM_FEE_RATE"))
	}
	cfg.DefaultPlatformFeeRate = feeRate

	if cfg.ReconciliationMaxAttempts < 1 {
		return nil, fmt.Errorf("RECONCILIATION_MAX_ATTEMPTS must be at least 1")
	}
	if cfg.ReconciliationBatchSize < 1 {
		return nil, fmt.Errorf("RECONCILIATION_BATCH_SIZE must be at least 1")
	}

	return cfg, nil
}

func parsePositiveDuration(key string) (time.Duration, error) {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, raw)
	}
	return d, nil
}
