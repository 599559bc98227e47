package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/rl1809/pos-checkout/internal/core/pricing"
)

type Config struct {
	HTTPAddr string
	GRPCAddr string

	MySQLDSN             string
	MySQLMaxOpenConns    int
	MySQLMaxIdleConns    int
	MySQLConnMaxLifetime time.Duration

	RedisAddr     string
	RedisPoolSize int

	TaxRate        decimal.Decimal
	TenantTaxRates map[int64]decimal.Decimal
	EnforceStock   bool

	SubmitLockTTL   time.Duration
	SubmitTimeout   time.Duration
	CatalogCacheTTL time.Duration
	SessionIdleTTL  time.Duration

	CORSOrigins []string

	LogLevel  string
	LogFormat string
}

func Default() Config {
	return Config{
		HTTPAddr:             ":8080",
		GRPCAddr:             ":50051",
		MySQLDSN:             "root:root@tcp(localhost:3306)/pos?parseTime=true",
		MySQLMaxOpenConns:    50,
		MySQLMaxIdleConns:    25,
		MySQLConnMaxLifetime: 5 * time.Minute,
		RedisAddr:            "localhost:6379",
		RedisPoolSize:        100,
		TaxRate:              pricing.DefaultTaxRate,
		EnforceStock:         true,
		SubmitLockTTL:        30 * time.Second,
		SubmitTimeout:        10 * time.Second,
		CatalogCacheTTL:      time.Minute,
		SessionIdleTTL:       30 * time.Minute,
		CORSOrigins:          []string{"*"},
		LogLevel:             "info",
		LogFormat:            "json",
	}
}

// Load reads .env files when present, then the environment. Unset variables
// keep their defaults; malformed ones are an error.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}

	cfg := Default()
	var errs []error
	read := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	cfg.HTTPAddr = GetEnv("HTTP_ADDR", cfg.HTTPAddr)
	cfg.GRPCAddr = GetEnv("GRPC_ADDR", cfg.GRPCAddr)
	cfg.MySQLDSN = GetEnv("MYSQL_DSN", cfg.MySQLDSN)
	cfg.RedisAddr = GetEnv("REDIS_ADDR", cfg.RedisAddr)
	cfg.LogLevel = GetEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = GetEnv("LOG_FORMAT", cfg.LogFormat)

	read(intEnv("MYSQL_MAX_OPEN_CONNS", &cfg.MySQLMaxOpenConns))
	read(intEnv("MYSQL_MAX_IDLE_CONNS", &cfg.MySQLMaxIdleConns))
	read(intEnv("REDIS_POOL_SIZE", &cfg.RedisPoolSize))
	read(durationEnv("MYSQL_CONN_MAX_LIFETIME", &cfg.MySQLConnMaxLifetime))
	read(durationEnv("SUBMIT_LOCK_TTL", &cfg.SubmitLockTTL))
	read(durationEnv("SUBMIT_TIMEOUT", &cfg.SubmitTimeout))
	read(durationEnv("CATALOG_CACHE_TTL", &cfg.CatalogCacheTTL))
	read(durationEnv("SESSION_IDLE_TTL", &cfg.SessionIdleTTL))
	read(boolEnv("ENFORCE_STOCK", &cfg.EnforceStock))

	if v := GetEnv("TAX_RATE", ""); v != "" {
		rate, err := pricing.ParseRate(v)
		if err != nil {
			read(fmt.Errorf("TAX_RATE: %w", err))
		} else {
			cfg.TaxRate = rate
		}
	}
	if v := GetEnv("TENANT_TAX_RATES", ""); v != "" {
		rates, err := pricing.ParseTenantRates(v)
		if err != nil {
			read(fmt.Errorf("TENANT_TAX_RATES: %w", err))
		} else {
			cfg.TenantTaxRates = rates
		}
	}
	if v := GetEnv("CORS_ORIGINS", ""); v != "" {
		cfg.CORSOrigins = splitList(v)
	}

	switch cfg.LogFormat {
	case "json", "console":
	default:
		read(fmt.Errorf("LOG_FORMAT: unknown format %q", cfg.LogFormat))
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Rates builds the tax table from the default and per-tenant rates.
func (c Config) Rates() pricing.RateTable {
	table := pricing.NewRateTable(c.TaxRate)
	for tenant, rate := range c.TenantTaxRates {
		table.PerTenant[tenant] = rate
	}
	return table
}

// GetEnv returns the value of key, or fallback when it is unset or empty.
func GetEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, dst *int) error {
	v := GetEnv(key, "")
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fmt.Errorf("%s: want a positive integer, got %q", key, v)
	}
	*dst = n
	return nil
}

func durationEnv(key string, dst *time.Duration) error {
	v := GetEnv(key, "")
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fmt.Errorf("%s: want a positive duration, got %q", key, v)
	}
	*dst = d
	return nil
}

func boolEnv(key string, dst *bool) error {
	v := GetEnv(key, "")
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: want a boolean, got %q", key, v)
	}
	*dst = b
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
