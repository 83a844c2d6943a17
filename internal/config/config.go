package config

import (
	"flag"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/shopspring/decimal"

	"github.com/GlebRadaev/rewardsledger/internal/domain"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	Address         string          `env:"RUN_ADDRESS"            envDefault:"localhost:8080"`
	PaymentAddress  string          `env:"PAYMENT_SYSTEM_ADDRESS" envDefault:"localhost:8081"`
	Database        string          `env:"DATABASE_URI"`
	LogLvl          string          `env:"LOG_LVL"                envDefault:"info"`
	Storage         string          `env:"STORAGE"                envDefault:"postgres"`
	TiersFile       string          `env:"TIERS_FILE"`
	JWTSecret       string          `env:"JWT_SECRET"`
	TokenTTL        time.Duration   `env:"TOKEN_TTL"              envDefault:"15m"`
	ViewTimeout     time.Duration   `env:"VIEW_TIMEOUT"           envDefault:"8s"`
	WriteTimeout    time.Duration   `env:"WRITE_TIMEOUT"          envDefault:"5s"`
	PointsPerUnit   decimal.Decimal `env:"POINTS_PER_UNIT"        envDefault:"1"`
	CORSOrigins     []string        `env:"CORS_ORIGINS"           envDefault:"*" envSeparator:","`
	AccrualInterval time.Duration   `env:"ACCRUAL_INTERVAL"       envDefault:"5s"`
	AccrualWorkers  int             `env:"ACCRUAL_WORKERS"        envDefault:"10"`

	parseErr error
}

func New() *Config {
	cfg := &Config{}

	cfg.parseErr = env.Parse(cfg)

	flag.StringVar(&cfg.Address, "a", cfg.Address, "address and port to run server")
	flag.StringVar(&cfg.PaymentAddress, "r", cfg.PaymentAddress, "payment system address and port")
	flag.StringVar(&cfg.Database, "d", cfg.Database, "database DSN")
	flag.StringVar(&cfg.LogLvl, "l", cfg.LogLvl, "log level")
	flag.StringVar(&cfg.Storage, "s", cfg.Storage, "storage backend: postgres or memory")
	flag.StringVar(&cfg.TiersFile, "t", cfg.TiersFile, "tier catalog YAML file, embedded default when empty")
	flag.Parse()

	if !strings.HasPrefix(cfg.PaymentAddress, "http://") && !strings.HasPrefix(cfg.PaymentAddress, "https://") {
		cfg.PaymentAddress = "http://" + cfg.PaymentAddress
	}

	return cfg
}

// Validate fails fast on settings the service can't run with.
func (c *Config) Validate() error {
	if c.parseErr != nil {
		return domain.NewConfigError("environment: %v", c.parseErr)
	}
	switch c.Storage {
	case StoragePostgres:
		if c.Database == "" {
			return domain.NewConfigError("DATABASE_URI is required for postgres storage")
		}
	case StorageMemory:
	default:
		return domain.NewConfigError("unknown storage %q", c.Storage)
	}
	if c.JWTSecret == "" {
		return domain.NewConfigError("JWT_SECRET is required")
	}
	if c.TokenTTL <= 0 || c.ViewTimeout <= 0 || c.WriteTimeout <= 0 || c.AccrualInterval <= 0 {
		return domain.NewConfigError("durations must be positive")
	}
	if !c.PointsPerUnit.IsPositive() {
		return domain.NewConfigError("POINTS_PER_UNIT must be positive, got %s", c.PointsPerUnit)
	}
	if c.AccrualWorkers <= 0 {
		return domain.NewConfigError("ACCRUAL_WORKERS must be positive, got %d", c.AccrualWorkers)
	}
	return nil
}
