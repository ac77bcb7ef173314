package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	Redis    RedisConfig
	Payments PaymentsConfig
	Checkout CheckoutConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Checkout.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SHOPLIVE_APP_ENV" required:"true"`
	Port         string `envconfig:"SHOPLIVE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SHOPLIVE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SHOPLIVE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type RedisConfig struct {
	URL          string        `envconfig:"SHOPLIVE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SHOPLIVE_REDIS_ADDR"`
	Password     string        `envconfig:"SHOPLIVE_REDIS_PASSWORD"`
	DB           int           `envconfig:"SHOPLIVE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SHOPLIVE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SHOPLIVE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SHOPLIVE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SHOPLIVE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SHOPLIVE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type PaymentsConfig struct {
	BaseURL        string        `envconfig:"SHOPLIVE_PAYMENTS_BASE_URL" required:"true"`
	APIKey         string        `envconfig:"SHOPLIVE_PAYMENTS_API_KEY"`
	RequestTimeout time.Duration `envconfig:"SHOPLIVE_PAYMENTS_REQUEST_TIMEOUT" default:"30s"`
}

type CheckoutConfig struct {
	TaxRateBps                 int    `envconfig:"SHOPLIVE_CHECKOUT_TAX_RATE_BPS" default:"800"`
	FreeShippingThresholdCents int64  `envconfig:"SHOPLIVE_CHECKOUT_FREE_SHIPPING_THRESHOLD_CENTS" default:"5000"`
	FlatShippingCents          int64  `envconfig:"SHOPLIVE_CHECKOUT_FLAT_SHIPPING_CENTS" default:"999"`
	OrderNumberPrefix          string `envconfig:"SHOPLIVE_CHECKOUT_ORDER_PREFIX" default:"SL"`
	Currency                   string `envconfig:"SHOPLIVE_CHECKOUT_CURRENCY" default:"usd"`
}

func (c CheckoutConfig) validate() error {
	if c.TaxRateBps < 0 || c.TaxRateBps > 10000 {
		return fmt.Errorf("tax rate must be between 0 and 10000 bps, got %d", c.TaxRateBps)
	}
	if c.FreeShippingThresholdCents < 0 {
		return fmt.Errorf("free shipping threshold must be non-negative")
	}
	if c.FlatShippingCents < 0 {
		return fmt.Errorf("flat shipping fee must be non-negative")
	}
	if strings.TrimSpace(c.OrderNumberPrefix) == "" {
		return fmt.Errorf("order number prefix is required")
	}
	return nil
}
