package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces variables; every field also resolves from its bare tag name.
const EnvPrefix = "STOREFRONT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	PaymentModeSimulated = "simulated"
	PaymentModeBackend   = "backend"
)

type Config struct {
	App      AppConfig
	Backend  BackendConfig
	Checkout CheckoutConfig
	AWS      AWSConfig
	Redis    RedisConfig
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
	Env           string        `envconfig:"APP_ENV" default:"dev"`
	Port          string        `envconfig:"APP_PORT" default:"8080"`
	RunLocal      bool          `envconfig:"RUN_LOCAL" default:"false"`
	LogLevel      string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat     string        `envconfig:"LOG_FORMAT" default:"json"`
	DefaultLocale string        `envconfig:"DEFAULT_LOCALE" default:"ro"`
	SessionIdle   time.Duration `envconfig:"SESSION_IDLE" default:"30m"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// BackendConfig points at the storefront REST backend.
type BackendConfig struct {
	BaseURL string `envconfig:"BACKEND_URL" default:"http://localhost:8000"`
	// Zero leaves timeouts to the transport.
	Timeout time.Duration `envconfig:"BACKEND_TIMEOUT" default:"0s"`
}

type CheckoutConfig struct {
	PaymentMode     string        `envconfig:"PAYMENT_MODE" default:"simulated"`
	SimulatedDelay  time.Duration `envconfig:"PAYMENT_SIMULATED_DELAY" default:"2s"`
	RedirectDelay   time.Duration `envconfig:"CHECKOUT_REDIRECT_DELAY" default:"3s"`
	RedirectPath    string        `envconfig:"CHECKOUT_REDIRECT_PATH" default:"/"`
	LedgerEnabled   bool          `envconfig:"LEDGER_ENABLED" default:"false"`
	IdempotencyTTL  time.Duration `envconfig:"IDEMPOTENCY_TTL" default:"48h"`
	AttemptsTable   string        `envconfig:"ATTEMPTS_TABLE" default:"checkout-attempts"`
	IdempotencyTbl  string        `envconfig:"IDEMPOTENCY_TABLE" default:"checkout-idempotency"`
	QueueURL        string        `envconfig:"CHECKOUT_QUEUE_URL"`
	MetricNamespace string        `envconfig:"METRIC_NAMESPACE" default:"Storefront/Checkout"`
}

func (c CheckoutConfig) validate() error {
	switch c.PaymentMode {
	case PaymentModeSimulated, PaymentModeBackend:
	default:
		return fmt.Errorf("unknown payment mode %q", c.PaymentMode)
	}
	if c.LedgerEnabled && c.QueueURL == "" {
		return fmt.Errorf("CHECKOUT_QUEUE_URL is required when the ledger is enabled")
	}
	return nil
}

type AWSConfig struct {
	Region           string `envconfig:"AWS_REGION" default:"us-east-1"`
	EndpointOverride string `envconfig:"AWS_ENDPOINT_OVERRIDE"`
}

// RedisConfig is optional; an empty URL and address disables the cart cache.
type RedisConfig struct {
	URL          string        `envconfig:"REDIS_URL"`
	Address      string        `envconfig:"REDIS_ADDR"`
	Password     string        `envconfig:"REDIS_PASSWORD"`
	DB           int           `envconfig:"REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"REDIS_POOL_SIZE" default:"10"`
	DialTimeout  time.Duration `envconfig:"REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"REDIS_WRITE_TIMEOUT" default:"3s"`
	CartTTL      time.Duration `envconfig:"CART_CACHE_TTL" default:"15m"`
}

func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}
