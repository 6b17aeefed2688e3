package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces every environment variable the service reads.
const EnvPrefix = "designdrip"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App       AppConfig
	Backend   BackendConfig
	Stripe    StripeConfig
	Shipping  ShippingConfig
	Redis     RedisConfig
	LocalDB   LocalDBConfig
	JWT       JWTConfig
	Cache     CacheConfig
	Resume    ResumeConfig
	RateLimit RateLimitConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"DESIGNDRIP_APP_ENV" required:"true"`
	Port         string `envconfig:"DESIGNDRIP_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"DESIGNDRIP_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"DESIGNDRIP_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// BackendConfig points at the storefront order/payment backend.
type BackendConfig struct {
	BaseURL   string        `envconfig:"DESIGNDRIP_BACKEND_BASE_URL" required:"true"`
	Timeout   time.Duration `envconfig:"DESIGNDRIP_BACKEND_TIMEOUT" default:"15s"`
	ReturnURL string        `envconfig:"DESIGNDRIP_CHECKOUT_RETURN_URL" default:"designdripmobile://orders"`
}

type StripeConfig struct {
	APIKey string `envconfig:"DESIGNDRIP_STRIPE_API_KEY"`
	Env    string `envconfig:"DESIGNDRIP_STRIPE_ENV" default:"test"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

// ShippingConfig carries the shipping price table. Amounts are minor
// currency units (VND has no fractional unit).
type ShippingConfig struct {
	ExpressSurcharge int64  `envconfig:"DESIGNDRIP_SHIPPING_EXPRESS_SURCHARGE" default:"30000"`
	CurrencySymbol   string `envconfig:"DESIGNDRIP_CURRENCY_SYMBOL" default:"₫"`
}

type RedisConfig struct {
	URL          string        `envconfig:"DESIGNDRIP_REDIS_URL" required:"true"`
	Address      string        `envconfig:"DESIGNDRIP_REDIS_ADDR"`
	Password     string        `envconfig:"DESIGNDRIP_REDIS_PASSWORD"`
	DB           int           `envconfig:"DESIGNDRIP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"DESIGNDRIP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DESIGNDRIP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DESIGNDRIP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DESIGNDRIP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"DESIGNDRIP_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// LocalDBConfig configures the on-device store used for pending payment
// intents. SQLite by default; a Postgres DSN is accepted for shared
// deployments.
type LocalDBConfig struct {
	Driver          string        `envconfig:"DESIGNDRIP_LOCALDB_DRIVER" default:"sqlite"`
	DSN             string        `envconfig:"DESIGNDRIP_LOCALDB_DSN" default:"storefront.db"`
	MaxOpenConns    int           `envconfig:"DESIGNDRIP_LOCALDB_MAX_OPEN_CONNS" default:"5"`
	MaxIdleConns    int           `envconfig:"DESIGNDRIP_LOCALDB_MAX_IDLE_CONNS" default:"2"`
	ConnMaxLifetime time.Duration `envconfig:"DESIGNDRIP_LOCALDB_CONN_MAX_LIFETIME" default:"1h"`
}

type JWTConfig struct {
	Secret string `envconfig:"DESIGNDRIP_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"DESIGNDRIP_JWT_ISSUER" default:"designdrip"`
}

// CacheConfig sets TTLs for the read-through query cache.
type CacheConfig struct {
	CheckoutInfoTTL   time.Duration `envconfig:"DESIGNDRIP_CACHE_CHECKOUT_INFO_TTL" default:"30s"`
	PaymentMethodsTTL time.Duration `envconfig:"DESIGNDRIP_CACHE_PAYMENT_METHODS_TTL" default:"5m"`
	OrdersTTL         time.Duration `envconfig:"DESIGNDRIP_CACHE_ORDERS_TTL" default:"1m"`
	CartTTL           time.Duration `envconfig:"DESIGNDRIP_CACHE_CART_TTL" default:"30s"`
}

// ResumeConfig controls pending-intent reconciliation on relaunch.
type ResumeConfig struct {
	MaxAge time.Duration `envconfig:"DESIGNDRIP_RESUME_MAX_AGE" default:"24h"`
}

// RateLimitConfig throttles checkout submissions per user.
type RateLimitConfig struct {
	SubmitWindow time.Duration `envconfig:"DESIGNDRIP_RATE_LIMIT_SUBMIT_WINDOW" default:"1m"`
	SubmitLimit  int64         `envconfig:"DESIGNDRIP_RATE_LIMIT_SUBMIT_LIMIT" default:"10"`
}
