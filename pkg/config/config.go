package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Paystack     PaystackConfig
	Webhook      WebhookConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Paystack.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"FRESHBASKET_APP_ENV" required:"true"`
	Port         string `envconfig:"FRESHBASKET_APP_PORT" required:"true"`
	BaseURL      string `envconfig:"FRESHBASKET_APP_BASE_URL" required:"true"`
	LogLevel     string `envconfig:"FRESHBASKET_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FRESHBASKET_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"FRESHBASKET_DB_DSN"`
	Driver string `envconfig:"FRESHBASKET_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"FRESHBASKET_DB_HOST"`
	LegacyPort     int    `envconfig:"FRESHBASKET_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"FRESHBASKET_DB_USER"`
	LegacyPassword string `envconfig:"FRESHBASKET_DB_PASSWORD"`
	LegacyName     string `envconfig:"FRESHBASKET_DB_NAME"`
	LegacySSLMode  string `envconfig:"FRESHBASKET_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FRESHBASKET_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FRESHBASKET_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FRESHBASKET_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FRESHBASKET_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FRESHBASKET_REDIS_URL" required:"true"`
	Address      string        `envconfig:"FRESHBASKET_REDIS_ADDR"`
	Password     string        `envconfig:"FRESHBASKET_REDIS_PASSWORD"`
	DB           int           `envconfig:"FRESHBASKET_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FRESHBASKET_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FRESHBASKET_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FRESHBASKET_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FRESHBASKET_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FRESHBASKET_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// JWTConfig describes tokens minted by the hosted identity provider. The API
// only verifies them; it never issues its own.
type JWTConfig struct {
	Secret string `envconfig:"FRESHBASKET_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"FRESHBASKET_JWT_ISSUER" required:"true"`
}

type PaystackConfig struct {
	SecretKey     string `envconfig:"FRESHBASKET_PAYSTACK_SECRET_KEY" required:"true"`
	WebhookSecret string `envconfig:"FRESHBASKET_PAYSTACK_WEBHOOK_SECRET"`
	BaseURL       string `envconfig:"FRESHBASKET_PAYSTACK_BASE_URL" default:"https://api.paystack.co"`
	CallbackPath  string `envconfig:"FRESHBASKET_PAYSTACK_CALLBACK_PATH" default:"/payment/callback"`
}

// SigningSecret returns the secret used to verify webhook signatures.
// Paystack signs with the account secret key unless a dedicated webhook
// secret is configured.
func (p PaystackConfig) SigningSecret() string {
	if s := strings.TrimSpace(p.WebhookSecret); s != "" {
		return s
	}
	return strings.TrimSpace(p.SecretKey)
}

func (p PaystackConfig) validate() error {
	if strings.TrimSpace(p.SecretKey) == "" {
		return fmt.Errorf("paystack secret key is required")
	}
	return nil
}

type WebhookConfig struct {
	IdempotencyTTL time.Duration `envconfig:"FRESHBASKET_WEBHOOK_IDEMPOTENCY_TTL" default:"720h"`
	TxMaxRetries   uint64        `envconfig:"FRESHBASKET_WEBHOOK_TX_MAX_RETRIES" default:"3"`
	TxRetryBackoff time.Duration `envconfig:"FRESHBASKET_WEBHOOK_TX_RETRY_BACKOFF" default:"50ms"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"FRESHBASKET_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
