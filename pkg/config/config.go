package config

import (
	"fmt"
	"net"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Commerce     CommerceConfig
	FeatureFlags FeatureFlagsConfig
	CORS         CORSConfig
}

// Load reads the environment and reports every invalid section at once.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	err := multierr.Combine(
		cfg.App.validate(),
		cfg.DB.resolveDSN(),
		cfg.Redis.validate(),
		cfg.JWT.validate(),
		cfg.Commerce.validate(),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"BAZAAR_APP_ENV" required:"true"`
	Port         string `envconfig:"BAZAAR_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"BAZAAR_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BAZAAR_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) validate() error {
	port, err := strconv.Atoi(a.Port)
	if err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("%s must be a port number, got %q", EnvPort, a.Port)
	}
	return nil
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// DBConfig takes either a full DSN or the discrete connection parts.
type DBConfig struct {
	DSN string `envconfig:"BAZAAR_DB_DSN"`

	Host     string `envconfig:"BAZAAR_DB_HOST"`
	Port     int    `envconfig:"BAZAAR_DB_PORT" default:"5432"`
	User     string `envconfig:"BAZAAR_DB_USER"`
	Password string `envconfig:"BAZAAR_DB_PASSWORD"`
	Name     string `envconfig:"BAZAAR_DB_NAME"`
	SSLMode  string `envconfig:"BAZAAR_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BAZAAR_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BAZAAR_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BAZAAR_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BAZAAR_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	SlowQueryThreshold time.Duration `envconfig:"BAZAAR_DB_SLOW_QUERY" default:"500ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BAZAAR_REDIS_URL"`
	Address      string        `envconfig:"BAZAAR_REDIS_ADDR"`
	Password     string        `envconfig:"BAZAAR_REDIS_PASSWORD"`
	DB           int           `envconfig:"BAZAAR_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BAZAAR_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BAZAAR_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BAZAAR_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BAZAAR_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BAZAAR_REDIS_WRITE_TIMEOUT" default:"5s"`
	KeyPrefix    string        `envconfig:"BAZAAR_REDIS_KEY_PREFIX" default:"bz"`
}

func (r RedisConfig) validate() error {
	if r.URL == "" && r.Address == "" {
		return fmt.Errorf("either %s or %s is required", EnvRedisURL, EnvRedisAddr)
	}
	return nil
}

// JWTConfig describes the tokens minted by the external identity provider.
type JWTConfig struct {
	Secret            string `envconfig:"BAZAAR_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"BAZAAR_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"BAZAAR_JWT_EXPIRATION_MINUTES" default:"60"`
	Audience          string `envconfig:"BAZAAR_JWT_AUDIENCE"`
	// Leeway absorbs clock skew against the identity provider.
	Leeway time.Duration `envconfig:"BAZAAR_JWT_LEEWAY" default:"30s"`
}

func (j JWTConfig) validate() error {
	if j.ExpirationMinutes <= 0 {
		return fmt.Errorf("%s must be positive", EnvJWTExpMins)
	}
	if j.Leeway < 0 {
		return fmt.Errorf("%s must not be negative", EnvJWTLeeway)
	}
	return nil
}

// AccessTTL is the lifetime of an access token.
func (j JWTConfig) AccessTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

// CommerceConfig holds the marketplace money rules.
type CommerceConfig struct {
	ReferralCommission   decimal.Decimal `envconfig:"BAZAAR_REFERRAL_COMMISSION" default:"250"`
	MinWithdrawal        decimal.Decimal `envconfig:"BAZAAR_MIN_WITHDRAWAL" default:"200"`
	ReferralCodeLength   int             `envconfig:"BAZAAR_REFERRAL_CODE_LENGTH" default:"8"`
	ReferralCodeAttempts int             `envconfig:"BAZAAR_REFERRAL_CODE_ATTEMPTS" default:"5"`
}

func (c CommerceConfig) validate() error {
	if c.ReferralCommission.IsNegative() {
		return fmt.Errorf("%s must not be negative", EnvReferralCommission)
	}
	if !c.MinWithdrawal.IsPositive() {
		return fmt.Errorf("%s must be positive", EnvMinWithdrawal)
	}
	if c.ReferralCodeLength < 6 {
		return fmt.Errorf("referral code length must be at least 6")
	}
	if c.ReferralCodeAttempts <= 0 {
		return fmt.Errorf("referral code attempts must be positive")
	}
	return nil
}

type FeatureFlagsConfig struct {
	AutoMigrate           bool `envconfig:"BAZAAR_AUTO_MIGRATE" default:"false"`
	RequireIdempotencyKey bool `envconfig:"BAZAAR_REQUIRE_IDEMPOTENCY_KEY" default:"false"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"BAZAAR_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

func (db *DBConfig) resolveDSN() error {
	if db.DSN != "" {
		return nil
	}

	var missing []string
	for env, value := range map[string]string{EnvDBHost: db.Host, EnvDBUser: db.User, EnvDBName: db.Name} {
		if value == "" {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("%s is unset and %s are missing", EnvDBDSN, strings.Join(missing, ", "))
	}

	u := url.URL{
		Scheme: "postgres",
		User:   url.User(db.User),
		Host:   net.JoinHostPort(db.Host, strconv.Itoa(db.Port)),
		Path:   db.Name,
	}
	if db.Password != "" {
		u.User = url.UserPassword(db.User, db.Password)
	}
	if db.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {db.SSLMode}}.Encode()
	}
	db.DSN = u.String()
	return nil
}
