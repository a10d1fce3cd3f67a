package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix scopes every configuration variable.
	EnvPrefix = "SHOPFLOW"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App           AppConfig
	Mongo         MongoConfig
	Redis         RedisConfig
	Tokens        TokenConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Tokens.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SHOPFLOW_APP_ENV" default:"dev"`
	Port         string `envconfig:"SHOPFLOW_APP_PORT" default:"3055"`
	LogLevel     string `envconfig:"SHOPFLOW_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SHOPFLOW_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type MongoConfig struct {
	URI            string        `envconfig:"SHOPFLOW_MONGO_URI" default:"mongodb://localhost:27017"`
	Database       string        `envconfig:"SHOPFLOW_MONGO_DB" default:"shopflow"`
	ConnectTimeout time.Duration `envconfig:"SHOPFLOW_MONGO_CONNECT_TIMEOUT" default:"10s"`
	MaxPoolSize    uint64        `envconfig:"SHOPFLOW_MONGO_MAX_POOL_SIZE" default:"50"`
	MonitorPeriod  time.Duration `envconfig:"SHOPFLOW_MONGO_MONITOR_PERIOD" default:"5s"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SHOPFLOW_REDIS_URL"`
	Address      string        `envconfig:"SHOPFLOW_REDIS_ADDR" default:"localhost:6379"`
	Password     string        `envconfig:"SHOPFLOW_REDIS_PASSWORD"`
	DB           int           `envconfig:"SHOPFLOW_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SHOPFLOW_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SHOPFLOW_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SHOPFLOW_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SHOPFLOW_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SHOPFLOW_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// TokenConfig controls token lifetimes and per-shop key generation. The
// refresh TTL must always exceed the access TTL so a client can rotate
// before it is fully locked out.
type TokenConfig struct {
	AccessTTL  time.Duration `envconfig:"SHOPFLOW_TOKEN_ACCESS_TTL" default:"48h"`
	RefreshTTL time.Duration `envconfig:"SHOPFLOW_TOKEN_REFRESH_TTL" default:"168h"`
	RSABits    int           `envconfig:"SHOPFLOW_TOKEN_RSA_BITS" default:"2048"`
}

func (t TokenConfig) validate() error {
	if t.AccessTTL <= 0 {
		return fmt.Errorf("access token ttl must be positive")
	}
	if t.RefreshTTL <= t.AccessTTL {
		return fmt.Errorf("refresh token ttl (%s) must exceed access token ttl (%s)", t.RefreshTTL, t.AccessTTL)
	}
	if t.RSABits < 2048 {
		return fmt.Errorf("rsa key size must be at least 2048 bits")
	}
	return nil
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SHOPFLOW_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SHOPFLOW_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SHOPFLOW_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SHOPFLOW_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SHOPFLOW_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow      time.Duration `envconfig:"SHOPFLOW_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit  int           `envconfig:"SHOPFLOW_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit     int           `envconfig:"SHOPFLOW_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	SignupWindow     time.Duration `envconfig:"SHOPFLOW_AUTH_RATE_LIMIT_SIGNUP_WINDOW" default:"5m"`
	SignupEmailLimit int           `envconfig:"SHOPFLOW_AUTH_RATE_LIMIT_SIGNUP_EMAIL_LIMIT" default:"3"`
	SignupIPLimit    int           `envconfig:"SHOPFLOW_AUTH_RATE_LIMIT_SIGNUP_IP_LIMIT" default:"20"`
}
