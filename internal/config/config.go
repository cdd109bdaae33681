package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAppName        = "ZetSandbox"
	defaultAppEnv         = "development"
	defaultPort           = "8080"
	defaultLogLevel       = "info"
	defaultShutdownDelay  = 10 * time.Second
	defaultAccessTokenTTL = 24 * time.Hour
	defaultOTPTTL         = 5 * time.Minute
	defaultSendOTPPerMin  = 5
	defaultIdempotencyTTL = 24 * time.Hour
	defaultConnectTimeout = 5 * time.Second
	defaultDBMaxConns     = 10
	devJWTSecret          = "sandbox-development-secret"
	shutdownSecondsEnvVar = "SHUTDOWN_TIMEOUT_SECONDS"
	shutdownDurEnvVar     = "SHUTDOWN_TIMEOUT"
)

// Config captures sandbox backend configuration loaded from environment variables.
type Config struct {
	AppName        string
	Env            string
	Port           string
	LogLevel       string
	DatabaseURL    string
	RedisURL       string
	JWTSecret      string
	AccessTokenTTL time.Duration
	OTPTTL         time.Duration
	ExposeOTP      bool
	SendOTPPerMin  int
	IdempotencyTTL time.Duration
	ShutdownPeriod time.Duration
	ConnectTimeout time.Duration
	DBMaxConns     int
}

// Load reads configuration values from the environment (and an optional .env
// file) and populates a Config instance.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		AppName:        getEnv("APP_NAME", defaultAppName),
		Env:            getEnv("APP_ENV", defaultAppEnv),
		Port:           getEnv("PORT", defaultPort),
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		AccessTokenTTL: defaultAccessTokenTTL,
		OTPTTL:         defaultOTPTTL,
		SendOTPPerMin:  defaultSendOTPPerMin,
		IdempotencyTTL: defaultIdempotencyTTL,
		ShutdownPeriod: defaultShutdownDelay,
		ConnectTimeout: defaultConnectTimeout,
		DBMaxConns:     defaultDBMaxConns,
	}

	var err error
	if v := os.Getenv(shutdownSecondsEnvVar); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", shutdownSecondsEnvVar, err)
		}
		cfg.ShutdownPeriod = time.Duration(seconds) * time.Second
	} else if cfg.ShutdownPeriod, err = getDuration(shutdownDurEnvVar, defaultShutdownDelay); err != nil {
		return Config{}, err
	}
	if cfg.AccessTokenTTL, err = getDuration("ACCESS_TOKEN_TTL", defaultAccessTokenTTL); err != nil {
		return Config{}, err
	}
	if cfg.OTPTTL, err = getDuration("OTP_TTL", defaultOTPTTL); err != nil {
		return Config{}, err
	}
	if cfg.IdempotencyTTL, err = getDuration("IDEMPOTENCY_TTL", defaultIdempotencyTTL); err != nil {
		return Config{}, err
	}
	if cfg.ConnectTimeout, err = getDuration("CONNECT_TIMEOUT", defaultConnectTimeout); err != nil {
		return Config{}, err
	}
	if v := os.Getenv("DB_MAX_CONNS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return Config{}, fmt.Errorf("invalid DB_MAX_CONNS %q", v)
		}
		cfg.DBMaxConns = n
	}
	if cfg.ExposeOTP, err = getBool("SANDBOX_EXPOSE_OTP", false); err != nil {
		return Config{}, err
	}
	if v := os.Getenv("SEND_OTP_PER_MINUTE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SEND_OTP_PER_MINUTE: %w", err)
		}
		cfg.SendOTPPerMin = n
	}

	if cfg.JWTSecret == "" {
		if !cfg.IsDev() {
			return Config{}, fmt.Errorf("JWT_SECRET must be set when APP_ENV=%s", cfg.Env)
		}
		cfg.JWTSecret = devJWTSecret
	}

	return cfg, nil
}

// IsDev reports whether the sandbox runs in a development environment where
// Postgres and Redis are optional.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.Env) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}
