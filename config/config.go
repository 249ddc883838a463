package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"storefront-api/database"
	"storefront-api/services/email"
)

type Config struct {
	Env        string
	Database   database.DatabaseConfig
	SMTP       email.SMTPConfig
	Server     ServerConfig
	Redis      RedisConfig
	Session    SessionConfig
	JWT        JWTConfig
	CustomHat  CustomHatConfig
	Customizer CustomizerConfig
	Checkout   CheckoutConfig
}

type ServerConfig struct {
	Port           string
	AllowedOrigin  string
	TrustedProxies []string
}

type RedisConfig struct {
	URL               string
	WorkerConcurrency int
}

type SessionConfig struct {
	Secret string
	Domain string
	MaxAge int
	Secure bool
}

type JWTConfig struct {
	Secret string
	Issuer string
}

// CustomHatConfig is the placeholder product used for custom hat lines.
type CustomHatConfig struct {
	Name  string
	Price float64
	Image string
}

type CustomizerConfig struct {
	MaxChars    int
	MaxWords    int
	MinQuantity int
}

type CheckoutConfig struct {
	ProcessingDelay time.Duration
}

func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// Load reads the environment, after an optional .env file.
func Load(logger *zap.Logger) *Config {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := godotenv.Load(); err != nil {
		logger.Warn("no .env file loaded", zap.Error(err))
	}

	cfg := &Config{
		Env: getEnv("APP_ENV", "production"),
		Database: database.DatabaseConfig{
			Host:     os.Getenv("DB_HOST"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			DBName:   os.Getenv("DB_NAME"),
		},
		SMTP: email.SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getEnv("SMTP_PORT", "587"),
			Username: os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     getEnv("SMTP_FROM", "no-reply@localhost"),
		},
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "8080"),
			AllowedOrigin:  os.Getenv("ALLOWED_ORIGIN"),
			TrustedProxies: getEnvList("TRUSTED_PROXIES"),
		},
		Redis: RedisConfig{
			URL:               getEnv("REDIS_URL", "redis://localhost:6379/0"),
			WorkerConcurrency: clamp(getEnvInt(logger, "WORKER_CONCURRENCY", 2), 1, 8),
		},
		Session: SessionConfig{
			Secret: os.Getenv("SESSION_SECRET"),
			Domain: os.Getenv("SESSION_DOMAIN"),
			MaxAge: getEnvInt(logger, "SESSION_MAX_AGE", 7*24*3600),
			Secure: getEnvBool(logger, "SESSION_SECURE", true),
		},
		JWT: JWTConfig{
			Secret: os.Getenv("JWT_SECRET"),
			Issuer: getEnv("JWT_ISSUER", "storefront-api"),
		},
		CustomHat: CustomHatConfig{
			Name:  getEnv("CUSTOM_HAT_NAME", "Custom Embroidered Hat"),
			Price: getEnvFloat(logger, "CUSTOM_HAT_PRICE", 24.99),
			Image: getEnv("CUSTOM_HAT_IMAGE", "/images/custom-hat.jpg"),
		},
		Customizer: CustomizerConfig{
			MaxChars:    getEnvInt(logger, "CUSTOM_MAX_CHARS", 20),
			MaxWords:    getEnvInt(logger, "CUSTOM_MAX_WORDS", 3),
			MinQuantity: getEnvInt(logger, "CUSTOM_MIN_QUANTITY", 50),
		},
		Checkout: CheckoutConfig{
			ProcessingDelay: getEnvDuration(logger, "CHECKOUT_PROCESSING_DELAY", 2*time.Second),
		},
	}

	if cfg.Session.Secret == "" {
		logger.Warn("SESSION_SECRET not set, sessions will not survive a restart")
	}
	if cfg.JWT.Secret == "" {
		logger.Warn("JWT_SECRET not set, admin login is disabled")
	}

	logger.Info("config loaded",
		zap.String("env", cfg.Env),
		zap.String("port", cfg.Server.Port),
		zap.String("db_host", cfg.Database.Host),
		zap.Int("worker_concurrency", cfg.Redis.WorkerConcurrency),
		zap.Duration("processing_delay", cfg.Checkout.ProcessingDelay),
	)

	return cfg
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// getEnvList splits a comma-separated variable, dropping empty entries.
func getEnvList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getEnvInt(logger *zap.Logger, key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		logger.Warn("invalid integer, using default", zap.String("key", key), zap.String("value", raw))
		return fallback
	}
	return v
}

func getEnvFloat(logger *zap.Logger, key string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		logger.Warn("invalid number, using default", zap.String("key", key), zap.String("value", raw))
		return fallback
	}
	return v
}

func getEnvBool(logger *zap.Logger, key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		logger.Warn("invalid boolean, using default", zap.String("key", key), zap.String("value", raw))
		return fallback
	}
	return v
}

func getEnvDuration(logger *zap.Logger, key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v < 0 {
		logger.Warn("invalid duration, using default", zap.String("key", key), zap.String("value", raw))
		return fallback
	}
	return v
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
