package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/Eursukkul/booking-microservice/reservation-service/internal/models"
	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	ServerPort string
	RabbitURL  string
	LogLevel   string

	ReservationTTL            time.Duration
	LockTimeout               time.Duration
	SweepInterval             time.Duration
	PaymentReferenceMaxLength int

	warnings []warning
}

// warning is a problem found while loading, kept until a logger exists.
type warning struct {
	msg  string
	args []any
}

// Load reads .env (if present) and the process environment. Problems are not logged
// here; call LogWarnings once the application logger is configured.
func Load() *Config {
	c := &Config{}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		c.warn("failed to load .env", "err", err)
	}

	c.DBHost = getEnv("DB_HOST", "localhost")
	c.DBPort = getEnv("DB_PORT", "5432")
	c.DBUser = getEnv("DB_USER", "postgres")
	c.DBPassword = getEnv("DB_PASSWORD", "postgres")
	c.DBName = getEnv("DB_NAME", "reservation_db")
	c.DBSSLMode = getEnv("DB_SSLMODE", "disable")

	c.ServerPort = getEnv("SERVER_PORT", "8082")
	c.RabbitURL = os.Getenv("RABBITMQ_URL")
	c.LogLevel = getEnv("LOG_LEVEL", "info")

	c.ReservationTTL = time.Duration(c.getInt("RESERVATION_TTL_MINUTES", 15, 1, 0)) * time.Minute
	c.LockTimeout = time.Duration(c.getInt("LOCK_TIMEOUT_MS", 5000, 0, 0)) * time.Millisecond
	c.SweepInterval = time.Duration(c.getInt("SWEEP_INTERVAL_SECONDS", 60, 0, 0)) * time.Second
	// The column is varchar(64); a longer limit would let oversized references reach the database.
	c.PaymentReferenceMaxLength = c.getInt("PAYMENT_REFERENCE_MAX_LENGTH",
		models.PaymentReferenceMaxLength, 1, models.PaymentReferenceMaxLength)

	return c
}

func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// Warnings returns the messages of problems found by Load.
func (c *Config) Warnings() []string {
	out := make([]string, len(c.warnings))
	for i, w := range c.warnings {
		out[i] = w.msg
	}
	return out
}

// LogWarnings writes the problems found by Load to log.
func (c *Config) LogWarnings(log *slog.Logger) {
	for _, w := range c.warnings {
		log.Warn(w.msg, w.args...)
	}
}

func (c *Config) warn(msg string, args ...any) {
	c.warnings = append(c.warnings, warning{msg: msg, args: args})
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getInt falls back to def when the value is missing, malformed or below min, and clamps
// it to max when max > 0.
func (c *Config) getInt(key string, def, min, max int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < min {
		c.warn("invalid config value, using default", "key", key, "value", raw, "default", def)
		return def
	}
	if max > 0 && v > max {
		c.warn("config value above maximum, clamping", "key", key, "value", raw, "max", max)
		return max
	}
	return v
}
