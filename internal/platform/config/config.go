package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config is the full process configuration.
type Config struct {
	Server    Server
	LogLevel  string
	Redis     RedisConfig
	Database  DatabaseConfig
	Kafka     KafkaConfig
	RateLimit RateLimitConfig
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr           string
	Environment    string
	AdminToken     string
	RequestTimeout time.Duration
	SessionTTL     time.Duration
	AnalysisTick   time.Duration
}

// StrictKeys reports whether unknown consent keys are rejected instead of ignored.
func (s Server) StrictKeys() bool {
	return s.Environment != EnvProduction
}

// RedisConfig configures the optional session store. Empty URL disables it.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig configures the optional audit store. Empty URL disables it.
type DatabaseConfig struct {
	URL          string
	MaxOpenConns int
}

// KafkaConfig configures audit fan-out. No brokers disables it.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
}

// Enabled reports whether brokers are configured.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

// RateLimitConfig sets per-client request budgets per minute.
type RateLimitConfig struct {
	Disabled       bool
	ReadPerMinute  int
	WritePerMinute int
}

// LoadDotEnv loads .env files into the environment without overriding
// variables that are already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() (Config, error) {
	var errs []error
	duration := func(key string, def time.Duration) time.Duration {
		d, err := durationEnv(key, def)
		if err != nil {
			errs = append(errs, err)
		}
		return d
	}
	boolean := func(key string, def bool) bool {
		b, err := boolEnv(key, def)
		if err != nil {
			errs = append(errs, err)
		}
		return b
	}
	integer := func(key string, def int) int {
		n, err := intEnv(key, def)
		if err != nil {
			errs = append(errs, err)
		}
		return n
	}

	env := stringEnv("STACIA_ENV", EnvDevelopment)
	if env != EnvDevelopment && env != EnvProduction {
		errs = append(errs, fmt.Errorf("STACIA_ENV: unknown environment %q", env))
	}

	cfg := Config{
		Server: Server{
			Addr:           stringEnv("STACIA_ADDR", ":8080"),
			Environment:    env,
			AdminToken:     os.Getenv("ADMIN_API_TOKEN"),
			RequestTimeout: duration("REQUEST_TIMEOUT", 10*time.Second),
			SessionTTL:     duration("SESSION_TTL", 24*time.Hour),
			AnalysisTick:   duration("ANALYSIS_TICK", 200*time.Millisecond),
		},
		LogLevel: stringEnv("LOG_LEVEL", "info"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     integer("REDIS_POOL_SIZE", 10),
			MinIdleConns: integer("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  duration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  duration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: duration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: integer("DATABASE_MAX_OPEN_CONNS", 10),
		},
		Kafka: KafkaConfig{
			Brokers:    splitList(os.Getenv("KAFKA_BROKERS")),
			AuditTopic: stringEnv("KAFKA_AUDIT_TOPIC", "stacia.audit"),
		},
		RateLimit: RateLimitConfig{
			Disabled:       boolean("RATE_LIMIT_DISABLED", false),
			ReadPerMinute:  integer("RATE_LIMIT_READ_PER_MINUTE", 300),
			WritePerMinute: integer("RATE_LIMIT_WRITE_PER_MINUTE", 60),
		},
	}
	if !cfg.RateLimit.Disabled && (cfg.RateLimit.ReadPerMinute <= 0 || cfg.RateLimit.WritePerMinute <= 0) {
		errs = append(errs, errors.New("RATE_LIMIT_*_PER_MINUTE must be positive unless RATE_LIMIT_DISABLED"))
	}
	if cfg.Server.AnalysisTick <= 0 {
		errs = append(errs, errors.New("ANALYSIS_TICK must be positive"))
	}
	return cfg, errors.Join(errs...)
}

func stringEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func intEnv(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func boolEnv(key string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
