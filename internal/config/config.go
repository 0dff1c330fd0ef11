package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Database   DatabaseConfig   `envPrefix:"DB_"`
	JWT        JWTConfig        `envPrefix:"JWT_"`
	App        AppConfig        `envPrefix:"APP_"`
	Redis      RedisConfig      `envPrefix:"REDIS_"`
	RabbitMQ   RabbitMQConfig   `envPrefix:"RABBITMQ_"`
	Scheduling SchedulingConfig `envPrefix:"SCHEDULE_"`
	Store      StoreConfig      `envPrefix:"STORE_"`
	RateLimit  RateLimitConfig  `envPrefix:"RATE_LIMIT_"`
}

type DatabaseConfig struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     int    `env:"PORT" envDefault:"5432"`
	User     string `env:"USER" envDefault:"postgres"`
	Password string `env:"PASSWORD"`
	Name     string `env:"NAME" envDefault:"shift_engine"`
	SSLMode  string `env:"SSL_MODE" envDefault:"disable"`
	MaxConns int32  `env:"MAX_CONNS" envDefault:"25"`
	MinConns int32  `env:"MIN_CONNS" envDefault:"5"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string        `env:"SECRET_KEY"`
	AccessExpiration time.Duration `env:"ACCESS_EXPIRATION_TIME" envDefault:"1h"`
}

// AppConfig holds application configuration
type AppConfig struct {
	Port            int           `env:"PORT" envDefault:"8080"`
	Env             string        `env:"ENV" envDefault:"development"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	FrontendURL     string        `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

type RedisConfig struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     int    `env:"PORT" envDefault:"6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

// RabbitMQConfig enables domain event publishing when URL is set.
type RabbitMQConfig struct {
	URL            string        `env:"URL"`
	Exchange       string        `env:"EXCHANGE" envDefault:"shift-engine.events"`
	PublishTimeout time.Duration `env:"PUBLISH_TIMEOUT" envDefault:"5s"`
}

type SchedulingConfig struct {
	// TimeZone is the zone batch dates and times of day are interpreted in.
	TimeZone         string        `env:"TIMEZONE" envDefault:"UTC"`
	BatchConcurrency int           `env:"BATCH_CONCURRENCY" envDefault:"4"`
	LockDriver       string        `env:"LOCK_DRIVER" envDefault:"local"`
	LockTTL          time.Duration `env:"LOCK_TTL" envDefault:"10s"`
	LockRetry        time.Duration `env:"LOCK_RETRY" envDefault:"50ms"`
	// LockPoolSize caps the connections of the pool advisory locks are held on.
	LockPoolSize     int32         `env:"LOCK_POOL_SIZE" envDefault:"10"`
}

type StoreConfig struct {
	Driver string `env:"DRIVER" envDefault:"postgres"`
}

type RateLimitConfig struct {
	AttendancePerMinute int `env:"ATTENDANCE_PER_MINUTE" envDefault:"30"`
	Burst               int `env:"BURST" envDefault:"10"`
}

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"

	LockDriverLocal    = "local"
	LockDriverRedis    = "redis"
	LockDriverPostgres = "postgres"
)

func Load() (*Config, error) {
	// a missing .env is fine, the environment may already be populated
	_ = godotenv.Load()

	config := &Config{}
	if err := env.Parse(config); err != nil {
		var aggErr env.AggregateError
		if errors.As(err, &aggErr) && len(aggErr.Errors) > 0 {
			return nil, fmt.Errorf("invalid environment: %w", aggErr.Errors[0])
		}
		return nil, fmt.Errorf("invalid environment: %w", err)
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreDriverPostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q", StoreDriverPostgres, StoreDriverMemory)
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}

	switch c.Scheduling.LockDriver {
	case LockDriverLocal, LockDriverRedis:
	case LockDriverPostgres:
		if c.Store.Driver != StoreDriverPostgres {
			return fmt.Errorf("SCHEDULE_LOCK_DRIVER=postgres requires STORE_DRIVER=postgres")
		}
		if c.Scheduling.LockPoolSize < 1 {
			return fmt.Errorf("SCHEDULE_LOCK_POOL_SIZE must be at least 1")
		}
	default:
		return fmt.Errorf("SCHEDULE_LOCK_DRIVER must be one of local, redis, postgres")
	}

	if c.Scheduling.BatchConcurrency < 1 {
		return fmt.Errorf("SCHEDULE_BATCH_CONCURRENCY must be at least 1")
	}
	if _, err := time.LoadLocation(c.Scheduling.TimeZone); err != nil {
		return fmt.Errorf("invalid SCHEDULE_TIMEZONE: %w", err)
	}

	if c.RateLimit.AttendancePerMinute < 1 || c.RateLimit.Burst < 1 {
		return fmt.Errorf("RATE_LIMIT_ATTENDANCE_PER_MINUTE and RATE_LIMIT_BURST must be positive")
	}

	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// Location returns the scheduling time zone. Validate has already checked it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Scheduling.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}
