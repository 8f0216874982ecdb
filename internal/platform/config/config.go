package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Server captures process-level configuration. Every field is read from a
// SENDGATE_* environment variable.
type Server struct {
	Addr          string        `env:"SENDGATE_ADDR"            envDefault:":8080"`
	LogLevel      string        `env:"SENDGATE_LOG_LEVEL"       envDefault:"info"`
	JWTSigningKey string        `env:"SENDGATE_JWT_SIGNING_KEY" envDefault:"dev-secret-key-change-in-production"`
	JWTIssuer     string        `env:"SENDGATE_JWT_ISSUER"      envDefault:"sendgate"`
	PromptTTL     time.Duration `env:"SENDGATE_PROMPT_TTL"      envDefault:"5m"`
	DecisionWait  time.Duration `env:"SENDGATE_DECISION_WAIT"   envDefault:"30s"`
	CommitWorkers int           `env:"SENDGATE_COMMIT_WORKERS"  envDefault:"4"`

	Database    DatabaseConfig
	Redis       RedisConfig
	Audit       AuditConfig
	Telemetry   TelemetryConfig
	Fingerprint FingerprintConfig
}

// DatabaseConfig selects the PostgreSQL identity store. An empty URL keeps
// everything in memory.
type DatabaseConfig struct {
	URL             string        `env:"SENDGATE_DATABASE_URL"`
	MaxOpenConns    int           `env:"SENDGATE_DATABASE_MAX_OPEN_CONNS"    envDefault:"10"`
	MaxIdleConns    int           `env:"SENDGATE_DATABASE_MAX_IDLE_CONNS"    envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"SENDGATE_DATABASE_CONN_MAX_LIFETIME" envDefault:"30m"`
	Migrate         bool          `env:"SENDGATE_DATABASE_MIGRATE"           envDefault:"true"`
}

// RedisConfig enables the blocking-identity cache. An empty URL disables it.
type RedisConfig struct {
	URL          string        `env:"SENDGATE_REDIS_URL"`
	PoolSize     int           `env:"SENDGATE_REDIS_POOL_SIZE"      envDefault:"10"`
	MinIdleConns int           `env:"SENDGATE_REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"SENDGATE_REDIS_DIAL_TIMEOUT"   envDefault:"5s"`
	ReadTimeout  time.Duration `env:"SENDGATE_REDIS_READ_TIMEOUT"   envDefault:"3s"`
	WriteTimeout time.Duration `env:"SENDGATE_REDIS_WRITE_TIMEOUT"  envDefault:"3s"`
	CacheTTL     time.Duration `env:"SENDGATE_REDIS_CACHE_TTL"      envDefault:"30s"`
}

// AuditConfig controls where audit events go. Kafka is optional.
type AuditConfig struct {
	BufferSize   int      `env:"SENDGATE_AUDIT_BUFFER_SIZE"   envDefault:"1024"`
	KafkaBrokers []string `env:"SENDGATE_AUDIT_KAFKA_BROKERS" envSeparator:","`
	KafkaTopic   string   `env:"SENDGATE_AUDIT_KAFKA_TOPIC"   envDefault:"sendgate.audit"`
}

// TelemetryConfig enables OTLP trace export when an endpoint is set.
type TelemetryConfig struct {
	ServiceName  string `env:"SENDGATE_OTEL_SERVICE_NAME" envDefault:"sendgate"`
	OTLPEndpoint string `env:"SENDGATE_OTEL_ENDPOINT"`
}

// FingerprintConfig describes the local side of every safety number.
type FingerprintConfig struct {
	LocalIdentifier  string `env:"SENDGATE_LOCAL_IDENTIFIER"       envDefault:"local"`
	LocalIdentityKey string `env:"SENDGATE_LOCAL_IDENTITY_KEY"`     // base64
	Iterations       int    `env:"SENDGATE_FINGERPRINT_ITERATIONS" envDefault:"5200"`
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.CommitWorkers <= 0 {
		return Server{}, fmt.Errorf("SENDGATE_COMMIT_WORKERS must be positive")
	}
	if cfg.PromptTTL <= 0 {
		return Server{}, fmt.Errorf("SENDGATE_PROMPT_TTL must be positive")
	}
	if cfg.Fingerprint.Iterations <= 0 {
		return Server{}, fmt.Errorf("SENDGATE_FINGERPRINT_ITERATIONS must be positive")
	}
	return cfg, nil
}
