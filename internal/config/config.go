package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP
	HTTPPort     string
	MaxBodyBytes int64

	// TimescaleDB
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBMaxConns int32

	RunMigrations bool

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LiveStateTTLSeconds int

	// Device registry cache
	DeviceCacheTTLSeconds int
	DeviceCacheSweepCron  string

	// Ingestion
	IngestWorkers           int
	IngestTimeoutSeconds    int
	TimestampMaxSkewSeconds int

	// MQTT ingress, disabled when the broker is empty
	MQTTBroker   string
	MQTTClientID string
	MQTTTopic    string

	// Alert fan-out, each disabled when its URL is empty
	RabbitMQURL      string
	RabbitMQExchange string
	NATSURL          string
	NATSSubject      string

	// Logging
	LogLevel       string
	LogFilePath    string
	LogMaxAgeDays  int
	LogForceColors bool
}

func Load() *Config {
	return &Config{
		HTTPPort:                getEnv("HTTP_PORT", "8001"),
		MaxBodyBytes:            int64(getEnvInt("MAX_BODY_BYTES", 4<<20)),
		DBHost:                  getEnv("DB_HOST", "localhost"),
		DBPort:                  getEnv("DB_PORT", "5432"),
		DBUser:                  getEnv("DB_USER", "fleet_user"),
		DBPassword:              getEnv("DB_PASSWORD", "fleet_password"),
		DBName:                  getEnv("DB_NAME", "fleet_monitor"),
		DBSSLMode:               getEnv("DB_SSLMODE", "disable"),
		DBMaxConns:              int32(getEnvInt("DB_MAX_CONNS", 15)),
		RunMigrations:           getEnvBool("RUN_MIGRATIONS", true),
		RedisAddr:               getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:           getEnv("REDIS_PASSWORD", ""),
		RedisDB:                 getEnvInt("REDIS_DB", 0),
		LiveStateTTLSeconds:     getEnvInt("LIVE_STATE_TTL_SECONDS", 300),
		DeviceCacheTTLSeconds:   getEnvInt("DEVICE_CACHE_TTL_SECONDS", 30),
		DeviceCacheSweepCron:    getEnv("DEVICE_CACHE_SWEEP_CRON", "@every 1m"),
		IngestWorkers:           getEnvInt("INGEST_WORKERS", 8),
		IngestTimeoutSeconds:    getEnvInt("INGEST_TIMEOUT_SECONDS", 25),
		TimestampMaxSkewSeconds: getEnvInt("TIMESTAMP_MAX_SKEW_SECONDS", 900),
		MQTTBroker:              getEnv("MQTT_BROKER", ""),
		MQTTClientID:            getEnv("MQTT_CLIENT_ID", "gps-ingestion"),
		MQTTTopic:               getEnv("MQTT_TOPIC", "trackers/+/positions"),
		RabbitMQURL:             getEnv("RABBITMQ_URL", ""),
		RabbitMQExchange:        getEnv("RABBITMQ_EXCHANGE", "fleet.geofence"),
		NATSURL:                 getEnv("NATS_URL", ""),
		NATSSubject:             getEnv("NATS_SUBJECT", "fleet.geofence.alerts"),
		LogLevel:                strings.ToUpper(getEnv("LOG_LEVEL", "INFO")),
		LogFilePath:             getEnv("LOG_FILE_PATH", ""),
		LogMaxAgeDays:           getEnvInt("LOG_MAX_AGE_DAYS", 30),
		LogForceColors:          getEnvBool("LOG_FORCE_COLORS", false),
	}
}

// DatabaseURL is the pgx connection string, including the pool size.
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&pool_max_conns=%d",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
		c.DBSSLMode,
		c.DBMaxConns,
	)
}

// MigrationURL addresses the same database through the migrate pgx/v5 driver.
func (c *Config) MigrationURL() string {
	return fmt.Sprintf(
		"pgx5://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
		c.DBSSLMode,
	)
}

func (c *Config) LiveStateTTL() time.Duration {
	return time.Duration(c.LiveStateTTLSeconds) * time.Second
}

func (c *Config) DeviceCacheTTL() time.Duration {
	return time.Duration(c.DeviceCacheTTLSeconds) * time.Second
}

func (c *Config) IngestTimeout() time.Duration {
	return time.Duration(c.IngestTimeoutSeconds) * time.Second
}

func (c *Config) TimestampMaxSkew() time.Duration {
	return time.Duration(c.TimestampMaxSkewSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
