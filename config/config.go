package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Server configuration
	Port        string
	Environment string

	// Redis configuration
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// PubNub configuration
	PubNubPublishKey   string
	PubNubSubscribeKey string
	PubNubSecretKey    string

	// Chain gateway configuration
	DefaultPlatform string
	AdapterTimeout  time.Duration
	TicketLockTTL   time.Duration

	PolygonConfig PolygonConfig
	ZoraConfig    ZoraConfig

	// Monitoring
	EnableMetrics bool
	MetricsPort   string
}

type PolygonConfig struct {
	BaseURL string
	APIKey  string
	ChainID int
	Timeout time.Duration
}

type ZoraConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		// Server
		Port:        getEnv("PORT", "8090"),
		Environment: getEnv("ENVIRONMENT", "development"),

		// Redis
		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// PubNub
		PubNubPublishKey:   getEnv("PUBNUB_PUBLISH_KEY", ""),
		PubNubSubscribeKey: getEnv("PUBNUB_SUBSCRIBE_KEY", ""),
		PubNubSecretKey:    getEnv("PUBNUB_SECRET_KEY", ""),

		// Chain gateways
		DefaultPlatform: getEnv("DEFAULT_PLATFORM", "polygon"),
		AdapterTimeout:  getEnvAsDuration("ADAPTER_TIMEOUT", "30s"),
		TicketLockTTL:   getEnvAsDuration("TICKET_LOCK_TTL", "30s"),

		PolygonConfig: PolygonConfig{
			BaseURL: getEnv("POLYGON_GATEWAY_URL", ""),
			APIKey:  getEnv("POLYGON_API_KEY", ""),
			ChainID: getEnvAsInt("POLYGON_CHAIN_ID", 137),
			Timeout: getEnvAsDuration("POLYGON_TIMEOUT", "30s"),
		},
		ZoraConfig: ZoraConfig{
			BaseURL: getEnv("ZORA_GATEWAY_URL", ""),
			Token:   getEnv("ZORA_API_TOKEN", ""),
			Timeout: getEnvAsDuration("ZORA_TIMEOUT", "30s"),
		},

		// Monitoring
		EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),
		MetricsPort:   getEnv("METRICS_PORT", "9090"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	// If parsing fails, try to parse default value
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
