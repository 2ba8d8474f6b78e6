package config

import (
	"os"
	"strconv"
	"time"

	"citypulse/internal/database"
	"citypulse/internal/messaging"
)

// Config содержит конфигурацию приложения
type Config struct {
	Port           string
	GinMode        string
	LogLevel       string
	LogFormat      string
	RequestTimeout time.Duration

	// Display settings, read once at startup. The client formerly
	// re-applied these per screen; they are process-wide state.
	Language  string
	Theme     string
	FontScale float64

	// Proximity notifications
	NotificationsEnabled  bool
	ProximityRadiusMeters float64

	NATSEnabled bool

	Database      database.Config
	NATS          messaging.Config
	Elasticsearch ElasticsearchConfig
	Valkey        ValkeyConfig
}

type ValkeyConfig struct {
	Enabled  bool
	Addr     string
	Password string
	ViewTTL  time.Duration
}

// Load загружает конфигурацию из переменных окружения
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8081"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SEC", 30)) * time.Second,

		Language:  getEnv("APP_LANGUAGE", "en"),
		Theme:     getEnv("APP_THEME", "light"),
		FontScale: getEnvFloat("APP_FONT_SCALE", 1.0),

		NotificationsEnabled:  getEnv("NOTIFICATIONS_ENABLED", "true") == "true",
		ProximityRadiusMeters: getEnvFloat("PROXIMITY_RADIUS_METERS", 2000),

		NATSEnabled: getEnv("NATS_ENABLED", "true") == "true",

		Database: database.Config{
			Host:               getEnv("DB_HOST", "localhost"),
			Port:               getEnvInt("DB_PORT", 5432),
			User:               getEnv("DB_USER", "citypulse"),
			Password:           getEnv("DB_PASSWORD", "citypulse123"),
			DBName:             getEnv("DB_NAME", "citypulse"),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeMin: getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 5),
			ConnMaxIdleTimeMin: getEnvInt("DB_CONN_MAX_IDLE_TIME_MIN", 1),
		},

		NATS: messaging.Config{
			URL:       getEnv("NATS_URL", "nats://localhost:4222"),
			ClusterID: getEnv("NATS_CLUSTER_ID", "citypulse"),
			ClientID:  getEnv("NATS_CLIENT_ID", "citypulse-api"),
		},

		Elasticsearch: loadElasticsearchConfig(),

		Valkey: ValkeyConfig{
			Enabled:  getEnv("VALKEY_ENABLED", "false") == "true",
			Addr:     getEnv("VALKEY_ADDR", "localhost:6379"),
			Password: getEnv("VALKEY_PASSWORD", ""),
			ViewTTL:  time.Duration(getEnvInt("VALKEY_VIEW_TTL_SEC", 30)) * time.Second,
		},
	}
}

// getEnv получает значение переменной окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает целочисленное значение переменной окружения
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
