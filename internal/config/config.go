package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Geo      GeoConfig
	Storage  StorageConfig
	SMTP     SMTPConfig
	Worker   WorkerConfig
	Routing  RoutingConfig
	Notify   NotifyConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	PublicURL             string
	AllowedOrigins        []string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// GeoConfig configures reverse-geocoding providers. The Mapbox provider is
// skipped entirely when no token is configured; Nominatim needs none.
type GeoConfig struct {
	MapboxToken string
	NominatimUA string
}

// StorageConfig selects the object storage backend. MinIO is used when the
// endpoint and credentials are set, otherwise uploads land in MediaDir.
type StorageConfig struct {
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioPublicURL string
	MinioUseSSL    bool
	MediaDir       string
}

// SMTPConfig holds the email filing transport settings.
type SMTPConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

// WorkerConfig sizes the filing worker pool.
type WorkerConfig struct {
	Count     int
	QueueName string
}

// RoutingConfig locates the authority routing table.
type RoutingConfig struct {
	TablePath   string
	DefaultZone string
}

// NotifyConfig holds the optional lifecycle webhook endpoint.
type NotifyConfig struct {
	WebhookURL string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "civicguard"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			PublicURL:             getEnv("BACKEND_PUBLIC_URL", "http://localhost:8080"),
			AllowedOrigins:        splitOrigins(getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000")),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Geo: GeoConfig{
			MapboxToken: os.Getenv("MAPBOX_TOKEN"),
			NominatimUA: getEnv("NOMINATIM_UA", "CivicGuard/1.0 (contact@example.com)"),
		},
		Storage: StorageConfig{
			MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
			MinioAccessKey: getEnv("MINIO_ACCESS_KEY", os.Getenv("MINIO_ROOT_USER")),
			MinioSecretKey: getEnv("MINIO_SECRET_KEY", os.Getenv("MINIO_ROOT_PASSWORD")),
			MinioBucket:    getEnv("MINIO_BUCKET", "uploads"),
			MinioPublicURL: getEnv("MINIO_PUBLIC_URL", os.Getenv("MINIO_ENDPOINT")),
			MinioUseSSL:    getEnvAsBool("MINIO_USE_SSL", false),
			MediaDir:       getEnv("MEDIA_DIR", "media"),
		},
		SMTP: SMTPConfig{
			Host: getEnv("SMTP_HOST", "smtp.sendgrid.net"),
			Port: getEnvAsInt("SMTP_PORT", 587),
			User: getEnv("SMTP_USER", "apikey"),
			Pass: os.Getenv("SMTP_PASS"),
			From: getEnv("SMTP_FROM", "noreply@civicguard.local"),
		},
		Worker: WorkerConfig{
			Count:     getEnvAsInt("FILING_WORKER_COUNT", 2),
			QueueName: getEnv("FILING_QUEUE_NAME", "file_jobs"),
		},
		Routing: RoutingConfig{
			TablePath:   getEnv("ROUTING_TABLE_PATH", "routing.csv"),
			DefaultZone: getEnv("ROUTING_DEFAULT_ZONE", "Ward-1"),
		},
		Notify: NotifyConfig{
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// MinioConfigured reports whether enough MinIO settings exist to use it.
func (s StorageConfig) MinioConfigured() bool {
	return s.MinioEndpoint != "" && s.MinioAccessKey != "" && s.MinioSecretKey != ""
}

func splitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
