package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Port      string
	GinMode   string
	LogLevel  string
	LogPretty bool

	StoreDriver   string
	MongoURI      string
	MongoDatabase string

	CORSOrigins []string
	JWTSecret   string

	EmailUser string
	EmailPass string
	MailFrom  string
	SMTPHost  string
	SMTPPort  int

	RedisAddr       string
	RedisPassword   string
	ReportRateLimit int

	PhotoStorage   string
	UploadDir      string
	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
	MinIOUseSSL    bool

	RabbitMQURL      string
	RabbitMQExchange string
	RabbitMQQueue    string
	NotifyWorkers    int
	NotifyQueueSize  int
}

// Load reads .env (if present) and the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	return &Config{
		Port:      getEnv("PORT", "4000"),
		GinMode:   getEnv("GIN_MODE", "release"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogPretty: getEnvBool("LOG_PRETTY", true),

		StoreDriver:   getEnv("STORE_DRIVER", "mongo"),
		MongoURI:      getEnv("MONGODB_URI", "mongodb://localhost:27017/civic-issues"),
		MongoDatabase: getEnv("MONGODB_DATABASE", "civic-issues"),

		CORSOrigins: splitList(os.Getenv("CORS_ORIGINS")),
		JWTSecret:   getEnv("JWT_SECRET", "changeme"),

		EmailUser: os.Getenv("EMAIL_USER"),
		EmailPass: os.Getenv("EMAIL_PASS"),
		MailFrom:  os.Getenv("MAIL_FROM"),
		SMTPHost:  getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:  getEnvInt("SMTP_PORT", 587),

		RedisAddr:       os.Getenv("REDIS_ADDRESS"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		ReportRateLimit: getEnvInt("REPORT_RATE_LIMIT", 50),

		PhotoStorage:   getEnv("PHOTO_STORAGE", "disk"),
		UploadDir:      getEnv("UPLOAD_DIR", "uploads"),
		MinIOEndpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinIOAccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		MinIOSecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
		MinIOBucket:    getEnv("MINIO_BUCKET_NAME", "civic-issue-photos"),
		MinIOUseSSL:    getEnvBool("MINIO_USE_SSL", false),

		RabbitMQURL:      os.Getenv("RABBITMQ_URL"),
		RabbitMQExchange: getEnv("RABBITMQ_EXCHANGE", "civic.notifications"),
		RabbitMQQueue:    getEnv("RABBITMQ_QUEUE", "q.notifications.email"),
		NotifyWorkers:    getEnvInt("NOTIFY_WORKERS", 2),
		NotifyQueueSize:  getEnvInt("NOTIFY_QUEUE_SIZE", 100),
	}
}

// MailEnabled reports whether SMTP credentials were provided.
func (c *Config) MailEnabled() bool {
	return c.EmailUser != "" && c.EmailPass != ""
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("Invalid integer in environment, using default")
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
