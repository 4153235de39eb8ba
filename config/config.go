package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Port           string
	DBUrl          string
	StoreDriver    string
	MigrateOnStart bool

	JWTSecret       string
	JWTAlgorithm    string
	AccessTokenTTL  time.Duration
	VerificationTTL time.Duration
	BcryptCost      int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string
	AppBaseURL   string

	CORSOrigins   []string
	LogLevel      string
	LogFormat     string
	NotifyWorkers int
}

func LoadConfig() Config {
	err := godotenv.Load()

	if err != nil {
		log.Info("No .env file found. Using environment variables.")
	}

	return Config{
		Port:           getEnv("PORT", "8080"),
		DBUrl:          os.Getenv("DB_URL"),
		StoreDriver:    getEnv("STORE_DRIVER", DriverPostgres),
		MigrateOnStart: getBool("MIGRATE_ON_START", true),

		JWTSecret:       os.Getenv("JWT_SECRET"),
		JWTAlgorithm:    getEnv("ALGORITHM", "HS256"),
		AccessTokenTTL:  time.Duration(getInt("ACCESS_TOKEN_EXPIRE_MINUTES", 60*24)) * time.Minute,
		VerificationTTL: time.Duration(getInt("VERIFICATION_EXPIRE_MINUTES", 30)) * time.Minute,
		BcryptCost:      getInt("BCRYPT_COST", bcrypt.DefaultCost),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getInt("REDIS_DB", 0),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getInt("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		MailFrom:     getEnv("MAIL_FROM", "no-reply@geoduel.local"),
		AppBaseURL:   strings.TrimRight(getEnv("APP_BASE_URL", "http://localhost:8080"), "/"),

		CORSOrigins:   getList("CORS_ORIGINS", []string{"http://localhost:5173"}),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "text"),
		NotifyWorkers: getInt("NOTIFY_WORKERS", 2),
	}
}

// Validate reports the first setting that would keep the server from starting.
func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	switch c.JWTAlgorithm {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("unsupported ALGORITHM %q", c.JWTAlgorithm)
	}
	if c.AccessTokenTTL <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be positive")
	}
	if c.VerificationTTL <= 0 {
		return fmt.Errorf("VERIFICATION_EXPIRE_MINUTES must be positive")
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	switch c.StoreDriver {
	case DriverPostgres:
		if c.DBUrl == "" {
			return fmt.Errorf("DB_URL is required for the postgres store")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver)
	}
	if c.NotifyWorkers < 1 {
		return fmt.Errorf("NOTIFY_WORKERS must be at least 1")
	}
	return nil
}

// SetupLogging applies LOG_LEVEL and LOG_FORMAT to the standard logrus logger.
func (c Config) SetupLogging() {
	if c.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		log.Warnf("Unknown LOG_LEVEL %q, falling back to info", c.LogLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

// CORS builds the cross-origin policy for CORS_ORIGINS.
func (c Config) CORS() *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins:   c.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warnf("Invalid %s value %q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Warnf("Invalid %s value %q, using %t", key, v, fallback)
		return fallback
	}
	return b
}

func getList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
