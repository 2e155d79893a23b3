package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/carlosascari/opencollective-api/pkg/db"
	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Module provides the application configuration via Fx.
var Module = fx.Provide(Load, DatabaseConfig)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	OTLPEndpoint  string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// RateLimitEnabled gates the per-client donation rate limiter; it
	// requires RedisAddr to be set.
	RateLimitEnabled  bool
	DonationRate      float64
	DonationBurst     int

	// PlatformFeePercent is the fixed percentage the platform keeps on
	// every charge and subscription (e.g. 5 for 5%).
	PlatformFeePercent int64

	// PayPalBaseURL points at the PayPal REST API host; the sandbox
	// host outside production.
	PayPalBaseURL string
	// CallbackBaseURL is the externally reachable origin used to build
	// billing-agreement return and cancel URLs.
	CallbackBaseURL string
	// FrontendBaseURL is where payers land after the wallet provider
	// redirects back.
	FrontendBaseURL string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	environment := getenv("ENVIRONMENT", "development")

	paypalBase := "https://api.sandbox.paypal.com"
	if environment == "production" {
		paypalBase = "https://api.paypal.com"
	}

	cfg := Config{
		AppName:     getenv("APP_SERVICE", "opencollective-api"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: environment,
		HTTPAddr:    getenv("HTTP_ADDR", ":3060"),

		OTLPEndpoint:  getenv("OTLP_ENDPOINT", "localhost:4317"),
		RedisAddr:     getenv("REDIS_ADDR", ""),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       int(getenvInt64("REDIS_DB", 0)),

		RateLimitEnabled: getenvBool("RATE_LIMIT_ENABLED", false),
		DonationRate:     getenvFloat("DONATION_RATE", 1),
		DonationBurst:    int(getenvInt64("DONATION_BURST", 5)),

		PlatformFeePercent: getenvInt64("PLATFORM_FEE_PERCENT", 5),

		PayPalBaseURL:   getenv("PAYPAL_BASE_URL", paypalBase),
		CallbackBaseURL: getenv("CALLBACK_BASE_URL", "http://localhost:3060"),
		FrontendBaseURL: getenv("FRONTEND_BASE_URL", "http://localhost:3000/donation"),

		SMTPHost:     getenv("SMTP_HOST", "localhost"),
		SMTPPort:     int(getenvInt64("SMTP_PORT", 587)),
		SMTPUser:     getenv("SMTP_USER", ""),
		SMTPPassword: getenv("SMTP_PASSWORD", ""),
		SMTPFrom:     getenv("SMTP_FROM", "support@opencollective.com"),

		DBType:     getenv("DATABASE_TYPE", "postgres"),
		DBHost:     getenv("DATABASE_HOST", "localhost"),
		DBPort:     getenv("DATABASE_PORT", "5432"),
		DBName:     getenv("DATABASE_NAME", "opencollective"),
		DBUser:     getenv("DATABASE_USER", "postgres"),
		DBPassword: getenv("DATABASE_PASSWORD", "postgres"),
		DBSSLMode:  getenv("DATABASE_SSLMODE", "disable"),

		DBMaxIdleConn:     int(getenvInt64("DATABASE_MAX_IDLE_CONN", 0)),
		DBMaxOpenConn:     int(getenvInt64("DATABASE_MAX_OPEN_CONN", 0)),
		DBConnMaxLifetime: int(getenvInt64("DATABASE_CONN_MAX_LIFETIME", 0)),
		DBConnMaxIdleTime: int(getenvInt64("DATABASE_CONN_MAX_IDLE_TIME", 0)),
	}

	return cfg
}

// IsProduction reports whether the service runs in the production
// environment. Live provider credentials are only accepted when true.
func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

// DatabaseConfig maps the DATABASE_* fields onto the connection
// settings pkg/db consumes.
func DatabaseConfig(c Config) db.Config {
	return db.Config{
		Type:            c.DBType,
		Host:            c.DBHost,
		Port:            c.DBPort,
		Name:            c.DBName,
		User:            c.DBUser,
		Password:        c.DBPassword,
		SSLMode:         c.DBSSLMode,
		MaxIdleConn:     c.DBMaxIdleConn,
		MaxOpenConn:     c.DBMaxOpenConn,
		ConnMaxLifetime: c.DBConnMaxLifetime,
		ConnMaxIdleTime: c.DBConnMaxIdleTime,
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvInt64(key string, def int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}
