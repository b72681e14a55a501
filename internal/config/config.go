package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	LogLevel  string
	LogFormat string

	DBType     string
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	AuthTokenTTLHours int
	InvoiceDueDays    int
	Currency          string
}

// Load loads configuration from environment variables and an optional .env file.
func Load() Config {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("APP_SERVICE", "laundromat")
	v.SetDefault("APP_VERSION", "0.1.0")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("DATABASE_TYPE", "postgres")
	v.SetDefault("DATABASE_HOST", "localhost")
	v.SetDefault("DATABASE_PORT", "5432")
	v.SetDefault("DATABASE_NAME", "laundromat")
	v.SetDefault("DATABASE_USER", "postgres")
	v.SetDefault("DATABASE_PASSWORD", "postgres")
	v.SetDefault("DATABASE_SSLMODE", "disable")
	v.SetDefault("AUTH_TOKEN_TTL_HOURS", 72)
	v.SetDefault("INVOICE_DUE_DAYS", 30)
	v.SetDefault("CURRENCY", "UGX")

	return Config{
		AppName:           v.GetString("APP_SERVICE"),
		AppVersion:        v.GetString("APP_VERSION"),
		Environment:       v.GetString("ENVIRONMENT"),
		HTTPAddr:          v.GetString("HTTP_ADDR"),
		LogLevel:          v.GetString("LOG_LEVEL"),
		LogFormat:         v.GetString("LOG_FORMAT"),
		DBType:            v.GetString("DATABASE_TYPE"),
		DBHost:            v.GetString("DATABASE_HOST"),
		DBPort:            v.GetString("DATABASE_PORT"),
		DBName:            v.GetString("DATABASE_NAME"),
		DBUser:            v.GetString("DATABASE_USER"),
		DBPassword:        v.GetString("DATABASE_PASSWORD"),
		DBSSLMode:         v.GetString("DATABASE_SSLMODE"),
		AuthTokenTTLHours: v.GetInt("AUTH_TOKEN_TTL_HOURS"),
		InvoiceDueDays:    v.GetInt("INVOICE_DUE_DAYS"),
		Currency:          v.GetString("CURRENCY"),
	}
}

// IsProduction reports whether the app runs in the production environment.
func (c Config) IsProduction() bool {
	return c.Environment == "production"
}
