package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Create a new instance of the logger
// Configure it to log at the desired level
// and format it as JSON for structured logging
var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	environment := GetEnvWithDefault("APP_ENV", "development")
	switch environment {
	case "development":
		log.SetLevel(logrus.DebugLevel)
	case "production":
		log.SetLevel(logrus.ErrorLevel)
	default:
		// Default to info level for other environments
		log.SetLevel(logrus.InfoLevel)
	}
}

// Public lookup variants
const (
	LookupModeDetailed = "detailed"
	LookupModeBasic    = "basic"
)

// Config used for the application configuration, loading the input from environment variables
type Config struct {
	// Server Configuration
	Port int    `json:"port"`
	Host string `json:"host"`

	// Database configuration
	DBDriver     string        `json:"db_driver"`
	DatabaseURL  string        `json:"database_url"`
	DBHost       string        `json:"db_host"`
	DBPort       string        `json:"db_port"`
	DBName       string        `json:"db_name"`
	DBUser       string        `json:"db_user"`
	DBPassword   string        `json:"db_password"`
	DBSSLMode    string        `json:"db_ssl_mode"`
	DBPath       string        `json:"db_path"`
	QueryTimeout time.Duration `json:"query_timeout"`
	DBLogSQL     bool          `json:"db_log_sql"`

	// Logging configuration
	LogLevel string `json:"log_level"`

	// Security Configuration
	APIKey            string        `json:"api_key"`
	JWTSecret         string        `json:"jwt_secret"`
	JWTExpiresIn      time.Duration `json:"jwt_expires_in"`
	AdminEmail        string        `json:"admin_email"`
	AdminPassword     string        `json:"admin_password"`
	AdminPasswordHash string        `json:"admin_password_hash"`

	// Public lookup configuration
	LookupMode      string `json:"lookup_mode"`
	NotFoundMessage string `json:"not_found_message"`

	// CORS configuration
	CORSAllowedOrigins []string `json:"cors_allowed_origins"`
}

// String returns a string representation of Config with sensitive data masked
func (c *Config) String() string {
	return fmt.Sprintf("Config{Port: %d, Host: %s, DBDriver: %s, DatabaseURL: %s, DBHost: %s, DBPort: %s, DBName: %s, DBUser: %s, DBPassword: [REDACTED], DBPath: %s, QueryTimeout: %s, LogLevel: %s, APIKey: %s, JWTSecret: %s, JWTExpiresIn: %s, AdminEmail: %s, AdminPassword: %s, LookupMode: %s, CORSAllowedOrigins: %v}",
		c.Port, c.Host, c.DBDriver, maskDatabaseURL(c.DatabaseURL), c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPath,
		c.QueryTimeout, c.LogLevel, redactIfSet(c.APIKey), redactIfSet(c.JWTSecret), c.JWTExpiresIn, c.AdminEmail,
		redactIfSet(c.AdminPassword+c.AdminPasswordHash), c.LookupMode, c.CORSAllowedOrigins)
}

func redactIfSet(value string) string {
	if value == "" {
		return "[NOT SET]"
	}
	return "[REDACTED]"
}

// maskDatabaseURL masks password in database URL
func maskDatabaseURL(dbURL string) string {
	if dbURL == "" {
		return ""
	}

	parsed, err := url.Parse(dbURL)
	if err != nil {
		return "[REDACTED_INVALID_URL]"
	}

	if parsed.User != nil {
		// Replace password with [REDACTED]
		parsed.User = url.UserPassword(parsed.User.Username(), "[REDACTED]")
	}

	return parsed.String()
}

// LoadConfig read the proper configuration from environment variables and returns a Config struct
// It validates the listening port, durations, the lookup mode and the datastore settings
// Missing security secrets are only warned about: the handlers that need them answer with a
// server configuration error instead
func LoadConfig() (*Config, error) {
	log.Info("Loading configuration from environment variables")
	port, err := strconv.Atoi(GetEnvWithDefault("APP_PORT", GetEnvWithDefault("PORT", "3000")))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}
	if port < 1 || port > 65535 {
		return nil, fmt.Errorf("APP_PORT must be between 1 and 65535, got %d", port)
	}

	queryTimeout, err := ParseDuration(GetEnvWithDefault("DB_QUERY_TIMEOUT", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_QUERY_TIMEOUT: %w", err)
	}

	jwtExpiresIn, err := ParseDuration(GetEnvWithDefault("JWT_EXPIRES_IN", "8h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRES_IN: %w", err)
	}

	lookupMode := strings.ToLower(GetEnvWithDefault("PUBLIC_LOOKUP_MODE", LookupModeDetailed))
	if lookupMode != LookupModeDetailed && lookupMode != LookupModeBasic {
		return nil, fmt.Errorf("PUBLIC_LOOKUP_MODE must be %q or %q, got %q", LookupModeDetailed, LookupModeBasic, lookupMode)
	}

	config := &Config{
		Port:               port,
		Host:               GetEnvWithDefault("APP_HOST", "0.0.0.0"),
		DBDriver:           strings.ToLower(GetEnvWithDefault("DB_DRIVER", "postgres")),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		DBHost:             GetEnvWithDefault("PGHOST", "localhost"),
		DBPort:             GetEnvWithDefault("PGPORT", "5432"),
		DBName:             os.Getenv("PGDATABASE"),
		DBUser:             os.Getenv("PGUSER"),
		DBPassword:         os.Getenv("PGPASSWORD"),
		DBSSLMode:          os.Getenv("PGSSLMODE"),
		DBPath:             GetEnvWithDefault("DB_PATH", "coins.sqlite"),
		QueryTimeout:       queryTimeout,
		DBLogSQL:           GetEnvAsType("DB_LOG_SQL", false),
		LogLevel:           GetEnvWithDefault("LOG_LEVEL", "info"),
		APIKey:             os.Getenv("API_KEY"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		JWTExpiresIn:       jwtExpiresIn,
		AdminEmail:         os.Getenv("ADMIN_EMAIL"),
		AdminPassword:      os.Getenv("ADMIN_PASSWORD"),
		AdminPasswordHash:  os.Getenv("ADMIN_PASSWORD_HASH"),
		LookupMode:         lookupMode,
		NotFoundMessage:    os.Getenv("NOT_FOUND_MESSAGE"),
		CORSAllowedOrigins: splitList(GetEnvWithDefault("CORS_ALLOWED_ORIGINS", "*")),
	}

	if err := config.validateDatabase(); err != nil {
		return nil, err
	}
	config.warnMissingSecrets()

	log.Infof("Configuration loaded: %s", config.String())
	return config, nil
}

// validateDatabase checks that the selected driver has enough settings to connect
func (c *Config) validateDatabase() error {
	switch c.DBDriver {
	case "postgres", "postgresql":
		if c.DatabaseURL != "" {
			if _, err := url.ParseRequestURI(c.DatabaseURL); err != nil {
				return fmt.Errorf("invalid DATABASE_URL format: %w", err)
			}
			return nil
		}
		if c.DBName == "" || c.DBUser == "" || c.DBPassword == "" {
			return errors.New("incomplete database configuration: set DATABASE_URL or PGHOST, PGPORT, PGDATABASE, PGUSER and PGPASSWORD")
		}
		return nil
	case "sqlite":
		if c.DBPath == "" {
			return errors.New("DB_PATH is required for the sqlite driver")
		}
		return nil
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (supported: postgres, sqlite)", c.DBDriver)
	}
}

func (c *Config) warnMissingSecrets() {
	missing := []string{}
	if c.APIKey == "" {
		missing = append(missing, "API_KEY")
	}
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if c.AdminEmail == "" {
		missing = append(missing, "ADMIN_EMAIL")
	}
	if c.AdminPassword == "" && c.AdminPasswordHash == "" {
		missing = append(missing, "ADMIN_PASSWORD")
	}
	if len(missing) > 0 {
		log.WithField("missing", missing).Warn("Security configuration incomplete, affected routes will answer with a server configuration error")
	}
}

// ParseDuration accepts Go durations ("8h", "90m"), a day suffix ("7d")
// or a bare number of seconds ("3600")
func ParseDuration(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, errors.New("empty duration")
	}

	if seconds, err := strconv.ParseInt(value, 10, 64); err == nil {
		if seconds <= 0 {
			return 0, fmt.Errorf("duration must be positive, got %q", value)
		}
		return time.Duration(seconds) * time.Second, nil
	}

	if days, ok := strings.CutSuffix(value, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid day duration %q", value)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive, got %q", value)
	}
	return d, nil
}

func splitList(value string) []string {
	items := []string{}
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}

// Helper to get environment with default values
func GetEnvWithDefault(key, defaultValue string) string {
	log.Tracef("Getting environment variable: %s", key)
	value := os.Getenv(key)
	if value == "" {
		log.Debugf("Environment variable %s not set, using default value: %s", key, defaultValue)
		return defaultValue
	}
	return value
}

// GetEnvAsType retrieves an environment variable and converts it to the specified type
// using generic type handling.
func GetEnvAsType[T any](key string, defaultValue T) T {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var result T
	switch any(result).(type) {
	case int:
		intValue, err := strconv.Atoi(value)
		if err != nil {
			return defaultValue
		}
		return any(intValue).(T)
	case string:
		return any(value).(T)
	case bool:
		boolValue, err := strconv.ParseBool(value)
		if err != nil {
			return defaultValue
		}
		return any(boolValue).(T)
	case time.Duration:
		durationValue, err := ParseDuration(value)
		if err != nil {
			return defaultValue
		}
		return any(durationValue).(T)
	default:
		return defaultValue // Fallback for unsupported types
	}
}
