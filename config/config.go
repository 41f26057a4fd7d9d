// config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type DBConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	DBName       string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	ConnLifetime time.Duration
}

type Config struct {
	Telegram struct {
		Token string
		Debug bool
	}
	API struct {
		BaseURL string
		Timeout time.Duration
	}
	DB    DBConfig
	Cache struct {
		SizeMB int
		TTL    time.Duration
	}
	Session struct {
		// postgres or memory
		Store string
	}
	Server struct {
		Port string
	}
	Metrics struct {
		Namespace string
	}
	// IANA zone used to decide which daily log is "today".
	Location        string
	Development     bool
	ShutdownTimeout time.Duration
}

// Load loads the configuration
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	// format follows the file extension: config.yaml, config.json, ...
	v.SetConfigName("config")

	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")
	v.AddConfigPath("$HOME/.fittrack-bot")

	setDefaults(v)

	// Enable environment variables to override config values
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !asNotFound(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		return fromEnv(), nil
	}

	// Process any ${ENV_VAR} syntax in the config values
	for _, key := range v.AllKeys() {
		value := v.GetString(key)
		if strings.HasPrefix(value, "${") && strings.HasSuffix(value, "}") {
			envVar := strings.TrimPrefix(strings.TrimSuffix(value, "}"), "${")
			if envValue := os.Getenv(envVar); envValue != "" {
				v.Set(key, envValue)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ShutdownTimeout", 10*time.Second)
	v.SetDefault("API.BaseURL", "http://localhost:5001/api")
	v.SetDefault("API.Timeout", 15*time.Second)
	v.SetDefault("Server.Port", "8080")
	v.SetDefault("Metrics.Namespace", "fittrack")
	v.SetDefault("Cache.SizeMB", 32)
	v.SetDefault("Cache.TTL", 10*time.Minute)
	v.SetDefault("Session.Store", "postgres")
	v.SetDefault("Location", "UTC")
	v.SetDefault("DB.Host", "localhost")
	v.SetDefault("DB.Port", "5432")
	v.SetDefault("DB.SSLMode", "disable")
	v.SetDefault("DB.MaxOpenConns", 20)
	v.SetDefault("DB.MaxIdleConns", 10)
	v.SetDefault("DB.ConnLifetime", 5*time.Minute)
}

// fromEnv builds the config purely from environment variables. Used when no
// config file can be found.
func fromEnv() *Config {
	cfg := &Config{}

	cfg.Telegram.Token = os.Getenv("TELEGRAM_TOKEN")
	cfg.Telegram.Debug = getEnvBool("TELEGRAM_DEBUG", false)
	cfg.API.BaseURL = getEnvOr("API_BASE_URL", "http://localhost:5001/api")
	cfg.API.Timeout = getEnvDuration("API_TIMEOUT", 15*time.Second)
	cfg.DB.Host = getEnvOr("DB_HOST", "localhost")
	cfg.DB.Port = getEnvOr("DB_PORT", "5432")
	cfg.DB.User = getEnvOr("DB_USER", "postgres")
	cfg.DB.Password = getEnvOr("DB_PASSWORD", "postgres")
	cfg.DB.DBName = getEnvOr("DB_NAME", "fittrack")
	cfg.DB.SSLMode = getEnvOr("DB_SSL_MODE", "disable")
	cfg.DB.MaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 20)
	cfg.DB.MaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 10)
	cfg.DB.ConnLifetime = getEnvDuration("DB_CONN_LIFETIME", 5*time.Minute)
	cfg.Cache.SizeMB = getEnvInt("CACHE_SIZE_MB", 32)
	cfg.Cache.TTL = getEnvDuration("CACHE_TTL", 10*time.Minute)
	cfg.Session.Store = getEnvOr("SESSION_STORE", "postgres")
	cfg.Server.Port = getEnvOr("SERVER_PORT", "8080")
	cfg.Metrics.Namespace = getEnvOr("METRICS_NAMESPACE", "fittrack")
	cfg.Location = getEnvOr("LOCATION", "UTC")
	cfg.Development = getEnvBool("DEVELOPMENT", false)
	cfg.ShutdownTimeout = getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second)

	return cfg
}

// Validate checks the settings the bot cannot run without.
func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("telegram token is not configured")
	}
	if c.API.BaseURL == "" {
		return fmt.Errorf("api base url is not configured")
	}
	switch c.Session.Store {
	case "postgres", "memory":
	default:
		return fmt.Errorf("unknown session store %q", c.Session.Store)
	}
	if _, err := time.LoadLocation(c.Location); err != nil {
		return fmt.Errorf("invalid location %q: %w", c.Location, err)
	}
	return nil
}

// TimeLocation resolves Location, falling back to UTC.
func (c *Config) TimeLocation() *time.Location {
	loc, err := time.LoadLocation(c.Location)
	if err != nil {
		return time.UTC
	}
	return loc
}

func asNotFound(err error, target *viper.ConfigFileNotFoundError) bool {
	nf, ok := err.(viper.ConfigFileNotFoundError)
	if ok {
		*target = nf
	}
	return ok
}

// Helper function to get environment variable with default value
func getEnvOr(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
