package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance
func New() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/phishing-detector/")
	v.AddConfigPath("$HOME/.phishing-detector")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	// Set defaults
	setDefaults(v)

	// Environment variables map directly onto keys, e.g. the key
	// rate_limit.requests resolves from RATE_LIMIT_REQUESTS.
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.listen_address", "0.0.0.0:5000")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.max_upload_size", 10*1024*1024)

	// Rate limiting defaults
	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", "60s")

	// Cache defaults
	v.SetDefault("cache.ttl_reports", "60s")
	v.SetDefault("cache.ttl_single_report", "300s")
	v.SetDefault("cache.cleanup_frequency", "5m")

	// MongoDB defaults
	v.SetDefault("mongodb.uri", "mongodb://localhost:27017")
	v.SetDefault("mongodb.db_name", "phishing_detection")
	v.SetDefault("mongodb.collection", "predictions")
	v.SetDefault("mongodb.min_pool_size", 10)
	v.SetDefault("mongodb.max_pool_size", 50)
	v.SetDefault("mongodb.connect_timeout", "10s")
	v.SetDefault("mongodb.server_selection_timeout", "5s")

	// Model artifact defaults
	v.SetDefault("models.dir", "models")
	v.SetDefault("models.classifier_filename", "spam_classifier.json")
	v.SetDefault("models.vectorizer_filename", "tfidf_vectorizer.json")

	// VirusTotal defaults (reputation lookups disabled without an API key)
	v.SetDefault("vt.api_key", "")
	v.SetDefault("vt.base_url", "https://www.virustotal.com/api/v3")
	v.SetDefault("vt.timeout", "5s")
	v.SetDefault("vt.requests_per_minute", 4)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetInt64 gets a 64-bit integer value from the configuration
func (c *Config) GetInt64(key string) int64 {
	return c.v.GetInt64(key)
}

// GetFloat64 gets a float value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetDuration gets a duration value from the configuration. A bare
// integer is a count of seconds, matching the environment contract
// (RATE_LIMIT_WINDOW=60 means 60 seconds); duration strings like "5m"
// are accepted too.
func (c *Config) GetDuration(key string) (time.Duration, error) {
	raw := strings.TrimSpace(c.v.GetString(key))

	if secs, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if secs <= 0 {
			return 0, fmt.Errorf("invalid duration for %s: %q", key, raw)
		}
		return time.Duration(secs) * time.Second, nil
	}

	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid duration for %s: %q", key, raw)
	}
	return d, nil
}
