package config

import (
	"path/filepath"
	"time"
)

// ServerConfig represents the HTTP server configuration
type ServerConfig struct {
	ListenAddress string
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	MaxUploadSize int64
}

// RateLimitConfig represents the fixed-window rate limiter configuration
type RateLimitConfig struct {
	MaxRequests int
	Window      time.Duration
}

// CacheConfig represents the in-memory cache configuration
type CacheConfig struct {
	ReportsTTL       time.Duration
	SingleReportTTL  time.Duration
	CleanupFrequency time.Duration
}

// MongoConfig represents the document store configuration
type MongoConfig struct {
	URI                    string
	Database               string
	Collection             string
	MinPoolSize            uint64
	MaxPoolSize            uint64
	ConnectTimeout         time.Duration
	ServerSelectionTimeout time.Duration
}

// ModelsConfig represents the classifier artifact locations
type ModelsConfig struct {
	ClassifierPath string
	VectorizerPath string
}

// VirusTotalConfig represents the hash reputation client configuration
type VirusTotalConfig struct {
	APIKey            string
	BaseURL           string
	Timeout           time.Duration
	RequestsPerMinute int
}

// GetServer returns the HTTP server configuration
func (c *Config) GetServer() (ServerConfig, error) {
	readTimeout, err := c.GetDuration("server.read_timeout")
	if err != nil {
		return ServerConfig{}, err
	}
	writeTimeout, err := c.GetDuration("server.write_timeout")
	if err != nil {
		return ServerConfig{}, err
	}
	return ServerConfig{
		ListenAddress: c.GetString("server.listen_address"),
		ReadTimeout:   readTimeout,
		WriteTimeout:  writeTimeout,
		MaxUploadSize: c.GetInt64("server.max_upload_size"),
	}, nil
}

// GetRateLimit returns the rate limiter configuration
func (c *Config) GetRateLimit() (RateLimitConfig, error) {
	window, err := c.GetDuration("rate_limit.window")
	if err != nil {
		return RateLimitConfig{}, err
	}
	return RateLimitConfig{
		MaxRequests: c.GetInt("rate_limit.requests"),
		Window:      window,
	}, nil
}

// GetCache returns the cache configuration
func (c *Config) GetCache() (CacheConfig, error) {
	reportsTTL, err := c.GetDuration("cache.ttl_reports")
	if err != nil {
		return CacheConfig{}, err
	}
	singleTTL, err := c.GetDuration("cache.ttl_single_report")
	if err != nil {
		return CacheConfig{}, err
	}
	cleanupFreq, err := c.GetDuration("cache.cleanup_frequency")
	if err != nil {
		return CacheConfig{}, err
	}
	return CacheConfig{
		ReportsTTL:       reportsTTL,
		SingleReportTTL:  singleTTL,
		CleanupFrequency: cleanupFreq,
	}, nil
}

// GetMongo returns the document store configuration
func (c *Config) GetMongo() (MongoConfig, error) {
	connectTimeout, err := c.GetDuration("mongodb.connect_timeout")
	if err != nil {
		return MongoConfig{}, err
	}
	selectionTimeout, err := c.GetDuration("mongodb.server_selection_timeout")
	if err != nil {
		return MongoConfig{}, err
	}
	return MongoConfig{
		URI:                    c.GetString("mongodb.uri"),
		Database:               c.GetString("mongodb.db_name"),
		Collection:             c.GetString("mongodb.collection"),
		MinPoolSize:            uint64(c.GetInt("mongodb.min_pool_size")),
		MaxPoolSize:            uint64(c.GetInt("mongodb.max_pool_size")),
		ConnectTimeout:         connectTimeout,
		ServerSelectionTimeout: selectionTimeout,
	}, nil
}

// GetModels returns the classifier artifact locations
func (c *Config) GetModels() ModelsConfig {
	dir := c.GetString("models.dir")
	return ModelsConfig{
		ClassifierPath: filepath.Join(dir, c.GetString("models.classifier_filename")),
		VectorizerPath: filepath.Join(dir, c.GetString("models.vectorizer_filename")),
	}
}

// GetVirusTotal returns the hash reputation client configuration
func (c *Config) GetVirusTotal() (VirusTotalConfig, error) {
	timeout, err := c.GetDuration("vt.timeout")
	if err != nil {
		return VirusTotalConfig{}, err
	}
	return VirusTotalConfig{
		APIKey:            c.GetString("vt.api_key"),
		BaseURL:           c.GetString("vt.base_url"),
		Timeout:           timeout,
		RequestsPerMinute: c.GetInt("vt.requests_per_minute"),
	}, nil
}
