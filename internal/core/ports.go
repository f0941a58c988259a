package core

import (
	"context"
	"time"
)

// Classifier defines the interface for the spam/ham classification engine
type Classifier interface {
	// Classify produces a probability pair for the given subject and body
	Classify(ctx context.Context, subject, body string) (*Classification, error)

	// Ready reports whether the model artifacts loaded successfully,
	// and the retained load error when they did not
	Ready() (bool, error)
}

// ReputationClient defines the interface for external hash reputation lookups
type ReputationClient interface {
	// Lookup returns a malicious score in [0,100] for a content fingerprint
	Lookup(ctx context.Context, sha256 string) (float64, error)
}

// CacheRepository defines the interface for the TTL response cache
type CacheRepository interface {
	// Get retrieves a cached value, reporting a miss for absent or expired keys
	Get(key string) (any, bool)

	// Set stores a value under key for the given TTL
	Set(key string, value any, ttl time.Duration)

	// Delete removes a cache entry
	Delete(key string)

	// Flush removes all cache entries
	Flush()
}

// PredictionStore defines the interface for durable prediction records
type PredictionStore interface {
	// Insert persists a new record and returns its store-assigned identifier
	Insert(ctx context.Context, record *PredictionRecord) (string, error)

	// List returns a page of records sorted by timestamp descending
	List(ctx context.Context, opts ListOptions) (*ReportPage, error)

	// FindByID returns a single record, or ErrNotFound
	FindByID(ctx context.Context, id string) (*PredictionRecord, error)

	// CountBySHA256 counts records containing an attachment with the given fingerprint
	CountBySHA256(ctx context.Context, sha256 string) (int64, error)

	// Ping verifies store connectivity
	Ping(ctx context.Context) error
}
