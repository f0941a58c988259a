package factory

import (
	"context"

	"github.com/AayushRajthala99/phishing-email-detection-system/internal/adapters/storage"
	"github.com/AayushRajthala99/phishing-email-detection-system/internal/config"
	"go.uber.org/zap"
)

// StorageFactory creates the document store from configuration
type StorageFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewStorageFactory creates a new storage factory
func NewStorageFactory(cfg *config.Config, logger *zap.Logger) *StorageFactory {
	return &StorageFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateStore connects to MongoDB and ensures indexes
func (f *StorageFactory) CreateStore() (*storage.MongoStore, error) {
	mongoCfg, err := f.cfg.GetMongo()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), mongoCfg.ConnectTimeout)
	defer cancel()

	return storage.NewMongoStore(ctx, mongoCfg, f.logger)
}
