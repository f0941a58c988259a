package di

import (
	"github.com/gorilla/mux"
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/AayushRajthala99/phishing-email-detection-system/internal/adapters/httpserver"
	"github.com/AayushRajthala99/phishing-email-detection-system/internal/adapters/storage"
	"github.com/AayushRajthala99/phishing-email-detection-system/internal/config"
	"github.com/AayushRajthala99/phishing-email-detection-system/internal/core"
	"github.com/AayushRajthala99/phishing-email-detection-system/internal/factory"
	"github.com/AayushRajthala99/phishing-email-detection-system/internal/logging"
	"github.com/AayushRajthala99/phishing-email-detection-system/internal/ports"
	"github.com/AayushRajthala99/phishing-email-detection-system/internal/ratelimit"
	"github.com/AayushRajthala99/phishing-email-detection-system/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(utils.NewTextProcessor); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewClassifierFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewStorageFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewReputationFactory); err != nil {
		return nil, err
	}

	// Register classification engine
	if err := container.Provide(func(f *factory.ClassifierFactory) core.Classifier {
		return f.CreateClassifier()
	}); err != nil {
		return nil, err
	}

	// Register reputation client and attachment analyzer
	if err := container.Provide(func(f *factory.ReputationFactory) (core.ReputationClient, error) {
		return f.CreateReputationClient()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(core.NewAttachmentAnalyzer); err != nil {
		return nil, err
	}

	// Register cache repository
	if err := container.Provide(func(f *factory.CacheFactory) (core.CacheRepository, error) {
		return f.CreateCacheRepository()
	}); err != nil {
		return nil, err
	}

	// Register document store
	if err := container.Provide(func(f *factory.StorageFactory) (*storage.MongoStore, error) {
		return f.CreateStore()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(s *storage.MongoStore) core.PredictionStore {
		return s
	}); err != nil {
		return nil, err
	}

	// Register prediction service
	if err := container.Provide(func(
		classifier core.Classifier,
		analyzer *core.AttachmentAnalyzer,
		cacheRepo core.CacheRepository,
		store core.PredictionStore,
		cfg *config.Config,
		logger *zap.Logger,
	) (*core.PredictionService, error) {
		cacheCfg, err := cfg.GetCache()
		if err != nil {
			return nil, err
		}
		return core.NewPredictionService(
			classifier, analyzer, cacheRepo, store, logger,
			cacheCfg.ReportsTTL, cacheCfg.SingleReportTTL,
		), nil
	}); err != nil {
		return nil, err
	}

	// Register rate limiter
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) (*ratelimit.FixedWindow, error) {
		rlCfg, err := cfg.GetRateLimit()
		if err != nil {
			return nil, err
		}
		return ratelimit.NewFixedWindow(rlCfg.MaxRequests, rlCfg.Window, logger), nil
	}); err != nil {
		return nil, err
	}

	// Register HTTP surface
	if err := container.Provide(func(service *core.PredictionService, cfg *config.Config, logger *zap.Logger) (*httpserver.Handler, error) {
		serverCfg, err := cfg.GetServer()
		if err != nil {
			return nil, err
		}
		return httpserver.NewHandler(service, serverCfg.MaxUploadSize, logger), nil
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(httpserver.NewRouter); err != nil {
		return nil, err
	}
	if err := container.Provide(func(cfg *config.Config, router *mux.Router, logger *zap.Logger) (ports.ApiServer, error) {
		serverCfg, err := cfg.GetServer()
		if err != nil {
			return nil, err
		}
		return httpserver.NewServer(serverCfg, router, logger), nil
	}); err != nil {
		return nil, err
	}

	return container, nil
}
