package factory

import (
	"github.com/AayushRajthala99/phishing-email-detection-system/internal/adapters/classifier"
	"github.com/AayushRajthala99/phishing-email-detection-system/internal/config"
	"github.com/AayushRajthala99/phishing-email-detection-system/internal/core"
	"github.com/AayushRajthala99/phishing-email-detection-system/internal/utils"
	"go.uber.org/zap"
)

// ClassifierFactory creates the classification engine from configuration
type ClassifierFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewClassifierFactory creates a new classifier factory
func NewClassifierFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *ClassifierFactory {
	return &ClassifierFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateClassifier loads the model artifacts and returns the engine. A
// failed load still returns an engine; it reports not-ready through the
// health check instead of aborting startup.
func (f *ClassifierFactory) CreateClassifier() core.Classifier {
	models := f.cfg.GetModels()
	return classifier.NewEngine(models.VectorizerPath, models.ClassifierPath, f.textProcessor, f.logger)
}
