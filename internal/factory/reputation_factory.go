package factory

import (
	"github.com/AayushRajthala99/phishing-email-detection-system/internal/adapters/reputation"
	"github.com/AayushRajthala99/phishing-email-detection-system/internal/config"
	"github.com/AayushRajthala99/phishing-email-detection-system/internal/core"
	"go.uber.org/zap"
)

// ReputationFactory creates the hash reputation client from configuration
type ReputationFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewReputationFactory creates a new reputation factory
func NewReputationFactory(cfg *config.Config, logger *zap.Logger) *ReputationFactory {
	return &ReputationFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateReputationClient returns the VirusTotal client, or nil when no
// API key is configured. Attachment scoring falls back to heuristics
// alone without a client.
func (f *ReputationFactory) CreateReputationClient() (core.ReputationClient, error) {
	vtCfg, err := f.cfg.GetVirusTotal()
	if err != nil {
		return nil, err
	}

	if vtCfg.APIKey == "" {
		f.logger.Info("Hash reputation lookups disabled: no API key configured")
		return nil, nil
	}

	return reputation.NewVirusTotalClient(vtCfg, f.logger), nil
}
