package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Cache keys used by the read paths. The list key covers the default first
// page the dashboard polls; single reports are cached per identifier.
const (
	reportsCacheKey = "reports:all"
	reportKeyPrefix = "report:"
)

func reportCacheKey(id string) string {
	return reportKeyPrefix + id
}

// PredictionService orchestrates classification, attachment analysis,
// persistence and cache invalidation. It owns the only write path.
type PredictionService struct {
	classifier      Classifier
	analyzer        *AttachmentAnalyzer
	cache           CacheRepository
	store           PredictionStore
	logger          *zap.Logger
	reportsTTL      time.Duration
	singleReportTTL time.Duration
}

// NewPredictionService creates a new prediction service
func NewPredictionService(
	classifier Classifier,
	analyzer *AttachmentAnalyzer,
	cache CacheRepository,
	store PredictionStore,
	logger *zap.Logger,
	reportsTTL time.Duration,
	singleReportTTL time.Duration,
) *PredictionService {
	return &PredictionService{
		classifier:      classifier,
		analyzer:        analyzer,
		cache:           cache,
		store:           store,
		logger:          logger,
		reportsTTL:      reportsTTL,
		singleReportTTL: singleReportTTL,
	}
}

// Submit validates and classifies a submission, persists the verdict and
// invalidates the list cache. Each call creates a new record; repeated
// identical submissions are never deduplicated.
func (s *PredictionService) Submit(ctx context.Context, submission *EmailSubmission) (*PredictionRecord, error) {
	if strings.TrimSpace(submission.Subject) == "" {
		return nil, ErrEmptySubject
	}
	if strings.TrimSpace(submission.Body) == "" {
		return nil, ErrEmptyBody
	}

	classification, err := s.classifier.Classify(ctx, submission.Subject, submission.Body)
	if err != nil {
		return nil, err
	}

	attachments := s.analyzer.AnalyzeAll(ctx, submission.Attachments)
	s.auditDuplicateContent(ctx, attachments)

	record := &PredictionRecord{
		ProcessingID:    uuid.NewString(),
		Subject:         submission.Subject,
		Body:            submission.Body,
		Prediction:      classification.Prediction,
		Confidence:      classification.Confidence,
		SpamProbability: classification.SpamProbability,
		HamProbability:  classification.HamProbability,
		Timestamp:       time.Now().UTC(),
		Attachments:     attachments,
	}

	id, err := s.store.Insert(ctx, record)
	if err != nil {
		// The verdict is never returned without being durably recorded.
		return nil, fmt.Errorf("failed to persist prediction: %w", err)
	}
	record.ID = id

	// New records change every list view immediately; per-id entries are
	// untouched since existing identifiers are immutable.
	s.cache.Delete(reportsCacheKey)

	s.logger.Info("Prediction recorded",
		zap.String("id", record.ID),
		zap.String("processing_id", record.ProcessingID),
		zap.String("prediction", record.Prediction),
		zap.Float64("confidence", record.Confidence),
		zap.Int("attachments", len(attachments)))

	return record, nil
}

// auditDuplicateContent logs attachments whose content fingerprint already
// appears in earlier submissions. Audit failures never affect the write.
func (s *PredictionService) auditDuplicateContent(ctx context.Context, attachments []AttachmentRecord) {
	checked := make(map[string]bool, len(attachments))
	for _, att := range attachments {
		if checked[att.SHA256] {
			continue
		}
		checked[att.SHA256] = true

		count, err := s.store.CountBySHA256(ctx, att.SHA256)
		if err != nil {
			s.logger.Debug("Duplicate-content audit skipped",
				zap.String("sha256", att.SHA256), zap.Error(err))
			continue
		}
		if count > 0 {
			s.logger.Info("Attachment content seen in earlier submissions",
				zap.String("sha256", att.SHA256),
				zap.String("filename", att.Filename),
				zap.Int64("prior_records", count))
		}
	}
}

// ListReports returns a page of historical reports, most recent first.
// The unfiltered first page is served from cache when fresh.
func (s *PredictionService) ListReports(ctx context.Context, opts ListOptions) (*ReportPage, error) {
	cacheable := opts.Prediction == "" && opts.Offset == 0 && opts.Limit == DefaultPageSize

	if cacheable {
		if cached, ok := s.cache.Get(reportsCacheKey); ok {
			if page, ok := cached.(*ReportPage); ok {
				s.logger.Debug("Reports list served from cache")
				return page, nil
			}
		}
	}

	page, err := s.store.List(ctx, opts)
	if err != nil {
		return nil, err
	}

	if cacheable {
		s.cache.Set(reportsCacheKey, page, s.reportsTTL)
	}

	return page, nil
}

// GetReport returns a single record by identifier. Entries are cached
// lazily on first read; writes never invalidate them.
func (s *PredictionService) GetReport(ctx context.Context, id string) (*PredictionRecord, error) {
	key := reportCacheKey(id)

	if cached, ok := s.cache.Get(key); ok {
		if record, ok := cached.(*PredictionRecord); ok {
			s.logger.Debug("Report served from cache", zap.String("id", id))
			return record, nil
		}
	}

	record, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cache.Set(key, record, s.singleReportTTL)
	return record, nil
}

// Healthy reports overall service health: model artifacts loaded and the
// document store reachable.
func (s *PredictionService) Healthy(ctx context.Context) (bool, error) {
	if ready, err := s.classifier.Ready(); !ready {
		return false, err
	}
	if err := s.store.Ping(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// ModelsLoaded reports whether the classifier artifacts loaded at startup.
func (s *PredictionService) ModelsLoaded() (bool, error) {
	return s.classifier.Ready()
}

// DefaultPageSize is the page served to list requests that do not specify
// a limit, and the page covered by the list cache.
const DefaultPageSize int64 = 50
