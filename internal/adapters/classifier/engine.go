package classifier

import (
	"context"
	"fmt"

	"github.com/AayushRajthala99/phishing-email-detection-system/internal/core"
	"github.com/AayushRajthala99/phishing-email-detection-system/internal/utils"
	"go.uber.org/zap"
)

// maxTextBytes bounds the text handed to the vectorizer so one oversized
// submission cannot monopolize a scheduler thread during tokenization.
const maxTextBytes = 1 << 20

// Engine is the TF-IDF + naive-bayes classification engine. Artifacts are
// loaded once at construction and shared read-only across concurrent
// calls, so inference takes no locks.
type Engine struct {
	vectorizer    *Vectorizer
	model         *NaiveBayes
	textProcessor *utils.TextProcessor
	logger        *zap.Logger
	spamIndex     int
	hamIndex      int
	loadErr       error
}

// NewEngine loads the vectorizer and classifier artifacts. A load failure
// does not return an error: the engine comes up not-ready with the
// retained error so the service can surface it through health checks
// instead of refusing to start.
func NewEngine(vectorizerPath, classifierPath string, textProcessor *utils.TextProcessor, logger *zap.Logger) *Engine {
	e := &Engine{
		textProcessor: textProcessor,
		logger:        logger,
	}

	vectorizer, err := LoadVectorizer(vectorizerPath)
	if err != nil {
		e.loadErr = err
		logger.Error("Failed to load vectorizer artifact", zap.Error(err))
		return e
	}

	model, err := LoadNaiveBayes(classifierPath, vectorizer.Features())
	if err != nil {
		e.loadErr = err
		logger.Error("Failed to load classifier artifact", zap.Error(err))
		return e
	}

	spamIndex := model.ClassIndex(core.LabelSpam)
	hamIndex := model.ClassIndex(core.LabelHam)
	if spamIndex < 0 || hamIndex < 0 {
		e.loadErr = fmt.Errorf("classifier artifact is missing the %q/%q classes: %v",
			core.LabelSpam, core.LabelHam, model.Classes)
		logger.Error("Invalid classifier artifact", zap.Error(e.loadErr))
		return e
	}

	e.vectorizer = vectorizer
	e.model = model
	e.spamIndex = spamIndex
	e.hamIndex = hamIndex

	logger.Info("Classification model loaded",
		zap.String("vectorizer", vectorizerPath),
		zap.String("classifier", classifierPath),
		zap.Int("features", vectorizer.Features()))

	return e
}

// NewEngineFromArtifacts wraps already-loaded artifacts, used by tests and
// the offline CLI.
func NewEngineFromArtifacts(vectorizer *Vectorizer, model *NaiveBayes, textProcessor *utils.TextProcessor, logger *zap.Logger) (*Engine, error) {
	spamIndex := model.ClassIndex(core.LabelSpam)
	hamIndex := model.ClassIndex(core.LabelHam)
	if spamIndex < 0 || hamIndex < 0 {
		return nil, fmt.Errorf("classifier is missing the %q/%q classes", core.LabelSpam, core.LabelHam)
	}
	return &Engine{
		vectorizer:    vectorizer,
		model:         model,
		textProcessor: textProcessor,
		logger:        logger,
		spamIndex:     spamIndex,
		hamIndex:      hamIndex,
	}, nil
}

// Ready reports whether the artifacts loaded successfully.
func (e *Engine) Ready() (bool, error) {
	if e.loadErr != nil {
		return false, e.loadErr
	}
	return true, nil
}

// Classify produces the spam/ham probability pair for an email. Subject
// and body contribute equally: they are concatenated into one text unit
// before vectorization.
func (e *Engine) Classify(ctx context.Context, subject, body string) (*core.Classification, error) {
	if e.loadErr != nil {
		return nil, core.ErrModelUnavailable
	}

	text := e.textProcessor.Normalize(subject + " " + body)
	text = e.textProcessor.TruncateText(text, maxTextBytes)
	features := e.vectorizer.Transform(text)
	probs := e.model.Probabilities(features)

	spamProb := probs[e.spamIndex]
	hamProb := probs[e.hamIndex]

	classification := &core.Classification{
		SpamProbability: spamProb,
		HamProbability:  hamProb,
	}
	if spamProb >= 0.5 {
		classification.Prediction = core.LabelSpam
		classification.Confidence = spamProb
	} else {
		classification.Prediction = core.LabelHam
		classification.Confidence = hamProb
	}

	e.logger.Debug("Email classified",
		zap.String("prediction", classification.Prediction),
		zap.Float64("spam_probability", spamProb),
		zap.Int("active_features", len(features)))

	return classification, nil
}
