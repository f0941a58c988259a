package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Heuristic score tiers, bounded to [0,100].
const (
	scoreBenign         = 0.0
	scoreUnknown        = 50.0 // conservative sentinel when reputation cannot answer
	scoreMacroDocument  = 60.0
	scoreTypeMismatch   = 65.0
	scoreDoubleExt      = 85.0
	scoreHighRiskBinary = 90.0
)

// Executables and scripts that can run arbitrary code on the victim's machine.
var highRiskExtensions = map[string]bool{
	".exe": true, ".scr": true, ".bat": true, ".cmd": true, ".com": true,
	".pif": true, ".vbs": true, ".js": true, ".jar": true, ".msi": true,
	".app": true, ".ps1": true,
}

// Office documents with macro support.
var macroExtensions = map[string]bool{
	".doc": true, ".xls": true, ".xlsm": true, ".docm": true, ".pptm": true,
}

// AttachmentAnalyzer fingerprints uploaded files and scores their risk.
// Reputation lookups go through an optional external collaborator; the
// analyzer itself performs no network calls.
type AttachmentAnalyzer struct {
	reputation ReputationClient
	logger     *zap.Logger
}

// NewAttachmentAnalyzer creates a new attachment analyzer. A nil reputation
// client disables external lookups and leaves the heuristic score in place.
func NewAttachmentAnalyzer(reputation ReputationClient, logger *zap.Logger) *AttachmentAnalyzer {
	return &AttachmentAnalyzer{
		reputation: reputation,
		logger:     logger,
	}
}

// Analyze computes the fingerprint, size, content type and malicious score
// for a single attachment. The sha256 depends only on the byte content.
func (a *AttachmentAnalyzer) Analyze(ctx context.Context, att Attachment) AttachmentRecord {
	return a.analyze(ctx, att, nil)
}

func (a *AttachmentAnalyzer) analyze(ctx context.Context, att Attachment, repCache map[string]float64) AttachmentRecord {
	sum := sha256.Sum256(att.Data)
	fingerprint := hex.EncodeToString(sum[:])

	contentType := resolveContentType(att.ContentType, att.Data)

	score := a.heuristicScore(att.Filename, att.ContentType, contentType)

	if a.reputation != nil {
		repScore, ok := repCache[fingerprint]
		if !ok {
			var err error
			repScore, err = a.reputation.Lookup(ctx, fingerprint)
			if err != nil {
				// Reputation failures degrade to the unknown sentinel,
				// they never fail the submission.
				a.logger.Warn("Hash reputation lookup failed",
					zap.String("sha256", fingerprint),
					zap.Error(err))
				repScore = scoreUnknown
			}
			if repCache != nil {
				repCache[fingerprint] = repScore
			}
		}
		if repScore > score {
			score = repScore
		}
	}

	return AttachmentRecord{
		Filename:       att.Filename,
		ContentType:    contentType,
		Size:           int64(len(att.Data)),
		SHA256:         fingerprint,
		MaliciousScore: clampScore(score),
	}
}

// AnalyzeAll processes attachments independently, preserving input order.
// Repeated content within one submission is logged as a duplicate signal
// but still produces a fresh record per attachment; its reputation is
// looked up once per unique hash.
func (a *AttachmentAnalyzer) AnalyzeAll(ctx context.Context, atts []Attachment) []AttachmentRecord {
	if len(atts) == 0 {
		return nil
	}

	records := make([]AttachmentRecord, 0, len(atts))
	seen := make(map[string]string, len(atts))
	repCache := make(map[string]float64, len(atts))

	for _, att := range atts {
		record := a.analyze(ctx, att, repCache)
		if prev, ok := seen[record.SHA256]; ok {
			a.logger.Info("Duplicate attachment content in submission",
				zap.String("sha256", record.SHA256),
				zap.String("filename", record.Filename),
				zap.String("first_seen_as", prev))
		} else {
			seen[record.SHA256] = record.Filename
		}
		records = append(records, record)
	}

	return records
}

func (a *AttachmentAnalyzer) heuristicScore(filename, declaredType, resolvedType string) float64 {
	name := strings.ToLower(filename)
	ext := filepath.Ext(name)

	if highRiskExtensions[ext] {
		return scoreHighRiskBinary
	}

	// Double extension trick, e.g. invoice.pdf.exe
	if strings.Count(name, ".") > 1 {
		return scoreDoubleExt
	}

	if macroExtensions[ext] {
		return scoreMacroDocument
	}

	// A declared document type over content that sniffs as an executable
	// container is a strong masquerading signal.
	if declaredType != "" && !strings.EqualFold(declaredType, resolvedType) &&
		strings.HasPrefix(resolvedType, "application/x-") {
		return scoreTypeMismatch
	}

	return scoreBenign
}

func resolveContentType(declared string, data []byte) string {
	declared = strings.TrimSpace(declared)
	if declared != "" && !strings.EqualFold(declared, "unknown") &&
		!strings.EqualFold(declared, "application/octet-stream") {
		return declared
	}
	if len(data) == 0 {
		return "application/octet-stream"
	}
	return http.DetectContentType(data)
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
