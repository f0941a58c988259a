package core

import (
	"time"
)

// Prediction labels assigned by the classification engine.
const (
	LabelSpam = "spam"
	LabelHam  = "ham"
)

// Attachment is a raw uploaded file as received with a submission.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// EmailSubmission represents a single email handed in for classification.
// It is request-scoped and never persisted as-is.
type EmailSubmission struct {
	Subject     string
	Body        string
	Attachments []Attachment
}

// AttachmentRecord is the analyzed form of one attachment. It is owned by
// the PredictionRecord that contains it; identical content in two records
// still yields two independent AttachmentRecords.
type AttachmentRecord struct {
	Filename       string  `bson:"filename" json:"filename"`
	ContentType    string  `bson:"content_type" json:"content_type"`
	Size           int64   `bson:"size" json:"size"`
	SHA256         string  `bson:"sha256" json:"sha256"`
	MaliciousScore float64 `bson:"malicious_score" json:"malicious_score"`
}

// Classification is the probability pair produced by the engine.
// SpamProbability and HamProbability sum to 1 within floating tolerance.
type Classification struct {
	Prediction      string
	Confidence      float64
	SpamProbability float64
	HamProbability  float64
}

// PredictionRecord is the durable unit of work: one classified submission.
// Created exactly once per successful classification and never mutated.
type PredictionRecord struct {
	ID              string             `bson:"-" json:"id"`
	ProcessingID    string             `bson:"processing_id" json:"processing_id"`
	Subject         string             `bson:"subject" json:"subject"`
	Body            string             `bson:"body" json:"body"`
	Prediction      string             `bson:"prediction" json:"prediction"`
	Confidence      float64            `bson:"confidence" json:"confidence"`
	SpamProbability float64            `bson:"spam_probability" json:"spam_probability"`
	HamProbability  float64            `bson:"ham_probability" json:"ham_probability"`
	Timestamp       time.Time          `bson:"timestamp" json:"timestamp"`
	Attachments     []AttachmentRecord `bson:"attachments" json:"attachments"`
}

// ListOptions narrows and pages a report listing.
type ListOptions struct {
	Prediction string // "spam", "ham" or empty for all
	Limit      int64
	Offset     int64
}

// ReportPage is one page of historical reports, most recent first.
type ReportPage struct {
	Total   int64
	Reports []PredictionRecord
}
