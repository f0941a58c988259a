package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/AayushRajthala99/phishing-email-detection-system/internal/core"
	"go.uber.org/zap"
)

type predictRequest struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type predictResponse struct {
	ID              string                  `json:"id"`
	Prediction      string                  `json:"prediction"`
	Confidence      float64                 `json:"confidence"`
	SpamProbability float64                 `json:"spam_probability"`
	HamProbability  float64                 `json:"ham_probability"`
	AttachmentsInfo []core.AttachmentRecord `json:"attachments_info"`
	Timestamp       time.Time               `json:"timestamp"`
}

type healthResponse struct {
	Status       string `json:"status"`
	ModelsLoaded bool   `json:"models_loaded"`
	Error        string `json:"error,omitempty"`
}

type reportsResponse struct {
	Total   int64                   `json:"total"`
	Reports []core.PredictionRecord `json:"reports"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler serves the REST surface on top of the prediction service.
type Handler struct {
	service       *core.PredictionService
	logger        *zap.Logger
	maxUploadSize int64
}

// NewHandler creates a new REST handler.
func NewHandler(service *core.PredictionService, maxUploadSize int64, logger *zap.Logger) *Handler {
	return &Handler{
		service:       service,
		logger:        logger,
		maxUploadSize: maxUploadSize,
	}
}

// HandleHealth reports liveness: the model-loaded flag and document
// store reachability.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	loaded, _ := h.service.ModelsLoaded()
	healthy, err := h.service.Healthy(r.Context())

	resp := healthResponse{
		Status:       "healthy",
		ModelsLoaded: loaded,
	}
	status := http.StatusOK
	if !healthy {
		resp.Status = "unhealthy"
		status = http.StatusServiceUnavailable
		if err != nil {
			resp.Error = err.Error()
		}
	}

	writeJSON(w, status, resp)
}

// HandlePredict classifies a submission. JSON bodies carry subject and
// body only; multipart submissions may add attachment files.
func (h *Handler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	submission, err := h.decodeSubmission(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	record, err := h.service.Submit(r.Context(), submission)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	attachments := record.Attachments
	if attachments == nil {
		attachments = []core.AttachmentRecord{}
	}

	writeJSON(w, http.StatusOK, predictResponse{
		ID:              record.ID,
		Prediction:      record.Prediction,
		Confidence:      record.Confidence,
		SpamProbability: record.SpamProbability,
		HamProbability:  record.HamProbability,
		AttachmentsInfo: attachments,
		Timestamp:       record.Timestamp,
	})
}

// HandleReports returns a page of historical reports, most recent first.
func (h *Handler) HandleReports(w http.ResponseWriter, r *http.Request) {
	opts := core.ListOptions{Limit: core.DefaultPageSize}

	q := r.URL.Query()
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.ParseInt(v, 10, 64)
		if err != nil || limit < 1 {
			writeError(w, http.StatusUnprocessableEntity, "limit must be a positive integer")
			return
		}
		opts.Limit = limit
	}
	if v := q.Get("offset"); v != "" {
		offset, err := strconv.ParseInt(v, 10, 64)
		if err != nil || offset < 0 {
			writeError(w, http.StatusUnprocessableEntity, "offset must be a non-negative integer")
			return
		}
		opts.Offset = offset
	}
	if v := q.Get("prediction"); v != "" {
		if v != core.LabelSpam && v != core.LabelHam {
			writeError(w, http.StatusUnprocessableEntity, "prediction must be spam or ham")
			return
		}
		opts.Prediction = v
	}

	page, err := h.service.ListReports(r.Context(), opts)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	reports := page.Reports
	if reports == nil {
		reports = []core.PredictionRecord{}
	}

	writeJSON(w, http.StatusOK, reportsResponse{Total: page.Total, Reports: reports})
}

// HandleReport returns a single record by identifier.
func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusUnprocessableEntity, "id query parameter is required")
		return
	}

	record, err := h.service.GetReport(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, record)
}

func (h *Handler) decodeSubmission(r *http.Request) (*core.EmailSubmission, error) {
	contentType := r.Header.Get("Content-Type")

	if strings.HasPrefix(contentType, "multipart/form-data") {
		return h.decodeMultipart(r)
	}

	var req predictRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, h.maxUploadSize)).Decode(&req); err != nil {
		return nil, errors.New("request body must be valid JSON")
	}
	return &core.EmailSubmission{Subject: req.Subject, Body: req.Body}, nil
}

func (h *Handler) decodeMultipart(r *http.Request) (*core.EmailSubmission, error) {
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		return nil, errors.New("invalid multipart form or upload too large")
	}

	submission := &core.EmailSubmission{
		Subject: r.FormValue("subject"),
		Body:    r.FormValue("body"),
	}

	if r.MultipartForm == nil {
		return submission, nil
	}

	for _, header := range r.MultipartForm.File["attachments"] {
		file, err := header.Open()
		if err != nil {
			return nil, errors.New("failed to read attachment " + header.Filename)
		}
		data, err := io.ReadAll(io.LimitReader(file, h.maxUploadSize))
		file.Close()
		if err != nil {
			return nil, errors.New("failed to read attachment " + header.Filename)
		}

		submission.Attachments = append(submission.Attachments, core.Attachment{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	return submission, nil
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case core.IsValidationError(err):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, core.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, core.ErrModelUnavailable), errors.Is(err, core.ErrPersistenceUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		h.logger.Error("Request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
