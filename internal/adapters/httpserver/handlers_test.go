package httpserver

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/AayushRajthala99/phishing-email-detection-system/internal/core"
	"github.com/AayushRajthala99/phishing-email-detection-system/internal/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeClassifier struct {
	result *core.Classification
	err    error
}

func (f *fakeClassifier) Classify(ctx context.Context, subject, body string) (*core.Classification, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeClassifier) Ready() (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return true, nil
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string]any
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]any)}
}

func (f *fakeCache) Get(key string) (any, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.entries[key]
	return v, ok
}

func (f *fakeCache) Set(key string, value any, ttl time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = value
}

func (f *fakeCache) Delete(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, key)
}

func (f *fakeCache) Flush() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = make(map[string]any)
}

type fakeStore struct {
	mu        sync.Mutex
	records   []core.PredictionRecord
	insertErr error
	pingErr   error
}

func (f *fakeStore) Insert(ctx context.Context, record *core.PredictionRecord) (string, error) {
	if f.insertErr != nil {
		return "", f.insertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	id := strconv.Itoa(len(f.records) + 1)
	stored := *record
	stored.ID = id
	f.records = append(f.records, stored)
	return id, nil
}

func (f *fakeStore) List(ctx context.Context, opts core.ListOptions) (*core.ReportPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	reports := make([]core.PredictionRecord, 0, len(f.records))
	for i := len(f.records) - 1; i >= 0; i-- {
		reports = append(reports, f.records[i])
	}
	return &core.ReportPage{Total: int64(len(reports)), Reports: reports}, nil
}

func (f *fakeStore) FindByID(ctx context.Context, id string) (*core.PredictionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.records {
		if f.records[i].ID == id {
			record := f.records[i]
			return &record, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *fakeStore) CountBySHA256(ctx context.Context, sha256 string) (int64, error) {
	return 0, nil
}

func (f *fakeStore) Ping(ctx context.Context) error {
	return f.pingErr
}

type testEnv struct {
	router  http.Handler
	store   *fakeStore
	limiter *ratelimit.FixedWindow
}

func newTestEnv(t *testing.T, classifier core.Classifier, maxRequests int) *testEnv {
	t.Helper()
	logger := zap.NewNop()
	store := &fakeStore{}

	service := core.NewPredictionService(
		classifier,
		core.NewAttachmentAnalyzer(nil, logger),
		newFakeCache(),
		store,
		logger,
		time.Minute,
		5*time.Minute,
	)

	limiter := ratelimit.NewFixedWindow(maxRequests, time.Minute, logger)
	t.Cleanup(limiter.Stop)

	handler := NewHandler(service, 10*1024*1024, logger)
	return &testEnv{
		router:  NewRouter(handler, limiter, logger),
		store:   store,
		limiter: limiter,
	}
}

func spamClassifier() *fakeClassifier {
	return &fakeClassifier{result: &core.Classification{
		Prediction:      core.LabelSpam,
		Confidence:      0.93,
		SpamProbability: 0.93,
		HamProbability:  0.07,
	}}
}

func doJSON(t *testing.T, router http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	t.Run("Models loaded", func(t *testing.T) {
		env := newTestEnv(t, spamClassifier(), 100)
		rec := doJSON(t, env.router, http.MethodGet, "/health", nil)

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "healthy", resp["status"])
		assert.Equal(t, true, resp["models_loaded"])
	})

	t.Run("Models missing", func(t *testing.T) {
		env := newTestEnv(t, &fakeClassifier{err: errors.New("artifact not found")}, 100)
		rec := doJSON(t, env.router, http.MethodGet, "/health", nil)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "unhealthy", resp["status"])
		assert.Equal(t, false, resp["models_loaded"])
		assert.Contains(t, resp["error"], "artifact not found")
	})

	t.Run("Store unreachable", func(t *testing.T) {
		env := newTestEnv(t, spamClassifier(), 100)
		env.store.pingErr = core.ErrPersistenceUnavailable
		rec := doJSON(t, env.router, http.MethodGet, "/health", nil)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "unhealthy", resp["status"])
		assert.Equal(t, true, resp["models_loaded"],
			"artifacts are loaded even when the store is down")
	})
}

func TestHandlePredictJSON(t *testing.T) {
	env := newTestEnv(t, spamClassifier(), 100)

	rec := doJSON(t, env.router, http.MethodPost, "/predict", map[string]string{
		"subject": "Urgent: verify your account",
		"body":    "Click here to confirm your password immediately",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp predictResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, core.LabelSpam, resp.Prediction)
	assert.Greater(t, resp.SpamProbability, 0.5)
	assert.InDelta(t, 1.0, resp.SpamProbability+resp.HamProbability, 1e-6)
	assert.NotEmpty(t, resp.ID)
	assert.NotNil(t, resp.AttachmentsInfo)
	assert.Len(t, env.store.records, 1)
}

func TestHandlePredictValidation(t *testing.T) {
	env := newTestEnv(t, spamClassifier(), 100)

	tests := []struct {
		name string
		body map[string]string
	}{
		{"Missing subject", map[string]string{"body": "text"}},
		{"Missing body", map[string]string{"subject": "text"}},
		{"Whitespace only", map[string]string{"subject": "  ", "body": "text"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, env.router, http.MethodPost, "/predict", tt.body)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		})
	}

	assert.Empty(t, env.store.records, "rejected submissions must not create records")
}

func TestHandlePredictMalformedJSON(t *testing.T) {
	env := newTestEnv(t, spamClassifier(), 100)

	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandlePredictServiceFailures(t *testing.T) {
	t.Run("Model unavailable", func(t *testing.T) {
		env := newTestEnv(t, &fakeClassifier{err: core.ErrModelUnavailable}, 100)
		rec := doJSON(t, env.router, http.MethodPost, "/predict", map[string]string{"subject": "s", "body": "b"})
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("Persistence unavailable", func(t *testing.T) {
		env := newTestEnv(t, spamClassifier(), 100)
		env.store.insertErr = core.ErrPersistenceUnavailable
		rec := doJSON(t, env.router, http.MethodPost, "/predict", map[string]string{"subject": "s", "body": "b"})
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestHandlePredictMultipart(t *testing.T) {
	env := newTestEnv(t, spamClassifier(), 100)

	content := []byte("attachment payload bytes")
	expected := sha256.Sum256(content)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("subject", "Urgent: verify your account"))
	require.NoError(t, writer.WriteField("body", "Click here to confirm your password"))
	part, err := writer.CreateFormFile("attachments", "invoice.txt")
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/predict", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp predictResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.AttachmentsInfo, 1)

	info := resp.AttachmentsInfo[0]
	assert.Equal(t, "invoice.txt", info.Filename)
	assert.Equal(t, hex.EncodeToString(expected[:]), info.SHA256)
	assert.Equal(t, int64(len(content)), info.Size)
	assert.GreaterOrEqual(t, info.MaliciousScore, 0.0)
	assert.LessOrEqual(t, info.MaliciousScore, 100.0)
}

func TestHandleReports(t *testing.T) {
	env := newTestEnv(t, spamClassifier(), 100)

	doJSON(t, env.router, http.MethodPost, "/predict", map[string]string{"subject": "s", "body": "b"})

	rec := doJSON(t, env.router, http.MethodGet, "/reports", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp reportsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.Total)
	require.Len(t, resp.Reports, 1)
	assert.Equal(t, core.LabelSpam, resp.Reports[0].Prediction)
}

func TestHandleReportsInvalidPaging(t *testing.T) {
	env := newTestEnv(t, spamClassifier(), 100)

	rec := doJSON(t, env.router, http.MethodGet, "/reports?limit=0", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doJSON(t, env.router, http.MethodGet, "/reports?offset=-1", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doJSON(t, env.router, http.MethodGet, "/reports?prediction=other", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandleReport(t *testing.T) {
	env := newTestEnv(t, spamClassifier(), 100)

	rec := doJSON(t, env.router, http.MethodGet, "/report", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, "missing id")

	rec = doJSON(t, env.router, http.MethodGet, "/report?id=does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	doJSON(t, env.router, http.MethodPost, "/predict", map[string]string{"subject": "s", "body": "b"})

	rec = doJSON(t, env.router, http.MethodGet, "/report?id=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var record core.PredictionRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))
	assert.Equal(t, "1", record.ID)
}
