package reputation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/AayushRajthala99/phishing-email-detection-system/internal/config"
	"github.com/AayushRajthala99/phishing-email-detection-system/internal/core"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// scoreUnknown is returned for fingerprints the service has never seen.
const scoreUnknown = 50.0

// VirusTotalClient looks up content fingerprints against the VirusTotal
// v3 file reputation API. Concurrent lookups for the same hash are
// coalesced into one request, and outbound calls are paced to stay inside
// the API quota.
type VirusTotalClient struct {
	apiKey  string
	baseURL string
	httpc   *http.Client
	limiter *rate.Limiter
	flight  singleflight.Group
	logger  *zap.Logger
}

// NewVirusTotalClient creates a new reputation client.
func NewVirusTotalClient(cfg config.VirusTotalConfig, logger *zap.Logger) *VirusTotalClient {
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 4
	}
	return &VirusTotalClient{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		httpc:   &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), rpm),
		logger:  logger,
	}
}

type fileReport struct {
	Data struct {
		Attributes struct {
			LastAnalysisStats map[string]int `json:"last_analysis_stats"`
		} `json:"attributes"`
	} `json:"data"`
}

// Lookup returns a malicious score in [0,100] for a sha256 fingerprint.
// Unknown hashes score as the conservative unknown sentinel.
func (c *VirusTotalClient) Lookup(ctx context.Context, sha256 string) (float64, error) {
	v, err, shared := c.flight.Do(sha256, func() (any, error) {
		return c.fetchScore(ctx, sha256)
	})
	if err != nil {
		return 0, err
	}
	if shared {
		c.logger.Debug("Coalesced reputation lookup", zap.String("sha256", sha256))
	}
	return v.(float64), nil
}

func (c *VirusTotalClient) fetchScore(ctx context.Context, sha256 string) (float64, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("%w: %v", core.ErrReputationUnavailable, err)
	}

	url := fmt.Sprintf("%s/files/%s", c.baseURL, sha256)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", core.ErrReputationUnavailable, err)
	}
	req.Header.Set("x-apikey", c.apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", core.ErrReputationUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		// No engine has ever seen this content.
		c.logger.Debug("Fingerprint unknown to reputation service", zap.String("sha256", sha256))
		return scoreUnknown, nil
	default:
		return 0, fmt.Errorf("%w: unexpected status %d", core.ErrReputationUnavailable, resp.StatusCode)
	}

	var report fileReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return 0, fmt.Errorf("%w: %v", core.ErrReputationUnavailable, err)
	}

	stats := report.Data.Attributes.LastAnalysisStats
	total := 0
	for _, n := range stats {
		total += n
	}
	if total == 0 {
		return scoreUnknown, nil
	}

	flagged := stats["malicious"] + stats["suspicious"]
	score := float64(flagged) / float64(total) * 100

	c.logger.Debug("Reputation verdict",
		zap.String("sha256", sha256),
		zap.Int("malicious", stats["malicious"]),
		zap.Int("suspicious", stats["suspicious"]),
		zap.Int("total_engines", total),
		zap.Float64("score", score))

	return score, nil
}
