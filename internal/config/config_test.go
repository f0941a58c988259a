package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDuration(t *testing.T) {
	cfg := NewFromViper(NewEmptyViper())

	tests := []struct {
		name    string
		value   any
		want    time.Duration
		wantErr bool
	}{
		{"Bare integer is seconds", "60", time.Minute, false},
		{"Larger integer is seconds", "120", 2 * time.Minute, false},
		{"Duration string", "45s", 45 * time.Second, false},
		{"Compound duration string", "5m", 5 * time.Minute, false},
		{"Native integer is seconds", 300, 5 * time.Minute, false},
		{"Zero rejected", "0", 0, true},
		{"Negative rejected", "-10", 0, true},
		{"Garbage rejected", "soon", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg.v.Set("test_window", tt.value)

			d, err := cfg.GetDuration("test_window")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d)
		})
	}
}

func TestEnvIntegerSecondsContract(t *testing.T) {
	// Deployments carry plain integer-seconds values in these variables.
	t.Setenv("RATE_LIMIT_WINDOW", "60")
	t.Setenv("CACHE_TTL_REPORTS", "120")
	t.Setenv("CACHE_TTL_SINGLE_REPORT", "300")

	cfg, err := New()
	require.NoError(t, err)

	rl, err := cfg.GetRateLimit()
	require.NoError(t, err)
	assert.Equal(t, time.Minute, rl.Window,
		"an integer window is seconds, not nanoseconds")

	cache, err := cfg.GetCache()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, cache.ReportsTTL)
	assert.Equal(t, 5*time.Minute, cache.SingleReportTTL)
}

func TestDefaults(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)

	rl, err := cfg.GetRateLimit()
	require.NoError(t, err)
	assert.Equal(t, 100, rl.MaxRequests)
	assert.Equal(t, time.Minute, rl.Window)

	cache, err := cfg.GetCache()
	require.NoError(t, err)
	assert.Equal(t, time.Minute, cache.ReportsTTL)
	assert.Equal(t, 5*time.Minute, cache.SingleReportTTL)
}
