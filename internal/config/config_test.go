package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 250, cfg.LookbackDays)
	assert.Equal(t, "SPY", cfg.Benchmark)
	assert.Equal(t, 5, cfg.RequestsPerSec)
	assert.Equal(t, 1.0, cfg.CommissionBps)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("LOOKBACK_DAYS", "90")
	t.Setenv("BENCHMARK", "QQQ")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 90, cfg.LookbackDays)
	assert.Equal(t, "QQQ", cfg.Benchmark)
}

func TestValidateRejectsBadRanges(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"short lookback", func(c *Config) { c.LookbackDays = 1 }},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }},
		{"zero rate limit", func(c *Config) { c.RequestsPerSec = 0 }},
		{"negative commission", func(c *Config) { c.CommissionBps = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load()
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
