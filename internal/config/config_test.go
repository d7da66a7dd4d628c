package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORAGE", "memory")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "America/Sao_Paulo", cfg.Timezone)
	assert.Equal(t, 15, cfg.SlotGranularityMinutes)
	assert.Equal(t, 3*time.Second, cfg.CommitTimeout)
	assert.Equal(t, time.Duration(0), cfg.CompletionSweepInterval)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORAGE", "memory")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SLOT_GRANULARITY_MINUTES", "30")
	t.Setenv("COMMIT_TIMEOUT", "750ms")
	t.Setenv("SALON_TIMEZONE", "Europe/Lisbon")
	t.Setenv("APP_ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, 30, cfg.SlotGranularityMinutes)
	assert.Equal(t, 750*time.Millisecond, cfg.CommitTimeout)
	assert.Equal(t, "Europe/Lisbon", cfg.Timezone)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown storage", map[string]string{"STORAGE": "sqlite"}},
		{"bad timezone", map[string]string{"STORAGE": "memory", "SALON_TIMEZONE": "Mars/Olympus"}},
		{"zero granularity", map[string]string{"STORAGE": "memory", "SLOT_GRANULARITY_MINUTES": "0"}},
		{"negative advance", map[string]string{"STORAGE": "memory", "MIN_ADVANCE_MINUTES": "-5"}},
		{"unparsable timeout", map[string]string{"STORAGE": "memory", "COMMIT_TIMEOUT": "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
