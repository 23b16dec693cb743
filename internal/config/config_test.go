package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestDefault_IsValid(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "0.0.0.0:8000", cfg.Server.Addr())
}

func TestLoad_DefaultsMatch(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("QA_SERVER_PORT", "9100")
	t.Setenv("QA_SERVER_SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("QA_LOGGING_LEVEL", "debug")
	t.Setenv("QA_PIPELINE_WORKERS", "3")
	t.Setenv("QA_PIPELINE_DELAY", "250ms")
	t.Setenv("QA_RATELIMIT_REQUESTS_PER_SECOND", "2.5")
	t.Setenv("QA_METRICS_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 3, cfg.Pipeline.Workers)
	assert.Equal(t, 250*time.Millisecond, cfg.Pipeline.Delay)
	assert.Equal(t, 2.5, cfg.RateLimit.RequestsPerSecond)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("QA_PIPELINE_WORKERS", "0")

	_, err := Load()
	assert.Error(t, err)

	assert.Equal(t, Default(), LoadOrDefault())
}

func TestLoad_Malformed(t *testing.T) {
	t.Setenv("QA_SERVER_PORT", "eighty")

	_, err := Load()
	assert.ErrorContains(t, err, "failed to load config")
}

func TestValidate_CollectsEveryProblem(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Server.Port = 70000
	cfg.Logging.Level = "loud"
	cfg.Pipeline.Name = " "
	cfg.Pipeline.Workers = 0
	cfg.RateLimit.Burst = 0
	cfg.Metrics.Path = "metrics"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 6)
}

func TestValidate_DisabledSectionsAreNotChecked(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.RateLimit.Enabled = false
	cfg.RateLimit.RequestsPerSecond = 0
	cfg.RateLimit.Burst = 0
	cfg.Metrics.Enabled = false
	cfg.Metrics.Path = ""

	assert.NoError(t, cfg.Validate())
}
