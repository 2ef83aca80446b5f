package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "augur.yaml")
	require.Nil(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.Nil(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "127.0.0.1:8501", cfg.Server.Addr())
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("AUGUR_SERVER_PORT", "9000")
	t.Setenv("AUGUR_FORECAST_MAX_HORIZON", "365")
	t.Setenv("AUGUR_FORECAST_COUNTRIES", "US, de")
	t.Setenv("AUGUR_LOGGING_LEVEL", "DEBUG")
	t.Setenv("AUGUR_SERVER_READ_TIMEOUT", "5s")

	cfg, err := Load("")
	require.Nil(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 365, cfg.Forecast.MaxHorizon)
	assert.Equal(t, []string{"us", "de"}, cfg.Forecast.Countries)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
}

func TestLoadFile(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 8080
  shutdown_timeout: 3s
forecast:
  regularization: 0
  countries: [us]
rate_limit:
  enabled: false
logging:
  format: text
`)

	cfg, err := Load(path)
	require.Nil(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 0.0, cfg.Forecast.Regularization)
	assert.Equal(t, []string{"us"}, cfg.Forecast.Countries)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, "text", cfg.Logging.Format)

	// untouched sections keep their defaults
	assert.Equal(t, 3650, cfg.Forecast.MaxHorizon)
	assert.Equal(t, 10, cfg.RateLimit.Burst)
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 8080
logging:
  level: warn
`)
	t.Setenv("AUGUR_SERVER_PORT", "9090")

	cfg, err := Load(path)
	require.Nil(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadErrors(t *testing.T) {
	testData := map[string]struct {
		env  map[string]string
		file string
		err  error
	}{
		"invalid log level": {
			env: map[string]string{"AUGUR_LOGGING_LEVEL": "verbose"},
			err: ErrInvalidConfig,
		},
		"default horizon above max": {
			env: map[string]string{"AUGUR_FORECAST_MAX_HORIZON": "30"},
			err: ErrInvalidConfig,
		},
		"interval width out of range": {
			file: "forecast:\n  interval_width: 1.5\n",
			err:  ErrInvalidConfig,
		},
		"unsupported country": {
			env: map[string]string{"AUGUR_FORECAST_COUNTRIES": "fr"},
			err: ErrInvalidConfig,
		},
		"unknown file key": {
			file: "server:\n  prot: 80\n",
		},
		"unparseable env": {
			env: map[string]string{"AUGUR_SERVER_PORT": "eighty"},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			for k, v := range td.env {
				t.Setenv(k, v)
			}
			path := ""
			if td.file != "" {
				path = writeConfigFile(t, td.file)
			}

			_, err := Load(path)
			require.NotNil(t, err)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
