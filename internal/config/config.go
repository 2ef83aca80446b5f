// Package config loads the service configuration from defaults, an optional YAML file and the
// environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix is prepended to every environment variable name, e.g. AUGUR_SERVER_PORT
const EnvPrefix = "AUGUR"

var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the complete service configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Forecast  ForecastConfig  `yaml:"forecast" envconfig:"FORECAST"`
	RateLimit RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
}

// ServerConfig configures the HTTP listener
type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"HOST" default:"127.0.0.1"`
	Port            int           `yaml:"port" envconfig:"PORT" default:"8501" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"30s" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"120s" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"120s" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"15s" validate:"gt=0"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES" default:"10485760" validate:"gt=0"`
}

// Addr returns the listen address in host:port form
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ForecastConfig holds the fixed model configuration and horizon limits
type ForecastConfig struct {
	DefaultHorizon  int      `yaml:"default_horizon" envconfig:"DEFAULT_HORIZON" default:"90" validate:"min=1,ltefield=MaxHorizon"`
	MaxHorizon      int      `yaml:"max_horizon" envconfig:"MAX_HORIZON" default:"3650" validate:"min=1"`
	IntervalWidth   float64  `yaml:"interval_width" envconfig:"INTERVAL_WIDTH" default:"0.8" validate:"gt=0,lt=1"`
	Regularization  float64  `yaml:"regularization" envconfig:"REGULARIZATION" default:"0.05" validate:"gte=0"`
	NumChangepoints int      `yaml:"num_changepoints" envconfig:"NUM_CHANGEPOINTS" default:"25" validate:"gte=0"`
	ResidualWindow  int      `yaml:"residual_window" envconfig:"RESIDUAL_WINDOW" default:"100" validate:"gte=0"`
	OutlierPasses   int      `yaml:"outlier_passes" envconfig:"OUTLIER_PASSES" default:"0" validate:"gte=0"`
	Countries       []string `yaml:"countries" envconfig:"COUNTRIES" validate:"dive,oneof=us de"`
}

// RateLimitConfig configures the forecast endpoint limiter
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"5" validate:"gt=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"10" validate:"min=1"`
}

// LoggingConfig configures the slog handler
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" envconfig:"FORMAT" default:"json" validate:"oneof=json text"`
}

// Load builds the configuration. Values from the YAML file at path, when path is not empty,
// replace the defaults and explicitly set environment variables replace both.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("unable to process environment, %w", err)
	}

	if path != "" {
		fileCfg, present, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		mergeConfigs(&cfg, fileCfg, present, envSet)
	}

	normalize(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration produced by the struct tag defaults alone
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            8501,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    120 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			MaxUploadBytes:  10 << 20,
		},
		Forecast: ForecastConfig{
			DefaultHorizon:  90,
			MaxHorizon:      3650,
			IntervalWidth:   0.8,
			Regularization:  0.05,
			NumChangepoints: 25,
			ResidualWindow:  100,
		},
		RateLimit: RateLimitConfig{
			Enabled: true,
			RPS:     5,
			Burst:   10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks every field constraint
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s(%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w, %s", ErrInvalidConfig, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w, %w", ErrInvalidConfig, err)
	}
	return nil
}

// loadFile parses the YAML file at path and reports which keys it sets, as "section.key"
func loadFile(path string) (*Config, map[string]bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to read config file, %w", err)
	}
	var fileCfg Config
	if err := yaml.UnmarshalStrict(data, &fileCfg); err != nil {
		return nil, nil, fmt.Errorf("unable to parse config file %s, %w", path, err)
	}

	var raw map[string]map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("unable to parse config file %s, %w", path, err)
	}
	present := make(map[string]bool)
	for section, values := range raw {
		for key := range values {
			present[section+"."+key] = true
		}
	}
	return &fileCfg, present, nil
}

func envSet(key string) bool {
	_, ok := os.LookupEnv(EnvPrefix + "_" + key)
	return ok
}

// mergeConfigs copies the values present in the file into cfg unless the matching environment
// variable was set explicitly
func mergeConfigs(cfg, file *Config, present map[string]bool, isSet func(key string) bool) {
	pick := func(fileKey, envKey string, apply func()) {
		if present[fileKey] && !isSet(envKey) {
			apply()
		}
	}

	s, fs := &cfg.Server, file.Server
	pick("server.host", "SERVER_HOST", func() { s.Host = fs.Host })
	pick("server.port", "SERVER_PORT", func() { s.Port = fs.Port })
	pick("server.read_timeout", "SERVER_READ_TIMEOUT", func() { s.ReadTimeout = fs.ReadTimeout })
	pick("server.write_timeout", "SERVER_WRITE_TIMEOUT", func() { s.WriteTimeout = fs.WriteTimeout })
	pick("server.idle_timeout", "SERVER_IDLE_TIMEOUT", func() { s.IdleTimeout = fs.IdleTimeout })
	pick("server.shutdown_timeout", "SERVER_SHUTDOWN_TIMEOUT", func() { s.ShutdownTimeout = fs.ShutdownTimeout })
	pick("server.max_upload_bytes", "SERVER_MAX_UPLOAD_BYTES", func() { s.MaxUploadBytes = fs.MaxUploadBytes })

	f, ff := &cfg.Forecast, file.Forecast
	pick("forecast.default_horizon", "FORECAST_DEFAULT_HORIZON", func() { f.DefaultHorizon = ff.DefaultHorizon })
	pick("forecast.max_horizon", "FORECAST_MAX_HORIZON", func() { f.MaxHorizon = ff.MaxHorizon })
	pick("forecast.interval_width", "FORECAST_INTERVAL_WIDTH", func() { f.IntervalWidth = ff.IntervalWidth })
	pick("forecast.regularization", "FORECAST_REGULARIZATION", func() { f.Regularization = ff.Regularization })
	pick("forecast.num_changepoints", "FORECAST_NUM_CHANGEPOINTS", func() { f.NumChangepoints = ff.NumChangepoints })
	pick("forecast.residual_window", "FORECAST_RESIDUAL_WINDOW", func() { f.ResidualWindow = ff.ResidualWindow })
	pick("forecast.outlier_passes", "FORECAST_OUTLIER_PASSES", func() { f.OutlierPasses = ff.OutlierPasses })
	pick("forecast.countries", "FORECAST_COUNTRIES", func() { f.Countries = ff.Countries })

	r, fr := &cfg.RateLimit, file.RateLimit
	pick("rate_limit.enabled", "RATE_LIMIT_ENABLED", func() { r.Enabled = fr.Enabled })
	pick("rate_limit.rps", "RATE_LIMIT_RPS", func() { r.RPS = fr.RPS })
	pick("rate_limit.burst", "RATE_LIMIT_BURST", func() { r.Burst = fr.Burst })

	l, fl := &cfg.Logging, file.Logging
	pick("logging.level", "LOGGING_LEVEL", func() { l.Level = fl.Level })
	pick("logging.format", "LOGGING_FORMAT", func() { l.Format = fl.Format })
}

func normalize(cfg *Config) {
	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
	cfg.Logging.Format = strings.ToLower(strings.TrimSpace(cfg.Logging.Format))
	for i, c := range cfg.Forecast.Countries {
		cfg.Forecast.Countries[i] = strings.ToLower(strings.TrimSpace(c))
	}
}
