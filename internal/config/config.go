package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Legacy credential variable names, read in addition to the SEOLEADS_ prefix.
const (
	PlacesKeyEnv    = "GOOGLE_PLACES_API_KEY"
	PageSpeedKeyEnv = "PSI_API_KEY"
)

// ErrMissingPlacesKey is returned by Validate when no Places key is set.
var ErrMissingPlacesKey = eris.New(PlacesKeyEnv + " environment variable not set")

// Config holds the full application configuration.
type Config struct {
	Google    GoogleConfig    `yaml:"google" mapstructure:"google"`
	PageSpeed PageSpeedConfig `yaml:"pagespeed" mapstructure:"pagespeed"`
	Pipeline  PipelineConfig  `yaml:"pipeline" mapstructure:"pipeline"`
	Retry     RetryConfig     `yaml:"retry" mapstructure:"retry"`
	Circuit   CircuitConfig   `yaml:"circuit" mapstructure:"circuit"`
	Pricing   PricingConfig   `yaml:"pricing" mapstructure:"pricing"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// GoogleConfig holds Google Places API settings.
type GoogleConfig struct {
	Key       string  `yaml:"key" mapstructure:"key"`
	BaseURL   string  `yaml:"base_url" mapstructure:"base_url"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// PageSpeedConfig holds PageSpeed Insights settings.
type PageSpeedConfig struct {
	Key         string   `yaml:"key" mapstructure:"key"`
	BaseURL     string   `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int      `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	Categories  []string `yaml:"categories" mapstructure:"categories"`
}

// Timeout returns the analysis timeout as a duration.
func (c PageSpeedConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// PipelineConfig configures lead evaluation.
type PipelineConfig struct {
	MaxPerIndustry int `yaml:"max_per_industry" mapstructure:"max_per_industry"`
	Concurrency    int `yaml:"concurrency" mapstructure:"concurrency"`
}

// RetryConfig configures upstream retries. One attempt means no retry.
type RetryConfig struct {
	MaxAttempts      int `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMS int `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
}

// CircuitConfig configures the PageSpeed circuit breaker. A zero threshold
// disables it.
type CircuitConfig struct {
	FailureThreshold int `yaml:"failure_threshold" mapstructure:"failure_threshold"`
	ResetTimeoutSecs int `yaml:"reset_timeout_secs" mapstructure:"reset_timeout_secs"`
}

// PricingConfig holds per-call upstream pricing in USD.
type PricingConfig struct {
	Places    PlacesPricing    `yaml:"places" mapstructure:"places"`
	PageSpeed PageSpeedPricing `yaml:"pagespeed" mapstructure:"pagespeed"`
}

// PlacesPricing holds Google Places pricing.
type PlacesPricing struct {
	TextSearch float64 `yaml:"text_search" mapstructure:"text_search"`
	Details    float64 `yaml:"details" mapstructure:"details"`
}

// PageSpeedPricing holds PageSpeed Insights pricing.
type PageSpeedPricing struct {
	PerQuery float64 `yaml:"per_query" mapstructure:"per_query"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SEOLEADS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("google.key", "SEOLEADS_GOOGLE_KEY", PlacesKeyEnv); err != nil {
		return nil, eris.Wrap(err, "config: bind google key")
	}
	if err := v.BindEnv("pagespeed.key", "SEOLEADS_PAGESPEED_KEY", PageSpeedKeyEnv); err != nil {
		return nil, eris.Wrap(err, "config: bind pagespeed key")
	}

	// Defaults
	v.SetDefault("google.base_url", "https://maps.googleapis.com/maps/api/place")
	v.SetDefault("google.rate_limit", 10.0)
	v.SetDefault("pagespeed.base_url", "https://www.googleapis.com/pagespeedonline/v5")
	v.SetDefault("pagespeed.timeout_secs", 30)
	v.SetDefault("pagespeed.categories", []string{"seo", "performance"})
	v.SetDefault("pipeline.max_per_industry", 3)
	v.SetDefault("pipeline.concurrency", 1)
	v.SetDefault("retry.max_attempts", 1)
	v.SetDefault("retry.initial_backoff_ms", 500)
	v.SetDefault("circuit.failure_threshold", 0)
	v.SetDefault("circuit.reset_timeout_secs", 30)
	v.SetDefault("pricing.places.text_search", 0.032)
	v.SetDefault("pricing.places.details", 0.017)
	v.SetDefault("pricing.pagespeed.per_query", 0.0)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings required by mode ("find" or "serve").
// A missing Places key is reported as ErrMissingPlacesKey before any other
// problem. A missing PageSpeed key is not an error; analysis degrades instead.
func (c *Config) Validate(mode string) error {
	switch mode {
	case "find", "serve":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if strings.TrimSpace(c.Google.Key) == "" {
		return ErrMissingPlacesKey
	}

	var problems []string
	if c.Pipeline.Concurrency < 1 || c.Pipeline.Concurrency > 32 {
		problems = append(problems, "pipeline.concurrency must be between 1 and 32")
	}
	if c.Pipeline.MaxPerIndustry < 0 {
		problems = append(problems, "pipeline.max_per_industry must be >= 0")
	}
	if c.PageSpeed.TimeoutSecs <= 0 {
		problems = append(problems, "pagespeed.timeout_secs must be > 0")
	}
	if mode == "serve" && (c.Server.Port <= 0 || c.Server.Port > 65535) {
		problems = append(problems, "server.port must be > 0 and <= 65535")
	}

	if len(problems) > 0 {
		return eris.Errorf("config: invalid %s configuration: %s", mode, strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
