package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Extract   ExtractConfig   `yaml:"extract" mapstructure:"extract"`
	Classify  ClassifyConfig  `yaml:"classify" mapstructure:"classify"`
	Scorer    ScorerConfig    `yaml:"scorer" mapstructure:"scorer"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the read-only sponsorship database.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key         string `yaml:"key" mapstructure:"key"`
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	HaikuModel  string `yaml:"haiku_model" mapstructure:"haiku_model"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries" mapstructure:"max_retries"`
}

// ExtractConfig configures website text extraction.
type ExtractConfig struct {
	MaxChars     int     `yaml:"max_chars" mapstructure:"max_chars"`
	MaxBodyBytes int64   `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	TimeoutSecs  int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxAttempts  int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	RatePerHost  float64 `yaml:"rate_per_host" mapstructure:"rate_per_host"`
}

// ClassifyConfig configures the company classifier call.
type ClassifyConfig struct {
	MaxTokens int64 `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// ScorerConfig configures competitor scoring. MaxCandidateBrands bounds
// the request duration; it is the first knob to turn when requests time out.
type ScorerConfig struct {
	MaxCandidateBrands  int   `yaml:"max_candidate_brands" mapstructure:"max_candidate_brands"`
	BatchSize           int   `yaml:"batch_size" mapstructure:"batch_size"`
	TopN                int   `yaml:"top_n" mapstructure:"top_n"`
	MinSimilarity       int   `yaml:"min_similarity" mapstructure:"min_similarity"`
	BatchDelayMs        int   `yaml:"batch_delay_ms" mapstructure:"batch_delay_ms"`
	DescriptionMaxChars int   `yaml:"description_max_chars" mapstructure:"description_max_chars"`
	MaxTokens           int64 `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// BatchDelay returns the pause between scoring batches.
func (c ScorerConfig) BatchDelay() time.Duration {
	return time.Duration(c.BatchDelayMs) * time.Millisecond
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port               int      `yaml:"port" mapstructure:"port"`
	RequestTimeoutSecs int      `yaml:"request_timeout_secs" mapstructure:"request_timeout_secs"`
	CORSOrigins        []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// RequestTimeout returns the per-request deadline applied by the server.
func (c ServerConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSecs) * time.Second
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("COMPINTEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 1)
	v.SetDefault("anthropic.haiku_model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.timeout_secs", 45)
	v.SetDefault("anthropic.max_retries", 0)
	v.SetDefault("extract.max_chars", 8000)
	v.SetDefault("extract.max_body_bytes", 5<<20)
	v.SetDefault("extract.timeout_secs", 15)
	v.SetDefault("extract.max_attempts", 2)
	v.SetDefault("extract.rate_per_host", 2.0)
	v.SetDefault("classify.max_tokens", 1500)
	v.SetDefault("scorer.max_candidate_brands", 50)
	v.SetDefault("scorer.batch_size", 10)
	v.SetDefault("scorer.top_n", 15)
	v.SetDefault("scorer.min_similarity", 30)
	v.SetDefault("scorer.batch_delay_ms", 300)
	v.SetDefault("scorer.description_max_chars", 200)
	v.SetDefault("scorer.max_tokens", 1000)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.request_timeout_secs", 60)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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

// Validate checks the settings a command needs. mode is one of "serve",
// "report", "analyze" or "seed".
func (c *Config) Validate(mode string) error {
	var errs []string

	needStore := false
	needModel := false
	switch mode {
	case "serve":
		needStore, needModel = true, true
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
		if c.Server.RequestTimeoutSecs <= 0 {
			errs = append(errs, "server.request_timeout_secs must be > 0")
		}
	case "report":
		needStore, needModel = true, true
	case "analyze":
		needModel = true
	case "seed":
		if c.Store.Driver != "sqlite" {
			errs = append(errs, "seed requires store.driver=sqlite")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if needModel {
		if c.Anthropic.Key == "" {
			errs = append(errs, "anthropic.key is required")
		}
		if c.Anthropic.HaikuModel == "" {
			errs = append(errs, "anthropic.haiku_model is required")
		}
	}
	if needStore {
		switch c.Store.Driver {
		case "postgres":
			if c.Store.DatabaseURL == "" {
				errs = append(errs, "store.database_url is required")
			}
		case "sqlite":
		default:
			errs = append(errs, "store.driver must be postgres or sqlite")
		}
		errs = append(errs, c.Scorer.validate()...)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (c ScorerConfig) validate() []string {
	var errs []string
	if c.BatchSize < 1 || c.BatchSize > 100 {
		errs = append(errs, "scorer.batch_size must be between 1 and 100")
	}
	if c.MaxCandidateBrands < 1 {
		errs = append(errs, "scorer.max_candidate_brands must be > 0")
	}
	if c.TopN < 1 {
		errs = append(errs, "scorer.top_n must be > 0")
	}
	if c.MinSimilarity < 0 || c.MinSimilarity > 100 {
		errs = append(errs, "scorer.min_similarity must be between 0 and 100")
	}
	if c.BatchDelayMs < 0 {
		errs = append(errs, "scorer.batch_delay_ms must be >= 0")
	}
	return errs
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
