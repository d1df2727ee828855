// Package config loads application configuration from file and environment.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/language"
)

// Config holds the full application configuration.
type Config struct {
	Google    GoogleConfig    `yaml:"google" mapstructure:"google"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Match     MatchConfig     `yaml:"match" mapstructure:"match"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// GoogleConfig holds Custom Search API credentials and locale settings.
type GoogleConfig struct {
	APIKey     string `yaml:"api_key" mapstructure:"api_key"`
	CSEID      string `yaml:"cse_id" mapstructure:"cse_id"`
	Country    string `yaml:"country" mapstructure:"country"`
	Language   string `yaml:"language" mapstructure:"language"`
	NumResults int    `yaml:"num_results" mapstructure:"num_results"`
}

// AnthropicConfig holds Anthropic API settings for the judgment adapter.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
	// Mode selects how the adapter is used: "rerank" submits search
	// results for judgment, "agent" lets the model search the web
	// itself, "off" disables the adapter entirely.
	Mode string `yaml:"mode" mapstructure:"mode"`
}

// Enabled reports whether the AI judgment path is usable.
func (c AnthropicConfig) Enabled() bool {
	return c.Key != "" && c.Mode != "off"
}

// MatchConfig holds the scoring constants. The defaults are the tuned
// values; they are configurable rather than hard-coded.
type MatchConfig struct {
	QualityWeight      float64 `yaml:"quality_weight" mapstructure:"quality_weight"`
	NameWeight         float64 `yaml:"name_weight" mapstructure:"name_weight"`
	BadPathPenalty     float64 `yaml:"bad_path_penalty" mapstructure:"bad_path_penalty"`
	GroupPenalty       float64 `yaml:"group_penalty" mapstructure:"group_penalty"`
	OtherPenalty       float64 `yaml:"other_penalty" mapstructure:"other_penalty"`
	ViabilityThreshold float64 `yaml:"viability_threshold" mapstructure:"viability_threshold"`
}

// DefaultMatch returns the tuned default scoring constants.
func DefaultMatch() MatchConfig {
	return MatchConfig{
		QualityWeight:      0.4,
		NameWeight:         0.6,
		BadPathPenalty:     0.5,
		GroupPenalty:       0.15,
		OtherPenalty:       0.6,
		ViabilityThreshold: 0.05,
	}
}

// BatchConfig configures batch orchestration.
type BatchConfig struct {
	Concurrency    int `yaml:"concurrency" mapstructure:"concurrency"`
	DelayMillis    int `yaml:"delay_millis" mapstructure:"delay_millis"`
	RowTimeoutSecs int `yaml:"row_timeout_secs" mapstructure:"row_timeout_secs"`
}

// ServerConfig configures the upload server.
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
	v.SetEnvPrefix("FBSEARCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Credentials default empty so viper knows the keys;
	// AutomaticEnv alone does not register env-only keys for Unmarshal.
	v.SetDefault("google.api_key", "")
	v.SetDefault("google.cse_id", "")
	v.SetDefault("anthropic.key", "")
	v.SetDefault("google.country", "us")
	v.SetDefault("google.language", "en")
	v.SetDefault("google.num_results", 10)
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("anthropic.mode", "rerank")
	dm := DefaultMatch()
	v.SetDefault("match.quality_weight", dm.QualityWeight)
	v.SetDefault("match.name_weight", dm.NameWeight)
	v.SetDefault("match.bad_path_penalty", dm.BadPathPenalty)
	v.SetDefault("match.group_penalty", dm.GroupPenalty)
	v.SetDefault("match.other_penalty", dm.OtherPenalty)
	v.SetDefault("match.viability_threshold", dm.ViabilityThreshold)
	v.SetDefault("batch.concurrency", 5)
	v.SetDefault("batch.delay_millis", 500)
	v.SetDefault("batch.row_timeout_secs", 30)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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

	if err := cfg.Google.ValidateLocale(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ValidateLocale checks that the configured search language is a real
// BCP 47 tag. The country code is passed through to Google verbatim.
func (c GoogleConfig) ValidateLocale() error {
	if c.Language == "" {
		return nil
	}
	if _, err := language.Parse(c.Language); err != nil {
		return eris.Wrapf(err, "config: invalid search language %q", c.Language)
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
