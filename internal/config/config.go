// Package config loads layered configuration: built-in defaults, an
// optional YAML file and IDS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/abhisek/intentdrift/internal/drift"
	"github.com/abhisek/intentdrift/internal/llm"
	"github.com/abhisek/intentdrift/internal/logging"
	"github.com/abhisek/intentdrift/internal/store"
)

// EnvPrefix prefixes every environment override, e.g. IDS_SCORER_ALPHA.
const EnvPrefix = "IDS"

// Encoder names.
const (
	EncoderHash     = "hash"
	EncoderProvider = "provider"
)

// Config holds the complete application configuration.
type Config struct {
	Scorer ScorerConfig `mapstructure:"scorer"`
	LLM    llm.Config   `mapstructure:"llm"`
	DB     string       `mapstructure:"db"`
	Log    LogConfig    `mapstructure:"log"`
	Run    RunConfig    `mapstructure:"run"`
}

// ScorerConfig is the drift scorer configuration plus the encoder choice.
type ScorerConfig struct {
	drift.Config `mapstructure:",squash"`

	// Encoder is "hash" (SHA-256 placeholder) or "provider" (llm.embedder).
	Encoder string `mapstructure:"encoder"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

type RunConfig struct {
	Selector string `mapstructure:"selector"`
	Out      string `mapstructure:"out"`
	Store    bool   `mapstructure:"store"`
}

// DefaultConfig returns a new configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Scorer: ScorerConfig{
			Config:  drift.DefaultConfig(),
			Encoder: EncoderHash,
		},
		LLM: llm.DefaultConfig(),
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
		Run: RunConfig{
			Selector: "first",
			Out:      "ids_trace.json",
			Store:    true,
		},
	}
}

// Load reads configuration. An explicit configPath must exist; otherwise
// ids.yaml is looked up in the working directory and the user config
// directory, and its absence is not an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("ids")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "intentdrift"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.LLM.DiscoverKeys()
	return &cfg, nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Scorer.Config.Validate(); err != nil {
		return fmt.Errorf("scorer: %w", err)
	}
	switch c.Scorer.Encoder {
	case EncoderHash:
	case EncoderProvider:
		if c.LLM.Embedder == "" {
			return fmt.Errorf("scorer.encoder=provider requires llm.embedder")
		}
	default:
		return fmt.Errorf("unknown encoder %q (want hash or provider)", c.Scorer.Encoder)
	}
	if err := c.LLM.Validate(); err != nil {
		return fmt.Errorf("llm: %w", err)
	}
	return nil
}

// DBPath returns the configured database path, falling back to
// store.DefaultDBPath. The parent directory is created.
func (c *Config) DBPath() (string, error) {
	if c.DB != "" {
		return c.DB, store.EnsureDir(c.DB)
	}
	return store.DefaultDBPath()
}

// LogOptions converts the log section for logging.New.
func (c *Config) LogOptions() logging.Options {
	return logging.Options{
		Level:  c.Log.Level,
		Format: c.Log.Format,
		File:   c.Log.File,
	}
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("scorer.alpha", d.Scorer.Alpha)
	v.SetDefault("scorer.beta", d.Scorer.Beta)
	v.SetDefault("scorer.gamma", d.Scorer.Gamma)
	v.SetDefault("scorer.transport.reg", d.Scorer.Transport.Reg)
	v.SetDefault("scorer.transport.iterations", d.Scorer.Transport.Iterations)
	v.SetDefault("scorer.encoder", d.Scorer.Encoder)

	v.SetDefault("llm.provider", d.LLM.Provider)
	v.SetDefault("llm.embedder", d.LLM.Embedder)
	v.SetDefault("llm.anthropic.api_key", "")
	v.SetDefault("llm.anthropic.model", d.LLM.Anthropic.Model)
	v.SetDefault("llm.openai.api_key", "")
	v.SetDefault("llm.openai.model", d.LLM.OpenAI.Model)
	v.SetDefault("llm.openai.embedding_model", d.LLM.OpenAI.EmbeddingModel)
	v.SetDefault("llm.openai.base_url", d.LLM.OpenAI.BaseURL)
	v.SetDefault("llm.gemini.api_key", "")
	v.SetDefault("llm.gemini.model", d.LLM.Gemini.Model)
	v.SetDefault("llm.gemini.embedding_model", d.LLM.Gemini.EmbeddingModel)
	v.SetDefault("llm.openrouter.api_key", "")
	v.SetDefault("llm.openrouter.model", d.LLM.OpenRouter.Model)
	v.SetDefault("llm.openrouter.base_url", d.LLM.OpenRouter.BaseURL)
	v.SetDefault("llm.retry.max_attempts", d.LLM.Retry.MaxAttempts)
	v.SetDefault("llm.retry.initial_wait", d.LLM.Retry.InitialWait)
	v.SetDefault("llm.retry.max_wait", d.LLM.Retry.MaxWait)
	v.SetDefault("llm.retry.multiplier", d.LLM.Retry.Multiplier)
	v.SetDefault("llm.timeout", d.LLM.Timeout)

	v.SetDefault("db", d.DB)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.file", d.Log.File)

	v.SetDefault("run.selector", d.Run.Selector)
	v.SetDefault("run.out", d.Run.Out)
	v.SetDefault("run.store", d.Run.Store)
}
