package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// MaxDelegationParallelism caps how many child agents may run at once.
const MaxDelegationParallelism = 8

// Config describes the top-level application configuration loaded from YAML and ENV.
type Config struct {
	Backend BackendConfig `mapstructure:"backend"`
	Agent   AgentConfig   `mapstructure:"agent"`
	Logging LoggingConfig `mapstructure:"logging"`
	Server  ServerConfig  `mapstructure:"server"`
}

// BackendConfig selects the chat-completion backend.
type BackendConfig struct {
	Type           string        `mapstructure:"type"`     // openai, openrouter, vllm, lmstudio, custom, ollama
	Model          string        `mapstructure:"model"`    // model identifier sent with every request
	BaseURL        string        `mapstructure:"base_url"` // API base URL
	APIKey         string        `mapstructure:"api_key"`  // optional bearer key
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// AgentConfig describes the conversation loop and delegation limits.
type AgentConfig struct {
	WorkspaceRoot         string  `mapstructure:"workspace_root"`
	MaxSubdelegations     int     `mapstructure:"max_subdelegations"`
	DelegationParallelism int     `mapstructure:"delegation_parallelism"`
	MaxIterations         int     `mapstructure:"max_iterations"`
	Temperature           float64 `mapstructure:"temperature"`
	TopP                  float64 `mapstructure:"top_p"`
}

// LoggingConfig controls logger behaviour.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // console or json
}

// ServerConfig describes daemon settings.
type ServerConfig struct {
	Addr           string `mapstructure:"addr"`
	MetricsEnabled bool   `mapstructure:"metrics_enabled"`
}

// Override mutates a loaded configuration before validation (CLI flags).
type Override func(*Config)

// Load reads configuration from the provided path or, when empty, from an
// optional weaver.yaml in . or configs/. Environment variables override file
// values (prefix: WEAVER_, dots replaced with underscores).
func Load(path string, overrides ...Override) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("WEAVER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindAlternateEnv(v); err != nil {
		return nil, err
	}

	if path == "" {
		v.SetConfigName("weaver")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("configs")
	} else {
		v.SetConfigFile(path)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || path != "" {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	for _, o := range overrides {
		o(&cfg)
	}
	cfg.Agent.DelegationParallelism = ClampParallelism(cfg.Agent.DelegationParallelism)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// bindAlternateEnv accepts the conventional OpenAI variable names alongside
// the WEAVER_ ones. The first variable set wins.
func bindAlternateEnv(v *viper.Viper) error {
	bindings := map[string][]string{
		"backend.model":    {"WEAVER_BACKEND_MODEL", "OPENAI_MODEL"},
		"backend.base_url": {"WEAVER_BACKEND_BASE_URL", "OPENAI_BASE_URL", "OPENAI_API_BASE"},
		"backend.api_key":  {"WEAVER_BACKEND_API_KEY", "OPENAI_API_KEY"},
	}
	for key, names := range bindings {
		args := append([]string{key}, names...)
		if err := v.BindEnv(args...); err != nil {
			return fmt.Errorf("bind env %s: %w", key, err)
		}
	}
	return nil
}

// setDefaults populates sensible defaults for optional fields.
func setDefaults(v *viper.Viper) {
	v.SetDefault("backend.type", "openai")
	v.SetDefault("backend.model", "")
	v.SetDefault("backend.base_url", "")
	v.SetDefault("backend.api_key", "")
	v.SetDefault("backend.request_timeout", 120*time.Second)

	v.SetDefault("agent.workspace_root", ".")
	v.SetDefault("agent.max_subdelegations", 2)
	v.SetDefault("agent.delegation_parallelism", 4)
	v.SetDefault("agent.max_iterations", 60)
	v.SetDefault("agent.temperature", 0.7)
	v.SetDefault("agent.top_p", 1.0)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.metrics_enabled", true)
}

// ClampParallelism bounds a delegation window to [1, MaxDelegationParallelism].
func ClampParallelism(n int) int {
	return max(1, min(n, MaxDelegationParallelism))
}

// Validate performs basic sanity checks on configuration values.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Backend.Model) == "" {
		return errors.New("backend.model is required (set WEAVER_BACKEND_MODEL or OPENAI_MODEL)")
	}

	switch c.Backend.Type {
	case "openai", "openrouter", "vllm", "lmstudio", "custom", "ollama":
	default:
		return fmt.Errorf("backend.type %q is not supported", c.Backend.Type)
	}

	if c.Backend.RequestTimeout <= 0 {
		return errors.New("backend.request_timeout must be > 0")
	}

	if c.Agent.MaxSubdelegations < 0 {
		return errors.New("agent.max_subdelegations must be >= 0")
	}

	if c.Agent.MaxIterations <= 0 {
		return errors.New("agent.max_iterations must be > 0")
	}

	if c.Agent.Temperature < 0 || c.Agent.Temperature > 2 {
		return errors.New("agent.temperature must be within [0,2]")
	}

	if c.Agent.TopP <= 0 || c.Agent.TopP > 1 {
		return errors.New("agent.top_p must be within (0,1]")
	}

	return nil
}
