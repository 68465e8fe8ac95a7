package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvPrefix is prepended to every environment override, e.g.
// LEADCRM_STORE_DRIVER.
const EnvPrefix = "LEADCRM"

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Provider   ProviderConfig   `yaml:"provider" mapstructure:"provider"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Gemini     GeminiConfig     `yaml:"gemini" mapstructure:"gemini"`
	OpenAI     OpenAIConfig     `yaml:"openai" mapstructure:"openai"`
	Extract    ExtractConfig    `yaml:"extract" mapstructure:"extract"`
	Salesforce SalesforceConfig `yaml:"salesforce" mapstructure:"salesforce"`
	Notion     NotionConfig     `yaml:"notion" mapstructure:"notion"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the record store backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // memory, sqlite, postgres, xlsx
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	Path        string `yaml:"path" mapstructure:"path"` // sqlite or xlsx file
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// ProviderConfig configures model selection for completions.
type ProviderConfig struct {
	Backend        string   `yaml:"backend" mapstructure:"backend"` // anthropic, gemini, openai
	Mode           string   `yaml:"mode" mapstructure:"mode"`       // fallback, discover
	Candidates     []string `yaml:"candidates" mapstructure:"candidates"`
	DefaultModel   string   `yaml:"default_model" mapstructure:"default_model"`
	Prefer         string   `yaml:"prefer" mapstructure:"prefer"`
	TimeoutSecs    int      `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RetryAttempts  int      `yaml:"retry_attempts" mapstructure:"retry_attempts"`
	RetryBackoffMs int      `yaml:"retry_backoff_ms" mapstructure:"retry_backoff_ms"`
	RateLimit      float64  `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// defaultCandidates are the fallback-mode model lists when none are set.
var defaultCandidates = map[string][]string{
	"gemini":    {"gemini-1.5-flash", "gemini-1.5-pro", "gemini-pro"},
	"anthropic": {"claude-haiku-4-5-20251001", "claude-sonnet-4-5-20250929"},
	"openai":    {"gpt-4o-mini", "gpt-4o"},
}

// CandidateModels returns the configured candidates or the backend defaults.
func (p ProviderConfig) CandidateModels() []string {
	if len(p.Candidates) > 0 {
		return p.Candidates
	}
	return defaultCandidates[p.Backend]
}

// DiscoveryDefault returns the discover-mode default identifier.
func (p ProviderConfig) DiscoveryDefault() string {
	if p.DefaultModel != "" {
		return p.DefaultModel
	}
	if c := p.CandidateModels(); len(c) > 0 {
		return c[0]
	}
	return ""
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	BaseURL   string `yaml:"base_url" mapstructure:"base_url"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// GeminiConfig holds Gemini API settings.
type GeminiConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// OpenAIConfig holds settings for any OpenAI-compatible endpoint.
type OpenAIConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// ExtractConfig configures the extraction pipeline.
type ExtractConfig struct {
	Delimiter        string `yaml:"delimiter" mapstructure:"delimiter"`
	BatchConcurrency int    `yaml:"batch_concurrency" mapstructure:"batch_concurrency"`
}

// SalesforceConfig holds Salesforce JWT auth settings.
type SalesforceConfig struct {
	ClientID string `yaml:"client_id" mapstructure:"client_id"`
	Username string `yaml:"username" mapstructure:"username"`
	KeyPath  string `yaml:"key_path" mapstructure:"key_path"`
	LoginURL string `yaml:"login_url" mapstructure:"login_url"`

	// ExternalIDField is the custom Lead field holding the CRM record id.
	ExternalIDField string  `yaml:"external_id_field" mapstructure:"external_id_field"`
	RateLimit       float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// NotionConfig holds Notion API credentials and the lead database ID.
type NotionConfig struct {
	Token  string `yaml:"token" mapstructure:"token"`
	LeadDB string `yaml:"lead_db" mapstructure:"lead_db"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// envOnlyKeys have no default, so AutomaticEnv alone would not surface them
// through Unmarshal.
var envOnlyKeys = []string{
	"store.database_url",
	"provider.default_model",
	"anthropic.key",
	"gemini.key",
	"openai.key",
	"salesforce.client_id",
	"salesforce.username",
	"salesforce.key_path",
	"notion.token",
	"notion.lead_db",
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, k := range envOnlyKeys {
		if err := v.BindEnv(k); err != nil {
			return nil, eris.Wrapf(err, "config: bind env %s", k)
		}
	}

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "leadcrm.db")
	v.SetDefault("provider.backend", "gemini")
	v.SetDefault("provider.mode", "fallback")
	v.SetDefault("provider.prefer", "flash")
	v.SetDefault("provider.timeout_secs", 60)
	v.SetDefault("provider.retry_attempts", 1)
	v.SetDefault("provider.retry_backoff_ms", 500)
	v.SetDefault("provider.rate_limit", 0)
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("extract.delimiter", "Record ID")
	v.SetDefault("extract.batch_concurrency", 1)
	v.SetDefault("salesforce.login_url", "https://login.salesforce.com")
	v.SetDefault("salesforce.external_id_field", "LeadCRM_Id__c")
	v.SetDefault("salesforce.rate_limit", 5)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
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

	return &cfg, nil
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
