package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "leadcrm.db", cfg.Store.Path)
	assert.Equal(t, "gemini", cfg.Provider.Backend)
	assert.Equal(t, "fallback", cfg.Provider.Mode)
	assert.Equal(t, "flash", cfg.Provider.Prefer)
	assert.Equal(t, 60, cfg.Provider.TimeoutSecs)
	assert.Equal(t, 1, cfg.Provider.RetryAttempts)
	assert.Equal(t, int64(1024), cfg.Anthropic.MaxTokens)
	assert.Equal(t, "https://api.openai.com/v1", cfg.OpenAI.BaseURL)
	assert.Equal(t, "Record ID", cfg.Extract.Delimiter)
	assert.Equal(t, 1, cfg.Extract.BatchConcurrency)
	assert.Equal(t, "https://login.salesforce.com", cfg.Salesforce.LoginURL)
	assert.Equal(t, "LeadCRM_Id__c", cfg.Salesforce.ExternalIDField)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/leads
provider:
  backend: anthropic
  candidates:
    - claude-haiku-4-5-20251001
log:
  level: debug
  format: console
server:
  port: 9090
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/leads", cfg.Store.DatabaseURL)
	assert.Equal(t, "anthropic", cfg.Provider.Backend)
	assert.Equal(t, []string{"claude-haiku-4-5-20251001"}, cfg.Provider.Candidates)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 9090, cfg.Server.Port)
	// Defaults still apply for unset values
	assert.Equal(t, 60, cfg.Provider.TimeoutSecs)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("LEADCRM_STORE_DRIVER", "memory")
	t.Setenv("LEADCRM_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvSecrets(t *testing.T) {
	chdirTemp(t)

	t.Setenv("LEADCRM_GEMINI_KEY", "g-key")
	t.Setenv("LEADCRM_STORE_DATABASE_URL", "postgres://env/db")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "g-key", cfg.Gemini.Key)
	assert.Equal(t, "postgres://env/db", cfg.Store.DatabaseURL)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

func TestCandidateModels(t *testing.T) {
	p := ProviderConfig{Backend: "gemini"}
	assert.Equal(t, "gemini-1.5-flash", p.CandidateModels()[0])
	assert.Equal(t, "gemini-1.5-flash", p.DiscoveryDefault())

	p.Candidates = []string{"custom"}
	assert.Equal(t, []string{"custom"}, p.CandidateModels())

	p.DefaultModel = "explicit"
	assert.Equal(t, "explicit", p.DiscoveryDefault())

	assert.Empty(t, ProviderConfig{Backend: "unknown"}.CandidateModels())
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Store.Driver = "sqlite"
	cfg.Store.Path = "leadcrm.db"
	cfg.Provider.Backend = "gemini"
	cfg.Provider.Mode = "fallback"
	cfg.Provider.TimeoutSecs = 60
	cfg.Server.Port = 8080
	return cfg
}

func TestValidateExtract_AllPresent(t *testing.T) {
	cfg := validDefaults()
	cfg.Gemini.Key = "g-key"
	assert.NoError(t, cfg.Validate("extract"))
}

func TestValidateExtract_MissingKey(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("extract")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gemini.key is required")
}

func TestValidateExtract_BadBackendAndMode(t *testing.T) {
	cfg := validDefaults()
	cfg.Provider.Backend = "cohere"
	cfg.Provider.Mode = "random"
	err := cfg.Validate("extract")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider.backend")
	assert.Contains(t, err.Error(), "provider.mode")
}

func TestValidateStore_Postgres(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "postgres"

	err := cfg.Validate("store")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.database_url is required")

	cfg.Store.DatabaseURL = "postgres://localhost/leads"
	assert.NoError(t, cfg.Validate("store"))
}

func TestValidateStore_UnknownDriver(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "mongo"
	assert.Error(t, cfg.Validate("store"))
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Gemini.Key = "g-key"
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port")
}

func TestValidateSalesforce_Missing(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("salesforce")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "salesforce.client_id is required")
	assert.Contains(t, err.Error(), "salesforce.key_path is required")
}

func TestValidateNotion_Missing(t *testing.T) {
	cfg := validDefaults()
	cfg.Notion.Token = "ntn"
	err := cfg.Validate("notion")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "notion.lead_db is required")
	assert.NotContains(t, err.Error(), "notion.token")
}

func TestValidateUnknownCommand(t *testing.T) {
	assert.Error(t, validDefaults().Validate("nope"))
}
