package config

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Validate checks the keys a command needs. Every problem is reported at once.
func (c *Config) Validate(command string) error {
	var errs []string
	req := func(val, key string) {
		if strings.TrimSpace(val) == "" {
			errs = append(errs, key+" is required")
		}
	}

	validateStore := func() {
		switch c.Store.Driver {
		case "memory":
		case "sqlite", "xlsx":
			req(c.Store.Path, "store.path")
		case "postgres":
			req(c.Store.DatabaseURL, "store.database_url")
		default:
			errs = append(errs, "store.driver must be one of memory, sqlite, postgres, xlsx")
		}
	}

	validateProvider := func() {
		switch c.Provider.Backend {
		case "anthropic":
			req(c.Anthropic.Key, "anthropic.key")
		case "gemini":
			req(c.Gemini.Key, "gemini.key")
		case "openai":
			req(c.OpenAI.Key, "openai.key")
			req(c.OpenAI.BaseURL, "openai.base_url")
		default:
			errs = append(errs, "provider.backend must be one of anthropic, gemini, openai")
		}
		switch c.Provider.Mode {
		case "fallback", "":
			if len(c.Provider.CandidateModels()) == 0 {
				errs = append(errs, "provider.candidates is required")
			}
		case "discover":
			req(c.Provider.DiscoveryDefault(), "provider.default_model")
		default:
			errs = append(errs, "provider.mode must be fallback or discover")
		}
		if c.Provider.TimeoutSecs <= 0 {
			errs = append(errs, "provider.timeout_secs must be positive")
		}
	}

	switch command {
	case "extract":
		validateStore()
		validateProvider()
	case "store":
		validateStore()
	case "serve":
		validateStore()
		validateProvider()
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be between 1 and 65535")
		}
	case "salesforce":
		validateStore()
		req(c.Salesforce.ClientID, "salesforce.client_id")
		req(c.Salesforce.Username, "salesforce.username")
		req(c.Salesforce.KeyPath, "salesforce.key_path")
	case "notion":
		validateStore()
		req(c.Notion.Token, "notion.token")
		req(c.Notion.LeadDB, "notion.lead_db")
	default:
		return eris.Errorf("config: unknown command %q", command)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}
