package main

import (
	"context"
	"time"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadcrm/internal/config"
	"github.com/sells-group/leadcrm/internal/extract"
	"github.com/sells-group/leadcrm/internal/provider"
	"github.com/sells-group/leadcrm/internal/resilience"
	"github.com/sells-group/leadcrm/internal/store"
	"github.com/sells-group/leadcrm/pkg/anthropic"
	"github.com/sells-group/leadcrm/pkg/chatcompletion"
	"github.com/sells-group/leadcrm/pkg/gemini"
)

// pipelineEnv holds the store and extraction pipeline used by the
// extract/batch/serve commands.
type pipelineEnv struct {
	Store    store.RecordStore
	Pipeline *extract.Pipeline
}

// Close releases resources held by the environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// initPipeline validates config for command, opens the store and builds the
// pipeline. Callers should defer env.Close().
func initPipeline(ctx context.Context, command string) (*pipelineEnv, error) {
	if err := cfg.Validate(command); err != nil {
		return nil, err
	}

	prov, err := initProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	p := extract.New(prov,
		extract.WithDelimiter(cfg.Extract.Delimiter),
		extract.WithBatchConcurrency(cfg.Extract.BatchConcurrency),
	)

	return &pipelineEnv{Store: st, Pipeline: p}, nil
}

// initProvider builds the configured backend and wraps it in the selection
// strategy.
func initProvider(ctx context.Context, c *config.Config) (provider.Provider, error) {
	backend, err := initBackend(ctx, c)
	if err != nil {
		return nil, err
	}

	pc := provider.Config{
		Mode:         provider.Mode(c.Provider.Mode),
		Candidates:   c.Provider.CandidateModels(),
		DefaultModel: c.Provider.DiscoveryDefault(),
		Prefer:       c.Provider.Prefer,
		Timeout:      time.Duration(c.Provider.TimeoutSecs) * time.Second,
		Retry:        resilience.FromAttempts(c.Provider.RetryAttempts, c.Provider.RetryBackoffMs),
		RateLimit:    c.Provider.RateLimit,
	}
	prov, err := provider.New(backend, pc)
	if err != nil {
		return nil, eris.Wrap(err, "init provider")
	}

	zap.L().Debug("provider ready",
		zap.String("backend", backend.Name()),
		zap.String("mode", string(pc.Mode)),
		zap.Strings("candidates", pc.Candidates),
	)
	return prov, nil
}

func initBackend(ctx context.Context, c *config.Config) (provider.Backend, error) {
	switch c.Provider.Backend {
	case provider.BackendAnthropic:
		var opts []option.RequestOption
		if c.Anthropic.BaseURL != "" {
			opts = append(opts, option.WithBaseURL(c.Anthropic.BaseURL))
		}
		return &provider.AnthropicBackend{
			Client:    anthropic.NewClient(c.Anthropic.Key, opts...),
			MaxTokens: c.Anthropic.MaxTokens,
		}, nil
	case provider.BackendGemini:
		client, err := gemini.NewClient(ctx, c.Gemini.Key, c.Gemini.BaseURL)
		if err != nil {
			return nil, eris.Wrap(err, "init gemini client")
		}
		return &provider.GeminiBackend{Client: client}, nil
	case provider.BackendOpenAI:
		return &provider.ChatBackend{
			Client: chatcompletion.NewClient(c.OpenAI.Key, chatcompletion.WithBaseURL(c.OpenAI.BaseURL)),
		}, nil
	default:
		return nil, eris.Errorf("unsupported provider backend: %s", c.Provider.Backend)
	}
}
