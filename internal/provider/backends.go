package provider

import (
	"context"
	"errors"

	"github.com/sells-group/leadcrm/internal/resilience"
	"github.com/sells-group/leadcrm/pkg/anthropic"
	"github.com/sells-group/leadcrm/pkg/chatcompletion"
	"github.com/sells-group/leadcrm/pkg/gemini"
)

// Backend names accepted in configuration.
const (
	BackendAnthropic = "anthropic"
	BackendGemini    = "gemini"
	BackendOpenAI    = "openai"
)

const defaultMaxTokens = 1024

// AnthropicBackend generates through the Messages API.
type AnthropicBackend struct {
	Client    anthropic.Client
	MaxTokens int64
}

func (b *AnthropicBackend) Name() string { return BackendAnthropic }

func (b *AnthropicBackend) Generate(ctx context.Context, model, system, user string) (string, error) {
	maxTokens := b.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	resp, err := b.Client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     model,
		MaxTokens: maxTokens,
		System:    system,
		Messages:  []anthropic.Message{{Role: "user", Content: user}},
	})
	if err != nil {
		var apiErr *anthropic.APIError
		if errors.As(err, &apiErr) && resilience.IsTransientHTTPStatus(apiErr.StatusCode) {
			return "", resilience.NewTransientError(err, apiErr.StatusCode)
		}
		return "", err
	}
	resp.Usage.LogCost(model)
	return resp.Text(), nil
}

func (b *AnthropicBackend) Models(ctx context.Context) ([]string, error) {
	return b.Client.ListModels(ctx)
}

// GeminiBackend generates through the Gemini API.
type GeminiBackend struct {
	Client gemini.Client
}

func (b *GeminiBackend) Name() string { return BackendGemini }

func (b *GeminiBackend) Generate(ctx context.Context, model, system, user string) (string, error) {
	text, err := b.Client.Generate(ctx, model, system, user)
	if err != nil {
		var apiErr *gemini.APIError
		if errors.As(err, &apiErr) && resilience.IsTransientHTTPStatus(apiErr.StatusCode) {
			return "", resilience.NewTransientError(err, apiErr.StatusCode)
		}
		return "", err
	}
	return text, nil
}

// Models returns generation-capable models without the resource prefix.
func (b *GeminiBackend) Models(ctx context.Context) ([]string, error) {
	infos, err := b.Client.ListModels(ctx)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, m := range infos {
		if m.SupportsGenerate() {
			out = append(out, m.ShortName())
		}
	}
	return out, nil
}

// ChatBackend generates through an OpenAI-compatible chat completions API.
type ChatBackend struct {
	Client chatcompletion.Client
}

func (b *ChatBackend) Name() string { return BackendOpenAI }

func (b *ChatBackend) Generate(ctx context.Context, model, system, user string) (string, error) {
	msgs := make([]chatcompletion.Message, 0, 2)
	if system != "" {
		msgs = append(msgs, chatcompletion.Message{Role: "system", Content: system})
	}
	msgs = append(msgs, chatcompletion.Message{Role: "user", Content: user})

	resp, err := b.Client.ChatCompletion(ctx, chatcompletion.ChatCompletionRequest{
		Model:    model,
		Messages: msgs,
	})
	if err != nil {
		var se *chatcompletion.StatusError
		if errors.As(err, &se) && resilience.IsTransientHTTPStatus(se.StatusCode) {
			return "", resilience.NewTransientError(err, se.StatusCode)
		}
		return "", err
	}
	return resp.Text(), nil
}

func (b *ChatBackend) Models(ctx context.Context) ([]string, error) {
	return b.Client.ListModels(ctx)
}
