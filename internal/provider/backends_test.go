package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadcrm/internal/resilience"
	"github.com/sells-group/leadcrm/pkg/anthropic"
	"github.com/sells-group/leadcrm/pkg/chatcompletion"
	"github.com/sells-group/leadcrm/pkg/gemini"
)

type fakeAnthropic struct {
	gotReq anthropic.MessageRequest
	resp   *anthropic.MessageResponse
	err    error
	models []string
}

func (f *fakeAnthropic) CreateMessage(_ context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	f.gotReq = req
	return f.resp, f.err
}

func (f *fakeAnthropic) ListModels(context.Context) ([]string, error) {
	return f.models, nil
}

type fakeGemini struct {
	text   string
	err    error
	models []gemini.ModelInfo
}

func (f *fakeGemini) Generate(context.Context, string, string, string) (string, error) {
	return f.text, f.err
}

func (f *fakeGemini) ListModels(context.Context) ([]gemini.ModelInfo, error) {
	return f.models, nil
}

type fakeChat struct {
	gotReq chatcompletion.ChatCompletionRequest
	resp   *chatcompletion.ChatCompletionResponse
	err    error
}

func (f *fakeChat) ChatCompletion(_ context.Context, req chatcompletion.ChatCompletionRequest) (*chatcompletion.ChatCompletionResponse, error) {
	f.gotReq = req
	return f.resp, f.err
}

func (f *fakeChat) ListModels(context.Context) ([]string, error) {
	return []string{"gpt-4o-mini"}, nil
}

func TestAnthropicBackend_Generate(t *testing.T) {
	fc := &fakeAnthropic{resp: &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: "{}"}},
	}}
	b := &AnthropicBackend{Client: fc}

	out, err := b.Generate(context.Background(), "claude-haiku-4-5-20251001", "sys", "user")
	require.NoError(t, err)
	assert.Equal(t, "{}", out)
	assert.Equal(t, "sys", fc.gotReq.System)
	assert.Equal(t, int64(defaultMaxTokens), fc.gotReq.MaxTokens)
	require.Len(t, fc.gotReq.Messages, 1)
	assert.Equal(t, "user", fc.gotReq.Messages[0].Content)
}

func TestAnthropicBackend_TransientStatus(t *testing.T) {
	fc := &fakeAnthropic{err: &anthropic.APIError{StatusCode: 529, Err: errors.New("overloaded")}}
	_, err := (&AnthropicBackend{Client: fc}).Generate(context.Background(), "m", "s", "u")
	assert.True(t, resilience.IsTransient(err))

	fc.err = &anthropic.APIError{StatusCode: 404, Err: errors.New("not found")}
	_, err = (&AnthropicBackend{Client: fc}).Generate(context.Background(), "m", "s", "u")
	assert.False(t, resilience.IsTransient(err))
}

func TestGeminiBackend_ModelsFiltersGenerate(t *testing.T) {
	fg := &fakeGemini{models: []gemini.ModelInfo{
		{Name: "models/embedding-001", SupportedActions: []string{"embedContent"}},
		{Name: "models/gemini-1.5-flash", SupportedActions: []string{"generateContent", "countTokens"}},
		{Name: "models/gemini-pro", SupportedActions: []string{"generateContent"}},
	}}
	models, err := (&GeminiBackend{Client: fg}).Models(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"gemini-1.5-flash", "gemini-pro"}, models)
}

func TestGeminiBackend_TransientStatus(t *testing.T) {
	fg := &fakeGemini{err: &gemini.APIError{StatusCode: 503, Err: errors.New("unavailable")}}
	_, err := (&GeminiBackend{Client: fg}).Generate(context.Background(), "m", "s", "u")
	assert.True(t, resilience.IsTransient(err))
}

func TestChatBackend_Generate(t *testing.T) {
	fc := &fakeChat{resp: &chatcompletion.ChatCompletionResponse{
		Choices: []chatcompletion.Choice{{Message: chatcompletion.Message{Role: "assistant", Content: "{}"}}},
	}}
	out, err := (&ChatBackend{Client: fc}).Generate(context.Background(), "gpt-4o-mini", "sys", "user")
	require.NoError(t, err)
	assert.Equal(t, "{}", out)
	require.Len(t, fc.gotReq.Messages, 2)
	assert.Equal(t, "system", fc.gotReq.Messages[0].Role)
	assert.Equal(t, "user", fc.gotReq.Messages[1].Role)
}

func TestChatBackend_TransientStatus(t *testing.T) {
	fc := &fakeChat{err: &chatcompletion.StatusError{StatusCode: 429}}
	_, err := (&ChatBackend{Client: fc}).Generate(context.Background(), "m", "s", "u")
	assert.True(t, resilience.IsTransient(err))
}
