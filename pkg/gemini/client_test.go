package gemini

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/genai"
)

func TestModelInfo_SupportsGenerate(t *testing.T) {
	assert.True(t, ModelInfo{SupportedActions: []string{"countTokens", "generateContent"}}.SupportsGenerate())
	assert.False(t, ModelInfo{SupportedActions: []string{"embedContent"}}.SupportsGenerate())
	assert.False(t, ModelInfo{}.SupportsGenerate())
}

func TestModelInfo_ShortName(t *testing.T) {
	assert.Equal(t, "gemini-1.5-flash", ModelInfo{Name: "models/gemini-1.5-flash"}.ShortName())
	assert.Equal(t, "gemini-pro", ModelInfo{Name: "gemini-pro"}.ShortName())
}

func TestToModelInfos_SkipsNil(t *testing.T) {
	got := toModelInfos([]*genai.Model{
		{Name: "models/a", SupportedActions: []string{"generateContent"}},
		nil,
		{Name: "models/b"},
	})
	assert.Len(t, got, 2)
	assert.Equal(t, "models/a", got[0].Name)
	assert.True(t, got[0].SupportsGenerate())
}

func TestResponseText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: "thinking...", Thought: true},
				{Text: `{"name":`},
				{Text: `"Ana"}`},
			}},
		}},
	}
	assert.Equal(t, `{"name":"Ana"}`, responseText(resp))
}

func TestResponseText_Empty(t *testing.T) {
	assert.Equal(t, "", responseText(nil))
	assert.Equal(t, "", responseText(&genai.GenerateContentResponse{}))
	assert.Equal(t, "", responseText(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}))
}

func TestClassify(t *testing.T) {
	err := classify(genai.APIError{Code: 429, Message: "quota"})
	var apiErr *APIError
	assert.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 429, apiErr.StatusCode)

	plain := errors.New("boom")
	assert.Equal(t, plain, classify(plain))
}
