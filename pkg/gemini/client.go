// Package gemini wraps the Google Gen AI SDK for text generation and model
// discovery against the Gemini API.
package gemini

import (
	"context"
	"errors"
	"strings"

	"github.com/rotisserie/eris"
	"google.golang.org/genai"
)

const generateAction = "generateContent"

// Client defines the Gemini operations used by the completion provider.
type Client interface {
	Generate(ctx context.Context, model, system, user string) (string, error)
	ListModels(ctx context.Context) ([]ModelInfo, error)
}

// ModelInfo describes a model advertised by the service.
type ModelInfo struct {
	Name             string
	SupportedActions []string
}

// SupportsGenerate reports whether the model accepts generateContent calls.
func (m ModelInfo) SupportsGenerate() bool {
	for _, a := range m.SupportedActions {
		if a == generateAction {
			return true
		}
	}
	return false
}

// ShortName returns the model name without the "models/" resource prefix.
func (m ModelInfo) ShortName() string {
	return strings.TrimPrefix(m.Name, "models/")
}

// APIError exposes the HTTP status of a failed API call.
type APIError struct {
	StatusCode int
	Err        error
}

func (e *APIError) Error() string {
	return "gemini: " + e.Err.Error()
}

func (e *APIError) Unwrap() error {
	return e.Err
}

type sdkClient struct {
	client *genai.Client
}

// NewClient creates a Gemini API client. baseURL is optional.
func NewClient(ctx context.Context, apiKey, baseURL string) (Client, error) {
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	c, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "gemini: new client")
	}
	return &sdkClient{client: c}, nil
}

func (c *sdkClient) Generate(ctx context.Context, model, system, user string) (string, error) {
	var cfg *genai.GenerateContentConfig
	if system != "" {
		cfg = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		}
	}
	resp, err := c.client.Models.GenerateContent(ctx, model, genai.Text(user), cfg)
	if err != nil {
		return "", eris.Wrap(classify(err), "gemini: generate content")
	}
	return responseText(resp), nil
}

func (c *sdkClient) ListModels(ctx context.Context) ([]ModelInfo, error) {
	page, err := c.client.Models.List(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(classify(err), "gemini: list models")
	}

	var out []ModelInfo
	for {
		out = append(out, toModelInfos(page.Items)...)
		if page.NextPageToken == "" {
			break
		}
		page, err = page.Next(ctx)
		if errors.Is(err, genai.ErrPageDone) {
			break
		}
		if err != nil {
			return nil, eris.Wrap(classify(err), "gemini: list models next page")
		}
	}
	return out, nil
}

func toModelInfos(models []*genai.Model) []ModelInfo {
	out := make([]ModelInfo, 0, len(models))
	for _, m := range models {
		if m == nil {
			continue
		}
		out = append(out, ModelInfo{Name: m.Name, SupportedActions: m.SupportedActions})
	}
	return out
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range cand.Content.Parts {
		if p != nil && !p.Thought {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}

func classify(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &APIError{StatusCode: apiErr.Code, Err: err}
	}
	return err
}
