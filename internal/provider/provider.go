// Package provider turns (system instructions, user text) into a model
// completion, trying an ordered list of candidate models on one backend.
package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// Mode selects how candidate models are chosen.
type Mode string

const (
	ModeFallback Mode = "fallback"
	ModeDiscover Mode = "discover"
)

// ErrNoCandidates is returned when no model identifier is configured.
var ErrNoCandidates = eris.New("provider: no candidate models configured")

// Provider produces a completion for the given instructions and text.
type Provider interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Backend performs one generation call against a hosted model API.
type Backend interface {
	Name() string
	Generate(ctx context.Context, model, system, user string) (string, error)
}

// Discoverer is implemented by backends that can enumerate the models
// available for text generation.
type Discoverer interface {
	Models(ctx context.Context) ([]string, error)
}

// Attempt records one failed candidate.
type Attempt struct {
	Model    string
	Err      error
	TimedOut bool
}

// ProviderError reports that every candidate failed. Unwrap returns the
// cause of the last attempt.
type ProviderError struct {
	Backend  string
	Attempts []Attempt
}

func (e *ProviderError) Error() string {
	if len(e.Attempts) == 0 {
		return fmt.Sprintf("provider: %s: no attempts made", e.Backend)
	}
	models := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		models[i] = a.Model
	}
	last := e.Attempts[len(e.Attempts)-1]
	return fmt.Sprintf("provider: %s: all candidates failed [%s]: last (%s): %v",
		e.Backend, strings.Join(models, ", "), last.Model, last.Err)
}

func (e *ProviderError) Unwrap() error {
	if len(e.Attempts) == 0 {
		return nil
	}
	return e.Attempts[len(e.Attempts)-1].Err
}

// TimedOut reports whether the last attempt ran out of time.
func (e *ProviderError) TimedOut() bool {
	return len(e.Attempts) > 0 && e.Attempts[len(e.Attempts)-1].TimedOut
}
