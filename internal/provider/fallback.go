package provider

import (
	"context"
)

// Fallback tries a fixed, ordered list of candidate models.
type Fallback struct {
	caller     *caller
	candidates []string
}

// NewFallback returns a Fallback provider. An empty candidate list is a
// configuration error.
func NewFallback(backend Backend, cfg Config) (*Fallback, error) {
	cands := make([]string, 0, len(cfg.Candidates))
	for _, c := range cfg.Candidates {
		if c != "" {
			cands = append(cands, c)
		}
	}
	if len(cands) == 0 {
		return nil, ErrNoCandidates
	}
	return &Fallback{caller: newCaller(backend, cfg), candidates: cands}, nil
}

// Complete returns the first successful completion across the candidates.
func (f *Fallback) Complete(ctx context.Context, system, user string) (string, error) {
	return f.caller.tryModels(ctx, f.candidates, system, user)
}

// Candidates returns the configured model order.
func (f *Fallback) Candidates() []string {
	return append([]string(nil), f.candidates...)
}
