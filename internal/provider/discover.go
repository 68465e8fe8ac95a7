package provider

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// Discovering asks the backend which models exist before each completion and
// picks the preferred one, falling back to a default identifier.
type Discovering struct {
	caller       *caller
	discoverer   Discoverer
	defaultModel string
	prefer       string
}

// NewDiscovering returns a discover-mode provider. Backends that cannot
// enumerate models always use the default identifier.
func NewDiscovering(backend Backend, cfg Config) (*Discovering, error) {
	if cfg.DefaultModel == "" {
		return nil, ErrNoCandidates
	}
	d := &Discovering{
		caller:       newCaller(backend, cfg),
		defaultModel: cfg.DefaultModel,
		prefer:       strings.ToLower(cfg.Prefer),
	}
	if disc, ok := backend.(Discoverer); ok {
		d.discoverer = disc
	}
	return d, nil
}

// Complete discovers a model, then tries it and the default identifier.
func (d *Discovering) Complete(ctx context.Context, system, user string) (string, error) {
	chosen := d.discover(ctx)
	models := []string{chosen}
	if chosen != d.defaultModel {
		models = append(models, d.defaultModel)
	}
	return d.caller.tryModels(ctx, models, system, user)
}

// discover never fails: any problem yields the default identifier.
func (d *Discovering) discover(ctx context.Context) string {
	if d.discoverer == nil {
		return d.defaultModel
	}

	dctx, cancel := context.WithTimeout(ctx, d.caller.timeout)
	defer cancel()

	models, err := d.discoverer.Models(dctx)
	if err != nil {
		zap.L().Warn("provider: model discovery failed, using default",
			zap.String("backend", d.caller.backend.Name()),
			zap.String("default", d.defaultModel),
			zap.Error(err),
		)
		return d.defaultModel
	}

	chosen := ChooseModel(models, d.prefer)
	if chosen == "" {
		return d.defaultModel
	}
	zap.L().Debug("provider: discovered model",
		zap.String("backend", d.caller.backend.Name()),
		zap.String("model", chosen),
		zap.Int("available", len(models)),
	)
	return chosen
}

// ChooseModel returns the first model containing prefer (case-insensitive),
// else the first model, else "".
func ChooseModel(models []string, prefer string) string {
	prefer = strings.ToLower(prefer)
	if prefer != "" {
		for _, m := range models {
			if strings.Contains(strings.ToLower(m), prefer) {
				return m
			}
		}
	}
	for _, m := range models {
		if m != "" {
			return m
		}
	}
	return ""
}
