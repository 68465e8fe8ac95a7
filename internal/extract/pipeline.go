// Package extract turns unstructured contact notes into lead records through
// a completion provider and reconciles them into a record store.
package extract

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadcrm/internal/model"
	"github.com/sells-group/leadcrm/internal/provider"
	"github.com/sells-group/leadcrm/internal/resilience"
	"github.com/sells-group/leadcrm/internal/store"
)

// DefaultDelimiter is the batch marker phrase.
const DefaultDelimiter = "Record ID"

// Pipeline extracts lead records. It holds no store; callers pass one per call.
type Pipeline struct {
	provider    provider.Provider
	delim       *regexp.Regexp
	concurrency int
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithDelimiter sets the literal batch marker phrase. Blank keeps the default.
func WithDelimiter(phrase string) Option {
	return func(p *Pipeline) {
		if phrase != "" {
			p.delim = DelimiterPattern(phrase)
		}
	}
}

// WithBatchConcurrency bounds concurrent sub-record extractions. Values below
// 1 mean sequential.
func WithBatchConcurrency(n int) Option {
	return func(p *Pipeline) {
		if n < 1 {
			n = 1
		}
		p.concurrency = n
	}
}

// New creates a Pipeline around prov.
func New(prov provider.Provider, opts ...Option) *Pipeline {
	p := &Pipeline{
		provider:    prov,
		delim:       DelimiterPattern(DefaultDelimiter),
		concurrency: 1,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Extract asks the provider for a record describing rawText. A non-empty
// targetID becomes the record's ID.
func (p *Pipeline) Extract(ctx context.Context, rawText, targetID string) (model.LeadRecord, error) {
	return p.extract(ctx, modeSingle, rawText, targetID)
}

func (p *Pipeline) extract(ctx context.Context, mode, rawText, targetID string) (rec model.LeadRecord, err error) {
	start := time.Now()
	defer func() { observe(mode, start, err) }()

	out, err := p.provider.Complete(ctx, SystemPrompt, rawText)
	if err != nil {
		if isTimeout(err) {
			return model.LeadRecord{}, &ExtractionError{Kind: KindTimeout, Err: err}
		}
		return model.LeadRecord{}, err
	}

	rec, err = ParseLead(StripFences(out))
	if err != nil {
		return model.LeadRecord{}, err
	}
	if targetID != "" {
		rec.ID = targetID
	}
	return rec, nil
}

// Process extracts a record and upserts it into st.
func (p *Pipeline) Process(ctx context.Context, st store.RecordStore, rawText, targetID string) (model.LeadRecord, error) {
	rec, err := p.Extract(ctx, rawText, targetID)
	if err != nil {
		return model.LeadRecord{}, err
	}
	if err := st.Upsert(ctx, rec); err != nil {
		return model.LeadRecord{}, eris.Wrap(err, "extract: upsert record")
	}
	zap.L().Debug("extract: record stored",
		zap.String("id", rec.ID),
		zap.String("name", rec.Name),
		zap.String("status", string(rec.Status)),
	)
	return rec, nil
}

func isTimeout(err error) bool {
	var perr *provider.ProviderError
	if errors.As(err, &perr) && perr.TimedOut() {
		return true
	}
	return resilience.IsTimeout(err)
}
