package extract

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/leadcrm/internal/model"
	"github.com/sells-group/leadcrm/internal/store"
)

// Segment is the text belonging to one batch marker.
type Segment struct {
	ID   string
	Text string
}

// BatchFailure records why one sub-record was not stored.
type BatchFailure struct {
	ID  string
	Err error
}

// BatchResult summarizes a batch run.
type BatchResult struct {
	RunID     uuid.UUID
	Succeeded []string
	Failed    []BatchFailure
	Total     int
}

// DelimiterPattern matches phrase case-insensitively, optional ':', '-' or
// whitespace, then an integer id captured in group 1.
func DelimiterPattern(phrase string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + regexp.QuoteMeta(phrase) + `[\s:\-]*(\d+)`)
}

// SplitBatch splits text at each marker. Text before the first marker is
// ignored.
func (p *Pipeline) SplitBatch(text string) ([]Segment, error) {
	matches := p.delim.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil, &ExtractionError{Kind: KindNoDelimitersFound}
	}

	segs := make([]Segment, len(matches))
	for i, m := range matches {
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		segs[i] = Segment{
			ID:   text[m[2]:m[3]],
			Text: text[m[1]:end],
		}
	}
	return segs, nil
}

// ProcessBatch extracts every segment independently and upserts the
// successes in marker order. A failed segment never aborts the batch.
func (p *Pipeline) ProcessBatch(ctx context.Context, st store.RecordStore, text string) (*BatchResult, error) {
	segs, err := p.SplitBatch(text)
	if err != nil {
		return nil, err
	}

	result := &BatchResult{RunID: uuid.New(), Total: len(segs)}
	log := zap.L().With(zap.String("run_id", result.RunID.String()))

	type segOutcome struct {
		rec model.LeadRecord
		err error
	}
	outcomes := make([]segOutcome, len(segs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, seg := range segs {
		g.Go(func() error {
			if strings.TrimSpace(seg.Text) == "" {
				outcomes[i] = segOutcome{err: ErrEmptySegment}
				observe(modeBatch, time.Now(), ErrEmptySegment)
				return nil
			}
			rec, err := p.extract(gctx, modeBatch, seg.Text, seg.ID)
			outcomes[i] = segOutcome{rec: rec, err: err}
			return nil
		})
	}
	_ = g.Wait()

	for i, seg := range segs {
		o := outcomes[i]
		if o.err == nil {
			o.err = st.Upsert(ctx, o.rec)
		}
		if o.err != nil {
			log.Warn("extract: batch record failed", zap.String("id", seg.ID), zap.Error(o.err))
			result.Failed = append(result.Failed, BatchFailure{ID: seg.ID, Err: o.err})
			continue
		}
		result.Succeeded = append(result.Succeeded, seg.ID)
	}

	log.Info("extract: batch complete",
		zap.Int("total", result.Total),
		zap.Int("succeeded", len(result.Succeeded)),
		zap.Int("failed", len(result.Failed)),
	)
	return result, nil
}
