// Package store persists lead records. Every backend reconciles writes the
// same way: a record whose ID matches an existing one replaces it and moves to
// the end; anything else is appended.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadcrm/internal/model"
)

// ErrNotFound is returned by Find when no record carries the id.
var ErrNotFound = eris.New("store: record not found")

// RecordStore defines the persistence interface for lead records.
type RecordStore interface {
	// Upsert replaces the record with the same non-empty ID, or appends.
	Upsert(ctx context.Context, rec model.LeadRecord) error
	// All returns every record in insertion order.
	All(ctx context.Context) ([]model.LeadRecord, error)
	// Aggregate summarizes the current contents.
	Aggregate(ctx context.Context) (model.Summary, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Replacer is implemented by stores that can swap their whole contents.
type Replacer interface {
	ReplaceAll(ctx context.Context, recs []model.LeadRecord) error
}

// Find returns the first record with id.
func Find(ctx context.Context, s RecordStore, id string) (model.LeadRecord, error) {
	if id == "" {
		return model.LeadRecord{}, ErrNotFound
	}
	recs, err := s.All(ctx)
	if err != nil {
		return model.LeadRecord{}, eris.Wrap(err, "store: find")
	}
	for _, r := range recs {
		if r.ID == id {
			return r, nil
		}
	}
	return model.LeadRecord{}, ErrNotFound
}

// upsertSlice applies the reconciliation rule to an in-memory slice.
func upsertSlice(recs []model.LeadRecord, rec model.LeadRecord) []model.LeadRecord {
	if rec.HasID() {
		kept := recs[:0]
		for _, r := range recs {
			if r.ID != rec.ID {
				kept = append(kept, r)
			}
		}
		recs = kept
	}
	return append(recs, rec)
}
