package salesforce

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadcrm/internal/model"
)

// DefaultExternalIDField is the custom Lead field that carries the CRM record id.
const DefaultExternalIDField = "LeadCRM_Id__c"

// PushResult tallies one PushLeads call.
type PushResult struct {
	Inserted int
	Updated  int
	Failed   []string
}

// Rating buckets a 0-100 lead score into the standard Lead.Rating picklist.
func Rating(score float64) string {
	switch {
	case score >= 70:
		return "Hot"
	case score >= 40:
		return "Warm"
	default:
		return "Cold"
	}
}

// LeadFields maps a record onto Lead sObject fields. LastName and Company are
// required by Salesforce, so blanks become "Unknown".
func LeadFields(rec model.LeadRecord, externalIDField string) map[string]any {
	fields := map[string]any{
		"LastName":      orUnknown(rec.Name),
		"Company":       orUnknown(rec.Company),
		"Status":        string(rec.Status),
		"Description":   rec.Summary,
		"Rating":        Rating(rec.Score),
		"AnnualRevenue": rec.Value,
	}
	if rec.HasID() && externalIDField != "" {
		fields[externalIDField] = rec.ID
	}
	return fields
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Unknown"
	}
	return s
}

// PushLeads writes records to Salesforce as Leads. Records whose id already
// exists in externalIDField are updated in place; the rest are inserted.
// Records without an id are always inserted.
func PushLeads(ctx context.Context, c Client, recs []model.LeadRecord, externalIDField string) (*PushResult, error) {
	res := &PushResult{}
	if len(recs) == 0 {
		return res, nil
	}
	if externalIDField == "" {
		externalIDField = DefaultExternalIDField
	}

	existing, err := c.FindLeads(ctx, externalIDField, recordIDs(recs))
	if err != nil {
		return res, eris.Wrap(err, "sf: find existing leads")
	}

	var inserts []map[string]any
	var updates []LeadUpdate
	for _, rec := range recs {
		fields := LeadFields(rec, externalIDField)
		if sfID, ok := existing[rec.ID]; ok && rec.HasID() {
			delete(fields, externalIDField)
			updates = append(updates, LeadUpdate{ID: sfID, Fields: fields})
			continue
		}
		inserts = append(inserts, fields)
	}

	for start := 0; start < len(inserts); start += maxBatchSize {
		end := min(start+maxBatchSize, len(inserts))
		results, err := c.InsertLeads(ctx, inserts[start:end])
		if err != nil {
			return res, eris.Wrap(err, fmt.Sprintf("sf: push leads insert batch %d-%d", start, end))
		}
		tally(res, results, false)
	}

	for start := 0; start < len(updates); start += maxBatchSize {
		end := min(start+maxBatchSize, len(updates))
		results, err := c.UpdateLeads(ctx, updates[start:end])
		if err != nil {
			return res, eris.Wrap(err, fmt.Sprintf("sf: push leads update batch %d-%d", start, end))
		}
		tally(res, results, true)
	}

	zap.L().Info("sf: leads pushed",
		zap.Int("inserted", res.Inserted),
		zap.Int("updated", res.Updated),
		zap.Int("failed", len(res.Failed)),
	)
	return res, nil
}

func tally(res *PushResult, results []SaveResult, update bool) {
	for _, r := range results {
		switch {
		case !r.Success:
			res.Failed = append(res.Failed, strings.Join(r.Errors, "; "))
		case update:
			res.Updated++
		default:
			res.Inserted++
		}
	}
}

// recordIDs returns the distinct non-empty ids of recs in input order.
func recordIDs(recs []model.LeadRecord) []string {
	var ids []string
	seen := make(map[string]bool)
	for _, r := range recs {
		if r.HasID() && !seen[r.ID] {
			seen[r.ID] = true
			ids = append(ids, r.ID)
		}
	}
	return ids
}
