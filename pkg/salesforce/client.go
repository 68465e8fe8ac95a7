// Package salesforce pushes lead records to Salesforce over the REST API.
package salesforce

import (
	"context"
	"fmt"
	"strings"

	"github.com/k-capehart/go-salesforce/v3"
	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const leadObject = "Lead"

// maxBatchSize caps both a Collections request and the IN list of one lookup.
const maxBatchSize = 200

// Client is the Lead sObject surface used by PushLeads.
type Client interface {
	// FindLeads maps external id -> Lead Id for the ids already stored in field.
	FindLeads(ctx context.Context, field string, ids []string) (map[string]string, error)
	InsertLeads(ctx context.Context, leads []map[string]any) ([]SaveResult, error)
	UpdateLeads(ctx context.Context, leads []LeadUpdate) ([]SaveResult, error)
}

// LeadUpdate carries new field values for an existing Lead.
type LeadUpdate struct {
	ID     string
	Fields map[string]any
}

// SaveResult is the per-Lead outcome of an insert or update.
type SaveResult struct {
	ID      string
	Success bool
	Errors  []string
}

// ClientOption configures the Salesforce client.
type ClientOption func(*sfClient)

// WithRateLimit throttles Lead API calls to rps requests per second.
func WithRateLimit(rps float64) ClientOption {
	return func(c *sfClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		}
	}
}

// go-salesforce does not take a context, so ctx only bounds the limiter wait.
type sfClient struct {
	sf      *salesforce.Salesforce
	limiter *rate.Limiter
}

// NewClient wraps an authenticated go-salesforce instance.
func NewClient(sf *salesforce.Salesforce, opts ...ClientOption) Client {
	c := &sfClient{sf: sf}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *sfClient) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "sf: rate limit")
	}
	return nil
}

func (c *sfClient) FindLeads(ctx context.Context, field string, ids []string) (map[string]string, error) {
	out := make(map[string]string)
	for start := 0; start < len(ids); start += maxBatchSize {
		end := min(start+maxBatchSize, len(ids))
		if err := c.wait(ctx); err != nil {
			return nil, err
		}

		var rows []map[string]any
		if err := c.sf.Query(leadLookupQuery(field, ids[start:end]), &rows); err != nil {
			return nil, eris.Wrapf(err, "sf: find leads by %s", field)
		}
		for _, row := range rows {
			sfID, _ := row["Id"].(string)
			ext, _ := row[field].(string)
			if sfID != "" && ext != "" {
				out[ext] = sfID
			}
		}
	}
	return out, nil
}

func (c *sfClient) InsertLeads(ctx context.Context, leads []map[string]any) ([]SaveResult, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	res, err := c.sf.InsertCollection(leadObject, leads, maxBatchSize)
	if err != nil {
		return nil, eris.Wrapf(err, "sf: insert %d leads", len(leads))
	}
	return saveResults(res), nil
}

func (c *sfClient) UpdateLeads(ctx context.Context, leads []LeadUpdate) ([]SaveResult, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	rows := make([]map[string]any, len(leads))
	for i, l := range leads {
		row := make(map[string]any, len(l.Fields)+1)
		for k, v := range l.Fields {
			row[k] = v
		}
		row["Id"] = l.ID
		rows[i] = row
	}
	res, err := c.sf.UpdateCollection(leadObject, rows, maxBatchSize)
	if err != nil {
		return nil, eris.Wrapf(err, "sf: update %d leads", len(leads))
	}
	return saveResults(res), nil
}

func saveResults(res salesforce.SalesforceResults) []SaveResult {
	out := make([]SaveResult, len(res.Results))
	for i, r := range res.Results {
		var msgs []string
		for _, e := range r.Errors {
			msgs = append(msgs, e.Message)
		}
		out[i] = SaveResult{ID: r.Id, Success: r.Success, Errors: msgs}
	}
	return out
}

// leadLookupQuery selects Leads whose external id field is one of ids.
func leadLookupQuery(field string, ids []string) string {
	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = "'" + escapeSoql(id) + "'"
	}
	return fmt.Sprintf("SELECT Id, %s FROM %s WHERE %s IN (%s)",
		field, leadObject, field, strings.Join(quoted, ", "))
}

var soqlEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// escapeSoql escapes a value for use inside a quoted SOQL string literal.
func escapeSoql(s string) string {
	return soqlEscaper.Replace(s)
}
