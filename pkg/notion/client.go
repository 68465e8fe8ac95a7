// Package notion mirrors lead records into a Notion database.
package notion

import (
	"context"
	"net/http"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/leadcrm/internal/model"
)

// queryPageSize is the Notion maximum for one database query.
const queryPageSize = 100

// LeadQuery selects one batch of lead pages.
type LeadQuery struct {
	Cursor notionapi.Cursor
	// WithLeadID restricts the batch to pages whose Lead ID is set.
	WithLeadID bool
}

// Client is the lead database surface of the Notion API.
type Client interface {
	QueryLeadPages(ctx context.Context, dbID string, q LeadQuery) (*notionapi.DatabaseQueryResponse, error)
	CreateLeadPage(ctx context.Context, dbID string, rec model.LeadRecord) (notionapi.ObjectID, error)
	UpdateLeadPage(ctx context.Context, pageID string, rec model.LeadRecord) error
}

// ClientOption configures the Notion client.
type ClientOption func(*notionClient)

// WithRateLimit overrides the default 3 req/s throttle. rps <= 0 disables it.
func WithRateLimit(rps float64) ClientOption {
	return func(c *notionClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		} else {
			c.limiter = nil
		}
	}
}

// WithHTTPClient sends API calls through hc.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *notionClient) {
		c.apiOpts = append(c.apiOpts, notionapi.WithHTTPClient(hc))
	}
}

type notionClient struct {
	inner   *notionapi.Client
	apiOpts []notionapi.ClientOption
	limiter *rate.Limiter
}

// NewClient creates a lead database client for the integration token.
func NewClient(token string, opts ...ClientOption) Client {
	c := &notionClient{limiter: rate.NewLimiter(3, 1)}
	for _, opt := range opts {
		opt(c)
	}
	c.inner = notionapi.NewClient(notionapi.Token(token), c.apiOpts...)
	return c
}

func (c *notionClient) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "notion: rate limit")
	}
	return nil
}

func (c *notionClient) QueryLeadPages(ctx context.Context, dbID string, q LeadQuery) (*notionapi.DatabaseQueryResponse, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	req := &notionapi.DatabaseQueryRequest{StartCursor: q.Cursor, PageSize: queryPageSize}
	if q.WithLeadID {
		req.Filter = notionapi.PropertyFilter{
			Property: PropLeadID,
			RichText: &notionapi.TextFilterCondition{IsNotEmpty: true},
		}
	}
	resp, err := c.inner.Database.Query(ctx, notionapi.DatabaseID(dbID), req)
	if err != nil {
		return nil, eris.Wrapf(err, "notion: query lead pages in %s", dbID)
	}
	return resp, nil
}

func (c *notionClient) CreateLeadPage(ctx context.Context, dbID string, rec model.LeadRecord) (notionapi.ObjectID, error) {
	if err := c.wait(ctx); err != nil {
		return "", err
	}
	page, err := c.inner.Page.Create(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(dbID),
		},
		Properties: LeadProperties(rec),
	})
	if err != nil {
		return "", eris.Wrapf(err, "notion: create lead page %q", rec.Name)
	}
	return page.ID, nil
}

func (c *notionClient) UpdateLeadPage(ctx context.Context, pageID string, rec model.LeadRecord) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	_, err := c.inner.Page.Update(ctx, notionapi.PageID(pageID), &notionapi.PageUpdateRequest{
		Properties: LeadProperties(rec),
	})
	if err != nil {
		return eris.Wrapf(err, "notion: update lead page %s", pageID)
	}
	return nil
}
