package notion

import (
	"context"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
)

// LeadPages reads every page of the lead database, following cursors until
// HasMore is false. withLeadID skips pages that have no Lead ID.
func LeadPages(ctx context.Context, c Client, dbID string, withLeadID bool) ([]notionapi.Page, error) {
	var all []notionapi.Page
	q := LeadQuery{WithLeadID: withLeadID}
	for {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "notion: lead pages")
		}
		resp, err := c.QueryLeadPages(ctx, dbID, q)
		if err != nil {
			return nil, eris.Wrap(err, "notion: lead pages")
		}
		all = append(all, resp.Results...)

		if !resp.HasMore || resp.NextCursor == "" {
			return all, nil
		}
		q.Cursor = resp.NextCursor
	}
}
