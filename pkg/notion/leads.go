package notion

import (
	"context"
	"fmt"
	"strings"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadcrm/internal/model"
)

// Property names of the lead database.
const (
	PropName    = "Name"
	PropCompany = "Company"
	PropStatus  = "Status"
	PropSummary = "Summary"
	PropScore   = "Score"
	PropValue   = "Value"
	PropLeadID  = "Lead ID"
)

// SyncResult tallies one PushLeads call.
type SyncResult struct {
	Created int
	Updated int
}

// LeadProperties builds page properties for a record. Status is a select so
// unknown stages get created as new options instead of failing the write.
func LeadProperties(rec model.LeadRecord) notionapi.Properties {
	props := notionapi.Properties{
		PropName: notionapi.TitleProperty{
			Type:  notionapi.PropertyTypeTitle,
			Title: richText(rec.Name),
		},
		PropCompany: notionapi.RichTextProperty{
			Type:     notionapi.PropertyTypeRichText,
			RichText: richText(rec.Company),
		},
		PropSummary: notionapi.RichTextProperty{
			Type:     notionapi.PropertyTypeRichText,
			RichText: richText(rec.Summary),
		},
		PropScore: notionapi.NumberProperty{
			Type:   notionapi.PropertyTypeNumber,
			Number: rec.Score,
		},
		PropValue: notionapi.NumberProperty{
			Type:   notionapi.PropertyTypeNumber,
			Number: rec.Value,
		},
		PropLeadID: notionapi.RichTextProperty{
			Type:     notionapi.PropertyTypeRichText,
			RichText: richText(rec.ID),
		},
	}
	if rec.Status != "" {
		props[PropStatus] = notionapi.SelectProperty{
			Type:   notionapi.PropertyTypeSelect,
			Select: notionapi.Option{Name: string(rec.Status)},
		}
	}
	return props
}

func richText(s string) []notionapi.RichText {
	if s == "" {
		return []notionapi.RichText{}
	}
	return []notionapi.RichText{
		{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: s}},
	}
}

// PushLeads mirrors records into the lead database. Pages are matched on the
// Lead ID property; records without an id always create a new page.
func PushLeads(ctx context.Context, c Client, dbID string, recs []model.LeadRecord) (*SyncResult, error) {
	res := &SyncResult{}
	if len(recs) == 0 {
		return res, nil
	}

	existing, err := indexPages(ctx, c, dbID)
	if err != nil {
		return res, err
	}

	for _, rec := range recs {
		if pageID, ok := existing[rec.ID]; ok && rec.HasID() {
			if err := c.UpdateLeadPage(ctx, pageID, rec); err != nil {
				return res, eris.Wrap(err, fmt.Sprintf("notion: update lead %s", rec.ID))
			}
			res.Updated++
			continue
		}

		pageID, err := c.CreateLeadPage(ctx, dbID, rec)
		if err != nil {
			return res, eris.Wrap(err, fmt.Sprintf("notion: create lead %q", rec.Name))
		}
		if rec.HasID() && pageID != "" {
			existing[rec.ID] = string(pageID)
		}
		res.Created++
	}

	zap.L().Info("notion: leads pushed",
		zap.String("database", dbID),
		zap.Int("created", res.Created),
		zap.Int("updated", res.Updated),
	)
	return res, nil
}

// indexPages maps Lead ID -> page id for every page that has one.
func indexPages(ctx context.Context, c Client, dbID string) (map[string]string, error) {
	pages, err := LeadPages(ctx, c, dbID, true)
	if err != nil {
		return nil, eris.Wrap(err, "notion: index lead pages")
	}
	out := make(map[string]string, len(pages))
	for _, p := range pages {
		if id := textOf(p.Properties[PropLeadID]); id != "" {
			out[id] = string(p.ID)
		}
	}
	return out, nil
}

// PullLeads reads every page of the lead database back into records.
func PullLeads(ctx context.Context, c Client, dbID string) ([]model.LeadRecord, error) {
	pages, err := LeadPages(ctx, c, dbID, false)
	if err != nil {
		return nil, eris.Wrap(err, "notion: pull leads")
	}
	recs := make([]model.LeadRecord, 0, len(pages))
	for _, p := range pages {
		recs = append(recs, LeadFromPage(p))
	}
	return recs, nil
}

// LeadFromPage converts page properties to a record. Missing properties keep
// their defaults.
func LeadFromPage(p notionapi.Page) model.LeadRecord {
	rec := model.NewLeadRecord()
	rec.ID = textOf(p.Properties[PropLeadID])
	rec.Name = textOf(p.Properties[PropName])
	rec.Company = textOf(p.Properties[PropCompany])
	rec.Summary = textOf(p.Properties[PropSummary])
	rec.Score = numberOf(p.Properties[PropScore])
	rec.Value = numberOf(p.Properties[PropValue])

	switch v := p.Properties[PropStatus].(type) {
	case *notionapi.SelectProperty:
		rec.Status = model.NormalizeStatus(v.Select.Name)
	case notionapi.SelectProperty:
		rec.Status = model.NormalizeStatus(v.Select.Name)
	case *notionapi.StatusProperty:
		rec.Status = model.NormalizeStatus(v.Status.Name)
	}
	return rec
}

func textOf(p notionapi.Property) string {
	var parts []notionapi.RichText
	switch v := p.(type) {
	case *notionapi.TitleProperty:
		parts = v.Title
	case notionapi.TitleProperty:
		parts = v.Title
	case *notionapi.RichTextProperty:
		parts = v.RichText
	case notionapi.RichTextProperty:
		parts = v.RichText
	default:
		return ""
	}
	var b strings.Builder
	for _, rt := range parts {
		if rt.PlainText != "" {
			b.WriteString(rt.PlainText)
		} else if rt.Text != nil {
			b.WriteString(rt.Text.Content)
		}
	}
	return b.String()
}

func numberOf(p notionapi.Property) float64 {
	switch v := p.(type) {
	case *notionapi.NumberProperty:
		return v.Number
	case notionapi.NumberProperty:
		return v.Number
	}
	return 0
}
