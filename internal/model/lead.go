package model

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// LeadStatus is the sales stage of a lead. Values outside the known set are
// kept as-is so newer stages survive a round trip through older code.
type LeadStatus string

const (
	StatusProspecting LeadStatus = "Prospecting"
	StatusMeeting     LeadStatus = "Meeting"
	StatusProposal    LeadStatus = "Proposal"
	StatusClosed      LeadStatus = "Closed"
	StatusLost        LeadStatus = "Lost"
)

// KnownStatuses lists the pipeline stages in funnel order.
var KnownStatuses = []LeadStatus{
	StatusProspecting,
	StatusMeeting,
	StatusProposal,
	StatusClosed,
	StatusLost,
}

// statusAliases maps folded labels (lowercase, accents stripped) to a known
// status. The Portuguese labels come from the spreadsheet-era data.
var statusAliases = map[string]LeadStatus{
	"prospecting": StatusProspecting,
	"prospeccao":  StatusProspecting,
	"meeting":     StatusMeeting,
	"reuniao":     StatusMeeting,
	"proposal":    StatusProposal,
	"proposta":    StatusProposal,
	"closed":      StatusClosed,
	"fechado":     StatusClosed,
	"lost":        StatusLost,
	"perdido":     StatusLost,
}

// IsKnown reports whether s is one of KnownStatuses.
func (s LeadStatus) IsKnown() bool {
	for _, k := range KnownStatuses {
		if s == k {
			return true
		}
	}
	return false
}

// NormalizeStatus maps a free-text status onto the known set. Blank input
// defaults to Prospecting; unrecognized labels are returned trimmed.
func NormalizeStatus(raw string) LeadStatus {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return StatusProspecting
	}
	if s, ok := statusAliases[foldLabel(trimmed)]; ok {
		return s
	}
	return LeadStatus(trimmed)
}

func foldLabel(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// LeadRecord is one prospective customer or deal. Field order matches the
// CSV export header.
type LeadRecord struct {
	ID      string     `json:"id" csv:"id" yaml:"id"`
	Name    string     `json:"name" csv:"name" yaml:"name"`
	Company string     `json:"company" csv:"company" yaml:"company"`
	Status  LeadStatus `json:"status" csv:"status" yaml:"status"`
	Summary string     `json:"summary" csv:"summary" yaml:"summary"`
	Score   float64    `json:"score" csv:"score" yaml:"score"`
	Value   float64    `json:"value" csv:"value" yaml:"value"`
}

// LeadColumns is the export header in field order.
var LeadColumns = []string{"id", "name", "company", "status", "summary", "score", "value"}

// NewLeadRecord returns a record with every field at its default.
func NewLeadRecord() LeadRecord {
	return LeadRecord{Status: StatusProspecting}
}

// HasID reports whether the record carries an external identifier.
func (r LeadRecord) HasID() bool {
	return r.ID != ""
}
