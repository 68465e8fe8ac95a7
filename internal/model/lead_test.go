package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want LeadStatus
	}{
		{"", StatusProspecting},
		{"   ", StatusProspecting},
		{"Prospecting", StatusProspecting},
		{"meeting", StatusMeeting},
		{" PROPOSAL ", StatusProposal},
		{"Prospecção", StatusProspecting},
		{"Reunião", StatusMeeting},
		{"Proposta", StatusProposal},
		{"Fechado", StatusClosed},
		{"perdido", StatusLost},
		{"Negotiation", LeadStatus("Negotiation")},
		{"  On Hold ", LeadStatus("On Hold")},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeStatus(tt.raw))
		})
	}
}

func TestLeadStatus_IsKnown(t *testing.T) {
	assert.True(t, StatusClosed.IsKnown())
	assert.False(t, LeadStatus("Negotiation").IsKnown())
}

func TestNewLeadRecord_Defaults(t *testing.T) {
	r := NewLeadRecord()
	assert.Equal(t, StatusProspecting, r.Status)
	assert.Empty(t, r.ID)
	assert.Zero(t, r.Score)
	assert.Zero(t, r.Value)
	assert.False(t, r.HasID())
}

func TestSummarize(t *testing.T) {
	records := []LeadRecord{
		{Name: "A", Status: StatusProspecting, Score: 80, Value: 100},
		{Name: "B", Status: StatusProspecting, Score: 40, Value: 0},
		{Name: "C", Status: LeadStatus("Negotiation"), Score: 60, Value: 50},
	}

	s := Summarize(records)
	assert.Equal(t, 3, s.Count)
	assert.InDelta(t, 150, s.TotalValue, 0.0001)
	assert.InDelta(t, 60, s.MeanScore, 0.0001)
	assert.Equal(t, 2, s.StatusHistogram["Prospecting"])
	assert.Equal(t, 1, s.StatusHistogram["Negotiation"])
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, 0, s.Count)
	assert.Zero(t, s.MeanScore)
	assert.NotNil(t, s.StatusHistogram)
}
