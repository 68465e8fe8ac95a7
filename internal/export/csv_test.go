package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadcrm/internal/model"
)

func TestWriteCSV_Header(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, []model.LeadRecord{
		{ID: "1", Name: "Ana", Company: "Acme", Status: model.StatusMeeting, Summary: "call", Score: 80, Value: 1500},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(model.LeadColumns, ","), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "1,Ana,Acme,Meeting,call,"))
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Zero(t, buf.Len())

	recs, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestCSV_RoundTrip(t *testing.T) {
	in := []model.LeadRecord{
		{ID: "1", Name: "Ana Souza", Company: "Acme, Ltda", Status: model.StatusMeeting, Summary: "said \"call me\"\nnext week", Score: 72.5, Value: 15000},
		{ID: "", Name: "João", Company: "Padaria", Status: model.StatusProspecting, Summary: "", Score: 0, Value: 0.1},
		{ID: "3", Name: "Bob", Company: "", Status: "Negotiation", Summary: "x", Score: 100, Value: 1e9},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, in))

	out, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestReadCSV_LenientNumbers(t *testing.T) {
	src := "id,name,company,status,summary,score,value\n9,Eve,Beta,Lost,gone,high,\n"
	recs, err := ReadCSV(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Eve", recs[0].Name)
	assert.Zero(t, recs[0].Score)
	assert.Zero(t, recs[0].Value)
}

func TestReadCSV_HeaderOnly(t *testing.T) {
	recs, err := ReadCSV(strings.NewReader("id,name,company,status,summary,score,value\n"))
	require.NoError(t, err)
	assert.Empty(t, recs)
}
