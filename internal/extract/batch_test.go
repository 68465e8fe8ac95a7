package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadcrm/internal/store"
)

func TestSplitBatch(t *testing.T) {
	p := New(nil)
	segs, err := p.SplitBatch("preamble\nRecord ID: 1\nAna from Acme\nrecord id - 2 Bob\nRECORD ID 3")
	require.NoError(t, err)
	require.Len(t, segs, 3)
	assert.Equal(t, "1", segs[0].ID)
	assert.Equal(t, "\nAna from Acme\n", segs[0].Text)
	assert.Equal(t, "2", segs[1].ID)
	assert.Equal(t, " Bob\n", segs[1].Text)
	assert.Equal(t, "3", segs[2].ID)
	assert.Equal(t, "", segs[2].Text)
}

func TestSplitBatch_NoDelimiters(t *testing.T) {
	_, err := New(nil).SplitBatch("just one lead without markers")
	assert.ErrorIs(t, err, ErrNoDelimitersFound)

	var ee *ExtractionError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, KindNoDelimitersFound, ee.Kind)
}

func TestSplitBatch_CustomDelimiter(t *testing.T) {
	p := New(nil, WithDelimiter("Lead #"))
	segs, err := p.SplitBatch("Lead #10 a Lead # 11 b")
	require.NoError(t, err)
	require.Len(t, segs, 2)
	assert.Equal(t, "10", segs[0].ID)
	assert.Equal(t, "11", segs[1].ID)

	// Regex metacharacters in the phrase are literal.
	_, err = New(nil, WithDelimiter("ID.")).SplitBatch("IDx 5")
	assert.ErrorIs(t, err, ErrNoDelimitersFound)
}

// batchProvider fails any segment mentioning "FAIL" and echoes the first
// word as the name otherwise.
func batchProvider() *fakeProvider {
	return &fakeProvider{fn: func(user string) (string, error) {
		if strings.Contains(user, "FAIL") {
			return "I cannot help with that", nil
		}
		name := strings.Fields(user)[0]
		return `{"name":"` + name + `","status":"Meeting","value":100}`, nil
	}}
}

func TestProcessBatch_PartialFailure(t *testing.T) {
	for _, conc := range []int{1, 4} {
		st := store.NewMemory()
		p := New(batchProvider(), WithBatchConcurrency(conc))

		text := "Record ID: 1 Ana\nRecord ID: 2 FAIL\nRecord ID: 3 Cid\nRecord ID: 4   \n"
		res, err := p.ProcessBatch(context.Background(), st, text)
		require.NoError(t, err)

		assert.Equal(t, 4, res.Total)
		assert.Equal(t, []string{"1", "3"}, res.Succeeded)
		require.Len(t, res.Failed, 2)
		assert.Equal(t, "2", res.Failed[0].ID)
		assert.ErrorIs(t, res.Failed[0].Err, ErrMalformedResponse)
		assert.Equal(t, "4", res.Failed[1].ID)
		assert.ErrorIs(t, res.Failed[1].Err, ErrEmptySegment)
		assert.NotEmpty(t, res.RunID.String())

		recs, err := st.All(context.Background())
		require.NoError(t, err)
		require.Len(t, recs, 2)
		assert.Equal(t, "1", recs[0].ID)
		assert.Equal(t, "Ana", recs[0].Name)
		assert.Equal(t, "3", recs[1].ID)
	}
}

func TestProcessBatch_EmptySegmentSkipsProvider(t *testing.T) {
	fp := batchProvider()
	_, err := New(fp).ProcessBatch(context.Background(), store.NewMemory(), "Record ID: 1 \n Record ID: 2 Bob")
	require.NoError(t, err)
	assert.Len(t, fp.calls, 1)
}

func TestProcessBatch_NoDelimiters(t *testing.T) {
	st := store.NewMemory()
	res, err := New(batchProvider()).ProcessBatch(context.Background(), st, "Ana from Acme")
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrNoDelimitersFound)

	recs, _ := st.All(context.Background())
	assert.Empty(t, recs)
}

func TestProcessBatch_DuplicateMarkerReplaces(t *testing.T) {
	st := store.NewMemory()
	_, err := New(batchProvider()).ProcessBatch(context.Background(), st, "Record ID: 1 Ana Record ID: 1 Bia")
	require.NoError(t, err)

	recs, err := st.All(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Bia", recs[0].Name)
}
