package notion

import (
	"context"
	"testing"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLeadPages_SingleBatch(t *testing.T) {
	mc := new(MockClient)
	ctx := context.Background()

	mc.On("QueryLeadPages", ctx, "db-leads", LeadQuery{}).
		Return(&notionapi.DatabaseQueryResponse{
			Results: []notionapi.Page{leadPage("p1", "1", "Ana"), leadPage("p2", "", "Bo")},
		}, nil).Once()

	pages, err := LeadPages(ctx, mc, "db-leads", false)
	require.NoError(t, err)
	assert.Len(t, pages, 2)
	mc.AssertExpectations(t)
}

func TestLeadPages_FollowsCursor(t *testing.T) {
	mc := new(MockClient)
	ctx := context.Background()

	mc.On("QueryLeadPages", ctx, "db-leads", LeadQuery{WithLeadID: true}).
		Return(&notionapi.DatabaseQueryResponse{
			Results:    []notionapi.Page{leadPage("p1", "1", "Ana")},
			HasMore:    true,
			NextCursor: "cursor-abc",
		}, nil).Once()
	mc.On("QueryLeadPages", ctx, "db-leads", LeadQuery{Cursor: "cursor-abc", WithLeadID: true}).
		Return(&notionapi.DatabaseQueryResponse{
			Results: []notionapi.Page{leadPage("p2", "2", "Bo")},
		}, nil).Once()

	pages, err := LeadPages(ctx, mc, "db-leads", true)
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, "1", textOf(pages[0].Properties[PropLeadID]))
	assert.Equal(t, "2", textOf(pages[1].Properties[PropLeadID]))
	mc.AssertExpectations(t)
}

func TestLeadPages_StopsOnEmptyCursor(t *testing.T) {
	mc := new(MockClient)
	ctx := context.Background()

	mc.On("QueryLeadPages", ctx, "db-leads", LeadQuery{}).
		Return(&notionapi.DatabaseQueryResponse{HasMore: true}, nil).Once()

	pages, err := LeadPages(ctx, mc, "db-leads", false)
	require.NoError(t, err)
	assert.Empty(t, pages)
	mc.AssertExpectations(t)
}

func TestLeadPages_Error(t *testing.T) {
	mc := new(MockClient)
	ctx := context.Background()

	mc.On("QueryLeadPages", ctx, "db-leads", LeadQuery{}).Return(nil, assert.AnError).Once()

	pages, err := LeadPages(ctx, mc, "db-leads", false)
	assert.Error(t, err)
	assert.Nil(t, pages)
	mc.AssertExpectations(t)
}

func TestLeadPages_ContextCancelled(t *testing.T) {
	mc := new(MockClient)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pages, err := LeadPages(ctx, mc, "db-leads", false)
	assert.Error(t, err)
	assert.Nil(t, pages)
	mc.AssertNotCalled(t, "QueryLeadPages", mock.Anything, mock.Anything, mock.Anything)
}
