package session

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonErrors "github.com/johnny-stegall/Digital-Assistant/internal/common/errors"
	"github.com/johnny-stegall/Digital-Assistant/internal/common/logger"
	"github.com/johnny-stegall/Digital-Assistant/internal/place"
)

type fakeSearcher struct {
	calls     int
	responses []place.ResultPage
	err       error
}

func (f *fakeSearcher) Search(ctx context.Context, query place.SearchQuery) (place.ResultPage, error) {
	f.calls++
	if f.err != nil {
		return place.ResultPage{}, f.err
	}
	if len(f.responses) == 0 {
		return place.ResultPage{}, nil
	}
	resp := f.responses[0]
	f.responses = f.responses[1:]
	return resp, nil
}

func records(names ...string) []place.Record {
	out := make([]place.Record, len(names))
	for i, name := range names {
		out[i] = place.Record{ID: fmt.Sprintf("id-%s", name), Name: name}
	}
	return out
}

func newManager(searcher *fakeSearcher) (*Manager, *MemoryStore) {
	store := NewMemoryStore()
	return NewManager(store, searcher, logger.NewNoOpLogger()), store
}

const conv = "conversation-1"

func TestSearch_LoadsFirstPage(t *testing.T) {
	searcher := &fakeSearcher{responses: []place.ResultPage{
		{Places: records("Alinea", "Bavette's"), NextPageToken: "token-1"},
	}}
	mgr, store := newManager(searcher)

	view, err := mgr.Search(context.Background(), conv, place.NewSearchQuery("steakhouse"), 0)
	require.NoError(t, err)
	assert.Len(t, view.Places, 2)
	assert.True(t, view.HasMore)

	sess, err := store.Get(context.Background(), conv)
	require.NoError(t, err)
	assert.Equal(t, 0, sess.PageIndex)
	assert.Len(t, sess.Pages, 1)
	assert.Equal(t, "token-1", sess.ContinuationToken)
}

func TestSearch_EmptyResultLeavesSessionEmpty(t *testing.T) {
	searcher := &fakeSearcher{responses: []place.ResultPage{{}}}
	mgr, store := newManager(searcher)

	view, err := mgr.Search(context.Background(), conv, place.NewSearchQuery("unobtainium"), 0)
	require.NoError(t, err)
	assert.Empty(t, view.Places)

	sess, err := store.Get(context.Background(), conv)
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestSearch_ProviderFailureLeavesSessionUnchanged(t *testing.T) {
	searcher := &fakeSearcher{responses: []place.ResultPage{
		{Places: records("Alinea"), NextPageToken: "token-1"},
	}}
	mgr, store := newManager(searcher)

	_, err := mgr.Search(context.Background(), conv, place.NewSearchQuery("steakhouse"), 0)
	require.NoError(t, err)

	searcher.err = errors.New("upstream down")
	_, err = mgr.Search(context.Background(), conv, place.NewSearchQuery("tacos"), 0)
	require.Error(t, err)

	sess, err := store.Get(context.Background(), conv)
	require.NoError(t, err)
	assert.Len(t, sess.Pages, 1)
	assert.Equal(t, 0, sess.PageIndex)
	assert.Equal(t, "token-1", sess.ContinuationToken)
}

func TestSearch_LimitTruncatesAndDropsToken(t *testing.T) {
	searcher := &fakeSearcher{responses: []place.ResultPage{
		{Places: records("Alinea", "Bavette's", "Ceres"), NextPageToken: "token-1"},
	}}
	mgr, store := newManager(searcher)

	view, err := mgr.Search(context.Background(), conv, place.NewSearchQuery("cafe"), 1)
	require.NoError(t, err)
	require.Len(t, view.Places, 1)
	assert.Equal(t, "Alinea", view.Places[0].Name)
	assert.False(t, view.HasMore)

	sess, err := store.Get(context.Background(), conv)
	require.NoError(t, err)
	assert.Empty(t, sess.ContinuationToken)
}

func TestNavigation_CacheFirst(t *testing.T) {
	page1 := records("Alinea", "Bavette's")
	searcher := &fakeSearcher{responses: []place.ResultPage{
		{Places: page1, NextPageToken: "token-1"},
		{Places: records("Ceres", "Duck Inn"), NextPageToken: ""},
	}}
	mgr, store := newManager(searcher)
	ctx := context.Background()

	_, err := mgr.Search(ctx, conv, place.NewSearchQuery("restaurant"), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, searcher.calls)

	// Backing up from the first page is refused without a provider call.
	_, err = mgr.PreviousPage(ctx, conv)
	assert.ErrorIs(t, err, ErrFirstPage)
	assert.Equal(t, 1, searcher.calls)

	// Crossing the high-water mark fetches exactly once.
	view, err := mgr.NextPage(ctx, conv)
	require.NoError(t, err)
	assert.Equal(t, 2, searcher.calls)
	assert.Equal(t, "Ceres", view.Places[0].Name)

	sess, err := store.Get(ctx, conv)
	require.NoError(t, err)
	assert.Equal(t, 1, sess.PageIndex)
	assert.Len(t, sess.Pages, 2)

	// Going back is a pure cache hit and the first page is intact.
	view, err = mgr.PreviousPage(ctx, conv)
	require.NoError(t, err)
	assert.Equal(t, 2, searcher.calls)
	assert.Equal(t, page1, view.Places)
	assert.True(t, view.HasMore)

	// Forward again re-serves the cached second page.
	view, err = mgr.NextPage(ctx, conv)
	require.NoError(t, err)
	assert.Equal(t, 2, searcher.calls)
	assert.Equal(t, "Ceres", view.Places[0].Name)
}

func TestNextPage_ExhaustedLeavesStateUnchanged(t *testing.T) {
	searcher := &fakeSearcher{responses: []place.ResultPage{
		{Places: records("Alinea")},
	}}
	mgr, store := newManager(searcher)
	ctx := context.Background()

	_, err := mgr.Search(ctx, conv, place.NewSearchQuery("cafe"), 0)
	require.NoError(t, err)

	_, err = mgr.NextPage(ctx, conv)
	assert.True(t, commonErrors.IsCode(err, commonErrors.ErrCodeExhaustedPagination))
	assert.Equal(t, 1, searcher.calls)

	sess, err := store.Get(ctx, conv)
	require.NoError(t, err)
	assert.Equal(t, 0, sess.PageIndex)
	assert.Len(t, sess.Pages, 1)
}

func TestNextPage_EmptyContinuationPageExhausts(t *testing.T) {
	searcher := &fakeSearcher{responses: []place.ResultPage{
		{Places: records("Alinea"), NextPageToken: "token-1"},
		{},
	}}
	mgr, store := newManager(searcher)
	ctx := context.Background()

	_, err := mgr.Search(ctx, conv, place.NewSearchQuery("cafe"), 0)
	require.NoError(t, err)

	_, err = mgr.NextPage(ctx, conv)
	assert.True(t, commonErrors.IsCode(err, commonErrors.ErrCodeExhaustedPagination))

	// The dead token is cleared so the next attempt skips the provider.
	_, err = mgr.NextPage(ctx, conv)
	assert.True(t, commonErrors.IsCode(err, commonErrors.ErrCodeExhaustedPagination))
	assert.Equal(t, 2, searcher.calls)

	sess, err := store.Get(ctx, conv)
	require.NoError(t, err)
	assert.Empty(t, sess.ContinuationToken)
}

func TestRestart_ReturnsToFirstPageOnly(t *testing.T) {
	searcher := &fakeSearcher{responses: []place.ResultPage{
		{Places: records("Alinea"), NextPageToken: "token-1"},
		{Places: records("Bavette's"), NextPageToken: "token-2"},
	}}
	mgr, store := newManager(searcher)
	ctx := context.Background()

	_, err := mgr.Search(ctx, conv, place.NewSearchQuery("cafe"), 0)
	require.NoError(t, err)
	_, err = mgr.NextPage(ctx, conv)
	require.NoError(t, err)

	view, err := mgr.Restart(ctx, conv)
	require.NoError(t, err)
	assert.Equal(t, "Alinea", view.Places[0].Name)
	assert.Equal(t, 2, searcher.calls)

	sess, err := store.Get(ctx, conv)
	require.NoError(t, err)
	assert.Equal(t, 0, sess.PageIndex)
	assert.Len(t, sess.Pages, 2)
	assert.Equal(t, "token-2", sess.ContinuationToken)
}

func TestNavigation_EmptySession(t *testing.T) {
	mgr, _ := newManager(&fakeSearcher{})
	ctx := context.Background()

	_, err := mgr.NextPage(ctx, conv)
	assert.ErrorIs(t, err, ErrEmptySession)
	_, err = mgr.PreviousPage(ctx, conv)
	assert.ErrorIs(t, err, ErrEmptySession)
	_, err = mgr.Restart(ctx, conv)
	assert.ErrorIs(t, err, ErrEmptySession)
	_, err = mgr.CurrentPage(ctx, conv)
	assert.ErrorIs(t, err, ErrEmptySession)
}

func TestSelectFromCurrentPage(t *testing.T) {
	searcher := &fakeSearcher{responses: []place.ResultPage{
		{Places: records("Alinea", "Bavette's Bar & Boeuf", "Ceres")},
	}}
	mgr, _ := newManager(searcher)
	ctx := context.Background()

	_, err := mgr.Search(ctx, conv, place.NewSearchQuery("restaurant"), 0)
	require.NoError(t, err)

	tests := []struct {
		name     string
		selector Selector
		want     string
		wantMiss bool
	}{
		{name: "ordinal", selector: Selector{Ordinal: 2}, want: "Bavette's Bar & Boeuf"},
		{name: "cardinal number", selector: Selector{Number: 3}, want: "Ceres"},
		{name: "name substring case-insensitive", selector: Selector{Name: "bavette's"}, want: "Bavette's Bar & Boeuf"},
		{name: "name beats ordinal", selector: Selector{Name: "Ceres", Ordinal: 1}, want: "Ceres"},
		{name: "ordinal out of range", selector: Selector{Ordinal: 4}, wantMiss: true},
		{name: "unknown name", selector: Selector{Name: "Elio's"}, wantMiss: true},
		{name: "no selector", selector: Selector{}, wantMiss: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := mgr.SelectFromCurrentPage(ctx, conv, tt.selector)
			if tt.wantMiss {
				assert.True(t, commonErrors.IsCode(err, commonErrors.ErrCodeSelectionMiss))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, rec.Name)
		})
	}
}

func TestEnd_DiscardsSession(t *testing.T) {
	searcher := &fakeSearcher{responses: []place.ResultPage{
		{Places: records("Alinea")},
	}}
	mgr, _ := newManager(searcher)
	ctx := context.Background()

	_, err := mgr.Search(ctx, conv, place.NewSearchQuery("cafe"), 0)
	require.NoError(t, err)

	require.NoError(t, mgr.End(ctx, conv))
	_, err = mgr.CurrentPage(ctx, conv)
	assert.ErrorIs(t, err, ErrEmptySession)
}

func TestSessions_AreIndependentAcrossConversations(t *testing.T) {
	searcher := &fakeSearcher{responses: []place.ResultPage{
		{Places: records("Alinea")},
		{Places: records("Bavette's")},
	}}
	mgr, _ := newManager(searcher)
	ctx := context.Background()

	_, err := mgr.Search(ctx, "conversation-1", place.NewSearchQuery("cafe"), 0)
	require.NoError(t, err)
	_, err = mgr.Search(ctx, "conversation-2", place.NewSearchQuery("bar"), 0)
	require.NoError(t, err)

	view1, err := mgr.CurrentPage(ctx, "conversation-1")
	require.NoError(t, err)
	view2, err := mgr.CurrentPage(ctx, "conversation-2")
	require.NoError(t, err)
	assert.Equal(t, "Alinea", view1.Places[0].Name)
	assert.Equal(t, "Bavette's", view2.Places[0].Name)
}
