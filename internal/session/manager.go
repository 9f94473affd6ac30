package session

import (
	"context"
	"fmt"
	"strings"

	commonErrors "github.com/johnny-stegall/Digital-Assistant/internal/common/errors"
	"github.com/johnny-stegall/Digital-Assistant/internal/common/logger"
	"github.com/johnny-stegall/Digital-Assistant/internal/common/metrics"
	"github.com/johnny-stegall/Digital-Assistant/internal/place"
)

// Searcher is the slice of the maps capability the manager needs.
type Searcher interface {
	Search(ctx context.Context, query place.SearchQuery) (place.ResultPage, error)
}

// PageView is what navigation operations hand back to the caller:
// the now-current page and whether forward navigation has more.
type PageView struct {
	Places []place.Record
	// Count of cached pages, for "at least N" vs "another N" phrasing.
	TotalPages int
	HasMore    bool
}

// Selector identifies one place on the current page. Name matching
// takes precedence, then Ordinal, then Number; Ordinal and Number are
// 1-based.
type Selector struct {
	Name    string
	Ordinal int
	Number  int
}

// Manager runs the per-conversation search state machine on top of a
// Store. Session mutations are applied only after the provider call
// that produced them succeeds.
type Manager struct {
	store    Store
	searcher Searcher
	log      logger.Logger
}

func NewManager(store Store, searcher Searcher, log logger.Logger) *Manager {
	return &Manager{store: store, searcher: searcher, log: log}
}

// Search runs a fresh provider query and appends the result as a new
// page. limit > 0 keeps only the first limit places and drops the
// continuation token, for "the closest" style requests. An empty
// result leaves the session untouched and returns an empty view.
func (m *Manager) Search(ctx context.Context, conversationID string, query place.SearchQuery, limit int) (PageView, error) {
	sess, err := m.load(ctx, conversationID)
	if err != nil {
		return PageView{}, err
	}
	if sess == nil {
		sess = NewSearchSession()
	}

	page, err := m.searcher.Search(ctx, query)
	if err != nil {
		return PageView{}, err
	}
	metrics.PageCacheHits.WithLabelValues("provider").Inc()

	if len(page.Places) == 0 {
		return PageView{}, nil
	}

	if limit > 0 && len(page.Places) > limit {
		page.Places = page.Places[:limit]
		page.NextPageToken = ""
	}

	query.PageToken = ""
	sess.Query = query
	sess.Pages = append(sess.Pages, page.Places)
	sess.PageIndex = len(sess.Pages) - 1
	sess.ContinuationToken = page.NextPageToken

	if err := m.store.Save(ctx, conversationID, sess); err != nil {
		return PageView{}, err
	}
	return PageView{Places: page.Places, HasMore: sess.HasMore(), TotalPages: len(sess.Pages)}, nil
}

// NextPage serves the next cached page when one exists, otherwise
// follows the continuation token. On the last page with no token the
// session is unchanged and the exhausted outcome is returned.
func (m *Manager) NextPage(ctx context.Context, conversationID string) (PageView, error) {
	sess, err := m.load(ctx, conversationID)
	if err != nil {
		return PageView{}, err
	}
	if sess == nil || sess.Empty() {
		return PageView{}, ErrEmptySession
	}

	if sess.PageIndex < len(sess.Pages)-1 {
		sess.PageIndex++
		if err := m.store.Save(ctx, conversationID, sess); err != nil {
			return PageView{}, err
		}
		metrics.PageCacheHits.WithLabelValues("cache").Inc()
		return PageView{Places: sess.CurrentPage(), HasMore: sess.HasMore(), TotalPages: len(sess.Pages)}, nil
	}

	if sess.ContinuationToken == "" {
		return PageView{}, commonErrors.NewExhaustedPagination()
	}

	query := sess.Query
	query.PageToken = sess.ContinuationToken
	page, err := m.searcher.Search(ctx, query)
	if err != nil {
		return PageView{}, err
	}
	metrics.PageCacheHits.WithLabelValues("provider").Inc()

	if len(page.Places) == 0 {
		sess.ContinuationToken = ""
		if err := m.store.Save(ctx, conversationID, sess); err != nil {
			return PageView{}, err
		}
		return PageView{}, commonErrors.NewExhaustedPagination()
	}

	sess.Pages = append(sess.Pages, page.Places)
	sess.PageIndex = len(sess.Pages) - 1
	sess.ContinuationToken = page.NextPageToken

	if err := m.store.Save(ctx, conversationID, sess); err != nil {
		return PageView{}, err
	}
	return PageView{Places: page.Places, HasMore: sess.HasMore(), TotalPages: len(sess.Pages)}, nil
}

// PreviousPage steps back one cached page. It never calls the
// provider.
func (m *Manager) PreviousPage(ctx context.Context, conversationID string) (PageView, error) {
	sess, err := m.load(ctx, conversationID)
	if err != nil {
		return PageView{}, err
	}
	if sess == nil || sess.Empty() {
		return PageView{}, ErrEmptySession
	}
	if sess.PageIndex == 0 {
		return PageView{}, ErrFirstPage
	}

	sess.PageIndex--
	if err := m.store.Save(ctx, conversationID, sess); err != nil {
		return PageView{}, err
	}
	metrics.PageCacheHits.WithLabelValues("cache").Inc()
	return PageView{Places: sess.CurrentPage(), HasMore: sess.HasMore(), TotalPages: len(sess.Pages)}, nil
}

// Restart returns to the first cached page without touching the page
// cache or the continuation token.
func (m *Manager) Restart(ctx context.Context, conversationID string) (PageView, error) {
	sess, err := m.load(ctx, conversationID)
	if err != nil {
		return PageView{}, err
	}
	if sess == nil || sess.Empty() {
		return PageView{}, ErrEmptySession
	}

	sess.PageIndex = 0
	if err := m.store.Save(ctx, conversationID, sess); err != nil {
		return PageView{}, err
	}
	metrics.PageCacheHits.WithLabelValues("cache").Inc()
	return PageView{Places: sess.CurrentPage(), HasMore: sess.HasMore(), TotalPages: len(sess.Pages)}, nil
}

// CurrentPage returns the current page without navigating.
func (m *Manager) CurrentPage(ctx context.Context, conversationID string) (PageView, error) {
	sess, err := m.load(ctx, conversationID)
	if err != nil {
		return PageView{}, err
	}
	if sess == nil || sess.Empty() {
		return PageView{}, ErrEmptySession
	}
	return PageView{Places: sess.CurrentPage(), HasMore: sess.HasMore(), TotalPages: len(sess.Pages)}, nil
}

// SelectFromCurrentPage resolves sel against the current page. A miss
// or an out-of-range position yields the not-understood outcome, not
// a fault.
func (m *Manager) SelectFromCurrentPage(ctx context.Context, conversationID string, sel Selector) (place.Record, error) {
	view, err := m.CurrentPage(ctx, conversationID)
	if err != nil {
		return place.Record{}, err
	}

	if sel.Name != "" {
		needle := strings.ToLower(strings.TrimSpace(sel.Name))
		for _, rec := range view.Places {
			if strings.Contains(strings.ToLower(rec.Name), needle) {
				return rec, nil
			}
		}
		return place.Record{}, commonErrors.NewSelectionMiss(sel.Name)
	}

	position := sel.Ordinal
	if position == 0 {
		position = sel.Number
	}
	if position < 1 || position > len(view.Places) {
		return place.Record{}, commonErrors.NewSelectionMiss(fmt.Sprintf("position %d of %d", position, len(view.Places)))
	}
	return view.Places[position-1], nil
}

// End discards the conversation's session.
func (m *Manager) End(ctx context.Context, conversationID string) error {
	return m.store.Delete(ctx, conversationID)
}

func (m *Manager) load(ctx context.Context, conversationID string) (*SearchSession, error) {
	sess, err := m.store.Get(ctx, conversationID)
	if err != nil {
		m.log.WithError(err).Error("session load failed",
			map[string]interface{}{"conversation_id": conversationID})
		return nil, err
	}
	return sess, nil
}
