// Package session owns per-conversation paginated search state.
// Navigation is cache-first: only crossing the high-water mark of
// cached pages triggers a provider call.
package session

import (
	"errors"

	"github.com/johnny-stegall/Digital-Assistant/internal/place"
)

// Navigation outcomes the caller turns into conversational replies.
var (
	ErrEmptySession = errors.New("EMPTY_SESSION")
	ErrFirstPage    = errors.New("FIRST_PAGE")
)

// SearchSession is the paginated state of one conversation's active
// search. Pages are append-only; PageIndex is -1 until the first
// non-empty result and never reaches len(Pages) afterwards.
type SearchSession struct {
	Query             place.SearchQuery `json:"query"`
	Pages             [][]place.Record  `json:"pages"`
	PageIndex         int               `json:"pageIndex"`
	ContinuationToken string            `json:"continuationToken,omitempty"`
}

// NewSearchSession returns an empty session.
func NewSearchSession() *SearchSession {
	return &SearchSession{PageIndex: -1}
}

// Empty reports whether no page has been loaded yet.
func (s *SearchSession) Empty() bool {
	return s.PageIndex < 0 || len(s.Pages) == 0
}

// CurrentPage returns the cached page at PageIndex, or nil for an
// empty session.
func (s *SearchSession) CurrentPage() []place.Record {
	if s.Empty() {
		return nil
	}
	return s.Pages[s.PageIndex]
}

// HasMore reports whether forward navigation can produce another
// page, from cache or from the provider.
func (s *SearchSession) HasMore() bool {
	if s.Empty() {
		return false
	}
	return s.PageIndex < len(s.Pages)-1 || s.ContinuationToken != ""
}

// clone copies the session so a caller's mutations stay invisible
// until saved. Pages are never edited in place, so sharing the
// per-page slices is safe.
func (s *SearchSession) clone() *SearchSession {
	dup := *s
	dup.Pages = make([][]place.Record, len(s.Pages))
	copy(dup.Pages, s.Pages)
	return &dup
}
