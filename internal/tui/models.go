package tui

import (
	"github.com/pders01/redlist/internal/notice"
	"github.com/pders01/redlist/internal/storage"
)

type View int

const (
	ViewSearch View = iota
	ViewDetail
	ViewSaved
	ViewHistory
)

func (v View) String() string {
	switch v {
	case ViewSearch:
		return "search"
	case ViewDetail:
		return "detail"
	case ViewSaved:
		return "saved"
	case ViewHistory:
		return "history"
	default:
		return "unknown"
	}
}

// searchResultsMsg carries one search response. gen identifies the request
// so that responses to superseded queries can be dropped.
type searchResultsMsg struct {
	gen   uint64
	query string
	page  *notice.Page
	err   error
}

type profileMsg struct {
	gen      uint64
	entityID string
	content  string
	images   []notice.Image
	err      error
}

type savedToggledMsg struct {
	notice *notice.Notice
	saved  bool
	err    error
}

type savedLoadedMsg struct {
	filter string
	items  []*storage.SavedNotice
	err    error
}

type historyLoadedMsg struct {
	entries []*storage.HistoryEntry
	err     error
}

type historyClearedMsg struct {
	err error
}

type statusMsg struct {
	text string
	kind StatusKind
}

type errorMsg struct {
	err error
}
