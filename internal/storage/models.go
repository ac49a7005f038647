package storage

import (
	"time"

	"github.com/pders01/redlist/internal/notice"
)

// SavedNotice is a notice the user kept, as it was when saved.
type SavedNotice struct {
	Notice  *notice.Notice `json:"notice"`
	SavedAt time.Time      `json:"saved_at"`
}

// ID returns the entity id of the saved notice.
func (s *SavedNotice) ID() string {
	if s.Notice == nil {
		return ""
	}
	return s.Notice.EntityID
}

// HistoryEntry records a query that reached the service.
type HistoryEntry struct {
	Query      string    `json:"query"`
	Results    int       `json:"results"`
	SearchedAt time.Time `json:"searched_at"`
}
