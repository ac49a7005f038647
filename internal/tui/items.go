package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/pders01/redlist/internal/notice"
	"github.com/pders01/redlist/internal/storage"
)

// noticeItem is a result card. Items are identified by entity_id.
type noticeItem struct {
	notice *notice.Notice
	saved  bool
}

func (i noticeItem) ID() string { return i.notice.EntityID }

func (i noticeItem) Title() string {
	marker := "  "
	if i.notice.ThumbnailURL() != "" {
		marker = MarkerStyle.Render("▣ ")
	}
	title := marker + NameStyle.Render("Name: "+i.notice.DisplayName())
	if i.saved {
		title += SavedMarkerStyle.Render(" ★")
	}
	return title
}

func (i noticeItem) Description() string {
	parts := []string{"Birth: " + orUnknown(i.notice.DateOfBirth)}
	if len(i.notice.Nationalities) > 0 {
		parts = append(parts, strings.Join(i.notice.Nationalities, ", "))
	}
	parts = append(parts, i.notice.EntityID)
	return MutedStyle.Render("  " + strings.Join(parts, " • "))
}

func (i noticeItem) FilterValue() string { return i.notice.DisplayName() }

type savedItem struct {
	saved *storage.SavedNotice
}

func (i savedItem) ID() string { return i.saved.ID() }

func (i savedItem) Title() string {
	return SavedMarkerStyle.Render("★ ") + NameStyle.Render(i.saved.Notice.DisplayName())
}

func (i savedItem) Description() string {
	n := i.saved.Notice
	return MutedStyle.Render(fmt.Sprintf("  Birth: %s • %s • saved %s",
		orUnknown(n.DateOfBirth), n.EntityID, i.saved.SavedAt.Format("Jan 2 2006")))
}

func (i savedItem) FilterValue() string { return i.saved.Notice.DisplayName() }

type historyItem struct {
	entry *storage.HistoryEntry
	now   time.Time
}

func (i historyItem) Title() string { return i.entry.Query }

func (i historyItem) Description() string {
	return MutedStyle.Render(fmt.Sprintf("%s • %s", MsgResultsCount(i.entry.Results), ago(i.now, i.entry.SearchedAt)))
}

func (i historyItem) FilterValue() string { return i.entry.Query }

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "unknown"
	}
	return s
}

func ago(now, t time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return t.Format("Jan 2")
	}
}
