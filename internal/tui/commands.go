package tui

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/redlist/internal/debuglog"
	"github.com/pders01/redlist/internal/interpol"
	"github.com/pders01/redlist/internal/notice"
	"github.com/pders01/redlist/internal/report"
	"github.com/pders01/redlist/internal/storage"
)

// savedSearchLimit bounds local index hits for the saved view filter.
const savedSearchLimit = 200

func (a *App) fetchResults(ctx context.Context, gen uint64, q string) tea.Cmd {
	client := a.client
	perPage := a.config.API.ResultPerPage
	return func() tea.Msg {
		page, err := client.SearchRed(ctx, interpol.Query{Forename: q, ResultPerPage: perPage})
		return searchResultsMsg{gen: gen, query: q, page: page, err: err}
	}
}

// recordHistory stores a query that produced a response.
func (a *App) recordHistory(q string, results int) tea.Cmd {
	if q == "" {
		return nil
	}
	store := a.store
	limit := a.config.Search.HistorySize
	entry := storage.HistoryEntry{Query: q, Results: results, SearchedAt: a.now()}
	return func() tea.Msg {
		if err := store.AddHistory(entry, limit); err != nil {
			debuglog.Warnf("recording history for %q: %v", q, err)
			return errorMsg{err: wrapErr("recording history", err)}
		}
		return nil
	}
}

// openProfile switches to the detail view and loads n's full record.
func (a *App) openProfile(n *notice.Notice) tea.Cmd {
	if n == nil {
		return nil
	}
	a.previousView = a.view
	a.view = ViewDetail
	a.current = n
	a.images = nil
	a.stopProfile()
	a.loadingProfile = true
	a.viewport.SetContent("")

	r, err := a.getRenderer()
	if err != nil {
		a.loadingProfile = false
		a.err = wrapErr("initializing renderer", err)
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.cancelProfile = cancel

	gen := a.profileGen
	client := a.client
	now := a.now()
	return tea.Batch(a.spinner.Tick, func() tea.Msg {
		detail, images, err := client.Profile(ctx, n)
		if err != nil {
			return profileMsg{gen: gen, entityID: n.EntityID, err: err}
		}

		var md bytes.Buffer
		if err := report.WriteProfile(&md, detail, images, now); err != nil {
			return profileMsg{gen: gen, entityID: n.EntityID, err: err}
		}
		rendered, err := r.Render(md.String())
		if err != nil {
			return profileMsg{gen: gen, entityID: n.EntityID, err: wrapErr("rendering", err)}
		}
		return profileMsg{gen: gen, entityID: n.EntityID, content: rendered, images: images}
	})
}

// toggleSave saves n, or removes it when it is already saved. The local
// index follows the store.
func (a *App) toggleSave(n *notice.Notice) tea.Cmd {
	if n == nil {
		return func() tea.Msg { return statusMsg{text: MsgNoSelection, kind: StatusWarn} }
	}
	store, index := a.store, a.index
	return func() tea.Msg {
		if store.IsSaved(n.EntityID) {
			if err := store.DeleteSavedNotice(n.EntityID); err != nil {
				return savedToggledMsg{notice: n, err: wrapErr("removing notice", err)}
			}
			if index != nil {
				if err := index.Remove(n.EntityID); err != nil {
					debuglog.Warnf("removing %s from index: %v", n.EntityID, err)
				}
			}
			return savedToggledMsg{notice: n, saved: false}
		}

		if _, err := store.SaveNotice(n); err != nil {
			return savedToggledMsg{notice: n, err: wrapErr("saving notice", err)}
		}
		if index != nil {
			if err := index.Index(n); err != nil {
				debuglog.Warnf("indexing %s: %v", n.EntityID, err)
			}
		}
		return savedToggledMsg{notice: n, saved: true}
	}
}

// loadSaved lists saved notices, narrowed by the local index when filter
// is set.
func (a *App) loadSaved(filter string) tea.Cmd {
	store, index := a.store, a.index
	return func() tea.Msg {
		if filter == "" || index == nil {
			items, err := store.SavedNotices()
			return savedLoadedMsg{filter: filter, items: items, err: err}
		}

		hits, err := index.Search(filter, savedSearchLimit)
		if err != nil {
			return savedLoadedMsg{filter: filter, err: err}
		}
		items := make([]*storage.SavedNotice, 0, len(hits))
		for _, h := range hits {
			s, err := store.GetSavedNotice(h.ID)
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			if err != nil {
				return savedLoadedMsg{filter: filter, err: err}
			}
			items = append(items, s)
		}
		return savedLoadedMsg{filter: filter, items: items}
	}
}

func (a *App) loadHistory() tea.Cmd {
	store := a.store
	limit := a.config.Search.HistorySize
	return func() tea.Msg {
		entries, err := store.RecentQueries(limit)
		return historyLoadedMsg{entries: entries, err: err}
	}
}

func (a *App) clearHistory() tea.Cmd {
	store := a.store
	return func() tea.Msg {
		return historyClearedMsg{err: store.ClearHistory()}
	}
}

// openImage shows the first full image when the profile has loaded, the
// thumbnail otherwise.
func (a *App) openImage(n *notice.Notice) tea.Cmd {
	if n == nil {
		return func() tea.Msg { return statusMsg{text: MsgNoSelection, kind: StatusWarn} }
	}
	link := n.ThumbnailURL()
	if a.view == ViewDetail && a.current == n {
		for _, img := range a.images {
			if u := img.URL(); u != "" {
				link = u
				break
			}
		}
	}
	if link == "" {
		return func() tea.Msg { return statusMsg{text: MsgNoThumbnail, kind: StatusWarn} }
	}

	opener := a.opener
	return func() tea.Msg {
		if err := opener.OpenImage(link); err != nil {
			return errorMsg{err: fmt.Errorf("failed to open %s: %w", truncateMiddle(link, 60), err)}
		}
		return statusMsg{text: MsgImageOpened, kind: StatusSuccess}
	}
}
