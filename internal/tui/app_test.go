package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/redlist/internal/config"
	"github.com/pders01/redlist/internal/notice"
)

func resultIDs(a *App) []string {
	ids := make([]string, 0, len(a.resultList.Items()))
	for _, item := range a.resultList.Items() {
		ids = append(ids, item.(noticeItem).ID())
	}
	return ids
}

func TestSearch_SpacedKeystrokesFetchEachPrefix(t *testing.T) {
	env := newTestEnv(t)
	a := env.app

	for _, r := range "john" {
		pump(t, a, typeKeys(a, string(r))...)
	}

	assert.Equal(t, []string{"j", "jo", "joh", "john"}, env.api.queries())
	assert.Equal(t, "john", a.query.Value())
	assert.Equal(t, []string{"2019/john"}, resultIDs(a))
	assert.False(t, a.loading)
}

func TestSearch_BurstFetchesOnce(t *testing.T) {
	env := newTestEnv(t)
	a := env.app

	pump(t, a, typeKeys(a, "john")...)

	assert.Equal(t, []string{"john"}, env.api.queries())
	assert.Equal(t, "john", a.query.Value())
	assert.Equal(t, []string{"2019/john"}, resultIDs(a))
}

func TestSearch_RequestsConfiguredPageSize(t *testing.T) {
	env := newTestEnv(t)

	pump(t, env.app, typeKeys(env.app, "john")...)

	env.api.mu.Lock()
	defer env.api.mu.Unlock()
	assert.Equal(t, []string{"200"}, env.api.perPage)
}

func TestSearch_EmptyValueNeverFetches(t *testing.T) {
	env := newTestEnv(t)
	a := env.app

	pump(t, a, typeKeys(a, " ")...)
	assert.Empty(t, env.api.queries(), "whitespace settles on the empty query")

	pump(t, a, press(a, tea.KeyBackspace))
	pump(t, a, typeKeys(a, "j")...)
	require.Equal(t, []string{"j"}, env.api.queries())

	pump(t, a, press(a, tea.KeyBackspace))
	assert.Equal(t, "", a.query.Value())
	assert.Equal(t, []string{"j"}, env.api.queries())
	assert.Equal(t, []string{"2019/j"}, resultIDs(a), "clearing the input keeps the last results")
}

func TestSearch_EmptyResponse(t *testing.T) {
	env := newTestEnv(t)
	a := env.app

	pump(t, a, typeKeys(a, "none")...)

	assert.False(t, a.loading)
	assert.Empty(t, a.results)
	assert.Empty(t, a.resultList.Items())
	assert.NoError(t, a.err)
	assert.Equal(t, MsgNoResults, a.status)
}

func TestSearch_LoadingClearsResults(t *testing.T) {
	env := newTestEnv(t)
	a := env.app

	pump(t, a, typeKeys(a, "john")...)
	require.Len(t, a.results, 1)

	cmd := a.startSearch("jane")
	assert.True(t, a.loading)
	assert.Empty(t, a.results)
	assert.Empty(t, a.resultList.Items())
	assert.Contains(t, a.View(), MsgLoading)

	pump(t, a, cmd)
	assert.False(t, a.loading)
	assert.Equal(t, []string{"2019/jane"}, resultIDs(a))
	assert.NotContains(t, a.View(), MsgLoading)
}

func TestSearch_StaleResponsesAreDropped(t *testing.T) {
	env := newTestEnv(t)
	a := env.app

	older := a.startSearch("jo")
	newer := a.startSearch("john")

	pump(t, a, newer)
	pump(t, a, older)

	assert.Equal(t, []string{"2019/john"}, resultIDs(a))
	assert.False(t, a.loading)
	assert.NoError(t, a.err)

	// A late success for a superseded generation changes nothing either.
	page := &notice.Page{}
	page.Embedded.Notices = []*notice.Notice{{EntityID: "2019/jo"}}
	a.Update(searchResultsMsg{gen: a.searchGen - 1, query: "jo", page: page})
	assert.Equal(t, []string{"2019/john"}, resultIDs(a))
}

func TestSearch_SupersededRequestIsCancelled(t *testing.T) {
	env := newTestEnv(t)
	a := env.app

	older := a.startSearch("jo")
	a.startSearch("john")

	// Run only the first fetch: its context is already cancelled.
	var fetched []searchResultsMsg
	for _, c := range older().(tea.BatchMsg) {
		if m, ok := c().(searchResultsMsg); ok {
			fetched = append(fetched, m)
		}
	}
	require.Len(t, fetched, 1)
	assert.ErrorIs(t, fetched[0].err, context.Canceled)
	assert.NotContains(t, env.api.queries(), "jo")
}

func TestSearch_FailureResetsLoading(t *testing.T) {
	env := newTestEnv(t)
	a := env.app

	pump(t, a, typeKeys(a, "fail")...)

	assert.False(t, a.loading)
	require.Error(t, a.err)
	assert.Contains(t, a.err.Error(), "search failed")
	assert.Contains(t, a.err.Error(), "500")
	assert.Contains(t, a.View(), "search failed")

	// The next successful search clears the error.
	pump(t, a, a.startSearch("john"))
	assert.NoError(t, a.err)
}

func TestSearch_RecordsHistory(t *testing.T) {
	env := newTestEnv(t)
	a := env.app
	clock := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	a.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	pump(t, a, typeKeys(a, "john")...)
	pump(t, a, a.startSearch("none"))

	entries, err := env.store.RecentQueries(10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "none", entries[0].Query)
	assert.Equal(t, 0, entries[0].Results)
	assert.Equal(t, "john", entries[1].Query)
	assert.Equal(t, 1, entries[1].Results)
}

func TestSearch_CardRendering(t *testing.T) {
	env := newTestEnv(t)
	a := env.app

	pump(t, a, typeKeys(a, "john")...)

	item := a.resultList.Items()[0].(noticeItem)
	assert.Contains(t, item.Title(), "▣")
	assert.Contains(t, item.Title(), "Name: John Doe")
	assert.Contains(t, item.Description(), "Birth: 1980/04/02")

	pump(t, a, a.startSearch("bare"))
	item = a.resultList.Items()[0].(noticeItem)
	assert.NotContains(t, item.Title(), "▣")
}

func TestSetResults_DedupesByEntityID(t *testing.T) {
	env := newTestEnv(t)
	a := env.app

	a.setResults([]*notice.Notice{
		{EntityID: "2019/1", Forename: "A"},
		nil,
		{EntityID: "2019/1", Forename: "B"},
		{EntityID: "2019/2", Forename: "C"},
	})
	assert.Equal(t, []string{"2019/1", "2019/2"}, resultIDs(a))
}

func TestQuit_CancelsInFlightSearch(t *testing.T) {
	env := newTestEnv(t)
	a := env.app

	search := a.startSearch("john")
	quit := press(a, tea.KeyCtrlC)
	require.NotNil(t, quit)
	assert.IsType(t, tea.QuitMsg{}, quit())

	pump(t, a, search)
	assert.False(t, a.loading)
	assert.NoError(t, a.err, "cancellation is not reported as a failure")
}

func TestNewApp_RequiresStore(t *testing.T) {
	app, err := NewApp(nil, nil, config.TestConfig())
	assert.Nil(t, app)
	assert.ErrorContains(t, err, "store is required")
}
