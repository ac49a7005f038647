package tui

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/pders01/redlist/internal/config"
	"github.com/pders01/redlist/internal/debounce"
	"github.com/pders01/redlist/internal/search"
	"github.com/pders01/redlist/internal/storage"
)

// fakeAPI serves red notice searches. Every forename yields one notice
// named after it, except "none" (empty page), "fail" (500) and "bare"
// (a notice without links).
type fakeAPI struct {
	server *httptest.Server

	mu       sync.Mutex
	searches []string
	perPage  []string
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	api := &fakeAPI{}
	api.server = httptest.NewServer(http.HandlerFunc(api.serve))
	t.Cleanup(api.server.Close)
	return api
}

func (f *fakeAPI) queries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.searches...)
}

func (f *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	base := f.server.URL + "/notices/v1/red/"

	switch {
	case r.URL.Path == "/notices/v1/red":
		q := r.URL.Query().Get("forename")
		f.mu.Lock()
		f.searches = append(f.searches, q)
		f.perPage = append(f.perPage, r.URL.Query().Get("resultPerPage"))
		f.mu.Unlock()

		switch q {
		case "fail":
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		case "none":
			fmt.Fprint(w, `{"total":0,"_embedded":{"notices":[]}}`)
			return
		}

		n := map[string]any{
			"forename":      strings.ToUpper(q),
			"name":          "DOE",
			"date_of_birth": "1980/04/02",
			"entity_id":     "2019/" + q,
			"nationalities": []string{"US"},
		}
		if q != "bare" {
			n["_links"] = map[string]any{
				"self":      map[string]string{"href": base + "2019-" + q},
				"images":    map[string]string{"href": base + "2019-" + q + "/images"},
				"thumbnail": map[string]string{"href": "https://ws-public.interpol.int/notices/v1/red/2019-" + q + "/images/1"},
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"total":     1,
			"_embedded": map[string]any{"notices": []any{n}},
		})

	case strings.HasSuffix(r.URL.Path, "/images"):
		fmt.Fprintf(w, `{"_embedded":{"images":[{"picture_id":"7","_links":{"self":{"href":"https://ws-public.interpol.int%s/7"}}}]}}`, r.URL.Path)

	case strings.HasPrefix(r.URL.Path, "/notices/v1/red/"):
		id := strings.TrimPrefix(r.URL.Path, "/notices/v1/red/2019-")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"entity_id":     "2019/" + id,
			"forename":      strings.ToUpper(id),
			"name":          "DOE",
			"date_of_birth": "1980/04/02",
			"sex_id":        "M",
			"nationalities": []string{"US"},
			"arrest_warrants": []map[string]string{
				{"charge": "Fraud", "issuing_country_id": "US"},
			},
		})

	default:
		http.NotFound(w, r)
	}
}

type fakeOpener struct {
	opened []string
	err    error
}

func (f *fakeOpener) OpenImage(url string) error {
	f.opened = append(f.opened, url)
	return f.err
}

type testEnv struct {
	app    *App
	api    *fakeAPI
	store  *storage.Store
	index  *search.Index
	opener *fakeOpener
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	api := newFakeAPI(t)

	cfg := config.TestConfig()
	cfg.API.BaseURL = api.server.URL

	store, err := storage.NewStore(filepath.Join(t.TempDir(), "test.db"), 0)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	index, err := search.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { index.Close() })

	app, err := NewApp(store, index, cfg)
	require.NoError(t, err)

	opener := &fakeOpener{}
	app.opener = opener
	// Static cursors keep key handling free of blink timers.
	app.searchInput.Cursor.SetMode(cursor.CursorStatic)
	app.savedInput.Cursor.SetMode(cursor.CursorStatic)
	app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	return &testEnv{app: app, api: api, store: store, index: index, opener: opener}
}

// pump runs commands the way the program loop would, feeding the app's
// own messages back into Update until nothing is left.
func pump(t *testing.T, a *App, cmds ...tea.Cmd) {
	t.Helper()
	queue := append([]tea.Cmd(nil), cmds...)
	for steps := 0; len(queue) > 0; steps++ {
		require.Less(t, steps, 500, "message loop did not settle")
		cmd := queue[0]
		queue = queue[1:]
		if cmd == nil {
			continue
		}
		switch msg := cmd().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case debounce.FireMsg, searchResultsMsg, profileMsg, savedToggledMsg,
			savedLoadedMsg, historyLoadedMsg, historyClearedMsg, statusMsg, errorMsg:
			_, next := a.Update(msg)
			queue = append(queue, next)
		}
	}
}

// findProfileMsg runs cmd without feeding anything back to the app and
// returns the profile response it produces.
func findProfileMsg(cmd tea.Cmd) (profileMsg, bool) {
	if cmd == nil {
		return profileMsg{}, false
	}
	switch msg := cmd().(type) {
	case profileMsg:
		return msg, true
	case tea.BatchMsg:
		for _, c := range msg {
			if m, ok := findProfileMsg(c); ok {
				return m, true
			}
		}
	}
	return profileMsg{}, false
}

func typeKeys(a *App, s string) []tea.Cmd {
	var cmds []tea.Cmd
	for _, r := range s {
		_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		cmds = append(cmds, cmd)
	}
	return cmds
}

func press(a *App, k tea.KeyType) tea.Cmd {
	_, cmd := a.Update(tea.KeyMsg{Type: k})
	return cmd
}
