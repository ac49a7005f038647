package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/redlist/internal/config"
	"github.com/pders01/redlist/internal/debounce"
	"github.com/pders01/redlist/internal/debuglog"
	"github.com/pders01/redlist/internal/interpol"
	"github.com/pders01/redlist/internal/media"
	"github.com/pders01/redlist/internal/notice"
	"github.com/pders01/redlist/internal/search"
	"github.com/pders01/redlist/internal/storage"
	"github.com/pders01/redlist/internal/validation"
)

// imageOpener shows an image URL outside the terminal.
type imageOpener interface {
	OpenImage(url string) error
}

type App struct {
	config     *config.Config
	client     *interpol.Client
	store      *storage.Store
	index      *search.Index
	opener     imageOpener
	keyHandler *KeyHandler

	view         View
	previousView View
	width        int
	height       int

	searchInput  textinput.Model
	query        *debounce.Debouncer[string]
	resultList   list.Model
	results      []*notice.Notice
	loading      bool
	searchGen    uint64
	cancelSearch context.CancelFunc

	viewport        viewport.Model
	current         *notice.Notice
	images          []notice.Image
	loadingProfile  bool
	profileGen      uint64
	cancelProfile   context.CancelFunc
	glamourRenderer *glamour.TermRenderer
	rendererWidth   int

	savedInput  textinput.Model
	savedFilter *debounce.Debouncer[string]
	savedList   list.Model

	historyList list.Model

	spinner    spinner.Model
	status     string
	statusKind StatusKind
	err        error
	now        func() time.Time
}

func newList(title string) list.Model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.KeyMap.Quit.SetEnabled(false)
	l.KeyMap.ForceQuit.SetEnabled(false)
	return l
}

func NewApp(store *storage.Store, index *search.Index, cfg *config.Config) (*App, error) {
	if store == nil {
		return nil, errors.New("tui: store is required")
	}
	client, err := interpol.NewClient(cfg)
	if err != nil {
		return nil, err
	}

	si := textinput.New()
	si.Placeholder = "Search red notices by forename..."
	si.CharLimit = validation.MaxQueryLength
	si.Focus()

	fi := textinput.New()
	fi.Placeholder = "Filter saved notices..."
	fi.CharLimit = validation.MaxQueryLength

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	app := &App{
		config:       cfg,
		client:       client,
		store:        store,
		index:        index,
		opener:       media.NewLauncher(cfg),
		view:         ViewSearch,
		previousView: ViewSearch,
		searchInput:  si,
		query:        debounce.New[string](cfg.Search.Debounce),
		resultList:   newList("› red notices"),
		results:      []*notice.Notice{},
		viewport:     viewport.New(0, 0),
		savedInput:   fi,
		savedFilter:  debounce.New[string](cfg.Search.Debounce),
		savedList:    newList("› saved notices"),
		historyList:  newList("› recent searches"),
		spinner:      sp,
		now:          time.Now,
	}
	app.keyHandler = NewKeyHandler(app, cfg)

	return app, nil
}

func (a *App) getRenderer() (*glamour.TermRenderer, error) {
	wordWrapWidth := (a.width * 9) / 10
	if wordWrapWidth > 120 {
		wordWrapWidth = 120
	}
	if wordWrapWidth < 40 {
		wordWrapWidth = 40
	}

	if a.glamourRenderer == nil || abs(a.rendererWidth-wordWrapWidth) > 10 {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wordWrapWidth),
		)
		if err != nil {
			return nil, err
		}
		a.glamourRenderer = r
		a.rendererWidth = wordWrapWidth
	}

	return a.glamourRenderer, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		tea.EnterAltScreen,
	)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.keyHandler.HandleKey(msg)

	case debounce.FireMsg:
		switch {
		case a.query.Owns(msg):
			if a.query.Update(msg) {
				return a, a.onQueryChanged(a.query.Value())
			}
		case a.savedFilter.Owns(msg):
			if a.savedFilter.Update(msg) {
				return a, a.loadSaved(a.savedFilter.Value())
			}
		}
		return a, nil

	case searchResultsMsg:
		return a, a.handleSearchResults(msg)

	case profileMsg:
		if msg.gen != a.profileGen {
			return a, nil
		}
		a.loadingProfile = false
		if a.cancelProfile != nil {
			a.cancelProfile()
			a.cancelProfile = nil
		}
		if errors.Is(msg.err, context.Canceled) {
			return a, nil
		}
		if msg.err != nil {
			a.err = wrapErr("loading notice", msg.err)
			debuglog.Errorf("loading notice %s: %v", msg.entityID, msg.err)
			return a, nil
		}
		a.images = msg.images
		a.viewport.SetContent(msg.content)
		a.viewport.GotoTop()
		return a, nil

	case savedToggledMsg:
		if msg.err != nil {
			a.err = msg.err
			return a, nil
		}
		name := msg.notice.DisplayName()
		if msg.saved {
			a.setStatus(MsgSaved(name), StatusSuccess)
		} else {
			a.setStatus(MsgUnsaved(name), StatusInfo)
		}
		a.markSaved(msg.notice.EntityID, msg.saved)
		if a.view == ViewSaved {
			return a, a.loadSaved(a.savedFilter.Value())
		}
		return a, nil

	case savedLoadedMsg:
		if a.view != ViewSaved || msg.filter != a.savedFilter.Value() {
			return a, nil
		}
		if msg.err != nil {
			a.err = wrapErr("loading saved notices", msg.err)
			return a, nil
		}
		items := make([]list.Item, 0, len(msg.items))
		for _, s := range msg.items {
			if s.Notice != nil {
				items = append(items, savedItem{saved: s})
			}
		}
		a.savedList.SetItems(items)
		if len(items) == 0 {
			a.setStatus(MsgNoSaved, StatusInfo)
		} else {
			a.setStatus(MsgResultsCount(len(items)), StatusInfo)
		}
		return a, nil

	case historyLoadedMsg:
		if msg.err != nil {
			a.err = wrapErr("loading history", msg.err)
			return a, nil
		}
		now := a.now()
		items := make([]list.Item, len(msg.entries))
		for i, e := range msg.entries {
			items[i] = historyItem{entry: e, now: now}
		}
		a.historyList.SetItems(items)
		if len(items) == 0 {
			a.setStatus(MsgNoHistory, StatusInfo)
		}
		return a, nil

	case historyClearedMsg:
		if msg.err != nil {
			a.err = wrapErr("clearing history", msg.err)
			return a, nil
		}
		a.historyList.SetItems([]list.Item{})
		a.setStatus(MsgHistoryCleared, StatusSuccess)
		return a, nil

	case spinner.TickMsg:
		if a.loading || a.loadingProfile {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case statusMsg:
		a.setStatus(msg.text, msg.kind)
		return a, nil

	case errorMsg:
		a.err = msg.err
		return a, nil
	}

	// Cursor blink and other widget messages.
	var cmd tea.Cmd
	switch a.view {
	case ViewSearch:
		a.searchInput, cmd = a.searchInput.Update(msg)
	case ViewSaved:
		a.savedInput, cmd = a.savedInput.Update(msg)
	case ViewDetail:
		a.viewport, cmd = a.viewport.Update(msg)
	}
	return a, cmd
}

func (a *App) resize(width, height int) {
	a.width = width
	a.height = height

	listHeight := height - 9
	if listHeight < 5 {
		listHeight = 5
	}
	a.resultList.SetSize(width, listHeight)
	a.savedList.SetSize(width, listHeight)
	a.historyList.SetSize(width, height-3)

	a.viewport.Width = width
	a.viewport.Height = height - 3

	inputWidth := width - 8
	if inputWidth < 10 {
		inputWidth = width - 4
	}
	a.searchInput.Width = inputWidth
	a.savedInput.Width = inputWidth
}

// setQuery feeds raw input text into the query debouncer.
func (a *App) setQuery(raw string) tea.Cmd {
	return a.query.Set(validation.SanitizeQuery(raw))
}

// onQueryChanged runs when the debounced query settles on a new value.
// An empty query leaves the current results alone.
func (a *App) onQueryChanged(q string) tea.Cmd {
	if q == "" {
		return nil
	}
	return a.startSearch(q)
}

// startSearch supersedes any in-flight request, clears the result set and
// issues one request for q.
func (a *App) startSearch(q string) tea.Cmd {
	if a.cancelSearch != nil {
		a.cancelSearch()
	}
	a.searchGen++
	ctx, cancel := context.WithCancel(context.Background())
	a.cancelSearch = cancel

	a.loading = true
	a.err = nil
	a.status = ""
	a.setResults(nil)

	debuglog.WithFields(debuglog.Fields{"gen": a.searchGen, "query": q}).Debugf("search started")
	return tea.Batch(a.spinner.Tick, a.fetchResults(ctx, a.searchGen, q))
}

func (a *App) handleSearchResults(msg searchResultsMsg) tea.Cmd {
	if msg.gen != a.searchGen {
		debuglog.WithFields(debuglog.Fields{"gen": msg.gen, "current": a.searchGen, "query": msg.query}).Debugf("dropping stale search response")
		return nil
	}

	a.loading = false
	if a.cancelSearch != nil {
		a.cancelSearch()
		a.cancelSearch = nil
	}

	if msg.err != nil {
		if errors.Is(msg.err, context.Canceled) {
			return nil
		}
		debuglog.WithFields(debuglog.Fields{"gen": msg.gen, "query": msg.query}).Errorf("search failed: %v", msg.err)
		a.err = wrapErr("search failed", msg.err)
		return nil
	}

	a.setResults(msg.page.Notices())
	if len(a.results) == 0 {
		a.setStatus(MsgNoResults, StatusInfo)
	} else {
		a.setStatus(MsgResultsCount(len(a.results)), StatusInfo)
	}
	return a.recordHistory(msg.query, len(a.results))
}

// setResults replaces the result set, dropping repeated entity ids.
func (a *App) setResults(notices []*notice.Notice) {
	seen := make(map[string]bool, len(notices))
	a.results = make([]*notice.Notice, 0, len(notices))
	items := make([]list.Item, 0, len(notices))
	for _, n := range notices {
		if n == nil || (n.EntityID != "" && seen[n.EntityID]) {
			continue
		}
		seen[n.EntityID] = true
		a.results = append(a.results, n)
		items = append(items, noticeItem{notice: n, saved: a.isSaved(n.EntityID)})
	}
	a.resultList.SetItems(items)
	a.resultList.ResetSelected()
}

func (a *App) isSaved(id string) bool {
	return id != "" && a.store.IsSaved(id)
}

func (a *App) markSaved(id string, saved bool) {
	for i, item := range a.resultList.Items() {
		if ni, ok := item.(noticeItem); ok && ni.ID() == id {
			ni.saved = saved
			a.resultList.SetItem(i, ni)
		}
	}
}

// stopSearch tears down the search view's pending work.
func (a *App) stopSearch() {
	a.query.Stop()
}

// resumeSearch re-arms the debouncer when input typed before leaving the
// view never settled.
func (a *App) resumeSearch() tea.Cmd {
	a.view = ViewSearch
	a.searchInput.Focus()
	if a.query.Input() != a.query.Value() {
		return a.query.Set(a.query.Input())
	}
	return nil
}

// shutdown cancels everything in flight before the program exits.
func (a *App) shutdown() {
	a.query.Stop()
	a.savedFilter.Stop()
	if a.cancelSearch != nil {
		a.cancelSearch()
	}
	a.stopProfile()
}

// stopProfile cancels the detail request in flight and invalidates its
// response.
func (a *App) stopProfile() {
	if a.cancelProfile != nil {
		a.cancelProfile()
		a.cancelProfile = nil
	}
	a.profileGen++
	a.loadingProfile = false
}

func (a *App) selectedNotice() *notice.Notice {
	switch a.view {
	case ViewSearch:
		if i, ok := a.resultList.SelectedItem().(noticeItem); ok {
			return i.notice
		}
	case ViewSaved:
		if i, ok := a.savedList.SelectedItem().(savedItem); ok {
			return i.saved.Notice
		}
	case ViewDetail:
		return a.current
	}
	return nil
}

func (a *App) View() string {
	bodyHeight := a.height - 3
	if bodyHeight < 0 {
		bodyHeight = 0
	}

	var content string
	switch a.view {
	case ViewSearch:
		content = a.searchView(bodyHeight)
	case ViewDetail:
		if a.loadingProfile {
			content = renderCentered(a.width, bodyHeight, a.spinner.View()+" "+renderMuted(MsgLoadingProfile))
		} else {
			content = a.viewport.View()
		}
	case ViewSaved:
		content = ContentWrapper(a.width, bodyHeight).Render(lipgloss.JoinVertical(
			lipgloss.Top,
			renderHeader("› saved notices", "", a.width),
			"",
			renderInputFrame(a.savedInput.View(), a.savedInput.Focused(), a.savedInput.Width),
			"",
			a.savedList.View(),
		))
	case ViewHistory:
		content = a.historyList.View()
	}

	status := a.statusBar()
	separatorWidth := a.width - 2
	if separatorWidth < 0 {
		separatorWidth = 0
	}
	separator := SeparatorStyle.Render("─" + strings.Repeat("─", separatorWidth))
	return lipgloss.JoinVertical(lipgloss.Top, content, separator, status)
}

func (a *App) searchView(height int) string {
	var help string
	switch {
	case a.searchInput.Focused():
		help = "Type to search • Tab/↓: results • Enter: open first • Esc: quit"
	case len(a.resultList.Items()) > 0:
		help = "↑↓: navigate • Enter: open • Tab: search box • Esc: back"
	default:
		help = "Tab: search box • Esc: back"
	}

	var body string
	switch {
	case a.loading:
		body = a.spinner.View() + " " + MsgLoading
	case len(a.results) == 0 && a.query.Value() == "":
		body = renderCentered(a.width, height-6, GetWelcomeMessage())
	default:
		body = a.resultList.View()
	}

	return ContentWrapper(a.width, height).Render(lipgloss.JoinVertical(
		lipgloss.Top,
		renderHeader("› red notices", fmt.Sprintf("%s • %s", AppName, a.config.API.BaseURL), a.width),
		"",
		renderInputFrame(a.searchInput.View(), a.searchInput.Focused(), a.searchInput.Width),
		renderHelp(help),
		"",
		body,
	))
}

func (a *App) statusBar() string {
	bar := lipgloss.NewStyle().Width(a.width).Padding(0, 1)

	if a.err != nil {
		return bar.Render(StatusErrorStyle.Render(fmt.Sprintf("✗ %v", a.err)))
	}

	parts := []string{}
	if a.status != "" {
		parts = append(parts, a.statusKind.style().Render(a.status))
	}
	if commands := a.keyHandler.GetHelpForCurrentView(); len(commands) > 0 {
		parts = append(parts, renderMuted(strings.Join(commands, " • ")))
	}
	return bar.Render(strings.Join(parts, renderMuted(" │ ")))
}
