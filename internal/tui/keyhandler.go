package tui

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/redlist/internal/config"
	"github.com/pders01/redlist/internal/validation"
)

type KeyHandler struct {
	app         *App
	config      *config.Config
	modifierKey string
}

func NewKeyHandler(app *App, cfg *config.Config) *KeyHandler {
	modifierKey := cfg.Keys.Modifier + "+"
	return &KeyHandler{app: app, config: cfg, modifierKey: modifierKey}
}

func (kh *KeyHandler) HandleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return kh.quit()
	}

	if model, cmd, handled := kh.handleActionKeys(key); handled {
		return model, cmd
	}

	if kh.isInTextInputMode() {
		return kh.handleTextInputMode(msg)
	}

	switch key {
	case "q":
		return kh.quit()
	case "esc":
		return kh.navigateBack()
	}

	return kh.delegateToCharm(msg)
}

func (kh *KeyHandler) quit() (tea.Model, tea.Cmd) {
	kh.app.shutdown()
	return kh.app, tea.Quit
}

func (kh *KeyHandler) isInTextInputMode() bool {
	switch kh.app.view {
	case ViewSearch:
		return kh.app.searchInput.Focused()
	case ViewSaved:
		return kh.app.savedInput.Focused()
	default:
		return false
	}
}

func (kh *KeyHandler) handleTextInputMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return kh.navigateBack()
	case "enter":
		return kh.handleTextInputEnter()
	case "tab", "down":
		kh.focusList()
		return kh.app, nil
	default:
		return kh.delegateToTextInput(msg)
	}
}

func (kh *KeyHandler) handleTextInputEnter() (tea.Model, tea.Cmd) {
	switch kh.app.view {
	case ViewSearch:
		if items := kh.app.resultList.Items(); len(items) > 0 {
			if i, ok := items[0].(noticeItem); ok {
				return kh.app, kh.app.openProfile(i.notice)
			}
		}
	case ViewSaved:
		if items := kh.app.savedList.Items(); len(items) > 0 {
			if i, ok := items[0].(savedItem); ok {
				return kh.app, kh.app.openProfile(i.saved.Notice)
			}
		}
	}
	return kh.app, nil
}

// delegateToTextInput passes the key to the focused input and schedules a
// debounced update when the text changed.
func (kh *KeyHandler) delegateToTextInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch kh.app.view {
	case ViewSearch:
		prev := kh.app.searchInput.Value()
		kh.app.searchInput, cmd = kh.app.searchInput.Update(msg)
		if v := kh.app.searchInput.Value(); v != prev {
			return kh.app, tea.Batch(cmd, kh.app.setQuery(v))
		}
		return kh.app, cmd

	case ViewSaved:
		prev := kh.app.savedInput.Value()
		kh.app.savedInput, cmd = kh.app.savedInput.Update(msg)
		if v := kh.app.savedInput.Value(); v != prev {
			return kh.app, tea.Batch(cmd, kh.app.savedFilter.Set(validation.SanitizeQuery(v)))
		}
		return kh.app, cmd
	}

	return kh.app, nil
}

func (kh *KeyHandler) focusList() {
	switch kh.app.view {
	case ViewSearch:
		if len(kh.app.resultList.Items()) > 0 {
			kh.app.searchInput.Blur()
			kh.app.resultList.Select(0)
		}
	case ViewSaved:
		if len(kh.app.savedList.Items()) > 0 {
			kh.app.savedInput.Blur()
			kh.app.savedList.Select(0)
		}
	}
}

// handleActionKeys handles modifier actions, which work whether or not an
// input has focus.
func (kh *KeyHandler) handleActionKeys(key string) (tea.Model, tea.Cmd, bool) {
	app := kh.app

	switch key {
	case kh.modifierKey + "o":
		if app.view == ViewHistory {
			return app, nil, false
		}
		return app, app.openImage(app.selectedNotice()), true

	case kh.modifierKey + "s":
		if app.view == ViewHistory {
			return app, nil, false
		}
		return app, app.toggleSave(app.selectedNotice()), true

	case kh.modifierKey + "l":
		if app.view == ViewSaved {
			return app, nil, true
		}
		return app, kh.enterSaved(), true

	case kh.modifierKey + "r":
		if app.view == ViewHistory {
			return app, nil, true
		}
		return app, kh.enterHistory(), true

	case kh.modifierKey + "x":
		if app.view == ViewHistory {
			return app, app.clearHistory(), true
		}
	}

	return app, nil, false
}

// leave tears down the view being left.
func (kh *KeyHandler) leave() {
	switch kh.app.view {
	case ViewSearch:
		kh.app.stopSearch()
	case ViewSaved:
		kh.app.savedFilter.Reset("")
		kh.app.savedInput.Reset()
		kh.app.savedInput.Blur()
	case ViewDetail:
		kh.app.stopProfile()
	}
}

func (kh *KeyHandler) enterSaved() tea.Cmd {
	kh.leave()
	kh.app.view = ViewSaved
	kh.app.savedFilter.Reset("")
	kh.app.savedInput.Reset()
	kh.app.savedList.SetItems([]list.Item{})
	kh.app.savedInput.Focus()
	kh.app.status = ""
	return kh.app.loadSaved("")
}

func (kh *KeyHandler) enterHistory() tea.Cmd {
	kh.leave()
	kh.app.view = ViewHistory
	kh.app.status = ""
	return kh.app.loadHistory()
}

// delegateToCharm lets Charm handle all keys we don't intercept
func (kh *KeyHandler) delegateToCharm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	app := kh.app

	switch app.view {
	case ViewSearch:
		if kh.refocusInput(msg.String(), &app.resultList) {
			app.searchInput.Focus()
			return app, nil
		}
		app.resultList, cmd = app.resultList.Update(msg)
		if msg.String() == "enter" {
			if i, ok := app.resultList.SelectedItem().(noticeItem); ok {
				return app, app.openProfile(i.notice)
			}
		}
		return app, cmd

	case ViewSaved:
		if kh.refocusInput(msg.String(), &app.savedList) {
			app.savedInput.Focus()
			return app, nil
		}
		app.savedList, cmd = app.savedList.Update(msg)
		if msg.String() == "enter" {
			if i, ok := app.savedList.SelectedItem().(savedItem); ok {
				return app, app.openProfile(i.saved.Notice)
			}
		}
		return app, cmd

	case ViewHistory:
		app.historyList, cmd = app.historyList.Update(msg)
		if msg.String() == "enter" {
			if i, ok := app.historyList.SelectedItem().(historyItem); ok {
				return app, kh.rerun(i.entry.Query)
			}
		}
		return app, cmd

	case ViewDetail:
		app.viewport, cmd = app.viewport.Update(msg)
		return app, cmd
	}

	return app, nil
}

func (kh *KeyHandler) refocusInput(key string, l *list.Model) bool {
	switch key {
	case "tab", "shift+tab", "/", "i":
		return true
	case "up":
		return len(l.Items()) == 0 || l.Index() == 0
	}
	return false
}

// rerun runs a query from history right away, bypassing the debounce.
func (kh *KeyHandler) rerun(q string) tea.Cmd {
	app := kh.app
	app.view = ViewSearch
	app.searchInput.SetValue(q)
	app.searchInput.CursorEnd()
	app.searchInput.Focus()
	app.query.Reset(q)
	return app.startSearch(q)
}

// navigateBack implements smart back navigation
func (kh *KeyHandler) navigateBack() (tea.Model, tea.Cmd) {
	app := kh.app

	switch app.view {
	case ViewDetail:
		kh.leave()
		app.current = nil
		if app.previousView == ViewSaved {
			app.view = ViewSaved
			app.savedInput.Blur()
			return app, app.loadSaved(app.savedFilter.Value())
		}
		app.view = ViewSearch
		app.searchInput.Blur()
		if len(app.resultList.Items()) == 0 {
			app.searchInput.Focus()
		}
		return app, nil

	case ViewSaved, ViewHistory:
		kh.leave()
		app.status = ""
		return app, app.resumeSearch()

	case ViewSearch:
		if !app.searchInput.Focused() {
			app.searchInput.Focus()
			return app, nil
		}
		return kh.quit()
	}

	return kh.quit()
}

// GetHelpForCurrentView returns only our custom help text (Charm handles the rest)
func (kh *KeyHandler) GetHelpForCurrentView() []string {
	m := kh.modifierKey
	switch kh.app.view {
	case ViewSearch:
		return []string{m + "s: save", m + "o: image", m + "l: saved", m + "r: history"}
	case ViewDetail:
		return []string{m + "s: save", m + "o: image", "esc: back"}
	case ViewSaved:
		return []string{m + "s: remove", m + "o: image", "esc: back"}
	case ViewHistory:
		return []string{"enter: search", m + "x: clear", "esc: back"}
	default:
		return []string{}
	}
}