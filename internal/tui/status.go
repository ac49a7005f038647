package tui

import (
	"fmt"
)

// Canonical short status messages used across the app.
const (
	MsgLoading        = "Loading..."
	MsgLoadingProfile = "Loading notice…"
	MsgNoResults      = "No results"
	MsgNoThumbnail    = "No image for this notice"
	MsgNoSelection    = "Nothing selected"
	MsgHistoryCleared = "History cleared"
	MsgNoHistory      = "No searches yet"
	MsgNoSaved        = "No saved notices"
	MsgImageOpened    = "Opened image"
)

func MsgResultsCount(n int) string {
	if n == 1 {
		return "1 result"
	}
	return fmt.Sprintf("%d results", n)
}

func MsgSaved(name string) string {
	return fmt.Sprintf("Saved %s", name)
}

func MsgUnsaved(name string) string {
	return fmt.Sprintf("Removed %s from saved", name)
}

// setStatus replaces the transient status line. The error slot is separate
// and is cleared here so the newest message wins.
func (a *App) setStatus(text string, kind StatusKind) {
	a.status = text
	a.statusKind = kind
	if kind != StatusError {
		a.err = nil
	}
}
