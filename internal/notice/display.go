package notice

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DisplayName returns forename and name joined, title-cased from the
// upper-case form the API uses.
func (n *Notice) DisplayName() string {
	return displayName(n.Forename, n.Name)
}

// DisplayName returns forename and name joined, title-cased.
func (d *Detail) DisplayName() string {
	return displayName(d.Forename, d.Name)
}

// displayName builds its own Caser per call; a Caser keeps state between
// calls and cannot be shared across goroutines.
func displayName(forename, name string) string {
	caser := cases.Title(language.English)
	parts := make([]string, 0, 2)
	for _, p := range []string{forename, name} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, caser.String(strings.ToLower(p)))
		}
	}
	return strings.Join(parts, " ")
}

// ThumbnailURL returns the thumbnail href, or "" when the notice has none.
func (n *Notice) ThumbnailURL() string {
	if n.Links.Thumbnail == nil {
		return ""
	}
	return n.Links.Thumbnail.Href
}

// SelfURL returns the detail href, or "".
func (n *Notice) SelfURL() string {
	if n.Links.Self == nil {
		return ""
	}
	return n.Links.Self.Href
}

// ImagesURL returns the images href, or "".
func (n *Notice) ImagesURL() string {
	if n.Links.Images == nil {
		return ""
	}
	return n.Links.Images.Href
}

// BirthDate parses date_of_birth, which the API sends as YYYY/MM/DD or
// as a bare year when day and month are unknown.
func BirthDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse("2006/01/02", s); err == nil {
		return t, true
	}
	if len(s) == 4 {
		if y, err := strconv.Atoi(s); err == nil {
			return time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// Age returns the age in whole years at now, or -1 when the birth date
// is unknown.
func (n *Notice) Age(now time.Time) int {
	return ageAt(n.DateOfBirth, now)
}

// Age returns the age in whole years at now, or -1 when unknown.
func (d *Detail) Age(now time.Time) int {
	return ageAt(d.DateOfBirth, now)
}

func ageAt(dob string, now time.Time) int {
	born, ok := BirthDate(dob)
	if !ok {
		return -1
	}
	age := now.Year() - born.Year()
	if now.Month() < born.Month() || (now.Month() == born.Month() && now.Day() < born.Day()) {
		age--
	}
	if age < 0 {
		return -1
	}
	return age
}
