// Package report renders notices as Markdown, for the detail view and for
// exporting saved notices.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"

	"github.com/pders01/redlist/internal/notice"
	"github.com/pders01/redlist/internal/storage"
)

// WriteProfile writes the full record of a notice and its image links.
// Ages are computed at now.
func WriteProfile(w io.Writer, d *notice.Detail, images []notice.Image, now time.Time) error {
	if d == nil {
		return fmt.Errorf("no notice detail")
	}

	md := markdown.NewMarkdown(w)
	md.H1(orDash(d.DisplayName()))
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Field", "Value"},
		Rows:   profileRows(d, now),
	})
	md.PlainText("")

	md.H2("Arrest warrants")
	md.PlainText("")
	if len(d.ArrestWarrants) == 0 {
		md.PlainText("None listed.")
	} else {
		rows := make([][]string, len(d.ArrestWarrants))
		for i, aw := range d.ArrestWarrants {
			rows[i] = []string{orDash(aw.IssuingCountryID), orDash(oneLine(aw.Charge))}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Issued by", "Charge"},
			Rows:   rows,
		})
	}
	md.PlainText("")

	if d.DistinguishingMarks != "" {
		md.H2("Distinguishing marks")
		md.PlainText("")
		md.PlainText(oneLine(d.DistinguishingMarks))
		md.PlainText("")
	}

	if len(images) > 0 {
		md.H2("Images")
		md.PlainText("")
		links := make([]string, 0, len(images))
		for _, img := range images {
			if u := img.URL(); u != "" {
				links = append(links, markdown.Link(img.PictureID, u))
			}
		}
		md.BulletList(links...)
		md.PlainText("")
	}

	return md.Build()
}

func profileRows(d *notice.Detail, now time.Time) [][]string {
	age := "-"
	if a := d.Age(now); a >= 0 {
		age = strconv.Itoa(a)
	}
	rows := [][]string{
		{"Entity ID", orDash(d.EntityID)},
		{"Date of birth", orDash(d.DateOfBirth)},
		{"Age", age},
		{"Sex", orDash(d.SexID)},
		{"Place of birth", orDash(d.PlaceOfBirth)},
		{"Country of birth", orDash(d.CountryOfBirthID)},
		{"Nationalities", orDash(strings.Join(d.Nationalities, ", "))},
		{"Languages", orDash(strings.Join(d.LanguagesSpokenIDs, ", "))},
		{"Eyes", orDash(strings.Join(d.EyesColorsID, ", "))},
		{"Hair", orDash(strings.Join(d.HairsID, ", "))},
	}
	if d.Height > 0 {
		rows = append(rows, []string{"Height", strconv.FormatFloat(d.Height, 'f', 2, 64) + " m"})
	}
	if d.Weight > 0 {
		rows = append(rows, []string{"Weight", strconv.FormatFloat(d.Weight, 'f', 0, 64) + " kg"})
	}
	return rows
}

// WriteSaved writes an export of saved notices, newest first as given.
func WriteSaved(w io.Writer, saved []*storage.SavedNotice, generated time.Time) error {
	md := markdown.NewMarkdown(w)
	md.H1("Saved red notices")
	md.PlainText("")
	md.PlainTextf("Generated %s, %d notice(s).", generated.Format("2006-01-02 15:04 MST"), len(saved))
	md.PlainText("")

	if len(saved) == 0 {
		md.Note("No notices saved yet.")
		return md.Build()
	}

	rows := make([][]string, 0, len(saved))
	for _, s := range saved {
		n := s.Notice
		if n == nil {
			continue
		}
		rows = append(rows, []string{
			orDash(n.EntityID),
			orDash(n.DisplayName()),
			orDash(n.DateOfBirth),
			orDash(strings.Join(n.Nationalities, ", ")),
			s.SavedAt.Format("2006-01-02"),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Entity ID", "Name", "Birth", "Nationalities", "Saved"},
		Rows:   rows,
	})
	md.PlainText("")

	return md.Build()
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// oneLine keeps free text from breaking table rows.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
