package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pders01/redlist/internal/debuglog"
	"github.com/pders01/redlist/internal/interpol"
	"github.com/pders01/redlist/internal/notice"
	"github.com/pders01/redlist/internal/validation"
)

var (
	outputFormat string
	searchPage   int
	perPage      int
)

// noticeRecord is the flattened notice written by the json and yaml outputs.
type noticeRecord struct {
	EntityID      string   `json:"entity_id" yaml:"entity_id"`
	Name          string   `json:"name" yaml:"name"`
	DateOfBirth   string   `json:"date_of_birth,omitempty" yaml:"date_of_birth,omitempty"`
	Nationalities []string `json:"nationalities,omitempty" yaml:"nationalities,omitempty"`
	Thumbnail     string   `json:"thumbnail,omitempty" yaml:"thumbnail,omitempty"`
	Self          string   `json:"self,omitempty" yaml:"self,omitempty"`
}

type searchOutput struct {
	Query   string         `json:"query" yaml:"query"`
	Total   int            `json:"total" yaml:"total"`
	Notices []noticeRecord `json:"notices" yaml:"notices"`
}

var searchCmd = &cobra.Command{
	Use:   "search <forename>",
	Short: "Search red notices once and print the results",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "output format: table, json, yaml")
	searchCmd.Flags().IntVar(&searchPage, "page", 0, "result page to fetch")
	searchCmd.Flags().IntVar(&perPage, "per-page", 0, "results per page (default from config)")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := validation.SanitizeQuery(strings.Join(args, " "))
	if query == "" {
		return fmt.Errorf("forename must not be empty")
	}

	switch outputFormat {
	case "table", "json", "yaml":
	default:
		return fmt.Errorf("unknown output format %q", outputFormat)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer debuglog.Close()

	client, err := interpol.NewClient(cfg)
	if err != nil {
		return err
	}

	page, err := client.SearchRed(cmd.Context(), interpol.Query{
		Forename:      query,
		Page:          searchPage,
		ResultPerPage: perPage,
	})
	if err != nil {
		return fmt.Errorf("searching %q: %w", query, err)
	}

	return writeResults(cmd.OutOrStdout(), outputFormat, query, page)
}

func writeResults(w io.Writer, format, query string, page *notice.Page) error {
	notices := page.Notices()
	out := searchOutput{Query: query, Total: page.Total, Notices: make([]noticeRecord, 0, len(notices))}
	for _, n := range notices {
		out.Notices = append(out.Notices, noticeRecord{
			EntityID:      n.EntityID,
			Name:          n.DisplayName(),
			DateOfBirth:   n.DateOfBirth,
			Nationalities: n.Nationalities,
			Thumbnail:     n.ThumbnailURL(),
			Self:          n.SelfURL(),
		})
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return err
		}
		return enc.Close()
	default:
		return writeTable(w, out)
	}
}

func writeTable(w io.Writer, out searchOutput) error {
	if len(out.Notices) == 0 {
		_, err := fmt.Fprintf(w, "No red notices found for %q.\n", out.Query)
		return err
	}

	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ENTITY ID", "NAME", "BIRTH", "NATIONALITIES").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})
	for _, n := range out.Notices {
		t.Row(n.EntityID, n.Name, orDash(n.DateOfBirth), orDash(strings.Join(n.Nationalities, ", ")))
	}

	_, err := fmt.Fprintf(w, "%s\n%d of %d notice(s) for %q\n", t.String(), len(out.Notices), out.Total, out.Query)
	return err
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
