package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/redlist/internal/config"
	"github.com/pders01/redlist/internal/notice"
	"github.com/pders01/redlist/internal/storage"
)

const searchResponse = `{
  "total": 1,
  "_embedded": {"notices": [{
    "forename": "JOHN",
    "name": "DOE",
    "date_of_birth": "1980/04/02",
    "entity_id": "2019/12345",
    "nationalities": ["US", "FR"],
    "_links": {
      "self": {"href": "https://example.test/notices/v1/red/2019-12345"},
      "thumbnail": {"href": "https://example.test/notices/v1/red/2019-12345/images/1"}
    }
  }]}
}`

// execute runs the root command with fresh flag state and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	configPath, dbPath, logLevel, quiet = "", "", "", false
	outputFormat, searchPage, perPage = "table", 0, 0
	exportPath = ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeConfig(t *testing.T, baseURL string) (cfgPath, dbFile string) {
	t.Helper()
	dir := t.TempDir()
	cfgPath = filepath.Join(dir, "config.toml")
	dbFile = filepath.Join(dir, "redlist.db")
	content := fmt.Sprintf(`[api]
base_url = %q
max_retries = 0

[database]
path = %q
search_index = ""

[log]
level = "off"
`, baseURL, dbFile)
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o644))
	return cfgPath, dbFile
}

func newSearchServer(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()
	var queries []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.RawQuery)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, searchResponse)
	}))
	t.Cleanup(srv.Close)
	return srv, &queries
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "redlist "+Version)
	assert.Contains(t, out, "Red notice search")
}

func TestGenerateConfigCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	out, err := execute(t, "--config", path, "generate-config")
	require.NoError(t, err)
	assert.Contains(t, out, "Generated default configuration at: "+path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 200, cfg.API.ResultPerPage)
	assert.Equal(t, 500*time.Millisecond, cfg.Search.Debounce)
}

func TestSearchCommand_JSON(t *testing.T) {
	srv, queries := newSearchServer(t)
	cfgPath, _ := writeConfig(t, srv.URL)

	out, err := execute(t, "--config", cfgPath, "search", "john", "--output", "json", "--per-page", "50")
	require.NoError(t, err)

	var got searchOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "john", got.Query)
	assert.Equal(t, 1, got.Total)
	require.Len(t, got.Notices, 1)
	assert.Equal(t, "2019/12345", got.Notices[0].EntityID)
	assert.Equal(t, "John Doe", got.Notices[0].Name)
	assert.Equal(t, []string{"US", "FR"}, got.Notices[0].Nationalities)

	require.Len(t, *queries, 1)
	assert.Contains(t, (*queries)[0], "forename=john")
	assert.Contains(t, (*queries)[0], "resultPerPage=50")
}

func TestSearchCommand_YAML(t *testing.T) {
	srv, _ := newSearchServer(t)
	cfgPath, _ := writeConfig(t, srv.URL)

	out, err := execute(t, "--config", cfgPath, "search", "john", "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "query: john")
	assert.Contains(t, out, "entity_id: 2019/12345")
	assert.Contains(t, out, "name: John Doe")
}

func TestSearchCommand_Table(t *testing.T) {
	srv, _ := newSearchServer(t)
	cfgPath, _ := writeConfig(t, srv.URL)

	out, err := execute(t, "--config", cfgPath, "search", "john")
	require.NoError(t, err)
	assert.Contains(t, out, "ENTITY ID")
	assert.Contains(t, out, "John Doe")
	assert.Contains(t, out, "US, FR")
	assert.Contains(t, out, `1 of 1 notice(s) for "john"`)
}

func TestSearchCommand_Errors(t *testing.T) {
	_, err := execute(t, "search", "john", "-o", "xml")
	assert.ErrorContains(t, err, "unknown output format")

	_, err = execute(t, "search", "   ")
	assert.ErrorContains(t, err, "forename must not be empty")

	_, err = execute(t, "search")
	assert.Error(t, err)
}

func TestExportCommand(t *testing.T) {
	cfgPath, dbFile := writeConfig(t, "http://127.0.0.1:0")

	store, err := storage.NewStore(dbFile, time.Second)
	require.NoError(t, err)
	_, err = store.SaveNotice(&notice.Notice{
		EntityID:      "2019/12345",
		Forename:      "JOHN",
		Name:          "DOE",
		DateOfBirth:   "1980/04/02",
		Nationalities: []string{"US"},
	})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	out, err := execute(t, "--config", cfgPath, "export")
	require.NoError(t, err)
	assert.Contains(t, out, "# Saved red notices")
	assert.Contains(t, out, "2019/12345")
	assert.Contains(t, out, "John Doe")

	file := filepath.Join(t.TempDir(), "saved.md")
	out, err = execute(t, "--config", cfgPath, "export", "-o", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 1 notice(s) to "+file)

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "2019/12345")
}

func TestSavedToNotices(t *testing.T) {
	n := &notice.Notice{EntityID: "2019/1"}
	got := savedToNotices([]*storage.SavedNotice{{Notice: n}, {Notice: nil}})
	assert.Equal(t, []*notice.Notice{n}, got)
}
