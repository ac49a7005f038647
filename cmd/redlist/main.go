// Command redlist searches the public red notice list from the terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pders01/redlist/internal/config"
	"github.com/pders01/redlist/internal/debuglog"
	"github.com/pders01/redlist/internal/search"
	"github.com/pders01/redlist/internal/storage"
	"github.com/pders01/redlist/internal/tui"
)

// Version is the version of the application, set at build time
var Version = "dev"

var (
	configPath string
	dbPath     string
	logLevel   string
	quiet      bool
)

var rootCmd = &cobra.Command{
	Use:   "redlist",
	Short: "Search red notices from the terminal",
	Long: `redlist searches the public red notice list by forename as you type.

Results can be opened for the full record, saved locally and filtered
offline. Recent searches are kept for quick reruns.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to configuration file (default: "+config.DefaultConfigFile()+")")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to database file (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: off, error, warn, info, debug (overrides config)")
	rootCmd.Flags().BoolVar(&quiet, "quiet", false, "skip startup banner")
}

// loadConfig applies command line overrides on top of the config file and
// starts logging.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if dbPath != "" {
		cfg.Database.Path = config.ExpandPath(dbPath)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := debuglog.Setup(debuglog.ParseLogLevel(cfg.Log.Level), cfg.Log.File); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openStorage opens the database and the saved notice index, rebuilding
// the index from the database so the two agree.
func openStorage(cfg *config.Config) (*storage.Store, *search.Index, error) {
	store, err := storage.NewStore(cfg.Database.Path, cfg.Database.Timeout)
	if err != nil {
		return nil, nil, err
	}

	index, err := search.Open(cfg.Database.SearchIndex)
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("opening search index: %w", err)
	}

	saved, err := store.SavedNotices()
	if err != nil {
		index.Close()
		store.Close()
		return nil, nil, err
	}
	if err := index.Rebuild(savedToNotices(saved)); err != nil {
		debuglog.Warnf("rebuilding search index: %v", err)
	}

	return store, index, nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer debuglog.Close()

	if !quiet {
		tui.ShowBanner(Version)
	}

	store, index, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	defer index.Close()

	tui.ApplyTheme(cfg.UI.Colors)
	app, err := tui.NewApp(store, index, cfg)
	if err != nil {
		return err
	}

	debuglog.Infof("starting %s %s against %s", config.AppName, Version, cfg.API.BaseURL)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running ui: %w", err)
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
