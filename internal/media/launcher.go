package media

import (
	"fmt"
	"os/exec"
	"path/filepath"

	"github.com/pders01/redlist/internal/config"
	"github.com/pders01/redlist/internal/debuglog"
	"github.com/pders01/redlist/internal/validation"
)

// Launcher opens notice images in an external viewer.
type Launcher struct {
	viewer        string
	defaultOpener string
	registry      *ViewerRegistry
	validator     *validation.LinkValidator

	start func(*exec.Cmd) error
}

func NewLauncher(cfg *config.Config) *Launcher {
	registry, err := NewViewerRegistry()
	if err != nil {
		debuglog.Warnf("viewer definitions unavailable: %v", err)
		registry = &ViewerRegistry{viewers: make(map[string]ViewerDefinition)}
	}
	if err := registry.LoadOverrides(filepath.Join(config.ConfigDir(), "viewers.toml")); err != nil {
		debuglog.Warnf("ignoring viewer overrides: %v", err)
	}

	defaultOpener := cfg.Media.DefaultOpener
	if defaultOpener == "" {
		defaultOpener = config.DefaultOpener()
	}

	l := &Launcher{
		defaultOpener: defaultOpener,
		registry:      registry,
		validator:     validation.NewLinkValidator(),
		start:         startDetached,
	}
	l.viewer = findCommand(cfg.Media.ImageViewers()...)
	if l.viewer == "" {
		l.viewer = defaultOpener
	}
	return l
}

// Viewer reports the program used for images.
func (l *Launcher) Viewer() string {
	return l.viewer
}

// OpenImage validates url and shows it in the image viewer.
func (l *Launcher) OpenImage(url string) error {
	link, err := l.validator.Validate(url)
	if err != nil {
		return fmt.Errorf("refusing to open image: %w", err)
	}
	if l.viewer == "" {
		return fmt.Errorf("no image viewer found")
	}

	cmd, err := l.registry.Command(l.viewer, link)
	if err != nil {
		debuglog.Debugf("viewer %s unusable, falling back to %s: %v", l.viewer, l.defaultOpener, err)
		cmd = exec.Command(l.defaultOpener, link)
	}

	if err := l.start(cmd); err != nil {
		return fmt.Errorf("failed to start %s: %w", l.viewer, err)
	}
	debuglog.WithFields(debuglog.Fields{"viewer": l.viewer, "url": link}).Infof("opened image")
	return nil
}

// startDetached starts GUI applications without waiting for them to exit.
func startDetached(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}

func findCommand(commands ...string) string {
	for _, cmd := range commands {
		if _, err := exec.LookPath(cmd); err == nil {
			return cmd
		}
	}
	return ""
}
