// Package hooks runs user scripts after a screenshot is saved.
//
// Layout:
//
//	<hooks_dir>/on_save.d/10-upload.sh
//	<hooks_dir>/on_save.d/20-backup.sh
//
// Every regular, non-hidden, executable file runs in name order with the
// arguments: path width height timestamp.
package hooks

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// OnSave is the event fired after a file is written.
const OnSave = "on_save"

// Runner starts hook scripts without waiting for them.
type Runner struct {
	Dir    string
	Logger *slog.Logger
}

// NewRunner creates a runner for hooksDir. An empty dir disables hooks.
func NewRunner(hooksDir string, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{Dir: hooksDir, Logger: logger}
}

// Scripts returns the executable scripts registered for event, sorted by name.
func (r *Runner) Scripts(event string) ([]string, error) {
	if r == nil || r.Dir == "" {
		return nil, nil
	}
	eventDir := filepath.Join(r.Dir, event+".d")
	entries, err := os.ReadDir(eventDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read hooks dir: %w", err)
	}

	var scripts []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		if info.Mode().Perm()&0o111 == 0 {
			r.Logger.Debug("skipping non-executable hook", "path", filepath.Join(eventDir, name))
			continue
		}
		scripts = append(scripts, filepath.Join(eventDir, name))
	}
	sort.Strings(scripts)
	return scripts, nil
}

// Run starts every script for event with args. It returns the started
// processes so callers may wait; failures to start are logged and skipped.
func (r *Runner) Run(event string, args ...string) []*exec.Cmd {
	scripts, err := r.Scripts(event)
	if err != nil {
		r.Logger.Warn("hooks unavailable", "event", event, "error", err)
		return nil
	}

	var started []*exec.Cmd
	for _, script := range scripts {
		cmd := exec.Command(script, args...)
		if err := cmd.Start(); err != nil {
			r.Logger.Warn("hook failed to start", "hook", filepath.Base(script), "error", err)
			continue
		}
		r.Logger.Debug("hook started", "hook", filepath.Base(script))
		started = append(started, cmd)
	}
	return started
}

// NotifySave fires the on_save hooks for a saved file.
func (r *Runner) NotifySave(path string, width, height int, timestamp string) []*exec.Cmd {
	return r.Run(OnSave, path, strconv.Itoa(width), strconv.Itoa(height), timestamp)
}

// Contract describes the hook interface for `hooks contract`.
type Contract struct {
	Event     string   `json:"event"`
	Directory string   `json:"directory"`
	Args      []string `json:"args"`
	Order     string   `json:"order"`
	Blocking  bool     `json:"blocking"`
}

// Contracts lists every hook event.
func Contracts(hooksDir string) []Contract {
	return []Contract{{
		Event:     OnSave,
		Directory: filepath.Join(hooksDir, OnSave+".d"),
		Args:      []string{"path", "width", "height", "timestamp"},
		Order:     "lexical by file name; hidden and non-executable files are skipped",
		Blocking:  false,
	}}
}
