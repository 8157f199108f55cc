// Package qlcplus finds and launches the QLC+ lighting software.
package qlcplus

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"
)

// ProjectExt is the extension of QLC+ workspace files.
const ProjectExt = ".qxw"

var (
	ErrNoProject        = errors.New("no QLC+ project file found")
	ErrAmbiguousProject = errors.New("more than one QLC+ project file found")
)

// Launcher starts QLC+ with the show project in live mode.
type Launcher struct {
	Executable string
	// ProjectDir is searched (non-recursively) for the project file.
	ProjectDir string
	Log        *log.Logger

	// running reports whether QLC+ is already up; replaced in tests.
	running func(executable string) bool
	start   func(name string, args ...string) error
}

// NewLauncher looks for projects in the user's Documents folder.
func NewLauncher(executable string, logger *log.Logger) *Launcher {
	dir := ""
	if home, err := os.UserHomeDir(); err == nil {
		dir = filepath.Join(home, "Documents")
	}
	return &Launcher{
		Executable: executable,
		ProjectDir: dir,
		Log:        logger,
		running:    IsRunning,
		start:      startDetached,
	}
}

// Ensure starts QLC+ unless it is already running.
func (l *Launcher) Ensure() error {
	if l.running(l.Executable) {
		l.Log.Debug("QLC+ already running")
		return nil
	}
	project, err := FindProjectFile(l.ProjectDir)
	if err != nil {
		return err
	}
	l.Log.Info("starting QLC+", "project", project)
	return l.start(l.Executable, "--open", project, "--operate")
}

// FindProjectFile returns the single project file directly inside dir.
func FindProjectFile(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", dir, err)
	}

	var found []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ProjectExt) {
			continue
		}
		found = append(found, filepath.Join(dir, e.Name()))
	}

	switch len(found) {
	case 0:
		return "", fmt.Errorf("%w in %s", ErrNoProject, dir)
	case 1:
		return found[0], nil
	default:
		return "", fmt.Errorf("%w in %s: %d files", ErrAmbiguousProject, dir, len(found))
	}
}

// IsRunning checks the process table for the executable's image name.
func IsRunning(executable string) bool {
	image := executable
	if i := strings.LastIndexAny(image, `\/`); i >= 0 {
		image = image[i+1:]
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("tasklist", "/FI", "IMAGENAME eq "+image, "/NH")
	default:
		cmd = exec.Command("pgrep", "-x", strings.TrimSuffix(image, ".exe"))
	}

	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(stdout.String()), strings.ToLower(strings.TrimSuffix(image, ".exe")))
}

// startDetached launches the process without waiting for it. It keeps
// running after this program exits.
func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", name, err)
	}
	return cmd.Process.Release()
}
