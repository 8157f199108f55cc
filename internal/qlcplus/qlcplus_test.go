package qlcplus

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, nil, 0644))
}

func TestFindProjectFile(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "notes.txt"))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "old"), 0755))
	touch(t, filepath.Join(dir, "old", "archived.qxw"))

	_, err := FindProjectFile(dir)
	assert.ErrorIs(t, err, ErrNoProject)

	touch(t, filepath.Join(dir, "Show.qxw"))
	got, err := FindProjectFile(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Show.qxw"), got)

	touch(t, filepath.Join(dir, "Rehearsal.QXW"))
	_, err = FindProjectFile(dir)
	assert.ErrorIs(t, err, ErrAmbiguousProject)
}

func TestFindProjectFile_MissingDir(t *testing.T) {
	_, err := FindProjectFile(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestEnsure(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "Show.qxw"))

	var started []string
	l := &Launcher{
		Executable: `C:\QLC+5\qlcplus.exe`,
		ProjectDir: dir,
		Log:        log.New(io.Discard),
		running:    func(string) bool { return false },
		start: func(name string, args ...string) error {
			started = append([]string{name}, args...)
			return nil
		},
	}

	require.NoError(t, l.Ensure())
	assert.Equal(t, []string{`C:\QLC+5\qlcplus.exe`, "--open", filepath.Join(dir, "Show.qxw"), "--operate"}, started)

	started = nil
	l.running = func(string) bool { return true }
	require.NoError(t, l.Ensure())
	assert.Nil(t, started)
}

func TestEnsure_NoProject(t *testing.T) {
	l := &Launcher{
		ProjectDir: t.TempDir(),
		Log:        log.New(io.Discard),
		running:    func(string) bool { return false },
		start:      func(string, ...string) error { t.Fatal("must not start"); return nil },
	}
	assert.ErrorIs(t, l.Ensure(), ErrNoProject)
}
