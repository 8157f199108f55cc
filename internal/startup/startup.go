// Package startup registers the application to launch at login.
package startup

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

const windowsRunKey = `HKCU\Software\Microsoft\Windows\CurrentVersion\Run`

// Entry is the login item for one executable.
type Entry struct {
	Name string // shown in autostart managers and used as the registry value
	ID   string // reverse-DNS label for launchd
	Exec string

	GOOS       string
	Home       string
	ConfigHome string // XDG config dir, defaults to Home/.config

	run func(name string, args ...string) ([]byte, error)
}

// New describes a login item for the running executable.
func New(name, id string) (*Entry, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, err
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return &Entry{
		Name:       name,
		ID:         id,
		Exec:       execPath,
		GOOS:       runtime.GOOS,
		Home:       home,
		ConfigHome: os.Getenv("XDG_CONFIG_HOME"),
		run: func(name string, args ...string) ([]byte, error) {
			return exec.Command(name, args...).CombinedOutput()
		},
	}, nil
}

// Apply enables or disables the entry to match on.
func (e *Entry) Apply(on bool) error {
	if e.enabled() == on {
		return nil
	}
	if on {
		return e.enable()
	}
	return e.disable()
}

func (e *Entry) enable() error {
	if e.GOOS == "windows" {
		_, err := e.run("reg", "add", windowsRunKey, "/v", e.Name, "/t", "REG_SZ", "/d", e.Exec, "/f")
		return err
	}

	path, content, err := e.file()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0644)
}

func (e *Entry) disable() error {
	if e.GOOS == "windows" {
		out, err := e.run("reg", "delete", windowsRunKey, "/v", e.Name, "/f")
		if err != nil && !strings.Contains(string(out), "unable to find") {
			return err
		}
		return nil
	}

	path, _, err := e.file()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (e *Entry) enabled() bool {
	if e.GOOS == "windows" {
		_, err := e.run("reg", "query", windowsRunKey, "/v", e.Name)
		return err == nil
	}

	path, _, err := e.file()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// file returns the login item path and its content for file based systems.
func (e *Entry) file() (string, string, error) {
	switch e.GOOS {
	case "darwin":
		path := filepath.Join(e.Home, "Library", "LaunchAgents", e.ID+".plist")
		return path, fmt.Sprintf(plistTemplate, e.ID, e.Exec), nil
	case "linux", "freebsd", "openbsd", "netbsd":
		dir := e.ConfigHome
		if dir == "" {
			dir = filepath.Join(e.Home, ".config")
		}
		path := filepath.Join(dir, "autostart", e.ID+".desktop")
		return path, fmt.Sprintf(desktopTemplate, e.Name, e.Exec), nil
	default:
		return "", "", fmt.Errorf("unsupported platform: %s", e.GOOS)
	}
}

const plistTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
    <key>Label</key>
    <string>%s</string>
    <key>ProgramArguments</key>
    <array>
        <string>%s</string>
    </array>
    <key>RunAtLoad</key>
    <true/>
</dict>
</plist>
`

const desktopTemplate = `[Desktop Entry]
Type=Application
Name=%s
Exec="%s"
Hidden=false
X-GNOME-Autostart-enabled=true
`
