package tray

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"

	"github.com/baustella/light-control/internal/bridge"
)

// Callbacks for tray menu actions
type Callbacks struct {
	OnOpen  func()
	OnStart func()
	OnStop  func()
	OnQuit  func()

	// OnStartupToggle receives the requested login item state and reports
	// whether it was applied. A nil callback hides the menu item.
	OnStartupToggle func(enabled bool) bool
}

// Tray is the system tray menu. It is nil-safe when the driver has no tray.
type Tray struct {
	menu      *fyne.Menu
	startItem *fyne.MenuItem
	stopItem  *fyne.MenuItem
	desk      desktop.App
}

func call(fn func()) func() {
	return func() {
		if fn != nil {
			fn()
		}
	}
}

// Setup initializes the system tray using Fyne's built-in support.
// openAtStartup is the initial check state of the login item entry.
func Setup(app fyne.App, callbacks Callbacks, openAtStartup bool) *Tray {
	// Check if we're running as a desktop app
	desk, ok := app.(desktop.App)
	if !ok {
		return nil
	}

	t := &Tray{desk: desk}
	openItem := fyne.NewMenuItem("Open Baustella Light Control", call(callbacks.OnOpen))
	t.startItem = fyne.NewMenuItem("Start", call(callbacks.OnStart))
	t.startItem.Icon = theme.MediaPlayIcon()
	t.stopItem = fyne.NewMenuItem("Stop", call(callbacks.OnStop))
	t.stopItem.Icon = theme.MediaStopIcon()
	quitItem := fyne.NewMenuItem("Quit", call(callbacks.OnQuit))
	quitItem.IsQuit = true

	items := []*fyne.MenuItem{
		openItem,
		fyne.NewMenuItemSeparator(),
		t.startItem,
		t.stopItem,
		fyne.NewMenuItemSeparator(),
	}
	if callbacks.OnStartupToggle != nil {
		startupItem := fyne.NewMenuItem("Open at Startup", nil)
		startupItem.Checked = openAtStartup
		startupItem.Action = func() {
			if callbacks.OnStartupToggle(!startupItem.Checked) {
				startupItem.Checked = !startupItem.Checked
				t.menu.Refresh()
			}
		}
		items = append(items, startupItem, fyne.NewMenuItemSeparator())
	}
	items = append(items, quitItem)
	t.menu = fyne.NewMenu("Baustella Light Control", items...)

	desk.SetSystemTrayMenu(t.menu)
	t.SetStatus(bridge.StatusReady)
	return t
}

// SetStatus updates the icon and menu. Call it on the fyne goroutine.
func (t *Tray) SetStatus(s bridge.Status) {
	if t == nil {
		return
	}
	started := s == bridge.StatusStarted
	t.startItem.Disabled = started
	t.stopItem.Disabled = !started

	switch s {
	case bridge.StatusStarted:
		t.desk.SetSystemTrayIcon(theme.MediaPlayIcon())
	case bridge.StatusError:
		t.desk.SetSystemTrayIcon(theme.ErrorIcon())
	default:
		t.desk.SetSystemTrayIcon(theme.MediaStopIcon())
	}
	t.menu.Refresh()
}
