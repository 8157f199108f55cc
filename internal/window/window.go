package window

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/charmbracelet/log"

	"github.com/baustella/light-control/internal/bridge"
	"github.com/baustella/light-control/internal/config"
	"github.com/baustella/light-control/internal/midi"
)

// recentCodeLimit caps the "Recent codes" list.
const recentCodeLimit = 50

var statusColors = map[bridge.Status]color.Color{
	bridge.StatusReady:   color.NRGBA{R: 0xFF, G: 0x88, A: 0xFF}, // orange
	bridge.StatusStarted: color.NRGBA{G: 0xC8, A: 0xFF},
	bridge.StatusError:   color.NRGBA{R: 0xE0, A: 0xFF},
}

// PortLister lists the MIDI ports currently present.
type PortLister interface {
	Ports() []midi.PortInfo
}

// MainWindow manages the main application window
type MainWindow struct {
	window fyne.Window
	app    fyne.App
	cfg    *config.Config
	bridge *bridge.Bridge
	ports  PortLister
	log    *log.Logger

	// Control tab
	statusLight *canvas.Circle
	statusLabel *widget.Label
	startBtn    *widget.Button
	stopBtn     *widget.Button
	codeList    *widget.List

	// codes is only touched on the fyne goroutine
	codes []string

	bindingList *widget.List

	// Devices tab
	midiPorts   *widget.Label
	serialPorts *widget.Select

	// OnSerialPortChanged is called after the user picks a different serial port.
	OnSerialPortChanged func(port string)
}

// NewMainWindow creates the main application window
func NewMainWindow(app fyne.App, cfg *config.Config, b *bridge.Bridge, ports PortLister, logger *log.Logger) *MainWindow {
	win := app.NewWindow("Baustella Light Control")

	mw := &MainWindow{
		window: win,
		app:    app,
		cfg:    cfg,
		bridge: b,
		ports:  ports,
		log:    logger,
	}

	mw.setupUI()
	mw.ShowStatus(b.Status())

	win.Resize(fyne.NewSize(560, 420))
	win.CenterOnScreen()

	// Refuse to close while started.
	win.SetCloseIntercept(func() {
		if mw.bridge.Started() {
			dialog.ShowInformation("Still running", "Stop the controller before closing the window.", win)
			return
		}
		win.Hide()
	})

	return mw
}

func (mw *MainWindow) setupUI() {
	controlTab := container.NewTabItem("Control", mw.createControlTab())
	bindingsTab := container.NewTabItem("Bindings", mw.createBindingsTab())
	devicesTab := container.NewTabItem("Devices", mw.createDevicesTab())

	tabs := container.NewAppTabs(controlTab, bindingsTab, devicesTab)
	tabs.SetTabLocation(container.TabLocationTop)

	mw.window.SetContent(tabs)
}

// ============ CONTROL TAB ============

func (mw *MainWindow) createControlTab() fyne.CanvasObject {
	mw.statusLight = canvas.NewCircle(statusColors[bridge.StatusReady])
	mw.statusLabel = widget.NewLabel("")

	mw.startBtn = widget.NewButtonWithIcon("Start", theme.MediaPlayIcon(), func() {
		mw.Start()
	})
	mw.startBtn.Importance = widget.HighImportance
	mw.stopBtn = widget.NewButtonWithIcon("Stop", theme.MediaStopIcon(), func() {
		mw.Stop()
	})

	statusRow := container.NewBorder(nil, nil,
		container.NewHBox(container.NewGridWrap(fyne.NewSize(18, 18), mw.statusLight), mw.statusLabel),
		container.NewHBox(mw.startBtn, mw.stopBtn),
	)

	codesHeader := widget.NewLabel("Recent codes")
	codesHeader.TextStyle = fyne.TextStyle{Bold: true}

	mw.codeList = widget.NewList(
		func() int { return len(mw.codes) },
		func() fyne.CanvasObject {
			return container.NewBorder(nil, nil, nil,
				widget.NewButtonWithIcon("", theme.ContentAddIcon(), nil),
				widget.NewLabel(""),
			)
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id >= len(mw.codes) {
				return
			}
			code := mw.codes[id]
			row := obj.(*fyne.Container)
			row.Objects[0].(*widget.Label).SetText(code)
			row.Objects[1].(*widget.Button).OnTapped = func() { mw.showAddBinding(code) }
		},
	)

	return container.NewBorder(
		container.NewVBox(statusRow, widget.NewSeparator(), codesHeader),
		nil, nil, nil,
		mw.codeList,
	)
}

// Start opens the controller; failures show up as the error status.
func (mw *MainWindow) Start() {
	if err := mw.bridge.Start(); err != nil {
		mw.log.Error("start failed", "err", err)
	}
}

func (mw *MainWindow) Stop() {
	mw.bridge.Stop()
}

// ShowStatus updates the status light and buttons. Call it on the fyne
// goroutine.
func (mw *MainWindow) ShowStatus(s bridge.Status) {
	mw.statusLight.FillColor = statusColors[s]
	mw.statusLight.Refresh()
	mw.statusLabel.SetText("Status: " + s.String())

	if s == bridge.StatusStarted {
		mw.startBtn.Disable()
		mw.stopBtn.Enable()
	} else {
		mw.startBtn.Enable()
		mw.stopBtn.Disable()
	}
}

// AddCode shows a received remote code. Safe to call from any goroutine.
func (mw *MainWindow) AddCode(code string) {
	fyne.Do(func() {
		mw.codes = append([]string{code}, mw.codes...)
		if len(mw.codes) > recentCodeLimit {
			mw.codes = mw.codes[:recentCodeLimit]
		}
		mw.codeList.Refresh()
	})
}

// Show displays the window
func (mw *MainWindow) Show() {
	mw.bindingList.Refresh()
	mw.refreshPorts()
	mw.window.Show()
}
