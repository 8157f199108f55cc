package window

import (
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/baustella/light-control/internal/midi"
	"github.com/baustella/light-control/internal/serialio"
)

const noSerialPort = "(None)"

// ============ DEVICES TAB ============

func (mw *MainWindow) createDevicesTab() fyne.CanvasObject {
	midiHeader := widget.NewLabel("MIDI Ports")
	midiHeader.TextStyle = fyne.TextStyle{Bold: true}
	mw.midiPorts = widget.NewLabel("")
	mw.midiPorts.Wrapping = fyne.TextWrapWord

	matchLabel := widget.NewLabel(fmt.Sprintf("Controller: ports containing %q", mw.cfg.DeviceMatch))
	outLabel := widget.NewLabel(fmt.Sprintf("Output: %q, OSC %s:%d", mw.cfg.VirtualPortName, mw.cfg.OSC.Host, mw.cfg.OSC.Port))

	serialHeader := widget.NewLabel("Serial Receiver")
	serialHeader.TextStyle = fyne.TextStyle{Bold: true}

	mw.serialPorts = widget.NewSelect(nil, nil)
	mw.serialPorts.PlaceHolder = "Select..."

	refreshBtn := widget.NewButtonWithIcon("Refresh Ports", theme.ViewRefreshIcon(), func() {
		mw.refreshPorts()
	})

	mappingEntry := widget.NewEntry()
	mappingEntry.SetText(mw.cfg.MappingName)
	mappingEntry.Validator = midi.ValidateMappingName
	sendMappingBtn := widget.NewButtonWithIcon("Send Mapping", theme.UploadIcon(), func() {
		mw.sendMapping(mappingEntry.Text)
	})

	mw.refreshPorts()

	return container.NewVBox(
		container.NewBorder(nil, nil, midiHeader, refreshBtn),
		widget.NewSeparator(),
		mw.midiPorts,
		matchLabel,
		container.NewBorder(nil, nil, widget.NewLabel("Preset name"), sendMappingBtn, mappingEntry),
		outLabel,
		widget.NewSeparator(),
		serialHeader,
		mw.serialPorts,
	)
}

func (mw *MainWindow) refreshPorts() {
	var lines []string
	for _, p := range mw.ports.Ports() {
		lines = append(lines, fmt.Sprintf("%s  %s", p.Direction, p.Name))
	}
	if len(lines) == 0 {
		lines = []string{"No MIDI ports found"}
	}
	mw.midiPorts.SetText(strings.Join(lines, "\n"))

	names, err := serialio.Ports()
	if err != nil {
		mw.log.Warn("listing serial ports", "err", err)
	}

	mw.serialPorts.OnChanged = nil
	mw.serialPorts.Options = append([]string{noSerialPort}, names...)
	if mw.cfg.Serial.Port == "" {
		mw.serialPorts.SetSelected(noSerialPort)
	} else {
		mw.serialPorts.SetSelected(mw.cfg.Serial.Port)
	}
	mw.serialPorts.OnChanged = func(s string) {
		if s == noSerialPort {
			s = ""
		}
		if s == mw.cfg.Serial.Port {
			return
		}
		mw.cfg.Serial.Port = s
		if err := mw.cfg.Save(); err != nil {
			mw.log.Error("failed to save config", "err", err)
		}
		if mw.OnSerialPortChanged != nil {
			mw.OnSerialPortChanged(s)
		}
	}
	mw.serialPorts.Refresh()
}

func (mw *MainWindow) sendMapping(name string) {
	if err := midi.ValidateMappingName(name); err != nil {
		dialog.ShowError(err, mw.window)
		return
	}
	if err := mw.bridge.SendMapping(name); err != nil {
		mw.log.Error("failed to send mapping", "err", err)
		dialog.ShowError(err, mw.window)
		return
	}
	mw.cfg.MappingName = name
	if err := mw.cfg.Save(); err != nil {
		mw.log.Error("failed to save config", "err", err)
	}
}
