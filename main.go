package main

import (
	"context"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/charmbracelet/log"
	"github.com/xlab/closer"

	"github.com/baustella/light-control/internal/bridge"
	"github.com/baustella/light-control/internal/config"
	"github.com/baustella/light-control/internal/midi"
	"github.com/baustella/light-control/internal/osc"
	"github.com/baustella/light-control/internal/qlcplus"
	"github.com/baustella/light-control/internal/remote"
	"github.com/baustella/light-control/internal/rtl433"
	"github.com/baustella/light-control/internal/serialio"
	"github.com/baustella/light-control/internal/startup"
	"github.com/baustella/light-control/internal/tray"
	"github.com/baustella/light-control/internal/window"
)

func main() {
	defer closer.Close()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		closer.Fatalln("failed to load config:", err)
	}
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.Warn("unknown log level, using info", "level", cfg.LogLevel)
	}

	// Initialize MIDI manager
	midiManager := midi.NewManager()
	closer.Bind(midiManager.Close)

	session := midi.NewSession(midiManager, midi.SessionOptions{
		DeviceMatch: cfg.DeviceMatch,
		MappingName: cfg.MappingName,
		Logger:      log.WithPrefix("akai"),
	})

	opts := bridge.Options{
		Device:   session,
		Trigger:  osc.NewClient(cfg.OSC.Host, cfg.OSC.Port, cfg.OSC.Prefix, log.WithPrefix("osc")),
		Learner:  remote.NewLearner(time.Duration(cfg.LearnTimeout)),
		Bindings: cfg.Bindings,
		Logger:   log.WithPrefix("bridge"),
	}
	if virtual, err := midi.OpenVirtualPort(cfg.VirtualPortName, log.WithPrefix("midi")); err != nil {
		log.Error("no MIDI output, forwarding disabled", "err", err)
	} else {
		opts.Out = virtual
		closer.Bind(func() { virtual.Close() })
	}
	if cfg.QlcPlus.AutoStart {
		opts.Launcher = qlcplus.NewLauncher(cfg.QlcPlus.Executable, log.WithPrefix("qlcplus"))
	}

	b := bridge.New(opts)
	closer.Bind(b.Stop)

	ctx, cancel := context.WithCancel(context.Background())
	closer.Bind(cancel)

	// Create Fyne app
	fyneApp := app.NewWithID("de.baustella.lightcontrol")
	mainWindow := window.NewMainWindow(fyneApp, cfg, b, midiManager, log.WithPrefix("window"))

	onCode := func(code string) {
		b.HandleCode(code)
		mainWindow.AddCode(code)
	}

	if cfg.Rtl433.Path != "" {
		rf := rtl433.NewRunner(cfg.Rtl433.Path, cfg.Rtl433.Args, log.WithPrefix("rtl433"))
		if err := rf.Start(ctx, onCode); err != nil {
			log.Error("RF receiver unavailable", "err", err)
		}
	}

	var serialMu sync.Mutex
	var serialReader *serialio.Reader
	useSerialPort := func(port string) {
		serialMu.Lock()
		defer serialMu.Unlock()

		if serialReader != nil {
			serialReader.Close()
			serialReader = nil
		}
		if port == "" {
			return
		}
		r := serialio.NewReader(port, cfg.Serial.BaudRate, log.WithPrefix("serial"))
		if err := r.Start(ctx, onCode); err != nil {
			log.Error("serial receiver unavailable", "err", err)
			return
		}
		serialReader = r
	}
	useSerialPort(cfg.Serial.Port)
	mainWindow.OnSerialPortChanged = useSerialPort

	callbacks := tray.Callbacks{
		OnOpen:  mainWindow.Show,
		OnStart: mainWindow.Start,
		OnStop:  mainWindow.Stop,
		OnQuit: func() {
			b.Stop()
			fyneApp.Quit()
		},
	}

	loginItem, err := startup.New("Baustella Light Control", "de.baustella.lightcontrol")
	if err != nil {
		log.Warn("login item unavailable", "err", err)
	} else {
		if err := loginItem.Apply(cfg.OpenAtStartup); err != nil {
			log.Warn("failed to sync login item", "err", err)
		}
		callbacks.OnStartupToggle = func(enabled bool) bool {
			if err := loginItem.Apply(enabled); err != nil {
				log.Error("failed to update login item", "err", err)
				return false
			}
			cfg.OpenAtStartup = enabled
			if err := cfg.Save(); err != nil {
				log.Error("failed to save config", "err", err)
			}
			return true
		}
	}

	// Setup system tray
	trayMenu := tray.Setup(fyneApp, callbacks, cfg.OpenAtStartup)

	b.OnStatusChange(func(s bridge.Status) {
		fyne.Do(func() {
			mainWindow.ShowStatus(s)
			trayMenu.SetStatus(s)
		})
	})

	if cfg.OpenWindowOnStart || trayMenu == nil {
		mainWindow.Show()
	}

	// Run the Fyne app (this blocks until app.Quit is called)
	fyneApp.Run()
}
