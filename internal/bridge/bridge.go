// Package bridge holds the application state: it starts and stops the
// controller session and routes remote codes and controller signals to the
// outputs.
package bridge

import (
	"sync"

	"github.com/charmbracelet/log"

	"github.com/baustella/light-control/internal/config"
	"github.com/baustella/light-control/internal/midi"
	"github.com/baustella/light-control/internal/remote"
)

// NoteOn is the status byte used for bound remote codes (channel 1).
const NoteOn uint8 = 0x90

// Device is the controller session, satisfied by *midi.Session.
type Device interface {
	Open(onSignal func(midi.Signal), onClose func()) error
	SendMapping(name string) error
	Close()
}

// MidiSink accepts raw MIDI messages.
type MidiSink interface {
	Send(frame []byte) error
}

// Trigger announces a remote code, e.g. over OSC.
type Trigger interface {
	Trigger(code string) error
}

// Launcher makes sure the lighting software runs.
type Launcher interface {
	Ensure() error
}

type Options struct {
	Device   Device
	Out      MidiSink
	Trigger  Trigger
	Launcher Launcher
	Learner  *remote.Learner
	Bindings *config.Bindings
	Logger   *log.Logger
}

type Bridge struct {
	device   Device
	out      MidiSink
	trigger  Trigger
	launcher Launcher
	learner  *remote.Learner
	bindings *config.Bindings
	log      *log.Logger
	dedup    remote.Dedup

	mu       sync.Mutex
	status   Status
	onStatus func(Status)

	// starting is set while device.Open runs; lostEarly records a
	// disconnect reported before Open returned.
	starting  bool
	lostEarly bool
}

func New(opts Options) *Bridge {
	if opts.Learner == nil {
		opts.Learner = remote.NewLearner(0)
	}
	if opts.Bindings == nil {
		opts.Bindings = config.NewBindings()
	}
	if opts.Logger == nil {
		opts.Logger = log.WithPrefix("bridge")
	}
	return &Bridge{
		device:   opts.Device,
		out:      opts.Out,
		trigger:  opts.Trigger,
		launcher: opts.Launcher,
		learner:  opts.Learner,
		bindings: opts.Bindings,
		log:      opts.Logger,
	}
}

// OnStatusChange registers fn to be called after every status change. fn
// runs on the goroutine that caused the change.
func (b *Bridge) OnStatusChange(fn func(Status)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onStatus = fn
}

func (b *Bridge) Status() Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status
}

// Started reports whether the controller session is running.
func (b *Bridge) Started() bool {
	return b.Status() == StatusStarted
}

// Start opens the controller. A failure leaves the bridge in StatusError.
func (b *Bridge) Start() error {
	b.mu.Lock()
	if b.status == StatusStarted || b.starting {
		b.mu.Unlock()
		return nil
	}
	b.starting, b.lostEarly = true, false
	b.mu.Unlock()

	if b.launcher != nil {
		if err := b.launcher.Ensure(); err != nil {
			b.log.Warn("QLC+ not started", "err", err)
		}
	}

	b.learner.Clear()
	b.dedup.Reset()

	err := b.device.Open(b.handleSignal, b.deviceLost)

	b.mu.Lock()
	b.starting = false
	lost := b.lostEarly
	b.mu.Unlock()

	if err != nil {
		b.log.Error("failed to open controller", "err", err)
		b.setStatus(StatusError)
		return err
	}
	if lost {
		// deviceLost already reported the error status
		return nil
	}
	b.log.Info("started")
	b.setStatus(StatusStarted)
	return nil
}

// Stop closes the controller and forgets learned codes.
func (b *Bridge) Stop() {
	b.device.Close()
	b.learner.Clear()
	b.log.Info("stopped")
	b.setStatus(StatusReady)
}

// HandleCode processes a code from the RF decoder or the serial box.
// Consecutive duplicates are dropped.
func (b *Bridge) HandleCode(code string) {
	if !b.dedup.Pass(code) {
		return
	}
	b.log.Debug("remote code", "code", code)
	b.learner.Observe(code)

	if b.trigger != nil {
		if err := b.trigger.Trigger(code); err != nil {
			b.log.Warn("trigger failed", "code", code, "err", err)
		}
	}

	if note, ok := b.bindings.Lookup(code); ok {
		b.forward([]byte{NoteOn, note, 0x7F})
		return
	}
	if sig, ok := b.learner.Lookup(code); ok {
		b.forward(sig.Bytes())
	}
}

// SendMapping reprograms the running controller with a preset called name.
func (b *Bridge) SendMapping(name string) error {
	if !b.Started() {
		return midi.ErrNotOpen
	}
	return b.device.SendMapping(name)
}

// Bind stores a permanent code to note binding.
func (b *Bridge) Bind(code string, note uint8) {
	b.bindings.Insert(code, note)
}

func (b *Bridge) handleSignal(sig midi.Signal) {
	if code, ok := b.learner.Associate(sig); ok {
		b.log.Info("learned", "code", code, "signal", sig)
	}
	b.forward(sig.Bytes())
}

func (b *Bridge) deviceLost() {
	b.log.Warn("controller disconnected")
	b.learner.Clear()

	b.mu.Lock()
	if b.starting {
		b.lostEarly = true
	} else if b.status != StatusStarted {
		b.mu.Unlock()
		return
	}
	b.mu.Unlock()
	b.setStatus(StatusError)
}

func (b *Bridge) forward(frame []byte) {
	if b.out == nil {
		return
	}
	if err := b.out.Send(frame); err != nil {
		b.log.Warn("midi out failed", "frame", frame, "err", err)
	}
}

func (b *Bridge) setStatus(s Status) {
	b.mu.Lock()
	changed := b.status != s
	b.status = s
	fn := b.onStatus
	b.mu.Unlock()

	if changed && fn != nil {
		fn(s)
	}
}
