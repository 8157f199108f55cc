package midi

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// ErrNotOpen is returned when sending on a session that is not open.
var ErrNotOpen = errors.New("session not open")

// State of a device session.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateError
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateError:
		return "error"
	default:
		return "closed"
	}
}

// SessionOptions configure a Session.
type SessionOptions struct {
	DeviceMatch string // substring of the port names, "MPD26"
	MappingName string // preset name written to the device
	Layout      Layout
	Logger      *log.Logger
}

// Session owns the input/output pair of the controller for one start/stop
// cycle. Close is idempotent and may race with a hardware disconnect.
type Session struct {
	transport Transport
	opts      SessionOptions
	log       *log.Logger

	mu          sync.Mutex
	id          uuid.UUID
	state       State
	in          InPort
	out         OutPort
	stop        func()
	cancelWatch context.CancelFunc
	active      *atomic.Bool
	onClose     func()
}

// NewSession creates a closed session on top of t.
func NewSession(t Transport, opts SessionOptions) *Session {
	if opts.DeviceMatch == "" {
		opts.DeviceMatch = "MPD26"
	}
	if opts.MappingName == "" {
		opts.MappingName = "Baustella"
	}
	if opts.Layout.Banks[0] == nil {
		opts.Layout = StylusLayout()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.WithPrefix("akai")
	}
	return &Session{transport: t, opts: opts, log: logger}
}

// State returns the current session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ID returns the identifier of the current (or last) open.
func (s *Session) ID() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Open acquires both ports, switches the controller into special mode,
// sends the mapping and starts delivering decoded signals to onSignal.
// onClose fires once if the device goes away on its own; it is not called
// for Close. Opening an open session is a no-op.
func (s *Session) Open(onSignal func(Signal), onClose func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateOpen {
		return nil
	}

	inName, outName, err := FindDevicePair(s.transport.Ports(), s.opts.DeviceMatch)
	if err != nil {
		s.state = StateError
		return err
	}
	s.log.Info("found controller", "input", inName, "output", outName)

	in, err := s.transport.OpenIn(inName)
	if err != nil {
		s.state = StateError
		return fmt.Errorf("can't open MIDI device: %w", err)
	}
	out, err := s.transport.OpenOut(outName)
	if err != nil {
		_ = in.Close()
		s.state = StateError
		return fmt.Errorf("can't open MIDI device: %w", err)
	}

	fail := func(err error) error {
		_ = in.Close()
		_ = out.Close()
		s.state = StateError
		return err
	}

	s.log.Info("enabling special mode")
	if err := out.Send(SpecialMode); err != nil {
		return fail(fmt.Errorf("failed to send special mode: %w", err))
	}
	s.log.Info("sending mapping", "name", s.opts.MappingName)
	if err := out.Send(s.opts.Layout.Generate(s.opts.MappingName)); err != nil {
		return fail(fmt.Errorf("failed to send mapping: %w", err))
	}

	active := new(atomic.Bool)
	active.Store(true)
	stop, err := in.Listen(func(frame []byte) {
		if active.Load() {
			s.handleFrame(frame, onSignal)
		}
	}, func(err error) {
		if !errors.Is(err, ErrInputLost) {
			s.log.Debug("ignoring malformed input", "err", err)
			return
		}
		s.log.Warn("input lost", "err", err)
		go s.lost(active)
	})
	if err != nil {
		return fail(err)
	}

	s.id = uuid.New()
	s.state = StateOpen
	s.in, s.out, s.stop, s.active, s.onClose = in, out, stop, active, onClose

	if w, ok := s.transport.(Watcher); ok {
		ctx, cancel := context.WithCancel(context.Background())
		s.cancelWatch = cancel
		id := s.id
		go w.Watch(ctx, []string{inName, outName}, func() {
			s.log.Warn("controller disconnected", "session", id)
			s.lost(active)
		})
	}

	s.log.Info("session open", "session", s.id)
	return nil
}

// SendMapping writes the mapping image for name to the open device.
func (s *Session) SendMapping(name string) error {
	s.mu.Lock()
	out := s.out
	s.mu.Unlock()

	if out == nil {
		return ErrNotOpen
	}
	if err := ValidateMappingName(name); err != nil {
		return err
	}
	s.log.Info("sending mapping", "name", name)
	if err := out.Send(s.opts.Layout.Generate(name)); err != nil {
		return fmt.Errorf("failed to send mapping: %w", err)
	}

	// later opens keep the new name
	s.mu.Lock()
	s.opts.MappingName = name
	s.mu.Unlock()
	return nil
}

// Close releases both ports. Safe to call any number of times.
func (s *Session) Close() {
	if !s.release(nil, StateClosed) {
		s.mu.Lock()
		s.state = StateClosed
		s.mu.Unlock()
	}
}

// lost handles a disconnect reported by the transport for the open
// identified by active.
func (s *Session) lost(active *atomic.Bool) {
	s.mu.Lock()
	cb := s.onClose
	s.mu.Unlock()

	if s.release(active, StateError) && cb != nil {
		cb()
	}
}

// release swaps the handles out under the lock and closes them outside it,
// so a concurrent or reentrant caller sees nothing left to close.
func (s *Session) release(active *atomic.Bool, final State) bool {
	s.mu.Lock()
	if s.state != StateOpen || (active != nil && active != s.active) {
		s.mu.Unlock()
		return false
	}
	in, out, stop, cancel := s.in, s.out, s.stop, s.cancelWatch
	s.active.Store(false)
	s.in, s.out, s.stop, s.cancelWatch, s.active, s.onClose = nil, nil, nil, nil, nil, nil
	s.state = final
	id := s.id
	s.mu.Unlock()

	s.log.Info("closing devices", "session", id)
	if cancel != nil {
		cancel()
	}
	if stop != nil {
		stop()
	}
	if err := in.Close(); err != nil {
		s.log.Warn("closing input", "err", err)
	}
	if err := out.Close(); err != nil {
		s.log.Warn("closing output", "err", err)
	}
	return true
}

func (s *Session) handleFrame(frame []byte, onSignal func(Signal)) {
	s.log.Debug("input", "frame", fmt.Sprintf("% X", frame))

	sig, ok := Decode(frame)
	if !ok {
		s.log.Debug("ignoring input")
		return
	}
	s.log.Debug("parsed input", "signal", sig)
	onSignal(sig)
}
