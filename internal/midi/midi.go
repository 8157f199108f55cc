package midi

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register rtmidi driver
)

// Manager is the rtmidi backed Transport.
type Manager struct {
	mu       sync.RWMutex
	pollRate time.Duration
}

// NewManager creates a new MIDI manager
func NewManager() *Manager {
	return &Manager{pollRate: time.Second}
}

// Close cleans up the MIDI driver
func (m *Manager) Close() {
	gomidi.CloseDriver()
}

// Ports returns all inputs and outputs currently known to the driver
func (m *Manager) Ports() []PortInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var ports []PortInfo
	for _, in := range gomidi.GetInPorts() {
		ports = append(ports, PortInfo{Name: in.String(), Direction: DirectionIn})
	}
	for _, out := range gomidi.GetOutPorts() {
		ports = append(ports, PortInfo{Name: out.String(), Direction: DirectionOut})
	}
	return ports
}

// OpenIn opens an input port by name
func (m *Manager) OpenIn(name string) (InPort, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, in := range gomidi.GetInPorts() {
		if in.String() != name {
			continue
		}
		if !in.IsOpen() {
			if err := in.Open(); err != nil {
				return nil, fmt.Errorf("open input %s: %w", name, err)
			}
		}
		return &rtIn{in: in}, nil
	}
	return nil, fmt.Errorf("input port not found: %s", name)
}

// OpenOut opens an output port by name
func (m *Manager) OpenOut(name string) (OutPort, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := m.findOutPort(name)
	if out == nil {
		return nil, fmt.Errorf("output port not found: %s", name)
	}
	if !out.IsOpen() {
		if err := out.Open(); err != nil {
			return nil, fmt.Errorf("open output %s: %w", name, err)
		}
	}
	return &rtOut{out: out}, nil
}

// Watch polls the driver until one of names is no longer listed.
// CoreMIDI can hang while enumerating, so a scan that takes too long is skipped.
func (m *Manager) Watch(ctx context.Context, names []string, onGone func()) {
	ticker := time.NewTicker(m.pollRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		ch := make(chan []PortInfo, 1)
		go func() { ch <- m.Ports() }()

		var ports []PortInfo
		select {
		case ports = <-ch:
		case <-time.After(3 * time.Second):
			continue
		case <-ctx.Done():
			return
		}

		if !allPresent(ports, names) {
			onGone()
			return
		}
	}
}

func allPresent(ports []PortInfo, names []string) bool {
	seen := make(map[string]bool, len(ports))
	for _, p := range ports {
		seen[p.Name] = true
	}
	for _, n := range names {
		if !seen[n] {
			return false
		}
	}
	return true
}

func (m *Manager) findOutPort(name string) drivers.Out {
	outs := gomidi.GetOutPorts()
	for _, out := range outs {
		if out.String() == name {
			return out
		}
	}
	return nil
}

type rtIn struct {
	in drivers.In
}

func (r *rtIn) Name() string { return r.in.String() }

func (r *rtIn) Listen(onFrame func([]byte), onErr func(error)) (func(), error) {
	stop, err := gomidi.ListenTo(r.in, func(msg gomidi.Message, timestampms int32) {
		onFrame(append([]byte(nil), msg...))
	}, gomidi.UseSysEx(), gomidi.HandleError(func(err error) {
		if errors.Is(err, drivers.ErrListenStopped) {
			err = fmt.Errorf("%w: %v", ErrInputLost, err)
		}
		onErr(err)
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to start listening: %w", err)
	}
	return stop, nil
}

func (r *rtIn) Close() error {
	if !r.in.IsOpen() {
		return nil
	}
	return r.in.Close()
}

type rtOut struct {
	out drivers.Out
}

func (r *rtOut) Name() string { return r.out.String() }

func (r *rtOut) Send(frame []byte) error {
	return r.out.Send(frame)
}

func (r *rtOut) Close() error {
	if !r.out.IsOpen() {
		return nil
	}
	return r.out.Close()
}
