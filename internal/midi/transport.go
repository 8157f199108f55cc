package midi

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrDeviceNotFound is returned when no input/output pair matches the
// configured device name.
var ErrDeviceNotFound = errors.New("midi device not found")

// ErrInputLost is wrapped by listener errors that mean the input is gone.
// Any other listener error is bad data on the wire.
var ErrInputLost = errors.New("midi input lost")

// Direction tells whether a port delivers or accepts MIDI data.
type Direction int

const (
	DirectionIn Direction = iota
	DirectionOut
)

func (d Direction) String() string {
	if d == DirectionIn {
		return "input"
	}
	return "output"
}

// PortInfo describes a port the transport can open.
type PortInfo struct {
	Name      string
	Direction Direction
}

// InPort is an opened MIDI input.
type InPort interface {
	Name() string
	// Listen delivers every inbound frame (channel messages and complete
	// SysEx messages) to onFrame. onErr receives errors wrapping
	// ErrInputLost when the port stops delivering, and parse errors for
	// malformed bytes otherwise.
	Listen(onFrame func(frame []byte), onErr func(error)) (stop func(), err error)
	Close() error
}

// OutPort is an opened MIDI output.
type OutPort interface {
	Name() string
	Send(frame []byte) error
	Close() error
}

// Transport lists and opens MIDI ports.
type Transport interface {
	Ports() []PortInfo
	OpenIn(name string) (InPort, error)
	OpenOut(name string) (OutPort, error)
}

// Watcher is implemented by transports that can report a port going away.
// Watch blocks until ctx is done or one of names disappears, in which case
// onGone is called once.
type Watcher interface {
	Watch(ctx context.Context, names []string, onGone func())
}

// FindDevicePair returns the first input and output whose names contain match.
func FindDevicePair(ports []PortInfo, match string) (in, out string, err error) {
	for _, p := range ports {
		if !strings.Contains(p.Name, match) {
			continue
		}
		switch {
		case p.Direction == DirectionIn && in == "":
			in = p.Name
		case p.Direction == DirectionOut && out == "":
			out = p.Name
		}
	}
	if in == "" || out == "" {
		return "", "", fmt.Errorf("%w: %q (input %q, output %q)", ErrDeviceNotFound, match, in, out)
	}
	return in, out, nil
}
