package midi

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// VirtualPort is the MIDI output QLC+ listens on.
type VirtualPort struct {
	mu  sync.Mutex
	out drivers.Out
}

// OpenVirtualPort creates a virtual output called name. Drivers without
// virtual port support (Windows) fall back to an existing output of the
// same name, e.g. one created with loopMIDI.
func OpenVirtualPort(name string, logger *log.Logger) (*VirtualPort, error) {
	if drv, ok := drivers.Get().(*rtmididrv.Driver); ok {
		out, err := drv.OpenVirtualOut(name)
		if err == nil {
			logger.Info("opened virtual MIDI port", "name", name)
			return &VirtualPort{out: out}, nil
		}
		logger.Warn("can't create virtual MIDI port, looking for an existing one", "name", name, "err", err)
	}

	out, err := gomidi.FindOutPort(name)
	if err != nil {
		return nil, fmt.Errorf("virtual port %q: %w", name, err)
	}
	if !out.IsOpen() {
		if err := out.Open(); err != nil {
			return nil, fmt.Errorf("open %q: %w", name, err)
		}
	}
	logger.Info("using existing MIDI output", "name", out.String())
	return &VirtualPort{out: out}, nil
}

// Send writes a raw MIDI command.
func (v *VirtualPort) Send(frame []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.out == nil {
		return ErrNotOpen
	}
	return v.out.Send(frame)
}

// Close shuts the port down.
func (v *VirtualPort) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.out == nil {
		return nil
	}
	err := v.out.Close()
	v.out = nil
	return err
}
