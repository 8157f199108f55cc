package serialio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"go.bug.st/serial"
)

// DefaultBaudRate matches the receiver firmware.
const DefaultBaudRate = 9600

// Ports lists the serial ports present on the system.
func Ports() ([]string, error) {
	return serial.GetPortsList()
}

// Opener opens a serial port; serial.Open in production.
type Opener func(name string, mode *serial.Mode) (io.ReadCloser, error)

func openSerial(name string, mode *serial.Mode) (io.ReadCloser, error) {
	return serial.Open(name, mode)
}

// Reader streams frames from a serial port in its own goroutine.
type Reader struct {
	Port     string
	BaudRate int
	Log      *log.Logger
	open     Opener

	mu   sync.Mutex
	conn io.ReadCloser
	done chan struct{}
}

// NewReader creates a reader for port.
func NewReader(port string, baudRate int, logger *log.Logger) *Reader {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	return &Reader{Port: port, BaudRate: baudRate, Log: logger, open: openSerial}
}

// Start opens the port and delivers every complete frame to onFrame, in
// arrival order, until ctx is done or Close is called.
func (r *Reader) Start(ctx context.Context, onFrame func(string)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conn != nil {
		return nil
	}
	conn, err := r.open(r.Port, &serial.Mode{BaudRate: r.BaudRate})
	if err != nil {
		return fmt.Errorf("failed to open port %s: %w", r.Port, err)
	}
	r.conn = conn
	r.done = make(chan struct{})
	r.Log.Info("listening", "port", r.Port, "baud", r.BaudRate)

	go r.loop(conn, r.done, onFrame)
	go func(done chan struct{}) {
		select {
		case <-ctx.Done():
			r.Close()
		case <-done:
		}
	}(r.done)
	return nil
}

func (r *Reader) loop(conn io.Reader, done chan struct{}, onFrame func(string)) {
	defer close(done)

	var asm Assembler
	buf := make([]byte, 64)
	for {
		n, err := conn.Read(buf)
		asm.FeedBytes(buf[:n], func(frame string) {
			r.Log.Debug("frame", "data", frame)
			onFrame(frame)
		})
		if err != nil {
			if !errors.Is(err, io.EOF) {
				r.Log.Debug("read stopped", "err", err)
			}
			return
		}
	}
}

// Close stops reading and releases the port. Safe to call twice.
func (r *Reader) Close() error {
	r.mu.Lock()
	conn, done := r.conn, r.done
	r.conn = nil
	r.mu.Unlock()

	if conn == nil {
		return nil
	}
	err := conn.Close()
	<-done
	return err
}
