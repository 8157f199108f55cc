package bridge

import (
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baustella/light-control/internal/config"
	"github.com/baustella/light-control/internal/midi"
	"github.com/baustella/light-control/internal/remote"
)

type fakeDevice struct {
	openErr  error
	opened   int
	closed   int
	onSignal func(midi.Signal)
	onClose  func()
	mappings []string

	// loseOnOpen reports a disconnect before Open returns.
	loseOnOpen bool
}

func (d *fakeDevice) Open(onSignal func(midi.Signal), onClose func()) error {
	if d.openErr != nil {
		return d.openErr
	}
	d.opened++
	d.onSignal, d.onClose = onSignal, onClose
	if d.loseOnOpen {
		onClose()
	}
	return nil
}

func (d *fakeDevice) Close() { d.closed++ }

func (d *fakeDevice) SendMapping(name string) error {
	d.mappings = append(d.mappings, name)
	return nil
}

type fakeSink struct {
	mu   sync.Mutex
	sent [][]byte
}

func (s *fakeSink) Send(frame []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, append([]byte(nil), frame...))
	return nil
}

type fakeTrigger struct {
	codes []string
	err   error
}

func (t *fakeTrigger) Trigger(code string) error {
	t.codes = append(t.codes, code)
	return t.err
}

type fakeLauncher struct{ calls int }

func (l *fakeLauncher) Ensure() error {
	l.calls++
	return errors.New("no project")
}

type fixture struct {
	device   *fakeDevice
	out      *fakeSink
	trigger  *fakeTrigger
	bindings *config.Bindings
	bridge   *Bridge
	statuses []Status
}

func newFixture() *fixture {
	f := &fixture{
		device:   &fakeDevice{},
		out:      &fakeSink{},
		trigger:  &fakeTrigger{},
		bindings: config.NewBindings(),
	}
	f.bridge = New(Options{
		Device:   f.device,
		Out:      f.out,
		Trigger:  f.trigger,
		Learner:  remote.NewLearner(0),
		Bindings: f.bindings,
		Logger:   log.New(io.Discard),
	})
	f.bridge.OnStatusChange(func(s Status) { f.statuses = append(f.statuses, s) })
	return f
}

func TestStartStop(t *testing.T) {
	f := newFixture()
	assert.Equal(t, StatusReady, f.bridge.Status())

	require.NoError(t, f.bridge.Start())
	assert.True(t, f.bridge.Started())
	require.NoError(t, f.bridge.Start())
	assert.Equal(t, 1, f.device.opened)

	f.bridge.Stop()
	assert.Equal(t, StatusReady, f.bridge.Status())
	assert.Equal(t, 1, f.device.closed)
	assert.Equal(t, []Status{StatusStarted, StatusReady}, f.statuses)
}

func TestStart_OpenFailure(t *testing.T) {
	f := newFixture()
	f.device.openErr = midi.ErrDeviceNotFound

	err := f.bridge.Start()
	assert.ErrorIs(t, err, midi.ErrDeviceNotFound)
	assert.Equal(t, StatusError, f.bridge.Status())
}

func TestStart_LauncherFailureIsNotFatal(t *testing.T) {
	f := newFixture()
	l := &fakeLauncher{}
	f.bridge.launcher = l

	require.NoError(t, f.bridge.Start())
	assert.Equal(t, 1, l.calls)
	assert.True(t, f.bridge.Started())
}

func TestSignalsAreForwarded(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.bridge.Start())

	f.device.onSignal(midi.Signal{Type: 0x90, Control: 0x24, Value: 0x40})
	assert.Equal(t, [][]byte{{0x90, 0x24, 0x40}}, f.out.sent)
}

func TestLearnByAssociation(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.bridge.Start())

	f.bridge.HandleCode("a1b2c38")
	assert.Equal(t, []string{"a1b2c38"}, f.trigger.codes)
	assert.Empty(t, f.out.sent)

	pad := midi.Signal{Type: 0x90, Control: 0x25, Value: 0x7F}
	f.device.onSignal(pad)

	f.bridge.HandleCode("0000001")
	f.bridge.HandleCode("a1b2c38")
	assert.Equal(t, [][]byte{pad.Bytes(), pad.Bytes()}, f.out.sent)
}

func TestBindingWinsOverLearned(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.bridge.Start())

	f.bridge.HandleCode("1234567")
	f.device.onSignal(midi.Signal{Type: 0x90, Control: 0x30, Value: 0x7F})
	f.bridge.Bind("1234567", 4)

	f.out.sent = nil
	f.bridge.HandleCode("7654321")
	f.bridge.HandleCode("1234567")
	assert.Equal(t, [][]byte{{NoteOn, 4, 0x7F}}, f.out.sent)
}

func TestHandleCode_DropsConsecutiveDuplicates(t *testing.T) {
	f := newFixture()
	f.bindings.Insert("1234567", 2)

	f.bridge.HandleCode("1234567")
	f.bridge.HandleCode("1234567")
	f.bridge.HandleCode("7654321")
	f.bridge.HandleCode("1234567")

	assert.Equal(t, []string{"1234567", "7654321", "1234567"}, f.trigger.codes)
	assert.Len(t, f.out.sent, 2)
}

func TestHandleCode_TriggerErrorStillForwards(t *testing.T) {
	f := newFixture()
	f.trigger.err = errors.New("unreachable")
	f.bindings.Insert("1234567", 2)

	f.bridge.HandleCode("1234567")
	assert.Equal(t, [][]byte{{NoteOn, 2, 0x7F}}, f.out.sent)
}

func TestDeviceLost(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.bridge.Start())

	f.bridge.HandleCode("a1b2c38")
	f.device.onSignal(midi.Signal{Type: 0x90, Control: 0x24, Value: 0x7F})

	f.device.onClose()
	assert.Equal(t, StatusError, f.bridge.Status())
	assert.Equal(t, []Status{StatusStarted, StatusError}, f.statuses)

	// learned codes are gone
	f.out.sent = nil
	f.bridge.HandleCode("0000001")
	f.bridge.HandleCode("a1b2c38")
	assert.Empty(t, f.out.sent)

	// a new start recovers
	require.NoError(t, f.bridge.Start())
	assert.True(t, f.bridge.Started())
}

func TestDeviceLostWhileStarting(t *testing.T) {
	f := newFixture()
	f.device.loseOnOpen = true

	require.NoError(t, f.bridge.Start())
	assert.Equal(t, StatusError, f.bridge.Status())
	assert.Equal(t, []Status{StatusError}, f.statuses)

	f.device.loseOnOpen = false
	require.NoError(t, f.bridge.Start())
	assert.True(t, f.bridge.Started())
}

func TestDeviceLostAfterStopKeepsReady(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.bridge.Start())
	f.bridge.Stop()

	f.device.onClose()
	assert.Equal(t, StatusReady, f.bridge.Status())
}

func TestSendMapping(t *testing.T) {
	f := newFixture()
	assert.ErrorIs(t, f.bridge.SendMapping("Stage"), midi.ErrNotOpen)

	require.NoError(t, f.bridge.Start())
	require.NoError(t, f.bridge.SendMapping("Stage"))
	assert.Equal(t, []string{"Stage"}, f.device.mappings)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "Ready", StatusReady.String())
	assert.Equal(t, "Started", StatusStarted.String())
	assert.Equal(t, "Error", StatusError.String())
}
