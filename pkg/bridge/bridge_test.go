package bridge

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wificar/wificar.go/pkg/drive"
	"github.com/wificar/wificar.go/pkg/pigpiod"
)

var errDriver = errors.New("driver op failed")

// fakeDriver records pin state per GPIO and can be armed to fail a
// given op kind.
type fakeDriver struct {
	lock   sync.Mutex
	modes  map[uint32]pigpiod.Mode
	levels map[uint32]pigpiod.Level
	duties map[uint32]uint32
	freqs  map[uint32]uint32
	servos map[uint32]uint32
	ops    int
	failOn string
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		modes:  map[uint32]pigpiod.Mode{},
		levels: map[uint32]pigpiod.Level{},
		duties: map[uint32]uint32{},
		freqs:  map[uint32]uint32{},
		servos: map[uint32]uint32{},
	}
}

func (d *fakeDriver) op(kind string) error {
	d.ops++
	if d.failOn == kind {
		return errDriver
	}
	return nil
}

func (d *fakeDriver) SetMode(gpio uint32, mode pigpiod.Mode) error {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.modes[gpio] = mode
	return d.op("mode")
}

func (d *fakeDriver) Write(gpio uint32, level pigpiod.Level) error {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.levels[gpio] = level
	return d.op("write")
}

func (d *fakeDriver) SetPWMDutyCycle(gpio, duty uint32) error {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.duties[gpio] = duty
	return d.op("duty")
}

func (d *fakeDriver) SetPWMFrequency(gpio, hz uint32) (uint32, error) {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.freqs[gpio] = hz
	return hz, d.op("pfs")
}

func (d *fakeDriver) SetServoPulseWidth(gpio, us uint32) error {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.servos[gpio] = us
	return d.op("servo")
}

func (d *fakeDriver) setFail(kind string) {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.failOn = kind
}

func (d *fakeDriver) level(gpio uint32) pigpiod.Level {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.levels[gpio]
}

func (d *fakeDriver) duty(gpio uint32) uint32 {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.duties[gpio]
}

func (d *fakeDriver) freq(gpio uint32) uint32 {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.freqs[gpio]
}

func (d *fakeDriver) servo(gpio uint32) uint32 {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.servos[gpio]
}

func (d *fakeDriver) opCount() int {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.ops
}

// braked reports whether the whole brake pattern is in place, under
// one lock so a mid-sequence snapshot never passes.
func (d *fakeDriver) braked() bool {
	d.lock.Lock()
	defer d.lock.Unlock()
	for _, pin := range []uint32{5, 6, 23, 24} {
		if d.levels[pin] != pigpiod.High {
			return false
		}
	}
	return d.duties[12] == 0 && d.duties[13] == 0
}

type eventRec struct {
	lock   sync.Mutex
	events []Event
}

func (r *eventRec) Report(ev Event, at time.Time) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.events = append(r.events, ev)
}

func (r *eventRec) list() []Event {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]Event(nil), r.events...)
}

func freeUDPPort(t *testing.T) uint {
	t.Helper()
	probe, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	defer probe.Close()
	return uint(probe.LocalAddr().(*net.UDPAddr).Port)
}

// harness runs one bridge over a fakeDriver with a client socket
// pointed at it.
type harness struct {
	t      *testing.T
	drv    *fakeDriver
	events *eventRec
	cancel context.CancelFunc
	done   chan error
	conn   net.Conn

	exitErr error
	exited  bool
}

func startBridge(t *testing.T, mod func(*Config)) *harness {
	t.Helper()
	port := freeUDPPort(t)
	conf := NewConfig()
	conf.ListenPort = port
	if mod != nil {
		mod(conf)
	}
	drv := newFakeDriver()
	events := &eventRec{}
	br := conf.NewBridge(drive.NewTrain(drv))
	br.Sink = events
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- br.Run(ctx) }()
	conn, err := net.Dial("udp", fmt.Sprintf("127.0.0.1:%d", port))
	require.NoError(t, err)
	h := &harness{t: t, drv: drv, events: events, cancel: cancel, done: done, conn: conn}
	t.Cleanup(func() {
		h.stop()
		conn.Close()
	})
	return h
}

// stop cancels the loop and waits for it to exit.
func (h *harness) stop() error {
	h.t.Helper()
	h.cancel()
	return h.wait()
}

func (h *harness) wait() error {
	h.t.Helper()
	if h.exited {
		return h.exitErr
	}
	select {
	case h.exitErr = <-h.done:
		h.exited = true
	case <-time.After(3 * time.Second):
		h.t.Fatal("bridge did not exit")
	}
	return h.exitErr
}

func (h *harness) running() bool {
	if h.exited {
		return false
	}
	select {
	case h.exitErr = <-h.done:
		h.exited = true
		return false
	default:
		return true
	}
}

func (h *harness) send(payload string) {
	h.conn.Write([]byte(payload))
}

// sendUntil retransmits payload until cond holds. The transmitter
// streams continuously, so resending is the normal traffic pattern.
func (h *harness) sendUntil(payload string, cond func() bool, what string) {
	h.t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		h.send(payload)
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	h.t.Fatalf("timed out waiting for %s", what)
}

func (h *harness) waitFor(cond func() bool, what string) {
	h.t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	h.t.Fatalf("timed out waiting for %s", what)
}

func (h *harness) requireBraked() {
	h.t.Helper()
	for _, pin := range []uint32{5, 6, 23, 24} {
		require.Equalf(h.t, pigpiod.High, h.drv.level(pin), "direction pin %d", pin)
	}
	require.Zero(h.t, h.drv.duty(12))
	require.Zero(h.t, h.drv.duty(13))
}

func TestBridgeDriveScenarios(t *testing.T) {
	h := startBridge(t, nil)

	// Full forward stick, centered x: both motors forward at the base
	// ceiling, servo neutral.
	h.sendUntil("1,1,32768,65535", func() bool {
		return h.drv.duty(12) == 153 && h.drv.duty(13) == 153
	}, "forward cruise")
	require.Equal(t, pigpiod.High, h.drv.level(5))
	require.Equal(t, pigpiod.Low, h.drv.level(6))
	require.Equal(t, pigpiod.High, h.drv.level(23))
	require.Equal(t, pigpiod.Low, h.drv.level(24))
	require.Equal(t, uint32(153), h.drv.duty(13))
	require.Equal(t, uint32(1500), h.drv.servo(18))

	// Turbo back-left: left side saturates in reverse, right side
	// coasts, servo hard left.
	h.sendUntil("0,1,0,0", func() bool { return h.drv.servo(18) == 500 }, "turbo back-left")
	require.Equal(t, pigpiod.Low, h.drv.level(5))
	require.Equal(t, pigpiod.High, h.drv.level(6))
	require.Equal(t, uint32(255), h.drv.duty(12))
	require.Equal(t, pigpiod.Low, h.drv.level(23))
	require.Equal(t, pigpiod.Low, h.drv.level(24))
	require.Zero(t, h.drv.duty(13))

	// Brake button overrides the sticks for drive. The servo write is
	// the last of the iteration, so it marks the sequence complete.
	h.sendUntil("1,0,32768,32768", func() bool { return h.drv.servo(18) == 1500 }, "brake")
	h.requireBraked()
	require.Equal(t, uint32(1500), h.drv.servo(18))

	// Steering still follows x while braking.
	h.sendUntil("1,0,65535,65535", func() bool { return h.drv.servo(18) == 2500 }, "brake with steering")
	h.requireBraked()

	require.Equal(t, []Event{EventLinkUp}, h.events.list())
}

func TestBridgeFailsafeTripAndRecover(t *testing.T) {
	h := startBridge(t, func(conf *Config) { conf.FailsafeTimeout = 200 * time.Millisecond })

	h.sendUntil("1,1,32768,65535", func() bool { return h.drv.duty(12) == 153 }, "link up")

	// Go silent: the failsafe must brake the train and report the
	// trip exactly once.
	h.waitFor(func() bool {
		return len(h.events.list()) == 2 && h.drv.braked()
	}, "failsafe trip")
	require.Equal(t, []Event{EventLinkUp, EventLinkLost}, h.events.list())
	h.requireBraked()
	require.Equal(t, uint32(1500), h.drv.servo(18))

	// While tripped the safe state keeps being forced, with no
	// further events.
	ops := h.drv.opCount()
	time.Sleep(350 * time.Millisecond)
	require.Greater(t, h.drv.opCount(), ops)
	require.Equal(t, []Event{EventLinkUp, EventLinkLost}, h.events.list())

	// Traffic resumes: the link recovers and drive commands flow
	// again.
	h.sendUntil("1,1,32768,65535", func() bool { return h.drv.duty(12) == 153 }, "link recovery")
	require.Equal(t, []Event{EventLinkUp, EventLinkLost, EventLinkUp}, h.events.list())
}

func TestBridgeSilentFromStart(t *testing.T) {
	h := startBridge(t, func(conf *Config) { conf.FailsafeTimeout = 150 * time.Millisecond })

	h.waitFor(func() bool {
		return len(h.events.list()) == 1 && h.drv.braked()
	}, "failsafe trip")
	require.Equal(t, []Event{EventLinkLost}, h.events.list())
	h.requireBraked()
	require.Equal(t, uint32(1500), h.drv.servo(18))
}

func TestBridgeIgnoresMalformed(t *testing.T) {
	h := startBridge(t, func(conf *Config) { conf.FailsafeTimeout = 10 * time.Second })

	// Train setup finishes before the port is bound.
	h.waitFor(func() bool { return h.drv.opCount() == 16 }, "train setup")
	require.Equal(t, uint32(20000), h.drv.freq(12))
	require.Equal(t, uint32(20000), h.drv.freq(13))
	require.Equal(t, uint32(1500), h.drv.servo(18))

	garbage := []string{
		"hello",
		"1,2",
		"1,2,3",
		"1,2,3,x",
		"-1,0,32768,32768",
		"1.5,0,32768,32768",
		"1,1,32768,",
		",,,",
		"18446744073709551616,1,32768,32768",
		"\xff\xfe1,1",
		"",
	}
	for i := 0; i < 3; i++ {
		for _, payload := range garbage {
			h.send(payload)
			time.Sleep(5 * time.Millisecond)
		}
	}
	time.Sleep(100 * time.Millisecond)

	// None of it drove an actuator, refreshed liveness or raised an
	// event.
	require.Equal(t, 16, h.drv.opCount())
	require.Empty(t, h.events.list())

	// The loop is still healthy.
	h.sendUntil("1,1,32768,65535", func() bool { return h.drv.duty(12) == 153 }, "recovery after garbage")
	require.Equal(t, []Event{EventLinkUp}, h.events.list())
}

func TestBridgeGarbageDoesNotRefreshLiveness(t *testing.T) {
	h := startBridge(t, func(conf *Config) { conf.FailsafeTimeout = 250 * time.Millisecond })

	h.sendUntil("1,1,32768,65535", func() bool { return h.drv.duty(12) == 153 }, "link up")

	// Keep the socket busy with garbage well past the failsafe
	// window: it must still trip, timed from the last valid packet.
	floodEnd := time.Now().Add(600 * time.Millisecond)
	for time.Now().Before(floodEnd) {
		h.send("not,a,valid")
		time.Sleep(5 * time.Millisecond)
	}
	h.waitFor(func() bool {
		return len(h.events.list()) == 2 && h.drv.braked()
	}, "failsafe trip through garbage")
	require.Equal(t, []Event{EventLinkUp, EventLinkLost}, h.events.list())
	h.requireBraked()
}

func TestBridgeShutdown(t *testing.T) {
	h := startBridge(t, nil)

	h.sendUntil("1,1,32768,65535", func() bool { return h.drv.duty(12) == 153 }, "link up")

	require.ErrorIs(t, h.stop(), context.Canceled)
	require.Equal(t, []Event{EventLinkUp, EventShutdown}, h.events.list())
	h.requireBraked()
	// Release drops the servo signal entirely after the halt.
	require.Zero(t, h.drv.servo(18))
}

func TestBridgeDriverFailure(t *testing.T) {
	h := startBridge(t, nil)

	h.sendUntil("1,1,32768,65535", func() bool { return h.drv.duty(12) == 153 }, "link up")

	// Losing the GPIO backend mid-loop aborts the run.
	h.drv.setFail("duty")
	h.sendUntil("1,1,32768,65535", func() bool { return !h.running() }, "loop abort")
	require.ErrorIs(t, h.wait(), errDriver)
	require.Equal(t, []Event{EventLinkUp, EventShutdown}, h.events.list())
}

func TestBridgeSetupError(t *testing.T) {
	drv := newFakeDriver()
	drv.setFail("pfs")
	br := NewConfig().NewBridge(drive.NewTrain(drv))
	err := br.Run(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "train setup error")
}

func TestBridgeListenError(t *testing.T) {
	port := freeUDPPort(t)
	taken, err := net.ListenUDP("udp", &net.UDPAddr{Port: int(port)})
	require.NoError(t, err)
	defer taken.Close()

	br := NewConfig().NewBridge(drive.NewTrain(newFakeDriver()))
	br.Config.ListenPort = port
	require.Error(t, br.Run(context.Background()))
}
