package remote

import (
	"errors"
	"fmt"
	"math"
	"net"
	"sync"
	"time"
)

// StreamRate is the real transmitter's natural send rate in Hz.
const StreamRate = 20

// RawFromUnit maps a unit axis value -1..+1 to a raw 16-bit sample,
// the inverse of the receiver's normalization. Out-of-range values
// saturate.
func RawFromUnit(u float64) uint64 {
	if u < -1 {
		u = -1
	} else if u > 1 {
		u = 1
	}
	return uint64(math.Round((u + 1) / 2 * 65535))
}

// Transmitter emulates the remote control for bench testing: it holds
// two button states and two axis samples and sends them in the wire
// format, one-shot or streaming at a fixed rate.
type Transmitter struct {
	lock   sync.Mutex
	conn   net.Conn
	target string
	b1, b2 uint64
	x, y   uint64
	stop   chan struct{}
}

// NewTransmitter creates a transmitter with both buttons released and
// both axes centered.
func NewTransmitter() *Transmitter {
	center := RawFromUnit(0)
	return &Transmitter{b1: 1, b2: 1, x: center, y: center}
}

// Dial points the transmitter at a receiver. A previous target is
// closed; an active stream keeps running against the new one.
func (t *Transmitter) Dial(target string) error {
	conn, err := net.Dial("udp", target)
	if err != nil {
		return err
	}
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.conn != nil {
		t.conn.Close()
	}
	t.conn, t.target = conn, target
	return nil
}

// Target returns the current destination, empty when not dialed.
func (t *Transmitter) Target() string {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.target
}

// Reading returns the current state as the receiver would parse it.
func (t *Transmitter) Reading() Reading {
	t.lock.Lock()
	defer t.lock.Unlock()
	return Reading{Button1: t.b1, Button2: t.b2, AxisX: t.x, AxisY: t.y}
}

// SetButton sets button 1 or 2. Pressed goes out as 0, matching the
// pull-up wiring of the real remote.
func (t *Transmitter) SetButton(button int, pressed bool) error {
	v := uint64(1)
	if pressed {
		v = 0
	}
	t.lock.Lock()
	defer t.lock.Unlock()
	switch button {
	case 1:
		t.b1 = v
	case 2:
		t.b2 = v
	default:
		return fmt.Errorf("no button %d", button)
	}
	return nil
}

// SetAxes sets both axes from unit values -1..+1.
func (t *Transmitter) SetAxes(x, y float64) {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.x, t.y = RawFromUnit(x), RawFromUnit(y)
}

// SetRaw sets both axes from raw samples.
func (t *Transmitter) SetRaw(x, y uint64) {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.x, t.y = x, y
}

// Center recenters both axes.
func (t *Transmitter) Center() {
	t.SetAxes(0, 0)
}

// Send transmits the current state once.
func (t *Transmitter) Send() error {
	t.lock.Lock()
	conn := t.conn
	payload := fmt.Sprintf("%d,%d,%d,%d", t.b1, t.b2, t.x, t.y)
	t.lock.Unlock()
	if conn == nil {
		return errors.New("no target")
	}
	_, err := conn.Write([]byte(payload))
	return err
}

// Stream sends the current state hz times a second until StopStream.
func (t *Transmitter) Stream(hz int) error {
	if hz <= 0 {
		return fmt.Errorf("invalid rate %d", hz)
	}
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.conn == nil {
		return errors.New("no target")
	}
	if t.stop != nil {
		return errors.New("already streaming")
	}
	stop := make(chan struct{})
	t.stop = stop
	go t.pump(time.Second/time.Duration(hz), stop)
	return nil
}

// StopStream stops a running stream, reporting whether there was one.
func (t *Transmitter) StopStream() bool {
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.stop == nil {
		return false
	}
	close(t.stop)
	t.stop = nil
	return true
}

// Streaming reports whether the stream pump is running.
func (t *Transmitter) Streaming() bool {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.stop != nil
}

// Close stops streaming and drops the target.
func (t *Transmitter) Close() error {
	t.StopStream()
	t.lock.Lock()
	defer t.lock.Unlock()
	var err error
	if t.conn != nil {
		err = t.conn.Close()
		t.conn, t.target = nil, ""
	}
	return err
}

func (t *Transmitter) pump(interval time.Duration, stop chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			// Loss is fine, the receiver has its own failsafe.
			t.Send()
		}
	}
}
