package pigpiod

import (
	"io"
	"net"
	"sync"
)

// Mode is a GPIO pin mode.
type Mode uint32

const (
	// Input configures a pin for reading.
	Input Mode = 0
	// Output configures a pin for writing.
	Output Mode = 1
)

// Level is a GPIO logic level.
type Level uint32

const (
	// Low is logic 0.
	Low Level = 0
	// High is logic 1.
	High Level = 1
)

// Conn is a client connection to the daemon. Every call is one
// synchronous request/reply exchange; calls are serialized, so a Conn
// is safe for concurrent use.
type Conn struct {
	conn net.Conn
	lock sync.Mutex
}

// Dial connects to the daemon at addr (host:port).
func Dial(addr string) (*Conn, error) {
	c, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Conn{conn: c}, nil
}

// SetMode configures the mode of a GPIO pin.
func (c *Conn) SetMode(gpio uint32, mode Mode) error {
	_, err := c.request(cmdModes, gpio, uint32(mode))
	return err
}

// Write sets the level of a GPIO pin.
func (c *Conn) Write(gpio uint32, level Level) error {
	_, err := c.request(cmdWrite, gpio, uint32(level))
	return err
}

// SetPWMDutyCycle sets the PWM duty cycle of a GPIO pin.
// The default duty cycle range is 0-255.
func (c *Conn) SetPWMDutyCycle(gpio, duty uint32) error {
	_, err := c.request(cmdPWM, gpio, duty)
	return err
}

// SetPWMFrequency selects the PWM frequency of a GPIO pin in Hz.
// The daemon snaps to the nearest frequency it supports and reports
// the frequency actually set.
func (c *Conn) SetPWMFrequency(gpio, hz uint32) (uint32, error) {
	res, err := c.request(cmdPFS, gpio, hz)
	if err != nil {
		return 0, err
	}
	return uint32(res), nil
}

// SetServoPulseWidth commands a servo pulse width in microseconds,
// 500-2500. Zero switches the servo signal off.
func (c *Conn) SetServoPulseWidth(gpio, us uint32) error {
	_, err := c.request(cmdServo, gpio, us)
	return err
}

// Close implements io.Closer.
func (c *Conn) Close() error {
	return c.conn.Close()
}

func (c *Conn) request(cmd, p1, p2 uint32) (int32, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	req := frame{Cmd: cmd, P1: p1, P2: p2}
	if _, err := c.conn.Write(req.Bytes()); err != nil {
		return 0, err
	}
	buf := make([]byte, frameLen)
	if _, err := io.ReadFull(c.conn, buf); err != nil {
		return 0, err
	}
	rep := decodeFrame(buf)
	if rep.Cmd != cmd || rep.P1 != p1 || rep.P2 != p2 {
		return 0, ErrReplyMismatch
	}
	res := rep.Res()
	if res < 0 {
		return res, &StatusError{Status: res}
	}
	return res, nil
}
