package pigpiod

import (
	"io"
	"net"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeDaemon answers scripted replies on the far end of a pipe.
type fakeDaemon struct {
	conn net.Conn
	lock sync.Mutex
	got  []frame
}

func newFakeDaemon(t *testing.T) (*Conn, *fakeDaemon) {
	client, server := net.Pipe()
	t.Cleanup(func() {
		client.Close()
		server.Close()
	})
	return &Conn{conn: client}, &fakeDaemon{conn: server}
}

// replyNext serves exactly one request, echoing it back with res.
// mutate, if set, corrupts the reply before sending.
func (d *fakeDaemon) replyNext(res int32, mutate func(*frame)) {
	go func() {
		buf := make([]byte, frameLen)
		if _, err := io.ReadFull(d.conn, buf); err != nil {
			return
		}
		req := decodeFrame(buf)
		d.lock.Lock()
		d.got = append(d.got, req)
		d.lock.Unlock()
		rep := frame{Cmd: req.Cmd, P1: req.P1, P2: req.P2, P3: uint32(res)}
		if mutate != nil {
			mutate(&rep)
		}
		d.conn.Write(rep.Bytes())
	}()
}

func (d *fakeDaemon) requests() []frame {
	d.lock.Lock()
	defer d.lock.Unlock()
	return append([]frame(nil), d.got...)
}

func TestConnCommands(t *testing.T) {
	testCases := []struct {
		name   string
		do     func(*Conn) error
		expect frame
	}{
		{
			"set mode output",
			func(c *Conn) error { return c.SetMode(5, Output) },
			frame{Cmd: cmdModes, P1: 5, P2: 1},
		},
		{
			"set mode input",
			func(c *Conn) error { return c.SetMode(6, Input) },
			frame{Cmd: cmdModes, P1: 6, P2: 0},
		},
		{
			"write high",
			func(c *Conn) error { return c.Write(23, High) },
			frame{Cmd: cmdWrite, P1: 23, P2: 1},
		},
		{
			"write low",
			func(c *Conn) error { return c.Write(24, Low) },
			frame{Cmd: cmdWrite, P1: 24, P2: 0},
		},
		{
			"pwm duty cycle",
			func(c *Conn) error { return c.SetPWMDutyCycle(12, 152) },
			frame{Cmd: cmdPWM, P1: 12, P2: 152},
		},
		{
			"servo pulse width",
			func(c *Conn) error { return c.SetServoPulseWidth(18, 1500) },
			frame{Cmd: cmdServo, P1: 18, P2: 1500},
		},
		{
			"servo off",
			func(c *Conn) error { return c.SetServoPulseWidth(18, 0) },
			frame{Cmd: cmdServo, P1: 18, P2: 0},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			conn, daemon := newFakeDaemon(t)
			daemon.replyNext(0, nil)
			require.NoError(t, tc.do(conn))
			require.Equal(t, []frame{tc.expect}, daemon.requests())
		})
	}
}

func TestConnPWMFrequencySnaps(t *testing.T) {
	conn, daemon := newFakeDaemon(t)
	daemon.replyNext(10000, nil)
	actual, err := conn.SetPWMFrequency(12, 20000)
	require.NoError(t, err)
	require.Equal(t, uint32(10000), actual)
	require.Equal(t, []frame{{Cmd: cmdPFS, P1: 12, P2: 20000}}, daemon.requests())
}

func TestConnStatusError(t *testing.T) {
	conn, daemon := newFakeDaemon(t)
	daemon.replyNext(StatusBadPulsewidth, nil)
	err := conn.SetServoPulseWidth(18, 9999)
	require.Error(t, err)
	statusErr, ok := err.(*StatusError)
	require.True(t, ok)
	require.Equal(t, StatusBadPulsewidth, statusErr.Status)
	require.Contains(t, err.Error(), "pulse width")

	daemon.replyNext(-99, nil)
	err = conn.Write(5, High)
	require.Error(t, err)
	require.Contains(t, err.Error(), "status -99")
}

func TestConnReplyMismatch(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*frame)
	}{
		{"command", func(f *frame) { f.Cmd++ }},
		{"first parameter", func(f *frame) { f.P1++ }},
		{"second parameter", func(f *frame) { f.P2++ }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			conn, daemon := newFakeDaemon(t)
			daemon.replyNext(0, tc.mutate)
			require.Equal(t, ErrReplyMismatch, conn.Write(5, High))
		})
	}
}

func TestDial(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()
	go func() {
		server, err := listener.Accept()
		if err != nil {
			return
		}
		defer server.Close()
		buf := make([]byte, frameLen)
		if _, err := io.ReadFull(server, buf); err != nil {
			return
		}
		req := decodeFrame(buf)
		server.Write(frame{Cmd: req.Cmd, P1: req.P1, P2: req.P2}.Bytes())
	}()

	conn, err := Dial(listener.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.Write(5, Low))
}

func TestConfigDialDiagnostic(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	listener.Close()

	conf := Config{Addr: addr}
	_, err = conf.Dial()
	require.Error(t, err)
	require.Contains(t, err.Error(), "pigpiod unreachable")
	require.Contains(t, err.Error(), "sudo systemctl start pigpiod")
}
