// Package bridge is the control loop between the remote transmitter
// and the train: it binds a UDP port, decodes readings, shapes the
// sticks into motor and servo commands and supervises link liveness,
// forcing a safe stop when the transmitter goes silent.
package bridge

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"time"

	"github.com/wificar/wificar.go/pkg/drive"
	"github.com/wificar/wificar.go/pkg/remote"
)

const (
	// recvTimeout bounds one receive so the loop re-checks liveness
	// even with no traffic. Independent of Config.FailsafeTimeout.
	recvTimeout = 100 * time.Millisecond
	// maxPayload is the largest datagram the loop reads.
	maxPayload = 256
)

// Bridge runs the receive/shape/actuate cycle over a Train.
type Bridge struct {
	Config Config
	Train  *drive.Train
	// Sink, when set, receives loop events.
	Sink Sink

	lastOK  time.Time
	linked  bool
	tripped bool
}

// NewBridge creates a bridge with the default config.
func NewBridge(train *drive.Train) *Bridge {
	return defaultConfig.NewBridge(train)
}

// Run implements Runnable. It configures the train, binds the port and
// processes datagrams until ctx is cancelled. On exit the train is
// braked and the servo signal released, whatever the cause.
func (b *Bridge) Run(ctx context.Context) (err error) {
	if err = b.Train.Setup(); err != nil {
		return fmt.Errorf("train setup error: %v", err)
	}
	conn, err := net.ListenUDP("udp", &net.UDPAddr{Port: int(b.Config.ListenPort)})
	if err != nil {
		return err
	}
	defer conn.Close()
	defer func() {
		b.report(EventShutdown, time.Now())
		haltErr := b.Train.Halt()
		relErr := b.Train.Release()
		if err == nil || err == context.Canceled {
			if haltErr != nil {
				err = haltErr
			} else if relErr != nil {
				err = relErr
			}
		}
	}()

	log.Printf("Listening UDP on %s ...", conn.LocalAddr())
	b.lastOK = time.Now()
	buf := make([]byte, maxPayload)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		conn.SetReadDeadline(time.Now().Add(recvTimeout))
		n, addr, rerr := conn.ReadFromUDP(buf)
		if rerr != nil {
			if !os.IsTimeout(rerr) {
				return fmt.Errorf("udp read error: %v", rerr)
			}
			if err = b.checkFailsafe(time.Now()); err != nil {
				return err
			}
			continue
		}
		if b.Config.Verbose {
			log.Printf("RAW %s: %q", addr, buf[:n])
		}
		reading, ok := remote.ParseReading(buf[:n])
		if !ok {
			// Not proof of life: liveness stays untouched.
			continue
		}
		if err = b.apply(reading, addr); err != nil {
			return err
		}
		if err = b.checkFailsafe(time.Now()); err != nil {
			return err
		}
	}
}

// apply acts on one valid reading: refresh liveness, shape the sticks
// and command the train.
func (b *Bridge) apply(reading remote.Reading, addr *net.UDPAddr) error {
	now := time.Now()
	b.lastOK = now
	if !b.linked {
		b.linked, b.tripped = true, false
		log.Printf("Link up from %s", addr)
		b.report(EventLinkUp, now)
	}
	if b.Config.Verbose {
		log.Printf("Reading: %s", reading)
	}
	x := drive.Shape(reading.AxisX, b.Config.Deadzone, b.Config.Expo)
	y := drive.Shape(reading.AxisY, b.Config.Deadzone, b.Config.Expo)
	var err error
	if reading.Button2Pressed() {
		brake := drive.MotorCommand{Direction: drive.Brake}
		err = b.Train.Drive(brake, brake)
	} else {
		ceiling := b.Config.BaseSpeed
		if reading.Button1Pressed() {
			ceiling = b.Config.TurboSpeed
		}
		left, right := drive.Mix(x, y, ceiling)
		err = b.Train.Drive(drive.Throttle(left), drive.Throttle(right))
	}
	if err != nil {
		return err
	}
	// Steering follows the stick even while braking.
	return b.Train.Steer(drive.ServoPulse(x))
}

// checkFailsafe forces the safe state while the link has been silent
// longer than the failsafe window. The trip is reported once; the halt
// repeats every evaluation, the writes are idempotent.
func (b *Bridge) checkFailsafe(now time.Time) error {
	if now.Sub(b.lastOK) <= b.Config.FailsafeTimeout {
		return nil
	}
	if !b.tripped {
		b.tripped, b.linked = true, false
		log.Printf("Failsafe: no valid packet for %v, stopping.", b.Config.FailsafeTimeout)
		b.report(EventLinkLost, now)
	}
	return b.Train.Halt()
}

func (b *Bridge) report(ev Event, at time.Time) {
	if b.Sink != nil {
		b.Sink.Report(ev, at)
	}
}
