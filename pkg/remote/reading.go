// Package remote decodes the transmitter's datagram payloads.
package remote

import (
	"fmt"
	"strconv"
	"strings"
)

// Reading is one validated snapshot of remote input: two button states
// and two raw joystick samples. The transmitter sends buttons as 0 when
// pressed and 1 when released (pull-up wiring), and axes as unsigned
// 16-bit ADC samples.
type Reading struct {
	Button1 uint64
	Button2 uint64
	AxisX   uint64
	AxisY   uint64
}

// Button1Pressed reports whether button 1 is held.
func (r Reading) Button1Pressed() bool { return r.Button1 == 0 }

// Button2Pressed reports whether button 2 is held.
func (r Reading) Button2Pressed() bool { return r.Button2 == 0 }

// String formats the reading for diagnostics.
func (r Reading) String() string {
	return fmt.Sprintf("b1=%d b2=%d x=%d y=%d", r.Button1, r.Button2, r.AxisX, r.AxisY)
}

// ParseReading decodes one datagram payload of the form
// "button1,button2,axis_x,axis_y". The payload is not assumed to be
// valid text: undecodable bytes are dropped, surrounding whitespace is
// trimmed, and fields beyond the fourth are ignored. All four fields
// must be plain decimal digits. The boolean is false for anything
// malformed; there is no other failure mode.
func ParseReading(data []byte) (Reading, bool) {
	text := strings.TrimSpace(strings.ToValidUTF8(string(data), ""))
	if strings.Count(text, ",") < 3 {
		return Reading{}, false
	}
	fields := strings.SplitN(text, ",", 5)[:4]
	var vals [4]uint64
	for i, field := range fields {
		if !isDigits(field) {
			return Reading{}, false
		}
		v, err := strconv.ParseUint(field, 10, 64)
		if err != nil {
			return Reading{}, false
		}
		vals[i] = v
	}
	return Reading{Button1: vals[0], Button2: vals[1], AxisX: vals[2], AxisY: vals[3]}, true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
