package pigpiod

import (
	"errors"
	"fmt"
)

// ErrReplyMismatch indicates a reply whose echoed command or
// parameters do not match the request that was sent.
var ErrReplyMismatch = errors.New("reply does not match request")

// Daemon error codes surfaced by the commands this client issues.
const (
	StatusInitFailed    int32 = -1
	StatusBadUserGPIO   int32 = -2
	StatusBadGPIO       int32 = -3
	StatusBadMode       int32 = -4
	StatusBadLevel      int32 = -5
	StatusBadPulsewidth int32 = -7
	StatusBadDutycycle  int32 = -8
	StatusNotPermitted  int32 = -41
)

var statusText = map[int32]string{
	StatusInitFailed:    "initialization failed",
	StatusBadUserGPIO:   "GPIO not 0-31",
	StatusBadGPIO:       "GPIO not 0-53",
	StatusBadMode:       "bad mode",
	StatusBadLevel:      "bad level",
	StatusBadPulsewidth: "bad pulse width",
	StatusBadDutycycle:  "bad duty cycle",
	StatusNotPermitted:  "GPIO operation not permitted",
}

// StatusError wraps a negative result from a daemon reply.
type StatusError struct {
	Status int32
}

// Error implements error.
func (e *StatusError) Error() string {
	if text := statusText[e.Status]; text != "" {
		return fmt.Sprintf("pigpiod: %s (status %d)", text, e.Status)
	}
	return fmt.Sprintf("pigpiod: status %d", e.Status)
}
