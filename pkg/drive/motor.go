package drive

import (
	"fmt"

	"github.com/wificar/wificar.go/pkg/pigpiod"
)

// Direction is the drive state of one motor.
type Direction int

const (
	// Coast de-energizes the motor and lets it free-wheel.
	Coast Direction = iota
	// Forward drives the motor forward.
	Forward
	// Reverse drives the motor backward.
	Reverse
	// Brake shorts the motor terminals for a fast stop.
	Brake
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case Coast:
		return "coast"
	case Forward:
		return "forward"
	case Reverse:
		return "reverse"
	case Brake:
		return "brake"
	}
	return fmt.Sprintf("direction(%d)", int(d))
}

// MotorCommand is one directional intent with a magnitude 0..1.
type MotorCommand struct {
	Direction Direction
	Magnitude float64
}

// Throttle converts a signed speed -1..+1 into a MotorCommand:
// positive forward, negative reverse, zero coast. The magnitude is
// clamped to 0..1.
func Throttle(v float64) MotorCommand {
	v = clamp(v, -1, 1)
	switch {
	case v > 0:
		return MotorCommand{Direction: Forward, Magnitude: v}
	case v < 0:
		return MotorCommand{Direction: Reverse, Magnitude: -v}
	}
	return MotorCommand{Direction: Coast}
}

// Lines returns the levels of the two H-bridge direction inputs.
func (m MotorCommand) Lines() (a, b pigpiod.Level) {
	switch m.Direction {
	case Forward:
		return pigpiod.High, pigpiod.Low
	case Reverse:
		return pigpiod.Low, pigpiod.High
	case Brake:
		return pigpiod.High, pigpiod.High
	}
	return pigpiod.Low, pigpiod.Low
}

// Duty converts the magnitude to an 8-bit PWM duty cycle. Coast and
// brake always yield zero duty.
func (m MotorCommand) Duty() uint32 {
	switch m.Direction {
	case Forward, Reverse:
		return uint32(clamp(m.Magnitude, 0, 1) * 255)
	}
	return 0
}

// String formats the command for diagnostics.
func (m MotorCommand) String() string {
	switch m.Direction {
	case Forward, Reverse:
		return fmt.Sprintf("%s %.2f", m.Direction, m.Magnitude)
	}
	return m.Direction.String()
}
