// Package drive models the vehicle drivetrain: input shaping, tank
// mixing and the actuation step writing motor and servo commands to
// the GPIO/PWM driver.
package drive

import "math"

// Servo pulse widths in microseconds. Zero switches the signal off.
const (
	ServoMin     = 500
	ServoNeutral = 1500
	ServoMax     = 2500
)

// AxisUnit maps one raw ADC sample 0..65535 to a unit value -1..+1
// centered at zero. Values within the deadzone become exactly 0;
// samples beyond 16 bits saturate.
func AxisUnit(raw uint64, deadzone float64) float64 {
	u := (float64(raw)/65535)*2 - 1
	if math.Abs(u) < deadzone {
		return 0
	}
	return clamp(u, -1, 1)
}

// Expo blends linear and cubic response: (1-k)*u + k*u^3. At k=0 it is
// the identity. Larger k softens control near center while keeping the
// full range at the extremes.
func Expo(u, k float64) float64 {
	return (1-k)*u + k*u*u*u
}

// Shape runs one raw sample through AxisUnit and Expo.
func Shape(raw uint64, deadzone, k float64) float64 {
	return Expo(AxisUnit(raw, deadzone), k)
}

// Mix combines forward/back (y) and left/right (x) intent into
// per-side speeds (tank drive). Each side is clamped to -1..+1 before
// the ceiling applies, so |left| and |right| never exceed ceiling.
func Mix(x, y, ceiling float64) (left, right float64) {
	left = clamp(y+x, -1, 1) * ceiling
	right = clamp(y-x, -1, 1) * ceiling
	return
}

// ServoPulse maps a shaped x value -1..+1 to a servo pulse width,
// ServoNeutral plus up to 1000 microseconds of travel each way.
func ServoPulse(x float64) uint32 {
	us := int(ServoNeutral + x*1000)
	if us < ServoMin {
		us = ServoMin
	} else if us > ServoMax {
		us = ServoMax
	}
	return uint32(us)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
