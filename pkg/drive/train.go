package drive

import "github.com/wificar/wificar.go/pkg/pigpiod"

// Driver is the GPIO/PWM capability the train writes to.
// *pigpiod.Conn implements it.
type Driver interface {
	SetMode(gpio uint32, mode pigpiod.Mode) error
	Write(gpio uint32, level pigpiod.Level) error
	SetPWMDutyCycle(gpio, duty uint32) error
	SetPWMFrequency(gpio, hz uint32) (uint32, error)
	SetServoPulseWidth(gpio, us uint32) error
}

// MotorPins identifies the H-bridge lines of one motor: two direction
// inputs and one PWM enable.
type MotorPins struct {
	In1    uint32
	In2    uint32
	Enable uint32
}

// Pins is the full pin map of the train, BCM numbering.
type Pins struct {
	Left  MotorPins
	Right MotorPins
	Servo uint32
}

// Train owns every write to the Driver: the motor direction lines, the
// enable duty cycles and the servo pulse width.
type Train struct {
	Driver       Driver
	Pins         Pins
	PWMFrequency uint32
}

// NewTrain creates a Train with the default wiring.
func NewTrain(drv Driver) *Train {
	return defaultConfig.NewTrain(drv)
}

// Setup configures all pins and leaves the train in a known state:
// direction lines low, zero duty at the carrier frequency, servo
// centered.
func (t *Train) Setup() error {
	for _, pin := range []uint32{t.Pins.Left.In1, t.Pins.Left.In2, t.Pins.Right.In1, t.Pins.Right.In2} {
		if err := t.Driver.SetMode(pin, pigpiod.Output); err != nil {
			return err
		}
		if err := t.Driver.Write(pin, pigpiod.Low); err != nil {
			return err
		}
	}
	for _, pin := range []uint32{t.Pins.Left.Enable, t.Pins.Right.Enable} {
		if err := t.Driver.SetMode(pin, pigpiod.Output); err != nil {
			return err
		}
		if _, err := t.Driver.SetPWMFrequency(pin, t.PWMFrequency); err != nil {
			return err
		}
		if err := t.Driver.SetPWMDutyCycle(pin, 0); err != nil {
			return err
		}
	}
	if err := t.Driver.SetMode(t.Pins.Servo, pigpiod.Output); err != nil {
		return err
	}
	return t.Driver.SetServoPulseWidth(t.Pins.Servo, ServoNeutral)
}

// Drive applies one command per motor.
func (t *Train) Drive(left, right MotorCommand) error {
	if err := t.motor(t.Pins.Left, left); err != nil {
		return err
	}
	return t.motor(t.Pins.Right, right)
}

// Steer commands the servo pulse width, clamped to the legal range.
func (t *Train) Steer(us uint32) error {
	if us < ServoMin {
		us = ServoMin
	} else if us > ServoMax {
		us = ServoMax
	}
	return t.Driver.SetServoPulseWidth(t.Pins.Servo, us)
}

// Halt forces the safe state: brake both motors, center the servo.
func (t *Train) Halt() error {
	brake := MotorCommand{Direction: Brake}
	if err := t.Drive(brake, brake); err != nil {
		return err
	}
	return t.Driver.SetServoPulseWidth(t.Pins.Servo, ServoNeutral)
}

// Release switches the servo signal off. Final shutdown only, after
// Halt.
func (t *Train) Release() error {
	return t.Driver.SetServoPulseWidth(t.Pins.Servo, 0)
}

func (t *Train) motor(pins MotorPins, cmd MotorCommand) error {
	a, b := cmd.Lines()
	if err := t.Driver.Write(pins.In1, a); err != nil {
		return err
	}
	if err := t.Driver.Write(pins.In2, b); err != nil {
		return err
	}
	return t.Driver.SetPWMDutyCycle(pins.Enable, cmd.Duty())
}
