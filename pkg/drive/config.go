package drive

import "flag"

// Config defines the train wiring and the motor PWM carrier.
// Pin numbers use BCM numbering; defaults match a dual H-bridge with
// the servo on GPIO 18.
type Config struct {
	LeftIn1     uint
	LeftIn2     uint
	LeftEnable  uint
	RightIn1    uint
	RightIn2    uint
	RightEnable uint
	Servo       uint

	PWMFrequency uint
}

var defaultConfig = Config{
	LeftIn1:     5,
	LeftIn2:     6,
	LeftEnable:  12,
	RightIn1:    23,
	RightIn2:    24,
	RightEnable: 13,
	Servo:       18,

	PWMFrequency: 20000,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.UintVar(&defaultConfig.LeftIn1, "pin-left-in1", defaultConfig.LeftIn1, "Left motor direction pin 1 (BCM).")
	flag.UintVar(&defaultConfig.LeftIn2, "pin-left-in2", defaultConfig.LeftIn2, "Left motor direction pin 2 (BCM).")
	flag.UintVar(&defaultConfig.LeftEnable, "pin-left-en", defaultConfig.LeftEnable, "Left motor enable (PWM) pin (BCM).")
	flag.UintVar(&defaultConfig.RightIn1, "pin-right-in1", defaultConfig.RightIn1, "Right motor direction pin 1 (BCM).")
	flag.UintVar(&defaultConfig.RightIn2, "pin-right-in2", defaultConfig.RightIn2, "Right motor direction pin 2 (BCM).")
	flag.UintVar(&defaultConfig.RightEnable, "pin-right-en", defaultConfig.RightEnable, "Right motor enable (PWM) pin (BCM).")
	flag.UintVar(&defaultConfig.Servo, "pin-servo", defaultConfig.Servo, "Servo signal pin (BCM).")
	flag.UintVar(&defaultConfig.PWMFrequency, "pwm-freq", defaultConfig.PWMFrequency, "Motor PWM frequency in Hz.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewTrain creates a train wired per the config.
func (c *Config) NewTrain(drv Driver) *Train {
	return &Train{
		Driver: drv,
		Pins: Pins{
			Left:  MotorPins{In1: uint32(c.LeftIn1), In2: uint32(c.LeftIn2), Enable: uint32(c.LeftEnable)},
			Right: MotorPins{In1: uint32(c.RightIn1), In2: uint32(c.RightIn2), Enable: uint32(c.RightEnable)},
			Servo: uint32(c.Servo),
		},
		PWMFrequency: uint32(c.PWMFrequency),
	}
}
