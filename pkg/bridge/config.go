package bridge

import (
	"flag"
	"time"

	"github.com/wificar/wificar.go/pkg/drive"
)

// Config defines the receiver and input shaping parameters.
type Config struct {
	// ListenPort is the local UDP port to bind.
	ListenPort uint
	// Deadzone is the fraction of half-travel around center treated
	// as no input.
	Deadzone float64
	// BaseSpeed is the speed ceiling without turbo.
	BaseSpeed float64
	// TurboSpeed is the speed ceiling while button 1 is held.
	TurboSpeed float64
	// Expo blends linear and cubic stick response, 0 is linear.
	Expo float64
	// FailsafeTimeout is the maximum silence before a forced stop.
	FailsafeTimeout time.Duration
	// Verbose logs every raw payload and parsed reading.
	Verbose bool
}

var defaultConfig = Config{
	ListenPort:      5005,
	Deadzone:        0.08,
	BaseSpeed:       0.60,
	TurboSpeed:      1.00,
	Expo:            0.6,
	FailsafeTimeout: 500 * time.Millisecond,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.UintVar(&defaultConfig.ListenPort, "port", defaultConfig.ListenPort, "UDP listen port.")
	flag.Float64Var(&defaultConfig.Deadzone, "deadzone", defaultConfig.Deadzone, "Joystick deadband 0..1.")
	flag.Float64Var(&defaultConfig.BaseSpeed, "base-speed", defaultConfig.BaseSpeed, "Base max speed 0..1.")
	flag.Float64Var(&defaultConfig.TurboSpeed, "turbo-speed", defaultConfig.TurboSpeed, "Turbo max speed 0..1, button 1 held.")
	flag.Float64Var(&defaultConfig.Expo, "expo", defaultConfig.Expo, "Input curve mix 0..1, 0 is linear.")
	flag.DurationVar(&defaultConfig.FailsafeTimeout, "failsafe", defaultConfig.FailsafeTimeout, "Stop when no valid packet arrives within this window.")
	flag.BoolVar(&defaultConfig.Verbose, "verbose", defaultConfig.Verbose, "Log raw packets.")
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

// NewBridge creates a bridge driving the train per the config.
func (c *Config) NewBridge(train *drive.Train) *Bridge {
	return &Bridge{Config: *c, Train: train}
}
