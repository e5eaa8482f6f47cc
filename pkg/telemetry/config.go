package telemetry

import (
	"errors"
	"flag"
	"os"

	"github.com/denisbrodbeck/machineid"
)

// Config defines the telemetry connection.
type Config struct {
	// BrokerURL enables telemetry when non-empty,
	// e.g. mqtt://localhost:1883/wificar/.
	BrokerURL string
	// Name identifies the vehicle in topic names. Defaults to the
	// machine ID.
	Name string
}

var defaultConfig = Config{}

func init() {
	if brokerURL := os.Getenv("WIFICAR_MQTT_URL"); brokerURL != "" {
		defaultConfig.BrokerURL = brokerURL
	}
	if id, err := machineid.ID(); err == nil {
		defaultConfig.Name = id
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.BrokerURL, "mqtt", defaultConfig.BrokerURL, "MQTT broker URL, empty disables telemetry. Env: WIFICAR_MQTT_URL.")
	flag.StringVar(&defaultConfig.Name, "name", defaultConfig.Name, "Vehicle name in telemetry topics.")
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

// NewReporter creates a reporter per the config. Returns nil without
// error when telemetry is disabled.
func (c *Config) NewReporter() (*Reporter, error) {
	if c.BrokerURL == "" {
		return nil, nil
	}
	if c.Name == "" {
		return nil, errors.New("vehicle name required (set -name)")
	}
	return NewReporter(c.BrokerURL, c.Name)
}
