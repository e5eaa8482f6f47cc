package pigpiod

import (
	"flag"
	"fmt"
	"net"
	"os"
)

// Config defines how to reach the daemon.
type Config struct {
	Addr string
}

var defaultConfig = Config{
	Addr: "localhost:8888",
}

func init() {
	// The daemon's own client environment variables take precedence
	// over the built-in default.
	host, port := "localhost", "8888"
	if val := os.Getenv("PIGPIO_ADDR"); val != "" {
		host = val
	}
	if val := os.Getenv("PIGPIO_PORT"); val != "" {
		port = val
	}
	defaultConfig.Addr = net.JoinHostPort(host, port)
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Addr, "pigpiod", defaultConfig.Addr, "pigpio daemon address (host:port).")
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

// Dial connects to the configured daemon. The returned error tells the
// operator how to bring the daemon up, since a missing daemon is the
// one startup condition nothing else can recover from.
func (c *Config) Dial() (*Conn, error) {
	conn, err := Dial(c.Addr)
	if err != nil {
		return nil, fmt.Errorf("pigpiod unreachable at %s: %v (start it with: sudo systemctl start pigpiod)", c.Addr, err)
	}
	return conn, nil
}
