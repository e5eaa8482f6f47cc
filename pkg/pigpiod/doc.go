// Package pigpiod is a client for the pigpio daemon socket interface.
package pigpiod

// The daemon listens on a local TCP port (8888 by default) and accepts
// fixed 16-byte frames of four little-endian 32-bit words: a command
// and three parameters. The reply echoes the command and the first two
// parameters; the last word carries the result, and negative results
// are daemon error codes.
//
// Only the commands needed to run motor direction lines, motor PWM and
// a servo are implemented here.
//
// Producer: this client
// Consumer: pigpiod on the vehicle host
