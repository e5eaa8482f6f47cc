package pigpiod

import "encoding/binary"

// Command codes of the daemon socket interface.
const (
	cmdModes uint32 = 0 // set GPIO mode
	cmdWrite uint32 = 4 // set GPIO level
	cmdPWM   uint32 = 5 // set PWM duty cycle
	cmdPFS   uint32 = 7 // set PWM frequency
	cmdServo uint32 = 8 // set servo pulse width
)

// frameLen is the fixed size of a request or reply frame.
const frameLen = 16

// frame contains the information of one request or reply.
// P3 is unused in the requests this client sends and carries the
// result in replies.
type frame struct {
	Cmd uint32
	P1  uint32
	P2  uint32
	P3  uint32
}

// Bytes returns encoded bytes for sending.
func (f frame) Bytes() []byte {
	b := make([]byte, frameLen)
	binary.LittleEndian.PutUint32(b[0:], f.Cmd)
	binary.LittleEndian.PutUint32(b[4:], f.P1)
	binary.LittleEndian.PutUint32(b[8:], f.P2)
	binary.LittleEndian.PutUint32(b[12:], f.P3)
	return b
}

// Res interprets the last word as the signed result of a reply.
func (f frame) Res() int32 {
	return int32(f.P3)
}

func decodeFrame(b []byte) (f frame) {
	f.Cmd = binary.LittleEndian.Uint32(b[0:])
	f.P1 = binary.LittleEndian.Uint32(b[4:])
	f.P2 = binary.LittleEndian.Uint32(b[8:])
	f.P3 = binary.LittleEndian.Uint32(b[12:])
	return
}
