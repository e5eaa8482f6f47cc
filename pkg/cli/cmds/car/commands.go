package car

import (
	"fmt"
	"strconv"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/wificar/wificar.go/pkg/cli/sh"
	"github.com/wificar/wificar.go/pkg/remote"
)

func parseButton(arg string) (int, error) {
	switch arg {
	case "1", "b1", "turbo":
		return 1, nil
	case "2", "b2", "brake":
		return 2, nil
	}
	return 0, fmt.Errorf("unknown button %q", arg)
}

var (
	// PressCmd holds a button down.
	PressCmd = ishell.Cmd{
		Name:    "press",
		Aliases: []string{"p"},
		Help:    "b1|b2 (b1 is turbo, b2 is brake)",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("button required"))
				return
			}
			button, err := parseButton(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			if err := sh.ShellFrom(c).Car.SetButton(button, true); err != nil {
				c.Err(err)
			}
		},
	}

	// ReleaseCmd releases a button.
	ReleaseCmd = ishell.Cmd{
		Name:    "release",
		Aliases: []string{"r"},
		Help:    "b1|b2",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("button required"))
				return
			}
			button, err := parseButton(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			if err := sh.ShellFrom(c).Car.SetButton(button, false); err != nil {
				c.Err(err)
			}
		},
	}

	// AxesCmd sets both axes from unit values.
	AxesCmd = ishell.Cmd{
		Name:    "axes",
		Aliases: []string{"a"},
		Help:    "X Y (unit values -1..+1)",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 2 {
				c.Err(fmt.Errorf("X and Y required"))
				return
			}
			x, err := strconv.ParseFloat(c.Args[0], 64)
			if err != nil {
				c.Err(fmt.Errorf("Invalid X: %v", err))
				return
			}
			y, err := strconv.ParseFloat(c.Args[1], 64)
			if err != nil {
				c.Err(fmt.Errorf("Invalid Y: %v", err))
				return
			}
			sh.ShellFrom(c).Car.SetAxes(x, y)
		},
	}

	// RawCmd sets both axes from raw 16-bit samples.
	RawCmd = ishell.Cmd{
		Name: "raw",
		Help: "X Y (raw samples 0..65535)",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 2 {
				c.Err(fmt.Errorf("X and Y required"))
				return
			}
			x, err := strconv.ParseUint(c.Args[0], 10, 64)
			if err != nil {
				c.Err(fmt.Errorf("Invalid X: %v", err))
				return
			}
			y, err := strconv.ParseUint(c.Args[1], 10, 64)
			if err != nil {
				c.Err(fmt.Errorf("Invalid Y: %v", err))
				return
			}
			sh.ShellFrom(c).Car.SetRaw(x, y)
		},
	}

	// CenterCmd recenters both axes.
	CenterCmd = ishell.Cmd{
		Name: "center",
		Help: "",
		Func: func(c *ishell.Context) {
			sh.ShellFrom(c).Car.Center()
		},
	}

	// SendCmd transmits the current state, optionally N times at the
	// natural rate.
	SendCmd = ishell.Cmd{
		Name:    "send",
		Aliases: []string{"s"},
		Help:    "[N]",
		Func: sh.MustHaveTarget(func(c *ishell.Context) {
			n := 1
			if len(c.Args) > 0 {
				val, err := strconv.Atoi(c.Args[0])
				if err != nil || val < 1 {
					c.Err(fmt.Errorf("Invalid N: %q", c.Args[0]))
					return
				}
				n = val
			}
			car := sh.ShellFrom(c).Car
			for i := 0; i < n; i++ {
				if i > 0 {
					time.Sleep(time.Second / remote.StreamRate)
				}
				if err := car.Send(); err != nil {
					c.Err(err)
					return
				}
			}
		}),
	}

	// StreamCmd starts sending periodically in the background.
	StreamCmd = ishell.Cmd{
		Name: "stream",
		Help: "[HZ]",
		Func: sh.MustHaveTarget(func(c *ishell.Context) {
			hz := remote.StreamRate
			if len(c.Args) > 0 {
				val, err := strconv.Atoi(c.Args[0])
				if err != nil {
					c.Err(fmt.Errorf("Invalid HZ: %v", err))
					return
				}
				hz = val
			}
			if err := sh.ShellFrom(c).Car.Stream(hz); err != nil {
				c.Err(err)
			}
		}),
	}

	// StopCmd stops a running stream.
	StopCmd = ishell.Cmd{
		Name: "stop",
		Help: "",
		Func: func(c *ishell.Context) {
			if !sh.ShellFrom(c).Car.StopStream() {
				c.Println("not streaming")
			}
		},
	}
)

func init() {
	sh.AddCmds(
		&PressCmd,
		&ReleaseCmd,
		&AxesCmd,
		&RawCmd,
		&CenterCmd,
		&SendCmd,
		&StreamCmd,
		&StopCmd,
	)
}
