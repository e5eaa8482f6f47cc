package sh

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/wificar/wificar.go/pkg/remote"
)

// Shell provides the ishell backed interactive shell around one
// emulated transmitter.
type Shell struct {
	Interactive bool
	AutoConnect bool

	Shell *ishell.Shell
	Car   *remote.Transmitter
}

const (
	shellKey       = "$shell"
	noTargetPrompt = "[none] > "
	defaultPort    = 5005
)

var (
	// flags

	evalOnly bool
	target   string

	// commands
	commands = []*ishell.Cmd{
		&TargetCmd,
		&StateCmd,
		&QuitCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.StringVar(&target, "target", target, "Dial HOST[:PORT] on start.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(car *remote.Transmitter) *Shell {
	s := &Shell{
		Interactive: !evalOnly,

		Shell: ishell.New(),
		Car:   car,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(noTargetPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustHaveTarget wraps command func requiring a dialed target.
func MustHaveTarget(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Car.Target() == "" {
			c.Err(fmt.Errorf("no target (use: target HOST[:PORT])"))
			return
		}
		fn(c)
	}
}

// WithAutoConnect sets AutoConnect.
func (s *Shell) WithAutoConnect(en bool) *Shell {
	s.AutoConnect = en
	return s
}

// DialTarget dials the receiver, assuming the default port without an
// explicit one, and updates the prompt.
func (s *Shell) DialTarget(hostport string) error {
	if !strings.Contains(hostport, ":") {
		hostport = fmt.Sprintf("%s:%d", hostport, defaultPort)
	}
	if err := s.Car.Dial(hostport); err != nil {
		return err
	}
	s.Shell.SetPrompt(hostport + " > ")
	return nil
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	defer s.Car.Close()
	if s.AutoConnect && target != "" {
		if s.Interactive {
			s.Shell.Printf("Dialing %s ...\n", target)
		}
		if err := s.DialTarget(target); err != nil {
			log.Fatalf("dial %q failed: %v", target, err)
		}
	}
	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

var (
	// TargetCmd dials the receiving bridge.
	TargetCmd = ishell.Cmd{
		Name:    "target",
		Aliases: []string{"t"},
		Help:    "HOST[:PORT]",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("HOST required"))
				return
			}
			if err := ShellFrom(c).DialTarget(c.Args[0]); err != nil {
				c.Err(err)
			}
		},
	}

	// StateCmd prints the transmitter state.
	StateCmd = ishell.Cmd{
		Name:    "state",
		Aliases: []string{"st"},
		Help:    "",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			target := s.Car.Target()
			if target == "" {
				target = "(none)"
			}
			c.Printf("target: %s\n", target)
			c.Printf("%s\n", s.Car.Reading())
			if s.Car.Streaming() {
				c.Println("streaming")
			}
		},
	}

	// QuitCmd leaves the shell.
	QuitCmd = ishell.Cmd{
		Name:    "quit",
		Aliases: []string{"q"},
		Help:    "",
		Func: func(c *ishell.Context) {
			c.Stop()
		},
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New(remote.NewTransmitter()).WithAutoConnect(true).Run(flag.Args()...)
}
