//go:build !tinygo

// Package console is the interactive prompt of a headless host run. It
// stands in for the finger on the touch panel and for the simulated
// peripherals' plugs and cables.
package console

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"jcboard/hal"
	"jcboard/ui"
)

// Board is the host board the console drives. HAL returns nil until the
// board exists; Screen returns nil while it is down.
type Board interface {
	HAL() hal.HAL
	Screen() *ui.Screen
}

// Console reads commands and applies them to a host board.
type Console struct {
	board Board
	rl    *readline.Instance
	out   io.Writer
}

// New creates a console on the terminal. It may be created before the
// board so that the board can log through Stdout.
func New(b Board) (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "board> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	c := newConsole(b, rl.Stdout())
	c.rl = rl
	return c, nil
}

func newConsole(b Board, out io.Writer) *Console {
	return &Console{board: b, out: out}
}

// Stdout returns a writer that does not garble the prompt. Board logs
// should go through it.
func (c *Console) Stdout() io.Writer { return c.out }

// Run reads commands until quit, EOF or ctx ends, then calls cancel.
func (c *Console) Run(ctx context.Context, cancel context.CancelFunc) {
	defer c.rl.Close()
	defer cancel()

	c.printHelp()
	for ctx.Err() == nil {
		line, err := c.rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err != nil {
			return
		}
		if c.Exec(line) {
			return
		}
	}
}

// Exec runs one command line and reports whether it asked to quit.
func (c *Console) Exec(line string) (quit bool) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false
	}
	cmd, args := strings.ToLower(parts[0]), parts[1:]
	var err error
	switch cmd {
	case "help", "?":
		c.printHelp()
	case "tap", "t":
		err = c.cmdTouch(args, hal.TouchPress, hal.TouchRelease)
	case "press":
		err = c.cmdTouch(args, hal.TouchPress)
	case "move":
		err = c.cmdTouch(args, hal.TouchMove)
	case "release":
		err = c.cmdTouch(args, hal.TouchRelease)
	case "click", "c":
		err = c.cmdClick(strings.Join(args, " "))
	case "texts", "ls":
		err = c.cmdTexts()
	case "bus":
		err = c.cmdBus(strings.Join(args, " "))
	case "battery":
		err = c.cmdBattery(args)
	case "card":
		err = c.cmdCard(args)
	case "quit", "exit", "q":
		fmt.Fprintln(c.out, "Exiting...")
		return true
	default:
		fmt.Fprintf(c.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	if err != nil {
		fmt.Fprintf(c.out, "%s: %v\n", cmd, err)
	}
	return false
}

func (c *Console) printHelp() {
	fmt.Fprintln(c.out, `
Board Commands:
  Touch:
    tap <x> <y>        - Press and release at a point
    press <x> <y>      - Put a finger down
    move <x> <y>       - Drag the finger
    release <x> <y>    - Lift the finger
    click <caption>    - Tap the button showing caption
    texts              - List label and button texts on screen

  Peripherals:
    bus <text>         - Send a line from the RS485 bus peer
    battery <mV>       - Set the voltage at the battery ADC pin
    card in|out        - Insert or remove the SD card

    quit               - Exit`)
}

func (c *Console) injector() (hal.TouchInjector, error) {
	in, ok := c.board.HAL().(hal.TouchInjector)
	if !ok {
		return nil, fmt.Errorf("board has no touch injection")
	}
	return in, nil
}

func parsePoint(args []string) (x, y int, err error) {
	if len(args) != 2 {
		return 0, 0, fmt.Errorf("usage: <x> <y>")
	}
	if x, err = strconv.Atoi(args[0]); err != nil {
		return 0, 0, fmt.Errorf("bad x %q", args[0])
	}
	if y, err = strconv.Atoi(args[1]); err != nil {
		return 0, 0, fmt.Errorf("bad y %q", args[1])
	}
	return x, y, nil
}

func (c *Console) cmdTouch(args []string, phases ...hal.TouchPhase) error {
	x, y, err := parsePoint(args)
	if err != nil {
		return err
	}
	in, err := c.injector()
	if err != nil {
		return err
	}
	for _, p := range phases {
		in.InjectTouch(hal.TouchEvent{X: int16(x), Y: int16(y), Phase: p})
	}
	return nil
}

func (c *Console) screen() (*ui.Screen, error) {
	s := c.board.Screen()
	if s == nil {
		return nil, fmt.Errorf("no screen (board is down)")
	}
	return s, nil
}

func (c *Console) cmdClick(caption string) error {
	if caption == "" {
		return fmt.Errorf("usage: click <caption>")
	}
	s, err := c.screen()
	if err != nil {
		return err
	}
	x, y, ok := s.Find(caption)
	if !ok {
		return fmt.Errorf("no button %q", caption)
	}
	return c.cmdTouch([]string{strconv.Itoa(x), strconv.Itoa(y)}, hal.TouchPress, hal.TouchRelease)
}

func (c *Console) cmdTexts() error {
	s, err := c.screen()
	if err != nil {
		return err
	}
	for _, t := range s.Texts() {
		fmt.Fprintf(c.out, "  %s\n", strings.ReplaceAll(t, "\n", " / "))
	}
	return nil
}

func (c *Console) cmdBus(text string) error {
	in, ok := c.board.HAL().(hal.BusInjector)
	if !ok {
		return fmt.Errorf("board has no simulated bus")
	}
	return in.InjectRS485([]byte(text + "\r\n"))
}

func (c *Console) cmdBattery(args []string) error {
	sim, ok := c.board.HAL().(hal.SimControl)
	if !ok {
		return fmt.Errorf("board is not simulated")
	}
	if len(args) != 1 {
		return fmt.Errorf("usage: battery <mV>")
	}
	mv, err := strconv.Atoi(args[0])
	if err != nil || mv < 0 {
		return fmt.Errorf("bad millivolts %q", args[0])
	}
	sim.SetBatteryMillivolts(mv)
	return nil
}

func (c *Console) cmdCard(args []string) error {
	sim, ok := c.board.HAL().(hal.SimControl)
	if !ok {
		return fmt.Errorf("board is not simulated")
	}
	if len(args) != 1 || (args[0] != "in" && args[0] != "out") {
		return fmt.Errorf("usage: card in|out")
	}
	sim.SetCardPresent(args[0] == "in")
	return nil
}
