//go:build !tinygo

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"jcboard/internal/catalog"
)

// Exit codes of jcmake's own failures.
const (
	exitFail  = 1
	exitUsage = 2
)

type options struct {
	example catalog.Entry
	target  string
	port    string
	baud    int
	out     string
	version string
	config  string
	host    bool
	src     string

	stdout io.Writer
	stderr io.Writer
	tools  runner
}

// exitCoder is a wrapped tool that exited non-zero (*exec.ExitError).
type exitCoder interface {
	error
	ExitCode() int
}

type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

func newFlagSet(o *options, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("jcmake", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.target, "target", "pico2", "TinyGo target for build, flash and size.")
	fs.StringVar(&o.port, "port", "/dev/ttyUSB0", "Board serial port for flash, monitor and erase.")
	fs.IntVar(&o.baud, "baud", 115200, "Monitor baud rate.")
	fs.StringVar(&o.out, "out", "build", "Output directory.")
	fs.StringVar(&o.version, "version", "", "Version stamped into firmware.")
	fs.StringVar(&o.config, "config", "", "Host config file for init, erase -host and card.")
	fs.BoolVar(&o.host, "host", false, "erase: wipe the host simulation's NVS file instead of the board.")
	var example string
	fs.StringVar(&example, "example", "", "Example to operate on (same as EXAMPLE=).")
	fs.Usage = func() { printUsage(stderr, fs) }
	return fs
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, "usage: jcmake [flags] <target> [EXAMPLE=<name>] [PORT=<dev>] [SRC=<dir>]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "targets:")
	for _, t := range targets {
		req := ""
		if t.needsExample {
			req = " EXAMPLE=<name>"
		}
		fmt.Fprintf(w, "  %-22s %s\n", t.name+req, t.help)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "examples: "+strings.Join(catalog.Names(), " "))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "flags:")
	fs.PrintDefaults()
}

// run executes one jcmake invocation and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, tools runner) int {
	o := &options{stdout: stdout, stderr: stderr, tools: tools}
	fs := newFlagSet(o, stderr)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return exitUsage
	}

	var name string
	var positional []string
	for _, a := range fs.Args() {
		k, v, ok := strings.Cut(a, "=")
		if !ok {
			positional = append(positional, a)
			continue
		}
		switch strings.ToUpper(k) {
		case "EXAMPLE":
			name = v
		case "PORT":
			o.port = v
		case "SRC":
			o.src = v
		default:
			fmt.Fprintf(stderr, "jcmake: unknown variable %s\n", k)
			return exitUsage
		}
	}
	if f := fs.Lookup("example"); f.Value.String() != "" {
		name = f.Value.String()
	}
	if len(positional) == 0 {
		positional = []string{"help"}
	}
	if len(positional) > 1 {
		if name != "" {
			fmt.Fprintf(stderr, "jcmake: unexpected arguments %v\n", positional[1:])
			fs.Usage()
			return exitUsage
		}
		name = positional[1]
	}

	t, ok := lookupTarget(positional[0])
	if !ok {
		fmt.Fprintf(stderr, "jcmake: unknown target %q\n", positional[0])
		fs.Usage()
		return exitUsage
	}
	if t.name == "help" {
		printUsage(stdout, fs)
		return 0
	}
	if t.needsExample {
		if name == "" {
			fmt.Fprintf(stderr, "jcmake: %s requires EXAMPLE=<name>\n", t.name)
			fs.Usage()
			return exitUsage
		}
		e, ok := catalog.Lookup(name)
		if !ok {
			fmt.Fprintf(stderr, "jcmake: unknown example %q\n", name)
			fs.Usage()
			return exitUsage
		}
		o.example = e
	}

	err := t.run(ctx, o)
	var ue *usageError
	var ee exitCoder
	switch {
	case err == nil:
		return 0
	case errors.As(err, &ue):
		fmt.Fprintln(stderr, "jcmake: "+ue.msg)
		fs.Usage()
		return exitUsage
	case errors.As(err, &ee) && ee.ExitCode() > 0:
		return ee.ExitCode()
	case errors.Is(err, context.Canceled):
		return 0
	default:
		fmt.Fprintln(stderr, "jcmake:", err)
		return exitFail
	}
}
