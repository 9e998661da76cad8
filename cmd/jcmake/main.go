//go:build !tinygo

// Command jcmake builds, flashes and inspects the board examples. It wraps
// tinygo, go and esptool.py; their exit codes pass through.
//
//	jcmake [flags] <target> [EXAMPLE=<name>] [PORT=<dev>] [SRC=<dir>]
package main

import (
	"context"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, execRunner{stdout: os.Stdout, stderr: os.Stderr})
	stop()
	os.Exit(code)
}
