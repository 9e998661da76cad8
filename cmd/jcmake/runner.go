//go:build !tinygo

package main

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// runner starts an external tool and waits for it.
type runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

type execRunner struct {
	stdout, stderr io.Writer
}

func (r execRunner) Run(ctx context.Context, name string, args ...string) error {
	fmt.Fprintln(r.stderr, "+ "+name+" "+strings.Join(args, " "))
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = r.stdout
	cmd.Stderr = r.stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
