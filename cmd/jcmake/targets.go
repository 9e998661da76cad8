//go:build !tinygo

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"jcboard/internal/buildinfo"
	"jcboard/internal/catalog"
	"jcboard/internal/config"
)

type target struct {
	name         string
	aliases      []string
	needsExample bool
	help         string
	run          func(ctx context.Context, o *options) error
}

var targets []target

func init() {
	targets = []target{
		{name: "build", needsExample: true, help: "Compile one example", run: build},
		{name: "build-all", help: "Compile every example", run: buildAll},
		{name: "upload", aliases: []string{"flash"}, needsExample: true, help: "Compile and flash one example", run: flash},
		{name: "clean", needsExample: true, help: "Remove one example's build output", run: clean},
		{name: "clean-all", help: "Remove the output directory", run: cleanAll},
		{name: "check", help: "Vet and test the module", run: check},
		{name: "monitor", needsExample: true, help: "Print the board's serial console", run: monitor},
		{name: "size", needsExample: true, help: "Report one example's firmware size", run: size},
		{name: "erase", needsExample: true, help: "Erase flash (or the host NVS file with -host)", run: erase},
		{name: "list", help: "List the examples", run: list},
		{name: "init", help: "Write a default " + config.DefaultPath, run: initConfig},
		{name: "docs", help: "Print the example catalog as Markdown", run: docs},
		{name: "card", help: "Copy SRC=<dir> onto the host's simulated SD card", run: loadCard},
		{name: "help", help: "Show this text"},
	}
}

func lookupTarget(name string) (target, bool) {
	name = strings.ToLower(name)
	for _, t := range targets {
		if t.name == name {
			return t, true
		}
		for _, a := range t.aliases {
			if a == name {
				return t, true
			}
		}
	}
	return target{}, false
}

func artifact(o *options, e catalog.Entry) string {
	return filepath.Join(o.out, e.Name()+".bin")
}

func tinygoArgs(o *options, e catalog.Entry, verb string, extra ...string) []string {
	args := []string{verb, "-target", o.target}
	args = append(args, extra...)
	return append(args, "-ldflags", buildinfo.LDFlags(e.Name(), o.version), ".")
}

func compile(ctx context.Context, o *options, e catalog.Entry, extra ...string) error {
	if err := os.MkdirAll(o.out, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", o.out, err)
	}
	args := append([]string{"-o", artifact(o, e)}, extra...)
	return o.tools.Run(ctx, "tinygo", tinygoArgs(o, e, "build", args...)...)
}

func build(ctx context.Context, o *options) error {
	return compile(ctx, o, o.example)
}

func buildAll(ctx context.Context, o *options) error {
	for _, e := range catalog.All() {
		fmt.Fprintf(o.stdout, "== %s\n", e.Name())
		if err := compile(ctx, o, e); err != nil {
			return err
		}
	}
	return nil
}

func flash(ctx context.Context, o *options) error {
	return o.tools.Run(ctx, "tinygo", tinygoArgs(o, o.example, "flash", "-port", o.port)...)
}

func size(ctx context.Context, o *options) error {
	return compile(ctx, o, o.example, "-size", "full")
}

func clean(_ context.Context, o *options) error {
	path := artifact(o, o.example)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}

func cleanAll(_ context.Context, o *options) error {
	if err := os.RemoveAll(o.out); err != nil {
		return fmt.Errorf("remove %s: %w", o.out, err)
	}
	return nil
}

func check(ctx context.Context, o *options) error {
	if err := o.tools.Run(ctx, "go", "vet", "./..."); err != nil {
		return err
	}
	return o.tools.Run(ctx, "go", "test", "./...")
}

func erase(ctx context.Context, o *options) error {
	if !o.host {
		return o.tools.Run(ctx, "esptool.py", "--port", o.port, "erase_flash")
	}
	cfg, err := loadConfig(o)
	if err != nil {
		return err
	}
	n, err := eraseImage(cfg.NVS.Path, eraseBlockBytes)
	if err != nil {
		return err
	}
	fmt.Fprintf(o.stdout, "erased %s (%d bytes)\n", cfg.NVS.Path, n)
	return nil
}

func list(_ context.Context, o *options) error {
	for _, e := range catalog.All() {
		fmt.Fprintf(o.stdout, "%s  %s\n", e.Name(), e.Title)
	}
	return nil
}

func docs(_ context.Context, o *options) error {
	fmt.Fprintln(o.stdout, "| # | Example | What it shows |")
	fmt.Fprintln(o.stdout, "|---|---|---|")
	for _, e := range catalog.All() {
		fmt.Fprintf(o.stdout, "| %02d | `%s` | %s |\n", e.Num, e.Name(), e.Doc)
	}
	return nil
}

func initConfig(_ context.Context, o *options) error {
	path := config.ResolvePath(o.config)
	if err := config.Save(path, config.Default()); err != nil {
		return err
	}
	fmt.Fprintf(o.stdout, "wrote %s\n", path)
	return nil
}

func loadConfig(o *options) (config.Config, error) {
	return config.Load(config.ResolvePath(o.config))
}

func loadCard(_ context.Context, o *options) error {
	if o.src == "" {
		return usagef("card requires SRC=<dir>")
	}
	cfg, err := loadConfig(o)
	if err != nil {
		return err
	}
	n, err := copyTree(o.src, cfg.SDCard.Root)
	if err != nil {
		return err
	}
	fmt.Fprintf(o.stdout, "copied %d files to %s\n", n, cfg.SDCard.Root)
	return nil
}
