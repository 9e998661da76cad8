//go:build !tinygo

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"

	"jcboard/app"
	"jcboard/hal"
	"jcboard/internal/buildinfo"
	"jcboard/internal/config"
	"jcboard/internal/console"
	"jcboard/ui"
)

func main() {
	var hc hal.HeadlessConfig
	var example, cfgPath string
	var interactive, version bool
	flag.StringVar(&example, "example", buildinfo.Example, "Example to run (name, slug or number; empty = first).")
	flag.StringVar(&cfgPath, "config", "", "Config file (default $"+config.EnvPath+" or "+config.DefaultPath+").")
	flag.BoolVar(&hc.Enabled, "headless", false, "Run without a window.")
	flag.IntVar(&hc.Hz, "hz", 60, "Tick rate in headless mode.")
	flag.Uint64Var(&hc.Ticks, "ticks", 0, "Stop after N ticks in headless mode (0 = run forever).")
	flag.BoolVar(&interactive, "console", false, "Headless mode: read touch and peripheral commands from the terminal.")
	flag.BoolVar(&version, "version", false, "Print the version and exit.")
	flag.Parse()

	if version {
		fmt.Println(buildinfo.Short())
		return
	}
	if err := run(example, cfgPath, hc, interactive); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(example, cfgPath string, hc hal.HeadlessConfig, interactive bool) error {
	cfg, err := config.Load(config.ResolvePath(cfgPath))
	if err != nil {
		return err
	}
	if _, err := app.Lookup(example); err != nil {
		return err
	}
	hcfg, err := hostConfig(cfg)
	if err != nil {
		return err
	}

	b := &board{}
	newApp := func(h hal.HAL) func() error {
		sys, err := app.New(h, cfg, example)
		if err != nil {
			return func() error { return err }
		}
		b.set(h, sys)
		return sys.Step
	}

	if !hc.Enabled {
		return hal.RunWindow(hcfg, newApp)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if interactive {
		con, err := console.New(b)
		if err != nil {
			return err
		}
		hcfg.Out = con.Stdout()
		var cancel context.CancelFunc
		ctx, cancel = context.WithCancel(ctx)
		defer cancel()
		go con.Run(ctx, cancel)
	}
	err = hal.RunHeadless(ctx, hcfg, hc, newApp)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// board hands the running system to the console once the runner has
// created it.
type board struct {
	mu  sync.Mutex
	h   hal.HAL
	sys *app.System
}

func (b *board) set(h hal.HAL, sys *app.System) {
	b.mu.Lock()
	b.h, b.sys = h, sys
	b.mu.Unlock()
}

func (b *board) HAL() hal.HAL {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.h
}

func (b *board) Screen() *ui.Screen {
	b.mu.Lock()
	sys := b.sys
	b.mu.Unlock()
	if sys == nil {
		return nil
	}
	return sys.Screen()
}

// hostConfig maps the board configuration onto the host simulation.
func hostConfig(cfg config.Config) (hal.HostConfig, error) {
	hc := hal.DefaultHostConfig()
	hc.Scale = cfg.Window.Scale
	hc.NVSPath = cfg.NVS.Path
	hc.SDRoot = cfg.SDCard.Root
	hc.SDPresent = cfg.SDCard.Present
	hc.RS485Device = cfg.RS485.Device

	sim := cfg.Sim
	hc.BatteryMV = sim.BatteryMV
	hc.BatteryNoiseMV = sim.BatteryNoiseMV
	hc.ADCCalibrated = sim.ADCCalibrated
	hc.TransportFail = sim.TransportFail
	hc.WiFiDisconnects = sim.WiFiDisconnects
	hc.ScanDelay = sim.ScanDelay
	hc.BusPeerInterval = sim.BusPeerInterval
	hc.BLESystem = sim.BLEBackend == config.BLEBackendSystem

	hc.AccessPoints = make([]hal.AccessPoint, 0, len(sim.AccessPoints))
	for _, ap := range sim.AccessPoints {
		hc.AccessPoints = append(hc.AccessPoints, hal.AccessPoint{
			SSID:    ap.SSID,
			RSSI:    int8(ap.RSSI),
			Channel: uint8(ap.Channel),
			Auth:    hal.ParseAuthMode(ap.Auth),
		})
	}
	hc.BLEDevices = make([]hal.Advertisement, 0, len(sim.BLEDevices))
	for _, d := range sim.BLEDevices {
		addr, err := hal.ParseBDAddr(d.Address)
		if err != nil {
			return hc, fmt.Errorf("sim.ble_devices: %w", err)
		}
		hc.BLEDevices = append(hc.BLEDevices, hal.Advertisement{Addr: addr, Name: d.Name, RSSI: int8(d.RSSI)})
	}
	return hc, nil
}
