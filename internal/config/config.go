// Package config holds the board and host-simulation settings.
//
// TinyGo builds use Default(); host builds may overlay a YAML file.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the full board configuration.
type Config struct {
	Log     Log     `yaml:"log"`
	Window  Window  `yaml:"window"`
	WiFi    WiFi    `yaml:"wifi"`
	HTTP    HTTP    `yaml:"http"`
	Battery Battery `yaml:"battery"`
	RS485   RS485   `yaml:"rs485"`
	SDCard  SDCard  `yaml:"sdcard"`
	NVS     NVS     `yaml:"nvs"`
	Sim     Sim     `yaml:"sim"`
}

type Log struct {
	Level string `yaml:"level"`
}

type Window struct {
	Scale int `yaml:"scale"`
}

type WiFi struct {
	SSID     string `yaml:"ssid"`
	Password string `yaml:"password"`
}

type HTTP struct {
	URL string `yaml:"url"`
}

type Battery struct {
	MinMV   int `yaml:"min_mv"`
	MaxMV   int `yaml:"max_mv"`
	Samples int `yaml:"samples"`
}

type RS485 struct {
	// Device is a host serial device such as /dev/ttyUSB0. Empty selects the
	// simulated bus peer.
	Device string `yaml:"device"`
	Baud   int    `yaml:"baud"`
}

type SDCard struct {
	// Root is the host directory standing in for the card.
	Root    string `yaml:"root"`
	Present bool   `yaml:"present"`
}

type NVS struct {
	Path string `yaml:"path"`
}

// Sim configures the simulated peripherals of the host build.
type Sim struct {
	BatteryMV       int           `yaml:"battery_mv"`
	BatteryNoiseMV  int           `yaml:"battery_noise_mv"`
	ADCCalibrated   bool          `yaml:"adc_calibrated"`
	TransportFail   bool          `yaml:"transport_fail"`
	WiFiDisconnects int           `yaml:"wifi_disconnects"`
	ScanDelay       time.Duration `yaml:"scan_delay"`
	AccessPoints    []AccessPoint `yaml:"access_points"`
	BLEBackend      string        `yaml:"ble_backend"`
	BLEDevices      []BLEDevice   `yaml:"ble_devices"`
	BusPeerInterval time.Duration `yaml:"bus_peer_interval"`
}

type AccessPoint struct {
	SSID    string `yaml:"ssid"`
	RSSI    int    `yaml:"rssi"`
	Channel int    `yaml:"channel"`
	Auth    string `yaml:"auth"`
}

type BLEDevice struct {
	Address string `yaml:"address"`
	Name    string `yaml:"name"`
	RSSI    int    `yaml:"rssi"`
}

// BLE backends understood by the host build.
const (
	BLEBackendSim    = "sim"
	BLEBackendSystem = "system"
)

// Default returns the configuration the board ships with.
func Default() Config {
	return Config{
		Log:    Log{Level: "info"},
		Window: Window{Scale: 1},
		WiFi:   WiFi{SSID: "YOUR_WIFI_SSID", Password: "YOUR_WIFI_PASSWORD"},
		HTTP:   HTTP{URL: "http://httpbin.org/ip"},
		Battery: Battery{
			MinMV:   2250,
			MaxMV:   2500,
			Samples: 500,
		},
		RS485:  RS485{Baud: 115200},
		SDCard: SDCard{Root: "sdcard", Present: true},
		NVS:    NVS{Path: "jcboard.nvs"},
		Sim: Sim{
			BatteryMV:      2400,
			BatteryNoiseMV: 15,
			ADCCalibrated:  true,
			ScanDelay:      1500 * time.Millisecond,
			AccessPoints: []AccessPoint{
				{SSID: "HomeNet", RSSI: -42, Channel: 6, Auth: "wpa2"},
				{SSID: "HomeNet-Guest", RSSI: -55, Channel: 6, Auth: "open"},
				{SSID: "Workshop", RSSI: -63, Channel: 11, Auth: "wpa/wpa2"},
				{SSID: "", RSSI: -71, Channel: 1, Auth: "wpa3"},
				{SSID: "OldRouter", RSSI: -84, Channel: 3, Auth: "wep"},
			},
			BLEBackend: BLEBackendSim,
			BLEDevices: []BLEDevice{
				{Address: "C4:7C:8D:6A:12:01", Name: "Flower care", RSSI: -58},
				{Address: "E2:11:4B:90:AA:3C", Name: "", RSSI: -77},
				{Address: "F0:F5:BD:01:22:9E", Name: "JC-Remote", RSSI: -49},
			},
			BusPeerInterval: 3 * time.Second,
		},
	}
}

// Validate checks values that would make an example misbehave.
func (c Config) Validate() error {
	var errs []string
	if c.Battery.MaxMV <= c.Battery.MinMV {
		errs = append(errs, fmt.Sprintf("battery.max_mv (%d) must exceed battery.min_mv (%d)", c.Battery.MaxMV, c.Battery.MinMV))
	}
	if c.Battery.Samples <= 0 {
		errs = append(errs, "battery.samples must be positive")
	}
	if c.RS485.Baud <= 0 {
		errs = append(errs, "rs485.baud must be positive")
	}
	if c.Window.Scale <= 0 {
		errs = append(errs, "window.scale must be positive")
	}
	switch c.Sim.BLEBackend {
	case "", BLEBackendSim, BLEBackendSystem:
	default:
		errs = append(errs, fmt.Sprintf("sim.ble_backend %q: want %q or %q", c.Sim.BLEBackend, BLEBackendSim, BLEBackendSystem))
	}
	if c.Sim.WiFiDisconnects < 0 {
		errs = append(errs, "sim.wifi_disconnects must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(errs, "; "))
	}
	return nil
}
