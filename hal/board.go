package hal

import (
	"fmt"
	"strconv"
	"strings"
)

// Panel geometry of the 4.3" MIPI-DSI display, portrait.
const (
	PanelWidth  = 480
	PanelHeight = 800
)

// Board pin assignments.
const (
	PinTouchInt = 4
	PinRS485RX  = 8
	PinRS485TX  = 9
	PinRS485RTS = 10
	PinBattery  = 53 // ADC2 channel 4
)

// SDLDOChannel is the on-chip LDO feeding the SD card slot.
const SDLDOChannel = 4

// RS485Port is the UART wired to the transceiver.
const RS485Port = 1

func (a BDAddr) String() string {
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X", a[0], a[1], a[2], a[3], a[4], a[5])
}

// ParseBDAddr parses "AA:BB:CC:DD:EE:FF".
func ParseBDAddr(s string) (BDAddr, error) {
	var a BDAddr
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != len(a) {
		return a, fmt.Errorf("bd addr %q: want 6 octets", s)
	}
	for i, p := range parts {
		v, err := strconv.ParseUint(p, 16, 8)
		if err != nil {
			return a, fmt.Errorf("bd addr %q: %w", s, err)
		}
		a[i] = byte(v)
	}
	return a, nil
}

// ParseAuthMode accepts the names used in configuration files.
func ParseAuthMode(s string) AuthMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "open", "":
		return AuthOpen
	case "wep":
		return AuthWEP
	case "wpa":
		return AuthWPA
	case "wpa2":
		return AuthWPA2
	case "wpa/wpa2", "wpa_wpa2":
		return AuthWPAWPA2
	case "wpa3":
		return AuthWPA3
	}
	return AuthOther
}

func (a AuthMode) String() string {
	switch a {
	case AuthOpen:
		return "Open"
	case AuthWEP:
		return "WEP"
	case AuthWPA:
		return "WPA"
	case AuthWPA2:
		return "WPA2"
	case AuthWPAWPA2:
		return "WPA/WPA2"
	case AuthWPA3:
		return "WPA3"
	}
	return "?"
}

var resetReasonNames = [...]string{
	ResetUnknown:      "Unknown",
	ResetPowerOn:      "Power-on",
	ResetExternal:     "External pin",
	ResetSoftware:     "Software reset (esp_restart)",
	ResetPanic:        "Exception/panic",
	ResetIntWatchdog:  "Interrupt watchdog",
	ResetTaskWatchdog: "Task watchdog",
	ResetWatchdog:     "Other watchdog",
	ResetDeepSleep:    "Deep sleep wakeup",
	ResetBrownout:     "Brownout",
	ResetSDIO:         "SDIO",
}

func (r ResetReason) String() string {
	if int(r) < len(resetReasonNames) {
		return resetReasonNames[r]
	}
	return "Unknown"
}

var wakeupCauseNames = [...]string{
	WakeUndefined: "Undefined (power on)",
	WakeAll:       "All wakeup sources",
	WakeExt0:      "External signal (RTC_IO)",
	WakeExt1:      "External signal (RTC_CNTL)",
	WakeTimer:     "Timer",
	WakeTouchpad:  "Touchpad",
	WakeULP:       "ULP program",
	WakeGPIO:      "GPIO",
	WakeUART:      "UART",
	WakeWiFi:      "WiFi",
	WakeCoCPU:     "Co-CPU",
	WakeCoCPUTrap: "Co-CPU trap trigger",
	WakeBT:        "Bluetooth",
}

func (c WakeupCause) String() string {
	if int(c) < len(wakeupCauseNames) {
		return wakeupCauseNames[c]
	}
	return "Unknown"
}
