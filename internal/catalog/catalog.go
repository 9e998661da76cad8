// Package catalog lists the board examples by name. It carries no code from
// the examples themselves so build tooling can import it cheaply.
package catalog

import (
	"fmt"
	"strings"
)

// Entry describes one example.
type Entry struct {
	Num   int
	Slug  string
	Title string
	Doc   string
}

// Name is the directory-style identifier, e.g. "06_sdcard".
func (e Entry) Name() string { return fmt.Sprintf("%02d_%s", e.Num, e.Slug) }

var entries = []Entry{
	{1, "display_basic", "Display Basic", "Title, info text, a click counter button and the panel resolution."},
	{2, "display_images", "Display Images", "Colour bars, gradient, shapes, animation and text styles, cycled with Next."},
	{3, "display_touch", "Display Touch", "Finger painting canvas with coordinates, press state, Clear and Color buttons."},
	{4, "wifi_scan", "WiFi Scan", "Brings up the co-processor link and lists nearby access points."},
	{5, "wifi_http", "WiFi HTTP", "Joins a network with retry, then fetches a URL and shows status, time and body."},
	{6, "sdcard", "SD Card", "Mounts the card behind its LDO rail, lists files and writes a test file."},
	{7, "bluetooth", "Bluetooth", "Ten second BLE scan, de-duplicated by address, refreshed every two seconds."},
	{8, "reset_device", "Reset Device", "Shows the reset reason and chip info; reset now or after a cancellable countdown."},
	{9, "sleep_wakeup", "Sleep & Wakeup", "Light sleep on a timer or until touch, deep sleep on a timer, wakeup cause."},
	{10, "battery_adc", "Battery ADC", "Averages 500 ADC samples each second into millivolts and percent."},
	{11, "audio_mp3", "Audio MP3", "Plays MP3 files from the card's music folder with auto-advance."},
	{12, "rs485_serial", "RS485 Serial", "Half-duplex RS485 in echo or periodic send mode with RX/TX logs."},
}

// All returns every entry in board order.
func All() []Entry { return append([]Entry(nil), entries...) }

// Lookup resolves "06_sdcard", "sdcard" or "6".
func Lookup(name string) (Entry, bool) {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" {
		return Entry{}, false
	}
	for _, e := range entries {
		if name == e.Name() || name == e.Slug || name == fmt.Sprint(e.Num) || name == fmt.Sprintf("%02d", e.Num) {
			return e, true
		}
	}
	return Entry{}, false
}

// Names returns the directory-style names in board order.
func Names() []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Name())
	}
	return out
}
