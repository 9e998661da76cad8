package app

import (
	"fmt"

	"jcboard/examples"
	"jcboard/examples/audiomp3"
	"jcboard/examples/batteryadc"
	"jcboard/examples/bluetooth"
	"jcboard/examples/displaybasic"
	"jcboard/examples/displayimages"
	"jcboard/examples/displaytouch"
	"jcboard/examples/resetdevice"
	"jcboard/examples/rs485serial"
	"jcboard/examples/sdcard"
	"jcboard/examples/sleepwakeup"
	"jcboard/examples/wifihttp"
	"jcboard/examples/wifiscan"
	"jcboard/internal/catalog"
	"jcboard/internal/errcode"
)

// Entry is a runnable example.
type Entry struct {
	catalog.Entry
	Meta examples.Meta
	New  examples.Factory
}

var registry = map[string]Entry{}

func register(m examples.Meta, f examples.Factory) {
	registry[m.Tag] = Entry{Meta: m, New: f}
}

func init() {
	register(displaybasic.Meta, displaybasic.New)
	register(displayimages.Meta, displayimages.New)
	register(displaytouch.Meta, displaytouch.New)
	register(wifiscan.Meta, wifiscan.New)
	register(wifihttp.Meta, wifihttp.New)
	register(sdcard.Meta, sdcard.New)
	register(bluetooth.Meta, bluetooth.New)
	register(resetdevice.Meta, resetdevice.New)
	register(sleepwakeup.Meta, sleepwakeup.New)
	register(batteryadc.Meta, batteryadc.New)
	register(audiomp3.Meta, audiomp3.New)
	register(rs485serial.Meta, rs485serial.New)
}

// Lookup resolves an example by any name catalog.Lookup accepts. An empty
// name selects the first example.
func Lookup(name string) (Entry, error) {
	if name == "" {
		name = catalog.All()[0].Slug
	}
	ce, ok := catalog.Lookup(name)
	if !ok {
		return Entry{}, &errcode.E{C: errcode.InvalidParams, Op: "example lookup", Msg: fmt.Sprintf("unknown example %q", name)}
	}
	e, ok := registry[ce.Slug]
	if !ok {
		return Entry{}, &errcode.E{C: errcode.Unsupported, Op: "example lookup", Msg: ce.Name() + " has no implementation"}
	}
	e.Entry = ce
	return e, nil
}
