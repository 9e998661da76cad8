//go:build tinygo

package main

import (
	"context"

	"jcboard/app"
	"jcboard/hal"
	"jcboard/internal/buildinfo"
	"jcboard/internal/config"
)

func main() {
	h := hal.New()
	if err := app.Run(context.Background(), h, config.Default(), buildinfo.Example, 30); err != nil {
		if l := h.Logger(); l != nil {
			l.WriteLineString("jcboard: " + err.Error())
		}
	}
	select {}
}
