//go:build !tinygo && !cgo

package hal

import (
	"io"

	"jcboard/internal/errcode"
)

// hostAudio reports a missing codec when the cgo audio backend is unavailable.
type hostAudio struct{ done chan struct{} }

func newHostAudio() AudioOut { return &hostAudio{done: make(chan struct{})} }

func (a *hostAudio) Init() error {
	return &errcode.E{C: errcode.HardwareAbsent, Op: "codec init", Msg: "audio needs cgo"}
}

func (a *hostAudio) SetVolume(percent int) (int, error) { return 0, ErrNotImplemented }

func (a *hostAudio) Play(src io.ReadSeekCloser) error {
	_ = src.Close()
	return ErrNotImplemented
}

func (a *hostAudio) Stop() error           { return nil }
func (a *hostAudio) Done() <-chan struct{} { return a.done }
