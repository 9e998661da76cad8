//go:build !tinygo && cgo

package hal

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/mp3"
)

const hostAudioSampleRate = 44100

// hostAudio stands in for the ES8311 codec and the MP3 decoder using
// Ebiten's audio package.
type hostAudio struct {
	mu     sync.Mutex
	ctx    *audio.Context
	player *audio.Player
	src    io.ReadSeekCloser
	gen    atomic.Uint64
	vol    int
	done   chan struct{}
}

func newHostAudio() AudioOut {
	return &hostAudio{vol: 50, done: make(chan struct{}, 1)}
}

func (a *hostAudio) Init() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ctx != nil {
		return nil
	}
	if c := audio.CurrentContext(); c != nil {
		if c.SampleRate() != hostAudioSampleRate {
			return errors.New("host audio: ebiten audio context sample rate is fixed")
		}
		a.ctx = c
		return nil
	}
	a.ctx = audio.NewContext(hostAudioSampleRate)
	return nil
}

func (a *hostAudio) SetVolume(percent int) (int, error) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	a.mu.Lock()
	a.vol = percent
	p := a.player
	a.mu.Unlock()

	if p != nil {
		p.SetVolume(float64(percent) / 100)
	}
	return percent, nil
}

func (a *hostAudio) Play(src io.ReadSeekCloser) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ctx == nil {
		_ = src.Close()
		return fmt.Errorf("host audio: codec not initialised: %w", ErrNotImplemented)
	}
	a.stopLocked()

	stream, err := mp3.DecodeWithSampleRate(hostAudioSampleRate, src)
	if err != nil {
		_ = src.Close()
		return fmt.Errorf("mp3 decode: %w", err)
	}
	gen := a.gen.Add(1)
	p, err := a.ctx.NewPlayer(&endReader{r: stream, a: a, gen: gen})
	if err != nil {
		_ = src.Close()
		return fmt.Errorf("host audio: new player: %w", err)
	}
	p.SetBufferSize(100 * time.Millisecond)
	p.SetVolume(float64(a.vol) / 100)
	p.Play()
	a.player = p
	a.src = src
	return nil
}

func (a *hostAudio) Stop() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stopLocked()
}

func (a *hostAudio) stopLocked() error {
	a.gen.Add(1) // a stopped stream never reports completion
	var err error
	if a.player != nil {
		err = a.player.Close()
		a.player = nil
	}
	if a.src != nil {
		if cerr := a.src.Close(); err == nil {
			err = cerr
		}
		a.src = nil
	}
	return err
}

func (a *hostAudio) Done() <-chan struct{} { return a.done }

func (a *hostAudio) finished(gen uint64) {
	if gen != a.gen.Load() {
		return
	}
	select {
	case a.done <- struct{}{}:
	default:
	}
}

// endReader reports the natural end of a decoded stream exactly once.
type endReader struct {
	r    io.Reader
	a    *hostAudio
	gen  uint64
	once sync.Once
}

func (e *endReader) Read(p []byte) (int, error) {
	n, err := e.r.Read(p)
	if errors.Is(err, io.EOF) {
		e.once.Do(func() { e.a.finished(e.gen) })
	}
	return n, err
}
