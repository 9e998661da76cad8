package storage

import (
	"fmt"
	"sync"

	"jcboard/hal"
	"jcboard/internal/errcode"
)

// Rail owns an SD power-rail handle. Release powers the rail down exactly
// once no matter how often it is called or from which exit path.
type Rail struct {
	mu  sync.Mutex
	h   hal.PowerRail
	err error
}

// AcquireRail creates the LDO power control for channel ch.
func AcquireRail(host hal.SDHost, ch int) (*Rail, error) {
	h, err := host.NewPowerRail(ch)
	if err != nil {
		return nil, &errcode.E{C: errcode.ResourceAlloc, Op: "sd power rail", Msg: fmt.Sprintf("ldo channel %d", ch), Err: err}
	}
	return &Rail{h: h}, nil
}

// Handle is the underlying rail, nil once released.
func (r *Rail) Handle() hal.PowerRail {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.h
}

// Release frees the rail. Later calls return the first call's result.
func (r *Rail) Release() error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.h != nil {
		r.err = r.h.Release()
		r.h = nil
	}
	return r.err
}
