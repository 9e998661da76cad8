package ble

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jcboard/hal"
	"jcboard/internal/errcode"
	"jcboard/status"
)

func addr(last byte) hal.BDAddr { return hal.BDAddr{0xC4, 0x7C, 0x8D, 0x6A, 0x12, last} }

func TestObserveUpdatesInPlace(t *testing.T) {
	var l List
	l.Observe(addr(1), "", -70)
	l.Observe(addr(1), "Flower care", -60)
	l.Observe(addr(1), "Renamed", -50)
	l.Observe(addr(1), "", -40)

	got := l.Snapshot()
	require.Len(t, got, 1)
	assert.Equal(t, "Flower care", got[0].Name, "first non-empty name sticks")
	assert.Equal(t, int8(-40), got[0].RSSI, "latest RSSI wins")
}

func TestObserveCapsAtMaxDevices(t *testing.T) {
	var l List
	for i := 0; i < MaxDevices+10; i++ {
		l.Observe(addr(byte(i)), "", -50)
	}
	assert.Equal(t, MaxDevices, l.Len())

	// Known addresses still update once full.
	l.Observe(addr(3), "late", -30)
	d := l.Snapshot()[3]
	assert.Equal(t, "late", d.Name)
	assert.Equal(t, int8(-30), d.RSSI)
}

func TestObserveConcurrent(t *testing.T) {
	var l List
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				l.Observe(addr(byte(i%30)), "", int8(-g))
			}
		}(g)
	}
	wg.Wait()
	assert.Equal(t, MaxDevices, l.Len())
}

func TestDeviceText(t *testing.T) {
	d := Device{Addr: addr(1), RSSI: -58}
	assert.Equal(t, UnknownName, d.DisplayName())
	assert.Equal(t, "C4:7C:8D:6A:12:01  |  RSSI: -58 dBm", d.Detail())
}

type fakeRadio struct {
	ads     []hal.Advertisement
	started chan struct{}
	release chan struct{}
	window  time.Duration
	err     error
}

func (r *fakeRadio) Init() error { return nil }

func (r *fakeRadio) Scan(ctx context.Context, window time.Duration, fn func(hal.Advertisement)) error {
	r.window = window
	for _, a := range r.ads {
		fn(a)
	}
	if r.started != nil {
		close(r.started)
		<-r.release
	}
	return r.err
}

func TestScanClearsAndReportsCount(t *testing.T) {
	var l List
	l.Observe(addr(9), "stale", -90)
	radio := &fakeRadio{ads: []hal.Advertisement{
		{Addr: addr(1), Name: "JC-Remote", RSSI: -49},
		{Addr: addr(2), RSSI: -77},
		{Addr: addr(1), RSSI: -45},
	}}
	rec := &status.Recorder{}
	s := NewScanner(radio, &l, rec)

	n, err := s.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, ScanWindow, radio.window)
	assert.Equal(t, "Scan complete, found 2 devices", rec.Events()[1].Message)
	assert.False(t, s.Scanning())
}

func TestScanRejectsReentry(t *testing.T) {
	var l List
	radio := &fakeRadio{
		ads:     []hal.Advertisement{{Addr: addr(1), RSSI: -49}},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	s := NewScanner(radio, &l, nil)

	done := make(chan error, 1)
	go func() { _, err := s.Scan(context.Background()); done <- err }()
	<-radio.started

	_, err := s.Scan(context.Background())
	assert.Equal(t, errcode.Busy, errcode.Of(err))
	assert.Equal(t, 1, l.Len(), "busy scan must not clear the list")

	close(radio.release)
	require.NoError(t, <-done)
}

func TestScanFailureReported(t *testing.T) {
	rec := &status.Recorder{}
	s := NewScanner(&fakeRadio{err: errors.New("hci down")}, &List{}, rec)
	_, err := s.Scan(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, rec.Count(status.Failure))
}
