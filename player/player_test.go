package player

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jcboard/hal"
	"jcboard/internal/errcode"
	"jcboard/status"
)

type nopCloser struct{ *bytes.Reader }

func (nopCloser) Close() error { return nil }

type fakeVolume struct {
	files []hal.FileInfo
	err   error
}

func (v *fakeVolume) ReadDir(dir string) ([]hal.FileInfo, error) { return v.files, v.err }
func (v *fakeVolume) Create(string) (io.WriteCloser, error)      { return nil, errors.New("read only") }
func (v *fakeVolume) Open(name string) (io.ReadSeekCloser, error) {
	return nopCloser{bytes.NewReader([]byte(name))}, nil
}

type fakeAudio struct {
	mu     sync.Mutex
	played []string
	stops  int
	vol    int
	done   chan struct{}
	failOn string
}

func newFakeAudio() *fakeAudio { return &fakeAudio{done: make(chan struct{}, 1)} }

func (a *fakeAudio) Init() error { return nil }
func (a *fakeAudio) SetVolume(v int) (int, error) {
	a.mu.Lock()
	a.vol = v
	a.mu.Unlock()
	return v, nil
}
func (a *fakeAudio) Play(src io.ReadSeekCloser) error {
	b, _ := io.ReadAll(src)
	src.Close()
	a.mu.Lock()
	defer a.mu.Unlock()
	if string(b) == a.failOn {
		return errors.New("decoder error")
	}
	a.played = append(a.played, string(b))
	return nil
}
func (a *fakeAudio) Stop() error {
	a.mu.Lock()
	a.stops++
	a.mu.Unlock()
	return nil
}
func (a *fakeAudio) Done() <-chan struct{} { return a.done }

func (a *fakeAudio) Played() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.played...)
}

func library(names ...string) *fakeVolume {
	v := &fakeVolume{}
	for _, n := range names {
		v.files = append(v.files, hal.FileInfo{Name: n, Size: 1000})
	}
	return v
}

func TestLoadFiltersSortsAndCaps(t *testing.T) {
	v := library("b.mp3", "notes.txt", "A.MP3", "c.mp3")
	v.files = append(v.files, hal.FileInfo{Name: "album.mp3", Dir: true})
	p := New(v, newFakeAudio(), nil)
	n, err := p.Load()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"A.MP3", "b.mp3", "c.mp3"}, p.Tracks())

	var many []string
	for i := 0; i < 80; i++ {
		many = append(many, fmt.Sprintf("t%02d.mp3", i))
	}
	p = New(library(many...), newFakeAudio(), nil)
	n, err = p.Load()
	require.NoError(t, err)
	assert.Equal(t, MaxTracks, n)
}

func TestEmptyLibraryState(t *testing.T) {
	p := New(library(), newFakeAudio(), nil)
	_, err := p.Load()
	require.NoError(t, err)
	s := p.State()
	assert.Equal(t, "Track 0 / 0", s.Counter())
	assert.Equal(t, "No tracks found", s.Title())
	assert.NoError(t, p.Next())
	assert.Equal(t, errcode.NotReady, errcode.Of(p.Toggle()))
	assert.False(t, p.State().Playing)
}

func TestToggleAndWrap(t *testing.T) {
	a := newFakeAudio()
	p := New(library("a.mp3", "b.mp3", "c.mp3"), a, nil)
	_, err := p.Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultVolume, p.State().Volume)

	require.NoError(t, p.Prev())
	assert.Equal(t, 2, p.State().Index, "prev wraps to last")
	assert.Empty(t, a.Played(), "stepping while stopped does not play")

	require.NoError(t, p.Toggle())
	assert.True(t, p.State().Playing)
	require.NoError(t, p.Next())
	assert.Equal(t, 0, p.State().Index, "next wraps to first")
	assert.Equal(t, []string{"music/c.mp3", "music/a.mp3"}, a.Played())
	assert.Equal(t, "Track 1 / 3", p.State().Counter())

	require.NoError(t, p.Toggle())
	assert.False(t, p.State().Playing)
	assert.Equal(t, 1, a.stops)
}

func TestSelectAndVolume(t *testing.T) {
	a := newFakeAudio()
	p := New(library("a.mp3", "b.mp3"), a, nil)
	p.Load()

	require.NoError(t, p.Select(1))
	assert.Equal(t, "b.mp3", p.State().Name)
	assert.Equal(t, errcode.InvalidParams, errcode.Of(p.Select(5)))

	got, err := p.SetVolume(140)
	require.NoError(t, err)
	assert.Equal(t, 100, got)
	assert.Equal(t, 100, p.State().Volume)
}

func TestRunAutoAdvances(t *testing.T) {
	a := newFakeAudio()
	p := New(library("a.mp3", "b.mp3"), a, nil)
	p.Load()
	var delays []time.Duration
	p.after = func(d time.Duration) <-chan time.Time {
		delays = append(delays, d)
		ch := make(chan time.Time, 1)
		ch <- time.Time{}
		return ch
	}
	changes := make(chan State, 4)
	p.Changed = func(s State) { changes <- s }

	require.NoError(t, p.Select(1))
	<-changes

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	a.done <- struct{}{}
	select {
	case s := <-changes:
		assert.Equal(t, 0, s.Index, "wraps after the last track")
		assert.True(t, s.Playing)
	case <-time.After(2 * time.Second):
		t.Fatal("did not advance")
	}
	assert.Equal(t, []time.Duration{AdvanceDelay}, delays)
	assert.Equal(t, []string{"music/b.mp3", "music/a.mp3"}, a.Played())
}

// finished delivers n finish signals through the one slot buffer. Once it
// returns, Run has fully handled the first n-2.
func (a *fakeAudio) finished(n int) {
	for i := 0; i < n; i++ {
		a.done <- struct{}{}
	}
}

func TestRunIgnoresFinishAfterPause(t *testing.T) {
	a := newFakeAudio()
	p := New(library("a.mp3", "b.mp3"), a, nil)
	p.Load()
	advanced := 0
	p.after = func(time.Duration) <-chan time.Time {
		advanced++
		ch := make(chan time.Time, 1)
		ch <- time.Time{}
		return ch
	}
	require.NoError(t, p.Select(1))
	require.NoError(t, p.Toggle())

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- p.Run(ctx) }()
	a.finished(3)
	cancel()
	assert.ErrorIs(t, <-errc, context.Canceled)

	assert.Zero(t, advanced)
	s := p.State()
	assert.Equal(t, 1, s.Index)
	assert.False(t, s.Playing)
	assert.Equal(t, []string{"music/b.mp3"}, a.Played())
}

func TestRunReportsAdvanceFailure(t *testing.T) {
	a := newFakeAudio()
	a.failOn = "music/a.mp3"
	rec := &status.Recorder{}
	p := New(library("a.mp3", "b.mp3"), a, rec)
	p.Load()
	p.after = func(time.Duration) <-chan time.Time {
		ch := make(chan time.Time, 1)
		ch <- time.Time{}
		return ch
	}
	require.NoError(t, p.Select(1))

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- p.Run(ctx) }()
	a.finished(3)
	cancel()
	assert.ErrorIs(t, <-errc, context.Canceled)

	s := p.State()
	assert.Equal(t, 0, s.Index)
	assert.False(t, s.Playing)
	var msgs []string
	for _, ev := range rec.Events() {
		if ev.Kind == status.Failure {
			msgs = append(msgs, ev.Message)
		}
	}
	assert.Equal(t, []string{"Failed to play track", "Auto-advance failed"}, msgs)
}
