// Package player is the MP3 playlist over the SD card's music directory.
package player

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"jcboard/hal"
	"jcboard/internal/errcode"
	"jcboard/internal/mathx"
	"jcboard/status"
)

const (
	MusicDir      = "music"
	MaxTracks     = 50
	DefaultVolume = 50
	// AdvanceDelay is the gap between a track ending and the next one starting.
	AdvanceDelay = 500 * time.Millisecond
)

// State is what the screen shows.
type State struct {
	Tracks  int
	Index   int
	Name    string
	Playing bool
	Volume  int
}

// Counter renders "Track n / total".
func (s State) Counter() string {
	if s.Tracks == 0 {
		return "Track 0 / 0"
	}
	return fmt.Sprintf("Track %d / %d", s.Index+1, s.Tracks)
}

// Title is the current file name, or a placeholder when the list is empty.
func (s State) Title() string {
	if s.Tracks == 0 {
		return "No tracks found"
	}
	return s.Name
}

// Player owns the track list, the cursor and the codec. Changed runs after
// every state change, outside the player lock.
type Player struct {
	vol     hal.Volume
	out     hal.AudioOut
	obs     status.Observer
	Changed func(State)

	after func(time.Duration) <-chan time.Time

	mu      sync.Mutex
	tracks  []string
	cur     int
	playing bool
	volume  int
}

func New(vol hal.Volume, out hal.AudioOut, obs status.Observer) *Player {
	if obs == nil {
		obs = status.Nop
	}
	return &Player{vol: vol, out: out, obs: obs, volume: DefaultVolume, after: time.After}
}

// Load lists MusicDir: regular .mp3 files, sorted, at most MaxTracks.
func (p *Player) Load() (int, error) {
	p.obs.Notify(status.Event{Source: "player", Kind: status.Info, Message: "Scanning music directory: /sdcard/" + MusicDir})
	infos, err := p.vol.ReadDir(MusicDir)
	if err != nil {
		p.obs.Notify(status.Event{Source: "player", Kind: status.Failure, Message: "No music files found in /sdcard/" + MusicDir, Err: err})
		return 0, fmt.Errorf("read %s: %w", MusicDir, err)
	}
	var names []string
	for _, fi := range infos {
		if fi.Dir || !strings.EqualFold(path.Ext(fi.Name), ".mp3") {
			continue
		}
		names = append(names, fi.Name)
	}
	sort.Strings(names)
	if len(names) > MaxTracks {
		names = names[:MaxTracks]
	}

	p.mu.Lock()
	p.tracks = names
	p.cur = 0
	p.mu.Unlock()
	p.obs.Notify(status.Event{Source: "player", Kind: status.Info, Message: fmt.Sprintf("Found %d tracks", len(names))})
	p.changed()
	return len(names), nil
}

func (p *Player) Tracks() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.tracks...)
}

func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stateLocked()
}

func (p *Player) stateLocked() State {
	s := State{Tracks: len(p.tracks), Index: p.cur, Playing: p.playing, Volume: p.volume}
	if p.cur < len(p.tracks) {
		s.Name = p.tracks[p.cur]
	}
	return s
}

func (p *Player) changed() {
	if p.Changed != nil {
		p.Changed(p.State())
	}
}

// playLocked starts the current track. The codec owns the opened file.
func (p *Player) playLocked() error {
	if len(p.tracks) == 0 {
		p.playing = false
		return &errcode.E{C: errcode.NotReady, Op: "play", Msg: "no tracks available"}
	}
	name := p.tracks[p.cur]
	p.obs.Notify(status.Event{Source: "player", Kind: status.Info, Message: fmt.Sprintf("Playing track %d of %d", p.cur+1, len(p.tracks))})
	f, err := p.vol.Open(path.Join(MusicDir, name))
	if err == nil {
		err = p.out.Play(f)
	}
	if err != nil {
		p.playing = false
		err = fmt.Errorf("play %s: %w", name, err)
		p.obs.Notify(status.Event{Source: "player", Kind: status.Failure, Message: "Failed to play track", Err: err})
		return err
	}
	p.playing = true
	return nil
}

// Toggle pauses a playing track or plays the current one.
func (p *Player) Toggle() error {
	p.mu.Lock()
	var err error
	if p.playing {
		err = p.out.Stop()
		p.playing = false
		p.obs.Notify(status.Event{Source: "player", Kind: status.Info, Message: "Paused"})
	} else {
		err = p.playLocked()
	}
	p.mu.Unlock()
	p.changed()
	return err
}

func (p *Player) step(delta int) error {
	p.mu.Lock()
	if len(p.tracks) == 0 {
		p.mu.Unlock()
		return nil
	}
	p.cur = mathx.Wrap(p.cur+delta, len(p.tracks))
	var err error
	if p.playing {
		err = p.playLocked()
	}
	p.mu.Unlock()
	p.changed()
	return err
}

// Prev moves back one track, wrapping to the last.
func (p *Player) Prev() error { return p.step(-1) }

// Next moves forward one track, wrapping to the first.
func (p *Player) Next() error { return p.step(1) }

// Select jumps to track i and plays it.
func (p *Player) Select(i int) error {
	p.mu.Lock()
	if i < 0 || i >= len(p.tracks) {
		p.mu.Unlock()
		return &errcode.E{C: errcode.InvalidParams, Op: "select track", Msg: fmt.Sprintf("index %d of %d", i, len(p.tracks))}
	}
	p.cur = i
	err := p.playLocked()
	p.mu.Unlock()
	p.changed()
	return err
}

// SetVolume clamps v to 0-100 and applies it to the codec.
func (p *Player) SetVolume(v int) (int, error) {
	v = mathx.Clamp(v, 0, 100)
	got, err := p.out.SetVolume(v)
	if err != nil {
		return 0, fmt.Errorf("set volume: %w", err)
	}
	p.mu.Lock()
	p.volume = v
	p.mu.Unlock()
	p.obs.Notify(status.Event{Source: "player", Kind: status.Progress, Message: fmt.Sprintf("Volume: %d%%", v)})
	p.changed()
	return got, nil
}

// Run advances to the next track, wrapping, each time one finishes on its
// own. A finish signal that arrives after a pause is ignored. Play failures
// are reported to the observer and the loop keeps running.
func (p *Player) Run(ctx context.Context) error {
	done := p.out.Done()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-done:
		}

		p.mu.Lock()
		ended := p.playing && len(p.tracks) > 0
		p.playing = false
		p.mu.Unlock()
		if !ended {
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.after(AdvanceDelay):
		}

		p.mu.Lock()
		if p.playing || len(p.tracks) == 0 {
			// Started by hand during the gap.
			p.mu.Unlock()
			continue
		}
		p.cur = mathx.Wrap(p.cur+1, len(p.tracks))
		err := p.playLocked()
		p.mu.Unlock()
		p.changed()
		if err != nil {
			p.obs.Notify(status.Event{Source: "player", Kind: status.Failure, Message: "Auto-advance failed", Err: err})
		}
	}
}
