//go:build !tinygo

package hal

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"jcboard/internal/errcode"
)

// hostCardCapacity is what the simulated card reports (a 32 GB card).
const hostCardCapacity = 31_914_983_424

// hostSD maps the card onto a host directory.
type hostSD struct {
	mu      sync.Mutex
	root    string
	present bool
	rails   map[int]bool
	mounted *hostCard
}

func newHostSD(root string, present bool) *hostSD {
	return &hostSD{root: root, present: present, rails: map[int]bool{}}
}

func (s *hostSD) setPresent(present bool) {
	s.mu.Lock()
	s.present = present
	s.mu.Unlock()
}

func (s *hostSD) NewPowerRail(ch int) (PowerRail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ch < 1 || ch > 4 {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "ldo acquire", Msg: fmt.Sprintf("no channel %d", ch)}
	}
	if s.rails[ch] {
		return nil, &errcode.E{C: errcode.ResourceAlloc, Op: "ldo acquire", Msg: fmt.Sprintf("channel %d in use", ch)}
	}
	s.rails[ch] = true
	return &hostRail{sd: s, ch: ch}, nil
}

func (s *hostSD) railHeld(ch int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rails[ch]
}

func (s *hostSD) Mount(mountPoint string, rail PowerRail) (Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rail == nil || !s.rails[rail.Channel()] {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "sd mount", Msg: "card slot not powered"}
	}
	if s.mounted != nil {
		return nil, &errcode.E{C: errcode.AlreadyMounted, Op: "sd mount", Msg: mountPoint}
	}
	if !s.present {
		return nil, &errcode.E{C: errcode.HardwareAbsent, Op: "sd mount", Msg: "no card in slot"}
	}
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return nil, &errcode.E{C: errcode.Error, Op: "sd mount", Err: err}
	}
	c := &hostCard{sd: s, root: s.root}
	s.mounted = c
	return c, nil
}

type hostRail struct {
	sd   *hostSD
	ch   int
	once sync.Once
}

func (r *hostRail) Channel() int { return r.ch }

func (r *hostRail) Release() error {
	r.once.Do(func() {
		r.sd.mu.Lock()
		delete(r.sd.rails, r.ch)
		r.sd.mu.Unlock()
	})
	return nil
}

type hostCard struct {
	sd   *hostSD
	mu   sync.Mutex
	root string
	gone bool
}

func (c *hostCard) Name() string          { return "HOSTSD" }
func (c *hostCard) CapacityBytes() uint64 { return hostCardCapacity }

func (c *hostCard) Unmount() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gone {
		return errcode.NotMounted
	}
	c.gone = true
	c.sd.mu.Lock()
	if c.sd.mounted == c {
		c.sd.mounted = nil
	}
	c.sd.mu.Unlock()
	return nil
}

func (c *hostCard) path(name string) (string, error) {
	c.mu.Lock()
	gone := c.gone
	c.mu.Unlock()
	if gone {
		return "", errcode.NotMounted
	}
	name = strings.TrimPrefix(filepath.ToSlash(name), "/")
	if name == "" {
		name = "."
	}
	if !filepath.IsLocal(name) && name != "." {
		return "", &errcode.E{C: errcode.InvalidParams, Op: "sd path", Msg: name}
	}
	return filepath.Join(c.root, filepath.FromSlash(name)), nil
}

func (c *hostCard) ReadDir(dir string) ([]FileInfo, error) {
	p, err := c.path(dir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(p)
	if err != nil {
		return nil, fmt.Errorf("sd readdir %s: %w", dir, err)
	}
	out := make([]FileInfo, 0, len(entries))
	for _, e := range entries {
		fi := FileInfo{Name: e.Name(), Dir: e.IsDir()}
		if info, err := e.Info(); err == nil && !e.IsDir() {
			fi.Size = info.Size()
		}
		out = append(out, fi)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (c *hostCard) Create(name string) (io.WriteCloser, error) {
	p, err := c.path(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Create(p)
	if err != nil {
		return nil, fmt.Errorf("sd create %s: %w", name, err)
	}
	return f, nil
}

func (c *hostCard) Open(name string) (io.ReadSeekCloser, error) {
	p, err := c.path(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("sd open %s: %w", name, err)
	}
	return f, nil
}
