// Package storage manages the SD card: power rail, mount and the small
// file helpers the examples use.
package storage

import (
	"errors"
	"fmt"
	"io"
	"path"
	"sync"
	"time"

	"jcboard/hal"
	"jcboard/internal/errcode"
	"jcboard/status"
)

const (
	LDOChannel = hal.SDLDOChannel
	MountPoint = "/sdcard"

	// MaxListed caps directory listings shown on screen.
	MaxListed = 15
)

// Entry is one listed directory entry.
type Entry struct {
	Name string
	Size int64
	Dir  bool
}

// Info describes the mounted card.
type Info struct {
	Name       string
	CapacityMB float64
}

// Manager pairs the card handle with its power rail: the rail is held
// exactly while the card is mounted.
type Manager struct {
	mu   sync.Mutex
	host hal.SDHost
	obs  status.Observer
	card hal.Card
	rail *Rail
}

func NewManager(host hal.SDHost, obs status.Observer) *Manager {
	if obs == nil {
		obs = status.Nop
	}
	return &Manager{host: host, obs: obs}
}

func (m *Manager) notify(k status.Kind, msg string, err error) {
	m.obs.Notify(status.Event{Source: "sdcard", Kind: k, Message: msg, Err: err})
}

// Mount powers the slot and mounts the FAT volume at MountPoint. On any
// failure the rail is released and the manager stays unmounted.
func (m *Manager) Mount() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.card != nil {
		return &errcode.E{C: errcode.AlreadyMounted, Op: "sd mount", Msg: MountPoint}
	}
	if m.host == nil {
		return &errcode.E{C: errcode.HardwareAbsent, Op: "sd mount", Msg: "no SD host"}
	}
	m.notify(status.Progress, "Mounting...", nil)

	rail, err := AcquireRail(m.host, LDOChannel)
	if err != nil {
		m.notify(status.Failure, "Failed to create LDO power control", err)
		return err
	}
	card, err := m.host.Mount(MountPoint, rail.Handle())
	if err != nil {
		if rerr := rail.Release(); rerr != nil {
			err = errors.Join(err, rerr)
		}
		err = fmt.Errorf("mount %s: %w", MountPoint, err)
		m.notify(status.Failure, "Failed to mount SD card", err)
		return err
	}
	m.card, m.rail = card, rail
	m.notify(status.Success, "SD card mounted", nil)
	return nil
}

// Unmount unmounts the volume, then releases the rail. Calling it while
// unmounted returns errcode.NotMounted.
func (m *Manager) Unmount() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.card == nil {
		return &errcode.E{C: errcode.NotMounted, Op: "sd unmount", Msg: MountPoint}
	}
	err := m.card.Unmount()
	m.card = nil
	if m.rail != nil {
		if rerr := m.rail.Release(); rerr != nil {
			err = errors.Join(err, rerr)
		}
		m.rail = nil
	}
	if err != nil {
		m.notify(status.Failure, "Failed to unmount", err)
		return fmt.Errorf("unmount %s: %w", MountPoint, err)
	}
	m.notify(status.Success, "SD card unmounted", nil)
	return nil
}

func (m *Manager) Mounted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.card != nil
}

// RailHeld reports whether a power-rail handle is outstanding.
func (m *Manager) RailHeld() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rail.Handle() != nil
}

// Volume returns the mounted filesystem or errcode.NotMounted.
func (m *Manager) Volume() (hal.Volume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.card == nil {
		return nil, &errcode.E{C: errcode.NotMounted, Op: "sd volume"}
	}
	return m.card, nil
}

func (m *Manager) Info() (Info, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.card == nil {
		return Info{}, &errcode.E{C: errcode.NotMounted, Op: "sd info"}
	}
	return Info{
		Name:       m.card.Name(),
		CapacityMB: float64(m.card.CapacityBytes()) / (1024 * 1024),
	}, nil
}

// List returns up to limit entries of dir, skipping "." and "..".
func (m *Manager) List(dir string, limit int) ([]Entry, error) {
	vol, err := m.Volume()
	if err != nil {
		return nil, err
	}
	infos, err := vol.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %q: %w", dir, err)
	}
	var out []Entry
	for _, fi := range infos {
		if len(out) >= limit {
			break
		}
		if fi.Name == "." || fi.Name == ".." {
			continue
		}
		out = append(out, Entry{Name: fi.Name, Size: fi.Size, Dir: fi.Dir})
	}
	return out, nil
}

// FormatSize renders a byte count the way the file list shows it.
func FormatSize(n int64) string {
	switch {
	case n < 1024:
		return fmt.Sprintf("%d bytes", n)
	case n < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(n)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(n)/(1024*1024))
	}
}

// TestFileName is the name WriteTestFile uses at the given uptime.
func TestFileName(uptime time.Duration) string {
	return fmt.Sprintf("test_%d.txt", int64(uptime/time.Second))
}

// WriteTestFile writes the board banner, the uptime and the free heap to a
// new file at the volume root and returns its name.
func (m *Manager) WriteTestFile(uptime time.Duration, freeHeap uint32) (string, error) {
	vol, err := m.Volume()
	if err != nil {
		return "", err
	}
	name := TestFileName(uptime)
	w, err := vol.Create(name)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path.Join(MountPoint, name), err)
	}
	_, werr := io.WriteString(w, fmt.Sprintf(
		"JC4880P443C SD Card Test\n"+
			"========================\n"+
			"ESP32-P4 Development Board\n"+
			"Guition JC-ESP32P4-M3-C6 Module\n"+
			"\n"+
			"Timestamp: %d ms\n"+
			"Free heap: %d bytes\n",
		uptime.Milliseconds(), freeHeap))
	if cerr := w.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return "", fmt.Errorf("write %s: %w", name, werr)
	}
	return name, nil
}
