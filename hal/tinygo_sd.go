//go:build tinygo && baremetal

package hal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"sync"

	"machine"

	"tinygo.org/x/drivers/sdcard"
	"tinygo.org/x/tinyfs"
	"tinygo.org/x/tinyfs/fatfs"

	"jcboard/internal/errcode"
)

// SD slot pins. TinyGo has no SDMMC host driver, so the card runs in SPI
// mode: CLK as SCK, CMD as SDO, D0 as SDI, D3 as CS.
const (
	pinSDCLK = 43
	pinSDCMD = 44
	pinSDD0  = 39
	pinSDD3  = 42
)

type fatSDHost struct {
	mu      sync.Mutex
	rails   map[int]bool
	mounted bool
}

func newFatSDHost() *fatSDHost {
	return &fatSDHost{rails: make(map[int]bool)}
}

// NewPowerRail books the LDO channel. The LDO itself is left in its reset
// state; the slot is powered from the 3V3 rail while the card is in SPI mode.
func (s *fatSDHost) NewPowerRail(ch int) (PowerRail, error) {
	if ch < 1 || ch > 4 {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "sd power rail", Msg: fmt.Sprintf("channel %d", ch)}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rails[ch] {
		return nil, &errcode.E{C: errcode.ResourceAlloc, Op: "sd power rail", Msg: fmt.Sprintf("channel %d in use", ch)}
	}
	s.rails[ch] = true
	return &fatRail{host: s, ch: ch}, nil
}

func (s *fatSDHost) Mount(mountPoint string, rail PowerRail) (Card, error) {
	if rail == nil {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "sd mount", Msg: "no power rail"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mounted {
		return nil, &errcode.E{C: errcode.AlreadyMounted, Op: "sd mount", Msg: mountPoint}
	}

	sd := sdcard.New(machine.SPI0, machine.Pin(pinSDCLK), machine.Pin(pinSDCMD), machine.Pin(pinSDD0), machine.Pin(pinSDD3))
	if err := sd.Configure(); err != nil {
		return nil, &errcode.E{C: errcode.HardwareAbsent, Op: "sd mount", Msg: "no card", Err: err}
	}
	fat := fatfs.New(&sd).Configure(&fatfs.Config{SectorSize: fatfs.SectorSize})
	if err := fat.Mount(); err != nil {
		// Removable media is never formatted.
		return nil, &errcode.E{C: errcode.Error, Op: "sd mount", Msg: "no FAT filesystem", Err: err}
	}
	s.mounted = true
	return &fatCard{host: s, sd: &sd, fat: fat}, nil
}

type fatRail struct {
	host *fatSDHost
	ch   int
	once sync.Once
}

func (r *fatRail) Channel() int { return r.ch }

func (r *fatRail) Release() error {
	r.once.Do(func() {
		r.host.mu.Lock()
		delete(r.host.rails, r.ch)
		r.host.mu.Unlock()
	})
	return nil
}

type fatCard struct {
	host *fatSDHost
	sd   *sdcard.Device
	fat  *fatfs.FATFS
}

func (c *fatCard) Name() string { return "SDCARD" }

func (c *fatCard) CapacityBytes() uint64 {
	if c.sd == nil {
		return 0
	}
	return uint64(c.sd.Size())
}

func (c *fatCard) Unmount() error {
	if c.fat == nil {
		return &errcode.E{C: errcode.NotMounted, Op: "sd unmount"}
	}
	err := c.fat.Unmount()
	c.fat = nil
	c.host.mu.Lock()
	c.host.mounted = false
	c.host.mu.Unlock()
	return mapFatErr("unmount", err)
}

func (c *fatCard) ReadDir(dir string) ([]FileInfo, error) {
	if c.fat == nil {
		return nil, &errcode.E{C: errcode.NotMounted, Op: "sd readdir"}
	}
	f, err := c.fat.OpenFile(fatPath(dir), os.O_RDONLY)
	if err != nil {
		return nil, mapFatErr("open dir", err)
	}
	defer func() { _ = f.Close() }()

	entries, err := f.Readdir(0)
	if err != nil {
		return nil, mapFatErr("readdir", err)
	}
	out := make([]FileInfo, 0, len(entries))
	for _, e := range entries {
		if e.Name() == "." || e.Name() == ".." {
			continue
		}
		out = append(out, FileInfo{Name: e.Name(), Size: e.Size(), Dir: e.IsDir()})
	}
	return out, nil
}

func (c *fatCard) Create(name string) (io.WriteCloser, error) {
	if c.fat == nil {
		return nil, &errcode.E{C: errcode.NotMounted, Op: "sd create"}
	}
	f, err := c.fat.OpenFile(fatPath(name), os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
	if err != nil {
		return nil, mapFatErr("create", err)
	}
	return f, nil
}

func (c *fatCard) Open(name string) (io.ReadSeekCloser, error) {
	if c.fat == nil {
		return nil, &errcode.E{C: errcode.NotMounted, Op: "sd open"}
	}
	f, err := c.fat.OpenFile(fatPath(name), os.O_RDONLY)
	if err != nil {
		return nil, mapFatErr("open", err)
	}
	return fatFile{f}, nil
}

type fatFile struct {
	tinyfs.File
}

func fatPath(name string) string {
	return path.Clean("/" + name)
}

func mapFatErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var fr fatfs.FileResult
	if errors.As(err, &fr) {
		switch fr {
		case fatfs.FileResultNoFile, fatfs.FileResultNoPath:
			return &errcode.E{C: errcode.InvalidParams, Op: "sd " + op, Msg: "not found", Err: err}
		case fatfs.FileResultNoFilesystem, fatfs.FileResultInvalidName, fatfs.FileResultInvalidParameter:
			return &errcode.E{C: errcode.InvalidParams, Op: "sd " + op, Err: err}
		case fatfs.FileResultNotEnoughCore:
			return &errcode.E{C: errcode.ResourceAlloc, Op: "sd " + op, Err: err}
		}
	}
	return &errcode.E{C: errcode.Error, Op: "sd " + op, Err: err}
}
