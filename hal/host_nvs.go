//go:build !tinygo

package hal

import (
	"errors"
	"fmt"
	"io"
	"os"

	"jcboard/internal/errcode"
)

// fileMedium is a flash image in a host file.
type fileMedium struct {
	f      *os.File
	erased [nvsEraseBlockBytes]byte
}

func newHostNVS(path string) NVS {
	if path == "" {
		return newLogNVS(func() (nvsMedium, error) { return newRAMMedium(), nil })
	}
	return newLogNVS(func() (nvsMedium, error) {
		m, err := openFileMedium(path)
		if m == nil {
			return nil, err
		}
		return m, err
	})
}

func openFileMedium(path string) (*fileMedium, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("nvs open %s: %w", path, err)
	}
	m := &fileMedium{f: f}
	for i := range m.erased {
		m.erased[i] = 0xFF
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("nvs stat %s: %w", path, err)
	}
	switch st.Size() {
	case 0:
		if err := m.EraseAll(); err != nil {
			_ = f.Close()
			return nil, err
		}
	case nvsPartitionBytes:
	default:
		// A partition from another layout; the caller erases and retries.
		return m, errcode.NVSNewVersion
	}
	return m, nil
}

func (m *fileMedium) ReadAt(p []byte, off uint32) (int, error) {
	if off >= nvsPartitionBytes {
		return 0, fmt.Errorf("nvs read at %d: %w", off, os.ErrInvalid)
	}
	return m.f.ReadAt(p, int64(off))
}

func (m *fileMedium) WriteAt(p []byte, off uint32) (int, error) {
	if off+uint32(len(p)) > nvsPartitionBytes {
		return 0, fmt.Errorf("nvs write at %d: %w", off, os.ErrInvalid)
	}
	cur := make([]byte, len(p))
	if _, err := m.f.ReadAt(cur, int64(off)); err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("nvs read before write at %d: %w", off, err)
	}
	if err := checkNORWrite(cur, p); err != nil {
		return 0, err
	}
	return m.f.WriteAt(p, int64(off))
}

func (m *fileMedium) EraseAll() error {
	if err := m.f.Truncate(nvsPartitionBytes); err != nil {
		return fmt.Errorf("nvs resize: %w", err)
	}
	for off := int64(0); off < nvsPartitionBytes; off += nvsEraseBlockBytes {
		if _, err := m.f.WriteAt(m.erased[:], off); err != nil {
			return fmt.Errorf("nvs erase block at %d: %w", off, err)
		}
	}
	return nil
}
