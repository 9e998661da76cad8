//go:build tinygo && baremetal && (rp2040 || rp2350)

package hal

import (
	"fmt"
	"machine"
)

// flashMedium keeps the NVS partition in the last blocks of program flash.
type flashMedium struct {
	base int64
}

func newBoardNVS() NVS {
	return newLogNVS(func() (nvsMedium, error) {
		size := machine.Flash.Size()
		bs := machine.Flash.EraseBlockSize()
		if size < nvsPartitionBytes || bs <= 0 || nvsPartitionBytes%bs != 0 {
			return nil, fmt.Errorf("nvs flash size=%d block=%d: %w", size, bs, ErrNotImplemented)
		}
		return &flashMedium{base: size - nvsPartitionBytes}, nil
	})
}

func (m *flashMedium) ReadAt(p []byte, off uint32) (int, error) {
	n, err := machine.Flash.ReadAt(p, m.base+int64(off))
	if err != nil {
		return n, fmt.Errorf("nvs flash read at %d: %w", off, err)
	}
	return n, nil
}

func (m *flashMedium) WriteAt(p []byte, off uint32) (int, error) {
	if off+uint32(len(p)) > nvsPartitionBytes {
		return 0, fmt.Errorf("nvs flash write at %d: out of range", off)
	}
	cur := make([]byte, len(p))
	if _, err := machine.Flash.ReadAt(cur, m.base+int64(off)); err != nil {
		return 0, fmt.Errorf("nvs flash read before write at %d: %w", off, err)
	}
	if err := checkNORWrite(cur, p); err != nil {
		return 0, err
	}
	n, err := machine.Flash.WriteAt(p, m.base+int64(off))
	if err != nil {
		return n, fmt.Errorf("nvs flash write at %d: %w", off, err)
	}
	return n, nil
}

func (m *flashMedium) EraseAll() error {
	bs := machine.Flash.EraseBlockSize()
	return machine.Flash.EraseBlocks(m.base/bs, nvsPartitionBytes/bs)
}
