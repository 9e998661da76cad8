package hal

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"

	"jcboard/internal/errcode"
)

// The NVS partition is a page header followed by an append-only log of
// records. Erased bytes read 0xFF and a record may only be written over
// erased space, as on NOR flash. The same layout is used on every medium.
const (
	nvsPartitionBytes  = 6 * nvsEraseBlockBytes
	nvsEraseBlockBytes = 4096
	nvsVersion         = 2

	nvsRecordMarker = 0xA5
	nvsHeaderLen    = 8
	nvsRecordHead   = 4 // marker, key length, value length (u16)
	nvsMaxKeyLen    = 15
)

var nvsMagic = [4]byte{'J', 'N', 'V', 'S'}

var errNVSWriteRequiresErase = errors.New("nvs write requires erase")

// nvsMedium is the storage under the log.
type nvsMedium interface {
	ReadAt(p []byte, off uint32) (int, error)
	WriteAt(p []byte, off uint32) (int, error)
	// EraseAll sets the whole partition to 0xFF.
	EraseAll() error
}

type logNVS struct {
	mu     sync.Mutex
	open   func() (nvsMedium, error)
	m      nvsMedium
	ready  bool
	values map[string][]byte
	end    uint32 // first erased offset after the log
}

func newLogNVS(open func() (nvsMedium, error)) *logNVS {
	return &logNVS{open: open}
}

func (n *logNVS) medium() error {
	if n.m != nil {
		return nil
	}
	if n.open == nil {
		return ErrNotImplemented
	}
	m, err := n.open()
	if m != nil {
		n.m = m
	}
	return err
}

func (n *logNVS) Init() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.ready = false
	if err := n.medium(); err != nil {
		return err
	}

	img := make([]byte, nvsPartitionBytes)
	if _, err := n.m.ReadAt(img, 0); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("nvs read: %w", err)
	}
	if bytes.Equal(img[:4], []byte{0xFF, 0xFF, 0xFF, 0xFF}) {
		if err := n.writeHeader(); err != nil {
			return err
		}
		copy(img, nvsHeader())
	}
	if !bytes.Equal(img[:4], nvsMagic[:]) || img[4] != nvsVersion {
		return errcode.NVSNewVersion
	}

	values := map[string][]byte{}
	off := uint32(nvsHeaderLen)
	for off+nvsRecordHead <= nvsPartitionBytes && img[off] == nvsRecordMarker {
		klen := uint32(img[off+1])
		vlen := uint32(binary.LittleEndian.Uint16(img[off+2:]))
		next := off + nvsRecordHead + klen + vlen
		if next > nvsPartitionBytes {
			return errcode.NVSNoFreePages
		}
		key := string(img[off+nvsRecordHead : off+nvsRecordHead+klen])
		values[key] = append([]byte(nil), img[off+nvsRecordHead+klen:next]...)
		off = next
	}
	if off+nvsRecordHead > nvsPartitionBytes {
		return errcode.NVSNoFreePages
	}
	n.values = values
	n.end = off
	n.ready = true
	return nil
}

func nvsHeader() []byte {
	h := bytes.Repeat([]byte{0xFF}, nvsHeaderLen)
	copy(h, nvsMagic[:])
	h[4] = nvsVersion
	return h
}

func (n *logNVS) writeHeader() error {
	_, err := n.m.WriteAt(nvsHeader(), 0)
	return err
}

func (n *logNVS) Erase() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.ready = false
	// A medium that opened with a layout error can still be erased.
	if err := n.medium(); n.m == nil {
		return err
	}
	return n.eraseLocked()
}

func (n *logNVS) eraseLocked() error {
	if err := n.m.EraseAll(); err != nil {
		return fmt.Errorf("nvs erase: %w", err)
	}
	n.values = nil
	n.end = nvsHeaderLen
	return nil
}

func (n *logNVS) Get(key string) ([]byte, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	v, ok := n.values[key]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), v...), true
}

func (n *logNVS) Set(key string, value []byte) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.ready {
		return &errcode.E{C: errcode.NotReady, Op: "nvs set", Msg: "partition not initialised"}
	}
	if len(key) == 0 || len(key) > nvsMaxKeyLen {
		return &errcode.E{C: errcode.InvalidParams, Op: "nvs set", Msg: fmt.Sprintf("key %q", key)}
	}
	if len(value) > 0xFFFF {
		return &errcode.E{C: errcode.InvalidParams, Op: "nvs set", Msg: "value too long"}
	}

	rec := encodeNVSRecord(key, value)
	if n.end+uint32(len(rec)) > nvsPartitionBytes {
		if err := n.compact(); err != nil {
			return err
		}
		if n.end+uint32(len(rec)) > nvsPartitionBytes {
			return errcode.NVSNoFreePages
		}
	}
	if _, err := n.m.WriteAt(rec, n.end); err != nil {
		return err
	}
	n.end += uint32(len(rec))
	if n.values == nil {
		n.values = map[string][]byte{}
	}
	n.values[key] = append([]byte(nil), value...)
	return nil
}

// compact rewrites the live records after an erase.
func (n *logNVS) compact() error {
	live := n.values
	if err := n.eraseLocked(); err != nil {
		return err
	}
	if err := n.writeHeader(); err != nil {
		return err
	}
	for k, v := range live {
		rec := encodeNVSRecord(k, v)
		if n.end+uint32(len(rec)) > nvsPartitionBytes {
			return errcode.NVSNoFreePages
		}
		if _, err := n.m.WriteAt(rec, n.end); err != nil {
			return err
		}
		n.end += uint32(len(rec))
	}
	n.values = live
	return nil
}

func encodeNVSRecord(key string, value []byte) []byte {
	rec := make([]byte, nvsRecordHead+len(key)+len(value))
	rec[0] = nvsRecordMarker
	rec[1] = byte(len(key))
	binary.LittleEndian.PutUint16(rec[2:], uint16(len(value)))
	copy(rec[nvsRecordHead:], key)
	copy(rec[nvsRecordHead+len(key):], value)
	return rec
}

// checkNORWrite fails when p would need a 0 bit turned back into 1.
func checkNORWrite(cur, p []byte) error {
	for i := range p {
		if cur[i]&p[i] != p[i] {
			return errNVSWriteRequiresErase
		}
	}
	return nil
}

// ramMedium keeps the partition in memory; contents do not survive a reset.
type ramMedium struct {
	buf []byte
}

func newRAMMedium() *ramMedium {
	return &ramMedium{buf: bytes.Repeat([]byte{0xFF}, nvsPartitionBytes)}
}

func (r *ramMedium) ReadAt(p []byte, off uint32) (int, error) {
	if off >= uint32(len(r.buf)) {
		return 0, io.EOF
	}
	return copy(p, r.buf[off:]), nil
}

func (r *ramMedium) WriteAt(p []byte, off uint32) (int, error) {
	if off+uint32(len(p)) > uint32(len(r.buf)) {
		return 0, fmt.Errorf("nvs write at %d: out of range", off)
	}
	if err := checkNORWrite(r.buf[off:], p); err != nil {
		return 0, err
	}
	return copy(r.buf[off:], p), nil
}

func (r *ramMedium) EraseAll() error {
	for i := range r.buf {
		r.buf[i] = 0xFF
	}
	return nil
}
