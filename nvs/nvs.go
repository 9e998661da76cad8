// Package nvs brings up the non-volatile key/value partition.
package nvs

import (
	"encoding/binary"
	"errors"
	"fmt"

	"jcboard/hal"
	"jcboard/internal/errcode"
	"jcboard/status"
)

const bootCountKey = "boot_count"

// Init initialises store. A partition that is full or was written by a newer
// layout is erased and initialised once more; anything still failing after
// that is returned with errcode.FatalConfig.
func Init(store hal.NVS, obs status.Observer) error {
	if obs == nil {
		obs = status.Nop
	}
	if store == nil {
		return &errcode.E{C: errcode.FatalConfig, Op: "nvs init", Msg: "no partition"}
	}
	err := store.Init()
	if c := errcode.Of(err); c == errcode.NVSNoFreePages || c == errcode.NVSNewVersion {
		obs.Notify(status.Event{Source: "nvs", Kind: status.Progress, Message: "Erasing NVS partition", Err: err})
		if eraseErr := store.Erase(); eraseErr != nil {
			err = errors.Join(err, fmt.Errorf("erase: %w", eraseErr))
		} else {
			err = store.Init()
		}
	}
	if err != nil {
		err = &errcode.E{C: errcode.FatalConfig, Op: "nvs init", Err: err}
		obs.Notify(status.Event{Source: "nvs", Kind: status.Failure, Message: "NVS init failed", Err: err})
		return err
	}
	obs.Notify(status.Event{Source: "nvs", Kind: status.Success, Message: "NVS initialized"})
	return nil
}

// BumpBootCount increments and returns the persisted boot counter.
func BumpBootCount(store hal.NVS) (uint32, error) {
	var n uint32
	if b, ok := store.Get(bootCountKey); ok && len(b) == 4 {
		n = binary.LittleEndian.Uint32(b)
	}
	n++
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], n)
	if err := store.Set(bootCountKey, buf[:]); err != nil {
		return n, fmt.Errorf("store boot count: %w", err)
	}
	return n, nil
}
