//go:build !tinygo

package hal

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"jcboard/internal/errcode"
)

func TestHostNVSRoundTripAcrossInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.nvs")
	n := newHostNVS(path)
	if err := n.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := n.Set("boot.count", []byte{3}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := n.Set("boot.count", []byte{4}); err != nil {
		t.Fatalf("Set again: %v", err)
	}

	m := newHostNVS(path)
	if err := m.Init(); err != nil {
		t.Fatalf("reopen Init: %v", err)
	}
	v, ok := m.Get("boot.count")
	if !ok || !bytes.Equal(v, []byte{4}) {
		t.Fatalf("Get = %v, %v", v, ok)
	}
}

func TestHostNVSWrongSizeNeedsErase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.nvs")
	if err := os.WriteFile(path, []byte("legacy"), 0o644); err != nil {
		t.Fatal(err)
	}
	n := newHostNVS(path)
	if err := n.Init(); errcode.Of(err) != errcode.NVSNewVersion {
		t.Fatalf("Init = %v", err)
	}
	if err := n.Erase(); err != nil {
		t.Fatalf("Erase: %v", err)
	}
	if err := n.Init(); err != nil {
		t.Fatalf("Init after erase: %v", err)
	}
}

func TestHostNVSReportsNewVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.nvs")
	img := bytes.Repeat([]byte{0xFF}, nvsPartitionBytes)
	copy(img, []byte{'J', 'N', 'V', 'S', nvsVersion + 1})
	if err := os.WriteFile(path, img, 0o644); err != nil {
		t.Fatal(err)
	}

	n := newHostNVS(path)
	if err := n.Init(); errcode.Of(err) != errcode.NVSNewVersion {
		t.Fatalf("Init = %v, want %s", err, errcode.NVSNewVersion)
	}
	if err := n.Erase(); err != nil {
		t.Fatalf("Erase: %v", err)
	}
	if err := n.Init(); err != nil {
		t.Fatalf("Init after erase: %v", err)
	}
}

func TestHostNVSCompactsWhenFull(t *testing.T) {
	n := newHostNVS(filepath.Join(t.TempDir(), "board.nvs"))
	if err := n.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	val := bytes.Repeat([]byte{0x42}, 1000)
	for i := 0; i < 100; i++ {
		if err := n.Set("blob", val); err != nil {
			t.Fatalf("Set #%d: %v", i, err)
		}
	}
	if v, ok := n.Get("blob"); !ok || len(v) != len(val) {
		t.Fatal("value lost during compaction")
	}
}

func TestHostNVSSetBeforeInit(t *testing.T) {
	n := newHostNVS(filepath.Join(t.TempDir(), "board.nvs"))
	if err := n.Set("k", nil); errcode.Of(err) != errcode.NotReady {
		t.Fatalf("Set = %v", err)
	}
}
