package errcode

import (
	"errors"
	"fmt"
	"testing"
)

func TestOfWalksWrappedChain(t *testing.T) {
	base := &E{C: HardwareAbsent, Op: "sd mount"}
	err := fmt.Errorf("mount /sdcard: %w", base)
	if got := Of(err); got != HardwareAbsent {
		t.Fatalf("Of = %q, want %q", got, HardwareAbsent)
	}
	if got := Of(fmt.Errorf("scan: %w", Network)); got != Network {
		t.Fatalf("Of = %q, want %q", got, Network)
	}
	if got := Of(nil); got != OK {
		t.Fatalf("Of(nil) = %q", got)
	}
	if got := Of(errors.New("boom")); got != Error {
		t.Fatalf("Of(plain) = %q", got)
	}
}

func TestWrap(t *testing.T) {
	if Wrap(Network, "scan", nil) != nil {
		t.Fatal("Wrap(nil) must stay nil")
	}
	cause := errors.New("no ap")
	err := Wrap(Network, "scan", cause)
	if !errors.Is(err, cause) {
		t.Fatal("wrapped error lost its cause")
	}
	if got, want := err.Error(), "scan: network: no ap"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

func TestTransient(t *testing.T) {
	for _, c := range []Code{Network, Timeout, HardwareAbsent} {
		if !Transient(c) {
			t.Fatalf("%s should be transient", c)
		}
	}
	for _, c := range []Code{FatalConfig, ResourceAlloc, NVSNoFreePages} {
		if Transient(c) {
			t.Fatalf("%s should not be transient", c)
		}
	}
}

func TestOfFollowsJoinedErrors(t *testing.T) {
	err := fmt.Errorf("mount: %w", errors.Join(&E{C: HardwareAbsent}, errors.New("rail release")))
	if got := Of(err); got != HardwareAbsent {
		t.Fatalf("Of = %q, want %q", got, HardwareAbsent)
	}
	outer := &E{C: ResourceAlloc, Err: Busy}
	if got := Of(outer); got != ResourceAlloc {
		t.Fatalf("Of = %q, want the outermost code", got)
	}
}
