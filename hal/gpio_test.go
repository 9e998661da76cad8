package hal

import (
	"context"
	"testing"
	"time"
)

func TestIRQPinWaitLevel(t *testing.T) {
	pin := newIRQPin(PinName(PinTouchInt))
	if err := pin.Configure(GPIOModeInput, GPIOPullUp); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	level, err := pin.Read()
	if err != nil || !level {
		t.Fatalf("idle level = %v, %v; want high", level, err)
	}

	done := make(chan error, 1)
	go func() { done <- pin.WaitLevel(context.Background(), false) }()

	select {
	case err := <-done:
		t.Fatalf("WaitLevel returned early: %v", err)
	case <-time.After(20 * time.Millisecond):
	}

	pin.set(true)
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("WaitLevel: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("WaitLevel did not observe the edge")
	}
}

func TestIRQPinWaitLevelHonoursContext(t *testing.T) {
	pin := newIRQPin("INT")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := pin.WaitLevel(ctx, false); err != context.DeadlineExceeded {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}

func TestVirtualPinCaps(t *testing.T) {
	p := newVirtualPin("GPIO10", GPIOCapOutput)
	if err := p.Configure(GPIOModeInput, GPIOPullNone); err == nil {
		t.Fatal("expected input to be rejected")
	}
	if err := p.Configure(GPIOModeOutput, GPIOPullNone); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if err := p.Write(true); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if level, _ := p.Read(); !level {
		t.Fatal("expected latched high")
	}
}

func TestFindPinAndParse(t *testing.T) {
	g := newVirtualGPIO([]GPIOPin{newIRQPin("GPIO4"), newVirtualPin("GPIO10", GPIOCapOutput)})
	if p := FindPin(g, "gpio10"); p == nil || p.Name() != "GPIO10" {
		t.Fatalf("FindPin = %v", p)
	}
	if FindPin(g, "GPIO99") != nil {
		t.Fatal("unexpected pin")
	}

	a, err := ParseBDAddr("c4:7c:8d:6a:12:01")
	if err != nil {
		t.Fatalf("ParseBDAddr: %v", err)
	}
	if a.String() != "C4:7C:8D:6A:12:01" {
		t.Fatalf("String = %q", a.String())
	}
	if _, err := ParseBDAddr("C4:7C"); err == nil {
		t.Fatal("expected error for short address")
	}
	if ParseAuthMode("WPA/WPA2") != AuthWPAWPA2 || ParseAuthMode("enterprise") != AuthOther {
		t.Fatal("ParseAuthMode mismatch")
	}
}

func TestReasonAndCauseNames(t *testing.T) {
	if got := ResetSoftware.String(); got != "Software reset (esp_restart)" {
		t.Fatalf("ResetSoftware = %q", got)
	}
	if got := ResetReason(99).String(); got != "Unknown" {
		t.Fatalf("out of range reason = %q", got)
	}
	if got := WakeUndefined.String(); got != "Undefined (power on)" {
		t.Fatalf("WakeUndefined = %q", got)
	}
	if got := WakeGPIO.String(); got != "GPIO" {
		t.Fatalf("WakeGPIO = %q", got)
	}
}
