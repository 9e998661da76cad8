//go:build !tinygo

package hal

import (
	"context"
	"testing"
	"time"

	"jcboard/internal/errcode"
)

func TestHostCoProcessorNeedsTransport(t *testing.T) {
	co := newHostCoProcessor(HostConfig{})
	if err := co.WiFi().Init(); errcode.Of(err) != errcode.NotReady {
		t.Fatalf("WiFi.Init before transport = %v", err)
	}

	failing := newHostCoProcessor(HostConfig{TransportFail: true})
	if err := failing.InitTransport(); errcode.Of(err) != errcode.HardwareAbsent {
		t.Fatalf("InitTransport = %v", err)
	}
}

func TestHostWiFiScanHidesHiddenUnlessAsked(t *testing.T) {
	co := newHostCoProcessor(HostConfig{AccessPoints: []AccessPoint{
		{SSID: "a", RSSI: -40}, {SSID: "", RSSI: -70},
	}})
	if err := co.InitTransport(); err != nil {
		t.Fatal(err)
	}
	w := co.WiFi()
	w.Init()
	w.Start()

	aps, err := w.Scan(context.Background(), ScanConfig{})
	if err != nil || len(aps) != 1 {
		t.Fatalf("Scan = %v, %v", aps, err)
	}
	aps, _ = w.Scan(context.Background(), ScanConfig{ShowHidden: true})
	if len(aps) != 2 {
		t.Fatalf("hidden scan = %v", aps)
	}
}

func TestHostWiFiScriptedDisconnects(t *testing.T) {
	co := newHostCoProcessor(HostConfig{WiFiDisconnects: 1})
	co.wifi.joinDelay = time.Millisecond
	co.InitTransport()
	w := co.WiFi()
	w.Init()
	w.Configure(StationConfig{SSID: "lab"})
	w.Start()

	if ev := <-w.Events(); ev.Kind != WiFiStaStart {
		t.Fatalf("first event = %+v", ev)
	}
	w.Connect()
	if ev := <-w.Events(); ev.Kind != WiFiStaDisconnected {
		t.Fatalf("want disconnect, got %+v", ev)
	}
	w.Connect()
	if ev := <-w.Events(); ev.Kind != WiFiGotIP || ev.IP == "" {
		t.Fatalf("want IP, got %+v", ev)
	}
}
