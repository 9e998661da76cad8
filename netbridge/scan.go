package netbridge

import (
	"context"
	"fmt"
	"time"

	"jcboard/hal"
	"jcboard/internal/errcode"
)

// MaxScanResults caps the records kept from one scan.
const MaxScanResults = 20

// ScanConfig is an active scan that includes hidden networks.
var ScanConfig = hal.ScanConfig{
	Active:     true,
	ShowHidden: true,
	MinDwell:   100 * time.Millisecond,
	MaxDwell:   300 * time.Millisecond,
}

// Scan runs one blocking scan and keeps at most MaxScanResults records.
// found is the number of access points the radio reported.
func Scan(ctx context.Context, w hal.WiFi) (aps []hal.AccessPoint, found int, err error) {
	aps, err = w.Scan(ctx, ScanConfig)
	if err != nil {
		if errcode.Of(err) == errcode.Network {
			return nil, 0, err
		}
		return nil, 0, &errcode.E{C: errcode.Network, Op: "wifi scan", Err: err}
	}
	found = len(aps)
	if found > MaxScanResults {
		aps = aps[:MaxScanResults]
	}
	return aps, found, nil
}

// Describe renders the second line of a scan row.
func Describe(ap hal.AccessPoint) string {
	return fmt.Sprintf("RSSI: %d dBm | %s | CH %d", ap.RSSI, ap.Auth, ap.Channel)
}
