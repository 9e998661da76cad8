// Package battery turns averaged ADC samples of the battery divider into a
// voltage and a charge estimate.
package battery

import (
	"context"
	"fmt"
	"time"

	"jcboard/hal"
	"jcboard/internal/errcode"
	"jcboard/internal/mathx"
	"jcboard/status"
)

const (
	Samples      = 500
	DefaultMinMV = 2250 // 0%
	DefaultMaxMV = 2500 // 100%
	Interval     = time.Second

	// Uncalibrated conversion: 12-bit counts over a 3.3V span.
	fullScaleMV = 3300
	maxRaw      = 4095
)

// Reading is one voltage and percentage pair.
type Reading struct {
	Millivolts int
	Percent    int
}

// Average takes n raw reads in a tight loop and returns their integer mean.
// A failed read aborts the average.
func Average(read func() (uint16, error), n int) (int, error) {
	if n <= 0 {
		return 0, &errcode.E{C: errcode.InvalidParams, Op: "adc average", Msg: fmt.Sprintf("%d samples", n)}
	}
	sum := 0
	for i := 0; i < n; i++ {
		v, err := read()
		if err != nil {
			return 0, fmt.Errorf("adc read %d/%d: %w", i+1, n, err)
		}
		sum += int(v)
	}
	return sum / n, nil
}

// ToMillivolts converts an averaged raw value using the calibration curve
// when there is one, else the linear 3.3V scale.
func ToMillivolts(raw int, cal hal.ADCCalibration) (int, error) {
	if cal != nil {
		mv, err := cal.RawToMillivolts(raw)
		if err != nil {
			return 0, fmt.Errorf("adc calibration: %w", err)
		}
		return mv, nil
	}
	return raw * fullScaleMV / maxRaw, nil
}

// Percent maps mv onto 0..100 between minMV and maxMV.
func Percent(mv, minMV, maxMV int) int {
	if mv >= maxMV {
		return 100
	}
	if mv <= minMV {
		return 0
	}
	return mathx.Scale(mv, minMV, maxMV, 0, 100)
}

// Level is the colour band of a charge percentage.
type Level uint8

const (
	Low Level = iota
	Medium
	High
)

func LevelOf(percent int) Level {
	switch {
	case percent <= 20:
		return Low
	case percent <= 50:
		return Medium
	}
	return High
}

func (l Level) String() string {
	switch l {
	case Low:
		return "low"
	case Medium:
		return "medium"
	}
	return "high"
}

// Monitor samples the battery periodically and hands each reading to Sink.
// Sampling happens on the monitor's goroutine; Sink is where the caller
// takes the display lock.
type Monitor struct {
	ADC      hal.ADC
	Samples  int
	MinMV    int
	MaxMV    int
	Interval time.Duration
	Sink     func(Reading)
	Obs      status.Observer

	after func(time.Duration) <-chan time.Time
}

// NewMonitor returns a monitor with the board defaults.
func NewMonitor(adc hal.ADC, sink func(Reading), obs status.Observer) *Monitor {
	return &Monitor{
		ADC:      adc,
		Samples:  Samples,
		MinMV:    DefaultMinMV,
		MaxMV:    DefaultMaxMV,
		Interval: Interval,
		Sink:     sink,
		Obs:      obs,
	}
}

// Sample takes one averaged reading.
func (m *Monitor) Sample() (Reading, error) {
	if m.ADC == nil {
		return Reading{}, &errcode.E{C: errcode.HardwareAbsent, Op: "battery sample", Msg: "no ADC"}
	}
	raw, err := Average(m.ADC.ReadRaw, m.Samples)
	if err != nil {
		return Reading{}, err
	}
	mv, err := ToMillivolts(raw, m.ADC.Calibration())
	if err != nil {
		return Reading{}, err
	}
	return Reading{Millivolts: mv, Percent: Percent(mv, m.MinMV, m.MaxMV)}, nil
}

// Run samples every Interval until ctx ends. A read failure stops the
// monitor and is returned.
func (m *Monitor) Run(ctx context.Context) error {
	after := m.after
	if after == nil {
		after = time.After
	}
	obs := m.Obs
	if obs == nil {
		obs = status.Nop
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		r, err := m.Sample()
		if err != nil {
			obs.Notify(status.Event{Source: "battery", Kind: status.Failure, Message: "ADC read failed", Err: err})
			return err
		}
		obs.Notify(status.Event{
			Source:  "battery",
			Kind:    status.Progress,
			Message: fmt.Sprintf("Battery: %d mV, %d%%", r.Millivolts, r.Percent),
		})
		if m.Sink != nil {
			m.Sink(r)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-after(m.Interval):
		}
	}
}
