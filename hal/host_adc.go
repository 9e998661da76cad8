//go:build !tinygo

package hal

import (
	"math/rand"
	"sync"
	"time"
)

const (
	adcFullScale = 4095
	adcRangeMV   = 3300
)

// hostADC simulates the battery divider on ADC2 channel 4.
type hostADC struct {
	mu    sync.Mutex
	mv    int
	noise int
	rnd   *rand.Rand
	cal   ADCCalibration
}

func newHostADC(mv, noise int, calibrated bool) *hostADC {
	a := &hostADC{mv: mv, noise: noise, rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
	if calibrated {
		a.cal = hostADCCalibration{}
	}
	return a
}

func (a *hostADC) ReadRaw() (uint16, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	mv := a.mv
	if a.noise > 0 {
		mv += a.rnd.Intn(2*a.noise+1) - a.noise
	}
	raw := mv * adcFullScale / adcRangeMV
	if raw < 0 {
		raw = 0
	}
	if raw > adcFullScale {
		raw = adcFullScale
	}
	return uint16(raw), nil
}

func (a *hostADC) Calibration() ADCCalibration { return a.cal }

// setMillivolts changes the simulated battery voltage.
func (a *hostADC) setMillivolts(mv int) {
	a.mu.Lock()
	a.mv = mv
	a.mu.Unlock()
}

// hostADCCalibration rounds where the uncalibrated formula truncates.
type hostADCCalibration struct{}

func (hostADCCalibration) RawToMillivolts(raw int) (int, error) {
	return (raw*adcRangeMV + adcFullScale/2) / adcFullScale, nil
}
