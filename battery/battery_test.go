package battery

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jcboard/hal"
)

func TestAverageWithinSampleRange(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for trial := 0; trial < 200; trial++ {
		n := 1 + rng.Intn(Samples)
		samples := make([]uint16, n)
		lo, hi := uint16(4095), uint16(0)
		for i := range samples {
			samples[i] = uint16(rng.Intn(4096))
			lo, hi = min(lo, samples[i]), max(hi, samples[i])
		}
		i := 0
		avg, err := Average(func() (uint16, error) { v := samples[i]; i++; return v, nil }, n)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, avg, int(lo))
		assert.LessOrEqual(t, avg, int(hi))
	}
}

func TestAverageStopsOnReadError(t *testing.T) {
	calls := 0
	_, err := Average(func() (uint16, error) {
		calls++
		if calls == 3 {
			return 0, errors.New("adc timeout")
		}
		return 100, nil
	}, Samples)
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestPercentThresholds(t *testing.T) {
	assert.Equal(t, 100, Percent(2500, DefaultMinMV, DefaultMaxMV))
	assert.Equal(t, 0, Percent(2250, DefaultMinMV, DefaultMaxMV))
	assert.Equal(t, 50, Percent(2375, DefaultMinMV, DefaultMaxMV))
	assert.Equal(t, 100, Percent(4000, DefaultMinMV, DefaultMaxMV))
	assert.Equal(t, 0, Percent(-5, DefaultMinMV, DefaultMaxMV))
}

func TestPercentMonotonicAndClamped(t *testing.T) {
	prev := -1
	for mv := 2000; mv <= 2800; mv++ {
		p := Percent(mv, DefaultMinMV, DefaultMaxMV)
		assert.GreaterOrEqual(t, p, 0)
		assert.LessOrEqual(t, p, 100)
		assert.GreaterOrEqual(t, p, prev, "mv=%d", mv)
		prev = p
	}
}

type calFunc func(int) (int, error)

func (f calFunc) RawToMillivolts(raw int) (int, error) { return f(raw) }

func TestToMillivolts(t *testing.T) {
	mv, err := ToMillivolts(4095, nil)
	require.NoError(t, err)
	assert.Equal(t, 3300, mv)

	mv, err = ToMillivolts(1000, calFunc(func(raw int) (int, error) { return raw + 7, nil }))
	require.NoError(t, err)
	assert.Equal(t, 1007, mv)
}

func TestLevelBands(t *testing.T) {
	assert.Equal(t, Low, LevelOf(20))
	assert.Equal(t, Medium, LevelOf(21))
	assert.Equal(t, Medium, LevelOf(50))
	assert.Equal(t, High, LevelOf(51))
}

type fakeADC struct {
	raw uint16
	err error
}

func (a *fakeADC) ReadRaw() (uint16, error)        { return a.raw, a.err }
func (a *fakeADC) Calibration() hal.ADCCalibration { return nil }

func TestMonitorDeliversReadingsUntilCancelled(t *testing.T) {
	// 2375 mV uncalibrated.
	adc := &fakeADC{raw: uint16(2375 * 4095 / 3300)}
	ctx, cancel := context.WithCancel(context.Background())
	var got []Reading
	m := NewMonitor(adc, func(r Reading) {
		got = append(got, r)
		if len(got) == 3 {
			cancel()
		}
	}, nil)
	ticks := make(chan time.Time)
	close(ticks)
	m.after = func(time.Duration) <-chan time.Time { return ticks }

	err := m.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, got, 3)
	assert.InDelta(t, 2375, got[0].Millivolts, 1)
	assert.InDelta(t, 50, got[0].Percent, 1)
}

func TestMonitorStopsOnReadFailure(t *testing.T) {
	m := NewMonitor(&fakeADC{err: errors.New("adc broken")}, nil, nil)
	err := m.Run(context.Background())
	assert.ErrorContains(t, err, "adc broken")
}

type countingADC struct {
	fakeADC
	reads int
}

func (a *countingADC) ReadRaw() (uint16, error) {
	a.reads++
	return a.fakeADC.ReadRaw()
}

func TestMonitorNoSampleAfterCancel(t *testing.T) {
	ticks := make(chan time.Time)
	close(ticks)
	// Both select arms are ready once cancelled; repeat so either pick is covered.
	for i := 0; i < 50; i++ {
		adc := &countingADC{fakeADC: fakeADC{raw: 2000}}
		ctx, cancel := context.WithCancel(context.Background())
		readings := 0
		m := NewMonitor(adc, func(Reading) { readings++; cancel() }, nil)
		m.after = func(time.Duration) <-chan time.Time { return ticks }

		err := m.Run(ctx)
		assert.ErrorIs(t, err, context.Canceled)
		require.Equal(t, 1, readings)
		require.Equal(t, m.Samples, adc.reads)
	}
}
