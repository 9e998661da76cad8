//go:build !tinygo

package app

import (
	"bytes"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jcboard/hal"
	"jcboard/internal/catalog"
	"jcboard/internal/config"
	"jcboard/internal/errcode"
)

type logBuf struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *logBuf) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *logBuf) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *logBuf) count(s string) int { return strings.Count(b.String(), s) }

func hostBoard(t *testing.T, tweak func(*hal.HostConfig)) (hal.HAL, *logBuf) {
	t.Helper()
	out := &logBuf{}
	cfg := hal.DefaultHostConfig()
	cfg.Out = out
	cfg.NVSPath = ""
	cfg.SDRoot = filepath.Join(t.TempDir(), "sdcard")
	cfg.BusPeerInterval = 0
	if tweak != nil {
		tweak(&cfg)
	}
	return hal.NewHost(cfg), out
}

func TestRegistryCoversCatalog(t *testing.T) {
	for _, ce := range catalog.All() {
		e, err := Lookup(ce.Name())
		require.NoError(t, err, ce.Name())
		assert.Equal(t, ce.Slug, e.Meta.Tag)
		assert.NotNil(t, e.New)
	}
	first, err := Lookup("")
	require.NoError(t, err)
	assert.Equal(t, "display_basic", first.Meta.Tag)

	e, err := Lookup("12")
	require.NoError(t, err)
	assert.Equal(t, "rs485_serial", e.Meta.Tag)
}

func TestUnknownExample(t *testing.T) {
	h, _ := hostBoard(t, nil)
	_, err := New(h, config.Default(), "13_teleport")
	assert.Equal(t, errcode.InvalidParams, errcode.Of(err))
}

func TestBootShowsExample(t *testing.T) {
	h, out := hostBoard(t, nil)
	sys, err := New(h, config.Default(), "display_basic")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return out.count("Display ready! Touch the button.") == 1
	}, 2*time.Second, 5*time.Millisecond)
	log := out.String()
	assert.Contains(t, log, "display_basic: ========================================")
	assert.Contains(t, log, "JC4880P443C Basic Display Example")
	assert.Contains(t, log, "NVS initialized")
	assert.Contains(t, log, "Display initialized")
	assert.Contains(t, log, "UI created")
	assert.Equal(t, uint8(100), h.Display().Backlight().Brightness())

	require.NoError(t, sys.Step())
	assert.Contains(t, sys.Screen().Texts(), "Clicked: 0 times")
	assert.False(t, sys.Halted())
}

func TestStepDeliversTouch(t *testing.T) {
	h, out := hostBoard(t, nil)
	sys, err := New(h, config.Default(), "1")
	require.NoError(t, err)
	x, y, ok := sys.Screen().Find("Click Me!")
	require.True(t, ok)

	in := h.(hal.TouchInjector)
	in.InjectTouch(hal.TouchEvent{X: int16(x), Y: int16(y), Phase: hal.TouchPress})
	in.InjectTouch(hal.TouchEvent{X: int16(x), Y: int16(y), Phase: hal.TouchRelease})
	require.NoError(t, sys.Step())
	assert.Contains(t, sys.Screen().Texts(), "Clicked: 1 times")
	assert.Contains(t, out.String(), "Button clicked! Count: 1")
}

func TestNVSFailureHalts(t *testing.T) {
	dir := t.TempDir()
	h, out := hostBoard(t, func(c *hal.HostConfig) { c.NVSPath = dir })
	sys, err := New(h, config.Default(), "display_basic")
	require.NoError(t, err)

	assert.True(t, sys.Halted())
	assert.Nil(t, sys.Screen())
	require.NoError(t, sys.Step())
	log := out.String()
	assert.Contains(t, log, "NVS init failed")
	assert.NotContains(t, log, "UI created")

	// The fatal screen is drawn straight to the panel.
	fb := h.Display().Framebuffer()
	px := fb.Buffer()[0:2]
	assert.NotEqual(t, []byte{0, 0}, px)
	assert.Equal(t, uint8(100), h.Display().Backlight().Brightness())
}

func TestRestartRebuildsExample(t *testing.T) {
	h, out := hostBoard(t, nil)
	sys, err := New(h, config.Default(), "reset_device")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return out.count("Reset reason: Power-on") == 1 }, 2*time.Second, 5*time.Millisecond)

	first := sys.Screen()
	x, y, ok := first.Find("Reset Now")
	require.True(t, ok)
	in := h.(hal.TouchInjector)
	in.InjectTouch(hal.TouchEvent{X: int16(x), Y: int16(y), Phase: hal.TouchPress})
	in.InjectTouch(hal.TouchEvent{X: int16(x), Y: int16(y), Phase: hal.TouchRelease})

	require.Eventually(t, func() bool {
		if err := sys.Step(); err != nil {
			return false
		}
		return out.count("Reset reason: Software reset (esp_restart)") == 1
	}, 3*time.Second, 10*time.Millisecond)

	assert.NotSame(t, first, sys.Screen())
	assert.Equal(t, 2, out.count("UI created"))
	boots, ok := h.NVS().Get("boot_count")
	require.True(t, ok)
	assert.NotEmpty(t, boots)
}
