//go:build !tinygo && cgo

package hal

import (
	"jcboard/internal/buildinfo"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// RunWindow starts a desktop window showing the panel. The left mouse button
// acts as the touch controller. It blocks until the window closes.
func RunWindow(cfg HostConfig, newApp func(HAL) func() error) error {
	h := NewHost(cfg).(*hostHAL)
	step := newApp(h)

	g := &hostGame{h: h, step: step}
	title := "JC4880P443C"
	if buildinfo.Example != "" {
		title += " " + buildinfo.Example
	}
	ebiten.SetWindowTitle(title + " (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(h.fb.width*h.cfg.Scale, h.fb.height*h.cfg.Scale)
	ebiten.SetTPS(60)
	return ebiten.RunGame(g)
}

type hostGame struct {
	h     *hostHAL
	pix   []byte
	fbImg *ebiten.Image
	step  func() error
}

func (g *hostGame) pollTouch() {
	x, y := ebiten.CursorPosition()
	ev := TouchEvent{X: int16(x), Y: int16(y)}
	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		ev.Phase = TouchPress
	case inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft):
		ev.Phase = TouchRelease
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		ev.Phase = TouchMove
	default:
		return
	}
	g.h.touch.inject(ev)
}

func (g *hostGame) Update() error {
	g.pollTouch()
	if g.step != nil {
		if err := g.step(); err != nil {
			return err
		}
	}
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	fb := g.h.fb
	if g.fbImg == nil {
		g.pix = make([]byte, fb.width*fb.height*4)
		g.fbImg = ebiten.NewImage(fb.width, fb.height)
	}
	fb.snapshotRGBA(g.pix, g.h.bl.Brightness())
	g.fbImg.WritePixels(g.pix)
	screen.DrawImage(g.fbImg, nil)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.h.fb.width, g.h.fb.height
}
