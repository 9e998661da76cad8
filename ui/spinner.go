package ui

import (
	"image/color"
	"time"
)

// Spinner is an arc rotating once per period over a dim track.
type Spinner struct {
	Frame
	period time.Duration
	arc    float64
	track  color.RGBA
	color  color.RGBA
	now    func() time.Time
}

// NewSpinner returns a size×size spinner with a 1s period and a 200° arc.
func NewSpinner(size int) *Spinner {
	s := &Spinner{period: time.Second, arc: 200, track: BarBG, color: ButtonBG, now: time.Now}
	s.SetSize(size, size)
	return s
}

// SetAnim sets the rotation period and the arc length in degrees.
func (s *Spinner) SetAnim(period time.Duration, arc float64) {
	if period > 0 {
		s.period = period
	}
	s.arc = arc
}

func (s *Spinner) contentSize() (int, int) { return 0, 0 }
func (s *Spinner) animating() bool         { return !s.hidden }

func (s *Spinner) angle() float64 {
	phase := s.now().UnixNano() % int64(s.period)
	return float64(phase) * 360 / float64(s.period)
}

func (s *Spinner) draw(d *fbDisplay, r Rect) {
	cx, cy := r.Center()
	rOut := min(r.W, r.H) / 2
	thick := max(rOut/10, 4)
	drawArc(d, cx, cy, rOut-thick, rOut, 0, 360, s.track)
	drawArc(d, cx, cy, rOut-thick, rOut, s.angle(), s.arc, s.color)
}
