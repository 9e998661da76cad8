package ui

import (
	"image/color"

	"jcboard/hal"
)

// ListRow is one entry of a List.
type ListRow struct {
	Title  string
	Detail string
}

// dragSlop is how far a press may travel before it scrolls instead of
// selecting.
const dragSlop = 8

// List shows rows of title and detail text. Dragging scrolls; a tap
// selects.
type List struct {
	Frame
	rows      []ListRow
	rowHeight int
	scroll    int
	bg        color.RGBA
	hint      string
	onSelect  func(i int)

	pressY  int
	lastY   int
	dragged bool
}

func NewList(w, h int) *List {
	l := &List{rowHeight: FontBody.LineHeight() + FontSmall.LineHeight() + 16, bg: ListBG}
	l.SetSize(w, h)
	return l
}

// SetRows replaces the contents and scrolls back to the top.
func (l *List) SetRows(rows []ListRow) {
	l.rows = append(l.rows[:0:0], rows...)
	l.scroll = 0
}

func (l *List) Rows() []ListRow { return l.rows }

func (l *List) SetBG(c color.RGBA) { l.bg = c }

// SetPlaceholder sets the text shown while the list has no rows.
func (l *List) SetPlaceholder(s string) { l.hint = s }

func (l *List) Placeholder() string { return l.hint }

func (l *List) Clear() { l.SetRows(nil) }

func (l *List) OnSelect(fn func(i int)) { l.onSelect = fn }

func (l *List) contentSize() (int, int) { return 0, 0 }

func (l *List) maxScroll() int {
	return max(len(l.rows)*l.rowHeight-l.h, 0)
}

func (l *List) draw(d *fbDisplay, r Rect) {
	drawShape(d, r, 6, &l.bg, 0, l.bg)
	if len(l.rows) == 0 && l.hint != "" {
		FontBody.draw(d, r.X+12, r.Y+12, l.hint, TextDim)
		return
	}
	d.withClip(r, func() {
		first := l.scroll / l.rowHeight
		for i := first; i < len(l.rows); i++ {
			y := r.Y + i*l.rowHeight - l.scroll
			if y >= r.Y+r.H {
				break
			}
			row := l.rows[i]
			FontBody.draw(d, r.X+12, y+6, row.Title, White)
			FontSmall.draw(d, r.X+12, y+10+FontBody.LineHeight(), row.Detail, TextDim)
			d.hline(r.X+8, r.X+r.W-8, y+l.rowHeight-1, ListDivider)
		}
	})
}

func (l *List) touch(ev TouchEvent, r Rect) func() {
	switch ev.Phase {
	case hal.TouchPress:
		l.pressY, l.lastY, l.dragged = ev.Y, ev.Y, false
	case hal.TouchMove:
		if abs(ev.Y-l.pressY) > dragSlop {
			l.dragged = true
		}
		if l.dragged {
			l.scroll = min(max(l.scroll-(ev.Y-l.lastY), 0), l.maxScroll())
		}
		l.lastY = ev.Y
	case hal.TouchRelease:
		if l.dragged || l.onSelect == nil || ev.Y < 0 || ev.Y >= r.H {
			return nil
		}
		i := (ev.Y + l.scroll) / l.rowHeight
		if i >= len(l.rows) {
			return nil
		}
		fn := l.onSelect
		return func() { fn(i) }
	}
	return nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
