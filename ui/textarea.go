package ui

import (
	"fmt"
	"image/color"
	"strings"

	"tinygo.org/x/tinyterm"
)

// maxTextAreaBytes bounds the text kept for Text().
const maxTextAreaBytes = 4096

// TextArea is a scrolling terminal drawn into an off-screen buffer.
type TextArea struct {
	Frame
	buf    *bufDisplay
	term   *tinyterm.Terminal
	text   strings.Builder
	border color.RGBA
	sgr    int
	hint   string
}

func NewTextArea(w, h int) *TextArea {
	t := &TextArea{border: ListDivider}
	t.SetSize(w, h)
	t.buf = newBufDisplay(w-4, h-4)
	t.reset()
	return t
}

func (t *TextArea) reset() {
	_ = t.buf.FillRectangle(0, 0, int16(t.buf.w), int16(t.buf.h), Black)
	t.term = tinyterm.NewTerminal(t.buf)
	t.term.Configure(&tinyterm.Config{
		Font:              FontSmall.face,
		FontHeight:        int16(FontSmall.height),
		FontOffset:        int16(FontSmall.ascent),
		UseSoftwareScroll: true,
	})
	if t.sgr != 0 {
		fmt.Fprintf(t.term, "\x1b[%dm", t.sgr)
	}
	t.text.Reset()
}

// SetTextColor selects an ANSI foreground (30-37) for new text.
func (t *TextArea) SetTextColor(sgr int) {
	t.sgr = sgr
	fmt.Fprintf(t.term, "\x1b[%dm", sgr)
}

func (t *TextArea) SetBorder(c color.RGBA) { t.border = c }

// SetPlaceholder sets the text shown while the area is empty.
func (t *TextArea) SetPlaceholder(s string) { t.hint = s }

// Append writes s at the cursor; "\n" starts a new line and the view
// scrolls when full.
func (t *TextArea) Append(s string) {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "")
	_, _ = t.term.Write([]byte(strings.ReplaceAll(s, "\n", "\r\n")))
	t.text.WriteString(s)
	if t.text.Len() > maxTextAreaBytes {
		keep := t.text.String()[t.text.Len()-maxTextAreaBytes/2:]
		t.text.Reset()
		t.text.WriteString(keep)
	}
}

// SetText clears the area and writes s.
func (t *TextArea) SetText(s string) {
	t.reset()
	t.Append(s)
}

func (t *TextArea) Clear() { t.reset() }

// Text returns the most recent text written.
func (t *TextArea) Text() string { return t.text.String() }

func (t *TextArea) contentSize() (int, int) { return 0, 0 }

func (t *TextArea) draw(d *fbDisplay, r Rect) {
	drawShape(d, r, 0, nil, 2, t.border)
	d.blit(t.buf, r.X+2, r.Y+2)
	if t.text.Len() == 0 && t.hint != "" {
		FontSmall.draw(d, r.X+6, r.Y+6, t.hint, TextDim)
	}
}
