// Package logging renders slog records as ESP-IDF style console lines:
//
//	I (1234) wifi_scan: Found 7 networks
//
// The letter is the level, the number is milliseconds since the handler was
// created, and the tag comes from the "tag" attribute.
package logging

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// TagKey is the attribute that selects the line tag.
const TagKey = "tag"

// LineWriter receives one formatted line per record. hal.Logger satisfies it.
type LineWriter interface {
	WriteLineString(s string)
}

// Handler is a slog.Handler writing single lines to a LineWriter.
type Handler struct {
	out   LineWriter
	level slog.Leveler
	start time.Time
	now   func() time.Time

	tag    string
	prefix string // pre-rendered attrs from WithAttrs
	group  string
	mu     *sync.Mutex
}

var _ slog.Handler = (*Handler)(nil)

// NewHandler returns a handler writing to out at or above level.
func NewHandler(out LineWriter, level slog.Leveler) *Handler {
	if level == nil {
		level = slog.LevelInfo
	}
	now := time.Now
	return &Handler{out: out, level: level, start: now(), now: now, mu: &sync.Mutex{}}
}

// New returns a logger writing through a Handler, tagged with tag.
func New(out LineWriter, level slog.Leveler, tag string) *slog.Logger {
	l := slog.New(NewHandler(out, level))
	if tag != "" {
		l = l.With(TagKey, tag)
	}
	return l
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	if h.out == nil {
		return nil
	}
	var b strings.Builder
	ms := h.now().Sub(h.start).Milliseconds()
	tag := h.tag
	var attrs strings.Builder
	attrs.WriteString(h.prefix)
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == TagKey && h.group == "" {
			tag = a.Value.String()
			return true
		}
		writeAttr(&attrs, h.group, a)
		return true
	})
	if tag == "" {
		tag = "main"
	}
	fmt.Fprintf(&b, "%c (%d) %s: %s", levelLetter(r.Level), ms, tag, r.Message)
	b.WriteString(attrs.String())

	h.mu.Lock()
	defer h.mu.Unlock()
	h.out.WriteLineString(b.String())
	return nil
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	nh := *h
	var b strings.Builder
	b.WriteString(h.prefix)
	for _, a := range attrs {
		if a.Key == TagKey && h.group == "" {
			nh.tag = a.Value.String()
			continue
		}
		writeAttr(&b, h.group, a)
	}
	nh.prefix = b.String()
	return &nh
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	nh := *h
	if nh.group != "" {
		nh.group += "." + name
	} else {
		nh.group = name
	}
	return &nh
}

func writeAttr(b *strings.Builder, group string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	key := a.Key
	if group != "" {
		key = group + "." + key
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			writeAttr(b, key, ga)
		}
		return
	}
	v := a.Value.String()
	if strings.ContainsAny(v, " \t\"=") {
		v = fmt.Sprintf("%q", v)
	}
	b.WriteByte(' ')
	b.WriteString(key)
	b.WriteByte('=')
	b.WriteString(v)
}

func levelLetter(l slog.Level) byte {
	switch {
	case l >= slog.LevelError:
		return 'E'
	case l >= slog.LevelWarn:
		return 'W'
	case l >= slog.LevelInfo:
		return 'I'
	default:
		return 'D'
	}
}

// ParseLevel accepts debug, info, warn and error (case-insensitive).
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level %q: %w", s, err)
	}
	return l, nil
}
