package logging

import (
	"log/slog"
	"strings"
	"testing"
	"time"
)

type lines struct{ got []string }

func (l *lines) WriteLineString(s string) { l.got = append(l.got, s) }

func newTestLogger(out *lines, level slog.Level) *slog.Logger {
	h := NewHandler(out, level)
	t0 := time.Unix(100, 0)
	h.start = t0
	h.now = func() time.Time { return t0.Add(1234 * time.Millisecond) }
	return slog.New(h)
}

func TestHandlerFormatsTaggedLine(t *testing.T) {
	out := &lines{}
	log := newTestLogger(out, slog.LevelInfo).With(TagKey, "wifi_scan")

	log.Info("Found networks", "count", 7)
	log.Debug("dropped")
	log.Error("Scan failed", "err", "no radio")

	if len(out.got) != 2 {
		t.Fatalf("got %d lines: %q", len(out.got), out.got)
	}
	if want := "I (1234) wifi_scan: Found networks count=7"; out.got[0] != want {
		t.Fatalf("line = %q, want %q", out.got[0], want)
	}
	if !strings.HasPrefix(out.got[1], "E (1234) wifi_scan: Scan failed") || !strings.Contains(out.got[1], `err="no radio"`) {
		t.Fatalf("error line = %q", out.got[1])
	}
}

func TestHandlerDefaultTagAndGroups(t *testing.T) {
	out := &lines{}
	log := newTestLogger(out, slog.LevelDebug)
	log.WithGroup("sd").Warn("slow", "ms", 12)
	if want := "W (1234) main: slow sd.ms=12"; out.got[0] != want {
		t.Fatalf("line = %q, want %q", out.got[0], want)
	}
}

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel("warn")
	if err != nil || l != slog.LevelWarn {
		t.Fatalf("ParseLevel = %v, %v", l, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatal("expected error")
	}
}
