package status

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultiSkipsNilAndFansOut(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}
	m := Multi(a, nil, b)
	m.Notify(Event{Source: "sd", Kind: Success, Message: "mounted"})

	assert.Len(t, a.Events(), 1)
	assert.Len(t, b.Events(), 1)
	assert.Equal(t, 1, a.Count(Success))
}

func TestLogObserverWritesLevelByKind(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	Log(l).Notify(Event{Source: "wifi", Kind: Failure, Message: "scan failed", Err: errors.New("radio off")})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "scan failed", entry["msg"])
	assert.Equal(t, "wifi", entry["source"])
	assert.Equal(t, "radio off", entry["err"])
}

func TestNopIsSafe(t *testing.T) {
	Nop.Notify(Event{})
}
