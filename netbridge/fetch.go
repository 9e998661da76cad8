package netbridge

import (
	"context"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"jcboard/hal"
	"jcboard/internal/errcode"
)

const (
	FetchTimeout = 10 * time.Second
	// BodyLimit leaves room for a terminator in the 2 KiB response buffer.
	BodyLimit    = 2047
	DisplayLimit = 500
)

// Response is the buffered result of one GET.
type Response struct {
	Status        int
	ContentLength int64
	Body          []byte
	Elapsed       time.Duration
}

// DisplayText is the body cut to at most DisplayLimit bytes on a rune
// boundary, marked with "..." when cut.
func (r Response) DisplayText() string {
	if len(r.Body) <= DisplayLimit {
		return string(r.Body)
	}
	n := DisplayLimit
	for n > 0 && !utf8.RuneStart(r.Body[n]) {
		n--
	}
	return string(r.Body[:n]) + "..."
}

// Fetch GETs url through client with FetchTimeout. Any transport failure is
// a network error.
func Fetch(ctx context.Context, client hal.HTTPClient, url string) (Response, error) {
	ctx, cancel := context.WithTimeout(ctx, FetchTimeout)
	defer cancel()

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Response{}, &errcode.E{C: errcode.InvalidParams, Op: "http get", Err: err}
	}
	resp, err := client.Do(req)
	if err != nil {
		return Response{Elapsed: time.Since(start)}, &errcode.E{C: errcode.Network, Op: "http get", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, BodyLimit))
	out := Response{
		Status:        resp.StatusCode,
		ContentLength: resp.ContentLength,
		Body:          body,
		Elapsed:       time.Since(start),
	}
	if err != nil {
		return out, &errcode.E{C: errcode.Network, Op: "http read", Err: err}
	}
	return out, nil
}
