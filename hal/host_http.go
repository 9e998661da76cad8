//go:build !tinygo

package hal

import (
	"net/http"

	"jcboard/internal/errcode"
)

// hostHTTP refuses requests until the simulated station holds an address,
// then uses the host network stack.
type hostHTTP struct {
	wifi   *hostWiFi
	client *http.Client
}

func newHostHTTP(w *hostWiFi) *hostHTTP {
	return &hostHTTP{wifi: w, client: &http.Client{}}
}

func (h *hostHTTP) Do(req *http.Request) (*http.Response, error) {
	if !h.wifi.connected() {
		return nil, &errcode.E{C: errcode.Network, Op: "http", Msg: "station has no IP"}
	}
	return h.client.Do(req)
}
