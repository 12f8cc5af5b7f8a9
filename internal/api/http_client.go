// Package api provides the HTTP plumbing shared by everything that talks to
// a buildbot master.
package api

import "net/http"

type headerRoundTripper struct {
	next    http.RoundTripper
	headers map[string]string
}

// NewTransport returns a RoundTripper that stamps every outgoing request with
// the given headers.
func NewTransport(headers map[string]string) http.RoundTripper {
	return headerRoundTripper{
		headers: headers,
		next:    http.DefaultTransport,
	}
}

// RoundTrip implements http.RoundTripper.
func (hrt headerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	for k, v := range hrt.headers {
		req.Header.Set(k, v)
	}

	return hrt.next.RoundTrip(req)
}
