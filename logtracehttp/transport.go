package logtracehttp

import (
	"net/http"

	"github.com/asyncsite/logtrace"
)

// Transport is an http.RoundTripper that injects trace correlation headers
// into outgoing requests, so downstream services join the same trace. The
// request is cloned before mutation, per the RoundTripper contract.
type Transport struct {
	// Next is the underlying transport, http.DefaultTransport when nil.
	Next http.RoundTripper

	// Source supplies the trace identifier when the request context carries
	// no correlation id. Optional.
	Source logtrace.Source
}

var _ http.RoundTripper = (*Transport)(nil)

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	next := t.Next
	if next == nil {
		next = http.DefaultTransport
	}

	req = req.Clone(req.Context())
	logtrace.Inject(req.Context(), t.Source, req.Header)

	return next.RoundTrip(req)
}

// NewClient returns an http.Client that propagates trace headers through the
// provided transport, or http.DefaultTransport when nil.
func NewClient(source logtrace.Source, next http.RoundTripper) *http.Client {
	return &http.Client{
		Transport: &Transport{Next: next, Source: source},
	}
}
