package logtracehttp_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asyncsite/logtrace"
	"github.com/asyncsite/logtrace/logtracehttp"
)

func TestTransportInjectsCorrelationHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
	}))
	defer srv.Close()

	client := logtracehttp.NewClient(nil, nil)

	ctx := logtrace.WithCorrelationID(context.Background(), "abcdef1234567890")
	req, err := http.NewRequestWithContext(ctx, "GET", srv.URL, nil)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "abcdef1234567890", got.Get(logtrace.HeaderCorrelationID))
	assert.Equal(t, "abcdef1234567890", got.Get(logtrace.HeaderTraceID))
	assert.NotEmpty(t, got.Get(logtrace.HeaderSpanID))
	assert.Equal(t, "1", got.Get(logtrace.HeaderSampled))
}

func TestTransportUsesSourceWithoutCorrelation(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
	}))
	defer srv.Close()

	source := logtrace.SourceFunc(func(ctx context.Context) (string, bool) {
		return "4bf92f3577b34da6a3ce929d0e0e4736", true
	})
	client := logtracehttp.NewClient(source, nil)

	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Empty(t, got.Get(logtrace.HeaderCorrelationID))
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", got.Get(logtrace.HeaderTraceID))
	assert.Equal(t, "1", got.Get(logtrace.HeaderSampled))
}

func TestTransportSilentWithoutIdentifiers(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
	}))
	defer srv.Close()

	client := logtracehttp.NewClient(nil, nil)

	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Empty(t, got.Get(logtrace.HeaderCorrelationID))
	assert.Empty(t, got.Get(logtrace.HeaderTraceID))
	assert.Empty(t, got.Get(logtrace.HeaderSpanID))
	assert.Empty(t, got.Get(logtrace.HeaderSampled))
}

func TestTransportDoesNotMutateOriginalRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	client := logtracehttp.NewClient(nil, nil)

	ctx := logtrace.WithCorrelationID(context.Background(), "abcdef1234567890")
	req, err := http.NewRequestWithContext(ctx, "GET", srv.URL, nil)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Empty(t, req.Header.Get(logtrace.HeaderTraceID), "the caller's request stays untouched")
}
