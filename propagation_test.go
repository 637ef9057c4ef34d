package logtrace_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/asyncsite/logtrace"
)

func TestInjectWithCorrelationID(t *testing.T) {
	t.Parallel()

	ctx := logtrace.WithCorrelationID(context.Background(), "abc-123")
	h := http.Header{}

	logtrace.Inject(ctx, nil, h)

	if want, have := "abc-123", h.Get(logtrace.HeaderCorrelationID); want != have {
		t.Errorf("correlation header: want %q, have %q", want, have)
	}
	if want, have := "abc-123", h.Get(logtrace.HeaderTraceID); want != have {
		t.Errorf("trace id header: want %q, have %q", want, have)
	}
	if want, have := "1", h.Get(logtrace.HeaderSampled); want != have {
		t.Errorf("sampled header: want %q, have %q", want, have)
	}
	if h.Get(logtrace.HeaderSpanID) == "" {
		t.Errorf("span id header not set")
	}
}

func TestInjectFromSource(t *testing.T) {
	t.Parallel()

	src := logtrace.SourceFunc(func(context.Context) (string, bool) {
		return "tid-999", true
	})
	h := http.Header{}

	logtrace.Inject(context.Background(), src, h)

	if have := h.Get(logtrace.HeaderCorrelationID); have != "" {
		t.Errorf("correlation header should be absent, have %q", have)
	}
	if want, have := "tid-999", h.Get(logtrace.HeaderTraceID); want != have {
		t.Errorf("trace id header: want %q, have %q", want, have)
	}
}

func TestInjectWithoutIdentifiers(t *testing.T) {
	t.Parallel()

	h := http.Header{}
	logtrace.Inject(context.Background(), nil, h)

	if want, have := 0, len(h); want != have {
		t.Errorf("headers: want none, have %v", h)
	}
}

func TestInjectNilCarrier(t *testing.T) {
	t.Parallel()

	// Must not panic.
	logtrace.Inject(context.Background(), nil, nil)
}
