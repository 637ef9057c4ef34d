package logtrace

import "context"

// Header names propagated across service boundaries. The X-B3-* trio is
// B3-compatible, so downstream Zipkin or Jaeger setups can pick the trace up;
// the correlation header carries the gateway-assigned identifier verbatim.
const (
	HeaderCorrelationID = "X-Correlation-Id"
	HeaderTraceID       = "X-B3-TraceId"
	HeaderSpanID        = "X-B3-SpanId"
	HeaderSampled       = "X-B3-Sampled"
)

// HeaderCarrier is the write side of any header-bearing message: http.Header
// satisfies it directly, and broker producers (Kafka record headers, etc.)
// adapt trivially. This keeps propagation independent of any transport or
// broker client.
type HeaderCarrier interface {
	Set(key, value string)
}

// Inject writes trace correlation headers for an outbound message. The trace
// identifier comes from the context's correlation id first, then from the
// source; when neither is available nothing is written, since inventing an id
// here would break correlation with the lines already logged. A fresh span id
// is generated per message.
func Inject(ctx context.Context, source Source, carrier HeaderCarrier) {
	if carrier == nil {
		return
	}

	id, ok := CorrelationID(ctx)
	if ok {
		carrier.Set(HeaderCorrelationID, id)
	}

	if !ok && source != nil {
		id, ok = source.CurrentTraceID(ctx)
	}

	if !ok || id == "" {
		return
	}

	carrier.Set(HeaderTraceID, id)
	carrier.Set(HeaderSpanID, newID())
	carrier.Set(HeaderSampled, "1")
}
