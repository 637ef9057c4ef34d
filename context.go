package logtrace

import "context"

// Source supplies a distributed trace identifier for the current execution
// context, e.g. from an OpenTelemetry span or a B3 header extracted by an
// upstream middleware. Absence is not an error: implementations return false
// when no identifier is available, and the tracer falls back to generating
// one.
type Source interface {
	CurrentTraceID(ctx context.Context) (string, bool)
}

// SourceFunc is a function adapter for the Source interface.
type SourceFunc func(ctx context.Context) (string, bool)

// CurrentTraceID implements Source.
func (f SourceFunc) CurrentTraceID(ctx context.Context) (string, bool) {
	return f(ctx)
}

//
//
//

type correlationContextKey struct{}

var correlationContextVal correlationContextKey

// WithCorrelationID returns a context carrying the provided correlation
// identifier, which takes highest priority when the tracer resolves the
// trace id. Gateways and HTTP middlewares typically set this from an
// X-Correlation-Id request header.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationContextVal, id)
}

// CorrelationID returns the correlation identifier in the context, if any.
func CorrelationID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(correlationContextVal).(string)
	return id, ok && id != ""
}

//
//
//

// scope is the mutable call state belonging to one logical execution context.
// It is carried by pointer in the context, so the depth incremented by Begin
// is visible to the matching End or Exception on the same context chain, and
// to nothing else. One scope per concurrently executing call chain: no locks
// are needed because a scope is never shared across chains.
type scope struct {
	depth           int
	exceptionLogged bool

	// generatedID caches the fallback trace identifier so that nested calls
	// in one context share an id even when no correlation id or source is
	// available. Cleared when depth returns to zero.
	generatedID string
}

type scopeContextKey struct{}

var scopeContextVal scopeContextKey

// WithScope returns a context carrying fresh call state. If the context
// already carries call state, it is returned unchanged. Callers don't
// normally need this: Begin installs a scope on demand. It is useful at the
// top of a request chain, e.g. in middleware, to make the span of the scope
// explicit.
func WithScope(ctx context.Context) context.Context {
	if _, ok := scopeFromContext(ctx); ok {
		return ctx
	}
	return context.WithValue(ctx, scopeContextVal, &scope{})
}

func scopeFromContext(ctx context.Context) (*scope, bool) {
	sc, ok := ctx.Value(scopeContextVal).(*scope)
	return sc, ok && sc != nil
}
