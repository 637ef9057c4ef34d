// Package logtrace provides call-hierarchy trace logging: it wraps arbitrary
// units of work and emits visually indented log lines showing nested call
// entry, exit, timing, and failures, correlated with a trace identifier.
//
// The basic idea is that an [Interceptor] brackets an invocation with calls to
// a [LogTracer], which tracks a per-execution-context call depth and renders
// one line per transition.
//
//	[0a1b2c3d] |-->GET /orders
//	[0a1b2c3d] |   |-->service.(*Orders).Create
//	[0a1b2c3d] |   |   |-->repo.(*Orders).Insert
//	[0a1b2c3d] |   |   |<--repo.(*Orders).Insert time=3ms
//	[0a1b2c3d] |   |<--service.(*Orders).Create time=4ms
//	[0a1b2c3d] |<--GET /orders time=5ms
//
// The trace identifier is resolved, in priority order, from a correlation
// identifier carried in the context (typically set by an upstream gateway and
// installed by [github.com/asyncsite/logtrace/logtracehttp.Middleware]), from
// an external [Source] of distributed trace identifiers, or from a freshly
// generated fallback.
//
// Call depth is context-scoped: concurrent request chains never observe each
// other's counters, and the tracer holds no shared mutable state of its own.
// All tracing-internal failures are defensive no-ops; instrumentation must
// never become the cause of an application failure. Argument and result
// payloads are rendered with [github.com/asyncsite/logtrace/safejson], which
// never fails and never returns an unbounded string.
//
// This package is best-effort, synchronous, in-process instrumentation. It
// does not sample, does not ship spans to a collector, and does not persist
// anything.
//
// Most applications can use [github.com/asyncsite/logtrace/eztrace], which
// wires a default tracer and interceptor from environment configuration.
package logtrace
