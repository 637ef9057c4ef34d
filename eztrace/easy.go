// Package eztrace provides a package-global tracer and interceptor for
// common use cases, configured lazily from LOGTRACE_* environment variables
// on first use. Applications that need more than one tracer, or explicit
// wiring, should use package logtrace directly.
package eztrace

import (
	"context"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/asyncsite/logtrace"
	"github.com/asyncsite/logtrace/internal/logz"
	"github.com/asyncsite/logtrace/logtracehttp"
)

var (
	mtx         sync.Mutex
	tracer      logtrace.LogTracer
	interceptor *logtrace.Interceptor
)

// Configure replaces the global tracer and interceptor. A nil logger gets the
// default console logger. Calling Configure is optional: without it, the
// first use configures itself from the environment.
func Configure(cfg logtrace.Config, logger *zap.Logger, opts ...logtrace.TracerOption) {
	mtx.Lock()
	defer mtx.Unlock()

	if logger == nil {
		logger = logz.NewDefault()
	}

	tracer = logtrace.NewTracer(logger, opts...)
	interceptor = logtrace.NewInterceptor(tracer, logger, cfg)
}

func defaultLocked() *logtrace.Interceptor {
	if interceptor == nil {
		cfg, err := logtrace.ConfigFromEnv()
		if err != nil {
			cfg = logtrace.DefaultConfig()
		}
		logger := logz.NewDefault()
		tracer = logtrace.NewTracer(logger)
		interceptor = logtrace.NewInterceptor(tracer, logger, cfg)
	}
	return interceptor
}

// Interceptor returns the global interceptor, configuring defaults on first
// use.
func Interceptor() *logtrace.Interceptor {
	mtx.Lock()
	defer mtx.Unlock()
	return defaultLocked()
}

// Tracer returns the global tracer, configuring defaults on first use.
func Tracer() logtrace.LogTracer {
	mtx.Lock()
	defer mtx.Unlock()
	defaultLocked()
	return tracer
}

// Around executes the unit of work through the global interceptor.
func Around(ctx context.Context, inv logtrace.Invocation, unit logtrace.UnitFunc) (any, error) {
	return Interceptor().Around(ctx, inv, unit)
}

// Begin opens a trace record via the global tracer.
func Begin(ctx context.Context, message string) (context.Context, *logtrace.TraceStatus) {
	return Tracer().Begin(ctx, message)
}

// End closes a trace record via the global tracer.
func End(ctx context.Context, result any, status *logtrace.TraceStatus) {
	Tracer().End(ctx, result, status)
}

// Exception closes a trace record on failure via the global tracer.
func Exception(ctx context.Context, result any, status *logtrace.TraceStatus, err error) {
	Tracer().Exception(ctx, result, status, err)
}

// Middleware returns an HTTP middleware bound to the global interceptor.
func Middleware(opts ...logtracehttp.MiddlewareOption) func(http.Handler) http.Handler {
	return logtracehttp.Middleware(Interceptor(), opts...)
}

// Client returns an HTTP client that propagates trace headers downstream.
func Client(next http.RoundTripper) *http.Client {
	return logtracehttp.NewClient(nil, next)
}
