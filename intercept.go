package logtrace

import (
	"context"
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/asyncsite/logtrace/safejson"
)

// UnitFunc is the unit of work wrapped by an Interceptor. The unit's own
// outcome, value or error, always propagates unchanged to the caller.
type UnitFunc func(ctx context.Context) (any, error)

// Invocation describes one wrapped call.
type Invocation struct {
	// Signature describes the invocation, e.g. the result of FuncSignature
	// or "GET /orders" for an HTTP handler. It becomes the trace message.
	Signature string

	// Args are the invocation's inputs, rendered via safejson when payload
	// logging applies.
	Args []any

	// External marks the invocation as externally facing, e.g. an HTTP
	// handler. Payload logging applies only to external invocations.
	External bool
}

// Interceptor orchestrates a LogTracer around arbitrary invocations: begin,
// optionally log arguments, execute, optionally log the result, end — or, on
// failure, log the exception and re-propagate it identically. It never
// swallows or transforms the unit's outcome.
type Interceptor struct {
	tracer LogTracer
	logger *zap.Logger
	cfg    Config
}

// NewInterceptor returns an Interceptor dispatching to the given tracer per
// the given configuration. The logger carries the Request/Response payload
// lines; nil means payloads are dropped rather than logged.
func NewInterceptor(tracer LogTracer, logger *zap.Logger, cfg Config) *Interceptor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Interceptor{
		tracer: tracer,
		logger: logger,
		cfg:    cfg,
	}
}

// Around executes the unit of work bracketed by trace records. If tracing is
// disabled, or the signature is excluded by the package patterns, the unit
// runs untouched. A panic in the unit is recorded as an exception and then
// re-raised with the identical value.
func (in *Interceptor) Around(ctx context.Context, inv Invocation, unit UnitFunc) (any, error) {
	if unit == nil {
		return nil, nil
	}

	if in.tracer == nil || !in.Traced(inv.Signature) {
		return unit(ctx)
	}

	ctx, status := in.tracer.Begin(ctx, inv.Signature)

	logPayloads := in.cfg.LogRequestResponse && inv.External
	if logPayloads {
		in.logger.Info("Request: " + safejson.Array(inv.Args))
	}

	result, err := in.proceed(ctx, status, unit)
	if err != nil {
		if status != nil {
			in.tracer.Exception(ctx, nil, status, err)
		}
		return nil, err
	}

	if logPayloads {
		in.logger.Info("Response: " + safejson.String(result))
	}

	in.tracer.End(ctx, result, status)

	return result, nil
}

// proceed runs the unit, converting a panic into an exception record before
// re-raising the original panic value.
func (in *Interceptor) proceed(ctx context.Context, status *TraceStatus, unit UnitFunc) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			if status != nil {
				in.tracer.Exception(ctx, nil, status, fmt.Errorf("panic: %v", r))
			}
			panic(r)
		}
	}()

	return unit(ctx)
}

// Traced reports whether an invocation with the given signature would be
// wrapped: tracing enabled, and the signature matched by at least one package
// pattern (or no patterns configured).
func (in *Interceptor) Traced(signature string) bool {
	if !in.cfg.Enabled {
		return false
	}

	if len(in.cfg.Packages) == 0 {
		return true
	}

	for _, pattern := range in.cfg.Packages {
		if ok, err := doublestar.Match(pattern, signature); err == nil && ok {
			return true
		}
	}

	return false
}
