package logtrace

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/zoobzio/clockz"
	"go.uber.org/zap"
)

const (
	startMarker     = "-->"
	completeMarker  = "<--"
	exceptionMarker = "<X-"

	// Trace identifiers are truncated for display brevity: 8 characters is
	// enough to grep one request's lines apart from its neighbors'.
	shortIDLength = 8

	// Messages are capped before being stored in a TraceStatus, so a huge
	// description can't be replayed into every exit line.
	maxMessageLength = 2000
)

// TraceStatus is the record of one open call, created by Begin and consumed
// exactly once by the matching End or Exception. It captures the identity as
// of begin-time, before the depth increment.
type TraceStatus struct {
	TraceID TraceID
	Started time.Time
	Message string
}

// LogTracer opens and closes trace records around units of work, producing
// one indented log line per transition. Implementations must never fail:
// malformed input degrades to reduced-fidelity output, not errors.
//
// Typical usage, normally via an [Interceptor]:
//
//	ctx, status := tracer.Begin(ctx, "service.(*Orders).Create")
//	result, err := create(ctx, req)
//	if err != nil {
//		tracer.Exception(ctx, nil, status, err)
//		return nil, err
//	}
//	tracer.End(ctx, result, status)
//	return result, nil
type LogTracer interface {
	// Begin opens a trace record for the described unit of work, logging an
	// entry line at the current depth and incrementing the context's depth
	// counter. The returned context must be used for the wrapped work, and
	// passed to the matching End or Exception.
	Begin(ctx context.Context, message string) (context.Context, *TraceStatus)

	// End closes the record on success, logging an exit line with elapsed
	// time and decrementing the depth counter. The result is not logged
	// here; payload logging is the interceptor's concern.
	End(ctx context.Context, result any, status *TraceStatus)

	// Exception closes the record on failure, logging at most one exception
	// line per propagating failure, and decrements the depth like End.
	Exception(ctx context.Context, result any, status *TraceStatus, err error)
}

//
//
//

// Tracer is the default LogTracer. It resolves trace identifiers by priority:
// a correlation identifier in the context, then the configured Source, then a
// generated identifier cached for the life of the call chain. Lines are
// written at info level to the provided logger.
type Tracer struct {
	logger *zap.Logger
	source Source
	clock  clockz.Clock
}

var _ LogTracer = (*Tracer)(nil)

// TracerOption configures a Tracer.
type TracerOption func(*Tracer)

// WithSource sets the distributed trace identifier source.
func WithSource(src Source) TracerOption {
	return func(t *Tracer) { t.source = src }
}

// WithClock sets the clock used for start times and elapsed durations.
// Passing a fake clock makes timing deterministic in tests.
func WithClock(clock clockz.Clock) TracerOption {
	return func(t *Tracer) {
		if clock != nil {
			t.clock = clock
		}
	}
}

// NewTracer returns a Tracer writing to the provided logger. A nil logger is
// replaced with a no-op logger rather than rejected, since tracing must never
// fail its host.
func NewTracer(logger *zap.Logger, opts ...TracerOption) *Tracer {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Tracer{
		logger: logger,
		clock:  clockz.RealClock,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Begin implements LogTracer.
func (t *Tracer) Begin(ctx context.Context, message string) (context.Context, *TraceStatus) {
	sc, ok := scopeFromContext(ctx)
	if !ok {
		sc = &scope{}
		ctx = context.WithValue(ctx, scopeContextVal, sc)
	}

	// A new call starting means any previously recorded failure has been
	// handled; the next failure deserves its own line.
	sc.exceptionLogged = false

	id := t.resolveTraceID(ctx, sc)
	depth := sc.depth

	t.logger.Info(fmt.Sprintf("[%s] %s%s", id, indent(depth, startMarker), message))

	sc.depth = depth + 1

	return ctx, &TraceStatus{
		TraceID: TraceID{id: id, depth: depth},
		Started: t.clock.Now(),
		Message: limitMessage(message),
	}
}

// End implements LogTracer.
func (t *Tracer) End(ctx context.Context, result any, status *TraceStatus) {
	if status == nil {
		return
	}

	elapsed := t.clock.Now().Sub(status.Started)

	t.logger.Info(fmt.Sprintf("[%s] %s%s time=%dms",
		status.TraceID.ID(),
		indent(status.TraceID.Depth(), completeMarker),
		status.Message,
		elapsed.Milliseconds(),
	))

	t.release(ctx)
}

// Exception implements LogTracer.
func (t *Tracer) Exception(ctx context.Context, result any, status *TraceStatus, err error) {
	if status == nil {
		return
	}

	sc, _ := scopeFromContext(ctx)

	if sc == nil || !sc.exceptionLogged {
		elapsed := t.clock.Now().Sub(status.Started)

		t.logger.Info(fmt.Sprintf("[%s] %s%s time=%dms ex=%v",
			status.TraceID.ID(),
			indent(status.TraceID.Depth(), exceptionMarker),
			status.Message,
			elapsed.Milliseconds(),
			err,
		))

		if sc != nil {
			sc.exceptionLogged = true
		}
	}

	t.release(ctx)
}

// release decrements the context's depth counter, floored at zero. Context
// values can't be deleted, so "clearing" the scope at depth zero means
// resetting its state: in particular the exception-logged flag, which must
// not suppress lines of unrelated calls that later reuse the context.
func (t *Tracer) release(ctx context.Context) {
	sc, ok := scopeFromContext(ctx)
	if !ok {
		return
	}

	if sc.depth > 0 {
		sc.depth--
	}

	if sc.depth == 0 {
		sc.exceptionLogged = false
		sc.generatedID = ""
	}
}

func (t *Tracer) resolveTraceID(ctx context.Context, sc *scope) string {
	if id, ok := CorrelationID(ctx); ok {
		return shortID(id)
	}

	if t.source != nil {
		if id, ok := t.source.CurrentTraceID(ctx); ok && id != "" {
			return shortID(id)
		}
	}

	// Fallback: generate once per context, so nested calls correlate. UUIDs
	// rather than ULIDs here: a ULID prefix is timestamp-derived, and two
	// contexts started in the same millisecond must still get distinct ids.
	if sc.generatedID == "" {
		sc.generatedID = shortID(uuid.NewString())
	}
	return sc.generatedID
}

//
//
//

var traceIDEntropy = ulid.DefaultEntropy()

// newID returns a fresh ULID string, used for outbound span identifiers.
func newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now().UTC()), traceIDEntropy).String()
}

func shortID(id string) string {
	if len(id) > shortIDLength {
		return id[:shortIDLength]
	}
	return id
}

func limitMessage(message string) string {
	if len(message) > maxMessageLength {
		return message[:maxMessageLength]
	}
	return message
}

// indent renders the visual call hierarchy for the given depth: depth+1
// pipe-delimited segments, the last bearing the marker.
//
//	indent(0, "-->") == "|-->"
//	indent(1, "-->") == "|   |-->"
//	indent(2, "<X-") == "|   |   |<X-"
func indent(depth int, marker string) string {
	if depth < 0 {
		depth = 0
	}

	var sb strings.Builder
	for i := 0; i <= depth; i++ {
		if i == depth {
			sb.WriteString("|")
			sb.WriteString(marker)
		} else {
			sb.WriteString("|   ")
		}
	}
	return sb.String()
}
