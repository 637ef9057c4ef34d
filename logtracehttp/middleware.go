// Package logtracehttp connects HTTP servers and clients to the call trace:
// the server middleware adopts (or assigns) a correlation identifier and
// wraps each request as a traced, external-facing invocation, and the client
// transport propagates the identifiers to downstream services as B3 headers.
package logtracehttp

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/asyncsite/logtrace"
)

// SignatureFunc produces the trace message for a request.
type SignatureFunc func(*http.Request) string

// MiddlewareOption configures the middleware.
type MiddlewareOption func(*middlewareOptions)

type middlewareOptions struct {
	signature  SignatureFunc
	generateID bool
}

// WithSignature sets how requests are described in trace lines. The default
// is "METHOD /path".
func WithSignature(fn SignatureFunc) MiddlewareOption {
	return func(o *middlewareOptions) {
		if fn != nil {
			o.signature = fn
		}
	}
}

// WithGeneratedIDs controls whether requests arriving without a correlation
// header get a freshly generated identifier. Default true, so every request
// chain has a stable id to grep for.
func WithGeneratedIDs(generate bool) MiddlewareOption {
	return func(o *middlewareOptions) { o.generateID = generate }
}

// Middleware decorates an HTTP handler so that every request runs as a
// traced invocation. The correlation identifier is taken from the
// X-Correlation-Id header, then X-B3-TraceId, then generated. Request
// metadata and the response code are logged as the invocation's payloads,
// subject to the interceptor's policy; a 5xx response closes the record via
// the exception path. A panicking handler is recorded as an exception and
// then re-panics, leaving the server's own recovery behavior intact.
func Middleware(ic *logtrace.Interceptor, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	o := middlewareOptions{
		signature:  func(r *http.Request) string { return r.Method + " " + r.URL.Path },
		generateID: true,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			cid := correlationFromRequest(r)
			if cid == "" && o.generateID {
				cid = uuid.NewString()
			}
			if cid != "" {
				ctx = logtrace.WithCorrelationID(ctx, cid)
			}
			ctx = logtrace.WithScope(ctx)

			rec := newRecorder(w)

			inv := logtrace.Invocation{
				Signature: o.signature(r),
				Args:      []any{newRequestInfo(r)},
				External:  true,
			}

			//nolint:errcheck // the response is already written; the error
			// exists only to route the trace record through the exception
			// path.
			ic.Around(ctx, inv, func(ctx context.Context) (any, error) {
				next.ServeHTTP(rec, r.WithContext(ctx))

				if code := rec.Code(); code >= http.StatusInternalServerError {
					return nil, fmt.Errorf("HTTP %d", code)
				}

				return responseInfo{Code: rec.Code(), Bytes: rec.Written()}, nil
			})
		})
	}
}

func correlationFromRequest(r *http.Request) string {
	if id := r.Header.Get(logtrace.HeaderCorrelationID); id != "" {
		return id
	}
	return r.Header.Get(logtrace.HeaderTraceID)
}

//
//
//

// requestInfo is the request payload rendered into the "Request:" line.
type requestInfo struct {
	Method  string
	URL     string
	Remote  string
	Headers map[string]string
}

func newRequestInfo(r *http.Request) requestInfo {
	headers := map[string]string{}
	for _, name := range []string{"User-Agent", "Accept", "Content-Type"} {
		if val := r.Header.Get(name); val != "" {
			headers[name] = val
		}
	}
	return requestInfo{
		Method:  r.Method,
		URL:     r.URL.String(),
		Remote:  r.RemoteAddr,
		Headers: headers,
	}
}

// responseInfo is the invocation result rendered into the "Response:" line.
type responseInfo struct {
	Code  int
	Bytes int
}

//
//
//

// recorder captures the response code and size as they pass through to the
// underlying writer.
type recorder struct {
	http.ResponseWriter

	flush func()
	code  int
	n     int
}

func newRecorder(w http.ResponseWriter) *recorder {
	flush := func() {}
	if f, ok := w.(http.Flusher); ok {
		flush = f.Flush
	}
	return &recorder{ResponseWriter: w, flush: flush}
}

func (rec *recorder) WriteHeader(code int) {
	if rec.code == 0 {
		rec.code = code
	}
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *recorder) Write(p []byte) (int, error) {
	n, err := rec.ResponseWriter.Write(p)
	rec.n += n
	return n, err
}

func (rec *recorder) Code() int {
	if rec.code == 0 {
		return http.StatusOK
	}
	return rec.code
}

func (rec *recorder) Written() int {
	return rec.n
}

func (rec *recorder) Flush() {
	rec.flush()
}
