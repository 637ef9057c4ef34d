package logtrace

import (
	"reflect"
	"runtime"
	"strings"
)

const unknownSignature = "(unknown)"

// FuncSignature derives a signature for the provided function value, e.g.
// "github.com/acme/billing/service.(*Orders).Create". Method values carry a
// "-fm" suffix in the runtime, which is trimmed. Anything that isn't a
// non-nil function yields "(unknown)" rather than an error.
func FuncSignature(fn any) string {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func || v.IsNil() {
		return unknownSignature
	}

	f := runtime.FuncForPC(v.Pointer())
	if f == nil {
		return unknownSignature
	}

	return strings.TrimSuffix(f.Name(), "-fm")
}

// CallerSignature returns the signature of the calling function. skip counts
// additional stack frames to ascend, as in [runtime.Caller]: 0 means the
// immediate caller of CallerSignature.
func CallerSignature(skip int) string {
	pc, _, _, ok := runtime.Caller(skip + 1)
	if !ok {
		return unknownSignature
	}

	f := runtime.FuncForPC(pc)
	if f == nil {
		return unknownSignature
	}

	return f.Name()
}

// ShortSignature trims a signature's package path to its final element, e.g.
// "github.com/acme/billing/service.(*Orders).Create" becomes
// "service.(*Orders).Create".
func ShortSignature(sig string) string {
	if i := strings.LastIndex(sig, "/"); i >= 0 {
		return sig[i+1:]
	}
	return sig
}
