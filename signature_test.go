package logtrace_test

import (
	"context"
	"strings"
	"testing"

	"github.com/asyncsite/logtrace"
)

func workUnit(ctx context.Context) (any, error) { return nil, nil }

func TestFuncSignature(t *testing.T) {
	t.Parallel()

	sig := logtrace.FuncSignature(workUnit)
	if !strings.HasSuffix(sig, "logtrace_test.workUnit") {
		t.Errorf("signature: %q", sig)
	}

	for _, v := range []any{nil, 42, "fn", struct{}{}, (func())(nil)} {
		if want, have := "(unknown)", logtrace.FuncSignature(v); want != have {
			t.Errorf("FuncSignature(%v): want %q, have %q", v, want, have)
		}
	}
}

func TestCallerSignature(t *testing.T) {
	t.Parallel()

	sig := logtrace.CallerSignature(0)
	if !strings.Contains(sig, "TestCallerSignature") {
		t.Errorf("signature: %q", sig)
	}
}

func TestShortSignature(t *testing.T) {
	t.Parallel()

	for full, want := range map[string]string{
		"github.com/acme/billing/service.(*Orders).Create": "service.(*Orders).Create",
		"main.run":  "main.run",
		"":          "",
		"a/b/c.Do":  "c.Do",
		"(unknown)": "(unknown)",
	} {
		if have := logtrace.ShortSignature(full); want != have {
			t.Errorf("ShortSignature(%q): want %q, have %q", full, want, have)
		}
	}
}
