package logtrace_test

import (
	"testing"

	"github.com/asyncsite/logtrace"
)

func TestTraceIDDerivation(t *testing.T) {
	t.Parallel()

	root := logtrace.NewTraceID("abc12345")

	if want, have := "abc12345", root.ID(); want != have {
		t.Errorf("ID: want %q, have %q", want, have)
	}
	if want, have := 0, root.Depth(); want != have {
		t.Errorf("Depth: want %d, have %d", want, have)
	}
	if !root.IsRoot() {
		t.Errorf("IsRoot: want true")
	}

	child := root.Child()
	if want, have := 1, child.Depth(); want != have {
		t.Errorf("Child Depth: want %d, have %d", want, have)
	}
	if want, have := "abc12345", child.ID(); want != have {
		t.Errorf("Child ID: want %q, have %q", want, have)
	}
	if child.IsRoot() {
		t.Errorf("child IsRoot: want false")
	}

	grandchild := child.Child()
	if want, have := 2, grandchild.Depth(); want != have {
		t.Errorf("grandchild Depth: want %d, have %d", want, have)
	}

	// Deriving never mutates the original.
	if want, have := 0, root.Depth(); want != have {
		t.Errorf("root Depth after derivation: want %d, have %d", want, have)
	}

	back := grandchild.Parent()
	if want, have := 1, back.Depth(); want != have {
		t.Errorf("Parent Depth: want %d, have %d", want, have)
	}
}

func TestTraceIDParentFloorsAtZero(t *testing.T) {
	t.Parallel()

	root := logtrace.NewTraceID("abc12345")

	p := root.Parent()
	if want, have := 0, p.Depth(); want != have {
		t.Errorf("Parent of root: want depth %d, have %d", want, have)
	}

	pp := p.Parent().Parent()
	if want, have := 0, pp.Depth(); want != have {
		t.Errorf("repeated Parent: want depth %d, have %d", want, have)
	}
	if want, have := "abc12345", pp.ID(); want != have {
		t.Errorf("repeated Parent ID: want %q, have %q", want, have)
	}
}
