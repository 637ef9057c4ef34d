package logtrace

// TraceID is an immutable pair of a trace identifier and a call depth. The
// identifier is an opaque string which is stable for the life of one logical
// request; the depth is the nesting level of instrumented calls, used purely
// for visual indentation. TraceIDs are values: deriving a child or parent
// returns a new TraceID and never mutates the original.
type TraceID struct {
	id    string
	depth int
}

// NewTraceID returns a root TraceID, at depth zero, for the given identifier.
func NewTraceID(id string) TraceID {
	return TraceID{id: id}
}

// ID returns the trace identifier.
func (t TraceID) ID() string { return t.id }

// Depth returns the call nesting level, which is never negative.
func (t TraceID) Depth() int { return t.depth }

// Child returns a TraceID with the same identifier, one level deeper.
func (t TraceID) Child() TraceID {
	return TraceID{id: t.id, depth: t.depth + 1}
}

// Parent returns a TraceID with the same identifier, one level shallower,
// floored at zero.
func (t TraceID) Parent() TraceID {
	if t.depth <= 0 {
		return TraceID{id: t.id}
	}
	return TraceID{id: t.id, depth: t.depth - 1}
}

// IsRoot reports whether the TraceID is at depth zero.
func (t TraceID) IsRoot() bool { return t.depth == 0 }
