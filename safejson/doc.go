// Package safejson renders arbitrary values into bounded-length, log-safe
// text. It never fails and never returns an empty result: every attempt in
// its fallback chain is independently guarded, so a panicking String method,
// a self-referential structure, or an unrenderable resource degrades the
// output instead of propagating an error into the caller's logging path.
//
// The fallback chain, first success wins:
//
//  1. structured JSON of the value's fields, via a depth-bounded reflective
//     walk that cuts cycles, includes unexported fields, and consults the
//     registered [Codec]s for type-specific renderings
//  2. the value's default textual form, prefixed with "[toString] "
//  3. "{TypeName}@{identityHash}"
//  4. the literal "[LOGGING_FAILED]"
//
// Output is truncated to a maximum length, with the tail replaced by a
// "...[TRUNCATED]" marker sized so the total never exceeds the limit.
package safejson
