package safejson

import (
	"fmt"
	"hash/fnv"
	"reflect"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
)

const (
	// DefaultMaxLength bounds the rendered output of String and Array.
	DefaultMaxLength = 10_000

	// maxDepth bounds the reflective walk; levels deeper than this render
	// as a marker instead of recursing.
	maxDepth = 10

	truncatedSuffix = "...[TRUNCATED]"
	failedMessage   = "[LOGGING_FAILED]"
	toStringPrefix  = "[toString] "
	cycleMarker     = "(cycle)"
	depthMarker     = "(max depth)"
)

// String renders the value with the default maximum length. It never fails
// and never returns an empty string; a nil input renders as "null".
func String(v any) string {
	return StringN(v, DefaultMaxLength)
}

// StringN renders the value, truncating the output to at most maxLength
// characters. Each level of the fallback chain is independently guarded: a
// failure at one level falls to the next, never to the caller.
func StringN(v any, maxLength int) string {
	if v == nil {
		return "null"
	}

	if s, ok := tryJSON(v); ok {
		return truncate(s, maxLength)
	}

	if s, ok := tryString(v); ok {
		return truncate(toStringPrefix+s, maxLength)
	}

	if s, ok := tryIdentity(v); ok {
		return truncate(s, maxLength)
	}

	return truncate(failedMessage, maxLength)
}

// Array renders a sequence of values as a bracketed, comma-joined list. A nil
// sequence renders as "null" and an empty one as "[]". Each element gets an
// equal share of the default length budget, and the joined result is
// truncated again as a whole.
func Array(vs []any) string {
	if vs == nil {
		return "null"
	}

	if len(vs) == 0 {
		return "[]"
	}

	budget := DefaultMaxLength / len(vs)

	var sb strings.Builder
	sb.WriteString("[")
	for i, v := range vs {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(StringN(v, budget))
	}
	sb.WriteString("]")

	return truncate(sb.String(), DefaultMaxLength)
}

//
//
//

// tryJSON is fallback level 1: sanitize the value into plain maps, slices,
// and scalars, then marshal. Sanitizing first is what makes cycles, private
// fields, and exotic types survivable; sonic only ever sees benign input,
// with the exception of non-finite floats, which it correctly rejects.
func tryJSON(v any) (s string, ok bool) {
	defer func() {
		if recover() != nil {
			s, ok = "", false
		}
	}()

	clean := sanitize(reflect.ValueOf(v), 0, map[uintptr]bool{})

	out, err := sonic.MarshalString(clean)
	if err != nil {
		return "", false
	}

	return out, true
}

// tryString is fallback level 2: the value's default textual form. A
// panicking String or Error method is recovered here.
func tryString(v any) (s string, ok bool) {
	defer func() {
		if recover() != nil {
			s, ok = "", false
		}
	}()

	switch x := v.(type) {
	case fmt.Stringer:
		return x.String(), true
	case error:
		return x.Error(), true
	default:
		return fmt.Sprintf("%+v", v), true
	}
}

// tryIdentity is fallback level 3: type name plus an identity hash, the
// pointer for reference kinds and a content hash otherwise.
func tryIdentity(v any) (s string, ok bool) {
	defer func() {
		if recover() != nil {
			s, ok = "", false
		}
	}()

	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return "", false
	}

	var id uint64
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		id = uint64(rv.Pointer())
	default:
		h := fnv.New32a()
		fmt.Fprintf(h, "%v", v)
		id = uint64(h.Sum32())
	}

	return fmt.Sprintf("%s@%x", rv.Type().String(), id), true
}

//
//
//

// sanitize converts an arbitrary reflect.Value into a tree of plain Go values
// that any JSON encoder can handle. Pointer, map, and slice identities are
// tracked in seen to cut cycles; entries are removed after descent so shared
// but acyclic substructures still render everywhere they appear. Unexported
// struct fields are walked structurally, which needs no Interface access.
func sanitize(v reflect.Value, depth int, seen map[uintptr]bool) any {
	if !v.IsValid() {
		return nil
	}

	if depth > maxDepth {
		return depthMarker
	}

	if v.CanInterface() {
		if c, ok := codecFor(v.Type()); ok {
			if out, err := encodeGuarded(c, v.Interface()); err == nil {
				return out
			}
		}
	}

	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return sanitize(v.Elem(), depth, seen)

	case reflect.Pointer:
		if v.IsNil() {
			return nil
		}
		addr := v.Pointer()
		if seen[addr] {
			return cycleMarker
		}
		seen[addr] = true
		defer delete(seen, addr)
		return sanitize(v.Elem(), depth+1, seen)

	case reflect.Struct:
		t := v.Type()
		out := make(map[string]any, v.NumField())
		for i := 0; i < v.NumField(); i++ {
			out[t.Field(i).Name] = sanitize(v.Field(i), depth+1, seen)
		}
		return out

	case reflect.Slice:
		if v.IsNil() {
			return nil
		}
		if v.Type().Elem().Kind() == reflect.Uint8 && v.CanInterface() {
			return string(v.Bytes())
		}
		addr := v.Pointer()
		if seen[addr] {
			return cycleMarker
		}
		seen[addr] = true
		defer delete(seen, addr)
		return sanitizeSequence(v, depth, seen)

	case reflect.Array:
		return sanitizeSequence(v, depth, seen)

	case reflect.Map:
		if v.IsNil() {
			return nil
		}
		addr := v.Pointer()
		if seen[addr] {
			return cycleMarker
		}
		seen[addr] = true
		defer delete(seen, addr)

		out := make(map[string]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			key := fmt.Sprintf("%v", sanitize(iter.Key(), depth+1, seen))
			out[key] = sanitize(iter.Value(), depth+1, seen)
		}
		return out

	case reflect.String:
		return v.String()
	case reflect.Bool:
		return v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint()
	case reflect.Float32, reflect.Float64:
		return v.Float()
	case reflect.Complex64, reflect.Complex128:
		return strconv.FormatComplex(v.Complex(), 'g', -1, 128)

	default:
		// chan, func, unsafe.Pointer: nothing meaningful to render beyond
		// the type.
		return v.Type().String()
	}
}

func sanitizeSequence(v reflect.Value, depth int, seen map[uintptr]bool) []any {
	out := make([]any, v.Len())
	for i := 0; i < v.Len(); i++ {
		out[i] = sanitize(v.Index(i), depth+1, seen)
	}
	return out
}

//
//
//

// truncate bounds s to maxLength characters, replacing the tail with the
// truncation marker. When the budget is too small to even fit the marker, the
// string is cut hard: the length bound wins over the marker.
func truncate(s string, maxLength int) string {
	if maxLength <= 0 {
		return ""
	}

	if len(s) <= maxLength {
		return s
	}

	if maxLength <= len(truncatedSuffix) {
		return s[:maxLength]
	}

	return s[:maxLength-len(truncatedSuffix)] + truncatedSuffix
}
