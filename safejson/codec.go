package safejson

import (
	"database/sql/driver"
	"encoding"
	"fmt"
	"reflect"
	"sync"
	"time"
)

// Codec renders values of a declared type category into a JSON-encodable
// form. Codecs are consulted before the generic reflective walk, so a
// registered codec decides the rendering of every value whose type it claims.
// An Encode failure, error or panic, simply returns the value to the generic
// walk; a codec can degrade but never break serialization.
type Codec interface {
	// Applies reports whether the codec claims the given type.
	Applies(t reflect.Type) bool

	// Encode returns a JSON-encodable rendering of the value.
	Encode(v any) (any, error)
}

var registry struct {
	mtx    sync.RWMutex
	codecs []Codec
}

// Register adds a codec to the registry. Codecs are consulted in
// registration order, first claim wins. Built-in codecs for time values,
// errors, text marshalers, and driver.Valuer wrappers are registered at
// package initialization.
func Register(c Codec) {
	if c == nil {
		return
	}
	registry.mtx.Lock()
	defer registry.mtx.Unlock()
	registry.codecs = append(registry.codecs, c)
}

func codecFor(t reflect.Type) (Codec, bool) {
	registry.mtx.RLock()
	defer registry.mtx.RUnlock()
	for _, c := range registry.codecs {
		if c.Applies(t) {
			return c, true
		}
	}
	return nil, false
}

func encodeGuarded(c Codec, v any) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("codec panic: %v", r)
		}
	}()
	return c.Encode(v)
}

func init() {
	Register(timeCodec{})
	Register(valuerCodec{})
	Register(errorCodec{})
	Register(textCodec{})
}

//
//
//

var (
	timeType     = reflect.TypeOf(time.Time{})
	durationType = reflect.TypeOf(time.Duration(0))
	errorType    = reflect.TypeOf((*error)(nil)).Elem()
	valuerType   = reflect.TypeOf((*driver.Valuer)(nil)).Elem()
	textType     = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
)

// timeCodec renders time.Time as ISO-8601 text and time.Duration in its
// human form, rather than integer nanoseconds or a struct of opaque fields.
type timeCodec struct{}

func (timeCodec) Applies(t reflect.Type) bool {
	return t == timeType || t == durationType
}

func (timeCodec) Encode(v any) (any, error) {
	switch x := v.(type) {
	case time.Time:
		return x.Format(time.RFC3339Nano), nil
	case time.Duration:
		return x.String(), nil
	default:
		return nil, fmt.Errorf("unexpected type %T", v)
	}
}

// valuerCodec unwraps database/sql nullable wrappers (sql.NullString and
// friends, or any driver.Valuer) to their contained value, or null.
type valuerCodec struct{}

func (valuerCodec) Applies(t reflect.Type) bool {
	return t.Implements(valuerType)
}

func (valuerCodec) Encode(v any) (any, error) {
	val, err := v.(driver.Valuer).Value()
	if err != nil {
		return nil, err
	}
	switch x := val.(type) {
	case nil:
		return nil, nil
	case []byte:
		return string(x), nil
	case time.Time:
		return x.Format(time.RFC3339Nano), nil
	default:
		return x, nil
	}
}

// errorCodec renders errors by their message.
type errorCodec struct{}

func (errorCodec) Applies(t reflect.Type) bool {
	return t.Implements(errorType)
}

func (errorCodec) Encode(v any) (any, error) {
	err, ok := v.(error)
	if !ok || err == nil {
		return nil, fmt.Errorf("not an error: %T", v)
	}
	return err.Error(), nil
}

// textCodec renders anything that declares its own text form.
type textCodec struct{}

func (textCodec) Applies(t reflect.Type) bool {
	return t.Implements(textType)
}

func (textCodec) Encode(v any) (any, error) {
	b, err := v.(encoding.TextMarshaler).MarshalText()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
