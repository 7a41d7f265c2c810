// Package domain defines the core types shared by the normalization engine,
// its ingestion sources and its renderers.
package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Kind identifies the scalar type held by a Value.
type Kind int

// Value kinds.
const (
	KindNull Kind = iota
	KindText
	KindInteger
	KindReal
	KindBoolean
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindText:
		return "text"
	case KindInteger:
		return "integer"
	case KindReal:
		return "real"
	case KindBoolean:
		return "boolean"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a typed cell scalar. The zero Value is null.
type Value struct {
	kind Kind
	s    string
	i    int64
	f    float64
	b    bool
}

// Null returns the null value.
func Null() Value { return Value{} }

// Text returns a text value.
func Text(s string) Value { return Value{kind: KindText, s: s} }

// Int returns an integer value.
func Int(i int64) Value { return Value{kind: KindInteger, i: i} }

// Real returns a real value.
func Real(f float64) Value { return Value{kind: KindReal, f: f} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBoolean, b: b} }

// FromAny converts a value scanned from a driver or decoded from a source
// file into a Value. Unknown types are kept as their fmt representation.
func FromAny(v any) Value {
	switch x := v.(type) {
	case nil:
		return Null()
	case Value:
		return x
	case string:
		return Text(x)
	case []byte:
		return Text(string(x))
	case bool:
		return Bool(x)
	case int:
		return Int(int64(x))
	case int8:
		return Int(int64(x))
	case int16:
		return Int(int64(x))
	case int32:
		return Int(int64(x))
	case int64:
		return Int(x)
	case uint8:
		return Int(int64(x))
	case uint16:
		return Int(int64(x))
	case uint32:
		return Int(int64(x))
	case uint64:
		if x > math.MaxInt64 {
			return Text(strconv.FormatUint(x, 10))
		}
		return Int(int64(x))
	case float32:
		return Real(float64(x))
	case float64:
		return Real(x)
	case time.Time:
		return Text(formatTime(x))
	case fmt.Stringer:
		return Text(x.String())
	default:
		return Text(fmt.Sprint(x))
	}
}

// Kind returns the value's kind.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsText returns the text payload and whether v is text.
func (v Value) AsText() (string, bool) { return v.s, v.kind == KindText }

// AsInt returns the integer payload and whether v is an integer.
func (v Value) AsInt() (int64, bool) { return v.i, v.kind == KindInteger }

// AsReal returns the real payload and whether v is real.
func (v Value) AsReal() (float64, bool) { return v.f, v.kind == KindReal }

// AsBool returns the boolean payload and whether v is a boolean.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBoolean }

// Any returns the payload as a plain Go value (nil for null).
func (v Value) Any() any {
	switch v.kind {
	case KindText:
		return v.s
	case KindInteger:
		return v.i
	case KindReal:
		return v.f
	case KindBoolean:
		return v.b
	default:
		return nil
	}
}

// Equal reports structural equality. Two nulls are equal; values of
// different kinds never are, so Int(500) != Real(500).
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindText:
		return v.s == o.s
	case KindInteger:
		return v.i == o.i
	case KindReal:
		return v.f == o.f || (math.IsNaN(v.f) && math.IsNaN(o.f))
	case KindBoolean:
		return v.b == o.b
	default:
		return true
	}
}

// Key returns an encoding of v that is equal for two values exactly when
// Equal reports true. Text is quoted, so concatenating keys can never make
// two distinct tuples collide.
func (v Value) Key() string {
	switch v.kind {
	case KindText:
		return "s" + strconv.Quote(v.s)
	case KindInteger:
		return "i" + strconv.FormatInt(v.i, 10)
	case KindReal:
		if math.IsNaN(v.f) {
			return "fNaN"
		}
		if v.f == 0 {
			return "f0"
		}
		return "f" + strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindBoolean:
		return "b" + strconv.FormatBool(v.b)
	default:
		return "n"
	}
}

// String renders the value for display.
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.s
	case KindInteger:
		return strconv.FormatInt(v.i, 10)
	case KindReal:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindBoolean:
		return strconv.FormatBool(v.b)
	default:
		return "NULL"
	}
}

// MarshalJSON encodes the payload as its natural JSON type.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindText:
		return json.Marshal(v.s)
	case KindInteger:
		return []byte(strconv.FormatInt(v.i, 10)), nil
	case KindReal:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return []byte("null"), nil
		}
		return []byte(strconv.FormatFloat(v.f, 'f', -1, 64)), nil
	case KindBoolean:
		return []byte(strconv.FormatBool(v.b)), nil
	default:
		return []byte("null"), nil
	}
}

// formatTime renders dates without a clock part the way spreadsheets display
// them, so downstream type inference sees ISO dates and timestamps.
func formatTime(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(time.DateOnly)
	}
	return t.Format("2006-01-02T15:04:05")
}
