// Package value implements the L2DB type system: the eight value kinds,
// their binary encodings, and the deterministic coercion rules between them.
package value

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"unicode/utf8"
)

// Type is the three-character ASCII type tag recorded in an index entry.
type Type string

// The eight value kinds. TypeFixed ("fpn") is a planned fixed-point type
// that currently downgrades to TypeFloat. TypeInvalid is diagnostic-only
// and never persisted.
const (
	TypeInt     Type = "int" // signed 64-bit integer
	TypeUint    Type = "uin" // unsigned 64-bit integer
	TypeFloat   Type = "flt" // IEEE-754 64-bit float
	TypeFixed   Type = "fpn" // fixed-point, alias of flt until a layout is defined
	TypeBool    Type = "bol" // single byte, 0x00 or 0x01
	TypeString  Type = "str" // UTF-8 bytes
	TypeRaw     Type = "raw" // opaque bytes
	TypeNull    Type = "nul" // exactly one zero byte
	TypeInvalid Type = "inv" // non-storable
)

// TagSize is the on-disk size of a type tag.
const TagSize = 3

// KnownType reports whether t is one of the eight defined tags.
func KnownType(t Type) bool {
	switch t {
	case TypeInt, TypeUint, TypeFloat, TypeFixed, TypeBool, TypeString, TypeRaw, TypeNull, TypeInvalid:
		return true
	}
	return false
}

// Value is a tagged union over the storable kinds. The zero Value has
// type TypeInvalid.
type Value struct {
	typ Type
	i   int64
	u   uint64
	f   float64
	b   bool
	buf []byte // payload for str and raw
}

// Int returns an int-typed value.
func Int(v int64) Value { return Value{typ: TypeInt, i: v} }

// Uint returns a uin-typed value.
func Uint(v uint64) Value { return Value{typ: TypeUint, u: v} }

// Float returns a flt-typed value.
func Float(v float64) Value { return Value{typ: TypeFloat, f: v} }

// Bool returns a bol-typed value.
func Bool(v bool) Value { return Value{typ: TypeBool, b: v} }

// String returns a str-typed value.
func String(s string) Value { return Value{typ: TypeString, buf: []byte(s)} }

// Raw returns a raw-typed value. The byte slice is not copied.
func Raw(b []byte) Value { return Value{typ: TypeRaw, buf: b} }

// Null returns the nul value.
func Null() Value { return Value{typ: TypeNull} }

// Type returns the value's kind.
func (v Value) Type() Type {
	if v.typ == "" {
		return TypeInvalid
	}
	return v.typ
}

// IsNull reports whether the value is nul.
func (v Value) IsNull() bool { return v.Type() == TypeNull }

// Int64 returns the numeric payload of an int value.
func (v Value) Int64() int64 { return v.i }

// Uint64 returns the numeric payload of a uin value.
func (v Value) Uint64() uint64 { return v.u }

// Float64 returns the numeric payload of a flt value.
func (v Value) Float64() float64 { return v.f }

// Truth returns the payload of a bol value.
func (v Value) Truth() bool { return v.b }

// Text returns the payload of a str value.
func (v Value) Text() string { return string(v.buf) }

// Bytes returns the payload of a str or raw value.
func (v Value) Bytes() []byte { return v.buf }

// Interface returns the value as a plain Go value, suitable for JSON
// encoding or printing. nul maps to nil.
func (v Value) Interface() any {
	switch v.Type() {
	case TypeInt:
		return v.i
	case TypeUint:
		return v.u
	case TypeFloat, TypeFixed:
		return v.f
	case TypeBool:
		return v.b
	case TypeString:
		return string(v.buf)
	case TypeRaw:
		return v.buf
	case TypeNull:
		return nil
	}
	return nil
}

// String implements fmt.Stringer.
func (v Value) String() string {
	switch v.Type() {
	case TypeRaw:
		return fmt.Sprintf("raw(%d bytes)", len(v.buf))
	case TypeNull:
		return "nul"
	case TypeInvalid:
		return "inv"
	}
	return fmt.Sprintf("%v", v.Interface())
}

// Equal reports whether two values have the same type and payload.
func (v Value) Equal(o Value) bool {
	if v.Type() != o.Type() {
		return false
	}
	switch v.Type() {
	case TypeInt:
		return v.i == o.i
	case TypeUint:
		return v.u == o.u
	case TypeFloat, TypeFixed:
		return v.f == o.f || (math.IsNaN(v.f) && math.IsNaN(o.f))
	case TypeBool:
		return v.b == o.b
	case TypeString, TypeRaw:
		return string(v.buf) == string(o.buf)
	}
	return true // nul, inv carry no payload
}

// FromAny builds a Value from a plain Go value. Unsupported kinds return
// an error so callers can decide between discarding and failing.
func FromAny(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null(), nil
	case Value:
		return x, nil
	case bool:
		return Bool(x), nil
	case int:
		return Int(int64(x)), nil
	case int8:
		return Int(int64(x)), nil
	case int16:
		return Int(int64(x)), nil
	case int32:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case uint:
		return Uint(uint64(x)), nil
	case uint8:
		return Uint(uint64(x)), nil
	case uint16:
		return Uint(uint64(x)), nil
	case uint32:
		return Uint(uint64(x)), nil
	case uint64:
		return Uint(x), nil
	case float32:
		return Float(float64(x)), nil
	case float64:
		return Float(x), nil
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return Int(i), nil
		}
		if u, err := strconv.ParseUint(x.String(), 10, 64); err == nil {
			return Uint(u), nil
		}
		f, err := x.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("unsupported number %q", x.String())
		}
		return Float(f), nil
	case string:
		return String(x), nil
	case []byte:
		return Raw(x), nil
	}
	return Value{}, fmt.Errorf("unsupported value kind %T", v)
}

// Encode serializes the value to its data-region byte form. All integers
// are little-endian. inv values cannot be encoded.
func (v Value) Encode() ([]byte, error) {
	switch v.Type() {
	case TypeInt:
		buf := make([]byte, 8)
		binary.LittleEndian.PutUint64(buf, uint64(v.i))
		return buf, nil
	case TypeUint:
		buf := make([]byte, 8)
		binary.LittleEndian.PutUint64(buf, v.u)
		return buf, nil
	case TypeFloat, TypeFixed:
		buf := make([]byte, 8)
		binary.LittleEndian.PutUint64(buf, math.Float64bits(v.f))
		return buf, nil
	case TypeBool:
		if v.b {
			return []byte{0x01}, nil
		}
		return []byte{0x00}, nil
	case TypeString, TypeRaw:
		return v.buf, nil
	case TypeNull:
		return []byte{0x00}, nil
	}
	return nil, fmt.Errorf("type %q cannot be encoded", v.Type())
}

// Decode interprets data as a value of type t. It validates the byte
// layout: fixed-width kinds must match exactly, bol must be 0x00 or 0x01,
// nul must be a single zero byte and str must be valid UTF-8. raw always
// succeeds.
func Decode(t Type, data []byte) (Value, error) {
	switch t {
	case TypeInt:
		if len(data) != 8 {
			return Value{}, fmt.Errorf("int needs 8 bytes, got %d", len(data))
		}
		return Int(int64(binary.LittleEndian.Uint64(data))), nil
	case TypeUint:
		if len(data) != 8 {
			return Value{}, fmt.Errorf("uin needs 8 bytes, got %d", len(data))
		}
		return Uint(binary.LittleEndian.Uint64(data)), nil
	case TypeFloat, TypeFixed:
		if len(data) != 8 {
			return Value{}, fmt.Errorf("flt needs 8 bytes, got %d", len(data))
		}
		return Float(math.Float64frombits(binary.LittleEndian.Uint64(data))), nil
	case TypeBool:
		if len(data) != 1 || data[0] > 1 {
			return Value{}, fmt.Errorf("bol needs a single 0x00 or 0x01 byte")
		}
		return Bool(data[0] == 1), nil
	case TypeString:
		if !utf8.Valid(data) {
			return Value{}, fmt.Errorf("str bytes are not valid UTF-8")
		}
		return String(string(data)), nil
	case TypeRaw:
		return Raw(data), nil
	case TypeNull:
		if len(data) != 1 || data[0] != 0 {
			return Value{}, fmt.Errorf("nul needs exactly one zero byte")
		}
		return Null(), nil
	case TypeInvalid:
		return Value{}, fmt.Errorf("type %q is not storable", t)
	}
	return Value{}, fmt.Errorf("unknown type tag %q", t)
}
