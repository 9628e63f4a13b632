package value

import (
	"errors"
	"fmt"
	"math"
)

// ErrCoerce is wrapped by every conversion failure returned from Coerce.
var ErrCoerce = errors.New("cannot coerce value")

func coerceErr(from, to Type, detail string) error {
	if detail == "" {
		return fmt.Errorf("%w from %q to %q", ErrCoerce, from, to)
	}
	return fmt.Errorf("%w from %q to %q: %s", ErrCoerce, from, to, detail)
}

// Coerce converts v to the target type and returns the new value. It is
// pure: v is never modified and no diagnostics are emitted here; callers
// decide whether a successful conversion is worth reporting.
//
// The rules are deterministic:
//   - flt to a whole type truncates toward zero (1.999 -> 1, -3.7 -> -3).
//   - a whole type to flt yields the exact value with zero fraction.
//   - negative to uin drops the sign and keeps the magnitude (-3 -> 3).
//   - uin above the signed range saturates to the signed 64-bit maximum.
//   - 0/1 (or a single raw byte 0x00/0x01) to bol maps to false/true;
//     anything else fails.
//   - any type to raw yields the value's encoded bytes; raw to any type
//     re-decodes the bytes under the target's layout.
//   - nul converts only to raw; nothing non-null converts to nul.
//
// fpn targets are handled as flt.
func Coerce(v Value, target Type) (Value, error) {
	from := v.Type()
	if target == TypeFixed {
		target = TypeFloat
	}
	if from == TypeFixed {
		v = Float(v.f)
		from = TypeFloat
	}
	if from == target {
		return v, nil
	}
	if from == TypeInvalid || target == TypeInvalid {
		return Value{}, coerceErr(from, target, "inv is not storable")
	}
	if target == TypeRaw {
		buf, err := v.Encode()
		if err != nil {
			return Value{}, coerceErr(from, target, err.Error())
		}
		return Raw(buf), nil
	}
	if from == TypeRaw {
		out, err := Decode(target, v.buf)
		if err != nil {
			return Value{}, coerceErr(from, target, err.Error())
		}
		return out, nil
	}
	if from == TypeNull || target == TypeNull {
		return Value{}, coerceErr(from, target, "nul only converts to raw")
	}

	switch target {
	case TypeInt:
		return coerceToInt(v)
	case TypeUint:
		return coerceToUint(v)
	case TypeFloat:
		return coerceToFloat(v)
	case TypeBool:
		return coerceToBool(v)
	case TypeString:
		return Value{}, coerceErr(from, target, "no textual form defined")
	}
	return Value{}, coerceErr(from, target, "unknown target type")
}

func coerceToInt(v Value) (Value, error) {
	switch v.Type() {
	case TypeUint:
		if v.u > math.MaxInt64 {
			// Saturate to the signed maximum rather than wrap.
			return Int(math.MaxInt64), nil
		}
		return Int(int64(v.u)), nil
	case TypeFloat:
		return truncToInt(v.f, TypeInt)
	case TypeBool:
		if v.b {
			return Int(1), nil
		}
		return Int(0), nil
	}
	return Value{}, coerceErr(v.Type(), TypeInt, "")
}

func coerceToUint(v Value) (Value, error) {
	switch v.Type() {
	case TypeInt:
		if v.i < 0 {
			return Uint(uint64(-v.i)), nil
		}
		return Uint(uint64(v.i)), nil
	case TypeFloat:
		iv, err := truncToInt(v.f, TypeUint)
		if err != nil {
			return Value{}, err
		}
		return coerceToUint(iv)
	case TypeBool:
		if v.b {
			return Uint(1), nil
		}
		return Uint(0), nil
	}
	return Value{}, coerceErr(v.Type(), TypeUint, "")
}

func coerceToFloat(v Value) (Value, error) {
	switch v.Type() {
	case TypeInt:
		return Float(float64(v.i)), nil
	case TypeUint:
		return Float(float64(v.u)), nil
	case TypeBool:
		if v.b {
			return Float(1), nil
		}
		return Float(0), nil
	}
	return Value{}, coerceErr(v.Type(), TypeFloat, "")
}

func coerceToBool(v Value) (Value, error) {
	switch v.Type() {
	case TypeInt:
		if v.i == 0 || v.i == 1 {
			return Bool(v.i == 1), nil
		}
	case TypeUint:
		if v.u == 0 || v.u == 1 {
			return Bool(v.u == 1), nil
		}
	case TypeFloat:
		if v.f == 0 || v.f == 1 {
			return Bool(v.f == 1), nil
		}
	default:
		return Value{}, coerceErr(v.Type(), TypeBool, "")
	}
	return Value{}, coerceErr(v.Type(), TypeBool, "value is not 0 or 1")
}

// truncToInt discards the fractional part toward zero. Values beyond the
// signed range saturate, keeping the same policy as uin overflow.
func truncToInt(f float64, target Type) (Value, error) {
	if math.IsNaN(f) {
		return Value{}, coerceErr(TypeFloat, target, "NaN has no integer form")
	}
	if f >= math.MaxInt64 {
		return Int(math.MaxInt64), nil
	}
	if f <= math.MinInt64 {
		return Int(math.MinInt64), nil
	}
	return Int(int64(f)), nil
}
