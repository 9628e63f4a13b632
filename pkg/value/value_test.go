package value

import (
	"bytes"
	"testing"
)

func TestValue_EncodeDecodeRoundTrip(t *testing.T) {
	testCases := []struct {
		name string
		val  Value
	}{
		{"positive int", Int(42)},
		{"negative int", Int(-1234567890123)},
		{"zero int", Int(0)},
		{"uint", Uint(18446744073709551615)},
		{"float", Float(3.14159)},
		{"negative float", Float(-0.5)},
		{"bool true", Bool(true)},
		{"bool false", Bool(false)},
		{"string", String("hello world")},
		{"unicode string", String("gruß aus lämpeland 🗺")},
		{"empty string", String("")},
		{"raw", Raw([]byte{0xDE, 0xAD, 0xBE, 0xEF})},
		{"raw with nulls", Raw([]byte{0x00, 0x00, 0x01})},
		{"null", Null()},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			encoded, err := tc.val.Encode()
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}

			decoded, err := Decode(tc.val.Type(), encoded)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}

			if !decoded.Equal(tc.val) {
				t.Errorf("round trip mismatch: got %v, want %v", decoded, tc.val)
			}
		})
	}
}

func TestValue_FixedWidthValidation(t *testing.T) {
	testCases := []struct {
		name string
		typ  Type
		data []byte
	}{
		{"int too short", TypeInt, []byte{1, 2, 3}},
		{"uint too long", TypeUint, bytes.Repeat([]byte{0}, 9)},
		{"float empty", TypeFloat, nil},
		{"bool two bytes", TypeBool, []byte{0, 0}},
		{"bool bad byte", TypeBool, []byte{0x02}},
		{"null nonzero", TypeNull, []byte{0x01}},
		{"null two bytes", TypeNull, []byte{0, 0}},
		{"string bad utf8", TypeString, []byte{0xFF, 0xFE}},
		{"invalid type", TypeInvalid, []byte{0}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Decode(tc.typ, tc.data); err == nil {
				t.Errorf("Decode(%q, %v) succeeded, want error", tc.typ, tc.data)
			}
		})
	}
}

func TestValue_RawAlwaysDecodes(t *testing.T) {
	for _, data := range [][]byte{nil, {}, {0xFF}, bytes.Repeat([]byte{0xAB}, 100)} {
		v, err := Decode(TypeRaw, data)
		if err != nil {
			t.Fatalf("Decode raw failed: %v", err)
		}
		if !bytes.Equal(v.Bytes(), data) {
			t.Errorf("raw payload mismatch: got %v, want %v", v.Bytes(), data)
		}
	}
}

func TestValue_ZeroValueIsInvalid(t *testing.T) {
	var v Value
	if v.Type() != TypeInvalid {
		t.Errorf("zero Value type: got %q, want %q", v.Type(), TypeInvalid)
	}
	if _, err := v.Encode(); err == nil {
		t.Error("encoding an inv value succeeded, want error")
	}
}

func TestFromAny(t *testing.T) {
	testCases := []struct {
		name string
		in   any
		want Value
	}{
		{"nil", nil, Null()},
		{"int", 42, Int(42)},
		{"int64", int64(-7), Int(-7)},
		{"uint32", uint32(9), Uint(9)},
		{"float64", 2.5, Float(2.5)},
		{"bool", true, Bool(true)},
		{"string", "hi", String("hi")},
		{"bytes", []byte{1, 2}, Raw([]byte{1, 2})},
		{"value passthrough", any(Int(3)), Int(3)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FromAny(tc.in)
			if err != nil {
				t.Fatalf("FromAny failed: %v", err)
			}
			if !got.Equal(tc.want) {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}

	if _, err := FromAny(struct{}{}); err == nil {
		t.Error("FromAny(struct{}{}) succeeded, want error")
	}
}
