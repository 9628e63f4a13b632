//go:build fuzz
// +build fuzz

package codec

import (
	"testing"
)

// FuzzDecodeIndex feeds arbitrary bytes to the index decoder. The decoder
// must reject malformed runs with *FormatError and never panic.
func FuzzDecodeIndex(f *testing.F) {
	seed, _ := EncodeIndex([]Entry{
		{Name: "a", Tag: "int", Start: 0, End: 8},
		{Name: "b", Tag: "str", Start: 8, End: 13},
	}, false)
	f.Add(seed, false)
	f.Add(seed, true)
	f.Add([]byte{}, false)
	f.Add([]byte{0x00}, true)

	f.Fuzz(func(t *testing.T, data []byte, x64 bool) {
		if len(data) > 1<<16 {
			t.Skip("input too large")
		}
		entries, err := DecodeIndex(data, x64, uint64(len(data)))
		if err != nil {
			if _, ok := err.(*FormatError); !ok {
				t.Fatalf("decode error has type %T, want *FormatError", err)
			}
			return
		}

		// Whatever decoded must re-encode and decode to the same entries.
		encoded, err := EncodeIndex(entries, x64)
		if err != nil {
			t.Fatalf("re-encode of decoded entries failed: %v", err)
		}
		again, err := DecodeIndex(encoded, x64, uint64(len(data)))
		if err != nil {
			t.Fatalf("re-decode failed: %v", err)
		}
		if len(again) != len(entries) {
			t.Fatalf("entry count changed across round trip: %d != %d", len(again), len(entries))
		}
	})
}
