package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// Entry is one index record: a name and type tag mapped to a byte range
// in the data region. Start and End are relative to data-region byte 0;
// End is exclusive.
//
// In 64-bit mode only Start is stored on disk; End is derived at decode
// time from the next entry's start (in stored order) or the data-region
// end for the last entry. Reordering or resizing entries in that mode
// invalidates every derived end.
type Entry struct {
	Name  string
	Tag   string // 3-byte ASCII type tag; unknown tags are the caller's problem
	Start uint64
	End   uint64
}

// Len returns the byte length of the entry's data range.
func (e Entry) Len() uint64 {
	if e.End < e.Start {
		return 0
	}
	return e.End - e.Start
}

const (
	offsets32Size = 8 // start u32 + end u32
	offsets64Size = 8 // start u64, end derived
	tagSize       = 3 // ASCII type tag
)

// EncodedSize returns the serialized size of the entries.
func EncodedSize(entries []Entry, x64 bool) int {
	size := 0
	for _, e := range entries {
		size += offsets32Size + tagSize + len(e.Name) + 1
	}
	_ = x64 // both offset encodings happen to take 8 bytes per entry
	return size
}

// DecodeIndex parses a serialized index run of exactly len(data) bytes.
// dataSize is the length of the data region and supplies the derived end
// of the last entry in 64-bit mode.
func DecodeIndex(data []byte, x64 bool, dataSize uint64) ([]Entry, error) {
	var entries []Entry
	pos := 0
	for pos < len(data) {
		minLen := offsets32Size + tagSize + 1
		if len(data)-pos < minLen {
			return nil, &FormatError{Msg: fmt.Sprintf("truncated index entry at byte %d", pos)}
		}

		var e Entry
		if x64 {
			e.Start = binary.LittleEndian.Uint64(data[pos : pos+8])
		} else {
			e.Start = uint64(binary.LittleEndian.Uint32(data[pos : pos+4]))
			e.End = uint64(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		}
		pos += offsets32Size

		e.Tag = string(data[pos : pos+tagSize])
		pos += tagSize

		nul := bytes.IndexByte(data[pos:], 0x00)
		if nul < 0 {
			return nil, &FormatError{Msg: fmt.Sprintf("index entry at byte %d has no name terminator", pos)}
		}
		e.Name = string(data[pos : pos+nul])
		pos += nul + 1

		entries = append(entries, e)
	}

	if x64 {
		deriveEnds(entries, dataSize)
	}
	return entries, nil
}

// deriveEnds fills in the end offsets for 64-bit-mode entries: each
// entry ends where the next one starts, the last at the data-region end.
func deriveEnds(entries []Entry, dataSize uint64) {
	for i := range entries {
		if i+1 < len(entries) {
			entries[i].End = entries[i+1].Start
		} else {
			entries[i].End = dataSize
		}
	}
}

// EncodeIndex serializes entries in the given order. Names must not
// contain a null byte and tags must be exactly three bytes. In 32-bit
// mode any offset beyond the u32 range is an error; callers switch the
// store to 64-bit indexes before the data region grows that far.
func EncodeIndex(entries []Entry, x64 bool) ([]byte, error) {
	buf := make([]byte, 0, EncodedSize(entries, x64))
	var scratch [8]byte
	for _, e := range entries {
		if strings.IndexByte(e.Name, 0x00) >= 0 {
			return nil, &FormatError{Msg: fmt.Sprintf("entry name %q contains a null byte", e.Name)}
		}
		if len(e.Tag) != tagSize {
			return nil, &FormatError{Msg: fmt.Sprintf("entry %q has a %d-byte type tag, need %d", e.Name, len(e.Tag), tagSize)}
		}
		if x64 {
			binary.LittleEndian.PutUint64(scratch[:], e.Start)
			buf = append(buf, scratch[:8]...)
		} else {
			if e.Start > math.MaxUint32 || e.End > math.MaxUint32 {
				return nil, &FormatError{Msg: fmt.Sprintf("entry %q offsets exceed the 32-bit index range", e.Name)}
			}
			binary.LittleEndian.PutUint32(scratch[0:4], uint32(e.Start))
			binary.LittleEndian.PutUint32(scratch[4:8], uint32(e.End))
			buf = append(buf, scratch[:8]...)
		}
		buf = append(buf, e.Tag...)
		buf = append(buf, e.Name...)
		buf = append(buf, 0x00)
	}
	return buf, nil
}
