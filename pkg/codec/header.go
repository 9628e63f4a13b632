package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// HeaderSize is the fixed length of the file preamble.
const HeaderSize = 64

// Magic identifies an L2DB container. It is immutable and checked on
// every open.
var Magic = [8]byte{0x88, 'L', '2', 'D', 'B', 0x00, 0x00, 0x00}

// Flags is the single flag byte at offset 18.
//
// Only three bits are assigned; the remaining five (mask 0x7C) are
// reserved and must be zero. All three flags set yields 0x83.
type Flags uint8

const (
	FlagLocked     Flags = 0x01 // advisory: only read-mode file-backed opens permitted
	FlagDirty      Flags = 0x02 // unresolved structural error, writes blocked
	FlagX64Indexes Flags = 0x80 // index offsets are single u64 starts, ends derived

	flagsReserved Flags = 0x7C
)

// Locked reports whether the LOCKED bit is set.
func (f Flags) Locked() bool { return f&FlagLocked != 0 }

// Dirty reports whether the DIRTY bit is set.
func (f Flags) Dirty() bool { return f&FlagDirty != 0 }

// X64 reports whether the X64_INDEXES bit is set.
func (f Flags) X64() bool { return f&FlagX64Indexes != 0 }

// ReservedClear reports whether all reserved bits are zero.
func (f Flags) ReservedClear() bool { return f&flagsReserved == 0 }

// FormatError reports a structurally invalid container: wrong magic,
// truncated header or a malformed index run.
type FormatError struct {
	Msg string
}

func (e *FormatError) Error() string { return e.Msg }

// Header is the decoded 64-byte preamble.
type Header struct {
	Major    uint16
	Minor    uint16
	Patch    uint16
	IndexLen uint32
	Flags    Flags

	// CleanReserved records whether the reserved header bytes and the
	// reserved flag bits were all zero on decode. Informational; under
	// strict checking a false value marks the store dirty.
	CleanReserved bool
}

// DecodeHeader parses the fixed preamble. The input must be at least
// HeaderSize bytes; the first eight must match Magic.
func DecodeHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, &FormatError{Msg: fmt.Sprintf("header is %d bytes, need %d", len(data), HeaderSize)}
	}
	if !bytes.Equal(data[0:8], Magic[:]) {
		return Header{}, &FormatError{Msg: fmt.Sprintf("bad file magic % X (expected % X)", data[0:8], Magic)}
	}

	h := Header{
		Major:    binary.LittleEndian.Uint16(data[8:10]),
		Minor:    binary.LittleEndian.Uint16(data[10:12]),
		Patch:    binary.LittleEndian.Uint16(data[12:14]),
		IndexLen: binary.LittleEndian.Uint32(data[14:18]),
		Flags:    Flags(data[18]),
	}

	h.CleanReserved = h.Flags.ReservedClear()
	for _, b := range data[19:HeaderSize] {
		if b != 0 {
			h.CleanReserved = false
			break
		}
	}
	return h, nil
}

// Encode serializes the header to its fixed 64-byte form. The reserved
// region is zero-filled and reserved flag bits are stripped.
func (h Header) Encode() []byte {
	buf := make([]byte, HeaderSize)
	copy(buf[0:8], Magic[:])
	binary.LittleEndian.PutUint16(buf[8:10], h.Major)
	binary.LittleEndian.PutUint16(buf[10:12], h.Minor)
	binary.LittleEndian.PutUint16(buf[12:14], h.Patch)
	binary.LittleEndian.PutUint32(buf[14:18], h.IndexLen)
	buf[18] = byte(h.Flags &^ flagsReserved)
	return buf
}
