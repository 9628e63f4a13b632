// Package codec implements the L2DB container layout: the fixed 64-byte
// header and the variable-length index that together describe the data
// region.
//
// # File Layout
//
// All integers are little-endian.
//
//	[0:8]    magic, fixed 88 4C 32 44 42 00 00 00
//	[8:14]   version major, minor, patch (3 x u16)
//	[14:18]  index byte-length (u32)
//	[18]     flag byte
//	[19:64]  reserved, zero
//	[64:64+indexLen]  index entries
//	[64+indexLen:]    data region, concatenated value bytes
//
// # Flags
//
// The flag byte carries three assigned bits: LOCKED (0x01), DIRTY (0x02)
// and X64_INDEXES (0x80). The remaining five bits are reserved and must
// be zero; all three flags set gives 0x83.
//
// # Index Entries
//
// Each entry is [offsets][3-byte type tag][UTF-8 name][0x00]. The offset
// field is a u32 start/end pair when X64_INDEXES is clear, or a single
// u64 start when it is set. In the latter mode an entry's end is never
// stored: it is always derived from the next entry's start in stored
// order, or the data-region end for the last entry. Names must not
// contain a null byte; duplicate names are permitted on disk.
//
// DecodeHeader fails with *FormatError when the magic does not match,
// which is how a corrupted or foreign file is rejected on open. Whether
// the reserved regions were clean is recorded on the decoded Header so
// the store can apply its strict-mode dirty rule.
package codec
