package store

import "fmt"

// Mode is the combination of the three independent access-mode bits.
type Mode uint8

const (
	// ModeRead permits value retrieval.
	ModeRead Mode = 1 << iota
	// ModeWrite permits mutations. Without ModeRead the store still
	// does enough bookkeeping to locate entries, but Read and Dump fail.
	ModeWrite
	// ModeFile applies every mutation to the backing file immediately;
	// without it mutations are buffered until Flush.
	ModeFile
)

// ParseMode parses a mode string built from the letters r, w and f.
func ParseMode(s string) (Mode, error) {
	var m Mode
	for _, c := range s {
		var bit Mode
		switch c {
		case 'r':
			bit = ModeRead
		case 'w':
			bit = ModeWrite
		case 'f':
			bit = ModeFile
		default:
			return 0, &ModeError{Msg: fmt.Sprintf("unknown mode character %q (expected r, w or f)", c)}
		}
		if m&bit != 0 {
			return 0, &ModeError{Msg: fmt.Sprintf("duplicate mode character %q", c)}
		}
		m |= bit
	}
	return m, nil
}

// Has reports whether all the given bits are set.
func (m Mode) Has(bits Mode) bool { return m&bits == bits }

func (m Mode) String() string {
	out := make([]byte, 0, 3)
	if m.Has(ModeRead) {
		out = append(out, 'r')
	}
	if m.Has(ModeWrite) {
		out = append(out, 'w')
	}
	if m.Has(ModeFile) {
		out = append(out, 'f')
	}
	return string(out)
}
