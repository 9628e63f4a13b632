// Package store implements the L2DB store: the in-memory key table, the
// mode and flag state machine, the record operations and the recovery
// pass. The on-disk container layout lives in pkg/codec, the value kinds
// and coercion rules in pkg/value.
package store

import (
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/lampe2020/l2db/pkg/codec"
	"github.com/lampe2020/l2db/pkg/value"
)

// Diagnostics receives human-readable diagnostic strings. Diagnostics
// are informational and never abort the operation that emits them.
type Diagnostics func(msg string)

func defaultDiagnostics(msg string) {
	log.Printf("l2db: %s", msg)
}

// Runtime flags accepted by Options.Flags.
const (
	// FlagVerbose makes Cleanup emit its report through the
	// diagnostics sink.
	FlagVerbose = "verbose"
	// FlagIgnoreCorrupted disables strict checking: non-zero reserved
	// header bytes or flag bits are reported but do not mark the store
	// dirty.
	FlagIgnoreCorrupted = "ignore-corrupted"
)

// Options configures a store at open time.
type Options struct {
	// Mode is a combination of the letters r, w and f. Empty means "rw".
	Mode string
	// Flags holds runtime flags; unknown ones are reported and ignored.
	Flags []string
	// Diagnostics receives diagnostic strings. Nil logs through the
	// standard logger.
	Diagnostics Diagnostics
}

// rec is one key's in-memory state. declared is the type recorded on
// disk; it differs from val's type when the stored bytes did not decode
// as declared, in which case bad is set, val holds the raw bytes and the
// store is dirty until Cleanup repairs or discards the entry.
type rec struct {
	val      value.Value
	declared value.Type
	bad      bool
}

// Store is an open L2DB instance. All methods are safe for use from
// multiple goroutines; at most one mutating operation is in flight at a
// time.
type Store struct {
	mu      sync.Mutex
	mode    Mode
	flags   codec.Flags
	version Version
	strict  bool
	verbose bool
	diag    Diagnostics

	path string   // backing file path, empty when none
	file *os.File // borrowed handle, nil unless opened from one

	keys []string
	recs map[string]rec
}

func newStore(opts Options) (*Store, error) {
	modeStr := opts.Mode
	if modeStr == "" {
		modeStr = "rw"
	}
	mode, err := ParseMode(modeStr)
	if err != nil {
		return nil, err
	}

	s := &Store{
		mode:    mode,
		version: ImplVersion,
		strict:  true,
		diag:    opts.Diagnostics,
		recs:    make(map[string]rec),
	}
	if s.diag == nil {
		s.diag = defaultDiagnostics
	}
	for _, f := range opts.Flags {
		switch f {
		case FlagVerbose:
			s.verbose = true
		case FlagIgnoreCorrupted:
			s.strict = false
		default:
			s.diag(fmt.Sprintf("unknown runtime flag %q ignored", f))
		}
	}
	return s, nil
}

// New creates an empty store with no backing file.
func New(opts Options) (*Store, error) {
	return newStore(opts)
}

// Open reads the container at path. A missing file is treated as a fresh
// empty database when the mode permits writing.
func Open(path string, opts Options) (*Store, error) {
	s, err := newStore(opts)
	if err != nil {
		return nil, err
	}
	s.path = path

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if !s.mode.Has(ModeWrite) {
			return nil, err
		}
		s.diag(fmt.Sprintf("creating new database at %q", path))
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	if err := s.load(data); err != nil {
		return nil, err
	}
	return s, nil
}

// OpenFile reads the container from an already-open file handle. The
// handle is borrowed: the caller keeps ownership and closes it. The
// handle's own access mode overrides the requested mode; a read-only
// handle downgrades a write request to read-only with a diagnostic.
func OpenFile(f *os.File, opts Options) (*Store, error) {
	s, err := newStore(opts)
	if err != nil {
		return nil, err
	}
	s.file = f
	s.path = f.Name()

	readable, writable := fileAccess(f)
	if !readable {
		return nil, &ModeError{Msg: "supplied file handle is not readable"}
	}
	if !writable && s.mode.Has(ModeWrite) {
		s.diag(fmt.Sprintf("file handle for %q is read-only; downgrading mode %q to read-only", f.Name(), s.mode))
		s.mode &^= ModeWrite
	}

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	data := make([]byte, stat.Size())
	if len(data) > 0 {
		if _, err := f.ReadAt(data, 0); err != nil {
			return nil, err
		}
	}
	if err := s.load(data); err != nil {
		return nil, err
	}
	return s, nil
}

// OpenBytes reads the container from a raw byte buffer.
func OpenBytes(data []byte, opts Options) (*Store, error) {
	s, err := newStore(opts)
	if err != nil {
		return nil, err
	}
	if err := s.load(data); err != nil {
		return nil, err
	}
	return s, nil
}

// OpenMap builds a store from a pre-built key/value mapping. Values are
// coerced into the type system where possible; entries that cannot be
// represented are discarded with a diagnostic.
func OpenMap(src map[string]any, opts Options) (*Store, error) {
	s, err := newStore(opts)
	if err != nil {
		return nil, err
	}

	// Stable insertion order so dumps and flushes are deterministic.
	names := make([]string, 0, len(src))
	for k := range src {
		names = append(names, k)
	}
	sort.Strings(names)

	for _, k := range names {
		if strings.IndexByte(k, 0x00) >= 0 {
			s.diag(fmt.Sprintf("discarding key '%s': names must not contain a null byte", escapeQuotes(k)))
			continue
		}
		v, err := value.FromAny(src[k])
		if err != nil {
			s.diag(fmt.Sprintf("discarding key '%s': %v", escapeQuotes(k), err))
			continue
		}
		s.put(k, v)
	}
	return s, nil
}

// load replaces the store's content with the decoded container. A store
// that already holds entries reports how much it discards.
func (s *Store) load(data []byte) error {
	if len(s.keys) > 0 {
		s.diag(fmt.Sprintf("discarding %d existing entries for new source", len(s.keys)))
	}
	s.keys = nil
	s.recs = make(map[string]rec)
	s.flags = 0

	// An empty source is a fresh database, not a corrupt one.
	if len(data) == 0 {
		return nil
	}

	h, err := codec.DecodeHeader(data)
	if err != nil {
		return err
	}

	fileVer := Version{Major: h.Major, Minor: h.Minor, Patch: h.Patch}
	if h.Major != 1 && h.Major != ImplVersion.Major {
		return &VersionMismatchError{File: fileVer, Impl: ImplVersion}
	}
	if fileVer != ImplVersion {
		s.diag(fmt.Sprintf("migrating database from spec version %s to %s", fileVer, ImplVersion))
	}
	s.version = ImplVersion

	s.flags = h.Flags
	if s.flags.Locked() {
		if s.mode != ModeRead|ModeFile || (s.path == "" && s.file == nil) {
			return &ModeError{Msg: fmt.Sprintf("database is locked; only mode \"rf\" on a file backing is permitted (requested %q)", s.mode)}
		}
	}
	if !h.CleanReserved {
		if s.strict {
			s.flags |= codec.FlagDirty
			s.diag("reserved header bytes are not zero; marking database dirty")
		} else {
			s.diag("reserved header bytes are not zero (ignored)")
		}
	}

	if codec.HeaderSize+int(h.IndexLen) > len(data) {
		return &codec.FormatError{Msg: fmt.Sprintf("index length %d exceeds file size %d", h.IndexLen, len(data))}
	}
	indexBytes := data[codec.HeaderSize : codec.HeaderSize+int(h.IndexLen)]
	region := data[codec.HeaderSize+int(h.IndexLen):]

	entries, err := codec.DecodeIndex(indexBytes, s.flags.X64(), uint64(len(region)))
	if err != nil {
		return err
	}

	for _, e := range entries {
		if _, dup := s.recs[e.Name]; dup {
			// First occurrence in stored index order wins.
			s.diag(fmt.Sprintf("duplicate key '%s' ignored", escapeQuotes(e.Name)))
			continue
		}

		t := value.Type(e.Tag)
		switch {
		case t == value.TypeFixed:
			s.diag(fmt.Sprintf("key '%s': type fpn is not implemented, downgrading to flt", escapeQuotes(e.Name)))
			t = value.TypeFloat
		case !value.KnownType(t) || t == value.TypeInvalid:
			s.diag(fmt.Sprintf("key '%s': unknown type tag %q, treating as raw", escapeQuotes(e.Name), e.Tag))
			t = value.TypeRaw
		}

		if e.Start > e.End || e.End > uint64(len(region)) {
			s.diag(fmt.Sprintf("key '%s': byte range [%d,%d) is outside the data region; marking database dirty",
				escapeQuotes(e.Name), e.Start, e.End))
			s.setRec(e.Name, rec{val: value.Raw(nil), declared: t, bad: true})
			s.flags |= codec.FlagDirty
			continue
		}

		raw := make([]byte, e.Len())
		copy(raw, region[e.Start:e.End])

		v, err := value.Decode(t, raw)
		if err != nil {
			s.diag(fmt.Sprintf("key '%s': bytes do not decode as %q (%v); marking database dirty",
				escapeQuotes(e.Name), t, err))
			s.setRec(e.Name, rec{val: value.Raw(raw), declared: t, bad: true})
			s.flags |= codec.FlagDirty
			continue
		}
		s.setRec(e.Name, rec{val: v, declared: t})
	}
	return nil
}

// setRec inserts or replaces a record, maintaining insertion order.
func (s *Store) setRec(key string, r rec) {
	if _, exists := s.recs[key]; !exists {
		s.keys = append(s.keys, key)
	}
	s.recs[key] = r
}

func (s *Store) put(key string, v value.Value) {
	s.setRec(key, rec{val: v, declared: v.Type()})
}

func (s *Store) dropKey(key string) {
	delete(s.recs, key)
	for i, k := range s.keys {
		if k == key {
			s.keys = append(s.keys[:i], s.keys[i+1:]...)
			break
		}
	}
}

// Mode returns the store's access mode.
func (s *Store) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Flags returns the current persisted flag byte.
func (s *Store) Flags() codec.Flags {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flags
}

// Len returns the number of keys in the store.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.keys)
}

// Contains reports whether key is present.
func (s *Store) Contains(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.recs[key]
	return ok
}

// Keys returns the key names in insertion order. This is bookkeeping,
// not value retrieval, so it works without read mode.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// Path returns the backing file path, or "" for buffer-backed stores.
func (s *Store) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path
}

// Info summarizes the store state for display and the REST surface.
type Info struct {
	Version string `json:"version"`
	Mode    string `json:"mode"`
	Path    string `json:"path,omitempty"`
	Keys    int    `json:"keys"`
	Locked  bool   `json:"locked"`
	Dirty   bool   `json:"dirty"`
	X64     bool   `json:"x64_indexes"`
}

// Stat returns a snapshot of the store state.
func (s *Store) Stat() Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Info{
		Version: s.version.String(),
		Mode:    s.mode.String(),
		Path:    s.path,
		Keys:    len(s.keys),
		Locked:  s.flags.Locked(),
		Dirty:   s.flags.Dirty(),
		X64:     s.flags.X64(),
	}
}
