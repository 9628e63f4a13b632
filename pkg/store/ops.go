package store

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/lampe2020/l2db/pkg/codec"
	"github.com/lampe2020/l2db/pkg/value"
)

// Read returns the value stored under key. When vtype is non-empty the
// value is converted before it is returned; the stored entry is not
// modified (use Convert for a persistence-visible type change).
func (s *Store) Read(key string, vtype value.Type) (value.Value, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.mode.Has(ModeRead) {
		return value.Value{}, &ModeError{Msg: fmt.Sprintf("mode %q does not permit reading", s.mode)}
	}
	if s.flags.Locked() {
		s.diag(fmt.Sprintf("reading key '%s' from a locked database", escapeQuotes(key)))
	}
	if s.flags.Dirty() {
		s.diag(fmt.Sprintf("reading key '%s' from a dirty database", escapeQuotes(key)))
	}

	r, ok := s.recs[key]
	if !ok {
		return value.Value{}, &KeyError{Key: key}
	}
	if vtype == "" {
		return r.val, nil
	}
	out, err := value.Coerce(r.val, vtype)
	if err != nil {
		return value.Value{}, &TypeError{Key: key, Source: r.val.Type(), Target: vtype, Detail: err.Error()}
	}
	return out, nil
}

// Write stores or overwrites key with v and returns the value as stored.
// When vtype is non-empty v is converted to it first. Writing to an
// existing key of a different type tries to convert the value to the
// key's type; if that fails the key's type widens to the value's own
// type. Both outcomes are reported through the diagnostics sink.
func (s *Store) Write(key string, v value.Value, vtype value.Type) (value.Value, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.mode.Has(ModeWrite) {
		return value.Value{}, &ModeError{Msg: fmt.Sprintf("mode %q does not permit writing", s.mode)}
	}
	if s.flags.Dirty() {
		return value.Value{}, &DirtyError{}
	}
	if strings.IndexByte(key, 0x00) >= 0 {
		return value.Value{}, &codec.FormatError{Msg: fmt.Sprintf("key %q contains a null byte", key)}
	}
	if v.Type() == value.TypeInvalid {
		return value.Value{}, &TypeError{Key: key, Source: value.TypeInvalid, Target: vtype, Detail: "inv values cannot be stored"}
	}

	if vtype != "" {
		if vtype == value.TypeFixed {
			s.diag(fmt.Sprintf("key '%s': type fpn is not implemented, downgrading to flt", escapeQuotes(key)))
			vtype = value.TypeFloat
		}
		converted, err := value.Coerce(v, vtype)
		if err != nil {
			return value.Value{}, &TypeError{Key: key, Source: v.Type(), Target: vtype, Detail: err.Error()}
		}
		v = converted
	} else if old, exists := s.recs[key]; exists && !old.bad && old.val.Type() != v.Type() {
		if converted, err := value.Coerce(v, old.val.Type()); err == nil {
			s.diag(fmt.Sprintf("key '%s': implicitly converted value from %q to %q",
				escapeQuotes(key), v.Type(), old.val.Type()))
			v = converted
		} else {
			s.diag(fmt.Sprintf("key '%s': type changed from %q to %q",
				escapeQuotes(key), old.val.Type(), v.Type()))
		}
	}

	s.put(key, v)
	if err := s.syncFileMode(); err != nil {
		return value.Value{}, err
	}
	return v, nil
}

// Delete removes key and returns its former value.
func (s *Store) Delete(key string) (value.Value, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.mode.Has(ModeWrite) {
		return value.Value{}, &ModeError{Msg: fmt.Sprintf("mode %q does not permit deleting", s.mode)}
	}
	if s.flags.Dirty() {
		return value.Value{}, &DirtyError{}
	}
	r, ok := s.recs[key]
	if !ok {
		return value.Value{}, &KeyError{Key: key}
	}
	s.dropKey(key)
	if err := s.syncFileMode(); err != nil {
		return value.Value{}, err
	}
	return r.val, nil
}

// Convert changes the stored type of key in place and returns the new
// value. The change is persistence-visible: the next flush records the
// new type tag.
func (s *Store) Convert(key string, vtype value.Type) (value.Value, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.mode.Has(ModeWrite) {
		return value.Value{}, &ModeError{Msg: fmt.Sprintf("mode %q does not permit converting", s.mode)}
	}
	if s.flags.Dirty() {
		return value.Value{}, &DirtyError{}
	}
	r, ok := s.recs[key]
	if !ok {
		return value.Value{}, &KeyError{Key: key}
	}
	if vtype == value.TypeFixed {
		s.diag(fmt.Sprintf("key '%s': type fpn is not implemented, downgrading to flt", escapeQuotes(key)))
		vtype = value.TypeFloat
	}

	out, err := value.Coerce(r.val, vtype)
	if err != nil {
		return value.Value{}, &TypeError{Key: key, Source: r.val.Type(), Target: vtype, Detail: err.Error()}
	}
	if out.Type() != r.val.Type() {
		s.diag(fmt.Sprintf("key '%s': converted from %q to %q", escapeQuotes(key), r.val.Type(), out.Type()))
	}
	s.put(key, out)
	if err := s.syncFileMode(); err != nil {
		return value.Value{}, err
	}
	return out, nil
}

// ConvertValue converts a standalone value without touching the store.
// Conversion failures carry no key name.
func ConvertValue(v value.Value, vtype value.Type) (value.Value, error) {
	out, err := value.Coerce(v, vtype)
	if err != nil {
		return value.Value{}, &TypeError{Source: v.Type(), Target: vtype, Detail: err.Error()}
	}
	return out, nil
}

// Dump returns the full key/value set.
func (s *Store) Dump() (map[string]value.Value, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.mode.Has(ModeRead) {
		return nil, &ModeError{Msg: fmt.Sprintf("mode %q does not permit reading", s.mode)}
	}
	out := make(map[string]value.Value, len(s.recs))
	for k, r := range s.recs {
		out[k] = r.val
	}
	return out, nil
}

// DumpBin returns the exact byte sequence the store would write on
// flush: regenerated header, index and data region.
func (s *Store) DumpBin() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.encode()
}

// encode serializes the store. Callers hold the mutex.
func (s *Store) encode() ([]byte, error) {
	entries := make([]codec.Entry, 0, len(s.keys))
	var region []byte

	for _, k := range s.keys {
		r := s.recs[k]
		buf, err := r.val.Encode()
		if err != nil {
			return nil, &TypeError{Key: k, Source: r.val.Type(), Detail: err.Error()}
		}
		start := uint64(len(region))
		region = append(region, buf...)
		entries = append(entries, codec.Entry{
			Name:  k,
			Tag:   string(r.val.Type()),
			Start: start,
			End:   uint64(len(region)),
		})
	}

	if !s.flags.X64() && uint64(len(region)) > math.MaxUint32 {
		s.diag("data region exceeds the 32-bit index range; enabling 64-bit indexes")
		s.flags |= codec.FlagX64Indexes
	}

	index, err := codec.EncodeIndex(entries, s.flags.X64())
	if err != nil {
		return nil, err
	}

	h := codec.Header{
		Major:    s.version.Major,
		Minor:    s.version.Minor,
		Patch:    s.version.Patch,
		IndexLen: uint32(len(index)),
		Flags:    s.flags,
	}
	out := make([]byte, 0, codec.HeaderSize+len(index)+len(region))
	out = append(out, h.Encode()...)
	out = append(out, index...)
	out = append(out, region...)
	return out, nil
}

// syncFileMode persists the store after a mutation when running in file
// mode. A persistence failure marks the store dirty: the in-memory state
// and the backing file no longer agree.
func (s *Store) syncFileMode() error {
	if !s.mode.Has(ModeFile) {
		return nil
	}
	if err := s.flushLocked(""); err != nil {
		s.flags |= codec.FlagDirty
		s.diag(fmt.Sprintf("file-mode write failed, marking database dirty: %v", err))
		return err
	}
	return nil
}

// Flush persists the buffered state to the original source file.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked("")
}

// FlushTo persists the store to target. Under file mode the backing file
// already holds the current state, so this degenerates to a file copy;
// with move set the source file is renamed instead.
func (s *Store) FlushTo(target string, move bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if target == "" {
		return s.flushLocked("")
	}
	if s.mode.Has(ModeFile) && s.path != "" && s.file == nil {
		if move {
			if err := os.Rename(s.path, target); err != nil {
				return err
			}
			s.path = target
			return nil
		}
		return copyFile(s.path, target)
	}
	return s.flushLocked(target)
}

// flushLocked writes the serialized store. Callers hold the mutex.
func (s *Store) flushLocked(target string) error {
	data, err := s.encode()
	if err != nil {
		return err
	}

	if target != "" {
		return os.WriteFile(target, data, 0600)
	}
	if s.file != nil {
		if err := s.file.Truncate(0); err != nil {
			return err
		}
		if _, err := s.file.WriteAt(data, 0); err != nil {
			return err
		}
		return s.file.Sync()
	}
	if s.path != "" {
		return os.WriteFile(s.path, data, 0600)
	}
	return &NotFoundError{Msg: "No file specified"}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// SetLocked sets or clears the advisory LOCKED flag. The flag takes
// effect for subsequent opens; the current instance keeps its mode.
func (s *Store) SetLocked(locked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.mode.Has(ModeWrite) {
		return &ModeError{Msg: fmt.Sprintf("mode %q does not permit changing flags", s.mode)}
	}
	if locked {
		s.flags |= codec.FlagLocked
	} else {
		s.flags &^= codec.FlagLocked
	}
	return s.syncFileMode()
}

// Merge returns a fresh buffered store holding s's entries overlaid with
// other's.
func (s *Store) Merge(other *Store) (*Store, error) {
	out, err := New(Options{Mode: "rw", Diagnostics: s.diag})
	if err != nil {
		return nil, err
	}
	for _, src := range []*Store{s, other} {
		src.mu.Lock()
		for _, k := range src.keys {
			out.setRec(k, src.recs[k])
		}
		src.mu.Unlock()
	}
	return out, nil
}

// Without returns a fresh buffered store holding s's entries minus the
// given keys.
func (s *Store) Without(keys ...string) (*Store, error) {
	out, err := New(Options{Mode: "rw", Diagnostics: s.diag})
	if err != nil {
		return nil, err
	}
	drop := make(map[string]bool, len(keys))
	for _, k := range keys {
		drop[k] = true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range s.keys {
		if !drop[k] {
			out.setRec(k, s.recs[k])
		}
	}
	return out, nil
}

// Copy returns a deep copy of the store's current state as a buffered
// read-write store.
func (s *Store) Copy() (*Store, error) {
	data, err := s.DumpBin()
	if err != nil {
		return nil, err
	}
	return OpenBytes(data, Options{Mode: "rw", Diagnostics: s.diag})
}
