package store

import (
	"fmt"
	"strings"

	"github.com/lampe2020/l2db/pkg/value"
)

// Version is a spec version triple as recorded in the file header.
type Version struct {
	Major uint16
	Minor uint16
	Patch uint16
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// ImplVersion is the spec version this implementation follows. Files
// carrying an older major version are migrated in place on open.
var ImplVersion = Version{Major: 2, Minor: 0, Patch: 0}

func escapeQuotes(s string) string {
	return strings.ReplaceAll(s, "'", `\'`)
}

// KeyError reports a lookup of a key that is not in the store.
type KeyError struct {
	Key string
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("Key '%s' could not be found", escapeQuotes(e.Key))
}

// TypeError reports a value conversion that cannot produce a valid value.
// Key is empty when a standalone value was converted.
type TypeError struct {
	Key    string
	Source value.Type
	Target value.Type
	Detail string
}

func (e *TypeError) Error() string {
	var msg string
	if e.Key != "" {
		msg = fmt.Sprintf("Could not convert '%s' to type '%s'", escapeQuotes(e.Key), e.Target)
	} else {
		msg = fmt.Sprintf("Could not convert value of type '%s' to type '%s'", e.Source, e.Target)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// ModeError reports an operation disallowed by the store's current mode
// or LOCKED state.
type ModeError struct {
	Msg string
}

func (e *ModeError) Error() string { return e.Msg }

// DirtyError reports a write attempted while the DIRTY flag is set.
type DirtyError struct{}

func (e *DirtyError) Error() string {
	return "database is marked dirty; writes are blocked until cleanup"
}

// NotFoundError reports a flush with no known target.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string { return e.Msg }

// VersionMismatchError reports a file whose spec version cannot be
// migrated to the implementation's.
type VersionMismatchError struct {
	File Version
	Impl Version
}

func (e *VersionMismatchError) Error() string {
	return fmt.Sprintf("The database follows the spec version %s but the implementation follows the spec version %s. Conversion failed.",
		e.File, e.Impl)
}
