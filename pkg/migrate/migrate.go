// Package migrate moves data between L2DB containers and local pebble
// databases, for bulk loading and for handing datasets to tools that
// speak LSM storage rather than the container format.
package migrate

import (
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/lampe2020/l2db/pkg/store"
	"github.com/lampe2020/l2db/pkg/value"
)

// Pebble values carry a 3-byte type tag prefix so the L2DB type
// survives a round trip.
const tagLen = 3

// Export writes every entry of the store into the pebble database at
// path, creating it if needed. Returns the number of exported entries.
func Export(s *store.Store, path string) (int, error) {
	entries, err := s.Dump()
	if err != nil {
		return 0, err
	}

	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return 0, err
	}
	defer db.Close()

	batch := db.NewBatch()
	for key, v := range entries {
		data, err := v.Encode()
		if err != nil {
			return 0, fmt.Errorf("encoding %q: %w", key, err)
		}
		buf := make([]byte, 0, tagLen+len(data))
		buf = append(buf, v.Type()...)
		buf = append(buf, data...)
		if err := batch.Set([]byte(key), buf, nil); err != nil {
			return 0, err
		}
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return 0, err
	}
	return len(entries), nil
}

// Import reads every entry of the pebble database at path into the
// store, overwriting keys that already exist. Returns the number of
// imported entries.
func Import(s *store.Store, path string) (int, error) {
	db, err := pebble.Open(path, &pebble.Options{ReadOnly: true})
	if err != nil {
		return 0, err
	}
	defer db.Close()

	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return 0, err
	}
	defer iter.Close()

	count := 0
	for iter.First(); iter.Valid(); iter.Next() {
		key := string(iter.Key())
		raw := iter.Value()
		if len(raw) < tagLen {
			return count, fmt.Errorf("entry %q: value too short for type tag", key)
		}

		vtype := value.Type(raw[:tagLen])
		if !value.KnownType(vtype) {
			return count, fmt.Errorf("entry %q: unknown type tag %q", key, raw[:tagLen])
		}

		data := make([]byte, len(raw)-tagLen)
		copy(data, raw[tagLen:])
		v, err := value.Decode(vtype, data)
		if err != nil {
			return count, fmt.Errorf("entry %q: %w", key, err)
		}

		if _, err := s.Write(key, v, ""); err != nil {
			return count, err
		}
		count++
	}
	if err := iter.Error(); err != nil {
		return count, err
	}
	return count, nil
}
