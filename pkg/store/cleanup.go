package store

import (
	"fmt"

	"github.com/lampe2020/l2db/pkg/codec"
	"github.com/lampe2020/l2db/pkg/value"
)

// cleanupOrder is the fixed fallback sequence tried when an entry's
// bytes do not decode as the declared type. raw comes last because it
// always succeeds.
var cleanupOrder = []value.Type{
	value.TypeInt,
	value.TypeUint,
	value.TypeFloat,
	value.TypeBool,
	value.TypeString,
	value.TypeNull,
	value.TypeRaw,
}

// Cleanup runs the recovery pass and clears the DIRTY flag.
//
// With onlyFlag set it clears the flag without validating content; that
// is explicitly unsafe and may leave undetected corruption in place.
// Otherwise every entry whose bytes did not decode as the declared type
// is reinterpreted under the fixed fallback order (raw always succeeds),
// or discarded entirely when dontRescue is set. The header is regenerated
// afterward: fresh magic, current version, recomputed index length and
// flags.
//
// The returned map goes from diagnostic message to the corrective action
// taken. With the verbose runtime flag the report is also emitted
// through the diagnostics sink. Per-entry corruption is handled locally
// and reported, never raised.
func (s *Store) Cleanup(onlyFlag, dontRescue bool) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	report := make(map[string]string)

	if onlyFlag {
		if s.flags.Dirty() {
			report["dirty flag was set"] = "cleared without content validation"
		}
		s.flags &^= codec.FlagDirty
		s.emitReport(report)
		return report, nil
	}

	for _, k := range append([]string(nil), s.keys...) {
		r := s.recs[k]
		if !r.bad {
			continue
		}
		msg := fmt.Sprintf("entry '%s' did not decode as %q", escapeQuotes(k), r.declared)

		if dontRescue {
			s.dropKey(k)
			report[msg] = "discarded"
			continue
		}

		raw := r.val.Bytes()
		for _, t := range cleanupOrder {
			if t == r.declared {
				continue
			}
			if v, err := value.Decode(t, raw); err == nil {
				s.put(k, v)
				report[msg] = fmt.Sprintf("reinterpreted as %q", t)
				break
			}
		}
	}

	s.flags &^= codec.FlagDirty
	s.version = ImplVersion

	if s.mode.Has(ModeFile) {
		// Header regeneration reaches the backing file immediately in
		// file mode.
		if err := s.flushLocked(""); err != nil {
			return report, err
		}
	}

	s.emitReport(report)
	return report, nil
}

func (s *Store) emitReport(report map[string]string) {
	if !s.verbose {
		return
	}
	for msg, action := range report {
		s.diag(fmt.Sprintf("cleanup: %s: %s", msg, action))
	}
}
