package models

import (
	id "stacia/pkg/domain"
	dErrors "stacia/pkg/domain-errors"
)

// Ledger records the granted state of every consent category.
//
// Invariants:
//   - essential is always granted
//   - Toggle never mutates its input; callers persist the returned value
type Ledger map[id.ConsentCategoryKey]bool

// DefaultLedger is the state of a fresh session.
func DefaultLedger() Ledger {
	return Ledger{
		id.CategoryEssential:       true,
		id.CategoryAnalytics:       false,
		id.CategoryMarketing:       false,
		id.CategoryPersonalization: true,
		id.CategoryThirdParty:      false,
		id.CategoryLocation:        false,
		id.CategoryCommunication:   true,
		id.CategoryProfiling:       false,
	}
}

// Toggle flips key and reports whether anything changed. Essential is
// locked: the ledger comes back as-is with changed=false. Keys outside the
// fixed set are rejected with CodeInvalidKey.
func Toggle(ledger Ledger, key id.ConsentCategoryKey) (Ledger, bool, error) {
	if !key.IsValid() {
		return ledger, false, dErrors.New(dErrors.CodeInvalidKey, "unknown consent category: "+string(key))
	}
	if key.IsEssential() {
		return ledger, false, nil
	}
	next := ledger.Clone()
	next[key] = !ledger[key]
	next[id.CategoryEssential] = true
	return next, true, nil
}

// ActiveCount is the number of granted categories.
func ActiveCount(ledger Ledger) int {
	n := 0
	for _, granted := range ledger {
		if granted {
			n++
		}
	}
	return n
}

// Clone returns an independent copy.
func (l Ledger) Clone() Ledger {
	out := make(Ledger, len(l))
	for k, v := range l {
		out[k] = v
	}
	return out
}

// Granted reports the state of key; missing keys read as withdrawn.
func (l Ledger) Granted(key id.ConsentCategoryKey) bool {
	return l[key]
}
