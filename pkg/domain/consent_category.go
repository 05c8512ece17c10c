package domain

import dErrors "stacia/pkg/domain-errors"

// ConsentCategoryKey identifies a class of data use a data principal can grant or
// withdraw. Invariant: the value is one of the eight supported keys.
//
// Usage: construct via ParseConsentCategoryKey at trust boundaries; direct casting
// bypasses validation.
type ConsentCategoryKey string

const (
	CategoryEssential       ConsentCategoryKey = "essential"
	CategoryAnalytics       ConsentCategoryKey = "analytics"
	CategoryMarketing       ConsentCategoryKey = "marketing"
	CategoryPersonalization ConsentCategoryKey = "personalization"
	CategoryThirdParty      ConsentCategoryKey = "thirdParty"
	CategoryLocation        ConsentCategoryKey = "location"
	CategoryCommunication   ConsentCategoryKey = "communication"
	CategoryProfiling       ConsentCategoryKey = "profiling"
)

// categoryKeys is the single source of truth for the key set and its display order.
var categoryKeys = []ConsentCategoryKey{
	CategoryEssential,
	CategoryAnalytics,
	CategoryMarketing,
	CategoryPersonalization,
	CategoryThirdParty,
	CategoryLocation,
	CategoryCommunication,
	CategoryProfiling,
}

// CategoryKeyCount is the size of the fixed key set.
const CategoryKeyCount = 8

// ConsentCategoryKeys returns the fixed key set in display order.
func ConsentCategoryKeys() []ConsentCategoryKey {
	return append([]ConsentCategoryKey(nil), categoryKeys...)
}

// ParseConsentCategoryKey constructs a key from external input.
//
// Errors: returns CodeInvalidKey when the value is empty or not in the fixed set.
func ParseConsentCategoryKey(s string) (ConsentCategoryKey, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidKey, "consent category cannot be empty")
	}
	k := ConsentCategoryKey(s)
	if !k.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidKey, "unknown consent category: "+s)
	}
	return k, nil
}

// IsValid checks membership in the fixed key set.
func (k ConsentCategoryKey) IsValid() bool {
	for _, known := range categoryKeys {
		if k == known {
			return true
		}
	}
	return false
}

// IsEssential reports whether k is the category that can never be withdrawn.
func (k ConsentCategoryKey) IsEssential() bool {
	return k == CategoryEssential
}

func (k ConsentCategoryKey) String() string {
	return string(k)
}
