package domain

import dErrors "stacia/pkg/domain-errors"

// BusinessCategory classifies the data fiduciary whose policies are shown.
// The zero value means no business has been selected yet.
type BusinessCategory string

const (
	BusinessUnselected BusinessCategory = ""
	BusinessEcommerce  BusinessCategory = "ecommerce"
	BusinessBanking    BusinessCategory = "banking"
	BusinessHealthcare BusinessCategory = "healthcare"
	BusinessEducation  BusinessCategory = "education"
	BusinessSaaS       BusinessCategory = "saas"
	BusinessMedia      BusinessCategory = "media"
	BusinessRetail     BusinessCategory = "retail"
	BusinessGovernment BusinessCategory = "government"
)

var businessCategories = []BusinessCategory{
	BusinessEcommerce,
	BusinessBanking,
	BusinessHealthcare,
	BusinessEducation,
	BusinessSaaS,
	BusinessMedia,
	BusinessRetail,
	BusinessGovernment,
}

// BusinessCategories returns the closed set of selectable businesses in display order.
func BusinessCategories() []BusinessCategory {
	return append([]BusinessCategory(nil), businessCategories...)
}

// ParseBusinessCategory accepts the empty string (unselected) or one of the
// known business categories.
//
// Errors: returns CodeInvalidInput for anything else.
func ParseBusinessCategory(s string) (BusinessCategory, error) {
	b := BusinessCategory(s)
	if b == BusinessUnselected || b.IsValid() {
		return b, nil
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "unknown business category: "+s)
}

// IsValid reports whether b is a known, selected business category.
func (b BusinessCategory) IsValid() bool {
	for _, known := range businessCategories {
		if b == known {
			return true
		}
	}
	return false
}

func (b BusinessCategory) IsSelected() bool {
	return b != BusinessUnselected
}

func (b BusinessCategory) String() string {
	return string(b)
}
