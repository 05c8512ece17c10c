// Package catalog resolves the consent categories presented for a business.
//
// Resolution merges a fixed base set with a declarative table of per-business
// description overrides. It is pure and deterministic: every call returns
// fresh values, so callers cannot corrupt the catalog.
package catalog

import (
	"stacia/internal/consent/models"
	id "stacia/pkg/domain"
)

var base = map[id.ConsentCategoryKey]models.Definition{
	id.CategoryEssential: {
		Key:         id.CategoryEssential,
		Title:       "Essential Cookies",
		Description: "Required for basic website functionality and security",
		Detail:      "Session management, security, basic functionality",
		Required:    true,
	},
	id.CategoryAnalytics: {
		Key:         id.CategoryAnalytics,
		Title:       "Analytics & Performance",
		Description: "Help us understand how you use our services",
		Detail:      "Google Analytics, performance monitoring, usage statistics",
	},
	id.CategoryMarketing: {
		Key:         id.CategoryMarketing,
		Title:       "Marketing & Advertising",
		Description: "Personalized advertisements and marketing content",
		Detail:      "Ad targeting, campaign tracking, social media integration",
	},
	id.CategoryPersonalization: {
		Key:         id.CategoryPersonalization,
		Title:       "Personalization",
		Description: "Customize your experience based on your preferences",
		Detail:      "Content recommendations, UI preferences, saved settings",
	},
	id.CategoryThirdParty: {
		Key:         id.CategoryThirdParty,
		Title:       "Third-Party Services",
		Description: "Integration with external services and APIs",
		Detail:      "Social login, payment processing, external widgets",
	},
	id.CategoryLocation: {
		Key:         id.CategoryLocation,
		Title:       "Location Services",
		Description: "Access to your geographical location",
		Detail:      "GPS data, IP-based location, location-based services",
	},
	id.CategoryCommunication: {
		Key:         id.CategoryCommunication,
		Title:       "Communication",
		Description: "Email notifications and communication preferences",
		Detail:      "Email updates, SMS notifications, in-app messages",
	},
	id.CategoryProfiling: {
		Key:         id.CategoryProfiling,
		Title:       "User Profiling",
		Description: "Create profiles for personalized services",
		Detail:      "Behavioral analysis, preference modeling, demographic data",
	},
}

// overrides replaces descriptions only. Titles, details and required flags
// never vary by business.
var overrides = map[id.BusinessCategory]map[id.ConsentCategoryKey]string{
	id.BusinessBanking: {
		id.CategoryAnalytics: "Financial analytics and fraud detection",
		id.CategoryLocation:  "Branch locator and fraud prevention",
		id.CategoryProfiling: "Credit scoring and risk assessment",
	},
	id.BusinessHealthcare: {
		id.CategoryAnalytics:     "Medical analytics for improved patient care",
		id.CategoryCommunication: "Appointment reminders and health notifications",
		id.CategoryProfiling:     "Medical history and treatment personalization",
	},
	id.BusinessEcommerce: {
		id.CategoryMarketing:       "Product recommendations and promotional offers",
		id.CategoryPersonalization: "Shopping preferences and wishlists",
		id.CategoryLocation:        "Delivery tracking and local store finder",
	},
}

var labels = map[id.BusinessCategory]string{
	id.BusinessEcommerce:  "E-commerce",
	id.BusinessBanking:    "Banking & Financial",
	id.BusinessHealthcare: "Healthcare",
	id.BusinessEducation:  "Education",
	id.BusinessSaaS:       "SaaS & Technology",
	id.BusinessMedia:      "Media & Entertainment",
	id.BusinessRetail:     "Retail & Consumer",
	id.BusinessGovernment: "Government & Public",
}

// BusinessOption is one entry of the business selector.
type BusinessOption struct {
	Value id.BusinessCategory `json:"value"`
	Label string              `json:"label"`
}

// Resolve returns the definitions for business. An unselected business
// yields an empty mapping; a business without overrides (including one this
// catalog does not know) yields the base set.
func Resolve(business id.BusinessCategory) map[id.ConsentCategoryKey]models.Definition {
	out := make(map[id.ConsentCategoryKey]models.Definition, len(base))
	if !business.IsSelected() {
		return out
	}
	for key, def := range base {
		out[key] = def
	}
	for key, description := range overrides[business] {
		def := out[key]
		def.Description = description
		out[key] = def
	}
	return out
}

// ResolveOrdered is Resolve in canonical key order.
func ResolveOrdered(business id.BusinessCategory) []models.Definition {
	resolved := Resolve(business)
	out := make([]models.Definition, 0, len(resolved))
	for _, key := range id.ConsentCategoryKeys() {
		if def, ok := resolved[key]; ok {
			out = append(out, def)
		}
	}
	return out
}

// Title is the business-independent display title for key, or "" for
// unknown keys.
func Title(key id.ConsentCategoryKey) string {
	return base[key].Title
}

// Label is the display label for business, or "" when unknown or unselected.
func Label(business id.BusinessCategory) string {
	return labels[business]
}

// Businesses lists the selector options in declaration order.
func Businesses() []BusinessOption {
	categories := id.BusinessCategories()
	out := make([]BusinessOption, 0, len(categories))
	for _, b := range categories {
		out = append(out, BusinessOption{Value: b, Label: labels[b]})
	}
	return out
}
