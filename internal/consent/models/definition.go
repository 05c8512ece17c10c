package models

import id "stacia/pkg/domain"

// Definition describes one consent category as presented for a business.
// Values are immutable once resolved; the catalog hands out copies.
type Definition struct {
	Key         id.ConsentCategoryKey `json:"key"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Detail      string                `json:"detail"`
	Required    bool                  `json:"required"`
}
