package models

import (
	"net/url"
	"time"

	"github.com/dmitrijs2005/liftfield/internal/common"
)

// Known document categories. Free-form categories are allowed; these only
// get dedicated display titles.
const (
	CategoryUser         = "user"
	CategoryNormative    = "normative"
	CategoryInstructions = "instructions"
	CategorySchemes      = "schemes"
)

// Document is a reference to external reading material in the user's
// personal library. Wire field names match the remote collection schema.
type Document struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	URL      string    `json:"url"`
	Category string    `json:"category"`
	OwnerID  string    `json:"userId"`
	AddedAt  time.Time `json:"added"`
}

// Validate checks that the document carries a name and an absolute URL.
func (d *Document) Validate() error {
	if d.Name == "" || d.URL == "" {
		return common.ErrInvalidDocumentURL
	}
	u, err := url.Parse(d.URL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return common.ErrInvalidDocumentURL
	}
	return nil
}

// CategoryTitle returns the display title for a category key; unknown keys
// pass through unchanged.
func CategoryTitle(key string) string {
	switch key {
	case CategoryUser:
		return "My documents"
	case CategoryNormative:
		return "Normative documents"
	case CategoryInstructions:
		return "Instructions"
	case CategorySchemes:
		return "Schemes"
	default:
		return key
	}
}
