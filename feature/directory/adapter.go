package directory

import (
	"profile-directory/feature/profile/models"
)

// Adapter reconciles profiles by document id and keeps the public ones.
type Adapter struct{}

// Key returns the document id.
func (Adapter) Key(p models.Profile) string { return p.ID }

// Visible reports whether the profile is public.
func (Adapter) Visible(p models.Profile) bool { return p.IsPublic }

// SearchFields returns the name and city, the fields the directory search matches.
func (Adapter) SearchFields(p models.Profile) []string { return []string{p.Name, p.City} }
