package engine

import (
	"strings"

	"citypulse/internal/models"
)

// Criteria is the user-controlled predicate state for the ranked views.
// An empty category set matches nothing; an empty query disables the
// text filter. Location is nil until resolved.
type Criteria struct {
	Categories map[models.Category]struct{}
	Query      string
	Location   *models.LatLng
}

// DefaultCriteria selects every category, the state a fresh session
// starts in.
func DefaultCriteria() Criteria {
	cats := make(map[models.Category]struct{}, len(models.AllCategories))
	for _, c := range models.AllCategories {
		cats[c] = struct{}{}
	}
	return Criteria{Categories: cats}
}

// Clone returns an independent copy; callers must not observe later
// session mutations through a returned Criteria.
func (c Criteria) Clone() Criteria {
	out := Criteria{Query: c.Query}
	out.Categories = make(map[models.Category]struct{}, len(c.Categories))
	for cat := range c.Categories {
		out.Categories[cat] = struct{}{}
	}
	if c.Location != nil {
		loc := *c.Location
		out.Location = &loc
	}
	return out
}

// matches is the shared category/search predicate. The text filter is
// layered as an additional AND on top of the category filter; it never
// replaces it.
func (c Criteria) matches(e models.Event) bool {
	if _, ok := c.Categories[e.Category]; !ok {
		return false
	}
	if c.Query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(e.Title), strings.ToLower(c.Query))
}
