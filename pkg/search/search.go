// Package search narrows the guide catalog, or a single guide's steps, by a
// free-text query.
//
// Matching is a case-insensitive substring test with no tokenization or
// ranking. A blank query returns the input unchanged. Results never reorder
// or renumber: a step keeps the 1-based number it has in the unfiltered guide.
package search

import (
	"strings"

	"github.com/vanderheijden86/devsetup/pkg/catalog"
	"github.com/vanderheijden86/devsetup/pkg/metrics"
)

// NumberedStep is a step paired with its position in the unfiltered guide.
type NumberedStep struct {
	Number int
	Step   catalog.Step
}

// Normalize lowercases q for matching. A query that is only whitespace
// normalizes to "", which matches everything.
func Normalize(q string) string {
	if strings.TrimSpace(q) == "" {
		return ""
	}
	return strings.ToLower(q)
}

// Blank reports whether q filters nothing.
func Blank(q string) bool {
	return Normalize(q) == ""
}

// Matches reports whether query is a case-insensitive substring of text.
func Matches(text, query string) bool {
	q := Normalize(query)
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(text), q)
}

// GuideMatches reports whether the query occurs in the guide's title,
// description, or any technology tag.
func GuideMatches(g catalog.Guide, query string) bool {
	q := Normalize(query)
	if q == "" {
		return true
	}
	if contains(g.Title, q) || contains(g.Description, q) {
		return true
	}
	for _, tech := range g.Technologies {
		if contains(tech, q) {
			return true
		}
	}
	return false
}

// StepMatches reports whether the query occurs in the step's title or description.
func StepMatches(s catalog.Step, query string) bool {
	q := Normalize(query)
	if q == "" {
		return true
	}
	return contains(s.Title, q) || contains(s.Description, q)
}

// Catalog filters categories to those with at least one matching guide,
// replacing each retained category's guide list with the matching subset.
// Category titles are never matched themselves.
func Catalog(categories []catalog.Category, query string) []catalog.Category {
	defer metrics.Timer(metrics.CatalogSearch)()
	q := Normalize(query)
	if q == "" {
		return categories
	}

	var out []catalog.Category
	for _, cat := range categories {
		var guides []catalog.Guide
		for _, g := range cat.Guides {
			if GuideMatches(g, q) {
				guides = append(guides, g)
			}
		}
		if len(guides) == 0 {
			continue
		}
		cat.Guides = guides
		out = append(out, cat)
	}
	return out
}

// Steps returns the steps matching query, each numbered by its position in
// the unfiltered sequence.
func Steps(steps []catalog.Step, query string) []NumberedStep {
	defer metrics.Timer(metrics.StepFilter)()
	q := Normalize(query)
	out := make([]NumberedStep, 0, len(steps))
	for i, s := range steps {
		if q == "" || StepMatches(s, q) {
			out = append(out, NumberedStep{Number: i + 1, Step: s})
		}
	}
	return out
}

// GuideCount returns the number of guides across categories.
func GuideCount(categories []catalog.Category) int {
	n := 0
	for _, cat := range categories {
		n += len(cat.Guides)
	}
	return n
}

func contains(text, lowered string) bool {
	return strings.Contains(strings.ToLower(text), lowered)
}
