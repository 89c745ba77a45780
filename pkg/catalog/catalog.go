// Package catalog holds the read-only collection of setup guides: categories,
// the guides they group, and each guide's ordered steps.
//
// A Catalog is built once, validated, and never mutated afterwards. The
// featured-guides list is projected at construction time.
package catalog

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidCatalog wraps every validation failure returned by New and the loaders.
	ErrInvalidCatalog = errors.New("invalid catalog")
	// ErrGuideNotFound is returned by lookups for unknown guide ids or routes.
	ErrGuideNotFound = errors.New("guide not found")
)

// Catalog is an immutable, validated set of categories and guides.
type Catalog struct {
	categories []Category
	featured   []Guide
	byID       map[string]*Guide
	byRoute    map[string]*Guide
}

// New validates categories and builds a Catalog from them. All problems are
// reported together, wrapped in ErrInvalidCatalog.
func New(categories []Category) (*Catalog, error) {
	if err := Validate(categories); err != nil {
		return nil, err
	}

	c := &Catalog{
		categories: categories,
		byID:       make(map[string]*Guide),
		byRoute:    make(map[string]*Guide),
	}
	for ci := range c.categories {
		guides := c.categories[ci].Guides
		for gi := range guides {
			g := &guides[gi]
			g.Route = normalizeRoute(g.Route)
			c.byID[g.ID] = g
			if g.Route != "" {
				c.byRoute[g.Route] = g
			}
			if g.Featured {
				c.featured = append(c.featured, *g)
			}
		}
	}
	return c, nil
}

// Validate checks required fields, id uniqueness, and that every guide's
// category field names the category that contains it.
func Validate(categories []Category) error {
	var problems []error
	report := func(format string, args ...any) {
		problems = append(problems, fmt.Errorf(format, args...))
	}

	categoryIDs := make(map[string]bool)
	guideIDs := make(map[string]string)
	routes := make(map[string]string)

	for ci, cat := range categories {
		if cat.ID == "" {
			report("category #%d: missing id", ci+1)
		} else if categoryIDs[cat.ID] {
			report("category %q: duplicate id", cat.ID)
		}
		categoryIDs[cat.ID] = true
		if cat.Title == "" {
			report("category %q: missing title", cat.ID)
		}

		for gi, g := range cat.Guides {
			name := g.ID
			if name == "" {
				name = fmt.Sprintf("%s#%d", cat.ID, gi+1)
				report("guide %s: missing id", name)
			} else if owner, dup := guideIDs[g.ID]; dup {
				report("guide %q: duplicate id (also in %q)", g.ID, owner)
			} else {
				guideIDs[g.ID] = cat.ID
			}
			if g.Title == "" {
				report("guide %q: missing title", name)
			}
			if g.Description == "" {
				report("guide %q: missing description", name)
			}
			if !g.Difficulty.Valid() {
				report("guide %q: difficulty %q is not one of %s, %s, %s",
					name, g.Difficulty, Beginner, Intermediate, Advanced)
			}
			if g.Category != cat.ID {
				report("guide %q: category %q does not match containing category %q", name, g.Category, cat.ID)
			}
			if g.Route != "" {
				route := normalizeRoute(g.Route)
				switch {
				case !strings.HasPrefix(route, "/"):
					report("guide %q: route %q must start with /", name, g.Route)
				case route == "/":
					report("guide %q: route / is reserved for home", name)
				default:
					if other, dup := routes[route]; dup {
						report("guide %q: route %q already used by %q", name, route, other)
					}
					routes[route] = name
				}
			}
			problems = append(problems, validateSteps(name, g.Steps)...)
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidCatalog, errors.Join(problems...))
}

func validateSteps(guide string, steps []Step) []error {
	var problems []error
	seen := make(map[string]bool, len(steps))
	for i, s := range steps {
		label := s.ID
		if label == "" {
			label = fmt.Sprintf("#%d", i+1)
			problems = append(problems, fmt.Errorf("guide %q step %s: missing id", guide, label))
		} else if seen[s.ID] {
			problems = append(problems, fmt.Errorf("guide %q step %q: duplicate id", guide, s.ID))
		}
		seen[s.ID] = true
		if s.Title == "" {
			problems = append(problems, fmt.Errorf("guide %q step %s: missing title", guide, label))
		}
		if s.Code == "" {
			problems = append(problems, fmt.Errorf("guide %q step %s: missing code", guide, label))
		}
		if s.AdditionalCode != nil && s.AdditionalCode.Code == "" {
			problems = append(problems, fmt.Errorf("guide %q step %s: additional code is empty", guide, label))
		}
	}
	return problems
}

// Categories returns every category in catalog order. The returned slice and
// the guides it references must not be modified.
func (c *Catalog) Categories() []Category {
	return c.categories
}

// Featured returns the guides flagged featured, flattened across categories
// in catalog order.
func (c *Catalog) Featured() []Guide {
	return c.featured
}

// Guide returns the guide with the given id.
func (c *Catalog) Guide(id string) (*Guide, error) {
	g, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrGuideNotFound, id)
	}
	return g, nil
}

// GuideByRoute returns the guide addressed by path, e.g. "/mqtt-guide".
func (c *Catalog) GuideByRoute(path string) (*Guide, error) {
	g, ok := c.byRoute[normalizeRoute(path)]
	if !ok {
		return nil, fmt.Errorf("%w: route %q", ErrGuideNotFound, path)
	}
	return g, nil
}

// Category returns the category with the given id, or nil.
func (c *Catalog) Category(id string) *Category {
	for i := range c.categories {
		if c.categories[i].ID == id {
			return &c.categories[i]
		}
	}
	return nil
}

// Guides returns every guide flattened across categories in catalog order.
func (c *Catalog) Guides() []Guide {
	var all []Guide
	for _, cat := range c.categories {
		all = append(all, cat.Guides...)
	}
	return all
}
