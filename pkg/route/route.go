// Package route maps navigation paths to views: "/" is home, each guide with
// content has a fixed path, and anything else is not found.
package route

import (
	"strings"

	"github.com/vanderheijden86/devsetup/pkg/catalog"
)

// Kind identifies which view a path resolves to.
type Kind int

const (
	Home Kind = iota
	Guide
	NotFound
)

func (k Kind) String() string {
	switch k {
	case Home:
		return "home"
	case Guide:
		return "guide"
	default:
		return "not-found"
	}
}

// HomePath is the path of the home view.
const HomePath = "/"

// View is a resolved navigation target.
type View struct {
	Kind  Kind
	Path  string
	Guide *catalog.Guide // set when Kind == Guide
}

// Resolve maps path to a view. Guides without a route are never reachable
// by path.
func Resolve(c *catalog.Catalog, path string) View {
	p := clean(path)
	if p == HomePath {
		return View{Kind: Home, Path: HomePath}
	}
	if g, err := c.GuideByRoute(p); err == nil && g.HasContent() {
		return View{Kind: Guide, Path: g.Route, Guide: g}
	}
	return View{Kind: NotFound, Path: p}
}

// Open resolves a guide selection. ok is false for a guide that is listed
// in the catalog but has no content yet.
func Open(c *catalog.Catalog, guideID string) (v View, ok bool) {
	g, err := c.Guide(guideID)
	if err != nil {
		return View{Kind: NotFound, Path: "/" + guideID}, false
	}
	if !g.HasContent() || g.Route == "" {
		return View{Kind: Home, Path: HomePath}, false
	}
	return View{Kind: Guide, Path: g.Route, Guide: g}, true
}

// ComingSoon is the transient message shown for a guide without content.
func ComingSoon(g *catalog.Guide) string {
	return g.ID + " guide coming soon!"
}

// Paths returns every navigable path: home followed by guide routes in
// catalog order.
func Paths(c *catalog.Catalog) []string {
	paths := []string{HomePath}
	for _, g := range c.Guides() {
		if g.Route != "" && g.HasContent() {
			paths = append(paths, g.Route)
		}
	}
	return paths
}

func clean(path string) string {
	p := strings.TrimSpace(path)
	if p == "" {
		return HomePath
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
		if p == "" {
			p = HomePath
		}
	}
	return p
}
