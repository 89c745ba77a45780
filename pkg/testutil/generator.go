// Package testutil provides catalog fixture generators and assertions.
// All generators produce deterministic output for reproducible tests.
package testutil

import (
	"fmt"
	"math/rand"

	"github.com/vanderheijden86/devsetup/pkg/catalog"
)

// GeneratorConfig controls catalog generation.
type GeneratorConfig struct {
	Seed              int64  // Random seed for determinism (0 = use a fixed seed)
	IDPrefix          string // Prefix for guide IDs (default: "guide")
	Categories        int    // Number of categories (default: 3)
	GuidesPerCategory int    // Guides per category (default: 4)
	StepsPerGuide     int    // Steps per guide with content (default: 5)
	ComingSoonEvery   int    // Every Nth guide has no steps (0 = never)
	FeaturedEvery     int    // Every Nth guide is featured (0 = never)
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:              42, // Deterministic
		IDPrefix:          "guide",
		Categories:        3,
		GuidesPerCategory: 4,
		StepsPerGuide:     5,
		ComingSoonEvery:   4,
		FeaturedEvery:     3,
	}
}

// Generator creates catalog fixtures.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	if cfg.Seed == 0 {
		cfg.Seed = 42
	}
	if cfg.IDPrefix == "" {
		cfg.IDPrefix = "guide"
	}
	if cfg.Categories <= 0 {
		cfg.Categories = 3
	}
	if cfg.GuidesPerCategory <= 0 {
		cfg.GuidesPerCategory = 4
	}
	if cfg.StepsPerGuide <= 0 {
		cfg.StepsPerGuide = 5
	}
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}
}

// NewDefault creates a Generator with default config.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

// ============================================================================
// Vocabulary
// ============================================================================

var (
	technologies = []string{"Nginx", "MySQL", "PHP", "Docker", "Redis", "MQTT", "TLS", "PostgreSQL", "Node.js", "Certbot"}
	verbs        = []string{"Install", "Configure", "Secure", "Test", "Tune", "Restart"}
	difficulties = []catalog.Difficulty{catalog.Beginner, catalog.Intermediate, catalog.Advanced}
	languages    = []string{"bash", "nginx", "sql", "ini"}
)

func (g *Generator) pick(from []string) string {
	return from[g.rng.Intn(len(from))]
}

func (g *Generator) pickTechnologies() []string {
	n := 1 + g.rng.Intn(3)
	seen := make(map[string]bool, n)
	var out []string
	for len(out) < n {
		t := g.pick(technologies)
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

// ============================================================================
// Catalog Generators
// ============================================================================

// GuideID returns the id of the guide at the given global index.
func (g *Generator) GuideID(index int) string {
	return fmt.Sprintf("%s-%d", g.cfg.IDPrefix, index)
}

// Categories builds a valid category tree. Guide i (0-based, across all
// categories) is "<prefix>-i" routed at "/<prefix>-i".
func (g *Generator) Categories() []catalog.Category {
	cats := make([]catalog.Category, 0, g.cfg.Categories)
	index := 0
	for c := range g.cfg.Categories {
		cat := catalog.Category{
			ID:          fmt.Sprintf("cat-%d", c),
			Title:       fmt.Sprintf("Category %d", c),
			Description: fmt.Sprintf("Generated category %d", c),
			Icon:        "Server",
		}
		for range g.cfg.GuidesPerCategory {
			cat.Guides = append(cat.Guides, g.guide(index, cat.ID))
			index++
		}
		cats = append(cats, cat)
	}
	return cats
}

func (g *Generator) guide(index int, categoryID string) catalog.Guide {
	id := g.GuideID(index)
	techs := g.pickTechnologies()
	gd := catalog.Guide{
		ID:           id,
		Title:        fmt.Sprintf("%s %s %d", g.pick(verbs), techs[0], index),
		Description:  fmt.Sprintf("Set up %s on a fresh server", techs[0]),
		Difficulty:   difficulties[g.rng.Intn(len(difficulties))],
		Duration:     fmt.Sprintf("%d minutes", 10+5*g.rng.Intn(8)),
		Technologies: techs,
		Featured:     g.cfg.FeaturedEvery > 0 && index%g.cfg.FeaturedEvery == 0,
		Icon:         "Server",
		Category:     categoryID,
		Route:        "/" + id,
	}
	if g.cfg.ComingSoonEvery > 0 && (index+1)%g.cfg.ComingSoonEvery == 0 {
		return gd
	}
	gd.Overview = "Generated overview for " + id
	gd.Steps = g.Steps(id, g.cfg.StepsPerGuide)
	return gd
}

// Steps builds n steps with ids "<guideID>-step-1" onwards.
func (g *Generator) Steps(guideID string, n int) []catalog.Step {
	steps := make([]catalog.Step, 0, n)
	for i := 1; i <= n; i++ {
		tech := g.pick(technologies)
		steps = append(steps, catalog.Step{
			ID:          fmt.Sprintf("%s-step-%d", guideID, i),
			Title:       fmt.Sprintf("%s %s", g.pick(verbs), tech),
			Description: fmt.Sprintf("Step %d works on %s.", i, tech),
			Code:        fmt.Sprintf("echo step %d", i),
			Language:    g.pick(languages),
		})
	}
	return steps
}

// Catalog builds and validates a catalog from Categories.
func (g *Generator) Catalog() (*catalog.Catalog, error) {
	return catalog.New(g.Categories())
}

// QuickCatalog returns a default generated catalog or panics.
func QuickCatalog() *catalog.Catalog {
	c, err := NewDefault().Catalog()
	if err != nil {
		panic(err)
	}
	return c
}
