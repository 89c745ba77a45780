package testutil

import (
	"slices"
	"testing"

	"github.com/vanderheijden86/devsetup/pkg/catalog"
)

func TestCategories_Default(t *testing.T) {
	cats := NewDefault().Categories()
	if len(cats) != 3 {
		t.Fatalf("categories = %d, want 3", len(cats))
	}
	ids := GuideIDs(cats)
	if len(ids) != 12 {
		t.Fatalf("guides = %d, want 12", len(ids))
	}
	if ids[0] != "guide-0" || ids[11] != "guide-11" {
		t.Errorf("ids = %v", ids)
	}

	var withContent, featured int
	for _, cat := range cats {
		for _, g := range cat.Guides {
			if g.HasContent() {
				withContent++
				if g.TotalSteps() != 5 {
					t.Errorf("%s has %d steps, want 5", g.ID, g.TotalSteps())
				}
			}
			if g.Featured {
				featured++
			}
			if g.Category != cat.ID {
				t.Errorf("%s category = %q, want %q", g.ID, g.Category, cat.ID)
			}
		}
	}
	if withContent != 9 {
		t.Errorf("guides with content = %d, want 9", withContent)
	}
	if featured != 4 {
		t.Errorf("featured = %d, want 4", featured)
	}
}

func TestCatalog_Valid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Categories = 6
	cfg.GuidesPerCategory = 10
	c, err := New(cfg).Catalog()
	if err != nil {
		t.Fatalf("generated catalog is invalid: %v", err)
	}
	if len(c.Guides()) != 60 {
		t.Errorf("guides = %d, want 60", len(c.Guides()))
	}
}

func TestDeterminism(t *testing.T) {
	a := NewDefault().Categories()
	b := NewDefault().Categories()
	AssertJSONEqual(t, a, b)

	cfg := DefaultConfig()
	cfg.Seed = 7
	c := New(cfg).Categories()
	if slices.EqualFunc(a[0].Guides, c[0].Guides, func(x, y catalog.Guide) bool { return x.Title == y.Title }) {
		t.Error("different seeds should produce different titles")
	}
}

func TestWriteCatalogDir_Loads(t *testing.T) {
	dir, cats := TempCatalogDir(t)
	c, err := catalog.LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	AssertGuideIDs(t, c.Categories(), GuideIDs(cats)...)

	g, err := c.Guide("guide-1")
	if err != nil {
		t.Fatal(err)
	}
	if g.TotalSteps() != 5 || g.Steps[2].ID != StepID("guide-1", 3) {
		t.Errorf("guide-1 steps = %+v", g.Steps)
	}
	if g.Overview == "" {
		t.Error("overview should be carried in the guide file")
	}
	soon, err := c.Guide("guide-3")
	if err != nil {
		t.Fatal(err)
	}
	if soon.HasContent() {
		t.Error("guide-3 should have no content")
	}
}
