package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/devsetup/pkg/catalog"
)

// GuideIDs returns guide ids in catalog order.
func GuideIDs(categories []catalog.Category) []string {
	var ids []string
	for _, cat := range categories {
		for _, g := range cat.Guides {
			ids = append(ids, g.ID)
		}
	}
	return ids
}

// AssertGuideIDs verifies the guides of categories, in order.
func AssertGuideIDs(t testing.TB, categories []catalog.Category, want ...string) {
	t.Helper()
	if got := GuideIDs(categories); !slices.Equal(got, want) {
		t.Errorf("guide ids = %v, want %v", got, want)
	}
}

// AssertJSONEqual compares two values after JSON round-tripping.
// Useful for comparing structs that may have different Go representations
// but equivalent JSON forms.
func AssertJSONEqual(t testing.TB, expected, actual any) {
	t.Helper()

	expectedJSON, err := json.Marshal(expected)
	if err != nil {
		t.Fatalf("failed to marshal expected: %v", err)
	}

	actualJSON, err := json.Marshal(actual)
	if err != nil {
		t.Fatalf("failed to marshal actual: %v", err)
	}

	if string(expectedJSON) != string(actualJSON) {
		t.Errorf("JSON mismatch:\nexpected: %s\nactual:   %s", expectedJSON, actualJSON)
	}
}

// AssertGolden compares actual with the file at path. With
// DEVSETUP_UPDATE_GOLDEN set, it rewrites the file instead.
func AssertGolden(t testing.TB, path string, actual []byte) {
	t.Helper()

	if os.Getenv("DEVSETUP_UPDATE_GOLDEN") != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("creating golden dir: %v", err)
		}
		if err := os.WriteFile(path, actual, 0o644); err != nil {
			t.Fatalf("writing golden file: %v", err)
		}
		return
	}

	want, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading golden file (set DEVSETUP_UPDATE_GOLDEN=1 to create it): %v", err)
	}
	if string(want) == string(actual) {
		return
	}
	wantLines := strings.Split(string(want), "\n")
	gotLines := strings.Split(string(actual), "\n")
	for i := range max(len(wantLines), len(gotLines)) {
		var w, g string
		if i < len(wantLines) {
			w = wantLines[i]
		}
		if i < len(gotLines) {
			g = gotLines[i]
		}
		if w != g {
			t.Errorf("%s: line %d differs\nwant: %q\ngot:  %q", filepath.Base(path), i+1, w, g)
			return
		}
	}
}

// Catalog directory helpers

// guideFile mirrors guides/<id>.yaml.
type guideFile struct {
	ID            string           `yaml:"id"`
	Overview      string           `yaml:"overview,omitempty"`
	Symptoms      []string         `yaml:"symptoms,omitempty"`
	Learn         []string         `yaml:"learn,omitempty"`
	Prerequisites []string         `yaml:"prerequisites,omitempty"`
	Notice        *catalog.Callout `yaml:"notice,omitempty"`
	Completion    *catalog.Callout `yaml:"completion,omitempty"`
	Steps         []catalog.Step   `yaml:"steps"`
}

// WriteCatalogDir writes categories in the catalog directory layout: guide
// metadata in categories.yaml and the content of each guide with steps in
// guides/<id>.yaml.
func WriteCatalogDir(t testing.TB, dir string, categories []catalog.Category) {
	t.Helper()

	meta := make([]catalog.Category, len(categories))
	var files []guideFile
	for ci, cat := range categories {
		meta[ci] = cat
		meta[ci].Guides = make([]catalog.Guide, len(cat.Guides))
		for gi, g := range cat.Guides {
			if g.HasContent() {
				files = append(files, guideFile{
					ID:            g.ID,
					Overview:      g.Overview,
					Symptoms:      g.Symptoms,
					Learn:         g.Learn,
					Prerequisites: g.Prerequisites,
					Notice:        g.Notice,
					Completion:    g.Completion,
					Steps:         g.Steps,
				})
			}
			g.Overview, g.Symptoms, g.Learn, g.Prerequisites = "", nil, nil, nil
			g.Notice, g.Completion, g.Steps = nil, nil, nil
			meta[ci].Guides[gi] = g
		}
	}

	writeYAML(t, filepath.Join(dir, catalog.CategoriesFile), map[string]any{"categories": meta})
	for _, f := range files {
		writeYAML(t, filepath.Join(dir, catalog.GuidesDir, f.ID+".yaml"), f)
	}
}

// TempCatalogDir writes a default generated catalog into a temp directory
// and returns the directory with the categories it holds.
func TempCatalogDir(t testing.TB) (string, []catalog.Category) {
	t.Helper()
	dir := t.TempDir()
	cats := NewDefault().Categories()
	WriteCatalogDir(t, dir, cats)
	return dir, cats
}

func writeYAML(t testing.TB, path string, v any) {
	t.Helper()
	data, err := yaml.Marshal(v)
	if err != nil {
		t.Fatalf("marshaling %s: %v", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("creating %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// StepID returns the id generated for step n of guideID.
func StepID(guideID string, n int) string {
	return fmt.Sprintf("%s-step-%d", guideID, n)
}
