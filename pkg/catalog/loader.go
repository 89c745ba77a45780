package catalog

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/devsetup/pkg/debug"
	"github.com/vanderheijden86/devsetup/pkg/metrics"
)

// Layout of a catalog directory.
const (
	CategoriesFile = "categories.yaml"
	GuidesDir      = "guides"
)

//go:embed data
var builtin embed.FS

// categoriesDoc is the shape of categories.yaml.
type categoriesDoc struct {
	Categories []Category `yaml:"categories"`
}

// guideDoc is the shape of guides/<id>.yaml: the long-form content of one
// guide whose metadata lives in categories.yaml.
type guideDoc struct {
	ID            string   `yaml:"id"`
	Overview      string   `yaml:"overview"`
	Symptoms      []string `yaml:"symptoms"`
	Learn         []string `yaml:"learn"`
	Prerequisites []string `yaml:"prerequisites"`
	Notice        *Callout `yaml:"notice"`
	Completion    *Callout `yaml:"completion"`
	Steps         []Step   `yaml:"steps"`

	file string
}

// Load returns the built-in catalog.
func Load() (*Catalog, error) {
	sub, err := fs.Sub(builtin, "data")
	if err != nil {
		return nil, fmt.Errorf("opening built-in catalog: %w", err)
	}
	return LoadFS(sub)
}

// LoadDir loads a catalog directory laid out like the built-in one.
func LoadDir(dir string) (*Catalog, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("opening catalog: %s is not a directory", dir)
	}
	return LoadFS(os.DirFS(dir))
}

// Parse builds a catalog from a single categories document. Guides in the
// document may carry their steps inline.
func Parse(data []byte) (*Catalog, error) {
	var doc categoriesDoc
	if err := decodeStrict(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", CategoriesFile, err)
	}
	return New(doc.Categories)
}

// LoadFS reads categories.yaml and merges in every guides/*.yaml file found
// in fsys. Guide files are parsed concurrently.
func LoadFS(fsys fs.FS) (*Catalog, error) {
	defer debug.LogEnterExit("catalog.LoadFS")()
	defer metrics.Timer(metrics.CatalogLoad)()
	start := time.Now()

	data, err := fs.ReadFile(fsys, CategoriesFile)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", CategoriesFile, err)
	}
	var doc categoriesDoc
	if err := decodeStrict(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", CategoriesFile, err)
	}

	docs, err := readGuideDocs(fsys)
	if err != nil {
		return nil, err
	}
	if err := merge(doc.Categories, docs); err != nil {
		return nil, err
	}

	c, err := New(doc.Categories)
	if err != nil {
		return nil, err
	}
	debug.LogTiming(fmt.Sprintf("catalog load (%d categories, %d guide files)", len(doc.Categories), len(docs)), time.Since(start))
	return c, nil
}

func readGuideDocs(fsys fs.FS) ([]guideDoc, error) {
	files, err := fs.Glob(fsys, path.Join(GuidesDir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("listing guide files: %w", err)
	}
	sort.Strings(files)

	docs := make([]guideDoc, len(files))
	var g errgroup.Group
	g.SetLimit(8)
	for i, file := range files {
		g.Go(func() error {
			data, err := fs.ReadFile(fsys, file)
			if err != nil {
				return fmt.Errorf("reading %s: %w", file, err)
			}
			var doc guideDoc
			if err := decodeStrict(data, &doc); err != nil {
				return fmt.Errorf("parsing %s: %w", file, err)
			}
			doc.file = file
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

// merge attaches each guide document to the guide it names.
func merge(categories []Category, docs []guideDoc) error {
	index := make(map[string]*Guide)
	for ci := range categories {
		for gi := range categories[ci].Guides {
			g := &categories[ci].Guides[gi]
			index[g.ID] = g
		}
	}

	var problems []error
	for _, doc := range docs {
		if doc.ID == "" {
			problems = append(problems, fmt.Errorf("%s: missing id", doc.file))
			continue
		}
		g, ok := index[doc.ID]
		if !ok {
			problems = append(problems, fmt.Errorf("%s: guide %q is not listed in %s", doc.file, doc.ID, CategoriesFile))
			continue
		}
		if len(g.Steps) > 0 {
			problems = append(problems, fmt.Errorf("%s: guide %q already has inline steps", doc.file, doc.ID))
			continue
		}
		g.Overview = doc.Overview
		g.Symptoms = doc.Symptoms
		g.Learn = doc.Learn
		g.Prerequisites = doc.Prerequisites
		g.Notice = doc.Notice
		g.Completion = doc.Completion
		g.Steps = doc.Steps
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidCatalog, errors.Join(problems...))
	}
	return nil
}

// decodeStrict rejects unknown keys so a misspelled field is a load error
// rather than silently empty data.
func decodeStrict(data []byte, v any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
