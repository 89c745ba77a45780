package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	json "github.com/goccy/go-json"
	"golang.org/x/term"

	"github.com/vanderheijden86/devsetup/pkg/catalog"
	"github.com/vanderheijden86/devsetup/pkg/progress"
	"github.com/vanderheijden86/devsetup/pkg/search"
	"github.com/vanderheijden86/devsetup/pkg/version"
)

// RobotGuide is one guide in --robot-catalog output.
type RobotGuide struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Difficulty   string   `json:"difficulty"`
	Duration     string   `json:"duration"`
	Technologies []string `json:"technologies"`
	Featured     bool     `json:"featured"`
	Route        string   `json:"route,omitempty"`
	Steps        int      `json:"steps"`
	Available    bool     `json:"available"`
}

// RobotCategory groups guides in --robot-catalog output.
type RobotCategory struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Guides      []RobotGuide `json:"guides"`
}

// RobotCatalogOutput is the --robot-catalog document.
type RobotCatalogOutput struct {
	GeneratedAt   string          `json:"generated_at"`
	Version       string          `json:"version"`
	Query         string          `json:"query,omitempty"`
	CategoryCount int             `json:"category_count"`
	GuideCount    int             `json:"guide_count"`
	Categories    []RobotCategory `json:"categories"`
}

// RobotProgressOutput is the --robot-progress document.
type RobotProgressOutput struct {
	GuideID   string `json:"guide_id"`
	Key       string `json:"key"`
	Completed []int  `json:"completed"`
	Total     int    `json:"total"`
	Percent   int    `json:"percent"`
	AllDone   bool   `json:"all_done"`
}

func newRobotEncoder(w io.Writer) *json.Encoder {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder
}

func writeRobotCatalog(w io.Writer, c *catalog.Catalog, query string) error {
	out := RobotCatalogOutput{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Version:     version.Version,
		Query:       query,
		Categories:  []RobotCategory{},
	}
	results := search.Catalog(c.Categories(), query)
	for _, cat := range results {
		rc := RobotCategory{
			ID:          cat.ID,
			Title:       cat.Title,
			Description: cat.Description,
			Guides:      make([]RobotGuide, 0, len(cat.Guides)),
		}
		for _, g := range cat.Guides {
			rc.Guides = append(rc.Guides, RobotGuide{
				ID:           g.ID,
				Title:        g.Title,
				Description:  g.Description,
				Difficulty:   string(g.Difficulty),
				Duration:     g.Duration,
				Technologies: append([]string{}, g.Technologies...),
				Featured:     g.Featured,
				Route:        g.Route,
				Steps:        g.TotalSteps(),
				Available:    g.HasContent(),
			})
		}
		out.Categories = append(out.Categories, rc)
	}
	out.CategoryCount = len(out.Categories)
	out.GuideCount = search.GuideCount(results)

	if err := newRobotEncoder(w).Encode(out); err != nil {
		return fmt.Errorf("encoding catalog: %w", err)
	}
	return nil
}

func writeRobotProgress(w io.Writer, c *catalog.Catalog, store *progress.Store, guideID string) error {
	g, err := c.Guide(guideID)
	if err != nil {
		return err
	}
	t := store.Track(g.ID, g.TotalSteps())
	out := RobotProgressOutput{
		GuideID:   g.ID,
		Key:       t.Key(),
		Completed: t.Completed().Sorted(),
		Total:     t.Total(),
		Percent:   t.Percent(),
		AllDone:   t.AllDone(),
	}
	if out.Completed == nil {
		out.Completed = []int{}
	}
	if err := newRobotEncoder(w).Encode(out); err != nil {
		return fmt.Errorf("encoding progress: %w", err)
	}
	return nil
}

// confirmFunc asks whether progress of the named guide should be cleared.
type confirmFunc func(title string, done int) (bool, error)

// resetGuide clears the stored progress of one guide after confirmation.
func resetGuide(w io.Writer, c *catalog.Catalog, store *progress.Store, guideID string, yes bool, confirm confirmFunc) error {
	g, err := c.Guide(guideID)
	if err != nil {
		return err
	}
	t := store.Track(g.ID, g.TotalSteps())
	if t.Count() == 0 {
		// clears an empty or out-of-range record without asking
		t.Reset()
		if err := store.LastWriteError(); err != nil {
			return fmt.Errorf("resetting progress: %w", err)
		}
		fmt.Fprintf(w, "No progress recorded for %s\n", g.ID)
		return nil
	}
	if !yes {
		ok, err := confirm(g.Title, t.Count())
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(w, "Reset cancelled")
			return nil
		}
	}
	t.Reset()
	if err := store.LastWriteError(); err != nil {
		return fmt.Errorf("resetting progress: %w", err)
	}
	fmt.Fprintf(w, "✓ Progress reset for %s\n", g.ID)
	return nil
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func newForm(groups ...*huh.Group) *huh.Form {
	form := huh.NewForm(groups...).WithTheme(huh.ThemeDracula())
	if !isTerminal() {
		form = form.WithAccessible(true)
	}
	return form
}

func confirmReset(title string, done int) (bool, error) {
	ok := false
	form := newForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Reset progress?").
				Description(fmt.Sprintf("%s has %d completed step(s).", title, done)).
				Value(&ok).
				Affirmative("Yes, reset").
				Negative("No, keep it"),
		),
	)
	if err := form.Run(); err != nil {
		return false, fmt.Errorf("confirmation: %w", err)
	}
	return ok, nil
}
