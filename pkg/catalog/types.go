package catalog

import "strings"

// Difficulty is the skill level a guide is written for.
type Difficulty string

const (
	Beginner     Difficulty = "Beginner"
	Intermediate Difficulty = "Intermediate"
	Advanced     Difficulty = "Advanced"
)

// Valid reports whether d is one of the known levels.
func (d Difficulty) Valid() bool {
	switch d {
	case Beginner, Intermediate, Advanced:
		return true
	}
	return false
}

// CodeSnippet is a titled block of code shown after a step's main code.
type CodeSnippet struct {
	Title    string `yaml:"title" json:"title"`
	Code     string `yaml:"code" json:"code"`
	Language string `yaml:"language" json:"language"`
}

// Step is one unit of instruction within a guide. Steps are identified by
// their 1-based position for progress and by ID for navigation.
type Step struct {
	ID             string       `yaml:"id" json:"id"`
	Title          string       `yaml:"title" json:"title"`
	Description    string       `yaml:"description" json:"description"`
	Code           string       `yaml:"code" json:"code"`
	Language       string       `yaml:"language" json:"language"`
	AdditionalCode *CodeSnippet `yaml:"additional_code,omitempty" json:"additionalCode,omitempty"`
	Tips           []string     `yaml:"tips,omitempty" json:"tips,omitempty"`
}

// Callout is a titled block of prose attached to a guide, such as a security
// notice or the message shown once every step is complete.
type Callout struct {
	Title   string   `yaml:"title" json:"title"`
	Message string   `yaml:"message" json:"message"`
	Details []string `yaml:"details,omitempty" json:"details,omitempty"`
}

// Guide is a named, ordered sequence of steps teaching a setup procedure.
type Guide struct {
	ID           string     `yaml:"id" json:"id"`
	Title        string     `yaml:"title" json:"title"`
	Description  string     `yaml:"description" json:"description"`
	Difficulty   Difficulty `yaml:"difficulty" json:"difficulty"`
	Duration     string     `yaml:"duration" json:"duration"`
	Technologies []string   `yaml:"technologies" json:"technologies"`
	Featured     bool       `yaml:"featured,omitempty" json:"featured"`
	Icon         string     `yaml:"icon" json:"icon"`
	Category     string     `yaml:"category" json:"category"`
	Route        string     `yaml:"route,omitempty" json:"route,omitempty"`

	Overview      string   `yaml:"overview,omitempty" json:"overview,omitempty"`
	Symptoms      []string `yaml:"symptoms,omitempty" json:"symptoms,omitempty"`
	Learn         []string `yaml:"learn,omitempty" json:"learn,omitempty"`
	Prerequisites []string `yaml:"prerequisites,omitempty" json:"prerequisites,omitempty"`
	Notice        *Callout `yaml:"notice,omitempty" json:"notice,omitempty"`
	Completion    *Callout `yaml:"completion,omitempty" json:"completion,omitempty"`

	Steps []Step `yaml:"steps,omitempty" json:"steps,omitempty"`
}

// HasContent reports whether the guide has steps to show. Guides without
// content are listed in the catalog but announced as coming soon.
func (g *Guide) HasContent() bool {
	return len(g.Steps) > 0
}

// TotalSteps returns the number of steps in the guide.
func (g *Guide) TotalSteps() int {
	return len(g.Steps)
}

// StepNumber returns the 1-based position of the step with the given id,
// or 0 if the guide has no such step.
func (g *Guide) StepNumber(id string) int {
	for i := range g.Steps {
		if g.Steps[i].ID == id {
			return i + 1
		}
	}
	return 0
}

// Category is a named grouping of guides by subject area.
type Category struct {
	ID          string  `yaml:"id" json:"id"`
	Title       string  `yaml:"title" json:"title"`
	Description string  `yaml:"description" json:"description"`
	Icon        string  `yaml:"icon" json:"icon"`
	Guides      []Guide `yaml:"guides" json:"guides"`
}

// normalizeRoute trims whitespace and a trailing slash so "/mqtt-guide/"
// and "/mqtt-guide" address the same view.
func normalizeRoute(route string) string {
	route = strings.TrimSpace(route)
	if len(route) > 1 {
		route = strings.TrimRight(route, "/")
		if route == "" {
			return "/"
		}
	}
	return route
}
