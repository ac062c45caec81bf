package document

import (
	"embed"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rilesCL/Projet-Leandrose-sub000/internal/domain"
)

//go:embed forms/*.yaml
var formFiles embed.FS

// ErrInvalidForm wraps every catalog validation failure.
var ErrInvalidForm = errors.New("invalid evaluation form")

// Text is a label in every supported locale.
type Text struct {
	FR string `yaml:"fr"`
	EN string `yaml:"en"`
}

// In returns the label for locale, falling back to French.
func (t Text) In(locale string) string {
	if domain.NormalizeLocale(locale) == domain.LocaleEnglish && t.EN != "" {
		return t.EN
	}
	return t.FR
}

type Question struct {
	ID       string `yaml:"id"`
	Required bool   `yaml:"required"`
	Label    Text   `yaml:"label"`
}

type Section struct {
	ID        string     `yaml:"id"`
	Title     Text       `yaml:"title"`
	Questions []Question `yaml:"questions"`
}

type Scale struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// Form is the questionnaire filled by one evaluation side.
type Form struct {
	Side     domain.EvaluationSide `yaml:"side"`
	Title    Text                  `yaml:"title"`
	Scale    Scale                 `yaml:"scale"`
	Sections []Section             `yaml:"sections"`
}

// Catalog holds the questionnaires keyed by side.
type Catalog struct {
	forms map[domain.EvaluationSide]*Form
}

// LoadCatalog parses the embedded questionnaires.
func LoadCatalog() (*Catalog, error) {
	names := []string{"forms/employer.yaml", "forms/instructor.yaml"}
	c := &Catalog{forms: make(map[domain.EvaluationSide]*Form, len(names))}
	for _, name := range names {
		raw, err := formFiles.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		var f Form
		if err := yaml.Unmarshal(raw, &f); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		if !f.Side.Valid() {
			return nil, fmt.Errorf("%s: unknown side %q", name, f.Side)
		}
		if f.Scale.Min < 1 || f.Scale.Max < f.Scale.Min {
			return nil, fmt.Errorf("%s: bad scale %d..%d", name, f.Scale.Min, f.Scale.Max)
		}
		c.forms[f.Side] = &f
	}
	return c, nil
}

// Form returns the questionnaire of side.
func (c *Catalog) Form(side domain.EvaluationSide) (*Form, bool) {
	f, ok := c.forms[side]
	return f, ok
}

// Validate checks answers against the questionnaire: every id must exist, every
// required question must be answered and every rating must be within the scale.
func (c *Catalog) Validate(side domain.EvaluationSide, form domain.EvaluationForm) error {
	f, ok := c.forms[side]
	if !ok {
		return fmt.Errorf("%w: unknown side %q", ErrInvalidForm, side)
	}

	known := make(map[string]bool)
	sections := make(map[string]bool, len(f.Sections))
	var problems []string
	for _, s := range f.Sections {
		sections[s.ID] = true
		for _, q := range s.Questions {
			known[q.ID] = true
			if _, answered := form.Answers[q.ID]; q.Required && !answered {
				problems = append(problems, "missing answer for "+q.ID)
			}
		}
	}

	ids := make([]string, 0, len(form.Answers))
	for id := range form.Answers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if !known[id] {
			problems = append(problems, "unknown question "+id)
			continue
		}
		if r := form.Answers[id]; r < f.Scale.Min || r > f.Scale.Max {
			problems = append(problems, fmt.Sprintf("rating for %s must be between %d and %d", id, f.Scale.Min, f.Scale.Max))
		}
	}
	for id := range form.Comments {
		if !sections[id] {
			problems = append(problems, "unknown section "+id)
		}
	}

	if len(problems) > 0 {
		sort.Strings(problems)
		return fmt.Errorf("%w: %s", ErrInvalidForm, strings.Join(problems, "; "))
	}
	return nil
}
