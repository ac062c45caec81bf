package document

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rilesCL/Projet-Leandrose-sub000/internal/domain"
	"github.com/rilesCL/Projet-Leandrose-sub000/pkg/storage"
)

func employerAnswers(rating int) map[string]int {
	return map[string]int{
		"prod_planning":     rating,
		"prod_instructions": rating,
		"prod_pace":         rating,
		"qual_rigor":        rating,
		"qual_detail":       rating,
		"rel_team":          rating,
		"rel_feedback":      rating,
		"skill_initiative":  rating,
		"skill_autonomy":    rating,
	}
}

func TestLoadCatalog(t *testing.T) {
	c, err := LoadCatalog()
	require.NoError(t, err)

	emp, ok := c.Form(domain.EvaluationSideEmployer)
	require.True(t, ok)
	assert.Equal(t, 5, emp.Scale.Max)
	assert.NotEmpty(t, emp.Sections)

	ins, ok := c.Form(domain.EvaluationSideInstructor)
	require.True(t, ok)
	assert.Equal(t, 4, ins.Scale.Max)
	assert.Equal(t, "Supervision", ins.Sections[0].Title.In("en"))
	assert.Equal(t, "Encadrement", ins.Sections[0].Title.In("de"))
}

func TestCatalogValidate(t *testing.T) {
	c, err := LoadCatalog()
	require.NoError(t, err)

	t.Run("complete form", func(t *testing.T) {
		form := domain.EvaluationForm{
			Answers:  employerAnswers(4),
			Comments: map[string]string{"quality": "Très rigoureux"},
		}
		assert.NoError(t, c.Validate(domain.EvaluationSideEmployer, form))
	})

	t.Run("missing required answer", func(t *testing.T) {
		answers := employerAnswers(3)
		delete(answers, "rel_team")
		err := c.Validate(domain.EvaluationSideEmployer, domain.EvaluationForm{Answers: answers})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidForm))
		assert.Contains(t, err.Error(), "missing answer for rel_team")
	})

	t.Run("optional question may be skipped", func(t *testing.T) {
		answers := employerAnswers(3)
		_, has := answers["qual_self_review"]
		require.False(t, has)
		assert.NoError(t, c.Validate(domain.EvaluationSideEmployer, domain.EvaluationForm{Answers: answers}))
	})

	t.Run("rating out of scale", func(t *testing.T) {
		answers := employerAnswers(3)
		answers["prod_pace"] = 6
		err := c.Validate(domain.EvaluationSideEmployer, domain.EvaluationForm{Answers: answers})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "prod_pace must be between 1 and 5")
	})

	t.Run("unknown question and section", func(t *testing.T) {
		answers := employerAnswers(3)
		answers["nope"] = 2
		err := c.Validate(domain.EvaluationSideEmployer, domain.EvaluationForm{
			Answers:  answers,
			Comments: map[string]string{"elsewhere": "x"},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown question nope")
		assert.Contains(t, err.Error(), "unknown section elsewhere")
	})

	t.Run("employer answers do not fit the instructor form", func(t *testing.T) {
		err := c.Validate(domain.EvaluationSideInstructor, domain.EvaluationForm{Answers: employerAnswers(3)})
		assert.ErrorIs(t, err, ErrInvalidForm)
	})
}

func newTestGenerator(t *testing.T) (*Generator, storage.Store) {
	t.Helper()
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	c, err := LoadCatalog()
	require.NoError(t, err)
	g := NewGenerator(store, c)
	g.now = func() time.Time { return time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC) }
	return g, store
}

func TestGenerateAgreement(t *testing.T) {
	g, _ := newTestGenerator(t)
	ctx := context.Background()

	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	pay := 500.0
	company := "Acme"
	doc := domain.AgreementDocument{
		Agreement: &domain.Agreement{ID: 7, MissionText: "Build features", StartDate: &start, DurationWeeks: 12, Location: "Montréal", Compensation: &pay},
		Student:   &domain.User{FirstName: "Léa", LastName: "Tremblay"},
		Employer:  &domain.User{FirstName: "Marc", LastName: "Roy", CompanyName: &company},
		Offer:     &domain.Offer{Title: "Développeur backend"},
		Locale:    "fr",
	}

	path, err := g.GenerateAgreement(ctx, doc)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, "agreements/7/"))
	assert.True(t, strings.HasSuffix(path, ".pdf"))

	data, err := g.Read(ctx, path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))

	second, err := g.GenerateAgreement(ctx, doc)
	require.NoError(t, err)
	assert.NotEqual(t, path, second)

	require.NoError(t, g.Discard(ctx, second))
	_, err = g.Read(ctx, second)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestGenerateAgreementRequiresAgreement(t *testing.T) {
	g, _ := newTestGenerator(t)
	_, err := g.GenerateAgreement(context.Background(), domain.AgreementDocument{})
	assert.Error(t, err)
}

func TestGenerateEvaluation(t *testing.T) {
	g, _ := newTestGenerator(t)
	ctx := context.Background()

	path, err := g.GenerateEvaluation(ctx, domain.EvaluationDocument{
		Evaluation: &domain.Evaluation{ID: 3},
		Side:       domain.EvaluationSideEmployer,
		Student:    &domain.User{FirstName: "Léa", LastName: "Tremblay"},
		Evaluator:  &domain.User{FirstName: "Marc", LastName: "Roy"},
		Form: domain.EvaluationForm{
			Answers:  employerAnswers(5),
			Comments: map[string]string{"productivity": "Excellent"},
			Summary:  "Great internship",
		},
		Locale: "en",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, "evaluations/3/employer-"))

	data, err := g.Read(ctx, path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestReadMissingDocument(t *testing.T) {
	g, _ := newTestGenerator(t)
	_, err := g.Read(context.Background(), "agreements/1/missing.pdf")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
