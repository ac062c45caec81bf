package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"

	"github.com/rilesCL/Projet-Leandrose-sub000/internal/domain"
	"github.com/rilesCL/Projet-Leandrose-sub000/pkg/metrics"
	"github.com/rilesCL/Projet-Leandrose-sub000/pkg/storage"
)

const contentTypePDF = "application/pdf"

// Generator renders agreement and evaluation PDFs and keeps them in a Store.
type Generator struct {
	store   storage.Store
	catalog *Catalog
	now     func() time.Time
}

func NewGenerator(store storage.Store, catalog *Catalog) *Generator {
	return &Generator{store: store, catalog: catalog, now: time.Now}
}

var labels = map[string]Text{
	"agreement_title": {FR: "Entente de stage", EN: "Internship agreement"},
	"agreement_no":    {FR: "Entente n°", EN: "Agreement #"},
	"student":         {FR: "Stagiaire", EN: "Intern"},
	"employer":        {FR: "Employeur", EN: "Employer"},
	"offer":           {FR: "Offre", EN: "Offer"},
	"mission":         {FR: "Mandat", EN: "Mission"},
	"start_date":      {FR: "Date de début", EN: "Start date"},
	"duration":        {FR: "Durée (semaines)", EN: "Duration (weeks)"},
	"location":        {FR: "Lieu", EN: "Location"},
	"compensation":    {FR: "Rémunération horaire", EN: "Hourly compensation"},
	"schedule":        {FR: "Horaire de travail", EN: "Work schedule"},
	"signatures":      {FR: "Signatures", EN: "Signatures"},
	"evaluator":       {FR: "Évaluateur", EN: "Evaluator"},
	"rating":          {FR: "Cote", EN: "Rating"},
	"comments":        {FR: "Commentaires", EN: "Comments"},
	"summary":         {FR: "Appréciation globale", EN: "Overall assessment"},
	"generated":       {FR: "Généré le", EN: "Generated on"},
	"none":            {FR: "Non précisé", EN: "Not specified"},
}

func label(key, locale string) string {
	return labels[key].In(locale)
}

type page struct {
	pdf    *fpdf.Fpdf
	tr     func(string) string
	locale string
}

func newPage(locale string) *page {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()
	return &page{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor(""), locale: locale}
}

func (p *page) title(text string) {
	p.pdf.SetFont("Helvetica", "B", 16)
	p.pdf.CellFormat(0, 10, p.tr(text), "", 1, "C", false, 0, "")
	p.pdf.Ln(4)
}

func (p *page) heading(text string) {
	p.pdf.Ln(2)
	p.pdf.SetFont("Helvetica", "B", 12)
	p.pdf.CellFormat(0, 8, p.tr(text), "B", 1, "L", false, 0, "")
	p.pdf.Ln(1)
}

func (p *page) field(key, value string) {
	if value == "" {
		value = label("none", p.locale)
	}
	p.pdf.SetFont("Helvetica", "B", 10)
	p.pdf.CellFormat(55, 6, p.tr(label(key, p.locale)), "", 0, "L", false, 0, "")
	p.pdf.SetFont("Helvetica", "", 10)
	p.pdf.MultiCell(0, 6, p.tr(value), "", "L", false)
}

func (p *page) paragraph(text string) {
	p.pdf.SetFont("Helvetica", "", 10)
	p.pdf.MultiCell(0, 5, p.tr(text), "", "L", false)
}

func (p *page) bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := p.pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func userName(u *domain.User) string {
	if u == nil {
		return ""
	}
	if u.CompanyName != nil && *u.CompanyName != "" {
		return fmt.Sprintf("%s (%s)", u.FullName(), *u.CompanyName)
	}
	return u.FullName()
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

// GenerateAgreement renders the agreement and returns its storage key.
func (g *Generator) GenerateAgreement(ctx context.Context, doc domain.AgreementDocument) (string, error) {
	if doc.Agreement == nil {
		return "", errors.New("document: agreement is required")
	}
	ag := doc.Agreement
	locale := domain.NormalizeLocale(doc.Locale)
	p := newPage(locale)

	p.title(label("agreement_title", locale))
	p.field("agreement_no", strconv.FormatInt(ag.ID, 10))
	p.field("student", userName(doc.Student))
	p.field("employer", userName(doc.Employer))
	if doc.Offer != nil {
		p.field("offer", doc.Offer.Title)
	}

	p.heading(label("mission", locale))
	p.paragraph(ag.MissionText)

	p.heading(label("offer", locale))
	p.field("start_date", formatDate(ag.StartDate))
	p.field("duration", strconv.Itoa(ag.DurationWeeks))
	p.field("location", ag.Location)
	if ag.Compensation != nil {
		p.field("compensation", strconv.FormatFloat(*ag.Compensation, 'f', 2, 64))
	}
	if ag.WorkSchedule != nil {
		p.field("schedule", *ag.WorkSchedule)
	}

	p.heading(label("signatures", locale))
	for _, party := range []domain.Party{domain.PartyStudent, domain.PartyEmployer, domain.PartyManager} {
		p.paragraph(party.String() + ": ______________________________")
	}
	p.field("generated", g.now().Format("2006-01-02"))

	data, err := p.bytes()
	if err != nil {
		return "", fmt.Errorf("render agreement %d: %w", ag.ID, err)
	}
	key := fmt.Sprintf("agreements/%d/%s.pdf", ag.ID, uuid.NewString())
	if err := g.store.Put(ctx, key, data, contentTypePDF); err != nil {
		return "", fmt.Errorf("store agreement %d: %w", ag.ID, err)
	}
	metrics.RecordDocument("agreement")
	return key, nil
}

// GenerateEvaluation renders one side of an evaluation and returns its storage key.
func (g *Generator) GenerateEvaluation(ctx context.Context, doc domain.EvaluationDocument) (string, error) {
	if doc.Evaluation == nil {
		return "", errors.New("document: evaluation is required")
	}
	form, ok := g.catalog.Form(doc.Side)
	if !ok {
		return "", fmt.Errorf("document: no form for side %q", doc.Side)
	}
	ev := doc.Evaluation
	locale := domain.NormalizeLocale(doc.Locale)
	p := newPage(locale)

	p.title(form.Title.In(locale))
	p.field("student", userName(doc.Student))
	p.field("evaluator", userName(doc.Evaluator))
	if doc.Offer != nil {
		p.field("offer", doc.Offer.Title)
	}

	for _, s := range form.Sections {
		p.heading(s.Title.In(locale))
		for _, q := range s.Questions {
			rating := ""
			if r, ok := doc.Form.Answers[q.ID]; ok {
				rating = fmt.Sprintf("%d / %d", r, form.Scale.Max)
			}
			p.pdf.SetFont("Helvetica", "", 10)
			p.pdf.CellFormat(140, 6, p.tr(q.Label.In(locale)), "", 0, "L", false, 0, "")
			p.pdf.CellFormat(0, 6, rating, "", 1, "R", false, 0, "")
		}
		if c := doc.Form.Comments[s.ID]; c != "" {
			p.pdf.SetFont("Helvetica", "I", 10)
			p.pdf.MultiCell(0, 5, p.tr(label("comments", locale)+": "+c), "", "L", false)
		}
	}

	if doc.Form.Summary != "" {
		p.heading(label("summary", locale))
		p.paragraph(doc.Form.Summary)
	}
	p.field("generated", g.now().Format("2006-01-02"))

	data, err := p.bytes()
	if err != nil {
		return "", fmt.Errorf("render evaluation %d: %w", ev.ID, err)
	}
	key := fmt.Sprintf("evaluations/%d/%s-%s.pdf", ev.ID, doc.Side, uuid.NewString())
	if err := g.store.Put(ctx, key, data, contentTypePDF); err != nil {
		return "", fmt.Errorf("store evaluation %d: %w", ev.ID, err)
	}
	metrics.RecordDocument("evaluation_" + string(doc.Side))
	return key, nil
}

// Read returns a previously generated document.
func (g *Generator) Read(ctx context.Context, path string) ([]byte, error) {
	return g.store.Get(ctx, path)
}

func (g *Generator) Discard(ctx context.Context, path string) error {
	return g.store.Delete(ctx, path)
}
