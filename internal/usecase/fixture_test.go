package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rilesCL/Projet-Leandrose-sub000/internal/document"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/domain"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/repository/memory"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/usecase"
	"github.com/rilesCL/Projet-Leandrose-sub000/pkg/storage"
	"github.com/rilesCL/Projet-Leandrose-sub000/pkg/validation"
)

// fakeDocuments keeps generated documents in memory.
type fakeDocuments struct {
	mu      sync.Mutex
	files   map[string][]byte
	seq     int
	failing bool
}

func newFakeDocuments() *fakeDocuments {
	return &fakeDocuments{files: make(map[string][]byte)}
}

func (d *fakeDocuments) put(prefix string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failing {
		return "", errors.New("renderer unavailable")
	}
	d.seq++
	path := fmt.Sprintf("%s-%d.pdf", prefix, d.seq)
	d.files[path] = []byte("%PDF-" + path)
	return path, nil
}

func (d *fakeDocuments) GenerateAgreement(_ context.Context, doc domain.AgreementDocument) (string, error) {
	return d.put(fmt.Sprintf("agreements/%d", doc.Agreement.ID))
}

func (d *fakeDocuments) GenerateEvaluation(_ context.Context, doc domain.EvaluationDocument) (string, error) {
	return d.put(fmt.Sprintf("evaluations/%d/%s", doc.Evaluation.ID, doc.Side))
}

func (d *fakeDocuments) Read(_ context.Context, path string) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	data, ok := d.files[path]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return data, nil
}

func (d *fakeDocuments) Discard(_ context.Context, path string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.files, path)
	return nil
}

func (d *fakeDocuments) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.files)
}

type notification struct {
	event       string
	agreementID int64
	recipients  []int64
}

// recordingNotifier remembers every notification it was asked to send.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []notification
	err  error
}

func (n *recordingNotifier) record(event string, ag *domain.Agreement, users []domain.User) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	ids := make([]int64, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	n.sent = append(n.sent, notification{event: event, agreementID: ag.ID, recipients: ids})
	return n.err
}

func (n *recordingNotifier) AgreementAwaitingSignatures(_ context.Context, ag *domain.Agreement, users []domain.User) error {
	return n.record("awaiting_signatures", ag, users)
}

func (n *recordingNotifier) AgreementValidated(_ context.Context, ag *domain.Agreement, users []domain.User) error {
	return n.record("validated", ag, users)
}

func (n *recordingNotifier) events() []notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notification(nil), n.sent...)
}

type fixture struct {
	store      *memory.Store
	docs       *fakeDocuments
	notifier   *recordingNotifier
	apps       domain.ApplicationUsecase
	agreements domain.AgreementUsecase
	evals      domain.EvaluationUsecase

	student    domain.User
	employer   domain.User
	manager    domain.User
	instructor domain.User
	offer      domain.Offer
	cv         domain.CV
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	company := "Acme"
	f := &fixture{
		store:      store,
		docs:       newFakeDocuments(),
		notifier:   &recordingNotifier{},
		student:    store.AddUser(domain.User{ID: 1, Email: "lea@example.com", FirstName: "Léa", LastName: "Tremblay", Role: domain.RoleStudent}),
		employer:   store.AddUser(domain.User{ID: 2, Email: "rh@acme.example", FirstName: "Marc", LastName: "Roy", Role: domain.RoleEmployer, CompanyName: &company}),
		manager:    store.AddUser(domain.User{ID: 3, Email: "gestion@college.example", Role: domain.RoleManager}),
		instructor: store.AddUser(domain.User{ID: 4, Email: "prof@college.example", Role: domain.RoleInstructor}),
	}
	f.offer = store.AddOffer(domain.Offer{ID: 10, EmployerID: f.employer.ID, Title: "Développeur backend", Status: domain.OfferStatusPublished})
	f.cv = store.AddCV(domain.CV{ID: 5, StudentID: f.student.ID, Path: "cv/lea.pdf", Status: domain.CVStatusApproved})

	catalog, err := document.LoadCatalog()
	require.NoError(t, err)
	validate := validation.New()

	appRepo := memory.NewApplicationRepository(store)
	agRepo := memory.NewAgreementRepository(store)
	offerRepo := memory.NewOfferRepository(store)
	userRepo := memory.NewUserRepository(store)
	evRepo := memory.NewEvaluationRepository(store)

	f.apps = usecase.NewApplicationUsecase(appRepo, offerRepo, memory.NewCVRepository(store), userRepo, validate)
	f.agreements = usecase.NewAgreementUsecase(agRepo, appRepo, evRepo, offerRepo, userRepo, f.docs, f.notifier, validate)
	f.evals = usecase.NewEvaluationUsecase(evRepo, agRepo, offerRepo, userRepo, f.docs, catalog, validate)
	return f
}

func (f *fixture) acceptedApplication(t *testing.T) *domain.Application {
	t.Helper()
	ctx := context.Background()
	app, err := f.apps.Apply(ctx, f.student.ID, f.offer.ID, f.cv.ID)
	require.NoError(t, err)
	_, err = f.apps.AcceptByEmployer(ctx, f.employer.ID, app.ID)
	require.NoError(t, err)
	app, err = f.apps.AcceptByStudent(ctx, f.student.ID, app.ID)
	require.NoError(t, err)
	return app
}

func draftFor(applicationID int64) domain.AgreementDraft {
	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	pay := 500.0
	return domain.AgreementDraft{
		ApplicationID: applicationID,
		MissionText:   "Build features",
		StartDate:     &start,
		DurationWeeks: 12,
		Location:      "Montreal",
		Compensation:  &pay,
	}
}

func (f *fixture) draftAgreement(t *testing.T) *domain.Agreement {
	t.Helper()
	app := f.acceptedApplication(t)
	ag, err := f.agreements.Create(context.Background(), f.manager.ID, draftFor(app.ID))
	require.NoError(t, err)
	return ag
}

func (f *fixture) awaitingAgreement(t *testing.T) *domain.Agreement {
	t.Helper()
	ag := f.draftAgreement(t)
	ag, err := f.agreements.ValidateAndGenerate(context.Background(), f.manager.ID, ag.ID)
	require.NoError(t, err)
	return ag
}

// validatedAgreement signs by all three parties and assigns the instructor.
func (f *fixture) validatedAgreement(t *testing.T) *domain.Agreement {
	t.Helper()
	ctx := context.Background()
	ag := f.awaitingAgreement(t)
	_, err := f.agreements.SignAsStudent(ctx, f.student.ID, ag.ID)
	require.NoError(t, err)
	_, err = f.agreements.SignAsEmployer(ctx, f.employer.ID, ag.ID)
	require.NoError(t, err)
	_, err = f.agreements.SignAsManager(ctx, f.manager.ID, ag.ID)
	require.NoError(t, err)
	ag, err = f.agreements.AssignInstructor(ctx, f.manager.ID, ag.ID, f.instructor.ID)
	require.NoError(t, err)
	require.Equal(t, domain.AgreementStatusValidated, ag.Status)
	return ag
}

func employerForm() domain.EvaluationForm {
	answers := map[string]int{}
	for _, id := range []string{
		"prod_planning", "prod_instructions", "prod_pace", "qual_rigor", "qual_detail",
		"rel_team", "rel_feedback", "skill_initiative", "skill_autonomy",
	} {
		answers[id] = 4
	}
	return domain.EvaluationForm{Answers: answers, Summary: "Solid intern"}
}

func instructorForm() domain.EvaluationForm {
	answers := map[string]int{}
	for _, id := range []string{
		"sup_integration", "sup_welcome", "sup_time", "env_safety", "env_climate", "load_hours", "load_tasks",
	} {
		answers[id] = 3
	}
	return domain.EvaluationForm{Answers: answers}
}
