package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/rilesCL/Projet-Leandrose-sub000/internal/domain"
	"github.com/rilesCL/Projet-Leandrose-sub000/pkg/apperror"
	"github.com/rilesCL/Projet-Leandrose-sub000/pkg/logger"
	"github.com/rilesCL/Projet-Leandrose-sub000/pkg/metrics"
	"github.com/rilesCL/Projet-Leandrose-sub000/pkg/storage"
	"github.com/rilesCL/Projet-Leandrose-sub000/pkg/validation"
)

type evaluationUsecase struct {
	evaluationRepo domain.EvaluationRepository
	agreementRepo  domain.AgreementRepository
	offerRepo      domain.OfferRepository
	userRepo       domain.UserRepository
	documents      domain.DocumentGenerator
	catalog        domain.FormCatalog
	validate       *validator.Validate
	now            func() time.Time
}

// NewEvaluationUsecase creates a new evaluation usecase
func NewEvaluationUsecase(
	evaluationRepo domain.EvaluationRepository,
	agreementRepo domain.AgreementRepository,
	offerRepo domain.OfferRepository,
	userRepo domain.UserRepository,
	documents domain.DocumentGenerator,
	catalog domain.FormCatalog,
	validate *validator.Validate,
) domain.EvaluationUsecase {
	return &evaluationUsecase{
		evaluationRepo: evaluationRepo,
		agreementRepo:  agreementRepo,
		offerRepo:      offerRepo,
		userRepo:       userRepo,
		documents:      documents,
		catalog:        catalog,
		validate:       validate,
		now:            time.Now,
	}
}

// eligibleAgreement is the single eligibility rule: a validated agreement for the
// pair, the actor being its employer or its assigned instructor, and an instructor
// being assigned. Both IsEligible and creation go through it.
func (uc *evaluationUsecase) eligibleAgreement(ctx context.Context, actor domain.Actor, studentID, offerID int64) (*domain.Agreement, error) {
	ag, err := uc.agreementRepo.FindValidated(ctx, studentID, offerID)
	if err != nil {
		return nil, repoError(err, "No validated agreement exists for this student and offer")
	}
	switch actor.Role {
	case domain.RoleEmployer:
		if ag.EmployerID != actor.ID {
			return nil, apperror.Forbidden("You are not the employer of this internship")
		}
	case domain.RoleInstructor:
		if ag.InstructorID == nil || *ag.InstructorID != actor.ID {
			return nil, apperror.Forbidden("You are not the instructor assigned to this internship")
		}
	default:
		return nil, apperror.Forbidden("Only employers and instructors evaluate internships")
	}
	if ag.InstructorID == nil {
		return nil, apperror.NotFound("No instructor is assigned to this internship yet")
	}
	return ag, nil
}

func (uc *evaluationUsecase) IsEligible(ctx context.Context, actor domain.Actor, studentID, offerID int64) (bool, error) {
	_, err := uc.eligibleAgreement(ctx, actor, studentID, offerID)
	switch {
	case err == nil:
		return true, nil
	case apperror.IsKind(err, apperror.KindNotFound), apperror.IsKind(err, apperror.KindForbidden):
		return false, nil
	}
	return false, err
}

func (uc *evaluationUsecase) CreateByEmployer(ctx context.Context, employerID, studentID, offerID int64) (*domain.Evaluation, error) {
	return uc.create(ctx, domain.Actor{ID: employerID, Role: domain.RoleEmployer}, studentID, offerID)
}

func (uc *evaluationUsecase) CreateByInstructor(ctx context.Context, instructorID, studentID, offerID int64) (*domain.Evaluation, error) {
	return uc.create(ctx, domain.Actor{ID: instructorID, Role: domain.RoleInstructor}, studentID, offerID)
}

// create returns the pair's evaluation, creating it on first call. A creator whose
// side is already submitted is refused.
func (uc *evaluationUsecase) create(ctx context.Context, actor domain.Actor, studentID, offerID int64) (ev *domain.Evaluation, err error) {
	defer func() { metrics.RecordTransition("evaluation", "create_"+string(actor.Role), outcome(err)) }()

	side, _ := domain.SideForRole(actor.Role)
	ag, err := uc.eligibleAgreement(ctx, actor, studentID, offerID)
	if err != nil {
		return nil, err
	}

	if existing, err := uc.existing(ctx, side, studentID, offerID); err != nil || existing != nil {
		return existing, err
	}

	if _, err := uc.userRepo.GetByID(ctx, studentID); err != nil {
		return nil, repoError(err, "Student not found")
	}
	if _, err := uc.userRepo.GetByID(ctx, *ag.InstructorID); err != nil {
		return nil, repoError(err, "Instructor not found")
	}
	offer, err := uc.offerRepo.GetByID(ctx, offerID)
	if err != nil {
		return nil, repoError(err, "Offer not found")
	}
	if _, err := uc.userRepo.GetByID(ctx, offer.EmployerID); err != nil {
		return nil, repoError(err, "Employer not found")
	}

	ev = &domain.Evaluation{
		EmployerID:   offer.EmployerID,
		StudentID:    studentID,
		InstructorID: *ag.InstructorID,
		OfferID:      offerID,
		AgreementID:  ag.ID,
	}
	if err := uc.evaluationRepo.Create(ctx, ev); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			// Lost a creation race; the other creator's row is the evaluation.
			winner, err := uc.existing(ctx, side, studentID, offerID)
			if err == nil && winner == nil {
				return nil, apperror.Conflict(msgConcurrentUpdate)
			}
			return winner, err
		}
		return nil, apperror.Internal(err)
	}

	logger.Log.Info("Evaluation created",
		"protocol", "evaluation", "evaluation_id", ev.ID, "actor_id", actor.ID, "role", actor.Role,
		"student_id", studentID, "offer_id", offerID)
	return ev, nil
}

// existing returns the pair's evaluation if there is one, or nil.
func (uc *evaluationUsecase) existing(ctx context.Context, side domain.EvaluationSide, studentID, offerID int64) (*domain.Evaluation, error) {
	ev, err := uc.evaluationRepo.GetByStudentAndOffer(ctx, studentID, offerID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if ev.SubmittedBy(side) {
		return nil, apperror.InvalidState("Evaluation already complete for this role")
	}
	return ev, nil
}

func (uc *evaluationUsecase) SubmitByEmployer(ctx context.Context, employerID, evaluationID int64, form domain.EvaluationForm, locale string) (*domain.Evaluation, error) {
	return uc.submit(ctx, domain.EvaluationSideEmployer, employerID, evaluationID, form, locale)
}

func (uc *evaluationUsecase) SubmitByInstructor(ctx context.Context, instructorID, evaluationID int64, form domain.EvaluationForm, locale string) (*domain.Evaluation, error) {
	return uc.submit(ctx, domain.EvaluationSideInstructor, instructorID, evaluationID, form, locale)
}

// submit renders and records one side's evaluation exactly once.
func (uc *evaluationUsecase) submit(ctx context.Context, side domain.EvaluationSide, actorID, evaluationID int64, form domain.EvaluationForm, locale string) (ev *domain.Evaluation, err error) {
	defer func() { metrics.RecordTransition("evaluation", "submit_"+string(side), outcome(err)) }()

	lang := struct {
		Locale string `validate:"locale"`
	}{locale}
	if err := uc.validate.Struct(lang); err != nil {
		return nil, apperror.InvalidArgument(validation.Message(err))
	}
	if err := uc.validate.Struct(form); err != nil {
		return nil, apperror.InvalidArgument(validation.Message(err))
	}

	ev, err = uc.evaluationRepo.GetByID(ctx, evaluationID)
	if err != nil {
		return nil, repoError(err, "Evaluation not found")
	}
	if err := uc.requireEvaluator(ctx, ev, side, actorID); err != nil {
		return nil, err
	}
	if ev.SubmittedBy(side) {
		return nil, apperror.InvalidState("This evaluation has already been submitted")
	}
	if err := uc.catalog.Validate(side, form); err != nil {
		return nil, apperror.InvalidArgument(err.Error())
	}

	student, err := uc.userRepo.GetByID(ctx, ev.StudentID)
	if err != nil {
		return nil, repoError(err, "Student not found")
	}
	evaluator, err := uc.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, repoError(err, "Evaluator not found")
	}
	offer, err := uc.offerRepo.GetByID(ctx, ev.OfferID)
	if err != nil {
		return nil, repoError(err, "Offer not found")
	}

	path, err := uc.documents.GenerateEvaluation(ctx, domain.EvaluationDocument{
		Evaluation: ev,
		Side:       side,
		Student:    student,
		Evaluator:  evaluator,
		Offer:      offer,
		Form:       form,
		Locale:     domain.NormalizeLocale(locale),
	})
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("generate evaluation document: %w", err))
	}

	if err := ev.MarkSubmitted(side, path, uc.now()); err != nil {
		discard(ctx, uc.documents, path)
		return nil, apperror.InvalidState("This evaluation has already been submitted")
	}
	if err := uc.evaluationRepo.Update(ctx, ev); err != nil {
		discard(ctx, uc.documents, path)
		return nil, repoError(err, "Evaluation not found")
	}

	logger.Log.Info("Evaluation submitted",
		"protocol", "evaluation", "action", "submit", "side", side,
		"evaluation_id", ev.ID, "actor_id", actorID, "complete", ev.IsComplete())
	return ev, nil
}

// requireEvaluator checks the actor owns the side. The instructor side follows the
// agreement's current assignment and rebinds the evaluation to it.
func (uc *evaluationUsecase) requireEvaluator(ctx context.Context, ev *domain.Evaluation, side domain.EvaluationSide, actorID int64) error {
	if side == domain.EvaluationSideEmployer {
		if ev.EmployerID != actorID {
			return apperror.Forbidden("You are not the evaluator of this side")
		}
		return nil
	}
	ag, err := uc.agreementRepo.GetByID(ctx, ev.AgreementID)
	if err != nil {
		return repoError(err, "Agreement not found")
	}
	if ag.InstructorID == nil || *ag.InstructorID != actorID {
		return apperror.Forbidden("You are not the evaluator of this side")
	}
	ev.InstructorID = actorID
	return nil
}

// GetEligibleEvaluations lists, on every call, the validated agreements the actor
// evaluates together with the progress of the matching evaluation.
func (uc *evaluationUsecase) GetEligibleEvaluations(ctx context.Context, actor domain.Actor) ([]domain.EligibleEvaluation, error) {
	side, ok := domain.SideForRole(actor.Role)
	if !ok {
		return nil, apperror.Forbidden("Only employers and instructors evaluate internships")
	}
	filter := domain.AgreementFilter{Status: domain.AgreementStatusValidated}
	if side == domain.EvaluationSideEmployer {
		filter.EmployerID = actor.ID
	} else {
		filter.InstructorID = actor.ID
	}

	agreements, err := uc.agreementRepo.List(ctx, filter)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	out := make([]domain.EligibleEvaluation, 0, len(agreements))
	for _, ag := range agreements {
		item := domain.EligibleEvaluation{
			AgreementID:  ag.ID,
			StudentID:    ag.StudentID,
			OfferID:      ag.OfferID,
			EmployerID:   ag.EmployerID,
			InstructorID: ag.InstructorID,
			OfferTitle:   ag.OfferTitle,
		}
		ev, err := uc.evaluationRepo.GetByStudentAndOffer(ctx, ag.StudentID, ag.OfferID)
		switch {
		case err == nil:
			id := ev.ID
			item.EvaluationID = &id
			item.Exists = true
			item.SubmittedByMe = ev.SubmittedBy(side)
		case !errors.Is(err, domain.ErrNotFound):
			return nil, apperror.Internal(err)
		}
		out = append(out, item)
	}
	return out, nil
}

// Document returns one submitted side of an evaluation.
func (uc *evaluationUsecase) Document(ctx context.Context, actor domain.Actor, evaluationID int64, side domain.EvaluationSide) ([]byte, error) {
	if !side.Valid() {
		return nil, apperror.InvalidArgument(fmt.Sprintf("Unknown evaluation side %q", side))
	}
	ev, err := uc.evaluationRepo.GetByID(ctx, evaluationID)
	if err != nil {
		return nil, repoError(err, "Evaluation not found")
	}

	switch actor.Role {
	case domain.RoleManager:
	case domain.RoleEmployer:
		if ev.EmployerID != actor.ID {
			return nil, apperror.Forbidden("You don't have access to this evaluation")
		}
	case domain.RoleInstructor:
		if ev.InstructorID != actor.ID {
			return nil, apperror.Forbidden("You don't have access to this evaluation")
		}
	default:
		return nil, apperror.Forbidden("You don't have access to this evaluation")
	}

	path := ev.DocumentPath(side)
	if path == nil {
		return nil, apperror.NotFound("This side of the evaluation has not been submitted yet")
	}
	data, err := uc.documents.Read(ctx, *path)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperror.NotFound("Evaluation document not found")
		}
		return nil, apperror.Internal(err)
	}
	return data, nil
}
