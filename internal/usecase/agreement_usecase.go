package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/rilesCL/Projet-Leandrose-sub000/internal/domain"
	"github.com/rilesCL/Projet-Leandrose-sub000/pkg/apperror"
	"github.com/rilesCL/Projet-Leandrose-sub000/pkg/logger"
	"github.com/rilesCL/Projet-Leandrose-sub000/pkg/metrics"
	"github.com/rilesCL/Projet-Leandrose-sub000/pkg/storage"
	"github.com/rilesCL/Projet-Leandrose-sub000/pkg/validation"
)

type agreementUsecase struct {
	agreementRepo   domain.AgreementRepository
	applicationRepo domain.ApplicationRepository
	evaluationRepo  domain.EvaluationRepository
	offerRepo       domain.OfferRepository
	userRepo        domain.UserRepository
	documents       domain.DocumentGenerator
	notifier        domain.Notifier
	validate        *validator.Validate
	now             func() time.Time
}

// NewAgreementUsecase creates a new agreement usecase
func NewAgreementUsecase(
	agreementRepo domain.AgreementRepository,
	applicationRepo domain.ApplicationRepository,
	evaluationRepo domain.EvaluationRepository,
	offerRepo domain.OfferRepository,
	userRepo domain.UserRepository,
	documents domain.DocumentGenerator,
	notifier domain.Notifier,
	validate *validator.Validate,
) domain.AgreementUsecase {
	return &agreementUsecase{
		agreementRepo:   agreementRepo,
		applicationRepo: applicationRepo,
		evaluationRepo:  evaluationRepo,
		offerRepo:       offerRepo,
		userRepo:        userRepo,
		documents:       documents,
		notifier:        notifier,
		validate:        validate,
		now:             time.Now,
	}
}

func (uc *agreementUsecase) load(ctx context.Context, agreementID int64) (*domain.Agreement, error) {
	ag, err := uc.agreementRepo.GetByID(ctx, agreementID)
	if err != nil {
		return nil, repoError(err, "Agreement not found")
	}
	return ag, nil
}

func (uc *agreementUsecase) requireManager(ctx context.Context, managerID int64) error {
	manager, err := uc.userRepo.GetByID(ctx, managerID)
	if err != nil {
		return repoError(err, "Manager not found")
	}
	if manager.Role != domain.RoleManager {
		return apperror.Forbidden("Only managers can perform this action")
	}
	return nil
}

// Create drafts the agreement of an application both parties accepted
func (uc *agreementUsecase) Create(ctx context.Context, managerID int64, draft domain.AgreementDraft) (*domain.Agreement, error) {
	if err := uc.validate.Struct(draft); err != nil {
		return nil, apperror.InvalidArgument(validation.Message(err))
	}
	if err := uc.requireManager(ctx, managerID); err != nil {
		return nil, err
	}

	app, err := uc.applicationRepo.GetByID(ctx, draft.ApplicationID)
	if err != nil {
		return nil, repoError(err, "Application not found")
	}
	if _, err := uc.agreementRepo.GetByApplicationID(ctx, app.ID); err == nil {
		return nil, apperror.Conflict("An agreement already exists for this application")
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.Internal(err)
	}
	if app.Status != domain.ApplicationStatusAccepted {
		return nil, apperror.InvalidState(fmt.Sprintf("Cannot create an agreement for an application with status %s", app.Status))
	}

	ag := &domain.Agreement{
		ApplicationID: app.ID,
		ManagerID:     &managerID,
		MissionText:   strings.TrimSpace(draft.MissionText),
		StartDate:     draft.StartDate,
		DurationWeeks: draft.DurationWeeks,
		Location:      strings.TrimSpace(draft.Location),
		Compensation:  draft.Compensation,
		WorkSchedule:  draft.WorkSchedule,
		Status:        domain.AgreementStatusDraft,
	}
	if err := uc.agreementRepo.Create(ctx, ag); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, apperror.Conflict("An agreement already exists for this application")
		}
		return nil, apperror.Internal(err)
	}

	logger.Log.Info("Agreement drafted",
		"protocol", "agreement", "agreement_id", ag.ID, "application_id", app.ID, "actor_id", managerID)
	metrics.RecordTransition("agreement", "create", "ok")
	return ag, nil
}

// Update edits a draft
func (uc *agreementUsecase) Update(ctx context.Context, managerID, agreementID int64, patch domain.AgreementPatch) (*domain.Agreement, error) {
	if err := uc.validate.Struct(patch); err != nil {
		return nil, apperror.InvalidArgument(validation.Message(err))
	}
	if err := uc.requireManager(ctx, managerID); err != nil {
		return nil, err
	}
	ag, err := uc.load(ctx, agreementID)
	if err != nil {
		return nil, err
	}
	if ag.Status != domain.AgreementStatusDraft {
		return nil, apperror.InvalidState("Only draft agreements can be modified")
	}

	patch.Apply(ag)
	// The patched agreement must still satisfy every creation rule.
	if err := uc.validate.Struct(draftOf(ag)); err != nil {
		return nil, apperror.InvalidArgument(validation.Message(err))
	}
	if err := uc.agreementRepo.Update(ctx, ag); err != nil {
		return nil, repoError(err, "Agreement not found")
	}
	logger.Log.Info("Agreement updated", "protocol", "agreement", "agreement_id", ag.ID, "actor_id", managerID)
	return ag, nil
}

// Delete removes a draft
func (uc *agreementUsecase) Delete(ctx context.Context, managerID, agreementID int64) error {
	if err := uc.requireManager(ctx, managerID); err != nil {
		return err
	}
	ag, err := uc.load(ctx, agreementID)
	if err != nil {
		return err
	}
	if ag.Status != domain.AgreementStatusDraft {
		return apperror.InvalidState("Only draft agreements can be deleted")
	}
	if err := uc.agreementRepo.Delete(ctx, ag.ID, ag.Version); err != nil {
		return repoError(err, "Agreement not found")
	}
	logger.Log.Info("Agreement deleted", "protocol", "agreement", "agreement_id", ag.ID, "actor_id", managerID)
	metrics.RecordTransition("agreement", "delete", "ok")
	return nil
}

// ValidateAndGenerate freezes a complete draft, renders its document and opens it for signatures
func (uc *agreementUsecase) ValidateAndGenerate(ctx context.Context, managerID, agreementID int64) (ag *domain.Agreement, err error) {
	defer func() { metrics.RecordTransition("agreement", "validate", outcome(err)) }()

	if err := uc.requireManager(ctx, managerID); err != nil {
		return nil, err
	}
	ag, err = uc.load(ctx, agreementID)
	if err != nil {
		return nil, err
	}
	if ag.Status != domain.AgreementStatusDraft {
		return nil, apperror.InvalidState("Only draft agreements can be validated")
	}
	if missing := ag.MissingMandatoryFields(); len(missing) > 0 {
		return nil, apperror.InvalidArgument("Missing mandatory fields: " + strings.Join(missing, ", "))
	}

	doc, err := uc.documentData(ctx, ag)
	if err != nil {
		return nil, err
	}
	path, err := uc.documents.GenerateAgreement(ctx, doc)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("generate agreement document: %w", err))
	}

	ag.DocumentPath = &path
	ag.Status = domain.AgreementStatusAwaitingSignatures
	if err := uc.agreementRepo.Update(ctx, ag); err != nil {
		discard(ctx, uc.documents, path)
		return nil, repoError(err, "Agreement not found")
	}

	logger.Log.Info("Agreement awaiting signatures",
		"protocol", "agreement", "action", "validate", "agreement_id", ag.ID, "actor_id", managerID, "document", path)
	uc.notify(ctx, ag, "awaiting_signatures", ag.StudentID, ag.EmployerID)
	return ag, nil
}

func draftOf(ag *domain.Agreement) domain.AgreementDraft {
	return domain.AgreementDraft{
		ApplicationID: ag.ApplicationID,
		MissionText:   ag.MissionText,
		StartDate:     ag.StartDate,
		DurationWeeks: ag.DurationWeeks,
		Location:      ag.Location,
		Compensation:  ag.Compensation,
		WorkSchedule:  ag.WorkSchedule,
	}
}

func (uc *agreementUsecase) documentData(ctx context.Context, ag *domain.Agreement) (domain.AgreementDocument, error) {
	student, err := uc.userRepo.GetByID(ctx, ag.StudentID)
	if err != nil {
		return domain.AgreementDocument{}, repoError(err, "Student not found")
	}
	employer, err := uc.userRepo.GetByID(ctx, ag.EmployerID)
	if err != nil {
		return domain.AgreementDocument{}, repoError(err, "Employer not found")
	}
	offer, err := uc.offerRepo.GetByID(ctx, ag.OfferID)
	if err != nil {
		return domain.AgreementDocument{}, repoError(err, "Offer not found")
	}
	return domain.AgreementDocument{
		Agreement: ag,
		Student:   student,
		Employer:  employer,
		Offer:     offer,
		Locale:    domain.LocaleFrench,
	}, nil
}

// AssignInstructor sets the academic supervisor once the draft is closed
func (uc *agreementUsecase) AssignInstructor(ctx context.Context, managerID, agreementID, instructorID int64) (*domain.Agreement, error) {
	if err := uc.requireManager(ctx, managerID); err != nil {
		return nil, err
	}
	ag, err := uc.load(ctx, agreementID)
	if err != nil {
		return nil, err
	}
	if ag.Status == domain.AgreementStatusDraft {
		return nil, apperror.InvalidState("An instructor can only be assigned once the agreement is validated")
	}
	instructor, err := uc.userRepo.GetByID(ctx, instructorID)
	if err != nil {
		return nil, repoError(err, "Instructor not found")
	}
	if instructor.Role != domain.RoleInstructor {
		return nil, apperror.InvalidArgument("The assigned user is not an instructor")
	}
	if ag.InstructorID != nil && *ag.InstructorID != instructorID {
		// An open evaluation is bound to the instructor who was eligible when it was created.
		_, err := uc.evaluationRepo.GetByStudentAndOffer(ctx, ag.StudentID, ag.OfferID)
		switch {
		case err == nil:
			return nil, apperror.InvalidState("The instructor cannot change once an evaluation has started")
		case !errors.Is(err, domain.ErrNotFound):
			return nil, apperror.Internal(err)
		}
	}

	ag.InstructorID = &instructorID
	if err := uc.agreementRepo.Update(ctx, ag); err != nil {
		return nil, repoError(err, "Agreement not found")
	}
	logger.Log.Info("Instructor assigned",
		"protocol", "agreement", "agreement_id", ag.ID, "actor_id", managerID, "instructor_id", instructorID)
	metrics.RecordTransition("agreement", "assign_instructor", "ok")
	return ag, nil
}

func (uc *agreementUsecase) SignAsStudent(ctx context.Context, studentID, agreementID int64) (*domain.Agreement, error) {
	return uc.sign(ctx, domain.PartyStudent, studentID, agreementID)
}

func (uc *agreementUsecase) SignAsEmployer(ctx context.Context, employerID, agreementID int64) (*domain.Agreement, error) {
	return uc.sign(ctx, domain.PartyEmployer, employerID, agreementID)
}

func (uc *agreementUsecase) SignAsManager(ctx context.Context, managerID, agreementID int64) (*domain.Agreement, error) {
	return uc.sign(ctx, domain.PartyManager, managerID, agreementID)
}

// sign records one party's signature. Completion is re-derived from the full
// signature set after every write, so the order of signatures is irrelevant.
func (uc *agreementUsecase) sign(ctx context.Context, party domain.Party, actorID, agreementID int64) (ag *domain.Agreement, err error) {
	defer func() { metrics.RecordTransition("agreement", "sign_"+party.String(), outcome(err)) }()

	ag, err = uc.load(ctx, agreementID)
	if err != nil {
		return nil, err
	}
	if ag.Status != domain.AgreementStatusAwaitingSignatures {
		return nil, apperror.InvalidState(fmt.Sprintf("Agreement is %s and cannot be signed", ag.Status))
	}
	if err := uc.checkSigner(ctx, party, actorID, ag); err != nil {
		return nil, err
	}

	if err := ag.RecordSignature(party, uc.now()); err != nil {
		if errors.Is(err, domain.ErrAlreadySigned) {
			return nil, apperror.InvalidState(fmt.Sprintf("The %s has already signed this agreement", party))
		}
		return nil, apperror.Internal(err)
	}
	if party == domain.PartyManager {
		ag.ManagerID = &actorID
	}
	if err := uc.agreementRepo.Update(ctx, ag); err != nil {
		return nil, repoError(err, "Agreement not found")
	}

	logger.Log.Info("Agreement signed",
		"protocol", "agreement",
		"action", "sign",
		"party", party.String(),
		"agreement_id", ag.ID,
		"actor_id", actorID,
		"signatures", ag.Signatures().Count(),
	)
	if ag.Status == domain.AgreementStatusValidated {
		logger.Log.Info("Agreement validated", "protocol", "agreement", "agreement_id", ag.ID)
		metrics.RecordTransition("agreement", "complete", "ok")
		recipients := []int64{ag.StudentID, ag.EmployerID}
		if ag.ManagerID != nil {
			recipients = append(recipients, *ag.ManagerID)
		}
		if ag.InstructorID != nil {
			recipients = append(recipients, *ag.InstructorID)
		}
		uc.notify(ctx, ag, "validated", recipients...)
	}
	return ag, nil
}

func (uc *agreementUsecase) checkSigner(ctx context.Context, party domain.Party, actorID int64, ag *domain.Agreement) error {
	switch party {
	case domain.PartyStudent:
		if ag.StudentID != actorID {
			return apperror.Forbidden("Only the student of this agreement can sign as student")
		}
	case domain.PartyEmployer:
		if ag.EmployerID != actorID {
			return apperror.Forbidden("Only the employer of this agreement can sign as employer")
		}
	case domain.PartyManager:
		return uc.requireManager(ctx, actorID)
	}
	return nil
}

// notify is best effort: failures are logged and never undo the transition.
func (uc *agreementUsecase) notify(ctx context.Context, ag *domain.Agreement, event string, userIDs ...int64) {
	if uc.notifier == nil {
		return
	}
	users, err := uc.userRepo.ListByIDs(ctx, userIDs)
	if err != nil {
		logger.Log.Warn("Failed to resolve notification recipients", "agreement_id", ag.ID, "error", err)
		return
	}
	switch event {
	case "awaiting_signatures":
		err = uc.notifier.AgreementAwaitingSignatures(ctx, ag, users)
	case "validated":
		err = uc.notifier.AgreementValidated(ctx, ag, users)
	}
	if err != nil {
		logger.Log.Warn("Failed to send agreement notification", "agreement_id", ag.ID, "event", event, "error", err)
	}
}

// GetByID is visible to the agreement's parties, its instructor and managers.
func (uc *agreementUsecase) GetByID(ctx context.Context, actor domain.Actor, agreementID int64) (*domain.Agreement, error) {
	ag, err := uc.load(ctx, agreementID)
	if err != nil {
		return nil, err
	}
	if !canView(actor, ag) {
		return nil, apperror.Forbidden("You don't have access to this agreement")
	}
	return ag, nil
}

func canView(actor domain.Actor, ag *domain.Agreement) bool {
	switch actor.Role {
	case domain.RoleManager:
		return true
	case domain.RoleStudent:
		return ag.StudentID == actor.ID
	case domain.RoleEmployer:
		return ag.EmployerID == actor.ID
	case domain.RoleInstructor:
		return ag.InstructorID != nil && *ag.InstructorID == actor.ID
	}
	return false
}

// ListForActor returns the agreements the actor takes part in. Managers see all.
func (uc *agreementUsecase) ListForActor(ctx context.Context, actor domain.Actor) ([]domain.Agreement, error) {
	var filter domain.AgreementFilter
	switch actor.Role {
	case domain.RoleManager:
	case domain.RoleStudent:
		filter.StudentID = actor.ID
	case domain.RoleEmployer:
		filter.EmployerID = actor.ID
	case domain.RoleInstructor:
		filter.InstructorID = actor.ID
	default:
		return nil, apperror.Forbidden("Role not allowed to list agreements")
	}
	list, err := uc.agreementRepo.List(ctx, filter)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return list, nil
}

func validStatusFilter(status domain.AgreementStatus) bool {
	switch status {
	case "", domain.AgreementStatusDraft, domain.AgreementStatusAwaitingSignatures, domain.AgreementStatusValidated:
		return true
	}
	return false
}

// ListAll returns every agreement, optionally narrowed to one status
func (uc *agreementUsecase) ListAll(ctx context.Context, status domain.AgreementStatus) ([]domain.Agreement, error) {
	if !validStatusFilter(status) {
		return nil, apperror.InvalidArgument(fmt.Sprintf("Unknown agreement status %q", status))
	}
	list, err := uc.agreementRepo.List(ctx, domain.AgreementFilter{Status: status})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return list, nil
}

// Document returns the stored agreement PDF
func (uc *agreementUsecase) Document(ctx context.Context, actor domain.Actor, agreementID int64) ([]byte, error) {
	ag, err := uc.GetByID(ctx, actor, agreementID)
	if err != nil {
		return nil, err
	}
	if ag.DocumentPath == nil {
		return nil, apperror.NotFound("The agreement document has not been generated yet")
	}
	data, err := uc.documents.Read(ctx, *ag.DocumentPath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperror.NotFound("Agreement document not found")
		}
		return nil, apperror.Internal(err)
	}
	return data, nil
}
