package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/rilesCL/Projet-Leandrose-sub000/internal/domain"
	"github.com/rilesCL/Projet-Leandrose-sub000/pkg/apperror"
	"github.com/rilesCL/Projet-Leandrose-sub000/pkg/logger"
	"github.com/rilesCL/Projet-Leandrose-sub000/pkg/metrics"
	"github.com/rilesCL/Projet-Leandrose-sub000/pkg/validation"
)

type applicationUsecase struct {
	applicationRepo domain.ApplicationRepository
	offerRepo       domain.OfferRepository
	cvRepo          domain.CVRepository
	userRepo        domain.UserRepository
	validate        *validator.Validate
}

// NewApplicationUsecase creates a new application usecase
func NewApplicationUsecase(
	appRepo domain.ApplicationRepository,
	offerRepo domain.OfferRepository,
	cvRepo domain.CVRepository,
	userRepo domain.UserRepository,
	validate *validator.Validate,
) domain.ApplicationUsecase {
	return &applicationUsecase{
		applicationRepo: appRepo,
		offerRepo:       offerRepo,
		cvRepo:          cvRepo,
		userRepo:        userRepo,
		validate:        validate,
	}
}

// Apply creates a pending application of a student to a published offer with an approved CV
func (uc *applicationUsecase) Apply(ctx context.Context, studentID, offerID, cvID int64) (*domain.Application, error) {
	// 1. Resolve every referenced entity
	student, err := uc.userRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, repoError(err, "Student not found")
	}
	if student.Role != domain.RoleStudent {
		return nil, apperror.Forbidden("Only students can apply to offers")
	}
	offer, err := uc.offerRepo.GetByID(ctx, offerID)
	if err != nil {
		return nil, repoError(err, "Offer not found")
	}
	cv, err := uc.cvRepo.GetByID(ctx, cvID)
	if err != nil {
		return nil, repoError(err, "CV not found")
	}
	if cv.StudentID != studentID {
		return nil, apperror.Forbidden("This CV does not belong to you")
	}

	// 2. Check for duplicate application
	existing, err := uc.applicationRepo.GetByStudentAndOffer(ctx, studentID, offerID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.Internal(err)
	}
	if existing != nil {
		return nil, apperror.Conflict("You have already applied to this offer")
	}

	// 3. Offer and CV must be approved
	if !offer.IsPublished() {
		return nil, apperror.InvalidState("Cannot apply to an offer that is not published")
	}
	if cv.Status != domain.CVStatusApproved {
		return nil, apperror.InvalidState("Your CV must be approved before applying")
	}

	app := &domain.Application{
		StudentID: studentID,
		OfferID:   offerID,
		CVID:      cvID,
		Status:    domain.ApplicationStatusPending,
	}
	if err := uc.applicationRepo.Create(ctx, app); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, apperror.Conflict("You have already applied to this offer")
		}
		return nil, apperror.Internal(err)
	}

	title := offer.Title
	app.OfferTitle = &title
	logger.Log.Info("Application created",
		"protocol", "application", "application_id", app.ID, "student_id", studentID, "offer_id", offerID)
	metrics.RecordTransition("application", "apply", "ok")
	return app, nil
}

func (uc *applicationUsecase) AcceptByStudent(ctx context.Context, studentID, applicationID int64) (*domain.Application, error) {
	return uc.transition(ctx, domain.Actor{ID: studentID, Role: domain.RoleStudent}, applicationID, domain.ApplicationActionAccept)
}

func (uc *applicationUsecase) RejectByStudent(ctx context.Context, studentID, applicationID int64) (*domain.Application, error) {
	return uc.transition(ctx, domain.Actor{ID: studentID, Role: domain.RoleStudent}, applicationID, domain.ApplicationActionReject)
}

func (uc *applicationUsecase) AcceptByEmployer(ctx context.Context, employerID, applicationID int64) (*domain.Application, error) {
	return uc.transition(ctx, domain.Actor{ID: employerID, Role: domain.RoleEmployer}, applicationID, domain.ApplicationActionAccept)
}

func (uc *applicationUsecase) RejectByEmployer(ctx context.Context, employerID, applicationID int64) (*domain.Application, error) {
	return uc.transition(ctx, domain.Actor{ID: employerID, Role: domain.RoleEmployer}, applicationID, domain.ApplicationActionReject)
}

// transition applies one edge of the transition table on behalf of actor.
func (uc *applicationUsecase) transition(ctx context.Context, actor domain.Actor, applicationID int64, action domain.ApplicationAction) (app *domain.Application, err error) {
	defer func() {
		metrics.RecordTransition("application", string(actor.Role)+"_"+string(action), outcome(err))
	}()

	app, err = uc.applicationRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, repoError(err, "Application not found")
	}
	if err := uc.checkParty(ctx, actor, app); err != nil {
		return nil, err
	}

	to, ok := domain.NextApplicationStatus(app.Status, action, actor.Role)
	if !ok {
		return nil, apperror.InvalidState(fmt.Sprintf("Cannot %s an application with status %s", action, app.Status))
	}
	if err := uc.applicationRepo.UpdateStatus(ctx, app.ID, app.Status, to); err != nil {
		return nil, repoError(err, "Application not found")
	}

	logger.Log.Info("Application status changed",
		"protocol", "application",
		"action", action,
		"application_id", app.ID,
		"actor_id", actor.ID,
		"role", actor.Role,
		"from", app.Status,
		"to", to,
	)
	app.Status = to
	return app, nil
}

// checkParty verifies the actor is the student who applied or the employer who owns the offer.
func (uc *applicationUsecase) checkParty(ctx context.Context, actor domain.Actor, app *domain.Application) error {
	switch actor.Role {
	case domain.RoleStudent:
		if app.StudentID != actor.ID {
			return apperror.Forbidden("You can only act on your own applications")
		}
		return nil
	case domain.RoleEmployer:
		return uc.validateOfferOwnership(ctx, actor.ID, app.OfferID)
	}
	return apperror.Forbidden("Role not allowed to act on applications")
}

// Convene records an interview convocation. It never changes the accept/reject status.
func (uc *applicationUsecase) Convene(ctx context.Context, employerID, applicationID int64, conv domain.Convocation) (*domain.Application, error) {
	if err := uc.validate.Struct(conv); err != nil {
		return nil, apperror.InvalidArgument(validation.Message(err))
	}
	if conv.ScheduledAt.IsZero() || strings.TrimSpace(conv.Location) == "" {
		return nil, apperror.InvalidArgument("Convocation date and location are required")
	}

	app, err := uc.applicationRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, repoError(err, "Application not found")
	}
	if err := uc.validateOfferOwnership(ctx, employerID, app.OfferID); err != nil {
		return nil, err
	}
	if !app.CanBeConvened() {
		return nil, apperror.InvalidState(fmt.Sprintf("Cannot convene a candidate whose application is %s", app.Status))
	}

	if err := uc.applicationRepo.SaveConvocation(ctx, app.ID, conv); err != nil {
		return nil, repoError(err, "Application not found")
	}
	app.Convened = true
	app.Convocation = &conv

	logger.Log.Info("Candidate convened",
		"protocol", "application", "application_id", app.ID, "actor_id", employerID, "scheduled_at", conv.ScheduledAt)
	metrics.RecordTransition("application", "convene", "ok")
	return app, nil
}

// GetMyApplications returns all applications for the current student
func (uc *applicationUsecase) GetMyApplications(ctx context.Context, studentID int64) ([]domain.Application, error) {
	apps, err := uc.applicationRepo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return apps, nil
}

// ListByOffer returns all applications for an offer (employer only, validated by ownership)
func (uc *applicationUsecase) ListByOffer(ctx context.Context, employerID, offerID int64) ([]domain.Application, error) {
	if err := uc.validateOfferOwnership(ctx, employerID, offerID); err != nil {
		return nil, err
	}
	apps, err := uc.applicationRepo.ListByOffer(ctx, offerID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return apps, nil
}

// GetByID is visible to the applicant, the offer's employer and managers.
func (uc *applicationUsecase) GetByID(ctx context.Context, actor domain.Actor, applicationID int64) (*domain.Application, error) {
	app, err := uc.applicationRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, repoError(err, "Application not found")
	}
	if actor.Role == domain.RoleManager {
		return app, nil
	}
	if err := uc.checkParty(ctx, actor, app); err != nil {
		return nil, err
	}
	return app, nil
}

func (uc *applicationUsecase) validateOfferOwnership(ctx context.Context, employerID, offerID int64) error {
	offer, err := uc.offerRepo.GetByID(ctx, offerID)
	if err != nil {
		return repoError(err, "Offer not found")
	}
	if offer.EmployerID != employerID {
		return apperror.Forbidden("You don't have access to this offer")
	}
	return nil
}
