package domain

import (
	"context"
	"errors"
	"time"
)

// EvaluationSide identifies which evaluator a submission belongs to.
type EvaluationSide string

const (
	EvaluationSideEmployer   EvaluationSide = "employer"
	EvaluationSideInstructor EvaluationSide = "instructor"
)

func (s EvaluationSide) Valid() bool {
	return s == EvaluationSideEmployer || s == EvaluationSideInstructor
}

// SideForRole maps an evaluator role to its side.
func SideForRole(r Role) (EvaluationSide, bool) {
	switch r {
	case RoleEmployer:
		return EvaluationSideEmployer, true
	case RoleInstructor:
		return EvaluationSideInstructor, true
	}
	return "", false
}

var ErrAlreadySubmitted = errors.New("evaluation already submitted for this side")

// Evaluation is the post-placement assessment of a student, filled independently
// by the employer and by the supervising instructor.
type Evaluation struct {
	ID                     int64      `json:"id"`
	EmployerID             int64      `json:"employer_id"`
	StudentID              int64      `json:"student_id"`
	InstructorID           int64      `json:"instructor_id"`
	OfferID                int64      `json:"offer_id"`
	AgreementID            int64      `json:"agreement_id"`
	SubmittedByEmployer    bool       `json:"submitted_by_employer"`
	SubmittedByInstructor  bool       `json:"submitted_by_instructor"`
	EmployerDocumentPath   *string    `json:"employer_document_path,omitempty"`
	InstructorDocumentPath *string    `json:"instructor_document_path,omitempty"`
	EmployerSubmittedAt    *time.Time `json:"employer_submitted_at,omitempty"`
	InstructorSubmittedAt  *time.Time `json:"instructor_submitted_at,omitempty"`
	EvaluationDate         time.Time  `json:"evaluation_date"`
	Version                int        `json:"version"`
}

func (e *Evaluation) SubmittedBy(side EvaluationSide) bool {
	if side == EvaluationSideInstructor {
		return e.SubmittedByInstructor
	}
	return e.SubmittedByEmployer
}

// DocumentPath returns the stored document of a side, or nil.
func (e *Evaluation) DocumentPath(side EvaluationSide) *string {
	if side == EvaluationSideInstructor {
		return e.InstructorDocumentPath
	}
	return e.EmployerDocumentPath
}

// MarkSubmitted records a side's document exactly once.
func (e *Evaluation) MarkSubmitted(side EvaluationSide, path string, at time.Time) error {
	if e.SubmittedBy(side) {
		return ErrAlreadySubmitted
	}
	stamp := at
	if side == EvaluationSideInstructor {
		e.SubmittedByInstructor = true
		e.InstructorDocumentPath = &path
		e.InstructorSubmittedAt = &stamp
	} else {
		e.SubmittedByEmployer = true
		e.EmployerDocumentPath = &path
		e.EmployerSubmittedAt = &stamp
	}
	return nil
}

// IsComplete reports whether both evaluators submitted.
func (e *Evaluation) IsComplete() bool {
	return e.SubmittedByEmployer && e.SubmittedByInstructor
}

// EvaluationForm is the filled questionnaire. Question and section ids come from the form catalog.
type EvaluationForm struct {
	Answers  map[string]int    `json:"answers" validate:"required,min=1"`
	Comments map[string]string `json:"comments" validate:"omitempty,dive,max=2000"`
	Summary  string            `json:"summary" validate:"max=4000,no_emoji"`
}

// EligibleEvaluation annotates a validated agreement with the caller's evaluation progress.
type EligibleEvaluation struct {
	AgreementID   int64   `json:"agreement_id"`
	StudentID     int64   `json:"student_id"`
	OfferID       int64   `json:"offer_id"`
	EmployerID    int64   `json:"employer_id"`
	InstructorID  *int64  `json:"instructor_id,omitempty"`
	OfferTitle    *string `json:"offer_title,omitempty"`
	EvaluationID  *int64  `json:"evaluation_id,omitempty"`
	Exists        bool    `json:"exists"`
	SubmittedByMe bool    `json:"submitted_by_me"`
}

// EvaluationRepository defines data access methods for evaluations
type EvaluationRepository interface {
	Create(ctx context.Context, ev *Evaluation) error
	GetByID(ctx context.Context, id int64) (*Evaluation, error)
	GetByStudentAndOffer(ctx context.Context, studentID, offerID int64) (*Evaluation, error)
	// Update persists ev if its version is current and bumps ev.Version.
	Update(ctx context.Context, ev *Evaluation) error
}

// FormCatalog validates filled forms against the questionnaire of a side.
type FormCatalog interface {
	Validate(side EvaluationSide, form EvaluationForm) error
}

// EvaluationUsecase is the evaluation eligibility and dual-submission protocol
type EvaluationUsecase interface {
	CreateByEmployer(ctx context.Context, employerID, studentID, offerID int64) (*Evaluation, error)
	CreateByInstructor(ctx context.Context, instructorID, studentID, offerID int64) (*Evaluation, error)
	IsEligible(ctx context.Context, actor Actor, studentID, offerID int64) (bool, error)
	SubmitByEmployer(ctx context.Context, employerID, evaluationID int64, form EvaluationForm, locale string) (*Evaluation, error)
	SubmitByInstructor(ctx context.Context, instructorID, evaluationID int64, form EvaluationForm, locale string) (*Evaluation, error)
	GetEligibleEvaluations(ctx context.Context, actor Actor) ([]EligibleEvaluation, error)
	Document(ctx context.Context, actor Actor, evaluationID int64, side EvaluationSide) ([]byte, error)
}
