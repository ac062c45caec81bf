package domain

import (
	"context"
	"time"
)

// ApplicationStatus is the accept/reject state of a candidature.
type ApplicationStatus string

const (
	ApplicationStatusPending            ApplicationStatus = "PENDING"
	ApplicationStatusAcceptedByEmployer ApplicationStatus = "ACCEPTED_BY_EMPLOYER"
	ApplicationStatusAccepted           ApplicationStatus = "ACCEPTED"
	ApplicationStatusRejected           ApplicationStatus = "REJECTED"
)

// IsTerminal reports whether no transition leaves the status.
func (s ApplicationStatus) IsTerminal() bool {
	return s == ApplicationStatusAccepted || s == ApplicationStatusRejected
}

// ApplicationAction is a decision an actor takes on an application.
type ApplicationAction string

const (
	ApplicationActionAccept ApplicationAction = "accept"
	ApplicationActionReject ApplicationAction = "reject"
)

// ApplicationEdge keys the transition table.
type ApplicationEdge struct {
	From   ApplicationStatus
	Action ApplicationAction
	Role   Role
}

// ApplicationTransitions is the complete set of legal status changes:
//
//	PENDING --employer accept--> ACCEPTED_BY_EMPLOYER --student accept--> ACCEPTED
//	PENDING --employer reject--> REJECTED
//	ACCEPTED_BY_EMPLOYER --student reject--> REJECTED
var ApplicationTransitions = map[ApplicationEdge]ApplicationStatus{
	{ApplicationStatusPending, ApplicationActionAccept, RoleEmployer}:           ApplicationStatusAcceptedByEmployer,
	{ApplicationStatusPending, ApplicationActionReject, RoleEmployer}:           ApplicationStatusRejected,
	{ApplicationStatusAcceptedByEmployer, ApplicationActionAccept, RoleStudent}: ApplicationStatusAccepted,
	{ApplicationStatusAcceptedByEmployer, ApplicationActionReject, RoleStudent}: ApplicationStatusRejected,
}

// NextApplicationStatus looks up the target of an edge.
func NextApplicationStatus(from ApplicationStatus, action ApplicationAction, role Role) (ApplicationStatus, bool) {
	to, ok := ApplicationTransitions[ApplicationEdge{From: from, Action: action, Role: role}]
	return to, ok
}

// Convocation is an interview invitation. It lives beside the status and never changes it.
type Convocation struct {
	ScheduledAt time.Time `json:"scheduled_at" validate:"required"`
	Location    string    `json:"location" validate:"required,not_blank,max=200"`
	Message     string    `json:"message" validate:"max=1000,no_emoji"`
}

// Application represents a student's candidature to an internship offer
type Application struct {
	ID          int64             `json:"id"`
	StudentID   int64             `json:"student_id"`
	OfferID     int64             `json:"offer_id"`
	CVID        int64             `json:"cv_id"`
	Status      ApplicationStatus `json:"status"`
	Convened    bool              `json:"convened"`
	Convocation *Convocation      `json:"convocation,omitempty"`
	AppliedAt   time.Time         `json:"applied_at"`
	UpdatedAt   time.Time         `json:"updated_at"`

	// Joined data for list responses
	OfferTitle  *string `json:"offer_title,omitempty"`
	StudentName *string `json:"student_name,omitempty"`
}

// CanBeConvened reports whether an interview may still be scheduled.
func (a *Application) CanBeConvened() bool {
	return !a.Status.IsTerminal()
}

// ApplicationRepository defines data access methods for applications
type ApplicationRepository interface {
	Create(ctx context.Context, app *Application) error
	GetByID(ctx context.Context, id int64) (*Application, error)
	GetByStudentAndOffer(ctx context.Context, studentID, offerID int64) (*Application, error)
	ListByStudent(ctx context.Context, studentID int64) ([]Application, error)
	ListByOffer(ctx context.Context, offerID int64) ([]Application, error)
	// UpdateStatus moves the application only if it is still in from.
	UpdateStatus(ctx context.Context, id int64, from, to ApplicationStatus) error
	SaveConvocation(ctx context.Context, id int64, conv Convocation) error
}

// ApplicationUsecase is the application acceptance protocol
type ApplicationUsecase interface {
	// Student operations
	Apply(ctx context.Context, studentID, offerID, cvID int64) (*Application, error)
	AcceptByStudent(ctx context.Context, studentID, applicationID int64) (*Application, error)
	RejectByStudent(ctx context.Context, studentID, applicationID int64) (*Application, error)
	GetMyApplications(ctx context.Context, studentID int64) ([]Application, error)

	// Employer operations
	AcceptByEmployer(ctx context.Context, employerID, applicationID int64) (*Application, error)
	RejectByEmployer(ctx context.Context, employerID, applicationID int64) (*Application, error)
	Convene(ctx context.Context, employerID, applicationID int64, conv Convocation) (*Application, error)
	ListByOffer(ctx context.Context, employerID, offerID int64) ([]Application, error)

	GetByID(ctx context.Context, actor Actor, applicationID int64) (*Application, error)
}
