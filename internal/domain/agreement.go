package domain

import (
	"context"
	"errors"
	"strings"
	"time"
)

// AgreementStatus is the lifecycle state of an internship agreement (entente de stage).
type AgreementStatus string

const (
	AgreementStatusDraft              AgreementStatus = "DRAFT"
	AgreementStatusAwaitingSignatures AgreementStatus = "AWAITING_SIGNATURES"
	AgreementStatusValidated          AgreementStatus = "VALIDATED"
)

// Party is one of the three signatories of an agreement.
type Party uint8

const (
	PartyStudent Party = 1 << iota
	PartyEmployer
	PartyManager
)

// AllParties is the signature set of a validated agreement.
const AllParties = SignatureSet(PartyStudent | PartyEmployer | PartyManager)

func (p Party) String() string {
	switch p {
	case PartyStudent:
		return "student"
	case PartyEmployer:
		return "employer"
	case PartyManager:
		return "manager"
	}
	return "unknown"
}

// SignatureSet records which parties have signed.
type SignatureSet uint8

func (s SignatureSet) Has(p Party) bool {
	return s&SignatureSet(p) != 0
}

func (s SignatureSet) With(p Party) SignatureSet {
	return s | SignatureSet(p)
}

func (s SignatureSet) Count() int {
	n := 0
	for _, p := range []Party{PartyStudent, PartyEmployer, PartyManager} {
		if s.Has(p) {
			n++
		}
	}
	return n
}

// IsComplete is the only place that decides whether everyone signed.
func (s SignatureSet) IsComplete() bool {
	return s&AllParties == AllParties
}

var ErrAlreadySigned = errors.New("party already signed")

// Agreement is the three-party internship contract bound to one accepted application.
type Agreement struct {
	ID               int64           `json:"id"`
	ApplicationID    int64           `json:"application_id"`
	InstructorID     *int64          `json:"instructor_id,omitempty"`
	ManagerID        *int64          `json:"manager_id,omitempty"`
	MissionText      string          `json:"mission_text"`
	StartDate        *time.Time      `json:"start_date,omitempty"`
	DurationWeeks    int             `json:"duration_weeks"`
	Location         string          `json:"location"`
	Compensation     *float64        `json:"compensation,omitempty"`
	WorkSchedule     *string         `json:"work_schedule,omitempty"`
	Status           AgreementStatus `json:"status"`
	DocumentPath     *string         `json:"document_path,omitempty"`
	StudentSignedAt  *time.Time      `json:"student_signed_at,omitempty"`
	EmployerSignedAt *time.Time      `json:"employer_signed_at,omitempty"`
	ManagerSignedAt  *time.Time      `json:"manager_signed_at,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	ModifiedAt       time.Time       `json:"modified_at"`
	Version          int             `json:"version"`

	// Joined from the application and its offer
	StudentID  int64   `json:"student_id"`
	OfferID    int64   `json:"offer_id"`
	EmployerID int64   `json:"employer_id"`
	OfferTitle *string `json:"offer_title,omitempty"`
}

func (a *Agreement) signedAtField(p Party) **time.Time {
	switch p {
	case PartyStudent:
		return &a.StudentSignedAt
	case PartyEmployer:
		return &a.EmployerSignedAt
	default:
		return &a.ManagerSignedAt
	}
}

// Signatures derives the signature set from the signed-at timestamps.
func (a *Agreement) Signatures() SignatureSet {
	var s SignatureSet
	for _, p := range []Party{PartyStudent, PartyEmployer, PartyManager} {
		if *a.signedAtField(p) != nil {
			s = s.With(p)
		}
	}
	return s
}

// SignedAt returns the signature time of p, or nil.
func (a *Agreement) SignedAt(p Party) *time.Time {
	return *a.signedAtField(p)
}

// RecordSignature stamps p's signature and re-evaluates completion.
// It does not check status or identity; callers guard those first.
func (a *Agreement) RecordSignature(p Party, at time.Time) error {
	field := a.signedAtField(p)
	if *field != nil {
		return ErrAlreadySigned
	}
	stamp := at
	*field = &stamp
	if a.Signatures().IsComplete() {
		a.Status = AgreementStatusValidated
	}
	return nil
}

// MissingMandatoryFields lists what must be filled before a document can be generated.
func (a *Agreement) MissingMandatoryFields() []string {
	var missing []string
	if strings.TrimSpace(a.MissionText) == "" {
		missing = append(missing, "mission_text")
	}
	if a.StartDate == nil || a.StartDate.IsZero() {
		missing = append(missing, "start_date")
	}
	if a.DurationWeeks < 1 {
		missing = append(missing, "duration_weeks")
	}
	return missing
}

// AgreementDraft is the input of agreement creation.
type AgreementDraft struct {
	ApplicationID int64      `json:"application_id" validate:"required,gt=0"`
	MissionText   string     `json:"mission_text" validate:"required,not_blank,max=4000,no_emoji"`
	StartDate     *time.Time `json:"start_date" validate:"required"`
	DurationWeeks int        `json:"duration_weeks" validate:"min=1,max=104"`
	Location      string     `json:"location" validate:"max=200"`
	Compensation  *float64   `json:"compensation" validate:"omitempty,gte=0"`
	WorkSchedule  *string    `json:"work_schedule" validate:"omitempty,max=500"`
}

// AgreementPatch carries the fields a manager may change while the agreement is a draft.
type AgreementPatch struct {
	MissionText   *string    `json:"mission_text" validate:"omitempty,not_blank,max=4000,no_emoji"`
	StartDate     *time.Time `json:"start_date"`
	DurationWeeks *int       `json:"duration_weeks" validate:"omitempty,min=1,max=104"`
	Location      *string    `json:"location" validate:"omitempty,max=200"`
	Compensation  *float64   `json:"compensation" validate:"omitempty,gte=0"`
	WorkSchedule  *string    `json:"work_schedule" validate:"omitempty,max=500"`
}

// Apply copies the non-nil fields onto a.
func (p AgreementPatch) Apply(a *Agreement) {
	if p.MissionText != nil {
		a.MissionText = *p.MissionText
	}
	if p.StartDate != nil {
		a.StartDate = p.StartDate
	}
	if p.DurationWeeks != nil {
		a.DurationWeeks = *p.DurationWeeks
	}
	if p.Location != nil {
		a.Location = *p.Location
	}
	if p.Compensation != nil {
		a.Compensation = p.Compensation
	}
	if p.WorkSchedule != nil {
		a.WorkSchedule = p.WorkSchedule
	}
}

// AgreementFilter narrows agreement listings. Zero values mean "any".
type AgreementFilter struct {
	Status       AgreementStatus
	StudentID    int64
	EmployerID   int64
	InstructorID int64
}

// AgreementRepository defines data access methods for agreements
type AgreementRepository interface {
	Create(ctx context.Context, ag *Agreement) error
	GetByID(ctx context.Context, id int64) (*Agreement, error)
	GetByApplicationID(ctx context.Context, applicationID int64) (*Agreement, error)
	// FindValidated returns the validated agreement binding student and offer.
	FindValidated(ctx context.Context, studentID, offerID int64) (*Agreement, error)
	List(ctx context.Context, filter AgreementFilter) ([]Agreement, error)
	// Update persists ag if its version is current and bumps ag.Version.
	Update(ctx context.Context, ag *Agreement) error
	Delete(ctx context.Context, id int64, version int) error
}

// AgreementUsecase is the agreement multi-party signature protocol
type AgreementUsecase interface {
	// Manager operations
	Create(ctx context.Context, managerID int64, draft AgreementDraft) (*Agreement, error)
	Update(ctx context.Context, managerID, agreementID int64, patch AgreementPatch) (*Agreement, error)
	Delete(ctx context.Context, managerID, agreementID int64) error
	ValidateAndGenerate(ctx context.Context, managerID, agreementID int64) (*Agreement, error)
	AssignInstructor(ctx context.Context, managerID, agreementID, instructorID int64) (*Agreement, error)
	ListAll(ctx context.Context, status AgreementStatus) ([]Agreement, error)
	Export(ctx context.Context, status AgreementStatus) ([]byte, string, error)

	// Signatures
	SignAsStudent(ctx context.Context, studentID, agreementID int64) (*Agreement, error)
	SignAsEmployer(ctx context.Context, employerID, agreementID int64) (*Agreement, error)
	SignAsManager(ctx context.Context, managerID, agreementID int64) (*Agreement, error)

	// Shared reads
	GetByID(ctx context.Context, actor Actor, agreementID int64) (*Agreement, error)
	ListForActor(ctx context.Context, actor Actor) ([]Agreement, error)
	Document(ctx context.Context, actor Actor, agreementID int64) ([]byte, error)
}
