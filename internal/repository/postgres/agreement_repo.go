package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/rilesCL/Projet-Leandrose-sub000/internal/domain"
)

type agreementRepo struct {
	db DBTX
}

// NewAgreementRepository creates a new agreement repository
func NewAgreementRepository(db DBTX) domain.AgreementRepository {
	return &agreementRepo{db: db}
}

const agreementSelect = `
		SELECT
			ag.id, ag.application_id, ag.instructor_id, ag.manager_id, ag.mission_text,
			ag.start_date, ag.duration_weeks, ag.location, ag.compensation, ag.work_schedule,
			ag.status, ag.document_path,
			ag.student_signed_at, ag.employer_signed_at, ag.manager_signed_at,
			ag.created_at, ag.modified_at, ag.version,
			a.student_id, a.offer_id, o.employer_id, o.title
		FROM agreements ag
		JOIN applications a ON ag.application_id = a.id
		JOIN offers o ON a.offer_id = o.id`

func scanAgreement(row pgx.Row) (*domain.Agreement, error) {
	var ag domain.Agreement
	err := row.Scan(
		&ag.ID, &ag.ApplicationID, &ag.InstructorID, &ag.ManagerID, &ag.MissionText,
		&ag.StartDate, &ag.DurationWeeks, &ag.Location, &ag.Compensation, &ag.WorkSchedule,
		&ag.Status, &ag.DocumentPath,
		&ag.StudentSignedAt, &ag.EmployerSignedAt, &ag.ManagerSignedAt,
		&ag.CreatedAt, &ag.ModifiedAt, &ag.Version,
		&ag.StudentID, &ag.OfferID, &ag.EmployerID, &ag.OfferTitle,
	)
	if err != nil {
		return nil, err
	}
	return &ag, nil
}

func (r *agreementRepo) Create(ctx context.Context, ag *domain.Agreement) error {
	query := `
		INSERT INTO agreements (
			application_id, instructor_id, manager_id, mission_text, start_date, duration_weeks,
			location, compensation, work_schedule, status, created_at, modified_at, version
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11, 1)
		RETURNING id`

	now := time.Now()
	if ag.Status == "" {
		ag.Status = domain.AgreementStatusDraft
	}
	err := r.db.QueryRow(ctx, query,
		ag.ApplicationID, ag.InstructorID, ag.ManagerID, ag.MissionText, ag.StartDate, ag.DurationWeeks,
		ag.Location, ag.Compensation, ag.WorkSchedule, ag.Status, now,
	).Scan(&ag.ID)
	if err != nil {
		return translate(err)
	}
	ag.CreatedAt = now
	ag.ModifiedAt = now
	ag.Version = 1

	// Fill the joined fields so callers see the same shape as GetByID.
	stored, err := r.GetByID(ctx, ag.ID)
	if err != nil {
		return err
	}
	*ag = *stored
	return nil
}

func (r *agreementRepo) GetByID(ctx context.Context, id int64) (*domain.Agreement, error) {
	ag, err := scanAgreement(r.db.QueryRow(ctx, agreementSelect+` WHERE ag.id = $1`, id))
	if err != nil {
		return nil, translate(err)
	}
	return ag, nil
}

func (r *agreementRepo) GetByApplicationID(ctx context.Context, applicationID int64) (*domain.Agreement, error) {
	ag, err := scanAgreement(r.db.QueryRow(ctx, agreementSelect+` WHERE ag.application_id = $1`, applicationID))
	if err != nil {
		return nil, translate(err)
	}
	return ag, nil
}

func (r *agreementRepo) FindValidated(ctx context.Context, studentID, offerID int64) (*domain.Agreement, error) {
	query := agreementSelect + ` WHERE a.student_id = $1 AND a.offer_id = $2 AND ag.status = $3`
	ag, err := scanAgreement(r.db.QueryRow(ctx, query, studentID, offerID, domain.AgreementStatusValidated))
	if err != nil {
		return nil, translate(err)
	}
	return ag, nil
}

func (r *agreementRepo) List(ctx context.Context, f domain.AgreementFilter) ([]domain.Agreement, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.Status != "" {
		add("ag.status = $%d", f.Status)
	}
	if f.StudentID != 0 {
		add("a.student_id = $%d", f.StudentID)
	}
	if f.EmployerID != 0 {
		add("o.employer_id = $%d", f.EmployerID)
	}
	if f.InstructorID != 0 {
		add("ag.instructor_id = $%d", f.InstructorID)
	}

	query := agreementSelect
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY ag.created_at DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	agreements := []domain.Agreement{}
	for rows.Next() {
		ag, err := scanAgreement(rows)
		if err != nil {
			return nil, err
		}
		agreements = append(agreements, *ag)
	}
	return agreements, rows.Err()
}

// Update writes every mutable column guarded by the version the caller read.
func (r *agreementRepo) Update(ctx context.Context, ag *domain.Agreement) error {
	query := `
		UPDATE agreements SET
			instructor_id = $1, manager_id = $2, mission_text = $3, start_date = $4,
			duration_weeks = $5, location = $6, compensation = $7, work_schedule = $8,
			status = $9, document_path = $10,
			student_signed_at = $11, employer_signed_at = $12, manager_signed_at = $13,
			modified_at = $14, version = version + 1
		WHERE id = $15 AND version = $16`

	now := time.Now()
	tag, err := r.db.Exec(ctx, query,
		ag.InstructorID, ag.ManagerID, ag.MissionText, ag.StartDate,
		ag.DurationWeeks, ag.Location, ag.Compensation, ag.WorkSchedule,
		ag.Status, ag.DocumentPath,
		ag.StudentSignedAt, ag.EmployerSignedAt, ag.ManagerSignedAt,
		now, ag.ID, ag.Version,
	)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return r.missingOrStale(ctx, ag.ID)
	}
	ag.Version++
	ag.ModifiedAt = now
	return nil
}

func (r *agreementRepo) Delete(ctx context.Context, id int64, version int) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM agreements WHERE id = $1 AND version = $2`, id, version)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return r.missingOrStale(ctx, id)
	}
	return nil
}

func (r *agreementRepo) missingOrStale(ctx context.Context, id int64) error {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM agreements WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return domain.ErrNotFound
	}
	return domain.ErrStaleVersion
}
