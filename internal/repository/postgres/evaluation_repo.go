package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/rilesCL/Projet-Leandrose-sub000/internal/domain"
)

type evaluationRepo struct {
	db DBTX
}

// NewEvaluationRepository creates a new evaluation repository
func NewEvaluationRepository(db DBTX) domain.EvaluationRepository {
	return &evaluationRepo{db: db}
}

const evaluationSelect = `
		SELECT id, employer_id, student_id, instructor_id, offer_id, agreement_id,
			submitted_by_employer, submitted_by_instructor,
			employer_document_path, instructor_document_path,
			employer_submitted_at, instructor_submitted_at,
			evaluation_date, version
		FROM evaluations`

func scanEvaluation(row pgx.Row) (*domain.Evaluation, error) {
	var ev domain.Evaluation
	err := row.Scan(
		&ev.ID, &ev.EmployerID, &ev.StudentID, &ev.InstructorID, &ev.OfferID, &ev.AgreementID,
		&ev.SubmittedByEmployer, &ev.SubmittedByInstructor,
		&ev.EmployerDocumentPath, &ev.InstructorDocumentPath,
		&ev.EmployerSubmittedAt, &ev.InstructorSubmittedAt,
		&ev.EvaluationDate, &ev.Version,
	)
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

func (r *evaluationRepo) Create(ctx context.Context, ev *domain.Evaluation) error {
	query := `
		INSERT INTO evaluations (employer_id, student_id, instructor_id, offer_id, agreement_id, evaluation_date, version)
		VALUES ($1, $2, $3, $4, $5, NOW(), 1)
		RETURNING id, evaluation_date, version`
	err := r.db.QueryRow(ctx, query,
		ev.EmployerID, ev.StudentID, ev.InstructorID, ev.OfferID, ev.AgreementID,
	).Scan(&ev.ID, &ev.EvaluationDate, &ev.Version)
	return translate(err)
}

func (r *evaluationRepo) GetByID(ctx context.Context, id int64) (*domain.Evaluation, error) {
	ev, err := scanEvaluation(r.db.QueryRow(ctx, evaluationSelect+` WHERE id = $1`, id))
	if err != nil {
		return nil, translate(err)
	}
	return ev, nil
}

func (r *evaluationRepo) GetByStudentAndOffer(ctx context.Context, studentID, offerID int64) (*domain.Evaluation, error) {
	query := evaluationSelect + ` WHERE student_id = $1 AND offer_id = $2`
	ev, err := scanEvaluation(r.db.QueryRow(ctx, query, studentID, offerID))
	if err != nil {
		return nil, translate(err)
	}
	return ev, nil
}

func (r *evaluationRepo) Update(ctx context.Context, ev *domain.Evaluation) error {
	query := `
		UPDATE evaluations SET
			instructor_id = $1,
			submitted_by_employer = $2, submitted_by_instructor = $3,
			employer_document_path = $4, instructor_document_path = $5,
			employer_submitted_at = $6, instructor_submitted_at = $7,
			version = version + 1
		WHERE id = $8 AND version = $9`
	tag, err := r.db.Exec(ctx, query,
		ev.InstructorID,
		ev.SubmittedByEmployer, ev.SubmittedByInstructor,
		ev.EmployerDocumentPath, ev.InstructorDocumentPath,
		ev.EmployerSubmittedAt, ev.InstructorSubmittedAt,
		ev.ID, ev.Version,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM evaluations WHERE id = $1)`, ev.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return domain.ErrNotFound
		}
		return domain.ErrStaleVersion
	}
	ev.Version++
	return nil
}
