package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/rilesCL/Projet-Leandrose-sub000/internal/domain"
)

type applicationRepo struct {
	db DBTX
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(db DBTX) domain.ApplicationRepository {
	return &applicationRepo{db: db}
}

const applicationSelect = `
		SELECT
			a.id, a.student_id, a.offer_id, a.cv_id, a.status, a.convened,
			a.convocation_at, a.convocation_location, a.convocation_message,
			a.applied_at, a.updated_at,
			o.title AS offer_title,
			NULLIF(TRIM(u.first_name || ' ' || u.last_name), '') AS student_name
		FROM applications a
		LEFT JOIN offers o ON a.offer_id = o.id
		LEFT JOIN users u ON a.student_id = u.id`

func scanApplication(row pgx.Row) (*domain.Application, error) {
	var (
		app      domain.Application
		convAt   *time.Time
		convLoc  *string
		convNote *string
	)
	err := row.Scan(
		&app.ID, &app.StudentID, &app.OfferID, &app.CVID, &app.Status, &app.Convened,
		&convAt, &convLoc, &convNote,
		&app.AppliedAt, &app.UpdatedAt,
		&app.OfferTitle, &app.StudentName,
	)
	if err != nil {
		return nil, err
	}
	if convAt != nil {
		conv := domain.Convocation{ScheduledAt: *convAt}
		if convLoc != nil {
			conv.Location = *convLoc
		}
		if convNote != nil {
			conv.Message = *convNote
		}
		app.Convocation = &conv
	}
	return &app, nil
}

// Create inserts a new application
func (r *applicationRepo) Create(ctx context.Context, app *domain.Application) error {
	query := `
		INSERT INTO applications (student_id, offer_id, cv_id, status, applied_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	now := time.Now()
	app.AppliedAt = now
	app.UpdatedAt = now
	if app.Status == "" {
		app.Status = domain.ApplicationStatusPending
	}

	err := r.db.QueryRow(ctx, query,
		app.StudentID,
		app.OfferID,
		app.CVID,
		app.Status,
		app.AppliedAt,
		app.UpdatedAt,
	).Scan(&app.ID)
	return translate(err)
}

func (r *applicationRepo) GetByID(ctx context.Context, id int64) (*domain.Application, error) {
	app, err := scanApplication(r.db.QueryRow(ctx, applicationSelect+` WHERE a.id = $1`, id))
	if err != nil {
		return nil, translate(err)
	}
	return app, nil
}

func (r *applicationRepo) GetByStudentAndOffer(ctx context.Context, studentID, offerID int64) (*domain.Application, error) {
	query := applicationSelect + ` WHERE a.student_id = $1 AND a.offer_id = $2`
	app, err := scanApplication(r.db.QueryRow(ctx, query, studentID, offerID))
	if err != nil {
		return nil, translate(err)
	}
	return app, nil
}

func (r *applicationRepo) list(ctx context.Context, where string, arg int64) ([]domain.Application, error) {
	rows, err := r.db.Query(ctx, applicationSelect+where+` ORDER BY a.applied_at DESC`, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applications := []domain.Application{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		applications = append(applications, *app)
	}
	return applications, rows.Err()
}

// ListByStudent retrieves all applications of a student with offer titles
func (r *applicationRepo) ListByStudent(ctx context.Context, studentID int64) ([]domain.Application, error) {
	return r.list(ctx, ` WHERE a.student_id = $1`, studentID)
}

// ListByOffer retrieves all applications for an offer with student names
func (r *applicationRepo) ListByOffer(ctx context.Context, offerID int64) ([]domain.Application, error) {
	return r.list(ctx, ` WHERE a.offer_id = $1`, offerID)
}

// UpdateStatus only succeeds while the row is still in the expected status.
func (r *applicationRepo) UpdateStatus(ctx context.Context, id int64, from, to domain.ApplicationStatus) error {
	query := `UPDATE applications SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`
	tag, err := r.db.Exec(ctx, query, to, time.Now(), id, from)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return r.missingOrStale(ctx, id)
	}
	return nil
}

func (r *applicationRepo) SaveConvocation(ctx context.Context, id int64, conv domain.Convocation) error {
	query := `
		UPDATE applications
		SET convened = TRUE, convocation_at = $1, convocation_location = $2, convocation_message = $3, updated_at = $4
		WHERE id = $5`
	tag, err := r.db.Exec(ctx, query, conv.ScheduledAt, conv.Location, conv.Message, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *applicationRepo) missingOrStale(ctx context.Context, id int64) error {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM applications WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return domain.ErrNotFound
	}
	return domain.ErrStaleVersion
}
