package postgres

import (
	"context"


	"github.com/rilesCL/Projet-Leandrose-sub000/internal/domain"
)

type offerRepo struct {
	db DBTX
}

func NewOfferRepository(db DBTX) domain.OfferRepository {
	return &offerRepo{db: db}
}

func (r *offerRepo) GetByID(ctx context.Context, id int64) (*domain.Offer, error) {
	query := `
		SELECT id, employer_id, title, description, location, status, created_at
		FROM offers WHERE id = $1`
	var o domain.Offer
	err := r.db.QueryRow(ctx, query, id).Scan(
		&o.ID, &o.EmployerID, &o.Title, &o.Description, &o.Location, &o.Status, &o.CreatedAt,
	)
	if err != nil {
		return nil, translate(err)
	}
	return &o, nil
}

type cvRepo struct {
	db DBTX
}

func NewCVRepository(db DBTX) domain.CVRepository {
	return &cvRepo{db: db}
}

func (r *cvRepo) GetByID(ctx context.Context, id int64) (*domain.CV, error) {
	query := `SELECT id, student_id, path, status, uploaded_at FROM cvs WHERE id = $1`
	var cv domain.CV
	err := r.db.QueryRow(ctx, query, id).Scan(&cv.ID, &cv.StudentID, &cv.Path, &cv.Status, &cv.UploadedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &cv, nil
}
