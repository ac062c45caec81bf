package domain

import (
	"context"
	"time"
)

// CV status constants
const (
	CVStatusPending  = "PENDING"
	CVStatusApproved = "APPROVED"
	CVStatusRejected = "REJECTED"
)

// CV is a student's uploaded resume. Uploading and approval happen elsewhere.
type CV struct {
	ID         int64     `json:"id"`
	StudentID  int64     `json:"student_id"`
	Path       string    `json:"path"`
	Status     string    `json:"status"`
	UploadedAt time.Time `json:"uploaded_at"`
}

type CVRepository interface {
	GetByID(ctx context.Context, id int64) (*CV, error)
}
