package domain

import (
	"context"
	"time"
)

// Offer status constants
const (
	OfferStatusPending   = "PENDING"
	OfferStatusPublished = "PUBLISHED"
	OfferStatusRejected  = "REJECTED"
)

// Offer is an internship offer posted by an employer and approved by a manager.
type Offer struct {
	ID          int64     `json:"id"`
	EmployerID  int64     `json:"employer_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

func (o *Offer) IsPublished() bool {
	return o.Status == OfferStatusPublished
}

type OfferRepository interface {
	GetByID(ctx context.Context, id int64) (*Offer, error)
}
