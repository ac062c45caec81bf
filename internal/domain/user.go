package domain

import (
	"context"
	"strings"
	"time"
)

// User is a read-only view of any party: student, employer, manager or instructor.
type User struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Role        Role      `json:"role"`
	CompanyName *string   `json:"company_name,omitempty"` // employers only
	CreatedAt   time.Time `json:"created_at"`
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	// ListByIDs returns the users that exist among ids, in id order.
	ListByIDs(ctx context.Context, ids []int64) ([]User, error)
}
