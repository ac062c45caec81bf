package domain

type CtxKey string

const (
	KeyUserID    CtxKey = "UserID"
	KeyUserEmail CtxKey = "Email"
	KeyUserRole  CtxKey = "Role"
)

// Role is the claimed role of an authenticated caller.
type Role string

const (
	RoleStudent    Role = "student"
	RoleEmployer   Role = "employer"
	RoleManager    Role = "manager"
	RoleInstructor Role = "instructor"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleEmployer, RoleManager, RoleInstructor:
		return true
	}
	return false
}

// Actor is a resolved caller: identity plus the role it was authorized under.
type Actor struct {
	ID   int64 `json:"id"`
	Role Role  `json:"role"`
}
