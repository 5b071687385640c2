package user

import (
	"errors"
	"time"

	userDatamodel "github.com/taskgraph/taskgraph/internal/core/datamodel/user"
)

// Role is an ordered hierarchy; comparisons use the numeric order directly.
type Role int

const (
	RoleDesigner Role = iota
	RoleSupervisor
	RoleManager
	RoleAdmin
)

func (r Role) String() string {
	switch r {
	case RoleDesigner:
		return "designer"
	case RoleSupervisor:
		return "supervisor"
	case RoleManager:
		return "manager"
	case RoleAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

func (r Role) Valid() bool {
	return r >= RoleDesigner && r <= RoleAdmin
}

const DefaultScore = 100.0

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Score        float64   `json:"score"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanAssignTo reports whether u may assign a task to the given user: the
// assignee's role must not outrank the requester's, and admins never
// receive task assignments.
func (u *User) CanAssignTo(assignee *User) bool {
	return assignee.Role <= u.Role && assignee.Role < RoleAdmin
}

var (
	ErrNotFound    = errors.New("user not found")
	ErrInvalidRole = errors.New("invalid role")
)

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:           u.ID,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Role:         int(u.Role),
		Score:        u.Score,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:           u.ID,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Role:         Role(u.Role),
		Score:        u.Score,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func FromDataModelSlice(users []*userDatamodel.User) []*User {
	result := make([]*User, len(users))
	for i, u := range users {
		result[i] = FromDataModel(u)
	}
	return result
}
