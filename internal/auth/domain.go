package auth

import (
	"time"

	"github.com/coursedesk/coursedesk/internal/shared"
)

// User represents a stored user account, hash included. The hash never
// crosses the handler boundary.
type User struct {
	ID           int64
	Name         string
	Email        string
	StudentID    string
	Role         shared.Role
	PasswordHash string
	CreatedAt    time.Time
}

// Principal strips the credential hash and returns the session-safe identity.
func (u *User) Principal() *shared.Principal {
	return &shared.Principal{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		StudentID: u.StudentID,
		Role:      u.Role,
	}
}
