package shared

// Role classifies an authenticated principal.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// Principal is the authenticated actor bound to a session. Anonymous requests
// carry a nil Principal.
type Principal struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	StudentID string `json:"student_id,omitempty"`
	Role      Role   `json:"role"`
}

// IsAdmin reports whether the principal holds the admin role.
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// RequireAuthenticated fails with ErrUnauthorized when no principal is present.
func RequireAuthenticated(p *Principal) (*Principal, error) {
	if p == nil {
		return nil, ErrUnauthorized
	}
	return p, nil
}

// RequireAdmin fails with ErrUnauthorized for anonymous callers and
// ErrForbidden for authenticated non-admins.
func RequireAdmin(p *Principal) (*Principal, error) {
	p, err := RequireAuthenticated(p)
	if err != nil {
		return nil, err
	}
	if p.Role != RoleAdmin {
		return nil, ErrForbidden
	}
	return p, nil
}

// RequireOwnerOrAdmin succeeds iff the principal is an admin or owns the
// target object. These three checks are the only authorization primitives in
// the system.
func RequireOwnerOrAdmin(ownerID int64, p *Principal) error {
	p, err := RequireAuthenticated(p)
	if err != nil {
		return err
	}
	if p.IsAdmin() || p.ID == ownerID {
		return nil
	}
	return ErrForbidden
}
