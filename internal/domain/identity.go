package domain

// Actor is the authenticated caller as asserted by the identity provider's token.
type Actor struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	IsStaff     bool   `json:"is_staff"`
	IsSuperuser bool   `json:"is_superuser"`
}

// IsAdmin reports whether the actor may administer events.
func (a *Actor) IsAdmin() bool {
	return a != nil && (a.IsStaff || a.IsSuperuser)
}

// TokenVerifier verifies a bearer token and returns the actor it identifies.
type TokenVerifier interface {
	Verify(token string) (*Actor, error)
}
