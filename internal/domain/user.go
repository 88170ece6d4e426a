package domain

import "context"

// User is the local projection of an identity-provider account.
// swagger:model User
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// UserRepository reads users. Accounts are written by the identity provider.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*User, error)
}
