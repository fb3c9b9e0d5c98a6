package user

import (
	"context"

	"github.com/go-faster/errors"
)

// StatusActive is the numeric status the users service assigns to accounts
// that may place orders.
const StatusActive = 1

var (
	// ErrNotFound is returned when no account matches the requested email.
	ErrNotFound = errors.New("user not found")
	// ErrUnavailable is returned when the users service cannot be reached
	// or answers with a server error.
	ErrUnavailable = errors.New("users service unavailable")
)

// InactiveError indicates the account exists but is not allowed to order.
type InactiveError struct {
	Email string
}

func (e *InactiveError) Error() string {
	return "user " + e.Email + " is not active"
}

// User is a buyer account as served by the users service.
type User struct {
	ID     int64
	Name   string
	Email  string
	Status int
}

// IsActive reports whether the account may place orders.
func (u *User) IsActive() bool {
	return u.Status == StatusActive
}

// Client resolves buyer accounts from the users service.
type Client interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
}
