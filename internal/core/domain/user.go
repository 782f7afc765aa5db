package domain

import (
	"errors"
	"slices"
	"time"
)

// LabelAdmin grants unscoped visibility over all invoices.
const LabelAdmin = "admin"

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")

// User models an authenticated actor. Labels are coarse-grained role tags;
// everything beyond login/logout is owned by the account store.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Labels       []string  `json:"labels"`
	Avatar       string    `json:"avatar,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAdmin reports whether the user carries the admin label.
func (u *User) IsAdmin() bool {
	return slices.Contains(u.Labels, LabelAdmin)
}
