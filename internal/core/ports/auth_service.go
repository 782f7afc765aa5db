package ports

import (
	"context"

	"github.com/invoicehub/invoicing-system/internal/core/domain"
)

// AuthService implements the authentication gateway: register, sign-in,
// sign-out, and current-session resolution.
type AuthService interface {
	// Register creates the account and immediately signs it in, so the
	// caller ends authenticated. Returns the session token and the user.
	Register(ctx context.Context, email, password, name string) (string, *domain.User, error)

	// Login exchanges credentials for a session token.
	Login(ctx context.Context, email, password string) (string, *domain.User, error)

	// Logout revokes the session token. An absent, malformed, or already
	// expired token is a no-op success.
	Logout(ctx context.Context, token string) error

	// CurrentUser resolves the identity behind a token. A missing or invalid
	// session yields (nil, nil) rather than an error; an error is returned
	// only when the account store cannot be reached.
	CurrentUser(ctx context.Context, token string) (*domain.User, error)
}
