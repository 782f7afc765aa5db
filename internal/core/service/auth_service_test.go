package service

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/invoicehub/invoicing-system/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory stubs
// ---------------------------------------------------------------------------

type stubAuthRepo struct {
	byEmail map[string]*domain.User
	byID    map[string]*domain.User
	nextID  int
	findErr error // if set, Find* returns this error (simulates store outage)
}

func newStubAuthRepo() *stubAuthRepo {
	return &stubAuthRepo{
		byEmail: make(map[string]*domain.User),
		byID:    make(map[string]*domain.User),
	}
}

func (r *stubAuthRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if _, exists := r.byEmail[user.Email]; exists {
		return nil, domain.ErrUserExists
	}
	r.nextID++
	clone := *user
	clone.ID = "user_" + strconv.Itoa(r.nextID)
	r.byEmail[clone.Email] = &clone
	r.byID[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubAuthRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *stubAuthRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

type stubRevoker struct {
	revoked map[string]bool
	err     error
}

func newStubRevoker() *stubRevoker {
	return &stubRevoker{revoked: make(map[string]bool)}
}

func (s *stubRevoker) Revoke(_ context.Context, jti string, _ time.Duration) error {
	if s.err != nil {
		return s.err
	}
	s.revoked[jti] = true
	return nil
}

func (s *stubRevoker) IsRevoked(_ context.Context, jti string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.revoked[jti], nil
}

func newTestAuthService(repo *stubAuthRepo, revoker *stubRevoker) *AuthService {
	return NewAuthService(repo, revoker, "test-secret", time.Hour, discardLogger)
}

// ---------------------------------------------------------------------------
// Register / Login
// ---------------------------------------------------------------------------

func TestAuthService_Register_AutoSignIn(t *testing.T) {
	svc := newTestAuthService(newStubAuthRepo(), newStubRevoker())

	token, user, err := svc.Register(context.Background(), "a@example.com", "secret", "Alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token == "" {
		t.Fatal("register must end authenticated with a session token")
	}
	if user.ID == "" || user.Email != "a@example.com" {
		t.Errorf("unexpected user: %+v", user)
	}
	if user.Avatar == "" {
		t.Error("expected generated avatar url")
	}

	// The returned token verifies against the same secret and carries the
	// subject and a jti.
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !tkn.Valid {
		t.Fatalf("returned token does not verify: %v", err)
	}
	if claims["sub"] != user.ID {
		t.Errorf("expected sub %q, got %v", user.ID, claims["sub"])
	}
	if jti, _ := claims["jti"].(string); jti == "" {
		t.Error("token missing jti")
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	repo := newStubAuthRepo()
	svc := newTestAuthService(repo, newStubRevoker())

	if _, _, err := svc.Register(context.Background(), "a@example.com", "secret", "Alice"); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	_, _, err := svc.Register(context.Background(), "a@example.com", "other", "Alice Again")
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	repo := newStubAuthRepo()
	svc := newTestAuthService(repo, newStubRevoker())
	_, _, _ = svc.Register(context.Background(), "a@example.com", "secret", "Alice")

	_, _, err := svc.Login(context.Background(), "a@example.com", "wrong")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	svc := newTestAuthService(newStubAuthRepo(), newStubRevoker())

	_, _, err := svc.Login(context.Background(), "ghost@example.com", "secret")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Logout / CurrentUser
// ---------------------------------------------------------------------------

func TestAuthService_Logout_RevokesToken(t *testing.T) {
	repo := newStubAuthRepo()
	revoker := newStubRevoker()
	svc := newTestAuthService(repo, revoker)

	token, _, _ := svc.Register(context.Background(), "a@example.com", "secret", "Alice")

	if err := svc.Logout(context.Background(), token); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(revoker.revoked) != 1 {
		t.Fatalf("expected 1 revoked jti, got %d", len(revoker.revoked))
	}

	// The session is gone afterwards.
	user, err := svc.CurrentUser(context.Background(), token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user != nil {
		t.Error("revoked session must resolve to no user")
	}
}

func TestAuthService_Logout_NoSessionIsNoOp(t *testing.T) {
	revoker := newStubRevoker()
	svc := newTestAuthService(newStubAuthRepo(), revoker)

	if err := svc.Logout(context.Background(), ""); err != nil {
		t.Fatalf("logout without session must succeed, got %v", err)
	}
	if err := svc.Logout(context.Background(), "not-a-token"); err != nil {
		t.Fatalf("logout with malformed token must succeed, got %v", err)
	}
	if len(revoker.revoked) != 0 {
		t.Errorf("nothing should be revoked, got %d", len(revoker.revoked))
	}
}

func TestAuthService_CurrentUser_Valid(t *testing.T) {
	repo := newStubAuthRepo()
	svc := newTestAuthService(repo, newStubRevoker())
	token, registered, _ := svc.Register(context.Background(), "a@example.com", "secret", "Alice")

	user, err := svc.CurrentUser(context.Background(), token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user == nil || user.ID != registered.ID {
		t.Fatalf("expected user %q, got %+v", registered.ID, user)
	}
}

func TestAuthService_CurrentUser_NotAuthenticatedIsNotAnError(t *testing.T) {
	svc := newTestAuthService(newStubAuthRepo(), newStubRevoker())

	for _, token := range []string{"", "garbage", "a.b.c"} {
		user, err := svc.CurrentUser(context.Background(), token)
		if err != nil {
			t.Errorf("token %q: not-authenticated must not be an error, got %v", token, err)
		}
		if user != nil {
			t.Errorf("token %q: expected nil user, got %+v", token, user)
		}
	}
}

func TestAuthService_CurrentUser_StoreOutageIsAnError(t *testing.T) {
	repo := newStubAuthRepo()
	svc := newTestAuthService(repo, newStubRevoker())
	token, _, _ := svc.Register(context.Background(), "a@example.com", "secret", "Alice")

	// A valid session with an unreachable store must surface an error, not
	// masquerade as "not logged in".
	repo.findErr = errors.New("connection refused")
	_, err := svc.CurrentUser(context.Background(), token)
	if err == nil {
		t.Fatal("expected error when the account store is unreachable")
	}
}
