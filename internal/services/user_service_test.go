package services

import (
	"context"
	"testing"

	"github.com/yoockh/mockmate/internal/models"
	pgrepo "github.com/yoockh/mockmate/internal/repositories/postgres"
	"github.com/yoockh/mockmate/internal/utils"
)

func newUserService(t *testing.T) (UserService, pgrepo.UserRepository) {
	t.Helper()
	db := newTestDB(t)
	users := pgrepo.NewUserRepo(db)
	return NewUserService(users, "test-secret"), users
}

func TestSignupAndLogin(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	u, token, err := svc.Signup(ctx, "Alice@Test.dev", "s3cret", "Alice")
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	if token == "" {
		t.Fatalf("expected a signed token")
	}
	if u.Email != "alice@test.dev" {
		t.Fatalf("email must be normalized, got %q", u.Email)
	}
	if u.Role != models.RoleStudent {
		t.Fatalf("new accounts must be STUDENT, got %s", u.Role)
	}

	claims, err := utils.ParseToken("test-secret", token)
	if err != nil {
		t.Fatalf("token does not verify: %v", err)
	}
	if claims.Subject != u.ID || claims.Role != string(models.RoleStudent) {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	if _, _, err := svc.Login(ctx, "alice@test.dev", "s3cret"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if _, _, err := svc.Login(ctx, "alice@test.dev", "wrong"); !utils.IsCode(err, utils.CodeUnauthorized) {
		t.Fatalf("expected UNAUTHORIZED for bad password, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "nobody@test.dev", "s3cret"); !utils.IsCode(err, utils.CodeUnauthorized) {
		t.Fatalf("expected UNAUTHORIZED for unknown email, got %v", err)
	}
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	if _, _, err := svc.Signup(ctx, "bob@test.dev", "pw", "Bob"); err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	_, _, err := svc.Signup(ctx, "bob@test.dev", "pw2", "Bobby")
	if !utils.IsCode(err, utils.CodeConflict) {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
}

func TestBannedUserCannotLogin(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	u, _, err := svc.Signup(ctx, "carol@test.dev", "pw", "Carol")
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	if err := svc.SetBanned(ctx, u.ID, true); err != nil {
		t.Fatalf("ban failed: %v", err)
	}
	if _, _, err := svc.Login(ctx, "carol@test.dev", "pw"); !utils.IsCode(err, utils.CodeForbidden) {
		t.Fatalf("expected FORBIDDEN for banned account, got %v", err)
	}

	if err := svc.SetBanned(ctx, u.ID, false); err != nil {
		t.Fatalf("unban failed: %v", err)
	}
	if _, _, err := svc.Login(ctx, "carol@test.dev", "pw"); err != nil {
		t.Fatalf("login after unban failed: %v", err)
	}
}

func TestOAuthLoginUpserts(t *testing.T) {
	svc, users := newUserService(t)
	ctx := context.Background()

	u, token, err := svc.OAuthLogin(ctx, "google", "g-123", "dave@test.dev", "Dave")
	if err != nil {
		t.Fatalf("oauth login failed: %v", err)
	}
	if token == "" {
		t.Fatalf("expected a signed token")
	}
	if u.PasswordHash != nil {
		t.Fatalf("oauth accounts must not carry a password hash")
	}

	again, _, err := svc.OAuthLogin(ctx, "google", "g-123", "dave@test.dev", "Dave")
	if err != nil {
		t.Fatalf("second oauth login failed: %v", err)
	}
	if again.ID != u.ID {
		t.Fatalf("oauth login must reuse the existing account")
	}

	rows, err := users.List(ctx, 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected a single account, got %d", len(rows))
	}
}
