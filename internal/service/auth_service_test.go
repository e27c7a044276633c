package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sunflowerskg/internal/db"
)

func setupAuthService(t *testing.T) (*AuthService, *db.User) {
	t.Helper()

	gdb := setupServiceTestDB(t)
	if _, err := db.EnsureUser(gdb, "admin", "admin123", "admin@sunflowerskg.com"); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	var user db.User
	if err := gdb.Where("username = ?", "admin").First(&user).Error; err != nil {
		t.Fatalf("load admin: %v", err)
	}
	return NewAuthService(gdb, "test-secret", time.Hour), &user
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	svc, user := setupAuthService(t)

	token, got, err := svc.Login("admin", "admin123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("expected user %d, got %d", user.ID, got.ID)
	}

	actor, err := svc.Authenticate(token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if actor.UserID != user.ID || actor.Username != "admin" || actor.Role != db.RoleAdmin {
		t.Fatalf("unexpected actor %+v", actor)
	}

	if _, _, err := svc.Login("ADMIN@sunflowerskg.com", "admin123"); err != nil {
		t.Fatalf("expected login by email to work, got %v", err)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := setupAuthService(t)

	if _, _, err := svc.Login("admin", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, _, err := svc.Login("ghost", "admin123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for unknown user, got %v", err)
	}
	if _, _, err := svc.Login("", "x"); err == nil {
		t.Fatal("expected missing username to be rejected")
	}
}

func TestAuthenticateRejectsInvalidTokens(t *testing.T) {
	svc, user := setupAuthService(t)

	valid, err := svc.IssueToken(user)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	other := NewAuthService(svc.db, "another-secret", time.Hour)
	forged, err := other.IssueToken(user)
	if err != nil {
		t.Fatalf("issue forged token: %v", err)
	}

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, tokenClaims{UserID: user.ID})
	none, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none token: %v", err)
	}

	for name, token := range map[string]string{
		"empty":  "",
		"junk":   "not-a-token",
		"forged": forged,
		"none":   none,
	} {
		if _, err := svc.Authenticate(token); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("%s: expected unauthorized, got %v", name, err)
		}
	}

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := svc.Authenticate(valid); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected expired token to be rejected, got %v", err)
	}
}

func TestAuthenticateRejectsDeletedUser(t *testing.T) {
	svc, user := setupAuthService(t)

	token, err := svc.IssueToken(user)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if err := svc.db.Delete(&db.User{}, user.ID).Error; err != nil {
		t.Fatalf("delete user: %v", err)
	}
	if _, err := svc.Authenticate(token); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}
