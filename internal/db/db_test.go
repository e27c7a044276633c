package db

import (
	"path/filepath"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestOpenCreatesParentDirAndMigrates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data", "test.db")

	gdb, err := Open(Options{Driver: DriverSQLite, Path: path, Silent: true})
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer Close(gdb)

	for _, model := range []interface{}{&User{}, &Inquiry{}, &News{}, &GalleryImage{}} {
		if !gdb.Migrator().HasTable(model) {
			t.Fatalf("expected table for %T", model)
		}
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open(Options{Driver: "oracle"}); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
	if _, err := Open(Options{Driver: DriverPostgres}); err == nil {
		t.Fatal("expected error for postgres without dsn")
	}
}

func TestEnsureUserIsIdempotent(t *testing.T) {
	gdb, err := Open(Options{Driver: DriverSQLite, Path: filepath.Join(t.TempDir(), "users.db"), Silent: true})
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer Close(gdb)

	created, err := EnsureUser(gdb, " admin ", "admin123", "Admin@Example.com")
	if err != nil || !created {
		t.Fatalf("expected admin to be created, created=%v err=%v", created, err)
	}

	created, err = EnsureUser(gdb, "admin", "other", "")
	if err != nil || created {
		t.Fatalf("expected second call to be a no-op, created=%v err=%v", created, err)
	}

	var user User
	if err := gdb.Where("username = ?", "admin").First(&user).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if user.Role != RoleAdmin || user.Email != "admin@example.com" {
		t.Fatalf("unexpected user %+v", user)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("admin123")) != nil {
		t.Fatal("expected stored password to be the bcrypt hash of the original")
	}

	created, err = EnsureUser(gdb, "", "", "")
	if err != nil || created {
		t.Fatalf("expected blank credentials to be skipped, created=%v err=%v", created, err)
	}
}
