package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func hash(t *testing.T, password string) string {
	t.Helper()
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return string(b)
}

func testStore(t *testing.T) *FileStore {
	t.Helper()
	data := fmt.Sprintf(`users:
  - username: admin
    password_hash: %q
    role: admin
  - username: user
    password_hash: %q
    role: user
`, hash(t, "admin123"), hash(t, "user123"))

	s, err := ParseFileStore([]byte(data))
	if err != nil {
		t.Fatalf("ParseFileStore: %v", err)
	}
	return s
}

func TestVerify(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	tests := []struct {
		username, password string
		role               Role
		wantErr            bool
	}{
		{"admin", "admin123", RoleAdmin, false},
		{"user", "user123", RoleUser, false},
		{"admin", "user123", "", true},
		{"nobody", "admin123", "", true},
		{"", "", "", true},
		{"Admin", "admin123", "", true},
	}

	for _, tc := range tests {
		role, err := s.Verify(ctx, tc.username, tc.password)
		if tc.wantErr {
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("%s/%s: expected ErrInvalidCredentials, got %v", tc.username, tc.password, err)
			}
			continue
		}
		if err != nil || role != tc.role {
			t.Errorf("%s: expected role %q, got %q (%v)", tc.username, tc.role, role, err)
		}
	}
}

func TestVerifyHonorsCancelledContext(t *testing.T) {
	s := testStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Verify(ctx, "admin", "admin123"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestParseFileStoreRejectsBadEntries(t *testing.T) {
	good := hash(t, "pw")
	tests := map[string]string{
		"plaintext password": "users:\n  - username: a\n    password_hash: admin123\n    role: admin\n",
		"missing role":       fmt.Sprintf("users:\n  - username: a\n    password_hash: %q\n", good),
		"missing username":   fmt.Sprintf("users:\n  - password_hash: %q\n    role: admin\n", good),
		"duplicate":          fmt.Sprintf("users:\n  - {username: a, password_hash: %q, role: admin}\n  - {username: a, password_hash: %q, role: user}\n", good, good),
		"not yaml":           "users: [",
	}

	for name, data := range tests {
		if _, err := ParseFileStore([]byte(data)); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

func TestLoadFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.yaml")
	data := fmt.Sprintf("users:\n  - {username: ops, password_hash: %q, role: user}\n", hash(t, "s3cret"))
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	s, err := LoadFileStore(path)
	if err != nil {
		t.Fatalf("LoadFileStore: %v", err)
	}
	if s.Len() != 1 {
		t.Errorf("expected 1 user, got %d", s.Len())
	}
	if role, err := s.Verify(context.Background(), "ops", "s3cret"); err != nil || role != RoleUser {
		t.Errorf("verify ops: %q %v", role, err)
	}

	if _, err := LoadFileStore(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestEmptyStoreRejectsEverything(t *testing.T) {
	if _, err := EmptyStore().Verify(context.Background(), "admin", "admin123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestHashPassword(t *testing.T) {
	h, err := HashPassword("pw")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(h), []byte("pw")) != nil {
		t.Error("hash does not verify")
	}
	if _, err := HashPassword(""); err == nil {
		t.Error("expected an error for an empty password")
	}
}

func TestUserEntryRoundTrip(t *testing.T) {
	doc, err := UserEntry(" ops ", "s3cret", "")
	if err != nil {
		t.Fatalf("UserEntry: %v", err)
	}

	s, err := ParseFileStore(doc)
	if err != nil {
		t.Fatalf("ParseFileStore(%s): %v", doc, err)
	}
	role, err := s.Verify(context.Background(), "ops", "s3cret")
	if err != nil || role != RoleUser {
		t.Errorf("Verify = %q, %v", role, err)
	}

	if _, err := UserEntry("", "pw", RoleAdmin); err == nil {
		t.Error("expected an error for an empty username")
	}
}
