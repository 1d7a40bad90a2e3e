// Package auth verifies login credentials against a store of bcrypt hashes.
package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

// ErrInvalidCredentials covers both unknown users and wrong passwords.
var ErrInvalidCredentials = errors.New("invalid username or password")

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

type Authenticator interface {
	Verify(ctx context.Context, username, password string) (Role, error)
}

type credential struct {
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"password_hash"`
	Role         Role   `yaml:"role"`
}

type credentialsFile struct {
	Users []credential `yaml:"users"`
}

// FileStore is an in-memory credential table loaded from YAML:
//
//	users:
//	  - username: admin
//	    password_hash: $2a$10$...
//	    role: admin
type FileStore struct {
	users map[string]credential
}

func LoadFileStore(path string) (*FileStore, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}
	return ParseFileStore(b)
}

func ParseFileStore(data []byte) (*FileStore, error) {
	var f credentialsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode credentials: %w", err)
	}

	users := make(map[string]credential, len(f.Users))
	for i, c := range f.Users {
		c.Username = strings.TrimSpace(c.Username)
		if c.Username == "" {
			return nil, fmt.Errorf("credentials entry %d: username is empty", i)
		}
		if c.Role == "" {
			return nil, fmt.Errorf("credentials entry %q: role is empty", c.Username)
		}
		if _, err := bcrypt.Cost([]byte(c.PasswordHash)); err != nil {
			return nil, fmt.Errorf("credentials entry %q: password_hash: %w", c.Username, err)
		}
		if _, dup := users[c.Username]; dup {
			return nil, fmt.Errorf("credentials entry %q: duplicate username", c.Username)
		}
		users[c.Username] = c
	}

	return &FileStore{users: users}, nil
}

// EmptyStore rejects every login.
func EmptyStore() *FileStore {
	return &FileStore{users: map[string]credential{}}
}

func (s *FileStore) Len() int { return len(s.users) }

func (s *FileStore) Verify(ctx context.Context, username, password string) (Role, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c, ok := s.users[username]
	if !ok {
		// Spend the same hashing work as a real check.
		_ = bcrypt.CompareHashAndPassword(decoyHash(), []byte(password))
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return c.Role, nil
}

// HashPassword returns a bcrypt hash suitable for a credentials file.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password is empty")
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// UserEntry hashes password and renders a single-user credentials document
// that can be merged into a credentials file.
func UserEntry(username, password string, role Role) ([]byte, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, errors.New("username is empty")
	}
	if role == "" {
		role = RoleUser
	}
	h, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(credentialsFile{Users: []credential{{
		Username:     username,
		PasswordHash: h,
		Role:         role,
	}}})
}

var (
	decoyOnce sync.Once
	decoy     []byte
)

func decoyHash() []byte {
	decoyOnce.Do(func() {
		decoy, _ = bcrypt.GenerateFromPassword([]byte("decoy-password"), bcrypt.DefaultCost)
	})
	return decoy
}
