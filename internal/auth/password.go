package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/ivyjanebarrios09-cloud/kitamo/internal/model"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrEmailExists        = errors.New("email already registered")
)

// UserStorage is the slice of the user store the authenticator needs.
type UserStorage interface {
	CreateUser(name, email, role, passwordHash string) (*model.User, error)
	GetUserByEmail(email string) (*model.User, error)
}

// PasswordAuthenticator implements password-based authentication using bcrypt.
type PasswordAuthenticator struct {
	storage UserStorage
}

func NewPasswordAuthenticator(storage UserStorage) *PasswordAuthenticator {
	return &PasswordAuthenticator{storage: storage}
}

// Register creates a new account with a hashed password.
func (a *PasswordAuthenticator) Register(name, email, role, password string) (*model.User, error) {
	if len(password) < 8 {
		return nil, ErrWeakPassword
	}
	if role != model.RoleChairperson && role != model.RoleStudent {
		return nil, fmt.Errorf("unknown role %q", role)
	}

	existing, err := a.storage.GetUserByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := a.storage.CreateUser(name, email, role, string(hash))
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Authenticate verifies the email and password, returning the user if valid.
func (a *PasswordAuthenticator) Authenticate(email, password string) (*model.User, error) {
	user, err := a.storage.GetUserByEmail(email)
	if err != nil || user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}
