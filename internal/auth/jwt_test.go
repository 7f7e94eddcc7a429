package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/ivyjanebarrios09-cloud/kitamo/internal/model"
)

func testUser() *model.User {
	return &model.User{
		ID:    "u-1",
		Name:  "Ivy",
		Email: "ivy@example.com",
		Role:  model.RoleChairperson,
	}
}

func TestGenerateValidate(t *testing.T) {
	m := NewJWTManager("test-secret-key-32-bytes-long!!!", time.Hour)

	token, err := m.Generate(testUser())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != "u-1" {
		t.Errorf("user id = %q, want u-1", claims.UserID)
	}
	if claims.Role != model.RoleChairperson {
		t.Errorf("role = %q, want chairperson", claims.Role)
	}
}

func TestValidateWrongSecret(t *testing.T) {
	m1 := NewJWTManager("secret-one", time.Hour)
	m2 := NewJWTManager("secret-two", time.Hour)

	token, err := m1.Generate(testUser())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := m2.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestValidateExpired(t *testing.T) {
	m := NewJWTManager("secret", -time.Minute)

	token, err := m.Generate(testUser())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := m.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestValidateGarbage(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)
	if _, err := m.Validate("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}
