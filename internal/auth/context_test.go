package auth

import (
	"context"
	"testing"

	"github.com/ivyjanebarrios09-cloud/kitamo/internal/model"
)

func TestWithAuthRoundTrip(t *testing.T) {
	ctx := WithAuth(context.Background(), AuthContext{
		UserID: "u-42",
		Email:  "chair@example.com",
		Role:   model.RoleChairperson,
	})

	ac, ok := FromContext(ctx)
	if !ok {
		t.Fatal("expected auth context")
	}
	if ac.UserID != "u-42" {
		t.Errorf("user id = %q, want u-42", ac.UserID)
	}
	if UserID(ctx) != "u-42" {
		t.Errorf("UserID(ctx) = %q, want u-42", UserID(ctx))
	}
	if !IsChairperson(ctx) {
		t.Error("expected IsChairperson to be true")
	}
}

func TestEmptyContext(t *testing.T) {
	ctx := context.Background()

	if _, ok := FromContext(ctx); ok {
		t.Error("expected no auth context")
	}
	if UserID(ctx) != "" {
		t.Errorf("UserID on empty ctx = %q, want empty", UserID(ctx))
	}
	if IsChairperson(ctx) {
		t.Error("IsChairperson on empty ctx should be false")
	}
}

func TestStudentRole(t *testing.T) {
	ctx := WithAuth(context.Background(), AuthContext{UserID: "u-7", Role: model.RoleStudent})
	if IsChairperson(ctx) {
		t.Error("student should not be chairperson")
	}
}
