package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ivyjanebarrios09-cloud/kitamo/internal/auth"
	"github.com/ivyjanebarrios09-cloud/kitamo/internal/model"
)

func testJWT(t *testing.T) *auth.JWTManager {
	t.Helper()
	return auth.NewJWTManager("test-secret-key-for-middleware", time.Hour)
}

func TestRequireAuthNoToken(t *testing.T) {
	handler := RequireAuth(testJWT(t))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("should not reach handler")
	}))

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequireAuthInvalidToken(t *testing.T) {
	handler := RequireAuth(testJWT(t))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("should not reach handler")
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequireAuthValidToken(t *testing.T) {
	jm := testJWT(t)
	token, err := jm.Generate(&model.User{
		ID:    "u-1",
		Email: "chair@example.com",
		Role:  model.RoleChairperson,
	})
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	var gotAC auth.AuthContext
	handler := RequireAuth(jm)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ac, ok := auth.FromContext(r.Context())
		if !ok {
			t.Fatal("expected AuthContext in request context")
		}
		gotAC = ac
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if gotAC.UserID != "u-1" {
		t.Errorf("UserID = %q, want u-1", gotAC.UserID)
	}
	if gotAC.Role != model.RoleChairperson {
		t.Errorf("Role = %q, want %q", gotAC.Role, model.RoleChairperson)
	}
}

func TestRequireAuthQueryToken(t *testing.T) {
	jm := testJWT(t)
	token, err := jm.Generate(&model.User{ID: "u-2", Email: "s@example.com", Role: model.RoleStudent})
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	handler := RequireAuth(jm)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth.UserID(r.Context()) != "u-2" {
			t.Errorf("UserID = %q, want u-2", auth.UserID(r.Context()))
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/ws?token="+token, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestRequireChairpersonAllowed(t *testing.T) {
	ctx := auth.WithAuth(context.Background(), auth.AuthContext{Role: model.RoleChairperson})
	req := httptest.NewRequest("GET", "/", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	handler := RequireChairperson(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestRequireChairpersonForbidden(t *testing.T) {
	ctx := auth.WithAuth(context.Background(), auth.AuthContext{Role: model.RoleStudent})
	req := httptest.NewRequest("GET", "/", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	handler := RequireChairperson(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("should not reach handler")
	}))
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}
