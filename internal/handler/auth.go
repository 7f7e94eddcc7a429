package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ivyjanebarrios09-cloud/kitamo/internal/auth"
	"github.com/ivyjanebarrios09-cloud/kitamo/internal/model"
)

type AuthHandler struct {
	authenticator *auth.PasswordAuthenticator
	jwtManager    *auth.JWTManager
	logger        *slog.Logger
}

func NewAuthHandler(authenticator *auth.PasswordAuthenticator, jwtManager *auth.JWTManager, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		logger:        logger,
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" {
		writeErrorMsg(w, http.StatusBadRequest, "name and email are required")
		return
	}
	if req.Role == "" {
		req.Role = model.RoleStudent
	}

	user, err := h.authenticator.Register(req.Name, req.Email, req.Role, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrWeakPassword), errors.Is(err, auth.ErrEmailExists):
			writeErrorMsg(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("register", "email", req.Email, "error", err)
			writeErrorMsg(w, http.StatusInternalServerError, "registration failed")
		}
		return
	}

	token, err := h.jwtManager.Generate(user)
	if err != nil {
		h.logger.Error("generate token", "user_id", user.ID, "error", err)
		writeErrorMsg(w, http.StatusInternalServerError, "registration failed")
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: user})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	user, err := h.authenticator.Authenticate(strings.ToLower(strings.TrimSpace(req.Email)), req.Password)
	if err != nil {
		writeErrorMsg(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	token, err := h.jwtManager.Generate(user)
	if err != nil {
		h.logger.Error("generate token", "user_id", user.ID, "error", err)
		writeErrorMsg(w, http.StatusInternalServerError, "login failed")
		return
	}

	writeJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}
